package idwrap

import (
	"database/sql/driver"
	"encoding/json"
	"time"

	"github.com/oklog/ulid/v2"
)

// IDWrap is the id type used for every entity. It wraps a ULID so ids stay
// sortable by creation time and store as 16-byte blobs.
type IDWrap struct {
	ulid ulid.ULID
}

func New(u ulid.ULID) IDWrap {
	return IDWrap{ulid: u}
}

func NewNow() IDWrap {
	return IDWrap{ulid: ulid.Make()}
}

func NewText(ulidString string) (IDWrap, error) {
	u, err := ulid.Parse(ulidString)
	if err != nil {
		return IDWrap{}, err
	}
	return IDWrap{ulid: u}, nil
}

func NewFromBytes(data []byte) (IDWrap, error) {
	u := ulid.ULID{}
	err := u.UnmarshalBinary(data)
	return IDWrap{ulid: u}, err
}

func NewTextMust(ulidString string) IDWrap {
	u, err := ulid.Parse(ulidString)
	if err != nil {
		panic(err)
	}
	return IDWrap{ulid: u}
}

func (u IDWrap) String() string {
	return u.ulid.String()
}

func (u IDWrap) Bytes() []byte {
	return u.ulid[:]
}

func (u IDWrap) Compare(id IDWrap) int {
	return u.ulid.Compare(id.ulid)
}

// Time returns the creation time encoded in the ULID.
func (u IDWrap) Time() time.Time {
	return time.UnixMilli(int64(u.ulid.Time()))
}

// SQL driver value
func (u IDWrap) Value() (driver.Value, error) {
	return u.ulid.Value()
}

func (u *IDWrap) Scan(value interface{}) error {
	b, ok := value.([]byte)
	if !ok {
		return ulid.ErrDataSize
	}
	return u.ulid.UnmarshalBinary(b)
}

func (u IDWrap) MarshalJSON() ([]byte, error) {
	return json.Marshal(u.ulid.String())
}

func (u *IDWrap) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	parsed, err := ulid.Parse(s)
	if err != nil {
		return err
	}
	u.ulid = parsed
	return nil
}
