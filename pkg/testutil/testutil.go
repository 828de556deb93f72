// Package testutil bootstraps an in-memory database and the base services
// for tests that exercise real SQL.
package testutil

import (
	"context"
	"database/sql"
	"testing"

	"taskboard-backend/internal/api/middleware/mwauth"
	"taskboard-backend/pkg/db"
	"taskboard-backend/pkg/dbtime"
	"taskboard-backend/pkg/idwrap"
	"taskboard-backend/pkg/model/mboard"
	"taskboard-backend/pkg/model/mcard"
	"taskboard-backend/pkg/model/mlane"
	"taskboard-backend/pkg/service/sboard"
	"taskboard-backend/pkg/service/scard"
	"taskboard-backend/pkg/service/schecklist"
	"taskboard-backend/pkg/service/slane"
	"taskboard-backend/pkg/service/suser"
)

type BaseDB struct {
	DB  *sql.DB
	t   *testing.T
	ctx context.Context
}

type BaseTestServices struct {
	Ctx context.Context
	DB  *sql.DB
	Bs  sboard.BoardService
	Ls  slane.LaneService
	Cs  scard.CardService
	Chs schecklist.ChecklistService
	Us  suser.UserService
}

func CreateBaseDB(ctx context.Context, t *testing.T) *BaseDB {
	conn, err := db.NewLocal(":memory:")
	if err != nil {
		t.Fatal(err)
	}
	if err := db.Init(conn); err != nil {
		t.Fatal(err)
	}
	return &BaseDB{DB: conn, t: t, ctx: ctx}
}

func (c BaseDB) GetBaseServices() BaseTestServices {
	return BaseTestServices{
		Ctx: c.ctx,
		DB:  c.DB,
		Bs:  sboard.New(c.DB),
		Ls:  slane.New(c.DB),
		Cs:  scard.New(c.DB),
		Chs: schecklist.New(c.DB),
		Us:  suser.New(c.DB),
	}
}

func (c BaseDB) Close() {
	c.DB.Close()
}

func (c BaseTestServices) CreateAuthedCtx(userID idwrap.IDWrap) context.Context {
	return mwauth.CreateAuthedContext(c.Ctx, userID)
}

// CreateTempBoard seeds a board with one lane so card tests have a container
// to work against.
func (c BaseTestServices) CreateTempBoard(t *testing.T, ctx context.Context, boardID, laneID idwrap.IDWrap) {
	boardData := mboard.Board{
		ID:        boardID,
		Name:      "test",
		CreatedAt: dbtime.DBNow(),
	}
	if err := c.Bs.CreateBoard(ctx, &boardData); err != nil {
		t.Fatal(err)
	}

	laneData := mlane.Lane{
		ID:      laneID,
		BoardID: boardID,
		Title:   "test",
		Order:   0,
	}
	if err := c.Ls.CreateLane(ctx, &laneData); err != nil {
		t.Fatal(err)
	}

	boardGet, err := c.Bs.GetBoard(ctx, boardID)
	if err != nil {
		t.Fatal(err)
	}
	if boardGet == nil {
		t.Fatal("Board not found")
	}
}

// SeedCards inserts cards into a lane with orders 0..n-1 in slice order.
func (c BaseTestServices) SeedCards(t *testing.T, ctx context.Context, laneID idwrap.IDWrap, titles ...string) []mcard.Card {
	cards := make([]mcard.Card, 0, len(titles))
	for i, title := range titles {
		card := mcard.Card{
			ID:       idwrap.NewNow(),
			LaneID:   laneID,
			Title:    title,
			Priority: mcard.PriorityMedium,
			Order:    int64(i),
		}
		if err := c.Cs.CreateCard(ctx, &card); err != nil {
			t.Fatal(err)
		}
		cards = append(cards, card)
	}
	return cards
}
