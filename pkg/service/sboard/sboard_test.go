package sboard_test

import (
	"context"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"

	"taskboard-backend/pkg/dbtime"
	"taskboard-backend/pkg/idwrap"
	"taskboard-backend/pkg/model/mboard"
	"taskboard-backend/pkg/service/sboard"
)

func TestCreateBoard(t *testing.T) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherEqual))
	if err != nil {
		t.Fatal(err)
	}
	defer db.Close()
	query := `
		INSERT INTO boards (id, name, created_at)
		VALUES (?, ?, ?)
	`

	board := &mboard.Board{
		ID:        idwrap.NewNow(),
		Name:      "Roadmap",
		CreatedAt: dbtime.DBNow(),
	}

	mock.ExpectExec(query).
		WithArgs(board.ID, board.Name, board.CreatedAt).
		WillReturnResult(sqlmock.NewResult(1, 1))

	bs := sboard.New(db)
	err = bs.CreateBoard(context.Background(), board)
	if err != nil {
		t.Fatal(err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatal(err)
	}
}

func TestGetBoard(t *testing.T) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherEqual))
	if err != nil {
		t.Fatal(err)
	}
	defer db.Close()
	query := `
		SELECT id, name, created_at
		FROM boards
		WHERE id = ?
	`

	id := idwrap.NewNow()
	createdAt := dbtime.DBNow()

	mock.ExpectQuery(query).
		WithArgs(id).
		WillReturnRows(sqlmock.NewRows([]string{"id", "name", "created_at"}).
			AddRow(id.Bytes(), "Roadmap", createdAt))

	bs := sboard.New(db)
	boardReturned, err := bs.GetBoard(context.Background(), id)
	if err != nil {
		t.Fatal(err)
	}
	if boardReturned.ID.Compare(id) != 0 {
		t.Fatal("ID not matching")
	}
	if boardReturned.Name != "Roadmap" {
		t.Fatal("Name not matching")
	}
}

func TestUpdateBoardMissing(t *testing.T) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherEqual))
	if err != nil {
		t.Fatal(err)
	}
	defer db.Close()
	query := `
		UPDATE boards
		SET name = ?
		WHERE id = ?
	`

	id := idwrap.NewNow()
	mock.ExpectExec(query).
		WithArgs("renamed", id).
		WillReturnResult(sqlmock.NewResult(0, 0))

	bs := sboard.New(db)
	err = bs.UpdateBoard(context.Background(), id, "renamed")
	if err != sboard.ErrNoBoardFound {
		t.Fatalf("expected ErrNoBoardFound, got %v", err)
	}
}

func TestDeleteBoardMissing(t *testing.T) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherEqual))
	if err != nil {
		t.Fatal(err)
	}
	defer db.Close()
	query := `
		DELETE FROM boards
		WHERE id = ?
	`

	id := idwrap.NewNow()
	mock.ExpectExec(query).
		WithArgs(id).
		WillReturnResult(sqlmock.NewResult(0, 0))

	bs := sboard.New(db)
	err = bs.DeleteBoard(context.Background(), id)
	if err != sboard.ErrNoBoardFound {
		t.Fatalf("expected ErrNoBoardFound, got %v", err)
	}
}
