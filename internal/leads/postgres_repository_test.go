package leads

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/pashagolub/pgxmock/v4"
)

func newMockRepo(t *testing.T) (pgxmock.PgxPoolIface, *PostgresRepository) {
	t.Helper()
	mock, err := pgxmock.NewPool()
	if err != nil {
		t.Fatalf("pgxmock: %v", err)
	}
	t.Cleanup(mock.Close)
	return mock, NewPostgresRepositoryWithDB(mock)
}

func expectLeadReload(mock pgxmock.PgxPoolIface, id string, now time.Time, notes *pgxmock.Rows) {
	mock.ExpectQuery(`SELECT (.+) FROM leads WHERE id`).
		WithArgs(id).
		WillReturnRows(pgxmock.NewRows([]string{
			"id", "name", "email", "phone", "source", "message", "status", "created_at", "updated_at",
		}).AddRow(id, "Ann Lee", "ann@x.com", "", "Website", "", StatusNew, now, now))
	mock.ExpectQuery(`SELECT id, text, created_at, updated_at\s+FROM notes`).
		WithArgs(id).
		WillReturnRows(notes)
}

func TestPostgresCreate(t *testing.T) {
	mock, repo := newMockRepo(t)
	now := time.Now().UTC()

	mock.ExpectQuery(`INSERT INTO leads`).
		WithArgs(pgxmock.AnyArg(), "Jane Smith", "jane@example.com", "+1987654321", "Referral", "hello").
		WillReturnRows(pgxmock.NewRows([]string{"created_at", "updated_at"}).AddRow(now, now))

	lead, err := repo.Create(context.Background(), &CreateLeadRequest{
		Name:    "Jane Smith",
		Email:   "jane@example.com",
		Phone:   "+1987654321",
		Source:  "Referral",
		Message: "hello",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if lead.Status != StatusNew || len(lead.Notes) != 0 {
		t.Fatalf("fresh lead must be new with no notes, got %+v", lead)
	}
	if !lead.CreatedAt.Equal(now) {
		t.Fatalf("expected returned created_at, got %s", lead.CreatedAt)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatal(err)
	}
}

func TestPostgresCreateValidationSkipsSQL(t *testing.T) {
	_, repo := newMockRepo(t)
	if _, err := repo.Create(context.Background(), &CreateLeadRequest{Email: "x@x.com"}); !errors.Is(err, ErrInvalidName) {
		t.Fatalf("expected ErrInvalidName, got %v", err)
	}
}

func TestPostgresUpdateStatus(t *testing.T) {
	mock, repo := newMockRepo(t)
	now := time.Now().UTC()
	id := "11111111-1111-1111-1111-111111111111"

	mock.ExpectQuery(`UPDATE leads SET status`).
		WithArgs(id, StatusContacted).
		WillReturnRows(pgxmock.NewRows([]string{
			"id", "name", "email", "phone", "source", "message", "status", "created_at", "updated_at",
		}).AddRow(id, "Ann Lee", "ann@x.com", "", "Website", "", StatusContacted, now, now))
	mock.ExpectQuery(`SELECT id, text, created_at, updated_at\s+FROM notes`).
		WithArgs(id).
		WillReturnRows(pgxmock.NewRows([]string{"id", "text", "created_at", "updated_at"}))

	lead, err := repo.UpdateStatus(context.Background(), id, StatusContacted)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if lead.Status != StatusContacted {
		t.Fatalf("expected contacted, got %s", lead.Status)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatal(err)
	}
}

func TestPostgresUpdateStatusNotFound(t *testing.T) {
	mock, repo := newMockRepo(t)
	mock.ExpectQuery(`UPDATE leads SET status`).
		WithArgs("missing", StatusLost).
		WillReturnError(pgx.ErrNoRows)

	if _, err := repo.UpdateStatus(context.Background(), "missing", StatusLost); !errors.Is(err, ErrLeadNotFound) {
		t.Fatalf("expected ErrLeadNotFound, got %v", err)
	}
}

func TestPostgresUpdateStatusInvalidSkipsSQL(t *testing.T) {
	_, repo := newMockRepo(t)
	if _, err := repo.UpdateStatus(context.Background(), "any", Status("archived")); !errors.Is(err, ErrInvalidStatus) {
		t.Fatalf("expected ErrInvalidStatus, got %v", err)
	}
}

func TestPostgresAddNote(t *testing.T) {
	mock, repo := newMockRepo(t)
	now := time.Now().UTC()
	id := "11111111-1111-1111-1111-111111111111"

	mock.ExpectBegin()
	mock.ExpectExec(`UPDATE leads SET updated_at`).
		WithArgs(id).
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))
	mock.ExpectExec(`INSERT INTO notes`).
		WithArgs(pgxmock.AnyArg(), id, "Called, left voicemail").
		WillReturnResult(pgxmock.NewResult("INSERT", 1))
	mock.ExpectCommit()
	expectLeadReload(mock, id, now,
		pgxmock.NewRows([]string{"id", "text", "created_at", "updated_at"}).
			AddRow("n1", "Called, left voicemail", now, now))

	lead, err := repo.AddNote(context.Background(), id, "Called, left voicemail")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(lead.Notes) != 1 || lead.Notes[0].Text != "Called, left voicemail" {
		t.Fatalf("expected appended note, got %+v", lead.Notes)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatal(err)
	}
}

func TestPostgresAddNoteLeadMissing(t *testing.T) {
	mock, repo := newMockRepo(t)

	mock.ExpectBegin()
	mock.ExpectExec(`UPDATE leads SET updated_at`).
		WithArgs("missing").
		WillReturnResult(pgxmock.NewResult("UPDATE", 0))
	mock.ExpectRollback()

	if _, err := repo.AddNote(context.Background(), "missing", "hello"); !errors.Is(err, ErrLeadNotFound) {
		t.Fatalf("expected ErrLeadNotFound, got %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatal(err)
	}
}

func TestPostgresUpdateNote(t *testing.T) {
	mock, repo := newMockRepo(t)
	now := time.Now().UTC()
	id := "11111111-1111-1111-1111-111111111111"

	mock.ExpectBegin()
	mock.ExpectExec(`UPDATE leads SET updated_at`).
		WithArgs(id).
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))
	mock.ExpectExec(`UPDATE notes SET text`).
		WithArgs(id, "n1", "Reached them").
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))
	mock.ExpectCommit()
	expectLeadReload(mock, id, now,
		pgxmock.NewRows([]string{"id", "text", "created_at", "updated_at"}).
			AddRow("n1", "Reached them", now, now))

	lead, err := repo.UpdateNote(context.Background(), id, "n1", "Reached them")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if lead.Notes[0].Text != "Reached them" {
		t.Fatalf("expected edited note, got %+v", lead.Notes)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatal(err)
	}
}

func TestPostgresDeleteNoteMissingRollsBack(t *testing.T) {
	mock, repo := newMockRepo(t)
	id := "11111111-1111-1111-1111-111111111111"

	mock.ExpectBegin()
	mock.ExpectExec(`UPDATE leads SET updated_at`).
		WithArgs(id).
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))
	mock.ExpectExec(`DELETE FROM notes`).
		WithArgs(id, "missing-note").
		WillReturnResult(pgxmock.NewResult("DELETE", 0))
	mock.ExpectRollback()

	if _, err := repo.DeleteNote(context.Background(), id, "missing-note"); !errors.Is(err, ErrNoteNotFound) {
		t.Fatalf("expected ErrNoteNotFound, got %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatal(err)
	}
}

func TestPostgresList(t *testing.T) {
	mock, repo := newMockRepo(t)
	now := time.Now().UTC()

	mock.ExpectQuery(`SELECT (.+) FROM leads ORDER BY created_at DESC`).
		WillReturnRows(pgxmock.NewRows([]string{
			"id", "name", "email", "phone", "source", "message", "status", "created_at", "updated_at",
		}).
			AddRow("l2", "Newer", "b@x.com", "", "Website", "", StatusNew, now, now).
			AddRow("l1", "Older", "a@x.com", "", "Referral", "", StatusConverted, now.Add(-time.Hour), now.Add(-time.Hour)))
	mock.ExpectQuery(`SELECT lead_id, id, text, created_at, updated_at\s+FROM notes ORDER BY seq`).
		WillReturnRows(pgxmock.NewRows([]string{"lead_id", "id", "text", "created_at", "updated_at"}).
			AddRow("l1", "n1", "first", now, now).
			AddRow("l1", "n2", "second", now, now))

	list, err := repo.List(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(list) != 2 {
		t.Fatalf("expected 2 leads, got %d", len(list))
	}
	if list[0].ID != "l2" || len(list[0].Notes) != 0 {
		t.Fatalf("unexpected first lead %+v", list[0])
	}
	if len(list[1].Notes) != 2 || list[1].Notes[0].Text != "first" || list[1].Notes[1].Text != "second" {
		t.Fatalf("expected notes grouped in seq order, got %+v", list[1].Notes)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatal(err)
	}
}

func TestPostgresGetByIDNotFound(t *testing.T) {
	mock, repo := newMockRepo(t)
	mock.ExpectQuery(`SELECT (.+) FROM leads WHERE id`).
		WithArgs("missing").
		WillReturnError(pgx.ErrNoRows)

	if _, err := repo.GetByID(context.Background(), "missing"); !errors.Is(err, ErrLeadNotFound) {
		t.Fatalf("expected ErrLeadNotFound, got %v", err)
	}
}
