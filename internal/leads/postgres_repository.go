package leads

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// DB is the subset of pgxpool.Pool the repository needs. It allows
// injecting a mock database for testing.
type DB interface {
	Begin(ctx context.Context) (pgx.Tx, error)
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// PostgresRepository stores leads and their notes in the relational
// database. Every mutation is a single atomic statement (plus the
// lead updated_at bump inside the same transaction), so concurrent
// writers never lose each other's notes the way a whole-document
// read-modify-write would.
type PostgresRepository struct {
	db DB
}

// NewPostgresRepository initializes a repo backed by pgxpool.
func NewPostgresRepository(pool *pgxpool.Pool) *PostgresRepository {
	if pool == nil {
		panic("leads: pgx pool required")
	}
	return &PostgresRepository{db: pool}
}

// NewPostgresRepositoryWithDB allows injecting a mock database for testing.
func NewPostgresRepositoryWithDB(db DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

const leadColumns = `id, name, email, phone, source, message, status, created_at, updated_at`

// Create inserts a new lead row. Status is forced to "new".
func (r *PostgresRepository) Create(ctx context.Context, req *CreateLeadRequest) (*Lead, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	id := uuid.New().String()
	query := `
		INSERT INTO leads (id, name, email, phone, source, message, status)
		VALUES ($1, $2, $3, $4, $5, $6, 'new')
		RETURNING created_at, updated_at
	`
	lead := &Lead{
		ID:      id,
		Name:    req.Name,
		Email:   req.Email,
		Phone:   req.Phone,
		Source:  req.Source,
		Message: req.Message,
		Status:  StatusNew,
		Notes:   []Note{},
	}
	if err := r.db.QueryRow(ctx, query,
		id,
		req.Name,
		req.Email,
		req.Phone,
		req.Source,
		req.Message,
	).Scan(&lead.CreatedAt, &lead.UpdatedAt); err != nil {
		return nil, fmt.Errorf("leads: insert failed: %w", err)
	}

	return lead, nil
}

// List returns every lead, newest first, with notes embedded in
// insertion order.
func (r *PostgresRepository) List(ctx context.Context) ([]*Lead, error) {
	query := `SELECT ` + leadColumns + ` FROM leads ORDER BY created_at DESC, id DESC`
	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("leads: select failed: %w", err)
	}
	defer rows.Close()

	var out []*Lead
	byID := make(map[string]*Lead)
	for rows.Next() {
		lead, err := scanLead(rows)
		if err != nil {
			return nil, fmt.Errorf("leads: scan failed: %w", err)
		}
		out = append(out, lead)
		byID[lead.ID] = lead
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("leads: select failed: %w", err)
	}
	if len(out) == 0 {
		return []*Lead{}, nil
	}

	noteRows, err := r.db.Query(ctx, `
		SELECT lead_id, id, text, created_at, updated_at
		FROM notes ORDER BY seq ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("leads: select notes failed: %w", err)
	}
	defer noteRows.Close()

	for noteRows.Next() {
		var leadID string
		var note Note
		if err := noteRows.Scan(&leadID, &note.ID, &note.Text, &note.CreatedAt, &note.UpdatedAt); err != nil {
			return nil, fmt.Errorf("leads: scan note failed: %w", err)
		}
		if lead, ok := byID[leadID]; ok {
			lead.Notes = append(lead.Notes, note)
		}
	}
	if err := noteRows.Err(); err != nil {
		return nil, fmt.Errorf("leads: select notes failed: %w", err)
	}

	return out, nil
}

// GetByID fetches one lead with its notes.
func (r *PostgresRepository) GetByID(ctx context.Context, id string) (*Lead, error) {
	row := r.db.QueryRow(ctx, `SELECT `+leadColumns+` FROM leads WHERE id = $1`, id)
	lead, err := scanLead(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrLeadNotFound
		}
		return nil, fmt.Errorf("leads: select failed: %w", err)
	}

	if err := r.loadNotes(ctx, lead); err != nil {
		return nil, err
	}
	return lead, nil
}

// UpdateStatus sets the funnel stage in a single statement. Invalid
// statuses never reach the database.
func (r *PostgresRepository) UpdateStatus(ctx context.Context, id string, status Status) (*Lead, error) {
	if !status.Valid() {
		return nil, ErrInvalidStatus
	}

	row := r.db.QueryRow(ctx, `
		UPDATE leads SET status = $2, updated_at = now()
		WHERE id = $1
		RETURNING `+leadColumns, id, status)
	lead, err := scanLead(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrLeadNotFound
		}
		return nil, fmt.Errorf("leads: update status failed: %w", err)
	}

	if err := r.loadNotes(ctx, lead); err != nil {
		return nil, err
	}
	return lead, nil
}

// AddNote appends a note. The bigserial seq column preserves append
// order; two concurrent appends both survive as separate inserts.
func (r *PostgresRepository) AddNote(ctx context.Context, id, text string) (*Lead, error) {
	req := NoteRequest{Text: text}
	if err := req.Validate(); err != nil {
		return nil, err
	}

	err := r.inLeadTx(ctx, id, func(tx pgx.Tx) error {
		_, err := tx.Exec(ctx, `
			INSERT INTO notes (id, lead_id, text)
			VALUES ($1, $2, $3)
		`, uuid.New().String(), id, req.Text)
		if err != nil {
			return fmt.Errorf("leads: insert note failed: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return r.GetByID(ctx, id)
}

// UpdateNote replaces the text of one note, leaving seq and therefore
// the ordering untouched.
func (r *PostgresRepository) UpdateNote(ctx context.Context, id, noteID, text string) (*Lead, error) {
	req := NoteRequest{Text: text}
	if err := req.Validate(); err != nil {
		return nil, err
	}

	err := r.inLeadTx(ctx, id, func(tx pgx.Tx) error {
		tag, err := tx.Exec(ctx, `
			UPDATE notes SET text = $3, updated_at = now()
			WHERE lead_id = $1 AND id = $2
		`, id, noteID, req.Text)
		if err != nil {
			return fmt.Errorf("leads: update note failed: %w", err)
		}
		if tag.RowsAffected() == 0 {
			return ErrNoteNotFound
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return r.GetByID(ctx, id)
}

// DeleteNote removes one note. A missing note id rolls the whole
// transaction back, so the lead is untouched.
func (r *PostgresRepository) DeleteNote(ctx context.Context, id, noteID string) (*Lead, error) {
	err := r.inLeadTx(ctx, id, func(tx pgx.Tx) error {
		tag, err := tx.Exec(ctx, `
			DELETE FROM notes WHERE lead_id = $1 AND id = $2
		`, id, noteID)
		if err != nil {
			return fmt.Errorf("leads: delete note failed: %w", err)
		}
		if tag.RowsAffected() == 0 {
			return ErrNoteNotFound
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return r.GetByID(ctx, id)
}

// inLeadTx runs fn in a transaction that first bumps the lead's
// updated_at. Zero rows on the bump means the lead does not exist.
func (r *PostgresRepository) inLeadTx(ctx context.Context, id string, fn func(tx pgx.Tx) error) error {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("leads: begin failed: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	tag, err := tx.Exec(ctx, `UPDATE leads SET updated_at = now() WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("leads: touch lead failed: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrLeadNotFound
	}

	if err := fn(tx); err != nil {
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("leads: commit failed: %w", err)
	}
	return nil
}

func (r *PostgresRepository) loadNotes(ctx context.Context, lead *Lead) error {
	rows, err := r.db.Query(ctx, `
		SELECT id, text, created_at, updated_at
		FROM notes WHERE lead_id = $1 ORDER BY seq ASC
	`, lead.ID)
	if err != nil {
		return fmt.Errorf("leads: select notes failed: %w", err)
	}
	defer rows.Close()

	lead.Notes = []Note{}
	for rows.Next() {
		var note Note
		if err := rows.Scan(&note.ID, &note.Text, &note.CreatedAt, &note.UpdatedAt); err != nil {
			return fmt.Errorf("leads: scan note failed: %w", err)
		}
		lead.Notes = append(lead.Notes, note)
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("leads: select notes failed: %w", err)
	}
	return nil
}

func scanLead(row pgx.Row) (*Lead, error) {
	var lead Lead
	if err := row.Scan(
		&lead.ID,
		&lead.Name,
		&lead.Email,
		&lead.Phone,
		&lead.Source,
		&lead.Message,
		&lead.Status,
		&lead.CreatedAt,
		&lead.UpdatedAt,
	); err != nil {
		return nil, err
	}
	lead.Notes = []Note{}
	return &lead, nil
}
