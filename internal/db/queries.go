package db

import (
	"context"
	"errors"
	"fmt"
	"time"

	"kycflow/internal/model"
	"kycflow/internal/sentinel"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

const (
	uniqueViolation   = "23505"
	openCaseIndexName = "kyc_cases_one_open_per_applicant"
)

// Queries wraps database queries
type Queries struct {
	*pgxpool.Pool
}

// NewQueries creates a new Queries instance
func NewQueries(pool *pgxpool.Pool) *Queries {
	return &Queries{Pool: pool}
}

const caseColumns = `id, applicant_id, status, document_ids, assigner_id, worker_id,
	valid_until, ai_status, message, created_at, updated_at`

// lockApplicant holds the applicant's advisory lock until the transaction
// ends. Case creation and status decisions take it so the gates always read a
// committed decision.
func lockApplicant(ctx context.Context, tx pgx.Tx, applicantID string) error {
	if _, err := tx.Exec(ctx, "SELECT pg_advisory_xact_lock(hashtext($1::text))", applicantID); err != nil {
		return fmt.Errorf("failed to lock applicant: %w", err)
	}
	return nil
}

// CreateCase inserts the documents and the case in one transaction under the
// applicant lock. The open case gate is the partial unique index; the
// still-valid gate is the NOT EXISTS guard.
func (q *Queries) CreateCase(ctx context.Context, nc model.NewCase) (model.Case, error) {
	tx, err := q.Pool.Begin(ctx)
	if err != nil {
		return model.Case{}, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	if err := lockApplicant(ctx, tx, nc.ApplicantID); err != nil {
		return model.Case{}, err
	}

	documentIDs := make([]string, 0, len(nc.Documents))
	for _, d := range nc.Documents {
		if _, err := tx.Exec(ctx,
			"INSERT INTO documents (id, type, location, created_at, updated_at) VALUES ($1, $2, $3, $4, $4)",
			d.ID, string(d.Type), d.Location, nc.Now,
		); err != nil {
			return model.Case{}, fmt.Errorf("failed to insert document: %w", err)
		}
		documentIDs = append(documentIDs, d.ID)
	}

	row := tx.QueryRow(ctx,
		`INSERT INTO kyc_cases (id, applicant_id, status, document_ids, created_at, updated_at)
		SELECT $1::text, $2::text, $3::text, $4::text[], $5::timestamptz, $5::timestamptz
		WHERE NOT EXISTS (
			SELECT 1 FROM kyc_cases
			WHERE applicant_id = $2::text AND status = $6::text AND valid_until > $5::timestamptz
		)
		RETURNING `+caseColumns,
		nc.ID, nc.ApplicantID, string(model.StatusPending), documentIDs, nc.Now, string(model.StatusCompleted),
	)
	c, err := scanCase(row)
	if err != nil {
		var pgErr *pgconn.PgError
		switch {
		case errors.Is(err, pgx.ErrNoRows):
			return model.Case{}, sentinel.ErrStillValid
		case errors.As(err, &pgErr) && pgErr.Code == uniqueViolation && pgErr.ConstraintName == openCaseIndexName:
			return model.Case{}, sentinel.ErrActiveRequest
		}
		return model.Case{}, fmt.Errorf("failed to insert case: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation && pgErr.ConstraintName == openCaseIndexName {
			return model.Case{}, sentinel.ErrActiveRequest
		}
		return model.Case{}, fmt.Errorf("failed to commit case: %w", err)
	}
	return c, nil
}

func (q *Queries) GetCase(ctx context.Context, id string) (model.Case, error) {
	c, err := scanCase(q.Pool.QueryRow(ctx, "SELECT "+caseColumns+" FROM kyc_cases WHERE id = $1", id))
	if errors.Is(err, pgx.ErrNoRows) {
		return model.Case{}, sentinel.ErrNotFound
	}
	return c, err
}

// UpdateCaseStatus moves an open case to status under the applicant lock.
// Completion stamps valid_until in the same statement.
func (q *Queries) UpdateCaseStatus(ctx context.Context, id string, status model.Status, message *string, now time.Time) (model.Case, error) {
	var validUntil *time.Time
	if status == model.StatusCompleted {
		v := now.Add(model.ValidityWindow)
		validUntil = &v
	}

	tx, err := q.Pool.Begin(ctx)
	if err != nil {
		return model.Case{}, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	var applicantID string
	err = tx.QueryRow(ctx, "SELECT applicant_id FROM kyc_cases WHERE id = $1", id).Scan(&applicantID)
	if errors.Is(err, pgx.ErrNoRows) {
		return model.Case{}, sentinel.ErrNotFound
	}
	if err != nil {
		return model.Case{}, fmt.Errorf("failed to load case: %w", err)
	}
	if err := lockApplicant(ctx, tx, applicantID); err != nil {
		return model.Case{}, err
	}

	c, err := scanCase(tx.QueryRow(ctx,
		`UPDATE kyc_cases
		SET status = $2,
			message = COALESCE($3, message),
			valid_until = COALESCE($4, valid_until),
			updated_at = $5
		WHERE id = $1 AND status IN ($6, $7)
		RETURNING `+caseColumns,
		id, string(status), message, validUntil, now,
		string(model.StatusPending), string(model.StatusInProgress),
	))
	if errors.Is(err, pgx.ErrNoRows) {
		return model.Case{}, q.explainMissedUpdate(ctx, id)
	}
	if err != nil {
		return model.Case{}, err
	}

	if err := tx.Commit(ctx); err != nil {
		return model.Case{}, fmt.Errorf("failed to commit status: %w", err)
	}
	return c, nil
}

func (q *Queries) UpdateCaseAIStatus(ctx context.Context, id string, aiStatus model.AIStatus, message *string, now time.Time) (model.Case, error) {
	c, err := scanCase(q.Pool.QueryRow(ctx,
		`UPDATE kyc_cases
		SET ai_status = $2, message = COALESCE($3, message), updated_at = $4
		WHERE id = $1
		RETURNING `+caseColumns,
		id, string(aiStatus), message, now,
	))
	if errors.Is(err, pgx.ErrNoRows) {
		return model.Case{}, sentinel.ErrNotFound
	}
	return c, err
}

// BindAssignment sets assigner and worker only while the case is pending and
// unassigned.
func (q *Queries) BindAssignment(ctx context.Context, id, supervisorID, workerID string, now time.Time) (model.Case, error) {
	c, err := scanCase(q.Pool.QueryRow(ctx,
		`UPDATE kyc_cases
		SET assigner_id = $2, worker_id = $3, status = $4, updated_at = $5
		WHERE id = $1 AND worker_id IS NULL AND status = $6
		RETURNING `+caseColumns,
		id, supervisorID, workerID, string(model.StatusInProgress), now, string(model.StatusPending),
	))
	if errors.Is(err, pgx.ErrNoRows) {
		return model.Case{}, q.explainMissedUpdate(ctx, id)
	}
	return c, err
}

// explainMissedUpdate classifies a conditional update that touched no rows
func (q *Queries) explainMissedUpdate(ctx context.Context, id string) error {
	var status string
	var workerID *string
	err := q.Pool.QueryRow(ctx, "SELECT status, worker_id FROM kyc_cases WHERE id = $1", id).Scan(&status, &workerID)
	if errors.Is(err, pgx.ErrNoRows) {
		return sentinel.ErrNotFound
	}
	if err != nil {
		return err
	}
	if workerID != nil && model.Status(status).Open() {
		return sentinel.ErrAlreadyAssigned
	}
	return sentinel.ErrInvalidState
}

var sortColumns = map[model.SortKey]string{
	model.SortByCreatedAt:  "created_at",
	model.SortByUpdatedAt:  "updated_at",
	model.SortByStatus:     "status",
	model.SortByValidUntil: "valid_until",
}

func (q *Queries) ListCases(ctx context.Context, params model.ListParams) ([]model.Case, int64, error) {
	params = params.Normalize()
	column := sortColumns[params.SortKey]
	dir := "ASC"
	if params.SortDir == model.SortDesc {
		dir = "DESC"
	}

	where := ""
	args := []interface{}{}
	if params.ApplicantID != nil {
		where = "WHERE applicant_id = $1"
		args = append(args, *params.ApplicantID)
	}

	var total int64
	if err := q.Pool.QueryRow(ctx, "SELECT COUNT(*) FROM kyc_cases "+where, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count cases: %w", err)
	}

	query := fmt.Sprintf(
		"SELECT %s FROM kyc_cases %s ORDER BY %s %s NULLS LAST, id %s LIMIT $%d OFFSET $%d",
		caseColumns, where, column, dir, dir, len(args)+1, len(args)+2,
	)
	args = append(args, params.Limit, params.Offset())

	rows, err := q.Pool.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	cases := make([]model.Case, 0)
	for rows.Next() {
		c, err := scanCase(rows)
		if err != nil {
			return nil, 0, err
		}
		cases = append(cases, c)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}
	return cases, total, nil
}

func (q *Queries) CountByStatus(ctx context.Context, applicantID *string) (model.StatusCounts, error) {
	var rows pgx.Rows
	var err error
	if applicantID != nil {
		rows, err = q.Pool.Query(ctx,
			"SELECT status, COUNT(*) FROM kyc_cases WHERE applicant_id = $1 GROUP BY status",
			*applicantID,
		)
	} else {
		rows, err = q.Pool.Query(ctx, "SELECT status, COUNT(*) FROM kyc_cases GROUP BY status")
	}
	if err != nil {
		return model.StatusCounts{}, err
	}
	defer rows.Close()

	var counts model.StatusCounts
	for rows.Next() {
		var status string
		var n int64
		if err := rows.Scan(&status, &n); err != nil {
			return model.StatusCounts{}, err
		}
		counts.Add(model.Status(status), n)
	}
	return counts, rows.Err()
}

func scanCase(row pgx.Row) (model.Case, error) {
	var c model.Case
	var status string
	var aiStatus *string
	err := row.Scan(
		&c.ID, &c.ApplicantID, &status, &c.DocumentIDs, &c.AssignerID, &c.WorkerID,
		&c.ValidUntil, &aiStatus, &c.Message, &c.CreatedAt, &c.UpdatedAt,
	)
	if err != nil {
		return model.Case{}, err
	}
	c.Status = model.Status(status)
	if aiStatus != nil {
		s := model.AIStatus(*aiStatus)
		c.AIStatus = &s
	}
	if c.DocumentIDs == nil {
		c.DocumentIDs = []string{}
	}
	return c, nil
}
