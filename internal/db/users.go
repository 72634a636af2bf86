package db

import (
	"context"
	"errors"

	"kycflow/internal/model"
	"kycflow/internal/sentinel"

	"github.com/jackc/pgx/v5"
)

// User queries. Users and roles are owned by the identity service; this
// service only reads them and appends to assigned_cases.

func (q *Queries) GetUser(ctx context.Context, id string) (model.Actor, error) {
	var a model.Actor
	var permissions []string
	var firstName, lastName, address *string
	err := q.Pool.QueryRow(ctx,
		`SELECT u.id, r.name, r.permissions, u.first_name, u.last_name, u.email, u.address, u.assigned_cases
		FROM users u
		JOIN roles r ON r.id = u.role_id
		WHERE u.id = $1`,
		id,
	).Scan(&a.ID, &a.Role, &permissions, &firstName, &lastName, &a.Email, &address, &a.AssignedCases)
	if errors.Is(err, pgx.ErrNoRows) {
		return model.Actor{}, sentinel.ErrNotFound
	}
	if err != nil {
		return model.Actor{}, err
	}
	a.Permissions = model.NewPermissionSet(permissions)
	a.FirstName = deref(firstName)
	a.LastName = deref(lastName)
	a.Address = deref(address)
	return a, nil
}

// AppendAssignedCase adds caseID to the user's assigned cases once
func (q *Queries) AppendAssignedCase(ctx context.Context, userID, caseID string) error {
	result, err := q.Pool.Exec(ctx,
		`UPDATE users
		SET assigned_cases = CASE WHEN $2::text = ANY(assigned_cases) THEN assigned_cases ELSE array_append(assigned_cases, $2::text) END,
			updated_at = NOW()
		WHERE id = $1`,
		userID, caseID,
	)
	if err != nil {
		return err
	}
	if result.RowsAffected() == 0 {
		return sentinel.ErrNotFound
	}
	return nil
}

func (q *Queries) GetRoleByName(ctx context.Context, name string) (model.Role, error) {
	var r model.Role
	err := q.Pool.QueryRow(ctx,
		"SELECT id, name, permissions FROM roles WHERE name = $1",
		name,
	).Scan(&r.ID, &r.Name, &r.Permissions)
	if errors.Is(err, pgx.ErrNoRows) {
		return model.Role{}, sentinel.ErrNotFound
	}
	return r, err
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
