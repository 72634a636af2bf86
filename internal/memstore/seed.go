package memstore

import (
	"strings"

	"kycflow/internal/model"
)

// DefaultRoles mirrors the roles the initial migration inserts
var DefaultRoles = []model.Role{
	{ID: "role_applicant", Name: "Applicant", Permissions: []string{"submit_kyc_request"}},
	{ID: "role_worker", Name: "Worker", Permissions: []string{"verify_kyc", "view_kyc"}},
	{ID: "role_supervisor", Name: "Supervisor", Permissions: []string{"assign_kyc", "view_kyc", "get_workers"}},
	{ID: "role_admin", Name: "Admin", Permissions: []string{"create_worker", "create_supervisor", "get_workers", "get_supervisors", "view_roles", "view_kyc"}},
}

// Seed loads the default roles and one demo user per role, with ids
// demo-applicant, demo-worker, demo-supervisor and demo-admin.
func (s *Store) Seed() {
	for _, r := range DefaultRoles {
		s.PutRole(r)
		s.PutUser(model.Actor{
			ID:          "demo-" + strings.ToLower(r.Name),
			Role:        r.Name,
			Permissions: model.NewPermissionSet(r.Permissions),
			FirstName:   "Demo",
			LastName:    r.Name,
			Email:       "demo-" + strings.ToLower(r.Name) + "@kycflow.local",
		})
	}
}
