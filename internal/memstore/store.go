// Package memstore is an in-memory implementation of the case, document and
// user stores. A single mutex gives every operation the same atomicity the
// Postgres statements provide.
package memstore

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"kycflow/internal/model"
	"kycflow/internal/sentinel"
)

type Store struct {
	mu        sync.Mutex
	cases     map[string]model.Case
	documents map[string]model.Document
	users     map[string]model.Actor
	roles     map[string]model.Role
}

func New() *Store {
	return &Store{
		cases:     make(map[string]model.Case),
		documents: make(map[string]model.Document),
		users:     make(map[string]model.Actor),
		roles:     make(map[string]model.Role),
	}
}

// PutUser registers or replaces a user record
func (s *Store) PutUser(a model.Actor) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if a.Permissions == nil {
		a.Permissions = map[model.Permission]struct{}{}
	}
	s.users[a.ID] = a
}

// PutRole registers or replaces a role
func (s *Store) PutRole(r model.Role) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.roles[r.Name] = r
}

// PutCase stores c as-is, bypassing the creation gate
func (s *Store) PutCase(c model.Case) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cases[c.ID] = cloneCase(c)
}

func (s *Store) CreateCase(ctx context.Context, nc model.NewCase) (model.Case, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, c := range s.cases {
		if c.ApplicantID != nc.ApplicantID {
			continue
		}
		if c.Status.Open() {
			return model.Case{}, sentinel.ErrActiveRequest
		}
		if c.StillValid(nc.Now) {
			return model.Case{}, sentinel.ErrStillValid
		}
	}

	ids := make([]string, 0, len(nc.Documents))
	for _, d := range nc.Documents {
		d.CreatedAt = nc.Now
		s.documents[d.ID] = d
		ids = append(ids, d.ID)
	}

	c := model.Case{
		ID:          nc.ID,
		ApplicantID: nc.ApplicantID,
		Status:      model.StatusPending,
		DocumentIDs: ids,
		CreatedAt:   nc.Now,
		UpdatedAt:   nc.Now,
	}
	s.cases[c.ID] = c
	return cloneCase(c), nil
}

func (s *Store) GetCase(ctx context.Context, id string) (model.Case, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.cases[id]
	if !ok {
		return model.Case{}, sentinel.ErrNotFound
	}
	return cloneCase(c), nil
}

func (s *Store) UpdateCaseStatus(ctx context.Context, id string, status model.Status, message *string, now time.Time) (model.Case, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.cases[id]
	if !ok {
		return model.Case{}, sentinel.ErrNotFound
	}
	if !c.Status.Open() {
		return model.Case{}, sentinel.ErrInvalidState
	}
	c.Status = status
	if message != nil {
		m := *message
		c.Message = &m
	}
	if status == model.StatusCompleted {
		v := now.Add(model.ValidityWindow)
		c.ValidUntil = &v
	}
	c.UpdatedAt = now
	s.cases[id] = c
	return cloneCase(c), nil
}

func (s *Store) UpdateCaseAIStatus(ctx context.Context, id string, aiStatus model.AIStatus, message *string, now time.Time) (model.Case, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.cases[id]
	if !ok {
		return model.Case{}, sentinel.ErrNotFound
	}
	c.AIStatus = &aiStatus
	if message != nil {
		m := *message
		c.Message = &m
	}
	c.UpdatedAt = now
	s.cases[id] = c
	return cloneCase(c), nil
}

func (s *Store) BindAssignment(ctx context.Context, id, supervisorID, workerID string, now time.Time) (model.Case, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.cases[id]
	if !ok {
		return model.Case{}, sentinel.ErrNotFound
	}
	if c.WorkerID != nil && c.Status.Open() {
		return model.Case{}, sentinel.ErrAlreadyAssigned
	}
	if c.WorkerID != nil || c.Status != model.StatusPending {
		return model.Case{}, sentinel.ErrInvalidState
	}
	c.AssignerID = &supervisorID
	c.WorkerID = &workerID
	c.Status = model.StatusInProgress
	c.UpdatedAt = now
	s.cases[id] = c
	return cloneCase(c), nil
}

func (s *Store) ListCases(ctx context.Context, params model.ListParams) ([]model.Case, int64, error) {
	params = params.Normalize()
	s.mu.Lock()
	matched := make([]model.Case, 0, len(s.cases))
	for _, c := range s.cases {
		if params.ApplicantID != nil && c.ApplicantID != *params.ApplicantID {
			continue
		}
		matched = append(matched, cloneCase(c))
	}
	s.mu.Unlock()

	sort.Slice(matched, func(i, j int) bool {
		if params.SortKey == model.SortByValidUntil {
			// nulls last in either direction
			ni, nj := matched[i].ValidUntil == nil, matched[j].ValidUntil == nil
			if ni != nj {
				return nj
			}
		}
		cmp := compareCases(matched[i], matched[j], params.SortKey)
		if cmp == 0 {
			cmp = strings.Compare(matched[i].ID, matched[j].ID)
		}
		if params.SortDir == model.SortDesc {
			return cmp > 0
		}
		return cmp < 0
	})

	total := int64(len(matched))
	start := params.Offset()
	if start >= len(matched) {
		return []model.Case{}, total, nil
	}
	end := start + params.Limit
	if end > len(matched) {
		end = len(matched)
	}
	return matched[start:end], total, nil
}

func compareCases(a, b model.Case, key model.SortKey) int {
	switch key {
	case model.SortByUpdatedAt:
		return a.UpdatedAt.Compare(b.UpdatedAt)
	case model.SortByStatus:
		return strings.Compare(string(a.Status), string(b.Status))
	case model.SortByValidUntil:
		if a.ValidUntil == nil || b.ValidUntil == nil {
			return 0
		}
		return a.ValidUntil.Compare(*b.ValidUntil)
	}
	return a.CreatedAt.Compare(b.CreatedAt)
}

func (s *Store) CountByStatus(ctx context.Context, applicantID *string) (model.StatusCounts, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var counts model.StatusCounts
	for _, c := range s.cases {
		if applicantID != nil && c.ApplicantID != *applicantID {
			continue
		}
		counts.Add(c.Status, 1)
	}
	return counts, nil
}

func (s *Store) CreateDocument(ctx context.Context, d model.Document) (model.Document, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.documents[d.ID] = d
	return d, nil
}

func (s *Store) GetDocuments(ctx context.Context, ids []string) ([]model.Document, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	documents := make([]model.Document, 0, len(ids))
	for _, id := range ids {
		d, ok := s.documents[id]
		if !ok {
			return nil, fmt.Errorf("document %s: %w", id, sentinel.ErrNotFound)
		}
		documents = append(documents, d)
	}
	return documents, nil
}

func (s *Store) GetUser(ctx context.Context, id string) (model.Actor, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	a, ok := s.users[id]
	if !ok {
		return model.Actor{}, sentinel.ErrNotFound
	}
	a.AssignedCases = append([]string(nil), a.AssignedCases...)
	return a, nil
}

func (s *Store) AppendAssignedCase(ctx context.Context, userID, caseID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	a, ok := s.users[userID]
	if !ok {
		return sentinel.ErrNotFound
	}
	for _, existing := range a.AssignedCases {
		if existing == caseID {
			return nil
		}
	}
	a.AssignedCases = append(a.AssignedCases, caseID)
	s.users[userID] = a
	return nil
}

func (s *Store) GetRoleByName(ctx context.Context, name string) (model.Role, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	r, ok := s.roles[name]
	if !ok {
		return model.Role{}, sentinel.ErrNotFound
	}
	return r, nil
}

func cloneCase(c model.Case) model.Case {
	c.DocumentIDs = append([]string{}, c.DocumentIDs...)
	return c
}
