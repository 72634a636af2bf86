package service

import (
	"sync"
	"testing"
	"time"

	"kycflow/internal/memstore"
	"kycflow/internal/model"
	"kycflow/internal/storage"

	"go.uber.org/zap"
)

const (
	applicantID  = "applicant-1"
	supervisorID = "supervisor-1"
	workerID     = "worker-1"
	viewerID     = "viewer-1"
)

type fakeClock struct {
	mu sync.Mutex
	t  time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{t: time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.t = c.t.Add(d)
}

type publishedEvent struct {
	channel string
	event   map[string]interface{}
}

type recordingBus struct {
	mu     sync.Mutex
	events []publishedEvent
}

func (b *recordingBus) record(channel string, event map[string]interface{}) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.events = append(b.events, publishedEvent{channel: channel, event: event})
	return nil
}

func (b *recordingBus) PublishApplicant(id string, event map[string]interface{}) error {
	return b.record("applicant:"+id, event)
}

func (b *recordingBus) PublishWorker(id string, event map[string]interface{}) error {
	return b.record("worker:"+id, event)
}

func (b *recordingBus) PublishCase(id string, event map[string]interface{}) error {
	return b.record("case:"+id, event)
}

// types returns the event types published on channel
func (b *recordingBus) types(channel string) []string {
	b.mu.Lock()
	defer b.mu.Unlock()
	var out []string
	for _, e := range b.events {
		if e.channel == channel {
			out = append(out, e.event["type"].(string))
		}
	}
	return out
}

func actor(id, role string, permissions ...model.Permission) model.Actor {
	tokens := make([]string, 0, len(permissions))
	for _, p := range permissions {
		tokens = append(tokens, string(p))
	}
	return model.Actor{
		ID:          id,
		Role:        role,
		Permissions: model.NewPermissionSet(tokens),
		FirstName:   "Ada",
		LastName:    "Lovelace",
		Email:       id + "@example.com",
		Address:     "12 Analytical Row",
	}
}

type fixture struct {
	store     *memstore.Store
	clock     *fakeClock
	bus       *recordingBus
	cases     *CaseService
	documents *DocumentService
	assigner  *AssignmentService
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	store := memstore.New()
	store.PutUser(actor(applicantID, "Applicant", model.PermissionSubmitKYC))
	store.PutUser(actor(supervisorID, "Supervisor", model.PermissionAssignKYC, model.PermissionViewKYC))
	store.PutUser(actor(workerID, "Worker", model.PermissionVerifyKYC, model.PermissionViewKYC))
	store.PutUser(actor(viewerID, "Auditor", model.PermissionViewKYC))

	clock := newFakeClock()
	bus := &recordingBus{}
	log := zap.NewNop()

	cases := NewCaseService(store, bus, nil, log)
	cases.SetClock(clock.Now)
	documents := NewDocumentService(store, store)
	assigner := NewAssignmentService(store, store, bus, nil, log)
	assigner.SetClock(clock.Now)

	return &fixture{
		store:     store,
		clock:     clock,
		bus:       bus,
		cases:     cases,
		documents: documents,
		assigner:  assigner,
	}
}

func strPtr(s string) *string {
	return &s
}

// upload is a key inside actorID's upload folder
func upload(actorID, name string) string {
	return storage.UploadPrefix(actorID) + name
}
