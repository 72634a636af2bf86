package jobs

import (
	"context"
	"errors"
	"testing"
	"time"

	"kycflow/internal/errs"
	"kycflow/internal/model"

	"github.com/hibiken/asynq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type stubVerifier struct {
	calls []string
	err   error
}

func (v *stubVerifier) Verify(ctx context.Context, caseID string) (model.Verdict, error) {
	v.calls = append(v.calls, caseID)
	return model.Verdict{Accepted: true}, v.err
}

type stubCases map[string]model.Case

func (s stubCases) GetCase(ctx context.Context, id string) (model.Case, error) {
	c, ok := s[id]
	if !ok {
		return model.Case{}, errs.New(errs.CodeNotFound, "KYC Request not found")
	}
	return c, nil
}

type stubNotifier struct {
	channels []string
}

func (n *stubNotifier) PublishApplicant(id string, event map[string]interface{}) error {
	n.channels = append(n.channels, "applicant:"+id+":"+event["type"].(string))
	return nil
}

func (n *stubNotifier) PublishCase(id string, event map[string]interface{}) error {
	n.channels = append(n.channels, "case:"+id+":"+event["type"].(string))
	return nil
}

var now = time.Date(2024, 4, 1, 12, 0, 0, 0, time.UTC)

func newServer(v Verifier, cases CaseReader, bus Notifier) *JobServer {
	return &JobServer{verifier: v, cases: cases, bus: bus, log: zap.NewNop(), now: func() time.Time { return now }}
}

func TestHandleVerifyCase(t *testing.T) {
	tests := []struct {
		name      string
		err       error
		wantErr   bool
		wantRetry bool
	}{
		{"success", nil, false, false},
		{"analyzer down retries", errs.External(errors.New("timeout"), "Failed to verify documents with AI"), true, true},
		{"store failure retries", errs.Internal(errors.New("conn reset")), true, true},
		{"decided case is final", errs.Conflict(errs.ReasonInvalidTransition, "decided"), true, false},
		{"unknown case is final", errs.New(errs.CodeNotFound, "KYC Request not found"), true, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := &stubVerifier{err: tt.err}
			js := newServer(v, stubCases{}, &stubNotifier{})

			err := js.handleVerifyCase(context.Background(), asynq.NewTask(TypeVerifyCase, []byte("c1")))
			assert.Equal(t, []string{"c1"}, v.calls)
			if !tt.wantErr {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Equal(t, !tt.wantRetry, errors.Is(err, asynq.SkipRetry))
		})
	}
}

func TestHandleValidityExpired(t *testing.T) {
	past := now.Add(-time.Minute)
	future := now.Add(time.Hour)
	cases := stubCases{
		"expired":  {ID: "expired", ApplicantID: "a1", Status: model.StatusCompleted, ValidUntil: &past},
		"valid":    {ID: "valid", ApplicantID: "a1", Status: model.StatusCompleted, ValidUntil: &future},
		"rejected": {ID: "rejected", ApplicantID: "a1", Status: model.StatusRejected},
	}

	t.Run("closed window notifies", func(t *testing.T) {
		bus := &stubNotifier{}
		js := newServer(&stubVerifier{}, cases, bus)
		require.NoError(t, js.handleValidityExpired(context.Background(), asynq.NewTask(TypeValidityExpired, []byte("expired"))))
		assert.Equal(t, []string{
			"applicant:a1:case.validity_expired",
			"case:expired:case.validity_expired",
		}, bus.channels)
	})

	for _, id := range []string{"valid", "rejected"} {
		t.Run(id+" is silent", func(t *testing.T) {
			bus := &stubNotifier{}
			js := newServer(&stubVerifier{}, cases, bus)
			require.NoError(t, js.handleValidityExpired(context.Background(), asynq.NewTask(TypeValidityExpired, []byte(id))))
			assert.Empty(t, bus.channels)
		})
	}

	t.Run("missing case errors", func(t *testing.T) {
		js := newServer(&stubVerifier{}, cases, &stubNotifier{})
		assert.Error(t, js.handleValidityExpired(context.Background(), asynq.NewTask(TypeValidityExpired, []byte("nope"))))
	})
}

func TestScheduleValidityExpiry_PastIsNoop(t *testing.T) {
	// a nil client would panic if the task were enqueued
	assert.NoError(t, ScheduleValidityExpiry(nil, "c1", time.Now().Add(-time.Hour)))
}
