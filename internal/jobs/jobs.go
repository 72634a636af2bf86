package jobs

import (
	"context"
	"fmt"
	"time"

	"kycflow/internal/errs"
	"kycflow/internal/model"

	"github.com/hibiken/asynq"
	"go.uber.org/zap"
)

const (
	TypeVerifyCase      = "case:verify"
	TypeValidityExpired = "case:validity_expired"
)

// Verifier runs the AI gate for a case
type Verifier interface {
	Verify(ctx context.Context, caseID string) (model.Verdict, error)
}

type CaseReader interface {
	GetCase(ctx context.Context, id string) (model.Case, error)
}

type Notifier interface {
	PublishApplicant(applicantID string, event map[string]interface{}) error
	PublishCase(caseID string, event map[string]interface{}) error
}

type JobServer struct {
	server   *asynq.Server
	client   *asynq.Client
	verifier Verifier
	cases    CaseReader
	bus      Notifier
	log      *zap.Logger
	now      func() time.Time
}

func NewJobServer(redisAddr string, verifier Verifier, cases CaseReader, bus Notifier, log *zap.Logger) (*JobServer, *asynq.Client) {
	redisOpt := asynq.RedisClientOpt{Addr: redisAddr}

	server := asynq.NewServer(
		redisOpt,
		asynq.Config{
			Concurrency: 10,
			Queues: map[string]int{
				"critical": 6,
				"default":  3,
				"low":      1,
			},
		},
	)

	client := asynq.NewClient(redisOpt)

	return &JobServer{
		server:   server,
		client:   client,
		verifier: verifier,
		cases:    cases,
		bus:      bus,
		log:      log,
		now:      func() time.Time { return time.Now().UTC() },
	}, client
}

// Mux registers every job handler
func (js *JobServer) Mux() *asynq.ServeMux {
	mux := asynq.NewServeMux()
	mux.HandleFunc(TypeVerifyCase, js.handleVerifyCase)
	mux.HandleFunc(TypeValidityExpired, js.handleValidityExpired)
	return mux
}

func (js *JobServer) Start() error {
	return js.server.Start(js.Mux())
}

func (js *JobServer) Stop() {
	js.server.Shutdown()
	js.client.Close()
}

// Job handlers

func (js *JobServer) handleVerifyCase(ctx context.Context, t *asynq.Task) error {
	caseID := string(t.Payload())

	verdict, err := js.verifier.Verify(ctx, caseID)
	if err != nil {
		switch errs.CodeOf(err) {
		case errs.CodeExternal, errs.CodeInternal:
			// collaborator hiccups are worth another attempt
			return fmt.Errorf("failed to verify case: %w", err)
		}
		js.log.Warn("Verification skipped", zap.String("case_id", caseID), zap.Error(err))
		return fmt.Errorf("%v: %w", err, asynq.SkipRetry)
	}

	js.log.Info("Case verified", zap.String("case_id", caseID), zap.Bool("accepted", verdict.Accepted))
	return nil
}

func (js *JobServer) handleValidityExpired(ctx context.Context, t *asynq.Task) error {
	caseID := string(t.Payload())

	c, err := js.cases.GetCase(ctx, caseID)
	if err != nil {
		return fmt.Errorf("failed to get case: %w", err)
	}

	// Only notify for a completion whose window has actually closed
	if c.Status != model.StatusCompleted || c.StillValid(js.now()) {
		return nil
	}

	_ = js.bus.PublishApplicant(c.ApplicantID, map[string]interface{}{
		"type":       "case.validity_expired",
		"caseId":     caseID,
		"validUntil": c.ValidUntil.Format(time.RFC3339),
	})
	_ = js.bus.PublishCase(caseID, map[string]interface{}{
		"type":   "case.validity_expired",
		"caseId": caseID,
	})

	js.log.Info("Validity window closed", zap.String("case_id", caseID))
	return nil
}

// Schedule jobs

func EnqueueVerification(client *asynq.Client, caseID string) error {
	task := asynq.NewTask(TypeVerifyCase, []byte(caseID))
	_, err := client.Enqueue(task, asynq.Queue("critical"), asynq.MaxRetry(3))
	return err
}

func ScheduleValidityExpiry(client *asynq.Client, caseID string, validUntil time.Time) error {
	if validUntil.Before(time.Now()) {
		return nil // Already expired
	}

	task := asynq.NewTask(TypeValidityExpired, []byte(caseID))
	_, err := client.Enqueue(task, asynq.ProcessIn(time.Until(validUntil)), asynq.Queue("low"))
	return err
}
