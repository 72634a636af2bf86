package service

import (
	"context"
	"errors"
	"fmt"

	"kycflow/internal/errs"
	"kycflow/internal/metrics"
	"kycflow/internal/model"
	"kycflow/internal/sentinel"

	"go.uber.org/zap"
)

const MessageAlreadyAssigned = "Case already assigned"

type AssignmentService struct {
	cases   CaseStore
	users   UserDirectory
	bus     EventBus
	metrics *metrics.Metrics
	log     *zap.Logger
	now     Clock
}

func NewAssignmentService(cases CaseStore, users UserDirectory, bus EventBus, m *metrics.Metrics, log *zap.Logger) *AssignmentService {
	if bus == nil {
		bus = nopBus{}
	}
	return &AssignmentService{
		cases:   cases,
		users:   users,
		bus:     bus,
		metrics: m,
		log:     log,
		now:     systemClock,
	}
}

// SetClock replaces the time source
func (s *AssignmentService) SetClock(clock Clock) {
	s.now = clock
}

// Assign binds supervisor and worker to a pending case and moves it to In
// Progress. The bind is one-shot per case. When the bind commits but a user
// record update fails, the updated case is returned together with a
// partial_assignment error joining each failure.
func (s *AssignmentService) Assign(ctx context.Context, supervisorID, workerID, caseID string) (model.Case, error) {
	if supervisorID == "" || workerID == "" || caseID == "" {
		return model.Case{}, errs.New(errs.CodeInvalidInput, "Supervisor ID, Worker ID, and Case ID are required")
	}

	if _, err := requireActor(ctx, s.users, supervisorID, model.PermissionAssignKYC, "Supervisor"); err != nil {
		s.metrics.IncAssignment("denied")
		return model.Case{}, err
	}
	if _, err := requireActor(ctx, s.users, workerID, model.PermissionVerifyKYC, "Worker"); err != nil {
		s.metrics.IncAssignment("denied")
		return model.Case{}, err
	}

	existing, err := s.cases.GetCase(ctx, caseID)
	if err != nil {
		return model.Case{}, translate(err, "Case not found")
	}
	if existing.Assigned() {
		s.metrics.IncAssignment("already_assigned")
		return model.Case{}, errs.Conflict(errs.ReasonAlreadyAssigned, MessageAlreadyAssigned)
	}

	c, err := s.cases.BindAssignment(ctx, caseID, supervisorID, workerID, s.now())
	switch {
	case errors.Is(err, sentinel.ErrAlreadyAssigned):
		// lost the race against a concurrent bind
		s.metrics.IncAssignment("already_assigned")
		return model.Case{}, errs.Conflict(errs.ReasonAlreadyAssigned, MessageAlreadyAssigned)
	case errors.Is(err, sentinel.ErrInvalidState):
		return model.Case{}, errs.Conflict(errs.ReasonInvalidTransition, "Only pending cases can be assigned")
	case err != nil:
		return model.Case{}, translate(err, "Case not found")
	}

	s.metrics.IncAssignment("ok")
	s.metrics.IncTransition(string(model.StatusInProgress), triggerAssignment)
	s.publishAssigned(c, supervisorID, workerID)

	var appendErrs []error
	for _, userID := range []string{workerID, supervisorID} {
		if err := s.users.AppendAssignedCase(ctx, userID, caseID); err != nil {
			appendErrs = append(appendErrs, fmt.Errorf("user %s: %w", userID, err))
		}
	}
	if joined := errors.Join(appendErrs...); joined != nil {
		s.log.Error("Case assigned but user records not updated", zap.String("case_id", caseID), zap.Error(joined))
		return c, &errs.Error{
			Code:    errs.CodeExternal,
			Reason:  errs.ReasonPartialAssignment,
			Message: "Case assigned but assigned-case lists could not be updated",
			Err:     joined,
		}
	}
	return c, nil
}

func (s *AssignmentService) publishAssigned(c model.Case, supervisorID, workerID string) {
	event := map[string]interface{}{
		"type":         "case.assigned",
		"caseId":       c.ID,
		"status":       c.Status,
		"workerId":     workerID,
		"supervisorId": supervisorID,
	}
	_ = s.bus.PublishApplicant(c.ApplicantID, event)
	_ = s.bus.PublishWorker(workerID, event)
	_ = s.bus.PublishWorker(supervisorID, event)
	_ = s.bus.PublishCase(c.ID, event)
}
