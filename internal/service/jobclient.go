package service

import (
	"time"

	"kycflow/internal/jobs"

	"github.com/hibiken/asynq"
)

// JobClient interface for scheduling background jobs
type JobClient interface {
	EnqueueVerification(caseID string) error
	ScheduleValidityExpiry(caseID string, validUntil time.Time) error
}

// AsynqJobClient implements JobClient using asynq
type AsynqJobClient struct {
	client *asynq.Client
}

func NewAsynqJobClient(client *asynq.Client) *AsynqJobClient {
	return &AsynqJobClient{client: client}
}

func (c *AsynqJobClient) EnqueueVerification(caseID string) error {
	return jobs.EnqueueVerification(c.client, caseID)
}

func (c *AsynqJobClient) ScheduleValidityExpiry(caseID string, validUntil time.Time) error {
	return jobs.ScheduleValidityExpiry(c.client, caseID, validUntil)
}
