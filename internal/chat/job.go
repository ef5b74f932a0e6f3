package chat

import (
	"context"
	"errors"

	"github.com/agentbase/agentbase/internal/common"
	"github.com/agentbase/agentbase/internal/models"
	"gorm.io/gorm"
)

// EnqueueJob records an async chat request. With an idempotency key a
// repeat call returns the user's existing job (created=false) instead of
// queueing a duplicate; the caller publishes only freshly created jobs.
func (s *Service) EnqueueJob(ctx context.Context, userID, agentID, message string, idempotencyKey *string) (*models.ChatJob, bool, error) {
	if err := s.checkAgentOwned(ctx, userID, agentID); err != nil {
		return nil, false, err
	}

	id, err := common.NewULID()
	if err != nil {
		return nil, false, err
	}
	job := &models.ChatJob{
		ID:             id,
		UserID:         userID,
		AgentID:        agentID,
		Message:        message,
		IdempotencyKey: idempotencyKey,
		Status:         models.JobQueued,
	}
	return s.repo.CreateJobOrGetExisting(ctx, job)
}

func (s *Service) GetJob(ctx context.Context, userID, jobID string) (*models.ChatJob, error) {
	j, err := s.repo.GetJobOwned(ctx, userID, jobID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, common.ErrNotFound
		}
		return nil, err
	}
	return j, nil
}
