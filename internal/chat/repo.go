package chat

import (
	"context"
	"errors"

	"github.com/agentbase/agentbase/internal/models"
	"gorm.io/gorm"
)

type Repo struct {
	db *gorm.DB
}

func NewRepo(db *gorm.DB) *Repo {
	return &Repo{db: db}
}

func (r *Repo) GetAgentOwned(ctx context.Context, userID, agentID string) (*models.Agent, error) {
	var a models.Agent
	if err := r.db.WithContext(ctx).
		Where("id = ? AND user_id = ?", agentID, userID).
		First(&a).Error; err != nil {
		return nil, err
	}
	return &a, nil
}

func (r *Repo) GetConfigOwned(ctx context.Context, userID, configID string) (*models.LLMConfig, error) {
	var c models.LLMConfig
	if err := r.db.WithContext(ctx).
		Where("id = ? AND user_id = ?", configID, userID).
		First(&c).Error; err != nil {
		return nil, err
	}
	return &c, nil
}

func (r *Repo) InsertTurn(ctx context.Context, t *models.ConversationTurn) error {
	return r.db.WithContext(ctx).Create(t).Error
}

// ListTurnsAsc returns an agent's turns oldest first. The integer id
// breaks created_at ties, so replay order matches write order.
// limit <= 0 means all turns.
func (r *Repo) ListTurnsAsc(ctx context.Context, agentID string, limit int) ([]models.ConversationTurn, error) {
	q := r.db.WithContext(ctx).
		Where("agent_id = ?", agentID).
		Order("created_at ASC, id ASC")
	if limit > 0 {
		q = q.Limit(limit)
	}
	var turns []models.ConversationTurn
	if err := q.Find(&turns).Error; err != nil {
		return nil, err
	}
	return turns, nil
}

func (r *Repo) DeleteTurns(ctx context.Context, agentID string) error {
	return r.db.WithContext(ctx).
		Where("agent_id = ?", agentID).
		Delete(&models.ConversationTurn{}).Error
}

func (r *Repo) InsertLog(ctx context.Context, e *models.LogEntry) error {
	return r.db.WithContext(ctx).Create(e).Error
}

// Job CRUD

func (r *Repo) GetJobOwned(ctx context.Context, userID, jobID string) (*models.ChatJob, error) {
	var j models.ChatJob
	if err := r.db.WithContext(ctx).
		Where("id = ? AND user_id = ?", jobID, userID).
		First(&j).Error; err != nil {
		return nil, err
	}
	return &j, nil
}

func (r *Repo) GetJobByID(ctx context.Context, jobID string) (*models.ChatJob, error) {
	var j models.ChatJob
	if err := r.db.WithContext(ctx).First(&j, "id = ?", jobID).Error; err != nil {
		return nil, err
	}
	return &j, nil
}

// CreateJobOrGetExisting inserts the job, or returns the user's existing
// job for the same idempotency key when the unique index rejects the
// insert.
func (r *Repo) CreateJobOrGetExisting(ctx context.Context, job *models.ChatJob) (*models.ChatJob, bool, error) {
	if job.IdempotencyKey != nil && *job.IdempotencyKey == "" {
		job.IdempotencyKey = nil
	}
	if job.IdempotencyKey == nil {
		if err := r.db.WithContext(ctx).Create(job).Error; err != nil {
			return nil, false, err
		}
		return job, true, nil
	}

	err := r.db.WithContext(ctx).Create(job).Error
	if err == nil {
		return job, true, nil
	}

	var existing models.ChatJob
	getErr := r.db.WithContext(ctx).
		Where("user_id = ? AND idempotency_key = ?", job.UserID, *job.IdempotencyKey).
		First(&existing).Error
	if getErr == nil {
		return &existing, false, nil
	}
	if errors.Is(getErr, gorm.ErrRecordNotFound) {
		return nil, false, err
	}
	return nil, false, getErr
}

func (r *Repo) MarkJobRunning(ctx context.Context, jobID string) error {
	return r.db.WithContext(ctx).Model(&models.ChatJob{}).
		Where("id = ? AND status = ?", jobID, models.JobQueued).
		Update("status", models.JobRunning).Error
}

func (r *Repo) MarkJobSucceeded(ctx context.Context, jobID, reply string) error {
	return r.db.WithContext(ctx).Model(&models.ChatJob{}).
		Where("id = ?", jobID).
		Updates(map[string]any{
			"status": models.JobSucceeded,
			"reply":  reply,
			"error":  "",
		}).Error
}

func (r *Repo) MarkJobFailed(ctx context.Context, jobID, errMsg string) error {
	return r.db.WithContext(ctx).Model(&models.ChatJob{}).
		Where("id = ?", jobID).
		Updates(map[string]any{
			"status": models.JobFailed,
			"error":  errMsg,
			"reply":  "",
		}).Error
}
