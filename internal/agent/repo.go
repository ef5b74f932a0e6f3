package agent

import (
	"context"

	"github.com/agentbase/agentbase/internal/models"
	"gorm.io/gorm"
)

type Repo struct {
	db *gorm.DB
}

func NewRepo(db *gorm.DB) *Repo {
	return &Repo{db: db}
}

func (r *Repo) Create(ctx context.Context, a *models.Agent) error {
	return r.db.WithContext(ctx).Create(a).Error
}

// GetOwned filters by owner so a foreign agent id behaves exactly like a
// missing one.
func (r *Repo) GetOwned(ctx context.Context, userID, agentID string) (*models.Agent, error) {
	var a models.Agent
	if err := r.db.WithContext(ctx).
		Where("id = ? AND user_id = ?", agentID, userID).
		First(&a).Error; err != nil {
		return nil, err
	}
	return &a, nil
}

func (r *Repo) ListByOwner(ctx context.Context, userID string) ([]models.Agent, error) {
	var agents []models.Agent
	if err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at ASC").
		Find(&agents).Error; err != nil {
		return nil, err
	}
	return agents, nil
}

func (r *Repo) Save(ctx context.Context, a *models.Agent) error {
	return r.db.WithContext(ctx).Save(a).Error
}

// CountByName reports how many of the user's agents carry this name,
// excluding excludeID when renaming.
func (r *Repo) CountByName(ctx context.Context, userID, name, excludeID string) (int64, error) {
	q := r.db.WithContext(ctx).Model(&models.Agent{}).
		Where("user_id = ? AND name = ?", userID, name)
	if excludeID != "" {
		q = q.Where("id <> ?", excludeID)
	}
	var n int64
	if err := q.Count(&n).Error; err != nil {
		return 0, err
	}
	return n, nil
}

// LLMConfigExists checks that a config id belongs to the user.
func (r *Repo) LLMConfigExists(ctx context.Context, userID, configID string) (bool, error) {
	var n int64
	if err := r.db.WithContext(ctx).Model(&models.LLMConfig{}).
		Where("id = ? AND user_id = ?", configID, userID).
		Count(&n).Error; err != nil {
		return false, err
	}
	return n > 0, nil
}

// DeleteCascade removes the agent with its conversation turns, connector
// links, tool links, and pending chat jobs in one transaction.
func (r *Repo) DeleteCascade(ctx context.Context, userID, agentID string) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Where("id = ? AND user_id = ?", agentID, userID).
			Delete(&models.Agent{})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		if err := tx.Where("agent_id = ?", agentID).
			Delete(&models.ConversationTurn{}).Error; err != nil {
			return err
		}
		if err := tx.Where("agent_id = ?", agentID).
			Delete(&models.AgentConnectorLink{}).Error; err != nil {
			return err
		}
		if err := tx.Where("agent_id = ?", agentID).
			Delete(&models.AgentToolLink{}).Error; err != nil {
			return err
		}
		return tx.Where("agent_id = ?", agentID).
			Delete(&models.ChatJob{}).Error
	})
}
