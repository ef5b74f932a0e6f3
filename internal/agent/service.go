package agent

import (
	"context"
	"errors"
	"strings"

	"github.com/agentbase/agentbase/internal/common"
	"github.com/agentbase/agentbase/internal/models"
	"gorm.io/gorm"
)

type Service struct {
	repo *Repo
}

func NewService(repo *Repo) *Service {
	return &Service{repo: repo}
}

type CreateParams struct {
	Name         string
	Description  string
	SystemPrompt string
	LLMConfigID  *string
}

// UpdateParams carries partial updates. Nil means "leave unchanged";
// an empty LLMConfigID clears the agent's config reference.
type UpdateParams struct {
	Name         *string
	Description  *string
	SystemPrompt *string
	LLMConfigID  *string
}

func (s *Service) Create(ctx context.Context, userID string, p CreateParams) (*models.Agent, error) {
	name := strings.TrimSpace(p.Name)
	if name == "" {
		return nil, common.ErrInvalidReference
	}

	n, err := s.repo.CountByName(ctx, userID, name, "")
	if err != nil {
		return nil, err
	}
	if n > 0 {
		return nil, common.ErrDuplicateName
	}

	if p.LLMConfigID != nil && *p.LLMConfigID != "" {
		ok, err := s.repo.LLMConfigExists(ctx, userID, *p.LLMConfigID)
		if err != nil {
			return nil, err
		}
		if !ok {
			return nil, common.ErrInvalidReference
		}
	} else {
		p.LLMConfigID = nil
	}

	a := &models.Agent{
		UserID:       userID,
		LLMConfigID:  p.LLMConfigID,
		Name:         name,
		Description:  p.Description,
		SystemPrompt: p.SystemPrompt,
	}
	if err := s.repo.Create(ctx, a); err != nil {
		return nil, err
	}
	return a, nil
}

func (s *Service) Get(ctx context.Context, userID, agentID string) (*models.Agent, error) {
	a, err := s.repo.GetOwned(ctx, userID, agentID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, common.ErrNotFound
		}
		return nil, err
	}
	return a, nil
}

func (s *Service) List(ctx context.Context, userID string) ([]models.Agent, error) {
	return s.repo.ListByOwner(ctx, userID)
}

func (s *Service) Update(ctx context.Context, userID, agentID string, p UpdateParams) (*models.Agent, error) {
	a, err := s.Get(ctx, userID, agentID)
	if err != nil {
		return nil, err
	}

	if p.Name != nil {
		name := strings.TrimSpace(*p.Name)
		if name == "" {
			return nil, common.ErrInvalidReference
		}
		if name != a.Name {
			n, err := s.repo.CountByName(ctx, userID, name, a.ID)
			if err != nil {
				return nil, err
			}
			if n > 0 {
				return nil, common.ErrDuplicateName
			}
		}
		a.Name = name
	}
	if p.Description != nil {
		a.Description = *p.Description
	}
	if p.SystemPrompt != nil {
		a.SystemPrompt = *p.SystemPrompt
	}
	if p.LLMConfigID != nil {
		if *p.LLMConfigID == "" {
			a.LLMConfigID = nil
		} else {
			ok, err := s.repo.LLMConfigExists(ctx, userID, *p.LLMConfigID)
			if err != nil {
				return nil, err
			}
			if !ok {
				return nil, common.ErrInvalidReference
			}
			id := *p.LLMConfigID
			a.LLMConfigID = &id
		}
	}

	if err := s.repo.Save(ctx, a); err != nil {
		return nil, err
	}
	return a, nil
}

func (s *Service) Delete(ctx context.Context, userID, agentID string) error {
	if err := s.repo.DeleteCascade(ctx, userID, agentID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return common.ErrNotFound
		}
		return err
	}
	return nil
}
