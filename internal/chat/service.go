package chat

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"

	"github.com/agentbase/agentbase/internal/ai"
	"github.com/agentbase/agentbase/internal/common"
	"github.com/agentbase/agentbase/internal/models"
	"github.com/agentbase/agentbase/internal/secrets"
	"gorm.io/gorm"
)

// Fixed generation parameters for every provider call.
const (
	chatTemperature = 0.7
	chatMaxTokens   = 1000
)

// Limiter gates chat sends per user. A nil Limiter disables limiting.
type Limiter interface {
	Allow(ctx context.Context, userID string) (bool, error)
}

type Service struct {
	repo     *Repo
	registry *ai.Registry
	codec    *secrets.Codec
	limiter  Limiter
}

func NewService(repo *Repo, registry *ai.Registry, codec *secrets.Codec, limiter Limiter) *Service {
	return &Service{repo: repo, registry: registry, codec: codec, limiter: limiter}
}

// SendMessage runs one conversation turn: resolve the agent and its config,
// persist the user turn, replay history to the provider, persist the reply.
// The user turn commits before the provider call, so a provider failure
// leaves the conversation in a "message sent, no reply yet" state.
func (s *Service) SendMessage(ctx context.Context, userID, agentID, content string) (*models.ConversationTurn, error) {
	if s.limiter != nil {
		ok, err := s.limiter.Allow(ctx, userID)
		if err != nil {
			// A broken limiter must not take chat down with it.
			log.Printf("chat: rate limiter error for user %s: %v", userID, err)
		} else if !ok {
			return nil, common.ErrRateLimited
		}
	}

	agent, err := s.repo.GetAgentOwned(ctx, userID, agentID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, common.ErrNotFound
		}
		return nil, err
	}
	if agent.LLMConfigID == nil {
		return nil, common.ErrMissingLLMConfig
	}
	cfg, err := s.repo.GetConfigOwned(ctx, userID, *agent.LLMConfigID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, common.ErrMissingLLMConfig
		}
		return nil, err
	}

	userTurn := &models.ConversationTurn{
		AgentID: agentID,
		Role:    models.RoleUser,
		Content: content,
	}
	if err := s.repo.InsertTurn(ctx, userTurn); err != nil {
		return nil, err
	}

	// Full history replay, user turn included. Unbounded growth is a known
	// scaling limit of this engine, not a correctness issue.
	history, err := s.repo.ListTurnsAsc(ctx, agentID, 0)
	if err != nil {
		return nil, err
	}

	apiKey, ok := s.codec.Decrypt(cfg.EncryptedCredentials)
	if !ok {
		return nil, common.ErrCredentialUnavailable
	}

	kind, ok := ai.ParseKind(cfg.Provider)
	if !ok {
		return nil, common.ErrUnsupportedProvider
	}
	client := s.registry.Client(kind)
	if client == nil {
		return nil, common.ErrUnsupportedProvider
	}

	reply, err := client.Complete(ctx, ai.Request{
		APIKey:      apiKey,
		Model:       cfg.ModelName,
		System:      agent.SystemPrompt,
		Messages:    shapeTurns(history),
		Temperature: chatTemperature,
		MaxTokens:   chatMaxTokens,
	})
	if err != nil {
		s.logProviderFailure(ctx, userID, agentID, cfg.Provider, err)
		return nil, &common.ProviderCallError{Provider: cfg.Provider, Err: err}
	}

	assistantTurn := &models.ConversationTurn{
		AgentID: agentID,
		Role:    models.RoleAssistant,
		Content: reply,
	}
	if err := s.repo.InsertTurn(ctx, assistantTurn); err != nil {
		return nil, err
	}
	return assistantTurn, nil
}

func shapeTurns(turns []models.ConversationTurn) []ai.Message {
	out := make([]ai.Message, 0, len(turns))
	for _, t := range turns {
		m := ai.Message{
			Role:       t.Role,
			Content:    t.Content,
			ToolInput:  t.ToolInput,
			ToolOutput: t.ToolOutput,
		}
		if t.ToolCallID != nil {
			m.ToolCallID = *t.ToolCallID
		}
		if t.ToolName != nil {
			m.ToolName = *t.ToolName
		}
		out = append(out, m)
	}
	return out
}

func (s *Service) logProviderFailure(ctx context.Context, userID, agentID, provider string, cause error) {
	details, _ := json.Marshal(map[string]string{
		"provider": provider,
		"cause":    cause.Error(),
	})
	entry := &models.LogEntry{
		UserID:        &userID,
		AgentID:       &agentID,
		CorrelationID: common.RequestID(ctx),
		Level:         "ERROR",
		Message:       "llm provider call failed",
		DetailsJSON:   details,
	}
	if err := s.repo.InsertLog(ctx, entry); err != nil {
		log.Printf("chat: write log entry: %v", err)
	}
}

// History returns an agent's turns oldest first. limit outside 1..100
// falls back to 50.
func (s *Service) History(ctx context.Context, userID, agentID string, limit int) ([]models.ConversationTurn, error) {
	if err := s.checkAgentOwned(ctx, userID, agentID); err != nil {
		return nil, err
	}
	if limit <= 0 || limit > 100 {
		limit = 50
	}
	return s.repo.ListTurnsAsc(ctx, agentID, limit)
}

// Clear drops an agent's whole conversation.
func (s *Service) Clear(ctx context.Context, userID, agentID string) error {
	if err := s.checkAgentOwned(ctx, userID, agentID); err != nil {
		return err
	}
	return s.repo.DeleteTurns(ctx, agentID)
}

func (s *Service) checkAgentOwned(ctx context.Context, userID, agentID string) error {
	if _, err := s.repo.GetAgentOwned(ctx, userID, agentID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return common.ErrNotFound
		}
		return err
	}
	return nil
}

// RunJob executes a queued job through the same engine and records the
// outcome on the job row. Called by the worker.
func (s *Service) RunJob(ctx context.Context, jobID string) error {
	job, err := s.repo.GetJobByID(ctx, jobID)
	if err != nil {
		return err
	}
	if job.Status == models.JobSucceeded || job.Status == models.JobFailed {
		return nil
	}
	if err := s.repo.MarkJobRunning(ctx, jobID); err != nil {
		return err
	}

	turn, err := s.SendMessage(ctx, job.UserID, job.AgentID, job.Message)
	if err != nil {
		if markErr := s.repo.MarkJobFailed(ctx, jobID, err.Error()); markErr != nil {
			return fmt.Errorf("mark job failed: %w", markErr)
		}
		return nil
	}
	return s.repo.MarkJobSucceeded(ctx, jobID, turn.Content)
}
