package keys

import (
	"context"
	"errors"
	"strings"

	"github.com/agentbase/agentbase/internal/ai"
	"github.com/agentbase/agentbase/internal/common"
	"github.com/agentbase/agentbase/internal/models"
	"github.com/agentbase/agentbase/internal/secrets"
	"gorm.io/gorm"
)

// seededConfigs lists the model configs created alongside a fresh provider
// key. The first entry of each set is the default.
var seededConfigs = map[ai.Kind][]string{
	ai.KindOpenAI: {
		"gpt-4o",
		"gpt-3.5-turbo",
	},
	ai.KindAnthropic: {
		"claude-3-opus-20240229",
		"claude-3-sonnet-20240229",
		"claude-3-haiku-20240307",
	},
}

type Service struct {
	repo  *Repo
	codec *secrets.Codec
}

func NewService(repo *Repo, codec *secrets.Codec) *Service {
	return &Service{repo: repo, codec: codec}
}

// Create stores an encrypted provider key. For a known provider it also
// seeds that provider's model configs, unless the user already has configs
// for it (a second key must not duplicate the set).
func (s *Service) Create(ctx context.Context, userID, providerName, rawKey string) (*models.APIKey, error) {
	provider := strings.ToLower(strings.TrimSpace(providerName))
	if provider == "" || strings.TrimSpace(rawKey) == "" {
		return nil, common.ErrInvalidReference
	}

	encrypted, err := s.codec.Encrypt(rawKey)
	if err != nil {
		return nil, err
	}

	k := &models.APIKey{
		UserID:       userID,
		ProviderName: provider,
		EncryptedKey: encrypted,
	}

	var configs []models.LLMConfig
	if kind, ok := ai.ParseKind(provider); ok {
		n, err := s.repo.CountConfigsForProvider(ctx, userID, provider)
		if err != nil {
			return nil, err
		}
		if n == 0 {
			for i, model := range seededConfigs[kind] {
				configs = append(configs, models.LLMConfig{
					Provider:  provider,
					ModelName: model,
					IsDefault: i == 0,
				})
			}
		}
	}

	if err := s.repo.CreateWithConfigs(ctx, k, configs); err != nil {
		return nil, err
	}
	return k, nil
}

func (s *Service) List(ctx context.Context, userID string) ([]models.APIKey, error) {
	return s.repo.ListByOwner(ctx, userID)
}

// Delete removes a key and cascades per the ciphertext-sharing rule.
func (s *Service) Delete(ctx context.Context, userID, keyID string) error {
	if err := s.repo.DeleteCascade(ctx, userID, keyID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return common.ErrNotFound
		}
		return err
	}
	return nil
}

func (s *Service) ListConfigs(ctx context.Context, userID string) ([]models.LLMConfig, error) {
	return s.repo.ListConfigsByOwner(ctx, userID)
}

func (s *Service) GetConfig(ctx context.Context, userID, configID string) (*models.LLMConfig, error) {
	c, err := s.repo.GetConfigOwned(ctx, userID, configID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, common.ErrNotFound
		}
		return nil, err
	}
	return c, nil
}
