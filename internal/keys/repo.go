package keys

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

func (r *Repo) ListByOwner(ctx context.Context, userID string) ([]models.APIKey, error) {
	var ks []models.APIKey
	if err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at ASC").
		Find(&ks).Error; err != nil {
		return nil, err
	}
	return ks, nil
}

func (r *Repo) GetOwned(ctx context.Context, userID, keyID string) (*models.APIKey, error) {
	var k models.APIKey
	if err := r.db.WithContext(ctx).
		Where("id = ? AND user_id = ?", keyID, userID).
		First(&k).Error; err != nil {
		return nil, err
	}
	return &k, nil
}

func (r *Repo) CountConfigsForProvider(ctx context.Context, userID, provider string) (int64, error) {
	var n int64
	if err := r.db.WithContext(ctx).Model(&models.LLMConfig{}).
		Where("user_id = ? AND provider = ?", userID, provider).
		Count(&n).Error; err != nil {
		return 0, err
	}
	return n, nil
}

// CreateWithConfigs writes the key and its seeded configs atomically.
func (r *Repo) CreateWithConfigs(ctx context.Context, k *models.APIKey, configs []models.LLMConfig) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(k).Error; err != nil {
			return err
		}
		for i := range configs {
			configs[i].UserID = k.UserID
			configs[i].EncryptedCredentials = k.EncryptedKey
			if err := tx.Create(&configs[i]).Error; err != nil {
				return err
			}
		}
		return nil
	})
}

// DeleteCascade removes a key together with every config that shares its
// ciphertext, detaching agents first. Ciphertext equality is deliberate:
// configs seeded from this key carry its exact encrypted value, and the
// cascade must work even when decryption is impossible.
func (r *Repo) DeleteCascade(ctx context.Context, userID, keyID string) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var k models.APIKey
		if err := tx.Where("id = ? AND user_id = ?", keyID, userID).
			First(&k).Error; err != nil {
			return err
		}

		var configIDs []string
		if err := tx.Model(&models.LLMConfig{}).
			Where("user_id = ? AND encrypted_credentials = ?", userID, k.EncryptedKey).
			Pluck("id", &configIDs).Error; err != nil {
			return err
		}

		if len(configIDs) > 0 {
			if err := tx.Model(&models.Agent{}).
				Where("user_id = ? AND llm_config_id IN ?", userID, configIDs).
				Update("llm_config_id", nil).Error; err != nil {
				return err
			}
			if err := tx.Where("id IN ?", configIDs).
				Delete(&models.LLMConfig{}).Error; err != nil {
				return err
			}
		}

		return tx.Delete(&k).Error
	})
}

func (r *Repo) ListConfigsByOwner(ctx context.Context, userID string) ([]models.LLMConfig, error) {
	var cs []models.LLMConfig
	if err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at ASC").
		Find(&cs).Error; err != nil {
		return nil, err
	}
	return cs, nil
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
