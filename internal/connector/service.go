package connector

import (
	"context"
	"encoding/json"
	"errors"
	"strings"

	"github.com/agentbase/agentbase/internal/common"
	"github.com/agentbase/agentbase/internal/models"
	"gorm.io/gorm"
)

type Service struct {
	db *gorm.DB
}

func NewService(db *gorm.DB) *Service {
	return &Service{db: db}
}

// Detail is a user connector joined with its catalog type.
type Detail struct {
	models.UserConnector
	ConnectorType *CatalogEntry `json:"connector_type,omitempty"`
}

func (s *Service) ListCatalog(ctx context.Context, status string) ([]CatalogEntry, error) {
	var tools []models.Tool
	if err := s.db.WithContext(ctx).Order("name ASC").Find(&tools).Error; err != nil {
		return nil, err
	}
	out := make([]CatalogEntry, 0, len(tools))
	for _, t := range tools {
		e := catalogEntry(t)
		if status != "" && e.Status != status {
			continue
		}
		out = append(out, e)
	}
	return out, nil
}

type CreateParams struct {
	ToolID     string
	Name       string
	ConfigData json.RawMessage
}

func (s *Service) Create(ctx context.Context, userID string, p CreateParams) (*models.UserConnector, error) {
	name := strings.TrimSpace(p.Name)
	if name == "" {
		return nil, common.ErrInvalidReference
	}

	var toolCount int64
	if err := s.db.WithContext(ctx).Model(&models.Tool{}).
		Where("id = ?", p.ToolID).
		Count(&toolCount).Error; err != nil {
		return nil, err
	}
	if toolCount == 0 {
		return nil, common.ErrInvalidReference
	}

	var nameCount int64
	if err := s.db.WithContext(ctx).Model(&models.UserConnector{}).
		Where("user_id = ? AND name = ?", userID, name).
		Count(&nameCount).Error; err != nil {
		return nil, err
	}
	if nameCount > 0 {
		return nil, common.ErrDuplicateName
	}

	uc := &models.UserConnector{
		UserID:      userID,
		ToolID:      p.ToolID,
		Name:        name,
		SetupStatus: models.SetupNeedsSetup,
		ConfigData:  p.ConfigData,
	}
	if err := s.db.WithContext(ctx).Create(uc).Error; err != nil {
		return nil, err
	}
	return uc, nil
}

func (s *Service) List(ctx context.Context, userID string) ([]Detail, error) {
	var ucs []models.UserConnector
	if err := s.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at ASC").
		Find(&ucs).Error; err != nil {
		return nil, err
	}
	out := make([]Detail, 0, len(ucs))
	for _, uc := range ucs {
		d, err := s.detail(ctx, uc)
		if err != nil {
			return nil, err
		}
		out = append(out, d)
	}
	return out, nil
}

func (s *Service) Get(ctx context.Context, userID, connectorID string) (*Detail, error) {
	uc, err := s.getOwned(ctx, userID, connectorID)
	if err != nil {
		return nil, err
	}
	d, err := s.detail(ctx, *uc)
	if err != nil {
		return nil, err
	}
	return &d, nil
}

type UpdateParams struct {
	Name        *string
	ConfigData  json.RawMessage
	SetupStatus *string
}

func (s *Service) Update(ctx context.Context, userID, connectorID string, p UpdateParams) (*Detail, error) {
	uc, err := s.getOwned(ctx, userID, connectorID)
	if err != nil {
		return nil, err
	}

	if p.Name != nil {
		name := strings.TrimSpace(*p.Name)
		if name == "" {
			return nil, common.ErrInvalidReference
		}
		if name != uc.Name {
			var n int64
			if err := s.db.WithContext(ctx).Model(&models.UserConnector{}).
				Where("user_id = ? AND name = ? AND id <> ?", userID, name, uc.ID).
				Count(&n).Error; err != nil {
				return nil, err
			}
			if n > 0 {
				return nil, common.ErrDuplicateName
			}
		}
		uc.Name = name
	}
	if p.ConfigData != nil {
		uc.ConfigData = p.ConfigData
	}
	if p.SetupStatus != nil {
		switch *p.SetupStatus {
		case models.SetupNeedsSetup, models.SetupActive, models.SetupError:
			uc.SetupStatus = *p.SetupStatus
		default:
			return nil, common.ErrInvalidReference
		}
	}

	if err := s.db.WithContext(ctx).Save(uc).Error; err != nil {
		return nil, err
	}
	d, err := s.detail(ctx, *uc)
	if err != nil {
		return nil, err
	}
	return &d, nil
}

// Delete removes a connector and its agent links in one transaction.
func (s *Service) Delete(ctx context.Context, userID, connectorID string) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Where("id = ? AND user_id = ?", connectorID, userID).
			Delete(&models.UserConnector{})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return common.ErrNotFound
		}
		return tx.Where("user_connector_id = ?", connectorID).
			Delete(&models.AgentConnectorLink{}).Error
	})
}

// Link joins an agent to a connector. A repeat link is success with
// alreadyExists=true, not an error.
func (s *Service) Link(ctx context.Context, userID, agentID, connectorID string) (alreadyExists bool, err error) {
	if err := s.checkAgentOwned(ctx, userID, agentID); err != nil {
		return false, err
	}
	if _, err := s.getOwned(ctx, userID, connectorID); err != nil {
		return false, err
	}

	var n int64
	if err := s.db.WithContext(ctx).Model(&models.AgentConnectorLink{}).
		Where("agent_id = ? AND user_connector_id = ?", agentID, connectorID).
		Count(&n).Error; err != nil {
		return false, err
	}
	if n > 0 {
		return true, nil
	}

	link := &models.AgentConnectorLink{AgentID: agentID, UserConnectorID: connectorID}
	if err := s.db.WithContext(ctx).Create(link).Error; err != nil {
		return false, err
	}
	return false, nil
}

// Unlink removes the join row if present. A missing link reports
// removed=false without an error.
func (s *Service) Unlink(ctx context.Context, userID, agentID, connectorID string) (removed bool, err error) {
	if err := s.checkAgentOwned(ctx, userID, agentID); err != nil {
		return false, err
	}
	res := s.db.WithContext(ctx).
		Where("agent_id = ? AND user_connector_id = ?", agentID, connectorID).
		Delete(&models.AgentConnectorLink{})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

func (s *Service) ListForAgent(ctx context.Context, userID, agentID string) ([]Detail, error) {
	if err := s.checkAgentOwned(ctx, userID, agentID); err != nil {
		return nil, err
	}

	var links []models.AgentConnectorLink
	if err := s.db.WithContext(ctx).
		Where("agent_id = ?", agentID).
		Find(&links).Error; err != nil {
		return nil, err
	}

	out := make([]Detail, 0, len(links))
	for _, link := range links {
		d, err := s.Get(ctx, userID, link.UserConnectorID)
		if err != nil {
			return nil, err
		}
		out = append(out, *d)
	}
	return out, nil
}

func (s *Service) getOwned(ctx context.Context, userID, connectorID string) (*models.UserConnector, error) {
	var uc models.UserConnector
	if err := s.db.WithContext(ctx).
		Where("id = ? AND user_id = ?", connectorID, userID).
		First(&uc).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, common.ErrNotFound
		}
		return nil, err
	}
	return &uc, nil
}

func (s *Service) checkAgentOwned(ctx context.Context, userID, agentID string) error {
	var n int64
	if err := s.db.WithContext(ctx).Model(&models.Agent{}).
		Where("id = ? AND user_id = ?", agentID, userID).
		Count(&n).Error; err != nil {
		return err
	}
	if n == 0 {
		return common.ErrNotFound
	}
	return nil
}

func (s *Service) detail(ctx context.Context, uc models.UserConnector) (Detail, error) {
	d := Detail{UserConnector: uc}
	var tool models.Tool
	err := s.db.WithContext(ctx).First(&tool, "id = ?", uc.ToolID).Error
	if err == nil {
		e := catalogEntry(tool)
		d.ConnectorType = &e
		return d, nil
	}
	if errors.Is(err, gorm.ErrRecordNotFound) {
		// Catalog pruned the type; the instance still lists.
		return d, nil
	}
	return d, err
}
