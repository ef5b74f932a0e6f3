package connector

import (
	"context"
	"encoding/json"
	"log"

	"github.com/agentbase/agentbase/internal/models"
	"gorm.io/gorm"
)

// Connector implementation statuses. Status lives in the in-process
// registry, not the tools table; it describes the build, not the row.
const (
	StatusAvailable  = "available"
	StatusComingSoon = "coming_soon"
	StatusPlanned    = "planned"
)

type registryEntry struct {
	Name         string
	Description  string
	ToolType     string
	ConfigSchema json.RawMessage
	ExecutionRef string
	Status       string
}

// catalogRegistry is the built-in list of connector types. Reconciled into
// the tools table at startup; rows absent from this list are pruned.
var catalogRegistry = []registryEntry{
	{
		Name:        "Gmail",
		Description: "Interacts with Gmail emails. Allows reading, sending, and organizing emails.",
		ToolType:    models.ToolTypeOAuth2,
		ConfigSchema: json.RawMessage(`{
			"type": "object",
			"properties": {
				"scopes": {
					"type": "array",
					"items": {
						"type": "string",
						"enum": ["https://www.googleapis.com/auth/gmail.readonly",
							"https://www.googleapis.com/auth/gmail.send"]
					}
				}
			}
		}`),
		ExecutionRef: "connectors.gmail",
		Status:       StatusAvailable,
	},
	{
		Name:        "Google Calendar",
		Description: "Interacts with Google Calendar events. Enables viewing, creating, and managing calendar appointments.",
		ToolType:    models.ToolTypeOAuth2,
		ConfigSchema: json.RawMessage(`{
			"type": "object",
			"properties": {
				"scopes": {
					"type": "array",
					"items": {
						"type": "string",
						"enum": ["https://www.googleapis.com/auth/calendar.readonly",
							"https://www.googleapis.com/auth/calendar.events"]
					}
				}
			}
		}`),
		ExecutionRef: "connectors.calendar",
		Status:       StatusAvailable,
	},
	{
		Name:        "Web Search",
		Description: "Searches the web for real-time information.",
		ToolType:    models.ToolTypeAPIKey,
		ConfigSchema: json.RawMessage(`{
			"type": "object",
			"properties": {
				"search_engine": {
					"type": "string",
					"enum": ["google", "bing"]
				}
			}
		}`),
		ExecutionRef: "connectors.web_search",
		Status:       StatusAvailable,
	},
}

func registryStatus(toolName string) string {
	for _, e := range catalogRegistry {
		if e.Name == toolName {
			return e.Status
		}
	}
	return StatusAvailable
}

// SyncCatalog reconciles the static registry into the tools table: upsert
// by name, prune rows the registry no longer lists.
func SyncCatalog(ctx context.Context, db *gorm.DB) error {
	return db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var existing []models.Tool
		if err := tx.Find(&existing).Error; err != nil {
			return err
		}
		byName := make(map[string]models.Tool, len(existing))
		for _, t := range existing {
			byName[t.Name] = t
		}

		for _, e := range catalogRegistry {
			if t, ok := byName[e.Name]; ok {
				t.Description = e.Description
				t.ToolType = e.ToolType
				t.ConfigSchema = e.ConfigSchema
				t.ExecutionRef = e.ExecutionRef
				if err := tx.Save(&t).Error; err != nil {
					return err
				}
				continue
			}
			t := models.Tool{
				Name:         e.Name,
				Description:  e.Description,
				ToolType:     e.ToolType,
				ConfigSchema: e.ConfigSchema,
				ExecutionRef: e.ExecutionRef,
			}
			if err := tx.Create(&t).Error; err != nil {
				return err
			}
			log.Printf("connector catalog: registered %s", e.Name)
		}

		for name, t := range byName {
			found := false
			for _, e := range catalogRegistry {
				if e.Name == name {
					found = true
					break
				}
			}
			if !found {
				if err := tx.Delete(&t).Error; err != nil {
					return err
				}
				log.Printf("connector catalog: pruned %s", name)
			}
		}
		return nil
	})
}

// CatalogEntry is a tools row decorated with its registry status.
type CatalogEntry struct {
	ID           string          `json:"id"`
	Name         string          `json:"name"`
	Description  string          `json:"description"`
	ToolType     string          `json:"tool_type"`
	ConfigSchema json.RawMessage `json:"config_schema,omitempty"`
	ExecutionRef string          `json:"execution_ref"`
	Status       string          `json:"status"`
}

func catalogEntry(t models.Tool) CatalogEntry {
	return CatalogEntry{
		ID:           t.ID,
		Name:         t.Name,
		Description:  t.Description,
		ToolType:     t.ToolType,
		ConfigSchema: t.ConfigSchema,
		ExecutionRef: t.ExecutionRef,
		Status:       registryStatus(t.Name),
	}
}
