package models

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Conversation turn roles.
const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
	RoleTool      = "tool"
	RoleSystem    = "system"
)

// Tool types in the connector catalog.
const (
	ToolTypeBuiltin = "builtin"
	ToolTypeAPIKey  = "api_key"
	ToolTypeOAuth2  = "oauth2"
	ToolTypeCustom  = "custom"
)

// User connector setup statuses.
const (
	SetupNeedsSetup = "needs_setup"
	SetupActive     = "active"
	SetupError      = "error"
)

type User struct {
	ID             string    `gorm:"type:varchar(36);primaryKey" json:"id"`
	Email          string    `gorm:"type:varchar(255);uniqueIndex;not null" json:"email"`
	HashedPassword string    `gorm:"type:varchar(255);not null" json:"-"`
	IsActive       bool      `gorm:"default:true" json:"is_active"`
	IsSuperuser    bool      `gorm:"default:false" json:"is_superuser"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

func (User) TableName() string { return "users" }

func (u *User) BeforeCreate(tx *gorm.DB) error {
	if u.ID == "" {
		u.ID = uuid.NewString()
	}
	return nil
}

// APIKey stores one provider credential per row. The key material is
// encrypted before it reaches this struct and never leaves it decrypted.
type APIKey struct {
	ID           string    `gorm:"type:varchar(36);primaryKey" json:"id"`
	UserID       string    `gorm:"type:varchar(36);index;not null" json:"user_id"`
	ProviderName string    `gorm:"type:varchar(64);index;not null" json:"provider_name"`
	EncryptedKey string    `gorm:"type:text;not null" json:"-"`
	CreatedAt    time.Time `json:"created_at"`
}

func (APIKey) TableName() string { return "api_keys" }

func (k *APIKey) BeforeCreate(tx *gorm.DB) error {
	if k.ID == "" {
		k.ID = uuid.NewString()
	}
	return nil
}

// LLMConfig is a (provider, model, credential) triple an agent can use.
// Rows are seeded when an API key is created and share its ciphertext.
type LLMConfig struct {
	ID                   string    `gorm:"type:varchar(36);primaryKey" json:"id"`
	UserID               string    `gorm:"type:varchar(36);index;not null" json:"user_id"`
	Provider             string    `gorm:"type:varchar(64);not null" json:"provider"`
	ModelName            string    `gorm:"type:varchar(128);not null" json:"model_name"`
	EncryptedCredentials string    `gorm:"type:text;not null" json:"-"`
	IsDefault            bool      `gorm:"default:false" json:"is_default"`
	CreatedAt            time.Time `json:"created_at"`
	UpdatedAt            time.Time `json:"updated_at"`
}

func (LLMConfig) TableName() string { return "llm_configs" }

func (c *LLMConfig) BeforeCreate(tx *gorm.DB) error {
	if c.ID == "" {
		c.ID = uuid.NewString()
	}
	return nil
}

type Agent struct {
	ID           string    `gorm:"type:varchar(36);primaryKey" json:"id"`
	UserID       string    `gorm:"type:varchar(36);not null;uniqueIndex:uq_user_agent_name,priority:1" json:"user_id"`
	LLMConfigID  *string   `gorm:"type:varchar(36);index" json:"llm_config_id"`
	Name         string    `gorm:"type:varchar(255);not null;uniqueIndex:uq_user_agent_name,priority:2" json:"name"`
	Description  string    `gorm:"type:text" json:"description"`
	SystemPrompt string    `gorm:"type:text" json:"system_prompt"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

func (Agent) TableName() string { return "agents" }

func (a *Agent) BeforeCreate(tx *gorm.DB) error {
	if a.ID == "" {
		a.ID = uuid.NewString()
	}
	return nil
}

// ConversationTurn is one append-only message in an agent's conversation.
// The integer primary key makes write order total even when two turns land
// in the same timestamp tick.
type ConversationTurn struct {
	ID         uint64          `gorm:"primaryKey;autoIncrement" json:"id"`
	AgentID    string          `gorm:"type:varchar(36);index;not null" json:"agent_id"`
	Role       string          `gorm:"type:varchar(16);not null" json:"role"`
	Content    string          `gorm:"type:text" json:"content"`
	ToolCallID *string         `gorm:"type:varchar(64)" json:"tool_call_id,omitempty"`
	ToolName   *string         `gorm:"type:varchar(128)" json:"tool_name,omitempty"`
	ToolInput  json.RawMessage `gorm:"type:text" json:"tool_input,omitempty"`
	ToolOutput json.RawMessage `gorm:"type:text" json:"tool_output,omitempty"`
	CreatedAt  time.Time       `gorm:"index" json:"created_at"`
}

func (ConversationTurn) TableName() string { return "conversation_turns" }

// Tool is a catalog entry describing one connector type. Rows mirror the
// static registry and are reconciled at startup.
type Tool struct {
	ID           string          `gorm:"type:varchar(36);primaryKey" json:"id"`
	Name         string          `gorm:"type:varchar(128);uniqueIndex;not null" json:"name"`
	Description  string          `gorm:"type:text;not null" json:"description"`
	ToolType     string          `gorm:"type:varchar(32);not null" json:"tool_type"`
	ConfigSchema json.RawMessage `gorm:"type:text" json:"config_schema,omitempty"`
	ExecutionRef string          `gorm:"type:varchar(255);not null" json:"execution_ref"`
	CreatedAt    time.Time       `json:"created_at"`
}

func (Tool) TableName() string { return "tools" }

func (t *Tool) BeforeCreate(tx *gorm.DB) error {
	if t.ID == "" {
		t.ID = uuid.NewString()
	}
	return nil
}

// UserConnector is a user's configured instance of a catalog Tool.
type UserConnector struct {
	ID                   string          `gorm:"type:varchar(36);primaryKey" json:"id"`
	UserID               string          `gorm:"type:varchar(36);not null;uniqueIndex:uq_user_connector_name,priority:1" json:"user_id"`
	ToolID               string          `gorm:"type:varchar(36);index;not null" json:"tool_id"`
	Name                 string          `gorm:"type:varchar(255);not null;uniqueIndex:uq_user_connector_name,priority:2" json:"name"`
	SetupStatus          string          `gorm:"type:varchar(32);not null;default:needs_setup" json:"setup_status"`
	ConfigData           json.RawMessage `gorm:"type:text" json:"config_data,omitempty"`
	EncryptedCredentials *string         `gorm:"type:text" json:"-"`
	CreatedAt            time.Time       `json:"created_at"`
	UpdatedAt            time.Time       `json:"updated_at"`
}

func (UserConnector) TableName() string { return "user_connectors" }

func (c *UserConnector) BeforeCreate(tx *gorm.DB) error {
	if c.ID == "" {
		c.ID = uuid.NewString()
	}
	return nil
}

// AgentConnectorLink joins an agent to one of its owner's connectors.
type AgentConnectorLink struct {
	AgentID         string    `gorm:"type:varchar(36);primaryKey" json:"agent_id"`
	UserConnectorID string    `gorm:"type:varchar(36);primaryKey" json:"user_connector_id"`
	CreatedAt       time.Time `json:"created_at"`
}

func (AgentConnectorLink) TableName() string { return "agent_connector_links" }

// ConfiguredTool is the older per-user tool instance table; connectors
// superseded it but the schema keeps it for data parity.
type ConfiguredTool struct {
	ID                   string          `gorm:"type:varchar(36);primaryKey" json:"id"`
	UserID               string          `gorm:"type:varchar(36);not null;uniqueIndex:uq_user_configured_tool_name,priority:1" json:"user_id"`
	ToolID               string          `gorm:"type:varchar(36);index;not null" json:"tool_id"`
	Name                 string          `gorm:"type:varchar(255);not null;uniqueIndex:uq_user_configured_tool_name,priority:2" json:"name"`
	Status               string          `gorm:"type:varchar(32);default:active" json:"status"`
	ConfigData           json.RawMessage `gorm:"type:text" json:"config_data,omitempty"`
	EncryptedCredentials *string         `gorm:"type:text" json:"-"`
	CreatedAt            time.Time       `json:"created_at"`
	UpdatedAt            time.Time       `json:"updated_at"`
}

func (ConfiguredTool) TableName() string { return "configured_tools" }

func (t *ConfiguredTool) BeforeCreate(tx *gorm.DB) error {
	if t.ID == "" {
		t.ID = uuid.NewString()
	}
	return nil
}

// AgentToolLink joins an agent to a configured tool.
type AgentToolLink struct {
	AgentID          string    `gorm:"type:varchar(36);primaryKey" json:"agent_id"`
	ConfiguredToolID string    `gorm:"type:varchar(36);primaryKey" json:"configured_tool_id"`
	CreatedAt        time.Time `json:"created_at"`
}

func (AgentToolLink) TableName() string { return "agent_tool_links" }

// Chat job statuses.
const (
	JobQueued    = "queued"
	JobRunning   = "running"
	JobSucceeded = "succeeded"
	JobFailed    = "failed"
)

// ChatJob is one queued async chat request. IDs are ULIDs so job listings
// sort by creation time; the idempotency key dedupes client retries.
type ChatJob struct {
	ID             string    `gorm:"type:varchar(26);primaryKey" json:"id"`
	UserID         string    `gorm:"type:varchar(36);not null;uniqueIndex:uq_user_idem_key,priority:1" json:"user_id"`
	AgentID        string    `gorm:"type:varchar(36);index;not null" json:"agent_id"`
	Message        string    `gorm:"type:text;not null" json:"message"`
	IdempotencyKey *string   `gorm:"type:varchar(128);uniqueIndex:uq_user_idem_key,priority:2" json:"idempotency_key,omitempty"`
	Status         string    `gorm:"type:varchar(16);not null;default:queued" json:"status"`
	Reply          string    `gorm:"type:text" json:"reply,omitempty"`
	Error          string    `gorm:"type:text" json:"error,omitempty"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

func (ChatJob) TableName() string { return "chat_jobs" }

// LogEntry records operational events (provider failures and the like)
// with optional user/agent context.
type LogEntry struct {
	ID            string          `gorm:"type:varchar(36);primaryKey" json:"id"`
	UserID        *string         `gorm:"type:varchar(36);index" json:"user_id,omitempty"`
	AgentID       *string         `gorm:"type:varchar(36);index" json:"agent_id,omitempty"`
	CorrelationID string          `gorm:"type:varchar(64);index" json:"correlation_id,omitempty"`
	Level         string          `gorm:"type:varchar(16);default:INFO" json:"level"`
	Message       string          `gorm:"type:text;not null" json:"message"`
	DetailsJSON   json.RawMessage `gorm:"type:text" json:"details,omitempty"`
	CreatedAt     time.Time       `gorm:"index" json:"created_at"`
}

func (LogEntry) TableName() string { return "log_entries" }

func (e *LogEntry) BeforeCreate(tx *gorm.DB) error {
	if e.ID == "" {
		e.ID = uuid.NewString()
	}
	return nil
}

// All lists every persistent model for AutoMigrate.
func All() []any {
	return []any{
		&User{},
		&APIKey{},
		&LLMConfig{},
		&Agent{},
		&ConversationTurn{},
		&Tool{},
		&UserConnector{},
		&AgentConnectorLink{},
		&ConfiguredTool{},
		&AgentToolLink{},
		&ChatJob{},
		&LogEntry{},
	}
}
