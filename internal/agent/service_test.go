package agent

import (
	"context"
	"errors"
	"testing"

	"github.com/agentbase/agentbase/internal/common"
	"github.com/agentbase/agentbase/internal/models"
	gormsqlite "github.com/glebarez/sqlite"
	"gorm.io/gorm"
)

func openTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(gormsqlite.Open("file::memory:?cache=shared"), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	if err := db.AutoMigrate(models.All()...); err != nil {
		t.Fatalf("automigrate: %v", err)
	}
	return db
}

func TestCreate_DuplicateName(t *testing.T) {
	db := openTestDB(t)
	svc := NewService(NewRepo(db))

	if _, err := svc.Create(context.Background(), "dupA", CreateParams{Name: "helper"}); err != nil {
		t.Fatalf("create: %v", err)
	}
	_, err := svc.Create(context.Background(), "dupA", CreateParams{Name: "helper"})
	if !errors.Is(err, common.ErrDuplicateName) {
		t.Fatalf("expected ErrDuplicateName, got %v", err)
	}

	// Same name under another user is fine.
	if _, err := svc.Create(context.Background(), "dupB", CreateParams{Name: "helper"}); err != nil {
		t.Fatalf("create for other user: %v", err)
	}
}

func TestCreate_BadLLMConfigRef(t *testing.T) {
	db := openTestDB(t)
	svc := NewService(NewRepo(db))

	cfg := &models.LLMConfig{UserID: "refB", Provider: "openai", ModelName: "gpt-4o", EncryptedCredentials: "x"}
	if err := db.Create(cfg).Error; err != nil {
		t.Fatalf("seed config: %v", err)
	}

	// Another user's config is invisible as a reference.
	_, err := svc.Create(context.Background(), "refA", CreateParams{Name: "a", LLMConfigID: &cfg.ID})
	if !errors.Is(err, common.ErrInvalidReference) {
		t.Fatalf("expected ErrInvalidReference, got %v", err)
	}

	missing := "does-not-exist"
	_, err = svc.Create(context.Background(), "refA", CreateParams{Name: "a", LLMConfigID: &missing})
	if !errors.Is(err, common.ErrInvalidReference) {
		t.Fatalf("expected ErrInvalidReference, got %v", err)
	}
}

func TestGet_OwnershipLooksLikeNotFound(t *testing.T) {
	db := openTestDB(t)
	svc := NewService(NewRepo(db))

	a, err := svc.Create(context.Background(), "ownA", CreateParams{Name: "mine"})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	if _, err := svc.Get(context.Background(), "ownA", a.ID); err != nil {
		t.Fatalf("owner get: %v", err)
	}
	_, err = svc.Get(context.Background(), "ownB", a.ID)
	if !errors.Is(err, common.ErrNotFound) {
		t.Fatalf("expected ErrNotFound for foreign owner, got %v", err)
	}
}

func TestUpdate_PartialAndClearConfig(t *testing.T) {
	db := openTestDB(t)
	svc := NewService(NewRepo(db))

	cfg := &models.LLMConfig{UserID: "updA", Provider: "openai", ModelName: "gpt-4o", EncryptedCredentials: "x"}
	if err := db.Create(cfg).Error; err != nil {
		t.Fatalf("seed config: %v", err)
	}

	a, err := svc.Create(context.Background(), "updA", CreateParams{
		Name:         "mine",
		Description:  "first",
		SystemPrompt: "be nice",
		LLMConfigID:  &cfg.ID,
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	newDesc := "second"
	updated, err := svc.Update(context.Background(), "updA", a.ID, UpdateParams{Description: &newDesc})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if updated.Description != "second" || updated.Name != "mine" || updated.SystemPrompt != "be nice" {
		t.Fatalf("partial update touched other fields: %+v", updated)
	}
	if updated.LLMConfigID == nil || *updated.LLMConfigID != cfg.ID {
		t.Fatalf("partial update dropped config reference")
	}

	empty := ""
	updated, err = svc.Update(context.Background(), "updA", a.ID, UpdateParams{LLMConfigID: &empty})
	if err != nil {
		t.Fatalf("clear config: %v", err)
	}
	if updated.LLMConfigID != nil {
		t.Fatalf("expected config reference cleared, got %v", *updated.LLMConfigID)
	}
}

func TestUpdate_RenameToTakenName(t *testing.T) {
	db := openTestDB(t)
	svc := NewService(NewRepo(db))

	if _, err := svc.Create(context.Background(), "renA", CreateParams{Name: "one"}); err != nil {
		t.Fatalf("create one: %v", err)
	}
	b, err := svc.Create(context.Background(), "renA", CreateParams{Name: "two"})
	if err != nil {
		t.Fatalf("create two: %v", err)
	}

	taken := "one"
	_, err = svc.Update(context.Background(), "renA", b.ID, UpdateParams{Name: &taken})
	if !errors.Is(err, common.ErrDuplicateName) {
		t.Fatalf("expected ErrDuplicateName, got %v", err)
	}

	// Renaming to its own current name is a no-op, not a conflict.
	same := "two"
	if _, err := svc.Update(context.Background(), "renA", b.ID, UpdateParams{Name: &same}); err != nil {
		t.Fatalf("self rename: %v", err)
	}
}

func TestDelete_Cascades(t *testing.T) {
	db := openTestDB(t)
	svc := NewService(NewRepo(db))

	a, err := svc.Create(context.Background(), "delA", CreateParams{Name: "doomed"})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	seed := []any{
		&models.ConversationTurn{AgentID: a.ID, Role: models.RoleUser, Content: "hi"},
		&models.ConversationTurn{AgentID: a.ID, Role: models.RoleAssistant, Content: "hello"},
		&models.AgentConnectorLink{AgentID: a.ID, UserConnectorID: "conn-1"},
		&models.ChatJob{ID: "01JOBDELETECASCADE0000000A", UserID: "delA", AgentID: a.ID, Message: "x"},
	}
	for _, row := range seed {
		if err := db.Create(row).Error; err != nil {
			t.Fatalf("seed: %v", err)
		}
	}

	if err := svc.Delete(context.Background(), "delB", a.ID); !errors.Is(err, common.ErrNotFound) {
		t.Fatalf("expected ErrNotFound for foreign delete, got %v", err)
	}
	if err := svc.Delete(context.Background(), "delA", a.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}

	counts := map[string]any{
		"turns": &models.ConversationTurn{},
		"links": &models.AgentConnectorLink{},
		"jobs":  &models.ChatJob{},
	}
	for name, m := range counts {
		var n int64
		if err := db.Model(m).Where("agent_id = ?", a.ID).Count(&n).Error; err != nil {
			t.Fatalf("count %s: %v", name, err)
		}
		if n != 0 {
			t.Fatalf("expected 0 %s after delete, got %d", name, n)
		}
	}

	if err := svc.Delete(context.Background(), "delA", a.ID); !errors.Is(err, common.ErrNotFound) {
		t.Fatalf("expected ErrNotFound for repeat delete, got %v", err)
	}
}
