package chat

import (
	"context"
	"errors"
	"testing"

	"github.com/agentbase/agentbase/internal/ai"
	"github.com/agentbase/agentbase/internal/common"
	"github.com/agentbase/agentbase/internal/models"
	"github.com/agentbase/agentbase/internal/secrets"
	gormsqlite "github.com/glebarez/sqlite"
	"gorm.io/gorm"
)

type fakeClient struct {
	reply string
	err   error
	last  ai.Request
	calls int
}

func (f *fakeClient) Complete(ctx context.Context, req ai.Request) (string, error) {
	_ = ctx
	f.calls++
	f.last = req
	if f.err != nil {
		return "", f.err
	}
	return f.reply, nil
}

type denyAllLimiter struct{}

func (denyAllLimiter) Allow(ctx context.Context, userID string) (bool, error) { return false, nil }

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

type fixture struct {
	db     *gorm.DB
	svc    *Service
	codec  *secrets.Codec
	client *fakeClient
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	db := openTestDB(t)
	codec, err := secrets.NewCodecFromConfig("")
	if err != nil {
		t.Fatalf("new codec: %v", err)
	}
	client := &fakeClient{reply: "hello"}
	reg := ai.NewRegistry()
	reg.Register(ai.KindOpenAI, client)
	return &fixture{
		db:     db,
		svc:    NewService(NewRepo(db), reg, codec, nil),
		codec:  codec,
		client: client,
	}
}

// seedAgent creates an agent for userID; withConfig attaches an openai
// config whose credential decrypts under the fixture codec.
func (f *fixture) seedAgent(t *testing.T, userID, name string, withConfig bool) *models.Agent {
	t.Helper()
	a := &models.Agent{UserID: userID, Name: name, SystemPrompt: "be helpful"}
	if withConfig {
		enc, err := f.codec.Encrypt("sk-live")
		if err != nil {
			t.Fatalf("encrypt: %v", err)
		}
		cfg := &models.LLMConfig{
			UserID:               userID,
			Provider:             "openai",
			ModelName:            "gpt-4o",
			EncryptedCredentials: enc,
			IsDefault:            true,
		}
		if err := f.db.Create(cfg).Error; err != nil {
			t.Fatalf("seed config: %v", err)
		}
		a.LLMConfigID = &cfg.ID
	}
	if err := f.db.Create(a).Error; err != nil {
		t.Fatalf("seed agent: %v", err)
	}
	return a
}

func (f *fixture) turns(t *testing.T, agentID string) []models.ConversationTurn {
	t.Helper()
	turns, err := NewRepo(f.db).ListTurnsAsc(context.Background(), agentID, 0)
	if err != nil {
		t.Fatalf("list turns: %v", err)
	}
	return turns
}

func TestSendMessage_AppendsUserAndAssistant(t *testing.T) {
	f := newFixture(t)
	a := f.seedAgent(t, "engA", "with config", true)

	turn, err := f.svc.SendMessage(context.Background(), "engA", a.ID, "hi")
	if err != nil {
		t.Fatalf("send: %v", err)
	}
	if turn.Role != models.RoleAssistant || turn.Content != "hello" {
		t.Fatalf("unexpected reply turn: %+v", turn)
	}

	turns := f.turns(t, a.ID)
	if len(turns) != 2 {
		t.Fatalf("expected 2 turns, got %d", len(turns))
	}
	if turns[0].Role != models.RoleUser || turns[0].Content != "hi" {
		t.Fatalf("unexpected user turn: %+v", turns[0])
	}
	if turns[1].Role != models.RoleAssistant || turns[1].Content != "hello" {
		t.Fatalf("unexpected assistant turn: %+v", turns[1])
	}

	// The provider saw the decrypted key, model, prompt, fixed params, and
	// the just-written user turn.
	req := f.client.last
	if req.APIKey != "sk-live" || req.Model != "gpt-4o" || req.System != "be helpful" {
		t.Fatalf("unexpected request: %+v", req)
	}
	if req.Temperature != 0.7 || req.MaxTokens != 1000 {
		t.Fatalf("unexpected generation params: %+v", req)
	}
	if len(req.Messages) != 1 || req.Messages[0].Content != "hi" {
		t.Fatalf("expected replayed history to end with the user turn: %+v", req.Messages)
	}
}

func TestSendMessage_MissingConfig(t *testing.T) {
	f := newFixture(t)
	a := f.seedAgent(t, "engB", "bare", false)

	_, err := f.svc.SendMessage(context.Background(), "engB", a.ID, "hi")
	if !errors.Is(err, common.ErrMissingLLMConfig) {
		t.Fatalf("expected ErrMissingLLMConfig, got %v", err)
	}
	if len(f.turns(t, a.ID)) != 0 {
		t.Fatalf("expected no turns written before resolution succeeds")
	}
}

func TestSendMessage_ForeignAgent(t *testing.T) {
	f := newFixture(t)
	a := f.seedAgent(t, "engC", "owned", true)

	_, err := f.svc.SendMessage(context.Background(), "engD", a.ID, "hi")
	if !errors.Is(err, common.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestSendMessage_ProviderFailureKeepsUserTurn(t *testing.T) {
	f := newFixture(t)
	a := f.seedAgent(t, "engE", "flaky", true)
	f.client.err = errors.New("openai: status 500")

	_, err := f.svc.SendMessage(context.Background(), "engE", a.ID, "first")
	var pce *common.ProviderCallError
	if !errors.As(err, &pce) {
		t.Fatalf("expected ProviderCallError, got %v", err)
	}
	if pce.Provider != "openai" {
		t.Fatalf("unexpected provider in error: %q", pce.Provider)
	}

	turns := f.turns(t, a.ID)
	if len(turns) != 1 || turns[0].Role != models.RoleUser || turns[0].Content != "first" {
		t.Fatalf("expected only the user turn to survive, got %+v", turns)
	}

	var logCount int64
	if err := f.db.Model(&models.LogEntry{}).Where("agent_id = ?", a.ID).Count(&logCount).Error; err != nil {
		t.Fatalf("count logs: %v", err)
	}
	if logCount != 1 {
		t.Fatalf("expected 1 log entry, got %d", logCount)
	}

	// After the fault clears, the next exchange succeeds and the reply
	// belongs to the second user turn, not the first.
	f.client.err = nil
	f.client.reply = "second reply"
	if _, err := f.svc.SendMessage(context.Background(), "engE", a.ID, "second"); err != nil {
		t.Fatalf("send after recovery: %v", err)
	}
	turns = f.turns(t, a.ID)
	if len(turns) != 3 {
		t.Fatalf("expected 3 turns, got %d", len(turns))
	}
	if turns[1].Content != "second" || turns[2].Content != "second reply" {
		t.Fatalf("unexpected turn order: %+v", turns)
	}
}

func TestSendMessage_UnsupportedProvider(t *testing.T) {
	f := newFixture(t)
	a := f.seedAgent(t, "engF", "odd provider", true)
	if err := f.db.Model(&models.LLMConfig{}).
		Where("id = ?", *a.LLMConfigID).
		Update("provider", "cohere").Error; err != nil {
		t.Fatalf("update provider: %v", err)
	}

	_, err := f.svc.SendMessage(context.Background(), "engF", a.ID, "hi")
	if !errors.Is(err, common.ErrUnsupportedProvider) {
		t.Fatalf("expected ErrUnsupportedProvider, got %v", err)
	}
	// The user turn was already persisted by then.
	if len(f.turns(t, a.ID)) != 1 {
		t.Fatalf("expected the user turn to persist")
	}
}

func TestSendMessage_CredentialUnavailable(t *testing.T) {
	f := newFixture(t)
	a := f.seedAgent(t, "engG", "corrupt cred", true)
	if err := f.db.Model(&models.LLMConfig{}).
		Where("id = ?", *a.LLMConfigID).
		Update("encrypted_credentials", "not-a-ciphertext").Error; err != nil {
		t.Fatalf("corrupt credentials: %v", err)
	}

	_, err := f.svc.SendMessage(context.Background(), "engG", a.ID, "hi")
	if !errors.Is(err, common.ErrCredentialUnavailable) {
		t.Fatalf("expected ErrCredentialUnavailable, got %v", err)
	}
	if f.client.calls != 0 {
		t.Fatalf("provider must not be called without a credential")
	}
}

func TestSendMessage_RateLimited(t *testing.T) {
	f := newFixture(t)
	a := f.seedAgent(t, "engH", "limited", true)
	f.svc.limiter = denyAllLimiter{}

	_, err := f.svc.SendMessage(context.Background(), "engH", a.ID, "hi")
	if !errors.Is(err, common.ErrRateLimited) {
		t.Fatalf("expected ErrRateLimited, got %v", err)
	}
}

func TestHistory_ClampAndOrder(t *testing.T) {
	f := newFixture(t)
	a := f.seedAgent(t, "histA", "chatty", true)

	repo := NewRepo(f.db)
	for i := 0; i < 6; i++ {
		role := models.RoleUser
		if i%2 == 1 {
			role = models.RoleAssistant
		}
		if err := repo.InsertTurn(context.Background(), &models.ConversationTurn{
			AgentID: a.ID,
			Role:    role,
			Content: "seed",
		}); err != nil {
			t.Fatalf("seed turn %d: %v", i, err)
		}
	}

	turns, err := f.svc.History(context.Background(), "histA", a.ID, 4)
	if err != nil {
		t.Fatalf("history: %v", err)
	}
	if len(turns) != 4 {
		t.Fatalf("expected 4 turns, got %d", len(turns))
	}
	for i := 1; i < len(turns); i++ {
		if turns[i].ID < turns[i-1].ID {
			t.Fatalf("expected ascending order, got %d before %d", turns[i-1].ID, turns[i].ID)
		}
	}

	// Out-of-range limits fall back to 50.
	if _, err := f.svc.History(context.Background(), "histA", a.ID, 500); err != nil {
		t.Fatalf("history with big limit: %v", err)
	}
	if _, err := f.svc.History(context.Background(), "histB", a.ID, 10); !errors.Is(err, common.ErrNotFound) {
		t.Fatalf("expected ErrNotFound for foreign history, got %v", err)
	}
}

func TestClear_DropsAllTurns(t *testing.T) {
	f := newFixture(t)
	a := f.seedAgent(t, "clrA", "forgetful", true)

	if _, err := f.svc.SendMessage(context.Background(), "clrA", a.ID, "hi"); err != nil {
		t.Fatalf("send: %v", err)
	}
	if err := f.svc.Clear(context.Background(), "clrB", a.ID); !errors.Is(err, common.ErrNotFound) {
		t.Fatalf("expected ErrNotFound for foreign clear, got %v", err)
	}
	if err := f.svc.Clear(context.Background(), "clrA", a.ID); err != nil {
		t.Fatalf("clear: %v", err)
	}
	if len(f.turns(t, a.ID)) != 0 {
		t.Fatalf("expected empty history after clear")
	}
}

func TestEnqueueJob_IdempotencyKey(t *testing.T) {
	f := newFixture(t)
	a := f.seedAgent(t, "jobA", "queued", true)

	key := "retry-key-1"
	job, created, err := f.svc.EnqueueJob(context.Background(), "jobA", a.ID, "hi", &key)
	if err != nil {
		t.Fatalf("enqueue: %v", err)
	}
	if !created || job.Status != models.JobQueued {
		t.Fatalf("expected fresh queued job, got created=%v status=%q", created, job.Status)
	}

	again, created, err := f.svc.EnqueueJob(context.Background(), "jobA", a.ID, "hi", &key)
	if err != nil {
		t.Fatalf("enqueue repeat: %v", err)
	}
	if created || again.ID != job.ID {
		t.Fatalf("expected existing job back, got created=%v id=%s", created, again.ID)
	}

	// No key means a new job each time.
	other, created, err := f.svc.EnqueueJob(context.Background(), "jobA", a.ID, "hi", nil)
	if err != nil {
		t.Fatalf("enqueue keyless: %v", err)
	}
	if !created || other.ID == job.ID {
		t.Fatalf("expected a distinct job without a key")
	}

	if _, _, err := f.svc.EnqueueJob(context.Background(), "jobB", a.ID, "hi", nil); !errors.Is(err, common.ErrNotFound) {
		t.Fatalf("expected ErrNotFound for foreign enqueue, got %v", err)
	}
}

func TestRunJob_SuccessAndFailure(t *testing.T) {
	f := newFixture(t)
	a := f.seedAgent(t, "jobC", "worker bound", true)

	job, _, err := f.svc.EnqueueJob(context.Background(), "jobC", a.ID, "hi", nil)
	if err != nil {
		t.Fatalf("enqueue: %v", err)
	}
	if err := f.svc.RunJob(context.Background(), job.ID); err != nil {
		t.Fatalf("run job: %v", err)
	}
	got, err := f.svc.GetJob(context.Background(), "jobC", job.ID)
	if err != nil {
		t.Fatalf("get job: %v", err)
	}
	if got.Status != models.JobSucceeded || got.Reply != "hello" {
		t.Fatalf("expected succeeded job with reply, got %+v", got)
	}
	if len(f.turns(t, a.ID)) != 2 {
		t.Fatalf("expected the job to write both turns")
	}

	// A finished job is not re-run.
	calls := f.client.calls
	if err := f.svc.RunJob(context.Background(), job.ID); err != nil {
		t.Fatalf("re-run job: %v", err)
	}
	if f.client.calls != calls {
		t.Fatalf("finished job must not call the provider again")
	}

	f.client.err = errors.New("boom")
	failing, _, err := f.svc.EnqueueJob(context.Background(), "jobC", a.ID, "again", nil)
	if err != nil {
		t.Fatalf("enqueue failing: %v", err)
	}
	if err := f.svc.RunJob(context.Background(), failing.ID); err != nil {
		t.Fatalf("run failing job: %v", err)
	}
	got, err = f.svc.GetJob(context.Background(), "jobC", failing.ID)
	if err != nil {
		t.Fatalf("get failing job: %v", err)
	}
	if got.Status != models.JobFailed || got.Error == "" {
		t.Fatalf("expected failed job with error, got %+v", got)
	}
	// The failed run still recorded its user turn.
	if len(f.turns(t, a.ID)) != 3 {
		t.Fatalf("expected 3 turns after failed job, got %d", len(f.turns(t, a.ID)))
	}

	// Job ids are invisible across users.
	if _, err := f.svc.GetJob(context.Background(), "jobD", job.ID); !errors.Is(err, common.ErrNotFound) {
		t.Fatalf("expected ErrNotFound for foreign job, got %v", err)
	}
}
