package chat

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/parth-ai/parth/internal/courier"
	"github.com/parth-ai/parth/internal/models"
	"github.com/parth-ai/parth/internal/reasoning"
	"github.com/parth-ai/parth/internal/store"
)

func openTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	if err := db.AutoMigrate(
		&models.Account{}, &models.Preference{}, &models.Goal{}, &models.GoalData{},
		&models.Message{}, &models.ScheduledMessage{}, &models.EvaluationLog{},
	); err != nil {
		t.Fatalf("migrate test db: %v", err)
	}
	return db
}

func newBot(t *testing.T, db *gorm.DB, engine reasoning.Engine) (*Bot, *courier.Recorder) {
	t.Helper()
	rec := &courier.Recorder{}
	b, err := New(Opts{DB: db, Engine: engine, Courier: rec, Token: "t"})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return b, rec
}

func TestNew_RequiresToken(t *testing.T) {
	if _, err := New(Opts{}); err == nil {
		t.Fatal("expected error for missing token")
	}
}

func TestHandleText_FullTurn(t *testing.T) {
	db := openTestDB(t)
	engine := reasoning.NewScripted("Nice. What's driving this?")
	b, rec := newBot(t, db, engine)

	b.handleText(context.Background(), 42, 100, "I want to learn Spanish")

	// Account created on first contact.
	acct, err := store.GetAccountByTelegramID(db, 42)
	if err != nil {
		t.Fatalf("account not created: %v", err)
	}

	// Both sides of the turn persisted.
	msgs, _ := store.RecentMessages(db, acct.ID, 10)
	if len(msgs) != 2 {
		t.Fatalf("messages = %+v, want user+assistant", msgs)
	}
	if msgs[0].Role != models.RoleUser || msgs[0].Content != "I want to learn Spanish" {
		t.Errorf("user message = %+v", msgs[0])
	}
	if msgs[0].TelegramMessageID == nil || *msgs[0].TelegramMessageID != 100 {
		t.Error("user message should record the telegram message id")
	}
	if msgs[1].Role != models.RoleAssistant {
		t.Errorf("assistant message = %+v", msgs[1])
	}

	// Reply delivered to the right chat.
	deliveries := rec.Deliveries()
	if len(deliveries) != 1 || deliveries[0].Handle != "42" {
		t.Fatalf("deliveries = %+v", deliveries)
	}

	// Engine got the persona prompt and the raw text.
	call := engine.ChatCalls[0]
	if call.System != reasoning.CoachPrompt || call.Message != "I want to learn Spanish" {
		t.Errorf("chat request = %+v", call)
	}
}

func TestHandleText_HistoryExcludesCurrentMessage(t *testing.T) {
	db := openTestDB(t)
	acct, _ := store.GetOrCreateAccount(db, 42)
	store.CreateMessage(db, acct.ID, models.RoleUser, "earlier", store.MessageOpts{})
	store.CreateMessage(db, acct.ID, models.RoleAssistant, "reply", store.MessageOpts{})

	engine := reasoning.NewScripted("ok")
	b, _ := newBot(t, db, engine)
	b.handleText(context.Background(), 42, 101, "new message")

	call := engine.ChatCalls[0]
	if len(call.History) != 2 {
		t.Fatalf("history = %+v, want the two earlier turns only", call.History)
	}
	for _, turn := range call.History {
		if turn.Content == "new message" {
			t.Error("current message must not appear in history")
		}
	}
}

func TestHandleText_EngineError_Apologizes(t *testing.T) {
	db := openTestDB(t)
	engine := reasoning.NewScripted("unused")
	engine.Err = errors.New("model down")
	b, rec := newBot(t, db, engine)

	b.handleText(context.Background(), 42, 100, "hello")

	deliveries := rec.Deliveries()
	if len(deliveries) != 1 || deliveries[0].Text != apologyText {
		t.Fatalf("deliveries = %+v, want one apology", deliveries)
	}

	// The raw engine error never reaches the user.
	for _, d := range deliveries {
		if d.Text != apologyText {
			t.Errorf("leaked error text: %q", d.Text)
		}
	}
}

func TestHandleText_EmptyReplyNotDelivered(t *testing.T) {
	db := openTestDB(t)
	engine := reasoning.NewScripted("")
	b, rec := newBot(t, db, engine)

	b.handleText(context.Background(), 42, 100, "hello")
	if len(rec.Deliveries()) != 0 {
		t.Errorf("deliveries = %+v, empty reply must not be sent", rec.Deliveries())
	}
}

func TestHandleUpdate_StartCommand(t *testing.T) {
	db := openTestDB(t)
	b, rec := newBot(t, db, reasoning.NewScripted("unused"))

	var upd update
	if err := json.Unmarshal([]byte(`{"update_id":1,"message":{"message_id":1,"text":"/start","chat":{"id":42}}}`), &upd); err != nil {
		t.Fatalf("build update: %v", err)
	}

	b.handleUpdate(context.Background(), upd)

	deliveries := rec.Deliveries()
	if len(deliveries) != 1 || deliveries[0].Text != welcomeText {
		t.Fatalf("deliveries = %+v, want the welcome message", deliveries)
	}
	// /start creates no conversation rows.
	var n int64
	db.Model(&models.Message{}).Count(&n)
	if n != 0 {
		t.Errorf("message rows = %d, want 0", n)
	}
}

func TestPoll_ParsesUpdates(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/bott/getUpdates" {
			t.Errorf("path = %q", r.URL.Path)
		}
		w.Write([]byte(`{"ok":true,"result":[
			{"update_id":7,"message":{"message_id":1,"text":"hi","chat":{"id":42}}}
		]}`))
	}))
	defer srv.Close()

	db := openTestDB(t)
	rec := &courier.Recorder{}
	b, err := New(Opts{DB: db, Engine: reasoning.NewScripted("ok"), Courier: rec, Token: "t", BaseURL: srv.URL})
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	updates, err := b.poll(context.Background(), 0)
	if err != nil {
		t.Fatalf("poll: %v", err)
	}
	if len(updates) != 1 || updates[0].UpdateID != 7 || updates[0].Message.Chat.ID != 42 {
		t.Errorf("updates = %+v", updates)
	}
}

func TestPoll_APIError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"ok":false,"description":"unauthorized"}`))
	}))
	defer srv.Close()

	db := openTestDB(t)
	b, _ := New(Opts{DB: db, Engine: reasoning.NewScripted("ok"), Courier: &courier.Recorder{}, Token: "t", BaseURL: srv.URL})
	if _, err := b.poll(context.Background(), 0); err == nil {
		t.Fatal("expected error for api failure")
	}
}
