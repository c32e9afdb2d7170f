package store

import (
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/parth-ai/parth/internal/models"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
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

func mustAccount(t *testing.T, db *gorm.DB, telegramID int64) *models.Account {
	t.Helper()
	acct, err := GetOrCreateAccount(db, telegramID)
	if err != nil {
		t.Fatalf("GetOrCreateAccount: %v", err)
	}
	return acct
}

func TestGetOrCreateAccount_CreatesOnFirstContact(t *testing.T) {
	db := openTestDB(t)

	acct := mustAccount(t, db, 42)
	if acct.ID == 0 {
		t.Fatal("expected account ID to be set")
	}
	if !acct.IsActive {
		t.Error("new account should be active")
	}

	again := mustAccount(t, db, 42)
	if again.ID != acct.ID {
		t.Errorf("second call created new account: %d != %d", again.ID, acct.ID)
	}
}

func TestGetAccount_NotFound(t *testing.T) {
	db := openTestDB(t)

	_, err := GetAccount(db, 999)
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("error = %v, want ErrNotFound", err)
	}
}

func TestActiveAccountsWithActiveGoals(t *testing.T) {
	db := openTestDB(t)

	withGoal := mustAccount(t, db, 1)
	if _, err := CreateGoal(db, withGoal.ID, "run a 5K"); err != nil {
		t.Fatalf("CreateGoal: %v", err)
	}

	// Account with only a completed goal.
	doneOnly := mustAccount(t, db, 2)
	g, _ := CreateGoal(db, doneOnly.ID, "old goal")
	if err := UpdateGoalStatus(db, doneOnly.ID, g.ID, models.GoalCompleted); err != nil {
		t.Fatalf("UpdateGoalStatus: %v", err)
	}

	// Inactive account with an active goal.
	inactive := mustAccount(t, db, 3)
	CreateGoal(db, inactive.ID, "dormant goal")
	db.Model(&models.Account{}).Where("id = ?", inactive.ID).Update("is_active", false)

	// Goal-less account.
	mustAccount(t, db, 4)

	accts, err := ActiveAccountsWithActiveGoals(db)
	if err != nil {
		t.Fatalf("ActiveAccountsWithActiveGoals: %v", err)
	}
	if len(accts) != 1 {
		t.Fatalf("got %d accounts, want 1", len(accts))
	}
	if accts[0].ID != withGoal.ID {
		t.Errorf("enumerated account %d, want %d", accts[0].ID, withGoal.ID)
	}
}

func TestActiveAccountsWithActiveGoals_NoDuplicates(t *testing.T) {
	db := openTestDB(t)

	acct := mustAccount(t, db, 1)
	CreateGoal(db, acct.ID, "first")
	CreateGoal(db, acct.ID, "second")

	accts, err := ActiveAccountsWithActiveGoals(db)
	if err != nil {
		t.Fatalf("ActiveAccountsWithActiveGoals: %v", err)
	}
	if len(accts) != 1 {
		t.Errorf("got %d accounts, want 1 (distinct)", len(accts))
	}
}

func TestCreateGoal_Validation(t *testing.T) {
	db := openTestDB(t)
	acct := mustAccount(t, db, 1)

	_, err := CreateGoal(db, acct.ID, "")
	if !errors.Is(err, ErrInvalid) {
		t.Errorf("error = %v, want ErrInvalid", err)
	}
}

func TestGetGoal_ScopedToAccount(t *testing.T) {
	db := openTestDB(t)
	owner := mustAccount(t, db, 1)
	other := mustAccount(t, db, 2)

	goal, _ := CreateGoal(db, owner.ID, "mine")

	if _, err := GetGoal(db, owner.ID, goal.ID); err != nil {
		t.Fatalf("owner GetGoal: %v", err)
	}
	_, err := GetGoal(db, other.ID, goal.ID)
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("cross-account GetGoal error = %v, want ErrNotFound", err)
	}
}

func TestUpdateGoalStatus_InvalidStatus(t *testing.T) {
	db := openTestDB(t)
	acct := mustAccount(t, db, 1)
	goal, _ := CreateGoal(db, acct.ID, "g")

	err := UpdateGoalStatus(db, acct.ID, goal.ID, "vanished")
	if !errors.Is(err, ErrInvalid) {
		t.Errorf("error = %v, want ErrInvalid", err)
	}
}

func TestMergeGoalData_CreatesAndMerges(t *testing.T) {
	db := openTestDB(t)
	acct := mustAccount(t, db, 1)
	goal, _ := CreateGoal(db, acct.ID, "g")

	if err := MergeGoalData(db, goal.ID, map[string]interface{}{"pace": "easy", "week": 1.0}); err != nil {
		t.Fatalf("first MergeGoalData: %v", err)
	}
	if err := MergeGoalData(db, goal.ID, map[string]interface{}{"week": 2.0}); err != nil {
		t.Fatalf("second MergeGoalData: %v", err)
	}

	blob, err := GetGoalData(db, goal.ID)
	if err != nil {
		t.Fatalf("GetGoalData: %v", err)
	}
	var got map[string]interface{}
	if err := json.Unmarshal([]byte(blob), &got); err != nil {
		t.Fatalf("unmarshal blob: %v", err)
	}
	if got["pace"] != "easy" {
		t.Errorf("pace = %v, want easy (untouched key must survive)", got["pace"])
	}
	if got["week"] != 2.0 {
		t.Errorf("week = %v, want 2 (last writer wins)", got["week"])
	}
}

func TestAppendGoalEvent(t *testing.T) {
	db := openTestDB(t)
	acct := mustAccount(t, db, 1)
	goal, _ := CreateGoal(db, acct.ID, "g")

	for _, note := range []string{"ran 2K", "ran 3K"} {
		if err := AppendGoalEvent(db, goal.ID, map[string]interface{}{"note": note}); err != nil {
			t.Fatalf("AppendGoalEvent: %v", err)
		}
	}

	blob, _ := GetGoalData(db, goal.ID)
	var got map[string]interface{}
	json.Unmarshal([]byte(blob), &got)
	events, ok := got["events"].([]interface{})
	if !ok || len(events) != 2 {
		t.Fatalf("events = %v, want 2 entries", got["events"])
	}
}

func TestGetGoalData_MissingIsEmpty(t *testing.T) {
	db := openTestDB(t)
	acct := mustAccount(t, db, 1)
	goal, _ := CreateGoal(db, acct.ID, "g")

	blob, err := GetGoalData(db, goal.ID)
	if err != nil {
		t.Fatalf("GetGoalData: %v", err)
	}
	if blob != "" {
		t.Errorf("blob = %q, want empty", blob)
	}
}

func TestCreateMessage_Validation(t *testing.T) {
	db := openTestDB(t)
	acct := mustAccount(t, db, 1)

	tests := []struct {
		name    string
		role    string
		content string
	}{
		{"bad role", "system", "hi"},
		{"empty content", models.RoleUser, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := CreateMessage(db, acct.ID, tt.role, tt.content, MessageOpts{})
			if !errors.Is(err, ErrInvalid) {
				t.Errorf("error = %v, want ErrInvalid", err)
			}
		})
	}
}

func TestRecentMessages_ChronologicalWindow(t *testing.T) {
	db := openTestDB(t)
	acct := mustAccount(t, db, 1)

	base := time.Now().Add(-time.Hour)
	for i := 0; i < 25; i++ {
		msg := models.Message{
			AccountID: acct.ID,
			Role:      models.RoleUser,
			Content:   string(rune('a' + i%26)),
			CreatedAt: base.Add(time.Duration(i) * time.Minute),
		}
		if err := db.Create(&msg).Error; err != nil {
			t.Fatalf("seed message: %v", err)
		}
	}

	msgs, err := RecentMessages(db, acct.ID, 20)
	if err != nil {
		t.Fatalf("RecentMessages: %v", err)
	}
	if len(msgs) != 20 {
		t.Fatalf("got %d messages, want 20", len(msgs))
	}
	for i := 1; i < len(msgs); i++ {
		if msgs[i].CreatedAt.Before(msgs[i-1].CreatedAt) {
			t.Fatalf("messages not chronological at index %d", i)
		}
	}
	// The 5 oldest must have been dropped, so the window starts at minute 5.
	if !msgs[0].CreatedAt.After(base.Add(4 * time.Minute)) {
		t.Errorf("window start = %v, want after %v", msgs[0].CreatedAt, base.Add(4*time.Minute))
	}
}

func TestDueScheduledMessages_OrderAndFilter(t *testing.T) {
	db := openTestDB(t)
	acct := mustAccount(t, db, 1)
	now := time.Now()

	late, _ := CreateScheduledMessage(db, acct.ID, nil, now.Add(-1*time.Hour), "late")
	earliest, _ := CreateScheduledMessage(db, acct.ID, nil, now.Add(-3*time.Hour), "earliest")
	CreateScheduledMessage(db, acct.ID, nil, now.Add(9*time.Hour), "future")

	due, err := DueScheduledMessages(db, now)
	if err != nil {
		t.Fatalf("DueScheduledMessages: %v", err)
	}
	if len(due) != 2 {
		t.Fatalf("got %d due rows, want 2", len(due))
	}
	if due[0].ID != earliest.ID || due[1].ID != late.ID {
		t.Errorf("order = [%d %d], want [%d %d] (earliest-due first)", due[0].ID, due[1].ID, earliest.ID, late.ID)
	}
}

func TestMarkScheduledSent_OneWayDoor(t *testing.T) {
	db := openTestDB(t)
	acct := mustAccount(t, db, 1)

	sm, _ := CreateScheduledMessage(db, acct.ID, nil, time.Now(), "hello")

	if err := MarkScheduledSent(db, sm.ID); err != nil {
		t.Fatalf("first MarkScheduledSent: %v", err)
	}

	// Second transition of any kind must fail: the row is no longer pending.
	if err := MarkScheduledSent(db, sm.ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("second sent transition error = %v, want ErrNotFound", err)
	}
	if err := MarkScheduledCancelled(db, sm.ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("cancel after sent error = %v, want ErrNotFound", err)
	}

	var row models.ScheduledMessage
	db.First(&row, sm.ID)
	if row.Status != models.ScheduledSent {
		t.Errorf("status = %q, want sent", row.Status)
	}
}

func TestMergePreferences(t *testing.T) {
	db := openTestDB(t)
	acct := mustAccount(t, db, 1)

	if err := MergePreferences(db, acct.ID, map[string]interface{}{"style": "gentle", "checkins": "morning"}); err != nil {
		t.Fatalf("first MergePreferences: %v", err)
	}
	if err := MergePreferences(db, acct.ID, map[string]interface{}{"checkins": "evening"}); err != nil {
		t.Fatalf("second MergePreferences: %v", err)
	}

	prefs, err := GetPreferences(db, acct.ID)
	if err != nil {
		t.Fatalf("GetPreferences: %v", err)
	}
	if prefs["style"] != "gentle" {
		t.Errorf("style = %v, want gentle", prefs["style"])
	}
	if prefs["checkins"] != "evening" {
		t.Errorf("checkins = %v, want evening", prefs["checkins"])
	}
}

func TestGetPreferences_MissingIsEmptyMap(t *testing.T) {
	db := openTestDB(t)
	acct := mustAccount(t, db, 1)

	prefs, err := GetPreferences(db, acct.ID)
	if err != nil {
		t.Fatalf("GetPreferences: %v", err)
	}
	if len(prefs) != 0 {
		t.Errorf("prefs = %v, want empty map", prefs)
	}
}

func TestMergePatch_BadBlob(t *testing.T) {
	_, err := MergePatch("[1,2,3]", map[string]interface{}{"a": 1})
	if err == nil {
		t.Fatal("expected error merging into non-object blob")
	}
}

func TestLogEvaluation(t *testing.T) {
	db := openTestDB(t)
	acct := mustAccount(t, db, 1)

	if err := LogEvaluation(db, acct.ID, "skip", "no active goals", ""); err != nil {
		t.Fatalf("LogEvaluation: %v", err)
	}

	var count int64
	db.Model(&models.EvaluationLog{}).Where("account_id = ?", acct.ID).Count(&count)
	if count != 1 {
		t.Errorf("evaluation log rows = %d, want 1", count)
	}
}
