package coach

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strconv"
	"time"

	"gorm.io/gorm"

	"github.com/parth-ai/parth/internal/courier"
	"github.com/parth-ai/parth/internal/models"
	"github.com/parth-ai/parth/internal/store"
)

// Sweep delivers every pending scheduled message that is due as of now,
// earliest first. A missing account cancels its row so nothing stays
// pending forever. Per-row failures are isolated: one bad row never
// aborts the sweep. Idempotency rests entirely on the status column;
// rows already transitioned by a concurrent sweep are not selected and
// the status-gated MarkSent makes a lost race a no-op.
func Sweep(ctx context.Context, db *gorm.DB, c courier.Courier, now time.Time) (sent, failed int, err error) {
	due, err := store.DueScheduledMessages(db, now)
	if err != nil {
		return 0, 0, fmt.Errorf("coach: sweep: %w", err)
	}

	for _, row := range due {
		if err := ctx.Err(); err != nil {
			return sent, failed, fmt.Errorf("coach: sweep: %w", err)
		}
		if deliverScheduled(ctx, db, c, row) {
			sent++
		} else {
			failed++
		}
	}
	return sent, failed, nil
}

// deliverScheduled handles one due row: deliver, log the assistant
// message, then mark sent. Write ordering matters; marking before a
// successful delivery could silently drop the message.
func deliverScheduled(ctx context.Context, db *gorm.DB, c courier.Courier, row models.ScheduledMessage) bool {
	acct, err := store.GetAccount(db, row.AccountID)
	if errors.Is(err, store.ErrNotFound) {
		log.Printf("coach: sweep: scheduled %d: account %d missing, cancelling", row.ID, row.AccountID)
		if cerr := store.MarkScheduledCancelled(db, row.ID); cerr != nil {
			log.Printf("coach: sweep: cancel scheduled %d: %v", row.ID, cerr)
		}
		return false
	}
	if err != nil {
		log.Printf("coach: sweep: scheduled %d: %v", row.ID, err)
		return false
	}

	handle := strconv.FormatInt(acct.TelegramID, 10)
	if err := c.Send(ctx, handle, row.MessageContent); err != nil {
		log.Printf("coach: sweep: scheduled %d: deliver: %v", row.ID, err)
		return false
	}

	if _, err := store.CreateMessage(db, row.AccountID, models.RoleAssistant, row.MessageContent, store.MessageOpts{GoalID: row.GoalID}); err != nil {
		log.Printf("coach: sweep: scheduled %d: log message: %v", row.ID, err)
		return false
	}
	if err := store.MarkScheduledSent(db, row.ID); err != nil {
		log.Printf("coach: sweep: scheduled %d: mark sent: %v", row.ID, err)
		return false
	}
	return true
}
