package orchestrators

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	emailAdapter "yourtrainer/internal/adapters/email"
	"yourtrainer/internal/domain/client"
	"yourtrainer/internal/domain/lesson"
)

// LessonStoreForReminders defines the lesson store interface needed by reminders.
type LessonStoreForReminders interface {
	ListByTrainerIDAndDate(ctx context.Context, trainerID string, date string) ([]lesson.Lesson, error)
}

// ClientLookupStore defines the client store interface needed by reminders.
type ClientLookupStore interface {
	GetByID(ctx context.Context, id string) (client.Client, error)
}

// SendRemindersInput carries input for the reminder orchestrator.
type SendRemindersInput struct {
	TrainerID string
	Date      time.Time // the lesson day to remind for, typically tomorrow
}

// SendRemindersResult reports how many reminders went out.
type SendRemindersResult struct {
	Sent    int
	Skipped int // lessons whose client has no email on file
}

// SendRemindersDeps holds dependencies for SendReminders.
type SendRemindersDeps struct {
	LessonStore LessonStoreForReminders
	ClientStore ClientLookupStore
	EmailSender emailAdapter.Sender
	FromAddress string
	ReplyTo     string
}

// ExecuteSendLessonReminders emails every client with a planned lesson on the
// given date. Clients without an email address are skipped, not failed.
// PRE: TrainerID is non-empty, Date is set
// POST: One reminder email per reachable client is queued with the provider
func ExecuteSendLessonReminders(ctx context.Context, input SendRemindersInput, deps SendRemindersDeps) (SendRemindersResult, error) {
	if input.TrainerID == "" {
		return SendRemindersResult{}, errors.New("trainer ID is required")
	}
	if input.Date.IsZero() {
		return SendRemindersResult{}, errors.New("reminder date is required")
	}

	date := input.Date.Format("2006-01-02")
	lessons, err := deps.LessonStore.ListByTrainerIDAndDate(ctx, input.TrainerID, date)
	if err != nil {
		return SendRemindersResult{}, err
	}

	var reqs []emailAdapter.SendRequest
	skipped := 0
	for _, l := range lessons {
		if !l.IsPlanned() {
			continue
		}
		c, err := deps.ClientStore.GetByID(ctx, l.ClientID)
		if err != nil || c.Email == "" {
			skipped++
			continue
		}
		reqs = append(reqs, emailAdapter.SendRequest{
			To:      []string{c.Email},
			From:    deps.FromAddress,
			Subject: fmt.Sprintf("Reminder: training session on %s at %s", date, l.PlannedTime),
			HTML: fmt.Sprintf(
				"<p>Hi %s,</p><p>This is a reminder for your training session on <strong>%s</strong> at <strong>%s</strong>.</p><p>See you there!</p>",
				c.Name, date, l.PlannedTime,
			),
			ReplyTo: deps.ReplyTo,
		})
	}

	if len(reqs) == 0 {
		return SendRemindersResult{Skipped: skipped}, nil
	}

	results, err := deps.EmailSender.SendBatch(ctx, reqs)
	if err != nil {
		return SendRemindersResult{Sent: len(results), Skipped: skipped}, err
	}

	slog.Info("reminder_event", "event", "reminders_sent", "trainer_id", input.TrainerID, "date", date, "sent", len(results), "skipped", skipped)
	return SendRemindersResult{Sent: len(results), Skipped: skipped}, nil
}
