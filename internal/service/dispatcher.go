package service

import (
	"context"
	"sync"
	"time"

	"motorent-backend/internal/domain"
	"motorent-backend/internal/logger"
	"motorent-backend/internal/repository"
)

const effectTimeout = 10 * time.Second

// EffectDispatcher persists a notification row for every effect and
// sends an email when the effect carries a recipient address. It runs
// effects on background goroutines so the request path never waits on
// SendGrid or a slow notification insert.
type EffectDispatcher struct {
	notificationRepo repository.NotificationRepository
	email            EmailSender
	wg               sync.WaitGroup
}

func NewDispatcher(notificationRepo repository.NotificationRepository, email EmailSender) *EffectDispatcher {
	return &EffectDispatcher{
		notificationRepo: notificationRepo,
		email:            email,
	}
}

func (d *EffectDispatcher) Dispatch(effects []domain.Effect) {
	for _, e := range effects {
		d.wg.Add(1)
		go func(e domain.Effect) {
			defer d.wg.Done()
			d.run(e)
		}(e)
	}
}

// Wait blocks until all in-flight effects finish. Used on shutdown and
// in tests.
func (d *EffectDispatcher) Wait() {
	d.wg.Wait()
}

func (d *EffectDispatcher) run(e domain.Effect) {
	ctx, cancel := context.WithTimeout(context.Background(), effectTimeout)
	defer cancel()

	n := &domain.Notification{
		UserID:     e.UserID,
		Title:      e.Title,
		Message:    e.Message,
		Attributes: e.Data,
	}
	if err := d.notificationRepo.Create(ctx, n); err != nil {
		logger.Error("Failed to persist notification",
			"user_id", e.UserID, "template", string(e.Template), "error", err)
	}

	if e.Email == "" || d.email == nil {
		return
	}
	if err := d.email.Send(ctx, e.Email, e.Title, e.Message); err != nil {
		logger.Error("Failed to send notification email",
			"user_id", e.UserID, "template", string(e.Template), "error", err)
	}
}
