package tasks

import (
	"context"
	"fmt"
	"time"

	"github.com/hibiken/asynq"
	"github.com/ivkov/toolshelf/internal/auth"
)

// Notifier enqueues code-delivery tasks instead of talking to SMTP in the
// request path. The worker binary does the actual sending.
type Notifier struct {
	client *asynq.Client
}

func NewNotifier(client *asynq.Client) *Notifier {
	return &Notifier{client: client}
}

func (n *Notifier) SendTwoFactorCode(ctx context.Context, email, name, code string) error {
	task, err := NewTwoFactorEmailTask(TwoFactorEmailPayload{
		Email: email,
		Name:  name,
		Code:  code,
	})
	if err != nil {
		return err
	}

	_, err = n.client.EnqueueContext(ctx, task,
		asynq.Queue("critical"),
		asynq.MaxRetry(5),
		asynq.Timeout(time.Minute),
	)
	if err != nil {
		return fmt.Errorf("enqueueing two-factor email: %w", err)
	}
	return nil
}

var _ auth.Notifier = (*Notifier)(nil)
