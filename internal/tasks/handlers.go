package tasks

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/hibiken/asynq"
	"github.com/ivkov/toolshelf/internal/auth"
)

type Handler struct {
	mailer auth.Notifier
	logger *slog.Logger
}

func NewHandler(mailer auth.Notifier, logger *slog.Logger) *Handler {
	return &Handler{mailer: mailer, logger: logger}
}

func (h *Handler) RegisterHandlers(mux *asynq.ServeMux) {
	mux.HandleFunc(TypeTwoFactorEmail, h.HandleTwoFactorEmail)
}

func (h *Handler) HandleTwoFactorEmail(ctx context.Context, t *asynq.Task) error {
	var payload TwoFactorEmailPayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		return fmt.Errorf("unmarshal payload: %w", err)
	}

	if err := h.mailer.SendTwoFactorCode(ctx, payload.Email, payload.Name, payload.Code); err != nil {
		h.logger.Error("failed to send two-factor email", "email", payload.Email, "error", err)
		return err
	}

	h.logger.Info("two-factor email sent", "email", payload.Email)
	return nil
}
