package tasks

import (
	"encoding/json"

	"github.com/hibiken/asynq"
)

// Task type names
const (
	TypeTwoFactorEmail = "email:two_factor_code"
)

// TwoFactorEmailPayload contains the data for a one-time code delivery task.
// The code travels through the queue in the clear; the queue backend is
// trusted infrastructure, and the code is dead after ten minutes regardless.
type TwoFactorEmailPayload struct {
	Email string `json:"email"`
	Name  string `json:"name"`
	Code  string `json:"code"`
}

func NewTwoFactorEmailTask(payload TwoFactorEmailPayload) (*asynq.Task, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TypeTwoFactorEmail, data), nil
}
