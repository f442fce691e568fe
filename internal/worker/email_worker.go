package worker

// email_worker.go
// Processes email jobs from QueueEmail. SMTP sends run through a circuit
// breaker: while it is open, jobs fail fast and ride the retry/DLQ path
// instead of hammering a dead relay.

import (
	"context"
	"encoding/json"

	"github.com/DanielShofela/Stock/internal/infra"

	"github.com/rs/zerolog/log"
)

// EmailJobPayload is the job envelope sent to QueueEmail.
type EmailJobPayload struct {
	ToEmail        string `json:"to_email"`
	Subject        string `json:"subject"`
	Body           string `json:"body"`
	AttachmentPath string `json:"attachment_path"`
}

// EmailWorker delivers generated reports by SMTP.
type EmailWorker struct {
	mailer *infra.Mailer
	cb     *infra.CircuitBreaker
}

func NewEmailWorker(mailer *infra.Mailer, cb *infra.CircuitBreaker) *EmailWorker {
	return &EmailWorker{mailer: mailer, cb: cb}
}

// Process sends an email with the report attached.
func (w *EmailWorker) Process(_ context.Context, raw json.RawMessage) error {
	var payload EmailJobPayload
	if err := json.Unmarshal(raw, &payload); err != nil {
		log.Error().Err(err).Msg("email_worker: invalid payload")
		return nil // malformed payloads are not retryable
	}
	if payload.ToEmail == "" {
		log.Warn().Msg("email_worker: empty to_email — skipping")
		return nil
	}

	err := w.cb.Execute(func() error {
		return w.mailer.SendReport(payload.ToEmail, payload.Subject, payload.Body, payload.AttachmentPath)
	})
	if err != nil {
		log.Error().Err(err).Str("to", payload.ToEmail).Msg("email_worker: failed to send email")
		return err
	}
	log.Info().Str("to", payload.ToEmail).Msg("email_worker: report sent successfully")
	return nil
}
