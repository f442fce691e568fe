package worker

// report_worker.go
// Processes report export jobs from QueueReports: renders the requested
// CSV or PDF, then hands delivery off to the email queue.

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/DanielShofela/Stock/internal/dto"

	"github.com/rs/zerolog/log"
)

// ReportJobPayload is the job envelope sent to QueueReports.
type ReportJobPayload struct {
	StartDate string `json:"start_date"`
	EndDate   string `json:"end_date"`
	Format    string `json:"format"` // csv | pdf
	Email     string `json:"email"`
}

// ReportGenerator is the slice of the report service the worker needs.
// Declared here so the worker does not depend on the service package.
type ReportGenerator interface {
	GenerateCSV(ctx context.Context, query dto.ReportQuery) (fileName string, content []byte, err error)
	GeneratePDF(ctx context.Context, query dto.ReportQuery) (filePath string, err error)
}

// ReportWorker renders exports in the background and queues their delivery.
type ReportWorker struct {
	reports     ReportGenerator
	dispatcher  *Dispatcher
	storagePath string
}

func NewReportWorker(reports ReportGenerator, dispatcher *Dispatcher, storagePath string) *ReportWorker {
	return &ReportWorker{reports: reports, dispatcher: dispatcher, storagePath: storagePath}
}

// Process renders the export to disk, then enqueues an email job pointing at
// the file. Returning an error requeues the job.
func (w *ReportWorker) Process(ctx context.Context, raw json.RawMessage) error {
	var payload ReportJobPayload
	if err := json.Unmarshal(raw, &payload); err != nil {
		log.Error().Err(err).Msg("report_worker: invalid payload")
		return nil // malformed payloads are not retryable
	}

	query := dto.ReportQuery{StartDate: payload.StartDate, EndDate: payload.EndDate}

	var filePath string
	switch payload.Format {
	case "pdf":
		path, err := w.reports.GeneratePDF(ctx, query)
		if err != nil {
			return fmt.Errorf("report_worker: pdf: %w", err)
		}
		filePath = path
	default:
		fileName, content, err := w.reports.GenerateCSV(ctx, query)
		if err != nil {
			return fmt.Errorf("report_worker: csv: %w", err)
		}
		if err := os.MkdirAll(w.storagePath, 0755); err != nil {
			return fmt.Errorf("report_worker: storage dir: %w", err)
		}
		filePath = filepath.Join(w.storagePath, fileName)
		if err := os.WriteFile(filePath, content, 0644); err != nil {
			return fmt.Errorf("report_worker: write csv: %w", err)
		}
	}

	emailJob := EmailJobPayload{
		ToEmail:        payload.Email,
		Subject:        fmt.Sprintf("Rapport de stock %s — %s", payload.StartDate, payload.EndDate),
		Body:           "Veuillez trouver ci-joint votre rapport de mouvements de stock.",
		AttachmentPath: filePath,
	}
	if _, err := w.dispatcher.EnqueueEmail(ctx, emailJob); err != nil {
		return fmt.Errorf("report_worker: enqueue email: %w", err)
	}

	log.Info().Str("file", filePath).Str("to", payload.Email).Msg("report_worker: export generated, delivery queued")
	return nil
}
