package worker

// alert_worker.go
// Processes variance-alert jobs from QueueVarianceAlert: when a settlement
// closes with lost stock or short cash, the alert is formatted and handed to
// the email queue, where the mail worker delivers it.

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/rs/zerolog/log"
)

// VarianceAlertPayload is the job envelope sent to QueueVarianceAlert.
type VarianceAlertPayload struct {
	SettlementID   string `json:"settlement_id"`
	StoreID        int    `json:"store_id"`
	SettlementDate string `json:"settlement_date"`
	NegativeKg     string `json:"negative_kg"`
	CashVariance   string `json:"cash_variance"`
}

// EmailPayload is the job envelope sent to QueueEmail.
type EmailPayload struct {
	To      string `json:"to"`
	Subject string `json:"subject"`
	Body    string `json:"body"`
}

// AlertWorker turns settlement variance alerts into email jobs for the
// operations inbox.
type AlertWorker struct {
	dispatcher *Dispatcher
	to         string
}

func NewAlertWorker(dispatcher *Dispatcher, to string) *AlertWorker {
	return &AlertWorker{dispatcher: dispatcher, to: to}
}

// Process implements the Handler signature for variance_alert jobs.
func (w *AlertWorker) Process(ctx context.Context, raw json.RawMessage) error {
	var payload VarianceAlertPayload
	if err := json.Unmarshal(raw, &payload); err != nil {
		log.Error().Err(err).Msg("alert_worker: invalid payload")
		return nil // malformed payloads are not retryable
	}
	if w.to == "" {
		log.Warn().Msg("alert_worker: no alert recipient configured, dropping alert")
		return nil
	}

	subject := fmt.Sprintf("Settlement variance: store %d on %s", payload.StoreID, payload.SettlementDate)
	body := fmt.Sprintf(
		"Settlement %s closed with discrepancies.\n\nStore: %d\nDate: %s\nNegative stock variance: %s kg\nCash variance: %s\n\nReview pending variance logs for resolution.",
		payload.SettlementID, payload.StoreID, payload.SettlementDate, payload.NegativeKg, payload.CashVariance,
	)
	if err := w.dispatcher.EnqueueEmail(ctx, EmailPayload{To: w.to, Subject: subject, Body: body}); err != nil {
		return fmt.Errorf("alert_worker: enqueue email: %w", err)
	}
	log.Info().Str("settlement_id", payload.SettlementID).Msg("alert_worker: variance alert queued for mail")
	return nil
}
