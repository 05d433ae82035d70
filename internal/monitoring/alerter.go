// Package monitoring raises webhook alerts when a batch run looks unhealthy.
package monitoring

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/homepage-finder/internal/config"
	"github.com/sells-group/homepage-finder/internal/finder"
	"github.com/sells-group/homepage-finder/internal/model"
)

// AlertType identifies the kind of alert.
type AlertType string

const (
	AlertRunFailed    AlertType = "run_failed"
	AlertSearchErrors AlertType = "search_error_rate"
	AlertLowAdoption  AlertType = "low_adoption_rate"
)

// Alert represents a single alert to be sent.
type Alert struct {
	Type      AlertType      `json:"type"`
	Severity  string         `json:"severity"`
	RunID     string         `json:"run_id"`
	Message   string         `json:"message"`
	Details   map[string]any `json:"details,omitempty"`
	Timestamp time.Time      `json:"timestamp"`
}

// Alerter evaluates a run summary against configured thresholds and sends
// alerts via webhook when thresholds are breached.
type Alerter struct {
	cfg    config.MonitoringConfig
	client *http.Client
}

// NewAlerter creates a new Alerter with the given monitoring config.
func NewAlerter(cfg config.MonitoringConfig) *Alerter {
	return &Alerter{
		cfg:    cfg,
		client: &http.Client{Timeout: 10 * time.Second},
	}
}

// Evaluate checks a finished run against thresholds and returns any alerts.
// Rate checks are skipped for runs smaller than MinCompanies.
func (a *Alerter) Evaluate(run *model.Run, s finder.Summary) []Alert {
	var alerts []Alert
	now := time.Now().UTC()

	if run.Status == model.RunStatusFailed {
		alerts = append(alerts, Alert{
			Type:      AlertRunFailed,
			Severity:  "high",
			RunID:     run.ID,
			Message:   fmt.Sprintf("Run %s stopped after %d of %d companies", run.ID, s.Processed, s.Total),
			Details:   map[string]any{"processed": s.Processed, "total": s.Total},
			Timestamp: now,
		})
	}

	if s.Processed == 0 || s.Processed < a.cfg.MinCompanies {
		return alerts
	}

	failed := s.ByStatus[model.StatusError]
	if rate := float64(failed) / float64(s.Processed); a.cfg.ErrorRateThreshold > 0 && rate > a.cfg.ErrorRateThreshold {
		alerts = append(alerts, Alert{
			Type:     AlertSearchErrors,
			Severity: "high",
			RunID:    run.ID,
			Message: fmt.Sprintf(
				"Search error rate %.1f%% exceeds threshold %.1f%% (%d of %d companies)",
				rate*100, a.cfg.ErrorRateThreshold*100, failed, s.Processed,
			),
			Details: map[string]any{
				"error_rate": rate,
				"threshold":  a.cfg.ErrorRateThreshold,
				"errors":     failed,
				"processed":  s.Processed,
			},
			Timestamp: now,
		})
	}

	if rate := float64(s.Adopted) / float64(s.Processed); a.cfg.MinAdoptionRate > 0 && rate < a.cfg.MinAdoptionRate {
		alerts = append(alerts, Alert{
			Type:     AlertLowAdoption,
			Severity: "medium",
			RunID:    run.ID,
			Message: fmt.Sprintf(
				"Auto-adopt rate %.1f%% is below %.1f%% (%d of %d companies)",
				rate*100, a.cfg.MinAdoptionRate*100, s.Adopted, s.Processed,
			),
			Details: map[string]any{
				"adoption_rate": rate,
				"threshold":     a.cfg.MinAdoptionRate,
				"by_status":     s.ByStatus,
			},
			Timestamp: now,
		})
	}

	return alerts
}

// SendAlerts delivers alerts to the configured webhook URL.
// Returns the number of alerts successfully sent.
func (a *Alerter) SendAlerts(ctx context.Context, alerts []Alert) int {
	if a.cfg.WebhookURL == "" || len(alerts) == 0 {
		return 0
	}

	sent := 0
	for _, alert := range alerts {
		if err := a.sendWebhook(ctx, alert); err != nil {
			zap.L().Error("monitoring: failed to send alert",
				zap.String("type", string(alert.Type)),
				zap.Error(err),
			)
			continue
		}
		zap.L().Info("monitoring: alert sent",
			zap.String("type", string(alert.Type)),
			zap.String("severity", alert.Severity),
		)
		sent++
	}
	return sent
}

// sendWebhook posts a single alert to the webhook URL.
func (a *Alerter) sendWebhook(ctx context.Context, alert Alert) error {
	payload, err := json.Marshal(alert)
	if err != nil {
		return eris.Wrap(err, "monitoring: marshal alert")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, a.cfg.WebhookURL, bytes.NewReader(payload))
	if err != nil {
		return eris.Wrap(err, "monitoring: create webhook request")
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := a.client.Do(req)
	if err != nil {
		return eris.Wrap(err, "monitoring: webhook request")
	}
	defer resp.Body.Close() //nolint:errcheck

	if resp.StatusCode >= 400 {
		return eris.Errorf("monitoring: webhook returned status %d", resp.StatusCode)
	}
	return nil
}
