package api

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
)

// Alert severity levels
const (
	SeverityCritical = "critical"
	SeverityWarning  = "warning"
	SeverityInfo     = "info"
)

// Alert event types
const (
	AlertCatalogMisconfigured = "catalog_misconfigured"
	AlertComponentDown        = "component_down"
)

// AlertPayload is the JSON structure sent to the webhook.
type AlertPayload struct {
	Service   string                 `json:"service"`
	Event     string                 `json:"event"`
	Timestamp string                 `json:"timestamp"`
	Severity  string                 `json:"severity"`
	Message   string                 `json:"message,omitempty"`
	Details   map[string]interface{} `json:"details,omitempty"`
}

// AlertConfig holds alert configuration.
type AlertConfig struct {
	WebhookURL string
	// Cooldown is the minimum gap between two alerts of the same event.
	Cooldown time.Duration
	// DisconnectDelay is how long a component must be down before alerting.
	DisconnectDelay time.Duration
}

type componentTracker struct {
	downSince time.Time
	alertSent bool
}

var (
	alertConfig = &AlertConfig{
		Cooldown:        5 * time.Minute,
		DisconnectDelay: 30 * time.Second,
	}
	alertMu       sync.Mutex
	lastAlertSent = make(map[string]time.Time)
	trackers      = make(map[string]*componentTracker)

	alertNow    = time.Now
	alertClient = &http.Client{Timeout: 10 * time.Second}
)

// InitAlerts installs cfg. Zero durations keep the defaults.
func InitAlerts(cfg AlertConfig) {
	alertMu.Lock()
	defer alertMu.Unlock()

	alertConfig.WebhookURL = cfg.WebhookURL
	if cfg.Cooldown > 0 {
		alertConfig.Cooldown = cfg.Cooldown
	}
	if cfg.DisconnectDelay > 0 {
		alertConfig.DisconnectDelay = cfg.DisconnectDelay
	}
	lastAlertSent = make(map[string]time.Time)
	trackers = make(map[string]*componentTracker)

	if alertConfig.WebhookURL != "" {
		log.Info().
			Dur("cooldown", alertConfig.Cooldown).
			Dur("disconnect_delay", alertConfig.DisconnectDelay).
			Msg("alerts enabled: webhook URL configured")
	}
}

// GetAlertWebhookURL returns the configured webhook URL.
func GetAlertWebhookURL() string {
	alertMu.Lock()
	defer alertMu.Unlock()
	return alertConfig.WebhookURL
}

// SendAlert sends an alert to the configured webhook (best-effort, non-blocking).
func SendAlert(event, severity, message string, details map[string]interface{}) {
	alertMu.Lock()
	webhookURL := alertConfig.WebhookURL
	alertMu.Unlock()

	if webhookURL == "" {
		log.Warn().
			Str("alert", event).
			Str("severity", severity).
			Fields(details).
			Msg(message)
		return
	}

	payload := AlertPayload{
		Service:   ServiceName(),
		Event:     event,
		Timestamp: alertNow().UTC().Format(time.RFC3339),
		Severity:  severity,
		Message:   message,
		Details:   details,
	}

	go sendWebhook(webhookURL, payload)
}

func sendWebhook(url string, payload AlertPayload) {
	body, err := json.Marshal(payload)
	if err != nil {
		log.Error().Err(err).Msg("alert: failed to marshal payload")
		return
	}

	resp, err := alertClient.Post(url, "application/json", bytes.NewReader(body))
	if err != nil {
		log.Error().Err(err).Msg("alert: webhook POST failed")
		return
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		log.Error().Int("status", resp.StatusCode).Msg("alert: webhook returned error status")
	}
}

// AlertCatalogError reports a configuration error hit during a draw. At most
// one alert is sent per cooldown window; the return value says whether this
// call sent one.
func AlertCatalogError(reason string, details map[string]interface{}) bool {
	alertMu.Lock()
	now := alertNow()
	if last, ok := lastAlertSent[AlertCatalogMisconfigured]; ok && now.Sub(last) < alertConfig.Cooldown {
		alertMu.Unlock()
		return false
	}
	lastAlertSent[AlertCatalogMisconfigured] = now
	alertMu.Unlock()

	SendAlert(AlertCatalogMisconfigured, SeverityCritical, reason, details)
	return true
}

// CheckAndAlertComponent tracks a readiness component and alerts once it has
// been down for DisconnectDelay, then once more when it recovers.
func CheckAndAlertComponent(name string, up bool) {
	alertMu.Lock()

	now := alertNow()
	tr, ok := trackers[name]
	if !ok {
		tr = &componentTracker{}
		trackers[name] = tr
	}

	if up {
		recovered := tr.alertSent
		tr.downSince = time.Time{}
		tr.alertSent = false
		alertMu.Unlock()

		if recovered {
			SendAlert(AlertComponentDown, SeverityInfo, name+" restored", map[string]interface{}{
				"component":    name,
				"recovered_at": now.UTC().Format(time.RFC3339),
			})
		}
		return
	}

	if tr.downSince.IsZero() {
		tr.downSince = now
	}
	down := now.Sub(tr.downSince)
	fire := !tr.alertSent && down >= alertConfig.DisconnectDelay
	if fire {
		tr.alertSent = true
	}
	since := tr.downSince
	alertMu.Unlock()

	if fire {
		SendAlert(AlertComponentDown, SeverityWarning, name+" unavailable", map[string]interface{}{
			"component":    name,
			"down_since":   since.UTC().Format(time.RFC3339),
			"down_seconds": int(down.Seconds()),
		})
	}
}

// StartAlertMonitor checks the readiness components every interval until
// ctx is done.
func StartAlertMonitor(ctx context.Context, interval time.Duration) {
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				for name, up := range componentStates() {
					CheckAndAlertComponent(name, up)
				}
			}
		}
	}()
}
