// Package notify delivers webhook alerts for domains whose scan result
// needs operator attention.
package notify

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/thexDman/domain-monitoring-devops/pkg/api"
	"github.com/thexDman/domain-monitoring-devops/pkg/monitor"
)

// Payload is the JSON document posted to the configured webhook.
type Payload struct {
	Event         string `json:"event"`
	Domain        string `json:"domain"`
	Status        string `json:"status"`
	SSLExpiration string `json:"ssl_expiration"`
	SSLIssuer     string `json:"ssl_issuer"`
	Time          string `json:"time"`
}

// Notifier posts scan alerts to a single webhook URL. A Notifier with
// an empty URL is a no-op.
type Notifier struct {
	URL    string
	client *http.Client
}

// New returns a Notifier for the given webhook URL.
func New(url string) *Notifier {
	return &Notifier{
		URL:    url,
		client: &http.Client{Timeout: 10 * time.Second},
	}
}

// AlertScanResults sends one webhook per domain that came back Expired
// or Down. Delivery is best-effort: failures are logged, not returned,
// so a broken webhook never fails a scan.
func (n *Notifier) AlertScanResults(username string, results []monitor.Result) {
	if n == nil || n.URL == "" {
		return
	}

	for _, r := range results {
		var event string
		switch r.Status {
		case api.StatusExpired:
			event = "SSL_EXPIRED"
		case api.StatusDown:
			event = "SITE_DOWN"
		default:
			continue
		}

		payload := Payload{
			Event:         event,
			Domain:        r.Domain,
			Status:        r.Status,
			SSLExpiration: r.SSLExpiration,
			SSLIssuer:     r.SSLIssuer,
			Time:          time.Now().Format(time.RFC3339),
		}

		if err := n.send(payload); err != nil {
			log.Warn().Str("domain", r.Domain).Str("event", event).Err(err).Msg("webhook delivery failed")
		} else {
			log.Info().Str("domain", r.Domain).Str("event", event).Str("username", username).Msg("webhook alert sent")
		}
	}
}

func (n *Notifier) send(payload Payload) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal payload: %w", err)
	}

	resp, err := n.client.Post(n.URL, "application/json", bytes.NewReader(body))
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return fmt.Errorf("webhook returned status %d", resp.StatusCode)
	}
	return nil
}
