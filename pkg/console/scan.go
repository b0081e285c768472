package console

import (
	"context"
	"errors"
	"sync"

	"github.com/thexDman/domain-monitoring-devops/pkg/client"
)

// Scan trigger labels.
const (
	scanLabelDefault  = "Scan Now"
	scanLabelInFlight = "Scanning..."
)

// ErrScanInFlight is returned when a rescan is requested while one is
// already outstanding. Unlike the mutation workflows, the scan trigger
// has always guarded against overlap via explicit disablement.
var ErrScanInFlight = errors.New("scan already in flight")

// ScanTrigger fires an on-demand rescan and disables itself while the
// request is outstanding.
type ScanTrigger struct {
	client   *client.Client
	renderer *Renderer
	reload   func(context.Context)

	mu       sync.Mutex
	disabled bool
	label    string
}

// NewScanTrigger returns an enabled trigger with the default label.
func NewScanTrigger(c *client.Client, r *Renderer, reload func(context.Context)) *ScanTrigger {
	return &ScanTrigger{client: c, renderer: r, reload: reload, label: scanLabelDefault}
}

// Fire issues the rescan. On success the domain list reloads; on
// failure a blocking notice is shown and no reload occurs. The control
// is restored to enabled with its default label on both paths.
func (t *ScanTrigger) Fire(ctx context.Context) error {
	t.mu.Lock()
	if t.disabled {
		t.mu.Unlock()
		return ErrScanInFlight
	}
	t.disabled = true
	t.label = scanLabelInFlight
	t.mu.Unlock()
	t.renderer.Status("scan", statusLoading, scanLabelInFlight)

	defer func() {
		t.mu.Lock()
		t.disabled = false
		t.label = scanLabelDefault
		t.mu.Unlock()
	}()

	if _, err := t.client.Scan(ctx); err != nil {
		t.renderer.Notice("Scan failed")
		return err
	}

	t.reload(ctx)
	return nil
}

// Disabled reports whether the control is currently disabled.
func (t *ScanTrigger) Disabled() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.disabled
}

// Label returns the control's current label.
func (t *ScanTrigger) Label() string {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.label
}
