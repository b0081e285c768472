package console

import (
	"context"
	"strings"
	"sync"

	"github.com/thexDman/domain-monitoring-devops/pkg/client"
)

// Selection tracks which rendered rows are marked. It is rebuilt on
// every list render, so it is always a subset of the identifiers
// currently rendered.
type Selection struct {
	mu      sync.Mutex
	checked map[string]bool
}

// NewSelection returns an empty selection.
func NewSelection() *Selection {
	return &Selection{checked: make(map[string]bool)}
}

// Reset clears the selection for a fresh render.
func (s *Selection) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.checked = make(map[string]bool)
}

// Set marks or unmarks one identifier.
func (s *Selection) Set(domain string, checked bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if checked {
		s.checked[domain] = true
	} else {
		delete(s.checked, domain)
	}
}

// Selected reports whether the identifier is marked.
func (s *Selection) Selected(domain string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.checked[domain]
}

// Any reports whether at least one row is marked. It drives the
// bulk-action bar's visibility.
func (s *Selection) Any() bool {
	return s.Count() > 0
}

// Count returns the number of marked rows.
func (s *Selection) Count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.checked)
}

// List returns the marked identifiers.
func (s *Selection) List() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]string, 0, len(s.checked))
	for d := range s.checked {
		out = append(out, d)
	}
	return out
}

// ListController synchronizes the rendered domain table with the
// remote service.
type ListController struct {
	client    *client.Client
	renderer  *Renderer
	selection *Selection

	mu          sync.Mutex
	rows        []Row
	placeholder string

	// Recomputed after every render and every selection change.
	bulkBarVisible bool
}

// NewListController returns a controller rendering through r.
func NewListController(c *client.Client, r *Renderer, sel *Selection) *ListController {
	return &ListController{client: c, renderer: r, selection: sel}
}

// Load fetches the domain collection and re-renders the table. A
// transport fault renders the load-failed placeholder; a non-success
// response or an empty collection renders the empty placeholder. Rows
// are rendered in the order returned by the service.
func (l *ListController) Load(ctx context.Context) {
	l.renderPlaceholder(placeholderLoading)

	resp, err := l.client.ListDomains(ctx)
	if err != nil {
		if _, ok := err.(*client.APIError); ok {
			// Non-success responses degrade to the empty state,
			// matching the list contract.
			l.renderPlaceholder(placeholderEmpty)
			return
		}
		l.renderPlaceholder(placeholderFailed)
		return
	}

	if !resp.OK || len(resp.Domains) == 0 {
		l.renderPlaceholder(placeholderEmpty)
		return
	}

	rows := make([]Row, 0, len(resp.Domains))
	for i, d := range resp.Domains {
		rows = append(rows, Row{
			Index:      i + 1,
			Domain:     d.Domain,
			Status:     d.Status,
			BadgeClass: strings.ToLower(d.Status),
			Expiration: d.SSLExpiration,
			Issuer:     d.SSLIssuer,
		})
	}
	l.renderRows(rows)
}

func (l *ListController) renderPlaceholder(text string) {
	l.mu.Lock()
	l.rows = nil
	l.placeholder = text
	l.mu.Unlock()

	// A fresh render fully replaces prior rows, so the selection is
	// rebuilt from scratch and visibility recomputed.
	l.selection.Reset()
	l.renderer.Placeholder(text)
	l.updateBulkBar()
}

func (l *ListController) renderRows(rows []Row) {
	l.mu.Lock()
	l.rows = rows
	l.placeholder = ""
	l.mu.Unlock()

	l.selection.Reset()
	l.renderer.Rows(rows, l.selection.Selected)
	l.updateBulkBar()
}

// updateBulkBar recomputes the bulk-action bar's visibility from the
// selection. Idempotent, safe to call after every render and change.
func (l *ListController) updateBulkBar() {
	l.mu.Lock()
	l.bulkBarVisible = l.selection.Any()
	l.mu.Unlock()
	l.renderer.BulkBar(l.selection.Count())
}

// Rows returns the current row model.
func (l *ListController) Rows() []Row {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]Row(nil), l.rows...)
}

// Placeholder returns the currently rendered placeholder text, or an
// empty string when domain rows are rendered.
func (l *ListController) Placeholder() string {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.placeholder
}

// BulkBarVisible reports whether the bulk-action bar is shown.
func (l *ListController) BulkBarVisible() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.bulkBarVisible
}

// RowByIdentifier resolves a row either by its 1-based index or by the
// domain identifier itself. All row actions dispatch through this
// single lookup instead of per-row bindings.
func (l *ListController) RowByIdentifier(id string) (Row, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	for _, row := range l.rows {
		if row.Domain == id {
			return row, true
		}
	}
	for _, row := range l.rows {
		if idMatchesIndex(id, row.Index) {
			return row, true
		}
	}
	return Row{}, false
}

// Toggle flips the selection mark on one rendered row and recomputes
// the bulk-action bar.
func (l *ListController) Toggle(id string) bool {
	row, ok := l.RowByIdentifier(id)
	if !ok {
		return false
	}
	l.selection.Set(row.Domain, !l.selection.Selected(row.Domain))
	l.updateBulkBar()
	return true
}

// SelectAll sets every rendered row's mark to checked and recomputes
// the bulk-action bar.
func (l *ListController) SelectAll(checked bool) {
	l.mu.Lock()
	rows := l.rows
	l.mu.Unlock()

	for _, row := range rows {
		l.selection.Set(row.Domain, checked)
	}
	l.updateBulkBar()
}

func idMatchesIndex(id string, index int) bool {
	n := 0
	for _, r := range id {
		if r < '0' || r > '9' {
			return false
		}
		n = n*10 + int(r-'0')
	}
	return len(id) > 0 && n == index
}
