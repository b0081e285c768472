package console

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/fatih/color"
)

// Row is one rendered line of the domain table. BadgeClass is the
// lower-cased status label and selects the badge color.
type Row struct {
	Index      int
	Domain     string
	Status     string
	BadgeClass string
	Expiration string
	Issuer     string
}

// Placeholder texts for the three non-tabular list states.
const (
	placeholderLoading = "Loading domains…"
	placeholderEmpty   = "No domains found"
	placeholderFailed  = "Failed to load domains"
)

var badgeColors = map[string]*color.Color{
	"live":    color.New(color.FgGreen),
	"pending": color.New(color.FgYellow),
	"expired": color.New(color.FgRed),
	"down":    color.New(color.FgRed, color.Bold),
}

// Renderer writes the console UI to an output stream.
type Renderer struct {
	w io.Writer
}

// NewRenderer returns a Renderer writing to w.
func NewRenderer(w io.Writer) *Renderer {
	return &Renderer{w: w}
}

// Placeholder renders a single row spanning the table, used for the
// loading, empty, and load-failed states.
func (r *Renderer) Placeholder(text string) {
	fmt.Fprintf(r.w, "  %s\n", text)
}

// Rows renders the domain table, one line per record, with a selection
// mark in front of each selected row.
func (r *Renderer) Rows(rows []Row, selected func(domain string) bool) {
	tw := tabwriter.NewWriter(r.w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "   \t# \tDOMAIN\tSTATUS\tSSL EXPIRATION\tISSUER")
	for _, row := range rows {
		mark := "[ ]"
		if selected(row.Domain) {
			mark = "[x]"
		}
		fmt.Fprintf(tw, "%s\t%d\t%s\t%s\t%s\t%s\n",
			mark, row.Index, row.Domain, r.badge(row), row.Expiration, row.Issuer)
	}
	tw.Flush()
}

// badge renders the status label colored by its badge class.
func (r *Renderer) badge(row Row) string {
	if c, ok := badgeColors[row.BadgeClass]; ok {
		return c.Sprint(row.Status)
	}
	return row.Status
}

// BulkBar renders the bulk-action bar. It is shown only while at least
// one row is selected.
func (r *Renderer) BulkBar(count int) {
	if count == 0 {
		return
	}
	fmt.Fprintf(r.w, "  %d selected ('delete selected' removes them)\n", count)
}

// Status renders a workflow status line, colored by kind.
func (r *Renderer) Status(name, kind, message string) {
	var line string
	switch kind {
	case statusError:
		line = color.RedString(message)
	case statusSuccess:
		line = color.GreenString(message)
	default:
		line = message
	}
	fmt.Fprintf(r.w, "[%s] %s\n", name, line)
}

// Notice renders a blocking failure notice.
func (r *Renderer) Notice(message string) {
	fmt.Fprintf(r.w, "%s\n", color.New(color.FgRed, color.Bold).Sprint(message))
}

// Attention plays the form attention effect: a terminal bell alongside
// the highlighted message.
func (r *Renderer) Attention(message string) {
	fmt.Fprintf(r.w, "\a%s\n", color.RedString(message))
}

// Prompt prints the console prompt.
func (r *Renderer) Prompt(label string) {
	fmt.Fprintf(r.w, "%s ", strings.TrimSpace(label))
}
