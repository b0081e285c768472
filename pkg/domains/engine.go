// Package domains implements per-user watch-list storage and the
// validation rules applied to every domain entering the system.
package domains

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"regexp"
	"strings"

	"github.com/rs/zerolog/log"
	"github.com/weppos/publicsuffix-go/publicsuffix"
	"gorm.io/gorm"

	"github.com/thexDman/domain-monitoring-devops/pkg/api"
	"github.com/thexDman/domain-monitoring-devops/pkg/database"
)

// ErrDuplicate is returned when the domain is already on the user's
// watch list.
var ErrDuplicate = errors.New("domain already exists")

// fqdnRE validates FQDN shape (example.com, sub.example.co.il, ...).
var fqdnRE = regexp.MustCompile(`^(?:[A-Za-z0-9](?:[A-Za-z0-9-]{0,61}[A-Za-z0-9])?\.)+[A-Za-z]{2,63}$`)

// Engine performs watch-list reads and mutations against the shared
// database handle.
type Engine struct {
	db *gorm.DB
}

// NewEngine returns an Engine bound to the given database handle.
func NewEngine(db *gorm.DB) *Engine {
	return &Engine{db: db}
}

// Normalize strips scheme, path, query, port and trailing dot from a
// raw domain string and lower-cases the remainder.
func Normalize(raw string) string {
	s := strings.ToLower(strings.TrimSpace(raw))

	s = strings.TrimPrefix(s, "http://")
	s = strings.TrimPrefix(s, "https://")

	if i := strings.IndexAny(s, "/?#"); i >= 0 {
		s = s[:i]
	}
	if i := strings.Index(s, ":"); i >= 0 {
		s = s[:i]
	}

	return strings.TrimSuffix(s, ".")
}

// Validate normalizes a raw domain and checks it against the FQDN
// format and the public suffix list. It returns the normalized host or
// the reason the input was rejected.
func Validate(raw string) (string, error) {
	host := Normalize(raw)
	if host == "" {
		return "", errors.New("Empty domain")
	}

	if len(host) > 253 || !fqdnRE.MatchString(host) {
		return "", errors.New("Domain does not match FQDN format")
	}

	// A registrable domain must sit under a known public suffix.
	if _, err := publicsuffix.Parse(host); err != nil {
		return "", errors.New("Domain does not match FQDN format")
	}

	return host, nil
}

// List returns the user's domain records sorted by domain name.
func (e *Engine) List(username string) ([]api.DomainRecord, error) {
	var rows []database.MonitoredDomain
	if err := e.db.Where("username = ?", username).Order("domain asc").Find(&rows).Error; err != nil {
		return nil, err
	}

	records := make([]api.DomainRecord, 0, len(rows))
	for _, row := range rows {
		records = append(records, api.DomainRecord{
			Domain:        row.Domain,
			Status:        row.Status,
			SSLExpiration: row.SSLExpiration,
			SSLIssuer:     row.SSLIssuer,
		})
	}
	return records, nil
}

// Add validates and stores one domain on the user's watch list. The
// new record starts as Pending with no certificate metadata.
func (e *Engine) Add(username, raw string) (string, error) {
	host, err := Validate(raw)
	if err != nil {
		return "", fmt.Errorf("Invalid domain: %w", err)
	}

	record := database.MonitoredDomain{
		Username:      username,
		Domain:        host,
		Status:        api.StatusPending,
		SSLExpiration: "N/A",
		SSLIssuer:     "N/A",
	}

	if err := e.db.Create(&record).Error; err != nil {
		if strings.Contains(err.Error(), "UNIQUE constraint failed") {
			return "", ErrDuplicate
		}
		return "", err
	}

	return host, nil
}

// BulkImport reads one domain per line from r and adds every valid,
// previously unknown entry to the user's watch list. Blank lines are
// skipped; invalid and duplicate lines are reported in the summary
// rather than aborting the import.
func (e *Engine) BulkImport(username string, r io.Reader) (api.BulkSummary, error) {
	summary := api.BulkSummary{
		Added:      []string{},
		Duplicates: []string{},
		Invalid:    []api.InvalidLine{},
	}

	scanner := bufio.NewScanner(r)
	sawLine := false
	for scanner.Scan() {
		raw := strings.TrimSpace(scanner.Text())
		if raw == "" {
			continue
		}
		sawLine = true

		host, err := Validate(raw)
		if err != nil {
			log.Warn().Str("input", raw).Err(err).Msg("invalid domain skipped")
			summary.Invalid = append(summary.Invalid, api.InvalidLine{Input: raw, Reason: err.Error()})
			continue
		}

		switch _, err := e.Add(username, host); {
		case errors.Is(err, ErrDuplicate):
			log.Warn().Str("domain", host).Msg("duplicate domain skipped")
			summary.Duplicates = append(summary.Duplicates, host)
		case err != nil:
			return summary, err
		default:
			summary.Added = append(summary.Added, host)
		}
	}
	if err := scanner.Err(); err != nil {
		return summary, fmt.Errorf("read upload: %w", err)
	}
	if !sawLine {
		return summary, errors.New("File is empty or invalid")
	}

	log.Info().
		Str("username", username).
		Int("added", len(summary.Added)).
		Int("duplicates", len(summary.Duplicates)).
		Int("invalid", len(summary.Invalid)).
		Msg("bulk import finished")

	return summary, nil
}

// Remove deletes the given domains from the user's watch list and
// reports which were removed and which were not present.
func (e *Engine) Remove(username string, hosts []string) (api.DeleteSummary, error) {
	summary := api.DeleteSummary{Removed: []string{}, NotFound: []string{}}

	targets := make([]string, 0, len(hosts))
	seen := make(map[string]bool)
	for _, h := range hosts {
		host := Normalize(h)
		if host == "" || seen[host] {
			continue
		}
		seen[host] = true
		targets = append(targets, host)
	}

	for _, host := range targets {
		res := e.db.Where("username = ? AND domain = ?", username, host).Delete(&database.MonitoredDomain{})
		if res.Error != nil {
			return summary, res.Error
		}
		if res.RowsAffected > 0 {
			summary.Removed = append(summary.Removed, host)
		} else {
			summary.NotFound = append(summary.NotFound, host)
		}
	}

	return summary, nil
}

// Snapshot returns the raw stored rows for the user, used by the
// scanner to know what to probe.
func (e *Engine) Snapshot(username string) ([]database.MonitoredDomain, error) {
	var rows []database.MonitoredDomain
	if err := e.db.Where("username = ?", username).Order("domain asc").Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

// Update overwrites the scan-derived fields of one stored record.
func (e *Engine) Update(username string, rec api.DomainRecord, registrar string) error {
	updates := map[string]any{
		"status":         rec.Status,
		"ssl_expiration": rec.SSLExpiration,
		"ssl_issuer":     rec.SSLIssuer,
		"last_check":     e.db.NowFunc(),
	}
	if registrar != "" {
		updates["registrar"] = registrar
	}
	return e.db.Model(&database.MonitoredDomain{}).
		Where("username = ? AND domain = ?", username, rec.Domain).
		Updates(updates).Error
}
