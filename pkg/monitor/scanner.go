// Package monitor probes monitored domains for reachability and TLS
// certificate metadata.
package monitor

import (
	"crypto/tls"
	"net"
	"strings"
	"sync"
	"time"

	"github.com/likexian/whois"
	whoisparser "github.com/likexian/whois-parser"
	"github.com/rs/zerolog/log"
	"github.com/weppos/publicsuffix-go/publicsuffix"

	"github.com/thexDman/domain-monitoring-devops/pkg/api"
)

// Result is the outcome of probing a single domain.
type Result struct {
	Domain        string
	Status        string
	SSLExpiration string
	SSLIssuer     string
	Registrar     string
	DomainExpiry  time.Time
}

// Scanner probes domains concurrently with a fixed worker pool.
type Scanner struct {
	Workers     int
	Timeout     time.Duration
	WhoisLookup bool
}

// New returns a Scanner with the given pool size and per-probe timeout.
func New(workers int, timeout time.Duration, whoisLookup bool) *Scanner {
	return &Scanner{Workers: workers, Timeout: timeout, WhoisLookup: whoisLookup}
}

// Check probes one domain. The probe order follows the monitoring
// contract: DNS resolution first (unresolvable means Down), then an
// HTTPS handshake for certificate metadata, then a plain TCP:80
// reachability fallback for hosts without TLS.
func (s *Scanner) Check(domain string) Result {
	result := Result{
		Domain:        domain,
		Status:        api.StatusDown,
		SSLExpiration: "N/A",
		SSLIssuer:     "N/A",
	}

	host := strings.ToLower(strings.TrimSpace(domain))

	if _, err := net.LookupHost(host); err != nil {
		log.Warn().Str("domain", host).Msg("DNS resolution failed")
		return result
	}

	dialer := &net.Dialer{Timeout: s.Timeout}

	// InsecureSkipVerify lets us read metadata off expired certificates.
	conn, err := tls.DialWithDialer(dialer, "tcp", host+":443", &tls.Config{
		InsecureSkipVerify: true,
		ServerName:         host,
	})
	if err == nil {
		defer conn.Close()
		cert := conn.ConnectionState().PeerCertificates[0]

		expiry := cert.NotAfter.In(time.Local)
		result.SSLExpiration = expiry.Format("2006-01-02")

		if len(cert.Issuer.Organization) > 0 {
			result.SSLIssuer = cert.Issuer.Organization[0]
		} else {
			result.SSLIssuer = "Unknown"
		}

		if time.Now().After(expiry) {
			result.Status = api.StatusExpired
		} else {
			result.Status = api.StatusLive
		}

		if s.WhoisLookup {
			result.Registrar, result.DomainExpiry = whoisInfo(host)
		}
		return result
	}
	log.Warn().Str("domain", host).Err(err).Msg("HTTPS probe failed")

	// Fallback: a host answering on port 80 is live without a certificate.
	tcpConn, err := net.DialTimeout("tcp", host+":80", s.Timeout)
	if err == nil {
		tcpConn.Close()
		result.Status = api.StatusLive
	}

	return result
}

// ScanAll probes every given domain using the worker pool and returns
// one result per input, in no particular order.
func (s *Scanner) ScanAll(hosts []string) []Result {
	jobs := make(chan string, len(hosts))
	results := make(chan Result, len(hosts))

	var wg sync.WaitGroup
	for i := 0; i < s.Workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for host := range jobs {
				results <- s.Check(host)
			}
		}()
	}

	for _, host := range hosts {
		jobs <- host
	}
	close(jobs)

	wg.Wait()
	close(results)

	out := make([]Result, 0, len(hosts))
	for r := range results {
		out = append(out, r)
	}
	return out
}

// whoisInfo fetches registrar and domain expiration details for the
// registrable part of the host. Lookups are best-effort; failures
// degrade to empty values.
func whoisInfo(host string) (string, time.Time) {
	rootDomain := host
	if dn, err := publicsuffix.Parse(host); err == nil && dn.SLD != "" && dn.TLD != "" {
		rootDomain = dn.SLD + "." + dn.TLD
	}

	raw, err := whois.Whois(rootDomain)
	if err != nil {
		log.Warn().Str("domain", rootDomain).Err(err).Msg("WHOIS lookup failed")
		return "", time.Time{}
	}

	parsed, err := whoisparser.Parse(raw)
	if err != nil {
		log.Warn().Str("domain", rootDomain).Err(err).Msg("WHOIS parse failed")
		return "", time.Time{}
	}

	var expiry time.Time
	if parsed.Domain.ExpirationDate != "" {
		layouts := []string{
			time.RFC3339,
			"2006-01-02T15:04:05Z",
			"2006-01-02 15:04:05",
			"2006-01-02",
		}
		for _, layout := range layouts {
			if t, err := time.Parse(layout, parsed.Domain.ExpirationDate); err == nil {
				expiry = t
				break
			}
		}
	}

	return parsed.Registrar.Name, expiry
}
