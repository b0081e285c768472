// Package api defines the wire types shared between the monitoring
// service and the console client.
package api

// Domain status labels form a closed set. New records start as
// StatusPending until the first scan updates them.
const (
	StatusPending = "Pending"
	StatusLive    = "Live"
	StatusExpired = "Expired"
	StatusDown    = "Down"
)

// DomainRecord is a monitored hostname and its current certificate
// status. Records are read-only from the console's perspective; all
// mutation happens server-side.
type DomainRecord struct {
	Domain        string `json:"domain"`
	Status        string `json:"status"`
	SSLExpiration string `json:"ssl_expiration"`
	SSLIssuer     string `json:"ssl_issuer"`
}

// ListDomainsResponse is the payload returned by GET /api/domains.
type ListDomainsResponse struct {
	OK      bool           `json:"ok"`
	Domains []DomainRecord `json:"domains"`
	Error   string         `json:"error,omitempty"`
}

// StatusResponse is the generic ok/error envelope used by mutation
// endpoints.
type StatusResponse struct {
	OK    bool   `json:"ok"`
	Error string `json:"error,omitempty"`
}

// LoginRequest carries the credential-check payload.
type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// LoginResponse carries the session token issued on a successful login.
type LoginResponse struct {
	OK       bool   `json:"ok"`
	Token    string `json:"token,omitempty"`
	Username string `json:"username,omitempty"`
	Error    string `json:"error,omitempty"`
}

// RegisterRequest carries all three registration fields verbatim;
// confirmation matching is validated server-side only.
type RegisterRequest struct {
	Username             string `json:"username"`
	Password             string `json:"password"`
	PasswordConfirmation string `json:"password_confirmation"`
}

// AddDomainRequest carries a single domain to monitor.
type AddDomainRequest struct {
	Domain string `json:"domain"`
}

// DeleteDomainsRequest carries the identifiers targeted by a delete.
type DeleteDomainsRequest struct {
	Domains []string `json:"domains"`
}

// DeleteSummary reports which of the requested domains were actually
// removed.
type DeleteSummary struct {
	Removed  []string `json:"removed"`
	NotFound []string `json:"not_found"`
}

// DeleteDomainsResponse is the payload returned by DELETE /api/domains.
type DeleteDomainsResponse struct {
	OK      bool          `json:"ok"`
	Summary DeleteSummary `json:"summary"`
	Error   string        `json:"error,omitempty"`
}

// BulkSummary reports the per-line outcome of a bulk import.
type BulkSummary struct {
	Added      []string      `json:"added"`
	Duplicates []string      `json:"duplicates"`
	Invalid    []InvalidLine `json:"invalid"`
}

// InvalidLine describes a rejected bulk-import line and why it was
// rejected.
type InvalidLine struct {
	Input  string `json:"input"`
	Reason string `json:"reason"`
}

// BulkUploadResponse is the payload returned by POST /api/domains/bulk.
type BulkUploadResponse struct {
	OK      bool        `json:"ok"`
	Summary BulkSummary `json:"summary"`
	Error   string      `json:"error,omitempty"`
}

// ScanResponse reports how many records an on-demand rescan refreshed.
type ScanResponse struct {
	OK      bool   `json:"ok"`
	Updated int    `json:"updated"`
	Error   string `json:"error,omitempty"`
}
