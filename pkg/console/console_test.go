package console

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/thexDman/domain-monitoring-devops/pkg/api"
	"github.com/thexDman/domain-monitoring-devops/pkg/client"
)

// fakeTokens is an in-memory token store.
type fakeTokens struct {
	token string
}

func (f *fakeTokens) Get() string   { return f.token }
func (f *fakeTokens) Token() string { return f.token }
func (f *fakeTokens) Clear() error  { f.token = ""; return nil }

func newConsole(t *testing.T, handler http.Handler, token string) (*Console, *fakeTokens, *bytes.Buffer) {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	tokens := &fakeTokens{token: token}
	out := &bytes.Buffer{}
	con := New(client.New(srv.URL, tokens), tokens, strings.NewReader(""), out)
	return con, tokens, out
}

func listHandler(records []api.DomainRecord, hits *atomic.Int64) http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/domains", func(w http.ResponseWriter, r *http.Request) {
		if hits != nil {
			hits.Add(1)
		}
		json.NewEncoder(w).Encode(api.ListDomainsResponse{OK: true, Domains: records})
	})
	return mux
}

func TestGuardRedirectsBeforeAnyNetworkCall(t *testing.T) {
	var hits atomic.Int64
	con, _, _ := newConsole(t, listHandler(nil, &hits), "")

	err := con.Run(context.Background())
	require.ErrorIs(t, err, ErrNotAuthenticated)
	require.Zero(t, hits.Load(), "no network call may precede the redirect")
}

func TestLoadRendersOneRowPerRecord(t *testing.T) {
	records := []api.DomainRecord{
		{Domain: "a.example.com", Status: "Live", SSLExpiration: "2027-01-01", SSLIssuer: "Let's Encrypt"},
		{Domain: "b.example.com", Status: "Expired", SSLExpiration: "2024-02-02", SSLIssuer: "DigiCert"},
		{Domain: "c.example.com", Status: "Pending", SSLExpiration: "N/A", SSLIssuer: "N/A"},
	}
	con, _, _ := newConsole(t, listHandler(records, nil), "tok")

	con.List().Load(context.Background())

	rows := con.List().Rows()
	require.Len(t, rows, 3)
	for i, row := range rows {
		require.Equal(t, records[i].Domain, row.Domain, "service order is preserved")
		require.Equal(t, strings.ToLower(records[i].Status), row.BadgeClass)
	}
	require.Empty(t, con.List().Placeholder())
}

func TestLoadEmptyRendersPlaceholder(t *testing.T) {
	con, _, out := newConsole(t, listHandler(nil, nil), "tok")

	con.List().Load(context.Background())

	require.Equal(t, placeholderEmpty, con.List().Placeholder())
	require.Contains(t, out.String(), "No domains found")
	require.Empty(t, con.List().Rows())
}

func TestLoadServerErrorRendersEmptyPlaceholder(t *testing.T) {
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"ok":false}`, http.StatusInternalServerError)
	})
	con, _, _ := newConsole(t, handler, "tok")

	con.List().Load(context.Background())
	require.Equal(t, placeholderEmpty, con.List().Placeholder())
}

func TestLoadTransportFaultRendersFailedPlaceholder(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	srv.Close() // connection refused from now on

	tokens := &fakeTokens{token: "tok"}
	out := &bytes.Buffer{}
	con := New(client.New(srv.URL, tokens), tokens, strings.NewReader(""), out)

	con.List().Load(context.Background())

	require.Equal(t, placeholderFailed, con.List().Placeholder())
	require.Contains(t, out.String(), "Failed to load domains")
}

func TestSelectAllDrivesBulkBarVisibility(t *testing.T) {
	records := []api.DomainRecord{
		{Domain: "a.example.com", Status: "Live"},
		{Domain: "b.example.com", Status: "Live"},
	}
	con, _, _ := newConsole(t, listHandler(records, nil), "tok")
	con.List().Load(context.Background())

	require.False(t, con.List().BulkBarVisible())

	con.List().SelectAll(true)
	require.True(t, con.Selection().Selected("a.example.com"))
	require.True(t, con.Selection().Selected("b.example.com"))
	require.True(t, con.List().BulkBarVisible())

	con.List().SelectAll(false)
	require.False(t, con.Selection().Any())
	require.False(t, con.List().BulkBarVisible())
}

func TestSingleCheckboxChangeRecomputesVisibility(t *testing.T) {
	records := []api.DomainRecord{
		{Domain: "a.example.com", Status: "Live"},
		{Domain: "b.example.com", Status: "Live"},
	}
	con, _, _ := newConsole(t, listHandler(records, nil), "tok")
	con.List().Load(context.Background())

	require.True(t, con.List().Toggle("a.example.com"))
	require.True(t, con.List().BulkBarVisible())

	require.True(t, con.List().Toggle("1")) // toggle off by row index
	require.False(t, con.List().BulkBarVisible())
}

func TestSelectionIsRebuiltOnEveryRender(t *testing.T) {
	records := []api.DomainRecord{{Domain: "a.example.com", Status: "Live"}}
	con, _, _ := newConsole(t, listHandler(records, nil), "tok")
	con.List().Load(context.Background())

	con.List().SelectAll(true)
	require.True(t, con.List().BulkBarVisible())

	con.List().Load(context.Background())
	require.False(t, con.Selection().Any(), "selection must not survive a render")
	require.False(t, con.List().BulkBarVisible())
}

func TestAddDomainEndToEnd(t *testing.T) {
	var listHits atomic.Int64
	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/domains", func(w http.ResponseWriter, r *http.Request) {
		listHits.Add(1)
		json.NewEncoder(w).Encode(api.ListDomainsResponse{OK: true, Domains: []api.DomainRecord{
			{Domain: "example.com", Status: "Pending", SSLExpiration: "N/A", SSLIssuer: "N/A"},
		}})
	})
	mux.HandleFunc("POST /api/domains", func(w http.ResponseWriter, r *http.Request) {
		var body api.AddDomainRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		require.Equal(t, "example.com", body.Domain)
		w.WriteHeader(http.StatusCreated)
		json.NewEncoder(w).Encode(api.StatusResponse{OK: true})
	})

	con, _, out := newConsole(t, mux, "tok")
	add := con.AddWorkflow()
	add.delay = 20 * time.Millisecond

	listHits.Store(0)
	add.Open()
	err := add.Submit(context.Background(), func(ctx context.Context) error {
		return con.client.AddDomain(ctx, "example.com")
	})
	require.NoError(t, err)
	require.Equal(t, "Domain added!", add.Status())
	require.Contains(t, out.String(), "Domain added!")

	waitFor(t, func() bool { return add.State() == StateClosed })
	waitFor(t, func() bool { return listHits.Load() == 1 })
	require.Contains(t, out.String(), "example.com")
}

func TestLogoutClearsTokenUnconditionally(t *testing.T) {
	con, tokens, _ := newConsole(t, listHandler(nil, nil), "tok")

	require.NoError(t, con.Logout())
	require.Empty(t, tokens.Get())
}

func TestConsoleRunLoadsThenQuits(t *testing.T) {
	var hits atomic.Int64
	records := []api.DomainRecord{{Domain: "a.example.com", Status: "Live"}}
	srv := httptest.NewServer(listHandler(records, &hits))
	t.Cleanup(srv.Close)

	tokens := &fakeTokens{token: "tok"}
	out := &bytes.Buffer{}
	con := New(client.New(srv.URL, tokens), tokens, strings.NewReader("quit\n"), out)

	require.NoError(t, con.Run(context.Background()))
	require.EqualValues(t, 1, hits.Load())
	require.Contains(t, out.String(), "a.example.com")
}
