package console

import (
	"context"
	"errors"
	"time"

	"github.com/thexDman/domain-monitoring-devops/pkg/client"
	"github.com/thexDman/domain-monitoring-devops/pkg/tokenstore"
)

// redirectDelay is how long the registration success message stays
// visible before returning to the login destination.
const redirectDelay = 1200 * time.Millisecond

// AuthFlow drives the login and registration forms.
type AuthFlow struct {
	client   *client.Client
	tokens   *tokenstore.Store
	renderer *Renderer

	// sleep is swapped out by tests.
	sleep func(time.Duration)
}

// NewAuthFlow returns an AuthFlow rendering through r.
func NewAuthFlow(c *client.Client, tokens *tokenstore.Store, r *Renderer) *AuthFlow {
	return &AuthFlow{client: c, tokens: tokens, renderer: r, sleep: time.Sleep}
}

// Login performs the credential check. On success the returned token
// is persisted and the caller proceeds to the console. On failure the
// server's message (or a generic network-error message) is shown with
// the form's attention effect; no token is written.
func (a *AuthFlow) Login(ctx context.Context, username, password string) error {
	resp, err := a.client.Login(ctx, username, password)
	if err != nil {
		message := "Network error. Please try again."
		var apiErr *client.APIError
		if errors.As(err, &apiErr) {
			message = "Login failed"
			if apiErr.Message != "" {
				message = apiErr.Message
			}
		}
		a.renderer.Attention(message)
		return err
	}

	if err := a.tokens.Set(resp.Token); err != nil {
		return err
	}
	a.renderer.Status("login", statusSuccess, "Logged in as "+resp.Username)
	return nil
}

// Register submits all three fields verbatim; confirmation matching is
// left to the service. On success the confirmation message is shown
// and, after a fixed delay, the operator is returned to the login
// destination. On failure the server's message is shown and no
// navigation occurs.
func (a *AuthFlow) Register(ctx context.Context, username, password, confirmation string) error {
	err := a.client.Register(ctx, username, password, confirmation)
	if err != nil {
		message := "Registration failed"
		var apiErr *client.APIError
		if errors.As(err, &apiErr) && apiErr.Message != "" {
			message = apiErr.Message
		} else if !errors.As(err, &apiErr) {
			message = "Network error. Please try again."
		}
		a.renderer.Status("register", statusError, message)
		return err
	}

	a.renderer.Status("register", statusSuccess, "Registration successful! Redirecting…")
	a.sleep(redirectDelay)
	a.renderer.Placeholder("Run 'domwatch login' to sign in.")
	return nil
}
