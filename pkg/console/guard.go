package console

import "errors"

// ErrNotAuthenticated reports that no session token is stored. The
// caller must redirect the operator to the login flow without
// performing any further initialization.
var ErrNotAuthenticated = errors.New("no session token stored")

// TokenStore is the persisted session-token store the guard and logout
// depend on.
type TokenStore interface {
	Get() string
	Clear() error
}

// Guard enforces session presence before console startup. It performs
// no liveness check; an expired token is only discovered when an
// authenticated request later fails.
func Guard(tokens TokenStore) error {
	if tokens.Get() == "" {
		return ErrNotAuthenticated
	}
	return nil
}
