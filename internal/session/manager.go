package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/dmitrijs2005/gophdesk/internal/common"
	"github.com/dmitrijs2005/gophdesk/internal/credentials"
	"github.com/dmitrijs2005/gophdesk/internal/logging"
	"github.com/dmitrijs2005/gophdesk/internal/storage"
)

const secretKeySize = 32

// Credentials is the part of the CredentialStore used by the manager.
type Credentials interface {
	Authenticate(ctx context.Context, username, password, pin string) (*credentials.Record, error)
	Lookup(ctx context.Context, username string) (*credentials.Record, error)
	Ping(ctx context.Context) error
}

// Record is the Session Record kept in the ephemeral store.
type Record struct {
	Username string    `json:"username"`
	IssuedAt time.Time `json:"issuedAt"`
	Token    string    `json:"token"`
}

// State is either logged out (zero value) or logged in as Username.
type State struct {
	Username string
	IssuedAt time.Time
}

// LoggedIn reports whether s names an active user.
func (s State) LoggedIn() bool {
	return s.Username != ""
}

// String renders s for the CLI prompt and logs.
func (s State) String() string {
	if !s.LoggedIn() {
		return "logged out"
	}
	return "logged in as " + s.Username
}

// Options tune a Manager. The zero value is usable.
type Options struct {
	// MaxAge bounds the lifetime of a session. Zero means sessions last
	// until logout or until the ephemeral store is discarded.
	MaxAge time.Duration
	// Now overrides the clock used for issuedAt and token expiry.
	Now func() time.Time
}

// Manager is the SessionManager of one tab. It holds at most one Session
// Record, in its ephemeral store, and owns the key that signs its tokens.
// A Manager is not meant to be shared between tabs.
type Manager struct {
	creds     Credentials
	ephemeral storage.Store
	logger    logging.Logger
	secretKey []byte
	maxAge    time.Duration
	now       func() time.Time
}

// NewManager returns a logged-out manager keeping its Session Record in
// ephemeral. Tokens are signed with a key that lives only in this value, so
// a record written into ephemeral by anyone else never validates.
func NewManager(creds Credentials, ephemeral storage.Store, logger logging.Logger, opts Options) *Manager {
	now := opts.Now
	if now == nil {
		now = time.Now
	}
	return &Manager{
		creds:     creds,
		ephemeral: ephemeral,
		logger:    logger.With("component", "session"),
		secretKey: common.GenerateRandByteArray(secretKeySize),
		maxAge:    opts.MaxAge,
		now:       now,
	}
}

// Login verifies the credentials and, on success, replaces any current
// session with one for username. A failed login leaves the current state
// untouched. An unreachable persistent medium fails the login outright.
func (m *Manager) Login(ctx context.Context, username, password, pin string) (State, error) {
	if err := m.creds.Ping(ctx); err != nil {
		return State{}, fmt.Errorf("login: %w", err)
	}

	cred, err := m.creds.Authenticate(ctx, username, password, pin)
	if err != nil {
		m.logger.Info(ctx, "login rejected", "username", username, "error", err)
		return State{}, err
	}

	issuedAt := m.now().UTC()
	token, err := GenerateToken(cred.Username, cred.Version, cred.Fingerprint(), issuedAt, m.maxAge, m.secretKey)
	if err != nil {
		return State{}, err
	}

	data, err := json.Marshal(Record{Username: cred.Username, IssuedAt: issuedAt, Token: token})
	if err != nil {
		return State{}, fmt.Errorf("encode session record: %w", err)
	}
	if err := m.ephemeral.Set(ctx, common.SessionKey, data); err != nil {
		return State{}, fmt.Errorf("store session record: %w", err)
	}

	m.logger.Info(ctx, "logged in", "username", cred.Username)
	return State{Username: cred.Username, IssuedAt: issuedAt}, nil
}

// Logout discards the Session Record. It succeeds whether or not a session
// exists.
func (m *Manager) Logout(ctx context.Context) error {
	if err := m.ephemeral.Delete(ctx, common.SessionKey); err != nil {
		return fmt.Errorf("logout: %w", err)
	}
	m.logger.Info(ctx, "logged out")
	return nil
}

// State reads and revalidates the current session. A record that no longer
// validates (bad or expired token, deleted or re-registered account, changed
// credentials) is
// discarded and reported as logged out.
func (m *Manager) State(ctx context.Context) (State, error) {
	data, err := m.ephemeral.Get(ctx, common.SessionKey)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return State{}, nil
		}
		return State{}, fmt.Errorf("read session record: %w", err)
	}

	var rec Record
	if err := json.Unmarshal(data, &rec); err != nil {
		return m.discard(ctx, "", "malformed session record")
	}

	claims, err := ParseToken(rec.Token, m.secretKey, m.now)
	if err != nil {
		if errors.Is(err, common.ErrTokenExpired) {
			return m.discard(ctx, rec.Username, "session expired")
		}
		return m.discard(ctx, rec.Username, "session token rejected")
	}
	if claims.Username != rec.Username {
		return m.discard(ctx, rec.Username, "session token does not match record")
	}

	cred, err := m.creds.Lookup(ctx, rec.Username)
	if err != nil {
		if errors.Is(err, common.ErrUnknownUser) {
			return m.discard(ctx, rec.Username, "account no longer exists")
		}
		return State{}, err
	}
	// The fingerprint catches a record removed and registered again,
	// whose version starts over at 1.
	if cred.Fingerprint() != claims.Fingerprint || cred.Version != claims.Version {
		return m.discard(ctx, rec.Username, "credential record changed since login")
	}

	return State{Username: rec.Username, IssuedAt: rec.IssuedAt}, nil
}

// ActiveUser returns the username of the valid current session, or
// common.ErrNotAuthenticated.
func (m *Manager) ActiveUser(ctx context.Context) (string, error) {
	st, err := m.State(ctx)
	if err != nil {
		return "", err
	}
	if !st.LoggedIn() {
		return "", common.ErrNotAuthenticated
	}
	return st.Username, nil
}

func (m *Manager) discard(ctx context.Context, username, reason string) (State, error) {
	m.logger.Info(ctx, "session discarded", "username", username, "reason", reason)
	if err := m.ephemeral.Delete(ctx, common.SessionKey); err != nil {
		return State{}, fmt.Errorf("discard session record: %w", err)
	}
	return State{}, nil
}
