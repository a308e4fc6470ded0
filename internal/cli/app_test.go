package cli

import (
	"bytes"
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/dmitrijs2005/gophdesk/internal/common"
	"github.com/dmitrijs2005/gophdesk/internal/config"
	"github.com/dmitrijs2005/gophdesk/internal/cryptox"
	"github.com/dmitrijs2005/gophdesk/internal/logging"
	"github.com/dmitrijs2005/gophdesk/internal/storage/memory"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// stubSecrets makes getSecret answer from secrets, in order.
func stubSecrets(t *testing.T, secrets ...string) {
	t.Helper()
	queue := append([]string(nil), secrets...)
	orig := getSecret
	getSecret = func(_ io.Writer, _ string) ([]byte, error) {
		if len(queue) == 0 {
			return nil, io.EOF
		}
		s := queue[0]
		queue = queue[1:]
		return []byte(s), nil
	}
	t.Cleanup(func() { getSecret = orig })
}

func newTestApp(t *testing.T, db *memory.Store, input string) (*App, *bytes.Buffer) {
	t.Helper()
	var out bytes.Buffer
	cfg := &config.Config{}
	cfg.LoadDefaults()
	hasher := cryptox.NewHasher(cryptox.Params{Time: 1, Memory: 1024, Threads: 1, KeyLen: 32})
	return newApp(cfg, db, hasher, logging.Discard(), strings.NewReader(input), &out), &out
}

func registerAlice(t *testing.T, db *memory.Store) {
	t.Helper()
	stubSecrets(t, "P@ss1", "4242", "P@ss1")
	a, _ := newTestApp(t, db, "alice\n")
	require.NoError(t, a.Register(context.Background()))
}

func TestRegister_Success(t *testing.T) {
	db := memory.NewStore()
	stubSecrets(t, "P@ss1", "4242", "P@ss1")
	a, out := newTestApp(t, db, "alice\n")

	require.NoError(t, a.Register(context.Background()))
	assert.Contains(t, out.String(), "Success!")
	require.NoError(t, a.creds.Verify(context.Background(), "alice", "P@ss1", "4242"))
	assert.False(t, a.isLoggedIn(context.Background()), "register must not log in")
}

func TestRegister_PasswordMismatch(t *testing.T) {
	db := memory.NewStore()
	stubSecrets(t, "P@ss1", "4242", "typo")
	a, _ := newTestApp(t, db, "alice\n")

	require.ErrorIs(t, a.Register(context.Background()), errSecretMismatch)
	assert.Equal(t, 0, db.Len())
}

func TestLoginAndData(t *testing.T) {
	ctx := context.Background()
	db := memory.NewStore()
	registerAlice(t, db)

	stubSecrets(t, "P@ss1", "4242")
	a, out := newTestApp(t, db, "alice\n")

	require.NoError(t, a.Login(ctx))
	assert.Contains(t, out.String(), "Logged in as alice")
	assert.Equal(t, "(alice) ", a.getStatus(ctx))

	require.NoError(t, a.Put(ctx, "resume", "v1"))
	raw, err := db.Get(ctx, "data:alice:resume")
	require.NoError(t, err)
	assert.Equal(t, []byte("v1"), raw)

	out.Reset()
	require.NoError(t, a.Get(ctx, "resume"))
	assert.Equal(t, "v1\n", out.String())

	out.Reset()
	require.NoError(t, a.Keys(ctx, ""))
	assert.Equal(t, "resume\n", out.String(), "history entries are hidden")

	out.Reset()
	require.NoError(t, a.History(ctx))
	lines := strings.Split(strings.TrimSpace(out.String()), "\n")
	require.Len(t, lines, 2)
	assert.Contains(t, lines[0], "login")
	assert.Contains(t, lines[1], "put  resume")

	require.NoError(t, a.Delete(ctx, "resume"))
	out.Reset()
	require.NoError(t, a.Get(ctx, "resume"))
	assert.Equal(t, "Not found: resume\n", out.String())

	require.NoError(t, a.Logout(ctx))
	assert.Equal(t, "", a.getStatus(ctx))
	require.ErrorIs(t, a.Put(ctx, "resume", "v2"), common.ErrNotAuthenticated)

	out.Reset()
	require.NoError(t, a.WhoAmI(ctx))
	assert.Equal(t, "Not logged in\n", out.String())
}

func TestLogin_WrongPIN(t *testing.T) {
	db := memory.NewStore()
	registerAlice(t, db)

	stubSecrets(t, "P@ss1", "0000")
	a, _ := newTestApp(t, db, "alice\n")

	require.ErrorIs(t, a.Login(context.Background()), common.ErrInvalidCredentials)
	assert.False(t, a.isLoggedIn(context.Background()))
}

func TestChangeCredentials(t *testing.T) {
	ctx := context.Background()
	db := memory.NewStore()
	registerAlice(t, db)

	stubSecrets(t, "P@ss1", "4242")
	other, _ := newTestApp(t, db, "alice\n")
	require.NoError(t, other.Login(ctx))

	stubSecrets(t, "P@ss1", "4242", "P@ss1", "4242", "N3w!", "9876", "N3w!")
	a, out := newTestApp(t, db, "alice\n")
	require.NoError(t, a.Login(ctx))
	require.NoError(t, a.ChangeCredentials(ctx))
	assert.Contains(t, out.String(), "Credentials changed")

	assert.True(t, a.isLoggedIn(ctx), "the session that changed credentials is renewed")
	assert.False(t, other.isLoggedIn(ctx), "other sessions end")
	require.NoError(t, a.creds.Verify(ctx, "alice", "N3w!", "9876"))
}

func TestChangeCredentials_RequiresSession(t *testing.T) {
	a, _ := newTestApp(t, memory.NewStore(), "")
	require.ErrorIs(t, a.ChangeCredentials(context.Background()), common.ErrNotAuthenticated)
}

func TestUnregister(t *testing.T) {
	ctx := context.Background()
	db := memory.NewStore()
	registerAlice(t, db)

	stubSecrets(t, "P@ss1", "4242", "P@ss1", "4242")
	a, out := newTestApp(t, db, "alice\n")
	require.NoError(t, a.Login(ctx))
	require.NoError(t, a.Put(ctx, "resume", "v1"))

	require.NoError(t, a.Unregister(ctx))
	assert.Contains(t, out.String(), "Account alice removed")
	assert.False(t, a.isLoggedIn(ctx))
	assert.Equal(t, 0, db.Len())
}

func TestRoot_Session(t *testing.T) {
	out := captureOutput(t)
	db := memory.NewStore()
	stubSecrets(t, "P@ss1", "4242", "P@ss1", "P@ss1", "4242")

	input := strings.Join([]string{
		"register",
		"alice",
		"login",
		"alice",
		"put resume my resume",
		"logout",
		"put resume v2",
		"exit",
	}, "\n") + "\n"
	a, appOut := newTestApp(t, db, input)

	a.Root(context.Background())

	assert.Contains(t, appOut.String(), "Saved resume")
	assert.Contains(t, *out, "Please log in first")
	raw, err := db.Get(context.Background(), "data:alice:resume")
	require.NoError(t, err)
	assert.Equal(t, []byte("my resume"), raw)
}

func TestNewApp(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "gophdesk.db")
	cfg := &config.Config{DatabasePath: path, LogLevel: "error", SessionMaxAge: time.Hour}

	a, err := NewApp(cfg)
	require.NoError(t, err)
	require.NoError(t, a.Close())

	_, err = os.Stat(path)
	require.NoError(t, err)
}

func TestNewApp_BadLogLevel(t *testing.T) {
	cfg := &config.Config{DatabasePath: filepath.Join(t.TempDir(), "x.db"), LogLevel: "loud"}

	_, err := NewApp(cfg)
	require.Error(t, err)
}
