package credentials

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/dmitrijs2005/gophdesk/internal/common"
	"github.com/dmitrijs2005/gophdesk/internal/cryptox"
	"github.com/dmitrijs2005/gophdesk/internal/logging"
	"github.com/dmitrijs2005/gophdesk/internal/storage/memory"
	"github.com/dmitrijs2005/gophdesk/internal/storage/storagetest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupStore(t *testing.T) (*Store, *memory.Store) {
	t.Helper()
	db := memory.NewStore()
	hasher := cryptox.NewHasher(cryptox.Params{Time: 1, Memory: 1024, Threads: 1, KeyLen: 32})
	return NewStore(db, hasher, logging.Discard()), db
}

func storedRecord(t *testing.T, db *memory.Store, username string) Record {
	t.Helper()
	data, err := db.Get(context.Background(), common.CredentialKey(username))
	require.NoError(t, err)
	var rec Record
	require.NoError(t, json.Unmarshal(data, &rec))
	return rec
}

func TestRegisterThenVerify(t *testing.T) {
	s, _ := setupStore(t)
	ctx := context.Background()

	require.NoError(t, s.Register(ctx, "alice", "P@ss1", "4242"))
	require.NoError(t, s.Verify(ctx, "alice", "P@ss1", "4242"))
}

func TestVerify_WrongFactors(t *testing.T) {
	s, _ := setupStore(t)
	ctx := context.Background()
	require.NoError(t, s.Register(ctx, "alice", "P@ss1", "4242"))

	tests := []struct {
		name     string
		password string
		pin      string
	}{
		{name: "wrong password", password: "nope", pin: "4242"},
		{name: "wrong pin", password: "P@ss1", pin: "0000"},
		{name: "both wrong", password: "nope", pin: "0000"},
		{name: "empty", password: "", pin: ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.ErrorIs(t, s.Verify(ctx, "alice", tt.password, tt.pin), common.ErrInvalidCredentials)
		})
	}
}

func TestVerify_UnknownUser(t *testing.T) {
	s, _ := setupStore(t)

	require.ErrorIs(t, s.Verify(context.Background(), "bob", "P@ss1", "4242"), common.ErrUnknownUser)
}

func TestRegister_Duplicate(t *testing.T) {
	s, _ := setupStore(t)
	ctx := context.Background()
	require.NoError(t, s.Register(ctx, "alice", "P@ss1", "4242"))

	require.ErrorIs(t, s.Register(ctx, "alice", "other", "1111"), common.ErrDuplicateUsername)

	require.NoError(t, s.Verify(ctx, "alice", "P@ss1", "4242"))
	require.ErrorIs(t, s.Verify(ctx, "alice", "other", "1111"), common.ErrInvalidCredentials)
}

func TestRegister_RecordLayout(t *testing.T) {
	s, db := setupStore(t)
	ctx := context.Background()
	fixed := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	s.now = func() time.Time { return fixed }

	require.NoError(t, s.Register(ctx, "alice", "P@ss1", "4242"))

	rec := storedRecord(t, db, "alice")
	assert.Equal(t, "alice", rec.Username)
	assert.Len(t, rec.Salt, cryptox.SaltSize*2)
	assert.Equal(t, s.hasher.Hash("P@ss1", rec.Salt), rec.PasswordHash)
	assert.Equal(t, s.hasher.Hash("4242", rec.Salt), rec.PinHash)
	assert.Equal(t, int64(1), rec.Version)
	assert.True(t, fixed.Equal(rec.CreatedAt))

	raw, err := db.Get(ctx, common.CredentialKey("alice"))
	require.NoError(t, err)
	assert.NotContains(t, string(raw), "P@ss1")
	assert.NotContains(t, string(raw), "4242")
}

func TestRegister_SaltsAreUniquePerUser(t *testing.T) {
	s, db := setupStore(t)
	ctx := context.Background()
	require.NoError(t, s.Register(ctx, "alice", "same", "1234"))
	require.NoError(t, s.Register(ctx, "bob", "same", "1234"))

	a := storedRecord(t, db, "alice")
	b := storedRecord(t, db, "bob")
	assert.NotEqual(t, a.Salt, b.Salt)
	assert.NotEqual(t, a.PasswordHash, b.PasswordHash)
	assert.NotEqual(t, a.PinHash, b.PinHash)
}

func TestRegister_InvalidInput(t *testing.T) {
	s, db := setupStore(t)
	ctx := context.Background()

	tests := []struct {
		name     string
		username string
		password string
		pin      string
	}{
		{name: "empty username", username: "", password: "p", pin: "4242"},
		{name: "separator in username", username: "alice:x", password: "p", pin: "4242"},
		{name: "space in username", username: "al ice", password: "p", pin: "4242"},
		{name: "control char in username", username: "ali\x01ce", password: "p", pin: "4242"},
		{name: "escape in username", username: "alice\x1b[2J", password: "p", pin: "4242"},
		{name: "invalid utf-8 username", username: "ali\xffce", password: "p", pin: "4242"},
		{name: "empty password", username: "alice", password: "", pin: "4242"},
		{name: "short pin", username: "alice", password: "p", pin: "42"},
		{name: "non-digit pin", username: "alice", password: "p", pin: "42a2"},
		{name: "signed pin", username: "alice", password: "p", pin: "-4242"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := s.Register(ctx, tt.username, tt.password, tt.pin)
			require.ErrorIs(t, err, common.ErrInvalidInput)
		})
	}
	assert.Equal(t, 0, db.Len())
}

func TestRegister_AcceptsUnicodeUsername(t *testing.T) {
	s, _ := setupStore(t)
	ctx := context.Background()

	require.NoError(t, s.Register(ctx, "Jürgen_Łukasz-99", "P@ss1", "4242"))
	require.NoError(t, s.Verify(ctx, "Jürgen_Łukasz-99", "P@ss1", "4242"))
}

func TestRegister_ErrorDoesNotEchoSecrets(t *testing.T) {
	s, _ := setupStore(t)

	err := s.Register(context.Background(), "alice", "hunter2", "12")
	require.ErrorIs(t, err, common.ErrInvalidInput)
	assert.NotContains(t, err.Error(), "hunter2")
	assert.Contains(t, err.Error(), "pin")
}

func TestChangeCredentials(t *testing.T) {
	s, db := setupStore(t)
	ctx := context.Background()
	require.NoError(t, s.Register(ctx, "alice", "P@ss1", "4242"))
	before := storedRecord(t, db, "alice")

	require.NoError(t, s.ChangeCredentials(ctx, "alice", "P@ss1", "4242", "N3w!", "9876"))

	after := storedRecord(t, db, "alice")
	assert.NotEqual(t, before.Salt, after.Salt, "salt must be regenerated")
	assert.Equal(t, before.Version+1, after.Version)
	assert.Equal(t, before.CreatedAt, after.CreatedAt)

	require.NoError(t, s.Verify(ctx, "alice", "N3w!", "9876"))
	require.ErrorIs(t, s.Verify(ctx, "alice", "P@ss1", "4242"), common.ErrInvalidCredentials)
}

func TestChangeCredentials_RequiresOldCredentials(t *testing.T) {
	s, db := setupStore(t)
	ctx := context.Background()
	require.NoError(t, s.Register(ctx, "alice", "P@ss1", "4242"))
	before := storedRecord(t, db, "alice")

	err := s.ChangeCredentials(ctx, "alice", "P@ss1", "0000", "N3w!", "9876")
	require.ErrorIs(t, err, common.ErrInvalidCredentials)
	assert.Equal(t, before, storedRecord(t, db, "alice"))

	err = s.ChangeCredentials(ctx, "bob", "x", "1234", "y", "5678")
	require.ErrorIs(t, err, common.ErrUnknownUser)
}

func TestChangeCredentials_ValidatesNewValues(t *testing.T) {
	s, _ := setupStore(t)
	ctx := context.Background()
	require.NoError(t, s.Register(ctx, "alice", "P@ss1", "4242"))

	err := s.ChangeCredentials(ctx, "alice", "P@ss1", "4242", "N3w!", "1")
	require.ErrorIs(t, err, common.ErrInvalidInput)
	require.NoError(t, s.Verify(ctx, "alice", "P@ss1", "4242"))
}

func TestLookup(t *testing.T) {
	s, _ := setupStore(t)
	ctx := context.Background()

	_, err := s.Lookup(ctx, "alice")
	require.ErrorIs(t, err, common.ErrUnknownUser)

	require.NoError(t, s.Register(ctx, "alice", "P@ss1", "4242"))
	rec, err := s.Lookup(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, "alice", rec.Username)
}

func TestLookup_CorruptRecord(t *testing.T) {
	s, db := setupStore(t)
	ctx := context.Background()
	require.NoError(t, db.Set(ctx, common.CredentialKey("alice"), []byte("{broken")))

	_, err := s.Lookup(ctx, "alice")
	require.Error(t, err)
	assert.NotErrorIs(t, err, common.ErrUnknownUser)
}

func TestRemove_PurgesNamespace(t *testing.T) {
	s, db := setupStore(t)
	ctx := context.Background()
	require.NoError(t, s.Register(ctx, "alice", "P@ss1", "4242"))
	require.NoError(t, s.Register(ctx, "bob", "B0b", "1111"))
	require.NoError(t, db.Set(ctx, common.DataKey("alice", "resume"), []byte("v1")))
	require.NoError(t, db.Set(ctx, common.DataKey("bob", "resume"), []byte("b1")))

	require.ErrorIs(t, s.Remove(ctx, "alice", "P@ss1", "0000"), common.ErrInvalidCredentials)
	require.NoError(t, s.Remove(ctx, "alice", "P@ss1", "4242"))

	require.ErrorIs(t, s.Verify(ctx, "alice", "P@ss1", "4242"), common.ErrUnknownUser)
	keys, err := db.Keys(ctx, common.NamespacePrefix("alice"))
	require.NoError(t, err)
	assert.Empty(t, keys)

	v, err := db.Get(ctx, common.DataKey("bob", "resume"))
	require.NoError(t, err)
	assert.Equal(t, []byte("b1"), v)

	require.NoError(t, s.Register(ctx, "alice", "again", "5555"))
}

func TestStorageUnavailable(t *testing.T) {
	flaky := storagetest.NewFlaky(memory.NewStore())
	hasher := cryptox.NewHasher(cryptox.Params{Time: 1, Memory: 1024, Threads: 1, KeyLen: 32})
	s := NewStore(flaky, hasher, logging.Discard())
	ctx := context.Background()
	require.NoError(t, s.Register(ctx, "alice", "P@ss1", "4242"))

	flaky.SetDown(true)

	require.ErrorIs(t, s.Register(ctx, "bob", "B0b", "1111"), common.ErrStorageUnavailable)
	require.ErrorIs(t, s.Verify(ctx, "alice", "P@ss1", "4242"), common.ErrStorageUnavailable)
	require.ErrorIs(t, s.ChangeCredentials(ctx, "alice", "P@ss1", "4242", "x", "1234"), common.ErrStorageUnavailable)

	flaky.SetDown(false)
	require.NoError(t, s.Verify(ctx, "alice", "P@ss1", "4242"))
}

func TestFingerprint_ChangesWithRecordInstance(t *testing.T) {
	s, _ := setupStore(t)
	ctx := context.Background()

	require.NoError(t, s.Register(ctx, "alice", "P@ss1", "4242"))
	first, err := s.Lookup(ctx, "alice")
	require.NoError(t, err)
	again, err := s.Lookup(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, first.Fingerprint(), again.Fingerprint(), "stable for one record")

	require.NoError(t, s.Remove(ctx, "alice", "P@ss1", "4242"))
	require.NoError(t, s.Register(ctx, "alice", "P@ss1", "4242"))
	reborn, err := s.Lookup(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, first.Version, reborn.Version)
	assert.NotEqual(t, first.Fingerprint(), reborn.Fingerprint())

	require.NoError(t, s.ChangeCredentials(ctx, "alice", "P@ss1", "4242", "N3w!", "9876"))
	changed, err := s.Lookup(ctx, "alice")
	require.NoError(t, err)
	assert.NotEqual(t, reborn.Fingerprint(), changed.Fingerprint())
}
