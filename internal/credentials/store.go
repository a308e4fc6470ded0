package credentials

import (
	"context"
	"crypto/subtle"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/dmitrijs2005/gophdesk/internal/common"
	"github.com/dmitrijs2005/gophdesk/internal/cryptox"
	"github.com/dmitrijs2005/gophdesk/internal/logging"
	"github.com/dmitrijs2005/gophdesk/internal/storage"
	"github.com/go-playground/validator/v10"
)

// Hasher is the salted one-way transform applied to passwords and PINs.
// *cryptox.Hasher satisfies it.
type Hasher interface {
	Hash(material, salt string) string
}

// Store is the CredentialStore. It is safe for concurrent use as long as the
// underlying storage.Store is.
type Store struct {
	db        storage.Store
	hasher    Hasher
	logger    logging.Logger
	validator *validator.Validate
	newSalt   func() string
	now       func() time.Time
}

// NewStore returns a Store persisting records in db.
func NewStore(db storage.Store, hasher Hasher, logger logging.Logger) *Store {
	return &Store{
		db:        db,
		hasher:    hasher,
		logger:    logger.With("component", "credentials"),
		validator: newValidator(),
		newSalt:   cryptox.NewSalt,
		now:       time.Now,
	}
}

// Register creates the Credential Record of username. It fails with
// common.ErrDuplicateUsername if one already exists, leaving it untouched.
func (s *Store) Register(ctx context.Context, username, password, pin string) error {
	if err := s.validate(input{Username: username, Password: password, PIN: pin}); err != nil {
		return err
	}

	now := s.now().UTC()
	rec := s.seal(username, password, pin)
	rec.Version = 1
	rec.CreatedAt = now
	rec.UpdatedAt = now

	data, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("encode credential record: %w", err)
	}

	if err := s.db.Create(ctx, common.CredentialKey(username), data); err != nil {
		if errors.Is(err, common.ErrorAlreadyExists) {
			return common.ErrDuplicateUsername
		}
		return fmt.Errorf("register %s: %w", username, err)
	}

	s.logger.Info(ctx, "user registered", "username", username)
	return nil
}

// Verify checks both factors of username. It returns common.ErrUnknownUser
// when no record exists and common.ErrInvalidCredentials when the password,
// the PIN, or both are wrong.
func (s *Store) Verify(ctx context.Context, username, password, pin string) error {
	_, err := s.Authenticate(ctx, username, password, pin)
	return err
}

// Authenticate is Verify returning the verified record.
func (s *Store) Authenticate(ctx context.Context, username, password, pin string) (*Record, error) {
	rec, err := s.Lookup(ctx, username)
	if err != nil {
		return nil, err
	}

	pwOK := subtle.ConstantTimeCompare([]byte(s.hasher.Hash(password, rec.Salt)), []byte(rec.PasswordHash))
	pinOK := subtle.ConstantTimeCompare([]byte(s.hasher.Hash(pin, rec.Salt)), []byte(rec.PinHash))

	if pwOK&pinOK != 1 {
		s.logger.Warn(ctx, "credential verification failed", "username", username)
		return nil, common.ErrInvalidCredentials
	}
	return rec, nil
}

// Lookup returns the stored record of username, or common.ErrUnknownUser.
func (s *Store) Lookup(ctx context.Context, username string) (*Record, error) {
	data, err := s.db.Get(ctx, common.CredentialKey(username))
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, common.ErrUnknownUser
		}
		return nil, fmt.Errorf("lookup %s: %w", username, err)
	}

	var rec Record
	if err := json.Unmarshal(data, &rec); err != nil {
		return nil, fmt.Errorf("decode credential record of %s: %w", username, err)
	}
	return &rec, nil
}

// ChangeCredentials replaces the password and PIN of username after
// verifying the old ones. The salt is regenerated and Version incremented,
// which invalidates every session issued before the change.
func (s *Store) ChangeCredentials(ctx context.Context, username, oldPassword, oldPin, newPassword, newPin string) error {
	old, err := s.Authenticate(ctx, username, oldPassword, oldPin)
	if err != nil {
		return err
	}
	if err := s.validate(input{Username: username, Password: newPassword, PIN: newPin}); err != nil {
		return err
	}

	rec := s.seal(username, newPassword, newPin)
	rec.Version = old.Version + 1
	rec.CreatedAt = old.CreatedAt
	rec.UpdatedAt = s.now().UTC()

	data, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("encode credential record: %w", err)
	}
	if err := s.db.Set(ctx, common.CredentialKey(username), data); err != nil {
		return fmt.Errorf("change credentials of %s: %w", username, err)
	}

	s.logger.Info(ctx, "credentials changed", "username", username, "version", rec.Version)
	return nil
}

// Remove deletes the account of username after verifying it: the Credential
// Record and every entity in the user's namespace go in one atomic batch, so
// a later registration of the same name starts empty.
func (s *Store) Remove(ctx context.Context, username, password, pin string) error {
	if _, err := s.Authenticate(ctx, username, password, pin); err != nil {
		return err
	}

	err := s.db.Batch(ctx,
		storage.DeletePrefixOp(common.NamespacePrefix(username)),
		storage.DeleteOp(common.CredentialKey(username)),
	)
	if err != nil {
		return fmt.Errorf("remove %s: %w", username, err)
	}

	s.logger.Info(ctx, "user removed", "username", username)
	return nil
}

// seal builds a record with a fresh salt and digests of password and pin.
func (s *Store) seal(username, password, pin string) *Record {
	salt := s.newSalt()
	return &Record{
		Username:     username,
		Salt:         salt,
		PasswordHash: s.hasher.Hash(password, salt),
		PinHash:      s.hasher.Hash(pin, salt),
	}
}

// Ping reports whether the medium holding the records is reachable.
func (s *Store) Ping(ctx context.Context) error {
	return s.db.Ping(ctx)
}
