package credentials

import (
	"crypto/sha256"
	"encoding/hex"
	"time"
)

// Record is the persisted Credential Record of one user.
type Record struct {
	Username     string    `json:"username"`
	Salt         string    `json:"salt"`
	PasswordHash string    `json:"passwordHash"`
	PinHash      string    `json:"pinHash"`
	Version      int64     `json:"version"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

// Fingerprint identifies this exact record instance. The salt is fresh on
// every registration and credential change, so a record that was removed
// and registered again never shares a fingerprint with its predecessor.
func (r *Record) Fingerprint() string {
	sum := sha256.Sum256([]byte(r.Salt))
	return hex.EncodeToString(sum[:16])
}
