// Package credentials persists and verifies per-user credentials.
//
// Each username owns one Record under common.CredentialKey(username). The
// record carries a random salt and two digests, one of the password and one of
// the PIN, both computed with the same salt. Verification requires both
// factors and always evaluates both comparisons in constant time.
//
// Records are created only by Register and rewritten only by
// ChangeCredentials, which regenerates the salt and bumps Version. Sessions
// capture Version at login, so a credential change invalidates every session
// issued before it.
package credentials
