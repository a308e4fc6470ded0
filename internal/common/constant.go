package common

// Key prefixes of the flat key space. Persistent keys live under
// CredentialsPrefix and DataPrefix, the ephemeral session under SessionKey.
const (
	CredentialsPrefix = "credentials:"
	DataPrefix        = "data:"
	SessionKey        = "session:active"
)

// KeySeparator joins the namespace parts of a key. Usernames may not contain it.
const KeySeparator = ":"

// CredentialKey returns the persistent key of a user's Credential Record.
func CredentialKey(username string) string {
	return CredentialsPrefix + username
}

// NamespacePrefix returns the prefix under which all entities of username live.
func NamespacePrefix(username string) string {
	return DataPrefix + username + KeySeparator
}

// DataKey returns the physical key of entityKey in username's namespace.
func DataKey(username, entityKey string) string {
	return NamespacePrefix(username) + entityKey
}
