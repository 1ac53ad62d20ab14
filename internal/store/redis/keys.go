package redis

import "fmt"

const (
	// KeyPrefixSession is the prefix for session credential keys
	KeyPrefixSession = "snooze:session:"
)

// SessionKey returns the Redis key for a session id
func SessionKey(id string) string {
	return KeyPrefixSession + id
}

// ExtractSessionID extracts the session id from a Redis key
func ExtractSessionID(key string) (string, error) {
	if len(key) <= len(KeyPrefixSession) || key[:len(KeyPrefixSession)] != KeyPrefixSession {
		return "", fmt.Errorf("invalid session key: %s", key)
	}
	return key[len(KeyPrefixSession):], nil
}
