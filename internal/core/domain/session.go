package domain

import (
	"crypto/rand"
	"strings"
	"time"

	"github.com/oklog/ulid/v2"
)

// SessionIDPrefix is the prefix for session IDs.
const SessionIDPrefix = "rbss-"

// SessionState is the client-visible lifecycle state of a stateful session.
type SessionState int

const (
	// SessionNotCreated is the state before the server created the session.
	SessionNotCreated SessionState = iota
	// SessionActive sessions accept calls.
	SessionActive
	// SessionTerminated sessions were removed or timed out. Terminal.
	SessionTerminated
)

// String returns the state name.
func (s SessionState) String() string {
	switch s {
	case SessionNotCreated:
		return "not_created"
	case SessionActive:
		return "active"
	case SessionTerminated:
		return "terminated"
	default:
		return "unknown"
	}
}

// GenerateSessionID generates a new session ID using ULID.
// Format: rbss-{ulid_lowercase}, 31 characters total.
func GenerateSessionID() (string, error) {
	id, err := newULID()
	if err != nil {
		return "", ErrInternal.WithCause(err)
	}
	return SessionIDPrefix + strings.ToLower(id), nil
}

// GenerateRequestID generates a request correlation ID.
func GenerateRequestID() string {
	id, err := newULID()
	if err != nil {
		return ""
	}
	return strings.ToLower(id)
}

func newULID() (string, error) {
	entropy := ulid.Monotonic(rand.Reader, 0)
	id, err := ulid.New(ulid.Timestamp(time.Now()), entropy)
	if err != nil {
		return "", err
	}
	return id.String(), nil
}

// IsValidSessionID checks if a string is a valid session ID.
func IsValidSessionID(id string) bool {
	id = strings.ToLower(id)
	if !strings.HasPrefix(id, SessionIDPrefix) {
		return false
	}

	// rbss- (5) + ULID (26) = 31 characters
	if len(id) != 31 {
		return false
	}

	_, err := ulid.ParseStrict(strings.ToUpper(id[len(SessionIDPrefix):]))
	return err == nil
}
