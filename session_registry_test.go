package main

import (
	"testing"
	"time"

	"go-identity-verifier/document"
	"go-identity-verifier/verification"

	"github.com/stretchr/testify/require"
)

func newTestSession(id string) *verification.Session {
	return verification.NewSession(id, verification.ClaimedIdentity{
		Name:           "Suresh Kumar",
		DocumentNumber: "123456789012",
		DocumentType:   document.Aadhaar,
	})
}

func TestSessionRegistryPutGet(t *testing.T) {
	registry := NewSessionRegistry(time.Minute)

	sess := newTestSession("session-1")
	registry.Put(sess)

	got, ok := registry.Get("session-1")
	require.True(t, ok)
	require.Same(t, sess, got)
}

func TestSessionRegistryGetMissing(t *testing.T) {
	registry := NewSessionRegistry(time.Minute)

	_, ok := registry.Get("nope")
	require.False(t, ok)
}

func TestSessionRegistryRemove(t *testing.T) {
	registry := NewSessionRegistry(time.Minute)

	registry.Put(newTestSession("session-1"))
	registry.Remove("session-1")

	_, ok := registry.Get("session-1")
	require.False(t, ok)
}

func TestSessionRegistryExpires(t *testing.T) {
	registry := NewSessionRegistry(20 * time.Millisecond)

	registry.Put(newTestSession("session-1"))
	time.Sleep(50 * time.Millisecond)

	_, ok := registry.Get("session-1")
	require.False(t, ok)
}
