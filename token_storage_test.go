package main

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestInMemoryTokenStorageRoundTrip(t *testing.T) {
	storage := NewInMemoryTokenStorage()

	require.NoError(t, storage.StoreToken("session-1", "nonce-1"))

	nonce, err := storage.RetrieveToken("session-1")
	require.NoError(t, err)
	require.Equal(t, "nonce-1", nonce)

	require.NoError(t, storage.RemoveToken("session-1"))

	_, err = storage.RetrieveToken("session-1")
	require.Error(t, err)
}

func TestInMemoryTokenStorageOverwrites(t *testing.T) {
	storage := NewInMemoryTokenStorage()

	require.NoError(t, storage.StoreToken("session-1", "nonce-1"))
	require.NoError(t, storage.StoreToken("session-1", "nonce-2"))

	nonce, err := storage.RetrieveToken("session-1")
	require.NoError(t, err)
	require.Equal(t, "nonce-2", nonce)
}

func TestInMemoryTokenStorageRemoveMissing(t *testing.T) {
	storage := NewInMemoryTokenStorage()
	require.Error(t, storage.RemoveToken("never-stored"))
}
