package store_test

import (
	"context"
	"errors"
	"testing"

	"github.com/aussiebroadwan/bioauth/internal/bioauth/store"
	"github.com/stretchr/testify/require"
)

func TestRetryReadRecovers(t *testing.T) {
	calls := 0
	got, err := store.RetryRead(context.Background(), func(context.Context) (int, error) {
		calls++
		if calls < 3 {
			return 0, errors.New("database is locked")
		}
		return 42, nil
	})

	require.NoError(t, err)
	require.Equal(t, 42, got)
	require.Equal(t, 3, calls)
}

func TestRetryReadGivesUp(t *testing.T) {
	boom := errors.New("connection refused")
	calls := 0
	_, err := store.RetryRead(context.Background(), func(context.Context) (string, error) {
		calls++
		return "", boom
	})

	require.ErrorIs(t, err, boom)
	require.Equal(t, 3, calls)
}

func TestRetryReadDoesNotRetryNotFound(t *testing.T) {
	calls := 0
	_, err := store.RetryRead(context.Background(), func(context.Context) (string, error) {
		calls++
		return "", store.ErrNotFound
	})

	require.ErrorIs(t, err, store.ErrNotFound)
	require.Equal(t, 1, calls)
}
