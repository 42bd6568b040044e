package store

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNotFoundErrorFamily(t *testing.T) {
	t.Parallel()

	// Entity-specific errors are all members of the ErrNotFound family.
	assert.ErrorIs(t, ErrCacheEntryNotFound, ErrNotFound)
	assert.ErrorIs(t, ErrJobNotFound, ErrNotFound)
	assert.ErrorIs(t, ErrDebtNotFound, ErrNotFound)

	assert.True(t, IsNotFoundError(ErrDebtNotFound))
	assert.True(t, IsNotFoundError(fmt.Errorf("lookup failed: %w", ErrCacheEntryNotFound)))
	assert.False(t, IsNotFoundError(ErrNoJobAvailable))
	assert.False(t, IsNotFoundError(errors.New("other")))
}

func TestIsStorageUnavailable(t *testing.T) {
	t.Parallel()

	assert.True(t, IsStorageUnavailable(ErrStorageUnavailable))
	assert.True(t, IsStorageUnavailable(fmt.Errorf("ping failed: %w", ErrStorageUnavailable)))
	assert.False(t, IsStorageUnavailable(ErrNotFound))
}
