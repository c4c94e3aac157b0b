package main

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fastygo/storefront/domain"
	"github.com/fastygo/storefront/repository/bolt"
)

func TestExecute_FailedCommandReleasesStorage(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state.db")
	t.Setenv("STORAGE_DRIVER", "bolt")
	t.Setenv("BOLTDB_PATH", path)
	t.Setenv("API_BASE_URL", "http://127.0.0.1:1/api")
	t.Setenv("LOG_LEVEL", "error")

	err := execute(context.Background(), []string{"cart", "add", "1", "--quantity", "0"})
	require.Error(t, err)
	assert.Equal(t, domain.Message(domain.ErrInvalidQuantity), err.Error())
	assert.Nil(t, app)

	store, err := bolt.Open(path, "")
	require.NoError(t, err)
	require.NoError(t, store.Close())
}
