package bootstrap

import (
	"context"
	"testing"
	"time"

	"github.com/Domenick1991/flightdata/config"
	"github.com/Domenick1991/flightdata/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestOpenStore_SQLiteMemory(t *testing.T) {
	cfg := &config.Config{
		Store:    config.StoreConfig{Backend: config.BackendGorm},
		Database: config.DatabaseConfig{Driver: config.DriverSQLite, Path: ":memory:"},
	}
	store, err := OpenStore(context.Background(), cfg, zap.NewNop())
	require.NoError(t, err)
	t.Cleanup(store.Close)

	ctx := context.Background()
	for i := 0; i < 3; i++ {
		_, err := store.Repository.Save(ctx, domain.Flight{
			Origin:      "London",
			Destination: "Oslo",
			ScheduledAt: time.Date(2022, 1, 1, 8, 0, 0, 0, time.UTC),
		})
		require.NoError(t, err)
	}

	n, err := store.Repository.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(3), n)
	assert.NoError(t, store.Ping(ctx))
}

func TestOpenStore_UnknownBackend(t *testing.T) {
	_, err := OpenStore(context.Background(), &config.Config{Store: config.StoreConfig{Backend: "mongo"}}, zap.NewNop())
	assert.Error(t, err)
}
