package simulator

import (
	"context"
	"math/rand"
	"net/http/httptest"
	"testing"
	"time"

	"memories/internal/auth"
	"memories/internal/config"
	"memories/internal/database"
	"memories/internal/handlers"
	"memories/internal/utils"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newBackend(t *testing.T) *httptest.Server {
	t.Helper()

	store, err := database.NewBadgerDB("")
	require.NoError(t, err)
	t.Cleanup(func() { store.Close(context.Background()) })

	cfg := &config.Config{
		Server:         config.DefaultConfig(),
		Database:       &config.DatabaseConfig{Type: config.DatabaseBadger},
		Auth:           config.DefaultAuthConfig(),
		AllowedOrigins: []string{"*"},
	}
	tokens, err := auth.NewTokenManager("simulator-secret", time.Hour)
	require.NoError(t, err)

	srv := httptest.NewServer(handlers.NewRouter(
		handlers.NewServer(cfg, store, tokens, nil, nil, utils.NewMetricsCollector()),
	))
	t.Cleanup(srv.Close)
	return srv
}

func TestSimulationKeepsLikesConsistent(t *testing.T) {
	srv := newBackend(t)

	cfg := DefaultSimConfig()
	cfg.NumUsers = 6
	cfg.PostsPerUser = 1
	cfg.LikeRounds = 10
	cfg.NumWorkers = 3
	cfg.EngineURL = srv.URL

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	sim := NewSimulator(cfg)
	report, err := sim.Run(ctx)
	require.NoError(t, err)

	assert.Equal(t, 6, report.PostsChecked)
	assert.True(t, report.Consistent(), "mismatches: %+v", report.Mismatches)

	metrics := sim.GetMetrics()
	assert.Equal(t, 6, metrics.TotalUsers)
	assert.Equal(t, 60, metrics.TotalToggles)
	assert.Zero(t, metrics.ErrorCount)
}

func TestZipfIndexStaysInRange(t *testing.T) {
	sim := NewSimulator(DefaultSimConfig())
	rng := rand.New(rand.NewSource(1))
	for i := 0; i < 1000; i++ {
		idx := sim.zipfIndex(rng, 5)
		assert.GreaterOrEqual(t, idx, 0)
		assert.Less(t, idx, 5)
	}
	assert.Equal(t, 0, sim.zipfIndex(rng, 1))
}
