//go:build integration

package storage_test

import (
	"context"
	"io"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/objgate/pkg/pool"
	"github.com/dmitrymomot/objgate/pkg/storage"
)

// Integration test configuration for a local S3-compatible server.
// Start the test infrastructure with: docker-compose up -d
const (
	testEndpoint  = "http://localhost:9000"
	testAccessKey = "admin"
	testSecretKey = "admin123"
	testBucket    = "uploads"
)

func newTestClient(t *testing.T) *storage.Client {
	t.Helper()

	c, err := storage.New(storage.Config{
		Endpoint:  testEndpoint,
		AccessKey: testAccessKey,
		SecretKey: testSecretKey,
	})
	require.NoError(t, err, "failed to create storage client")
	return c
}

func TestS3Integration_Ping(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	require.NoError(t, newTestClient(t).Ping(ctx))
}

func TestS3Integration_PresignedDownload(t *testing.T) {
	t.Parallel()

	c := newTestClient(t)
	ctx := context.Background()

	t.Run("missing object answers 404", func(t *testing.T) {
		t.Parallel()

		link, err := c.PresignGet(ctx, testBucket, "does-not-exist.bin")
		require.NoError(t, err)

		resp, err := http.Get(link)
		require.NoError(t, err)
		defer resp.Body.Close()
		_, _ = io.Copy(io.Discard, resp.Body)
		require.Equal(t, http.StatusNotFound, resp.StatusCode)
	})

	t.Run("expired link is rejected", func(t *testing.T) {
		t.Parallel()

		link, err := c.PresignGet(ctx, testBucket, "any.bin", storage.WithExpiry(time.Second))
		require.NoError(t, err)
		time.Sleep(2 * time.Second)

		resp, err := http.Get(link)
		require.NoError(t, err)
		defer resp.Body.Close()
		require.Equal(t, http.StatusForbidden, resp.StatusCode)
	})
}

func TestS3Integration_PooledProbe(t *testing.T) {
	t.Parallel()

	m, err := storage.NewManager(storage.Config{
		Endpoint:  testEndpoint,
		AccessKey: testAccessKey,
		SecretKey: testSecretKey,
	})
	require.NoError(t, err)

	p, err := pool.New(context.Background(), m, pool.WithMinIdle(1))
	require.NoError(t, err)

	reg := pool.NewRegistry(pool.RegistryConfig{Name: "storage"}, storage.Probe)
	reg.Insert("default", pool.NewInstance(m.Endpoint(), p))
	t.Cleanup(func() { _ = reg.Close() })

	reg.CheckHealth(context.Background())
	require.True(t, reg.Healthy("default"))
}
