package config

import (
	"math"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
)

func testConfig(t *testing.T) *Config {
	t.Helper()
	cfg, err := Parse([]byte(`
default:
  bucket-name: shared
  redis-config:
    - {host: def-a}
    - {host: def-b, port: 6380}
  minio-config:
    - {endpoint: "http://minio:9000", access-key: ak, secret-key: sk}
power:
  t1:
    bucket-name: bkt
    redis-config:
      - {host: r1, max-pool-idle: 10, idle-pool-size: 2}
      - {host: r2}
      - {host: r3}
    minio-config:
      - {endpoint: "minio-a:9000", access-key: ak1, secret-key: sk1}
      - {endpoint: "http://minio-b:9000", access-key: ak1, secret-key: sk1, max-pool-idle: 3}
  t2:
    minio-config:
      - {endpoint: "http://minio-c:9000", access-key: ak2, secret-key: sk2}
`))
	require.NoError(t, err)
	return cfg
}

func TestRegistry_ResolveTenant(t *testing.T) {
	t.Parallel()

	reg := NewRegistry(testConfig(t))

	t1, ok := reg.ResolveTenant("t1")
	require.True(t, ok)
	require.Equal(t, "bkt", t1.Bucket)
	require.Len(t, t1.Storage, 2)
	require.Equal(t, DefaultStorageMaxSize, t1.Storage[0].MaxSize)
	require.Equal(t, 3, t1.Storage[1].MaxSize)
	require.Equal(t, DefaultPresignExpiry, t1.Storage[0].PresignExpiry)
	require.Len(t, t1.Sessions, 3)
	require.Equal(t, 10, t1.Sessions[0].MaxSize)
	require.Equal(t, 2, t1.Sessions[0].MinIdle)
	require.Equal(t, DefaultSessionMaxSize, t1.Sessions[1].MaxSize)
	require.False(t, t1.Dynamic)

	def, ok := reg.ResolveTenant(DefaultTenantKey)
	require.True(t, ok, "default section with bucket and storage is a tenant")
	require.Equal(t, "shared", def.Bucket)

	_, ok = reg.ResolveTenant("nope")
	require.False(t, ok)

	keys := make([]string, 0)
	for _, tc := range reg.Tenants() {
		keys = append(keys, tc.Key)
	}
	require.Equal(t, []string{"default", "t1", "t2"}, keys)
}

func TestRegistry_ResolveBucket(t *testing.T) {
	t.Parallel()

	cfg := testConfig(t)
	cfg.Power["empty"] = Tenant{}
	reg := NewRegistry(cfg)

	bucket, err := reg.ResolveBucket("t1")
	require.NoError(t, err)
	require.Equal(t, "bkt", bucket)

	bucket, err = reg.ResolveBucket("t2")
	require.NoError(t, err)
	require.Equal(t, "shared", bucket)

	_, err = reg.ResolveBucket("nope")
	require.ErrorIs(t, err, ErrUnknownTenant)

	_, err = reg.ResolveBucket("empty")
	require.ErrorIs(t, err, ErrNoBucket)

	t.Run("concurrent reads", func(t *testing.T) {
		t.Parallel()

		var wg sync.WaitGroup
		results := make(chan string, 64)
		for range 64 {
			wg.Go(func() {
				b, err := reg.ResolveBucket("t1")
				if err != nil {
					b = err.Error()
				}
				results <- b
			})
		}
		wg.Wait()
		close(results)
		for b := range results {
			require.Equal(t, "bkt", b)
		}
	})
}

func TestRegistry_ChooseSessionEndpoint(t *testing.T) {
	t.Parallel()

	t.Run("uniform over tenant endpoints", func(t *testing.T) {
		t.Parallel()

		reg := NewRegistry(testConfig(t))
		const trials = 1000
		counts := map[string]int{}
		for range trials {
			ep, err := reg.ChooseSessionEndpoint("t1")
			require.NoError(t, err)
			counts[ep.Host]++
		}

		require.Len(t, counts, 3)
		want := float64(trials) / 3
		for host, n := range counts {
			require.LessOrEqual(t, math.Abs(float64(n)-want), want*0.2, "host %s chosen %d times", host, n)
		}
	})

	t.Run("falls back to default list", func(t *testing.T) {
		t.Parallel()

		reg := NewRegistry(testConfig(t), WithRandom(func(n int) int { return n - 1 }))

		ep, err := reg.ChooseSessionEndpoint("t2")
		require.NoError(t, err)
		require.Equal(t, "def-b", ep.Host)
		require.Equal(t, "def-b:6380", ep.Key())

		ep, err = reg.ChooseSessionEndpoint("unknown")
		require.NoError(t, err)
		require.Equal(t, "def-b", ep.Host)
	})

	t.Run("no endpoints at all", func(t *testing.T) {
		t.Parallel()

		reg := NewRegistry(&Config{Power: map[string]Tenant{"t1": {BucketName: "b"}}})
		_, err := reg.ChooseSessionEndpoint("t1")
		require.ErrorIs(t, err, ErrNoSessionEndpoint)
		_, err = reg.DefaultSessionEndpoint()
		require.ErrorIs(t, err, ErrNoSessionEndpoint)
	})
}

func TestRegistry_Remember(t *testing.T) {
	t.Parallel()

	reg := NewRegistry(testConfig(t))

	tc, err := ParseTenantRecord("dyn", `{"configKey":"dyn","accessKey":"a","secretKey":"s","bucketName":"dbkt","endpoint":"http://m:9000"}`)
	require.NoError(t, err)

	require.True(t, reg.Remember(tc))
	require.False(t, reg.Remember(tc), "second insert is ignored")
	require.False(t, reg.Remember(TenantConfig{Key: "t1"}), "static tenants are never replaced")

	got, ok := reg.ResolveTenant("dyn")
	require.True(t, ok)
	require.True(t, got.Dynamic)
	require.Equal(t, DefaultPresignExpiry, got.Storage[0].PresignExpiry)

	bucket, err := reg.ResolveBucket("dyn")
	require.NoError(t, err)
	require.Equal(t, "dbkt", bucket)
}

func TestRegistry_SessionEndpoints(t *testing.T) {
	t.Parallel()

	cfg := testConfig(t)
	cfg.Power["t3"] = Tenant{BucketName: "x", Redis: []RedisEntry{{Host: "def-a"}}}
	reg := NewRegistry(cfg)

	var keys []string
	for _, ep := range reg.SessionEndpoints() {
		keys = append(keys, ep.Key())
	}
	require.Equal(t, []string{"def-a:6379", "def-b:6380", "r1:6379", "r2:6379", "r3:6379"}, keys)
}

func TestParseTenantRecord(t *testing.T) {
	t.Parallel()

	const obj = `{"configKey":"k","accessKey":"a","secretKey":"s","bucketName":"b","endpoint":"http://m:9000"}`

	tests := []struct {
		name    string
		raw     string
		wantErr bool
	}{
		{"plain object", obj, false},
		{"quoted object", `"{\"configKey\":\"k\",\"accessKey\":\"a\",\"secretKey\":\"s\",\"bucketName\":\"b\",\"endpoint\":\"http://m:9000\"}"`, false},
		{"record without key", `{"accessKey":"a","secretKey":"s","bucketName":"b","endpoint":"e"}`, false},
		{"other tenant", `{"configKey":"x","accessKey":"a","secretKey":"s","bucketName":"b","endpoint":"e"}`, true},
		{"missing bucket", `{"accessKey":"a","secretKey":"s","endpoint":"e"}`, true},
		{"missing endpoint", `{"accessKey":"a","secretKey":"s","bucketName":"b"}`, true},
		{"missing secret", `{"accessKey":"a","bucketName":"b","endpoint":"e"}`, true},
		{"not json", `bucket=b`, true},
		{"broken quoted", `"{\"configKey`, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			tc, err := ParseTenantRecord("k", tt.raw)
			if tt.wantErr {
				require.ErrorIs(t, err, ErrMalformedTenant)
				return
			}
			require.NoError(t, err)
			require.Equal(t, "k", tc.Key)
			require.Equal(t, "b", tc.Bucket)
			require.Len(t, tc.Storage, 1)
			require.Equal(t, DefaultStorageMaxSize, tc.Storage[0].MaxSize)
		})
	}
}
