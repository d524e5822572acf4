package main

import (
	"context"
	"errors"
	"net"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mmynk/studentfees/internal/config"
	"github.com/mmynk/studentfees/internal/storage"
)

// pingStore is a storage.Store whose only working method is Ping.
type pingStore struct {
	storage.Store
	err error
}

func (p pingStore) Ping(ctx context.Context) error { return p.err }

func TestHealthHandler(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"healthy", nil, http.StatusOK},
		{"store down", errors.New("connection refused"), http.StatusServiceUnavailable},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			healthHandler(pingStore{err: tt.err})(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
			assert.Equal(t, tt.want, rec.Code)
		})
	}
}

func TestCORSPreflight(t *testing.T) {
	called := false
	handler := corsMiddleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
	}))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodOptions, "/studentfees.v1.FeeService/ProcessPayment", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.False(t, called, "preflight must not reach the API")
	assert.Contains(t, rec.Header().Get("Access-Control-Allow-Headers"), "X-Request-Id")
}

func testConfig(t *testing.T, port int) *config.Config {
	t.Helper()
	return &config.Config{
		DBDriver: config.DriverSQLite,
		DBPath:   filepath.Join(t.TempDir(), "server.db"),
		Port:     port,
		LogLevel: "error",
	}
}

func TestServe_ReturnsListenError(t *testing.T) {
	busy, err := net.Listen("tcp", ":0")
	require.NoError(t, err)
	t.Cleanup(func() { busy.Close() })

	err = serve(context.Background(), testConfig(t, busy.Addr().(*net.TCPAddr).Port))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "listen on")
}

func TestServe_StopsOnCancel(t *testing.T) {
	l, err := net.Listen("tcp", ":0")
	require.NoError(t, err)
	port := l.Addr().(*net.TCPAddr).Port
	require.NoError(t, l.Close())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	assert.NoError(t, serve(ctx, testConfig(t, port)))
}

func TestServe_ReturnsInitError(t *testing.T) {
	cfg := testConfig(t, 8080)
	cfg.DBDriver = "mysql"

	err := serve(context.Background(), cfg)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to initialize app")
}
