package middleware

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"connectrpc.com/connect"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mmynk/studentfees/internal/metrics"
)

type ping struct{}

// echoID is a terminal handler that returns the request ID it was called with.
func echoID(seen *string) connect.UnaryFunc {
	return func(ctx context.Context, req connect.AnyRequest) (connect.AnyResponse, error) {
		*seen = GetRequestID(ctx)
		return connect.NewResponse(&ping{}), nil
	}
}

func TestRequestID(t *testing.T) {
	t.Run("generates an ID when none is sent", func(t *testing.T) {
		var seen string
		handler := RequestID()(echoID(&seen))

		resp, err := handler(context.Background(), connect.NewRequest(&ping{}))
		require.NoError(t, err)

		assert.Len(t, seen, 36, "expected a UUID, got %q", seen)
		assert.Equal(t, seen, resp.Header().Get(RequestIDHeader))
	})

	t.Run("keeps a caller-supplied ID", func(t *testing.T) {
		var seen string
		handler := RequestID()(echoID(&seen))

		req := connect.NewRequest(&ping{})
		req.Header().Set(RequestIDHeader, "abc-123")
		resp, err := handler(context.Background(), req)
		require.NoError(t, err)

		assert.Equal(t, "abc-123", seen)
		assert.Equal(t, "abc-123", resp.Header().Get(RequestIDHeader))
	})

	t.Run("attaches the ID to errors", func(t *testing.T) {
		failing := func(ctx context.Context, req connect.AnyRequest) (connect.AnyResponse, error) {
			return nil, connect.NewError(connect.CodeNotFound, errors.New("missing"))
		}
		req := connect.NewRequest(&ping{})
		req.Header().Set(RequestIDHeader, "err-1")

		_, err := RequestID()(failing)(context.Background(), req)

		var connectErr *connect.Error
		require.ErrorAs(t, err, &connectErr)
		assert.Equal(t, "err-1", connectErr.Meta().Get(RequestIDHeader))
	})
}

// jsonCodec lets the test handler carry plain structs.
type jsonCodec struct{}

func (jsonCodec) Name() string { return "json" }

func (jsonCodec) Marshal(msg any) ([]byte, error) { return json.Marshal(msg) }

func (jsonCodec) Unmarshal(data []byte, msg any) error {
	if len(data) == 0 {
		return nil
	}
	return json.Unmarshal(data, msg)
}

const pingProcedure = "/test.v1.PingService/Ping"

// servePing mounts a real unary handler behind RequestID and returns a client for it.
func servePing(t *testing.T, fn func(context.Context, *connect.Request[ping]) (*connect.Response[ping], error)) *connect.Client[ping, ping] {
	t.Helper()

	mux := http.NewServeMux()
	mux.Handle(pingProcedure, connect.NewUnaryHandler(
		pingProcedure,
		fn,
		connect.WithInterceptors(RequestID()),
		connect.WithCodec(jsonCodec{}),
	))
	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)

	return connect.NewClient[ping, ping](http.DefaultClient, server.URL+pingProcedure, connect.WithCodec(jsonCodec{}))
}

func TestRequestID_HandlerChain(t *testing.T) {
	t.Run("error from a typed handler", func(t *testing.T) {
		client := servePing(t, func(ctx context.Context, req *connect.Request[ping]) (*connect.Response[ping], error) {
			return nil, connect.NewError(connect.CodeNotFound, errors.New("missing"))
		})

		req := connect.NewRequest(&ping{})
		req.Header().Set(RequestIDHeader, "err-2")
		_, err := client.CallUnary(context.Background(), req)

		var connectErr *connect.Error
		require.ErrorAs(t, err, &connectErr)
		assert.Equal(t, connect.CodeNotFound, connectErr.Code())
		assert.Equal(t, "err-2", connectErr.Meta().Get(RequestIDHeader))
	})

	t.Run("success from a typed handler", func(t *testing.T) {
		client := servePing(t, func(ctx context.Context, req *connect.Request[ping]) (*connect.Response[ping], error) {
			return connect.NewResponse(&ping{}), nil
		})

		resp, err := client.CallUnary(context.Background(), connect.NewRequest(&ping{}))
		require.NoError(t, err)
		assert.Len(t, resp.Header().Get(RequestIDHeader), 36)
	})
}

func TestGetRequestID_Empty(t *testing.T) {
	assert.Empty(t, GetRequestID(context.Background()))
}

func TestLoggingInterceptor_PassesThrough(t *testing.T) {
	want := errors.New("boom")
	failing := func(ctx context.Context, req connect.AnyRequest) (connect.AnyResponse, error) {
		return nil, want
	}

	_, err := LoggingInterceptor()(failing)(context.Background(), connect.NewRequest(&ping{}))
	assert.ErrorIs(t, err, want)
}

func TestMetricsInterceptor(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := metrics.New(reg)

	ok := func(ctx context.Context, req connect.AnyRequest) (connect.AnyResponse, error) {
		return connect.NewResponse(&ping{}), nil
	}
	notFound := func(ctx context.Context, req connect.AnyRequest) (connect.AnyResponse, error) {
		return nil, connect.NewError(connect.CodeNotFound, errors.New("missing"))
	}

	_, err := MetricsInterceptor(m)(ok)(context.Background(), connect.NewRequest(&ping{}))
	require.NoError(t, err)
	_, err = MetricsInterceptor(m)(notFound)(context.Background(), connect.NewRequest(&ping{}))
	require.Error(t, err)

	// One series per code.
	count, err := testutil.GatherAndCount(reg, "studentfees_rpc_requests_total")
	require.NoError(t, err)
	assert.Equal(t, 2, count)
}

func TestMetricsInterceptor_NilMetrics(t *testing.T) {
	ok := func(ctx context.Context, req connect.AnyRequest) (connect.AnyResponse, error) {
		return connect.NewResponse(&ping{}), nil
	}

	_, err := MetricsInterceptor(nil)(ok)(context.Background(), connect.NewRequest(&ping{}))
	assert.NoError(t, err)
}
