package middleware

import (
	"context"
	"time"

	"connectrpc.com/connect"

	"github.com/mmynk/studentfees/internal/metrics"
)

// MetricsInterceptor records a count and latency for every RPC, labelled
// with the procedure and the resulting Connect code ("ok" on success).
func MetricsInterceptor(m *metrics.Metrics) connect.UnaryInterceptorFunc {
	return func(next connect.UnaryFunc) connect.UnaryFunc {
		return func(ctx context.Context, req connect.AnyRequest) (connect.AnyResponse, error) {
			start := time.Now()
			resp, err := next(ctx, req)

			code := "ok"
			if err != nil {
				code = connect.CodeOf(err).String()
			}
			m.ObserveRPC(req.Spec().Procedure, code, time.Since(start))

			return resp, err
		}
	}
}
