package rpcutil

import (
	"context"
	"errors"
	"time"

	"connectrpc.com/connect"
	"github.com/rs/zerolog/log"
)

// NewLoggingInterceptor logs every unary call with its outcome.
func NewLoggingInterceptor() connect.UnaryInterceptorFunc {
	return func(next connect.UnaryFunc) connect.UnaryFunc {
		return func(ctx context.Context, req connect.AnyRequest) (connect.AnyResponse, error) {
			start := time.Now()
			resp, err := next(ctx, req)

			evt := log.Debug()
			code := "ok"
			if err != nil {
				code = connect.CodeOf(err).String()
				var ce *connect.Error
				if errors.As(err, &ce) {
					if engine := ce.Meta().Get(ErrorCodeHeader); engine != "" {
						code = engine
					}
				}
				if connect.CodeOf(err) == connect.CodeInternal {
					evt = log.Error().Err(err)
				}
			}
			evt.Str("procedure", req.Spec().Procedure).
				Str("code", code).
				Dur("elapsed", time.Since(start)).
				Msg("rpc")
			return resp, err
		}
	}
}
