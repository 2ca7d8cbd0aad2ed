package proxy

import (
	"context"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"go.uber.org/zap"
)

// loggingMiddleware logs every MCP method call with its session, duration,
// and outcome.
func loggingMiddleware(logger *zap.Logger) mcp.Middleware {
	return func(next mcp.MethodHandler) mcp.MethodHandler {
		return func(ctx context.Context, method string, req mcp.Request) (mcp.Result, error) {
			start := time.Now()
			sessionID := req.GetSession().ID()

			result, err := next(ctx, method, req)

			fields := []zap.Field{
				zap.String("session", sessionID),
				zap.String("method", method),
				zap.Duration("duration", time.Since(start)),
			}
			if err != nil {
				logger.Warn("mcp request failed", append(fields, zap.Error(err))...)
			} else {
				logger.Debug("mcp request handled", fields...)
			}
			return result, err
		}
	}
}
