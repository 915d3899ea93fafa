package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"time"

	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"
)

// maxPayloadLog caps the size of a logged request or result body.
const maxPayloadLog = 2048

// trafficLoggingMiddleware logs every JSON-RPC exchange at debug level with
// its direction, method, payload and latency.
func trafficLoggingMiddleware(logger *slog.Logger, direction string) sdkmcp.Middleware {
	return func(next sdkmcp.MethodHandler) sdkmcp.MethodHandler {
		return func(ctx context.Context, method string, req sdkmcp.Request) (sdkmcp.Result, error) {
			if logger == nil || !logger.Enabled(ctx, slog.LevelDebug) {
				return next(ctx, method, req)
			}

			log := logger.With("direction", direction, "method", method)
			if name := toolName(req); name != "" {
				log = log.With("tool", name)
			}
			log.Debug("mcp traffic", "stage", "request", "params", formatPayload(safeParams(req)))

			start := time.Now()
			result, err := next(ctx, method, req)
			if strings.HasPrefix(method, "notifications/") {
				return result, err
			}

			attrs := []any{"stage", "response", "elapsed", time.Since(start), "result", formatPayload(result)}
			if err != nil {
				attrs = append(attrs, "error", err)
			}
			log.Debug("mcp traffic", attrs...)

			return result, err
		}
	}
}

func toolName(req sdkmcp.Request) string {
	params, ok := safeParams(req).(*sdkmcp.CallToolParamsRaw)
	if !ok || params == nil {
		return ""
	}
	return params.Name
}

func safeParams(req sdkmcp.Request) any {
	if req == nil {
		return nil
	}
	defer func() { recover() }()
	return req.GetParams()
}

func formatPayload(payload any) string {
	if payload == nil {
		return "<nil>"
	}
	data, err := json.Marshal(payload)
	if err != nil {
		return fmt.Sprintf("%T", payload)
	}
	if len(data) > maxPayloadLog {
		return fmt.Sprintf("%s...(%d bytes)", data[:maxPayloadLog], len(data))
	}
	return string(data)
}
