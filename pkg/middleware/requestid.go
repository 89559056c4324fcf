package middleware

import (
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/Ramsey-B/bramble/pkg/context"
)

// RunIDHeader lets a caller read from a specific run instead of the latest one
const RunIDHeader = "X-Run-Id"

// RequestContext stores the request ID, route and optional run ID on the request context
// and echoes the request ID back in the response.
func RequestContext() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			req := c.Request()
			id := req.Header.Get(echo.HeaderXRequestID)
			if id == "" {
				id = uuid.New().String()
			}
			c.Response().Header().Set(echo.HeaderXRequestID, id)

			ctx := context.SetRequestID(req.Context(), id)
			ctx = context.SetRoute(ctx, c.Path())
			if runID := req.Header.Get(RunIDHeader); runID != "" {
				ctx = context.SetRunID(ctx, runID)
			}
			c.SetRequest(req.WithContext(ctx))
			return next(c)
		}
	}
}
