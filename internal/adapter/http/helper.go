package http

import (
	"net/http"
	"strings"

	"ibb-guide/internal/adapter/middleware"
	"ibb-guide/internal/domain/audit"
	"ibb-guide/internal/domain/workflow"

	"github.com/go-faster/errors"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

// actorID prefers the id validated by the idempotency middleware and falls
// back to the raw header on read-only routes.
func actorID(c echo.Context) string {
	if v, ok := c.Get(middleware.ActorKey).(string); ok && v != "" {
		return v
	}
	return strings.TrimSpace(c.Request().Header.Get(middleware.HeaderAccountID))
}

func originOf(c echo.Context) audit.Origin { return audit.OriginFromRequest(c.Request()) }

// bindValid decodes and validates the body. It writes the error response
// itself and reports false when the handler should stop.
func bindValid(c echo.Context, req any) (bool, error) {
	if err := c.Bind(req); err != nil {
		return false, c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid body"})
	}
	if err := c.Validate(req); err != nil {
		return false, c.JSON(http.StatusUnprocessableEntity, ErrorResponse{
			Error:   "validation failed",
			Details: ToFieldErrors(err),
		})
	}
	return true, nil
}

func requireActor(c echo.Context) (string, bool, error) {
	actor := actorID(c)
	if actor == "" {
		return "", false, c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "missing " + middleware.HeaderAccountID})
	}
	return actor, true, nil
}

// writeResult maps a usecase outcome onto HTTP: forbidden → 403, lost race
// → 409, other business failures → 422, infrastructure errors → 500.
func writeResult(c echo.Context, log *zap.Logger, res *workflow.Result, err error) error {
	switch {
	case errors.Is(err, workflow.ErrForbidden):
		return c.JSON(http.StatusForbidden, ErrorResponse{Error: err.Error()})
	case err != nil:
		log.Error("request failed", zap.String("path", c.Path()), zap.Error(err))
		return c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "internal error"})
	case !res.Success && res.Message == workflow.MsgNotPending:
		return c.JSON(http.StatusConflict, res)
	case !res.Success:
		return c.JSON(http.StatusUnprocessableEntity, res)
	}
	return c.JSON(http.StatusOK, res)
}

func writeList(c echo.Context, log *zap.Logger, items any, err error) error {
	if err != nil {
		log.Error("list failed", zap.String("path", c.Path()), zap.Error(err))
		return c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "internal error"})
	}
	return c.JSON(http.StatusOK, map[string]any{"items": items})
}

func statusParam(c echo.Context, def workflow.Status) (workflow.Status, error) {
	raw := c.QueryParam("status")
	if raw == "" {
		return def, nil
	}
	return workflow.ParseStatus(raw)
}
