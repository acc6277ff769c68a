// Package handler contains the echo HTTP handlers. Response shapes and
// error messages follow the dashboard's API contract: stable `{error}`
// bodies, with diagnostic detail fields included outside production only.
package handler

import (
	"errors"
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/squadup/event-reporting/internal/config"
	"github.com/squadup/event-reporting/internal/logger"
	"github.com/squadup/event-reporting/internal/repository"
)

var validate = validator.New()

type errResp struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
	Hint    string `json:"hint,omitempty"`
}

// detailOf returns the raw error text for response detail fields, empty in
// production where only the generic message goes out.
func detailOf(cfg config.Config, err error) string {
	if cfg.IsProd() || err == nil {
		return ""
	}
	return err.Error()
}

// dbError maps repository errors common to every endpoint: connection
// failures and warehouse permission problems. Endpoint-specific statuses
// (not found, conflict, validation) are handled by the callers with their
// own messages; anything else lands on the fallback 500.
func dbError(c echo.Context, cfg config.Config, err error, fallback string) error {
	logger.L.Error(fallback, zap.Error(err))

	switch {
	case errors.Is(err, repository.ErrConnection):
		return c.JSON(http.StatusServiceUnavailable, errResp{
			Error:   "Database connection failed. Please check your credentials and try again.",
			Details: detailOf(cfg, err),
		})
	case errors.Is(err, repository.ErrPermission):
		return c.JSON(http.StatusForbidden, errResp{
			Error:   "Permission denied for the requested table. The warehouse cluster may require different table names.",
			Details: detailOf(cfg, err),
			Hint:    "Try using table names with '_fdw' suffix (e.g., payments_fdw instead of payments)",
		})
	}
	return c.JSON(http.StatusInternalServerError, errResp{
		Error:   fallback,
		Details: detailOf(cfg, err),
	})
}

func badRequest(c echo.Context, msg string) error {
	return c.JSON(http.StatusBadRequest, errResp{Error: msg})
}
