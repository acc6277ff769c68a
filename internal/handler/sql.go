package handler

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/squadup/event-reporting/internal/config"
	"github.com/squadup/event-reporting/internal/logger"
	"github.com/squadup/event-reporting/internal/repository"
	"github.com/squadup/event-reporting/internal/sqlguard"
)

// SQLHandler serves the ad-hoc SQL console: sanitize, rewrite for the FDW
// convention, execute against the read-only warehouse.
type SQLHandler struct {
	Cfg       config.Config
	Warehouse *repository.Warehouse
}

func NewSQLHandler(cfg config.Config, w *repository.Warehouse) *SQLHandler {
	return &SQLHandler{Cfg: cfg, Warehouse: w}
}

type sqlReq struct {
	SQLQuery string `json:"sqlQuery"`
}

type sqlMetadata struct {
	Source        string `json:"source"`
	RowCount      int    `json:"rowCount"`
	ExecutionTime string `json:"executionTime"`
	Query         string `json:"query"`
	OriginalQuery string `json:"originalQuery,omitempty"`
	QueryModified bool   `json:"queryModified"`
	Modification  string `json:"modification,omitempty"`
}

// Execute runs a sanitized SELECT and returns rows plus metadata about any
// rewriting applied. Rejections from the sanitizer are 400s with the
// sanitizer's own message.
func (h *SQLHandler) Execute(c echo.Context) error {
	var req sqlReq
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "Invalid request body")
	}

	prep, err := sqlguard.Prepare(req.SQLQuery)
	if err != nil {
		if errors.Is(err, sqlguard.ErrEmptyQuery) {
			return badRequest(c, "SQL query is required")
		}
		return badRequest(c, err.Error())
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 60*time.Second)
	defer cancel()

	start := time.Now()
	results, err := h.Warehouse.ExecAdhoc(ctx, prep.Rewritten)
	if err != nil {
		logger.L.Error("sql execution failed", zap.String("query", prep.Rewritten), zap.Error(err))
		return dbError(c, h.Cfg, err, "Failed to execute SQL query")
	}

	meta := sqlMetadata{
		Source:        "custom_sql",
		RowCount:      len(results),
		ExecutionTime: fmt.Sprintf("%dms", time.Since(start).Milliseconds()),
		Query:         prep.Rewritten,
		QueryModified: prep.Modified,
	}
	if prep.Modified {
		meta.OriginalQuery = prep.Original
		meta.Modification = prep.Reason
	}

	return c.JSON(http.StatusOK, echo.Map{
		"results":  results,
		"metadata": meta,
	})
}

// Ping probes warehouse connectivity for the console's connection test.
func (h *SQLHandler) Ping(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 10*time.Second)
	defer cancel()

	database, serverTime, err := h.Warehouse.Ping(ctx)
	if err != nil {
		logger.L.Error("warehouse ping failed", zap.Error(err))
		return c.JSON(http.StatusServiceUnavailable, echo.Map{
			"status":  "error",
			"error":   "Database connection failed",
			"details": detailOf(h.Cfg, err),
		})
	}

	return c.JSON(http.StatusOK, echo.Map{
		"status":     "connected",
		"database":   database,
		"serverTime": serverTime.Format(time.RFC3339),
		"readOnly":   true,
	})
}
