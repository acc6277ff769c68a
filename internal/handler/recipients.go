package handler

import (
	"errors"
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/squadup/event-reporting/internal/config"
	"github.com/squadup/event-reporting/internal/repository"
)

// RecipientHandler serves the report-recipient CRUD on the application
// store.
type RecipientHandler struct {
	Cfg        config.Config
	Recipients *repository.RecipientRepo
}

func NewRecipientHandler(cfg config.Config, r *repository.RecipientRepo) *RecipientHandler {
	return &RecipientHandler{Cfg: cfg, Recipients: r}
}

// List returns all recipients, newest first.
func (h *RecipientHandler) List(c echo.Context) error {
	recipients, err := h.Recipients.List(c.Request().Context())
	if err != nil {
		return dbError(c, h.Cfg, err, "Failed to fetch recipients")
	}
	return c.JSON(http.StatusOK, echo.Map{
		"recipients": recipients,
		"count":      len(recipients),
	})
}

type createRecipientReq struct {
	Email          string  `json:"email"`
	Name           *string `json:"name"`
	OrganizationID *string `json:"organization_id"`
}

// Create inserts a recipient and joins it to every active scheduled report.
func (h *RecipientHandler) Create(c echo.Context) error {
	var req createRecipientReq
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "Invalid request body")
	}
	if req.Email == "" {
		return badRequest(c, "Email is required")
	}
	if err := validate.Var(req.Email, "email"); err != nil {
		return badRequest(c, "Invalid email format")
	}

	rec, added, err := h.Recipients.Create(c.Request().Context(), req.Email, req.Name, req.OrganizationID)
	if err != nil {
		if errors.Is(err, repository.ErrConflict) {
			return c.JSON(http.StatusConflict, errResp{Error: "This email already exists"})
		}
		return dbError(c, h.Cfg, err, "Failed to create recipient")
	}

	return c.JSON(http.StatusOK, echo.Map{
		"recipient":      rec,
		"message":        "Recipient created successfully",
		"addedToReports": added,
	})
}

type updateRecipientReq struct {
	ID       string  `json:"id"`
	Email    *string `json:"email"`
	Name     *string `json:"name"`
	IsActive *bool   `json:"is_active"`
}

// Update patches a recipient; omitted fields keep their current values.
func (h *RecipientHandler) Update(c echo.Context) error {
	var req updateRecipientReq
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "Invalid request body")
	}
	if req.ID == "" {
		return badRequest(c, "Recipient ID is required")
	}
	if _, err := uuid.Parse(req.ID); err != nil {
		return badRequest(c, "Invalid recipient ID")
	}
	if req.Email != nil {
		if err := validate.Var(*req.Email, "email"); err != nil {
			return badRequest(c, "Invalid email format")
		}
	}

	rec, err := h.Recipients.Update(c.Request().Context(), req.ID, req.Email, req.Name, req.IsActive)
	if err != nil {
		switch {
		case errors.Is(err, repository.ErrNotFound):
			return c.JSON(http.StatusNotFound, errResp{Error: "Recipient not found"})
		case errors.Is(err, repository.ErrConflict):
			return c.JSON(http.StatusConflict, errResp{Error: "This email already exists"})
		}
		return dbError(c, h.Cfg, err, "Failed to update recipient")
	}

	return c.JSON(http.StatusOK, echo.Map{
		"recipient": rec,
		"message":   "Recipient updated successfully",
	})
}

// Delete removes a recipient by the id query parameter.
func (h *RecipientHandler) Delete(c echo.Context) error {
	id := c.QueryParam("id")
	if id == "" {
		return badRequest(c, "Recipient ID is required")
	}
	if _, err := uuid.Parse(id); err != nil {
		return badRequest(c, "Invalid recipient ID")
	}

	if err := h.Recipients.Delete(c.Request().Context(), id); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return c.JSON(http.StatusNotFound, errResp{Error: "Recipient not found"})
		}
		return dbError(c, h.Cfg, err, "Failed to delete recipient")
	}

	return c.JSON(http.StatusOK, echo.Map{
		"message": "Recipient deleted successfully",
	})
}
