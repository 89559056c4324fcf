package run

import (
	"context"
	"net/http"
	"strconv"

	"github.com/Gobusters/ectoerror/httperror"
	"github.com/labstack/echo/v4"

	reqcontext "github.com/Ramsey-B/bramble/pkg/context"
	"github.com/Ramsey-B/bramble/pkg/models"
)

// Reader reads persisted resolution runs
type Reader interface {
	Get(ctx context.Context, id string) (*models.ResolutionRun, error)
	Latest(ctx context.Context) (*models.ResolutionRun, error)
	List(ctx context.Context, limit int) ([]models.ResolutionRun, error)
}

type Handler struct {
	runs Reader
}

func NewHandler(runs Reader) *Handler {
	return &Handler{runs: runs}
}

// Register registers run routes
func (h *Handler) Register(g *echo.Group) {
	g.GET("", h.ListRuns)
	g.GET("/latest", h.GetLatestRun)
	g.GET("/:id", h.GetRun)
}

// Current returns the run a request reads from: the run pinned by the request context, or
// the latest completed run. A pinned run that has not completed is a conflict.
func Current(ctx context.Context, runs Reader) (*models.ResolutionRun, error) {
	id := reqcontext.GetRunID(ctx)
	if id == "" {
		return runs.Latest(ctx)
	}

	run, err := runs.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if run.Status != models.RunStatusCompleted {
		return nil, httperror.NewHTTPErrorf(http.StatusConflict, "resolution run %s is %s, not completed", id, run.Status)
	}
	return run, nil
}

// GetLatestRun returns the latest completed run summary
func (h *Handler) GetLatestRun(c echo.Context) error {
	run, err := h.runs.Latest(c.Request().Context())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, run)
}

func (h *Handler) GetRun(c echo.Context) error {
	run, err := h.runs.Get(c.Request().Context(), c.Param("id"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, run)
}

func (h *Handler) ListRuns(c echo.Context) error {
	limit := 0
	if raw := c.QueryParam("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, "limit must be an integer")
		}
		limit = n
	}

	runs, err := h.runs.List(c.Request().Context(), limit)
	if err != nil {
		return err
	}
	if runs == nil {
		runs = []models.ResolutionRun{}
	}
	return c.JSON(http.StatusOK, runs)
}
