// Package cluster serves the stewardship review API over persisted resolution output
package cluster

import (
	"context"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/Ramsey-B/bramble/internal/repositories/customer"
	"github.com/Ramsey-B/bramble/pkg/models"
	"github.com/Ramsey-B/bramble/pkg/routes/run"
)

type CustomerReader interface {
	ListMultiMember(ctx context.Context, runID string, limit int) ([]models.ClusterSize, error)
	ListMembers(ctx context.Context, runID string, customerIDs ...string) ([]models.CustomerAccount, error)
	GetCluster(ctx context.Context, runID, customerID string) ([]models.CustomerAccount, error)
	GetAccount(ctx context.Context, runID, accountID string) (*models.CustomerAccount, error)
}

type DecisionReader interface {
	ListByAccount(ctx context.Context, runID, accountID string) ([]models.MatchDecision, error)
	ListByAccounts(ctx context.Context, runID string, accountIDs []string) ([]models.MatchDecision, error)
}

type Handler struct {
	runs         run.Reader
	customers    CustomerReader
	decisions    DecisionReader
	defaultLimit int
}

func NewHandler(runs run.Reader, customers CustomerReader, decisions DecisionReader, defaultLimit int) *Handler {
	return &Handler{
		runs:         runs,
		customers:    customers,
		decisions:    decisions,
		defaultLimit: customer.ClampLimit(defaultLimit, 100),
	}
}

// Register registers cluster and account routes on the /api/v1 group
func (h *Handler) Register(g *echo.Group) {
	g.GET("/clusters", h.ListClusters)
	g.GET("/clusters/:customer_id", h.GetCluster)
	g.GET("/accounts/:account_id", h.GetAccount)
	g.GET("/accounts/:account_id/decisions", h.GetAccountDecisions)
}

// AccountDecisions is the audit trail of one account
type AccountDecisions struct {
	AccountID  string                 `json:"account_id"`
	CustomerID string                 `json:"customer_id"`
	RunID      string                 `json:"run_id"`
	Decisions  []models.MatchDecision `json:"decisions"`
}

// ListClusters lists multi-member clusters, largest first, with their members
func (h *Handler) ListClusters(c echo.Context) error {
	ctx := c.Request().Context()

	limit := h.defaultLimit
	if raw := c.QueryParam("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			return echo.NewHTTPError(http.StatusBadRequest, "limit must be a positive integer")
		}
		limit = customer.ClampLimit(n, h.defaultLimit)
	}

	current, err := run.Current(ctx, h.runs)
	if err != nil {
		return err
	}

	sizes, err := h.customers.ListMultiMember(ctx, current.ID, limit)
	if err != nil {
		return err
	}

	ids := make([]string, len(sizes))
	for i, s := range sizes {
		ids[i] = s.CustomerID
	}
	members, err := h.customers.ListMembers(ctx, current.ID, ids...)
	if err != nil {
		return err
	}

	byCustomer := make(map[string][]models.CustomerAccount, len(sizes))
	for _, m := range members {
		byCustomer[m.CustomerID] = append(byCustomer[m.CustomerID], m)
	}

	clusters := make([]models.ReviewCluster, 0, len(sizes))
	for _, s := range sizes {
		clusters = append(clusters, models.ReviewCluster{
			CustomerID:  s.CustomerID,
			MemberCount: s.MemberCount,
			Members:     byCustomer[s.CustomerID],
		})
	}
	return c.JSON(http.StatusOK, clusters)
}

// GetCluster returns one cluster with the decisions that connect its members
func (h *Handler) GetCluster(c echo.Context) error {
	ctx := c.Request().Context()

	current, err := run.Current(ctx, h.runs)
	if err != nil {
		return err
	}

	members, err := h.customers.GetCluster(ctx, current.ID, c.Param("customer_id"))
	if err != nil {
		return err
	}

	ids := make([]string, len(members))
	for i, m := range members {
		ids[i] = m.AccountID
	}
	decisions, err := h.decisions.ListByAccounts(ctx, current.ID, ids)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, models.ReviewCluster{
		CustomerID:  members[0].CustomerID,
		MemberCount: len(members),
		Members:     members,
		Decisions:   decisions,
	})
}

func (h *Handler) GetAccount(c echo.Context) error {
	ctx := c.Request().Context()

	current, err := run.Current(ctx, h.runs)
	if err != nil {
		return err
	}

	account, err := h.customers.GetAccount(ctx, current.ID, c.Param("account_id"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, account)
}

// GetAccountDecisions returns every match decision involving one account
func (h *Handler) GetAccountDecisions(c echo.Context) error {
	ctx := c.Request().Context()

	current, err := run.Current(ctx, h.runs)
	if err != nil {
		return err
	}

	account, err := h.customers.GetAccount(ctx, current.ID, c.Param("account_id"))
	if err != nil {
		return err
	}

	decisions, err := h.decisions.ListByAccount(ctx, current.ID, account.AccountID)
	if err != nil {
		return err
	}
	if decisions == nil {
		decisions = []models.MatchDecision{}
	}

	return c.JSON(http.StatusOK, AccountDecisions{
		AccountID:  account.AccountID,
		CustomerID: account.CustomerID,
		RunID:      current.ID,
		Decisions:  decisions,
	})
}
