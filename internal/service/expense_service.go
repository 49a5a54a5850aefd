package service

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	"github.com/mkowal/splitmate/internal/api"
	"github.com/mkowal/splitmate/internal/models"
	"github.com/mkowal/splitmate/internal/report"
)

// ExpenseGateway is the subset of the API client the expense flows need.
type ExpenseGateway interface {
	ListGroups(ctx context.Context) ([]models.Group, error)
	CreateGroup(ctx context.Context, name string) (*models.Group, error)
	ListExpenses(ctx context.Context) ([]models.Expense, error)
	CreateExpense(ctx context.Context, groupID, name string, amount float64, description string) (*models.Expense, error)
}

// ExpenseService drives the dashboard: loading groups and expenses,
// selecting the working group, and submitting new expenses.
//
// The selected group is written once per session, during Load or
// auto-provisioning, and read by every submission after that.
type ExpenseService struct {
	gateway          ExpenseGateway
	defaultGroupName string
	logger           *slog.Logger
	groupID          string
}

// NewExpenseService creates the service. defaultGroupName is used when a
// submission has to auto-provision a group.
func NewExpenseService(gateway ExpenseGateway, defaultGroupName string) *ExpenseService {
	return &ExpenseService{
		gateway:          gateway,
		defaultGroupName: defaultGroupName,
		logger:           slog.Default().With("component", "expenses"),
	}
}

// Dashboard bundles the data for one dashboard render.
type Dashboard struct {
	Groups   []models.Group
	Expenses []models.Expense
	Total    float64
	ByPayer  []report.PayerTotal
}

// Load fetches groups and expenses and derives the dashboard figures.
// The first listed group becomes the selected one; an empty group list
// is valid and leaves nothing selected.
func (s *ExpenseService) Load(ctx context.Context) (*Dashboard, error) {
	groups, err := s.gateway.ListGroups(ctx)
	if err != nil {
		return nil, err
	}
	if s.groupID == "" && len(groups) > 0 {
		s.groupID = groups[0].ID
		s.logger.Debug("group selected", "group_id", s.groupID, "name", groups[0].Name)
	}

	expenses, err := s.gateway.ListExpenses(ctx)
	if err != nil {
		return nil, err
	}

	return &Dashboard{
		Groups:   groups,
		Expenses: expenses,
		Total:    report.Total(expenses),
		ByPayer:  report.ByPayer(expenses),
	}, nil
}

// SelectedGroup returns the ID of the currently selected group, or ""
// when none is selected yet.
func (s *ExpenseService) SelectedGroup() string {
	return s.groupID
}

// ExpenseInput is the raw form state for a new expense.
type ExpenseInput struct {
	Name        string
	Amount      string
	Description string
}

// Submit runs the expense creation flow: validate, auto-provision a
// group when none is selected (at most once, never recursively), create
// the expense, then refresh the list.
//
// Validation failures return before any network call. A refresh failure
// after a successful creation is logged and swallowed: the expense
// exists, the caller just renders without a fresh list.
func (s *ExpenseService) Submit(ctx context.Context, in ExpenseInput) (*models.Expense, []models.Expense, error) {
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return nil, nil, fmt.Errorf("%w: expense name is required", api.ErrValidation)
	}
	rawAmount := strings.TrimSpace(in.Amount)
	if rawAmount == "" {
		return nil, nil, fmt.Errorf("%w: amount is required", api.ErrValidation)
	}
	amount, err := strconv.ParseFloat(rawAmount, 64)
	if err != nil {
		return nil, nil, fmt.Errorf("%w: amount must be a number", api.ErrValidation)
	}

	if s.groupID == "" {
		group, err := s.gateway.CreateGroup(ctx, s.defaultGroupName)
		if err != nil {
			return nil, nil, fmt.Errorf("auto-provision group: %w", err)
		}
		s.groupID = group.ID
		s.logger.Info("group auto-provisioned", "group_id", group.ID, "name", group.Name)
	}

	created, err := s.gateway.CreateExpense(ctx, s.groupID, name, amount, strings.TrimSpace(in.Description))
	if err != nil {
		return nil, nil, err
	}
	s.logger.Info("expense created", "expense_id", created.ID, "name", created.Name)

	expenses, err := s.gateway.ListExpenses(ctx)
	if err != nil {
		s.logger.Warn("expense list refresh failed after create", "error", err)
		return created, nil, nil
	}
	return created, expenses, nil
}
