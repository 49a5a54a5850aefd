package service

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mkowal/splitmate/internal/api"
	"github.com/mkowal/splitmate/internal/models"
)

// fakeGateway counts calls and serves canned data, standing in for the
// API client.
type fakeGateway struct {
	groups   []models.Group
	expenses []models.Expense

	listGroupsErr    error
	createGroupErr   error
	createExpenseErr error

	listGroupsCalls    int
	createGroupCalls   int
	listExpensesCalls  int
	createExpenseCalls int
}

func (f *fakeGateway) ListGroups(ctx context.Context) ([]models.Group, error) {
	f.listGroupsCalls++
	return f.groups, f.listGroupsErr
}

func (f *fakeGateway) CreateGroup(ctx context.Context, name string) (*models.Group, error) {
	f.createGroupCalls++
	if f.createGroupErr != nil {
		return nil, f.createGroupErr
	}
	g := models.Group{ID: "g-new", Name: name}
	f.groups = append(f.groups, g)
	return &g, nil
}

func (f *fakeGateway) ListExpenses(ctx context.Context) ([]models.Expense, error) {
	f.listExpensesCalls++
	return f.expenses, nil
}

func (f *fakeGateway) CreateExpense(ctx context.Context, groupID, name string, amount float64, description string) (*models.Expense, error) {
	f.createExpenseCalls++
	if f.createExpenseErr != nil {
		return nil, f.createExpenseErr
	}
	e := models.Expense{ID: "e-new", Group: groupID, Name: name, Amount: "42.50"}
	f.expenses = append(f.expenses, e)
	return &e, nil
}

func TestLoadSelectsFirstGroup(t *testing.T) {
	gw := &fakeGateway{
		groups: []models.Group{{ID: "g1", Name: "Flat"}, {ID: "g2", Name: "Trip"}},
		expenses: []models.Expense{
			{ID: "e1", Amount: "10.00"},
			{ID: "e2", Amount: "5.50"},
		},
	}
	svc := NewExpenseService(gw, "My group")

	dash, err := svc.Load(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "g1", svc.SelectedGroup())
	assert.InDelta(t, 15.50, dash.Total, 1e-9)
	assert.Len(t, dash.Expenses, 2)
}

func TestLoadWithNoGroups(t *testing.T) {
	gw := &fakeGateway{}
	svc := NewExpenseService(gw, "My group")

	dash, err := svc.Load(context.Background())
	require.NoError(t, err)
	assert.Empty(t, svc.SelectedGroup())
	assert.Empty(t, dash.Groups)
	assert.Zero(t, dash.Total)
}

func TestSubmitValidation(t *testing.T) {
	tests := []struct {
		name  string
		input ExpenseInput
	}{
		{"empty name", ExpenseInput{Name: "  ", Amount: "10"}},
		{"empty amount", ExpenseInput{Name: "Pizza", Amount: "   "}},
		{"non-numeric amount", ExpenseInput{Name: "Pizza", Amount: "ten"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gw := &fakeGateway{groups: []models.Group{{ID: "g1"}}}
			svc := NewExpenseService(gw, "My group")

			_, _, err := svc.Submit(context.Background(), tt.input)
			require.ErrorIs(t, err, api.ErrValidation)

			// Validation failures never reach the network.
			assert.Zero(t, gw.createGroupCalls)
			assert.Zero(t, gw.createExpenseCalls)
			assert.Zero(t, gw.listExpensesCalls)
		})
	}
}

func TestSubmitAutoProvisionsGroupOnce(t *testing.T) {
	gw := &fakeGateway{}
	svc := NewExpenseService(gw, "My group")

	_, err := svc.Load(context.Background())
	require.NoError(t, err)
	require.Empty(t, svc.SelectedGroup())

	created, refreshed, err := svc.Submit(context.Background(), ExpenseInput{Name: "Pizza", Amount: "42.50"})
	require.NoError(t, err)
	assert.Equal(t, 1, gw.createGroupCalls)
	assert.Equal(t, "g-new", svc.SelectedGroup())
	assert.Equal(t, "g-new", created.Group)
	assert.Len(t, refreshed, 1)

	// The provisioned group sticks: the next submission reuses it.
	_, _, err = svc.Submit(context.Background(), ExpenseInput{Name: "Beer", Amount: "12"})
	require.NoError(t, err)
	assert.Equal(t, 1, gw.createGroupCalls)
}

func TestSubmitProvisioningFailureIsTerminal(t *testing.T) {
	provisionErr := &api.Error{Op: "create group", Kind: api.ErrServer, StatusCode: 500}
	gw := &fakeGateway{createGroupErr: provisionErr}
	svc := NewExpenseService(gw, "My group")

	_, _, err := svc.Submit(context.Background(), ExpenseInput{Name: "Pizza", Amount: "10"})
	require.ErrorIs(t, err, api.ErrServer)

	// Exactly one provisioning attempt, no expense call, no retry loop.
	assert.Equal(t, 1, gw.createGroupCalls)
	assert.Zero(t, gw.createExpenseCalls)
}

func TestSubmitCreateFailureLeavesListUntouched(t *testing.T) {
	gw := &fakeGateway{
		groups:           []models.Group{{ID: "g1"}},
		createExpenseErr: errors.New("boom"),
	}
	svc := NewExpenseService(gw, "My group")

	_, err := svc.Load(context.Background())
	require.NoError(t, err)

	_, refreshed, err := svc.Submit(context.Background(), ExpenseInput{Name: "Pizza", Amount: "10"})
	require.Error(t, err)
	assert.Nil(t, refreshed)
}
