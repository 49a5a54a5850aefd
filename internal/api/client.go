// Package api wraps the remote expense-tracking HTTP service with typed
// operations. Every request attaches the session token when one exists,
// and every request and response is reported to the diagnostic sink
// (structured logs plus Prometheus counters). Failures map onto a small
// taxonomy the caller matches with errors.Is; there are no retries.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/mkowal/splitmate/internal/models"
)

// Operation names used for diagnostics and error classification.
const (
	opRegister      = "register"
	opLogin         = "login"
	opListGroups    = "list groups"
	opCreateGroup   = "create group"
	opListExpenses  = "list expenses"
	opCreateExpense = "create expense"
)

// maxDetailBytes caps how much of an error body ends up in logs and
// error messages.
const maxDetailBytes = 512

// TokenSource supplies the current session token. An empty string means
// logged out, in which case no Authorization header is attached.
type TokenSource interface {
	Token(ctx context.Context) string
}

// Client is the typed gateway to the remote service.
type Client struct {
	httpClient *http.Client
	baseURL    string
	tokens     TokenSource
	logger     *slog.Logger
}

// New creates a client for the API rooted at baseURL (the /api/ prefix
// included). Each request is bounded by timeout.
func New(baseURL string, timeout time.Duration, tokens TokenSource) *Client {
	if !strings.HasSuffix(baseURL, "/") {
		baseURL += "/"
	}
	return &Client{
		httpClient: &http.Client{Timeout: timeout},
		baseURL:    baseURL,
		tokens:     tokens,
		logger:     slog.Default().With("component", "gateway"),
	}
}

type credentials struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type loginResponse struct {
	Token string `json:"token"`
}

type createGroupRequest struct {
	Name string `json:"name"`
}

type createExpenseRequest struct {
	Group       string  `json:"group"`
	Name        string  `json:"name"`
	Amount      float64 `json:"amount"`
	Description string  `json:"description"`
}

// Register creates a new account. Duplicate usernames surface as
// ErrConflict.
func (c *Client) Register(ctx context.Context, username, password string) (*models.User, error) {
	var user models.User
	err := c.do(ctx, opRegister, http.MethodPost, "users/", nil, credentials{username, password}, &user)
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// Login exchanges credentials for a session token. Bad credentials
// surface as ErrAuth.
func (c *Client) Login(ctx context.Context, username, password string) (string, error) {
	var resp loginResponse
	err := c.do(ctx, opLogin, http.MethodPost, "login/", nil, credentials{username, password}, &resp)
	if err != nil {
		return "", err
	}
	if resp.Token == "" {
		return "", &Error{Op: opLogin, Kind: ErrServer, Detail: "response carried no token"}
	}
	return resp.Token, nil
}

// ListGroups returns all groups visible to the session. An empty list is
// a valid result.
func (c *Client) ListGroups(ctx context.Context) ([]models.Group, error) {
	return c.listGroups(ctx, "")
}

// ListGroupsSince returns groups changed after the given server
// timestamp. An empty cursor lists everything.
func (c *Client) ListGroupsSince(ctx context.Context, cursor string) ([]models.Group, error) {
	return c.listGroups(ctx, cursor)
}

func (c *Client) listGroups(ctx context.Context, cursor string) ([]models.Group, error) {
	var groups []models.Group
	err := c.do(ctx, opListGroups, http.MethodGet, "groups/", sinceQuery(cursor), nil, &groups)
	if err != nil {
		return nil, err
	}
	return groups, nil
}

// CreateGroup creates a group; the server adds the calling user as a
// member.
func (c *Client) CreateGroup(ctx context.Context, name string) (*models.Group, error) {
	var group models.Group
	err := c.do(ctx, opCreateGroup, http.MethodPost, "groups/", nil, createGroupRequest{Name: name}, &group)
	if err != nil {
		return nil, err
	}
	return &group, nil
}

// ListExpenses returns all expenses visible to the session, unfiltered.
func (c *Client) ListExpenses(ctx context.Context) ([]models.Expense, error) {
	return c.listExpenses(ctx, "")
}

// ListExpensesSince returns expenses changed after the given server
// timestamp. An empty cursor lists everything.
func (c *Client) ListExpensesSince(ctx context.Context, cursor string) ([]models.Expense, error) {
	return c.listExpenses(ctx, cursor)
}

func (c *Client) listExpenses(ctx context.Context, cursor string) ([]models.Expense, error) {
	var expenses []models.Expense
	err := c.do(ctx, opListExpenses, http.MethodGet, "expenses/", sinceQuery(cursor), nil, &expenses)
	if err != nil {
		return nil, err
	}
	return expenses, nil
}

// CreateExpense records a new expense against the group. The server
// assigns the payer from the session user.
func (c *Client) CreateExpense(ctx context.Context, groupID, name string, amount float64, description string) (*models.Expense, error) {
	var expense models.Expense
	req := createExpenseRequest{
		Group:       groupID,
		Name:        name,
		Amount:      amount,
		Description: description,
	}
	err := c.do(ctx, opCreateExpense, http.MethodPost, "expenses/", nil, req, &expense)
	if err != nil {
		return nil, err
	}
	return &expense, nil
}

func sinceQuery(cursor string) url.Values {
	if cursor == "" {
		return nil
	}
	return url.Values{"last_sync": []string{cursor}}
}

// do issues one request and decodes the response, reporting the attempt
// to the diagnostic sink whatever the outcome.
func (c *Client) do(ctx context.Context, op, method, path string, query url.Values, body, out any) (err error) {
	start := time.Now()
	requestID := uuid.New().String()

	defer func() {
		requestsTotal.WithLabelValues(op, outcomeFor(err)).Inc()
		requestDuration.WithLabelValues(op).Observe(time.Since(start).Seconds())
	}()

	var payload io.Reader
	if body != nil {
		data, merr := json.Marshal(body)
		if merr != nil {
			return &Error{Op: op, Kind: ErrValidation, Err: merr}
		}
		payload = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, payload)
	if err != nil {
		return &Error{Op: op, Kind: ErrValidation, Err: err}
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if query != nil {
		req.URL.RawQuery = query.Encode()
	}
	if token := c.tokens.Token(ctx); token != "" {
		req.Header.Set("Authorization", "Token "+token)
	}

	c.logger.Debug("request",
		"request_id", requestID,
		"operation", op,
		"method", method,
		"url", req.URL.String(),
	)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Warn("no response",
			"request_id", requestID,
			"operation", op,
			"error", err,
		)
		return &Error{Op: op, Kind: ErrNetworkUnreachable, Err: err}
	}
	defer resp.Body.Close()

	duration := time.Since(start).Milliseconds()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		detail := readDetail(resp.Body)
		c.logger.Warn("request rejected",
			"request_id", requestID,
			"operation", op,
			"status", resp.StatusCode,
			"detail", detail,
			"duration_ms", duration,
		)
		return &Error{Op: op, Kind: classify(op, resp.StatusCode), StatusCode: resp.StatusCode, Detail: detail}
	}

	if out != nil {
		if derr := json.NewDecoder(resp.Body).Decode(out); derr != nil {
			c.logger.Warn("response decode failed",
				"request_id", requestID,
				"operation", op,
				"status", resp.StatusCode,
				"error", derr,
				"duration_ms", duration,
			)
			return &Error{Op: op, Kind: ErrServer, StatusCode: resp.StatusCode, Err: derr}
		}
	}

	c.logger.Debug("response",
		"request_id", requestID,
		"operation", op,
		"status", resp.StatusCode,
		"duration_ms", duration,
	)
	return nil
}

func readDetail(r io.Reader) string {
	data, err := io.ReadAll(io.LimitReader(r, maxDetailBytes))
	if err != nil {
		return ""
	}
	return strings.TrimSpace(string(data))
}

// Summary renders a gateway error as a short human-readable message for
// user-facing alerts.
func Summary(err error) string {
	var apiErr *Error
	if !errors.As(err, &apiErr) {
		return err.Error()
	}
	switch apiErr.Kind {
	case ErrNetworkUnreachable:
		return "cannot reach the server, check your connection"
	case ErrAuth:
		return "wrong username or password"
	case ErrConflict:
		return "cannot create the account, the user may already exist"
	default:
		return fmt.Sprintf("the server rejected the request (%s)", apiErr.Op)
	}
}
