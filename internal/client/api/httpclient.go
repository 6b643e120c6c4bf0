package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/condoway/client-go/internal/client/models"
	"github.com/condoway/client-go/internal/client/paging"
	"github.com/condoway/client-go/internal/common"
	"github.com/condoway/client-go/internal/logging"
	"github.com/google/uuid"
)

const (
	loginPath         = "/login"
	occurrencesPath   = "/occurrences"
	visitorsPath      = "/visitors"
	notificationsPath = "/notifications"
	reservationsPath  = "/reservations"
)

// DefaultTimeout bounds every request; timeouts surface as ordinary
// transport errors.
const DefaultTimeout = 30 * time.Second

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginData struct {
	User  models.User `json:"user"`
	Token string      `json:"token"`
}

// Options configure an HTTPClient. Tokens is required; a nil Transport
// falls back to http.DefaultTransport beneath the retry layer.
type Options struct {
	BaseURL   string
	Timeout   time.Duration
	Tokens    *TokenHolder
	Transport http.RoundTripper
	Recovery  RecoveryHooks
	Logger    logging.Logger
}

// HTTPClient is the concrete Client over HTTP JSON.
type HTTPClient struct {
	baseURL string
	http    *http.Client
	tokens  *TokenHolder
	log     logging.Logger
}

func NewHTTPClient(opts Options) *HTTPClient {
	log := opts.Logger
	if log == nil {
		log = logging.Nop{}
	}
	timeout := opts.Timeout
	if timeout == 0 {
		timeout = DefaultTimeout
	}
	rt := newRetryTransport(opts.Transport, opts.BaseURL+loginPath, opts.Tokens, opts.Recovery, log)
	return &HTTPClient{
		baseURL: opts.BaseURL,
		http:    &http.Client{Timeout: timeout, Transport: rt},
		tokens:  opts.Tokens,
		log:     log,
	}
}

// do executes one JSON request and returns the raw response body.
// The Authorization header is attached by the retry transport.
func (c *HTTPClient) do(ctx context.Context, method, path string, query url.Values, body any) ([]byte, error) {
	target := c.baseURL + path
	if len(query) > 0 {
		target += "?" + query.Encode()
	}

	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("failed to encode request body: %w", err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, target, reader)
	if err != nil {
		return nil, fmt.Errorf("failed to build request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	reqID := uuid.NewString()
	start := time.Now()

	resp, err := c.http.Do(req)
	if err != nil {
		c.log.Warn(ctx, "request failed", "request_id", reqID, "method", method, "path", path, "error", err)
		return nil, fmt.Errorf("%w: %v", common.ErrUnavailable, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	c.log.Debug(ctx, "request completed",
		"request_id", reqID, "method", method, "path", path,
		"status", resp.StatusCode, "duration", time.Since(start))

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &StatusError{Code: resp.StatusCode, Body: bodySnippet(data)}
	}
	return data, nil
}

func listQuery(unitID int64, page, pageSize int) url.Values {
	q := url.Values{}
	q.Set("userap_id", strconv.FormatInt(unitID, 10))
	q.Set("page", strconv.Itoa(page))
	q.Set("limit", strconv.Itoa(pageSize))
	return q
}

func (c *HTTPClient) Login(ctx context.Context, email, password string) (*models.User, string, error) {
	body, err := c.do(ctx, http.MethodPost, loginPath, nil, loginRequest{Email: email, Password: password})
	if err != nil {
		if isUnauthorized(err) {
			return nil, "", common.ErrInvalidCredentials
		}
		return nil, "", fmt.Errorf("login request failed: %w", err)
	}

	var data loginData
	if err := decodeEnvelope(body, &data); err != nil {
		return nil, "", fmt.Errorf("failed to decode login response: %w", err)
	}
	if data.Token == "" {
		return nil, "", fmt.Errorf("login response carried no token")
	}
	return &data.User, data.Token, nil
}

func (c *HTTPClient) ListOccurrences(ctx context.Context, unitID int64, page, pageSize int) (paging.Page[models.Occurrence], error) {
	body, err := c.do(ctx, http.MethodGet, occurrencesPath, listQuery(unitID, page, pageSize), nil)
	if err != nil {
		return paging.Page[models.Occurrence]{}, err
	}
	return decodeListBody[models.Occurrence](body, pageSize)
}

type createOccurrenceRequest struct {
	UnitID      int64  `json:"userap_id"`
	Title       string `json:"title"`
	Description string `json:"description"`
	Category    string `json:"category"`
	Location    string `json:"location,omitempty"`
}

func (c *HTTPClient) CreateOccurrence(ctx context.Context, unitID int64, occ models.Occurrence) (models.Occurrence, error) {
	req := createOccurrenceRequest{
		UnitID:      unitID,
		Title:       occ.Title,
		Description: occ.Description,
		Category:    occ.Category,
		Location:    occ.Location,
	}
	body, err := c.do(ctx, http.MethodPost, occurrencesPath, nil, req)
	if err != nil {
		return models.Occurrence{}, fmt.Errorf("failed to create occurrence: %w", err)
	}

	var created models.Occurrence
	if err := decodeEnvelope(body, &created); err != nil {
		return models.Occurrence{}, err
	}
	return created, nil
}

func (c *HTTPClient) ListVisitors(ctx context.Context, unitID int64, page, pageSize int) (paging.Page[models.Visitor], error) {
	body, err := c.do(ctx, http.MethodGet, visitorsPath, listQuery(unitID, page, pageSize), nil)
	if err != nil {
		return paging.Page[models.Visitor]{}, err
	}
	return decodeListBody[models.Visitor](body, pageSize)
}

func (c *HTTPClient) UpdateVisitorStatus(ctx context.Context, visitorID int64, status string) error {
	path := fmt.Sprintf("%s/%d", visitorsPath, visitorID)
	_, err := c.do(ctx, http.MethodPatch, path, nil, map[string]string{"status": status})
	if err != nil {
		return fmt.Errorf("failed to update visitor %d: %w", visitorID, err)
	}
	return nil
}

func (c *HTTPClient) ListNotifications(ctx context.Context, unitID int64, page, pageSize int) (paging.Page[models.RawNotification], error) {
	body, err := c.do(ctx, http.MethodGet, notificationsPath, listQuery(unitID, page, pageSize), nil)
	if err != nil {
		return paging.Page[models.RawNotification]{}, err
	}
	return decodeListBody[models.RawNotification](body, pageSize)
}

func (c *HTTPClient) MarkNotificationRead(ctx context.Context, notificationID int64) error {
	path := fmt.Sprintf("%s/%d/read", notificationsPath, notificationID)
	_, err := c.do(ctx, http.MethodPatch, path, nil, nil)
	if err != nil {
		return fmt.Errorf("failed to mark notification %d read: %w", notificationID, err)
	}
	return nil
}

func (c *HTTPClient) ListReservations(ctx context.Context, unitID int64) ([]models.Reservation, error) {
	q := url.Values{}
	q.Set("userap_id", strconv.FormatInt(unitID, 10))
	body, err := c.do(ctx, http.MethodGet, reservationsPath, q, nil)
	if err != nil {
		return nil, err
	}

	trimmed := bytes.TrimSpace(body)
	if len(trimmed) > 0 && trimmed[0] == '[' {
		var out []models.Reservation
		if err := json.Unmarshal(trimmed, &out); err != nil {
			return nil, fmt.Errorf("failed to decode reservations: %w", err)
		}
		return out, nil
	}
	var out []models.Reservation
	if err := decodeEnvelope(body, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func isUnauthorized(err error) bool {
	return errors.Is(err, common.ErrUnauthorized)
}
