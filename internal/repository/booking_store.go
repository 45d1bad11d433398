package repository

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/bromosky/aventra/config"
	"github.com/bromosky/aventra/internal/domain"
)

// BookingRepository is the remote booking store. It owns all durable state.
type BookingRepository interface {
	Create(ctx context.Context, booking domain.Booking) error
	GetByInvoiceID(ctx context.Context, invoiceID string) (*domain.Booking, error)
	List(ctx context.Context) ([]domain.Booking, error)
	UpdateStatus(ctx context.Context, invoiceID string, status domain.BookingStatus) error
}

const maxResponseBytes = 4 << 20

var errNotConfigured = errors.New("booking store URL (GAS_WEBAPP_URL) is not configured")

// SheetBookingRepository talks JSON to the spreadsheet web app. Every call is
// attempted once.
type SheetBookingRepository struct {
	baseURL string
	client  *http.Client
}

type storeResponse struct {
	OK      any             `json:"ok"`
	Message string          `json:"message"`
	Error   string          `json:"error"`
	Data    json.RawMessage `json:"data"`
}

func (r storeResponse) ok() bool {
	v, isBool := r.OK.(bool)
	return isBool && v
}

type updateStatusRequest struct {
	InvoiceID string               `json:"invoice_id"`
	Status    domain.BookingStatus `json:"status"`
}

func NewBookingRepository(cfg config.StoreConfig) BookingRepository {
	return NewSheetBookingRepository(strings.TrimSpace(cfg.BaseURL), &http.Client{Timeout: cfg.Timeout()})
}

func NewSheetBookingRepository(baseURL string, client *http.Client) *SheetBookingRepository {
	if client == nil {
		client = http.DefaultClient
	}
	return &SheetBookingRepository{baseURL: baseURL, client: client}
}

func (r *SheetBookingRepository) Create(ctx context.Context, booking domain.Booking) error {
	resp, err := r.do(ctx, http.MethodPost, nil, booking)
	if err != nil {
		return storeErr("create", err)
	}
	if !resp.ok() {
		return domain.StoreError{Op: "create", Msg: firstNonEmpty(resp.Message, resp.Error, "Unknown")}
	}
	return nil
}

func (r *SheetBookingRepository) GetByInvoiceID(ctx context.Context, invoiceID string) (*domain.Booking, error) {
	resp, err := r.do(ctx, http.MethodGet, url.Values{"invoice_id": {invoiceID}}, nil)
	if err != nil {
		return nil, storeErr("get", err)
	}
	if !resp.ok() {
		return nil, domain.StoreError{Op: "get", Msg: firstNonEmpty(resp.Error, "Invoice tidak ditemukan")}
	}
	if isNull(resp.Data) {
		return nil, domain.NotFoundError{InvoiceID: invoiceID}
	}

	var booking domain.Booking
	if err := json.Unmarshal(resp.Data, &booking); err != nil {
		return nil, storeErr("get", fmt.Errorf("decode booking: %w", err))
	}
	return &booking, nil
}

func (r *SheetBookingRepository) List(ctx context.Context) ([]domain.Booking, error) {
	resp, err := r.do(ctx, http.MethodGet, url.Values{"action": {"list"}}, nil)
	if err != nil {
		return nil, storeErr("list", err)
	}
	if !resp.ok() {
		return nil, domain.StoreError{Op: "list", Msg: firstNonEmpty(resp.Error, "Gagal ambil data list")}
	}

	bookings := []domain.Booking{}
	if isNull(resp.Data) {
		return bookings, nil
	}
	if err := json.Unmarshal(resp.Data, &bookings); err != nil {
		return nil, storeErr("list", fmt.Errorf("decode bookings: %w", err))
	}
	return bookings, nil
}

func (r *SheetBookingRepository) UpdateStatus(ctx context.Context, invoiceID string, status domain.BookingStatus) error {
	payload := updateStatusRequest{InvoiceID: invoiceID, Status: status}
	resp, err := r.do(ctx, http.MethodPost, url.Values{"action": {"update_status"}}, payload)
	if err != nil {
		return storeErr("update_status", err)
	}
	if !resp.ok() {
		return domain.StoreError{Op: "update_status", Msg: firstNonEmpty(resp.Message, resp.Error, "Unknown")}
	}
	return nil
}

func (r *SheetBookingRepository) do(ctx context.Context, method string, query url.Values, payload any) (*storeResponse, error) {
	if r.baseURL == "" {
		return nil, errNotConfigured
	}

	endpoint, err := url.Parse(r.baseURL)
	if err != nil {
		return nil, fmt.Errorf("invalid store URL: %w", err)
	}
	if len(query) > 0 {
		q := endpoint.Query()
		for k, vs := range query {
			for _, v := range vs {
				q.Set(k, v)
			}
		}
		endpoint.RawQuery = q.Encode()
	}

	var body io.Reader
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal payload: %w", err)
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint.String(), body)
	if err != nil {
		return nil, err
	}
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")

	res, err := r.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer res.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(res.Body, maxResponseBytes))
	if err != nil {
		return nil, fmt.Errorf("failed to read store response: %w", err)
	}

	var out storeResponse
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, fmt.Errorf("unexpected store response (HTTP %d): %w", res.StatusCode, err)
	}
	return &out, nil
}

func storeErr(op string, err error) error {
	return domain.StoreError{Op: op, Msg: err.Error(), Err: err}
}

func isNull(data json.RawMessage) bool {
	trimmed := bytes.TrimSpace(data)
	return len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null"))
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

var _ BookingRepository = (*SheetBookingRepository)(nil)
