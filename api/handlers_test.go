package api

import (
	"bytes"
	"context"
	"errors"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/bromosky/aventra/config"
	"github.com/bromosky/aventra/internal/domain"
	"github.com/bromosky/aventra/internal/service/booking"
	"github.com/bromosky/aventra/internal/session"
	"github.com/bromosky/aventra/web"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

const testInvoice = "BSM-260203-AB12"

type MockBookingUseCase struct {
	mock.Mock
}

func (m *MockBookingUseCase) CreateBooking(ctx context.Context, input booking.CreateBookingInput) (*domain.Booking, error) {
	args := m.Called(ctx, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Booking), args.Error(1)
}

func (m *MockBookingUseCase) GetBooking(ctx context.Context, invoiceID string) (*domain.Booking, error) {
	args := m.Called(ctx, invoiceID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Booking), args.Error(1)
}

func (m *MockBookingUseCase) ListBookings(ctx context.Context) ([]booking.DashboardRow, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]booking.DashboardRow), args.Error(1)
}

func (m *MockBookingUseCase) UpdateStatus(ctx context.Context, input booking.UpdateStatusInput) (*booking.StatusUpdateResult, error) {
	args := m.Called(ctx, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*booking.StatusUpdateResult), args.Error(1)
}

func (m *MockBookingUseCase) Packages() []domain.Package {
	return domain.DefaultPackages()
}

func (m *MockBookingUseCase) DepositPercent() int {
	return 30
}

type MockSessionStore struct {
	mock.Mock
}

func (m *MockSessionStore) Create(ctx context.Context) (string, error) {
	args := m.Called(ctx)
	return args.String(0), args.Error(1)
}

func (m *MockSessionStore) Validate(ctx context.Context, token string) (bool, error) {
	args := m.Called(ctx, token)
	return args.Bool(0), args.Error(1)
}

func (m *MockSessionStore) Destroy(ctx context.Context, token string) error {
	args := m.Called(ctx, token)
	return args.Error(0)
}

type passwordStub string

func (p passwordStub) Check(password string) error {
	if password != string(p) {
		return session.ErrInvalidPassword
	}
	return nil
}

type testApp struct {
	service  *MockBookingUseCase
	sessions *MockSessionStore
	router   *gin.Engine
}

func newTestApp(t *testing.T) *testApp {
	t.Helper()
	gin.SetMode(gin.TestMode)

	tmpl, err := web.Templates()
	require.NoError(t, err)

	app := &testApp{service: &MockBookingUseCase{}, sessions: &MockSessionStore{}}
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	r := gin.New()
	r.SetHTMLTemplate(tmpl)
	NewBookingHandler(app.service, "Bromo Sky Aventra", logger).Register(r.Group("/"))
	NewAdminHandler(app.service, app.sessions, passwordStub("admin123"), config.AdminConfig{SessionTTLMinutes: 60}, "Bromo Sky Aventra", logger).
		Register(r.Group("/"))
	NewCatalogHandler(app.service).Register(r.Group("/api"))
	app.router = r
	return app
}

func (a *testApp) do(req *http.Request, cookies ...*http.Cookie) *httptest.ResponseRecorder {
	for _, c := range cookies {
		req.AddCookie(c)
	}
	w := httptest.NewRecorder()
	a.router.ServeHTTP(w, req)
	return w
}

func postForm(path string, form url.Values) *http.Request {
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return req
}

func adminCookie() *http.Cookie {
	return &http.Cookie{Name: session.CookieName, Value: "tok"}
}

func responseCookie(t *testing.T, w *httptest.ResponseRecorder, name string) *http.Cookie {
	t.Helper()
	for _, c := range w.Result().Cookies() {
		if c.Name == name {
			return c
		}
	}
	return nil
}

func flashMessages(t *testing.T, w *httptest.ResponseRecorder) []string {
	t.Helper()
	c := responseCookie(t, w, flashCookie)
	require.NotNil(t, c, "flash cookie not set")
	flashes, err := decodeFlashes(c.Value)
	require.NoError(t, err)
	out := make([]string, 0, len(flashes))
	for _, f := range flashes {
		out = append(out, f.Message)
	}
	return out
}

func bookingForm() url.Values {
	return url.Values{
		"nama":    {"Budi"},
		"no_hp":   {"0812"},
		"email":   {"budi@example.com"},
		"paket":   {"Open Trip 300.000/Orang"},
		"jumlah":  {"3"},
		"tanggal": {"2026-02-10"},
		"alamat":  {"Malang"},
	}
}

func TestIndex(t *testing.T) {
	app := newTestApp(t)

	w := app.do(httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "Private Trip 1.750.000/Jeep Maximal 6 Orang")
	assert.Contains(t, w.Body.String(), "Rp 300.000")
	assert.Contains(t, w.Body.String(), "DP 30%")
}

func TestBookingForm(t *testing.T) {
	app := newTestApp(t)

	w := app.do(httptest.NewRequest(http.MethodGet, "/booking", nil))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `name="bukti"`)
	assert.Contains(t, w.Body.String(), "Open Trip Dokumentasi 350.000/Orang")
}

func TestCreateBooking_Success(t *testing.T) {
	app := newTestApp(t)
	app.service.On("CreateBooking", mock.Anything, mock.MatchedBy(func(in booking.CreateBookingInput) bool {
		return in.Name == "Budi" && in.PartySize == 3 && in.Proof == nil
	})).Return(&domain.Booking{
		InvoiceID: testInvoice,
		Name:      "Budi",
		Package:   "Open Trip 300.000/Orang",
		PartySize: 3,
		TripDate:  "2026-02-10",
		Total:     900000,
		Deposit:   270000,
		Remainder: 630000,
		Status:    domain.BookingStatusAwaiting,
	}, nil).Once()

	w := app.do(postForm("/booking", bookingForm()))

	assert.Equal(t, http.StatusOK, w.Code)
	body := w.Body.String()
	assert.Contains(t, body, testInvoice)
	assert.Contains(t, body, "Rp 900.000")
	assert.Contains(t, body, "Rp 270.000")
	assert.Contains(t, body, "10 Februari 2026")
	app.service.AssertExpectations(t)
}

func TestCreateBooking_NonNumericPartySize(t *testing.T) {
	app := newTestApp(t)
	form := bookingForm()
	form.Set("jumlah", "dua")
	app.service.On("CreateBooking", mock.Anything, mock.MatchedBy(func(in booking.CreateBookingInput) bool {
		return in.PartySize == 1
	})).Return(&domain.Booking{InvoiceID: testInvoice}, nil).Once()

	w := app.do(postForm("/booking", form))

	assert.Equal(t, http.StatusOK, w.Code)
	app.service.AssertExpectations(t)
}

func TestCreateBooking_WithProof(t *testing.T) {
	app := newTestApp(t)

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	for k, vs := range bookingForm() {
		require.NoError(t, mw.WriteField(k, vs[0]))
	}
	fw, err := mw.CreateFormFile("bukti", "transfer.png")
	require.NoError(t, err)
	_, _ = fw.Write([]byte("\x89PNG\r\n\x1a\n"))
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/booking", &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())

	app.service.On("CreateBooking", mock.Anything, mock.MatchedBy(func(in booking.CreateBookingInput) bool {
		return in.Proof != nil && in.Proof.Filename == "transfer.png"
	})).Return(&domain.Booking{InvoiceID: testInvoice, ProofURL: "/static/uploads/bukti/" + testInvoice + "_bukti.png"}, nil).Once()

	w := app.do(req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "/static/uploads/bukti/"+testInvoice+"_bukti.png")
	app.service.AssertExpectations(t)
}

func TestCreateBooking_ValidationRedirectsWithFlash(t *testing.T) {
	app := newTestApp(t)
	app.service.On("CreateBooking", mock.Anything, mock.Anything).
		Return(nil, domain.ValidationError{Field: "jumlah", Msg: "Jumlah peserta melebihi kapasitas paket ini (maks 6 orang)."})

	w := app.do(postForm("/booking", bookingForm()))

	assert.Equal(t, http.StatusSeeOther, w.Code)
	assert.Equal(t, "/booking", w.Header().Get("Location"))
	assert.Equal(t, []string{"Jumlah peserta melebihi kapasitas paket ini (maks 6 orang)."}, flashMessages(t, w))

	next := app.do(httptest.NewRequest(http.MethodGet, "/booking", nil), responseCookie(t, w, flashCookie))
	assert.Contains(t, next.Body.String(), "Jumlah peserta melebihi kapasitas paket ini (maks 6 orang).")
	cleared := responseCookie(t, next, flashCookie)
	require.NotNil(t, cleared)
	assert.Less(t, cleared.MaxAge, 0)
}

func TestCreateBooking_StoreFailure(t *testing.T) {
	app := newTestApp(t)
	app.service.On("CreateBooking", mock.Anything, mock.Anything).
		Return(nil, domain.StoreError{Op: "create", Msg: "Sheet penuh"})

	w := app.do(postForm("/booking", bookingForm()))

	assert.Equal(t, http.StatusBadGateway, w.Code)
	assert.Contains(t, w.Body.String(), "Gagal simpan ke Google Sheets: Sheet penuh")
	assert.Contains(t, w.Body.String(), "Booking Gagal")
}

func TestInvoiceCheck(t *testing.T) {
	app := newTestApp(t)

	w := app.do(postForm("/invoice_check", url.Values{"invoice_id": {"  "}}))
	assert.Equal(t, http.StatusSeeOther, w.Code)
	assert.Equal(t, "/invoice_check", w.Header().Get("Location"))
	assert.Equal(t, []string{"Masukkan Invoice ID dulu ya."}, flashMessages(t, w))

	w = app.do(postForm("/invoice_check", url.Values{"invoice_id": {" " + testInvoice + " "}}))
	assert.Equal(t, http.StatusSeeOther, w.Code)
	assert.Equal(t, "/invoice/"+testInvoice, w.Header().Get("Location"))
}

func TestInvoiceView(t *testing.T) {
	app := newTestApp(t)
	app.service.On("GetBooking", mock.Anything, testInvoice).Return(&domain.Booking{
		InvoiceID: testInvoice,
		Name:      "Budi",
		Total:     1750000,
		Status:    domain.BookingStatusConfirmed,
	}, nil)

	w := app.do(httptest.NewRequest(http.MethodGet, "/invoice/"+testInvoice, nil))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "Booking Dikonfirmasi")
	assert.Contains(t, w.Body.String(), "Rp 1.750.000")
}

func TestInvoiceView_Errors(t *testing.T) {
	tests := []struct {
		name string
		err  error
		code int
	}{
		{"not found", domain.NotFoundError{InvoiceID: "X"}, http.StatusNotFound},
		{"store said no", domain.StoreError{Op: "get", Msg: "Invoice tidak ditemukan"}, http.StatusNotFound},
		{"store unreachable", domain.StoreError{Op: "get", Msg: "dial tcp: refused", Err: errors.New("dial tcp: refused")}, http.StatusBadGateway},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			app := newTestApp(t)
			app.service.On("GetBooking", mock.Anything, "X").Return(nil, tt.err)

			w := app.do(httptest.NewRequest(http.MethodGet, "/invoice/X", nil))

			assert.Equal(t, tt.code, w.Code)
			assert.Contains(t, w.Body.String(), tt.err.Error())
		})
	}
}

func TestInvoicePDF(t *testing.T) {
	app := newTestApp(t)
	app.service.On("GetBooking", mock.Anything, testInvoice).Return(&domain.Booking{InvoiceID: testInvoice, Total: 900000}, nil)

	w := app.do(httptest.NewRequest(http.MethodGet, "/invoice/"+testInvoice+"/pdf", nil))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "application/pdf", w.Header().Get("Content-Type"))
	assert.Contains(t, w.Header().Get("Content-Disposition"), "INVOICE_"+testInvoice+".pdf")
	assert.True(t, bytes.HasPrefix(w.Body.Bytes(), []byte("%PDF-")))
}

func TestAdminDashboard_RequiresLogin(t *testing.T) {
	app := newTestApp(t)

	w := app.do(httptest.NewRequest(http.MethodGet, "/admin/dashboard", nil))

	assert.Equal(t, http.StatusSeeOther, w.Code)
	assert.Equal(t, "/admin", w.Header().Get("Location"))
	assert.Equal(t, []string{"Silakan login admin dulu."}, flashMessages(t, w))
	app.service.AssertNotCalled(t, "ListBookings", mock.Anything)
}

func TestAdminDashboard_InvalidSession(t *testing.T) {
	app := newTestApp(t)
	app.sessions.On("Validate", mock.Anything, "tok").Return(false, nil)

	w := app.do(postForm("/admin/update_status", url.Values{"invoice_id": {testInvoice}, "status": {"DIBATALKAN"}}), adminCookie())

	assert.Equal(t, http.StatusSeeOther, w.Code)
	assert.Equal(t, "/admin", w.Header().Get("Location"))
	app.service.AssertNotCalled(t, "UpdateStatus", mock.Anything, mock.Anything)
}

func TestAdminLogin(t *testing.T) {
	app := newTestApp(t)

	w := app.do(postForm("/admin", url.Values{"password": {"salah"}}))
	assert.Equal(t, http.StatusSeeOther, w.Code)
	assert.Equal(t, "/admin", w.Header().Get("Location"))
	assert.Equal(t, []string{"Password admin salah."}, flashMessages(t, w))
	assert.Nil(t, responseCookie(t, w, session.CookieName))

	app.sessions.On("Create", mock.Anything).Return("tok", nil).Once()
	w = app.do(postForm("/admin", url.Values{"password": {"admin123"}}))
	assert.Equal(t, http.StatusSeeOther, w.Code)
	assert.Equal(t, "/admin/dashboard", w.Header().Get("Location"))
	assert.Equal(t, []string{"Login admin berhasil."}, flashMessages(t, w))
	cookie := responseCookie(t, w, session.CookieName)
	require.NotNil(t, cookie)
	assert.Equal(t, "tok", cookie.Value)
	assert.True(t, cookie.HttpOnly)
	assert.Equal(t, 3600, cookie.MaxAge)
}

func TestAdminLogout(t *testing.T) {
	app := newTestApp(t)
	app.sessions.On("Destroy", mock.Anything, "tok").Return(nil).Once()

	w := app.do(httptest.NewRequest(http.MethodGet, "/admin/logout", nil), adminCookie())

	assert.Equal(t, http.StatusSeeOther, w.Code)
	assert.Equal(t, []string{"Berhasil logout."}, flashMessages(t, w))
	cookie := responseCookie(t, w, session.CookieName)
	require.NotNil(t, cookie)
	assert.Less(t, cookie.MaxAge, 0)
	app.sessions.AssertExpectations(t)
}

func TestAdminDashboard(t *testing.T) {
	app := newTestApp(t)
	app.sessions.On("Validate", mock.Anything, "tok").Return(true, nil)
	app.service.On("ListBookings", mock.Anything).Return([]booking.DashboardRow{{
		Booking: domain.Booking{
			InvoiceID: testInvoice,
			Name:      "Budi",
			Total:     1000000,
			Deposit:   300000,
			Remainder: 700000,
			Status:    domain.BookingStatusPaid,
		},
		TripDateDisplay: "10 Februari 2026",
	}}, nil)

	w := app.do(httptest.NewRequest(http.MethodGet, "/admin/dashboard", nil), adminCookie())

	assert.Equal(t, http.StatusOK, w.Code)
	body := w.Body.String()
	assert.Contains(t, body, testInvoice)
	assert.Contains(t, body, "10 Februari 2026")
	assert.Contains(t, body, "Rp 700.000")
	assert.Contains(t, body, `<option value="SUDAH BAYAR" selected>`)
}

func TestAdminDashboard_StoreError(t *testing.T) {
	app := newTestApp(t)
	app.sessions.On("Validate", mock.Anything, "tok").Return(true, nil)
	app.service.On("ListBookings", mock.Anything).Return(nil, domain.StoreError{Op: "list", Msg: "Gagal ambil data list"})

	w := app.do(httptest.NewRequest(http.MethodGet, "/admin/dashboard", nil), adminCookie())

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "Gagal ambil data list")
	assert.Contains(t, w.Body.String(), "Belum ada booking.")
}

func TestAdminUpdateStatus(t *testing.T) {
	tests := []struct {
		name   string
		result *booking.StatusUpdateResult
		err    error
		want   []string
	}{
		{
			name:   "email sent",
			result: &booking.StatusUpdateResult{EmailAttempted: true, EmailSent: true},
			want:   []string{"Status berhasil diupdate.", "Email status terkirim ke customer."},
		},
		{
			name:   "email failed",
			result: &booking.StatusUpdateResult{EmailAttempted: true, EmailErr: errors.New("auth failed")},
			want:   []string{"Status berhasil diupdate.", "Status tersimpan, tapi email gagal dikirim: auth failed"},
		},
		{
			name:   "no email",
			result: &booking.StatusUpdateResult{},
			want:   []string{"Status berhasil diupdate."},
		},
		{
			name: "store rejected",
			err:  domain.StoreError{Op: "update_status", Msg: "Invoice tidak ditemukan"},
			want: []string{"Gagal update status: Invoice tidak ditemukan"},
		},
		{
			name: "missing fields",
			err:  domain.ValidationError{Field: "status", Msg: "invoice_id dan status wajib diisi."},
			want: []string{"invoice_id dan status wajib diisi."},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			app := newTestApp(t)
			app.sessions.On("Validate", mock.Anything, "tok").Return(true, nil)
			input := booking.UpdateStatusInput{InvoiceID: testInvoice, Status: domain.BookingStatusConfirmed}
			if tt.err != nil {
				app.service.On("UpdateStatus", mock.Anything, input).Return(nil, tt.err).Once()
			} else {
				app.service.On("UpdateStatus", mock.Anything, input).Return(tt.result, nil).Once()
			}

			w := app.do(postForm("/admin/update_status", url.Values{"invoice_id": {testInvoice}, "status": {"DIKONFIRMASI"}}), adminCookie())

			assert.Equal(t, http.StatusSeeOther, w.Code)
			assert.Equal(t, "/admin/dashboard", w.Header().Get("Location"))
			assert.Equal(t, tt.want, flashMessages(t, w))
			app.service.AssertExpectations(t)
		})
	}
}

func TestCatalogEndpoints(t *testing.T) {
	app := newTestApp(t)

	w := app.do(httptest.NewRequest(http.MethodGet, "/api/packages", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"dp_percent":30`)
	assert.Contains(t, w.Body.String(), `"mode":"per-unit"`)
	assert.Contains(t, w.Body.String(), `"max":6`)

	w = app.do(httptest.NewRequest(http.MethodGet, "/api/health", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status":"ok"}`, w.Body.String())
}

func TestParsePartySize(t *testing.T) {
	assert.Equal(t, 4, parsePartySize(" 4 "))
	assert.Equal(t, 1, parsePartySize(""))
	assert.Equal(t, 1, parsePartySize("4.5"))
	assert.Equal(t, 0, parsePartySize("0"))
}
