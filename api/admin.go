package api

import (
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/bromosky/aventra/config"
	"github.com/bromosky/aventra/internal/domain"
	"github.com/bromosky/aventra/internal/service/booking"
	"github.com/bromosky/aventra/internal/session"
	"github.com/gin-gonic/gin"
)

type PasswordChecker interface {
	Check(password string) error
}

type AdminHandler struct {
	pages
	service      booking.BookingUseCase
	sessions     session.Store
	passwords    PasswordChecker
	cookieMaxAge int
	secureCookie bool
	logger       *slog.Logger
}

func NewAdminHandler(
	service booking.BookingUseCase,
	sessions session.Store,
	passwords PasswordChecker,
	cfg config.AdminConfig,
	brand string,
	logger *slog.Logger,
) *AdminHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &AdminHandler{
		pages:        pages{brand: brand},
		service:      service,
		sessions:     sessions,
		passwords:    passwords,
		cookieMaxAge: int(cfg.SessionTTL().Seconds()),
		secureCookie: cfg.SecureCookie,
		logger:       logger,
	}
}

func (h *AdminHandler) Register(router *gin.RouterGroup) {
	router.GET("/admin", h.loginForm)
	router.POST("/admin", h.login)
	router.GET("/admin/logout", h.logout)

	protected := router.Group("/admin", h.RequireAdmin())
	protected.GET("/dashboard", h.dashboard)
	protected.POST("/update_status", h.updateStatus)
}

// RequireAdmin sends visitors without a valid session back to the login page.
func (h *AdminHandler) RequireAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		if h.authenticated(c) {
			c.Next()
			return
		}
		addFlash(c, flashError, "Silakan login admin dulu.")
		redirect(c, "/admin")
		c.Abort()
	}
}

func (h *AdminHandler) authenticated(c *gin.Context) bool {
	token, err := c.Cookie(session.CookieName)
	if err != nil || token == "" {
		return false
	}
	ok, err := h.sessions.Validate(c.Request.Context(), token)
	if err != nil {
		h.logger.Warn("session lookup failed", "error", err)
		return false
	}
	return ok
}

func (h *AdminHandler) loginForm(c *gin.Context) {
	h.render(c, http.StatusOK, "admin_login.html", "Login Admin", nil)
}

func (h *AdminHandler) login(c *gin.Context) {
	password := strings.TrimSpace(c.PostForm("password"))
	if err := h.passwords.Check(password); err != nil {
		h.logger.Warn("admin login rejected", "client_ip", c.ClientIP())
		addFlash(c, flashError, "Password admin salah.")
		redirect(c, "/admin")
		return
	}

	token, err := h.sessions.Create(c.Request.Context())
	if err != nil {
		h.logger.Error("failed to create admin session", "error", err)
		addFlash(c, flashError, "Gagal membuat sesi admin, coba lagi.")
		redirect(c, "/admin")
		return
	}

	setCookie(c, session.CookieName, token, h.cookieMaxAge, h.secureCookie)
	addFlash(c, flashSuccess, "Login admin berhasil.")
	redirect(c, "/admin/dashboard")
}

func (h *AdminHandler) logout(c *gin.Context) {
	if token, err := c.Cookie(session.CookieName); err == nil && token != "" {
		if err := h.sessions.Destroy(c.Request.Context(), token); err != nil {
			h.logger.Warn("failed to destroy admin session", "error", err)
		}
	}
	setCookie(c, session.CookieName, "", -1, h.secureCookie)
	addFlash(c, flashSuccess, "Berhasil logout.")
	redirect(c, "/admin")
}

func (h *AdminHandler) dashboard(c *gin.Context) {
	data := gin.H{"StatusOptions": domain.BookingStatuses}

	rows, err := h.service.ListBookings(c.Request.Context())
	if err != nil {
		h.logger.Error("failed to list bookings", "error", err)
		data["Rows"] = []booking.DashboardRow{}
		data["Error"] = err.Error()
	} else {
		data["Rows"] = rows
	}
	h.render(c, http.StatusOK, "admin_dashboard.html", "Dashboard Admin", data)
}

func (h *AdminHandler) updateStatus(c *gin.Context) {
	result, err := h.service.UpdateStatus(c.Request.Context(), booking.UpdateStatusInput{
		InvoiceID: c.PostForm("invoice_id"),
		Status:    domain.BookingStatus(c.PostForm("status")),
	})
	switch {
	case err == nil:
	case domain.IsValidation(err):
		addFlash(c, flashError, err.Error())
		redirect(c, "/admin/dashboard")
		return
	default:
		addFlash(c, flashError, fmt.Sprintf("Gagal update status: %s", err))
		redirect(c, "/admin/dashboard")
		return
	}

	addFlash(c, flashSuccess, "Status berhasil diupdate.")
	if result.EmailAttempted {
		if result.EmailErr != nil {
			addFlash(c, flashError, fmt.Sprintf("Status tersimpan, tapi email gagal dikirim: %s", result.EmailErr))
		} else {
			addFlash(c, flashSuccess, "Email status terkirim ke customer.")
		}
	}
	redirect(c, "/admin/dashboard")
}
