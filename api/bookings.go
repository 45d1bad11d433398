package api

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/bromosky/aventra/internal/document"
	"github.com/bromosky/aventra/internal/domain"
	"github.com/bromosky/aventra/internal/service/booking"
	"github.com/gin-gonic/gin"
)

// BookingHandler serves the public pages: landing, booking form, invoice lookup.
type BookingHandler struct {
	pages
	service booking.BookingUseCase
	logger  *slog.Logger
}

func NewBookingHandler(service booking.BookingUseCase, brand string, logger *slog.Logger) *BookingHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &BookingHandler{pages: pages{brand: brand}, service: service, logger: logger}
}

func (h *BookingHandler) Register(router *gin.RouterGroup) {
	router.GET("/", h.index)
	router.GET("/booking", h.form)
	router.POST("/booking", h.create)
	router.GET("/invoice_check", h.checkForm)
	router.POST("/invoice_check", h.check)
	router.GET("/invoice/:id", h.view)
	router.GET("/invoice/:id/pdf", h.pdf)
}

func (h *BookingHandler) index(c *gin.Context) {
	h.render(c, http.StatusOK, "index.html", "", gin.H{
		"Packages":  h.service.Packages(),
		"DPPercent": h.service.DepositPercent(),
	})
}

func (h *BookingHandler) form(c *gin.Context) {
	h.render(c, http.StatusOK, "booking.html", "Booking", gin.H{
		"Packages":  h.service.Packages(),
		"DPPercent": h.service.DepositPercent(),
	})
}

func (h *BookingHandler) create(c *gin.Context) {
	input := booking.CreateBookingInput{
		Name:      c.PostForm("nama"),
		Phone:     c.PostForm("no_hp"),
		Email:     c.PostForm("email"),
		Package:   c.PostForm("paket"),
		PartySize: parsePartySize(c.PostForm("jumlah")),
		TripDate:  c.PostForm("tanggal"),
		Address:   c.PostForm("alamat"),
	}

	if fh, err := c.FormFile("bukti"); err == nil && fh.Filename != "" {
		f, err := fh.Open()
		if err != nil {
			addFlash(c, flashError, "Gagal membaca bukti transfer.")
			redirect(c, "/booking")
			return
		}
		defer f.Close()
		input.Proof = &booking.ProofFile{Filename: fh.Filename, Content: f}
	}

	created, err := h.service.CreateBooking(c.Request.Context(), input)
	switch {
	case err == nil:
		h.render(c, http.StatusOK, "booking_result.html", "Booking Berhasil", gin.H{
			"Success":   true,
			"Booking":   created,
			"DPPercent": h.service.DepositPercent(),
		})
	case domain.IsValidation(err):
		addFlash(c, flashError, err.Error())
		redirect(c, "/booking")
	case domain.IsStore(err):
		h.logger.Error("failed to store booking", "error", err)
		addFlash(c, flashError, fmt.Sprintf("Gagal simpan ke Google Sheets: %s", err))
		h.render(c, http.StatusBadGateway, "booking_result.html", "Booking Gagal", gin.H{
			"Success": false,
			"Error":   err.Error(),
		})
	default:
		h.logger.Error("failed to create booking", "error", err)
		h.render(c, http.StatusInternalServerError, "booking_result.html", "Booking Gagal", gin.H{
			"Success": false,
			"Error":   "Terjadi kesalahan, silakan coba lagi.",
		})
	}
}

// parsePartySize treats anything that is not an integer as a party of one.
func parsePartySize(raw string) int {
	n, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil {
		return 1
	}
	return n
}

func (h *BookingHandler) checkForm(c *gin.Context) {
	h.render(c, http.StatusOK, "invoice_check.html", "Cek Invoice", nil)
}

func (h *BookingHandler) check(c *gin.Context) {
	invoiceID := strings.TrimSpace(c.PostForm("invoice_id"))
	if invoiceID == "" {
		addFlash(c, flashError, "Masukkan Invoice ID dulu ya.")
		redirect(c, "/invoice_check")
		return
	}
	redirect(c, "/invoice/"+url.PathEscape(invoiceID))
}

func (h *BookingHandler) view(c *gin.Context) {
	invoiceID := c.Param("id")
	b, err := h.service.GetBooking(c.Request.Context(), invoiceID)
	if err != nil {
		h.render(c, invoiceErrorStatus(err), "invoice_view.html", "Invoice "+invoiceID, gin.H{
			"Found":     false,
			"InvoiceID": invoiceID,
			"Error":     err.Error(),
		})
		return
	}
	h.render(c, http.StatusOK, "invoice_view.html", "Invoice "+invoiceID, gin.H{
		"Found":     true,
		"InvoiceID": invoiceID,
		"Booking":   b,
	})
}

func (h *BookingHandler) pdf(c *gin.Context) {
	b, err := h.service.GetBooking(c.Request.Context(), c.Param("id"))
	if err != nil {
		c.String(invoiceErrorStatus(err), err.Error())
		return
	}

	data, filename, err := document.InvoicePDF(*b, h.brand, h.service.DepositPercent())
	if err != nil {
		h.logger.Error("failed to render invoice pdf", "invoice_id", b.InvoiceID, "error", err)
		c.String(http.StatusInternalServerError, "Gagal membuat PDF invoice.")
		return
	}
	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, filename))
	c.Data(http.StatusOK, "application/pdf", data)
}

// invoiceErrorStatus maps lookup failures: a store that answered without a
// record is a 404, an unreachable store a 502.
func invoiceErrorStatus(err error) int {
	var storeErr domain.StoreError
	switch {
	case domain.IsValidation(err):
		return http.StatusBadRequest
	case domain.IsNotFound(err):
		return http.StatusNotFound
	case errors.As(err, &storeErr):
		if storeErr.Err == nil {
			return http.StatusNotFound
		}
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}
