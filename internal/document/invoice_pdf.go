package document

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/bromosky/aventra/internal/domain"
	"github.com/bromosky/aventra/internal/format"
	"github.com/bromosky/aventra/internal/notification"
	"github.com/phpdave11/gofpdf"
)

// InvoicePDF renders a single-page invoice for b and returns the bytes together with a download filename.
func InvoicePDF(b domain.Booking, brand string, depositPercent int) ([]byte, string, error) {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetTitle("Invoice "+b.InvoiceID, true)
	pdf.SetAuthor(brand, true)
	pdf.AddPage()
	// Core fonts are cp1252; names and addresses arrive as UTF-8.
	tr := pdf.UnicodeTranslatorFromDescriptor("")

	pdf.SetFont("Helvetica", "B", 18)
	pdf.Cell(0, 10, "INVOICE")
	pdf.Ln(10)
	pdf.SetFont("Helvetica", "", 11)
	pdf.Cell(0, 6, tr(brand))
	pdf.Ln(10)

	status := b.Status
	if status == "" {
		status = domain.BookingStatusAwaiting
	}

	pdf.SetFont("Helvetica", "", 12)
	line(pdf, tr, "Invoice ID", b.InvoiceID)
	line(pdf, tr, "Dibuat", format.Date(b.CreatedAt))
	line(pdf, tr, "Status", fmt.Sprintf("%s (%s)", status, notification.StatusTitle(status)))
	pdf.Ln(4)

	pdf.SetFont("Helvetica", "B", 12)
	pdf.Cell(0, 7, "Ditagihkan kepada:")
	pdf.Ln(7)

	pdf.SetFont("Helvetica", "", 12)
	line(pdf, tr, "Nama", b.Name)
	line(pdf, tr, "No HP", b.Phone)
	line(pdf, tr, "Email", b.Email)
	pdf.MultiCell(0, 7, tr(fmt.Sprintf("%-12s: %s", "Alamat", safe(b.Address, "-"))), "", "", false)
	pdf.Ln(4)

	pdf.SetFont("Helvetica", "B", 12)
	pdf.Cell(0, 7, "Rincian:")
	pdf.Ln(8)

	pdf.SetFont("Helvetica", "", 11)
	pdf.MultiCell(0, 6, tr(fmt.Sprintf("1) %s, %d orang, tanggal trip %s",
		safe(b.Package, "-"), b.PartySize, safe(format.Date(b.TripDate), "-"))), "", "", false)
	pdf.Ln(2)

	line(pdf, tr, "Total", format.Rupiah(b.Total.Int64()))
	line(pdf, tr, fmt.Sprintf("DP (%d%%)", depositPercent), format.Rupiah(b.Deposit.Int64()))

	pdf.SetFont("Helvetica", "B", 12)
	line(pdf, tr, "Sisa", format.Rupiah(b.Remainder.Int64()))
	pdf.Ln(6)

	pdf.SetFont("Helvetica", "I", 10)
	pdf.MultiCell(0, 6, "Sisa pembayaran dilunasi sebelum keberangkatan. Simpan Invoice ID untuk cek status booking.", "", "", false)

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, "", err
	}

	filename := fmt.Sprintf("INVOICE_%s.pdf", safeFilenamePart(b.InvoiceID))
	return buf.Bytes(), filename, nil
}

func line(pdf *gofpdf.Fpdf, tr func(string) string, label, value string) {
	pdf.Cell(0, 7, tr(fmt.Sprintf("%-12s: %s", label, safe(value, "-"))))
	pdf.Ln(7)
}

func safe(v, fallback string) string {
	v = strings.TrimSpace(v)
	if v == "" {
		return fallback
	}
	return v
}

func safeFilenamePart(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return "invoice"
	}
	var b strings.Builder
	for _, r := range s {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_':
			b.WriteRune(r)
		default:
			b.WriteByte('_')
		}
	}
	return b.String()
}
