package notification

import (
	"fmt"
	"strings"

	"github.com/bromosky/aventra/internal/domain"
	"github.com/bromosky/aventra/internal/format"
	"github.com/bromosky/aventra/internal/pricing"
)

type statusCopy struct {
	title string
	note  string
}

// statusCopies holds the title and closing note per status. Anything not
// listed, MENUNGGU included, gets awaitingCopy.
var statusCopies = map[domain.BookingStatus]statusCopy{
	domain.BookingStatusPaid: {
		title: "Pembayaran Diterima",
		note: "Terima kasih! Pembayaran kamu sudah kami terima.\n" +
			"Tim kami akan melakukan verifikasi, lalu status akan berubah menjadi DIKONFIRMASI.\n",
	},
	domain.BookingStatusConfirmed: {
		title: "Booking Dikonfirmasi",
		note: "Booking kamu sudah DIKONFIRMASI.\n" +
			"Silakan tunggu informasi meeting point / rundown dari admin.\n",
	},
	domain.BookingStatusCancelled: {
		title: "Booking Dibatalkan",
		note: "Booking kamu DIBATALKAN.\n" +
			"Jika ini tidak sesuai, balas email ini atau hubungi admin kami.\n",
	},
}

var awaitingCopy = statusCopy{
	title: "Menunggu Konfirmasi",
	note: "Booking kamu sudah masuk dan sedang MENUNGGU konfirmasi.\n" +
		"Admin akan memproses secepatnya.\n",
}

func copyFor(status domain.BookingStatus) statusCopy {
	if c, ok := statusCopies[status]; ok {
		return c
	}
	return awaitingCopy
}

// StatusTitle is the human title shown next to a status code.
func StatusTitle(status domain.BookingStatus) string {
	return copyFor(status).title
}

// Composer builds customer and admin emails. It does no I/O.
type Composer struct {
	brand           string
	depositFraction float64
}

func NewComposer(brand string, depositFraction float64) *Composer {
	return &Composer{brand: brand, depositFraction: depositFraction}
}

// StatusEmail is sent to the customer when an admin changes the booking status.
func (c *Composer) StatusEmail(b domain.Booking, status domain.BookingStatus) (subject, body string) {
	sc := copyFor(status)
	subject = fmt.Sprintf("[%s] Invoice %s - %s", status, b.InvoiceID, c.brand)

	var sb strings.Builder
	fmt.Fprintf(&sb, "Halo %s,\n\n", b.Name)
	sb.WriteString("Update status booking kamu:\n\n")
	fmt.Fprintf(&sb, "STATUS: %s - %s\n\n", status, sc.title)
	sb.WriteString("Rincian Booking:\n")
	fmt.Fprintf(&sb, "- Invoice: %s\n", b.InvoiceID)
	fmt.Fprintf(&sb, "- Tanggal Trip: %s\n", format.Date(b.TripDate))
	fmt.Fprintf(&sb, "- Paket: %s\n", b.Package)
	fmt.Fprintf(&sb, "- Jumlah: %d\n", b.PartySize)
	fmt.Fprintf(&sb, "- Total: %s\n", format.Rupiah(b.Total.Int64()))
	fmt.Fprintf(&sb, "- DP: %s\n", format.Rupiah(b.Deposit.Int64()))
	fmt.Fprintf(&sb, "- Sisa: %s\n\n", format.Rupiah(b.Remainder.Int64()))
	sb.WriteString("Catatan:\n")
	sb.WriteString(sc.note)
	fmt.Fprintf(&sb, "\nTerima kasih,\n%s\n", c.brand)

	return subject, sb.String()
}

// InitialInvoiceEmail is sent right after a booking has been stored.
func (c *Composer) InitialInvoiceEmail(b domain.Booking) (subject, body string) {
	subject = fmt.Sprintf("Invoice Booking %s - %s", b.InvoiceID, c.brand)

	var sb strings.Builder
	fmt.Fprintf(&sb, "Halo %s,\n\n", b.Name)
	fmt.Fprintf(&sb, "Terima kasih sudah booking di %s.\n\n", c.brand)
	fmt.Fprintf(&sb, "INVOICE: %s\n", b.InvoiceID)
	fmt.Fprintf(&sb, "Tanggal Trip: %s\n", format.Date(b.TripDate))
	fmt.Fprintf(&sb, "Paket: %s\n", b.Package)
	fmt.Fprintf(&sb, "Jumlah: %d\n\n", b.PartySize)
	fmt.Fprintf(&sb, "Total: %s\n", format.Rupiah(b.Total.Int64()))
	fmt.Fprintf(&sb, "DP (%d%%): %s\n", pricing.DepositPercent(c.depositFraction), format.Rupiah(b.Deposit.Int64()))
	fmt.Fprintf(&sb, "Sisa: %s\n\n", format.Rupiah(b.Remainder.Int64()))
	fmt.Fprintf(&sb, "Status: %s\n\n", domain.BookingStatusAwaiting)
	sb.WriteString("Simpan invoice ini untuk cek status.\n\n")
	fmt.Fprintf(&sb, "Salam,\n%s\n", c.brand)

	return subject, sb.String()
}

// NewBookingAlert tells the operator that a booking came in.
func (c *Composer) NewBookingAlert(b domain.Booking) (subject, body string) {
	subject = fmt.Sprintf("Booking baru %s - %s", b.InvoiceID, b.Package)

	var sb strings.Builder
	sb.WriteString("Ada booking baru masuk.\n\n")
	fmt.Fprintf(&sb, "Invoice: %s\n", b.InvoiceID)
	fmt.Fprintf(&sb, "Nama: %s\n", b.Name)
	fmt.Fprintf(&sb, "No HP: %s\n", b.Phone)
	fmt.Fprintf(&sb, "Email: %s\n", b.Email)
	fmt.Fprintf(&sb, "Tanggal Trip: %s\n", format.Date(b.TripDate))
	fmt.Fprintf(&sb, "Paket: %s\n", b.Package)
	fmt.Fprintf(&sb, "Jumlah: %d\n", b.PartySize)
	fmt.Fprintf(&sb, "Total: %s\n", format.Rupiah(b.Total.Int64()))
	if b.ProofURL != "" {
		fmt.Fprintf(&sb, "Bukti transfer: %s\n", b.ProofURL)
	}
	fmt.Fprintf(&sb, "\n%s\n", c.brand)

	return subject, sb.String()
}
