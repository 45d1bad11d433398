package domain

import (
	"bytes"
	"encoding/json"
	"strconv"
	"strings"
)

type BookingStatus string

const (
	BookingStatusAwaiting  BookingStatus = "MENUNGGU"
	BookingStatusPaid      BookingStatus = "SUDAH BAYAR"
	BookingStatusConfirmed BookingStatus = "DIKONFIRMASI"
	BookingStatusCancelled BookingStatus = "DIBATALKAN"
)

// BookingStatuses lists the values offered on the admin dashboard, in display order.
var BookingStatuses = []BookingStatus{
	BookingStatusAwaiting,
	BookingStatusPaid,
	BookingStatusConfirmed,
	BookingStatusCancelled,
}

// Booking mirrors one spreadsheet row. JSON names are the store's column keys.
type Booking struct {
	InvoiceID string        `json:"invoice_id"`
	CreatedAt string        `json:"created_at"`
	Name      string        `json:"nama"`
	Phone     string        `json:"no_hp"`
	Email     string        `json:"email"`
	Package   string        `json:"paket"`
	PartySize Number        `json:"jumlah"`
	TripDate  string        `json:"tanggal"`
	Address   string        `json:"alamat"`
	Total     Number        `json:"total"`
	Deposit   Number        `json:"dp"`
	Remainder Number        `json:"sisa"`
	ProofURL  string        `json:"bukti_url"`
	Status    BookingStatus `json:"status"`
}

// Number is an integer that tolerates the loose typing of spreadsheet cells:
// JSON numbers, numeric strings, empty strings and null all decode, anything
// unreadable decodes to zero.
type Number int64

func (n *Number) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*n = 0
		return nil
	}

	raw := string(data)
	if data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			*n = 0
			return nil
		}
		raw = strings.TrimSpace(s)
	}

	if v, err := strconv.ParseInt(raw, 10, 64); err == nil {
		*n = Number(v)
		return nil
	}
	if f, err := strconv.ParseFloat(raw, 64); err == nil {
		*n = Number(int64(f))
		return nil
	}
	*n = 0
	return nil
}

func (n Number) Int64() int64 { return int64(n) }

// Text is a string cell that may come back from the sheet as a number, a
// boolean or null. Numbers keep their JSON spelling, null becomes "".
type Text string

func (t *Text) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*t = ""
		return nil
	}
	if data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*t = Text(s)
		return nil
	}
	*t = Text(data)
	return nil
}

func (b *Booking) UnmarshalJSON(data []byte) error {
	var row struct {
		InvoiceID Text   `json:"invoice_id"`
		CreatedAt Text   `json:"created_at"`
		Name      Text   `json:"nama"`
		Phone     Text   `json:"no_hp"`
		Email     Text   `json:"email"`
		Package   Text   `json:"paket"`
		PartySize Number `json:"jumlah"`
		TripDate  Text   `json:"tanggal"`
		Address   Text   `json:"alamat"`
		Total     Number `json:"total"`
		Deposit   Number `json:"dp"`
		Remainder Number `json:"sisa"`
		ProofURL  Text   `json:"bukti_url"`
		Status    Text   `json:"status"`
	}
	if err := json.Unmarshal(data, &row); err != nil {
		return err
	}

	*b = Booking{
		InvoiceID: string(row.InvoiceID),
		CreatedAt: string(row.CreatedAt),
		Name:      string(row.Name),
		Phone:     string(row.Phone),
		Email:     string(row.Email),
		Package:   string(row.Package),
		PartySize: row.PartySize,
		TripDate:  string(row.TripDate),
		Address:   string(row.Address),
		Total:     row.Total,
		Deposit:   row.Deposit,
		Remainder: row.Remainder,
		ProofURL:  string(row.ProofURL),
		Status:    BookingStatus(row.Status),
	}
	return nil
}
