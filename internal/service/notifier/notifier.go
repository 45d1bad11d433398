package notifier

import (
	"context"
	"log/slog"

	"github.com/bromosky/aventra/internal/domain"
	"github.com/bromosky/aventra/internal/kafka"
	"github.com/bromosky/aventra/internal/notification"
)

type Mailer interface {
	Enabled() bool
	Send(ctx context.Context, to, subject, body string) error
}

// AdminNotifier mails the operator about every new booking read from the events topic.
type AdminNotifier struct {
	mailer     Mailer
	composer   *notification.Composer
	adminEmail string
	logger     *slog.Logger
}

func NewAdminNotifier(mailer Mailer, composer *notification.Composer, adminEmail string, logger *slog.Logger) *AdminNotifier {
	if logger == nil {
		logger = slog.Default()
	}
	return &AdminNotifier{mailer: mailer, composer: composer, adminEmail: adminEmail, logger: logger}
}

// Handle never returns an error for a single event, so a mail outage cannot
// stop the consumer.
func (n *AdminNotifier) Handle(ctx context.Context, event kafka.BookingEvent) error {
	if event.Type != kafka.EventBookingCreated {
		n.logger.Debug("ignoring event", "type", event.Type, "invoice_id", event.InvoiceID)
		return nil
	}
	if n.adminEmail == "" || !n.mailer.Enabled() {
		n.logger.Debug("admin alert skipped, mail not configured", "invoice_id", event.InvoiceID)
		return nil
	}

	subject, body := n.composer.NewBookingAlert(bookingFromEvent(event))
	if err := n.mailer.Send(ctx, n.adminEmail, subject, body); err != nil {
		n.logger.Warn("failed to send admin alert", "invoice_id", event.InvoiceID, "error", err)
		return nil
	}
	n.logger.Info("admin alert sent", "invoice_id", event.InvoiceID)
	return nil
}

func bookingFromEvent(e kafka.BookingEvent) domain.Booking {
	return domain.Booking{
		InvoiceID: e.InvoiceID,
		Name:      e.Name,
		Phone:     e.Phone,
		Email:     e.Email,
		Package:   e.Package,
		PartySize: domain.Number(e.PartySize),
		TripDate:  e.TripDate,
		Total:     domain.Number(e.Total),
		Deposit:   domain.Number(e.Deposit),
		Remainder: domain.Number(e.Remainder),
		ProofURL:  e.ProofURL,
		Status:    domain.BookingStatus(e.Status),
	}
}
