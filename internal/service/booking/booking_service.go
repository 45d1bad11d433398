package booking

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/bromosky/aventra/internal/domain"
	"github.com/bromosky/aventra/internal/format"
	"github.com/bromosky/aventra/internal/kafka"
	"github.com/bromosky/aventra/internal/notification"
	"github.com/bromosky/aventra/internal/pricing"
	"github.com/bromosky/aventra/internal/repository"
	"github.com/bromosky/aventra/internal/upload"
	"github.com/go-playground/validator/v10"
)

const createdAtLayout = "2006-01-02 15:04:05"

const (
	msgIncomplete    = "Mohon lengkapi semua data."
	msgPartySize     = "Jumlah peserta minimal 1 orang."
	msgUnknownPkg    = "Paket tidak valid. Silakan pilih dari daftar."
	msgStatusMissing = "invoice_id dan status wajib diisi."
)

type BookingUseCase interface {
	CreateBooking(ctx context.Context, input CreateBookingInput) (*domain.Booking, error)
	GetBooking(ctx context.Context, invoiceID string) (*domain.Booking, error)
	ListBookings(ctx context.Context) ([]DashboardRow, error)
	UpdateStatus(ctx context.Context, input UpdateStatusInput) (*StatusUpdateResult, error)
	Packages() []domain.Package
	DepositPercent() int
}

type Mailer interface {
	Enabled() bool
	Send(ctx context.Context, to, subject, body string) error
}

type ProofStorage interface {
	Save(ctx context.Context, invoiceID, filename string, content io.Reader) (string, error)
	Remove(ctx context.Context, url string) error
}

type Producer interface {
	Publish(ctx context.Context, topic, key string, value interface{}) error
}

type IDGenerator interface {
	Generate() string
}

type BookingService struct {
	bookings   repository.BookingRepository
	calculator *pricing.Calculator
	ids        IDGenerator
	composer   *notification.Composer
	mailer     Mailer
	proofs     ProofStorage
	producer   Producer
	eventTopic string
	logger     *slog.Logger
	now        func() time.Time
	validate   *validator.Validate
}

type ProofFile struct {
	Filename string
	Content  io.Reader
}

type CreateBookingInput struct {
	Name      string `validate:"required"`
	Phone     string `validate:"required"`
	Email     string `validate:"required"`
	Package   string `validate:"required"`
	PartySize int    `validate:"min=1"`
	TripDate  string `validate:"required"`
	Address   string `validate:"required"`
	Proof     *ProofFile
}

func (in *CreateBookingInput) trim() {
	in.Name = strings.TrimSpace(in.Name)
	in.Phone = strings.TrimSpace(in.Phone)
	in.Email = strings.TrimSpace(in.Email)
	in.Package = strings.TrimSpace(in.Package)
	in.TripDate = strings.TrimSpace(in.TripDate)
	in.Address = strings.TrimSpace(in.Address)
}

type UpdateStatusInput struct {
	InvoiceID string
	Status    domain.BookingStatus
}

// StatusUpdateResult describes a stored status change. EmailErr is set when the
// status was saved but the customer email could not be sent.
type StatusUpdateResult struct {
	InvoiceID      string
	OldStatus      domain.BookingStatus
	NewStatus      domain.BookingStatus
	EmailAttempted bool
	EmailSent      bool
	EmailErr       error
}

// DashboardRow is a stored booking prepared for the admin table.
type DashboardRow struct {
	domain.Booking
	TripDateDisplay string
}

type BookingServiceOption func(*BookingService)

func WithEventProducer(producer Producer, topic string) BookingServiceOption {
	return func(s *BookingService) {
		s.producer = producer
		s.eventTopic = topic
	}
}

func WithProofStorage(proofs ProofStorage) BookingServiceOption {
	return func(s *BookingService) {
		s.proofs = proofs
	}
}

func WithLogger(logger *slog.Logger) BookingServiceOption {
	return func(s *BookingService) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithClock sets the source of creation timestamps; pass a function that returns local time.
func WithClock(now func() time.Time) BookingServiceOption {
	return func(s *BookingService) {
		if now != nil {
			s.now = now
		}
	}
}

func NewBookingService(
	bookings repository.BookingRepository,
	calculator *pricing.Calculator,
	ids IDGenerator,
	composer *notification.Composer,
	mailer Mailer,
	opts ...BookingServiceOption,
) *BookingService {
	service := &BookingService{
		bookings:   bookings,
		calculator: calculator,
		ids:        ids,
		composer:   composer,
		mailer:     mailer,
		logger:     slog.Default(),
		now:        time.Now,
		validate:   validator.New(validator.WithRequiredStructEnabled()),
	}
	for _, opt := range opts {
		opt(service)
	}
	return service
}

func (s *BookingService) CreateBooking(ctx context.Context, input CreateBookingInput) (*domain.Booking, error) {
	input.trim()
	pkg, err := s.validateCreate(input)
	if err != nil {
		return nil, err
	}

	total := pricing.Total(pkg, input.PartySize)
	deposit, remainder := s.calculator.Split(total)

	booking := &domain.Booking{
		InvoiceID: s.ids.Generate(),
		CreatedAt: s.now().Format(createdAtLayout),
		Name:      input.Name,
		Phone:     input.Phone,
		Email:     input.Email,
		Package:   pkg.Name,
		PartySize: domain.Number(input.PartySize),
		TripDate:  input.TripDate,
		Address:   input.Address,
		Total:     domain.Number(total),
		Deposit:   domain.Number(deposit),
		Remainder: domain.Number(remainder),
		Status:    domain.BookingStatusAwaiting,
	}

	if input.Proof != nil && input.Proof.Filename != "" {
		if s.proofs == nil {
			s.logger.Warn("proof upload ignored, no storage configured", "invoice_id", booking.InvoiceID)
		} else {
			url, err := s.proofs.Save(ctx, booking.InvoiceID, input.Proof.Filename, input.Proof.Content)
			if err != nil {
				if errors.Is(err, upload.ErrExtension) || errors.Is(err, upload.ErrContent) || errors.Is(err, upload.ErrTooLarge) {
					return nil, domain.ValidationError{Field: "bukti", Msg: err.Error()}
				}
				return nil, fmt.Errorf("failed to store proof of payment: %w", err)
			}
			booking.ProofURL = url
		}
	}

	if err := s.bookings.Create(ctx, *booking); err != nil {
		s.discardProof(ctx, booking)
		return nil, err
	}
	s.logger.Info("booking created", "invoice_id", booking.InvoiceID, "package", booking.Package, "total", booking.Total.Int64())

	if s.mailer != nil && s.mailer.Enabled() {
		subject, body := s.composer.InitialInvoiceEmail(*booking)
		if err := s.mailer.Send(ctx, booking.Email, subject, body); err != nil {
			s.logger.Warn("failed to send invoice email", "invoice_id", booking.InvoiceID, "error", err)
		}
	}

	if err := s.publish(ctx, kafka.EventBookingCreated, booking, ""); err != nil {
		s.logger.Warn("failed to publish event", "event", kafka.EventBookingCreated, "invoice_id", booking.InvoiceID, "error", err)
	}
	return booking, nil
}

// discardProof removes a proof saved for a booking the store never accepted.
func (s *BookingService) discardProof(ctx context.Context, booking *domain.Booking) {
	if booking.ProofURL == "" || s.proofs == nil {
		return
	}
	if err := s.proofs.Remove(ctx, booking.ProofURL); err != nil {
		s.logger.Warn("failed to remove orphaned proof", "invoice_id", booking.InvoiceID, "url", booking.ProofURL, "error", err)
	}
}

func (s *BookingService) validateCreate(input CreateBookingInput) (domain.Package, error) {
	if err := s.validate.Struct(input); err != nil {
		var verrs validator.ValidationErrors
		if !errors.As(err, &verrs) || len(verrs) == 0 {
			return domain.Package{}, err
		}
		return domain.Package{}, validationMessage(verrs)
	}

	pkg, ok := s.calculator.Catalog().Lookup(input.Package)
	if !ok {
		return domain.Package{}, domain.ValidationError{Field: "paket", Msg: msgUnknownPkg}
	}
	if !pkg.Allows(input.PartySize) {
		return domain.Package{}, domain.ValidationError{
			Field: "jumlah",
			Msg:   fmt.Sprintf("Jumlah peserta melebihi kapasitas paket ini (maks %d orang).", pkg.MaxPartySize),
		}
	}
	if input.Proof != nil && input.Proof.Filename != "" && !upload.AllowedFile(input.Proof.Filename) {
		return domain.Package{}, domain.ValidationError{Field: "bukti", Msg: upload.ErrExtension.Error()}
	}
	return pkg, nil
}

// validationMessage reports missing fields before malformed ones.
func validationMessage(verrs validator.ValidationErrors) error {
	for _, fe := range verrs {
		if fe.Tag() == "required" {
			return domain.ValidationError{Field: fe.Field(), Msg: msgIncomplete}
		}
	}
	fe := verrs[0]
	switch fe.Field() {
	case "PartySize":
		return domain.ValidationError{Field: "jumlah", Msg: msgPartySize}
	default:
		return domain.ValidationError{Field: fe.Field(), Msg: msgIncomplete}
	}
}

func (s *BookingService) GetBooking(ctx context.Context, invoiceID string) (*domain.Booking, error) {
	invoiceID = strings.TrimSpace(invoiceID)
	if invoiceID == "" {
		return nil, domain.ValidationError{Field: "invoice_id", Msg: "Masukkan Invoice ID dulu ya."}
	}
	return s.bookings.GetByInvoiceID(ctx, invoiceID)
}

// ListBookings returns every stored booking. Rows without a status show as
// MENUNGGU, and rows stored without a deposit get one computed from the total.
func (s *BookingService) ListBookings(ctx context.Context) ([]DashboardRow, error) {
	bookings, err := s.bookings.List(ctx)
	if err != nil {
		return nil, err
	}

	rows := make([]DashboardRow, 0, len(bookings))
	for _, b := range bookings {
		if b.Status == "" {
			b.Status = domain.BookingStatusAwaiting
		}
		if b.Deposit == 0 && b.Total > 0 {
			deposit, remainder := s.calculator.Split(b.Total.Int64())
			b.Deposit = domain.Number(deposit)
			b.Remainder = domain.Number(remainder)
		}
		rows = append(rows, DashboardRow{Booking: b, TripDateDisplay: format.Date(b.TripDate)})
	}
	return rows, nil
}

func (s *BookingService) UpdateStatus(ctx context.Context, input UpdateStatusInput) (*StatusUpdateResult, error) {
	invoiceID := strings.TrimSpace(input.InvoiceID)
	status := domain.BookingStatus(strings.TrimSpace(string(input.Status)))
	if invoiceID == "" || status == "" {
		return nil, domain.ValidationError{Field: "status", Msg: msgStatusMissing}
	}

	before, err := s.bookings.GetByInvoiceID(ctx, invoiceID)
	if err != nil {
		s.logger.Warn("could not load booking before status update", "invoice_id", invoiceID, "error", err)
		before = nil
	}

	if err := s.bookings.UpdateStatus(ctx, invoiceID, status); err != nil {
		return nil, err
	}

	result := &StatusUpdateResult{InvoiceID: invoiceID, NewStatus: status}
	if before != nil {
		result.OldStatus = domain.BookingStatus(strings.TrimSpace(string(before.Status)))
	}
	s.logger.Info("booking status updated", "invoice_id", invoiceID, "old_status", result.OldStatus, "new_status", status)

	if s.mailer != nil && s.mailer.Enabled() && before != nil && result.OldStatus != status {
		result.EmailAttempted = true
		subject, body := s.composer.StatusEmail(*before, status)
		if err := s.mailer.Send(ctx, before.Email, subject, body); err != nil {
			s.logger.Warn("failed to send status email", "invoice_id", invoiceID, "error", err)
			result.EmailErr = err
		} else {
			result.EmailSent = true
		}
	}

	event := domain.Booking{InvoiceID: invoiceID}
	if before != nil {
		event = *before
	}
	event.Status = status
	if err := s.publish(ctx, kafka.EventBookingStatusChanged, &event, result.OldStatus); err != nil {
		s.logger.Warn("failed to publish event", "event", kafka.EventBookingStatusChanged, "invoice_id", invoiceID, "error", err)
	}
	return result, nil
}

func (s *BookingService) Packages() []domain.Package {
	return s.calculator.Catalog().Packages()
}

func (s *BookingService) DepositPercent() int {
	return s.calculator.DepositPercent()
}

func (s *BookingService) publish(ctx context.Context, eventType string, booking *domain.Booking, oldStatus domain.BookingStatus) error {
	if s.producer == nil || s.eventTopic == "" {
		return nil
	}
	event := kafka.BookingEvent{
		Type:       eventType,
		InvoiceID:  booking.InvoiceID,
		Name:       booking.Name,
		Phone:      booking.Phone,
		Email:      booking.Email,
		Package:    booking.Package,
		PartySize:  booking.PartySize.Int64(),
		TripDate:   booking.TripDate,
		Total:      booking.Total.Int64(),
		Deposit:    booking.Deposit.Int64(),
		Remainder:  booking.Remainder.Int64(),
		ProofURL:   booking.ProofURL,
		Status:     string(booking.Status),
		OldStatus:  string(oldStatus),
		OccurredAt: s.now(),
	}
	return s.producer.Publish(ctx, s.eventTopic, booking.InvoiceID, event)
}

var _ BookingUseCase = (*BookingService)(nil)
