package service

import (
	"bytes"
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/phpdave11/gofpdf"

	"roomrental/internal/auth"
	apperrors "roomrental/internal/errors"
	"roomrental/internal/model"
)

// DocumentService renders booking documents.
type DocumentService interface {
	// BookingConfirmation returns a PDF confirming an approved booking.
	BookingConfirmation(ctx context.Context, caller auth.Identity, bookingID uuid.UUID) (filename string, pdf []byte, err error)
}

type documentService struct {
	bookings     BookingService
	rooms        RoomService
	users        UserService
	supportEmail string
}

// NewDocumentService creates a new document service.
func NewDocumentService(bookings BookingService, rooms RoomService, users UserService, supportEmail string) DocumentService {
	return &documentService{
		bookings:     bookings,
		rooms:        rooms,
		users:        users,
		supportEmail: supportEmail,
	}
}

func (s *documentService) BookingConfirmation(ctx context.Context, caller auth.Identity, bookingID uuid.UUID) (string, []byte, error) {
	if caller.Role == auth.RoleAdmin {
		return "", nil, apperrors.ErrForbidden
	}
	booking, err := s.bookings.GetBooking(ctx, caller, bookingID)
	if err != nil {
		return "", nil, err
	}
	if booking.Status != model.BookingStatusApproved {
		return "", nil, apperrors.ErrBookingNotApproved
	}

	room, err := s.rooms.GetRoom(ctx, booking.RoomID)
	if err != nil {
		return "", nil, err
	}
	buyer, err := s.users.GetUser(ctx, booking.UserID)
	if err != nil {
		return "", nil, err
	}

	data, err := buildConfirmationPDF(booking, room, buyer, s.supportEmail)
	if err != nil {
		return "", nil, fmt.Errorf("render confirmation: %w", err)
	}
	return fmt.Sprintf("booking-%s.pdf", booking.ID.String()[:8]), data, nil
}

func buildConfirmationPDF(b *model.Booking, room *model.Room, buyer *model.User, supportEmail string) ([]byte, error) {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetTitle("Booking Confirmation", false)
	pdf.AddPage()
	pdf.SetFont("Helvetica", "B", 18)
	pdf.Cell(0, 10, "BOOKING CONFIRMATION")
	pdf.Ln(12)

	nights := int(b.EndDate.Sub(b.StartDate).Hours() / 24)
	lines := []string{
		"Booking   : " + b.ID.String(),
		"Guest     : " + buyer.Name + " <" + buyer.Email + ">",
		"Room      : " + room.Title,
		"Location  : " + room.Location,
		"Check-in  : " + b.StartDate.UTC().Format(model.DateLayout),
		"Check-out : " + b.EndDate.UTC().Format(model.DateLayout),
		fmt.Sprintf("Nights    : %d", nights),
		"Price     : " + room.Price.StringFixed(2) + " per night",
		"Status    : " + string(b.Status),
	}
	pdf.SetFont("Helvetica", "", 12)
	for _, line := range lines {
		pdf.Cell(0, 7, line)
		pdf.Ln(7)
	}

	pdf.Ln(6)
	pdf.SetFont("Helvetica", "I", 10)
	pdf.MultiCell(0, 6, fmt.Sprintf(
		"Issued %s. Approved bookings cannot be cancelled online; contact %s for changes.",
		time.Now().UTC().Format("2006-01-02 15:04 MST"), supportEmail), "", "", false)

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
