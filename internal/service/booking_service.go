package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"roomrental/internal/auth"
	apperrors "roomrental/internal/errors"
	"roomrental/internal/events"
	"roomrental/internal/model"
	"roomrental/internal/repository"
)

// maxLookups bounds concurrent user lookups when listing seller bookings.
const maxLookups = 8

// RoomStatus is the caller's view of a room: favorite flag and latest booking.
type RoomStatus struct {
	Favorited      bool           `json:"favorited"`
	Booking        *model.Booking `json:"booking"`
	CanCancel      bool           `json:"can_cancel"`
	SupportMessage string         `json:"support_message,omitempty"`
}

// BookingWithRoom pairs a booking with the room it targets.
type BookingWithRoom struct {
	model.Booking
	Room model.Room `json:"room"`
}

// SellerBooking is a booking as shown to the room's seller.
type SellerBooking struct {
	model.Booking
	RoomTitle   string `json:"room_title"`
	BookerName  string `json:"booker_name"`
	BookerEmail string `json:"booker_email"`
}

// BookingService handles the booking lifecycle.
type BookingService interface {
	CreateBooking(ctx context.Context, buyer auth.Identity, roomID uuid.UUID, startDate, endDate string) (*model.Booking, error)
	RoomStatus(ctx context.Context, caller auth.Identity, roomID uuid.UUID) (*RoomStatus, error)
	GetBooking(ctx context.Context, caller auth.Identity, id uuid.UUID) (*model.Booking, error)
	CancelBooking(ctx context.Context, buyer auth.Identity, id uuid.UUID) error
	DecideBooking(ctx context.Context, seller auth.Identity, id uuid.UUID, status string) (*model.Booking, error)
	ListForBuyer(ctx context.Context, buyer auth.Identity) ([]BookingWithRoom, error)
	ListForSeller(ctx context.Context, seller auth.Identity) ([]SellerBooking, error)
	SupportMessage() string
}

type bookingService struct {
	bookings  repository.BookingRepository
	rooms     repository.RoomRepository
	favorites FavoriteService
	users     UserService
	events    events.Emitter

	supportEmail string
	// Per-room mutexes serializing creation and approval
	roomMutexes sync.Map
}

// NewBookingService creates a new booking service.
func NewBookingService(
	bookings repository.BookingRepository,
	rooms repository.RoomRepository,
	favorites FavoriteService,
	users UserService,
	emitter events.Emitter,
	supportEmail string,
) BookingService {
	return &bookingService{
		bookings:     bookings,
		rooms:        rooms,
		favorites:    favorites,
		users:        users,
		events:       emitter,
		supportEmail: supportEmail,
	}
}

// getMutex returns a mutex for a specific room ID.
func (s *bookingService) getMutex(roomID uuid.UUID) *sync.Mutex {
	value, _ := s.roomMutexes.LoadOrStore(roomID.String(), &sync.Mutex{})
	return value.(*sync.Mutex)
}

func (s *bookingService) SupportMessage() string {
	return fmt.Sprintf("Approved bookings cannot be cancelled online. Please contact support at %s.", s.supportEmail)
}

func (s *bookingService) emit(action events.Action, b *model.Booking) {
	if s.events != nil {
		s.events.Emit(events.NewBookingEvent(action, b))
	}
}

// CreateBooking requests a room for [startDate, endDate) on behalf of a buyer.
func (s *bookingService) CreateBooking(ctx context.Context, buyer auth.Identity, roomID uuid.UUID, startDate, endDate string) (*model.Booking, error) {
	if !buyer.Can(auth.ActionBook) {
		return nil, apperrors.ErrForbidden
	}

	start, err := model.ParseBookingDate(startDate)
	if err != nil {
		return nil, apperrors.ErrInvalidDate
	}
	end, err := model.ParseBookingDate(endDate)
	if err != nil {
		return nil, apperrors.ErrInvalidDate
	}
	if !end.After(start) {
		return nil, apperrors.ErrInvalidDateRange
	}

	room, err := s.rooms.FindByID(ctx, roomID)
	if err != nil {
		return nil, storeErr(err, apperrors.ErrRoomNotFound, "get room")
	}
	if !room.HasSeller() {
		return nil, apperrors.ErrRoomWithoutSeller
	}

	mutex := s.getMutex(roomID)
	mutex.Lock()
	defer mutex.Unlock()

	booking := &model.Booking{
		RoomID:    room.ID,
		UserID:    buyer.UserID,
		SellerID:  room.SellerID,
		StartDate: start,
		EndDate:   end,
		Status:    model.BookingStatusPending,
	}

	err = s.bookings.WithTransaction(ctx, func(ctx context.Context, txRepo repository.BookingRepository) error {
		existing, err := txRepo.FindByUserAndRoom(ctx, buyer.UserID, roomID)
		if err != nil {
			return err
		}
		for _, b := range existing {
			if b.Status.Live() {
				return apperrors.ErrBookingExists
			}
		}

		approved, err := txRepo.ListApprovedForRoomForUpdate(ctx, roomID)
		if err != nil {
			return err
		}
		for _, b := range approved {
			if b.Overlaps(start, end) {
				return apperrors.ErrBookingOverlap
			}
		}

		return txRepo.Create(ctx, booking)
	})
	if err != nil {
		if isDomainErr(err) {
			return nil, err
		}
		return nil, storeErr(err, nil, "create booking")
	}

	s.emit(events.ActionCreated, booking)
	return booking, nil
}

// RoomStatus reports whether the caller favorited the room and the state of
// their most recent booking for it.
func (s *bookingService) RoomStatus(ctx context.Context, caller auth.Identity, roomID uuid.UUID) (*RoomStatus, error) {
	if !caller.Can(auth.ActionViewSession) {
		return nil, apperrors.ErrForbidden
	}

	status := &RoomStatus{}
	if caller.Can(auth.ActionFavorite) {
		favorited, err := s.favorites.IsFavorite(ctx, caller.UserID, roomID)
		if err != nil {
			return nil, err
		}
		status.Favorited = favorited
	}

	bookings, err := s.bookings.FindByUserAndRoom(ctx, caller.UserID, roomID)
	if err != nil {
		return nil, storeErr(err, nil, "load bookings")
	}
	if len(bookings) == 0 {
		return status, nil
	}

	latest := bookings[0]
	status.Booking = &latest
	status.CanCancel = latest.Status.Cancellable()
	if latest.Status == model.BookingStatusApproved {
		status.SupportMessage = s.SupportMessage()
	}
	return status, nil
}

// GetBooking returns a booking visible to its buyer, its seller or an admin.
func (s *bookingService) GetBooking(ctx context.Context, caller auth.Identity, id uuid.UUID) (*model.Booking, error) {
	booking, err := s.bookings.FindByID(ctx, id)
	if err != nil {
		return nil, storeErr(err, apperrors.ErrBookingNotFound, "get booking")
	}
	if !canSee(caller, booking) {
		return nil, apperrors.ErrForbidden
	}
	return booking, nil
}

func canSee(caller auth.Identity, b *model.Booking) bool {
	switch caller.Role {
	case auth.RoleAdmin:
		return true
	case auth.RoleBuyer:
		return b.UserID == caller.UserID
	case auth.RoleSeller:
		return b.SellerID == caller.UserID
	default:
		return false
	}
}

// CancelBooking withdraws a pending or rejected booking. Approved bookings
// stay in place; the buyer has to contact support.
func (s *bookingService) CancelBooking(ctx context.Context, buyer auth.Identity, id uuid.UUID) error {
	if !buyer.Can(auth.ActionBook) {
		return apperrors.ErrForbidden
	}
	booking, err := s.bookings.FindByID(ctx, id)
	if err != nil {
		return storeErr(err, apperrors.ErrBookingNotFound, "get booking")
	}
	if booking.UserID != buyer.UserID {
		return apperrors.ErrNotOwner
	}
	if !booking.Status.Cancellable() {
		return apperrors.ErrBookingApproved
	}

	deleted, err := s.bookings.DeleteInStatus(ctx, id, model.BookingStatusPending, model.BookingStatusRejected)
	if err != nil {
		return storeErr(err, nil, "cancel booking")
	}
	if !deleted {
		// The seller decided in between, or the booking is already gone.
		current, err := s.bookings.FindByID(ctx, id)
		if err != nil {
			return storeErr(err, apperrors.ErrBookingNotFound, "get booking")
		}
		if current.Status == model.BookingStatusApproved {
			return apperrors.ErrBookingApproved
		}
		return apperrors.ErrInvalidTransition
	}

	s.emit(events.ActionCancelled, booking)
	return nil
}

// DecideBooking approves or rejects a pending booking of one of the seller's rooms.
func (s *bookingService) DecideBooking(ctx context.Context, seller auth.Identity, id uuid.UUID, status string) (*model.Booking, error) {
	if !seller.Can(auth.ActionDecideBookings) {
		return nil, apperrors.ErrForbidden
	}
	next, err := model.ParseBookingStatus(status)
	if err != nil || next == model.BookingStatusPending {
		return nil, apperrors.ErrInvalidTransition
	}

	booking, err := s.bookings.FindByID(ctx, id)
	if err != nil {
		return nil, storeErr(err, apperrors.ErrBookingNotFound, "get booking")
	}
	if booking.SellerID != seller.UserID {
		return nil, apperrors.ErrNotOwner
	}
	if !booking.Status.CanTransitionTo(next) {
		return nil, apperrors.ErrInvalidTransition
	}

	if next == model.BookingStatusApproved {
		mutex := s.getMutex(booking.RoomID)
		mutex.Lock()
		defer mutex.Unlock()
	}

	err = s.bookings.WithTransaction(ctx, func(ctx context.Context, txRepo repository.BookingRepository) error {
		if next == model.BookingStatusApproved {
			approved, err := txRepo.ListApprovedForRoomForUpdate(ctx, booking.RoomID)
			if err != nil {
				return err
			}
			for _, b := range approved {
				if b.ID != booking.ID && b.Overlaps(booking.StartDate, booking.EndDate) {
					return apperrors.ErrBookingOverlap
				}
			}
		}

		ok, err := txRepo.UpdateStatus(ctx, booking.ID, model.BookingStatusPending, next)
		if err != nil {
			return err
		}
		if !ok {
			return apperrors.ErrInvalidTransition
		}
		return nil
	})
	if err != nil {
		if isDomainErr(err) {
			return nil, err
		}
		return nil, storeErr(err, nil, "update booking status")
	}

	booking.Status = next
	booking.UpdatedAt = time.Now().UTC()

	action := events.ActionRejected
	if next == model.BookingStatusApproved {
		action = events.ActionApproved
	}
	s.emit(action, booking)
	return booking, nil
}

// ListForBuyer returns the buyer's bookings with their rooms. Bookings of
// rooms that no longer exist are skipped.
func (s *bookingService) ListForBuyer(ctx context.Context, buyer auth.Identity) ([]BookingWithRoom, error) {
	if !buyer.Can(auth.ActionViewBuyerDashboard) {
		return nil, apperrors.ErrForbidden
	}
	bookings, err := s.bookings.ListByUser(ctx, buyer.UserID)
	if err != nil {
		return nil, storeErr(err, nil, "list bookings")
	}

	ids := make([]uuid.UUID, 0, len(bookings))
	for _, b := range bookings {
		ids = append(ids, b.RoomID)
	}
	byID, err := roomsByID(ctx, s.rooms, ids)
	if err != nil {
		return nil, err
	}

	out := make([]BookingWithRoom, 0, len(bookings))
	for _, b := range bookings {
		room, ok := byID[b.RoomID]
		if !ok {
			continue
		}
		out = append(out, BookingWithRoom{Booking: b, Room: room})
	}
	return out, nil
}

// ListForSeller returns bookings of the seller's rooms with the booker's
// name and email.
func (s *bookingService) ListForSeller(ctx context.Context, seller auth.Identity) ([]SellerBooking, error) {
	if !seller.Can(auth.ActionViewSellerDashboard) {
		return nil, apperrors.ErrForbidden
	}
	bookings, err := s.bookings.ListBySeller(ctx, seller.UserID)
	if err != nil {
		return nil, storeErr(err, nil, "list bookings")
	}

	roomIDs := make([]uuid.UUID, 0, len(bookings))
	var userIDs []uuid.UUID
	seen := make(map[uuid.UUID]bool)
	for _, b := range bookings {
		roomIDs = append(roomIDs, b.RoomID)
		if !seen[b.UserID] {
			seen[b.UserID] = true
			userIDs = append(userIDs, b.UserID)
		}
	}

	var mu sync.Mutex
	bookers := make(map[uuid.UUID]*model.User, len(userIDs))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(maxLookups)
	for _, userID := range userIDs {
		userID := userID
		g.Go(func() error {
			user, err := s.users.GetUser(gctx, userID)
			if errors.Is(err, apperrors.ErrUserNotFound) {
				return nil
			}
			if err != nil {
				return err
			}
			mu.Lock()
			bookers[userID] = user
			mu.Unlock()
			return nil
		})
	}

	var rooms map[uuid.UUID]model.Room
	g.Go(func() error {
		var err error
		rooms, err = roomsByID(gctx, s.rooms, roomIDs)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	out := make([]SellerBooking, 0, len(bookings))
	for _, b := range bookings {
		sb := SellerBooking{Booking: b, BookerName: "Unknown"}
		if room, ok := rooms[b.RoomID]; ok {
			sb.RoomTitle = room.Title
		}
		if user := bookers[b.UserID]; user != nil {
			sb.BookerName = user.Name
			sb.BookerEmail = user.Email
		}
		out = append(out, sb)
	}
	return out, nil
}

// isDomainErr reports whether err is one of the sentinel errors returned
// from inside a transaction callback.
func isDomainErr(err error) bool {
	for _, target := range []error{
		apperrors.ErrBookingExists,
		apperrors.ErrBookingOverlap,
		apperrors.ErrInvalidTransition,
	} {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}
