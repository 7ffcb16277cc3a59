package service

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"roomrental/internal/auth"
	apperrors "roomrental/internal/errors"
	"roomrental/internal/events"
	"roomrental/internal/model"
)

type bookingFixture struct {
	bookings  *MockBookingRepository
	rooms     *MockRoomRepository
	favorites *MockFavoriteRepository
	users     *MockUserRepository
	emitter   *recordingEmitter
	service   BookingService
}

func newBookingFixture() *bookingFixture {
	f := &bookingFixture{
		bookings:  new(MockBookingRepository),
		rooms:     new(MockRoomRepository),
		favorites: new(MockFavoriteRepository),
		users:     new(MockUserRepository),
		emitter:   &recordingEmitter{},
	}
	f.service = NewBookingService(
		f.bookings,
		f.rooms,
		NewFavoriteService(f.favorites, f.rooms),
		NewUserService(f.users, nil),
		f.emitter,
		"help@rooms.test",
	)
	return f
}

func buyerIdentity() auth.Identity {
	return auth.Identity{UserID: uuid.New(), Email: "buyer@example.com", Name: "Buyer", Role: auth.RoleBuyer}
}

func sellerIdentity() auth.Identity {
	return auth.Identity{UserID: uuid.New(), Email: "seller@example.com", Name: "Seller", Role: auth.RoleSeller}
}

func date(s string) time.Time {
	t, _ := time.Parse(model.DateLayout, s)
	return t
}

func TestBookingService_CreateBooking(t *testing.T) {
	buyer := buyerIdentity()
	sellerID := uuid.New()
	room := &model.Room{ID: uuid.New(), Title: "Loft", SellerID: sellerID}

	tests := []struct {
		name          string
		caller        auth.Identity
		start, end    string
		setupMock     func(*bookingFixture)
		expectedError error
	}{
		{
			name:   "creates a pending booking",
			caller: buyer,
			start:  "2024-03-01",
			end:    "2024-03-05",
			setupMock: func(f *bookingFixture) {
				f.rooms.On("FindByID", mock.Anything, room.ID).Return(room, nil)
				f.bookings.On("FindByUserAndRoom", mock.Anything, buyer.UserID, room.ID).Return([]model.Booking{}, nil)
				f.bookings.On("ListApprovedForRoomForUpdate", mock.Anything, room.ID).Return([]model.Booking{
					{StartDate: date("2024-03-05"), EndDate: date("2024-03-08"), Status: model.BookingStatusApproved},
				}, nil)
				f.bookings.On("Create", mock.Anything, mock.AnythingOfType("*model.Booking")).Return(nil)
			},
		},
		{
			name:          "end before start",
			caller:        buyer,
			start:         "2024-03-10",
			end:           "2024-03-05",
			setupMock:     func(f *bookingFixture) {},
			expectedError: apperrors.ErrInvalidDateRange,
		},
		{
			name:          "same day",
			caller:        buyer,
			start:         "2024-03-10",
			end:           "2024-03-10",
			setupMock:     func(f *bookingFixture) {},
			expectedError: apperrors.ErrInvalidDateRange,
		},
		{
			name:          "unparseable date",
			caller:        buyer,
			start:         "next tuesday",
			end:           "2024-03-05",
			setupMock:     func(f *bookingFixture) {},
			expectedError: apperrors.ErrInvalidDate,
		},
		{
			name:          "sellers cannot book",
			caller:        sellerIdentity(),
			start:         "2024-03-01",
			end:           "2024-03-05",
			setupMock:     func(f *bookingFixture) {},
			expectedError: apperrors.ErrForbidden,
		},
		{
			name:          "anonymous cannot book",
			caller:        auth.Anonymous(),
			start:         "2024-03-01",
			end:           "2024-03-05",
			setupMock:     func(f *bookingFixture) {},
			expectedError: apperrors.ErrForbidden,
		},
		{
			name:   "room not found",
			caller: buyer,
			start:  "2024-03-01",
			end:    "2024-03-05",
			setupMock: func(f *bookingFixture) {
				f.rooms.On("FindByID", mock.Anything, room.ID).Return(nil, gorm.ErrRecordNotFound)
			},
			expectedError: apperrors.ErrRoomNotFound,
		},
		{
			name:   "room without seller",
			caller: buyer,
			start:  "2024-03-01",
			end:    "2024-03-05",
			setupMock: func(f *bookingFixture) {
				f.rooms.On("FindByID", mock.Anything, room.ID).Return(&model.Room{ID: room.ID}, nil)
			},
			expectedError: apperrors.ErrRoomWithoutSeller,
		},
		{
			name:   "live booking already held",
			caller: buyer,
			start:  "2024-03-01",
			end:    "2024-03-05",
			setupMock: func(f *bookingFixture) {
				f.rooms.On("FindByID", mock.Anything, room.ID).Return(room, nil)
				f.bookings.On("FindByUserAndRoom", mock.Anything, buyer.UserID, room.ID).Return([]model.Booking{
					{Status: model.BookingStatusPending},
				}, nil)
			},
			expectedError: apperrors.ErrBookingExists,
		},
		{
			name:   "overlaps an approved booking",
			caller: buyer,
			start:  "2024-03-01",
			end:    "2024-03-05",
			setupMock: func(f *bookingFixture) {
				f.rooms.On("FindByID", mock.Anything, room.ID).Return(room, nil)
				f.bookings.On("FindByUserAndRoom", mock.Anything, buyer.UserID, room.ID).Return([]model.Booking{
					{Status: model.BookingStatusRejected},
				}, nil)
				f.bookings.On("ListApprovedForRoomForUpdate", mock.Anything, room.ID).Return([]model.Booking{
					{StartDate: date("2024-03-04"), EndDate: date("2024-03-06"), Status: model.BookingStatusApproved},
				}, nil)
			},
			expectedError: apperrors.ErrBookingOverlap,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newBookingFixture()
			tt.setupMock(f)

			booking, err := f.service.CreateBooking(context.Background(), tt.caller, room.ID, tt.start, tt.end)

			if tt.expectedError != nil {
				assert.ErrorIs(t, err, tt.expectedError)
				assert.Nil(t, booking)
				assert.Empty(t, f.emitter.actions())
			} else {
				require.NoError(t, err)
				assert.Equal(t, model.BookingStatusPending, booking.Status)
				assert.Equal(t, sellerID, booking.SellerID)
				assert.Equal(t, buyer.UserID, booking.UserID)
				assert.Equal(t, time.UTC, booking.StartDate.Location())
				assert.Equal(t, date("2024-03-01"), booking.StartDate)
				assert.Equal(t, []events.Action{events.ActionCreated}, f.emitter.actions())
			}

			f.rooms.AssertExpectations(t)
			f.bookings.AssertExpectations(t)
		})
	}
}

func TestBookingService_CancelBooking(t *testing.T) {
	buyer := buyerIdentity()
	bookingID := uuid.New()
	cancellable := []model.BookingStatus{model.BookingStatusPending, model.BookingStatusRejected}

	tests := []struct {
		name          string
		caller        auth.Identity
		setupMock     func(*MockBookingRepository)
		expectedError error
	}{
		{
			name:   "pending booking is removed",
			caller: buyer,
			setupMock: func(m *MockBookingRepository) {
				m.On("FindByID", mock.Anything, bookingID).Return(&model.Booking{ID: bookingID, UserID: buyer.UserID, Status: model.BookingStatusPending}, nil)
				m.On("DeleteInStatus", mock.Anything, bookingID, cancellable).Return(true, nil)
			},
		},
		{
			name:   "rejected booking is removed",
			caller: buyer,
			setupMock: func(m *MockBookingRepository) {
				m.On("FindByID", mock.Anything, bookingID).Return(&model.Booking{ID: bookingID, UserID: buyer.UserID, Status: model.BookingStatusRejected}, nil)
				m.On("DeleteInStatus", mock.Anything, bookingID, cancellable).Return(true, nil)
			},
		},
		{
			name:   "approved booking is refused",
			caller: buyer,
			setupMock: func(m *MockBookingRepository) {
				m.On("FindByID", mock.Anything, bookingID).Return(&model.Booking{ID: bookingID, UserID: buyer.UserID, Status: model.BookingStatusApproved}, nil)
			},
			expectedError: apperrors.ErrBookingApproved,
		},
		{
			name:   "approved while cancelling",
			caller: buyer,
			setupMock: func(m *MockBookingRepository) {
				m.On("FindByID", mock.Anything, bookingID).Return(&model.Booking{ID: bookingID, UserID: buyer.UserID, Status: model.BookingStatusPending}, nil).Once()
				m.On("DeleteInStatus", mock.Anything, bookingID, cancellable).Return(false, nil)
				m.On("FindByID", mock.Anything, bookingID).Return(&model.Booking{ID: bookingID, UserID: buyer.UserID, Status: model.BookingStatusApproved}, nil).Once()
			},
			expectedError: apperrors.ErrBookingApproved,
		},
		{
			name:   "someone else's booking",
			caller: buyer,
			setupMock: func(m *MockBookingRepository) {
				m.On("FindByID", mock.Anything, bookingID).Return(&model.Booking{ID: bookingID, UserID: uuid.New(), Status: model.BookingStatusPending}, nil)
			},
			expectedError: apperrors.ErrNotOwner,
		},
		{
			name:   "missing booking",
			caller: buyer,
			setupMock: func(m *MockBookingRepository) {
				m.On("FindByID", mock.Anything, bookingID).Return(nil, gorm.ErrRecordNotFound)
			},
			expectedError: apperrors.ErrBookingNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newBookingFixture()
			tt.setupMock(f.bookings)

			err := f.service.CancelBooking(context.Background(), tt.caller, bookingID)

			if tt.expectedError != nil {
				assert.ErrorIs(t, err, tt.expectedError)
			} else {
				require.NoError(t, err)
				assert.Equal(t, []events.Action{events.ActionCancelled}, f.emitter.actions())
			}
			f.bookings.AssertExpectations(t)
		})
	}
}

func TestBookingService_DecideBooking(t *testing.T) {
	seller := sellerIdentity()
	roomID := uuid.New()
	bookingID := uuid.New()
	pending := func() *model.Booking {
		return &model.Booking{
			ID: bookingID, RoomID: roomID, UserID: uuid.New(), SellerID: seller.UserID,
			StartDate: date("2024-05-01"), EndDate: date("2024-05-04"), Status: model.BookingStatusPending,
		}
	}

	tests := []struct {
		name          string
		caller        auth.Identity
		status        string
		setupMock     func(*MockBookingRepository)
		expectedError error
		expectedEvent events.Action
	}{
		{
			name:   "approve",
			caller: seller,
			status: "approved",
			setupMock: func(m *MockBookingRepository) {
				m.On("FindByID", mock.Anything, bookingID).Return(pending(), nil)
				m.On("ListApprovedForRoomForUpdate", mock.Anything, roomID).Return([]model.Booking{}, nil)
				m.On("UpdateStatus", mock.Anything, bookingID, model.BookingStatusPending, model.BookingStatusApproved).Return(true, nil)
			},
			expectedEvent: events.ActionApproved,
		},
		{
			name:   "reject",
			caller: seller,
			status: "rejected",
			setupMock: func(m *MockBookingRepository) {
				m.On("FindByID", mock.Anything, bookingID).Return(pending(), nil)
				m.On("UpdateStatus", mock.Anything, bookingID, model.BookingStatusPending, model.BookingStatusRejected).Return(true, nil)
			},
			expectedEvent: events.ActionRejected,
		},
		{
			name:          "back to pending is not a decision",
			caller:        seller,
			status:        "pending",
			setupMock:     func(m *MockBookingRepository) {},
			expectedError: apperrors.ErrInvalidTransition,
		},
		{
			name:   "already decided",
			caller: seller,
			status: "rejected",
			setupMock: func(m *MockBookingRepository) {
				b := pending()
				b.Status = model.BookingStatusApproved
				m.On("FindByID", mock.Anything, bookingID).Return(b, nil)
			},
			expectedError: apperrors.ErrInvalidTransition,
		},
		{
			name:   "another seller's booking",
			caller: sellerIdentity(),
			status: "approved",
			setupMock: func(m *MockBookingRepository) {
				m.On("FindByID", mock.Anything, bookingID).Return(pending(), nil)
			},
			expectedError: apperrors.ErrNotOwner,
		},
		{
			name:          "buyers cannot decide",
			caller:        buyerIdentity(),
			status:        "approved",
			setupMock:     func(m *MockBookingRepository) {},
			expectedError: apperrors.ErrForbidden,
		},
		{
			name:   "approval overlapping another approved booking",
			caller: seller,
			status: "approved",
			setupMock: func(m *MockBookingRepository) {
				m.On("FindByID", mock.Anything, bookingID).Return(pending(), nil)
				m.On("ListApprovedForRoomForUpdate", mock.Anything, roomID).Return([]model.Booking{
					{ID: uuid.New(), StartDate: date("2024-05-03"), EndDate: date("2024-05-10"), Status: model.BookingStatusApproved},
				}, nil)
			},
			expectedError: apperrors.ErrBookingOverlap,
		},
		{
			name:   "decided concurrently",
			caller: seller,
			status: "rejected",
			setupMock: func(m *MockBookingRepository) {
				m.On("FindByID", mock.Anything, bookingID).Return(pending(), nil)
				m.On("UpdateStatus", mock.Anything, bookingID, model.BookingStatusPending, model.BookingStatusRejected).Return(false, nil)
			},
			expectedError: apperrors.ErrInvalidTransition,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newBookingFixture()
			tt.setupMock(f.bookings)

			booking, err := f.service.DecideBooking(context.Background(), tt.caller, bookingID, tt.status)

			if tt.expectedError != nil {
				assert.ErrorIs(t, err, tt.expectedError)
				assert.Nil(t, booking)
				assert.Empty(t, f.emitter.actions())
			} else {
				require.NoError(t, err)
				assert.Equal(t, model.BookingStatus(tt.status), booking.Status)
				assert.Equal(t, []events.Action{tt.expectedEvent}, f.emitter.actions())
			}
			f.bookings.AssertExpectations(t)
		})
	}
}

func TestBookingService_ApprovedBookingVisibleToBuyer(t *testing.T) {
	f := newBookingFixture()
	buyer := buyerIdentity()
	seller := sellerIdentity()
	roomID := uuid.New()
	booking := &model.Booking{
		ID: uuid.New(), RoomID: roomID, UserID: buyer.UserID, SellerID: seller.UserID,
		StartDate: date("2024-06-01"), EndDate: date("2024-06-03"), Status: model.BookingStatusPending,
	}

	f.bookings.On("FindByID", mock.Anything, booking.ID).Return(booking, nil)
	f.bookings.On("ListApprovedForRoomForUpdate", mock.Anything, roomID).Return([]model.Booking{}, nil)
	f.bookings.On("UpdateStatus", mock.Anything, booking.ID, model.BookingStatusPending, model.BookingStatusApproved).Return(true, nil)

	approved, err := f.service.DecideBooking(context.Background(), seller, booking.ID, "approved")
	require.NoError(t, err)

	f.favorites.On("Exists", mock.Anything, model.FavoriteKey(buyer.UserID, roomID)).Return(false, nil)
	f.bookings.On("FindByUserAndRoom", mock.Anything, buyer.UserID, roomID).Return([]model.Booking{*approved}, nil)

	status, err := f.service.RoomStatus(context.Background(), buyer, roomID)
	require.NoError(t, err)
	require.NotNil(t, status.Booking)
	assert.Equal(t, model.BookingStatusApproved, status.Booking.Status)
	assert.False(t, status.CanCancel)
	assert.Contains(t, status.SupportMessage, "help@rooms.test")
}

func TestBookingService_RoomStatus(t *testing.T) {
	buyer := buyerIdentity()
	roomID := uuid.New()

	t.Run("no booking", func(t *testing.T) {
		f := newBookingFixture()
		f.favorites.On("Exists", mock.Anything, model.FavoriteKey(buyer.UserID, roomID)).Return(true, nil)
		f.bookings.On("FindByUserAndRoom", mock.Anything, buyer.UserID, roomID).Return([]model.Booking{}, nil)

		status, err := f.service.RoomStatus(context.Background(), buyer, roomID)
		require.NoError(t, err)
		assert.True(t, status.Favorited)
		assert.Nil(t, status.Booking)
		assert.False(t, status.CanCancel)
	})

	t.Run("newest booking wins", func(t *testing.T) {
		f := newBookingFixture()
		f.favorites.On("Exists", mock.Anything, mock.Anything).Return(false, nil)
		f.bookings.On("FindByUserAndRoom", mock.Anything, buyer.UserID, roomID).Return([]model.Booking{
			{Status: model.BookingStatusRejected},
			{Status: model.BookingStatusApproved},
		}, nil)

		status, err := f.service.RoomStatus(context.Background(), buyer, roomID)
		require.NoError(t, err)
		assert.Equal(t, model.BookingStatusRejected, status.Booking.Status)
		assert.True(t, status.CanCancel)
		assert.Empty(t, status.SupportMessage)
	})

	t.Run("anonymous", func(t *testing.T) {
		f := newBookingFixture()
		_, err := f.service.RoomStatus(context.Background(), auth.Anonymous(), roomID)
		assert.ErrorIs(t, err, apperrors.ErrForbidden)
	})
}

func TestBookingService_ListForBuyerSkipsDeletedRooms(t *testing.T) {
	f := newBookingFixture()
	buyer := buyerIdentity()
	kept := model.Room{ID: uuid.New(), Title: "Kept"}
	gone := uuid.New()

	f.bookings.On("ListByUser", mock.Anything, buyer.UserID).Return([]model.Booking{
		{ID: uuid.New(), RoomID: gone},
		{ID: uuid.New(), RoomID: kept.ID},
	}, nil)
	f.rooms.On("FindByIDs", mock.Anything, []uuid.UUID{gone, kept.ID}).Return([]model.Room{kept}, nil)

	list, err := f.service.ListForBuyer(context.Background(), buyer)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "Kept", list[0].Room.Title)
}

func TestBookingService_ListForSeller(t *testing.T) {
	f := newBookingFixture()
	seller := sellerIdentity()
	room := model.Room{ID: uuid.New(), Title: "Cabin"}
	alice := &model.User{ID: uuid.New(), Name: "Alice", Email: "alice@example.com"}
	ghost := uuid.New()

	f.bookings.On("ListBySeller", mock.Anything, seller.UserID).Return([]model.Booking{
		{ID: uuid.New(), RoomID: room.ID, UserID: alice.ID},
		{ID: uuid.New(), RoomID: room.ID, UserID: ghost},
		{ID: uuid.New(), RoomID: room.ID, UserID: alice.ID},
	}, nil)
	f.rooms.On("FindByIDs", mock.Anything, mock.Anything).Return([]model.Room{room}, nil)
	f.users.On("FindByID", mock.Anything, alice.ID).Return(alice, nil).Once()
	f.users.On("FindByID", mock.Anything, ghost).Return(nil, gorm.ErrRecordNotFound).Once()

	list, err := f.service.ListForSeller(context.Background(), seller)
	require.NoError(t, err)
	require.Len(t, list, 3)
	assert.Equal(t, "Alice", list[0].BookerName)
	assert.Equal(t, "alice@example.com", list[0].BookerEmail)
	assert.Equal(t, "Unknown", list[1].BookerName)
	assert.Equal(t, "Cabin", list[2].RoomTitle)
	f.users.AssertExpectations(t)
}

func TestBookingService_GetBooking(t *testing.T) {
	buyer := buyerIdentity()
	seller := sellerIdentity()
	admin := auth.Identity{UserID: uuid.New(), Role: auth.RoleAdmin}
	booking := &model.Booking{ID: uuid.New(), UserID: buyer.UserID, SellerID: seller.UserID}

	tests := []struct {
		name    string
		caller  auth.Identity
		allowed bool
	}{
		{"buyer", buyer, true},
		{"seller", seller, true},
		{"admin", admin, true},
		{"other buyer", buyerIdentity(), false},
		{"other seller", sellerIdentity(), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newBookingFixture()
			f.bookings.On("FindByID", mock.Anything, booking.ID).Return(booking, nil)

			got, err := f.service.GetBooking(context.Background(), tt.caller, booking.ID)
			if tt.allowed {
				require.NoError(t, err)
				assert.Equal(t, booking.ID, got.ID)
			} else {
				assert.ErrorIs(t, err, apperrors.ErrForbidden)
			}
		})
	}
}
