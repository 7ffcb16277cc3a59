package repository

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"roomrental/internal/model"
)

func newMockDB(t *testing.T) (*gorm.DB, sqlmock.Sqlmock) {
	t.Helper()
	sqlDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = sqlDB.Close() })

	gdb, err := gorm.Open(mysql.New(mysql.Config{
		Conn:                      sqlDB,
		SkipInitializeWithVersion: true,
	}), &gorm.Config{
		SkipDefaultTransaction: true,
		Logger:                 logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	return gdb, mock
}

func TestBookingRepository_UpdateStatus(t *testing.T) {
	tests := []struct {
		name     string
		affected int64
		want     bool
	}{
		{name: "booking still pending", affected: 1, want: true},
		{name: "booking already decided", affected: 0, want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gdb, mock := newMockDB(t)
			repo := NewBookingRepository(gdb)
			id := uuid.New()

			mock.ExpectExec("UPDATE `bookings` SET .*WHERE id = \\? AND status = \\?").
				WithArgs(model.BookingStatusApproved, sqlmock.AnyArg(), id.String(), model.BookingStatusPending).
				WillReturnResult(sqlmock.NewResult(0, tt.affected))

			ok, err := repo.UpdateStatus(context.Background(), id, model.BookingStatusPending, model.BookingStatusApproved)
			require.NoError(t, err)
			assert.Equal(t, tt.want, ok)
			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestBookingRepository_DeleteInStatus(t *testing.T) {
	gdb, mock := newMockDB(t)
	repo := NewBookingRepository(gdb)
	id := uuid.New()

	mock.ExpectExec("DELETE FROM `bookings` WHERE id = \\? AND status IN \\(\\?,\\?\\)").
		WillReturnResult(sqlmock.NewResult(0, 0))

	ok, err := repo.DeleteInStatus(context.Background(), id, model.BookingStatusPending, model.BookingStatusRejected)
	require.NoError(t, err)
	assert.False(t, ok)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestBookingRepository_FindByUserAndRoom(t *testing.T) {
	gdb, mock := newMockDB(t)
	repo := NewBookingRepository(gdb)
	userID, roomID, sellerID := uuid.New(), uuid.New(), uuid.New()
	bookingID := uuid.New()
	start := time.Date(2024, 3, 5, 0, 0, 0, 0, time.UTC)
	end := time.Date(2024, 3, 10, 0, 0, 0, 0, time.UTC)

	rows := sqlmock.NewRows([]string{"id", "room_id", "user_id", "seller_id", "start_date", "end_date", "status", "created_at", "updated_at"}).
		AddRow(bookingID.String(), roomID.String(), userID.String(), sellerID.String(), start, end, "pending", start, start)
	mock.ExpectQuery("SELECT \\* FROM `bookings` WHERE user_id = \\? AND room_id = \\? ORDER BY created_at DESC").
		WillReturnRows(rows)

	bookings, err := repo.FindByUserAndRoom(context.Background(), userID, roomID)
	require.NoError(t, err)
	require.Len(t, bookings, 1)
	assert.Equal(t, bookingID, bookings[0].ID)
	assert.Equal(t, model.BookingStatusPending, bookings[0].Status)
	assert.True(t, end.Equal(bookings[0].EndDate))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestFavoriteRepository_InsertIgnoresDuplicates(t *testing.T) {
	gdb, mock := newMockDB(t)
	repo := NewFavoriteRepository(gdb)
	fav := model.NewFavorite(uuid.New(), uuid.New())

	mock.ExpectExec("INSERT INTO `favorites` .*ON DUPLICATE KEY UPDATE").
		WillReturnResult(sqlmock.NewResult(0, 0))

	require.NoError(t, repo.Insert(context.Background(), fav))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestFavoriteRepository_Exists(t *testing.T) {
	gdb, mock := newMockDB(t)
	repo := NewFavoriteRepository(gdb)

	mock.ExpectQuery("SELECT count\\(\\*\\) FROM `favorites` WHERE id = \\?").
		WillReturnRows(sqlmock.NewRows([]string{"count(*)"}).AddRow(1))

	ok, err := repo.Exists(context.Background(), uuid.New())
	require.NoError(t, err)
	assert.True(t, ok)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRoomRepository_Search(t *testing.T) {
	gdb, mock := newMockDB(t)
	repo := NewRoomRepository(gdb)
	now := time.Now().UTC()

	rows := sqlmock.NewRows([]string{"id", "title", "description", "price", "location", "image", "seller_id", "created_at", "updated_at"}).
		AddRow(uuid.NewString(), "Lake view", "Quiet room by the lake", "7000.00", "Pune", "https://img/1.jpg", uuid.NewString(), now, now)
	mock.ExpectQuery("SELECT \\* FROM `rooms` WHERE .*LOWER\\(title\\) LIKE \\? OR LOWER\\(location\\) LIKE \\?.*ORDER BY created_at DESC").
		WillReturnRows(rows)

	rooms, err := repo.Search(context.Background(), "  LAKE ", 20, 0)
	require.NoError(t, err)
	require.Len(t, rooms, 1)
	assert.Equal(t, "Lake view", rooms[0].Title)
	assert.Equal(t, "7000", rooms[0].Price.String())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRoomRepository_FindByIDsEmpty(t *testing.T) {
	gdb, mock := newMockDB(t)
	repo := NewRoomRepository(gdb)

	rooms, err := repo.FindByIDs(context.Background(), nil)
	require.NoError(t, err)
	assert.Empty(t, rooms)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestEscapeLike(t *testing.T) {
	assert.Equal(t, `100\%`, escapeLike("100%"))
	assert.Equal(t, `a\_b`, escapeLike("a_b"))
	assert.Equal(t, `c\\d`, escapeLike(`c\d`))
}
