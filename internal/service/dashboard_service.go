package service

import (
	"context"

	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"

	"roomrental/internal/auth"
	apperrors "roomrental/internal/errors"
	"roomrental/internal/model"
	"roomrental/internal/repository"
)

// recentLimit is how many users and rooms the admin dashboard shows.
const recentLimit = 5

// PriceBucket counts rooms whose price falls in [Min, Max]. Max is nil for
// the open-ended top bucket.
type PriceBucket struct {
	Label string           `json:"label"`
	Min   decimal.Decimal  `json:"min"`
	Max   *decimal.Decimal `json:"max,omitempty"`
	Count int              `json:"count"`
}

// BuyerDashboard is the buyer's landing data.
type BuyerDashboard struct {
	Bookings  []BookingWithRoom `json:"bookings"`
	Favorites []model.Room      `json:"favorites"`
}

// SellerDashboard is the seller's landing data.
type SellerDashboard struct {
	Rooms    []model.Room    `json:"rooms"`
	Bookings []SellerBooking `json:"bookings"`
}

// AdminDashboard is the read-only platform summary.
type AdminDashboard struct {
	TotalUsers     int64         `json:"total_users"`
	TotalRooms     int64         `json:"total_rooms"`
	AveragePrice   int64         `json:"average_price"`
	PriceHistogram []PriceBucket `json:"price_histogram"`
	RecentUsers    []model.User  `json:"recent_users"`
	RecentRooms    []model.Room  `json:"recent_rooms"`
}

// DashboardService assembles the per-role dashboards.
type DashboardService interface {
	Buyer(ctx context.Context, buyer auth.Identity) (*BuyerDashboard, error)
	Seller(ctx context.Context, seller auth.Identity) (*SellerDashboard, error)
	Admin(ctx context.Context, admin auth.Identity) (*AdminDashboard, error)
	ListUsers(ctx context.Context, admin auth.Identity) ([]model.User, error)
	ListRooms(ctx context.Context, admin auth.Identity) ([]model.Room, error)
}

type dashboardService struct {
	bookings  BookingService
	favorites FavoriteService
	rooms     RoomService
	userRepo  repository.UserRepository
	roomRepo  repository.RoomRepository
}

// NewDashboardService creates a new dashboard service.
func NewDashboardService(
	bookings BookingService,
	favorites FavoriteService,
	rooms RoomService,
	userRepo repository.UserRepository,
	roomRepo repository.RoomRepository,
) DashboardService {
	return &dashboardService{
		bookings:  bookings,
		favorites: favorites,
		rooms:     rooms,
		userRepo:  userRepo,
		roomRepo:  roomRepo,
	}
}

func (s *dashboardService) Buyer(ctx context.Context, buyer auth.Identity) (*BuyerDashboard, error) {
	if !buyer.Can(auth.ActionViewBuyerDashboard) {
		return nil, apperrors.ErrForbidden
	}

	dash := &BuyerDashboard{}
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		dash.Bookings, err = s.bookings.ListForBuyer(gctx, buyer)
		return err
	})
	g.Go(func() error {
		var err error
		dash.Favorites, err = s.favorites.ListRooms(gctx, buyer)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return dash, nil
}

func (s *dashboardService) Seller(ctx context.Context, seller auth.Identity) (*SellerDashboard, error) {
	if !seller.Can(auth.ActionViewSellerDashboard) {
		return nil, apperrors.ErrForbidden
	}

	dash := &SellerDashboard{}
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		dash.Rooms, err = s.rooms.ListBySeller(gctx, seller)
		return err
	})
	g.Go(func() error {
		var err error
		dash.Bookings, err = s.bookings.ListForSeller(gctx, seller)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return dash, nil
}

func (s *dashboardService) Admin(ctx context.Context, admin auth.Identity) (*AdminDashboard, error) {
	if !admin.Can(auth.ActionViewAdminDashboard) {
		return nil, apperrors.ErrForbidden
	}

	dash := &AdminDashboard{}
	var prices []decimal.Decimal
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		dash.TotalUsers, err = s.userRepo.Count(gctx)
		return err
	})
	g.Go(func() (err error) {
		dash.TotalRooms, err = s.roomRepo.Count(gctx)
		return err
	})
	g.Go(func() (err error) {
		prices, err = s.roomRepo.Prices(gctx)
		return err
	})
	g.Go(func() (err error) {
		dash.RecentUsers, err = s.userRepo.ListRecent(gctx, recentLimit)
		return err
	})
	g.Go(func() (err error) {
		dash.RecentRooms, err = s.roomRepo.ListRecent(gctx, recentLimit)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, storeErr(err, nil, "load admin dashboard")
	}

	dash.AveragePrice = AveragePrice(prices)
	dash.PriceHistogram = PriceHistogram(prices)
	return dash, nil
}

func (s *dashboardService) ListUsers(ctx context.Context, admin auth.Identity) ([]model.User, error) {
	if !admin.Can(auth.ActionViewAdminDashboard) {
		return nil, apperrors.ErrForbidden
	}
	users, err := s.userRepo.ListRecent(ctx, 0)
	if err != nil {
		return nil, storeErr(err, nil, "list users")
	}
	return users, nil
}

func (s *dashboardService) ListRooms(ctx context.Context, admin auth.Identity) ([]model.Room, error) {
	if !admin.Can(auth.ActionViewAdminDashboard) {
		return nil, apperrors.ErrForbidden
	}
	rooms, err := s.roomRepo.ListRecent(ctx, 0)
	if err != nil {
		return nil, storeErr(err, nil, "list rooms")
	}
	return rooms, nil
}

// AveragePrice returns the mean price rounded to the nearest whole unit,
// or 0 when there are no prices.
func AveragePrice(prices []decimal.Decimal) int64 {
	if len(prices) == 0 {
		return 0
	}
	return decimal.Avg(prices[0], prices[1:]...).Round(0).IntPart()
}

var bucketBounds = []struct {
	label    string
	min, max int64
}{
	{"0-5000", 0, 5000},
	{"5001-10000", 5001, 10000},
	{"10001-15000", 10001, 15000},
	{"15001+", 15001, -1},
}

// PriceHistogram counts prices per bucket. Upper bounds are inclusive and
// fractional prices between buckets fall into the higher one.
func PriceHistogram(prices []decimal.Decimal) []PriceBucket {
	buckets := make([]PriceBucket, len(bucketBounds))
	for i, b := range bucketBounds {
		buckets[i] = PriceBucket{Label: b.label, Min: decimal.NewFromInt(b.min)}
		if b.max >= 0 {
			upper := decimal.NewFromInt(b.max)
			buckets[i].Max = &upper
		}
	}

	for _, p := range prices {
		for i := range buckets {
			if buckets[i].Max == nil || p.LessThanOrEqual(*buckets[i].Max) {
				buckets[i].Count++
				break
			}
		}
	}
	return buckets
}
