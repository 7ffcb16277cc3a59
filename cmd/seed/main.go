package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"roomrental/internal/config"
	"roomrental/internal/db"
	"roomrental/internal/model"
	"roomrental/internal/repository"
)

// SeedRoomData represents one room in the seed feed.
type SeedRoomData struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	Description string `json:"description"`
	Price       string `json:"price"`
	Location    string `json:"location"`
	Image       string `json:"image"`
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func main() {
	log.Println("Starting seed script...")

	cfg := config.Load()

	gormDB, err := db.NewMySQL(cfg.MySQLDSN)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	log.Println("Connected to database")

	if err := db.Migrate(gormDB); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}
	log.Println("Database migrations completed")

	ctx := context.Background()
	userRepo := repository.NewUserRepository(gormDB)
	roomRepo := repository.NewRoomRepository(gormDB)

	adminEmail := os.Getenv("SEED_ADMIN_EMAIL")
	adminPassword := os.Getenv("SEED_ADMIN_PASSWORD")
	if adminEmail == "" || adminPassword == "" {
		log.Fatal("SEED_ADMIN_EMAIL and SEED_ADMIN_PASSWORD are required")
	}
	admin, created, err := ensureUser(ctx, userRepo, "Administrator", adminEmail, adminPassword, model.RoleAdmin)
	if err != nil {
		log.Fatalf("Failed to seed admin: %v", err)
	}
	log.Printf("Admin account %s (created: %t)", admin.Email, created)

	roomsURL := os.Getenv("SEED_ROOMS_URL")
	if roomsURL == "" {
		log.Println("SEED_ROOMS_URL not set, skipping demo rooms")
		return
	}

	seller, _, err := ensureUser(ctx, userRepo, "Demo Host",
		getEnv("SEED_SELLER_EMAIL", "host@demo.local"),
		getEnv("SEED_SELLER_PASSWORD", "demo-host"),
		model.RoleSeller)
	if err != nil {
		log.Fatalf("Failed to seed demo seller: %v", err)
	}

	log.Printf("Fetching rooms from: %s", roomsURL)
	data, err := fetchRoomsFromAPI(roomsURL)
	if err != nil {
		log.Fatalf("Failed to fetch rooms: %v", err)
	}
	log.Printf("Fetched %d rooms from API", len(data))

	rooms, skipped := toRooms(data, seller.ID)
	if skipped > 0 {
		log.Printf("Skipped %d invalid rooms", skipped)
	}

	log.Println("Seeding rooms into database...")
	seeded, updated, err := seedRooms(ctx, roomRepo, rooms)
	if err != nil {
		log.Fatalf("Failed to seed rooms: %v", err)
	}

	log.Printf("Seed completed successfully!")
	log.Printf("  - New rooms created: %d", seeded)
	log.Printf("  - Existing rooms updated: %d", updated)
	log.Printf("  - Total rooms processed: %d", seeded+updated)
}

// ensureUser returns the user with the given email, creating it if needed.
// An existing user with a different role is an error; roles never change.
func ensureUser(ctx context.Context, repo repository.UserRepository, name, email, password string, role model.Role) (*model.User, bool, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	existing, err := repo.FindByEmail(ctx, email)
	if err == nil {
		if existing.Role != role {
			return nil, false, fmt.Errorf("user %s exists with role %s", email, existing.Role)
		}
		return existing, false, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, false, fmt.Errorf("error checking user %s: %w", email, err)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, false, fmt.Errorf("hash password: %w", err)
	}
	user := &model.User{Name: name, Email: email, PasswordHash: string(hash), Role: role}
	if err := repo.Create(ctx, user); err != nil {
		return nil, false, fmt.Errorf("error creating user %s: %w", email, err)
	}
	return user, true, nil
}

// fetchRoomsFromAPI fetches room data from the seed feed.
func fetchRoomsFromAPI(url string) ([]SeedRoomData, error) {
	client := &http.Client{Timeout: 30 * time.Second}
	resp, err := client.Get(url)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch from API: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("API returned status code: %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}

	var rooms []SeedRoomData
	if err := json.Unmarshal(body, &rooms); err != nil {
		return nil, fmt.Errorf("failed to parse JSON: %w", err)
	}
	return rooms, nil
}

// toRooms converts feed items into rooms owned by sellerID. Items with a
// bad ID or a missing or negative price are skipped.
func toRooms(items []SeedRoomData, sellerID uuid.UUID) ([]model.Room, int) {
	rooms := make([]model.Room, 0, len(items))
	skipped := 0
	for _, item := range items {
		roomID, err := uuid.Parse(item.ID)
		if err != nil {
			log.Printf("Skipping room with invalid UUID: %s", item.ID)
			skipped++
			continue
		}

		price, err := decimal.NewFromString(item.Price)
		if err != nil || price.IsNegative() {
			log.Printf("Skipping room %s with invalid price: %s", item.ID, item.Price)
			skipped++
			continue
		}

		rooms = append(rooms, model.Room{
			ID:          roomID,
			Title:       item.Title,
			Description: item.Description,
			Price:       price.Round(2),
			Location:    item.Location,
			Image:       item.Image,
			SellerID:    sellerID,
		})
	}
	return rooms, skipped
}

// seedRooms creates new rooms and refreshes existing ones.
func seedRooms(ctx context.Context, repo repository.RoomRepository, rooms []model.Room) (seeded int, updated int, err error) {
	for _, room := range rooms {
		existing, err := repo.FindByID(ctx, room.ID)
		if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
			return seeded, updated, fmt.Errorf("error checking room %s: %w", room.ID, err)
		}

		if existing != nil {
			existing.Title = room.Title
			existing.Description = room.Description
			existing.Price = room.Price
			existing.Location = room.Location
			existing.Image = room.Image
			if err := repo.Update(ctx, existing); err != nil {
				return seeded, updated, fmt.Errorf("error updating room %s: %w", room.ID, err)
			}
			updated++
		} else {
			if err := repo.Create(ctx, &room); err != nil {
				return seeded, updated, fmt.Errorf("error creating room %s: %w", room.ID, err)
			}
			seeded++
		}
	}
	return seeded, updated, nil
}
