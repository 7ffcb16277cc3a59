package service

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	"roomrental/internal/auth"
	"roomrental/internal/cache"
	apperrors "roomrental/internal/errors"
	"roomrental/internal/model"
	"roomrental/internal/repository"
)

const userCacheTTL = 5 * time.Minute

// UserService reads user records and resolves request identities.
type UserService interface {
	GetUser(ctx context.Context, id uuid.UUID) (*model.User, error)
	// ResolveIdentity re-derives the caller's identity and role from the users table.
	ResolveIdentity(ctx context.Context, id uuid.UUID) (auth.Identity, error)
}

type userService struct {
	repo  repository.UserRepository
	cache *cache.Client
}

// NewUserService builds a UserService with repository and cache.
func NewUserService(repo repository.UserRepository, cache *cache.Client) UserService {
	return &userService{repo: repo, cache: cache}
}

func userCacheKey(id uuid.UUID) string {
	return fmt.Sprintf("user:%s", id.String())
}

// GetUser returns a user by ID. Cached copies never carry the password hash.
func (s *userService) GetUser(ctx context.Context, id uuid.UUID) (*model.User, error) {
	if data, _ := s.cache.Get(ctx, userCacheKey(id)); data != nil {
		var cached model.User
		if err := json.Unmarshal(data, &cached); err == nil {
			return &cached, nil
		}
	}

	user, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, storeErr(err, apperrors.ErrUserNotFound, "get user")
	}

	if payload, err := json.Marshal(user); err == nil {
		_ = s.cache.Set(ctx, userCacheKey(id), payload, userCacheTTL)
	}
	return user, nil
}

func (s *userService) ResolveIdentity(ctx context.Context, id uuid.UUID) (auth.Identity, error) {
	user, err := s.GetUser(ctx, id)
	if err != nil {
		if err == apperrors.ErrUserNotFound {
			return auth.Anonymous(), apperrors.ErrSessionInvalid
		}
		return auth.Anonymous(), err
	}
	return auth.IdentityOf(user), nil
}
