package auth

import (
	"context"

	"github.com/google/uuid"

	"roomrental/internal/model"
)

// Role is the closed set of roles an identity can hold.
// RoleAnonymous is never persisted; it describes unauthenticated callers.
type Role int

const (
	RoleAnonymous Role = iota
	RoleBuyer
	RoleSeller
	RoleAdmin
)

func (r Role) String() string {
	switch r {
	case RoleAnonymous:
		return "anonymous"
	case RoleBuyer:
		return string(model.RoleBuyer)
	case RoleSeller:
		return string(model.RoleSeller)
	case RoleAdmin:
		return string(model.RoleAdmin)
	default:
		return "unknown"
	}
}

// MarshalText renders the role by name in JSON.
func (r Role) MarshalText() ([]byte, error) {
	return []byte(r.String()), nil
}

// RoleOf maps a stored user role onto the identity variant.
// Unrecognized stored values grant nothing.
func RoleOf(r model.Role) Role {
	switch r {
	case model.RoleBuyer:
		return RoleBuyer
	case model.RoleSeller:
		return RoleSeller
	case model.RoleAdmin:
		return RoleAdmin
	default:
		return RoleAnonymous
	}
}

// Action is an operation subject to role-based authorization.
type Action int

const (
	ActionBrowse Action = iota
	ActionViewSession
	ActionFavorite
	ActionBook
	ActionViewBuyerDashboard
	ActionManageRooms
	ActionDecideBookings
	ActionViewSellerDashboard
	ActionViewAdminDashboard
)

// Identity is the authenticated (or anonymous) caller of a request.
type Identity struct {
	UserID uuid.UUID `json:"user_id"`
	Email  string    `json:"email"`
	Name   string    `json:"name"`
	Role   Role      `json:"role"`
}

// Anonymous returns the identity of an unauthenticated caller.
func Anonymous() Identity {
	return Identity{Role: RoleAnonymous}
}

// IdentityOf builds the identity for a stored user.
func IdentityOf(u *model.User) Identity {
	return Identity{
		UserID: u.ID,
		Email:  u.Email,
		Name:   u.Name,
		Role:   RoleOf(u.Role),
	}
}

// Authenticated reports whether the identity belongs to a signed-in user.
func (id Identity) Authenticated() bool {
	return id.Role != RoleAnonymous && id.UserID != uuid.Nil
}

// Can reports whether the identity may perform the action.
func (id Identity) Can(a Action) bool {
	switch id.Role {
	case RoleAnonymous:
		return a == ActionBrowse
	case RoleBuyer:
		switch a {
		case ActionBrowse, ActionViewSession, ActionFavorite, ActionBook, ActionViewBuyerDashboard:
			return true
		}
		return false
	case RoleSeller:
		switch a {
		case ActionBrowse, ActionViewSession, ActionManageRooms, ActionDecideBookings, ActionViewSellerDashboard:
			return true
		}
		return false
	case RoleAdmin:
		switch a {
		case ActionBrowse, ActionViewSession, ActionViewAdminDashboard:
			return true
		}
		return false
	default:
		return false
	}
}

// DashboardPath is the landing page for the identity's role.
func (id Identity) DashboardPath() string {
	switch id.Role {
	case RoleBuyer:
		return "/user"
	case RoleSeller:
		return "/seller"
	case RoleAdmin:
		return "/admin"
	default:
		return "/login"
	}
}

type identityKey struct{}

// WithIdentity returns a context carrying the identity.
func WithIdentity(ctx context.Context, id Identity) context.Context {
	return context.WithValue(ctx, identityKey{}, id)
}

// FromContext returns the identity stored in ctx, or Anonymous.
func FromContext(ctx context.Context) Identity {
	if id, ok := ctx.Value(identityKey{}).(Identity); ok {
		return id
	}
	return Anonymous()
}
