package handler

import (
	"time"

	"github.com/clinichub/accounts-api/internal/core/domain"
)

// --- Request / Response types ---
//
// Response types are owned by the transport layer and intentionally separate
// from domain types so the JSON contract is not coupled to internal changes.
// The secret hash has no representation here at all.

type createUserRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
	RoleID   int64  `json:"role_id"`
}

// updateUserRequest is a partial patch: absent fields stay untouched.
type updateUserRequest struct {
	Name     *string `json:"name"`
	Email    *string `json:"email"`
	Password *string `json:"password"`
	RoleID   *int64  `json:"role_id"`
}

type userResponse struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	RoleID    int64     `json:"role_id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type listUsersResponse struct {
	Data []userResponse `json:"data"`
}

func toUserResponse(u *domain.User) userResponse {
	return userResponse{
		ID:        u.ID,
		Name:      u.Name,
		Email:     u.Email,
		RoleID:    u.RoleID,
		CreatedAt: u.CreatedAt,
		UpdatedAt: u.UpdatedAt,
	}
}

type createRoleRequest struct {
	Name string `json:"name"`
}

type roleResponse struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

type listRolesResponse struct {
	Data []roleResponse `json:"data"`
}
