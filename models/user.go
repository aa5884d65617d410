package models

import "time"

type Role string

const (
	RoleAdmin   Role = "ADMIN"
	RoleAnalyst Role = "ANALYST"
	RoleViewer  Role = "VIEWER"
)

func (r Role) Valid() bool {
	switch r {
	case RoleAdmin, RoleAnalyst, RoleViewer:
		return true
	}
	return false
}

// User is an account row in Postgres. TokenVersion only ever increases;
// every previously issued token dies the moment it does. RequestedRole is
// the free-form label supplied at signup (for example "Investment"); it is
// descriptive only and never grants permissions, which come from the
// membership role.
type User struct {
	ID            string     `json:"id"`
	Name          string     `json:"name"`
	Email         string     `json:"email"`
	PasswordHash  string     `json:"-"`
	RequestedRole string     `json:"requested_role,omitempty"`
	IsActive      bool       `json:"is_active"`
	TokenVersion  int        `json:"-"`
	LastSeenAt    *time.Time `json:"last_seen_at,omitempty"`
	CreatedAt     time.Time  `json:"created_at"`
}

type Organization struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
}

// Membership links a user to an organization under a role. A user holds at
// most one membership per organization.
type Membership struct {
	UserID         string    `json:"user_id"`
	OrganizationID string    `json:"organization_id"`
	Role           Role      `json:"role"`
	CreatedAt      time.Time `json:"created_at"`
}

// TeamMember is the membership row joined with its user for team listings.
type TeamMember struct {
	UserID     string     `json:"user_id"`
	Name       string     `json:"name"`
	Email      string     `json:"email"`
	Role       Role       `json:"role"`
	IsActive   bool       `json:"is_active"`
	JoinedAt   time.Time  `json:"joined_at"`
	LastSeenAt *time.Time `json:"last_seen_at,omitempty"`
}

// Identity is the enriched per-request principal produced by the auth
// middleware after the live account re-check.
type Identity struct {
	UserID         string `json:"user_id"`
	Email          string `json:"email"`
	Name           string `json:"name"`
	OrganizationID string `json:"organization_id,omitempty"`
	Role           Role   `json:"role,omitempty"`
}

func (id *Identity) IsAdmin() bool {
	return id.Role == RoleAdmin
}
