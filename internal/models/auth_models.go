package models

import "time"

// User roles. Roles form a closed set; per-user deviations go through
// PermissionOverride rows rather than free-form permission blobs.
const (
	RoleAdmin    = "ADMIN"
	RoleOwner    = "OWNER"
	RoleManager  = "MANAGER"
	RoleStaff    = "STAFF"
	RoleCustomer = "CUSTOMER"
)

// User represents a staff member, owner or admin account.
type User struct {
	ID                  int64      `json:"id"`
	RestaurantID        *int64     `json:"restaurant_id,omitempty" db:"restaurant_id"` // nil for platform admins
	Email               string     `json:"email" db:"email"`
	PasswordHash        string     `json:"-" db:"password_hash"`
	FirstName           string     `json:"first_name" db:"first_name"`
	LastName            string     `json:"last_name" db:"last_name"`
	PhoneNumber         *string    `json:"phone_number,omitempty" db:"phone_number"`
	Role                string     `json:"role" db:"role"`
	StaffType           *string    `json:"staff_type,omitempty" db:"staff_type"`
	IsActive            bool       `json:"is_active" db:"is_active"`
	FailedLoginAttempts int        `json:"-" db:"failed_login_attempts"`
	LockedUntil         *time.Time `json:"-" db:"locked_until"`
	LastLoginAt         *time.Time `json:"last_login_at,omitempty" db:"last_login_at"`
	CreatedAt           time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt           time.Time  `json:"updated_at" db:"updated_at"`
}

// FullName returns the user's display name.
func (u *User) FullName() string {
	return u.FirstName + " " + u.LastName
}

// IsLocked reports whether the account is locked out at the given instant.
func (u *User) IsLocked(now time.Time) bool {
	return u.LockedUntil != nil && now.Before(*u.LockedUntil)
}

// PermissionOverride grants or revokes a single capability for one user,
// on top of the closed per-role capability set.
type PermissionOverride struct {
	ID         int64     `json:"id"`
	UserID     int64     `json:"user_id" db:"user_id"`
	Capability string    `json:"capability" db:"capability"`
	Allowed    bool      `json:"allowed" db:"allowed"`
	CreatedAt  time.Time `json:"created_at" db:"created_at"`
}
