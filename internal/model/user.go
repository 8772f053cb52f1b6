package model

import "time"

// Plan is the entitlement tier for a user. Pro unlocks PDF export and
// unlimited recording length.
type Plan string

const (
	PlanFree Plan = "free"
	PlanPro  Plan = "pro"
)

// GuestUserID is the sentinel owner ID carried by notes generated in an
// unauthenticated session. Notes with this owner are never persisted.
const GuestUserID uint = 0

// User represents an account in the system. Created on first sign-in and
// mutated only to change Plan; never deleted.
type User struct {
	ID       uint    `json:"id" gorm:"primaryKey"`
	Username string  `json:"username" gorm:"size:255;not null;uniqueIndex:idx_users_username"`
	Plan     Plan    `json:"plan" gorm:"type:varchar(10);not null;default:'free'"`
	GoogleID *string `json:"google_id,omitempty" gorm:"size:64;uniqueIndex:idx_users_google_id"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// IsPro reports whether the user is on the pro plan.
func (u *User) IsPro() bool {
	return u.Plan == PlanPro
}
