package models

import "time"

// Roles.
const (
	RoleSeeker = "seeker"
	RoleHost   = "host"
)

// Genders.
const (
	GenderMale            = "male"
	GenderFemale          = "female"
	GenderPreferNotToSay  = "prefer_not_to_say"
	PreferredGenderAny    = "any"
	PreferredGenderMale   = GenderMale
	PreferredGenderFemale = GenderFemale
)

// User is a registered account. Accounts are deactivated, never deleted.
type User struct {
	ID           int64     `db:"id" json:"user_id"`
	FullName     string    `db:"full_name" json:"full_name"`
	Email        string    `db:"email" json:"email"`
	PhoneNumber  string    `db:"phone_number" json:"phone_number"`
	Role         string    `db:"role" json:"role"`
	Gender       string    `db:"gender" json:"gender"`
	IsVerified   bool      `db:"is_verified" json:"is_verified"`
	IsActive     bool      `db:"is_active" json:"is_active"`
	PasswordHash string    `db:"password_hash" json:"-"`
	CreatedAt    time.Time `db:"created_at" json:"created_at"`
}

// PublicUser is the subset of a user shown to other users.
type PublicUser struct {
	ID         int64  `json:"user_id"`
	FullName   string `json:"full_name"`
	Role       string `json:"role"`
	Gender     string `json:"gender"`
	IsVerified bool   `json:"is_verified"`
}

// Public strips contact details.
func (u User) Public() PublicUser {
	return PublicUser{
		ID:         u.ID,
		FullName:   u.FullName,
		Role:       u.Role,
		Gender:     u.Gender,
		IsVerified: u.IsVerified,
	}
}

// UserUpdate holds the profile fields a user may change. Nil fields are left untouched.
type UserUpdate struct {
	FullName    *string `json:"full_name" binding:"omitempty,min=1,max=120"`
	PhoneNumber *string `json:"phone_number" binding:"omitempty,max=32"`
	Gender      *string `json:"gender" binding:"omitempty,oneof=male female prefer_not_to_say"`
	Role        *string `json:"role" binding:"omitempty,oneof=seeker host"`
}

// RegisterInput is the body of POST /register/.
type RegisterInput struct {
	FullName    string `json:"full_name" binding:"required,max=120"`
	Email       string `json:"email" binding:"required,email"`
	Password    string `json:"password" binding:"required,min=8,max=72"`
	PhoneNumber string `json:"phone_number" binding:"max=32"`
	Role        string `json:"role" binding:"omitempty,oneof=seeker host"`
	Gender      string `json:"gender" binding:"omitempty,oneof=male female prefer_not_to_say"`
}

// LoginInput is the body of POST /login/.
type LoginInput struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// ChangePasswordInput is the body of POST /users/me/password/.
type ChangePasswordInput struct {
	OldPassword string `json:"old_password" binding:"required"`
	NewPassword string `json:"new_password" binding:"required,min=8,max=72"`
}

// UserDetail is a profile with the owner's preferences embedded.
type UserDetail struct {
	PublicUser
	Preferences *PreferencesView `json:"preferences"`
}
