package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// User types recognized by the platform.
const (
	UserTypeClient    = "client"
	UserTypeCounselor = "counselor"
)

// User represents an account on the platform, either a client or a counselor.
// Counselor-specific fields are empty for clients.
type User struct {
	ID        string `gorm:"primaryKey" json:"id"`
	FirstName string `gorm:"not null" json:"first_name"`
	LastName  string `gorm:"not null" json:"last_name"`
	Email     string `gorm:"uniqueIndex;not null" json:"email"`
	Password  string `gorm:"not null" json:"-"`
	Phone     string `json:"phone,omitempty"`
	UserType  string `gorm:"not null;index" json:"user_type"`
	Avatar    string `json:"avatar"`

	// Counselor profile
	LicenseNumber  string         `json:"license_number,omitempty"`
	Specialization string         `json:"specialization,omitempty"`
	Experience     string         `json:"experience,omitempty"`
	Bio            string         `json:"bio,omitempty"`
	HourlyRate     float64        `json:"hourly_rate,omitempty"`
	Availability   pq.StringArray `gorm:"type:text[]" json:"availability,omitempty"`

	Rating        float64 `json:"rating"`
	TotalSessions int     `json:"total_sessions"`
	IsActive      bool    `gorm:"default:true" json:"is_active"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// BeforeCreate generates a UUID for the user if one has not been set.
func (u *User) BeforeCreate(tx *gorm.DB) (err error) {
	if u.ID == "" {
		u.ID = uuid.New().String()
	}
	return
}

// SetPassword hashes the plaintext password with bcrypt and stores the hash.
func (u *User) SetPassword(plain string) error {
	hash, err := bcrypt.GenerateFromPassword([]byte(plain), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	u.Password = string(hash)
	return nil
}

// CheckPassword compares a candidate password against the stored hash.
func (u *User) CheckPassword(candidate string) bool {
	return bcrypt.CompareHashAndPassword([]byte(u.Password), []byte(candidate)) == nil
}

// IsCounselor reports whether the account is a counselor account.
func (u *User) IsCounselor() bool {
	return u.UserType == UserTypeCounselor
}
