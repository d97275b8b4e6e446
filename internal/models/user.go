package models

import (
	"time"

	"golang.org/x/crypto/bcrypt"
)

// User is an account at the identity boundary. Email is the login label.
type User struct {
	BaseModel
	Email      string `gorm:"uniqueIndex;size:255;not null" json:"email"`
	Password   string `gorm:"size:255;not null" json:"-"` // Never send password in JSON
	GivenName  string `gorm:"size:100;not null" json:"givenName"`
	FamilyName string `gorm:"size:100;not null" json:"familyName"`
	Birthdate  string `gorm:"size:10;not null" json:"birthdate"`
	IsVerified bool   `gorm:"default:false" json:"isVerified"`

	RefreshTokens []RefreshToken `gorm:"foreignKey:UserID" json:"-"`
}

// UserSanitized represents the user data that is safe to send in API responses.
type UserSanitized struct {
	ID         string    `json:"id"`
	Email      string    `json:"email"`
	GivenName  string    `json:"givenName"`
	FamilyName string    `json:"familyName"`
	Birthdate  string    `json:"birthdate"`
	IsVerified bool      `json:"isVerified"`
	CreatedAt  time.Time `json:"createdAt"`
	UpdatedAt  time.Time `json:"updatedAt"`
}

// Identity is the current authenticated user as the portal sees it.
type Identity struct {
	UserID  string `json:"userId"`
	LoginID string `json:"loginId"`
}

// SetPassword hashes a password and sets it on the user
func (u *User) SetPassword(password string) error {
	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	u.Password = string(hashedPassword)
	return nil
}

// CheckPassword compares a password with the user's hashed password
func (u *User) CheckPassword(password string) bool {
	err := bcrypt.CompareHashAndPassword([]byte(u.Password), []byte(password))
	return err == nil
}

// Identity returns the id and login label carried in tokens.
func (u *User) Identity() Identity {
	return Identity{UserID: u.ID, LoginID: u.Email}
}

// Sanitize creates a UserSanitized struct from a User model, excluding sensitive data.
func (u *User) Sanitize() UserSanitized {
	return UserSanitized{
		ID:         u.ID,
		Email:      u.Email,
		GivenName:  u.GivenName,
		FamilyName: u.FamilyName,
		Birthdate:  u.Birthdate,
		IsVerified: u.IsVerified,
		CreatedAt:  u.CreatedAt,
		UpdatedAt:  u.UpdatedAt,
	}
}
