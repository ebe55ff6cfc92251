package models

import (
	"time"

	"github.com/google/uuid"
)

type User struct {
	ID         uuid.UUID `json:"id" gorm:"type:uuid;primaryKey"`
	GoogleID   string    `json:"googleId" gorm:"index"`
	Email      string    `json:"email" gorm:"index"`
	Name       string    `json:"name"`
	ImageURL   string    `json:"imageUrl"`
	Subscribed bool      `json:"subscribed" gorm:"default:false"`
	IsAdmin    bool      `json:"isAdmin" gorm:"default:false"`
	AuthKey    string    `json:"-" gorm:"not null"`
	CreatedAt  time.Time `json:"createdAt" gorm:"autoCreateTime"`
	UpdatedAt  time.Time `json:"updatedAt" gorm:"autoUpdateTime"`
}

// Field returns the value of a queryable column.
func (u *User) Field(name string) (any, bool) {
	switch name {
	case "id":
		return u.ID, true
	case "google_id":
		return u.GoogleID, true
	case "email":
		return u.Email, true
	}
	return nil, false
}
