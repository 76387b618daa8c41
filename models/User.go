package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// User is a player of the order economy. Name is the user's AtCoder handle
// and is what the judge's submission feed is queried by.
type User struct {
	ID        string    `gorm:"type:uuid;primary_key" json:"id"`
	Name      string    `gorm:"type:varchar(100);unique;not null" json:"name"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (u *User) BeforeCreate(tx *gorm.DB) error {
	if u.ID == "" {
		u.ID = uuid.NewString()
	}
	return nil
}
