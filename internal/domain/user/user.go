package user

import (
	"time"

	"github.com/google/uuid"
)

// DefaultPriority outranks every registered source, so a human edit wins
// over dataset claims until a higher-priority actor overrides it.
const DefaultPriority = 10000

// User is an editor account. Author-attributed claims reference it and
// borrow its priority during resolution.
type User struct {
	ID          uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	Email       string    `gorm:"size:320;not null;uniqueIndex;column:email" json:"email"`
	Password    string    `gorm:"not null;column:password" json:"-"`
	DisplayName string    `gorm:"size:200;not null;column:display_name" json:"display_name"`
	Priority    int       `gorm:"not null;default:10000" json:"priority"`
	IsAdmin     bool      `gorm:"not null;default:false" json:"is_admin"`

	CreatedAt time.Time `gorm:"not null" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null" json:"updated_at"`
}

func (User) TableName() string { return "user" }
