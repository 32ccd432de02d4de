package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// PasswordResetToken records an issued reset token by its JWT ID. The row is
// deleted when the token is used, so a token verifies at most once even while
// its signature and expiry are still valid.
type PasswordResetToken struct {
	gorm.Model
	JTI       string    `gorm:"type:varchar(64);uniqueIndex;not null"`
	UserID    uuid.UUID `gorm:"type:uuid;not null"`
	User      User      `gorm:"foreignKey:UserID"`
	ExpiresAt time.Time `gorm:"not null"`
}
