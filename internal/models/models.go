package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// DefaultProfileImage is referenced by users who never uploaded a picture.
const DefaultProfileImage = "default.jpg"

type User struct {
	ID           uuid.UUID `gorm:"type:uuid;primary_key;" json:"id"`
	Username     string    `gorm:"size:64;not null;uniqueIndex" json:"username"`
	Email        string    `gorm:"size:255;not null;uniqueIndex" json:"email"`
	PasswordHash string    `gorm:"size:255;not null" json:"-"`
	ImageFile    string    `gorm:"size:255;not null;default:'default.jpg'" json:"image_file"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
	Posts        []Post    `gorm:"foreignKey:UserID" json:"-"`
}

func (user *User) BeforeCreate(tx *gorm.DB) (err error) {
	if user.ID == uuid.Nil {
		user.ID = uuid.New()
	}
	if user.ImageFile == "" {
		user.ImageFile = DefaultProfileImage
	}
	return
}

// Post is a recipe entry. It has exactly one owning user; only that user
// may mutate or delete it (enforced per request by the handlers).
type Post struct {
	ID          uuid.UUID `gorm:"type:uuid;primary_key;" json:"id"`
	UserID      uuid.UUID `gorm:"type:uuid;not null;index" json:"user_id"`
	Title       string    `gorm:"size:255;not null" json:"title"`
	Ingredients string    `gorm:"type:text;not null" json:"ingredients"`
	Steps       string    `gorm:"type:text;not null" json:"steps"`
	Time        string    `gorm:"size:64" json:"time"`
	Serves      string    `gorm:"size:64" json:"serves"`
	Calories    string    `gorm:"size:64" json:"calories"`
	ImageFile   string    `gorm:"size:255" json:"image_file"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
	Author      User      `gorm:"foreignKey:UserID" json:"author"`
}

func (post *Post) BeforeCreate(tx *gorm.DB) (err error) {
	if post.ID == uuid.Nil {
		post.ID = uuid.New()
	}
	return
}
