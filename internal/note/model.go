package note

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Note is a single owner-scoped document addressed publicly by Slug.
// PasswordHash is NULL for unprotected notes.
type Note struct {
	ID           string    `gorm:"primaryKey;type:varchar(36)" json:"id"`
	Slug         string    `gorm:"type:varchar(20);not null;uniqueIndex:uq_notes_slug" json:"slug"`
	OwnerID      string    `gorm:"index;not null" json:"-"`
	Title        string    `gorm:"type:varchar(100);not null;default:''" json:"title"`
	Content      string    `gorm:"type:text;not null;default:''" json:"content"`
	LogoText     string    `gorm:"type:varchar(50);not null;default:'NoteSpace'" json:"logoText"`
	PasswordHash *string   `gorm:"column:password_hash;type:varchar(200)" json:"-"`
	Pinned       bool      `gorm:"not null;default:false" json:"pinned"`
	Tags         []string  `gorm:"serializer:json;type:text" json:"tags"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `gorm:"index" json:"updatedAt"`

	// Protected is derived on read; the hash itself stays in the repository.
	Protected bool `gorm:"-" json:"protected"`
}

func (n *Note) BeforeCreate(*gorm.DB) error {
	if n.ID == "" {
		n.ID = uuid.NewString()
	}
	return nil
}
