package prefs

import "time"

const (
	DefaultTheme    = "system"
	DefaultFontSize = "medium"
)

var (
	themes    = []string{"light", "dark", "system"}
	fontSizes = []string{"small", "medium", "large"}
)

// Preferences holds per-session display settings.
type Preferences struct {
	ID        uint64    `gorm:"primaryKey" json:"-"`
	OwnerID   string    `gorm:"uniqueIndex;not null" json:"-"`
	Theme     string    `gorm:"not null;default:'system'" json:"theme"`
	FontSize  string    `gorm:"not null;default:'medium'" json:"fontSize"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}
