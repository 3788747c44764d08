package prefs

import (
	"context"
	"fmt"
	"slices"
	"strings"

	"github.com/codey22/notespace/internal/note"
	"gorm.io/gorm"
)

type Service struct {
	DB *gorm.DB
}

type UpdateInput struct {
	Theme    *string
	FontSize *string
}

// Get returns the owner's preferences, creating the defaults on first read.
func (s *Service) Get(ctx context.Context, ownerID string) (*Preferences, error) {
	db := s.DB.WithContext(ctx)

	var p Preferences
	err := db.Where(Preferences{OwnerID: ownerID}).
		Attrs(Preferences{Theme: DefaultTheme, FontSize: DefaultFontSize}).
		FirstOrCreate(&p).Error
	if note.IsDuplicateKey(err) {
		// lost a race with a concurrent first read
		p = Preferences{}
		err = db.Where("owner_id = ?", ownerID).First(&p).Error
	}
	if err != nil {
		return nil, fmt.Errorf("load preferences: %w", err)
	}
	return &p, nil
}

func (s *Service) Update(ctx context.Context, ownerID string, in UpdateInput) (*Preferences, error) {
	ve := &note.ValidationError{}
	if in.Theme != nil {
		*in.Theme = strings.ToLower(strings.TrimSpace(*in.Theme))
		if !slices.Contains(themes, *in.Theme) {
			ve.Messages = append(ve.Messages, "Theme must be one of "+strings.Join(themes, ", "))
		}
	}
	if in.FontSize != nil {
		*in.FontSize = strings.ToLower(strings.TrimSpace(*in.FontSize))
		if !slices.Contains(fontSizes, *in.FontSize) {
			ve.Messages = append(ve.Messages, "Font size must be one of "+strings.Join(fontSizes, ", "))
		}
	}
	if len(ve.Messages) > 0 {
		return nil, ve
	}

	p, err := s.Get(ctx, ownerID)
	if err != nil {
		return nil, err
	}

	changes := map[string]any{}
	if in.Theme != nil {
		changes["theme"] = *in.Theme
		p.Theme = *in.Theme
	}
	if in.FontSize != nil {
		changes["font_size"] = *in.FontSize
		p.FontSize = *in.FontSize
	}
	if len(changes) == 0 {
		return p, nil
	}
	if err := s.DB.WithContext(ctx).Model(p).Updates(changes).Error; err != nil {
		return nil, fmt.Errorf("update preferences: %w", err)
	}
	return p, nil
}
