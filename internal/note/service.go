package note

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/lib/pq"
	"gorm.io/gorm"
)

const maxSlugAttempts = 5

const (
	titleMaxLen    = 100
	contentMaxLen  = 20000
	logoTextMaxLen = 50
)

// Service is the note repository. Every lookup is scoped to the caller's
// owner id; a note owned by someone else is indistinguishable from a missing one.
type Service struct {
	DB *gorm.DB

	// NewSlug overrides GenerateSlug.
	NewSlug func() (string, error)
	// OnSlugCollision is called each time a generated slug hits the unique index.
	OnSlugCollision func()
}

type CreateInput struct {
	Title    string
	Content  string
	LogoText *string
	Slug     *string
	Pinned   bool
}

// UpdateInput holds a partial update; nil fields are left untouched.
type UpdateInput struct {
	Title    *string
	Content  *string
	LogoText *string
	Slug     *string
	Pinned   *bool
}

type ListOptions struct {
	Tag string
}

func (s *Service) Create(ctx context.Context, ownerID string, in CreateInput) (*Note, error) {
	ve := &ValidationError{}
	if strings.TrimSpace(ownerID) == "" {
		ve.add("User ID is required")
	}
	logoText := DefaultLogoText
	if in.LogoText != nil {
		logoText = *in.LogoText
	}
	checkText(ve, "Title", &in.Title, titleMaxLen)
	checkText(ve, "Content", &in.Content, contentMaxLen)
	checkText(ve, "Logo text", &logoText, logoTextMaxLen)
	if in.Slug != nil {
		checkSlug(ve, *in.Slug)
	}
	if err := ve.err(); err != nil {
		return nil, err
	}

	n := &Note{
		OwnerID:  ownerID,
		Title:    in.Title,
		Content:  in.Content,
		LogoText: logoText,
		Pinned:   in.Pinned,
		Tags:     ExtractTags(in.Content),
	}

	db := s.DB.WithContext(ctx)

	if in.Slug != nil {
		n.Slug = *in.Slug
		if err := db.Create(n).Error; err != nil {
			if IsDuplicateKey(err) {
				return nil, ErrConflict
			}
			return nil, fmt.Errorf("create note: %w", err)
		}
		return publish(n), nil
	}

	for attempt := 0; attempt < maxSlugAttempts; attempt++ {
		slug, err := s.newSlug()
		if err != nil {
			return nil, fmt.Errorf("generate slug: %w", err)
		}
		n.Slug = slug

		err = db.Create(n).Error
		if err == nil {
			return publish(n), nil
		}
		if !IsDuplicateKey(err) {
			return nil, fmt.Errorf("create note: %w", err)
		}
		if s.OnSlugCollision != nil {
			s.OnSlugCollision()
		}
	}
	return nil, fmt.Errorf("%w: no free slug after %d attempts", ErrConflict, maxSlugAttempts)
}

func (s *Service) GetBySlug(ctx context.Context, ownerID, slug string) (*Note, error) {
	n, err := s.first(ctx, "slug = ? AND owner_id = ?", slug, ownerID)
	if err != nil {
		return nil, err
	}
	return publish(n), nil
}

func (s *Service) GetByID(ctx context.Context, ownerID, id string) (*Note, error) {
	n, err := s.first(ctx, "id = ? AND owner_id = ?", id, ownerID)
	if err != nil {
		return nil, err
	}
	return publish(n), nil
}

// PasswordHash returns the stored hash. It is the only way the hash leaves
// the repository.
func (s *Service) PasswordHash(ctx context.Context, ownerID, ref string) (hash string, protected bool, err error) {
	n, err := s.find(ctx, ownerID, ref)
	if err != nil {
		return "", false, err
	}
	if n.PasswordHash == nil {
		return "", false, nil
	}
	return *n.PasswordHash, true, nil
}

// Update applies a partial update to the note addressed by slug or id.
// A missing note is reported before invalid fields. A rename is pre-checked
// against other notes so the caller gets a friendly conflict; the unique
// index still has the final word.
func (s *Service) Update(ctx context.Context, ownerID, ref string, in UpdateInput) (*Note, error) {
	n, err := s.find(ctx, ownerID, ref)
	if err != nil {
		return nil, err
	}

	ve := &ValidationError{}
	checkText(ve, "Title", in.Title, titleMaxLen)
	checkText(ve, "Content", in.Content, contentMaxLen)
	checkText(ve, "Logo text", in.LogoText, logoTextMaxLen)
	if in.Slug != nil {
		checkSlug(ve, *in.Slug)
	}
	if err := ve.err(); err != nil {
		return nil, err
	}

	db := s.DB.WithContext(ctx)

	var fields []string
	if in.Slug != nil && *in.Slug != n.Slug {
		var taken int64
		if err := db.Model(&Note{}).
			Where("slug = ? AND id <> ?", *in.Slug, n.ID).
			Count(&taken).Error; err != nil {
			return nil, fmt.Errorf("check slug: %w", err)
		}
		if taken > 0 {
			return nil, ErrConflict
		}
		n.Slug = *in.Slug
		fields = append(fields, "Slug")
	}
	if in.Title != nil {
		n.Title = *in.Title
		fields = append(fields, "Title")
	}
	if in.Content != nil {
		n.Content = *in.Content
		n.Tags = ExtractTags(n.Content)
		fields = append(fields, "Content", "Tags")
	}
	if in.LogoText != nil {
		n.LogoText = *in.LogoText
		fields = append(fields, "LogoText")
	}
	if in.Pinned != nil {
		n.Pinned = *in.Pinned
		fields = append(fields, "Pinned")
	}
	if len(fields) == 0 {
		return publish(n), nil
	}

	n.UpdatedAt = db.NowFunc()
	fields = append(fields, "UpdatedAt")

	if err := db.Model(n).
		Where("owner_id = ?", ownerID).
		Select(fields).
		Updates(n).Error; err != nil {
		if IsDuplicateKey(err) {
			return nil, ErrConflict
		}
		return nil, fmt.Errorf("update note: %w", err)
	}
	return publish(n), nil
}

func (s *Service) Delete(ctx context.Context, ownerID, ref string) error {
	res := s.DB.WithContext(ctx).
		Where("(slug = ? OR id = ?) AND owner_id = ?", ref, ref, ownerID).
		Delete(&Note{})
	if res.Error != nil {
		return fmt.Errorf("delete note: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// List returns the owner's notes, pinned first, most recently updated next.
func (s *Service) List(ctx context.Context, ownerID string, opts ListOptions) ([]Note, error) {
	var rows []Note
	if err := s.DB.WithContext(ctx).
		Where("owner_id = ?", ownerID).
		Order("pinned desc").
		Order("updated_at desc").
		Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("list notes: %w", err)
	}

	tag := NormalizeTag(opts.Tag)
	out := make([]Note, 0, len(rows))
	for i := range rows {
		if tag != "" && !slices.Contains(rows[i].Tags, tag) {
			continue
		}
		out = append(out, *publish(&rows[i]))
	}
	return out, nil
}

func (s *Service) SetPassword(ctx context.Context, ownerID, ref, plain string) (*Note, error) {
	hash, err := HashPassword(plain)
	if err != nil {
		return nil, err
	}

	n, err := s.find(ctx, ownerID, ref)
	if err != nil {
		return nil, err
	}
	if err := s.DB.WithContext(ctx).Model(n).Update("password_hash", hash).Error; err != nil {
		return nil, fmt.Errorf("set password: %w", err)
	}
	n.PasswordHash = &hash
	return publish(n), nil
}

// ClearPassword drops the hash entirely; a NULL column is what marks a note
// as unprotected.
func (s *Service) ClearPassword(ctx context.Context, ownerID, ref string) (*Note, error) {
	n, err := s.find(ctx, ownerID, ref)
	if err != nil {
		return nil, err
	}
	if err := s.DB.WithContext(ctx).Model(n).Update("password_hash", nil).Error; err != nil {
		return nil, fmt.Errorf("clear password: %w", err)
	}
	n.PasswordHash = nil
	return publish(n), nil
}

func (s *Service) Verify(ctx context.Context, ownerID, ref, plain string) error {
	n, err := s.find(ctx, ownerID, ref)
	if err != nil {
		return err
	}
	if n.PasswordHash == nil {
		return ErrNoPassword
	}
	if !ComparePassword(*n.PasswordHash, plain) {
		return ErrInvalidPassword
	}
	return nil
}

// ReapExpired deletes every empty note last updated before olderThan and
// returns how many were removed.
func (s *Service) ReapExpired(ctx context.Context, olderThan time.Time) (int64, error) {
	res := s.DB.WithContext(ctx).
		Where("updated_at < ? AND title = ? AND content = ? AND logo_text = ?",
			olderThan, "", "", DefaultLogoText).
		Delete(&Note{})
	if res.Error != nil {
		return 0, fmt.Errorf("reap notes: %w", res.Error)
	}
	return res.RowsAffected, nil
}

// find resolves ref as either a slug or an id; the two never collide since
// ids are 36 characters and slugs at most 20.
func (s *Service) find(ctx context.Context, ownerID, ref string) (*Note, error) {
	return s.first(ctx, "(slug = ? OR id = ?) AND owner_id = ?", ref, ref, ownerID)
}

func (s *Service) first(ctx context.Context, query string, args ...any) (*Note, error) {
	var n Note
	if err := s.DB.WithContext(ctx).Where(query, args...).First(&n).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("find note: %w", err)
	}
	return &n, nil
}

func (s *Service) newSlug() (string, error) {
	if s.NewSlug != nil {
		return s.NewSlug()
	}
	return GenerateSlug()
}

// publish strips the hash before a note leaves the repository.
func publish(n *Note) *Note {
	n.Protected = n.PasswordHash != nil
	n.PasswordHash = nil
	if n.Tags == nil {
		n.Tags = []string{}
	}
	return n
}

func checkText(ve *ValidationError, field string, v *string, max int) {
	if v == nil {
		return
	}
	*v = strings.TrimSpace(*v)
	if utf8.RuneCountInString(*v) > max {
		ve.add(fmt.Sprintf("%s cannot be more than %d characters", field, max))
	}
}

func checkSlug(ve *ValidationError, slug string) {
	switch {
	case len(slug) < SlugMinLen:
		ve.add(fmt.Sprintf("Custom URL must be at least %d characters", SlugMinLen))
	case len(slug) > SlugMaxLen:
		ve.add(fmt.Sprintf("Custom URL cannot be more than %d characters", SlugMaxLen))
	case !ValidSlug(slug):
		ve.add("Custom URL must contain at least one uppercase letter, one lowercase letter, one number, and one special character")
	}
}

// IsDuplicateKey reports a unique index violation from either driver: gorm
// translates sqlite's, lib/pq surfaces postgres' as *pq.Error.
func IsDuplicateKey(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code.Name() == "unique_violation"
}
