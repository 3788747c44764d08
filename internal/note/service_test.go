package note_test

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/codey22/notespace/internal/note"
	"github.com/codey22/notespace/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

const (
	ownerA = "owner-a"
	ownerB = "owner-b"
)

func newService(t *testing.T) (*note.Service, *gorm.DB) {
	t.Helper()
	gdb := testutil.NewDB(t)
	return &note.Service{DB: gdb}, gdb
}

func strp(s string) *string { return &s }

func backdate(t *testing.T, gdb *gorm.DB, id string, age time.Duration) {
	t.Helper()
	require.NoError(t, gdb.Model(&note.Note{}).
		Where("id = ?", id).
		UpdateColumn("updated_at", time.Now().UTC().Add(-age)).Error)
}

func TestCreate_Defaults(t *testing.T) {
	svc, _ := newService(t)
	ctx := context.Background()

	n, err := svc.Create(ctx, ownerA, note.CreateInput{})
	require.NoError(t, err)

	assert.NotEmpty(t, n.ID)
	assert.Len(t, n.Slug, note.GeneratedSlugLen)
	assert.True(t, note.ValidSlug(n.Slug))
	assert.Equal(t, note.DefaultLogoText, n.LogoText)
	assert.Equal(t, ownerA, n.OwnerID)
	assert.False(t, n.Protected)
	assert.True(t, n.IsEmpty())
	assert.False(t, n.CreatedAt.IsZero())
}

func TestCreate_TrimsAndExtractsTags(t *testing.T) {
	svc, _ := newService(t)

	n, err := svc.Create(context.Background(), ownerA, note.CreateInput{
		Title:   "  groceries  ",
		Content: "  milk #Shopping  ",
	})
	require.NoError(t, err)
	assert.Equal(t, "groceries", n.Title)
	assert.Equal(t, "milk #Shopping", n.Content)
	assert.Equal(t, []string{"shopping"}, n.Tags)
}

func TestCreate_ValidationAggregates(t *testing.T) {
	svc, _ := newService(t)

	_, err := svc.Create(context.Background(), "", note.CreateInput{
		Title:    strings.Repeat("t", 101),
		Content:  strings.Repeat("c", 20001),
		LogoText: strp(strings.Repeat("l", 51)),
		Slug:     strp("bad"),
	})
	require.Error(t, err)
	require.True(t, errors.Is(err, note.ErrValidation))

	var ve *note.ValidationError
	require.True(t, errors.As(err, &ve))
	assert.Len(t, ve.Messages, 5)
	assert.Contains(t, err.Error(), "User ID is required")
	assert.Contains(t, err.Error(), "Title cannot be more than 100 characters")
}

func TestCreate_CountsCharactersNotBytes(t *testing.T) {
	svc, _ := newService(t)

	_, err := svc.Create(context.Background(), ownerA, note.CreateInput{Title: strings.Repeat("é", 100)})
	require.NoError(t, err)
}

func TestCreate_CustomSlugConflict(t *testing.T) {
	svc, _ := newService(t)
	ctx := context.Background()

	_, err := svc.Create(ctx, ownerA, note.CreateInput{Slug: strp("My-Note1")})
	require.NoError(t, err)

	_, err = svc.Create(ctx, ownerB, note.CreateInput{Slug: strp("My-Note1")})
	assert.ErrorIs(t, err, note.ErrConflict)
}

func TestCreate_RetriesOnGeneratedCollision(t *testing.T) {
	svc, _ := newService(t)
	ctx := context.Background()

	_, err := svc.Create(ctx, ownerA, note.CreateInput{Slug: strp("Taken_01")})
	require.NoError(t, err)

	collisions := 0
	candidates := []string{"Taken_01", "Taken_01", "Fresh_02"}
	svc.NewSlug = func() (string, error) {
		s := candidates[0]
		candidates = candidates[1:]
		return s, nil
	}
	svc.OnSlugCollision = func() { collisions++ }

	n, err := svc.Create(ctx, ownerB, note.CreateInput{})
	require.NoError(t, err)
	assert.Equal(t, "Fresh_02", n.Slug)
	assert.Equal(t, 2, collisions)
}

func TestCreate_GivesUpAfterBoundedAttempts(t *testing.T) {
	svc, _ := newService(t)
	ctx := context.Background()

	_, err := svc.Create(ctx, ownerA, note.CreateInput{Slug: strp("Taken_01")})
	require.NoError(t, err)

	calls := 0
	svc.NewSlug = func() (string, error) {
		calls++
		return "Taken_01", nil
	}

	_, err = svc.Create(ctx, ownerB, note.CreateInput{})
	assert.ErrorIs(t, err, note.ErrConflict)
	assert.Equal(t, 5, calls)
}

func TestGet_ScopedByOwner(t *testing.T) {
	svc, _ := newService(t)
	ctx := context.Background()

	n, err := svc.Create(ctx, ownerA, note.CreateInput{Title: "mine"})
	require.NoError(t, err)

	got, err := svc.GetBySlug(ctx, ownerA, n.Slug)
	require.NoError(t, err)
	assert.Equal(t, n.ID, got.ID)

	got, err = svc.GetByID(ctx, ownerA, n.ID)
	require.NoError(t, err)
	assert.Equal(t, n.Slug, got.Slug)

	_, err = svc.GetBySlug(ctx, ownerB, n.Slug)
	assert.ErrorIs(t, err, note.ErrNotFound)
	_, err = svc.GetByID(ctx, ownerB, n.ID)
	assert.ErrorIs(t, err, note.ErrNotFound)
	_, err = svc.GetBySlug(ctx, ownerA, "Nope_123")
	assert.ErrorIs(t, err, note.ErrNotFound)
}

func TestOtherOwnerCannotMutate(t *testing.T) {
	svc, _ := newService(t)
	ctx := context.Background()

	n, err := svc.Create(ctx, ownerA, note.CreateInput{Title: "A's note"})
	require.NoError(t, err)

	_, err = svc.Update(ctx, ownerB, n.Slug, note.UpdateInput{Title: strp("hijacked")})
	assert.ErrorIs(t, err, note.ErrNotFound)

	err = svc.Delete(ctx, ownerB, n.Slug)
	assert.ErrorIs(t, err, note.ErrNotFound)

	_, err = svc.SetPassword(ctx, ownerB, n.Slug, "x")
	assert.ErrorIs(t, err, note.ErrNotFound)

	got, err := svc.GetBySlug(ctx, ownerA, n.Slug)
	require.NoError(t, err)
	assert.Equal(t, "A's note", got.Title)
	assert.False(t, got.Protected)
}

func TestUpdate_Partial(t *testing.T) {
	svc, _ := newService(t)
	ctx := context.Background()

	n, err := svc.Create(ctx, ownerA, note.CreateInput{Title: "t", Content: "c"})
	require.NoError(t, err)
	before := n.UpdatedAt

	pinned := true
	got, err := svc.Update(ctx, ownerA, n.Slug, note.UpdateInput{
		Content: strp(" new #tag "),
		Pinned:  &pinned,
	})
	require.NoError(t, err)
	assert.Equal(t, "t", got.Title)
	assert.Equal(t, "new #tag", got.Content)
	assert.Equal(t, []string{"tag"}, got.Tags)
	assert.True(t, got.Pinned)
	assert.False(t, got.UpdatedAt.Before(before))

	reloaded, err := svc.GetByID(ctx, ownerA, n.ID)
	require.NoError(t, err)
	assert.Equal(t, "new #tag", reloaded.Content)
	assert.True(t, reloaded.Pinned)
	assert.Equal(t, []string{"tag"}, reloaded.Tags)
}

func TestUpdate_Validation(t *testing.T) {
	svc, _ := newService(t)
	ctx := context.Background()

	n, err := svc.Create(ctx, ownerA, note.CreateInput{})
	require.NoError(t, err)

	_, err = svc.Update(ctx, ownerA, n.Slug, note.UpdateInput{LogoText: strp(strings.Repeat("x", 51))})
	assert.ErrorIs(t, err, note.ErrValidation)

	_, err = svc.Update(ctx, ownerA, n.Slug, note.UpdateInput{Slug: strp("alllowercase1!")})
	assert.ErrorIs(t, err, note.ErrValidation)
}

func TestUpdate_MissingNoteBeforeValidation(t *testing.T) {
	svc, _ := newService(t)
	ctx := context.Background()

	_, err := svc.Update(ctx, ownerA, "Gone_123", note.UpdateInput{Slug: strp("bad")})
	assert.ErrorIs(t, err, note.ErrNotFound)

	n, err := svc.Create(ctx, ownerA, note.CreateInput{})
	require.NoError(t, err)
	_, err = svc.Update(ctx, ownerB, n.Slug, note.UpdateInput{Title: strp(strings.Repeat("x", 101))})
	assert.ErrorIs(t, err, note.ErrNotFound)
}

func TestUpdate_Rename(t *testing.T) {
	svc, _ := newService(t)
	ctx := context.Background()

	a, err := svc.Create(ctx, ownerA, note.CreateInput{Title: "a"})
	require.NoError(t, err)
	b, err := svc.Create(ctx, ownerB, note.CreateInput{Title: "b"})
	require.NoError(t, err)

	// taken by another owner's note: still a conflict, slugs are global
	_, err = svc.Update(ctx, ownerA, a.Slug, note.UpdateInput{Slug: strp(b.Slug)})
	assert.ErrorIs(t, err, note.ErrConflict)

	// renaming to its own slug is a no-op, not a conflict
	_, err = svc.Update(ctx, ownerA, a.Slug, note.UpdateInput{Slug: strp(a.Slug)})
	require.NoError(t, err)

	old := a.Slug
	got, err := svc.Update(ctx, ownerA, old, note.UpdateInput{Slug: strp("Shop-List1")})
	require.NoError(t, err)
	assert.Equal(t, "Shop-List1", got.Slug)
	assert.Equal(t, a.ID, got.ID)

	_, err = svc.GetBySlug(ctx, ownerA, old)
	assert.ErrorIs(t, err, note.ErrNotFound)

	got, err = svc.GetBySlug(ctx, ownerA, "Shop-List1")
	require.NoError(t, err)
	assert.Equal(t, "a", got.Title)
}

func TestUpdate_ByID(t *testing.T) {
	svc, _ := newService(t)
	ctx := context.Background()

	n, err := svc.Create(ctx, ownerA, note.CreateInput{})
	require.NoError(t, err)

	got, err := svc.Update(ctx, ownerA, n.ID, note.UpdateInput{Title: strp("by id")})
	require.NoError(t, err)
	assert.Equal(t, "by id", got.Title)
}

func TestDelete(t *testing.T) {
	svc, _ := newService(t)
	ctx := context.Background()

	n, err := svc.Create(ctx, ownerA, note.CreateInput{Title: "bye"})
	require.NoError(t, err)

	require.NoError(t, svc.Delete(ctx, ownerA, n.Slug))
	_, err = svc.GetBySlug(ctx, ownerA, n.Slug)
	assert.ErrorIs(t, err, note.ErrNotFound)

	assert.ErrorIs(t, svc.Delete(ctx, ownerA, n.Slug), note.ErrNotFound)
}

func TestList_PinnedFirstThenRecent(t *testing.T) {
	svc, gdb := newService(t)
	ctx := context.Background()

	old, err := svc.Create(ctx, ownerA, note.CreateInput{Title: "old"})
	require.NoError(t, err)
	recent, err := svc.Create(ctx, ownerA, note.CreateInput{Title: "recent #work"})
	require.NoError(t, err)
	pinned, err := svc.Create(ctx, ownerA, note.CreateInput{Title: "pinned", Pinned: true})
	require.NoError(t, err)
	_, err = svc.Create(ctx, ownerB, note.CreateInput{Title: "someone else"})
	require.NoError(t, err)

	backdate(t, gdb, pinned.ID, 3*time.Hour)
	backdate(t, gdb, old.ID, 2*time.Hour)
	backdate(t, gdb, recent.ID, time.Hour)

	list, err := svc.List(ctx, ownerA, note.ListOptions{})
	require.NoError(t, err)
	require.Len(t, list, 3)
	assert.Equal(t, []string{"pinned", "recent #work", "old"},
		[]string{list[0].Title, list[1].Title, list[2].Title})

	_, err = svc.Update(ctx, ownerA, recent.Slug, note.UpdateInput{Content: strp("#Work stuff")})
	require.NoError(t, err)
	tagged, err := svc.List(ctx, ownerA, note.ListOptions{Tag: " #Work "})
	require.NoError(t, err)
	require.Len(t, tagged, 1)
	assert.Equal(t, recent.ID, tagged[0].ID)
}

func TestPasswordScenario(t *testing.T) {
	svc, _ := newService(t)
	ctx := context.Background()

	n, err := svc.Create(ctx, ownerA, note.CreateInput{Title: "secret"})
	require.NoError(t, err)

	got, err := svc.SetPassword(ctx, ownerA, n.Slug, "ab12@XY")
	require.NoError(t, err)
	assert.True(t, got.Protected)

	require.NoError(t, svc.Verify(ctx, ownerA, n.Slug, "ab12@XY"))
	assert.ErrorIs(t, svc.Verify(ctx, ownerA, n.Slug, "wrong"), note.ErrInvalidPassword)

	// the hash only leaves the repository on explicit request
	fetched, err := svc.GetBySlug(ctx, ownerA, n.Slug)
	require.NoError(t, err)
	assert.True(t, fetched.Protected)
	assert.Nil(t, fetched.PasswordHash)

	hash, protected, err := svc.PasswordHash(ctx, ownerA, n.Slug)
	require.NoError(t, err)
	assert.True(t, protected)
	assert.True(t, note.ComparePassword(hash, "ab12@XY"))

	got, err = svc.ClearPassword(ctx, ownerA, n.Slug)
	require.NoError(t, err)
	assert.False(t, got.Protected)

	assert.ErrorIs(t, svc.Verify(ctx, ownerA, n.Slug, "ab12@XY"), note.ErrNoPassword)

	_, protected, err = svc.PasswordHash(ctx, ownerA, n.Slug)
	require.NoError(t, err)
	assert.False(t, protected)

	// content and slug survive protection changes
	fetched, err = svc.GetBySlug(ctx, ownerA, n.Slug)
	require.NoError(t, err)
	assert.Equal(t, "secret", fetched.Title)
}

func TestSetPassword_Validation(t *testing.T) {
	svc, _ := newService(t)
	ctx := context.Background()

	n, err := svc.Create(ctx, ownerA, note.CreateInput{})
	require.NoError(t, err)

	_, err = svc.SetPassword(ctx, ownerA, n.Slug, "123456789")
	assert.ErrorIs(t, err, note.ErrValidation)
	_, err = svc.SetPassword(ctx, ownerA, n.Slug, "")
	assert.ErrorIs(t, err, note.ErrValidation)

	_, err = svc.SetPassword(ctx, ownerA, "Nope_123", "ok")
	assert.ErrorIs(t, err, note.ErrNotFound)
}

func TestReapExpired(t *testing.T) {
	svc, gdb := newService(t)
	ctx := context.Background()

	empty, err := svc.Create(ctx, ownerA, note.CreateInput{})
	require.NoError(t, err)
	freshEmpty, err := svc.Create(ctx, ownerA, note.CreateInput{})
	require.NoError(t, err)
	withContent, err := svc.Create(ctx, ownerA, note.CreateInput{Content: "keep me"})
	require.NoError(t, err)
	customLogo, err := svc.Create(ctx, ownerA, note.CreateInput{LogoText: strp("Mine")})
	require.NoError(t, err)

	for _, id := range []string{empty.ID, withContent.ID, customLogo.ID} {
		backdate(t, gdb, id, 10*time.Minute)
	}

	n, err := svc.ReapExpired(ctx, time.Now().UTC().Add(-note.DefaultTTL))
	require.NoError(t, err)
	assert.EqualValues(t, 1, n)

	_, err = svc.GetBySlug(ctx, ownerA, empty.Slug)
	assert.ErrorIs(t, err, note.ErrNotFound)
	for _, keep := range []*note.Note{freshEmpty, withContent, customLogo} {
		_, err = svc.GetBySlug(ctx, ownerA, keep.Slug)
		assert.NoError(t, err)
	}
}

func TestReapExpired_ReArmsAfterClearing(t *testing.T) {
	svc, gdb := newService(t)
	ctx := context.Background()

	n, err := svc.Create(ctx, ownerA, note.CreateInput{Content: "draft"})
	require.NoError(t, err)

	_, err = svc.Update(ctx, ownerA, n.Slug, note.UpdateInput{Content: strp("")})
	require.NoError(t, err)
	backdate(t, gdb, n.ID, 6*time.Minute)

	deleted, err := svc.ReapExpired(ctx, time.Now().UTC().Add(-note.DefaultTTL))
	require.NoError(t, err)
	assert.EqualValues(t, 1, deleted)

	_, err = svc.GetByID(ctx, ownerA, n.ID)
	assert.ErrorIs(t, err, note.ErrNotFound)
}
