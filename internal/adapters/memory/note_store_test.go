package memory

import (
	"context"
	"strconv"
	"strings"
	"testing"
	"unicode/utf8"

	agenterrors "github.com/Meesho/BharatMLStack/pmo-agent/internal/errors"
	"github.com/stretchr/testify/assert"
)

func TestNoteStoreAddAndOrdering(t *testing.T) {
	store := NewNoteStore()
	ctx := context.Background()

	_, err := store.Add(ctx, "first", "oldest note")
	assert.NoError(t, err)
	_, err = store.Add(ctx, "second", "newest note")
	assert.NoError(t, err)

	notes, err := store.List(ctx)
	assert.NoError(t, err)
	assert.Len(t, notes, 2)
	assert.Equal(t, "second", notes[0].Label)
	assert.Equal(t, "first", notes[1].Label)
}

func TestNoteStoreRejectsInvalidInput(t *testing.T) {
	store := NewNoteStore()
	ctx := context.Background()

	_, err := store.Add(ctx, "", "content")
	assert.ErrorIs(t, err, agenterrors.ErrMissingLabel)

	_, err = store.Add(ctx, "label", "   ")
	assert.ErrorIs(t, err, agenterrors.ErrEmptyContent)
}

func TestNoteStoreDropsOldestAtCapacity(t *testing.T) {
	store := NewNoteStore()
	ctx := context.Background()

	for i := 0; i < maxNotes+5; i++ {
		_, err := store.Add(ctx, "note-"+strconv.Itoa(i), "content "+strconv.Itoa(i))
		assert.NoError(t, err)
	}

	notes, err := store.List(ctx)
	assert.NoError(t, err)
	assert.Len(t, notes, maxNotes)
	assert.Equal(t, "note-24", notes[0].Label)
	assert.Equal(t, "note-5", notes[len(notes)-1].Label)
}

func TestNoteStoreTrimsLongContent(t *testing.T) {
	store := NewNoteStore()

	note, err := store.Add(context.Background(), "big", strings.Repeat("x", maxContentLength+500))
	assert.NoError(t, err)
	assert.Len(t, note.Content, maxContentLength)
}

func TestNoteStoreLimitsCountRunesNotBytes(t *testing.T) {
	store := NewNoteStore()

	// maxContentLength runes of multibyte content is within the limit
	// even though its byte length is triple that.
	content := strings.Repeat("क", maxContentLength)
	note, err := store.Add(context.Background(), "utf8", content)
	assert.NoError(t, err)
	assert.Equal(t, content, note.Content)

	over, err := store.Add(context.Background(), "utf8-over", strings.Repeat("क", maxContentLength+10))
	assert.NoError(t, err)
	assert.Equal(t, maxContentLength, utf8.RuneCountInString(over.Content))
	assert.True(t, strings.HasSuffix(over.Content, "क"))
}

func TestNoteStoreReset(t *testing.T) {
	store := NewNoteStore()
	ctx := context.Background()

	_, _ = store.Add(ctx, "a", "one")
	_, _ = store.Add(ctx, "b", "two")

	removed, err := store.Reset(ctx)
	assert.NoError(t, err)
	assert.Equal(t, 2, removed)

	notes, err := store.List(ctx)
	assert.NoError(t, err)
	assert.Empty(t, notes)
}
