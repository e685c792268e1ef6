package memory

import (
	"context"
	"strings"
	"sync"
	"time"
	"unicode/utf8"

	"github.com/Meesho/BharatMLStack/pmo-agent/internal/data/models"
	agenterrors "github.com/Meesho/BharatMLStack/pmo-agent/internal/errors"
	"github.com/rs/zerolog/log"
)

const (
	maxNotes         = 20
	maxContentLength = 10_000
)

// NoteStore is the default in-process note memory: a bounded list,
// newest first, oldest dropped on overflow.
type NoteStore struct {
	mu    sync.RWMutex
	notes []models.Note
}

func NewNoteStore() *NoteStore {
	return &NoteStore{}
}

func (s *NoteStore) Add(_ context.Context, label, content string) (models.Note, error) {
	if label == "" {
		return models.Note{}, agenterrors.ErrMissingLabel
	}
	trimmed := strings.TrimSpace(content)
	if trimmed == "" {
		return models.Note{}, agenterrors.ErrEmptyContent
	}
	if utf8.RuneCountInString(trimmed) > maxContentLength {
		log.Debug().Str("label", label).Int("limit", maxContentLength).Msg("trimming note content to capacity")
		trimmed = truncate(trimmed, maxContentLength)
	}

	note := models.Note{
		Label:   label,
		Content: trimmed,
		AddedAt: time.Now().UTC(),
	}

	s.mu.Lock()
	s.notes = append([]models.Note{note}, s.notes...)
	if len(s.notes) > maxNotes {
		dropped := s.notes[len(s.notes)-1]
		s.notes = s.notes[:len(s.notes)-1]
		log.Info().Str("dropped_label", dropped.Label).Msg("note capacity reached, dropping oldest note")
	}
	s.mu.Unlock()

	log.Info().Str("label", label).Int("chars", utf8.RuneCountInString(trimmed)).Msg("added note")
	return note, nil
}

func (s *NoteStore) List(_ context.Context) ([]models.Note, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]models.Note(nil), s.notes...), nil
}

func (s *NoteStore) Reset(_ context.Context) (int, error) {
	s.mu.Lock()
	count := len(s.notes)
	s.notes = nil
	s.mu.Unlock()

	log.Info().Int("removed", count).Msg("note store reset")
	return count, nil
}

// truncate cuts s to at most n runes. Limits are character counts, so
// multibyte content must not be cut short by its byte length.
func truncate(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	return string([]rune(s)[:n])
}
