package etcd

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/Meesho/BharatMLStack/pmo-agent/internal/data/models"
	agenterrors "github.com/Meesho/BharatMLStack/pmo-agent/internal/errors"
	"github.com/rs/zerolog/log"
	clientv3 "go.etcd.io/etcd/client/v3"
)

const (
	maxNotes         = 20
	maxContentLength = 10_000
	casMaxAttempts   = 3

	defaultAppName = "pmo-agent"
)

// EtcdNoteStore keeps the bounded note list durable across restarts.
// The whole list lives under a single key; every write, reset
// included, is guarded by a compare-and-swap on the key's mod
// revision. An optional TTL lease expires the notes after inactivity.
type EtcdNoteStore struct {
	kv         clientv3.KV
	lease      clientv3.Lease
	key        string
	ttlSeconds int64
}

func NewEtcdNoteStore(client *clientv3.Client, appName string, ttlSeconds int64) *EtcdNoteStore {
	return newNoteStore(client.KV, client.Lease, appName, ttlSeconds)
}

func newNoteStore(kv clientv3.KV, lease clientv3.Lease, appName string, ttlSeconds int64) *EtcdNoteStore {
	name := strings.TrimSpace(appName)
	if name == "" {
		name = defaultAppName
	}
	return &EtcdNoteStore{
		kv:         kv,
		lease:      lease,
		key:        "/config/" + name + "/notes",
		ttlSeconds: ttlSeconds,
	}
}

func (s *EtcdNoteStore) Add(ctx context.Context, label, content string) (models.Note, error) {
	if label == "" {
		return models.Note{}, agenterrors.ErrMissingLabel
	}
	trimmed := strings.TrimSpace(content)
	if trimmed == "" {
		return models.Note{}, agenterrors.ErrEmptyContent
	}
	if utf8.RuneCountInString(trimmed) > maxContentLength {
		trimmed = string([]rune(trimmed)[:maxContentLength])
	}

	note := models.Note{
		Label:   label,
		Content: trimmed,
		AddedAt: time.Now().UTC(),
	}

	for attempt := 1; attempt <= casMaxAttempts; attempt++ {
		notes, modRevision, err := s.load(ctx)
		if err != nil {
			return models.Note{}, err
		}

		updated := append([]models.Note{note}, notes...)
		if len(updated) > maxNotes {
			dropped := updated[len(updated)-1]
			updated = updated[:len(updated)-1]
			log.Info().Str("dropped_label", dropped.Label).Msg("note capacity reached, dropping oldest note")
		}

		raw, err := json.Marshal(updated)
		if err != nil {
			return models.Note{}, err
		}

		putOpts, err := s.leaseOpts(ctx)
		if err != nil {
			return models.Note{}, err
		}

		applied, err := compareAndSwap(ctx, s.kv, s.key, modRevision, string(raw), putOpts...)
		if err != nil {
			return models.Note{}, err
		}
		if applied {
			log.Info().Str("label", label).Int("chars", utf8.RuneCountInString(trimmed)).Str("etcd_key", s.key).Msg("added note to etcd store")
			return note, nil
		}
		log.Debug().Int("attempt", attempt).Str("etcd_key", s.key).Msg("note store cas conflict, retrying")
	}
	return models.Note{}, fmt.Errorf("note store cas conflict persisted after %d attempts", casMaxAttempts)
}

func (s *EtcdNoteStore) List(ctx context.Context) ([]models.Note, error) {
	notes, _, err := s.load(ctx)
	return notes, err
}

func (s *EtcdNoteStore) Reset(ctx context.Context) (int, error) {
	for attempt := 1; attempt <= casMaxAttempts; attempt++ {
		notes, modRevision, err := s.load(ctx)
		if err != nil {
			return 0, err
		}
		if modRevision == 0 {
			return 0, nil
		}

		applied, err := compareAndDelete(ctx, s.kv, s.key, modRevision)
		if err != nil {
			return 0, err
		}
		if applied {
			log.Info().Int("removed", len(notes)).Msg("etcd note store reset")
			return len(notes), nil
		}
		log.Debug().Int("attempt", attempt).Str("etcd_key", s.key).Msg("note store cas conflict on reset, retrying")
	}
	return 0, fmt.Errorf("note store cas conflict persisted after %d attempts", casMaxAttempts)
}

func (s *EtcdNoteStore) load(ctx context.Context) ([]models.Note, int64, error) {
	resp, err := s.kv.Get(ctx, s.key)
	if err != nil {
		return nil, 0, err
	}
	if len(resp.Kvs) == 0 {
		return nil, 0, nil
	}

	kv := resp.Kvs[0]
	var notes []models.Note
	if err := json.Unmarshal(kv.Value, &notes); err != nil {
		return nil, 0, fmt.Errorf("invalid note list at %s: %w", string(kv.Key), err)
	}
	return notes, kv.ModRevision, nil
}

func (s *EtcdNoteStore) leaseOpts(ctx context.Context) ([]clientv3.OpOption, error) {
	if s.ttlSeconds <= 0 {
		return nil, nil
	}
	lease, err := s.lease.Grant(ctx, s.ttlSeconds)
	if err != nil {
		return nil, fmt.Errorf("failed to create note ttl lease: %w", err)
	}
	return []clientv3.OpOption{clientv3.WithLease(lease.ID)}, nil
}
