package etcd

import (
	"context"
	"encoding/json"
	"strings"
	"sync"
	"testing"
	"unicode/utf8"

	"github.com/Meesho/BharatMLStack/pmo-agent/internal/data/models"
	agenterrors "github.com/Meesho/BharatMLStack/pmo-agent/internal/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.etcd.io/etcd/api/v3/etcdserverpb"
	"go.etcd.io/etcd/api/v3/mvccpb"
	clientv3 "go.etcd.io/etcd/client/v3"
)

// fakeKV backs the note store with a single in-memory key and honors
// the mod-revision compares the store issues. onGet runs after a read
// snapshot is taken, which lets tests interleave a concurrent writer
// between load and commit.
type fakeKV struct {
	mu          sync.Mutex
	value       []byte
	modRevision int64
	revision    int64
	onGet       func()
}

func (f *fakeKV) put(val []byte) {
	f.revision++
	f.value = val
	f.modRevision = f.revision
}

func (f *fakeKV) Put(_ context.Context, _ string, val string, _ ...clientv3.OpOption) (*clientv3.PutResponse, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.put([]byte(val))
	return &clientv3.PutResponse{}, nil
}

func (f *fakeKV) Get(_ context.Context, key string, _ ...clientv3.OpOption) (*clientv3.GetResponse, error) {
	f.mu.Lock()
	value, modRevision := f.value, f.modRevision
	f.mu.Unlock()

	if f.onGet != nil {
		f.onGet()
	}
	if value == nil {
		return &clientv3.GetResponse{}, nil
	}
	return &clientv3.GetResponse{
		Kvs:   []*mvccpb.KeyValue{{Key: []byte(key), Value: value, ModRevision: modRevision}},
		Count: 1,
	}, nil
}

func (f *fakeKV) Delete(_ context.Context, _ string, _ ...clientv3.OpOption) (*clientv3.DeleteResponse, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var deleted int64
	if f.value != nil {
		deleted = 1
	}
	f.revision++
	f.value = nil
	f.modRevision = 0
	return &clientv3.DeleteResponse{Deleted: deleted}, nil
}

func (f *fakeKV) Compact(_ context.Context, _ int64, _ ...clientv3.CompactOption) (*clientv3.CompactResponse, error) {
	return &clientv3.CompactResponse{}, nil
}

func (f *fakeKV) Do(_ context.Context, _ clientv3.Op) (clientv3.OpResponse, error) {
	return clientv3.OpResponse{}, nil
}

func (f *fakeKV) Txn(_ context.Context) clientv3.Txn {
	return &fakeTxn{kv: f}
}

type fakeTxn struct {
	kv      *fakeKV
	cmps    []clientv3.Cmp
	thenOps []clientv3.Op
}

func (t *fakeTxn) If(cs ...clientv3.Cmp) clientv3.Txn {
	t.cmps = append(t.cmps, cs...)
	return t
}

func (t *fakeTxn) Then(ops ...clientv3.Op) clientv3.Txn {
	t.thenOps = append(t.thenOps, ops...)
	return t
}

func (t *fakeTxn) Else(_ ...clientv3.Op) clientv3.Txn {
	return t
}

func (t *fakeTxn) Commit() (*clientv3.TxnResponse, error) {
	t.kv.mu.Lock()
	defer t.kv.mu.Unlock()

	for _, cmp := range t.cmps {
		expected := cmp.TargetUnion.(*etcdserverpb.Compare_ModRevision).ModRevision
		if t.kv.modRevision != expected {
			return &clientv3.TxnResponse{Succeeded: false}, nil
		}
	}
	for _, op := range t.thenOps {
		switch {
		case op.IsPut():
			t.kv.put(op.ValueBytes())
		case op.IsDelete():
			t.kv.revision++
			t.kv.value = nil
			t.kv.modRevision = 0
		}
	}
	return &clientv3.TxnResponse{Succeeded: true}, nil
}

func newFakeStore(kv *fakeKV) *EtcdNoteStore {
	return newNoteStore(kv, nil, "pmo-agent", 0)
}

func TestEtcdNoteStoreAddAndList(t *testing.T) {
	store := newFakeStore(&fakeKV{})
	ctx := context.Background()

	_, err := store.Add(ctx, "first", "oldest note")
	require.NoError(t, err)
	_, err = store.Add(ctx, "second", "newest note")
	require.NoError(t, err)

	notes, err := store.List(ctx)
	require.NoError(t, err)
	require.Len(t, notes, 2)
	assert.Equal(t, "second", notes[0].Label)
	assert.Equal(t, "first", notes[1].Label)
}

func TestEtcdNoteStoreValidation(t *testing.T) {
	store := newFakeStore(&fakeKV{})
	ctx := context.Background()

	_, err := store.Add(ctx, "", "content")
	assert.ErrorIs(t, err, agenterrors.ErrMissingLabel)

	_, err = store.Add(ctx, "label", "  ")
	assert.ErrorIs(t, err, agenterrors.ErrEmptyContent)
}

func TestEtcdNoteStoreTrimsContentByRunes(t *testing.T) {
	store := newFakeStore(&fakeKV{})

	note, err := store.Add(context.Background(), "big", strings.Repeat("क", maxContentLength+50))
	require.NoError(t, err)
	assert.Equal(t, maxContentLength, utf8.RuneCountInString(note.Content))

	exact, err := store.Add(context.Background(), "exact", strings.Repeat("क", maxContentLength))
	require.NoError(t, err)
	assert.Equal(t, maxContentLength, utf8.RuneCountInString(exact.Content))
}

func TestEtcdNoteStoreCapacity(t *testing.T) {
	store := newFakeStore(&fakeKV{})
	ctx := context.Background()

	for i := 0; i < maxNotes+3; i++ {
		_, err := store.Add(ctx, "note", "content")
		require.NoError(t, err)
	}

	notes, err := store.List(ctx)
	require.NoError(t, err)
	assert.Len(t, notes, maxNotes)
}

func TestEtcdNoteStoreAddRetriesOnConflict(t *testing.T) {
	kv := &fakeKV{}
	fired := false
	kv.onGet = func() {
		if fired {
			return
		}
		fired = true
		_, _ = kv.Put(context.Background(), "", `[]`)
	}
	store := newFakeStore(kv)

	_, err := store.Add(context.Background(), "label", "content")
	require.NoError(t, err)

	notes, err := store.List(context.Background())
	require.NoError(t, err)
	require.Len(t, notes, 1)
	assert.Equal(t, "label", notes[0].Label)
}

func TestEtcdNoteStoreResetKeepsConcurrentWrite(t *testing.T) {
	kv := &fakeKV{}
	store := newFakeStore(kv)
	ctx := context.Background()

	_, err := store.Add(ctx, "first", "one")
	require.NoError(t, err)

	fired := false
	kv.onGet = func() {
		if fired {
			return
		}
		fired = true
		raw, _ := json.Marshal([]models.Note{{Label: "a", Content: "x"}, {Label: "b", Content: "y"}})
		_, _ = kv.Put(context.Background(), "", string(raw))
	}

	removed, err := store.Reset(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, removed)

	kv.onGet = nil
	notes, err := store.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, notes)
}

func TestEtcdNoteStoreResetEmpty(t *testing.T) {
	store := newFakeStore(&fakeKV{})

	removed, err := store.Reset(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 0, removed)
}

func TestEtcdNoteStoreKeyFromAppName(t *testing.T) {
	assert.Equal(t, "/config/my-app/notes", newNoteStore(&fakeKV{}, nil, " my-app ", 0).key)
	assert.Equal(t, "/config/pmo-agent/notes", newNoteStore(&fakeKV{}, nil, "", 0).key)
}
