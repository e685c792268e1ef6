package etcd

import (
	"context"

	clientv3 "go.etcd.io/etcd/client/v3"
)

// compareAndSwap writes newValue only when the key's mod revision still
// matches expectedModRevision (0 means the key must not exist yet).
func compareAndSwap(
	ctx context.Context,
	kv clientv3.KV,
	key string,
	expectedModRevision int64,
	newValue string,
	putOpts ...clientv3.OpOption,
) (bool, error) {
	resp, err := kv.Txn(ctx).
		If(clientv3.Compare(clientv3.ModRevision(key), "=", expectedModRevision)).
		Then(clientv3.OpPut(key, newValue, putOpts...)).
		Commit()
	if err != nil {
		return false, err
	}
	return resp.Succeeded, nil
}

// compareAndDelete removes the key only when its mod revision still
// matches expectedModRevision, so a concurrent write is not lost.
func compareAndDelete(
	ctx context.Context,
	kv clientv3.KV,
	key string,
	expectedModRevision int64,
) (bool, error) {
	resp, err := kv.Txn(ctx).
		If(clientv3.Compare(clientv3.ModRevision(key), "=", expectedModRevision)).
		Then(clientv3.OpDelete(key)).
		Commit()
	if err != nil {
		return false, err
	}
	return resp.Succeeded, nil
}
