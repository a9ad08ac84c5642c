package state

import (
	"context"
	"crypto/tls"
	"encoding/json"
	"fmt"
	"time"

	clientv3 "go.etcd.io/etcd/client/v3"
)

// EtcdOptions configures the etcd-backed store.
type EtcdOptions struct {
	// Endpoints is the etcd cluster, e.g. ["localhost:2379"]. Required.
	Endpoints []string

	// Namespace is the key prefix for plugin-state entries.
	// Default "core/plugin".
	Namespace string

	// DialTimeout bounds connection establishment. Default 5s.
	DialTimeout time.Duration

	// TLS enables encrypted communication when non-nil.
	TLS *tls.Config
}

// EtcdStore persists records in etcd. Update reads the record with its
// mod revision, runs the transaction body, and commits through an etcd
// Txn guarded by a revision compare; a lost race fails the compare and
// the transaction retries.
type EtcdStore struct {
	client    *clientv3.Client
	namespace string
}

// NewEtcdStore connects to the etcd cluster and verifies connectivity.
func NewEtcdStore(opts EtcdOptions) (*EtcdStore, error) {
	if len(opts.Endpoints) == 0 {
		return nil, fmt.Errorf("etcd endpoints cannot be empty")
	}
	namespace := opts.Namespace
	if namespace == "" {
		namespace = "core/plugin"
	}
	dialTimeout := opts.DialTimeout
	if dialTimeout == 0 {
		dialTimeout = 5 * time.Second
	}

	cli, err := clientv3.New(clientv3.Config{
		Endpoints:   opts.Endpoints,
		DialTimeout: dialTimeout,
		TLS:         opts.TLS,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create etcd client: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), dialTimeout)
	defer cancel()
	if _, err := cli.Get(ctx, "health-check"); err != nil && err != context.DeadlineExceeded {
		cli.Close()
		return nil, fmt.Errorf("etcd health check failed: %w", err)
	}

	return &EtcdStore{client: cli, namespace: namespace}, nil
}

func (s *EtcdStore) key(id string) string {
	return s.namespace + "/" + id
}

// Update implements Store.
func (s *EtcdStore) Update(ctx context.Context, id string, fn func(ctx context.Context, tx Txn) error) error {
	key := s.key(id)

	for attempt := 0; attempt < maxAttempts; attempt++ {
		resp, err := s.client.Get(ctx, key)
		if err != nil {
			return fmt.Errorf("failed to read plugin state %s: %w", id, err)
		}

		var current *Record
		var modRev int64
		if len(resp.Kvs) > 0 {
			current, err = decodeRecord(resp.Kvs[0].Value)
			if err != nil {
				return err
			}
			modRev = resp.Kvs[0].ModRevision
		}

		tx := &etcdTxn{current: current}
		if err := fn(ctx, tx); err != nil {
			return err
		}
		if tx.put == nil && !tx.deleted {
			return nil
		}

		var cmp clientv3.Cmp
		if modRev == 0 {
			cmp = clientv3.Compare(clientv3.CreateRevision(key), "=", 0)
		} else {
			cmp = clientv3.Compare(clientv3.ModRevision(key), "=", modRev)
		}

		var op clientv3.Op
		if tx.deleted {
			op = clientv3.OpDelete(key)
		} else {
			data, err := json.Marshal(tx.put)
			if err != nil {
				return fmt.Errorf("failed to marshal plugin state: %w", err)
			}
			op = clientv3.OpPut(key, string(data))
		}

		txnResp, err := s.client.Txn(ctx).If(cmp).Then(op).Commit()
		if err != nil {
			return fmt.Errorf("failed to commit plugin state %s: %w", id, err)
		}
		if txnResp.Succeeded {
			return nil
		}
	}
	return ErrTooManyConflicts
}

// Get implements Store.
func (s *EtcdStore) Get(ctx context.Context, id string) (*Record, error) {
	resp, err := s.client.Get(ctx, s.key(id))
	if err != nil {
		return nil, fmt.Errorf("failed to read plugin state %s: %w", id, err)
	}
	if len(resp.Kvs) == 0 {
		return nil, nil
	}
	return decodeRecord(resp.Kvs[0].Value)
}

// List implements Store.
func (s *EtcdStore) List(ctx context.Context) ([]Record, error) {
	resp, err := s.client.Get(ctx, s.namespace+"/", clientv3.WithPrefix())
	if err != nil {
		return nil, err
	}
	out := make([]Record, 0, len(resp.Kvs))
	for _, kv := range resp.Kvs {
		rec, err := decodeRecord(kv.Value)
		if err != nil {
			return nil, err
		}
		out = append(out, *rec)
	}
	return out, nil
}

// Close implements Store.
func (s *EtcdStore) Close() error {
	return s.client.Close()
}

// etcdTxn operates on the snapshot read at the start of the attempt; the
// revision compare at commit time detects concurrent writers.
type etcdTxn struct {
	current *Record
	put     *Record
	deleted bool
}

func (t *etcdTxn) Get(ctx context.Context) (*Record, error) {
	if t.deleted {
		return nil, nil
	}
	if t.put != nil {
		rec := *t.put
		return &rec, nil
	}
	if t.current == nil {
		return nil, nil
	}
	rec := *t.current
	return &rec, nil
}

func (t *etcdTxn) Put(ctx context.Context, rec Record) error {
	t.put = &rec
	t.deleted = false
	return nil
}

func (t *etcdTxn) Delete(ctx context.Context) error {
	t.put = nil
	t.deleted = true
	return nil
}
