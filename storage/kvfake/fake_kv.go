package kvfake

import (
	"context"
	"sync"

	"github.com/jrsteele09/go-pos-client/storage"
)

var (
	_ storage.KV          = (*FakeKV)(nil)
	_ storage.BatchWriter = (*FakeKV)(nil)
)

// FakeKV is an in-memory KV. ReadErr and WriteErr, when set, are returned by
// every read or write respectively so tests can simulate device I/O failure.
type FakeKV struct {
	values map[string]string
	lock   sync.RWMutex

	ReadErr  error
	WriteErr error
}

func NewFakeKV() *FakeKV {
	return &FakeKV{
		values: make(map[string]string),
	}
}

func (kv *FakeKV) Get(_ context.Context, key string) (string, bool, error) {
	kv.lock.RLock()
	defer kv.lock.RUnlock()

	if kv.ReadErr != nil {
		return "", false, kv.ReadErr
	}
	v, ok := kv.values[key]
	return v, ok, nil
}

func (kv *FakeKV) Set(_ context.Context, key, value string) error {
	kv.lock.Lock()
	defer kv.lock.Unlock()

	if kv.WriteErr != nil {
		return kv.WriteErr
	}
	kv.values[key] = value
	return nil
}

func (kv *FakeKV) SetMany(_ context.Context, entries []storage.Entry) error {
	kv.lock.Lock()
	defer kv.lock.Unlock()

	if kv.WriteErr != nil {
		return kv.WriteErr
	}
	for _, e := range entries {
		kv.values[e.Key] = e.Value
	}
	return nil
}

func (kv *FakeKV) Delete(_ context.Context, key string) error {
	kv.lock.Lock()
	defer kv.lock.Unlock()

	if kv.WriteErr != nil {
		return kv.WriteErr
	}
	delete(kv.values, key)
	return nil
}

func (kv *FakeKV) Clear(_ context.Context) error {
	kv.lock.Lock()
	defer kv.lock.Unlock()

	if kv.WriteErr != nil {
		return kv.WriteErr
	}
	kv.values = make(map[string]string)
	return nil
}

// Len returns the number of stored keys.
func (kv *FakeKV) Len() int {
	kv.lock.RLock()
	defer kv.lock.RUnlock()
	return len(kv.values)
}

// Raw returns the stored value without honouring ReadErr.
func (kv *FakeKV) Raw(key string) (string, bool) {
	kv.lock.RLock()
	defer kv.lock.RUnlock()
	v, ok := kv.values[key]
	return v, ok
}
