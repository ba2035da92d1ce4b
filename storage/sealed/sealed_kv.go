package sealed

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"encoding/hex"
	"fmt"

	apperrors "github.com/jrsteele09/go-pos-client/internal/errors"
	"github.com/jrsteele09/go-pos-client/storage"
	"golang.org/x/crypto/chacha20poly1305"
)

var (
	_ storage.KV          = (*KV)(nil)
	_ storage.BatchWriter = (*KV)(nil)
)

// KV encrypts values with XChaCha20-Poly1305 before handing them to the
// wrapped store. The key name is bound as additional data so a value copied
// under another key fails to open.
type KV struct {
	inner storage.KV
	aead  cipherAEAD
}

type cipherAEAD interface {
	NonceSize() int
	Seal(dst, nonce, plaintext, additionalData []byte) []byte
	Open(dst, nonce, ciphertext, additionalData []byte) ([]byte, error)
}

// New wraps inner with a 32 byte key.
func New(inner storage.KV, key []byte) (*KV, error) {
	aead, err := chacha20poly1305.NewX(key)
	if err != nil {
		return nil, fmt.Errorf("[sealed New] %w", err)
	}
	return &KV{inner: inner, aead: aead}, nil
}

// NewFromHex wraps inner with a hex encoded 32 byte key.
func NewFromHex(inner storage.KV, hexKey string) (*KV, error) {
	key, err := hex.DecodeString(hexKey)
	if err != nil {
		return nil, fmt.Errorf("[sealed NewFromHex] decode key: %w", err)
	}
	return New(inner, key)
}

func (s *KV) Get(ctx context.Context, key string) (string, bool, error) {
	raw, ok, err := s.inner.Get(ctx, key)
	if err != nil || !ok {
		return "", ok, err
	}
	plain, err := s.open(key, raw)
	if err != nil {
		return "", false, err
	}
	return plain, true, nil
}

func (s *KV) Set(ctx context.Context, key, value string) error {
	sealed, err := s.seal(key, value)
	if err != nil {
		return err
	}
	return s.inner.Set(ctx, key, sealed)
}

func (s *KV) SetMany(ctx context.Context, entries []storage.Entry) error {
	sealedEntries := make([]storage.Entry, 0, len(entries))
	for _, e := range entries {
		v, err := s.seal(e.Key, e.Value)
		if err != nil {
			return err
		}
		sealedEntries = append(sealedEntries, storage.Entry{Key: e.Key, Value: v})
	}

	if bw, ok := s.inner.(storage.BatchWriter); ok {
		return bw.SetMany(ctx, sealedEntries)
	}
	for _, e := range sealedEntries {
		if err := s.inner.Set(ctx, e.Key, e.Value); err != nil {
			return err
		}
	}
	return nil
}

func (s *KV) Delete(ctx context.Context, key string) error {
	return s.inner.Delete(ctx, key)
}

func (s *KV) Clear(ctx context.Context) error {
	return s.inner.Clear(ctx)
}

func (s *KV) seal(key, value string) (string, error) {
	nonce := make([]byte, s.aead.NonceSize())
	if _, err := rand.Read(nonce); err != nil {
		return "", fmt.Errorf("[sealed seal] nonce: %w: %w", apperrors.ErrStorage, err)
	}
	out := s.aead.Seal(nonce, nonce, []byte(value), []byte(key))
	return base64.RawStdEncoding.EncodeToString(out), nil
}

func (s *KV) open(key, raw string) (string, error) {
	data, err := base64.RawStdEncoding.DecodeString(raw)
	if err != nil {
		return "", fmt.Errorf("[sealed open] %s: %w: %w", key, apperrors.ErrParse, err)
	}
	n := s.aead.NonceSize()
	if len(data) < n {
		return "", fmt.Errorf("[sealed open] %s: %w: value too short", key, apperrors.ErrParse)
	}
	plain, err := s.aead.Open(nil, data[:n], data[n:], []byte(key))
	if err != nil {
		return "", fmt.Errorf("[sealed open] %s: %w: %w", key, apperrors.ErrParse, err)
	}
	return string(plain), nil
}
