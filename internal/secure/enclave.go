package secure

import (
	"errors"
	"sync"

	"github.com/awnumar/memguard"
)

// ErrDestroyed is returned when revealing a buffer after Destroy.
var ErrDestroyed = errors.New("secure buffer already destroyed")

// SecureBuffer holds a secret value encrypted at rest in memory. It wraps
// memguard.Enclave with idempotent destruction so callers can defer Destroy
// unconditionally.
type SecureBuffer struct {
	enclave   *memguard.Enclave // nil when the value is empty
	mu        sync.RWMutex
	destroyed bool
}

// NewSecureBuffer creates a protected buffer from secret bytes. The data is
// copied into an encrypted enclave; memguard wipes the source slice.
func NewSecureBuffer(data []byte) (*SecureBuffer, error) {
	if len(data) == 0 {
		// memguard cannot seal zero-length data; an empty value needs no protection
		return &SecureBuffer{}, nil
	}
	return &SecureBuffer{enclave: memguard.NewEnclave(data)}, nil
}

// NewSecureBufferFromString creates a protected buffer from a secret string.
// The original string cannot be wiped (Go strings are immutable), so callers
// should avoid keeping references to it.
func NewSecureBufferFromString(value string) (*SecureBuffer, error) {
	return NewSecureBuffer([]byte(value))
}

// Reveal decrypts the enclave and returns a plaintext copy of the value.
// The decrypted working buffer is wiped before returning; only the returned
// string remains, so callers should keep its lifetime short.
func (s *SecureBuffer) Reveal() (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.destroyed {
		return "", ErrDestroyed
	}
	if s.enclave == nil {
		return "", nil
	}

	locked, err := s.enclave.Open()
	if err != nil {
		return "", err
	}
	defer locked.Destroy()

	// string([]byte) copies, so the locked region can be wiped on return
	return string(locked.Bytes()), nil
}

// Destroy marks the buffer as destroyed and prevents further use. The
// encrypted enclave data is garbage collected; processes that want every
// memguard session key wiped at exit can additionally call memguard.Purge().
//
// Destroy is idempotent. After Destroy(), Reveal() returns ErrDestroyed.
func (s *SecureBuffer) Destroy() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.destroyed {
		return
	}

	s.enclave = nil
	s.destroyed = true
}
