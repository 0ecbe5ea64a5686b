package storetest

import (
	"errors"
	"sync"

	"github.com/j-veylop/yoga-coach-tui/internal/store"
)

// ErrInjected is returned by FailingBackend when a fault is switched on.
var ErrInjected = errors.New("injected storage fault")

// FailingBackend wraps a MemoryBackend and can be told to fail reads or
// writes, standing in for a full or broken storage medium.
type FailingBackend struct {
	*store.MemoryBackend

	mu         sync.Mutex
	failLoad   bool
	failSave   bool
	failDelete bool
	saves      int
}

// NewFailingBackend returns a healthy backend.
func NewFailingBackend() *FailingBackend {
	return &FailingBackend{MemoryBackend: store.NewMemoryBackend()}
}

// SetFaults switches individual faults on or off.
func (b *FailingBackend) SetFaults(load, save, del bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.failLoad, b.failSave, b.failDelete = load, save, del
}

// Saves counts Save calls, including failed ones.
func (b *FailingBackend) Saves() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.saves
}

func (b *FailingBackend) Load(key string) (string, bool, error) {
	b.mu.Lock()
	fail := b.failLoad
	b.mu.Unlock()
	if fail {
		return "", false, ErrInjected
	}
	return b.MemoryBackend.Load(key)
}

func (b *FailingBackend) Save(key, value string) error {
	b.mu.Lock()
	b.saves++
	fail := b.failSave
	b.mu.Unlock()
	if fail {
		return ErrInjected
	}
	return b.MemoryBackend.Save(key, value)
}

func (b *FailingBackend) Delete(key string) error {
	b.mu.Lock()
	fail := b.failDelete
	b.mu.Unlock()
	if fail {
		return ErrInjected
	}
	return b.MemoryBackend.Delete(key)
}
