package checkout

import (
	"sync"
	"sync/atomic"

	"github.com/google/uuid"
)

// Activation is a one-shot latch scoped to a single activation of the
// return/verification view. TryEnter returns true exactly once; every later
// call returns false until the activation is torn down and a fresh one
// begins.
//
// Verification itself is idempotent, but the cart-clearing and notification
// side effects are not meant to run twice. The latch keeps the reconcile
// body from executing twice for the same activation, concurrently or
// sequentially.
type Activation struct {
	// Token identifies the activation in logs.
	Token   string
	entered atomic.Bool
}

// NewActivation returns a fresh, unentered activation.
func NewActivation() *Activation {
	return &Activation{Token: uuid.NewString()}
}

// TryEnter atomically checks-and-sets the latch.
func (a *Activation) TryEnter() bool {
	return a.entered.CompareAndSwap(false, true)
}

// ActivationSet tracks the live activation per key (the order id being
// reconciled). Begin returns the existing live activation for the key, or
// creates one; End tears it down so the next navigation starts fresh.
type ActivationSet struct {
	mu   sync.Mutex
	live map[string]*Activation
}

// NewActivationSet returns an empty set.
func NewActivationSet() *ActivationSet {
	return &ActivationSet{live: make(map[string]*Activation)}
}

// Begin returns the activation currently live for key, creating one if none.
func (s *ActivationSet) Begin(key string) *Activation {
	s.mu.Lock()
	defer s.mu.Unlock()

	if a, ok := s.live[key]; ok {
		return a
	}
	a := NewActivation()
	s.live[key] = a
	return a
}

// End tears down the live activation for key, if any.
func (s *ActivationSet) End(key string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.live, key)
}
