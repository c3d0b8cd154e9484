package account

import (
	"sync"
	"time"
)

// Runtime is the mutable in-memory state of one account. Records are
// created on first access and live for the lifetime of the process.
// Field updates go through Store methods, which hold the store lock.
type Runtime struct {
	AccountID      string
	Running        bool
	Connected      bool
	LastMessageAt  time.Time
	LastInboundAt  time.Time
	LastOutboundAt time.Time
	LastError      string
	MessageCount   int64
}

// Store maps normalized account ids to their runtime records. It is the
// single shared mutable resource of the gateway.
type Store struct {
	mu       sync.Mutex
	accounts map[string]*Runtime
}

// NewStore creates an empty runtime store.
func NewStore() *Store {
	return &Store{accounts: make(map[string]*Runtime)}
}

// GetOrCreate returns the record for the normalized id, creating an
// inactive zero-valued record on first access. Concurrent calls for the
// same unseen id observe a single record.
func (s *Store) GetOrCreate(accountID string) *Runtime {
	id := NormalizeID(accountID)

	s.mu.Lock()
	defer s.mu.Unlock()

	rt, ok := s.accounts[id]
	if !ok {
		rt = &Runtime{AccountID: id}
		s.accounts[id] = rt
	}
	return rt
}

// View returns a copy of the record for reading. The record is created if
// it does not exist yet.
func (s *Store) View(accountID string) Runtime {
	id := NormalizeID(accountID)

	s.mu.Lock()
	defer s.mu.Unlock()

	rt, ok := s.accounts[id]
	if !ok {
		rt = &Runtime{AccountID: id}
		s.accounts[id] = rt
	}
	return *rt
}

// RecordInbound stamps inbound activity on the account.
func (s *Store) RecordInbound(accountID string, at time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	rt := s.locked(accountID)
	rt.LastInboundAt = at
	rt.LastMessageAt = at
}

// RecordOutbound stamps a successful outbound delivery and bumps the
// message counter.
func (s *Store) RecordOutbound(accountID string, at time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	rt := s.locked(accountID)
	rt.LastOutboundAt = at
	rt.MessageCount++
}

// SetRunning marks the account's webhook route as bound or unbound.
func (s *Store) SetRunning(accountID string, running bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.locked(accountID).Running = running
}

// SetConnected marks external connectivity for the account.
func (s *Store) SetConnected(accountID string, connected bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.locked(accountID).Connected = connected
}

// SetLastError records the most recent failure for diagnostics.
func (s *Store) SetLastError(accountID, msg string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.locked(accountID).LastError = msg
}

// locked returns the record for id, creating it if needed. Callers must
// hold s.mu.
func (s *Store) locked(accountID string) *Runtime {
	id := NormalizeID(accountID)
	rt, ok := s.accounts[id]
	if !ok {
		rt = &Runtime{AccountID: id}
		s.accounts[id] = rt
	}
	return rt
}
