package route

import (
	"sync"
	"time"

	C "github.com/sagernet/sing-connect/constant"
	"github.com/sagernet/sing/common"

	"github.com/benbjohnson/clock"
	"github.com/cenkalti/backoff/v4"
	lru "github.com/hashicorp/golang-lru/v2"
)

type attemptRecord struct {
	backoff  *backoff.ExponentialBackOff
	failures int
	retryAt  time.Time
}

// State remembers which routes recently failed and whether IPv6 routes may
// be used. It is shared by every connection attempt of one manager.
type State struct {
	access           sync.RWMutex
	clock            clock.Clock
	allowIPv6        bool
	networkChangedAt time.Time
	records          *lru.Cache[string, *attemptRecord]
}

func NewState(clk clock.Clock) *State {
	if clk == nil {
		clk = clock.New()
	}
	return &State{
		clock:     clk,
		allowIPv6: true,
		records:   common.Must1(lru.New[string, *attemptRecord](C.RouteRecordCapacity)),
	}
}

func (s *State) AllowIPv6() bool {
	s.access.RLock()
	defer s.access.RUnlock()
	return s.allowIPv6
}

func (s *State) SetAllowIPv6(allow bool) {
	s.access.Lock()
	defer s.access.Unlock()
	s.allowIPv6 = allow
}

// NetworkChanged records at and forgets every attempt record.
func (s *State) NetworkChanged(at time.Time) {
	s.access.Lock()
	defer s.access.Unlock()
	s.networkChangedAt = at
	s.records.Purge()
}

func (s *State) NetworkChangedAt() time.Time {
	s.access.RLock()
	defer s.access.RUnlock()
	return s.networkChangedAt
}

// RecordOutcome clears the record of key on success and extends its backoff
// on failure.
func (s *State) RecordOutcome(key string, err error) {
	s.access.Lock()
	defer s.access.Unlock()
	if err == nil {
		s.records.Remove(key)
		return
	}
	record, loaded := s.records.Get(key)
	if !loaded {
		record = &attemptRecord{backoff: s.newBackoff()}
		s.records.Add(key, record)
	}
	record.failures++
	record.retryAt = s.clock.Now().Add(record.backoff.NextBackOff())
}

// Delay returns how long key should wait before it is preferred again. Zero
// means the route is not backed off.
func (s *State) Delay(key string) time.Duration {
	s.access.RLock()
	defer s.access.RUnlock()
	record, loaded := s.records.Peek(key)
	if !loaded {
		return 0
	}
	return max(record.retryAt.Sub(s.clock.Now()), 0)
}

func (s *State) Failures(key string) int {
	s.access.RLock()
	defer s.access.RUnlock()
	record, loaded := s.records.Peek(key)
	if !loaded {
		return 0
	}
	return record.failures
}

func (s *State) newBackoff() *backoff.ExponentialBackOff {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = C.RouteBackoffInitial
	b.MaxInterval = C.RouteBackoffMax
	b.Multiplier = C.RouteBackoffMultiplier
	b.RandomizationFactor = 0
	b.MaxElapsedTime = 0
	b.Clock = s.clock
	b.Reset()
	return b
}
