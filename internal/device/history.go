package device

import (
	"iter"
	"sync"
)

// CharacteristicStore is a per-extension, append-only store of recorded
// characteristic values.
//
// Values are never rejected. Retention is configurable per
// characteristic (last-N, default unbounded); trimming always preserves
// the value with the maximum recorded timestamp, so Latest stays
// correct whatever the retention policy.
//
// Thread Safety:
//   - All methods are safe for concurrent use from multiple goroutines.
type CharacteristicStore struct {
	mu        sync.RWMutex
	values    map[Characteristic][]RecordedValue
	retention map[Characteristic]int // 0 or absent = unbounded
}

// NewCharacteristicStore creates an empty store with unbounded retention.
func NewCharacteristicStore() *CharacteristicStore {
	return &CharacteristicStore{
		values:    make(map[Characteristic][]RecordedValue),
		retention: make(map[Characteristic]int),
	}
}

// SetRetention limits the characteristic to the given number of
// retained values. Zero or negative removes the limit.
//
// A brightness reading only ever needs its latest value; a temperature
// sensor may warrant weeks of readings. Implementors of extensions
// choose per characteristic.
func (s *CharacteristicStore) SetRetention(c Characteristic, n int) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if n <= 0 {
		delete(s.retention, c)
		return
	}
	s.retention[c] = n
	s.trimLocked(c)
}

// Insert appends a recorded value for the characteristic.
func (s *CharacteristicStore) Insert(value RecordedValue, c Characteristic) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.values[c] = append(s.values[c], value)
	s.trimLocked(c)
}

// Latest returns the recorded value with the maximum timestamp for the
// characteristic, or false if none was ever recorded.
//
// Insertion order and chronological order may differ: a retried report
// can arrive after a fresher one. Latest always answers by timestamp.
func (s *CharacteristicStore) Latest(c Characteristic) (RecordedValue, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	stored := s.values[c]
	if len(stored) == 0 {
		return RecordedValue{}, false
	}

	latest := stored[0]
	for _, v := range stored[1:] {
		if v.RecordedAt.After(latest.RecordedAt) {
			latest = v
		}
	}
	return latest, true
}

// History returns a restartable sequence over all retained values for
// the characteristic, in unspecified order. The sequence is empty if
// nothing was recorded. Each iteration sees a point-in-time snapshot.
func (s *CharacteristicStore) History(c Characteristic) iter.Seq[RecordedValue] {
	return func(yield func(RecordedValue) bool) {
		s.mu.RLock()
		snapshot := make([]RecordedValue, len(s.values[c]))
		copy(snapshot, s.values[c])
		s.mu.RUnlock()

		for _, v := range snapshot {
			if !yield(v) {
				return
			}
		}
	}
}

// Count returns the number of retained values for the characteristic.
func (s *CharacteristicStore) Count(c Characteristic) int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.values[c])
}

// trimLocked enforces the retention limit for the characteristic.
// Callers must hold the write lock.
//
// The value with the oldest timestamp is evicted first, which by
// construction can never be the maximum-timestamp value while more
// than one value remains.
func (s *CharacteristicStore) trimLocked(c Characteristic) {
	limit, ok := s.retention[c]
	if !ok || limit <= 0 {
		return
	}

	stored := s.values[c]
	for len(stored) > limit {
		oldest := 0
		for i, v := range stored[1:] {
			if v.RecordedAt.Before(stored[oldest].RecordedAt) {
				oldest = i + 1
			}
		}
		stored = append(stored[:oldest], stored[oldest+1:]...)
	}
	s.values[c] = stored
}
