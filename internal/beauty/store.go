package beauty

import "sync"

// ChangeKind says which operation produced a Change.
type ChangeKind string

const (
	ChangeUpdate  ChangeKind = "update"
	ChangeEnabled ChangeKind = "enabled"
	ChangeReset   ChangeKind = "reset"
	ChangeRestore ChangeKind = "restore"
)

// Change is delivered to subscribers after every mutation.
type Change struct {
	Kind       ChangeKind
	Key        Key
	Parameters Parameters
	Enabled    bool
	Effective  Effective
}

// Snapshot is the complete state of a Store.
type Snapshot struct {
	Parameters Parameters `json:"parameters"`
	Enabled    bool       `json:"enabled"`
}

// Store holds the parameter set and the enabled flag of one mirror view.
//
// Subscribers run synchronously on the mutating goroutine, one change at a
// time, before the mutator returns. They may read the store but must not
// mutate it.
type Store struct {
	notifyMu sync.Mutex
	mu       sync.RWMutex
	params   Parameters
	enabled  bool
	nextID   int
	subs     map[int]func(Change)
	order    []int
}

// NewStore returns a store holding the defaults with effects enabled.
func NewStore() *Store {
	return &Store{params: DefaultParameters(), enabled: true, subs: map[int]func(Change){}}
}

// Subscribe registers fn and returns a function that removes it.
func (s *Store) Subscribe(fn func(Change)) func() {
	s.mu.Lock()
	id := s.nextID
	s.nextID++
	s.subs[id] = fn
	s.order = append(s.order, id)
	s.mu.Unlock()

	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		delete(s.subs, id)
		for i, v := range s.order {
			if v == id {
				s.order = append(s.order[:i], s.order[i+1:]...)
				break
			}
		}
	}
}

// Update replaces one stored value and returns the full set. Values are
// stored as given; callers bound them with Clamp.
func (s *Store) Update(k Key, value int) (Parameters, error) {
	s.notifyMu.Lock()
	defer s.notifyMu.Unlock()

	s.mu.Lock()
	next, err := s.params.With(k, value)
	if err != nil {
		s.mu.Unlock()
		return s.Parameters(), err
	}
	s.params = next
	change, subs := s.changeLocked(ChangeUpdate, k)
	s.mu.Unlock()

	deliver(subs, change)
	return next, nil
}

// SetEnabled sets the flag. Stored values are untouched.
func (s *Store) SetEnabled(enabled bool) {
	s.notifyMu.Lock()
	defer s.notifyMu.Unlock()

	s.mu.Lock()
	s.enabled = enabled
	change, subs := s.changeLocked(ChangeEnabled, "")
	s.mu.Unlock()

	deliver(subs, change)
}

// Toggle flips the flag and returns the new value.
func (s *Store) Toggle() bool {
	s.notifyMu.Lock()
	defer s.notifyMu.Unlock()

	s.mu.Lock()
	s.enabled = !s.enabled
	enabled := s.enabled
	change, subs := s.changeLocked(ChangeEnabled, "")
	s.mu.Unlock()

	deliver(subs, change)
	return enabled
}

// Reset restores the default parameters. The flag is left as is.
func (s *Store) Reset() Parameters {
	s.notifyMu.Lock()
	defer s.notifyMu.Unlock()

	s.mu.Lock()
	s.params = DefaultParameters()
	params := s.params
	change, subs := s.changeLocked(ChangeReset, "")
	s.mu.Unlock()

	deliver(subs, change)
	return params
}

// Restore replaces parameters and flag at once, as when loading a preset.
func (s *Store) Restore(params Parameters, enabled bool) {
	s.notifyMu.Lock()
	defer s.notifyMu.Unlock()

	s.mu.Lock()
	s.params = params.Clamped()
	s.enabled = enabled
	change, subs := s.changeLocked(ChangeRestore, "")
	s.mu.Unlock()

	deliver(subs, change)
}

// Parameters returns the stored values.
func (s *Store) Parameters() Parameters {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.params
}

// Enabled reports the flag.
func (s *Store) Enabled() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.enabled
}

// Effective returns the current engine view.
func (s *Store) Effective() Effective {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.params.Effective(s.enabled)
}

// Snapshot returns parameters and flag together.
func (s *Store) Snapshot() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return Snapshot{Parameters: s.params, Enabled: s.enabled}
}

func (s *Store) changeLocked(kind ChangeKind, k Key) (Change, []func(Change)) {
	subs := make([]func(Change), 0, len(s.order))
	for _, id := range s.order {
		subs = append(subs, s.subs[id])
	}
	return Change{
		Kind:       kind,
		Key:        k,
		Parameters: s.params,
		Enabled:    s.enabled,
		Effective:  s.params.Effective(s.enabled),
	}, subs
}

func deliver(subs []func(Change), change Change) {
	for _, fn := range subs {
		fn(change)
	}
}
