package browser

import (
	"context"
	"sync"
	"time"
)

// Store : состояние одной сессии проводника; все изменения идут через Dispatch
type Store struct {
	mu         sync.Mutex
	state      State
	cancelLoad context.CancelFunc
	touchedAt  time.Time
}

func NewStore() *Store {
	return &Store{state: NewState(), touchedAt: time.Now()}
}

func (s *Store) Dispatch(cmd Command) (State, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	next, err := Reduce(s.state, cmd)
	if err != nil {
		return s.state.Clone(), err
	}
	s.state = next
	s.touchedAt = time.Now()
	return next.Clone(), nil
}

func (s *Store) Snapshot() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.Clone()
}

// Navigate : применяет навигационную команду, отменяет предыдущую загрузку
// и возвращает контекст для новой. Отмена обязательна к вызову.
func (s *Store) Navigate(parent context.Context, cmd Command) (context.Context, context.CancelFunc, State, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	next, err := Reduce(s.state, cmd)
	if err != nil {
		return nil, nil, s.state.Clone(), err
	}

	if s.cancelLoad != nil {
		s.cancelLoad()
	}
	ctx, cancel := context.WithCancel(parent)
	s.cancelLoad = cancel
	s.state = next
	s.touchedAt = time.Now()

	return ctx, cancel, next.Clone(), nil
}

func (s *Store) idleSince() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.touchedAt
}

// Registry : сторы по ключу сессии (пользователь + вкладка)
type Registry struct {
	mu     sync.Mutex
	stores map[string]*Store
}

func NewRegistry() *Registry {
	return &Registry{stores: make(map[string]*Store)}
}

func (r *Registry) Get(key string) *Store {
	r.mu.Lock()
	defer r.mu.Unlock()

	store, ok := r.stores[key]
	if !ok {
		store = NewStore()
		r.stores[key] = store
	}
	return store
}

// Sweep : удаляет сессии, к которым не обращались дольше maxIdle
func (r *Registry) Sweep(maxIdle time.Duration) int {
	r.mu.Lock()
	defer r.mu.Unlock()

	removed := 0
	deadline := time.Now().Add(-maxIdle)
	for key, store := range r.stores {
		if store.idleSince().Before(deadline) {
			delete(r.stores, key)
			removed++
		}
	}
	return removed
}

func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.stores)
}
