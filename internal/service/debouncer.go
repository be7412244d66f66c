package service

import (
	"context"
	"sync"
	"time"
)

// Debouncer : каждый новый запрос сессии вытесняет предыдущий, до API доходит
// только тот, за которым в течение delay ничего не пришло
type Debouncer struct {
	mu     sync.Mutex
	delay  time.Duration
	next   uint64
	latest map[string]uint64
}

func NewDebouncer(delay time.Duration) *Debouncer {
	return &Debouncer{delay: delay, latest: make(map[string]uint64)}
}

// Wait : ok == false, если за время ожидания пришёл более новый запрос
func (d *Debouncer) Wait(ctx context.Context, key string) (ticket uint64, ok bool, err error) {
	// билеты уникальны на весь процесс, поэтому ключ можно удалять в Done
	d.mu.Lock()
	d.next++
	ticket = d.next
	d.latest[key] = ticket
	d.mu.Unlock()

	if d.delay > 0 {
		timer := time.NewTimer(d.delay)
		defer timer.Stop()

		select {
		case <-ctx.Done():
			return ticket, false, ctx.Err()
		case <-timer.C:
		}
	}

	return ticket, d.Current(key, ticket), nil
}

func (d *Debouncer) Current(key string, ticket uint64) bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.latest[key] == ticket
}

// Done : последний запрос сессии завершён, счётчик больше не нужен
func (d *Debouncer) Done(key string, ticket uint64) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.latest[key] == ticket {
		delete(d.latest, key)
	}
}
