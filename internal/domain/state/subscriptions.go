package state

import (
	"strings"
	"sync"

	"go.uber.org/zap"
)

// Callback observes a path. value is the value at the subscribed path and
// changedPath is the path that was written.
type Callback func(value any, changedPath string)

type subscription struct {
	id uint64
	cb Callback
}

// Subscribe registers cb on path. Callbacks on one path run in registration
// order. The returned function removes exactly this registration and is safe
// to call more than once.
func (s *Store) Subscribe(path string, cb Callback) func() {
	s.subMu.Lock()
	s.nextID++
	id := s.nextID
	s.subs[path] = append(s.subs[path], subscription{id: id, cb: cb})
	s.subMu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() { s.unsubscribe(path, id) })
	}
}

func (s *Store) unsubscribe(path string, id uint64) {
	s.subMu.Lock()
	defer s.subMu.Unlock()

	subs := s.subs[path]
	for i, sub := range subs {
		if sub.id == id {
			s.subs[path] = append(subs[:i:i], subs[i+1:]...)
			break
		}
	}
	if len(s.subs[path]) == 0 {
		delete(s.subs, path)
	}
}

// SubscriberCount returns the number of callbacks registered on path.
func (s *Store) SubscriberCount(path string) int {
	s.subMu.RLock()
	defer s.subMu.RUnlock()
	return len(s.subs[path])
}

func (s *Store) callbacks(path string) []subscription {
	s.subMu.RLock()
	defer s.subMu.RUnlock()
	subs := s.subs[path]
	if len(subs) == 0 {
		return nil
	}
	return append([]subscription(nil), subs...)
}

// notify runs the exact phase then the ancestor phase, nearest ancestor
// first, and returns the number of callbacks invoked.
func (s *Store) notify(path string, value any) int {
	count := 0
	for _, sub := range s.callbacks(path) {
		s.invoke(sub, value, path)
		count++
	}

	segs := splitPath(path)
	for len(segs) >= 2 {
		segs = segs[:len(segs)-1]
		ancestor := strings.Join(segs, ".")
		for _, sub := range s.callbacks(ancestor) {
			current, _ := s.Get(ancestor)
			s.invoke(sub, current, path)
			count++
		}
	}
	return count
}

func (s *Store) invoke(sub subscription, value any, changedPath string) {
	defer func() {
		if r := recover(); r != nil {
			s.metrics.IncSubscriberPanics()
			s.logger.Error("subscriber panicked",
				zap.String("path", changedPath),
				zap.Any("panic", r),
			)
		}
	}()
	sub.cb(value, changedPath)
}
