package locker

import (
	"sync"

	"github.com/google/uuid"
)

// NoteLocker serializes workflow transactions per note. Lock granularity
// is one mutex per note id; operations on disjoint notes never contend.
type NoteLocker struct {
	mu    sync.Mutex
	locks map[uuid.UUID]*noteLock
}

type noteLock struct {
	mu   sync.Mutex
	refs int
}

func NewNoteLocker() *NoteLocker {
	return &NoteLocker{
		locks: make(map[uuid.UUID]*noteLock),
	}
}

// Acquire blocks until the note's lock is held and returns the release
// function. Lock entries are reference counted so the map does not grow
// with every note ever touched.
func (l *NoteLocker) Acquire(noteId uuid.UUID) func() {
	l.mu.Lock()
	entry, ok := l.locks[noteId]
	if !ok {
		entry = &noteLock{}
		l.locks[noteId] = entry
	}
	entry.refs++
	l.mu.Unlock()

	entry.mu.Lock()

	var once sync.Once
	return func() {
		once.Do(func() {
			entry.mu.Unlock()
			l.mu.Lock()
			entry.refs--
			if entry.refs == 0 {
				delete(l.locks, noteId)
			}
			l.mu.Unlock()
		})
	}
}
