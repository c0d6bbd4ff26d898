package locker

import (
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func TestAcquireSerializesSameNote(t *testing.T) {
	l := NewNoteLocker()
	noteId := uuid.New()

	const workers = 32
	counter := 0

	var wg sync.WaitGroup
	wg.Add(workers)
	for i := 0; i < workers; i++ {
		go func() {
			defer wg.Done()
			release := l.Acquire(noteId)
			defer release()
			// Unsynchronized on purpose; the lock is the only thing
			// keeping this increment race-free.
			counter++
		}()
	}
	wg.Wait()

	assert.Equal(t, workers, counter)
}

func TestDisjointNotesDoNotContend(t *testing.T) {
	l := NewNoteLocker()

	releaseA := l.Acquire(uuid.New())
	defer releaseA()

	done := make(chan struct{})
	go func() {
		release := l.Acquire(uuid.New())
		release()
		close(done)
	}()

	// Must complete while the first lock is still held.
	<-done
}

func TestReleaseEvictsUnusedEntries(t *testing.T) {
	l := NewNoteLocker()
	noteId := uuid.New()

	release := l.Acquire(noteId)
	release()

	l.mu.Lock()
	defer l.mu.Unlock()
	assert.Empty(t, l.locks)
}

func TestReleaseIsIdempotent(t *testing.T) {
	l := NewNoteLocker()
	noteId := uuid.New()

	release := l.Acquire(noteId)
	release()
	release()

	// A double release must not unlock a later holder's mutex.
	second := l.Acquire(noteId)
	second()
}
