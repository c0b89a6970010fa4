package service

import (
	"fmt"
	"sync"
	"time"
)

// memberLocks serializes token rotation per member / Sérialise la rotation des tokens par membre
// Idle entries are dropped on the next Lock once pruneAfter has elapsed.
type memberLocks struct {
	mu         sync.Mutex
	entries    map[int64]*memberLock
	pruneAfter time.Duration
	lastPrune  time.Time
	now        func() time.Time
}

type memberLock struct {
	sync.Mutex
	holders  int
	lastUsed time.Time
}

func newMemberLocks(pruneAfter time.Duration) *memberLocks {
	return &memberLocks{
		entries:    make(map[int64]*memberLock),
		pruneAfter: pruneAfter,
		now:        time.Now,
	}
}

// Lock blocks until the member's lock is held and returns its release func
func (l *memberLocks) Lock(userID int64) func() {
	l.mu.Lock()
	now := l.now()
	if now.Sub(l.lastPrune) >= l.pruneAfter {
		l.pruneLocked(now)
	}
	entry, ok := l.entries[userID]
	if !ok {
		entry = &memberLock{}
		l.entries[userID] = entry
	}
	entry.holders++
	entry.lastUsed = now
	l.mu.Unlock()

	entry.Lock()
	return func() {
		entry.Unlock()
		l.mu.Lock()
		entry.holders--
		l.mu.Unlock()
	}
}

// pruneLocked drops idle entries, l.mu must be held
func (l *memberLocks) pruneLocked(now time.Time) {
	for id, entry := range l.entries {
		if entry.holders == 0 && now.Sub(entry.lastUsed) >= l.pruneAfter {
			delete(l.entries, id)
		}
	}
	l.lastPrune = now
}

func (l *memberLocks) size() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.entries)
}

// humanizeWait renders a lockout as "45 seconds" or "15 minutes" / Affiche un verrouillage lisiblement
func humanizeWait(d time.Duration) string {
	if d < time.Minute {
		return plural(int(d.Seconds()), "second")
	}
	return plural(int(d.Round(time.Minute).Minutes()), "minute")
}

func plural(n int, unit string) string {
	if n == 1 {
		return "1 " + unit
	}
	return fmt.Sprintf("%d %ss", n, unit)
}
