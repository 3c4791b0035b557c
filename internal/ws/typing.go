package ws

import (
	"sync"
	"time"
)

// typingTTL is how long a typing indicator survives without a follow-up
// event. Matches the 3 second window the web client expects.
const typingTTL = 3000 * time.Millisecond

// typingTracker keeps the set of users currently typing in one trip room.
// One timer per user id: repeated is_typing events reschedule the existing
// timer instead of stacking independent ones, so a burst of keystrokes never
// flickers the indicator off early.
type typingTracker struct {
	mu     sync.Mutex
	ttl    time.Duration
	timers map[string]*time.Timer
	expire func(userID string)
}

func newTypingTracker(ttl time.Duration, expire func(userID string)) *typingTracker {
	return &typingTracker{
		ttl:    ttl,
		timers: make(map[string]*time.Timer),
		expire: expire,
	}
}

// start marks the user as typing and arms (or re-arms) their expiry timer.
func (t *typingTracker) start(userID string) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if timer, ok := t.timers[userID]; ok {
		timer.Stop()
	}

	var timer *time.Timer
	timer = time.AfterFunc(t.ttl, func() {
		t.mu.Lock()
		current, ok := t.timers[userID]
		if !ok || current != timer {
			// a newer event rescheduled or stopped this entry
			t.mu.Unlock()
			return
		}
		delete(t.timers, userID)
		t.mu.Unlock()

		if t.expire != nil {
			t.expire(userID)
		}
	})
	t.timers[userID] = timer
}

// stop clears the user immediately, regardless of any pending timer. It
// reports whether the user was in the typing set.
func (t *typingTracker) stop(userID string) bool {
	t.mu.Lock()
	defer t.mu.Unlock()

	timer, ok := t.timers[userID]
	if !ok {
		return false
	}
	timer.Stop()
	delete(t.timers, userID)
	return true
}

// isTyping reports whether the user is currently in the typing set.
func (t *typingTracker) isTyping(userID string) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	_, ok := t.timers[userID]
	return ok
}

// active returns the user ids currently typing.
func (t *typingTracker) active() []string {
	t.mu.Lock()
	defer t.mu.Unlock()

	users := make([]string, 0, len(t.timers))
	for userID := range t.timers {
		users = append(users, userID)
	}
	return users
}

// stopAll cancels every pending timer. Used when a room closes so no expiry
// callback fires after teardown.
func (t *typingTracker) stopAll() {
	t.mu.Lock()
	defer t.mu.Unlock()

	for userID, timer := range t.timers {
		timer.Stop()
		delete(t.timers, userID)
	}
}
