// Package memory keeps the per-user bounded conversation history.
package memory

import (
	"sync"

	"github.com/kailas-cloud/campusbot/internal/domain"
)

// MaxTurns is the history cap per user; the oldest turn is evicted first.
const MaxTurns = 10

// History is a process-wide conversation store. Each user gets its own
// mutex, so two quick messages from one user serialize against each other
// while different users never contend. Users are never evicted — only their
// turns are capped.
type History struct {
	users sync.Map // userID -> *userHistory
}

type userHistory struct {
	mu    sync.Mutex
	turns []domain.Turn
}

// NewHistory creates an empty history store.
func NewHistory() *History {
	return &History{}
}

// Append records one turn for a user, evicting from the front past MaxTurns.
func (h *History) Append(userID string, role domain.Role, content string) {
	v, _ := h.users.LoadOrStore(userID, &userHistory{})
	u := v.(*userHistory)

	u.mu.Lock()
	defer u.mu.Unlock()

	u.turns = append(u.turns, domain.Turn{Role: role, Content: content})
	if len(u.turns) > MaxTurns {
		u.turns = u.turns[len(u.turns)-MaxTurns:]
	}
}

// Get returns a copy of the user's turns, oldest first. Unknown users get
// an empty slice.
func (h *History) Get(userID string) []domain.Turn {
	v, ok := h.users.Load(userID)
	if !ok {
		return nil
	}
	u := v.(*userHistory)

	u.mu.Lock()
	defer u.mu.Unlock()

	out := make([]domain.Turn, len(u.turns))
	copy(out, u.turns)
	return out
}

// ActiveUsers returns the number of users with any recorded history.
func (h *History) ActiveUsers() int {
	n := 0
	h.users.Range(func(_, _ any) bool {
		n++
		return true
	})
	return n
}
