package ws

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

// detached returns a session with no connection; hub tests only touch the queue.
func detached(t *testing.T, user string, depth int) *Session {
	return newSession(nil, user, depth, zaptest.NewLogger(t))
}

func queued(s *Session) []MessageType {
	var out []MessageType
	for {
		select {
		case m, ok := <-s.queue:
			if !ok {
				return out
			}
			out = append(out, m.Type)
		default:
			return out
		}
	}
}

func TestHub_JoinLeave(t *testing.T) {
	hub := NewHub(zaptest.NewLogger(t))
	a, b := detached(t, "u1", 4), detached(t, "u2", 4)

	hub.Join(a)
	hub.Join(b)
	assert.Equal(t, 2, hub.Len())

	hub.Leave(a)
	assert.Equal(t, 1, hub.Len())
	_, open := <-a.queue
	assert.False(t, open, "Leave closes the queue")

	assert.NotPanics(t, func() { hub.Leave(a) })
	assert.Equal(t, 1, hub.Len())
}

func TestBroadcast_ReachesEverySession(t *testing.T) {
	hub := NewHub(zaptest.NewLogger(t))
	sessions := []*Session{detached(t, "a", 4), detached(t, "b", 4), detached(t, "c", 4)}
	for _, s := range sessions {
		hub.Join(s)
	}

	hub.Broadcast(Message{Type: MessageThemePreview})
	hub.Broadcast(Message{Type: MessageSiteSaved})

	for _, s := range sessions {
		assert.Equal(t, []MessageType{MessageThemePreview, MessageSiteSaved}, queued(s), s.user)
	}
}

func TestBroadcast_SlowSessionKeepsNewest(t *testing.T) {
	hub := NewHub(zaptest.NewLogger(t))
	slow := detached(t, "slow", 2)
	fast := detached(t, "fast", 8)
	hub.Join(slow)
	hub.Join(fast)

	hub.Broadcast(Message{Type: MessageThemePreview})
	hub.Broadcast(Message{Type: MessageThemePreview})
	hub.Broadcast(Message{Type: MessageThemeSaved})

	assert.Equal(t, []MessageType{MessageThemePreview, MessageThemeSaved}, queued(slow),
		"the oldest preview is evicted so the save still arrives")
	assert.Len(t, queued(fast), 3)
}

func TestSession_OfferReportsEviction(t *testing.T) {
	s := detached(t, "u", 1)
	assert.False(t, s.offer(Message{Type: MessageThemeCurrent}))
	assert.True(t, s.offer(Message{Type: MessageThemePreview}))
	require.Equal(t, []MessageType{MessageThemePreview}, queued(s))
}

func TestHub_ConcurrentJoinBroadcastLeave(t *testing.T) {
	hub := NewHub(zaptest.NewLogger(t))

	var wg sync.WaitGroup
	for i := range 20 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			s := detached(t, "user", 4)
			hub.Join(s)
			for range 8 {
				hub.Broadcast(Message{Type: MessageThemePreview})
			}
			if i%2 == 0 {
				hub.Leave(s)
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 10, hub.Len())
}
