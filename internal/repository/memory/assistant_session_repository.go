package memory

import (
	"time"

	"voicepad-be/pkg/voice/dispatch"
	"voicepad-be/pkg/voice/engine"

	"github.com/patrickmn/go-cache"
)

// AssistantSession is one live conversation: the engine plus the mailbox
// holding a staged task or note draft for the frontend dialog.
type AssistantSession struct {
	ID      string
	Engine  *engine.Engine
	Mailbox *dispatch.Mailbox
}

// AssistantSessionRepository keeps one session per websocket/API client.
// Sessions expire after the configured idle TTL; eviction deactivates the
// engine so a pending debounce timer cannot fire for a dead session.
type AssistantSessionRepository struct {
	cache *cache.Cache
}

func NewAssistantSessionRepository(ttl time.Duration) *AssistantSessionRepository {
	if ttl <= 0 {
		ttl = 30 * time.Minute
	}
	c := cache.New(ttl, 10*time.Minute)
	c.OnEvicted(func(_ string, v interface{}) {
		if sess, ok := v.(*AssistantSession); ok && sess.Engine != nil {
			sess.Engine.Deactivate()
		}
	})
	return &AssistantSessionRepository{
		cache: c,
	}
}

func (r *AssistantSessionRepository) Save(session *AssistantSession) {
	r.cache.Set(session.ID, session, cache.DefaultExpiration)
}

func (r *AssistantSessionRepository) Get(sessionID string) (*AssistantSession, bool) {
	if x, found := r.cache.Get(sessionID); found {
		return x.(*AssistantSession), true
	}
	return nil, false
}

// Touch refreshes the idle TTL on activity.
func (r *AssistantSessionRepository) Touch(sessionID string) {
	if x, found := r.cache.Get(sessionID); found {
		r.cache.Set(sessionID, x, cache.DefaultExpiration)
	}
}

func (r *AssistantSessionRepository) Delete(sessionID string) {
	r.cache.Delete(sessionID)
}

func (r *AssistantSessionRepository) Count() int {
	return r.cache.ItemCount()
}
