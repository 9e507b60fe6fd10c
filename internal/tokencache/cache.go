package tokencache

import (
	"regexp"
	"strconv"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/rbc-easyrent/signiflow-order-service/internal/models"
)

const (
	// DefaultTTL applies when the service supplies no expiry.
	DefaultTTL = time.Hour
	// MinTTL is the floor for any computed TTL.
	MinTTL = 5 * time.Minute
	// expiryMargin guards against clock skew and in-flight requests.
	expiryMargin = time.Minute
)

// legacy serialized-date token: /Date(1700000000000+1000)/
var dateTokenRe = regexp.MustCompile(`/Date\((\d+)`)

// Cache stores the authentication token envelope keyed by service identity.
// Last-writer-wins; concurrent misses performing redundant logins are
// tolerated because login is side-effect-free on the remote end.
type Cache interface {
	Get(key string) (models.TokenObject, bool)
	Put(key string, tok models.TokenObject, ttl time.Duration)
	Invalidate(key string)
}

type entry struct {
	tok       models.TokenObject
	expiresAt time.Time
}

// Memory is the in-process Cache. now is swappable for tests.
type Memory struct {
	mu      sync.Mutex
	entries map[string]entry
	now     func() time.Time
}

func NewMemory() *Memory {
	return &Memory{
		entries: make(map[string]entry),
		now:     time.Now,
	}
}

// Get returns the cached token envelope. An expired or malformed entry (no
// token string) is treated as absent and purged.
func (m *Memory) Get(key string) (models.TokenObject, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	e, ok := m.entries[key]
	if !ok {
		return models.TokenObject{}, false
	}
	if e.tok.TokenField == "" {
		zap.L().Warn("cached token malformed, purging", zap.String("key", key))
		delete(m.entries, key)
		return models.TokenObject{}, false
	}
	if m.now().After(e.expiresAt) {
		delete(m.entries, key)
		return models.TokenObject{}, false
	}
	return e.tok, true
}

func (m *Memory) Put(key string, tok models.TokenObject, ttl time.Duration) {
	if tok.TokenField == "" {
		zap.L().Warn("refusing to cache token without token string", zap.String("key", key))
		return
	}
	if ttl <= 0 {
		ttl = DefaultTTL
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries[key] = entry{tok: tok, expiresAt: m.now().Add(ttl)}
}

func (m *Memory) Invalidate(key string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.entries, key)
}

// SetNowFunc overrides the clock. Test hook.
func (m *Memory) SetNowFunc(now func() time.Time) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.now = now
}

// EffectiveTTL converts the legacy /Date(<millis>[+offset])/ expiry token
// into a cache TTL: max(MinTTL, expiry − now − 1m). An empty or unparseable
// expiry yields DefaultTTL.
func EffectiveTTL(tokenExpiryField string, now time.Time) time.Duration {
	if tokenExpiryField == "" {
		return DefaultTTL
	}
	match := dateTokenRe.FindStringSubmatch(tokenExpiryField)
	if match == nil {
		return DefaultTTL
	}
	millis, err := strconv.ParseInt(match[1], 10, 64)
	if err != nil {
		return DefaultTTL
	}

	expiry := time.Unix(millis/1000, 0)
	ttl := expiry.Sub(now) - expiryMargin
	if ttl < MinTTL {
		return MinTTL
	}
	return ttl
}
