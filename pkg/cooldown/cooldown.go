package cooldown

import (
	"context"
	"time"

	redis "github.com/redis/go-redis/v9"
)

// DefaultWindow is the per-user command throttle. A UX smoothing measure
// only; invariants are re-checked at every mutation, never assumed from
// the throttle.
const DefaultWindow = 2500 * time.Millisecond

// Guard throttles commands per user with a redis key that expires on its
// own, so a crashed process never leaves a user locked out.
type Guard struct {
	rdb    *redis.Client
	window time.Duration
	prefix string
}

func NewGuard(rdb *redis.Client, window time.Duration) *Guard {
	if window <= 0 {
		window = DefaultWindow
	}
	return &Guard{rdb: rdb, window: window, prefix: "cooldown:"}
}

// Acquire reports whether the user may run a command now. The first call in
// a window wins and starts the window; later calls lose until it lapses.
func (g *Guard) Acquire(ctx context.Context, userID string) (bool, error) {
	return g.rdb.SetNX(ctx, g.prefix+userID, 1, g.window).Result()
}

// Remaining returns how long until the user's window lapses; zero when the
// user is not throttled.
func (g *Guard) Remaining(ctx context.Context, userID string) (time.Duration, error) {
	ttl, err := g.rdb.PTTL(ctx, g.prefix+userID).Result()
	if err != nil {
		return 0, err
	}
	if ttl < 0 {
		return 0, nil
	}
	return ttl, nil
}
