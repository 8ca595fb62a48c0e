package workouts

import (
	"fmt"
	"sync"
	"time"

	"github.com/coocood/freecache"
	log "github.com/sirupsen/logrus"
)

const dayCacheSize = 10 * 1024 * 1024

// DayCache keeps marshaled day views per user. Entries carry the
// user's generation counter in their key, so invalidating a user is a
// single counter bump and stale entries just stop being addressable.
type DayCache struct {
	cache     *freecache.Cache
	expireSec int

	mx          sync.Mutex
	generations map[int]uint64
}

func NewDayCache(ttl time.Duration) *DayCache {
	return &DayCache{
		cache:       freecache.NewCache(dayCacheSize),
		expireSec:   int(ttl.Seconds()),
		generations: map[int]uint64{},
	}
}

func (c *DayCache) key(userID int, day time.Time) []byte {
	c.mx.Lock()
	gen := c.generations[userID]
	c.mx.Unlock()

	from, _ := dayBounds(day)
	return []byte(fmt.Sprintf("%d||%d||%s", userID, gen, from.Format(time.DateOnly)))
}

func (c *DayCache) Get(userID int, day time.Time) ([]byte, bool) {
	cached, err := c.cache.Get(c.key(userID, day))
	if err != nil {
		return nil, false
	}
	return cached, true
}

func (c *DayCache) Set(userID int, day time.Time, payload []byte) {
	if err := c.cache.Set(c.key(userID, day), payload, c.expireSec); err != nil {
		log.Errorf("day cache set for user %d: %s", userID, err)
	}
}

// InvalidateUser drops all cached day views of the given user.
func (c *DayCache) InvalidateUser(userID int) {
	c.mx.Lock()
	defer c.mx.Unlock()
	c.generations[userID]++
}
