package orders

import (
	"fmt"
	"math/rand"
	"sync"
	"time"
)

// NumberGenerator produces human-readable order numbers of the form
// ORD-YYYYMMDDHHMMSS-NNNNNN. Collisions are accepted as negligible; the
// unique index on orders.order_number is the backstop.
type NumberGenerator struct {
	now  func() time.Time
	mu   sync.Mutex
	rand *rand.Rand
}

// NewNumberGenerator builds a generator over the provided clock and random
// source. Nil arguments fall back to the wall clock and a time-seeded source.
func NewNumberGenerator(now func() time.Time, source rand.Source) *NumberGenerator {
	if now == nil {
		now = func() time.Time { return time.Now().UTC() }
	}
	if source == nil {
		source = rand.NewSource(time.Now().UnixNano())
	}
	return &NumberGenerator{now: now, rand: rand.New(source)}
}

// Generate returns the next order number.
func (g *NumberGenerator) Generate() string {
	g.mu.Lock()
	suffix := g.rand.Intn(1000000)
	g.mu.Unlock()
	return fmt.Sprintf("ORD-%s-%06d", g.now().Format("20060102150405"), suffix)
}
