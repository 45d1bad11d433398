package invoice

import (
	"math/rand/v2"
	"strings"
	"time"
)

const alphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

const suffixLen = 4

// Generator builds booking references of the form PREFIX-YYMMDD-XXXX.
// Ids are not checked against existing bookings.
type Generator struct {
	prefix string
	loc    *time.Location
	now    func() time.Time
	intN   func(n int) int
}

type Option func(*Generator)

func WithClock(now func() time.Time) Option {
	return func(g *Generator) {
		g.now = now
	}
}

func WithRandom(intN func(n int) int) Option {
	return func(g *Generator) {
		g.intN = intN
	}
}

func WithLocation(loc *time.Location) Option {
	return func(g *Generator) {
		if loc != nil {
			g.loc = loc
		}
	}
}

func NewGenerator(prefix string, opts ...Option) *Generator {
	g := &Generator{
		prefix: prefix,
		loc:    time.Local,
		now:    time.Now,
		intN:   rand.IntN,
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

func (g *Generator) Generate() string {
	var b strings.Builder
	b.Grow(len(g.prefix) + 1 + 6 + 1 + suffixLen)
	b.WriteString(g.prefix)
	b.WriteByte('-')
	b.WriteString(g.now().In(g.loc).Format("060102"))
	b.WriteByte('-')
	for i := 0; i < suffixLen; i++ {
		b.WriteByte(alphabet[g.intN(len(alphabet))])
	}
	return b.String()
}
