// Package simulation expands a static diagram into a synthetic time series of
// tick records and renders it as CSV.
//
// Generation reads the wall clock and a random source. Both are injected so
// tests can pin them; the defaults are time.Now and math/rand/v2.
package simulation

import (
	"math/rand/v2"
	"time"

	"github.com/ThatOrJohn/flowturi-designer/internal/core/diagram"
)

// MaxValue bounds synthetic link values: every value lies in [0, MaxValue).
const MaxValue = 100

// Clock supplies the generation start instant.
type Clock interface {
	Now() time.Time
}

// ClockFunc adapts a function to Clock.
type ClockFunc func() time.Time

// Now implements Clock
func (f ClockFunc) Now() time.Time { return f() }

// FixedClock always returns t.
func FixedClock(t time.Time) Clock {
	return ClockFunc(func() time.Time { return t })
}

// Random supplies synthetic values. *rand.Rand from math/rand/v2 satisfies it.
type Random interface {
	IntN(n int) int
}

// RandomFunc adapts a function to Random.
type RandomFunc func(n int) int

// IntN implements Random
func (f RandomFunc) IntN(n int) int { return f(n) }

// Node is the label of one node present at a tick.
type Node struct {
	Name string `json:"name" yaml:"name" msgpack:"name"`
}

// Link is one edge at one tick with its synthetic value.
type Link struct {
	Source string `json:"source" yaml:"source" msgpack:"source"`
	Target string `json:"target" yaml:"target" msgpack:"target"`
	Value  int    `json:"value" yaml:"value" msgpack:"value"`
}

// TickRecord is one synthetic time step.
type TickRecord struct {
	Timestamp time.Time `json:"timestamp" yaml:"timestamp" msgpack:"timestamp"`
	Tick      int       `json:"tick" yaml:"tick" msgpack:"tick"` // 1-based
	Nodes     []Node    `json:"nodes" yaml:"nodes" msgpack:"nodes"`
	Links     []Link    `json:"links" yaml:"links" msgpack:"links"`
}

// Generator produces tick series. The zero value is not usable; use NewGenerator.
type Generator struct {
	clock  Clock
	random Random
}

// GeneratorOption configures a Generator.
type GeneratorOption func(*Generator)

// WithClock overrides the clock.
func WithClock(c Clock) GeneratorOption {
	return func(g *Generator) { g.clock = c }
}

// WithRandom overrides the random source.
func WithRandom(r Random) GeneratorOption {
	return func(g *Generator) { g.random = r }
}

// NewGenerator creates a generator using the wall clock and the global
// math/rand/v2 source unless overridden.
func NewGenerator(opts ...GeneratorOption) *Generator {
	g := &Generator{
		clock:  ClockFunc(time.Now),
		random: RandomFunc(rand.IntN),
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Generate expands nodes and edges into Settings.TotalTicks records, one per
// interval starting at the clock's current instant.
//
// Edges whose endpoints are missing from nodes resolve to an empty label
// instead of failing.
func (g *Generator) Generate(nodes []diagram.Node, edges []diagram.Edge, settings Settings) ([]TickRecord, error) {
	if err := settings.Validate(); err != nil {
		return nil, err
	}

	labels := make(map[string]string, len(nodes))
	for i := len(nodes) - 1; i >= 0; i-- {
		// first occurrence wins on duplicate ids
		labels[nodes[i].ID] = nodes[i].Label
	}

	start := g.clock.Now()
	step := settings.IntervalDuration()
	total := settings.TotalTicks()

	records := make([]TickRecord, 0, total)
	for tick := 0; tick < total; tick++ {
		names := make([]Node, len(nodes))
		for i, n := range nodes {
			names[i] = Node{Name: n.Label}
		}

		links := make([]Link, len(edges))
		for i, e := range edges {
			links[i] = Link{
				Source: labels[e.Source],
				Target: labels[e.Target],
				Value:  g.random.IntN(MaxValue),
			}
		}

		records = append(records, TickRecord{
			Timestamp: start.Add(time.Duration(tick) * step),
			Tick:      tick + 1,
			Nodes:     names,
			Links:     links,
		})
	}

	return records, nil
}

// GenerateSnapshot is Generate over a snapshot's nodes and edges.
func (g *Generator) GenerateSnapshot(s diagram.Snapshot, settings Settings) ([]TickRecord, error) {
	return g.Generate(s.Nodes, s.Edges, settings)
}
