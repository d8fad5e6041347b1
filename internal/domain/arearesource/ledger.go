package arearesource

import (
	"math"
	"sort"
)

// UnlimitedSentinel is how catalogs spell an inexhaustible pool.
const UnlimitedSentinel = -1

type PoolConfig struct {
	Location       string   `json:"location" yaml:"location"`
	Resource       string   `json:"resource" yaml:"resource"`
	Initial        float64  `json:"initial" yaml:"initial"`
	Maximum        *float64 `json:"maximum,omitempty" yaml:"maximum,omitempty"`
	GenerationRate float64  `json:"generation_rate,omitempty" yaml:"generation_rate,omitempty"`
}

// Pool is either Unlimited or a limited amount bounded by [0, ceiling].
type Pool struct {
	unlimited bool
	current   float64
	initial   float64
	maximum   *float64
	baseRate  float64
	rate      float64
}

func newPool(cfg PoolConfig) *Pool {
	p := &Pool{
		unlimited: cfg.Initial == UnlimitedSentinel,
		initial:   cfg.Initial,
		baseRate:  cfg.GenerationRate,
		rate:      cfg.GenerationRate,
	}
	if cfg.Maximum != nil {
		m := *cfg.Maximum
		p.maximum = &m
	}
	if p.unlimited {
		p.initial = 0
	}
	p.current = p.initial
	return p
}

func (p *Pool) Unlimited() bool { return p.unlimited }

func (p *Pool) Current() float64 { return p.current }

func (p *Pool) Rate() float64 { return p.rate }

func (p *Pool) ceiling() float64 {
	if p.maximum != nil {
		return *p.maximum
	}
	return p.initial
}

type key struct {
	location string
	resource string
}

// Ledger tracks every shared pool for one simulation run.
type Ledger struct {
	pools map[key]*Pool
	order []key
}

func NewLedger(configs []PoolConfig) *Ledger {
	l := &Ledger{pools: make(map[key]*Pool, len(configs))}
	for _, cfg := range configs {
		k := key{location: cfg.Location, resource: cfg.Resource}
		if _, exists := l.pools[k]; !exists {
			l.order = append(l.order, k)
		}
		l.pools[k] = newPool(cfg)
	}
	sort.Slice(l.order, func(i, j int) bool {
		if l.order[i].location != l.order[j].location {
			return l.order[i].location < l.order[j].location
		}
		return l.order[i].resource < l.order[j].resource
	})
	return l
}

func (l *Ledger) Pool(location, resource string) (*Pool, bool) {
	p, ok := l.pools[key{location: location, resource: resource}]
	return p, ok
}

// Consume takes up to amount from the pool and returns what was taken.
// Unlimited pools always satisfy the full amount; untracked pools give nothing.
func (l *Ledger) Consume(location, resource string, amount float64) float64 {
	if amount <= 0 {
		return 0
	}
	p, ok := l.Pool(location, resource)
	if !ok {
		return 0
	}
	if p.unlimited {
		return amount
	}
	taken := math.Min(amount, math.Max(0, p.current))
	p.current -= taken
	return taken
}

// Generate regenerates one pool for deltaTime seconds, clamped to [0, ceiling].
func (l *Ledger) Generate(location, resource string, deltaTime float64) {
	p, ok := l.Pool(location, resource)
	if !ok || p.unlimited || p.rate == 0 {
		return
	}
	next := p.current + p.rate*deltaTime
	next = math.Min(next, p.ceiling())
	p.current = math.Max(0, next)
}

func (l *Ledger) GenerateAll(deltaTime float64) {
	for _, k := range l.order {
		l.Generate(k.location, k.resource, deltaTime)
	}
}

// StopGeneration zeroes the pool's rate until the next Reset.
func (l *Ledger) StopGeneration(location, resource string) {
	if p, ok := l.Pool(location, resource); ok {
		p.rate = 0
	}
}

func (l *Ledger) Reset() {
	for _, p := range l.pools {
		p.current = p.initial
		p.rate = p.baseRate
	}
}

type PoolStatus struct {
	Current    float64  `json:"current"`
	Initial    float64  `json:"initial"`
	Maximum    *float64 `json:"maximum,omitempty"`
	Generation float64  `json:"generation"`
	Unlimited  bool     `json:"unlimited"`
}

// Dump copies the ledger as location -> resource -> status.
func (l *Ledger) Dump() map[string]map[string]PoolStatus {
	out := make(map[string]map[string]PoolStatus)
	for _, k := range l.order {
		p := l.pools[k]
		if out[k.location] == nil {
			out[k.location] = map[string]PoolStatus{}
		}
		st := PoolStatus{
			Current:    p.current,
			Initial:    p.initial,
			Generation: p.rate,
			Unlimited:  p.unlimited,
		}
		if p.maximum != nil {
			m := *p.maximum
			st.Maximum = &m
		}
		out[k.location][k.resource] = st
	}
	return out
}
