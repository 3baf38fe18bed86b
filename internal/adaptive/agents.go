package adaptive

import (
	"math/rand"

	"deriv-trading-bot/internal/types"
)

// Agent is one fixed weight personality competing in the pool.
type Agent struct {
	Name    string
	Weights Weights
	Wins    int
	Trades  int
	WinRate float64
}

// Pool manages the four decision agents and the explore/exploit selection
// policy. The rand source is injected so selection is reproducible in tests.
type Pool struct {
	agents []*Agent
	active *Agent
	rnd    *rand.Rand
}

const (
	agentMinHistory  = 20
	agentWindow      = 100
	exploreChance    = 0.1
	agentTradesBonus = 10
)

// NewPool builds the fixed agent set and starts on the balanced agent.
func NewPool(rnd *rand.Rand) *Pool {
	agents := []*Agent{
		{Name: "trend_focus", Weights: Weights{WeightMA: 1.3, WeightMomentum: 0.7, WeightRSI: 0.9, WeightBB: 1.0}},
		{Name: "momentum_focus", Weights: Weights{WeightMA: 0.7, WeightMomentum: 1.4, WeightRSI: 1.1, WeightBB: 0.8}},
		{Name: "balanced", Weights: Weights{WeightMA: 1.0, WeightMomentum: 1.0, WeightRSI: 1.0, WeightBB: 1.0}},
		{Name: "volatility_rider", Weights: Weights{WeightMA: 0.8, WeightMomentum: 1.2, WeightRSI: 0.7, WeightBB: 1.3}},
	}
	return &Pool{agents: agents, active: agents[2], rnd: rnd}
}

// Active returns the currently selected agent.
func (p *Pool) Active() *Agent { return p.active }

// Agents exposes the pool for reporting.
func (p *Pool) Agents() []*Agent { return p.agents }

// SelectBest re-scores every agent over the most recent trades (history is
// newest-first) and promotes the top scorer, keeping a 10% chance of picking
// any agent uniformly to avoid locking in early. Below 20 trades of history
// the active agent is kept as is.
func (p *Pool) SelectBest(history []types.TradeRecord) *Agent {
	if len(history) < agentMinHistory {
		return p.active
	}
	recent := history
	if len(recent) > agentWindow {
		recent = recent[:agentWindow]
	}

	for _, a := range p.agents {
		a.Trades = 0
		a.Wins = 0
		for _, t := range recent {
			if t.Agent != a.Name {
				continue
			}
			a.Trades++
			if t.Won() {
				a.Wins++
			}
		}
		a.WinRate = 0.5
		if a.Trades > 0 {
			a.WinRate = float64(a.Wins) / float64(a.Trades)
		}
	}

	if p.rnd.Float64() < exploreChance {
		p.active = p.agents[p.rnd.Intn(len(p.agents))]
		return p.active
	}

	best := p.agents[0]
	for _, a := range p.agents[1:] {
		if score(a) > score(best) {
			best = a
		}
	}
	p.active = best
	return p.active
}

func score(a *Agent) float64 {
	s := a.WinRate * 0.7
	if a.Trades > agentTradesBonus {
		s += 0.3
	}
	return s
}
