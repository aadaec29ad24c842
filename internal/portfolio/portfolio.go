// Package portfolio tracks capital and open positions and simulates trade
// execution against them.
package portfolio

import (
	"errors"
	"fmt"
	"sync"

	"TradePilot/internal/model"
)

const epsilon = 1e-9

var (
	// ErrInsufficientCapital is returned when a buy's notional exceeds the
	// available capital; the books are left untouched.
	ErrInsufficientCapital = errors.New("insufficient capital")
)

// Portfolio is the capital/position ledger for one run. All methods are
// safe for concurrent use; mutation happens strictly through ExecuteTrade.
type Portfolio struct {
	mu          sync.Mutex
	capital     float64
	positions   map[string]model.Position
	equityCurve []float64
}

// New creates a portfolio with starting capital. The equity curve starts at
// the initial capital.
func New(capital float64) *Portfolio {
	return &Portfolio{
		capital:     capital,
		positions:   make(map[string]model.Position),
		equityCurve: []float64{capital},
	}
}

// Capital returns the free (uninvested) capital.
func (p *Portfolio) Capital() float64 {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.capital
}

// Positions returns a copy of the open positions keyed by ticker.
func (p *Portfolio) Positions() map[string]model.Position {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make(map[string]model.Position, len(p.positions))
	for t, pos := range p.positions {
		out[t] = pos
	}
	return out
}

// EquityCurve returns a copy of the recorded equity points.
func (p *Portfolio) EquityCurve() []float64 {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]float64, len(p.equityCurve))
	copy(out, p.equityCurve)
	return out
}

// Allocate clamps a requested size down to what current capital can pay for
// at the given price. Never negative.
func (p *Portfolio) Allocate(ticker string, requested int, price float64) int {
	p.mu.Lock()
	defer p.mu.Unlock()
	if requested <= 0 || price <= 0 {
		return 0
	}
	if float64(requested)*price > p.capital {
		return int(p.capital / price)
	}
	return requested
}

// ExecuteTrade simulates a fill: buys debit capital, sells credit it, and
// the signed position update is applied. After any state change the total
// equity (capital plus positions marked at the trade price) is appended to
// the equity curve. Returns the realized PnL of any closing portion.
func (p *Portfolio) ExecuteTrade(ticker string, direction model.Direction, price, qty float64) (float64, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if qty <= 0 {
		return 0, fmt.Errorf("quantity must be positive, got %v", qty)
	}

	var realized float64
	switch direction {
	case model.Buy:
		cost := qty * price
		if cost > p.capital+epsilon {
			return 0, fmt.Errorf("%w: need %.2f, have %.2f", ErrInsufficientCapital, cost, p.capital)
		}
		p.capital -= cost
		realized = p.applyFill(ticker, qty, price)
	case model.Sell:
		p.capital += qty * price
		realized = p.applyFill(ticker, -qty, price)
	default:
		return 0, fmt.Errorf("unknown trade direction %q", direction)
	}

	p.equityCurve = append(p.equityCurve, p.capital+p.valueLocked(map[string]float64{ticker: price}))
	return realized, nil
}

// applyFill applies a signed quantity delta at a price. Same-direction adds
// blend the average price; a full close removes the position. A delta that
// would flip the position's sign is split into a full close followed by a
// fresh open at the trade price, so the average-price formula is never
// applied across a sign change.
func (p *Portfolio) applyFill(ticker string, delta, price float64) float64 {
	pos, held := p.positions[ticker]
	if !held {
		p.positions[ticker] = model.Position{Ticker: ticker, Quantity: delta, AvgPrice: price}
		return 0
	}

	newQty := pos.Quantity + delta
	switch {
	case sameSign(pos.Quantity, newQty) && newQty != 0:
		if sameSign(pos.Quantity, delta) {
			// Add: capital-weighted average entry price.
			avg := (pos.Quantity*pos.AvgPrice + delta*price) / newQty
			p.positions[ticker] = model.Position{Ticker: ticker, Quantity: newQty, AvgPrice: avg}
			return 0
		}
		// Partial close: quantity shrinks, average unchanged.
		p.positions[ticker] = model.Position{Ticker: ticker, Quantity: newQty, AvgPrice: pos.AvgPrice}
		return -delta * (price - pos.AvgPrice)
	case newQty == 0:
		delete(p.positions, ticker)
		return pos.Quantity * (price - pos.AvgPrice)
	default:
		// Sign flip: close the whole old position, open the remainder.
		realized := pos.Quantity * (price - pos.AvgPrice)
		p.positions[ticker] = model.Position{Ticker: ticker, Quantity: newQty, AvgPrice: price}
		return realized
	}
}

func sameSign(a, b float64) bool {
	return (a > 0 && b > 0) || (a < 0 && b < 0)
}

// Value marks every position at the supplied price, falling back to its
// cost basis when no mark is available.
func (p *Portfolio) Value(marks map[string]float64) float64 {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.valueLocked(marks)
}

func (p *Portfolio) valueLocked(marks map[string]float64) float64 {
	total := 0.0
	for ticker, pos := range p.positions {
		mark, ok := marks[ticker]
		if !ok {
			mark = pos.AvgPrice
		}
		total += pos.Quantity * mark
	}
	return total
}

// Equity is capital plus the marked value of all positions.
func (p *Portfolio) Equity(marks map[string]float64) float64 {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.capital + p.valueLocked(marks)
}
