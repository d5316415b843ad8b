// Package assign finds the minimum-cost injective mapping from a small domain
// to a range.
//
// InjectionSolver enumerates every injection with a depth-first search,
// pruning branches whose partial cost already reaches the incumbent. It is
// exact and meant for small inputs only: worst case is rangeSize!/(rangeSize-domainSize)!.
//
// Determinism: range indices are tried in ascending order and only strictly
// better solutions replace the incumbent, so ties keep the lexicographically
// smallest assignment.
package assign

import (
	"errors"
	"fmt"
	"math"
)

// Sentinel errors for injection solving.
var (
	// ErrDomainTooLarge indicates more domain items than range items.
	ErrDomainTooLarge = errors.New("assign: domain larger than range")

	// ErrNilCost indicates a missing cost function.
	ErrNilCost = errors.New("assign: nil cost function")

	// ErrBadCost indicates a negative or NaN cost.
	ErrBadCost = errors.New("assign: cost must be non-negative")
)

// CostFunc returns the cost of mapping domain item id to range item ir.
// Costs must be non-negative; math.Inf(1) forbids the pair.
type CostFunc func(id, ir int) float64

// InjectionSolver searches for the cheapest injection domain -> range.
type InjectionSolver struct {
	domainSize int
	rangeSize  int
	cost       CostFunc

	// search state
	free     []bool // range items still available
	current  []int
	bestCost float64
	best     []int
	err      error
}

// NewInjectionSolver prepares a solver.
func NewInjectionSolver(domainSize, rangeSize int, cost CostFunc) (*InjectionSolver, error) {
	if cost == nil {
		return nil, ErrNilCost
	}
	if domainSize > rangeSize {
		return nil, ErrDomainTooLarge
	}

	return &InjectionSolver{domainSize: domainSize, rangeSize: rangeSize, cost: cost}, nil
}

// Solve returns best[id] = ir and the total cost. When every injection is
// forbidden, best is nil and cost is +Inf. The search stops with ErrBadCost
// at the first negative or NaN cost met.
func (s *InjectionSolver) Solve() ([]int, float64, error) {
	s.free = make([]bool, s.rangeSize)
	for i := range s.free {
		s.free[i] = true
	}
	s.current = make([]int, s.domainSize)
	s.best = nil
	s.bestCost = math.Inf(1)
	s.err = nil

	s.inspect(0, 0)
	if s.err != nil {
		return nil, math.Inf(1), s.err
	}

	return s.best, s.bestCost, nil
}

func (s *InjectionSolver) inspect(id int, costSoFar float64) {
	if s.err != nil || costSoFar >= s.bestCost {
		return // prune
	}
	if id == s.domainSize {
		s.bestCost = costSoFar
		s.best = append(s.best[:0], s.current...)
		return
	}
	for ir := 0; ir < s.rangeSize; ir++ {
		if !s.free[ir] {
			continue
		}
		c := s.cost(id, ir)
		if c < 0 || math.IsNaN(c) {
			s.err = fmt.Errorf("%w: cost(%d, %d) = %v", ErrBadCost, id, ir, c)
			return
		}
		if math.IsInf(c, 1) {
			continue
		}
		s.free[ir] = false
		s.current[id] = ir
		s.inspect(id+1, costSoFar+c)
		s.free[ir] = true
	}
}
