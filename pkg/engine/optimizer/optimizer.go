package optimizer

import (
	"errors"
	"math"

	"github.com/lintang-b-s/streetscan/pkg"
	da "github.com/lintang-b-s/streetscan/pkg/datastructure"
	"github.com/lintang-b-s/streetscan/pkg/geo"
	"go.uber.org/zap"
)

const (
	eps           = 1e-9
	maxTwoOptIter = 10000
)

var (
	ErrEmptyProblem = errors.New("optimizer: no locations")
	ErrBadDepot     = errors.New("optimizer: depot index out of range")
	ErrUnreachable  = errors.New("optimizer: some stop cannot be reached")
)

// Problem is the stop ordering instance. Weights[i][j] is the cost of the
// shortest path from location i to j (+Inf when unreachable). Depart[i][j] and
// Arrive[i][j] are the headings at the start and end of that path, NaN when
// the path has no edges.
type Problem struct {
	Weights     *da.Matrix[float64]
	Depart      *da.Matrix[float64]
	Arrive      *da.Matrix[float64]
	TurnPenalty float64
	Start       int
	End         int
}

// NewProblem returns an instance where nothing but the diagonal is reachable.
func NewProblem(n int, turnPenalty float64, start, end int) *Problem {
	weights := da.NewMatrix(n, n, math.Inf(1))
	for i := 0; i < n; i++ {
		weights.Set(0, i, i)
	}
	return &Problem{
		Weights:     weights,
		Depart:      da.NewMatrix(n, n, math.NaN()),
		Arrive:      da.NewMatrix(n, n, math.NaN()),
		TurnPenalty: turnPenalty,
		Start:       start,
		End:         end,
	}
}

func (p *Problem) size() int {
	return p.Weights.Rows()
}

// Solution is a visiting order over location indices. It starts at the start
// depot and ends at the end depot; with start == end the depot appears twice.
type Solution struct {
	Order []int
	Cost  float64
}

type Optimizer struct {
	logger *zap.Logger
}

func NewOptimizer(logger *zap.Logger) *Optimizer {
	return &Optimizer{logger: logger}
}

// Solve orders the stops with a nearest neighbour construction followed by
// first improvement 2-opt. Both depots stay pinned.
func (o *Optimizer) Solve(p *Problem) (Solution, error) {
	n := p.size()
	if n == 0 {
		return Solution{}, ErrEmptyProblem
	}
	if p.Start < 0 || p.Start >= n || p.End < 0 || p.End >= n {
		return Solution{}, ErrBadDepot
	}

	order := p.nearestNeighbour()
	cost := p.Cost(order)
	o.logger.Sugar().Debugf("nearest neighbour tour cost: %.2f", cost)

	order, cost = p.twoOpt(order, cost)
	if math.IsInf(cost, 1) {
		return Solution{}, ErrUnreachable
	}
	o.logger.Sugar().Debugf("2-opt tour cost: %.2f", cost)
	return Solution{Order: order, Cost: cost}, nil
}

func (p *Problem) nearestNeighbour() []int {
	n := p.size()
	visited := make([]bool, n)
	visited[p.Start] = true
	visited[p.End] = true

	order := make([]int, 0, n+1)
	order = append(order, p.Start)
	cur := p.Start
	for {
		next := -1
		best := math.Inf(1)
		for v := 0; v < n; v++ {
			if visited[v] {
				continue
			}
			if w := p.Weights.Get(cur, v); next == -1 || w < best {
				next = v
				best = w
			}
		}
		if next == -1 {
			break
		}
		visited[next] = true
		order = append(order, next)
		cur = next
	}
	return append(order, p.End)
}

// Cost sums the leg weights of order and adds the turn penalty at every
// intermediate stop where the route turns sharper than
// pkg.TURN_PENALTY_ANGLE_THRESHOLD degrees.
func (p *Problem) Cost(order []int) float64 {
	cost := 0.0
	for i := 1; i < len(order); i++ {
		cost += p.Weights.Get(order[i-1], order[i])
	}
	if p.TurnPenalty <= 0 {
		return cost
	}
	for i := 1; i < len(order)-1; i++ {
		in := p.Arrive.Get(order[i-1], order[i])
		out := p.Depart.Get(order[i], order[i+1])
		if math.IsNaN(in) || math.IsNaN(out) {
			continue
		}
		if geo.TurnAngle(in, out) > pkg.TURN_PENALTY_ANGLE_THRESHOLD {
			cost += p.TurnPenalty
		}
	}
	return cost
}

// twoOpt reverses inner segments order[i..k] while that lowers the cost. The
// cost is not symmetric (oneway streets, turn penalties) so every candidate
// is evaluated on the whole tour.
func (p *Problem) twoOpt(order []int, cost float64) ([]int, float64) {
	cur := make([]int, len(order))
	copy(cur, order)
	last := len(cur) - 2

	for iter := 0; iter < maxTwoOptIter; iter++ {
		improved := false
		for i := 1; i < last && !improved; i++ {
			for k := i + 1; k <= last; k++ {
				reverse(cur, i, k)
				if c := p.Cost(cur); c < cost-eps {
					cost = c
					improved = true
					break
				}
				reverse(cur, i, k)
			}
		}
		if !improved {
			break
		}
	}
	return cur, cost
}

func reverse(a []int, i, k int) {
	for ; i < k; i, k = i+1, k-1 {
		a[i], a[k] = a[k], a[i]
	}
}
