package workload

import (
	"fmt"
	"math"
	"math/rand/v2"
	"sort"

	"chainBench/internal/model"
)

// weightTolerance is how far weights may stray from summing to exactly 1.
const weightTolerance = 1e-9

// Action is what an operation does to its table.
type Action int

const (
	Insert Action = iota
	Read
)

func (a Action) String() string {
	switch a {
	case Insert:
		return "insert"
	case Read:
		return "read"
	default:
		return fmt.Sprintf("action(%d)", int(a))
	}
}

// Op is one generated operation.
type Op struct {
	Action Action
	Kind   model.Kind
}

func (o Op) String() string {
	return o.Action.String() + "-" + o.Kind.String()
}

// KindWeight is the share of a group's operations that target Kind.
type KindWeight struct {
	Kind   model.Kind
	Weight float64
}

// Group is a weighted action whose operations are spread over kinds.
type Group struct {
	Action Action
	Weight float64
	Kinds  []KindWeight
}

// Mixture is a set of groups whose weights sum to 1. Declaration order
// decides which category wins a draw that lands on a shared boundary.
type Mixture []Group

// PureWrite always inserts, choosing each kind with equal probability.
func PureWrite() Mixture {
	return Mixture{{Action: Insert, Weight: 1, Kinds: uniformKinds()}}
}

// Mixed splits traffic between inserts and random-row reads, each spread
// uniformly over the four kinds.
func Mixed(write, read float64) Mixture {
	return Mixture{
		{Action: Insert, Weight: write, Kinds: uniformKinds()},
		{Action: Read, Weight: read, Kinds: uniformKinds()},
	}
}

func uniformKinds() []KindWeight {
	weights := make([]KindWeight, len(model.Kinds))
	for i, kind := range model.Kinds {
		weights[i] = KindWeight{Kind: kind, Weight: 1 / float64(len(model.Kinds))}
	}
	return weights
}

// Validate checks that group weights sum to 1 and that every group's kind
// weights sum to 1.
func (m Mixture) Validate() error {
	if len(m) == 0 {
		return configErrorf("mixture", "no groups")
	}
	total := 0.0
	for _, group := range m {
		if group.Weight < 0 || math.IsNaN(group.Weight) {
			return configErrorf("mixture", "%s weight %v is not a non-negative number", group.Action, group.Weight)
		}
		if len(group.Kinds) == 0 {
			return configErrorf("mixture", "%s group has no kinds", group.Action)
		}
		kindTotal := 0.0
		for _, kw := range group.Kinds {
			if !kw.Kind.Valid() {
				return configErrorf("mixture", "%s group has invalid kind %d", group.Action, int(kw.Kind))
			}
			if kw.Weight < 0 || math.IsNaN(kw.Weight) {
				return configErrorf("mixture", "%s weight %v is not a non-negative number", kw.Kind, kw.Weight)
			}
			kindTotal += kw.Weight
		}
		if math.Abs(kindTotal-1) > weightTolerance {
			return configErrorf("mixture", "%s kind weights sum to %v, want 1", group.Action, kindTotal)
		}
		total += group.Weight
	}
	if math.Abs(total-1) > weightTolerance {
		return configErrorf("mixture", "group weights sum to %v, want 1", total)
	}
	return nil
}

// Generator draws operations from a mixture. The sequence depends only on the
// mixture and the random stream.
type Generator struct {
	rng    *rand.Rand
	bounds []float64
	ops    []Op
}

func NewGenerator(m Mixture, rng *rand.Rand) (*Generator, error) {
	if err := m.Validate(); err != nil {
		return nil, err
	}
	g := &Generator{rng: rng}
	cumulative := 0.0
	for _, group := range m {
		for _, kw := range group.Kinds {
			cumulative += group.Weight * kw.Weight
			g.bounds = append(g.bounds, cumulative)
			g.ops = append(g.ops, Op{Action: group.Action, Kind: kw.Kind})
		}
	}
	return g, nil
}

// Next makes one uniform draw in [0,1) and returns the first category whose
// cumulative boundary is strictly greater than it. Draws past the last
// boundary, possible when weights sum to slightly under 1, go to the last
// category.
func (g *Generator) Next() Op {
	u := g.rng.Float64()
	i := sort.Search(len(g.bounds), func(i int) bool { return g.bounds[i] > u })
	if i == len(g.ops) {
		i = len(g.ops) - 1
	}
	return g.ops[i]
}
