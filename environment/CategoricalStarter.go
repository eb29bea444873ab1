package environment

import (
	"fmt"

	"golang.org/x/exp/rand"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat/distuv"
)

// Categorical starter returns starting states as vectors sampled from
// a multi-dimensional uniform categorical distribution. The categorical
// distributions sample values in (0, 1, 2, ... N). Tasks use it to pick
// among a fixed set of placements.
type CategoricalStarter struct {
	bounds []int
	seed   uint64
	rand   []distuv.Categorical
}

// NewCategoricalStarter returns a new CategoricalStarter, sampling
// dimension i from (0, 1, 2, ... bounds[i]-1)
func NewCategoricalStarter(bounds []int, seed uint64) *CategoricalStarter {
	for i, n := range bounds {
		if n <= 0 {
			panic(fmt.Sprintf("newCategoricalStarter: dimension %v must "+
				"have at least one category, have %v", i, n))
		}
	}

	c := &CategoricalStarter{bounds: bounds}
	c.Seed(seed)
	return c
}

// Seed reseeds the random number generator of the starter
func (c *CategoricalStarter) Seed(seed uint64) {
	source := rand.NewSource(seed)

	c.seed = seed
	c.rand = make([]distuv.Categorical, len(c.bounds))
	for i := range c.rand {
		// Create the weights for the uniform categorical distribution
		weights := make([]float64, c.bounds[i])
		for j := range weights {
			weights[j] = 1.0 / float64(len(weights))
		}

		c.rand[i] = distuv.NewCategorical(weights, source)
	}
}

// Start returns a starting state vector
func (c *CategoricalStarter) Start() *mat.VecDense {
	start := make([]float64, len(c.bounds))
	for i := range start {
		start[i] = c.rand[i].Rand()
	}

	return mat.NewVecDense(len(c.bounds), start)
}

// Sample returns a sampled category for each dimension
func (c *CategoricalStarter) Sample() []int {
	start := c.Start()
	sample := make([]int, start.Len())
	for i := range sample {
		sample[i] = int(start.AtVec(i))
	}
	return sample
}
