package environment

import (
	"golang.org/x/exp/rand"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/spatial/r1"
	"gonum.org/v1/gonum/stat/distmv"
)

// UniformStarter returns starting vectors sampled uniformly from a box.
// Tasks use it as a workspace sampler, drawing (x, y, z) positions
// within the reachable area of the robot.
type UniformStarter struct {
	bounds []r1.Interval
	seed   uint64
	rand   *distmv.Uniform
}

// NewUniformStarter returns a new UniformStarter sampling feature i
// uniformly from bounds[i]
func NewUniformStarter(bounds []r1.Interval, seed uint64) *UniformStarter {
	u := &UniformStarter{bounds: bounds}
	u.Seed(seed)
	return u
}

// Seed reseeds the random number generator of the starter
func (u *UniformStarter) Seed(seed uint64) {
	u.seed = seed
	u.rand = distmv.NewUniform(u.bounds, rand.NewSource(seed))
}

// Start returns a starting vector
func (u *UniformStarter) Start() *mat.VecDense {
	return mat.NewVecDense(len(u.bounds), u.rand.Rand(nil))
}
