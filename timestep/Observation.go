package timestep

import (
	"sort"

	"gonum.org/v1/gonum/mat"
	"gorgonia.org/tensor"
)

// Observation keys
const (
	QPosKey     = "qpos"
	QVelKey     = "qvel"
	EnvStateKey = "env_state"
	ImagesKey   = "images"
	AgentPosKey = "agent_pos"
	PixelsKey   = "pixels"
)

// Observation is the observation bundle of a single timestep.
//
// QPos and QVel hold the five arm joints followed by the normalized
// gripper. EnvState holds the (x, y, z) position of each tracked
// object in the scene and may be empty. Sensors holds only the named
// sensors the physics model exposes, and Images holds one
// (height, width, 3) uint8 tensor per rendered camera.
//
// AgentPos and Pixels are filled by environments that format the raw
// task observation for agents: AgentPos holds the arm joint positions
// and Pixels the images of the configured cameras.
//
// Fields left nil are not part of the observation.
type Observation struct {
	QPos     *mat.VecDense
	QVel     *mat.VecDense
	EnvState []float64
	Sensors  map[string][]float64
	Images   map[string]*tensor.Dense

	AgentPos *mat.VecDense
	Pixels   map[string]*tensor.Dense
}

// Keys returns the sorted top-level keys present in the observation
func (o *Observation) Keys() []string {
	var keys []string
	if o.QPos != nil {
		keys = append(keys, QPosKey)
	}
	if o.QVel != nil {
		keys = append(keys, QVelKey)
	}
	if o.EnvState != nil {
		keys = append(keys, EnvStateKey)
	}
	for name := range o.Sensors {
		keys = append(keys, name)
	}
	if o.Images != nil {
		keys = append(keys, ImagesKey)
	}
	if o.AgentPos != nil {
		keys = append(keys, AgentPosKey)
	}
	if o.Pixels != nil {
		keys = append(keys, PixelsKey)
	}
	sort.Strings(keys)
	return keys
}

// Cameras returns the sorted names of the cameras with an image in the
// observation, taken from Pixels if it is set and Images otherwise
func (o *Observation) Cameras() []string {
	images := o.Images
	if o.Pixels != nil {
		images = o.Pixels
	}

	cameras := make([]string, 0, len(images))
	for name := range images {
		cameras = append(cameras, name)
	}
	sort.Strings(cameras)
	return cameras
}
