package soarm

import (
	"fmt"

	"github.com/samuelfneumann/soarm/environment/soarm/tasks"
	ts "github.com/samuelfneumann/soarm/timestep"
	"gorgonia.org/tensor"
)

// ObsType determines the layout of observations returned to agents
type ObsType string

const (
	// State observations hold the arm joint positions as agent_pos and
	// the tracked object positions as env_state
	State ObsType = "state"

	// Pixels observations hold the images of the configured cameras
	Pixels ObsType = "pixels"

	// PixelsAgentPos observations hold both the images of the
	// configured cameras and the arm joint positions
	PixelsAgentPos ObsType = "pixels_agent_pos"
)

// ParseObsType returns the ObsType called s
func ParseObsType(s string) (ObsType, error) {
	switch o := ObsType(s); o {
	case State, Pixels, PixelsAgentPos:
		return o, nil
	}
	return "", fmt.Errorf("parseObsType: unknown observation type %q", s)
}

// Renders returns whether observations of type o contain images
func (o ObsType) Renders() bool {
	return o == Pixels || o == PixelsAgentPos
}

// CameraConfig determines which cameras observations are rendered from
type CameraConfig string

const (
	FrontOnly  CameraConfig = "front_only"
	FrontWrist CameraConfig = "front_wrist"
	AllCameras CameraConfig = "all"
)

// ParseCameraConfig returns the CameraConfig called s
func ParseCameraConfig(s string) (CameraConfig, error) {
	c := CameraConfig(s)
	if _, err := c.Cameras(); err != nil {
		return "", fmt.Errorf("parseCameraConfig: %v", err)
	}
	return c, nil
}

// Cameras returns the names of the cameras in the configuration
func (c CameraConfig) Cameras() ([]string, error) {
	switch c {
	case FrontOnly:
		return []string{tasks.FrontCamera}, nil
	case FrontWrist:
		return []string{tasks.FrontCamera, tasks.WristCamera}, nil
	case AllCameras:
		return tasks.Cameras(), nil
	}
	return nil, fmt.Errorf("cameras: unknown camera configuration %q", c)
}

// FormatObservation lays out a raw task observation for agents
// according to obsType. Images of cameras not in cameras are dropped.
func FormatObservation(raw *ts.Observation, obsType ObsType,
	cameras []string) *ts.Observation {
	switch obsType {
	case State:
		return &ts.Observation{AgentPos: raw.QPos, EnvState: raw.EnvState}

	case Pixels:
		return &ts.Observation{Pixels: selectImages(raw.Images, cameras)}

	case PixelsAgentPos:
		return &ts.Observation{
			AgentPos: raw.QPos,
			Pixels:   selectImages(raw.Images, cameras),
		}
	}
	panic(fmt.Sprintf("formatObservation: unknown observation type %q",
		obsType))
}

// selectImages returns the images of the argument cameras that were
// rendered
func selectImages(images map[string]*tensor.Dense,
	cameras []string) map[string]*tensor.Dense {
	selected := make(map[string]*tensor.Dense, len(cameras))
	for _, camera := range cameras {
		if img, ok := images[camera]; ok {
			selected[camera] = img
		}
	}
	return selected
}
