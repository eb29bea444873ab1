package envconfig

import (
	"fmt"
	"sort"
	"sync"

	"github.com/edaniels/golog"
	"github.com/samuelfneumann/soarm/environment/soarm"
	ts "github.com/samuelfneumann/soarm/timestep"
)

// Factory creates the environment described by a Config
type Factory func(c Config, logger golog.Logger) (*soarm.SoArm,
	ts.TimeStep, error)

var (
	registryMu sync.RWMutex
	registry   = map[EnvName]Factory{
		SoArm:      CreateSoArm,
		SoArmStack: CreateSoArmStack,
	}
)

// Register makes an environment available under name. Registering a
// name twice panics.
func Register(name EnvName, factory Factory) {
	registryMu.Lock()
	defer registryMu.Unlock()

	if factory == nil {
		panic("register: factory is nil")
	}
	if _, ok := registry[name]; ok {
		panic(fmt.Sprintf("register: environment %v already registered",
			name))
	}
	registry[name] = factory
}

// Make creates the environment registered under name with Config c. If
// logger is nil, the global logger is used.
func Make(name EnvName, c Config, logger golog.Logger) (*soarm.SoArm,
	ts.TimeStep, error) {
	registryMu.RLock()
	factory, ok := registry[name]
	registryMu.RUnlock()

	if !ok {
		return nil, ts.TimeStep{}, fmt.Errorf("make: no such environment %v",
			name)
	}
	if logger == nil {
		logger = golog.Global()
	}
	c.Environment = name
	return factory(c, logger)
}

// Names returns the sorted names of all registered environments
func Names() []EnvName {
	registryMu.RLock()
	defer registryMu.RUnlock()

	names := make([]EnvName, 0, len(registry))
	for name := range registry {
		names = append(names, name)
	}
	sort.Slice(names, func(i, j int) bool { return names[i] < names[j] })
	return names
}
