package driver

import (
	"fmt"
	"runtime"
	"sort"

	"github.com/rs/zerolog/log"
)

// Factory creates an unconfigured driver instance for one platform.
type Factory func() Driver

var registry = make(map[string]Factory)

// Register adds a platform driver factory under a platform name. Platform
// packages call this from init(); the composition root blank-imports the
// drivers it wants available.
func Register(platform string, factory Factory) {
	if _, exists := registry[platform]; exists {
		log.Warn().Str("platform", platform).Msg("Driver factory is being overwritten")
	}
	registry[platform] = factory
}

// New returns a fresh driver for the named platform. The caller still has
// to run Initialize before use.
func New(platform string) (Driver, error) {
	factory, ok := registry[platform]
	if !ok {
		return nil, fmt.Errorf("no driver registered for platform: %s", platform)
	}
	return factory(), nil
}

// NewForHost selects the driver matching the running operating system.
func NewForHost() (Driver, error) {
	return New(runtime.GOOS)
}

// Registered lists the platforms a driver has been registered for.
func Registered() []string {
	platforms := make([]string, 0, len(registry))
	for p := range registry {
		platforms = append(platforms, p)
	}
	sort.Strings(platforms)
	return platforms
}
