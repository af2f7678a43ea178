package scenario

import (
	"fmt"
	"strings"

	"github.com/pthm-cable/liquid/config"
	"github.com/pthm-cable/liquid/particle"
)

// Scenario names.
const (
	DamBreak       = "dam_break"
	Rigid          = "rigid"
	Elastic        = "elastic"
	SurfaceTension = "surface_tension"
	GroundFluid    = "ground_fluid"
)

// Info describes a scenario for the CLI and UI.
type Info struct {
	ID          string // Name passed to Build
	Name        string // Display name
	Description string

	// tune adjusts the particle definition from config before the system
	// is created.
	tune func(*particle.Def)
	// populate adds bodies and particle groups to a fresh scene.
	populate func(*Scene, *config.Config) error
}

var registry []Info

func register(info Info) {
	registry = append(registry, info)
}

func init() {
	register(Info{
		ID:          DamBreak,
		Name:        "Dam Break",
		Description: "A column of water collapses inside a closed container",
		tune: func(d *particle.Def) {
			d.Radius = 0.025
			d.DampingStrength = 0.2
		},
		populate: populateDamBreak,
	})
	register(Info{
		ID:          Rigid,
		Name:        "Rigid Particles",
		Description: "Rigid solid groups drop into a basin with a falling ball",
		populate:    populateRigid,
	})
	register(Info{
		ID:          Elastic,
		Name:        "Elastic Particles",
		Description: "Spring and elastic solid groups drop into a basin",
		populate:    populateElastic,
	})
	register(Info{
		ID:          SurfaceTension,
		Name:        "Surface Tension",
		Description: "Tensile color-mixing blobs merge in a basin",
		populate:    populateSurfaceTension,
	})
	register(Info{
		ID:          GroundFluid,
		Name:        "Ground Fluid",
		Description: "A block of water settles on flat ground",
		populate:    populateGroundFluid,
	})
}

// Lookup returns scenario info by ID.
func Lookup(id string) (Info, bool) {
	for _, info := range registry {
		if info.ID == id {
			return info, true
		}
	}
	return Info{}, false
}

// All returns all scenarios in registration order.
func All() []Info {
	return registry
}

// IDs returns all scenario IDs in registration order.
func IDs() []string {
	ids := make([]string, len(registry))
	for i, info := range registry {
		ids[i] = info.ID
	}
	return ids
}

func unknownScenario(id string) error {
	return fmt.Errorf("unknown scenario %q (want one of %s)", id, strings.Join(IDs(), ", "))
}
