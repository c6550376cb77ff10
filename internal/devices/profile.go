package devices

import (
	"fmt"
	"time"

	"github.com/KevinKickass/OpenLaundryCore/internal/types"
)

// Operation names accepted in fail_on lists.
const (
	OpPour       = "pour"
	OpRelease    = "release"
	OpRunWashing = "run_washing"
	OpSpin       = "spin"
)

type ProfileInfo struct {
	ID          string `yaml:"id" json:"id"`
	Vendor      string `yaml:"vendor,omitempty" json:"vendor,omitempty"`
	Model       string `yaml:"model,omitempty" json:"model,omitempty"`
	Description string `yaml:"description,omitempty" json:"description,omitempty"`
}

type PumpProfile struct {
	FailOn      []string `yaml:"fail_on,omitempty" json:"fail_on,omitempty"`
	LitersPerKg float64  `yaml:"liters_per_kg,omitempty" json:"liters_per_kg,omitempty"`
}

type EngineProfile struct {
	FailOn  []string `yaml:"fail_on,omitempty" json:"fail_on,omitempty"`
	SpinRPM int      `yaml:"spin_rpm,omitempty" json:"spin_rpm,omitempty"`
}

type DetectorProfile struct {
	DirtDegree     float64                    `yaml:"dirt_degree" json:"dirt_degree"`
	DirtByMaterial map[types.Material]float64 `yaml:"dirt_by_material,omitempty" json:"dirt_by_material,omitempty"`
}

type SimulationProfile struct {
	// MinuteDuration is the real time one program minute takes. Empty means instant.
	MinuteDuration string `yaml:"minute_duration,omitempty" json:"minute_duration,omitempty"`
}

// Profile describes how the simulated pump, engine and dirt detector behave.
type Profile struct {
	Profile    ProfileInfo       `yaml:"profile" json:"profile"`
	Pump       PumpProfile       `yaml:"pump,omitempty" json:"pump,omitempty"`
	Engine     EngineProfile     `yaml:"engine,omitempty" json:"engine,omitempty"`
	Detector   DetectorProfile   `yaml:"detector,omitempty" json:"detector,omitempty"`
	Simulation SimulationProfile `yaml:"simulation,omitempty" json:"simulation,omitempty"`
}

// DefaultProfile is used when no profile is configured: every device works
// and batches are moderately dirty.
func DefaultProfile() *Profile {
	return &Profile{
		Profile:  ProfileInfo{ID: "default", Description: "Healthy simulated machine"},
		Pump:     PumpProfile{LitersPerKg: 6},
		Engine:   EngineProfile{SpinRPM: 1200},
		Detector: DetectorProfile{DirtDegree: 40},
	}
}

func (p *Profile) minuteDuration() (time.Duration, error) {
	if p.Simulation.MinuteDuration == "" {
		return 0, nil
	}
	d, err := time.ParseDuration(p.Simulation.MinuteDuration)
	if err != nil {
		return 0, fmt.Errorf("invalid minute_duration: %w", err)
	}
	return d, nil
}
