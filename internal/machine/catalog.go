package machine

import "github.com/KevinKickass/OpenLaundryCore/internal/types"

// Catalog lists the programs and per-material weight limits a machine accepts.
type Catalog struct {
	Programs    []ProgramInfo      `json:"programs"`
	MaxWeightKg map[string]float64 `json:"max_weight_kg"`
}

type ProgramInfo struct {
	Name    types.Program `json:"name"`
	Minutes int           `json:"minutes,omitempty"`
}

func ProgramCatalog() Catalog {
	c := Catalog{MaxWeightKg: make(map[string]float64)}
	for _, p := range types.Programs() {
		c.Programs = append(c.Programs, ProgramInfo{Name: p, Minutes: p.TimeInMinutes()})
	}
	for _, m := range types.Materials() {
		c.MaxWeightKg[string(m)] = MaxWeightFor(m)
	}
	return c
}
