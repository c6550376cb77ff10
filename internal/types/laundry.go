package types

import (
	"errors"
	"fmt"
	"math"
	"strings"
)

var (
	ErrUnknownMaterial = errors.New("unknown material")
	ErrUnknownProgram  = errors.New("unknown program")
	ErrInvalidWeight   = errors.New("weight must be a positive finite number")
	ErrInvalidPercent  = errors.New("percentage must be within [0, 100]")
)

type Material string

const (
	MaterialCotton    Material = "COTTON"
	MaterialWool      Material = "WOOL"
	MaterialSynthetic Material = "SYNTHETIC"
	MaterialDelicate  Material = "DELICATE"
	MaterialJeans     Material = "JEANS"
)

var materials = []Material{
	MaterialCotton,
	MaterialWool,
	MaterialSynthetic,
	MaterialDelicate,
	MaterialJeans,
}

// Materials returns every supported material.
func Materials() []Material {
	return append([]Material(nil), materials...)
}

// ParseMaterial accepts a material name in any case.
func ParseMaterial(s string) (Material, error) {
	name := Material(strings.ToUpper(strings.TrimSpace(s)))
	for _, m := range materials {
		if m == name {
			return m, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownMaterial, s)
}

func (m *Material) UnmarshalText(text []byte) error {
	parsed, err := ParseMaterial(string(text))
	if err != nil {
		return err
	}
	*m = parsed
	return nil
}

// LaundryBatch is one load of laundry submitted for washing.
type LaundryBatch struct {
	Material Material `json:"material"`
	WeightKg float64  `json:"weight_kg"`
}

func (b LaundryBatch) Validate() error {
	if _, err := ParseMaterial(string(b.Material)); err != nil {
		return err
	}
	if !(b.WeightKg > 0) || math.IsInf(b.WeightKg, 0) {
		return fmt.Errorf("%w: %v", ErrInvalidWeight, b.WeightKg)
	}
	return nil
}

type Program string

const (
	ProgramAutodetect Program = "AUTODETECT"
	ProgramShort      Program = "SHORT"
	ProgramMedium     Program = "MEDIUM"
	ProgramLong       Program = "LONG"
)

var programMinutes = map[Program]int{
	ProgramShort:  30,
	ProgramMedium: 60,
	ProgramLong:   120,
}

var programs = []Program{ProgramAutodetect, ProgramShort, ProgramMedium, ProgramLong}

// Programs returns every program, AUTODETECT included.
func Programs() []Program {
	return append([]Program(nil), programs...)
}

// ParseProgram accepts a program name in any case.
func ParseProgram(s string) (Program, error) {
	name := Program(strings.ToUpper(strings.TrimSpace(s)))
	for _, p := range programs {
		if p == name {
			return p, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownProgram, s)
}

func (p *Program) UnmarshalText(text []byte) error {
	parsed, err := ParseProgram(string(text))
	if err != nil {
		return err
	}
	*p = parsed
	return nil
}

// TimeInMinutes is the wash duration of a concrete program. AUTODETECT has none.
func (p Program) TimeInMinutes() int {
	return programMinutes[p]
}

func (p Program) IsConcrete() bool {
	_, ok := programMinutes[p]
	return ok
}

func (p Program) Ptr() *Program {
	return &p
}

// ProgramConfiguration selects what the machine runs for a batch.
type ProgramConfiguration struct {
	Program Program `json:"program"`
	Spin    bool    `json:"spin"`
}

func (c ProgramConfiguration) Validate() error {
	_, err := ParseProgram(string(c.Program))
	return err
}

// Percentage is a dirt degree in [0, 100].
type Percentage float64

func NewPercentage(v float64) (Percentage, error) {
	if !(v >= 0 && v <= 100) {
		return 0, fmt.Errorf("%w: %v", ErrInvalidPercent, v)
	}
	return Percentage(v), nil
}

func (p Percentage) Float64() float64 {
	return float64(p)
}
