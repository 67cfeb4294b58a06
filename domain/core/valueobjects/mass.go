package valueobjects

import (
	"errors"
	"fmt"
)

// Mass is a non-negative mass in grams
type Mass struct {
	grams float64
}

// NewMass creates a Mass, rejecting negative values
func NewMass(grams float64) (Mass, error) {
	if grams < 0 {
		return Mass{}, fmt.Errorf("mass cannot be negative: %.2f", grams)
	}
	return Mass{grams: grams}, nil
}

// MustMass creates a Mass and panics on negative input.
// Only for literals in tests and defaults.
func MustMass(grams float64) Mass {
	m, err := NewMass(grams)
	if err != nil {
		panic(err)
	}
	return m
}

// Grams returns the mass in grams
func (m Mass) Grams() float64 {
	return m.grams
}

// Equals compares two masses exactly
func (m Mass) Equals(other Mass) bool {
	return m.grams == other.grams
}

// WeightUnit identifies the unit a scale reports in
type WeightUnit string

const (
	UnitGrams     WeightUnit = "g"
	UnitKilograms WeightUnit = "kg"
	UnitOunces    WeightUnit = "oz"
	UnitPounds    WeightUnit = "lb"
)

// WeightReading is a single reading delivered by an external scale:
// a value, the unit it was reported in, and whether the scale considered
// the reading stable. Unstable readings must not feed inference.
type WeightReading struct {
	Value  float64
	Unit   WeightUnit
	Stable bool
}

// ErrUnsupportedUnit is returned when a reading uses a unit the core
// cannot convert.
var ErrUnsupportedUnit = errors.New("unsupported weight unit")

// ToGrams converts the reading value to grams
func (r WeightReading) ToGrams() (float64, error) {
	switch r.Unit {
	case UnitGrams:
		return r.Value, nil
	case UnitKilograms:
		return r.Value * 1000.0, nil
	case UnitOunces:
		return r.Value * 28.349523125, nil
	case UnitPounds:
		return r.Value * 453.59237, nil
	default:
		return 0, fmt.Errorf("%w: %q", ErrUnsupportedUnit, r.Unit)
	}
}
