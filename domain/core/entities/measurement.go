package entities

import (
	"time"

	"spooltrack/domain/core/valueobjects"
	pkgerrors "spooltrack/pkg/errors"

	"github.com/google/uuid"
)

// MeasurementType records how a mass measurement was taken
type MeasurementType string

const (
	MeasurementManual  MeasurementType = "manual"
	MeasurementScale   MeasurementType = "scale"
	MeasurementDerived MeasurementType = "derived"
)

// Measurement is an immutable record of a mass observation for one
// component. Measurements are only appended, never mutated; they form the
// audit trail feeding mass inference.
type Measurement struct {
	id            string
	componentID   valueobjects.ComponentID
	measuredGrams valueobjects.Mass
	measType      MeasurementType
	measuredAt    time.Time
	notes         string
}

// NewMeasurement creates a validated measurement record
func NewMeasurement(
	componentID valueobjects.ComponentID,
	measured valueobjects.Mass,
	measType MeasurementType,
	notes string,
) (*Measurement, error) {
	if componentID.IsZero() {
		return nil, pkgerrors.NewValidationError("measurement requires a component id")
	}
	switch measType {
	case MeasurementManual, MeasurementScale, MeasurementDerived:
	default:
		return nil, pkgerrors.NewValidationError("unknown measurement type: " + string(measType))
	}
	return &Measurement{
		id:            uuid.New().String(),
		componentID:   componentID,
		measuredGrams: measured,
		measType:      measType,
		measuredAt:    time.Now(),
		notes:         notes,
	}, nil
}

// ReconstructMeasurement rebuilds a measurement from storage
func ReconstructMeasurement(
	id string,
	componentID valueobjects.ComponentID,
	measured valueobjects.Mass,
	measType MeasurementType,
	measuredAt time.Time,
	notes string,
) *Measurement {
	return &Measurement{
		id:            id,
		componentID:   componentID,
		measuredGrams: measured,
		measType:      measType,
		measuredAt:    measuredAt,
		notes:         notes,
	}
}

// ID returns the measurement's unique identifier
func (m *Measurement) ID() string {
	return m.id
}

// ComponentID returns the measured component's id
func (m *Measurement) ComponentID() valueobjects.ComponentID {
	return m.componentID
}

// MeasuredMass returns the observed mass
func (m *Measurement) MeasuredMass() valueobjects.Mass {
	return m.measuredGrams
}

// Type returns how the measurement was taken
func (m *Measurement) Type() MeasurementType {
	return m.measType
}

// MeasuredAt returns when the measurement was taken
func (m *Measurement) MeasuredAt() time.Time {
	return m.measuredAt
}

// Notes returns the free-form annotation
func (m *Measurement) Notes() string {
	return m.notes
}
