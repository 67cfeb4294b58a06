package valueobjects

import (
	"errors"
	"strings"

	"github.com/google/uuid"
)

// componentNamespace is the fixed UUIDv5 namespace for generated component
// ids. Deriving ids from scan keys inside a stable namespace makes
// regeneration idempotent: the same scan set always yields the same ids.
var componentNamespace = uuid.MustParse("9f2c1b6e-5a84-4c8d-b1f3-7e0a2d94c653")

// ComponentID is a value object identifying a component.
// For generated components it is a pure function of the scan-derived key;
// for user-created components it is a random UUID.
type ComponentID struct {
	value string
}

// NewComponentID creates a new random ComponentID for user-created components
func NewComponentID() ComponentID {
	return ComponentID{value: uuid.New().String()}
}

// NewGeneratedComponentID derives a deterministic ComponentID from the kind
// of source record ("tray", "tag", "orphan") and its scan key.
func NewGeneratedComponentID(kind, key string) ComponentID {
	name := kind + ":" + strings.ToLower(strings.TrimSpace(key))
	return ComponentID{value: uuid.NewSHA1(componentNamespace, []byte(name)).String()}
}

// NewComponentIDFromString creates a ComponentID from an existing string
func NewComponentIDFromString(id string) (ComponentID, error) {
	if id == "" {
		return ComponentID{}, errors.New("component ID cannot be empty")
	}
	if _, err := uuid.Parse(id); err != nil {
		return ComponentID{}, errors.New("component ID must be a valid UUID")
	}
	return ComponentID{value: id}, nil
}

// String returns the string representation of the ComponentID
func (id ComponentID) String() string {
	return id.value
}

// Equals checks if two ComponentIDs are equal
func (id ComponentID) Equals(other ComponentID) bool {
	return id.value == other.value
}

// IsZero checks if the ComponentID is the zero value
func (id ComponentID) IsZero() bool {
	return id.value == ""
}

// MarshalJSON implements json.Marshaler
func (id ComponentID) MarshalJSON() ([]byte, error) {
	return []byte(`"` + id.value + `"`), nil
}

// UnmarshalJSON implements json.Unmarshaler
func (id *ComponentID) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		return nil
	}
	if len(data) < 2 || data[0] != '"' || data[len(data)-1] != '"' {
		return errors.New("ComponentID must be a string")
	}
	id.value = string(data[1 : len(data)-1])
	return nil
}
