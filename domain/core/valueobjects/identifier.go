package valueobjects

import "errors"

// IdentifierPurpose distinguishes what role an identifier plays for a
// component. Tracking identifiers correlate components with scan data;
// the others are informational.
type IdentifierPurpose string

const (
	PurposeTracking IdentifierPurpose = "tracking"
	PurposeSerial   IdentifierPurpose = "serial"
	PurposeSKU      IdentifierPurpose = "sku"
)

// IdentifierType names the scheme an identifier value belongs to
type IdentifierType string

const (
	IdentifierTypeTagUID  IdentifierType = "tag_uid"
	IdentifierTypeTrayUID IdentifierType = "tray_uid"
	IdentifierTypeSerial  IdentifierType = "serial_number"
	IdentifierTypeSKU     IdentifierType = "sku"
)

// Identifier is an immutable (type, value, purpose) triple attached to a
// component. Components keep an ordered set of these.
type Identifier struct {
	idType  IdentifierType
	value   string
	purpose IdentifierPurpose
}

// NewIdentifier creates a validated Identifier
func NewIdentifier(idType IdentifierType, value string, purpose IdentifierPurpose) (Identifier, error) {
	if idType == "" {
		return Identifier{}, errors.New("identifier type cannot be empty")
	}
	if value == "" {
		return Identifier{}, errors.New("identifier value cannot be empty")
	}
	if purpose == "" {
		purpose = PurposeTracking
	}
	return Identifier{idType: idType, value: value, purpose: purpose}, nil
}

// Type returns the identifier scheme
func (i Identifier) Type() IdentifierType {
	return i.idType
}

// Value returns the identifier value
func (i Identifier) Value() string {
	return i.value
}

// Purpose returns the identifier purpose
func (i Identifier) Purpose() IdentifierPurpose {
	return i.purpose
}

// IsTracking reports whether this identifier correlates with scan data
func (i Identifier) IsTracking() bool {
	return i.purpose == PurposeTracking
}

// Equals checks structural equality of two identifiers
func (i Identifier) Equals(other Identifier) bool {
	return i.idType == other.idType && i.value == other.value && i.purpose == other.purpose
}
