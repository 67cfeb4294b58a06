package config

// DomainConfig holds all configurable business rules and constraints
type DomainConfig struct {
	// Component constraints
	MaxChildrenPerComponent int
	MaxSiblingsPerComponent int
	MaxTagsPerComponent     int
	MaxNameLength           int
	MinNameLength           int
	MaxIdentifiers          int

	// Inventory constraints
	MaxComponentsPerInventory int

	// Mass constraints
	MaxMassGrams float64
	// MassEpsilon is the tolerance used when comparing a measured total
	// against the known-mass sum.
	MassEpsilon float64

	// History constraints
	MaxUndoDepth int
	MaxRedoDepth int

	// Validation settings
	AllowSelfSibling      bool
	AllowDuplicateChild   bool
	RequireStableReadings bool
}

// DefaultDomainConfig returns the default domain configuration
func DefaultDomainConfig() DomainConfig {
	return DomainConfig{
		// Component constraints
		MaxChildrenPerComponent: 100,
		MaxSiblingsPerComponent: 16,
		MaxTagsPerComponent:     20,
		MaxNameLength:           200,
		MinNameLength:           1,
		MaxIdentifiers:          10,

		// Inventory constraints
		MaxComponentsPerInventory: 10000,

		// Mass constraints
		MaxMassGrams: 100000, // 100 kg, well above any spool
		MassEpsilon:  0.01,

		// History constraints
		MaxUndoDepth: 100,
		MaxRedoDepth: 100,

		// Validation settings
		AllowSelfSibling:      false,
		AllowDuplicateChild:   false,
		RequireStableReadings: true,
	}
}
