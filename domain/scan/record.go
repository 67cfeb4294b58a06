package scan

import "time"

// Record is one decrypted tag scan delivered by the scan source.
// The core only reads these; acquisition and decryption happen upstream.
type Record struct {
	// TagUID uniquely identifies the scanned tag
	TagUID string `json:"tag_uid"`

	// TrayUID is the correlating key shared by the tags of one physical
	// unit. Empty when the tag carried no tray information.
	TrayUID string `json:"tray_uid,omitempty"`

	// Filament attributes decoded from the tag, when present
	Material         string   `json:"material,omitempty"`
	ColorName        string   `json:"color_name,omitempty"`
	Manufacturer     string   `json:"manufacturer,omitempty"`
	SpoolWeightGrams *float64 `json:"spool_weight_grams,omitempty"`

	ScannedAt time.Time `json:"scanned_at"`
	Source    string    `json:"source,omitempty"`
}

// HasTray reports whether the scan carries a correlating key
func (r Record) HasTray() bool {
	return r.TrayUID != ""
}
