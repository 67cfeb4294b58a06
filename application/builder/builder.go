package builder

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"spooltrack/domain/core/entities"
	"spooltrack/domain/core/valueobjects"
	"spooltrack/domain/scan"

	"go.uber.org/zap"
)

// GraphBuilder converts a batch of scan records into an ephemeral set of
// generated components: one tray aggregate per distinct tray key, one tag
// child per distinct tag under it. A physical unit carries two tags; one
// or both may have been scanned. Output is never persisted; identical
// input yields identical ids and structure regardless of input order.
type GraphBuilder struct {
	logger *zap.Logger
}

// NewGraphBuilder creates a new graph builder
func NewGraphBuilder(logger *zap.Logger) *GraphBuilder {
	return &GraphBuilder{logger: logger}
}

// Generate materializes generated components from scan records.
// Duplicate scans of the same tag are deduplicated by derived id; scans
// without a correlating key become free-standing components.
func (b *GraphBuilder) Generate(scans []scan.Record) ([]*entities.Component, error) {
	// Deduplicate by tag UID, keeping the record with the most recent
	// scan time so re-scans refresh filament attributes deterministically.
	byTag := make(map[string]scan.Record)
	for _, rec := range scans {
		if rec.TagUID == "" {
			continue // unreadable scan, nothing to correlate
		}
		existing, seen := byTag[rec.TagUID]
		if !seen || rec.ScannedAt.After(existing.ScannedAt) {
			byTag[rec.TagUID] = rec
		}
	}

	// Group by tray key; sort tag UIDs for order-independent output
	tagUIDs := make([]string, 0, len(byTag))
	for uid := range byTag {
		tagUIDs = append(tagUIDs, uid)
	}
	sort.Strings(tagUIDs)

	trays := make(map[string][]scan.Record)
	var orphans []scan.Record
	for _, uid := range tagUIDs {
		rec := byTag[uid]
		if rec.HasTray() {
			trays[rec.TrayUID] = append(trays[rec.TrayUID], rec)
		} else {
			orphans = append(orphans, rec)
		}
	}

	trayUIDs := make([]string, 0, len(trays))
	for uid := range trays {
		trayUIDs = append(trayUIDs, uid)
	}
	sort.Strings(trayUIDs)

	var components []*entities.Component
	for _, trayUID := range trayUIDs {
		records := trays[trayUID]
		tray, err := b.buildTray(trayUID, records)
		if err != nil {
			return nil, err
		}
		components = append(components, tray)

		for _, rec := range records {
			tag, err := b.buildTag(rec, tray.ID())
			if err != nil {
				return nil, err
			}
			if err := tray.LinkChild(tag.ID()); err != nil {
				return nil, err
			}
			components = append(components, tag)
		}
	}

	for _, rec := range orphans {
		tag, err := b.buildTag(rec, valueobjects.ComponentID{})
		if err != nil {
			return nil, err
		}
		components = append(components, tag)
	}

	b.logger.Debug("Generated components from scans",
		zap.Int("scans", len(scans)),
		zap.Int("distinctTags", len(byTag)),
		zap.Int("trays", len(trayUIDs)),
		zap.Int("orphans", len(orphans)),
		zap.Int("components", len(components)),
	)

	return components, nil
}

// buildTray creates the aggregate component for one physical unit
func (b *GraphBuilder) buildTray(trayUID string, records []scan.Record) (*entities.Component, error) {
	id := valueobjects.NewGeneratedComponentID("tray", trayUID)
	tray := entities.NewGeneratedComponent(id, trayName(trayUID, records), "tray")

	ident, err := valueobjects.NewIdentifier(valueobjects.IdentifierTypeTrayUID, trayUID, valueobjects.PurposeTracking)
	if err != nil {
		return nil, err
	}
	if err := tray.AddIdentifier(ident); err != nil {
		return nil, err
	}

	// Filament lives on the unit, not on the individual tags
	tray.SetVariableMass(true)
	for _, rec := range records {
		if rec.Manufacturer != "" {
			tray.SetManufacturer(rec.Manufacturer)
		}
		if rec.SpoolWeightGrams != nil && *rec.SpoolWeightGrams >= 0 {
			full, err := valueobjects.NewMass(*rec.SpoolWeightGrams)
			if err == nil {
				tray.SetFullMass(full)
			}
		}
	}

	tray.SetMetadataValue(entities.MetaAggregation, "true")
	tray.SetMetadataValue(entities.MetaSourceScans, strconv.Itoa(len(records)))
	return tray, nil
}

// buildTag creates the component for a single scanned tag. A zero trayID
// leaves it free-standing.
func (b *GraphBuilder) buildTag(rec scan.Record, trayID valueobjects.ComponentID) (*entities.Component, error) {
	id := valueobjects.NewGeneratedComponentID("tag", rec.TagUID)
	name := fmt.Sprintf("Tag %s", shortUID(rec.TagUID))
	if trayID.IsZero() && rec.Material != "" {
		// Free-standing tags keep their filament naming so they remain
		// recognizable without an aggregate
		name = strings.TrimSpace(rec.Material + " " + rec.ColorName)
	}

	tag := entities.NewGeneratedComponent(id, name, "tag")
	ident, err := valueobjects.NewIdentifier(valueobjects.IdentifierTypeTagUID, rec.TagUID, valueobjects.PurposeTracking)
	if err != nil {
		return nil, err
	}
	if err := tag.AddIdentifier(ident); err != nil {
		return nil, err
	}

	if !trayID.IsZero() {
		tag.SetParent(trayID)
	} else if rec.SpoolWeightGrams != nil && *rec.SpoolWeightGrams >= 0 {
		if full, err := valueobjects.NewMass(*rec.SpoolWeightGrams); err == nil {
			tag.SetVariableMass(true)
			tag.SetFullMass(full)
		}
	}
	if rec.Source != "" {
		tag.SetMetadataValue("scan_source", rec.Source)
	}
	return tag, nil
}

func trayName(trayUID string, records []scan.Record) string {
	for _, rec := range records {
		if rec.Material != "" {
			return strings.TrimSpace(rec.Material + " " + rec.ColorName)
		}
	}
	return "Tray " + shortUID(trayUID)
}

func shortUID(uid string) string {
	if len(uid) <= 8 {
		return uid
	}
	return uid[:8]
}
