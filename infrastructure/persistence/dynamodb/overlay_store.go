package dynamodb

import (
	"context"
	"fmt"
	"time"

	"spooltrack/application/ports"
	"spooltrack/domain/core/entities"
	"spooltrack/domain/core/valueobjects"
	"spooltrack/domain/overlay"
	pkgerrors "spooltrack/pkg/errors"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/expression"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"go.uber.org/zap"
)

// activeOverlayPartition is the GSI1 partition holding every active
// overlay, so one query loads the whole edit set
const activeOverlayPartition = "OVERLAY#ACTIVE"

// OverlayStore implements ports.OverlayStore on a single DynamoDB table.
// Overlays live at PK=COMPONENT#<id>/SK=OVERLAY with an ActiveOverlayIndex
// entry while active; measurements are append-only items under the same
// partition key.
type OverlayStore struct {
	client    *dynamodb.Client
	tableName string
	indexName string
	logger    *zap.Logger
}

// NewOverlayStore creates a new DynamoDB overlay store
func NewOverlayStore(client *dynamodb.Client, tableName, indexName string, logger *zap.Logger) ports.OverlayStore {
	return &OverlayStore{
		client:    client,
		tableName: tableName,
		indexName: indexName,
		logger:    logger,
	}
}

// overlayItem is the DynamoDB item shape for one overlay record
type overlayItem struct {
	PK     string `dynamodbav:"PK"`
	SK     string `dynamodbav:"SK"`
	GSI1PK string `dynamodbav:"GSI1PK,omitempty"`
	GSI1SK string `dynamodbav:"GSI1SK,omitempty"`

	EntityType  string `dynamodbav:"EntityType"`
	ComponentID string `dynamodbav:"ComponentID"`

	TrackingIDType    string `dynamodbav:"TrackingIDType,omitempty"`
	TrackingIDValue   string `dynamodbav:"TrackingIDValue,omitempty"`
	TrackingIDPurpose string `dynamodbav:"TrackingIDPurpose,omitempty"`

	Name         *string   `dynamodbav:"Name,omitempty"`
	Category     *string   `dynamodbav:"Category,omitempty"`
	Manufacturer *string   `dynamodbav:"Manufacturer,omitempty"`
	Description  *string   `dynamodbav:"Description,omitempty"`
	Tags         *[]string `dynamodbav:"Tags,omitempty"`

	MassGrams     *float64 `dynamodbav:"MassGrams,omitempty"`
	FullMassGrams *float64 `dynamodbav:"FullMassGrams,omitempty"`
	VariableMass  *bool    `dynamodbav:"VariableMass,omitempty"`
	MassInferred  *bool    `dynamodbav:"MassInferred,omitempty"`

	ParentID        *string  `dynamodbav:"ParentID,omitempty"`
	AddedChildren   []string `dynamodbav:"AddedChildren,omitempty"`
	RemovedChildren []string `dynamodbav:"RemovedChildren,omitempty"`
	Siblings        []string `dynamodbav:"Siblings,omitempty"`

	Active    bool   `dynamodbav:"Active"`
	EditedBy  string `dynamodbav:"EditedBy,omitempty"`
	CreatedAt string `dynamodbav:"CreatedAt"`
	UpdatedAt string `dynamodbav:"UpdatedAt"`
}

// measurementItem is the DynamoDB item shape for one measurement
type measurementItem struct {
	PK string `dynamodbav:"PK"`
	SK string `dynamodbav:"SK"`

	EntityType    string  `dynamodbav:"EntityType"`
	MeasurementID string  `dynamodbav:"MeasurementID"`
	ComponentID   string  `dynamodbav:"ComponentID"`
	MeasuredGrams float64 `dynamodbav:"MeasuredGrams"`
	MeasType      string  `dynamodbav:"MeasType"`
	MeasuredAt    string  `dynamodbav:"MeasuredAt"`
	Notes         string  `dynamodbav:"Notes,omitempty"`
}

// GetActiveOverlays loads every active overlay record via the active
// partition of the overlay index
func (s *OverlayStore) GetActiveOverlays(ctx context.Context) ([]overlay.Record, error) {
	keyCond := expression.Key("GSI1PK").Equal(expression.Value(activeOverlayPartition))
	expr, err := expression.NewBuilder().WithKeyCondition(keyCond).Build()
	if err != nil {
		return nil, pkgerrors.WrapWithType(err, pkgerrors.ErrorTypeInternal, "failed to build overlay query")
	}

	input := &dynamodb.QueryInput{
		TableName:                 aws.String(s.tableName),
		IndexName:                 aws.String(s.indexName),
		KeyConditionExpression:    expr.KeyCondition(),
		ExpressionAttributeNames:  expr.Names(),
		ExpressionAttributeValues: expr.Values(),
	}

	var records []overlay.Record
	paginator := dynamodb.NewQueryPaginator(s.client, input)
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return nil, pkgerrors.WrapWithType(err, pkgerrors.ErrorTypeDatabase, "failed to query active overlays")
		}
		for _, raw := range page.Items {
			var item overlayItem
			if err := attributevalue.UnmarshalMap(raw, &item); err != nil {
				s.logger.Warn("Failed to unmarshal overlay item", zap.Error(err))
				continue
			}
			rec, err := recordFromItem(item)
			if err != nil {
				s.logger.Warn("Skipping malformed overlay item",
					zap.String("componentId", item.ComponentID), zap.Error(err))
				continue
			}
			records = append(records, rec)
		}
	}

	s.logger.Debug("Loaded active overlays", zap.Int("count", len(records)))
	return records, nil
}

// SaveComponent persists a component's full state as its overlay record.
// Child-edge bookkeeping is carried over from the existing item untouched:
// the edge methods own AddedChildren/RemovedChildren, and a field save
// must never turn a generated edge into a user-added one.
func (s *OverlayStore) SaveComponent(ctx context.Context, component *entities.Component) error {
	existing, found, err := s.getOverlay(ctx, component.ID())
	if err != nil {
		return err
	}

	item := itemFromComponent(component)
	if found {
		item.AddedChildren = existing.AddedChildren
		item.RemovedChildren = existing.RemovedChildren
		item.CreatedAt = existing.CreatedAt
	}

	return s.putOverlay(ctx, item)
}

// DeleteComponent deactivates a component's overlay record. The item is
// kept (with the index entry removed) as an audit trail; a missing record
// is not an error.
func (s *OverlayStore) DeleteComponent(ctx context.Context, id valueobjects.ComponentID) error {
	existing, found, err := s.getOverlay(ctx, id)
	if err != nil {
		return err
	}
	if !found {
		return nil
	}

	existing.Active = false
	existing.GSI1PK = ""
	existing.GSI1SK = ""
	existing.UpdatedAt = time.Now().Format(time.RFC3339Nano)
	return s.putOverlay(ctx, existing)
}

// SaveMeasurement appends an immutable measurement item
func (s *OverlayStore) SaveMeasurement(ctx context.Context, measurement *entities.Measurement) error {
	item := measurementItem{
		PK:            componentPK(measurement.ComponentID()),
		SK:            fmt.Sprintf("MEASUREMENT#%s#%s", measurement.MeasuredAt().UTC().Format(time.RFC3339Nano), measurement.ID()),
		EntityType:    "MEASUREMENT",
		MeasurementID: measurement.ID(),
		ComponentID:   measurement.ComponentID().String(),
		MeasuredGrams: measurement.MeasuredMass().Grams(),
		MeasType:      string(measurement.Type()),
		MeasuredAt:    measurement.MeasuredAt().UTC().Format(time.RFC3339Nano),
		Notes:         measurement.Notes(),
	}

	av, err := attributevalue.MarshalMap(item)
	if err != nil {
		return pkgerrors.WrapWithType(err, pkgerrors.ErrorTypeInternal, "failed to marshal measurement")
	}

	// Measurements are append-only; refuse to overwrite
	_, err = s.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName:           aws.String(s.tableName),
		Item:                av,
		ConditionExpression: aws.String("attribute_not_exists(PK)"),
	})
	if err != nil {
		return pkgerrors.WrapWithType(err, pkgerrors.ErrorTypeDatabase, "failed to save measurement")
	}
	return nil
}

// GetMeasurements returns a component's measurements, newest first
func (s *OverlayStore) GetMeasurements(ctx context.Context, componentID valueobjects.ComponentID) ([]*entities.Measurement, error) {
	keyCond := expression.Key("PK").Equal(expression.Value(componentPK(componentID))).
		And(expression.Key("SK").BeginsWith("MEASUREMENT#"))
	expr, err := expression.NewBuilder().WithKeyCondition(keyCond).Build()
	if err != nil {
		return nil, pkgerrors.WrapWithType(err, pkgerrors.ErrorTypeInternal, "failed to build measurement query")
	}

	input := &dynamodb.QueryInput{
		TableName:                 aws.String(s.tableName),
		KeyConditionExpression:    expr.KeyCondition(),
		ExpressionAttributeNames:  expr.Names(),
		ExpressionAttributeValues: expr.Values(),
		ScanIndexForward:          aws.Bool(false),
	}

	var measurements []*entities.Measurement
	paginator := dynamodb.NewQueryPaginator(s.client, input)
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return nil, pkgerrors.WrapWithType(err, pkgerrors.ErrorTypeDatabase, "failed to query measurements")
		}
		for _, raw := range page.Items {
			var item measurementItem
			if err := attributevalue.UnmarshalMap(raw, &item); err != nil {
				s.logger.Warn("Failed to unmarshal measurement item", zap.Error(err))
				continue
			}
			m, err := measurementFromItem(item)
			if err != nil {
				s.logger.Warn("Skipping malformed measurement item",
					zap.String("measurementId", item.MeasurementID), zap.Error(err))
				continue
			}
			measurements = append(measurements, m)
		}
	}
	return measurements, nil
}

// AddChildComponent records a child edge on the parent's overlay,
// clearing any tombstone for the same edge
func (s *OverlayStore) AddChildComponent(ctx context.Context, parentID, childID valueobjects.ComponentID) error {
	item, found, err := s.getOverlay(ctx, parentID)
	if err != nil {
		return err
	}
	if !found {
		item = emptyOverlayItem(parentID)
	}

	child := childID.String()
	item.RemovedChildren = removeString(item.RemovedChildren, child)
	if !containsString(item.AddedChildren, child) {
		item.AddedChildren = append(item.AddedChildren, child)
	}
	item.UpdatedAt = time.Now().Format(time.RFC3339Nano)
	return s.putOverlay(ctx, item)
}

// RemoveChildComponent removes a persisted child edge. For edges the
// overlay never added (generated edges) a tombstone is recorded instead,
// so the suppression survives regeneration.
func (s *OverlayStore) RemoveChildComponent(ctx context.Context, parentID, childID valueobjects.ComponentID) error {
	item, found, err := s.getOverlay(ctx, parentID)
	if err != nil {
		return err
	}
	if !found {
		item = emptyOverlayItem(parentID)
	}

	child := childID.String()
	if containsString(item.AddedChildren, child) {
		item.AddedChildren = removeString(item.AddedChildren, child)
	} else if !containsString(item.RemovedChildren, child) {
		item.RemovedChildren = append(item.RemovedChildren, child)
	}
	item.UpdatedAt = time.Now().Format(time.RFC3339Nano)
	return s.putOverlay(ctx, item)
}

func (s *OverlayStore) getOverlay(ctx context.Context, id valueobjects.ComponentID) (overlayItem, bool, error) {
	out, err := s.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: aws.String(s.tableName),
		Key: map[string]types.AttributeValue{
			"PK": &types.AttributeValueMemberS{Value: componentPK(id)},
			"SK": &types.AttributeValueMemberS{Value: "OVERLAY"},
		},
	})
	if err != nil {
		return overlayItem{}, false, pkgerrors.WrapWithType(err, pkgerrors.ErrorTypeDatabase, "failed to get overlay")
	}
	if out.Item == nil {
		return overlayItem{}, false, nil
	}
	var item overlayItem
	if err := attributevalue.UnmarshalMap(out.Item, &item); err != nil {
		return overlayItem{}, false, pkgerrors.WrapWithType(err, pkgerrors.ErrorTypeInternal, "failed to unmarshal overlay")
	}
	return item, true, nil
}

func (s *OverlayStore) putOverlay(ctx context.Context, item overlayItem) error {
	av, err := attributevalue.MarshalMap(item)
	if err != nil {
		return pkgerrors.WrapWithType(err, pkgerrors.ErrorTypeInternal, "failed to marshal overlay")
	}
	_, err = s.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(s.tableName),
		Item:      av,
	})
	if err != nil {
		return pkgerrors.WrapWithType(err, pkgerrors.ErrorTypeDatabase, "failed to put overlay")
	}
	return nil
}

func componentPK(id valueobjects.ComponentID) string {
	return fmt.Sprintf("COMPONENT#%s", id)
}

func emptyOverlayItem(id valueobjects.ComponentID) overlayItem {
	now := time.Now().Format(time.RFC3339Nano)
	return overlayItem{
		PK:          componentPK(id),
		SK:          "OVERLAY",
		GSI1PK:      activeOverlayPartition,
		GSI1SK:      componentPK(id),
		EntityType:  "OVERLAY",
		ComponentID: id.String(),
		Active:      true,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
}

// itemFromComponent snapshots a component's user-visible state into an
// overlay item. Every field is written as an override: once a component
// is user-saved, its state no longer depends on what scans generate.
func itemFromComponent(c *entities.Component) overlayItem {
	item := emptyOverlayItem(c.ID())

	name := c.Name()
	category := c.Category()
	manufacturer := c.Manufacturer()
	description := c.Description()
	tags := c.Tags()
	item.Name = &name
	item.Category = &category
	item.Manufacturer = &manufacturer
	item.Description = &description
	item.Tags = &tags

	if mass, ok := c.Mass(); ok {
		grams := mass.Grams()
		item.MassGrams = &grams
		inferred := c.MassInferred()
		item.MassInferred = &inferred
	}
	if full, ok := c.FullMass(); ok {
		grams := full.Grams()
		item.FullMassGrams = &grams
	}
	variable := c.VariableMass()
	item.VariableMass = &variable

	if !c.ParentID().IsZero() {
		parent := c.ParentID().String()
		item.ParentID = &parent
	}
	for _, sibID := range c.Siblings() {
		item.Siblings = append(item.Siblings, sibID.String())
	}

	if ident, ok := c.TrackingIdentifier(); ok {
		item.TrackingIDType = string(ident.Type())
		item.TrackingIDValue = ident.Value()
		item.TrackingIDPurpose = string(ident.Purpose())
	}

	item.CreatedAt = c.CreatedAt().Format(time.RFC3339Nano)
	item.UpdatedAt = c.UpdatedAt().Format(time.RFC3339Nano)
	return item
}

// recordFromItem converts a stored item back into a domain overlay record
func recordFromItem(item overlayItem) (overlay.Record, error) {
	id, err := valueobjects.NewComponentIDFromString(item.ComponentID)
	if err != nil {
		return overlay.Record{}, err
	}

	rec := overlay.Record{
		ComponentID:  id,
		Name:         item.Name,
		Category:     item.Category,
		Manufacturer: item.Manufacturer,
		Description:  item.Description,
		Tags:         item.Tags,

		MassGrams:     item.MassGrams,
		FullMassGrams: item.FullMassGrams,
		VariableMass:  item.VariableMass,
		MassInferred:  item.MassInferred,

		Active:   item.Active,
		EditedBy: item.EditedBy,
	}

	if item.TrackingIDValue != "" {
		ident, err := valueobjects.NewIdentifier(
			valueobjects.IdentifierType(item.TrackingIDType),
			item.TrackingIDValue,
			valueobjects.IdentifierPurpose(item.TrackingIDPurpose),
		)
		if err == nil {
			rec.TrackingIdentifier = &ident
		}
	}

	if item.ParentID != nil {
		parent, err := valueobjects.NewComponentIDFromString(*item.ParentID)
		if err != nil {
			return overlay.Record{}, err
		}
		rec.ParentID = &parent
	}
	if rec.AddedChildren, err = idList(item.AddedChildren); err != nil {
		return overlay.Record{}, err
	}
	if rec.RemovedChildren, err = idList(item.RemovedChildren); err != nil {
		return overlay.Record{}, err
	}
	if rec.Siblings, err = idList(item.Siblings); err != nil {
		return overlay.Record{}, err
	}

	if t, err := time.Parse(time.RFC3339Nano, item.CreatedAt); err == nil {
		rec.CreatedAt = t
	}
	if t, err := time.Parse(time.RFC3339Nano, item.UpdatedAt); err == nil {
		rec.UpdatedAt = t
	}
	return rec, nil
}

func measurementFromItem(item measurementItem) (*entities.Measurement, error) {
	id, err := valueobjects.NewComponentIDFromString(item.ComponentID)
	if err != nil {
		return nil, err
	}
	mass, err := valueobjects.NewMass(item.MeasuredGrams)
	if err != nil {
		return nil, err
	}
	measuredAt, err := time.Parse(time.RFC3339Nano, item.MeasuredAt)
	if err != nil {
		return nil, err
	}
	return entities.ReconstructMeasurement(
		item.MeasurementID, id, mass,
		entities.MeasurementType(item.MeasType),
		measuredAt, item.Notes,
	), nil
}

func idList(values []string) ([]valueobjects.ComponentID, error) {
	if len(values) == 0 {
		return nil, nil
	}
	out := make([]valueobjects.ComponentID, 0, len(values))
	for _, v := range values {
		id, err := valueobjects.NewComponentIDFromString(v)
		if err != nil {
			return nil, err
		}
		out = append(out, id)
	}
	return out, nil
}

func containsString(list []string, v string) bool {
	for _, s := range list {
		if s == v {
			return true
		}
	}
	return false
}

func removeString(list []string, v string) []string {
	out := list[:0]
	for _, s := range list {
		if s != v {
			out = append(out, s)
		}
	}
	return out
}
