package dynamodb

import (
	"context"
	"time"

	"spooltrack/application/ports"
	"spooltrack/domain/scan"
	pkgerrors "spooltrack/pkg/errors"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/expression"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"go.uber.org/zap"
)

// ScanSource reads decrypted scan records out of the scan ingestion
// table. The core never writes here; the acquisition pipeline owns the
// table.
type ScanSource struct {
	client    *dynamodb.Client
	tableName string
	logger    *zap.Logger
}

// NewScanSource creates a new DynamoDB scan source
func NewScanSource(client *dynamodb.Client, tableName string, logger *zap.Logger) ports.ScanSource {
	return &ScanSource{
		client:    client,
		tableName: tableName,
		logger:    logger,
	}
}

// scanItem is the DynamoDB item shape for one ingested scan
type scanItem struct {
	PK string `dynamodbav:"PK"`
	SK string `dynamodbav:"SK"`

	TagUID           string   `dynamodbav:"TagUID"`
	TrayUID          string   `dynamodbav:"TrayUID,omitempty"`
	Material         string   `dynamodbav:"Material,omitempty"`
	ColorName        string   `dynamodbav:"ColorName,omitempty"`
	Manufacturer     string   `dynamodbav:"Manufacturer,omitempty"`
	SpoolWeightGrams *float64 `dynamodbav:"SpoolWeightGrams,omitempty"`
	ScannedAt        string   `dynamodbav:"ScannedAt"`
	Source           string   `dynamodbav:"Source,omitempty"`
}

// ReadScans returns every ingested scan record. The builder dedupes and
// orders, so read order does not matter here.
func (s *ScanSource) ReadScans(ctx context.Context) ([]scan.Record, error) {
	filter := expression.Name("TagUID").AttributeExists()
	expr, err := expression.NewBuilder().WithFilter(filter).Build()
	if err != nil {
		return nil, pkgerrors.WrapWithType(err, pkgerrors.ErrorTypeInternal, "failed to build scan filter")
	}

	input := &dynamodb.ScanInput{
		TableName:                 aws.String(s.tableName),
		FilterExpression:          expr.Filter(),
		ExpressionAttributeNames:  expr.Names(),
		ExpressionAttributeValues: expr.Values(),
	}

	var records []scan.Record
	paginator := dynamodb.NewScanPaginator(s.client, input)
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return nil, pkgerrors.WrapWithType(err, pkgerrors.ErrorTypeDatabase, "failed to scan ingestion table")
		}
		for _, raw := range page.Items {
			var item scanItem
			if err := attributevalue.UnmarshalMap(raw, &item); err != nil {
				s.logger.Warn("Failed to unmarshal scan item", zap.Error(err))
				continue
			}
			records = append(records, recordFromScanItem(item))
		}
	}

	s.logger.Debug("Read scan records", zap.Int("count", len(records)))
	return records, nil
}

func recordFromScanItem(item scanItem) scan.Record {
	rec := scan.Record{
		TagUID:           item.TagUID,
		TrayUID:          item.TrayUID,
		Material:         item.Material,
		ColorName:        item.ColorName,
		Manufacturer:     item.Manufacturer,
		SpoolWeightGrams: item.SpoolWeightGrams,
		Source:           item.Source,
	}
	if t, err := time.Parse(time.RFC3339Nano, item.ScannedAt); err == nil {
		rec.ScannedAt = t
	}
	return rec
}
