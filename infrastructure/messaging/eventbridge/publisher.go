package eventbridge

import (
	"context"
	"encoding/json"
	"fmt"

	"spooltrack/application/ports"
	"spooltrack/domain/events"
	pkgerrors "spooltrack/pkg/errors"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/eventbridge"
	"github.com/aws/aws-sdk-go-v2/service/eventbridge/types"
	"go.uber.org/zap"
)

const eventSource = "spooltrack"

// maxEntriesPerPut is the EventBridge PutEvents batch limit
const maxEntriesPerPut = 10

// Publisher sends domain events to an EventBridge bus
type Publisher struct {
	client  *eventbridge.Client
	busName string
	logger  *zap.Logger
}

// NewPublisher creates a new EventBridge publisher
func NewPublisher(client *eventbridge.Client, busName string, logger *zap.Logger) ports.EventPublisher {
	return &Publisher{
		client:  client,
		busName: busName,
		logger:  logger,
	}
}

// Publish sends a single event
func (p *Publisher) Publish(ctx context.Context, event events.DomainEvent) error {
	return p.PublishBatch(ctx, []events.DomainEvent{event})
}

// PublishBatch sends multiple events, splitting into PutEvents-sized
// chunks
func (p *Publisher) PublishBatch(ctx context.Context, batch []events.DomainEvent) error {
	if len(batch) == 0 {
		return nil
	}

	entries := make([]types.PutEventsRequestEntry, 0, len(batch))
	for _, event := range batch {
		detail, err := json.Marshal(event)
		if err != nil {
			return pkgerrors.WrapWithType(err, pkgerrors.ErrorTypeInternal, "failed to marshal event")
		}
		entries = append(entries, types.PutEventsRequestEntry{
			EventBusName: aws.String(p.busName),
			Source:       aws.String(eventSource),
			DetailType:   aws.String(event.GetEventType()),
			Detail:       aws.String(string(detail)),
			Time:         aws.Time(event.GetTimestamp()),
		})
	}

	for start := 0; start < len(entries); start += maxEntriesPerPut {
		end := start + maxEntriesPerPut
		if end > len(entries) {
			end = len(entries)
		}

		out, err := p.client.PutEvents(ctx, &eventbridge.PutEventsInput{
			Entries: entries[start:end],
		})
		if err != nil {
			return pkgerrors.WrapWithType(err, pkgerrors.ErrorTypeExternal, "failed to put events")
		}
		if out.FailedEntryCount > 0 {
			for _, entry := range out.Entries {
				if entry.ErrorCode != nil {
					p.logger.Warn("EventBridge rejected entry",
						zap.String("errorCode", aws.ToString(entry.ErrorCode)),
						zap.String("errorMessage", aws.ToString(entry.ErrorMessage)),
					)
				}
			}
			return pkgerrors.NewExternalError("eventbridge",
				fmt.Errorf("%d events failed to publish", out.FailedEntryCount))
		}
	}

	p.logger.Debug("Published domain events", zap.Int("count", len(batch)))
	return nil
}

// NopPublisher discards events; used in local mode and tests
type NopPublisher struct{}

// NewNopPublisher creates a publisher that drops everything
func NewNopPublisher() ports.EventPublisher {
	return NopPublisher{}
}

// Publish discards the event
func (NopPublisher) Publish(ctx context.Context, event events.DomainEvent) error {
	return nil
}

// PublishBatch discards the events
func (NopPublisher) PublishBatch(ctx context.Context, batch []events.DomainEvent) error {
	return nil
}
