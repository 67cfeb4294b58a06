package dynamodb

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"spooltrack/application/ports"
	pkgerrors "spooltrack/pkg/errors"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"go.uber.org/zap"
)

const (
	lockDuration      = 30 * time.Second
	lockRetryInterval = 100 * time.Millisecond
)

// DistributedLock implements ports.MutationLock with DynamoDB conditional
// writes, serializing graph mutations across service instances. Locks
// carry a TTL so a crashed holder cannot wedge the system.
type DistributedLock struct {
	client    *dynamodb.Client
	tableName string
	ownerID   string
	logger    *zap.Logger
}

// NewDistributedLock creates a new distributed lock instance
func NewDistributedLock(client *dynamodb.Client, tableName string, logger *zap.Logger) ports.MutationLock {
	hostname, _ := os.Hostname()
	return &DistributedLock{
		client:    client,
		tableName: tableName,
		ownerID:   fmt.Sprintf("%s-%d", hostname, os.Getpid()),
		logger:    logger,
	}
}

// Acquire blocks until the named lock is held or ctx is done, retrying
// with backoff on contention
func (dl *DistributedLock) Acquire(ctx context.Context, name string) (func(), error) {
	retryInterval := lockRetryInterval
	for {
		lockID, err := dl.tryAcquire(ctx, name)
		if err == nil {
			return func() {
				if releaseErr := dl.release(context.Background(), name, lockID); releaseErr != nil {
					dl.logger.Warn("Failed to release mutation lock",
						zap.String("lock", name), zap.Error(releaseErr))
				}
			}, nil
		}
		if !pkgerrors.IsConflict(err) {
			return nil, err
		}

		select {
		case <-ctx.Done():
			return nil, pkgerrors.WrapWithType(ctx.Err(), pkgerrors.ErrorTypeTimeout,
				fmt.Sprintf("gave up waiting for lock %s", name))
		case <-time.After(retryInterval):
			if retryInterval < time.Second {
				retryInterval = time.Duration(float64(retryInterval) * 1.5)
			}
		}
	}
}

func (dl *DistributedLock) tryAcquire(ctx context.Context, name string) (string, error) {
	now := time.Now()
	expiresAt := now.Add(lockDuration)
	lockID := fmt.Sprintf("%s_%d", dl.ownerID, now.UnixNano())

	item := map[string]types.AttributeValue{
		"PK":         &types.AttributeValueMemberS{Value: fmt.Sprintf("LOCK#%s", name)},
		"SK":         &types.AttributeValueMemberS{Value: "LOCK"},
		"LockID":     &types.AttributeValueMemberS{Value: lockID},
		"Owner":      &types.AttributeValueMemberS{Value: dl.ownerID},
		"AcquiredAt": &types.AttributeValueMemberS{Value: now.Format(time.RFC3339)},
		"ExpiresAt":  &types.AttributeValueMemberS{Value: expiresAt.Format(time.RFC3339)},
		"TTL":        &types.AttributeValueMemberN{Value: fmt.Sprintf("%d", expiresAt.Unix())},
	}

	_, err := dl.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName:           aws.String(dl.tableName),
		Item:                item,
		ConditionExpression: aws.String("attribute_not_exists(PK) OR ExpiresAt < :now"),
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":now": &types.AttributeValueMemberS{Value: now.Format(time.RFC3339)},
		},
	})
	if err != nil {
		var conditionFailed *types.ConditionalCheckFailedException
		if errors.As(err, &conditionFailed) {
			return "", pkgerrors.NewConflictError(fmt.Sprintf("lock %s already held", name))
		}
		return "", pkgerrors.WrapWithType(err, pkgerrors.ErrorTypeDatabase, "failed to acquire lock")
	}

	dl.logger.Debug("Acquired mutation lock",
		zap.String("lock", name), zap.String("lockId", lockID))
	return lockID, nil
}

func (dl *DistributedLock) release(ctx context.Context, name, lockID string) error {
	_, err := dl.client.DeleteItem(ctx, &dynamodb.DeleteItemInput{
		TableName: aws.String(dl.tableName),
		Key: map[string]types.AttributeValue{
			"PK": &types.AttributeValueMemberS{Value: fmt.Sprintf("LOCK#%s", name)},
			"SK": &types.AttributeValueMemberS{Value: "LOCK"},
		},
		ConditionExpression: aws.String("LockID = :lockId"),
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":lockId": &types.AttributeValueMemberS{Value: lockID},
		},
	})
	if err != nil {
		var conditionFailed *types.ConditionalCheckFailedException
		if errors.As(err, &conditionFailed) {
			// Expired and taken over; nothing left to release
			return nil
		}
		return pkgerrors.WrapWithType(err, pkgerrors.ErrorTypeDatabase, "failed to release lock")
	}
	return nil
}
