// Package dynamodb implements the application repositories on a DynamoDB
// single-table layout. Roadmaps and users live in the same table under
// distinct partition key prefixes, with GSIs for slug and email lookups.
package dynamodb

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/expression"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"go.uber.org/zap"

	"roadmaps-backend/application/ports"
	"roadmaps-backend/domain/roadmap"
	apperrors "roadmaps-backend/pkg/errors"
	"roadmaps-backend/pkg/observability"
)

const (
	roadmapSK      = "METADATA"
	roadmapEntity  = "ROADMAP"
	slugKeyPrefix  = "SLUG#"
	roadmapKeyPref = "ROADMAP#"
)

// RoadmapRepository implements ports.RoadmapRepository using DynamoDB
type RoadmapRepository struct {
	client    *dynamodb.Client
	tableName string
	slugIndex string
	metrics   *observability.Collector
	logger    *zap.Logger
}

// NewRoadmapRepository creates a new RoadmapRepository
func NewRoadmapRepository(client *dynamodb.Client, tableName, slugIndex string, metrics *observability.Collector, logger *zap.Logger) ports.RoadmapRepository {
	return &RoadmapRepository{
		client:    client,
		tableName: tableName,
		slugIndex: slugIndex,
		metrics:   metrics,
		logger:    logger,
	}
}

// roadmapItem is the DynamoDB item structure for a roadmap. The whole
// graph is stored inline as one document.
type roadmapItem struct {
	PK         string         `dynamodbav:"PK"`
	SK         string         `dynamodbav:"SK"`
	GSI1PK     string         `dynamodbav:"GSI1PK"`
	GSI1SK     string         `dynamodbav:"GSI1SK"`
	EntityType string         `dynamodbav:"EntityType"`
	RoadmapID  string         `dynamodbav:"RoadmapID"`
	Slug       string         `dynamodbav:"Slug"`
	Name       string         `dynamodbav:"Name"`
	Nodes      []roadmap.Node `dynamodbav:"Nodes"`
	Edges      []roadmap.Edge `dynamodbav:"Edges"`
	Version    int            `dynamodbav:"Version"`
	CreatedAt  string         `dynamodbav:"CreatedAt"`
	UpdatedAt  string         `dynamodbav:"UpdatedAt"`
}

// GetByID retrieves a roadmap by id
func (r *RoadmapRepository) GetByID(ctx context.Context, id string) (*roadmap.Roadmap, error) {
	start := time.Now()
	defer r.observe("GetItem", start)

	out, err := r.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: aws.String(r.tableName),
		Key: map[string]types.AttributeValue{
			"PK": &types.AttributeValueMemberS{Value: roadmapKeyPref + id},
			"SK": &types.AttributeValueMemberS{Value: roadmapSK},
		},
	})
	if err != nil {
		return nil, apperrors.NewDatabaseError("get roadmap", err)
	}
	if out.Item == nil {
		return nil, apperrors.NewNotFoundError("roadmap")
	}

	return unmarshalRoadmap(out.Item)
}

// GetBySlug retrieves a roadmap by its unique slug via the slug GSI
func (r *RoadmapRepository) GetBySlug(ctx context.Context, slug string) (*roadmap.Roadmap, error) {
	start := time.Now()
	defer r.observe("Query", start)

	keyEx := expression.Key("GSI1PK").Equal(expression.Value(slugKeyPrefix + slug))
	expr, err := expression.NewBuilder().WithKeyCondition(keyEx).Build()
	if err != nil {
		return nil, apperrors.NewInternalError("failed to build query", err)
	}

	out, err := r.client.Query(ctx, &dynamodb.QueryInput{
		TableName:                 aws.String(r.tableName),
		IndexName:                 aws.String(r.slugIndex),
		KeyConditionExpression:    expr.KeyCondition(),
		ExpressionAttributeNames:  expr.Names(),
		ExpressionAttributeValues: expr.Values(),
		Limit:                     aws.Int32(1),
	})
	if err != nil {
		return nil, apperrors.NewDatabaseError("query roadmap by slug", err)
	}
	if len(out.Items) == 0 {
		return nil, apperrors.NewNotFoundError("roadmap")
	}

	return unmarshalRoadmap(out.Items[0])
}

// List retrieves all roadmaps. The catalog is small; a filtered scan is
// fine here.
func (r *RoadmapRepository) List(ctx context.Context) ([]*roadmap.Roadmap, error) {
	start := time.Now()
	defer r.observe("Scan", start)

	filter := expression.Name("EntityType").Equal(expression.Value(roadmapEntity))
	expr, err := expression.NewBuilder().WithFilter(filter).Build()
	if err != nil {
		return nil, apperrors.NewInternalError("failed to build scan", err)
	}

	roadmaps := make([]*roadmap.Roadmap, 0)
	var lastKey map[string]types.AttributeValue
	for {
		out, err := r.client.Scan(ctx, &dynamodb.ScanInput{
			TableName:                 aws.String(r.tableName),
			FilterExpression:          expr.Filter(),
			ExpressionAttributeNames:  expr.Names(),
			ExpressionAttributeValues: expr.Values(),
			ExclusiveStartKey:         lastKey,
		})
		if err != nil {
			return nil, apperrors.NewDatabaseError("scan roadmaps", err)
		}
		for _, item := range out.Items {
			rm, err := unmarshalRoadmap(item)
			if err != nil {
				return nil, err
			}
			roadmaps = append(roadmaps, rm)
		}
		if out.LastEvaluatedKey == nil {
			break
		}
		lastKey = out.LastEvaluatedKey
	}
	return roadmaps, nil
}

// Save persists the roadmap as a full replace. The write is conditional
// on the stored version matching the version the aggregate was loaded
// with; a concurrent writer surfaces as a Conflict error.
func (r *RoadmapRepository) Save(ctx context.Context, rm *roadmap.Roadmap) error {
	start := time.Now()
	defer r.observe("PutItem", start)

	rm.UpdatedAt = time.Now().UTC()

	item := roadmapItem{
		PK:         roadmapKeyPref + rm.ID,
		SK:         roadmapSK,
		GSI1PK:     slugKeyPrefix + rm.Slug,
		GSI1SK:     roadmapSK,
		EntityType: roadmapEntity,
		RoadmapID:  rm.ID,
		Slug:       rm.Slug,
		Name:       rm.Name,
		Nodes:      rm.Nodes,
		Edges:      rm.Edges,
		Version:    rm.Version + 1,
		CreatedAt:  rm.CreatedAt.Format(time.RFC3339),
		UpdatedAt:  rm.UpdatedAt.Format(time.RFC3339),
	}

	av, err := attributevalue.MarshalMap(item)
	if err != nil {
		return apperrors.NewInternalError("failed to marshal roadmap", err)
	}

	input := &dynamodb.PutItemInput{
		TableName:           aws.String(r.tableName),
		Item:                av,
		ConditionExpression: aws.String("attribute_not_exists(PK) OR Version = :v"),
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":v": &types.AttributeValueMemberN{Value: fmt.Sprintf("%d", rm.Version)},
		},
	}

	if _, err := r.client.PutItem(ctx, input); err != nil {
		var conditionFailed *types.ConditionalCheckFailedException
		if errors.As(err, &conditionFailed) {
			return apperrors.NewConflictError("roadmap was modified concurrently")
		}
		r.logger.Error("failed to save roadmap",
			zap.Error(err),
			zap.String("roadmapID", rm.ID),
		)
		return apperrors.NewDatabaseError("save roadmap", err)
	}

	rm.Version++
	return nil
}

// Delete removes a roadmap
func (r *RoadmapRepository) Delete(ctx context.Context, id string) error {
	start := time.Now()
	defer r.observe("DeleteItem", start)

	_, err := r.client.DeleteItem(ctx, &dynamodb.DeleteItemInput{
		TableName: aws.String(r.tableName),
		Key: map[string]types.AttributeValue{
			"PK": &types.AttributeValueMemberS{Value: roadmapKeyPref + id},
			"SK": &types.AttributeValueMemberS{Value: roadmapSK},
		},
	})
	if err != nil {
		return apperrors.NewDatabaseError("delete roadmap", err)
	}
	return nil
}

func (r *RoadmapRepository) observe(op string, start time.Time) {
	if r.metrics == nil {
		return
	}
	r.metrics.DBOperations.WithLabelValues(op).Inc()
	r.metrics.DBDuration.WithLabelValues(op).Observe(time.Since(start).Seconds())
}

func unmarshalRoadmap(av map[string]types.AttributeValue) (*roadmap.Roadmap, error) {
	var item roadmapItem
	if err := attributevalue.UnmarshalMap(av, &item); err != nil {
		return nil, apperrors.NewInternalError("failed to unmarshal roadmap", err)
	}

	createdAt, _ := time.Parse(time.RFC3339, item.CreatedAt)
	updatedAt, _ := time.Parse(time.RFC3339, item.UpdatedAt)

	return &roadmap.Roadmap{
		ID:        item.RoadmapID,
		Slug:      item.Slug,
		Name:      item.Name,
		Nodes:     item.Nodes,
		Edges:     item.Edges,
		Version:   item.Version,
		CreatedAt: createdAt,
		UpdatedAt: updatedAt,
	}, nil
}
