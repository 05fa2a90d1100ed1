package dynamodb

import (
	"context"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/expression"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"go.uber.org/zap"

	"roadmaps-backend/application/ports"
	"roadmaps-backend/domain/user"
	apperrors "roadmaps-backend/pkg/errors"
	"roadmaps-backend/pkg/observability"
)

const (
	userSK         = "PROFILE"
	userEntity     = "USER"
	userKeyPrefix  = "USER#"
	emailKeyPrefix = "EMAIL#"
)

// UserRepository implements ports.UserRepository using DynamoDB
type UserRepository struct {
	client     *dynamodb.Client
	tableName  string
	emailIndex string
	metrics    *observability.Collector
	logger     *zap.Logger
}

// NewUserRepository creates a new UserRepository
func NewUserRepository(client *dynamodb.Client, tableName, emailIndex string, metrics *observability.Collector, logger *zap.Logger) ports.UserRepository {
	return &UserRepository{
		client:     client,
		tableName:  tableName,
		emailIndex: emailIndex,
		metrics:    metrics,
		logger:     logger,
	}
}

type userItem struct {
	PK           string              `dynamodbav:"PK"`
	SK           string              `dynamodbav:"SK"`
	GSI1PK       string              `dynamodbav:"GSI1PK"`
	GSI1SK       string              `dynamodbav:"GSI1SK"`
	EntityType   string              `dynamodbav:"EntityType"`
	UserID       string              `dynamodbav:"UserID"`
	Name         string              `dynamodbav:"Name"`
	Email        string              `dynamodbav:"Email"`
	PasswordHash string              `dynamodbav:"PasswordHash"`
	Admin        bool                `dynamodbav:"Admin"`
	Favorites    []string            `dynamodbav:"Favorites"`
	Seen         []user.SeenContents `dynamodbav:"Seen"`
	CreatedAt    string              `dynamodbav:"CreatedAt"`
	UpdatedAt    string              `dynamodbav:"UpdatedAt"`
}

// GetByID retrieves a user by id
func (r *UserRepository) GetByID(ctx context.Context, id string) (*user.User, error) {
	start := time.Now()
	defer r.observe("GetItem", start)

	out, err := r.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: aws.String(r.tableName),
		Key: map[string]types.AttributeValue{
			"PK": &types.AttributeValueMemberS{Value: userKeyPrefix + id},
			"SK": &types.AttributeValueMemberS{Value: userSK},
		},
	})
	if err != nil {
		return nil, apperrors.NewDatabaseError("get user", err)
	}
	if out.Item == nil {
		return nil, apperrors.NewNotFoundError("user")
	}
	return unmarshalUser(out.Item)
}

// GetByEmail retrieves a user by unique email via the email GSI
func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*user.User, error) {
	start := time.Now()
	defer r.observe("Query", start)

	keyEx := expression.Key("GSI1PK").Equal(expression.Value(emailKeyPrefix + email))
	expr, err := expression.NewBuilder().WithKeyCondition(keyEx).Build()
	if err != nil {
		return nil, apperrors.NewInternalError("failed to build query", err)
	}

	out, err := r.client.Query(ctx, &dynamodb.QueryInput{
		TableName:                 aws.String(r.tableName),
		IndexName:                 aws.String(r.emailIndex),
		KeyConditionExpression:    expr.KeyCondition(),
		ExpressionAttributeNames:  expr.Names(),
		ExpressionAttributeValues: expr.Values(),
		Limit:                     aws.Int32(1),
	})
	if err != nil {
		return nil, apperrors.NewDatabaseError("query user by email", err)
	}
	if len(out.Items) == 0 {
		return nil, apperrors.NewNotFoundError("user")
	}
	return unmarshalUser(out.Items[0])
}

// Save persists the user as a full replace (last writer wins)
func (r *UserRepository) Save(ctx context.Context, u *user.User) error {
	start := time.Now()
	defer r.observe("PutItem", start)

	u.UpdatedAt = time.Now().UTC()

	item := userItem{
		PK:           userKeyPrefix + u.ID,
		SK:           userSK,
		GSI1PK:       emailKeyPrefix + u.Email,
		GSI1SK:       userSK,
		EntityType:   userEntity,
		UserID:       u.ID,
		Name:         u.Name,
		Email:        u.Email,
		PasswordHash: u.PasswordHash,
		Admin:        u.Admin,
		Favorites:    u.FavoriteRoadmaps,
		Seen:         u.SeenContents,
		CreatedAt:    u.CreatedAt.Format(time.RFC3339),
		UpdatedAt:    u.UpdatedAt.Format(time.RFC3339),
	}

	av, err := attributevalue.MarshalMap(item)
	if err != nil {
		return apperrors.NewInternalError("failed to marshal user", err)
	}

	if _, err := r.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(r.tableName),
		Item:      av,
	}); err != nil {
		r.logger.Error("failed to save user",
			zap.Error(err),
			zap.String("userID", u.ID),
		)
		return apperrors.NewDatabaseError("save user", err)
	}
	return nil
}

func (r *UserRepository) observe(op string, start time.Time) {
	if r.metrics == nil {
		return
	}
	r.metrics.DBOperations.WithLabelValues(op).Inc()
	r.metrics.DBDuration.WithLabelValues(op).Observe(time.Since(start).Seconds())
}

func unmarshalUser(av map[string]types.AttributeValue) (*user.User, error) {
	var item userItem
	if err := attributevalue.UnmarshalMap(av, &item); err != nil {
		return nil, apperrors.NewInternalError("failed to unmarshal user", err)
	}

	createdAt, _ := time.Parse(time.RFC3339, item.CreatedAt)
	updatedAt, _ := time.Parse(time.RFC3339, item.UpdatedAt)

	return &user.User{
		ID:               item.UserID,
		Name:             item.Name,
		Email:            item.Email,
		PasswordHash:     item.PasswordHash,
		Admin:            item.Admin,
		FavoriteRoadmaps: item.Favorites,
		SeenContents:     item.Seen,
		CreatedAt:        createdAt,
		UpdatedAt:        updatedAt,
	}, nil
}
