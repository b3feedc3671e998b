package leads

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/google/uuid"
)

type dynamoAPI interface {
	PutItem(context.Context, *dynamodb.PutItemInput, ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error)
	GetItem(context.Context, *dynamodb.GetItemInput, ...func(*dynamodb.Options)) (*dynamodb.GetItemOutput, error)
	DescribeTable(context.Context, *dynamodb.DescribeTableInput, ...func(*dynamodb.Options)) (*dynamodb.DescribeTableOutput, error)
}

// DynamoRepository stores leads as items in a DynamoDB table keyed by id.
type DynamoRepository struct {
	client    dynamoAPI
	tableName string
	now       func() time.Time
}

var _ Repository = (*DynamoRepository)(nil)

// NewDynamoRepository builds a repository backed by the provided DynamoDB client.
func NewDynamoRepository(client dynamoAPI, tableName string) *DynamoRepository {
	if client == nil {
		panic("leads: dynamodb client cannot be nil")
	}
	if tableName == "" {
		panic("leads: table name cannot be empty")
	}
	return &DynamoRepository{
		client:    client,
		tableName: tableName,
		now:       time.Now,
	}
}

// Create puts a new item. The condition guards against id collisions only;
// identical submissions still produce separate items.
func (r *DynamoRepository) Create(ctx context.Context, req *CreateLeadRequest) (*Lead, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	lead := newLead(uuid.New().String(), req, r.now().UTC())
	item, err := attributevalue.MarshalMap(lead)
	if err != nil {
		return nil, fmt.Errorf("leads: failed to marshal lead: %w", err)
	}

	_, err = r.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName:           aws.String(r.tableName),
		Item:                item,
		ConditionExpression: aws.String("attribute_not_exists(id)"),
	})
	if err != nil {
		return nil, fmt.Errorf("leads: failed to persist lead: %w", err)
	}
	return lead, nil
}

// GetByID fetches a lead by ID.
func (r *DynamoRepository) GetByID(ctx context.Context, id string) (*Lead, error) {
	if id == "" {
		return nil, ErrLeadNotFound
	}
	out, err := r.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: aws.String(r.tableName),
		Key: map[string]types.AttributeValue{
			"id": &types.AttributeValueMemberS{Value: id},
		},
	})
	if err != nil {
		return nil, fmt.Errorf("leads: failed to fetch lead: %w", err)
	}
	if out.Item == nil {
		return nil, ErrLeadNotFound
	}

	var lead Lead
	if err := attributevalue.UnmarshalMap(out.Item, &lead); err != nil {
		return nil, fmt.Errorf("leads: failed to decode lead: %w", err)
	}
	return &lead, nil
}

// Ping checks that the table exists and is active.
func (r *DynamoRepository) Ping(ctx context.Context) error {
	out, err := r.client.DescribeTable(ctx, &dynamodb.DescribeTableInput{
		TableName: aws.String(r.tableName),
	})
	if err != nil {
		return fmt.Errorf("leads: describe table %s: %w", r.tableName, err)
	}
	if out.Table == nil || out.Table.TableStatus != types.TableStatusActive {
		return errors.New("leads: table " + r.tableName + " is not active")
	}
	return nil
}
