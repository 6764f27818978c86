package dynamo

import (
	"context"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/tradedash-api/internal/domain"
)

// PortfolioRepo provides typed DynamoDB operations for the portfolios table.
// PK: account_id — one portfolio per account.
type PortfolioRepo struct {
	client    *dynamodb.Client
	tableName string
}

func NewPortfolioRepo(client *dynamodb.Client, tableName string) *PortfolioRepo {
	return &PortfolioRepo{client: client, tableName: tableName}
}

func (r *PortfolioRepo) Put(ctx context.Context, p *domain.Portfolio) error {
	item, err := attributevalue.MarshalMap(p)
	if err != nil {
		return fmt.Errorf("marshal portfolio: %w", err)
	}
	_, err = r.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(r.tableName),
		Item:      item,
	})
	if err != nil {
		return fmt.Errorf("put portfolio: %w", domain.ErrUnavailable)
	}
	return nil
}

func (r *PortfolioRepo) Get(ctx context.Context, accountID string) (*domain.Portfolio, error) {
	out, err := r.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: aws.String(r.tableName),
		Key:       strKey("account_id", accountID),
	})
	if err != nil {
		return nil, fmt.Errorf("get portfolio: %w", domain.ErrUnavailable)
	}
	if out.Item == nil {
		return nil, fmt.Errorf("portfolio not found: %w", domain.ErrNotFound)
	}
	var p domain.Portfolio
	if err := attributevalue.UnmarshalMap(out.Item, &p); err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *PortfolioRepo) Update(ctx context.Context, accountID string, updates map[string]interface{}) error {
	updates["updated_at"] = time.Now().UTC().Format(time.RFC3339)
	ue, err := buildUpdateExpr(updates)
	if err != nil {
		return err
	}
	_, err = r.client.UpdateItem(ctx, &dynamodb.UpdateItemInput{
		TableName:                 aws.String(r.tableName),
		Key:                       strKey("account_id", accountID),
		UpdateExpression:          aws.String(ue.Expr),
		ExpressionAttributeNames:  ue.Names,
		ExpressionAttributeValues: ue.Values,
	})
	if err != nil {
		return fmt.Errorf("update portfolio: %w", domain.ErrUnavailable)
	}
	return nil
}
