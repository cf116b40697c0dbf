package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/shopspring/decimal"

	"github.com/tuanvumaihuynh/product-catalog/internal/apperr"
	"github.com/tuanvumaihuynh/product-catalog/internal/config"
	"github.com/tuanvumaihuynh/product-catalog/internal/model"
	"github.com/tuanvumaihuynh/product-catalog/internal/storage/dynamo"
)

const (
	// batchWriteLimit is the DynamoDB maximum number of requests per BatchWriteItem.
	batchWriteLimit   = 25
	maxBatchAttempts  = 5
	batchRetryBackoff = 50 * time.Millisecond
)

type dynamoProduct struct {
	ID          string `dynamodbav:"id"`
	Name        string `dynamodbav:"name"`
	Description string `dynamodbav:"description"`
	Price       string `dynamodbav:"price"`
}

var _ ProductRepository = (*dynamoProductRepository)(nil)

type dynamoProductRepository struct {
	client        dynamo.API
	table         string
	readCapacity  int64
	writeCapacity int64
	tableWait     time.Duration
}

func NewDynamoProductRepository(client dynamo.API, cfg config.DynamoDB) ProductRepository {
	return &dynamoProductRepository{
		client:        client,
		table:         cfg.Table,
		readCapacity:  cfg.ReadCapacity,
		writeCapacity: cfg.WriteCapacity,
		tableWait:     cfg.TableWait,
	}
}

func (r dynamoProductRepository) EnsureTable(ctx context.Context) error {
	_, err := r.client.CreateTable(ctx, &dynamodb.CreateTableInput{
		TableName: aws.String(r.table),
		KeySchema: []types.KeySchemaElement{
			{AttributeName: aws.String("id"), KeyType: types.KeyTypeHash},
		},
		AttributeDefinitions: []types.AttributeDefinition{
			{AttributeName: aws.String("id"), AttributeType: types.ScalarAttributeTypeS},
		},
		ProvisionedThroughput: &types.ProvisionedThroughput{
			ReadCapacityUnits:  aws.Int64(r.readCapacity),
			WriteCapacityUnits: aws.Int64(r.writeCapacity),
		},
	})
	if err != nil {
		var inUse *types.ResourceInUseException
		if !errors.As(err, &inUse) {
			return apperr.ProvisioningErr.WrapParent(fmt.Errorf("create table %s: %w", r.table, err))
		}
	}

	// A table created by another instance may still be CREATING.
	if r.tableWait > 0 {
		waiter := dynamodb.NewTableExistsWaiter(r.client)
		if err := waiter.Wait(ctx, &dynamodb.DescribeTableInput{
			TableName: aws.String(r.table),
		}, r.tableWait); err != nil {
			return apperr.ProvisioningErr.WrapParent(fmt.Errorf("wait table %s exists: %w", r.table, err))
		}
	}

	return nil
}

func (r dynamoProductRepository) PutProduct(ctx context.Context, product model.Product) error {
	item, err := attributevalue.MarshalMap(modelProductToDynamoProduct(product))
	if err != nil {
		return fmt.Errorf("marshal product: %w", err)
	}

	if _, err := r.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(r.table),
		Item:      item,
	}); err != nil {
		return apperr.StoreErr.WrapParent(fmt.Errorf("put item: %w", err))
	}

	return nil
}

func (r dynamoProductRepository) GetProduct(ctx context.Context, id string) (model.Product, bool, error) {
	out, err := r.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: aws.String(r.table),
		Key:       productKey(id),
	})
	if err != nil {
		return model.Product{}, false, apperr.StoreErr.WrapParent(fmt.Errorf("get item: %w", err))
	}

	if len(out.Item) == 0 {
		return model.Product{}, false, nil
	}

	var item dynamoProduct
	if err := attributevalue.UnmarshalMap(out.Item, &item); err != nil {
		return model.Product{}, false, fmt.Errorf("unmarshal product: %w", err)
	}

	product, err := dynamoProductToModelProduct(item)
	if err != nil {
		return model.Product{}, false, fmt.Errorf("convert product to model product: %w", err)
	}

	return product, true, nil
}

func (r dynamoProductRepository) ListAllProducts(ctx context.Context) ([]model.Product, error) {
	var items []dynamoProduct
	if err := r.scan(ctx, &dynamodb.ScanInput{TableName: aws.String(r.table)}, func(page []map[string]types.AttributeValue) error {
		var pageItems []dynamoProduct
		if err := attributevalue.UnmarshalListOfMaps(page, &pageItems); err != nil {
			return fmt.Errorf("unmarshal products: %w", err)
		}
		items = append(items, pageItems...)
		return nil
	}); err != nil {
		return nil, err
	}

	products := make([]model.Product, 0, len(items))
	for _, item := range items {
		product, err := dynamoProductToModelProduct(item)
		if err != nil {
			return nil, fmt.Errorf("convert product to model product: %w", err)
		}
		products = append(products, product)
	}

	return products, nil
}

func (r dynamoProductRepository) DeleteProduct(ctx context.Context, id string) error {
	if _, err := r.client.DeleteItem(ctx, &dynamodb.DeleteItemInput{
		TableName: aws.String(r.table),
		Key:       productKey(id),
	}); err != nil {
		return apperr.StoreErr.WrapParent(fmt.Errorf("delete item: %w", err))
	}

	return nil
}

func (r dynamoProductRepository) DeleteAllProducts(ctx context.Context) (int, error) {
	var ids []string
	if err := r.scan(ctx, &dynamodb.ScanInput{
		TableName:                aws.String(r.table),
		ProjectionExpression:     aws.String("#id"),
		ExpressionAttributeNames: map[string]string{"#id": "id"},
	}, func(page []map[string]types.AttributeValue) error {
		for _, item := range page {
			var key struct {
				ID string `dynamodbav:"id"`
			}
			if err := attributevalue.UnmarshalMap(item, &key); err != nil {
				return fmt.Errorf("unmarshal product key: %w", err)
			}
			ids = append(ids, key.ID)
		}
		return nil
	}); err != nil {
		return 0, err
	}

	for start := 0; start < len(ids); start += batchWriteLimit {
		end := min(start+batchWriteLimit, len(ids))

		requests := make([]types.WriteRequest, 0, end-start)
		for _, id := range ids[start:end] {
			requests = append(requests, types.WriteRequest{
				DeleteRequest: &types.DeleteRequest{Key: productKey(id)},
			})
		}

		if err := r.batchWrite(ctx, requests); err != nil {
			return start, err
		}
	}

	return len(ids), nil
}

func (r dynamoProductRepository) UpdateProductFields(ctx context.Context, id string, params UpdateProductFieldsParams) error {
	if _, err := r.client.UpdateItem(ctx, &dynamodb.UpdateItemInput{
		TableName:                aws.String(r.table),
		Key:                      productKey(id),
		UpdateExpression:         aws.String("SET #n = :name, description = :description, price = :price"),
		ExpressionAttributeNames: map[string]string{"#n": "name"},
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":name":        &types.AttributeValueMemberS{Value: params.Name},
			":description": &types.AttributeValueMemberS{Value: params.Description},
			":price":       &types.AttributeValueMemberS{Value: params.Price.String()},
		},
	}); err != nil {
		return apperr.StoreErr.WrapParent(fmt.Errorf("update item: %w", err))
	}

	return nil
}

func (r dynamoProductRepository) IsHealthy(ctx context.Context) (bool, error) {
	if _, err := r.client.DescribeTable(ctx, &dynamodb.DescribeTableInput{
		TableName: aws.String(r.table),
	}); err != nil {
		return false, fmt.Errorf("describe table: %w", err)
	}
	return true, nil
}

// scan follows LastEvaluatedKey until the table is exhausted.
func (r dynamoProductRepository) scan(ctx context.Context, input *dynamodb.ScanInput, fn func([]map[string]types.AttributeValue) error) error {
	paginator := dynamodb.NewScanPaginator(r.client, input)
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return apperr.StoreErr.WrapParent(fmt.Errorf("scan: %w", err))
		}
		if err := fn(page.Items); err != nil {
			return err
		}
	}
	return nil
}

// batchWrite resubmits unprocessed requests with a growing backoff.
func (r dynamoProductRepository) batchWrite(ctx context.Context, requests []types.WriteRequest) error {
	pending := map[string][]types.WriteRequest{r.table: requests}
	backoff := batchRetryBackoff

	for attempt := 1; ; attempt++ {
		out, err := r.client.BatchWriteItem(ctx, &dynamodb.BatchWriteItemInput{
			RequestItems: pending,
		})
		if err != nil {
			return apperr.StoreErr.WrapParent(fmt.Errorf("batch write item: %w", err))
		}

		if len(out.UnprocessedItems[r.table]) == 0 {
			return nil
		}
		if attempt == maxBatchAttempts {
			return apperr.StoreErr.WrapParent(fmt.Errorf("batch write item: %d requests unprocessed after %d attempts",
				len(out.UnprocessedItems[r.table]), attempt))
		}

		pending = out.UnprocessedItems
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(backoff):
		}
		backoff *= 2
	}
}

func productKey(id string) map[string]types.AttributeValue {
	return map[string]types.AttributeValue{
		"id": &types.AttributeValueMemberS{Value: id},
	}
}

func modelProductToDynamoProduct(product model.Product) dynamoProduct {
	return dynamoProduct{
		ID:          product.ID,
		Name:        product.Name,
		Description: product.Description,
		Price:       product.Price.String(),
	}
}

func dynamoProductToModelProduct(item dynamoProduct) (model.Product, error) {
	price, err := decimal.NewFromString(item.Price)
	if err != nil {
		return model.Product{}, fmt.Errorf("parse price of product %s: %w", item.ID, err)
	}

	return model.Product{
		ID:          item.ID,
		Name:        item.Name,
		Description: item.Description,
		Price:       price,
	}, nil
}
