package repository_test

import (
	"context"
	"errors"
	"slices"
	"sync"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tuanvumaihuynh/product-catalog/internal/apperr"
	"github.com/tuanvumaihuynh/product-catalog/internal/config"
	"github.com/tuanvumaihuynh/product-catalog/internal/model"
	"github.com/tuanvumaihuynh/product-catalog/internal/repository"
	"github.com/tuanvumaihuynh/product-catalog/internal/storage/dynamo"
)

// fakeDynamo is a single-table, hash-key-only stand-in for DynamoDB.
type fakeDynamo struct {
	mu sync.Mutex

	tableExists bool
	createErr   error
	putErr      error
	items       map[string]map[string]types.AttributeValue

	pageSize            int
	unprocessedOnce     int
	batchCalls          int
	lastCreateTable     *dynamodb.CreateTableInput
	lastUpdateItemInput *dynamodb.UpdateItemInput
}

var _ dynamo.API = (*fakeDynamo)(nil)

func newFakeDynamo() *fakeDynamo {
	return &fakeDynamo{
		items:    map[string]map[string]types.AttributeValue{},
		pageSize: 2,
	}
}

func idOf(item map[string]types.AttributeValue) string {
	if s, ok := item["id"].(*types.AttributeValueMemberS); ok {
		return s.Value
	}
	return ""
}

func (f *fakeDynamo) CreateTable(_ context.Context, in *dynamodb.CreateTableInput, _ ...func(*dynamodb.Options)) (*dynamodb.CreateTableOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.lastCreateTable = in
	if f.createErr != nil {
		return nil, f.createErr
	}
	if f.tableExists {
		return nil, &types.ResourceInUseException{Message: aws.String("Table already exists: " + *in.TableName)}
	}
	f.tableExists = true
	return &dynamodb.CreateTableOutput{}, nil
}

func (f *fakeDynamo) DescribeTable(_ context.Context, in *dynamodb.DescribeTableInput, _ ...func(*dynamodb.Options)) (*dynamodb.DescribeTableOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if !f.tableExists {
		return nil, &types.ResourceNotFoundException{Message: aws.String("not found")}
	}
	return &dynamodb.DescribeTableOutput{
		Table: &types.TableDescription{
			TableName:   in.TableName,
			TableStatus: types.TableStatusActive,
		},
	}, nil
}

func (f *fakeDynamo) PutItem(_ context.Context, in *dynamodb.PutItemInput, _ ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.putErr != nil {
		return nil, f.putErr
	}
	f.items[idOf(in.Item)] = in.Item
	return &dynamodb.PutItemOutput{}, nil
}

func (f *fakeDynamo) GetItem(_ context.Context, in *dynamodb.GetItemInput, _ ...func(*dynamodb.Options)) (*dynamodb.GetItemOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	return &dynamodb.GetItemOutput{Item: f.items[idOf(in.Key)]}, nil
}

func (f *fakeDynamo) Scan(_ context.Context, in *dynamodb.ScanInput, _ ...func(*dynamodb.Options)) (*dynamodb.ScanOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	ids := make([]string, 0, len(f.items))
	for id := range f.items {
		ids = append(ids, id)
	}
	slices.Sort(ids)

	start := 0
	if in.ExclusiveStartKey != nil {
		after := idOf(in.ExclusiveStartKey)
		for start < len(ids) && ids[start] <= after {
			start++
		}
	}
	end := min(start+f.pageSize, len(ids))

	out := &dynamodb.ScanOutput{}
	for _, id := range ids[start:end] {
		out.Items = append(out.Items, f.items[id])
	}
	if end < len(ids) {
		out.LastEvaluatedKey = map[string]types.AttributeValue{
			"id": &types.AttributeValueMemberS{Value: ids[end-1]},
		}
	}
	return out, nil
}

func (f *fakeDynamo) UpdateItem(_ context.Context, in *dynamodb.UpdateItemInput, _ ...func(*dynamodb.Options)) (*dynamodb.UpdateItemOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.lastUpdateItemInput = in
	id := idOf(in.Key)
	item, ok := f.items[id]
	if !ok {
		item = map[string]types.AttributeValue{"id": in.Key["id"]}
	}
	item[in.ExpressionAttributeNames["#n"]] = in.ExpressionAttributeValues[":name"]
	item["description"] = in.ExpressionAttributeValues[":description"]
	item["price"] = in.ExpressionAttributeValues[":price"]
	f.items[id] = item
	return &dynamodb.UpdateItemOutput{}, nil
}

func (f *fakeDynamo) DeleteItem(_ context.Context, in *dynamodb.DeleteItemInput, _ ...func(*dynamodb.Options)) (*dynamodb.DeleteItemOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	delete(f.items, idOf(in.Key))
	return &dynamodb.DeleteItemOutput{}, nil
}

func (f *fakeDynamo) BatchWriteItem(_ context.Context, in *dynamodb.BatchWriteItemInput, _ ...func(*dynamodb.Options)) (*dynamodb.BatchWriteItemOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.batchCalls++
	out := &dynamodb.BatchWriteItemOutput{UnprocessedItems: map[string][]types.WriteRequest{}}
	for table, requests := range in.RequestItems {
		if len(requests) > 25 {
			return nil, errors.New("too many items requested for the BatchWriteItem call")
		}
		for _, req := range requests {
			if f.unprocessedOnce > 0 {
				f.unprocessedOnce--
				out.UnprocessedItems[table] = append(out.UnprocessedItems[table], req)
				continue
			}
			delete(f.items, idOf(req.DeleteRequest.Key))
		}
	}
	return out, nil
}

func newDynamoRepo(fake *fakeDynamo) repository.ProductRepository {
	return repository.NewDynamoProductRepository(fake, config.DynamoDB{
		Table:         "ProductCatalog",
		ReadCapacity:  5,
		WriteCapacity: 5,
		TableWait:     time.Minute,
	})
}

func TestDynamoEnsureTable(t *testing.T) {
	ctx := context.Background()

	t.Run("Should create table with id hash key", func(t *testing.T) {
		fake := newFakeDynamo()
		repo := newDynamoRepo(fake)

		require.NoError(t, repo.EnsureTable(ctx))

		in := fake.lastCreateTable
		require.NotNil(t, in)
		assert.Equal(t, "ProductCatalog", *in.TableName)
		require.Len(t, in.KeySchema, 1)
		assert.Equal(t, "id", *in.KeySchema[0].AttributeName)
		assert.Equal(t, types.KeyTypeHash, in.KeySchema[0].KeyType)
		assert.Equal(t, types.ScalarAttributeTypeS, in.AttributeDefinitions[0].AttributeType)
		assert.Equal(t, int64(5), *in.ProvisionedThroughput.ReadCapacityUnits)
		assert.Equal(t, int64(5), *in.ProvisionedThroughput.WriteCapacityUnits)
	})

	t.Run("Should ignore existing table", func(t *testing.T) {
		fake := newFakeDynamo()
		fake.tableExists = true
		repo := newDynamoRepo(fake)

		assert.NoError(t, repo.EnsureTable(ctx))
		assert.NoError(t, repo.EnsureTable(ctx))
	})

	t.Run("Should return provisioning error on other failures", func(t *testing.T) {
		fake := newFakeDynamo()
		fake.createErr = errors.New("AccessDeniedException")
		repo := newDynamoRepo(fake)

		err := repo.EnsureTable(ctx)
		require.Error(t, err)
		assert.ErrorIs(t, err, apperr.ProvisioningErr)
		assert.Contains(t, err.Error(), "AccessDeniedException")
	})
}

func TestDynamoProductCRUD(t *testing.T) {
	ctx := context.Background()
	fake := newFakeDynamo()
	fake.tableExists = true
	repo := newDynamoRepo(fake)

	widget := model.Product{ID: "a1", Name: "Widget", Description: "A widget", Price: decimal.RequireFromString("9.99")}
	require.NoError(t, repo.PutProduct(ctx, widget))

	t.Run("Should store price as string attribute", func(t *testing.T) {
		price, ok := fake.items["a1"]["price"].(*types.AttributeValueMemberS)
		require.True(t, ok)
		assert.Equal(t, "9.99", price.Value)
	})

	t.Run("Should get stored product", func(t *testing.T) {
		got, found, err := repo.GetProduct(ctx, "a1")
		require.NoError(t, err)
		assert.True(t, found)
		assert.Equal(t, "Widget", got.Name)
		assert.Equal(t, "A widget", got.Description)
		assert.True(t, widget.Price.Equal(got.Price))
	})

	t.Run("Should report missing product without error", func(t *testing.T) {
		_, found, err := repo.GetProduct(ctx, "missing")
		require.NoError(t, err)
		assert.False(t, found)
	})

	t.Run("Should update exactly name description and price", func(t *testing.T) {
		require.NoError(t, repo.UpdateProductFields(ctx, "a1", repository.UpdateProductFieldsParams{
			Name:        "Gadget",
			Description: "",
			Price:       decimal.RequireFromString("12.50"),
		}))

		in := fake.lastUpdateItemInput
		assert.Equal(t, "SET #n = :name, description = :description, price = :price", *in.UpdateExpression)
		assert.Equal(t, map[string]string{"#n": "name"}, in.ExpressionAttributeNames)

		got, found, err := repo.GetProduct(ctx, "a1")
		require.NoError(t, err)
		require.True(t, found)
		assert.Equal(t, "a1", got.ID)
		assert.Equal(t, "Gadget", got.Name)
		assert.Empty(t, got.Description)
		assert.True(t, decimal.RequireFromString("12.5").Equal(got.Price))
	})

	t.Run("Should create product when updating unknown id", func(t *testing.T) {
		require.NoError(t, repo.UpdateProductFields(ctx, "ghost", repository.UpdateProductFieldsParams{
			Name:  "Ghost",
			Price: decimal.NewFromInt(1),
		}))

		_, found, err := repo.GetProduct(ctx, "ghost")
		require.NoError(t, err)
		assert.True(t, found)
	})

	t.Run("Should delete idempotently", func(t *testing.T) {
		require.NoError(t, repo.DeleteProduct(ctx, "ghost"))
		require.NoError(t, repo.DeleteProduct(ctx, "ghost"))

		_, found, err := repo.GetProduct(ctx, "ghost")
		require.NoError(t, err)
		assert.False(t, found)
	})

	t.Run("Should wrap storage failures as store error", func(t *testing.T) {
		fake.putErr = errors.New("ProvisionedThroughputExceededException")
		defer func() { fake.putErr = nil }()

		err := repo.PutProduct(ctx, model.Product{ID: "b2", Name: "x", Price: decimal.Zero})
		assert.ErrorIs(t, err, apperr.StoreErr)
	})
}

func TestDynamoListAndDeleteAll(t *testing.T) {
	ctx := context.Background()
	fake := newFakeDynamo()
	fake.tableExists = true
	repo := newDynamoRepo(fake)

	for _, id := range []string{"01", "02", "03", "04", "05"} {
		require.NoError(t, repo.PutProduct(ctx, model.Product{ID: id, Name: "p" + id, Price: decimal.NewFromInt(1)}))
	}

	t.Run("Should follow scan pages until exhausted", func(t *testing.T) {
		products, err := repo.ListAllProducts(ctx)
		require.NoError(t, err)
		assert.Len(t, products, 5)
	})

	t.Run("Should resubmit unprocessed deletes", func(t *testing.T) {
		fake.unprocessedOnce = 2

		n, err := repo.DeleteAllProducts(ctx)
		require.NoError(t, err)
		assert.Equal(t, 5, n)
		assert.Equal(t, 2, fake.batchCalls)

		products, err := repo.ListAllProducts(ctx)
		require.NoError(t, err)
		assert.Empty(t, products)
	})

	t.Run("Should succeed on empty table", func(t *testing.T) {
		n, err := repo.DeleteAllProducts(ctx)
		require.NoError(t, err)
		assert.Zero(t, n)
	})
}

func TestDynamoDeleteAllChunksBatches(t *testing.T) {
	ctx := context.Background()
	fake := newFakeDynamo()
	fake.tableExists = true
	fake.pageSize = 100
	repo := newDynamoRepo(fake)

	for i := range 60 {
		id := string(rune('A'+i/26)) + string(rune('a'+i%26))
		require.NoError(t, repo.PutProduct(ctx, model.Product{ID: id, Name: id, Price: decimal.NewFromInt(int64(i))}))
	}

	n, err := repo.DeleteAllProducts(ctx)
	require.NoError(t, err)
	assert.Equal(t, 60, n)
	assert.Equal(t, 3, fake.batchCalls)
	assert.Empty(t, fake.items)
}
