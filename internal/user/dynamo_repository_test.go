package user

import (
	"context"
	"errors"
	"testing"
	"time"

	"item_catalog/internal/apperror"

	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockDynamo struct {
	mock.Mock
}

func (m *MockDynamo) PutItem(ctx context.Context, in *dynamodb.PutItemInput, _ ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error) {
	args := m.Called(in)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*dynamodb.PutItemOutput), args.Error(1)
}

func (m *MockDynamo) GetItem(ctx context.Context, in *dynamodb.GetItemInput, _ ...func(*dynamodb.Options)) (*dynamodb.GetItemOutput, error) {
	args := m.Called(in)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*dynamodb.GetItemOutput), args.Error(1)
}

func (m *MockDynamo) UpdateItem(ctx context.Context, in *dynamodb.UpdateItemInput, _ ...func(*dynamodb.Options)) (*dynamodb.UpdateItemOutput, error) {
	args := m.Called(in)
	return nil, args.Error(1)
}

func (m *MockDynamo) DeleteItem(ctx context.Context, in *dynamodb.DeleteItemInput, _ ...func(*dynamodb.Options)) (*dynamodb.DeleteItemOutput, error) {
	args := m.Called(in)
	return nil, args.Error(1)
}

func (m *MockDynamo) Scan(ctx context.Context, in *dynamodb.ScanInput, _ ...func(*dynamodb.Options)) (*dynamodb.ScanOutput, error) {
	args := m.Called(in)
	return nil, args.Error(1)
}

func TestDynamoRepository_Create(t *testing.T) {
	client := new(MockDynamo)
	client.On("PutItem", mock.MatchedBy(func(in *dynamodb.PutItemInput) bool {
		_, hasHash := in.Item["password_hash"]
		return *in.TableName == "users" &&
			*in.ConditionExpression == "attribute_not_exists(username)" &&
			hasHash
	})).Return(&dynamodb.PutItemOutput{}, nil)

	repo := NewDynamoRepository(client, "users")
	err := repo.Create(context.Background(), &User{ID: "u1", Username: "alice", PasswordHash: "hash", CreatedAt: time.Now()})

	require.NoError(t, err)
	client.AssertExpectations(t)
}

func TestDynamoRepository_CreateDuplicate(t *testing.T) {
	client := new(MockDynamo)
	client.On("PutItem", mock.Anything).Return(nil, &types.ConditionalCheckFailedException{})

	repo := NewDynamoRepository(client, "users")
	err := repo.Create(context.Background(), &User{ID: "u1", Username: "alice"})

	assert.ErrorIs(t, err, apperror.ErrConflict)
}

func TestDynamoRepository_GetByUsername(t *testing.T) {
	now := time.Now().UTC().Truncate(time.Second)
	item, err := attributevalue.MarshalMap(&User{ID: "u1", Username: "alice", PasswordHash: "hash", CreatedAt: now})
	require.NoError(t, err)

	client := new(MockDynamo)
	client.On("GetItem", mock.Anything).Return(&dynamodb.GetItemOutput{Item: item}, nil)

	repo := NewDynamoRepository(client, "users")
	u, err := repo.GetByUsername(context.Background(), "alice")

	require.NoError(t, err)
	assert.Equal(t, "u1", u.ID)
	assert.Equal(t, "hash", u.PasswordHash)
	assert.True(t, now.Equal(u.CreatedAt))
}

func TestDynamoRepository_GetByUsernameMissing(t *testing.T) {
	client := new(MockDynamo)
	client.On("GetItem", mock.Anything).Return(&dynamodb.GetItemOutput{}, nil)

	repo := NewDynamoRepository(client, "users")
	_, err := repo.GetByUsername(context.Background(), "ghost")

	assert.ErrorIs(t, err, apperror.ErrNotFound)
}

func TestDynamoRepository_GetByUsernameFailure(t *testing.T) {
	client := new(MockDynamo)
	client.On("GetItem", mock.Anything).Return(nil, errors.New("throttled"))

	repo := NewDynamoRepository(client, "users")
	_, err := repo.GetByUsername(context.Background(), "alice")

	require.Error(t, err)
	assert.NotErrorIs(t, err, apperror.ErrNotFound)
}
