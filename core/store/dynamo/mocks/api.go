package mocks

import (
	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/request"
	"github.com/aws/aws-sdk-go/service/dynamodb"
	"github.com/aws/aws-sdk-go/service/dynamodb/dynamodbiface"
	"github.com/stretchr/testify/mock"
)

// DynamoDBAPI is a mock of the DynamoDB operations used by dynamo.Table.
// Calling any other method panics.
type DynamoDBAPI struct {
	mock.Mock
	dynamodbiface.DynamoDBAPI
}

func (m *DynamoDBAPI) GetItemWithContext(ctx aws.Context, in *dynamodb.GetItemInput, _ ...request.Option) (*dynamodb.GetItemOutput, error) {
	args := m.Called(ctx, in)
	if out, ok := args.Get(0).(*dynamodb.GetItemOutput); ok {
		return out, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *DynamoDBAPI) PutItemWithContext(ctx aws.Context, in *dynamodb.PutItemInput, _ ...request.Option) (*dynamodb.PutItemOutput, error) {
	args := m.Called(ctx, in)
	if out, ok := args.Get(0).(*dynamodb.PutItemOutput); ok {
		return out, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *DynamoDBAPI) UpdateItemWithContext(ctx aws.Context, in *dynamodb.UpdateItemInput, _ ...request.Option) (*dynamodb.UpdateItemOutput, error) {
	args := m.Called(ctx, in)
	if out, ok := args.Get(0).(*dynamodb.UpdateItemOutput); ok {
		return out, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *DynamoDBAPI) DeleteItemWithContext(ctx aws.Context, in *dynamodb.DeleteItemInput, _ ...request.Option) (*dynamodb.DeleteItemOutput, error) {
	args := m.Called(ctx, in)
	if out, ok := args.Get(0).(*dynamodb.DeleteItemOutput); ok {
		return out, args.Error(1)
	}
	return nil, args.Error(1)
}

// QueryPagesWithContext feeds each configured *dynamodb.QueryOutput page to fn.
func (m *DynamoDBAPI) QueryPagesWithContext(ctx aws.Context, in *dynamodb.QueryInput, fn func(*dynamodb.QueryOutput, bool) bool, _ ...request.Option) error {
	args := m.Called(ctx, in)
	if pages, ok := args.Get(0).([]*dynamodb.QueryOutput); ok {
		for i, p := range pages {
			if !fn(p, i == len(pages)-1) {
				break
			}
		}
	}
	return args.Error(1)
}

// ScanPagesWithContext feeds each configured *dynamodb.ScanOutput page to fn.
func (m *DynamoDBAPI) ScanPagesWithContext(ctx aws.Context, in *dynamodb.ScanInput, fn func(*dynamodb.ScanOutput, bool) bool, _ ...request.Option) error {
	args := m.Called(ctx, in)
	if pages, ok := args.Get(0).([]*dynamodb.ScanOutput); ok {
		for i, p := range pages {
			if !fn(p, i == len(pages)-1) {
				break
			}
		}
	}
	return args.Error(1)
}
