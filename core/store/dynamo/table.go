package dynamo

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	"giftlist-tools/core/store"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/awserr"
	"github.com/aws/aws-sdk-go/service/dynamodb"
	"github.com/aws/aws-sdk-go/service/dynamodb/dynamodbiface"
	"github.com/aws/aws-sdk-go/service/dynamodb/expression"
)

// Table is a store.Store bound to one DynamoDB table.
type Table struct {
	api    dynamodbiface.DynamoDBAPI
	name   string
	schema store.KeySchema
}

var _ store.Store = (*Table)(nil)

// NewTable binds api to a table with the given key schema.
func NewTable(api dynamodbiface.DynamoDBAPI, name string, schema store.KeySchema) *Table {
	return &Table{api: api, name: name, schema: schema}
}

// Name returns the table name.
func (t *Table) Name() string {
	return t.name
}

// Get reads one item by key.
func (t *Table) Get(ctx context.Context, key store.Key) (store.Item, error) {
	out, err := t.api.GetItemWithContext(ctx, &dynamodb.GetItemInput{
		TableName: aws.String(t.name),
		Key:       key,
	})
	if err != nil {
		return nil, t.classify("get", err)
	}
	if len(out.Item) == 0 {
		return nil, store.ErrNotFound
	}
	return out.Item, nil
}

// Put writes an item, optionally guarded by an existence condition on the partition key.
func (t *Table) Put(ctx context.Context, item store.Item, cond store.Condition) error {
	input := &dynamodb.PutItemInput{
		TableName: aws.String(t.name),
		Item:      item,
	}

	if cond != store.None {
		expr, err := t.conditionExpression(cond)
		if err != nil {
			return store.Wrap("put", t.name, err)
		}
		input.ConditionExpression = expr.Condition()
		input.ExpressionAttributeNames = expr.Names()
	}

	if _, err := t.api.PutItemWithContext(ctx, input); err != nil {
		return t.classify("put", err)
	}
	return nil
}

// Update sets each attribute of fields on the item under key.
func (t *Table) Update(ctx context.Context, key store.Key, fields store.Item) (store.Item, error) {
	if len(fields) == 0 {
		return nil, store.Wrap("update", t.name, errors.New("no fields to update"))
	}

	updateExpr, names, values := setExpression(fields)
	out, err := t.api.UpdateItemWithContext(ctx, &dynamodb.UpdateItemInput{
		TableName:                 aws.String(t.name),
		Key:                       key,
		UpdateExpression:          aws.String(updateExpr),
		ExpressionAttributeNames:  names,
		ExpressionAttributeValues: values,
		ReturnValues:              aws.String(dynamodb.ReturnValueUpdatedNew),
	})
	if err != nil {
		return nil, t.classify("update", err)
	}
	return out.Attributes, nil
}

// Delete removes the item under key, optionally requiring that it exists.
func (t *Table) Delete(ctx context.Context, key store.Key, cond store.Condition) error {
	input := &dynamodb.DeleteItemInput{
		TableName: aws.String(t.name),
		Key:       key,
	}

	if cond != store.None {
		expr, err := t.conditionExpression(cond)
		if err != nil {
			return store.Wrap("delete", t.name, err)
		}
		input.ConditionExpression = expr.Condition()
		input.ExpressionAttributeNames = expr.Names()
	}

	if _, err := t.api.DeleteItemWithContext(ctx, input); err != nil {
		return t.classify("delete", err)
	}
	return nil
}

// Query runs an equality key condition, following every page.
func (t *Table) Query(ctx context.Context, q store.Query) ([]store.Item, error) {
	keyCond := expression.Key(q.KeyName).Equal(expression.Value(q.Value))
	expr, err := expression.NewBuilder().WithKeyCondition(keyCond).Build()
	if err != nil {
		return nil, store.Wrap("query", t.name, err)
	}

	input := &dynamodb.QueryInput{
		TableName:                 aws.String(t.name),
		KeyConditionExpression:    expr.KeyCondition(),
		ExpressionAttributeNames:  expr.Names(),
		ExpressionAttributeValues: expr.Values(),
	}
	if q.Index != "" {
		input.IndexName = aws.String(q.Index)
	}

	var items []store.Item
	err = t.api.QueryPagesWithContext(ctx, input, func(page *dynamodb.QueryOutput, lastPage bool) bool {
		for _, it := range page.Items {
			items = append(items, it)
		}
		return true
	})
	if err != nil {
		return nil, t.classify("query", err)
	}
	return items, nil
}

// Scan reads every item of the table.
func (t *Table) Scan(ctx context.Context) ([]store.Item, error) {
	var items []store.Item
	err := t.api.ScanPagesWithContext(ctx, &dynamodb.ScanInput{
		TableName: aws.String(t.name),
	}, func(page *dynamodb.ScanOutput, lastPage bool) bool {
		for _, it := range page.Items {
			items = append(items, it)
		}
		return true
	})
	if err != nil {
		return nil, t.classify("scan", err)
	}
	return items, nil
}

// conditionExpression builds the existence condition on the partition key. DynamoDB
// evaluates it against the item with the request's exact key, so it covers the sort
// key too.
func (t *Table) conditionExpression(cond store.Condition) (expression.Expression, error) {
	var c expression.ConditionBuilder
	switch cond {
	case store.MustNotExist:
		c = expression.AttributeNotExists(expression.Name(t.schema.PartitionKey))
	case store.MustExist:
		c = expression.AttributeExists(expression.Name(t.schema.PartitionKey))
	default:
		return expression.Expression{}, fmt.Errorf("unsupported condition %s", cond)
	}
	return expression.NewBuilder().WithCondition(c).Build()
}

// setExpression renders "SET #f0 = :v0, ..." with fields in name order so the
// expression is stable.
func setExpression(fields store.Item) (string, map[string]*string, map[string]*dynamodb.AttributeValue) {
	keys := make([]string, 0, len(fields))
	for k := range fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	names := make(map[string]*string, len(keys))
	values := make(map[string]*dynamodb.AttributeValue, len(keys))
	var set, remove []string
	for i, k := range keys {
		n := fmt.Sprintf("#f%d", i)
		names[n] = aws.String(k)
		if fields[k] == nil {
			remove = append(remove, n)
			continue
		}
		v := fmt.Sprintf(":v%d", i)
		values[v] = fields[k]
		set = append(set, n+" = "+v)
	}

	var clauses []string
	if len(set) > 0 {
		clauses = append(clauses, "SET "+strings.Join(set, ", "))
	}
	if len(remove) > 0 {
		clauses = append(clauses, "REMOVE "+strings.Join(remove, ", "))
	}
	if len(values) == 0 {
		values = nil
	}
	return strings.Join(clauses, " "), names, values
}

// classify maps DynamoDB errors onto the store error taxonomy.
func (t *Table) classify(op string, err error) error {
	var aerr awserr.Error
	if errors.As(err, &aerr) && aerr.Code() == dynamodb.ErrCodeConditionalCheckFailedException {
		return fmt.Errorf("%s on %s: %w", op, t.name, store.ErrConditionFailed)
	}
	return &store.StoreError{Op: op, Table: t.name, Err: err}
}
