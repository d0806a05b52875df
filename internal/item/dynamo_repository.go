package item

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"item_catalog/internal/apperror"
	"item_catalog/internal/db"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/sirupsen/logrus"
)

const itemExists = "attribute_exists(id)"

type DynamoRepository struct {
	client    db.DynamoAPI
	tableName string
}

func NewDynamoRepository(client db.DynamoAPI, tableName string) *DynamoRepository {
	return &DynamoRepository{client: client, tableName: tableName}
}

func idKey(id string) map[string]types.AttributeValue {
	return map[string]types.AttributeValue{
		"id": &types.AttributeValueMemberS{Value: id},
	}
}

func timeValue(t time.Time) (types.AttributeValue, error) {
	return attributevalue.Marshal(t)
}

func isConditionFailure(err error) bool {
	var condErr *types.ConditionalCheckFailedException
	return errors.As(err, &condErr)
}

func (r *DynamoRepository) Create(ctx context.Context, item *Item) error {
	av, err := attributevalue.MarshalMap(item.normalize())
	if err != nil {
		return fmt.Errorf("marshal item: %w", err)
	}

	_, err = r.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName:           aws.String(r.tableName),
		Item:                av,
		ConditionExpression: aws.String("attribute_not_exists(id)"),
	})
	if err != nil {
		logrus.WithError(err).Error("Failed to put item")
		return fmt.Errorf("put item: %w", err)
	}

	logrus.WithField("item_id", item.ID).Info("Item created successfully")
	return nil
}

// List scans the whole table. Scan order is arbitrary, so items are sorted
// by creation time afterwards.
func (r *DynamoRepository) List(ctx context.Context) ([]*Item, error) {
	items := make([]*Item, 0)

	var startKey map[string]types.AttributeValue
	for {
		out, err := r.client.Scan(ctx, &dynamodb.ScanInput{
			TableName:         aws.String(r.tableName),
			ExclusiveStartKey: startKey,
		})
		if err != nil {
			logrus.WithError(err).Error("Failed to scan items")
			return nil, fmt.Errorf("scan items: %w", err)
		}

		for _, raw := range out.Items {
			var it Item
			if err := attributevalue.UnmarshalMap(raw, &it); err != nil {
				return nil, fmt.Errorf("unmarshal item: %w", err)
			}
			items = append(items, it.normalize())
		}

		if len(out.LastEvaluatedKey) == 0 {
			break
		}
		startKey = out.LastEvaluatedKey
	}

	sort.SliceStable(items, func(i, j int) bool {
		if items[i].CreatedAt.Equal(items[j].CreatedAt) {
			return items[i].ID < items[j].ID
		}
		return items[i].CreatedAt.Before(items[j].CreatedAt)
	})

	return items, nil
}

func (r *DynamoRepository) GetByID(ctx context.Context, id string) (*Item, error) {
	out, err := r.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName:      aws.String(r.tableName),
		Key:            idKey(id),
		ConsistentRead: aws.Bool(true),
	})
	if err != nil {
		logrus.WithError(err).WithField("item_id", id).Error("Failed to get item")
		return nil, fmt.Errorf("get item: %w", err)
	}

	if len(out.Item) == 0 {
		return nil, apperror.ErrNotFound
	}

	var it Item
	if err := attributevalue.UnmarshalMap(out.Item, &it); err != nil {
		return nil, fmt.Errorf("unmarshal item: %w", err)
	}
	return it.normalize(), nil
}

func (r *DynamoRepository) Update(ctx context.Context, id string, patch Patch, updatedAt time.Time) (*Item, error) {
	updated, err := timeValue(updatedAt)
	if err != nil {
		return nil, fmt.Errorf("marshal updated_at: %w", err)
	}

	sets := []string{"updated_at = :updated_at"}
	names := map[string]string{}
	values := map[string]types.AttributeValue{":updated_at": updated}

	// name is a DynamoDB reserved word, so every field goes through a
	// placeholder.
	if patch.Name != nil {
		sets = append(sets, "#name = :name")
		names["#name"] = "name"
		values[":name"] = &types.AttributeValueMemberS{Value: *patch.Name}
	}
	if patch.Description != nil {
		sets = append(sets, "#description = :description")
		names["#description"] = "description"
		values[":description"] = &types.AttributeValueMemberS{Value: *patch.Description}
	}
	if patch.Price != nil {
		price, err := attributevalue.Marshal(*patch.Price)
		if err != nil {
			return nil, fmt.Errorf("marshal price: %w", err)
		}
		sets = append(sets, "#price = :price")
		names["#price"] = "price"
		values[":price"] = price
	}

	input := &dynamodb.UpdateItemInput{
		TableName:                 aws.String(r.tableName),
		Key:                       idKey(id),
		UpdateExpression:          aws.String("SET " + strings.Join(sets, ", ")),
		ConditionExpression:       aws.String(itemExists),
		ExpressionAttributeValues: values,
		ReturnValues:              types.ReturnValueAllNew,
	}
	if len(names) > 0 {
		input.ExpressionAttributeNames = names
	}

	return r.update(ctx, "update item", id, input)
}

func (r *DynamoRepository) Delete(ctx context.Context, id string) error {
	_, err := r.client.DeleteItem(ctx, &dynamodb.DeleteItemInput{
		TableName:           aws.String(r.tableName),
		Key:                 idKey(id),
		ConditionExpression: aws.String(itemExists),
	})
	if err != nil {
		if isConditionFailure(err) {
			return apperror.ErrNotFound
		}
		logrus.WithError(err).WithField("item_id", id).Error("Failed to delete item")
		return fmt.Errorf("delete item: %w", err)
	}

	logrus.WithField("item_id", id).Info("Item deleted")
	return nil
}

func (r *DynamoRepository) AppendComment(ctx context.Context, id, comment string, at time.Time) (*Item, error) {
	value := &types.AttributeValueMemberL{Value: []types.AttributeValue{
		&types.AttributeValueMemberS{Value: comment},
	}}
	return r.appendTo(ctx, "comments", id, value, at)
}

func (r *DynamoRepository) AppendRating(ctx context.Context, id string, rating float64, at time.Time) (*Item, error) {
	n, err := attributevalue.Marshal(rating)
	if err != nil {
		return nil, fmt.Errorf("marshal rating: %w", err)
	}
	value := &types.AttributeValueMemberL{Value: []types.AttributeValue{n}}
	return r.appendTo(ctx, "ratings", id, value, at)
}

// appendTo adds value to the end of a list attribute with list_append so
// concurrent appends never overwrite each other.
func (r *DynamoRepository) appendTo(ctx context.Context, attr, id string, value types.AttributeValue, at time.Time) (*Item, error) {
	updated, err := timeValue(at)
	if err != nil {
		return nil, fmt.Errorf("marshal updated_at: %w", err)
	}

	input := &dynamodb.UpdateItemInput{
		TableName:        aws.String(r.tableName),
		Key:              idKey(id),
		UpdateExpression: aws.String(fmt.Sprintf("SET %[1]s = list_append(if_not_exists(%[1]s, :empty), :value), updated_at = :updated_at", attr)),
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":empty":      &types.AttributeValueMemberL{Value: []types.AttributeValue{}},
			":value":      value,
			":updated_at": updated,
		},
		ConditionExpression: aws.String(itemExists),
		ReturnValues:        types.ReturnValueAllNew,
	}

	return r.update(ctx, "append "+attr, id, input)
}

func (r *DynamoRepository) update(ctx context.Context, op, id string, input *dynamodb.UpdateItemInput) (*Item, error) {
	out, err := r.client.UpdateItem(ctx, input)
	if err != nil {
		if isConditionFailure(err) {
			return nil, apperror.ErrNotFound
		}
		logrus.WithError(err).WithFields(logrus.Fields{
			"item_id": id,
			"op":      op,
		}).Error("Item update failed")
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	var it Item
	if err := attributevalue.UnmarshalMap(out.Attributes, &it); err != nil {
		return nil, fmt.Errorf("unmarshal item: %w", err)
	}
	return it.normalize(), nil
}

func (r *DynamoRepository) Count(ctx context.Context) (int64, error) {
	var (
		total    int64
		startKey map[string]types.AttributeValue
	)
	for {
		out, err := r.client.Scan(ctx, &dynamodb.ScanInput{
			TableName:         aws.String(r.tableName),
			Select:            types.SelectCount,
			ExclusiveStartKey: startKey,
		})
		if err != nil {
			logrus.WithError(err).Error("Failed to count items")
			return 0, fmt.Errorf("count items: %w", err)
		}

		total += int64(out.Count)
		if len(out.LastEvaluatedKey) == 0 {
			return total, nil
		}
		startKey = out.LastEvaluatedKey
	}
}
