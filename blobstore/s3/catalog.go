package s3

import (
	"context"
	"errors"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"

	"github.com/parcon/parcon/blobstore"
)

// ErrConcurrentCommit is returned when two writers race to commit the
// same catalog version.
var ErrConcurrentCommit = errors.New("concurrent catalog commit detected")

// DDBClient is the interface for the DynamoDB operations Catalog uses.
type DDBClient interface {
	PutItem(ctx context.Context, params *dynamodb.PutItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error)
	Query(ctx context.Context, params *dynamodb.QueryInput, optFns ...func(*dynamodb.Options)) (*dynamodb.QueryOutput, error)
}

// Catalog tracks the latest committed snapshot of a container namespace
// in DynamoDB. S3 has no compare-and-swap, so the pointer to the current
// snapshot lives in a DynamoDB table and advances through conditional
// writes: concurrent writers can both upload blobs, but only one wins
// each version, and readers always see a complete snapshot.
//
// Table schema:
//   - Partition key: namespace (string)
//   - Sort key: version (number), monotonically increasing
//
// Create the table with:
//
//	aws dynamodb create-table \
//	  --table-name parcon-snapshots \
//	  --attribute-definitions AttributeName=namespace,AttributeType=S AttributeName=version,AttributeType=N \
//	  --key-schema AttributeName=namespace,KeyType=HASH AttributeName=version,KeyType=RANGE \
//	  --billing-mode PAY_PER_REQUEST
type Catalog struct {
	client    DDBClient
	tableName string
	namespace string
}

// NewCatalog creates a catalog over the given DynamoDB table. namespace
// isolates independent containers sharing one table (e.g. "s3://bucket/prefix").
func NewCatalog(client DDBClient, tableName, namespace string) *Catalog {
	return &Catalog{
		client:    client,
		tableName: tableName,
		namespace: namespace,
	}
}

// Latest returns the most recently committed snapshot name. Returns
// blobstore.ErrNotFound when nothing has been committed yet.
func (c *Catalog) Latest(ctx context.Context) (string, error) {
	_, name, err := c.latest(ctx)
	if err != nil {
		return "", err
	}
	if name == "" {
		return "", blobstore.ErrNotFound
	}
	return name, nil
}

// Commit records name as the next snapshot version. Exactly one of a
// set of racing committers wins any given version; the losers get
// ErrConcurrentCommit and should re-read Latest before retrying.
func (c *Catalog) Commit(ctx context.Context, name string) error {
	version, _, err := c.latest(ctx)
	if err != nil {
		return err
	}

	_, err = c.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(c.tableName),
		Item: map[string]types.AttributeValue{
			"namespace": &types.AttributeValueMemberS{Value: c.namespace},
			"version":   &types.AttributeValueMemberN{Value: fmt.Sprintf("%d", version+1)},
			"snapshot":  &types.AttributeValueMemberS{Value: name},
		},
		ConditionExpression: aws.String("attribute_not_exists(version)"),
	})
	if err != nil {
		var condErr *types.ConditionalCheckFailedException
		if errors.As(err, &condErr) {
			return ErrConcurrentCommit
		}
		return fmt.Errorf("commit snapshot version: %w", err)
	}

	return nil
}

// latest queries for the highest committed version. Version 0 with an
// empty name means the namespace has no commits.
func (c *Catalog) latest(ctx context.Context) (uint64, string, error) {
	resp, err := c.client.Query(ctx, &dynamodb.QueryInput{
		TableName:              aws.String(c.tableName),
		KeyConditionExpression: aws.String("namespace = :ns"),
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":ns": &types.AttributeValueMemberS{Value: c.namespace},
		},
		ScanIndexForward: aws.Bool(false),
		Limit:            aws.Int32(1),
	})
	if err != nil {
		return 0, "", fmt.Errorf("query snapshot catalog: %w", err)
	}

	if len(resp.Items) == 0 {
		return 0, "", nil
	}

	item := resp.Items[0]
	versionAttr, ok := item["version"].(*types.AttributeValueMemberN)
	if !ok {
		return 0, "", errors.New("invalid version attribute in catalog")
	}
	nameAttr, ok := item["snapshot"].(*types.AttributeValueMemberS)
	if !ok {
		return 0, "", errors.New("invalid snapshot attribute in catalog")
	}

	var version uint64
	if _, err := fmt.Sscanf(versionAttr.Value, "%d", &version); err != nil {
		return 0, "", fmt.Errorf("parse catalog version: %w", err)
	}

	return version, nameAttr.Value, nil
}
