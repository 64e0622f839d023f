package db

import (
	"fmt"
	"strconv"

	"github.com/davidorman/scoremend/constants"
	"github.com/davidorman/scoremend/model"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/dynamodb"
)

const tableName = "scoremend-metadata"

// GetScoreMetadatas batch-fetches catalog records for up to 10 score ids.
func GetScoreMetadatas(scoreIDs []string) (map[string]model.ScoreMetadata, error) {
	if len(scoreIDs) > 10 {
		return nil, fmt.Errorf("at most 10 score ids per batch, got %d", len(scoreIDs))
	}

	res := make(map[string]model.ScoreMetadata)
	if len(scoreIDs) == 0 {
		return res, nil
	}

	var keys []map[string]*dynamodb.AttributeValue
	for _, id := range scoreIDs {
		key := make(map[string]*dynamodb.AttributeValue)
		key["PK"] = &dynamodb.AttributeValue{
			S: aws.String(id),
		}
		keys = append(keys, key)
	}

	endpoint := constants.GetMetadataEndpoint()
	sess, err := session.NewSession(&aws.Config{
		Region:   aws.String("localhost"),
		Endpoint: &endpoint,
	})
	if err != nil {
		return nil, fmt.Errorf("could not create a DynamoDB session: %w", err)
	}

	client := dynamodb.New(sess)
	input := &dynamodb.BatchGetItemInput{
		RequestItems: map[string]*dynamodb.KeysAndAttributes{
			tableName: {Keys: keys},
		},
	}
	dbres, err := client.BatchGetItem(input)
	if err != nil {
		return nil, fmt.Errorf("DynamoDB batch get: %w", err)
	}

	for _, v := range dbres.Responses[tableName] {
		var s model.ScoreMetadata
		if v["Year"] != nil && v["Year"].N != nil {
			year, _ := strconv.ParseUint(*v["Year"].N, 10, 32)
			s.Year = uint(year)
		}
		if v["Title"] != nil && v["Title"].S != nil {
			s.Title = *v["Title"].S
		}
		if v["Composer"] != nil && v["Composer"].S != nil {
			s.Composer = *v["Composer"].S
		}
		res[*v["PK"].S] = s
	}

	return res, nil
}
