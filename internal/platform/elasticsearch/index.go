// File: internal/platform/elasticsearch/index.go
package elasticsearch

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/elastic/go-elasticsearch/v8/esapi"
	"go.uber.org/zap"
)

const VehiclesIndexName = "vehicles"

// defineVehiclesMapping returns the JSON string for the vehicles index mapping.
func defineVehiclesMapping() (string, error) {
	mapping := map[string]interface{}{
		"mappings": map[string]interface{}{
			"properties": map[string]interface{}{
				"name":          map[string]interface{}{"type": "text", "fields": map[string]interface{}{"keyword": map[string]interface{}{"type": "keyword", "ignore_above": 256}}},
				"slug":          map[string]interface{}{"type": "keyword"},
				"description":   map[string]interface{}{"type": "text"},
				"brand":         map[string]interface{}{"type": "keyword"},
				"location":      map[string]interface{}{"type": "keyword"},
				"status":        map[string]interface{}{"type": "keyword"},
				"seats":         map[string]interface{}{"type": "integer"},
				"transmission":  map[string]interface{}{"type": "keyword"},
				"fuel_type":     map[string]interface{}{"type": "keyword"},
				"price_per_day": map[string]interface{}{"type": "long"},
				"image_url":     map[string]interface{}{"type": "keyword", "index": false},
				"created_at":    map[string]interface{}{"type": "date"},
				"updated_at":    map[string]interface{}{"type": "date"},
			},
		},
	}
	mappingBytes, err := json.Marshal(mapping)
	if err != nil {
		return "", fmt.Errorf("error marshalling vehicles mapping to JSON: %w", err)
	}
	return string(mappingBytes), nil
}

// CreateVehiclesIndexIfNotExists creates the vehicles index with the defined
// mapping if it does not already exist.
func CreateVehiclesIndexIfNotExists(client *ESClientWrapper, logger *zap.Logger) error {
	ctx := context.Background()
	log := logger.Named("elasticsearch_index_setup")

	req := esapi.IndicesExistsRequest{
		Index: []string{VehiclesIndexName},
	}
	res, err := req.Do(ctx, client.Client)
	if err != nil {
		log.Error("Error checking if vehicles index exists", zap.Error(err))
		return fmt.Errorf("error checking if vehicles index exists: %w", err)
	}
	defer res.Body.Close()

	if res.StatusCode == http.StatusOK {
		log.Info("Vehicles index already exists", zap.String("index_name", VehiclesIndexName))
		return nil
	}
	if res.StatusCode != http.StatusNotFound {
		log.Error("Error checking if vehicles index exists, unexpected status",
			zap.String("status", res.Status()),
			zap.String("index_name", VehiclesIndexName),
		)
		return fmt.Errorf("error checking if vehicles index exists: status %s", res.Status())
	}

	mappingJSON, err := defineVehiclesMapping()
	if err != nil {
		log.Error("Failed to define vehicles mapping", zap.Error(err))
		return err
	}

	createReq := esapi.IndicesCreateRequest{
		Index: VehiclesIndexName,
		Body:  strings.NewReader(mappingJSON),
	}
	createRes, err := createReq.Do(ctx, client.Client)
	if err != nil {
		log.Error("Error creating vehicles index", zap.Error(err), zap.String("index_name", VehiclesIndexName))
		return fmt.Errorf("error creating vehicles index %s: %w", VehiclesIndexName, err)
	}
	defer createRes.Body.Close()

	if createRes.IsError() {
		var errorBody map[string]interface{}
		if err := json.NewDecoder(createRes.Body).Decode(&errorBody); err != nil {
			log.Error("Failed to parse vehicles index creation error response body", zap.Error(err), zap.String("status", createRes.Status()))
		} else {
			log.Error("Failed to create vehicles index",
				zap.String("status", createRes.Status()),
				zap.Any("error_details", errorBody),
				zap.String("index_name", VehiclesIndexName),
			)
		}
		return fmt.Errorf("failed to create vehicles index %s: status %s", VehiclesIndexName, createRes.Status())
	}

	log.Info("Vehicles index created successfully", zap.String("index_name", VehiclesIndexName))
	return nil
}
