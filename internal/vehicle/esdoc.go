// File: internal/vehicle/esdoc.go
package vehicle

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"rent_a_ride_backend/internal/platform/elasticsearch"

	"github.com/elastic/go-elasticsearch/v8/esapi"
)

// VehicleToElasticsearchDoc converts a Vehicle to its Elasticsearch document
// representation. The document id is the vehicle's UUID.
func VehicleToElasticsearchDoc(v *Vehicle) (string, error) {
	if v == nil {
		return "", errors.New("vehicle cannot be nil")
	}

	doc := map[string]interface{}{
		"name":          v.Name,
		"slug":          v.Slug,
		"description":   v.Description,
		"brand":         v.Brand,
		"location":      v.Location,
		"seats":         v.Seats,
		"transmission":  v.Transmission,
		"fuel_type":     v.FuelType,
		"price_per_day": v.PricePerDay,
		"image_url":     v.ImageURL,
		"status":        string(v.Status),
		"created_at":    v.CreatedAt,
		"updated_at":    v.UpdatedAt,
	}

	docBytes, err := json.Marshal(doc)
	if err != nil {
		return "", fmt.Errorf("error marshalling vehicle to JSON for ES: %w", err)
	}
	return string(docBytes), nil
}

// IndexVehicleDoc indexes (or re-indexes) a single vehicle document.
func IndexVehicleDoc(ctx context.Context, client *elasticsearch.ESClientWrapper, v *Vehicle) error {
	docJSON, err := VehicleToElasticsearchDoc(v)
	if err != nil {
		return err
	}

	req := esapi.IndexRequest{
		Index:      elasticsearch.VehiclesIndexName,
		DocumentID: v.ID.String(),
		Body:       strings.NewReader(docJSON),
	}
	res, err := req.Do(ctx, client.Client)
	if err != nil {
		return fmt.Errorf("error indexing vehicle %s: %w", v.ID, err)
	}
	defer res.Body.Close()
	if res.IsError() {
		return fmt.Errorf("error indexing vehicle %s: %s", v.ID, res.String())
	}
	return nil
}

// DeleteVehicleDoc removes a vehicle document from the index. A missing
// document is not treated as an error.
func DeleteVehicleDoc(ctx context.Context, client *elasticsearch.ESClientWrapper, vehicleID string) error {
	req := esapi.DeleteRequest{
		Index:      elasticsearch.VehiclesIndexName,
		DocumentID: vehicleID,
	}
	res, err := req.Do(ctx, client.Client)
	if err != nil {
		return fmt.Errorf("error deleting vehicle document %s: %w", vehicleID, err)
	}
	defer res.Body.Close()
	if res.IsError() && res.StatusCode != 404 {
		return fmt.Errorf("error deleting vehicle document %s: %s", vehicleID, res.String())
	}
	return nil
}
