// File: internal/vehicle/search.go
package vehicle

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"time"

	"rent_a_ride_backend/internal/common"
	"rent_a_ride_backend/internal/platform/elasticsearch"

	"github.com/google/uuid"
)

type esHit struct {
	ID     string `json:"_id"`
	Source struct {
		Name         string        `json:"name"`
		Slug         string        `json:"slug"`
		Description  string        `json:"description"`
		Brand        string        `json:"brand"`
		Location     string        `json:"location"`
		Seats        int           `json:"seats"`
		Transmission string        `json:"transmission"`
		FuelType     string        `json:"fuel_type"`
		PricePerDay  int64         `json:"price_per_day"`
		ImageURL     *string       `json:"image_url"`
		Status       VehicleStatus `json:"status"`
		CreatedAt    time.Time     `json:"created_at"`
		UpdatedAt    time.Time     `json:"updated_at"`
	} `json:"_source"`
}

type esSearchResponse struct {
	Hits struct {
		Total struct {
			Value int64 `json:"value"`
		} `json:"total"`
		Hits []esHit `json:"hits"`
	} `json:"hits"`
}

// buildESQuery translates a VehicleSearchQuery into an Elasticsearch bool query.
func buildESQuery(query VehicleSearchQuery, from, size int) map[string]interface{} {
	must := make([]map[string]interface{}, 0, 2)
	filter := make([]map[string]interface{}, 0, 4)

	if query.SearchTerm != "" {
		must = append(must, map[string]interface{}{
			"multi_match": map[string]interface{}{
				"query":  query.SearchTerm,
				"fields": []string{"name^3", "brand^2", "description"},
				"type":   "best_fields",
			},
		})
	}
	if query.Location != "" {
		filter = append(filter, map[string]interface{}{
			"term": map[string]interface{}{"location": query.Location},
		})
	}
	if query.Status != "" {
		filter = append(filter, map[string]interface{}{
			"term": map[string]interface{}{"status": string(query.Status)},
		})
	}
	priceRange := map[string]interface{}{}
	if query.MinPrice != nil {
		priceRange["gte"] = *query.MinPrice
	}
	if query.MaxPrice != nil {
		priceRange["lte"] = *query.MaxPrice
	}
	if len(priceRange) > 0 {
		filter = append(filter, map[string]interface{}{
			"range": map[string]interface{}{"price_per_day": priceRange},
		})
	}

	boolQuery := map[string]interface{}{}
	if len(must) > 0 {
		boolQuery["must"] = must
	}
	if len(filter) > 0 {
		boolQuery["filter"] = filter
	}
	if len(boolQuery) == 0 {
		boolQuery["must"] = []map[string]interface{}{{"match_all": map[string]interface{}{}}}
	}

	body := map[string]interface{}{
		"query": map[string]interface{}{"bool": boolQuery},
		"from":  from,
		"size":  size,
	}
	// Relevance ordering only applies when there is a search term.
	if query.SearchTerm == "" {
		body["sort"] = []map[string]interface{}{
			{"created_at": map[string]interface{}{"order": "desc"}},
		}
	}
	return body
}

// searchVehiclesES executes the catalog search against Elasticsearch.
func searchVehiclesES(ctx context.Context, client *elasticsearch.ESClientWrapper, query VehicleSearchQuery) ([]Vehicle, *common.Pagination, error) {
	page := query.Page
	if page < 1 {
		page = common.DefaultPage
	}
	pageSize := query.PageSize
	if pageSize < 1 {
		pageSize = common.DefaultPageSize
	}
	from := (page - 1) * pageSize

	body := buildESQuery(query, from, pageSize)
	var buf bytes.Buffer
	if err := json.NewEncoder(&buf).Encode(body); err != nil {
		return nil, nil, fmt.Errorf("error encoding vehicles search query: %w", err)
	}

	res, err := client.Search(
		client.Search.WithContext(ctx),
		client.Search.WithIndex(elasticsearch.VehiclesIndexName),
		client.Search.WithBody(&buf),
		client.Search.WithTrackTotalHits(true),
	)
	if err != nil {
		return nil, nil, fmt.Errorf("vehicles search request failed: %w", err)
	}
	defer res.Body.Close()
	if res.IsError() {
		return nil, nil, fmt.Errorf("vehicles search returned an error: %s", res.String())
	}

	var parsed esSearchResponse
	if err := json.NewDecoder(res.Body).Decode(&parsed); err != nil {
		return nil, nil, fmt.Errorf("error decoding vehicles search response: %w", err)
	}

	vehicles := make([]Vehicle, 0, len(parsed.Hits.Hits))
	for _, hit := range parsed.Hits.Hits {
		id, err := uuid.Parse(hit.ID)
		if err != nil {
			continue
		}
		v := Vehicle{
			Name:         hit.Source.Name,
			Slug:         hit.Source.Slug,
			Description:  hit.Source.Description,
			Brand:        hit.Source.Brand,
			Location:     hit.Source.Location,
			Seats:        hit.Source.Seats,
			Transmission: hit.Source.Transmission,
			FuelType:     hit.Source.FuelType,
			PricePerDay:  hit.Source.PricePerDay,
			ImageURL:     hit.Source.ImageURL,
			Status:       hit.Source.Status,
		}
		v.ID = id
		v.CreatedAt = hit.Source.CreatedAt
		v.UpdatedAt = hit.Source.UpdatedAt
		vehicles = append(vehicles, v)
	}

	pagination := common.NewPagination(parsed.Hits.Total.Value, page, pageSize)
	return vehicles, pagination, nil
}
