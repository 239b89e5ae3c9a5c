package vehicle

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	goelasticsearch "github.com/elastic/go-elasticsearch/v8"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"rent_a_ride_backend/internal/common"
	"rent_a_ride_backend/internal/platform/elasticsearch"
)

func indexedVehicle() *Vehicle {
	imageURL := "https://cdn.example.com/vehicles/swift.jpg"
	v := &Vehicle{
		Name:         "Maruti Swift VXI",
		Slug:         "maruti-swift-vxi",
		Description:  "Compact hatchback, great mileage.",
		Brand:        "Maruti",
		Location:     "kochi",
		Seats:        5,
		Transmission: "manual",
		FuelType:     "petrol",
		PricePerDay:  150000,
		ImageURL:     &imageURL,
		Status:       StatusAvailable,
	}
	v.ID = uuid.New()
	v.CreatedAt = time.Date(2025, 5, 1, 10, 0, 0, 0, time.UTC)
	v.UpdatedAt = v.CreatedAt
	return v
}

func TestVehicleToElasticsearchDoc(t *testing.T) {
	v := indexedVehicle()

	docJSON, err := VehicleToElasticsearchDoc(v)
	require.NoError(t, err)

	var doc map[string]interface{}
	require.NoError(t, json.Unmarshal([]byte(docJSON), &doc))
	assert.Equal(t, v.Name, doc["name"])
	assert.Equal(t, v.Slug, doc["slug"])
	assert.Equal(t, string(v.Status), doc["status"])
	assert.Equal(t, *v.ImageURL, doc["image_url"])

	_, err = VehicleToElasticsearchDoc(nil)
	assert.Error(t, err)
}

// newStubESClient serves a canned search response the way Elasticsearch
// would, so hit parsing is exercised against real client plumbing.
func newStubESClient(t *testing.T, responseBody string) (*elasticsearch.ESClientWrapper, func()) {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Elastic-Product", "Elasticsearch")
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, responseBody)
	}))

	client, err := goelasticsearch.NewClient(goelasticsearch.Config{Addresses: []string{srv.URL}})
	require.NoError(t, err)
	return &elasticsearch.ESClientWrapper{Client: client}, srv.Close
}

func TestSearchVehiclesESRoundTrip(t *testing.T) {
	v := indexedVehicle()
	docJSON, err := VehicleToElasticsearchDoc(v)
	require.NoError(t, err)

	responseBody := fmt.Sprintf(
		`{"hits":{"total":{"value":1},"hits":[{"_id":%q,"_source":%s}]}}`,
		v.ID.String(), docJSON)
	client, closeServer := newStubESClient(t, responseBody)
	defer closeServer()

	vehicles, pagination, err := searchVehiclesES(context.Background(), client, VehicleSearchQuery{
		SearchTerm: "swift",
		Page:       1,
		PageSize:   common.DefaultPageSize,
	})
	require.NoError(t, err)
	require.Len(t, vehicles, 1)

	got := vehicles[0]
	assert.Equal(t, v.ID, got.ID)
	assert.Equal(t, v.Name, got.Name)
	assert.Equal(t, v.Slug, got.Slug)
	assert.Equal(t, v.PricePerDay, got.PricePerDay)
	assert.Equal(t, v.Status, got.Status)
	require.NotNil(t, got.ImageURL)
	assert.Equal(t, *v.ImageURL, *got.ImageURL)

	require.NotNil(t, pagination)
	assert.Equal(t, int64(1), pagination.TotalItems)
}

func TestSearchVehiclesESSkipsUnparsableIDs(t *testing.T) {
	v := indexedVehicle()
	docJSON, err := VehicleToElasticsearchDoc(v)
	require.NoError(t, err)

	responseBody := fmt.Sprintf(
		`{"hits":{"total":{"value":2},"hits":[{"_id":"not-a-uuid","_source":%s},{"_id":%q,"_source":%s}]}}`,
		docJSON, v.ID.String(), docJSON)
	client, closeServer := newStubESClient(t, responseBody)
	defer closeServer()

	vehicles, _, err := searchVehiclesES(context.Background(), client, VehicleSearchQuery{})
	require.NoError(t, err)
	require.Len(t, vehicles, 1)
	assert.Equal(t, v.ID, vehicles[0].ID)
}
