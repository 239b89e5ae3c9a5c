// File: cmd/server/main.go
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"rent_a_ride_backend/internal/config"
	"rent_a_ride_backend/internal/platform/database"
	platformElasticsearch "rent_a_ride_backend/internal/platform/elasticsearch"
	"rent_a_ride_backend/internal/platform/logger"
	"rent_a_ride_backend/internal/vehicle"

	"github.com/elastic/go-elasticsearch/v8/esapi"
	"go.uber.org/zap"
)

func main() {
	reindexCmd := flag.NewFlagSet("reindex-vehicles", flag.ExitOnError)
	batchSize := reindexCmd.Int("batch-size", 100, "Batch size for indexing vehicles")
	esRefresh := reindexCmd.String("es-refresh", "false", "Elasticsearch refresh policy (true, false, wait_for)")

	if len(os.Args) > 1 && os.Args[1] == "reindex-vehicles" {
		reindexCmd.Parse(os.Args[2:])

		cfg, err := config.Load()
		if err != nil {
			log.Fatalf("FATAL: Failed to load configuration for reindex: %v", err)
		}
		appLogger, err := logger.New(cfg)
		if err != nil {
			log.Fatalf("FATAL: Failed to initialize logger for reindex: %v", err)
		}
		db, err := database.NewGORM(cfg)
		if err != nil {
			appLogger.Fatal("Failed to initialize database for reindex", zap.Error(err))
		}
		defer database.CloseGORMDB(db)

		esClient, err := platformElasticsearch.NewClient(cfg, appLogger)
		if err != nil {
			appLogger.Fatal("Failed to initialize Elasticsearch client for reindex", zap.Error(err))
		}
		if esClient == nil {
			appLogger.Fatal("Elasticsearch is not configured, ensure ELASTICSEARCH_URL is set.")
		}

		if err := platformElasticsearch.CreateVehiclesIndexIfNotExists(esClient, appLogger); err != nil {
			appLogger.Fatal("Failed to create/verify Elasticsearch index before reindex", zap.Error(err))
		}

		vehicleRepo := vehicle.NewGORMRepository(db)
		if err := runVehicleReindex(vehicleRepo, esClient, appLogger, *batchSize, *esRefresh); err != nil {
			appLogger.Fatal("Vehicle reindex failed", zap.Error(err))
		}
		appLogger.Info("Vehicle reindex completed successfully.")
		return
	}

	startServer()
}

func startServer() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("FATAL: Failed to load configuration: %v", err)
	}

	server, cleanup, err := initializeServer(cfg)
	if err != nil {
		log.Fatalf("FATAL: Failed to initialize server: %v", err)
	}
	defer cleanup()

	if server.ESClient != nil {
		if err := platformElasticsearch.CreateVehiclesIndexIfNotExists(server.ESClient, server.AppLogger); err != nil {
			server.AppLogger.Error("Failed to create Elasticsearch vehicles index", zap.Error(err))
		}
	} else {
		server.AppLogger.Info("Elasticsearch client not initialized, skipping index creation.")
	}

	go func() {
		if err := server.Start(); err != nil {
			log.Fatalf("FATAL: Server failed to start or crashed: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit
	log.Printf("INFO: Received signal '%s'. Shutting down server...", sig)

	shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), cfg.ServerTimeout)
	defer cancelShutdown()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Printf("ERROR: Server forced to shutdown due to error: %v", err)
	} else {
		log.Println("INFO: Server shutdown complete.")
	}
	log.Println("INFO: Application exiting.")
}

// runVehicleReindex pushes the whole vehicle catalog into Elasticsearch in
// batches using the Bulk API.
func runVehicleReindex(
	vehicleRepo vehicle.Repository,
	esClient *platformElasticsearch.ESClientWrapper,
	logger *zap.Logger,
	batchSize int,
	esRefresh string,
) error {
	logger.Info("Starting vehicle reindex to Elasticsearch...",
		zap.Int("batchSize", batchSize),
		zap.String("esRefreshPolicy", esRefresh),
	)

	offset := 0
	totalIndexed := 0
	totalFailed := 0

	for {
		vehicles, err := vehicleRepo.FindBatchForIndexing(context.Background(), offset, batchSize)
		if err != nil {
			return fmt.Errorf("failed to fetch vehicles batch at offset %d: %w", offset, err)
		}
		if len(vehicles) == 0 {
			break
		}

		var bulkBody strings.Builder
		for i := range vehicles {
			v := &vehicles[i]
			docJSON, errDoc := vehicle.VehicleToElasticsearchDoc(v)
			if errDoc != nil {
				logger.Error("Failed to convert vehicle to Elasticsearch document",
					zap.String("vehicleID", v.ID.String()), zap.Error(errDoc))
				totalFailed++
				continue
			}
			fmt.Fprintf(&bulkBody, `{ "index" : { "_index" : "%s", "_id" : "%s" } }%s`,
				platformElasticsearch.VehiclesIndexName, v.ID.String(), "\n")
			bulkBody.WriteString(docJSON)
			bulkBody.WriteString("\n")
		}

		if bulkBody.Len() > 0 {
			indexed, failed, err := sendBulk(esClient, bulkBody.String(), esRefresh, logger)
			if err != nil {
				return err
			}
			totalIndexed += indexed
			totalFailed += failed
		}

		offset += len(vehicles)
	}

	logger.Info("Vehicle reindex finished.",
		zap.Int("totalIndexed", totalIndexed),
		zap.Int("totalFailed", totalFailed),
	)
	if totalFailed > 0 {
		return fmt.Errorf("%d vehicles failed to index", totalFailed)
	}
	return nil
}

func sendBulk(esClient *platformElasticsearch.ESClientWrapper, body, esRefresh string, logger *zap.Logger) (indexed, failed int, err error) {
	req := esapi.BulkRequest{
		Body:    strings.NewReader(body),
		Refresh: esRefresh,
	}
	res, err := req.Do(context.Background(), esClient.Client)
	if err != nil {
		return 0, 0, fmt.Errorf("bulk request failed: %w", err)
	}
	defer res.Body.Close()

	var bulkResponse struct {
		Errors bool `json:"errors"`
		Items  []struct {
			Index struct {
				ID     string                 `json:"_id"`
				Status int                    `json:"status"`
				Error  map[string]interface{} `json:"error,omitempty"`
			} `json:"index"`
		} `json:"items"`
	}
	if err := json.NewDecoder(res.Body).Decode(&bulkResponse); err != nil {
		return 0, 0, fmt.Errorf("failed to parse bulk response: %w", err)
	}

	for _, item := range bulkResponse.Items {
		if item.Index.Error != nil {
			logger.Error("Failed to index vehicle document",
				zap.String("vehicleID", item.Index.ID),
				zap.Int("status", item.Index.Status),
				zap.Any("error", item.Index.Error))
			failed++
		} else {
			indexed++
		}
	}
	return indexed, failed, nil
}
