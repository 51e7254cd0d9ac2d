package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"strconv"

	webAdapter "procurement-engine/internal/adapters/web"
	"procurement-engine/internal/app"
	"procurement-engine/internal/core"
	"procurement-engine/internal/db"
	"procurement-engine/internal/repo/postgres"

	"github.com/joho/godotenv"
)

func main() {
	_ = godotenv.Load()

	ctx := context.Background()
	pool, err := db.NewPool(ctx)
	if err != nil {
		log.Fatalf("database: %v", err)
	}
	defer pool.Close()

	stock := postgres.NewStockRepository(pool)
	offers := postgres.NewSupplierOfferRepository(pool)
	ratings := postgres.NewDeliveryRatingRepository(pool)
	predictions := postgres.NewDemandPredictionRepository(pool)
	sales := postgres.NewSalesHistoryRepository(pool)
	requests := postgres.NewPurchaseRequestRepository(pool)

	workers := 0
	if raw := os.Getenv("SCORING_WORKERS"); raw != "" {
		workers, err = strconv.Atoi(raw)
		if err != nil {
			log.Fatalf("SCORING_WORKERS must be an integer: %v", err)
		}
	}

	recommendations := core.NewRecommendationService(stock, offers, ratings, predictions, workers)
	workflow := core.NewPurchaseRequestService(requests, stock, offers, ratings, predictions)
	reorder := core.NewReorderPointCalculator(stock, offers, sales)

	svc := app.NewAppService(recommendations, workflow, reorder)

	port := os.Getenv("SERVER_PORT")
	if port == "" {
		port = "8080"
	}

	allowedOrigins := os.Getenv("ALLOWED_ORIGINS")
	handler := webAdapter.NewHandler(svc, allowedOrigins)

	log.Printf("server starting on :%s", port)
	if err := http.ListenAndServe(":"+port, handler); err != nil {
		log.Fatalf("server: %v", err)
	}
}
