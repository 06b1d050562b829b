package main

import (
	"context"
	"log"

	awslambda "github.com/aws/aws-lambda-go/lambda"
	"github.com/joho/godotenv"

	"github.com/KirkDiggler/aionia-sheet/internal/app"
	"github.com/KirkDiggler/aionia-sheet/internal/config"
	"github.com/KirkDiggler/aionia-sheet/internal/handlers/lambda"
)

func main() {
	// Netlify injects variables; .env only matters for local runs
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	a, err := app.New(context.Background(), cfg)
	if err != nil {
		log.Fatalf("Failed to start: %v", err)
	}

	awslambda.Start(lambda.NewAdapter(a.Routes()).Handle)
}
