package main

import (
	"context"
	"fmt"
	"log"
	"os"

	"costing-engine/internal/adapters/cli"
	"costing-engine/internal/ai"
	"costing-engine/internal/app"
	"costing-engine/internal/core"
	"costing-engine/internal/db"

	"github.com/joho/godotenv"
)

func main() {
	_ = godotenv.Load()

	if len(os.Args) < 2 {
		fmt.Fprintln(os.Stderr, "Usage: app <command> [args]")
		fmt.Fprintln(os.Stderr, "Commands: report, cost <product-id>, costs, kpis [months], advise [question]")
		os.Exit(2)
	}

	ctx := context.Background()
	pool, err := db.NewPool(ctx, "")
	if err != nil {
		log.Fatalf("Unable to connect to database: %v", err)
	}
	defer pool.Close()

	var advisor ai.AdvisorService
	if apiKey := os.Getenv("OPENAI_API_KEY"); apiKey != "" {
		advisor = ai.NewAdvisor(apiKey)
	}

	snapshots := core.NewSnapshotService(pool)
	svc := app.NewAppService(pool, snapshots, advisor)
	cli.Run(ctx, svc, os.Args[1:])
}
