// delete_tables is a one-off script that drops the retrieval_rows table
// from the main database.
package main

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/connexus-ai/retrieval-middleware/internal/config"
	"github.com/connexus-ai/retrieval-middleware/internal/schema"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("delete_tables: %v", err)
	}

	fmt.Println("WARNING: THIS WILL DELETE **ALL** TABLES IN THE MAIN DB IN 5 SECONDS, PLEASE DOUBLE CHECK!!")
	time.Sleep(5 * time.Second)
	fmt.Println("Dropping all tables now...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	pool, err := pgxpool.New(ctx, cfg.DatabaseURL())
	if err != nil {
		log.Fatalf("delete_tables: connect: %v", err)
	}
	defer pool.Close()

	if err := schema.Drop(ctx, pool); err != nil {
		log.Fatalf("delete_tables: %v", err)
	}

	fmt.Println("Dropped retrieval_rows")
}
