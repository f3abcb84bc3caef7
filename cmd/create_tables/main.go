// create_tables is a one-off script that creates the pgvector extensions
// and the retrieval_rows table in the main database. Run it once against
// a fresh database before starting the server.
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
		log.Fatalf("create_tables: %v", err)
	}

	fmt.Println("CREATING ALL TABLES FOR MAIN DB IN 3 SEC...")
	fmt.Println("PLEASE ABORT NOW IF YOU'D LIKE TO STOP!!!")
	time.Sleep(3 * time.Second)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	pool, err := pgxpool.New(ctx, cfg.DatabaseURL())
	if err != nil {
		log.Fatalf("create_tables: connect: %v", err)
	}
	defer pool.Close()

	if err := schema.Create(ctx, pool); err != nil {
		log.Fatalf("create_tables: %v", err)
	}

	fmt.Println("Tables created successfully!")
}
