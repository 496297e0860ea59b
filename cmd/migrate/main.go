package main

import (
	"database/sql"
	"flag"
	"log"
	"os"
	"path/filepath"
	"sort"

	_ "github.com/lib/pq"
)

func main() {
	dir := flag.String("dir", "migrations", "Directory holding the SQL migration files")
	flag.Parse()

	dsn := os.Getenv("DATABASE_URL")
	if dsn == "" {
		log.Fatal("DATABASE_URL environment variable is not set")
	}

	db, err := sql.Open("postgres", dsn)
	if err != nil {
		log.Fatalf("failed to connect to database: %v", err)
	}
	defer db.Close()

	files, err := os.ReadDir(*dir)
	if err != nil {
		log.Fatalf("failed to read migrations directory: %v", err)
	}

	var migrationFiles []string
	for _, file := range files {
		if filepath.Ext(file.Name()) == ".sql" {
			migrationFiles = append(migrationFiles, file.Name())
		}
	}
	// Apply in lexical order.
	sort.Strings(migrationFiles)

	if _, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS schema_migrations (
			id SERIAL PRIMARY KEY,
			name VARCHAR(255) NOT NULL UNIQUE,
			applied_at TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT CURRENT_TIMESTAMP
		)
	`); err != nil {
		log.Fatalf("failed to create schema_migrations table: %v", err)
	}

	for _, name := range migrationFiles {
		var applied int
		if err := db.QueryRow(`SELECT COUNT(*) FROM schema_migrations WHERE name = $1`, name).Scan(&applied); err != nil {
			log.Fatalf("failed to check migration %s: %v", name, err)
		}
		if applied > 0 {
			continue
		}

		content, err := os.ReadFile(filepath.Join(*dir, name))
		if err != nil {
			log.Fatalf("failed to read migration %s: %v", name, err)
		}

		tx, err := db.Begin()
		if err != nil {
			log.Fatalf("failed to begin transaction for %s: %v", name, err)
		}
		if _, err := tx.Exec(string(content)); err != nil {
			_ = tx.Rollback()
			log.Fatalf("failed to apply migration %s: %v", name, err)
		}
		if _, err := tx.Exec(`INSERT INTO schema_migrations (name) VALUES ($1)`, name); err != nil {
			_ = tx.Rollback()
			log.Fatalf("failed to record migration %s: %v", name, err)
		}
		if err := tx.Commit(); err != nil {
			log.Fatalf("failed to commit migration %s: %v", name, err)
		}

		log.Printf("Applied migration %s", name)
	}

	log.Println("Migrations complete")
}
