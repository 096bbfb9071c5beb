// Command migrate applies the SQL migrations: `up` (schema + seed),
// `schema` (schema only), `down` (roll everything back).
package main

import (
	"database/sql"
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/joho/godotenv"
	_ "github.com/lib/pq"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"

	"ms-booking/internal/config"
	"ms-booking/internal/database/migrations"
)

func main() {
	dir := flag.String("dir", "./migrations", "directory containing migration files")
	flag.Parse()

	command := flag.Arg(0)
	if command == "" {
		command = "up"
	}

	if err := godotenv.Load(); err == nil {
		log.Println("Loaded environment variables from .env file")
	}
	cfg := config.Load()

	sqldb, err := sql.Open("postgres", cfg.Database.DSN)
	if err != nil {
		log.Fatalf("Failed to open database: %v", err)
	}
	defer sqldb.Close()
	if err := sqldb.Ping(); err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}

	bunDB := bun.NewDB(sqldb, pgdialect.New())
	runner := migrations.NewRunner(bunDB, migrations.MigrateOptions{
		MigrationsDir: *dir,
		AutoMigrate:   true,
		SeedData:      command == "up",
	})
	defer runner.Close()

	switch command {
	case "up":
		err = runner.MigrateUp()
	case "schema":
		err = runner.RunMigrations()
	case "down":
		err = runner.MigrateDown()
	default:
		fmt.Fprintf(os.Stderr, "unknown command %q (want up, schema or down)\n", command)
		os.Exit(2)
	}
	if err != nil {
		log.Fatalf("Migration failed: %v", err)
	}
	log.Println("Done.")
}
