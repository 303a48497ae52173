package db

import (
	"context"
	"log"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq" // The database driver
)

// DB is the global database connection.
var DB *sqlx.DB

// InitDB initializes the database connection.
func InitDB(dbURL string) {
	var err error
	if dbURL == "" {
		log.Fatal("DATABASE_URL is not set")
	}

	DB, err = sqlx.Connect("postgres", dbURL)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}

	if err = DB.Ping(); err != nil {
		log.Fatalf("Failed to ping database: %v", err)
	}

	log.Println("Database connection established")
}

const schema = `
	CREATE TABLE IF NOT EXISTS storage (
		key   TEXT PRIMARY KEY,
		value JSONB NOT NULL
	);
	INSERT INTO storage (key, value) VALUES
		('subscriptions', '{}'::jsonb),
		('groups', '["Ungrouped"]'::jsonb)
	ON CONFLICT (key) DO NOTHING;
`

// Migrate creates the storage table and seeds both keys so that they can be
// locked by Store.Update from the first write on.
func Migrate(ctx context.Context) error {
	_, err := DB.ExecContext(ctx, schema)
	if err != nil {
		log.Printf("Error migrating database: %v", err)
	}
	return err
}
