// Command locations sets the login password of a store location.
//
//	go run ./cmd/locations -location "Pit Stop" -password boxenstopp
//	go run ./cmd/locations -list
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"time"

	"gutschein/internal/auth"
	"gutschein/internal/config"
	"gutschein/internal/db"
	"gutschein/internal/store"
	"gutschein/internal/validator"

	"github.com/jmoiron/sqlx"
)

func main() {
	location := flag.String("location", "", "location name, e.g. Braugasse")
	password := flag.String("password", "", "new login password")
	list := flag.Bool("list", false, "list locations that have a password")
	flag.Parse()

	cfg := config.Load()
	database, err := db.Connect(cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("failed to connect database: %v", err)
	}
	defer database.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	locations := store.NewLocationStore(database)

	if *list {
		rows, err := locations.List(ctx)
		if err != nil {
			log.Fatalf("failed to list locations: %v", err)
		}
		for _, row := range rows {
			fmt.Printf("%-10s updated %s\n", row.Name, row.UpdatedAt.Format(time.RFC3339))
		}
		return
	}

	name, hash, err := prepare(*location, *password)
	if err != nil {
		log.Fatalf("%v", err)
	}
	if err := db.NewTxRunner(database).WithTx(ctx, func(tx *sqlx.Tx) error {
		return locations.SetPassword(ctx, tx, name, hash)
	}); err != nil {
		log.Fatalf("failed to set password: %v", err)
	}
	fmt.Printf("password set for %s\n", name)
}

// prepare validates the input and returns the canonical location name with
// the password hash.
func prepare(location, password string) (string, string, error) {
	name, err := validator.ValidateLocation(location)
	if err != nil {
		return "", "", fmt.Errorf("%w: %q", err, location)
	}
	if err := validator.ValidatePassword(password); err != nil {
		return "", "", err
	}
	hash, err := auth.HashPassword(password)
	if err != nil {
		return "", "", fmt.Errorf("failed to hash password: %w", err)
	}
	return string(name), hash, nil
}
