package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/EyadAmgad/EduMentorAI/internal/config"
	"github.com/EyadAmgad/EduMentorAI/internal/crypto"
	"github.com/EyadAmgad/EduMentorAI/internal/store"
)

// genkey mints an API key. Without -name it only prints the key and the
// hash to store; with -name it also creates the user in the configured
// database.
func main() {
	name := flag.String("name", "", "Create a user with this name")
	email := flag.String("email", "", "Email for the created user")
	flag.Parse()

	key, err := crypto.GenerateAPIKey()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to generate key: %v\n", err)
		os.Exit(1)
	}
	hash := crypto.HashAPIKey(key)

	fmt.Printf("API key:  %s\n", key)
	fmt.Printf("Key hash: %s\n", hash)

	if *name == "" {
		fmt.Println("\nNo -name given; no user created.")
		return
	}

	cfg := config.Load()
	ctx := context.Background()

	var db store.DataStore
	if cfg.DatabaseURL != "" {
		db, err = store.NewPostgresStore(ctx, cfg.DatabaseURL)
	} else {
		db, err = store.NewSQLiteStore(ctx, cfg.SQLitePath)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to open database: %v\n", err)
		os.Exit(1)
	}
	defer db.Close()

	user, err := db.CreateUser(ctx, *name, *email, hash)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to create user: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("User ID:  %s\n", user.ID)
}
