// Command apikey registers an API key principal so callers can authenticate
// against the verification endpoints.
package main

import (
	// Go Internal Packages
	"context"
	"fmt"
	"log"
	"time"

	// Local Packages
	models "receipt-verifier/models"
	mongodb "receipt-verifier/repositories/mongodb"

	// External Packages
	"github.com/alecthomas/kingpin/v2"
	"github.com/google/uuid"
)

func main() {
	mongoURI := kingpin.Flag("mongo-uri", "MongoDB connection URI").Default("mongodb://localhost:27017").String()
	database := kingpin.Flag("database", "Database name").Default("receipts").String()
	name := kingpin.Flag("name", "Principal name attached to verified records").Required().String()
	key := kingpin.Flag("key", "API key value; generated when omitted").String()
	kingpin.Parse()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	client, err := mongodb.Connect(ctx, *mongoURI)
	if err != nil {
		log.Fatalf("cannot create mongo client: %v", err)
	}
	defer func() {
		_ = client.Disconnect(ctx)
	}()

	apiKey := *key
	if apiKey == "" {
		apiKey = uuid.NewString()
	}

	principal := &models.ApiKeyPrincipal{ID: uuid.NewString(), Name: *name}
	repo := mongodb.NewApiKeysRepository(client, *database)
	if err := repo.Insert(ctx, principal, apiKey); err != nil {
		log.Fatalf("cannot register api key: %v", err)
	}

	fmt.Printf("registered %s\nid: %s\nkey: %s\n", principal.Name, principal.ID, apiKey)
}
