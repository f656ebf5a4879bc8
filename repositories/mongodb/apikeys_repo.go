package mongodb

import (
	// Go Internal Packages
	"context"

	// Local Packages
	models "receipt-verifier/models"

	// External Packages
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

type ApiKeysRepository struct {
	client     *mongo.Client
	database   string
	collection string
}

func NewApiKeysRepository(client *mongo.Client, database string) *ApiKeysRepository {
	return &ApiKeysRepository{client: client, database: database, collection: "api_keys"}
}

func (r *ApiKeysRepository) coll() *mongo.Collection {
	return r.client.Database(r.database).Collection(r.collection)
}

// FindActive resolves an API key to its principal. An unknown or inactive
// key returns nil without error; the caller decides that is unauthenticated.
func (r *ApiKeysRepository) FindActive(ctx context.Context, key string) (*models.ApiKeyPrincipal, error) {
	filter := bson.M{"key": key, "active": true}

	var principal models.ApiKeyPrincipal
	err := r.coll().FindOne(ctx, filter).Decode(&principal)
	if err == mongo.ErrNoDocuments {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &principal, nil
}

// Insert registers a new API key principal.
func (r *ApiKeysRepository) Insert(ctx context.Context, principal *models.ApiKeyPrincipal, key string) error {
	doc := bson.M{"_id": principal.ID, "name": principal.Name, "key": key, "active": true}
	_, err := r.coll().InsertOne(ctx, doc)
	return err
}
