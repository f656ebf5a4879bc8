package mongodb

import (
	// Go Internal Packages
	"context"

	// Local Packages
	errors "receipt-verifier/errors"
	models "receipt-verifier/models"

	// External Packages
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type ReceiptsRepository struct {
	client     *mongo.Client
	database   string
	collection string
}

func NewReceiptsRepository(client *mongo.Client, database string) *ReceiptsRepository {
	return &ReceiptsRepository{client: client, database: database, collection: "verified_receipts"}
}

func (r *ReceiptsRepository) coll() *mongo.Collection {
	return r.client.Database(r.database).Collection(r.collection)
}

// EnsureIndexes creates the unique compound index on (reference_number, bank).
// This constraint, not the read-then-act duplicate check, is what guarantees
// a receipt is credited at most once.
func (r *ReceiptsRepository) EnsureIndexes(ctx context.Context) error {
	_, err := r.coll().Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{
			{Key: "reference_number", Value: 1},
			{Key: "bank", Value: 1},
		},
		Options: options.Index().SetUnique(true).SetName("uniq_reference_bank"),
	})
	return err
}

// FindByReference returns the existing record for a (reference, bank) pair,
// or nil when the pair was never verified.
func (r *ReceiptsRepository) FindByReference(ctx context.Context, reference string, bank models.Bank) (*models.VerifiedReceiptRecord, error) {
	filter := bson.M{"reference_number": reference, "bank": bank}

	var record models.VerifiedReceiptRecord
	err := r.coll().FindOne(ctx, filter).Decode(&record)
	if err == mongo.ErrNoDocuments {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &record, nil
}

// Insert persists a verified receipt exactly once. A losing concurrent
// insert surfaces the unique index violation as a duplicate-receipt error.
func (r *ReceiptsRepository) Insert(ctx context.Context, record *models.VerifiedReceiptRecord) error {
	_, err := r.coll().InsertOne(ctx, record)
	if mongo.IsDuplicateKeyError(err) {
		return errors.DuplicateReceiptErr(record.ReferenceNumber, string(record.Bank), record.VerifiedAt)
	}
	if err != nil {
		return errors.PersistenceErr(err)
	}
	return nil
}
