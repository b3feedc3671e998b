package leads

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
)

// mongoLead is the stored document. Field names follow the collection's
// existing documents (createdAt/updatedAt, ObjectID _id).
type mongoLead struct {
	ID        bson.ObjectID `bson:"_id"`
	Name      string        `bson:"name"`
	Email     string        `bson:"email"`
	Phone     string        `bson:"phone"`
	CreatedAt time.Time     `bson:"createdAt"`
	UpdatedAt time.Time     `bson:"updatedAt"`
}

func (d mongoLead) lead() *Lead {
	return &Lead{
		ID:        d.ID.Hex(),
		Name:      d.Name,
		Email:     d.Email,
		Phone:     d.Phone,
		CreatedAt: d.CreatedAt,
		UpdatedAt: d.UpdatedAt,
	}
}

// documentCollection is the slice of *mongo.Collection the repository needs.
type documentCollection interface {
	InsertOne(ctx context.Context, document any) error
	FindOne(ctx context.Context, filter any, out any) error
}

type mongoCollection struct {
	coll *mongo.Collection
}

func (c mongoCollection) InsertOne(ctx context.Context, document any) error {
	_, err := c.coll.InsertOne(ctx, document)
	return err
}

func (c mongoCollection) FindOne(ctx context.Context, filter any, out any) error {
	return c.coll.FindOne(ctx, filter).Decode(out)
}

// MongoRepository stores leads as documents in a MongoDB collection.
type MongoRepository struct {
	coll documentCollection
	now  func() time.Time
}

var _ Repository = (*MongoRepository)(nil)

// NewMongoRepository initializes a repo backed by the given collection.
func NewMongoRepository(coll *mongo.Collection) *MongoRepository {
	if coll == nil {
		panic("leads: mongo collection required")
	}
	return newMongoRepository(mongoCollection{coll: coll})
}

func newMongoRepository(coll documentCollection) *MongoRepository {
	return &MongoRepository{coll: coll, now: time.Now}
}

// Create inserts a new document.
func (r *MongoRepository) Create(ctx context.Context, req *CreateLeadRequest) (*Lead, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	// BSON dates carry millisecond precision.
	now := r.now().UTC().Truncate(time.Millisecond)
	doc := mongoLead{
		ID:        bson.NewObjectID(),
		Name:      req.Name,
		Email:     req.Email,
		Phone:     req.Phone,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := r.coll.InsertOne(ctx, doc); err != nil {
		return nil, fmt.Errorf("leads: insert failed: %w", err)
	}
	return doc.lead(), nil
}

// GetByID fetches a lead by its hex ObjectID.
func (r *MongoRepository) GetByID(ctx context.Context, id string) (*Lead, error) {
	oid, err := bson.ObjectIDFromHex(id)
	if err != nil {
		return nil, ErrLeadNotFound
	}
	var doc mongoLead
	if err := r.coll.FindOne(ctx, bson.M{"_id": oid}, &doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrLeadNotFound
		}
		return nil, fmt.Errorf("leads: find failed: %w", err)
	}
	return doc.lead(), nil
}

