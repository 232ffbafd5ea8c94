package store

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"greendrake/propdesk/internal/models"
)

// ErrNotFound is returned when the target property (or property+image pair) does not exist.
var ErrNotFound = errors.New("property not found")

// IPropertyStore defines persistence operations for property documents.
type IPropertyStore interface {
	Insert(ctx context.Context, p *models.Property) error
	FindByID(ctx context.Context, id primitive.ObjectID) (*models.Property, error)
	FindMany(ctx context.Context, userID string, page, limit int) (*models.PropertyPage, error)
	AppendNote(ctx context.Context, id primitive.ObjectID, noteType models.NoteType, note models.Note) (*models.Property, error)
	SetImageCaption(ctx context.Context, id primitive.ObjectID, imageKey, caption string) (*models.Property, error)
	EnsureIndexes(ctx context.Context) error
}

const PropertiesCollection = "properties"

// propertyStore implements IPropertyStore on MongoDB.
type propertyStore struct {
	db  *mongo.Database
	now func() time.Time
}

// NewPropertyStore creates a new MongoDB-backed property store.
func NewPropertyStore(db *mongo.Database) IPropertyStore {
	return &propertyStore{db: db, now: func() time.Time { return time.Now().UTC() }}
}

func (s *propertyStore) collection() *mongo.Collection {
	return s.db.Collection(PropertiesCollection)
}

// EnsureIndexes creates the owner listing index and the image key index.
func (s *propertyStore) EnsureIndexes(ctx context.Context) error {
	indexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "userId", Value: 1}, {Key: "createdAt", Value: -1}},
			Options: options.Index().SetName("userId_createdAt"),
		},
		{
			Keys:    bson.D{{Key: "createdAt", Value: -1}},
			Options: options.Index().SetName("createdAt"),
		},
		{
			Keys:    bson.D{{Key: "images.key", Value: 1}},
			Options: options.Index().SetName("images_key").SetUnique(true).
				SetPartialFilterExpression(bson.M{"images.key": bson.M{"$exists": true}}),
		},
	}
	if _, err := s.collection().Indexes().CreateMany(ctx, indexes); err != nil {
		return fmt.Errorf("failed to create property indexes: %w", err)
	}
	return nil
}

// Insert stores a new property document. The caller assigns the ID.
func (s *propertyStore) Insert(ctx context.Context, p *models.Property) error {
	if _, err := s.collection().InsertOne(ctx, p); err != nil {
		return fmt.Errorf("failed to insert property %s: %w", p.ID.Hex(), err)
	}
	return nil
}

// FindByID fetches one property by its ID.
func (s *propertyStore) FindByID(ctx context.Context, id primitive.ObjectID) (*models.Property, error) {
	var p models.Property
	err := s.collection().FindOne(ctx, bson.M{"_id": id}).Decode(&p)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("error finding property by ID %s: %w", id.Hex(), err)
	}
	return &p, nil
}

// FindMany lists properties newest first with offset pagination.
// An empty userID returns all properties.
func (s *propertyStore) FindMany(ctx context.Context, userID string, page, limit int) (*models.PropertyPage, error) {
	filter := bson.M{}
	if userID != "" {
		filter["userId"] = userID
	}

	total, err := s.collection().CountDocuments(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to count properties: %w", err)
	}

	items := make([]models.Property, 0)
	skip, inRange := pageOffset(page, limit, total)
	if inRange {
		opts := options.Find().
			SetSort(bson.D{{Key: "createdAt", Value: -1}, {Key: "_id", Value: -1}}).
			SetSkip(skip).
			SetLimit(int64(limit))

		cursor, err := s.collection().Find(ctx, filter, opts)
		if err != nil {
			return nil, fmt.Errorf("failed to execute property list query: %w", err)
		}
		defer cursor.Close(ctx)

		if err = cursor.All(ctx, &items); err != nil {
			return nil, fmt.Errorf("failed to decode property list results: %w", err)
		}
	}

	return &models.PropertyPage{
		Items:   items,
		Page:    page,
		Limit:   limit,
		Total:   total,
		HasMore: hasMore(skip, len(items), total),
	}, nil
}

// pageOffset returns the number of documents to skip for a 1-based page.
// inRange is false when the page starts at or past total, including when
// the offset would not fit in an int64.
func pageOffset(page, limit int, total int64) (skip int64, inRange bool) {
	if page < 1 || limit < 1 {
		return 0, false
	}
	p, l := int64(page-1), int64(limit)
	if p > math.MaxInt64/l {
		return math.MaxInt64, false
	}
	skip = p * l
	return skip, skip < total
}

func hasMore(skip int64, n int, total int64) bool {
	if skip >= total {
		return false
	}
	return skip+int64(n) < total
}

// AppendNote pushes a note onto the sequence for noteType and returns the updated document.
func (s *propertyStore) AppendNote(ctx context.Context, id primitive.ObjectID, noteType models.NoteType, note models.Note) (*models.Property, error) {
	update := bson.M{
		"$push": bson.M{noteType.Field(): note},
		"$set":  bson.M{"updatedAt": s.now()},
		"$inc":  bson.M{"version": 1},
	}
	return s.findOneAndUpdate(ctx, bson.M{"_id": id}, update)
}

// SetImageCaption sets the caption of the image with the exact key.
func (s *propertyStore) SetImageCaption(ctx context.Context, id primitive.ObjectID, imageKey, caption string) (*models.Property, error) {
	filter := bson.M{"_id": id, "images.key": imageKey}
	update := bson.M{
		"$set": bson.M{
			"images.$.caption": caption,
			"updatedAt":        s.now(),
		},
		"$inc": bson.M{"version": 1},
	}
	return s.findOneAndUpdate(ctx, filter, update)
}

func (s *propertyStore) findOneAndUpdate(ctx context.Context, filter, update bson.M) (*models.Property, error) {
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var updated models.Property
	err := s.collection().FindOneAndUpdate(ctx, filter, update, opts).Decode(&updated)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to update property %v: %w", filter["_id"], err)
	}
	return &updated, nil
}
