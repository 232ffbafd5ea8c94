package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"greendrake/propdesk/internal/cache"
	"greendrake/propdesk/internal/models"
	"greendrake/propdesk/internal/storage"
	"greendrake/propdesk/internal/store"
)

// PropertyInput carries the raw descriptive fields of a creation request.
// Values are coerced by the service; unparseable optional values are dropped.
type PropertyInput struct {
	Title         string
	Street        string
	Unit          string
	City          string
	State         string
	Zip           string
	Country       string
	PropertyType  string
	Status        string
	Bedrooms      string
	Bathrooms     string
	Area          string
	Rent          string
	Deposit       string
	AvailableFrom string
	Utilities     []string
	Amenities     []string
	Attributes    string // JSON object
	Longitude     string
	Latitude      string
}

// ImageUpload is one file submitted with a creation request.
type ImageUpload struct {
	Filename    string
	ContentType string
	Size        int64
	Content     io.Reader
}

// IPropertyService defines the interface for property operations.
type IPropertyService interface {
	CreateProperty(ctx context.Context, ownerID string, input PropertyInput, files []ImageUpload) (*models.Property, error)
	ListProperties(ctx context.Context, ownerID string, page, limit int) (*models.PropertyPage, error)
	GetProperty(ctx context.Context, id string) (*models.Property, error)
	AddNote(ctx context.Context, id, noteType, text, authorID string) (*models.Property, error)
	SetImageCaption(ctx context.Context, id, imageKey, caption string) (*models.Property, error)
}

// propertyService implements IPropertyService.
type propertyService struct {
	store   store.IPropertyStore
	objects storage.IObjectStore
	cache   cache.IPropertyCache // nil disables caching
	now     func() time.Time
}

// NewPropertyService creates a new PropertyService. propertyCache may be nil.
func NewPropertyService(propertyStore store.IPropertyStore, objects storage.IObjectStore, propertyCache cache.IPropertyCache) IPropertyService {
	return &propertyService{
		store:   propertyStore,
		objects: objects,
		cache:   propertyCache,
		now:     func() time.Time { return time.Now().UTC() },
	}
}

// CreateProperty validates the owner, uploads the images under the new
// property's ID and then persists the document.
func (s *propertyService) CreateProperty(ctx context.Context, ownerID string, input PropertyInput, files []ImageUpload) (*models.Property, error) {
	ownerID = strings.TrimSpace(ownerID)
	if ownerID == "" {
		return nil, NewValidationError("userId is required (x-user-id header or userId field)")
	}

	now := s.now()
	p := &models.Property{
		Base:             models.NewBase(),
		UserID:           ownerID,
		Title:            strings.TrimSpace(input.Title),
		PropertyType:     strings.TrimSpace(input.PropertyType),
		Status:           strings.TrimSpace(input.Status),
		Bedrooms:         parseNumber(input.Bedrooms),
		Bathrooms:        parseNumber(input.Bathrooms),
		Area:             parseNumber(input.Area),
		Rent:             parseNumber(input.Rent),
		Deposit:          parseNumber(input.Deposit),
		AvailableAt:      parseDate(input.AvailableFrom),
		Utilities:        parseList(input.Utilities),
		Amenities:        parseList(input.Amenities),
		Attributes:       parseAttributes(input.Attributes),
		Location:         parseLocation(input.Longitude, input.Latitude),
		InspectionNotes:  []models.Note{},
		MaintenanceNotes: []models.Note{},
		MarketingNotes:   []models.Note{},
		CreatedAt:        now,
		UpdatedAt:        now,
	}

	address := models.Address{
		Street:  strings.TrimSpace(input.Street),
		Unit:    strings.TrimSpace(input.Unit),
		City:    strings.TrimSpace(input.City),
		State:   strings.TrimSpace(input.State),
		Zip:     strings.TrimSpace(input.Zip),
		Country: strings.TrimSpace(input.Country),
	}
	if !address.IsZero() {
		p.Address = &address
	}

	images, err := s.uploadBatch(ctx, ownerID, p.ID.Hex(), files)
	if err != nil {
		return nil, err
	}
	p.Images = images

	if err := s.store.Insert(ctx, p); err != nil {
		if len(images) > 0 {
			slog.WarnContext(ctx, "property insert failed after upload; images orphaned",
				"property_id", p.ID.Hex(), "orphaned_keys", imageKeys(images))
		}
		return nil, fmt.Errorf("failed to create property for user %s: %w", ownerID, err)
	}

	return p, nil
}

// uploadBatch uploads files sequentially in submission order. The first
// failure aborts the batch; blobs already written are left in place.
func (s *propertyService) uploadBatch(ctx context.Context, ownerID, propertyID string, files []ImageUpload) ([]models.Image, error) {
	images := make([]models.Image, 0, len(files))
	for i, f := range files {
		obj, err := s.objects.Put(ctx, ownerID, propertyID, i, f.Filename, f.Content, f.Size, f.ContentType)
		if err != nil {
			if len(images) > 0 {
				slog.WarnContext(ctx, "image upload failed mid-batch; earlier uploads orphaned",
					"property_id", propertyID, "orphaned_keys", imageKeys(images))
			}
			return nil, fmt.Errorf("failed to upload image %d (%s): %w", i, f.Filename, err)
		}
		images = append(images, models.Image{
			Key:         obj.Key,
			URL:         obj.URL,
			ContentType: f.ContentType,
			Size:        f.Size,
		})
	}
	return images, nil
}

func imageKeys(images []models.Image) []string {
	keys := make([]string, len(images))
	for i, img := range images {
		keys[i] = img.Key
	}
	return keys
}

// ListProperties returns a page of properties, optionally filtered by owner.
func (s *propertyService) ListProperties(ctx context.Context, ownerID string, page, limit int) (*models.PropertyPage, error) {
	page, limit = normalizePage(page, limit)
	result, err := s.store.FindMany(ctx, strings.TrimSpace(ownerID), page, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list properties: %w", err)
	}
	return result, nil
}

// GetProperty fetches a property, reading through the cache when one is configured.
func (s *propertyService) GetProperty(ctx context.Context, id string) (*models.Property, error) {
	oid, err := parseID(id)
	if err != nil {
		return nil, err
	}

	if s.cache != nil {
		cached, err := s.cache.Get(ctx, oid.Hex())
		if err != nil {
			slog.WarnContext(ctx, "property cache read failed", "property_id", oid.Hex(), "error", err)
		} else if cached != nil {
			return cached, nil
		}
	}

	p, err := s.store.FindByID(ctx, oid)
	if err != nil {
		return nil, translateStoreError(err, ErrPropertyNotFound)
	}
	s.refreshCache(ctx, p)
	return p, nil
}

// AddNote appends a note. Unknown note types are stored as inspection notes.
func (s *propertyService) AddNote(ctx context.Context, id, noteType, text, authorID string) (*models.Property, error) {
	oid, err := parseID(id)
	if err != nil {
		return nil, err
	}
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, NewValidationError("text is required")
	}

	note := models.Note{
		Text:      text,
		AuthorID:  strings.TrimSpace(authorID),
		CreatedAt: s.now(),
	}
	p, err := s.store.AppendNote(ctx, oid, models.ParseNoteType(noteType), note)
	if err != nil {
		return nil, translateStoreError(err, ErrPropertyNotFound)
	}
	s.refreshCache(ctx, p)
	return p, nil
}

// SetImageCaption sets the caption of the image whose key matches exactly.
func (s *propertyService) SetImageCaption(ctx context.Context, id, imageKey, caption string) (*models.Property, error) {
	oid, err := parseID(id)
	if err != nil {
		return nil, err
	}

	p, err := s.store.SetImageCaption(ctx, oid, imageKey, caption)
	if err == nil {
		s.refreshCache(ctx, p)
		return p, nil
	}
	if !errors.Is(err, store.ErrNotFound) {
		return nil, fmt.Errorf("failed to set caption on property %s: %w", id, err)
	}

	// Tell a missing property apart from a missing image.
	if _, findErr := s.store.FindByID(ctx, oid); findErr != nil {
		return nil, translateStoreError(findErr, ErrPropertyNotFound)
	}
	return nil, ErrImageNotFound
}

func translateStoreError(err error, notFound error) error {
	if errors.Is(err, store.ErrNotFound) {
		return notFound
	}
	return err
}

// refreshCache offers p to the cache. The cache keeps whichever version is
// newest, so a read that raced an update cannot overwrite it. When the write
// fails the entry is evicted instead.
func (s *propertyService) refreshCache(ctx context.Context, p *models.Property) {
	if s.cache == nil {
		return
	}
	err := s.cache.Set(ctx, p)
	if err == nil {
		return
	}
	slog.WarnContext(ctx, "property cache write failed", "property_id", p.ID.Hex(), "error", err)
	if err := s.cache.Delete(ctx, p.ID.Hex()); err != nil {
		slog.WarnContext(ctx, "property cache eviction failed", "property_id", p.ID.Hex(), "error", err)
	}
}

func parseID(id string) (primitive.ObjectID, error) {
	oid, err := primitive.ObjectIDFromHex(strings.TrimSpace(id))
	if err != nil {
		return primitive.NilObjectID, ErrInvalidID
	}
	return oid, nil
}
