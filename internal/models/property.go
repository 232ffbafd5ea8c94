package models

import (
	"time"
)

// NoteType selects which append-only note sequence receives an entry.
type NoteType string

const (
	NoteTypeInspection  NoteType = "inspection"
	NoteTypeMaintenance NoteType = "maintenance"
	NoteTypeMarketing   NoteType = "marketing"
)

// ParseNoteType maps a raw type to a known NoteType.
// Anything unrecognized is treated as an inspection note.
func ParseNoteType(s string) NoteType {
	switch NoteType(s) {
	case NoteTypeMaintenance, NoteTypeMarketing, NoteTypeInspection:
		return NoteType(s)
	}
	return NoteTypeInspection
}

// Field returns the document field holding notes of this type.
func (t NoteType) Field() string {
	switch t {
	case NoteTypeMaintenance:
		return "maintenanceNotes"
	case NoteTypeMarketing:
		return "marketingNotes"
	default:
		return "inspectionNotes"
	}
}

// Address holds the postal address components of a property.
type Address struct {
	Street  string `bson:"street,omitempty" json:"street,omitempty"`
	Unit    string `bson:"unit,omitempty" json:"unit,omitempty"`
	City    string `bson:"city,omitempty" json:"city,omitempty"`
	State   string `bson:"state,omitempty" json:"state,omitempty"`
	Zip     string `bson:"zip,omitempty" json:"zip,omitempty"`
	Country string `bson:"country,omitempty" json:"country,omitempty"`
}

// IsZero reports whether no address component is set.
func (a Address) IsZero() bool {
	return a == Address{}
}

// Note is a single entry in one of the note sequences. Notes are never edited.
type Note struct {
	Text      string    `bson:"text" json:"text"`
	AuthorID  string    `bson:"authorId,omitempty" json:"authorId,omitempty"`
	CreatedAt time.Time `bson:"createdAt" json:"createdAt"`
}

// Image describes an uploaded blob attached to a property.
type Image struct {
	Key         string  `bson:"key" json:"key"`
	URL         string  `bson:"url" json:"url"`
	ContentType string  `bson:"contentType" json:"contentType"`
	Size        int64   `bson:"size" json:"size"`
	Caption     *string `bson:"caption,omitempty" json:"caption,omitempty"`
}

// Property is the central aggregate: one rental property with its notes and images.
type Property struct {
	Base         `bson:",inline"`
	UserID       string                 `bson:"userId" json:"userId"`
	Title        string                 `bson:"title,omitempty" json:"title,omitempty"`
	Address      *Address               `bson:"address,omitempty" json:"address,omitempty"`
	PropertyType string                 `bson:"propertyType,omitempty" json:"propertyType,omitempty"`
	Status       string                 `bson:"status,omitempty" json:"status,omitempty"`
	Bedrooms     *float64               `bson:"bedrooms,omitempty" json:"bedrooms,omitempty"`
	Bathrooms    *float64               `bson:"bathrooms,omitempty" json:"bathrooms,omitempty"`
	Area         *float64               `bson:"area,omitempty" json:"area,omitempty"`
	Rent         *float64               `bson:"rent,omitempty" json:"rent,omitempty"`
	Deposit      *float64               `bson:"deposit,omitempty" json:"deposit,omitempty"`
	AvailableAt  *time.Time             `bson:"availableFrom,omitempty" json:"availableFrom,omitempty"`
	Utilities    []string               `bson:"utilities,omitempty" json:"utilities,omitempty"`
	Amenities    []string               `bson:"amenities,omitempty" json:"amenities,omitempty"`
	Attributes   map[string]interface{} `bson:"attributes,omitempty" json:"attributes,omitempty"`
	Location     *GeoJSON               `bson:"location,omitempty" json:"location,omitempty"`

	InspectionNotes  []Note  `bson:"inspectionNotes" json:"inspectionNotes"`
	MaintenanceNotes []Note  `bson:"maintenanceNotes" json:"maintenanceNotes"`
	MarketingNotes   []Note  `bson:"marketingNotes" json:"marketingNotes"`
	Images           []Image `bson:"images" json:"images"`

	CreatedAt time.Time `bson:"createdAt" json:"createdAt"`
	UpdatedAt time.Time `bson:"updatedAt" json:"updatedAt"`

	// Version is bumped by every store update; the cache uses it to refuse stale writes.
	Version int64 `bson:"version" json:"-"`
}

// ImageByKey returns the image with the exact key, or nil.
func (p *Property) ImageByKey(key string) *Image {
	for i := range p.Images {
		if p.Images[i].Key == key {
			return &p.Images[i]
		}
	}
	return nil
}

// PropertyPage is the paged result of a property listing query.
type PropertyPage struct {
	Items   []Property `json:"items"`
	Page    int        `json:"page"`
	Limit   int        `json:"limit"`
	Total   int64      `json:"total"`
	HasMore bool       `json:"hasMore"`
}
