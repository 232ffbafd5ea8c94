package handlers

import (
	"errors"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/url"
	"strings"

	"github.com/gin-gonic/gin"

	"greendrake/propdesk/internal/services"
)

// OwnerHeader identifies the caller; it wins over a userId body field.
const OwnerHeader = "x-user-id"

// RestPropertyHandler handles REST requests for properties.
type RestPropertyHandler struct {
	propertyService services.IPropertyService
	publicBaseURL   string
	maxUploadBytes  int64
}

// NewRestPropertyHandler creates a new RestPropertyHandler. maxUploadBytes
// caps a creation request body; zero means no cap.
func NewRestPropertyHandler(propertyService services.IPropertyService, publicBaseURL string, maxUploadBytes int64) *RestPropertyHandler {
	return &RestPropertyHandler{
		propertyService: propertyService,
		publicBaseURL:   strings.TrimRight(publicBaseURL, "/"),
		maxUploadBytes:  maxUploadBytes,
	}
}

// ResolveOwnerID returns the owner identity of a request: the x-user-id
// header when present, otherwise the given body field value.
func ResolveOwnerID(c *gin.Context, bodyUserID string) string {
	if h := strings.TrimSpace(c.GetHeader(OwnerHeader)); h != "" {
		return h
	}
	return strings.TrimSpace(bodyUserID)
}

// CreateProperty handles POST /api/properties
func (h *RestPropertyHandler) CreateProperty(c *gin.Context) {
	if h.maxUploadBytes > 0 {
		if c.Request.ContentLength > h.maxUploadBytes {
			c.JSON(http.StatusRequestEntityTooLarge, gin.H{"error": "Request body too large"})
			return
		}
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, h.maxUploadBytes)
	}

	values, fileHeaders, err := readForm(c)
	if err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			c.JSON(http.StatusRequestEntityTooLarge, gin.H{"error": "Request body too large"})
			return
		}
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid form data"})
		return
	}

	files, closeFiles, err := openUploads(fileHeaders)
	defer closeFiles()
	if err != nil {
		_ = c.Error(err)
		c.JSON(http.StatusBadRequest, gin.H{"error": "Failed to read uploaded image"})
		return
	}

	ownerID := ResolveOwnerID(c, values.Get("userId"))
	property, err := h.propertyService.CreateProperty(c.Request.Context(), ownerID, propertyInputFromForm(values), files)
	if err != nil {
		writeError(c, err, "Failed to create property")
		return
	}

	c.Header("Location", h.publicBaseURL+"/api/properties/"+property.ID.Hex())
	c.JSON(http.StatusCreated, property)
}

// readForm parses a multipart body, falling back to a urlencoded one.
func readForm(c *gin.Context) (url.Values, []*multipart.FileHeader, error) {
	form, err := c.MultipartForm()
	if err == nil {
		return url.Values(form.Value), form.File["images"], nil
	}
	if !errors.Is(err, http.ErrNotMultipart) {
		return nil, nil, err
	}
	if err := c.Request.ParseForm(); err != nil {
		return nil, nil, err
	}
	return c.Request.PostForm, nil, nil
}

// openUploads opens every file in submission order. The returned func
// closes whatever was opened and is always safe to call.
func openUploads(headers []*multipart.FileHeader) ([]services.ImageUpload, func(), error) {
	var opened []io.Closer
	closeAll := func() {
		for _, f := range opened {
			_ = f.Close()
		}
	}

	uploads := make([]services.ImageUpload, 0, len(headers))
	for _, fh := range headers {
		f, err := fh.Open()
		if err != nil {
			return nil, closeAll, err
		}
		opened = append(opened, f)
		uploads = append(uploads, services.ImageUpload{
			Filename:    fh.Filename,
			ContentType: fh.Header.Get("Content-Type"),
			Size:        fh.Size,
			Content:     f,
		})
	}
	return uploads, closeAll, nil
}

func propertyInputFromForm(v url.Values) services.PropertyInput {
	return services.PropertyInput{
		Title:         v.Get("title"),
		Street:        v.Get("street"),
		Unit:          v.Get("unit"),
		City:          v.Get("city"),
		State:         v.Get("state"),
		Zip:           v.Get("zip"),
		Country:       v.Get("country"),
		PropertyType:  v.Get("propertyType"),
		Status:        v.Get("status"),
		Bedrooms:      v.Get("bedrooms"),
		Bathrooms:     v.Get("bathrooms"),
		Area:          v.Get("area"),
		Rent:          v.Get("rent"),
		Deposit:       v.Get("deposit"),
		AvailableFrom: v.Get("availableFrom"),
		Utilities:     v["utilities"],
		Amenities:     v["amenities"],
		Attributes:    v.Get("attributes"),
		Longitude:     v.Get("longitude"),
		Latitude:      v.Get("latitude"),
	}
}

// ListProperties handles GET /api/properties
func (h *RestPropertyHandler) ListProperties(c *gin.Context) {
	page, limit := services.ParsePageParams(c.Query("page"), c.Query("limit"))

	result, err := h.propertyService.ListProperties(c.Request.Context(), c.Query("userId"), page, limit)
	if err != nil {
		writeError(c, err, "Failed to list properties")
		return
	}
	c.JSON(http.StatusOK, result)
}

// GetProperty handles GET /api/properties/:id
func (h *RestPropertyHandler) GetProperty(c *gin.Context) {
	property, err := h.propertyService.GetProperty(c.Request.Context(), c.Param("id"))
	if err != nil {
		writeError(c, err, "Failed to retrieve property")
		return
	}
	c.JSON(http.StatusOK, property)
}

type addNoteRequest struct {
	Type     string `json:"type"`
	Text     string `json:"text"`
	AuthorID string `json:"authorId"`
}

// AddNote handles PATCH /api/properties/:id/notes
func (h *RestPropertyHandler) AddNote(c *gin.Context) {
	var req addNoteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}

	authorID := req.AuthorID
	if strings.TrimSpace(authorID) == "" {
		authorID = c.GetHeader(OwnerHeader)
	}

	property, err := h.propertyService.AddNote(c.Request.Context(), c.Param("id"), req.Type, req.Text, authorID)
	if err != nil {
		writeError(c, err, "Failed to add note")
		return
	}
	c.JSON(http.StatusOK, property)
}

type setCaptionRequest struct {
	Caption string `json:"caption"`
}

// SetImageCaption handles PATCH /api/properties/:id/images/:imageKey/caption
// imageKey arrives URL-encoded and is matched exactly once decoded.
func (h *RestPropertyHandler) SetImageCaption(c *gin.Context) {
	var req setCaptionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}

	property, err := h.propertyService.SetImageCaption(c.Request.Context(), c.Param("id"), c.Param("imageKey"), req.Caption)
	if err != nil {
		writeError(c, err, "Failed to update caption")
		return
	}
	c.JSON(http.StatusOK, property)
}

// writeError maps service errors onto status codes. Unexpected errors are
// logged and reported with a generic message.
func writeError(c *gin.Context, err error, fallback string) {
	var validationErr *services.ValidationError
	switch {
	case errors.As(err, &validationErr):
		c.JSON(http.StatusBadRequest, gin.H{"error": validationErr.Message})
	case errors.Is(err, services.ErrInvalidID):
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid property ID format"})
	case errors.Is(err, services.ErrImageNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "Image not found"})
	case errors.Is(err, services.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "Property not found"})
	default:
		_ = c.Error(err)
		slog.ErrorContext(c.Request.Context(), fallback, "error", err, "path", c.FullPath())
		c.JSON(http.StatusInternalServerError, gin.H{"error": fallback})
	}
}
