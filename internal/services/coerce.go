package services

import (
	"encoding/json"
	"math"
	"strconv"
	"strings"
	"time"

	"greendrake/propdesk/internal/models"
)

// Optional fields are coerced leniently: a value that cannot be parsed is
// treated as absent, never as a validation failure.

// parseNumber returns a finite float or nil.
func parseNumber(s string) *float64 {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return nil
	}
	return &v
}

var dateLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
	"2006-01-02",
	time.RFC1123Z,
	time.RFC1123,
}

// parseDate returns a UTC instant or nil.
func parseDate(s string) *time.Time {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			t = t.UTC()
			return &t
		}
	}
	return nil
}

// parseList accepts repeated values, a single JSON array, or comma-separated text.
func parseList(values []string) []string {
	if len(values) == 1 {
		raw := strings.TrimSpace(values[0])
		if strings.HasPrefix(raw, "[") {
			var arr []string
			if err := json.Unmarshal([]byte(raw), &arr); err == nil {
				return compact(arr)
			}
		}
		return compact(strings.Split(raw, ","))
	}
	return compact(values)
}

func compact(values []string) []string {
	var out []string
	for _, v := range values {
		if trimmed := strings.TrimSpace(v); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}

// parseAttributes decodes a JSON object; anything else yields nil.
func parseAttributes(s string) map[string]interface{} {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	var attrs map[string]interface{}
	if err := json.Unmarshal([]byte(s), &attrs); err != nil || len(attrs) == 0 {
		return nil
	}
	return attrs
}

// parseLocation returns a point only when both coordinates coerce.
func parseLocation(lon, lat string) *models.GeoJSON {
	lonV := parseNumber(lon)
	latV := parseNumber(lat)
	if lonV == nil || latV == nil {
		return nil
	}
	return models.NewPoint(*lonV, *latV)
}

const (
	DefaultPage  = 1
	DefaultLimit = 50
	MaxLimit     = 200
	// MaxPage keeps (page-1)*limit well inside int64.
	MaxPage = 1 << 20
)

// ParsePageParams converts raw page/limit query values, falling back to the
// defaults when a value is absent or non-numeric.
func ParsePageParams(pageStr, limitStr string) (int, int) {
	page, err := strconv.Atoi(strings.TrimSpace(pageStr))
	if err != nil {
		page = DefaultPage
	}
	limit, err := strconv.Atoi(strings.TrimSpace(limitStr))
	if err != nil {
		limit = DefaultLimit
	}
	return normalizePage(page, limit)
}

func normalizePage(page, limit int) (int, int) {
	if page < 1 {
		page = 1
	}
	if page > MaxPage {
		page = MaxPage
	}
	if limit <= 0 {
		limit = DefaultLimit
	}
	if limit > MaxLimit {
		limit = MaxLimit
	}
	return page, limit
}
