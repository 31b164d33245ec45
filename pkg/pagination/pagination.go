package pagination

import (
	"math"
	"net/http"
	"strconv"
	"strings"

	apperrors "github.com/cartflow/storefront/pkg/errors"
)

// Default bounds used when a caller does not configure its own.
const (
	DefaultLimit = 10
	MaxLimit     = 100
)

// Params holds the page window requested by a client. Page is 1-based.
type Params struct {
	Page  int `json:"page"`
	Limit int `json:"limit"`
}

// DefaultParams returns the first page with the default limit.
func DefaultParams() Params {
	return Params{Page: 1, Limit: DefaultLimit}
}

// Skip returns the number of records preceding the page window. It saturates
// at math.MaxInt64 instead of overflowing for very large pages.
func (p Params) Skip() int64 {
	page, limit := int64(p.Page-1), int64(p.Limit)
	if page <= 0 || limit <= 0 {
		return 0
	}
	if page > math.MaxInt64/limit {
		return math.MaxInt64
	}
	return page * limit
}

// Parse validates raw page and limit query values. Absent values fall back to
// page 1 and defaultLimit. A non-numeric or non-positive page, and a limit that
// is non-numeric, non-positive or above maxLimit, are rejected.
func Parse(page, limit string, defaultLimit, maxLimit int) (Params, error) {
	p := Params{Page: 1, Limit: defaultLimit}

	if page = strings.TrimSpace(page); page != "" {
		v, err := strconv.Atoi(page)
		if err != nil || v < 1 {
			return Params{}, apperrors.InvalidInput("page must be a positive integer")
		}
		p.Page = v
	}

	if limit = strings.TrimSpace(limit); limit != "" {
		v, err := strconv.Atoi(limit)
		if err != nil || v < 1 {
			return Params{}, apperrors.InvalidInput("limit must be a positive integer")
		}
		if v > maxLimit {
			return Params{}, apperrors.InvalidInput("limit must not exceed " + strconv.Itoa(maxLimit))
		}
		p.Limit = v
	}

	return p, nil
}

// FromRequest extracts the page and limit query parameters from r.
func FromRequest(r *http.Request, defaultLimit, maxLimit int) (Params, error) {
	q := r.URL.Query()
	return Parse(q.Get("page"), q.Get("limit"), defaultLimit, maxLimit)
}

// TotalPages returns ceil(total / limit). It is 0 exactly when total is 0.
func TotalPages(total int64, limit int) int64 {
	if total <= 0 || limit <= 0 {
		return 0
	}
	l := int64(limit)
	return (total + l - 1) / l
}
