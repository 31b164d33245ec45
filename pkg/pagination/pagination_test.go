package pagination

import (
	"errors"
	"math"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/cartflow/storefront/pkg/errors"
)

func TestDefaultParams(t *testing.T) {
	p := DefaultParams()
	assert.Equal(t, 1, p.Page)
	assert.Equal(t, 10, p.Limit)
	assert.Equal(t, int64(0), p.Skip())
}

func TestFromRequest_Defaults(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/api/products", nil)
	p, err := FromRequest(req, DefaultLimit, MaxLimit)

	require.NoError(t, err)
	assert.Equal(t, 1, p.Page)
	assert.Equal(t, DefaultLimit, p.Limit)
}

func TestFromRequest_CustomValues(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/api/products?page=3&limit=50", nil)
	p, err := FromRequest(req, DefaultLimit, MaxLimit)

	require.NoError(t, err)
	assert.Equal(t, 3, p.Page)
	assert.Equal(t, 50, p.Limit)
	assert.Equal(t, int64(100), p.Skip())
}

func TestParse_LimitAtMax(t *testing.T) {
	p, err := Parse("1", "100", DefaultLimit, MaxLimit)
	require.NoError(t, err)
	assert.Equal(t, 100, p.Limit)
}

func TestParse_Rejects(t *testing.T) {
	tests := []struct {
		name  string
		page  string
		limit string
	}{
		{"zero page", "0", ""},
		{"negative page", "-1", ""},
		{"non-numeric page", "two", ""},
		{"zero limit", "", "0"},
		{"negative limit", "", "-5"},
		{"non-numeric limit", "", "ten"},
		{"limit above max", "", "101"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse(tt.page, tt.limit, DefaultLimit, MaxLimit)
			require.Error(t, err)
			assert.True(t, errors.Is(err, apperrors.ErrInvalidInput))
		})
	}
}

func TestParse_CustomDefaultLimit(t *testing.T) {
	p, err := Parse("", "", 25, 50)
	require.NoError(t, err)
	assert.Equal(t, 25, p.Limit)
}

func TestSkip(t *testing.T) {
	assert.Equal(t, int64(0), Params{Page: 1, Limit: 10}.Skip())
	assert.Equal(t, int64(10), Params{Page: 2, Limit: 10}.Skip())
	assert.Equal(t, int64(1), Params{Page: 2, Limit: 1}.Skip())
}

func TestSkip_HugePageSaturates(t *testing.T) {
	p, err := Parse("1000000000000000000", "10", DefaultLimit, MaxLimit)
	require.NoError(t, err)

	assert.Equal(t, int64(math.MaxInt64), p.Skip())
	assert.Equal(t, int64(math.MaxInt64), Params{Page: math.MaxInt, Limit: MaxLimit}.Skip())
	assert.Equal(t, int64(0), Params{Page: 0, Limit: 10}.Skip())
}

func TestTotalPages(t *testing.T) {
	tests := []struct {
		total int64
		limit int
		want  int64
	}{
		{0, 10, 0},
		{1, 10, 1},
		{10, 10, 1},
		{11, 10, 2},
		{3, 1, 3},
		{99, 100, 1},
		{5, 0, 0},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, TotalPages(tt.total, tt.limit), "total=%d limit=%d", tt.total, tt.limit)
	}
}
