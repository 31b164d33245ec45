package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type catalogSettings struct {
	PageSize int           `env:"PAGE_SIZE" envDefault:"10"`
	Origins  []string      `env:"ORIGINS" envDefault:"http://localhost:5173"`
	CacheTTL time.Duration `env:"CACHE_TTL" envDefault:"5m"`
	Strict   bool          `env:"STRICT"`
}

type secretSettings struct {
	Secret string `env:"CFGTEST_SECRET,required"`
}

func TestLoad_Defaults(t *testing.T) {
	var s catalogSettings
	require.NoError(t, Load(&s))

	assert.Equal(t, catalogSettings{
		PageSize: 10,
		Origins:  []string{"http://localhost:5173"},
		CacheTTL: 5 * time.Minute,
	}, s)
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("PAGE_SIZE", "25")
	t.Setenv("ORIGINS", "https://shop.example,https://admin.example")
	t.Setenv("CACHE_TTL", "90s")
	t.Setenv("STRICT", "true")

	var s catalogSettings
	require.NoError(t, Load(&s))

	assert.Equal(t, 25, s.PageSize)
	assert.Equal(t, []string{"https://shop.example", "https://admin.example"}, s.Origins)
	assert.Equal(t, 90*time.Second, s.CacheTTL)
	assert.True(t, s.Strict)
}

func TestLoad_Required(t *testing.T) {
	var s secretSettings
	err := Load(&s)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "parse config")

	t.Setenv("CFGTEST_SECRET", "s3cret")
	require.NoError(t, Load(&s))
	assert.Equal(t, "s3cret", s.Secret)
}

func TestLoad_Malformed(t *testing.T) {
	t.Setenv("CACHE_TTL", "five minutes")

	var s catalogSettings
	assert.ErrorContains(t, Load(&s), "parse config")
}

func TestLoadWithPrefix(t *testing.T) {
	t.Setenv("PAGE_SIZE", "99")
	t.Setenv("SEED_PAGE_SIZE", "3")

	var s catalogSettings
	require.NoError(t, LoadWithPrefix(&s, "SEED_"))
	assert.Equal(t, 3, s.PageSize)

	t.Setenv("SEED_PAGE_SIZE", "three")
	assert.ErrorContains(t, LoadWithPrefix(&s, "SEED_"), "parse SEED_ config")
}
