package gravatar

import (
	"testing"

	"github.com/jon4hz/astroadvisor/internal/config"
	"github.com/stretchr/testify/assert"
)

const testHash = "973dfe463ec85785f5f95af5ba3906eedb2d931c24e69824a89ea65dba4e813b"

func TestURL(t *testing.T) {
	tests := []struct {
		name     string
		email    string
		config   *config.GravatarConfig
		expected string
	}{
		{
			name:     "disabled",
			email:    "test@example.com",
			config:   &config.GravatarConfig{Enabled: false},
			expected: "",
		},
		{
			name:     "nil config",
			email:    "test@example.com",
			expected: "",
		},
		{
			name:     "empty email",
			email:    "   ",
			config:   &config.GravatarConfig{Enabled: true},
			expected: "",
		},
		{
			name:     "enabled",
			email:    "test@example.com",
			config:   &config.GravatarConfig{Enabled: true},
			expected: baseURL + testHash,
		},
		{
			name:  "all options and normalization",
			email: "  TEST@EXAMPLE.COM ",
			config: &config.GravatarConfig{
				Enabled:      true,
				DefaultImage: "identicon",
				Rating:       "pg",
				Size:         120,
			},
			expected: baseURL + testHash + "?d=identicon&r=pg&s=120",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, New(tt.config).URL(tt.email))
		})
	}
}

func TestURL_NilAvatars(t *testing.T) {
	var a *Avatars
	assert.Empty(t, a.URL("test@example.com"))
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		config  *config.GravatarConfig
		wantErr string
	}{
		{name: "nil", config: nil},
		{name: "disabled ignores values", config: &config.GravatarConfig{Rating: "nc17"}},
		{name: "defaults", config: &config.GravatarConfig{Enabled: true, DefaultImage: "mp", Rating: "g", Size: 80}},
		{name: "bad image", config: &config.GravatarConfig{Enabled: true, DefaultImage: "MP"}, wantErr: "default image"},
		{name: "bad rating", config: &config.GravatarConfig{Enabled: true, Rating: "PG"}, wantErr: "rating"},
		{name: "too large", config: &config.GravatarConfig{Enabled: true, Size: 2049}, wantErr: "size"},
		{name: "negative", config: &config.GravatarConfig{Enabled: true, Size: -1}, wantErr: "size"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Validate(tt.config)
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			assert.ErrorContains(t, err, tt.wantErr)
		})
	}
}
