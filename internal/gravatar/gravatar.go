package gravatar

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"net/url"
	"slices"
	"strconv"
	"strings"

	"github.com/jon4hz/astroadvisor/internal/config"
)

const baseURL = "https://www.gravatar.com/avatar/"

var (
	defaultImages = []string{"404", "mp", "identicon", "monsterid", "wavatar", "retro", "robohash", "blank"}
	ratings       = []string{"g", "pg", "r", "x"}
)

// Avatars builds profile picture URLs for user emails.
// A nil *Avatars or a disabled configuration yields empty URLs.
type Avatars struct {
	cfg *config.GravatarConfig
}

// New returns an avatar URL builder for cfg.
func New(cfg *config.GravatarConfig) *Avatars {
	return &Avatars{cfg: cfg}
}

// URL returns the avatar URL of email, or "" when avatars are disabled.
func (a *Avatars) URL(email string) string {
	if a == nil || a.cfg == nil || !a.cfg.Enabled {
		return ""
	}
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" {
		return ""
	}

	hash := sha256.Sum256([]byte(email))

	params := url.Values{}
	if a.cfg.DefaultImage != "" {
		params.Set("d", a.cfg.DefaultImage)
	}
	if a.cfg.Rating != "" {
		params.Set("r", a.cfg.Rating)
	}
	if a.cfg.Size > 0 {
		params.Set("s", strconv.Itoa(a.cfg.Size))
	}

	u := baseURL + hex.EncodeToString(hash[:])
	if len(params) > 0 {
		u += "?" + params.Encode()
	}
	return u
}

// Validate checks the options of an enabled configuration.
func Validate(cfg *config.GravatarConfig) error {
	if cfg == nil || !cfg.Enabled {
		return nil
	}
	if cfg.DefaultImage != "" && !slices.Contains(defaultImages, cfg.DefaultImage) {
		return fmt.Errorf("invalid gravatar default image %q", cfg.DefaultImage)
	}
	if cfg.Rating != "" && !slices.Contains(ratings, cfg.Rating) {
		return fmt.Errorf("invalid gravatar rating %q", cfg.Rating)
	}
	if cfg.Size != 0 && (cfg.Size < 1 || cfg.Size > 2048) {
		return fmt.Errorf("gravatar size must be between 1 and 2048, got %d", cfg.Size)
	}
	return nil
}
