// SPDX-License-Identifier: Apache-2.0

package prefill

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/goccy/go-yaml"
	"github.com/patrickmn/go-cache"
)

// ErrNotFound is returned when a source has no record for an id.
var ErrNotFound = errors.New("prefill record not found")

// Source fetches third-party food records.
type Source interface {
	Fetch(ctx context.Context, id string) (*Record, error)
}

// ---------------------------------------------------------------------------
// Open Food Facts
// ---------------------------------------------------------------------------

// DefaultOFFBaseURL is the public Open Food Facts API.
const DefaultOFFBaseURL = "https://world.openfoodfacts.org"

// OFFConfig configures an OFFSource.
type OFFConfig struct {
	BaseURL   string
	UserAgent string
	Timeout   time.Duration
	CacheTTL  time.Duration
}

// OFFSource fetches products by barcode from the Open Food Facts API and
// caches converted records.
type OFFSource struct {
	baseURL    string
	userAgent  string
	httpClient *http.Client
	cache      *cache.Cache
	logger     *slog.Logger
}

// NewOFFSource creates an Open Food Facts source. Zero config values fall
// back to defaults.
func NewOFFSource(cfg OFFConfig, logger *slog.Logger) *OFFSource {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultOFFBaseURL
	}
	if cfg.UserAgent == "" {
		cfg.UserAgent = "nutrifill/1.0"
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 10 * time.Second
	}
	if cfg.CacheTTL <= 0 {
		cfg.CacheTTL = time.Hour
	}
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &OFFSource{
		baseURL:    strings.TrimRight(cfg.BaseURL, "/"),
		userAgent:  cfg.UserAgent,
		httpClient: &http.Client{Timeout: cfg.Timeout},
		cache:      cache.New(cfg.CacheTTL, cfg.CacheTTL*2),
		logger:     logger.With("module", "prefill", "source", "openfoodfacts"),
	}
}

type offResponse struct {
	Status  int         `json:"status" yaml:"status"`
	Product *OFFProduct `json:"product" yaml:"product"`
}

// Fetch returns the record of the product with the given barcode.
func (s *OFFSource) Fetch(ctx context.Context, code string) (*Record, error) {
	code = strings.TrimSpace(code)
	if code == "" {
		return nil, fmt.Errorf("fetch product: empty barcode")
	}
	cacheKey := "product:" + code
	if cached, found := s.cache.Get(cacheKey); found {
		if r, ok := cached.(*Record); ok {
			s.logger.Debug("product cache hit", "code", code)
			return r, nil
		}
	}

	endpoint := fmt.Sprintf("%s/api/v2/product/%s.json", s.baseURL, url.PathEscape(code))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("fetch product %s: %w", code, err)
	}
	req.Header.Set("User-Agent", s.userAgent)
	req.Header.Set("Accept", "application/json")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch product %s: %w", code, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return nil, fmt.Errorf("fetch product %s: %w", code, ErrNotFound)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetch product %s: unexpected status %d", code, resp.StatusCode)
	}
	body, err := io.ReadAll(io.LimitReader(resp.Body, 4<<20))
	if err != nil {
		return nil, fmt.Errorf("fetch product %s: read body: %w", code, err)
	}

	var payload offResponse
	if err := yaml.Unmarshal(body, &payload); err != nil {
		return nil, fmt.Errorf("fetch product %s: decode: %w", code, err)
	}
	if payload.Status != 1 || payload.Product == nil {
		return nil, fmt.Errorf("fetch product %s: %w", code, ErrNotFound)
	}
	if payload.Product.Code == "" {
		payload.Product.Code = code
	}

	r := FromOpenFoodFacts(payload.Product)
	s.cache.Set(cacheKey, r, cache.DefaultExpiration)
	s.logger.Debug("product fetched", "code", code, "name", r.Name)
	return r, nil
}

// ---------------------------------------------------------------------------
// Files
// ---------------------------------------------------------------------------

// DirSource reads records stored as <id>.yaml, <id>.yml or <id>.json files.
type DirSource struct {
	Dir string
}

func (s DirSource) Fetch(_ context.Context, id string) (*Record, error) {
	if id == "" || strings.ContainsAny(id, `/\`) || strings.Contains(id, "..") {
		return nil, fmt.Errorf("fetch record %q: invalid id", id)
	}
	for _, ext := range []string{".yaml", ".yml", ".json"} {
		data, err := os.ReadFile(filepath.Join(s.Dir, id+ext))
		if errors.Is(err, os.ErrNotExist) {
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("fetch record %s: %w", id, err)
		}
		return Decode(data)
	}
	return nil, fmt.Errorf("fetch record %s: %w", id, ErrNotFound)
}
