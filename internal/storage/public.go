package storage

import (
	"context"
	"encoding/base64"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// Store persists derived assets (normalized JPEGs, original PDFs) somewhere
// publicly servable and returns the URL. The pipeline treats failure here as
// a degradation, not an error: it falls back to an inline data URL.
type Store interface {
	Save(ctx context.Context, data []byte, filename, subfolder string) (string, error)
}

// PublicStore writes under a static web root served by the application.
type PublicStore struct {
	dir     string
	baseURL string
	logger  *slog.Logger
}

func NewPublicStore(dir, baseURL string, logger *slog.Logger) *PublicStore {
	if dir == "" {
		dir = "./public"
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &PublicStore{dir: dir, baseURL: strings.TrimRight(baseURL, "/"), logger: logger}
}

// Save writes data under dir/subfolder with a timestamped unique name and
// returns its public URL path.
func (s *PublicStore) Save(_ context.Context, data []byte, filename, subfolder string) (string, error) {
	if subfolder == "" {
		subfolder = "uploads"
	}
	target := filepath.Join(s.dir, subfolder)
	if err := os.MkdirAll(target, 0o755); err != nil {
		return "", fmt.Errorf("create upload dir: %w", err)
	}

	ext := filepath.Ext(filename)
	base := strings.TrimSuffix(filepath.Base(filename), ext)
	unique := fmt.Sprintf("%s_%d%s", base, time.Now().UnixMilli(), ext)

	path := filepath.Join(target, unique)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("write file: %w", err)
	}

	s.logger.Debug("storage.saved", "path", path, "bytes", len(data))
	return s.baseURL + "/" + subfolder + "/" + unique, nil
}

// DataURL inlines bytes as a base64 data URL. Used when asset persistence is
// degraded so visual review keeps working.
func DataURL(data []byte, mimeType string) string {
	return "data:" + mimeType + ";base64," + base64.StdEncoding.EncodeToString(data)
}
