// internal/archive/archive.go
package archive

import (
	"context"
	"errors"
	"fmt"
	"path"
	"strings"
)

// ErrNotFound is returned when a report is not in the archive.
var ErrNotFound = errors.New("archive: report not found")

// Archive stores generated reports for later download.
type Archive interface {
	Name() string
	Put(ctx context.Context, key, contentType string, data []byte) error
	Get(ctx context.Context, key string) ([]byte, error)
}

// Key builds the object key of a report: <prefix>/<id>/<filename>.
func Key(prefix, id, filename string) string {
	return path.Join(strings.Trim(prefix, "/"), id, path.Base(filename))
}

// Config selects and configures an archive backend.
type Config struct {
	Backend   string `yaml:"backend"` // "", "local" or "s3"
	Path      string `yaml:"path"`
	Prefix    string `yaml:"prefix"`
	Bucket    string `yaml:"bucket"`
	Endpoint  string `yaml:"endpoint"`
	Region    string `yaml:"region"`
	AccessKey string `yaml:"access_key"`
	SecretKey string `yaml:"secret_key"`
	PathStyle bool   `yaml:"path_style"`
}

// Enabled reports whether a backend is configured.
func (c Config) Enabled() bool {
	return c.Backend != ""
}

func validKey(key string) error {
	if key == "" || strings.HasPrefix(key, "/") || strings.Contains(key, "..") {
		return fmt.Errorf("archive: invalid key %q", key)
	}
	return nil
}
