// Package corpus fetches corpus text from local files or http(s) URLs.
package corpus

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// ErrTooLarge is returned when a corpus exceeds Options.MaxBytes.
var ErrTooLarge = errors.New("corpus exceeds size limit")

// Default limits.
const (
	DefaultTimeout  = 60 * time.Second
	DefaultMaxBytes = 256 << 20
)

// Options controls corpus acquisition.
type Options struct {
	Timeout  time.Duration
	MaxBytes int64
	// CacheDir keeps downloaded corpora. Empty disables caching.
	CacheDir string
	Client   *http.Client
}

func (o Options) withDefaults() Options {
	if o.Timeout <= 0 {
		o.Timeout = DefaultTimeout
	}
	if o.MaxBytes <= 0 {
		o.MaxBytes = DefaultMaxBytes
	}
	if o.Client == nil {
		o.Client = &http.Client{Timeout: o.Timeout}
	}
	return o
}

func log() *slog.Logger {
	return slog.With("component", "corpus")
}

// IsRemote reports whether source is an http(s) URL.
func IsRemote(source string) bool {
	return strings.HasPrefix(source, "http://") || strings.HasPrefix(source, "https://")
}

// Fetch returns the full text of source, or fails without partial content.
func Fetch(ctx context.Context, source string, opts Options) (string, error) {
	if source == "" {
		return "", fmt.Errorf("corpus source is empty")
	}
	opts = opts.withDefaults()
	if IsRemote(source) {
		return download(ctx, source, opts)
	}
	return readLocal(source, opts.MaxBytes)
}

func readLocal(path string, maxBytes int64) (string, error) {
	file, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("no such file or URL %s: %w", path, err)
	}
	defer func() {
		if cerr := file.Close(); cerr != nil {
			// Best-effort close for read-only corpus.
			_ = cerr
		}
	}()
	data, err := readLimited(file, maxBytes)
	if err != nil {
		return "", fmt.Errorf("failed to read %s: %w", path, err)
	}
	return string(data), nil
}

func download(ctx context.Context, url string, opts Options) (string, error) {
	cachePath := ""
	if opts.CacheDir != "" {
		cachePath = filepath.Join(opts.CacheDir, cacheKey(url)+".txt")
		if _, err := os.Stat(cachePath); err == nil {
			log().Debug("using cached corpus", "url", url, "path", cachePath)
			return readLocal(cachePath, opts.MaxBytes)
		} else if !errors.Is(err, os.ErrNotExist) {
			return "", fmt.Errorf("failed to stat cached corpus: %w", err)
		}
	}

	ctx, cancel := context.WithTimeout(ctx, opts.Timeout)
	defer cancel()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, http.NoBody)
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	log().Info("downloading corpus", "url", url)
	resp, err := opts.Client.Do(req)
	if err != nil {
		return "", fmt.Errorf("failed to download corpus: %w", err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("unexpected corpus status: %s", resp.Status)
	}
	if resp.ContentLength > opts.MaxBytes {
		return "", fmt.Errorf("%w: %d bytes > %d", ErrTooLarge, resp.ContentLength, opts.MaxBytes)
	}
	data, err := readLimited(resp.Body, opts.MaxBytes)
	if err != nil {
		return "", fmt.Errorf("failed to read downloaded corpus: %w", err)
	}

	if cachePath != "" {
		if err := writeCache(cachePath, data); err != nil {
			log().Warn("failed to cache corpus", "path", cachePath, "error", err)
		}
	}
	return string(data), nil
}

func readLimited(r io.Reader, maxBytes int64) ([]byte, error) {
	data, err := io.ReadAll(io.LimitReader(r, maxBytes+1))
	if err != nil {
		return nil, err
	}
	if int64(len(data)) > maxBytes {
		return nil, fmt.Errorf("%w: more than %d bytes", ErrTooLarge, maxBytes)
	}
	return data, nil
}

func writeCache(path string, data []byte) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create cache dir: %w", err)
	}
	tmpFile, err := os.CreateTemp(dir, "corpus-*.txt")
	if err != nil {
		return fmt.Errorf("failed to create temp corpus: %w", err)
	}
	tmpPath := tmpFile.Name()
	defer func() {
		_ = tmpFile.Close()
		_ = os.Remove(tmpPath)
	}()
	if _, err := tmpFile.Write(data); err != nil {
		return fmt.Errorf("failed to write temp corpus: %w", err)
	}
	if err := tmpFile.Close(); err != nil {
		return fmt.Errorf("failed to close temp corpus: %w", err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		return fmt.Errorf("failed to move corpus into cache: %w", err)
	}
	return nil
}

func cacheKey(url string) string {
	sum := sha256.Sum256([]byte(url))
	return hex.EncodeToString(sum[:])
}
