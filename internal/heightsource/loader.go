// Package heightsource loads height data from local files or HTTP servers.
package heightsource

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/Faultbox/heightview/internal/terrain"
)

// ErrStatus is wrapped when the server answers with a non-200 status.
var ErrStatus = errors.New("unexpected HTTP status")

// Loader fetches and decodes height data. The zero value reads local files
// and makes a single HTTP attempt with http.DefaultClient.
type Loader struct {
	Retries int           // extra HTTP attempts after the first
	Timeout time.Duration // per attempt; 0 means none
	Backoff time.Duration // wait before retry n is n*Backoff
	Client  *http.Client
	Log     *zap.Logger

	cache *Cache
}

// Result is delivered by LoadAsync.
type Result struct {
	Field *terrain.HeightField
	Err   error
}

// NewLoader creates a loader that keeps decoded fields in memory.
func NewLoader(retries int, timeout, backoff time.Duration, log *zap.Logger) *Loader {
	return &Loader{
		Retries: retries,
		Timeout: timeout,
		Backoff: backoff,
		Log:     log,
		cache:   NewCache(),
	}
}

// Fetch returns the raw bytes at location: an http(s) URL or a file path.
func (l *Loader) Fetch(ctx context.Context, location string) ([]byte, error) {
	if !isURL(location) {
		data, err := os.ReadFile(location)
		if err != nil {
			return nil, fmt.Errorf("reading %s: %w", location, err)
		}
		return data, nil
	}

	var lastErr error
	for attempt := 0; attempt <= max(l.Retries, 0); attempt++ {
		if attempt > 0 {
			wait := time.Duration(attempt) * l.Backoff
			l.logger().Warn("retrying height data fetch",
				zap.String("url", location),
				zap.Int("attempt", attempt+1),
				zap.Duration("wait", wait),
				zap.Error(lastErr),
			)
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(wait):
			}
		}

		data, retry, err := l.get(ctx, location)
		if err == nil {
			return data, nil
		}
		lastErr = err
		if !retry || ctx.Err() != nil {
			break
		}
	}
	return nil, fmt.Errorf("fetching %s: %w", location, lastErr)
}

// get performs one attempt. retry reports whether the failure is transient.
func (l *Loader) get(ctx context.Context, url string) (data []byte, retry bool, err error) {
	if l.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, l.Timeout)
		defer cancel()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, false, err
	}
	req.Header.Set("Accept", "application/octet-stream")

	client := l.Client
	if client == nil {
		client = http.DefaultClient
	}

	resp, err := client.Do(req)
	if err != nil {
		return nil, true, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, resp.StatusCode >= 500, fmt.Errorf("%w: %s", ErrStatus, resp.Status)
	}

	data, err = io.ReadAll(resp.Body)
	if err != nil {
		return nil, true, err
	}
	return data, false, nil
}

// Load fetches and decodes a height field. On any failure it returns an
// empty field together with the error, so callers can keep running on a
// flat world.
func (l *Loader) Load(ctx context.Context, location string) (*terrain.HeightField, error) {
	if l.cache != nil {
		if f, ok := l.cache.Get(location); ok {
			return f, nil
		}
	}

	start := time.Now()
	data, err := l.Fetch(ctx, location)
	if err != nil {
		l.logger().Error("loading height data", zap.String("location", location), zap.Error(err))
		return terrain.EmptyField(), err
	}

	field, err := terrain.LoadHeightField(data)
	if err != nil {
		err = fmt.Errorf("decoding %s: %w", location, err)
		l.logger().Error("loading height data", zap.String("location", location), zap.Error(err))
		return terrain.EmptyField(), err
	}

	l.logger().Info("height data loaded",
		zap.String("location", location),
		zap.Int("rows", field.Rows()),
		zap.Int("cols", field.Cols()),
		zap.Int("bytes", len(data)),
		zap.Duration("took", time.Since(start)),
	)

	if l.cache != nil {
		l.cache.Set(location, field)
	}
	return field, nil
}

// LoadAsync runs Load in a goroutine. The channel delivers exactly one
// Result and is then closed.
func (l *Loader) LoadAsync(ctx context.Context, location string) <-chan Result {
	out := make(chan Result, 1)
	go func() {
		defer close(out)
		field, err := l.Load(ctx, location)
		out <- Result{Field: field, Err: err}
	}()
	return out
}

// Close drops cached fields.
func (l *Loader) Close() {
	if l.cache != nil {
		l.cache.Clear()
	}
}

func (l *Loader) logger() *zap.Logger {
	if l.Log == nil {
		return zap.NewNop()
	}
	return l.Log
}

func isURL(location string) bool {
	return strings.HasPrefix(location, "http://") || strings.HasPrefix(location, "https://")
}
