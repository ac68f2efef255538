// Package zones loads the decorative map markers from the static game data
// document.
package zones

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"net/http"
	"strings"
	"time"

	"tropicalrevolution/internal/metrics"

	"go.uber.org/zap"
)

const (
	DefaultWidth  = 12
	DefaultHeight = 8
)

// Zone positions are percentages of the map size.
type Zone struct {
	Name string  `json:"name"`
	Type string  `json:"type"`
	X    float64 `json:"x"`
	Y    float64 `json:"y"`
	W    float64 `json:"w"`
	H    float64 `json:"h"`
}

type Document struct {
	Zones []Zone `json:"zones"`
}

var errNoZones = errors.New("zone document has no named zones")

// Loader reads the zone document either from fsys or, for http(s) sources,
// over the network.
type Loader struct {
	FS       fs.FS
	Client   *http.Client
	Fallback Zone
	Logger   *zap.Logger
}

// Load never fails: any problem is logged as a warning and the fallback zone
// is returned instead.
func (l Loader) Load(ctx context.Context, source string) []Zone {
	logger := l.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	b, err := l.read(ctx, source)
	if err == nil {
		var zs []Zone
		zs, err = Parse(b)
		if err == nil {
			return zs
		}
	}

	logger.Warn("zone data unavailable, using fallback",
		zap.String("source", source),
		zap.Error(err),
	)
	metrics.ZoneFallbacks.Inc()
	return []Zone{normalize(l.Fallback)}
}

func (l Loader) read(ctx context.Context, source string) ([]byte, error) {
	source = strings.TrimSpace(source)
	if source == "" {
		return nil, errors.New("no zone source configured")
	}
	if strings.HasPrefix(source, "http://") || strings.HasPrefix(source, "https://") {
		return l.fetch(ctx, source)
	}
	if l.FS == nil {
		return nil, errors.New("no filesystem for zone source")
	}
	return fs.ReadFile(l.FS, strings.TrimPrefix(source, "/"))
}

func (l Loader) fetch(ctx context.Context, url string) ([]byte, error) {
	client := l.Client
	if client == nil {
		client = &http.Client{Timeout: 5 * time.Second}
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Cache-Control", "no-cache")

	res, err := client.Do(req)
	if err != nil {
		return nil, err
	}
	defer res.Body.Close()

	if res.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetch %s: status %d", url, res.StatusCode)
	}
	return io.ReadAll(io.LimitReader(res.Body, 1<<20))
}

// Parse decodes the document and fills in default marker sizes. Zones
// without a name are dropped; a document left with none is malformed.
func Parse(b []byte) ([]Zone, error) {
	var raw struct {
		Zones *[]Zone `json:"zones"`
	}
	if err := json.Unmarshal(b, &raw); err != nil {
		return nil, err
	}
	if raw.Zones == nil {
		return nil, errNoZones
	}

	out := make([]Zone, 0, len(*raw.Zones))
	for _, z := range *raw.Zones {
		if strings.TrimSpace(z.Name) == "" {
			continue
		}
		out = append(out, normalize(z))
	}
	if len(out) == 0 {
		return nil, errNoZones
	}
	return out, nil
}

func normalize(z Zone) Zone {
	if z.W == 0 {
		z.W = DefaultWidth
	}
	if z.H == 0 {
		z.H = DefaultHeight
	}
	return z
}

// Find looks a zone up by name.
func Find(zs []Zone, name string) (Zone, bool) {
	for _, z := range zs {
		if z.Name == name {
			return z, true
		}
	}
	return Zone{}, false
}
