package credential

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
)

const (
	maxBundleBytes = 32 << 20
	refreshTimeout = 30 * time.Second
)

var (
	uuidPattern       = regexp.MustCompile(`(?i)[0-9a-f]{8}-[0-9a-f]{4}-[0-9a-f]{4}-[0-9a-f]{4}-[0-9a-f]{12}`)
	mainBundlePattern = regexp.MustCompile(`main[.-][0-9A-Za-z_-]*\.js`)
)

// Refresher re-derives a rejected credential. stale is the key the caller
// was rejected with; if the store already holds a different key the
// refresh is considered done.
type Refresher interface {
	Refresh(ctx context.Context, stale string) bool
}

// OpsReporter receives operator notices about failed refreshes.
type OpsReporter interface {
	NotifyOps(ctx context.Context, subject, body string)
}

// BundleScanner recovers the key from the provider's own web client: the
// service-worker manifest names the main bundle, and the first UUID-shaped
// literal in that bundle is the key. This tracks an undocumented client and
// is expected to break when the provider changes its build.
type BundleScanner struct {
	client *http.Client
	appURL string
	store  *Store
	logger *zap.Logger
	ops    OpsReporter
	group  singleflight.Group
}

func NewBundleScanner(client *http.Client, appURL string, store *Store, logger *zap.Logger, ops OpsReporter) *BundleScanner {
	return &BundleScanner{
		client: client,
		appURL: strings.TrimRight(appURL, "/"),
		store:  store,
		logger: logger,
		ops:    ops,
	}
}

func (b *BundleScanner) Refresh(ctx context.Context, stale string) bool {
	if b.store.Read() != stale {
		return true
	}

	v, _, _ := b.group.Do("refresh", func() (interface{}, error) {
		if b.store.Read() != stale {
			return true, nil
		}

		// Callers share this attempt, so one of them going away must not cancel it.
		shared, cancel := context.WithTimeout(context.WithoutCancel(ctx), refreshTimeout)
		defer cancel()

		key, err := b.discover(shared)
		if err == nil && strings.EqualFold(key, stale) {
			err = fmt.Errorf("bundle still carries the rejected key")
		}
		if err != nil {
			b.logger.Warn("credential refresh failed, keeping previous key", zap.String("app_url", b.appURL), zap.Error(err))
			if b.ops != nil {
				b.ops.NotifyOps(shared, "Tee time credential refresh failed",
					fmt.Sprintf("Refreshing the API key from %s failed: %v. The previous key was kept.", b.appURL, err))
			}
			return false, nil
		}

		b.store.Set(key)
		b.logger.Info("credential refreshed", zap.String("app_url", b.appURL))
		return true, nil
	})
	ok, _ := v.(bool)
	return ok
}

type swManifest struct {
	AssetGroups []struct {
		URLs []string `json:"urls"`
	} `json:"assetGroups"`
	HashTable map[string]string `json:"hashTable"`
}

func (b *BundleScanner) discover(ctx context.Context) (string, error) {
	manifest, err := b.get(ctx, b.appURL+"/ngsw.json")
	if err != nil {
		return "", fmt.Errorf("fetch manifest: %w", err)
	}

	bundlePath := findMainBundle(manifest)
	if bundlePath == "" {
		return "", fmt.Errorf("no main bundle listed in manifest")
	}

	base, err := url.Parse(b.appURL + "/")
	if err != nil {
		return "", err
	}
	ref, err := url.Parse(bundlePath)
	if err != nil {
		return "", fmt.Errorf("bundle path %q: %w", bundlePath, err)
	}

	bundle, err := b.get(ctx, base.ResolveReference(ref).String())
	if err != nil {
		return "", fmt.Errorf("fetch bundle: %w", err)
	}

	key := ScanForKey(bundle)
	if key == "" {
		return "", fmt.Errorf("no UUID-shaped key in %s", bundlePath)
	}
	return key, nil
}

func (b *BundleScanner) get(ctx context.Context, target string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "*/*")

	resp, err := b.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("GET %s: status %d", target, resp.StatusCode)
	}
	return io.ReadAll(io.LimitReader(resp.Body, maxBundleBytes))
}

func findMainBundle(manifest []byte) string {
	var m swManifest
	if err := json.Unmarshal(manifest, &m); err == nil {
		for _, g := range m.AssetGroups {
			for _, u := range g.URLs {
				if isMainBundle(u) {
					return u
				}
			}
		}
		for u := range m.HashTable {
			if isMainBundle(u) {
				return u
			}
		}
	}
	return mainBundlePattern.FindString(string(manifest))
}

func isMainBundle(path string) bool {
	name := path[strings.LastIndex(path, "/")+1:]
	return mainBundlePattern.MatchString(name) && strings.HasPrefix(name, "main")
}

// ScanForKey returns the first UUID-shaped substring of text, or "".
func ScanForKey(text []byte) string {
	for _, m := range uuidPattern.FindAll(text, -1) {
		if _, err := uuid.Parse(string(m)); err == nil {
			return string(m)
		}
	}
	return ""
}
