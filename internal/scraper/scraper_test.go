package scraper

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pauljones0/free-asset-notifier/internal/config"
)

const detailPage = `<!DOCTYPE html>
<html><body>
	<div data-test="price"><span><s>$49.99</s></span><span>$24.99</span></div>
</body></html>`

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/publisher-sale":
			if r.Header.Get("User-Agent") != "test-agent" {
				t.Errorf("Expected User-Agent test-agent, got %q", r.Header.Get("User-Agent"))
			}
			fmt.Fprint(w, promotionPage)
		case "/packages/3d/environments/farm-1234":
			fmt.Fprint(w, detailPage)
		case "/empty":
			fmt.Fprint(w, `<html><body><p>Nothing this week</p></body></html>`)
		default:
			http.NotFound(w, r)
		}
	}))
	t.Cleanup(srv.Close)
	return srv
}

func testConfig(t *testing.T, srv *httptest.Server, path string) *config.Config {
	t.Helper()
	u, err := url.Parse(srv.URL)
	require.NoError(t, err)
	return &config.Config{
		PromotionURL:   srv.URL + path,
		SiteOrigin:     srv.URL,
		AllowedDomains: []string{u.Hostname()},
		FetchMode:      config.FetchModeHTTP,
		HTTPTimeout:    5 * time.Second,
		UserAgent:      "test-agent",
	}
}

func TestClient_FetchPromotion(t *testing.T) {
	srv := newTestServer(t)
	c := New(testConfig(t, srv, "/publisher-sale"), DefaultSelectors())

	rec, err := c.FetchPromotion(context.Background())
	require.NoError(t, err)
	require.NotNil(t, rec)

	assert.Equal(t, "Polygon Farm Pack", rec.Name)
	assert.Equal(t, srv.URL+"/packages/3d/environments/farm-1234", rec.ClaimURL, "claim URL resolved and tracking stripped")
	assert.Equal(t, "https://cdn.example.com/farm.jpg", rec.ImageURL)
	assert.Equal(t, "FARMFREE", rec.PromoCode)

	assert.Equal(t, 24.99, c.FetchPrice(context.Background(), rec.ClaimURL))
	assert.Equal(t, 24.99, c.FetchPrice(context.Background(), "/packages/3d/environments/farm-1234"), "relative page URL")
}

func TestClient_FetchPromotion_NoBlock(t *testing.T) {
	srv := newTestServer(t)
	c := New(testConfig(t, srv, "/empty"), DefaultSelectors())

	rec, err := c.FetchPromotion(context.Background())
	assert.NoError(t, err)
	assert.Nil(t, rec)
}

func TestClient_FetchPromotion_TransportErrors(t *testing.T) {
	srv := newTestServer(t)

	t.Run("non-200 status", func(t *testing.T) {
		c := New(testConfig(t, srv, "/gone"), DefaultSelectors())
		rec, err := c.FetchPromotion(context.Background())
		require.Error(t, err)
		assert.Contains(t, err.Error(), "status code 404")
		assert.Nil(t, rec)
	})

	t.Run("host not allowed", func(t *testing.T) {
		cfg := testConfig(t, srv, "/publisher-sale")
		cfg.AllowedDomains = []string{"assetstore.unity.com"}
		_, err := New(cfg, DefaultSelectors()).FetchPromotion(context.Background())
		require.Error(t, err)
		assert.Contains(t, err.Error(), "allowlist")
	})

	t.Run("bad scheme", func(t *testing.T) {
		cfg := testConfig(t, srv, "")
		cfg.PromotionURL = "file:///etc/passwd"
		_, err := New(cfg, DefaultSelectors()).FetchPromotion(context.Background())
		require.Error(t, err)
	})
}

func TestClient_FetchPrice_Failures(t *testing.T) {
	srv := newTestServer(t)
	c := New(testConfig(t, srv, "/publisher-sale"), DefaultSelectors())

	assert.Equal(t, 0.0, c.FetchPrice(context.Background(), ""))
	assert.Equal(t, 0.0, c.FetchPrice(context.Background(), srv.URL+"/missing"))
	assert.Equal(t, 0.0, c.FetchPrice(context.Background(), srv.URL+"/empty"))
}

func TestLoadConfig(t *testing.T) {
	t.Run("embedded", func(t *testing.T) {
		assert.Equal(t, DefaultSelectors(), LoadConfig(""))
	})

	t.Run("external file fills gaps from defaults", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "selectors.json")
		require.NoError(t, os.WriteFile(path, []byte(`{"promotion":{"root":"#main div.z-10","name":"h3"}}`), 0o644))

		sel := LoadConfig(path)
		assert.Equal(t, "#main div.z-10", sel.Promotion.Root)
		assert.Equal(t, "h3", sel.Promotion.Name)
		assert.Equal(t, DefaultSelectors().Promotion.Image, sel.Promotion.Image)
		assert.Equal(t, DefaultSelectors().Price, sel.Price)
	})

	t.Run("broken external file falls back", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "selectors.json")
		require.NoError(t, os.WriteFile(path, []byte(`{"promotion":{}}`), 0o644))
		assert.Equal(t, DefaultSelectors(), LoadConfig(path))
	})
}
