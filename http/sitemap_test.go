package http_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"regexp"
	"strings"
	"testing"

	"github.com/fwojciec/viking"
	vikinghttp "github.com/fwojciec/viking/http"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSitemapService_DiscoverPages_FromRobotsTxt(t *testing.T) {
	t.Parallel()

	robotsTxt := `User-agent: *
Disallow: /private/
Sitemap: {{BASE}}/sitemap-files.xml
`
	sitemapXML := `<?xml version="1.0" encoding="UTF-8"?>
<urlset xmlns="http://www.sitemaps.org/schemas/sitemap/0.9">
  <url><loc>{{BASE}}/f/AbC123</loc></url>
  <url><loc>{{BASE}}/f/XyZ789</loc></url>
</urlset>`

	srv := newTestServer(t, map[string]string{
		"/robots.txt":        robotsTxt,
		"/sitemap-files.xml": sitemapXML,
	})
	defer srv.Close()

	svc := vikinghttp.NewSitemapService(srv.Client())
	urls, err := svc.DiscoverPages(context.Background(), srv.URL, nil)

	require.NoError(t, err)
	assert.Equal(t, []string{srv.URL + "/f/AbC123", srv.URL + "/f/XyZ789"}, urls)
}

func TestSitemapService_DiscoverPages_FallbackToSitemapXML(t *testing.T) {
	t.Parallel()

	sitemapXML := `<?xml version="1.0" encoding="UTF-8"?>
<urlset xmlns="http://www.sitemaps.org/schemas/sitemap/0.9">
  <url><loc>{{BASE}}/f/one</loc></url>
</urlset>`

	srv := newTestServer(t, map[string]string{
		"/sitemap.xml": sitemapXML,
	})
	defer srv.Close()

	svc := vikinghttp.NewSitemapService(srv.Client())
	urls, err := svc.DiscoverPages(context.Background(), srv.URL+"/some/page", nil)

	require.NoError(t, err)
	assert.Equal(t, []string{srv.URL + "/f/one"}, urls)
}

func TestSitemapService_DiscoverPages_DirectSitemapURL(t *testing.T) {
	t.Parallel()

	sitemapXML := `<?xml version="1.0" encoding="UTF-8"?>
<urlset xmlns="http://www.sitemaps.org/schemas/sitemap/0.9">
  <url><loc>{{BASE}}/f/direct</loc></url>
</urlset>`

	srv := newTestServer(t, map[string]string{
		"/robots.txt":      "Sitemap: {{BASE}}/other.xml\n",
		"/files/index.xml": sitemapXML,
	})
	defer srv.Close()

	svc := vikinghttp.NewSitemapService(srv.Client())
	urls, err := svc.DiscoverPages(context.Background(), srv.URL+"/files/index.xml", nil)

	require.NoError(t, err)
	assert.Equal(t, []string{srv.URL + "/f/direct"}, urls)
}

func TestSitemapService_DiscoverPages_SitemapIndex(t *testing.T) {
	t.Parallel()

	sitemapIndex := `<?xml version="1.0" encoding="UTF-8"?>
<sitemapindex xmlns="http://www.sitemaps.org/schemas/sitemap/0.9">
  <sitemap><loc>{{BASE}}/sitemap-1.xml</loc></sitemap>
  <sitemap><loc>{{BASE}}/sitemap-2.xml</loc></sitemap>
  <sitemap><loc>{{BASE}}/sitemap-1.xml</loc></sitemap>
</sitemapindex>`

	sitemap1 := `<urlset><url><loc>{{BASE}}/f/a</loc></url><url><loc>{{BASE}}/f/b</loc></url></urlset>`
	sitemap2 := `<urlset><url><loc>{{BASE}}/f/b</loc></url><url><loc> {{BASE}}/f/c </loc></url><url></url></urlset>`

	srv := newTestServer(t, map[string]string{
		"/sitemap.xml":   sitemapIndex,
		"/sitemap-1.xml": sitemap1,
		"/sitemap-2.xml": sitemap2,
	})
	defer srv.Close()

	svc := vikinghttp.NewSitemapService(srv.Client())
	urls, err := svc.DiscoverPages(context.Background(), srv.URL, nil)

	require.NoError(t, err)
	assert.Equal(t, []string{srv.URL + "/f/a", srv.URL + "/f/b", srv.URL + "/f/c"}, urls)
}

func TestSitemapService_DiscoverPages_WithFilter(t *testing.T) {
	t.Parallel()

	sitemapXML := `<urlset>
  <url><loc>{{BASE}}/f/AbC123</loc></url>
  <url><loc>{{BASE}}/about</loc></url>
  <url><loc>{{BASE}}/f/AbC123/comments</loc></url>
</urlset>`

	srv := newTestServer(t, map[string]string{
		"/sitemap.xml": sitemapXML,
	})
	defer srv.Close()

	filter := &viking.URLFilter{Include: []*regexp.Regexp{viking.FilePagePattern}}

	svc := vikinghttp.NewSitemapService(srv.Client())
	urls, err := svc.DiscoverPages(context.Background(), srv.URL, filter)

	require.NoError(t, err)
	assert.Equal(t, []string{srv.URL + "/f/AbC123"}, urls)
}

func TestSitemapService_DiscoverPages_NoSitemap(t *testing.T) {
	t.Parallel()

	srv := newTestServer(t, map[string]string{})
	defer srv.Close()

	svc := vikinghttp.NewSitemapService(srv.Client())
	urls, err := svc.DiscoverPages(context.Background(), srv.URL, nil)

	require.NoError(t, err)
	assert.NotNil(t, urls)
	assert.Empty(t, urls)
}

func TestSitemapService_DiscoverPages_MalformedXML(t *testing.T) {
	t.Parallel()

	srv := newTestServer(t, map[string]string{
		"/sitemap.xml": "<urlset><url>",
	})
	defer srv.Close()

	svc := vikinghttp.NewSitemapService(srv.Client())
	_, err := svc.DiscoverPages(context.Background(), srv.URL, nil)

	assert.Equal(t, viking.EMALFORMED, viking.ErrorCode(err))
}

func TestSitemapService_DiscoverPages_InvalidSiteURL(t *testing.T) {
	t.Parallel()

	svc := vikinghttp.NewSitemapService(nil)
	_, err := svc.DiscoverPages(context.Background(), "vikingfile.com", nil)

	assert.Equal(t, viking.EINVALID, viking.ErrorCode(err))
}

func TestSitemapService_DiscoverPages_ContextCanceled(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	svc := vikinghttp.NewSitemapService(nil)
	_, err := svc.DiscoverPages(ctx, "https://vikingfile.com", nil)

	assert.ErrorIs(t, err, context.Canceled)
}

func newTestServer(t *testing.T, content map[string]string) *httptest.Server {
	t.Helper()

	var srv *httptest.Server
	srv = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, ok := content[r.URL.Path]
		if !ok {
			http.NotFound(w, r)
			return
		}
		body = strings.ReplaceAll(body, "{{BASE}}", srv.URL)

		if r.URL.Path == "/robots.txt" {
			w.Header().Set("Content-Type", "text/plain")
		} else {
			w.Header().Set("Content-Type", "application/xml")
		}
		_, _ = w.Write([]byte(body))
	}))

	return srv
}
