package extract_test

import (
	"encoding/json"
	"sync"
	"testing"

	"github.com/fwojciec/viking"
	"github.com/fwojciec/viking/extract"
	"github.com/fwojciec/viking/goquery"
	"github.com/fwojciec/viking/mock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const pageURL = "https://vikingfile.com/f/AbC123"

func newEngine(t *testing.T, cfg viking.Config) *extract.Engine {
	t.Helper()
	engine, err := extract.NewEngine(goquery.NewParser(), cfg)
	require.NoError(t, err)
	return engine
}

func TestEngine_Extract(t *testing.T) {
	t.Parallel()

	t.Run("classifies a direct file and a drive mirror", func(t *testing.T) {
		t.Parallel()

		html := `<!DOCTYPE html>
<html>
<body>
	<a href="https://cdn.example/video.mkv">Download 1080p MKV</a>
	<a href="https://drive.google.com/file/d/XYZ/view"></a>
</body>
</html>`

		result, err := newEngine(t, viking.Config{}).Extract(html, pageURL)

		require.NoError(t, err)
		require.Len(t, result.DownloadLinks, 2)
		assert.Equal(t, viking.DownloadLink{
			URL:      "https://cdn.example/video.mkv",
			Source:   viking.SourceDirect,
			Quality:  viking.String("1080p"),
			FileType: viking.String("mkv"),
		}, result.DownloadLinks[0])
		assert.Equal(t, viking.DownloadLink{
			URL:    "https://drive.google.com/file/d/XYZ/view",
			Source: "drive.google",
		}, result.DownloadLinks[1])
	})

	t.Run("serializes missing fields as null", func(t *testing.T) {
		t.Parallel()

		html := `<body>
	<a href="https://cdn.example/video.mkv">Download 1080p MKV</a>
	<a href="https://drive.google.com/file/d/XYZ/view"></a>
</body>`

		result, err := newEngine(t, viking.Config{}).Extract(html, pageURL)
		require.NoError(t, err)

		data, err := json.Marshal(result)
		require.NoError(t, err)

		assert.JSONEq(t, `{
			"file_id": "AbC123",
			"file_name": null,
			"file_size": null,
			"upload_date": null,
			"download_links": [
				{"url": "https://cdn.example/video.mkv", "source": "direct", "quality": "1080p", "file_size": null, "file_type": "mkv"},
				{"url": "https://drive.google.com/file/d/XYZ/view", "source": "drive.google", "quality": null, "file_size": null, "file_type": null}
			],
			"page_url": "https://vikingfile.com/f/AbC123"
		}`, string(data))
	})

	t.Run("returns an empty result for an empty document", func(t *testing.T) {
		t.Parallel()

		result, err := newEngine(t, viking.Config{}).Extract("", pageURL)

		require.NoError(t, err)
		assert.NotNil(t, result.DownloadLinks)
		assert.Empty(t, result.DownloadLinks)
		assert.Nil(t, result.FileName)
		assert.Nil(t, result.FileSize)
		assert.Nil(t, result.UploadDate)
		assert.Equal(t, "AbC123", result.FileID)

		data, err := json.Marshal(result)
		require.NoError(t, err)
		assert.Contains(t, string(data), `"download_links":[]`)
	})

	t.Run("returns no links for a page without recognizable links", func(t *testing.T) {
		t.Parallel()

		html := `<html><body>
	<nav><a href="/">Home</a><a href="/about">About</a></nav>
	<p>Nothing to see here.</p>
	<a href="mailto:admin@example.com">Contact</a>
</body></html>`

		result, err := newEngine(t, viking.Config{}).Extract(html, pageURL)

		require.NoError(t, err)
		assert.Empty(t, result.DownloadLinks)
	})

	t.Run("merges duplicate links found by different strategies", func(t *testing.T) {
		t.Parallel()

		html := `<body>
	<a class="btn" href="https://pixeldrain.com/u/abc123">Download 720p</a>
	<div class="mirrors">
		<a href="https://pixeldrain.com/u/abc123/#mirror">Mirror 1.2 GB</a>
	</div>
</body>`

		result, err := newEngine(t, viking.Config{}).Extract(html, pageURL)

		require.NoError(t, err)
		require.Len(t, result.DownloadLinks, 1)
		link := result.DownloadLinks[0]
		assert.Equal(t, "https://pixeldrain.com/u/abc123", link.URL)
		assert.Equal(t, "pixeldrain", link.Source)
		assert.Equal(t, viking.String("720p"), link.Quality)
		assert.Equal(t, viking.String("1.2 GB"), link.FileSize)
		assert.Nil(t, link.FileType)
	})

	t.Run("prefers host label over direct for media on a known host", func(t *testing.T) {
		t.Parallel()

		html := `<body><a href="https://streamtape.com/v/xyz/movie.mp4">Watch</a></body>`

		result, err := newEngine(t, viking.Config{}).Extract(html, pageURL)

		require.NoError(t, err)
		require.Len(t, result.DownloadLinks, 1)
		assert.Equal(t, "streamtape", result.DownloadLinks[0].Source)
		assert.Equal(t, viking.String("mp4"), result.DownloadLinks[0].FileType)
	})

	t.Run("labels host regardless of discovery strategy", func(t *testing.T) {
		t.Parallel()

		html := `<body>
	<a href="https://gofile.io/d/one">Download</a>
	<a href="https://hubcloud.day/drive/two">Mirror</a>
</body>`

		result, err := newEngine(t, viking.Config{}).Extract(html, pageURL)

		require.NoError(t, err)
		require.Len(t, result.DownloadLinks, 2)
		assert.Equal(t, "gofile", result.DownloadLinks[0].Source)
		assert.Equal(t, "hubcloud", result.DownloadLinks[1].Source)
	})

	t.Run("resolves relative links against the page URL", func(t *testing.T) {
		t.Parallel()

		html := `<body><a href="/download/AbC123/movie.mp4">Download</a></body>`

		result, err := newEngine(t, viking.Config{}).Extract(html, pageURL)

		require.NoError(t, err)
		require.Len(t, result.DownloadLinks, 1)
		assert.Equal(t, "https://vikingfile.com/download/AbC123/movie.mp4", result.DownloadLinks[0].URL)
		assert.Equal(t, "viking", result.DownloadLinks[0].Source)
	})

	t.Run("drops unresolvable links without failing", func(t *testing.T) {
		t.Parallel()

		html := `<body>
	<a href="http://[::1:bad/file.mp4">Download broken</a>
	<a href="https://mega.nz/file/abc">Download</a>
</body>`

		result, err := newEngine(t, viking.Config{}).Extract(html, pageURL)

		require.NoError(t, err)
		require.Len(t, result.DownloadLinks, 1)
		assert.Equal(t, "mega", result.DownloadLinks[0].Source)
	})

	t.Run("labels download buttons on unknown hosts as unknown", func(t *testing.T) {
		t.Parallel()

		html := `<body><a href="https://files.example.net/get?id=9">Download now</a></body>`

		result, err := newEngine(t, viking.Config{}).Extract(html, pageURL)

		require.NoError(t, err)
		require.Len(t, result.DownloadLinks, 1)
		assert.Equal(t, viking.SourceUnknown, result.DownloadLinks[0].Source)
	})

	t.Run("produces byte-identical output on repeated runs", func(t *testing.T) {
		t.Parallel()

		html := `<html><head><title>Movie.2023.1080p.mkv</title></head><body>
	<span class="size">2.4 GB</span>
	<time datetime="2024-01-31">31 Jan</time>
	<a href="https://pixeldrain.com/u/a">Download 1080p</a>
	<a href="https://gdtot.pro/file/b">GDTot</a>
	<video src="https://cdn.example/stream/master.m3u8"></video>
</body></html>`

		engine := newEngine(t, viking.Config{})

		first, err := engine.Extract(html, pageURL)
		require.NoError(t, err)
		second, err := engine.Extract(html, pageURL)
		require.NoError(t, err)

		a, err := json.Marshal(first)
		require.NoError(t, err)
		b, err := json.Marshal(second)
		require.NoError(t, err)
		assert.Equal(t, string(a), string(b))
	})

	t.Run("extracts page metadata", func(t *testing.T) {
		t.Parallel()

		html := `<html><head><title>Viking File</title></head><body>
	<h1 class="file-name">Movie.2023.1080p.WEB-DL.mkv</h1>
	<div class="file-info">
		<span class="size">Size: 2.4 GB</span>
		<span class="date">Uploaded 2024-01-31</span>
	</div>
</body></html>`

		result, err := newEngine(t, viking.Config{}).Extract(html, pageURL)

		require.NoError(t, err)
		assert.Equal(t, viking.String("Movie.2023.1080p.WEB-DL.mkv"), result.FileName)
		assert.Equal(t, viking.String("2.4 GB"), result.FileSize)
		assert.Equal(t, viking.String("2024-01-31"), result.UploadDate)
	})

	t.Run("returns malformed error for binary input", func(t *testing.T) {
		t.Parallel()

		_, err := newEngine(t, viking.Config{}).Extract("<html>\x00\x01</html>", pageURL)

		require.Error(t, err)
		assert.Equal(t, viking.EMALFORMED, viking.ErrorCode(err))
	})

	t.Run("keeps links on a windows-1252 page", func(t *testing.T) {
		t.Parallel()

		html := "<h1>Film caf\xe9.mkv</h1><a href=\"https://drive.google.com/file/d/XYZ/view\"></a>"

		result, err := newEngine(t, viking.Config{}).Extract(html, pageURL)

		require.NoError(t, err)
		assert.Equal(t, viking.String("Film café.mkv"), result.FileName)
		require.Len(t, result.DownloadLinks, 1)
		assert.Equal(t, "drive.google", result.DownloadLinks[0].Source)
	})

	t.Run("returns invalid error for a relative page URL", func(t *testing.T) {
		t.Parallel()

		_, err := newEngine(t, viking.Config{}).Extract("<html></html>", "/f/AbC123")

		require.Error(t, err)
		assert.Equal(t, viking.EINVALID, viking.ErrorCode(err))
	})

	t.Run("returns parser errors unchanged", func(t *testing.T) {
		t.Parallel()

		parser := &mock.Parser{
			ParseFn: func(html string) (viking.Document, error) {
				return nil, viking.Errorf(viking.EMALFORMED, "unterminated document")
			},
		}
		engine, err := extract.NewEngine(parser, viking.Config{})
		require.NoError(t, err)

		_, err = engine.Extract("<html", pageURL)

		assert.Equal(t, viking.EMALFORMED, viking.ErrorCode(err))
		assert.Equal(t, "unterminated document", viking.ErrorMessage(err))
	})
}

func TestEngine_Extract_Config(t *testing.T) {
	t.Parallel()

	t.Run("extra source patterns take precedence over built-ins", func(t *testing.T) {
		t.Parallel()

		engine := newEngine(t, viking.Config{
			ExtraSourcePatterns: []viking.HostPattern{
				{Pattern: "cdn.example", Label: "example-cdn"},
				{Pattern: "drive.google.com/uc", Label: "drive-direct"},
			},
		})
		html := `<body>
	<a href="https://cdn.example/video.mkv">Download</a>
	<a href="https://drive.google.com/uc?id=1">Mirror</a>
</body>`

		result, err := engine.Extract(html, pageURL)

		require.NoError(t, err)
		require.Len(t, result.DownloadLinks, 2)
		assert.Equal(t, "example-cdn", result.DownloadLinks[0].Source)
		assert.Equal(t, "drive-direct", result.DownloadLinks[1].Source)
	})

	t.Run("extra media extensions enable direct discovery", func(t *testing.T) {
		t.Parallel()

		engine := newEngine(t, viking.Config{ExtraMediaExtensions: []string{".ISO"}})
		html := `<body><a href="https://mirror.example/disc.iso">Disc image</a></body>`

		result, err := engine.Extract(html, pageURL)

		require.NoError(t, err)
		require.Len(t, result.DownloadLinks, 1)
		assert.Equal(t, viking.SourceDirect, result.DownloadLinks[0].Source)
		assert.Equal(t, viking.String("iso"), result.DownloadLinks[0].FileType)
	})

	t.Run("quality vocabulary replaces the built-in markers", func(t *testing.T) {
		t.Parallel()

		engine := newEngine(t, viking.Config{QualityVocabulary: []string{"HQ"}})
		html := `<body><a href="https://cdn.example/a.mp4">Download 1080p hq</a></body>`

		result, err := engine.Extract(html, pageURL)

		require.NoError(t, err)
		require.Len(t, result.DownloadLinks, 1)
		assert.Equal(t, viking.String("HQ"), result.DownloadLinks[0].Quality)
	})

	t.Run("rejects invalid config", func(t *testing.T) {
		t.Parallel()

		_, err := extract.NewEngine(goquery.NewParser(), viking.Config{
			ExtraSourcePatterns: []viking.HostPattern{{Pattern: "x.example", Label: "direct"}},
		})

		require.Error(t, err)
		assert.Equal(t, viking.EINVALID, viking.ErrorCode(err))
	})
}

func TestEngine_Extract_Concurrent(t *testing.T) {
	t.Parallel()

	engine := newEngine(t, viking.Config{})
	pages := []string{
		`<body><h1>Movie.2023.1080p.mkv</h1><a href="https://cdn.example/video.mkv">Download 1080p MKV</a></body>`,
		`<body><a href="https://drive.google.com/file/d/XYZ/view">Mirror</a><a href="https://pixeldrain.com/u/abc">Download 720p</a></body>`,
		`<body><video src="/media/clip.mp4"></video><span class="size">700 MB</span></body>`,
	}

	want := make([]string, len(pages))
	for i, html := range pages {
		result, err := engine.Extract(html, pageURL)
		require.NoError(t, err)
		data, err := json.Marshal(result)
		require.NoError(t, err)
		want[i] = string(data)
	}

	const workers = 8
	got := make([][]string, workers)
	errs := make([]error, workers)
	var wg sync.WaitGroup
	for w := range workers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range pages {
				html := pages[(i+w)%len(pages)]
				result, err := engine.Extract(html, pageURL)
				if err != nil {
					errs[w] = err
					return
				}
				data, err := json.Marshal(result)
				if err != nil {
					errs[w] = err
					return
				}
				got[w] = append(got[w], string(data))
			}
		}()
	}
	wg.Wait()

	for w := range workers {
		require.NoError(t, errs[w])
		require.Len(t, got[w], len(pages))
		for i := range pages {
			assert.JSONEq(t, want[(i+w)%len(pages)], got[w][i], "worker %d page %d", w, i)
		}
	}
}
