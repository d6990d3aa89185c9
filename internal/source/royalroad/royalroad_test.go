package royalroad

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shelfkeeper/shelfkeeper/internal/errs"
	"github.com/shelfkeeper/shelfkeeper/internal/models"
	"github.com/shelfkeeper/shelfkeeper/internal/source"
)

func newTestClient(handler http.Handler) (*Client, *httptest.Server) {
	server := httptest.NewServer(handler)
	client := New(server.URL, source.Options{HTTPClient: server.Client(), UserAgent: "test-agent"})
	return client, server
}

const searchPage = `<html><body>
<div class="fiction-list">
  <div class="fiction-list-item">
    <h2><a href="/fiction/1/first-book">First Book</a></h2>
  </div>
  <div class="fiction-list-item">
    <h2><a href="/fiction/2/second-book">Second Book</a></h2>
  </div>
</div>
</body></html>`

func TestSearch(t *testing.T) {
	client, server := newTestClient(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/fictions/search", r.URL.Path)
		// "+" decodes to a space in the query string.
		assert.Equal(t, "foo bar", r.URL.Query().Get("title"))
		assert.Equal(t, "test-agent", r.Header.Get("User-Agent"))
		w.Write([]byte(searchPage))
	}))
	defer server.Close()

	urls, err := client.Search(context.Background(), "foo bar")
	require.NoError(t, err)
	assert.Equal(t, []string{
		server.URL + "/fiction/1/first-book",
		server.URL + "/fiction/2/second-book",
	}, urls)
}

func TestSearchNoResultsIsNotAnError(t *testing.T) {
	client, server := newTestClient(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`<html><body><div class="fiction-list"></div></body></html>`))
	}))
	defer server.Close()

	urls, err := client.Search(context.Background(), "no matches")
	require.NoError(t, err)
	assert.Empty(t, urls)
}

func TestSearchServerError(t *testing.T) {
	client, server := newTestClient(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	_, err := client.Search(context.Background(), "foo")
	assert.True(t, errors.Is(err, errs.Sentinel(errs.ProviderNetwork)))
}

func TestScrapeBook(t *testing.T) {
	tests := []struct {
		name      string
		page      string
		wantName  string
		wantImage string
		wantKind  errs.Kind
	}{
		{
			name: "full page",
			page: `<html><body>
				<img class="thumbnail" src="https://cdn.example.com/cover.jpg">
				<h1 class="font-white">My Book</h1>
			</body></html>`,
			wantName:  "My Book",
			wantImage: "https://cdn.example.com/cover.jpg",
		},
		{
			name: "placeholder cover is normalized to absent",
			page: `<html><body>
				<img class="thumbnail" src="/dist/img/nocover-new-min.png">
				<h1 class="font-white">Coverless</h1>
			</body></html>`,
			wantName: "Coverless",
		},
		{
			name: "missing cover degrades to absent",
			page: `<html><body><h1 class="font-white">Plain</h1></body></html>`,
			wantName: "Plain",
		},
		{
			name:     "missing name is an error",
			page:     `<html><body><img class="thumbnail" src="x.jpg"></body></html>`,
			wantKind: errs.ProviderMissing,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client, server := newTestClient(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.Write([]byte(tt.page))
			}))
			defer server.Close()

			book, err := client.ScrapeBook(context.Background(), server.URL+"/fiction/1/book")
			if tt.wantKind != errs.KindUnknown {
				assert.True(t, errors.Is(err, errs.Sentinel(tt.wantKind)))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, "royalroad", book.Source)
			assert.Equal(t, server.URL+"/fiction/1/book", book.URL)
			assert.Equal(t, tt.wantName, book.Name)
			assert.Equal(t, tt.wantImage, book.Image)
		})
	}
}

func TestScrapeChapter(t *testing.T) {
	page := `<html><body>
		<h1 class="break-word">Chapter One</h1>
		<a class="btn" href="/fiction/1/book/chapter/2">
			Next <i class="far fa-chevron-double-right ml-3"></i>
		</a>
	</body></html>`

	client, server := newTestClient(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(page))
	}))
	defer server.Close()

	url := server.URL + "/fiction/1/book/chapter/1"
	ch, next, err := client.ScrapeChapter(context.Background(), url)
	require.NoError(t, err)
	assert.Equal(t, "Chapter One", ch.Name)
	assert.Equal(t, url, ch.URL)
	assert.Equal(t, server.URL+"/fiction/1/book/chapter/2", next)
}

func TestScrapeChapterLastInChain(t *testing.T) {
	client, server := newTestClient(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`<html><body><h1 class="break-word">Final</h1></body></html>`))
	}))
	defer server.Close()

	ch, next, err := client.ScrapeChapter(context.Background(), server.URL+"/chapter/99")
	require.NoError(t, err)
	assert.Equal(t, "Final", ch.Name)
	assert.Empty(t, next)
}

func TestDownloadChapter(t *testing.T) {
	page := `<html><body>
		<div class="chapter-content">
			<p>First paragraph.</p>
			<p>Second paragraph.</p>
		</div>
	</body></html>`

	client, server := newTestClient(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(page))
	}))
	defer server.Close()

	body, err := client.DownloadChapter(context.Background(), models.Chapter{URL: server.URL + "/chapter/1"})
	require.NoError(t, err)
	assert.Equal(t, "\nFirst paragraph.\nSecond paragraph.", body)
}

func TestDownloadChapterWithoutURL(t *testing.T) {
	client, server := newTestClient(http.NotFoundHandler())
	defer server.Close()

	_, err := client.DownloadChapter(context.Background(), models.Chapter{Name: "no url"})
	assert.True(t, errors.Is(err, errs.Sentinel(errs.Precondition)))
}

func TestDownloadChapterMissingContent(t *testing.T) {
	client, server := newTestClient(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`<html><body><p>not a chapter page</p></body></html>`))
	}))
	defer server.Close()

	_, err := client.DownloadChapter(context.Background(), models.Chapter{URL: server.URL + "/chapter/1"})
	assert.True(t, errors.Is(err, errs.Sentinel(errs.ProviderParse)))
}

func TestDownloadCover(t *testing.T) {
	client, server := newTestClient(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte{0xFF, 0xD8, 0xFF})
	}))
	defer server.Close()

	data, err := client.DownloadCover(context.Background(), models.Book{URL: "u", Image: server.URL + "/cover.jpg"})
	require.NoError(t, err)
	assert.Equal(t, []byte{0xFF, 0xD8, 0xFF}, data)
}

func TestDownloadCoverWithoutImage(t *testing.T) {
	client, server := newTestClient(http.NotFoundHandler())
	defer server.Close()

	_, err := client.DownloadCover(context.Background(), models.Book{URL: "u"})
	assert.True(t, errors.Is(err, errs.Sentinel(errs.Precondition)))
}

func TestRegisteredWithSourceRegistry(t *testing.T) {
	src, err := source.Create("royalroad", source.Options{})
	require.NoError(t, err)
	assert.Equal(t, "royalroad", src.Name())
}
