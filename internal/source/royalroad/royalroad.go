// Package royalroad implements the source contract for royalroad.com.
package royalroad

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"github.com/shelfkeeper/shelfkeeper/internal/errs"
	"github.com/shelfkeeper/shelfkeeper/internal/logger"
	"github.com/shelfkeeper/shelfkeeper/internal/models"
	"github.com/shelfkeeper/shelfkeeper/internal/source"
)

const (
	host       = "https://www.royalroad.com"
	searchPath = "/fictions/search?title="

	// noCoverPath is the provider's placeholder image for books without a
	// real cover. It must be normalized to absent, never treated as a cover.
	noCoverPath = "/dist/img/nocover-new-min.png"
)

func init() {
	source.Register("royalroad", func(opts source.Options) source.Source {
		return New(host, opts)
	})
}

// Client scrapes royalroad.com.
type Client struct {
	baseURL   string
	client    *http.Client
	userAgent string
	log       *logger.Logger
}

// New creates a client against the given base URL. Production code goes
// through source.Create; tests point baseURL at an httptest server.
func New(baseURL string, opts source.Options) *Client {
	httpClient := opts.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 30 * time.Second}
	}
	return &Client{
		baseURL:   strings.TrimSuffix(baseURL, "/"),
		client:    httpClient,
		userAgent: opts.UserAgent,
		log:       logger.Component("royalroad"),
	}
}

// Name implements source.Source.
func (c *Client) Name() string {
	return "royalroad"
}

// Search queries the fiction search page and returns one canonical book URL
// per result, in document order. A result page without entries is a valid
// empty result.
func (c *Client) Search(ctx context.Context, term string) ([]string, error) {
	url := c.baseURL + searchPath + strings.ReplaceAll(term, " ", "+")

	doc, err := c.document(ctx, url)
	if err != nil {
		return nil, err
	}

	var results []string
	doc.Find(".fiction-list-item").Each(func(_ int, item *goquery.Selection) {
		href, ok := item.Find("h2 a").First().Attr("href")
		if !ok {
			return
		}
		results = append(results, c.absolute(href))
	})

	c.log.Debug().Str("term", term).Int("results", len(results)).Msg("Search complete")
	return results, nil
}

// ScrapeBook fetches and parses a book page. The name is required; the cover
// is optional and the provider's placeholder cover counts as no cover.
func (c *Client) ScrapeBook(ctx context.Context, url string) (models.Book, error) {
	doc, err := c.document(ctx, url)
	if err != nil {
		return models.Book{}, err
	}

	name := strings.TrimSpace(doc.Find("h1.font-white").First().Text())
	if name == "" {
		return models.Book{}, errs.Errorf(errs.ProviderMissing, "royalroad.ScrapeBook", "failed to retrieve name from %s", url)
	}

	image, _ := doc.Find(".thumbnail").First().Attr("src")
	if image == noCoverPath {
		image = ""
	}

	return models.Book{
		Source: c.Name(),
		URL:    url,
		Name:   name,
		Image:  image,
	}, nil
}

// ScrapeChapter fetches one chapter's metadata and the link to the next
// chapter. An absent next link means the chain ends here.
func (c *Client) ScrapeChapter(ctx context.Context, url string) (models.Chapter, string, error) {
	doc, err := c.document(ctx, url)
	if err != nil {
		return models.Chapter{}, "", err
	}

	name := strings.TrimSpace(doc.Find(".break-word").First().Text())

	// The next-chapter anchor is identified by the chevron icon inside it.
	next := ""
	if href, ok := doc.Find("i.far.fa-chevron-double-right.ml-3").First().Parent().Attr("href"); ok {
		next = c.absolute(href)
	}

	return models.Chapter{Name: name, URL: url}, next, nil
}

// DownloadChapter fetches the chapter body: every paragraph inside the
// content container, in document order, each prefixed with a newline.
func (c *Client) DownloadChapter(ctx context.Context, ch models.Chapter) (string, error) {
	if ch.URL == "" {
		return "", errs.Errorf(errs.Precondition, "royalroad.DownloadChapter", "chapter has no url")
	}

	doc, err := c.document(ctx, ch.URL)
	if err != nil {
		return "", err
	}

	content := doc.Find(".chapter-content")
	if content.Length() == 0 {
		return "", errs.Errorf(errs.ProviderParse, "royalroad.DownloadChapter", "no chapter content found at %s", ch.URL)
	}

	var body strings.Builder
	content.Find("p").Each(func(_ int, p *goquery.Selection) {
		body.WriteString("\n")
		body.WriteString(p.Text())
	})
	return body.String(), nil
}

// DownloadCover fetches the raw cover image bytes for a book.
func (c *Client) DownloadCover(ctx context.Context, b models.Book) ([]byte, error) {
	if !b.HasCover() {
		return nil, errs.Errorf(errs.Precondition, "royalroad.DownloadCover", "book %s has no image url", b.URL)
	}

	resp, err := c.get(ctx, b.Image)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, errs.E(errs.ProviderNetwork, "royalroad.DownloadCover", err)
	}
	return data, nil
}

// absolute prefixes provider-relative hrefs with the base URL.
func (c *Client) absolute(href string) string {
	if strings.HasPrefix(href, "/") {
		return c.baseURL + href
	}
	return href
}

func (c *Client) get(ctx context.Context, url string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, errs.E(errs.ProviderNetwork, "royalroad.get", err)
	}
	if c.userAgent != "" {
		req.Header.Set("User-Agent", c.userAgent)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, errs.E(errs.ProviderNetwork, "royalroad.get", err)
	}
	if resp.StatusCode != http.StatusOK {
		resp.Body.Close()
		return nil, errs.E(errs.ProviderNetwork, "royalroad.get", fmt.Errorf("unexpected status code %d for %s", resp.StatusCode, url))
	}
	return resp, nil
}

func (c *Client) document(ctx context.Context, url string) (*goquery.Document, error) {
	resp, err := c.get(ctx, url)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return nil, errs.E(errs.ProviderParse, "royalroad.document", err)
	}
	return doc, nil
}
