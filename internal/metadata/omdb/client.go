package omdb

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/moviweb/moviweb/internal/catalog/domain"
	pkgerrors "github.com/moviweb/moviweb/pkg/errors"
)

// notAvailable is the sentinel OMDb uses for absent fields.
const notAvailable = "N/A"

// Client is an OMDb API client.
type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
}

// NewClient creates a new OMDb client.
func NewClient(baseURL, apiKey string, timeout time.Duration) *Client {
	return &Client{
		baseURL: baseURL,
		apiKey:  apiKey,
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

// SearchResult is one candidate match from a title search.
type SearchResult struct {
	Title  string `json:"Title"`
	Year   string `json:"Year"`
	IMDBID string `json:"imdbID"`
	Type   string `json:"Type"`
	Poster string `json:"Poster"`
}

type searchResponse struct {
	Search   []SearchResult `json:"Search"`
	Response string         `json:"Response"`
	Error    string         `json:"Error"`
}

// Details is the OMDb detail record for a single movie.
type Details struct {
	Title      string `json:"Title"`
	Year       string `json:"Year"`
	Director   string `json:"Director"`
	Genre      string `json:"Genre"`
	Plot       string `json:"Plot"`
	Poster     string `json:"Poster"`
	IMDBRating string `json:"imdbRating"`
	IMDBID     string `json:"imdbID"`
	Response   string `json:"Response"`
	Error      string `json:"Error"`
}

// SearchID searches for a movie by title and returns the first match's
// external identifier. A service-reported miss or error payload yields a
// typed not-found error.
func (c *Client) SearchID(ctx context.Context, title string) (string, error) {
	params := url.Values{}
	params.Set("s", title)
	params.Set("apikey", c.apiKey)
	params.Set("type", "movie")

	var result searchResponse
	if err := c.get(ctx, params, &result); err != nil {
		return "", err
	}

	if result.Response != "True" || len(result.Search) == 0 {
		msg := result.Error
		if msg == "" {
			msg = "no results"
		}
		return "", pkgerrors.NotFound(fmt.Sprintf("no match for %q: %s", title, msg))
	}

	return result.Search[0].IMDBID, nil
}

// Fetch retrieves the detail record for an external identifier.
func (c *Client) Fetch(ctx context.Context, imdbID string) (*domain.MovieMetadata, error) {
	params := url.Values{}
	params.Set("i", imdbID)
	params.Set("apikey", c.apiKey)
	params.Set("plot", "short")

	var details Details
	if err := c.get(ctx, params, &details); err != nil {
		return nil, err
	}

	if details.Response != "True" {
		msg := details.Error
		if msg == "" {
			msg = "detail fetch failed"
		}
		return nil, pkgerrors.NotFound(fmt.Sprintf("no record for %q: %s", imdbID, msg))
	}

	return details.ToMetadata(), nil
}

// get issues the request and decodes the JSON body. A transport failure,
// an unparseable body, or a non-2xx response without a structured error
// payload is an upstream error; structured error payloads are left to the
// caller to interpret.
func (c *Client) get(ctx context.Context, params url.Values, out interface{}) error {
	reqURL := c.baseURL + "?" + params.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.ErrorTypeUpstream, "creating request", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.ErrorTypeUpstream, "executing request", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.ErrorTypeUpstream, "reading response", err)
	}

	if err := json.Unmarshal(body, out); err != nil {
		if resp.StatusCode != http.StatusOK {
			return pkgerrors.Upstream(fmt.Sprintf("unexpected status code: %d", resp.StatusCode))
		}
		return pkgerrors.Wrap(pkgerrors.ErrorTypeUpstream, "decoding response", err)
	}

	return nil
}

// ToMetadata converts the OMDb record to the catalog's normalized shape.
// The year may be a range like "2001-2003"; the start year is taken, and
// anything unparseable leaves the year unset rather than failing.
func (d *Details) ToMetadata() *domain.MovieMetadata {
	meta := &domain.MovieMetadata{
		Title:      d.Title,
		Director:   optional(d.Director),
		Year:       ParseYear(d.Year),
		OMDBID:     d.IMDBID,
		PlotShort:  optional(d.Plot),
		IMDBRating: optional(d.IMDBRating),
		PosterURL:  optional(d.Poster),
	}

	if d.Genre != "" && d.Genre != notAvailable {
		for _, g := range strings.Split(d.Genre, ",") {
			if g = strings.TrimSpace(g); g != "" {
				meta.Genres = append(meta.Genres, g)
			}
		}
	}

	return meta
}

// ParseYear extracts the start year from an OMDb year value.
func ParseYear(s string) *int {
	s = strings.TrimSpace(s)
	for _, sep := range []string{"-", "–"} {
		if idx := strings.Index(s, sep); idx >= 0 {
			s = s[:idx]
			break
		}
	}
	s = strings.TrimSpace(s)
	year, err := strconv.Atoi(s)
	if err != nil {
		return nil
	}
	return &year
}

func optional(s string) *string {
	if s == "" || s == notAvailable {
		return nil
	}
	return &s
}
