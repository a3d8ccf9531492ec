package omdb

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	pkgerrors "github.com/moviweb/moviweb/pkg/errors"
)

func newTestClient(handler http.HandlerFunc) (*Client, *httptest.Server) {
	server := httptest.NewServer(handler)
	return NewClient(server.URL, "test-key", 5*time.Second), server
}

func TestSearchID(t *testing.T) {
	client, server := newTestClient(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "heat", r.URL.Query().Get("s"))
		assert.Equal(t, "test-key", r.URL.Query().Get("apikey"))
		assert.Equal(t, "movie", r.URL.Query().Get("type"))
		w.Write([]byte(`{
			"Search": [
				{"Title": "Heat", "Year": "1995", "imdbID": "tt0113277", "Type": "movie"},
				{"Title": "Heat", "Year": "1986", "imdbID": "tt0091241", "Type": "movie"}
			],
			"totalResults": "2",
			"Response": "True"
		}`))
	})
	defer server.Close()

	id, err := client.SearchID(context.Background(), "heat")
	require.NoError(t, err)
	assert.Equal(t, "tt0113277", id)
}

func TestSearchIDNoResults(t *testing.T) {
	client, server := newTestClient(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"Response": "False", "Error": "Movie not found!"}`))
	})
	defer server.Close()

	_, err := client.SearchID(context.Background(), "no such film")
	require.Error(t, err)
	assert.True(t, pkgerrors.IsNotFound(err))
	assert.Contains(t, err.Error(), "Movie not found!")
}

func TestSearchIDUpstreamFailure(t *testing.T) {
	client, server := newTestClient(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		w.Write([]byte("Unauthorized"))
	})
	defer server.Close()

	_, err := client.SearchID(context.Background(), "heat")
	require.Error(t, err)
	assert.True(t, pkgerrors.IsUpstream(err))
}

func TestSearchIDTransportError(t *testing.T) {
	client, server := newTestClient(func(w http.ResponseWriter, r *http.Request) {})
	server.Close()

	_, err := client.SearchID(context.Background(), "heat")
	require.Error(t, err)
	assert.True(t, pkgerrors.IsUpstream(err))
}

func TestFetch(t *testing.T) {
	client, server := newTestClient(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "tt0113277", r.URL.Query().Get("i"))
		assert.Equal(t, "short", r.URL.Query().Get("plot"))
		w.Write([]byte(`{
			"Title": "Heat",
			"Year": "1995",
			"Director": "Michael Mann",
			"Genre": "Action, Crime, Drama",
			"Plot": "A group of high-end professional thieves.",
			"Poster": "https://example.com/heat.jpg",
			"imdbRating": "8.3",
			"imdbID": "tt0113277",
			"Response": "True"
		}`))
	})
	defer server.Close()

	meta, err := client.Fetch(context.Background(), "tt0113277")
	require.NoError(t, err)
	assert.Equal(t, "Heat", meta.Title)
	assert.Equal(t, "tt0113277", meta.OMDBID)
	require.NotNil(t, meta.Year)
	assert.Equal(t, 1995, *meta.Year)
	require.NotNil(t, meta.Director)
	assert.Equal(t, "Michael Mann", *meta.Director)
	assert.Equal(t, []string{"Action", "Crime", "Drama"}, meta.Genres)
}

func TestFetchUnknownID(t *testing.T) {
	client, server := newTestClient(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"Response": "False", "Error": "Incorrect IMDb ID."}`))
	})
	defer server.Close()

	_, err := client.Fetch(context.Background(), "tt0000000")
	require.Error(t, err)
	assert.True(t, pkgerrors.IsNotFound(err))
}

func TestToMetadataNormalization(t *testing.T) {
	t.Run("year range takes start year", func(t *testing.T) {
		meta := (&Details{Title: "Band of Brothers", Year: "2001-2003", IMDBID: "tt0185906"}).ToMetadata()
		require.NotNil(t, meta.Year)
		assert.Equal(t, 2001, *meta.Year)
	})

	t.Run("unparseable year left unset", func(t *testing.T) {
		meta := (&Details{Title: "Unknown", Year: "N/A", IMDBID: "tt0000001"}).ToMetadata()
		assert.Nil(t, meta.Year)
	})

	t.Run("not-available fields become nil", func(t *testing.T) {
		meta := (&Details{
			Title:      "Obscure",
			Year:       "1960",
			Director:   "N/A",
			Poster:     "N/A",
			IMDBRating: "N/A",
			Genre:      "N/A",
			IMDBID:     "tt0000002",
		}).ToMetadata()
		assert.Nil(t, meta.Director)
		assert.Nil(t, meta.PosterURL)
		assert.Nil(t, meta.IMDBRating)
		assert.Empty(t, meta.Genres)
	})
}

func TestParseYear(t *testing.T) {
	tests := []struct {
		input string
		want  *int
	}{
		{"1995", intPtr(1995)},
		{"2001-2003", intPtr(2001)},
		{"2015–", intPtr(2015)},
		{" 1972 ", intPtr(1972)},
		{"N/A", nil},
		{"", nil},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got := ParseYear(tt.input)
			if tt.want == nil {
				assert.Nil(t, got)
				return
			}
			require.NotNil(t, got)
			assert.Equal(t, *tt.want, *got)
		})
	}
}

func intPtr(i int) *int { return &i }
