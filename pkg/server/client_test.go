package server

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/goccy/go-json"
	"github.com/stretchr/testify/require"

	"github.com/shamank/ets-sdk-go/pkg/model"
	"github.com/shamank/ets-sdk-go/pkg/storage"
)

func newBackend(t *testing.T, h http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	return NewClient(srv.URL+"/", storage.NewHTTPFetcher())
}

func TestFetchCountries(t *testing.T) {
	c := newBackend(t, func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodGet, r.Method)
		require.Equal(t, "/api/v1/countries", r.URL.Path)
		_, _ = io.WriteString(w, `["Bulgaria","Greece"]`)
	})

	resp, err := c.FetchCountries(context.Background())
	require.NoError(t, err)

	var countries []string
	require.NoError(t, resp.Decode(&countries))
	require.Equal(t, []string{"Bulgaria", "Greece"}, countries)
}

func TestFetchPlacesEscapesCountry(t *testing.T) {
	c := newBackend(t, func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/api/v1/places", r.URL.Path)
		require.Equal(t, "United Kingdom", r.URL.Query().Get("country"))
		_, _ = io.WriteString(w, `[{"name":"O2 Arena"}]`)
	})

	resp, err := c.FetchPlaces(context.Background(), "United Kingdom")
	require.NoError(t, err)
	require.Contains(t, string(resp.Body), "O2 Arena")
}

func TestFetchAllEventsPostsQuery(t *testing.T) {
	c := newBackend(t, func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "/api/v1/events", r.URL.Path)

		var q model.EventsQuery
		require.NoError(t, json.NewDecoder(r.Body).Decode(&q))
		require.Equal(t, "Sofia", q.Place)
		require.Equal(t, []string{"music"}, q.Tags)
		require.Equal(t, "10", q.Pagination.Limit)
		_, _ = io.WriteString(w, `{"events":[]}`)
	})

	resp, err := c.FetchAllEvents(context.Background(), model.EventsQuery{
		Place:      "Sofia",
		Tags:       []string{"music"},
		Pagination: model.Pagination{Offset: "0", Limit: "10"},
	})
	require.NoError(t, err)
	require.JSONEq(t, `{"events":[]}`, string(resp.Body))
}

func TestStatusError(t *testing.T) {
	c := newBackend(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"message":"down"}`, http.StatusServiceUnavailable)
	})

	resp, err := c.FetchCountries(context.Background())
	var se *StatusError
	require.True(t, errors.As(err, &se))
	require.Equal(t, http.StatusServiceUnavailable, se.Response.StatusCode)
	require.Same(t, se.Response, resp)
	require.Contains(t, err.Error(), "unexpected status 503")
}

type failingFetcher struct{ err error }

func (f failingFetcher) Get(context.Context, string) (*storage.Response, error) { return nil, f.err }

func (f failingFetcher) Post(context.Context, string, any) (*storage.Response, error) {
	return nil, f.err
}

func TestTransportErrorIsWrapped(t *testing.T) {
	want := errors.New("connection refused")
	c := NewClient("http://backend", failingFetcher{want})

	_, err := c.FetchPlaces(context.Background(), "Bulgaria")
	require.ErrorIs(t, err, want)
	require.Contains(t, err.Error(), "GET http://backend/api/v1/places?country=Bulgaria")

	_, err = c.FetchAllEvents(context.Background(), model.EventsQuery{})
	require.ErrorIs(t, err, want)
	require.Equal(t, "http://backend", c.BaseURL())
}

func TestFetchCountriesOversizedBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, `["Bulgaria","Greece","Romania","Serbia","North Macedonia","Albania"]`)
	}))
	t.Cleanup(srv.Close)
	c := NewClient(srv.URL, storage.NewHTTPFetcher(storage.WithMaxBodySize(16)))

	resp, err := c.FetchCountries(context.Background())
	require.ErrorIs(t, err, storage.ErrBodyTooLarge)
	require.Nil(t, resp)
}
