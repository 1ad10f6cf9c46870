// Package server is a client for the ticketing backend REST API, which
// indexes events for search and serves reference data such as countries and
// places.
package server

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"github.com/shamank/ets-sdk-go/pkg/model"
	"github.com/shamank/ets-sdk-go/pkg/storage"
	"go.uber.org/zap"
)

const (
	countriesPath = "/api/v1/countries"
	placesPath    = "/api/v1/places"
	eventsPath    = "/api/v1/events"
)

// StatusError is returned for a non-2xx reply. Response holds the reply as
// received.
type StatusError struct {
	Method   string
	URL      string
	Response *storage.Response
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("%s %s: unexpected status %d", e.Method, e.URL, e.Response.StatusCode)
}

// Client calls the backend at a fixed base URL.
type Client struct {
	baseURL string
	fetcher storage.Fetcher
}

// NewClient returns a client for the backend at baseURL. A trailing slash is
// ignored.
func NewClient(baseURL string, fetcher storage.Fetcher) *Client {
	return &Client{baseURL: strings.TrimRight(baseURL, "/"), fetcher: fetcher}
}

// BaseURL returns the backend base URL without trailing slash.
func (c *Client) BaseURL() string { return c.baseURL }

// FetchCountries lists the countries events can take place in.
func (c *Client) FetchCountries(ctx context.Context) (*storage.Response, error) {
	return c.get(ctx, c.baseURL+countriesPath)
}

// FetchPlaces lists the places known for country.
func (c *Client) FetchPlaces(ctx context.Context, country string) (*storage.Response, error) {
	return c.get(ctx, c.baseURL+placesPath+"?country="+url.QueryEscape(country))
}

// FetchAllEvents runs an events search.
func (c *Client) FetchAllEvents(ctx context.Context, query model.EventsQuery) (*storage.Response, error) {
	u := c.baseURL + eventsPath
	resp, err := c.fetcher.Post(ctx, u, query)
	return c.check("POST", u, resp, err)
}

func (c *Client) get(ctx context.Context, u string) (*storage.Response, error) {
	resp, err := c.fetcher.Get(ctx, u)
	return c.check("GET", u, resp, err)
}

func (c *Client) check(method, u string, resp *storage.Response, err error) (*storage.Response, error) {
	if err != nil {
		zap.L().Error("backend request failed", zap.String("method", method), zap.String("url", u), zap.Error(err))
		return nil, fmt.Errorf("%s %s: %w", method, u, err)
	}
	if !resp.OK() {
		return resp, &StatusError{Method: method, URL: u, Response: resp}
	}
	return resp, nil
}
