// Package client is a dentist.DataManager backed by the clinic JSON API.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"time"

	"dental-clinic/internal/dentist"
	"dental-clinic/internal/models"
	"dental-clinic/internal/store"
)

const apiPath = "/api/dentists"

// APIError is a non-2xx answer of the API.
type APIError struct {
	Status  int
	Message string
	Errors  []string
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return http.StatusText(e.Status)
	}
	return e.Message
}

// Is lets callers test API errors against the store sentinels.
func (e *APIError) Is(target error) bool {
	switch target {
	case store.ErrNotFound:
		return e.Status == http.StatusNotFound
	case store.ErrDuplicateRegistration:
		return e.Status == http.StatusConflict
	}
	return false
}

type Client struct {
	base string
	http *http.Client

	mu      sync.RWMutex
	current []*models.Dentist
}

type Option func(*Client)

func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.http = hc
		}
	}
}

func New(baseURL string, opts ...Option) (*Client, error) {
	u, err := url.Parse(baseURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("invalid server url %q", baseURL)
	}
	c := &Client{
		base: strings.TrimRight(baseURL, "/"),
		http: &http.Client{Timeout: 10 * time.Second},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

type dentistBody struct {
	Name               string `json:"name"`
	LastName           string `json:"lastName"`
	RegistrationNumber string `json:"registrationNumber"`
	Specialty          string `json:"specialty"`
}

func bodyOf(r dentist.Record) dentistBody {
	return dentistBody{
		Name:               r.Name,
		LastName:           r.LastName,
		RegistrationNumber: r.RegistrationNumber,
		Specialty:          r.Specialty,
	}
}

func (c *Client) ValidateDentistData(r dentist.Record) dentist.ValidationResult {
	return dentist.ValidateFields(r)
}

func (c *Client) CreateDentist(ctx context.Context, r dentist.Record) (*models.Dentist, error) {
	var d models.Dentist
	if err := c.do(ctx, http.MethodPost, apiPath, bodyOf(r), &d); err != nil {
		return nil, err
	}
	c.invalidate()
	return &d, nil
}

func (c *Client) UpdateDentist(ctx context.Context, id int64, r dentist.Record) (*models.Dentist, error) {
	var d models.Dentist
	if err := c.do(ctx, http.MethodPut, itemPath(id), bodyOf(r), &d); err != nil {
		return nil, err
	}
	c.invalidate()
	return &d, nil
}

func (c *Client) LoadDentistByID(ctx context.Context, id int64) (*models.Dentist, error) {
	var d models.Dentist
	if err := c.do(ctx, http.MethodGet, itemPath(id), nil, &d); err != nil {
		return nil, err
	}
	return &d, nil
}

func (c *Client) DeleteDentist(ctx context.Context, id int64) error {
	if err := c.do(ctx, http.MethodDelete, itemPath(id), nil, nil); err != nil {
		return err
	}
	c.invalidate()
	return nil
}

func (c *Client) LoadAllDentists(ctx context.Context) error {
	var list []*models.Dentist
	if err := c.do(ctx, http.MethodGet, apiPath, nil, &list); err != nil {
		return err
	}
	c.mu.Lock()
	c.current = list
	c.mu.Unlock()
	return nil
}

func (c *Client) CurrentDentists() []*models.Dentist {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]*models.Dentist, len(c.current))
	copy(out, c.current)
	return out
}

func (c *Client) SearchDentists(term string) []*models.Dentist {
	return dentist.Filter(c.CurrentDentists(), term)
}

func (c *Client) invalidate() {
	c.mu.Lock()
	c.current = nil
	c.mu.Unlock()
}

func itemPath(id int64) string {
	return apiPath + "/" + strconv.FormatInt(id, 10)
}

func (c *Client) do(ctx context.Context, method, path string, in, out any) error {
	var body io.Reader
	if in != nil {
		b, err := json.Marshal(in)
		if err != nil {
			return err
		}
		body = bytes.NewReader(b)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.base+path, body)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		apiErr := &APIError{Status: resp.StatusCode}
		var payload struct {
			Error  string   `json:"error"`
			Errors []string `json:"errors"`
		}
		if err := json.NewDecoder(resp.Body).Decode(&payload); err == nil {
			apiErr.Message = payload.Error
			apiErr.Errors = payload.Errors
		}
		return apiErr
	}
	if out == nil || resp.StatusCode == http.StatusNoContent {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode %s %s: %w", method, path, err)
	}
	return nil
}

var _ dentist.DataManager = (*Client)(nil)
