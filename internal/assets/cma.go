package assets

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/goliatone/go-sheet-import/pkg/interfaces"
)

const defaultRequestTimeout = 15 * time.Second

// CMAConfig configures the content-management API client.
type CMAConfig struct {
	// BaseURL is the API root, e.g. https://site-api.example.com.
	BaseURL string
	// Token is the management API access token.
	Token string
	// HTTPClient overrides the transport; a default client with a request
	// timeout is used when nil.
	HTTPClient *http.Client
}

// CMAClient talks to the CMS content-management API. It satisfies
// interfaces.AssetAPI.
type CMAClient struct {
	baseURL string
	token   string
	client  *http.Client
}

var _ interfaces.AssetAPI = (*CMAClient)(nil)

// NewCMAClient builds the HTTP-backed asset API client.
func NewCMAClient(cfg CMAConfig) *CMAClient {
	client := cfg.HTTPClient
	if client == nil {
		client = &http.Client{Timeout: defaultRequestTimeout}
	}
	return &CMAClient{
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		token:   strings.TrimSpace(cfg.Token),
		client:  client,
	}
}

// CreateFromBlob registers a new binary asset and returns its upload id.
func (c *CMAClient) CreateFromBlob(ctx context.Context, blob interfaces.AssetBlob) (string, error) {
	if c.token == "" {
		return "", ErrMissingToken
	}

	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)
	filename := blob.Filename
	if filename == "" {
		filename = "upload.bin"
	}
	part, err := writer.CreateFormFile("file", filename)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrUpload, err)
	}
	if _, err := part.Write(blob.Data); err != nil {
		return "", fmt.Errorf("%w: %v", ErrUpload, err)
	}
	if err := writer.Close(); err != nil {
		return "", fmt.Errorf("%w: %v", ErrUpload, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/uploads", body)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrUpload, err)
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())
	c.decorate(req)

	res, err := c.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrUpload, err)
	}
	defer res.Body.Close()

	switch {
	case res.StatusCode == http.StatusUnauthorized || res.StatusCode == http.StatusForbidden:
		return "", ErrAuth
	case res.StatusCode < 200 || res.StatusCode >= 300:
		return "", fmt.Errorf("%w: unexpected status %d", ErrUpload, res.StatusCode)
	}

	var payload uploadEnvelope
	if err := json.NewDecoder(res.Body).Decode(&payload); err != nil {
		return "", fmt.Errorf("%w: %v", ErrUpload, err)
	}
	id := payload.id()
	if id == "" {
		return "", fmt.Errorf("%w: response carried no upload id", ErrUpload)
	}
	return id, nil
}

// FindUpload fetches metadata for an existing upload in the given scope.
func (c *CMAClient) FindUpload(ctx context.Context, id string, scope string) (*interfaces.UploadMeta, error) {
	if c.token == "" {
		return nil, ErrMissingToken
	}

	endpoint := c.baseURL + "/uploads/" + url.PathEscape(id)
	if scope != "" {
		endpoint = c.baseURL + "/environments/" + url.PathEscape(scope) + "/uploads/" + url.PathEscape(id)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, err
	}
	c.decorate(req)

	res, err := c.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer res.Body.Close()

	switch {
	case res.StatusCode == http.StatusNotFound:
		return nil, ErrNotFound
	case res.StatusCode == http.StatusUnauthorized || res.StatusCode == http.StatusForbidden:
		return nil, ErrAuth
	case res.StatusCode < 200 || res.StatusCode >= 300:
		body, _ := io.ReadAll(io.LimitReader(res.Body, 512))
		return nil, fmt.Errorf("assets: upload lookup status %d: %s", res.StatusCode, strings.TrimSpace(string(body)))
	}

	var payload uploadEnvelope
	if err := json.NewDecoder(res.Body).Decode(&payload); err != nil {
		return nil, err
	}
	return &interfaces.UploadMeta{
		URL:      payload.url(),
		MimeType: payload.mimeType(),
		Filename: payload.filename(),
	}, nil
}

func (c *CMAClient) decorate(req *http.Request) {
	req.Header.Set("Authorization", "Bearer "+c.token)
	req.Header.Set("Accept", "application/json")
}

// uploadEnvelope tolerates both the JSON:API layout (data.id plus
// data.attributes) and a flat layout.
type uploadEnvelope struct {
	Data struct {
		ID         string           `json:"id"`
		Attributes uploadAttributes `json:"attributes"`
	} `json:"data"`
	ID string `json:"id"`
	uploadAttributes
}

type uploadAttributes struct {
	URL      string `json:"url"`
	MimeType string `json:"mime_type"`
	Filename string `json:"filename"`
}

func (e uploadEnvelope) id() string {
	if e.Data.ID != "" {
		return e.Data.ID
	}
	return e.ID
}

func (e uploadEnvelope) url() string {
	if e.Data.Attributes.URL != "" {
		return e.Data.Attributes.URL
	}
	return e.URL
}

func (e uploadEnvelope) mimeType() string {
	if e.Data.Attributes.MimeType != "" {
		return e.Data.Attributes.MimeType
	}
	return e.MimeType
}

func (e uploadEnvelope) filename() string {
	if e.Data.Attributes.Filename != "" {
		return e.Data.Attributes.Filename
	}
	return e.Filename
}
