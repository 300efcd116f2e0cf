package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strings"
	"time"
)

// ErrNoResponse is returned when the chat endpoint answers without a
// usable reply and gives no reason.
var ErrNoResponse = errors.New("No response from server")

// Client talks to the docchat backend.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient overrides the underlying HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// New creates a client for the backend at baseURL.
func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: 120 * time.Second},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// UploadResult is the backend's answer to a successful upload.
type UploadResult struct {
	Status       string `json:"status"`
	Filename     string `json:"filename"`
	InitialReply string `json:"initial_reply,omitempty"`
}

// errorBody holds the optional failure fields every endpoint may return.
type errorBody struct {
	Error  string `json:"error"`
	Detail string `json:"detail"`
}

// Upload posts the file content as multipart form field "file".
func (c *Client) Upload(ctx context.Context, filename string, content io.Reader) (*UploadResult, error) {
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	part, err := mw.CreateFormFile("file", filename)
	if err != nil {
		return nil, fmt.Errorf("creating form file: %w", err)
	}
	if _, err := io.Copy(part, content); err != nil {
		return nil, fmt.Errorf("reading %s: %w", filename, err)
	}
	if err := mw.Close(); err != nil {
		return nil, fmt.Errorf("closing multipart body: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/upload", &body)
	if err != nil {
		return nil, fmt.Errorf("creating upload request: %w", err)
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading upload response: %w", err)
	}

	if !isOK(resp.StatusCode) {
		var eb errorBody
		_ = json.Unmarshal(data, &eb)
		if eb.Error != "" {
			return nil, errors.New(eb.Error)
		}
		return nil, fmt.Errorf("HTTP %d", resp.StatusCode)
	}

	var result UploadResult
	if err := json.Unmarshal(data, &result); err != nil {
		return nil, fmt.Errorf("decoding upload response: %w", err)
	}
	if result.Filename == "" {
		return nil, errors.New("upload response missing filename")
	}
	return &result, nil
}

// chatBody is the union of success and failure fields of /chat.
type chatBody struct {
	Response string `json:"response"`
	Error    string `json:"error"`
	Detail   string `json:"detail"`
}

// Chat makes a single attempt to get a reply for message. A non-2xx status
// or an empty "response" field is an error.
func (c *Client) Chat(ctx context.Context, message string) (string, error) {
	payload, err := json.Marshal(map[string]string{"message": message})
	if err != nil {
		return "", fmt.Errorf("encoding chat request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/chat", bytes.NewReader(payload))
	if err != nil {
		return "", fmt.Errorf("creating chat request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	// An unparseable body is treated as an empty object.
	var body chatBody
	if data, err := io.ReadAll(resp.Body); err == nil {
		_ = json.Unmarshal(data, &body)
	}

	if !isOK(resp.StatusCode) {
		switch {
		case body.Error != "":
			return "", errors.New(body.Error)
		case body.Detail != "":
			return "", errors.New(body.Detail)
		default:
			return "", fmt.Errorf("HTTP %d", resp.StatusCode)
		}
	}

	if body.Response == "" {
		if body.Error != "" {
			return "", errors.New(body.Error)
		}
		return "", ErrNoResponse
	}
	return body.Response, nil
}

func isOK(status int) bool {
	return status >= 200 && status < 300
}
