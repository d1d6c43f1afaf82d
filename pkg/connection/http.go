package connection

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/leadscrm/leads.go/internal/codec"
	"github.com/leadscrm/leads.go/pkg/constants"
	"github.com/leadscrm/leads.go/pkg/logger"
)

const (
	authTokenKey    = "token"
	requestIDHeader = "X-Request-ID"
	jsonContentType = "application/json"
)

// Request describes one call. Path is either relative to the base URL or an
// absolute http(s) URL. Body, when non-nil, is serialized with the marshaler.
type Request struct {
	Method string
	Path   string
	Body   any
	Header http.Header
}

// Response is a successful (2xx) answer.
type Response struct {
	Status int
	Header http.Header
	Body   []byte
	// JSON reports whether the server labelled the body application/json.
	JSON bool

	unmarshaler codec.Unmarshaler
}

// Decode unmarshals a JSON body into dst. A non-JSON body can only be decoded
// into *string or *[]byte. An empty body leaves dst untouched.
func (r *Response) Decode(dst any) error {
	if dst == nil || len(r.Body) == 0 {
		return nil
	}
	if !r.JSON {
		switch d := dst.(type) {
		case *string:
			*d = string(r.Body)
			return nil
		case *[]byte:
			*d = append((*d)[:0], r.Body...)
			return nil
		default:
			return constants.ErrNotText
		}
	}
	if r.unmarshaler == nil {
		return constants.ErrNoUnmarshaler
	}
	return r.unmarshaler.Unmarshal(r.Body, dst)
}

// Text returns the raw body.
func (r *Response) Text() string {
	return string(r.Body)
}

type HTTPConnection struct {
	BaseURL     string
	Marshaler   codec.Marshaler
	Unmarshaler codec.Unmarshaler

	userAgent  string
	httpClient *http.Client
	logger     zerolog.Logger
	variables  sync.Map
}

func New(p *Config) *HTTPConnection {
	con := HTTPConnection{
		BaseURL:     strings.TrimRight(p.BaseURL, "/"),
		Marshaler:   p.Marshaler,
		Unmarshaler: p.Unmarshaler,
		userAgent:   p.UserAgent,
		httpClient:  p.HTTPClient,
		logger:      logger.OrNop(p.Logger),
	}

	if con.Marshaler == nil {
		con.Marshaler = codec.JSON{}
	}
	if con.Unmarshaler == nil {
		con.Unmarshaler = codec.JSON{}
	}
	if con.httpClient == nil {
		con.httpClient = &http.Client{}
	}
	if p.AuthToken != "" {
		con.variables.Store(authTokenKey, p.AuthToken)
	}

	return &con
}

func (h *HTTPConnection) SetHTTPClient(client *http.Client) *HTTPConnection {
	h.httpClient = client
	return h
}

// SetAuthToken replaces the bearer token; an empty token stops sending the header.
func (h *HTTPConnection) SetAuthToken(token string) {
	if token == "" {
		h.variables.Delete(authTokenKey)
		return
	}
	h.variables.Store(authTokenKey, token)
}

func (h *HTTPConnection) authToken() string {
	if token, ok := h.variables.Load(authTokenKey); ok {
		return token.(string)
	}
	return ""
}

// Do sends the request and decodes a successful body into dst (which may be nil).
func (h *HTTPConnection) Do(ctx context.Context, method, path string, body, dst any) error {
	resp, err := h.Send(ctx, &Request{Method: method, Path: path, Body: body})
	if err != nil {
		return err
	}
	if err := resp.Decode(dst); err != nil {
		return newTransportError("decode response", err)
	}
	return nil
}

// Send performs the call. Every failure, including transport failures, comes
// back as *APIError.
func (h *HTTPConnection) Send(ctx context.Context, r *Request) (*Response, error) {
	url, err := h.resolve(r.Path)
	if err != nil {
		return nil, newTransportError("invalid request", err)
	}

	var bodyReader io.Reader
	if r.Body != nil {
		if h.Marshaler == nil {
			return nil, newTransportError("invalid request", constants.ErrNoMarshaler)
		}
		payload, err := h.Marshaler.Marshal(r.Body)
		if err != nil {
			return nil, newTransportError("encode request body", err)
		}
		bodyReader = bytes.NewReader(payload)
	}

	method := r.Method
	if method == "" {
		method = http.MethodGet
	}
	req, err := http.NewRequestWithContext(ctx, method, url, bodyReader)
	if err != nil {
		return nil, newTransportError("invalid request", err)
	}

	for key, values := range r.Header {
		for _, v := range values {
			req.Header.Add(key, v)
		}
	}
	req.Header.Set("Content-Type", jsonContentType)
	if token := h.authToken(); token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	// Every call is fresh; nothing on the way may serve a cached copy.
	req.Header.Set("Cache-Control", "no-store")
	req.Header.Set("Pragma", "no-cache")
	if req.Header.Get(requestIDHeader) == "" {
		req.Header.Set(requestIDHeader, uuid.NewString())
	}
	if h.userAgent != "" {
		req.Header.Set("User-Agent", h.userAgent)
	}

	return h.MakeRequest(req)
}

func (h *HTTPConnection) MakeRequest(req *http.Request) (*Response, error) {
	start := time.Now()
	log := h.logger.With().
		Str("method", req.Method).
		Str("path", req.URL.Path).
		Str("request_id", req.Header.Get(requestIDHeader)).
		Logger()

	resp, err := h.httpClient.Do(req)
	if err != nil {
		log.Debug().Err(err).Dur("elapsed", time.Since(start)).Msg("leads api call failed")
		return nil, newTransportError("error making HTTP request", err)
	}
	defer resp.Body.Close()

	respBytes, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, newTransportError("read response body", err)
	}

	log.Debug().
		Int("status", resp.StatusCode).
		Dur("elapsed", time.Since(start)).
		Msg("leads api call")

	isJSON := strings.Contains(resp.Header.Get("Content-Type"), jsonContentType)

	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return &Response{
			Status:      resp.StatusCode,
			Header:      resp.Header,
			Body:        respBytes,
			JSON:        isJSON,
			unmarshaler: h.Unmarshaler,
		}, nil
	}

	return nil, h.errorFromResponse(resp, respBytes, isJSON)
}

func (h *HTTPConnection) errorFromResponse(resp *http.Response, body []byte, isJSON bool) *APIError {
	var details any = string(body)
	if isJSON && len(body) > 0 && h.Unmarshaler != nil {
		var parsed any
		if err := h.Unmarshaler.Unmarshal(body, &parsed); err == nil {
			details = parsed
		}
	}

	return &APIError{
		Message: errorMessage(details, statusText(resp)),
		Status:  resp.StatusCode,
		Details: details,
	}
}

func (h *HTTPConnection) resolve(path string) (string, error) {
	if strings.HasPrefix(path, constants.HTTPScheme) {
		return path, nil
	}
	if h.BaseURL == "" {
		return "", constants.ErrNoBaseURL
	}
	return h.BaseURL + path, nil
}

// errorMessage prefers the body's "message", then its "error".
func errorMessage(details any, fallback string) string {
	if body, ok := details.(map[string]any); ok {
		for _, key := range []string{"message", "error"} {
			if s, ok := body[key].(string); ok && s != "" {
				return s
			}
		}
	}
	return fallback
}

func statusText(resp *http.Response) string {
	text := strings.TrimSpace(strings.TrimPrefix(resp.Status, strconv.Itoa(resp.StatusCode)))
	if text == "" {
		text = http.StatusText(resp.StatusCode)
	}
	if text == "" {
		text = "request failed"
	}
	return text
}
