// Package client talks to a NoteSpace server the way the web editor does:
// it keeps the session cookie, recreates expired notes and autosaves edits.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"strings"
	"time"

	"github.com/codey22/notespace/internal/note"
	"github.com/codey22/notespace/internal/session"

	"golang.org/x/net/publicsuffix"
	"golang.org/x/sync/singleflight"
)

const defaultTimeout = 15 * time.Second

// APIError is a non-2xx response from the server.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("notespace: %d %s", e.Status, e.Message)
}

// IsNotFound reports whether err is a 404 from the server. For a note fetch
// that means the note expired or never existed.
func IsNotFound(err error) bool {
	var ae *APIError
	return errors.As(err, &ae) && ae.Status == http.StatusNotFound
}

type Note struct {
	ID        string    `json:"id"`
	Slug      string    `json:"slug"`
	Title     string    `json:"title"`
	Content   string    `json:"content"`
	LogoText  string    `json:"logoText"`
	Protected bool      `json:"protected"`
	Pinned    bool      `json:"pinned"`
	Tags      []string  `json:"tags"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// Patch is a partial note update; nil fields are not sent.
type Patch struct {
	Title    *string `json:"title,omitempty"`
	Content  *string `json:"content,omitempty"`
	LogoText *string `json:"logoText,omitempty"`
	Slug     *string `json:"slug,omitempty"`
	Pinned   *bool   `json:"pinned,omitempty"`
}

// merge overlays the fields set in o.
func (p *Patch) merge(o Patch) {
	if o.Title != nil {
		p.Title = o.Title
	}
	if o.Content != nil {
		p.Content = o.Content
	}
	if o.LogoText != nil {
		p.LogoText = o.LogoText
	}
	if o.Slug != nil {
		p.Slug = o.Slug
	}
	if o.Pinned != nil {
		p.Pinned = o.Pinned
	}
}

func (p Patch) empty() bool {
	return p.Title == nil && p.Content == nil && p.LogoText == nil && p.Slug == nil && p.Pinned == nil
}

type Client struct {
	base *url.URL
	hc   *http.Client
	ttl  time.Duration

	provision singleflight.Group
}

type Option func(*Client)

// WithHTTPClient replaces the default HTTP client. A cookie jar is added if
// the client has none.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.hc = hc }
}

// WithNoteTTL matches Editable to a server running with a non-default
// NOTE_TTL.
func WithNoteTTL(ttl time.Duration) Option {
	return func(c *Client) {
		if ttl > 0 {
			c.ttl = ttl
		}
	}
}

func New(baseURL string, opts ...Option) (*Client, error) {
	base, err := url.Parse(strings.TrimRight(baseURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("parse base url: %w", err)
	}
	if base.Scheme == "" || base.Host == "" {
		return nil, fmt.Errorf("base url %q must be absolute", baseURL)
	}

	c := &Client{
		base: base,
		hc:   &http.Client{Timeout: defaultTimeout},
		ttl:  note.DefaultTTL,
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.hc.Jar == nil {
		jar, err := cookiejar.New(&cookiejar.Options{PublicSuffixList: publicsuffix.List})
		if err != nil {
			return nil, err
		}
		c.hc.Jar = jar
	}
	return c, nil
}

// Editable is false once an empty note has sat untouched long enough for
// the server to reap it. Only a hint for the UI; the server decides.
func (c *Client) Editable(n *Note, now time.Time) bool {
	return !note.IsExpired(n.Title, n.Content, n.LogoText, n.UpdatedAt, now, c.ttl)
}

// SessionToken returns the current session cookie value, if any.
func (c *Client) SessionToken() string {
	for _, ck := range c.hc.Jar.Cookies(c.base) {
		if ck.Name == session.CookieName {
			return ck.Value
		}
	}
	return ""
}

// SetSessionToken restores a session saved from an earlier run.
func (c *Client) SetSessionToken(token string) {
	c.hc.Jar.SetCookies(c.base, []*http.Cookie{{
		Name:  session.CookieName,
		Value: token,
		Path:  "/",
	}})
}

// EnsureSession makes sure the jar holds a session cookie, asking the
// server for one if needed.
func (c *Client) EnsureSession(ctx context.Context) error {
	if c.SessionToken() != "" {
		return nil
	}
	if err := c.do(ctx, http.MethodGet, "/session", nil, nil); err != nil {
		return err
	}
	if c.SessionToken() == "" {
		return errors.New("server did not issue a session cookie")
	}
	return nil
}

func (c *Client) ListNotes(ctx context.Context, tag string) ([]Note, error) {
	path := "/note"
	if tag != "" {
		path += "?tag=" + url.QueryEscape(tag)
	}
	var out []Note
	if err := c.do(ctx, http.MethodGet, path, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) CreateNote(ctx context.Context, p Patch) (*Note, error) {
	var n Note
	if err := c.do(ctx, http.MethodPost, "/note", p, &n); err != nil {
		return nil, err
	}
	return &n, nil
}

func (c *Client) GetNote(ctx context.Context, slug string) (*Note, error) {
	var n Note
	if err := c.do(ctx, http.MethodGet, notePath(slug), nil, &n); err != nil {
		return nil, err
	}
	return &n, nil
}

func (c *Client) UpdateNote(ctx context.Context, slug string, p Patch) (*Note, error) {
	var n Note
	if err := c.do(ctx, http.MethodPut, notePath(slug), p, &n); err != nil {
		return nil, err
	}
	return &n, nil
}

func (c *Client) DeleteNote(ctx context.Context, slug string) error {
	return c.do(ctx, http.MethodDelete, notePath(slug), nil, nil)
}

type protectedResp struct {
	Protected bool `json:"protected"`
}

func (c *Client) SetPassword(ctx context.Context, slug, password string) (bool, error) {
	var out protectedResp
	err := c.do(ctx, http.MethodPost, notePath(slug)+"/password", map[string]string{"password": password}, &out)
	return out.Protected, err
}

func (c *Client) ClearPassword(ctx context.Context, slug string) (bool, error) {
	var out protectedResp
	err := c.do(ctx, http.MethodDelete, notePath(slug)+"/password", nil, &out)
	return out.Protected, err
}

func (c *Client) Verify(ctx context.Context, slug, password string) error {
	return c.do(ctx, http.MethodPost, notePath(slug)+"/verify", map[string]string{"password": password}, nil)
}

// Open fetches a note and, if it is gone, provisions a fresh one in its
// place. provisioned tells the caller to move to the new slug.
func (c *Client) Open(ctx context.Context, slug string) (n *Note, provisioned bool, err error) {
	n, err = c.GetNote(ctx, slug)
	if err == nil {
		return n, false, nil
	}
	if !IsNotFound(err) {
		return nil, false, err
	}
	n, err = c.Provision(ctx)
	if err != nil {
		return nil, false, err
	}
	return n, true, nil
}

// Provision creates an empty note. Concurrent calls share one in-flight
// request; once it finishes (or fails) the next call creates again.
func (c *Client) Provision(ctx context.Context) (*Note, error) {
	v, err, _ := c.provision.Do("provision", func() (any, error) {
		return c.CreateNote(context.WithoutCancel(ctx), Patch{})
	})
	if err != nil {
		return nil, err
	}
	n := *v.(*Note)
	return &n, nil
}

type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   string          `json:"error"`
}

func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	var rdr io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		rdr = bytes.NewReader(raw)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.base.String()+path, rdr)
	if err != nil {
		return err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.hc.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}

	var env envelope
	if len(bytes.TrimSpace(raw)) > 0 {
		if err := json.Unmarshal(raw, &env); err != nil && resp.StatusCode < 400 {
			return fmt.Errorf("decode response: %w", err)
		}
	}

	if resp.StatusCode >= 400 {
		msg := env.Error
		if msg == "" {
			msg = http.StatusText(resp.StatusCode)
		}
		return &APIError{Status: resp.StatusCode, Message: msg}
	}

	if out != nil && len(env.Data) > 0 {
		if err := json.Unmarshal(env.Data, out); err != nil {
			return fmt.Errorf("decode data: %w", err)
		}
	}
	return nil
}

func notePath(slug string) string {
	return "/note/" + url.PathEscape(slug)
}
