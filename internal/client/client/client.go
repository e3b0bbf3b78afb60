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
	"strconv"
	"strings"
	"time"
)

// Client is the API surface the terminal UI depends on.
type Client interface {
	Register(ctx context.Context, username, password, role string) (*User, error)
	Login(ctx context.Context, username, password string) (*User, error)
	Logout(ctx context.Context) error
	Check(ctx context.Context) (*User, error)

	ListUsers(ctx context.Context) ([]User, error)
	ListPending(ctx context.Context) ([]User, error)
	ApproveUser(ctx context.Context, id int64) (*User, error)
	RejectUser(ctx context.Context, id int64) (*User, error)
	UpdateUser(ctx context.Context, id int64, upd UserUpdate) (*User, error)
	DeleteUser(ctx context.Context, id int64) error

	ListGroups(ctx context.Context) ([]Group, error)
	GetGroup(ctx context.Context, id int64) (*Group, error)
	CreateGroup(ctx context.Context, name string, members []int64) (*Group, error)
	RenameGroup(ctx context.Context, id int64, name string) (*Group, error)
	DeleteGroup(ctx context.Context, id int64) error
	AddMember(ctx context.Context, groupID, userID int64) (*Group, error)
	RemoveMember(ctx context.Context, groupID, userID int64) (*Group, error)

	ListMessages(ctx context.Context, groupID int64, page, limit int) (*MessagePage, error)
	SendMessage(ctx context.Context, groupID int64, encryptedText string) (*Message, error)

	Stats(ctx context.Context) (*Stats, error)
	RecentMessages(ctx context.Context, limit int) ([]RecentMessage, error)

	Health(ctx context.Context) error
}

// APIClient is the net/http implementation of Client. It is safe for
// concurrent use; the cookie jar is shared across calls.
type APIClient struct {
	baseURL *url.URL
	http    *http.Client
}

var _ Client = (*APIClient)(nil)

func NewAPIClient(baseURL string, timeout time.Duration) (*APIClient, error) {
	u, err := url.Parse(strings.TrimRight(baseURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("parse server url: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("unsupported server url scheme %q", u.Scheme)
	}

	jar, err := cookiejar.New(nil)
	if err != nil {
		return nil, err
	}

	return &APIClient{
		baseURL: u,
		http:    &http.Client{Jar: jar, Timeout: timeout},
	}, nil
}

type errorBody struct {
	Message string       `json:"message"`
	Errors  []FieldError `json:"errors"`
}

// do sends body as JSON (when non-nil) and decodes a 2xx response into out
// (when non-nil).
func (c *APIClient) do(ctx context.Context, method, path string, query url.Values, body, out any) error {
	u := c.baseURL.JoinPath(path)
	if len(query) > 0 {
		u.RawQuery = query.Encode()
	}

	var rdr io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		rdr = bytes.NewReader(raw)
	}

	req, err := http.NewRequestWithContext(ctx, method, u.String(), rdr)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusUnauthorized {
		return ErrUnauthorized
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		var eb errorBody
		_ = json.NewDecoder(resp.Body).Decode(&eb)
		if eb.Message == "" {
			eb.Message = http.StatusText(resp.StatusCode)
		}
		return &APIError{StatusCode: resp.StatusCode, Message: eb.Message, Fields: eb.Errors}
	}

	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil && !errors.Is(err, io.EOF) {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

func idPath(parts ...any) string {
	var b strings.Builder
	b.WriteString("/api")
	for _, p := range parts {
		b.WriteByte('/')
		b.WriteString(fmt.Sprint(p))
	}
	return b.String()
}

func (c *APIClient) Register(ctx context.Context, username, password, role string) (*User, error) {
	body := map[string]string{"username": username, "password": password}
	if role != "" {
		body["role"] = role
	}
	var u User
	if err := c.do(ctx, http.MethodPost, "/api/auth/register", nil, body, &u); err != nil {
		return nil, err
	}
	return &u, nil
}

func (c *APIClient) Login(ctx context.Context, username, password string) (*User, error) {
	var u User
	body := map[string]string{"username": username, "password": password}
	if err := c.do(ctx, http.MethodPost, "/api/auth/login", nil, body, &u); err != nil {
		return nil, err
	}
	return &u, nil
}

func (c *APIClient) Logout(ctx context.Context) error {
	return c.do(ctx, http.MethodPost, "/api/auth/logout", nil, nil, nil)
}

func (c *APIClient) Check(ctx context.Context) (*User, error) {
	var u User
	if err := c.do(ctx, http.MethodGet, "/api/auth/check", nil, nil, &u); err != nil {
		return nil, err
	}
	return &u, nil
}

func (c *APIClient) ListUsers(ctx context.Context) ([]User, error) {
	var out []User
	if err := c.do(ctx, http.MethodGet, "/api/users", nil, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *APIClient) ListPending(ctx context.Context) ([]User, error) {
	var out []User
	if err := c.do(ctx, http.MethodGet, "/api/users/pending", nil, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *APIClient) ApproveUser(ctx context.Context, id int64) (*User, error) {
	var u User
	if err := c.do(ctx, http.MethodPut, idPath("users", id, "approve"), nil, nil, &u); err != nil {
		return nil, err
	}
	return &u, nil
}

func (c *APIClient) RejectUser(ctx context.Context, id int64) (*User, error) {
	var u User
	if err := c.do(ctx, http.MethodPut, idPath("users", id, "reject"), nil, nil, &u); err != nil {
		return nil, err
	}
	return &u, nil
}

func (c *APIClient) UpdateUser(ctx context.Context, id int64, upd UserUpdate) (*User, error) {
	var u User
	if err := c.do(ctx, http.MethodPut, idPath("users", id), nil, upd, &u); err != nil {
		return nil, err
	}
	return &u, nil
}

func (c *APIClient) DeleteUser(ctx context.Context, id int64) error {
	return c.do(ctx, http.MethodDelete, idPath("users", id), nil, nil, nil)
}

func (c *APIClient) ListGroups(ctx context.Context) ([]Group, error) {
	var out []Group
	if err := c.do(ctx, http.MethodGet, "/api/groups", nil, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *APIClient) GetGroup(ctx context.Context, id int64) (*Group, error) {
	var g Group
	if err := c.do(ctx, http.MethodGet, idPath("groups", id), nil, nil, &g); err != nil {
		return nil, err
	}
	return &g, nil
}

func (c *APIClient) CreateGroup(ctx context.Context, name string, members []int64) (*Group, error) {
	var g Group
	body := map[string]any{"name": name, "members": members}
	if err := c.do(ctx, http.MethodPost, "/api/groups", nil, body, &g); err != nil {
		return nil, err
	}
	return &g, nil
}

func (c *APIClient) RenameGroup(ctx context.Context, id int64, name string) (*Group, error) {
	var g Group
	if err := c.do(ctx, http.MethodPut, idPath("groups", id), nil, map[string]string{"name": name}, &g); err != nil {
		return nil, err
	}
	return &g, nil
}

func (c *APIClient) DeleteGroup(ctx context.Context, id int64) error {
	return c.do(ctx, http.MethodDelete, idPath("groups", id), nil, nil, nil)
}

func (c *APIClient) AddMember(ctx context.Context, groupID, userID int64) (*Group, error) {
	var g Group
	body := map[string]int64{"userId": userID}
	if err := c.do(ctx, http.MethodPut, idPath("groups", groupID, "members"), nil, body, &g); err != nil {
		return nil, err
	}
	return &g, nil
}

func (c *APIClient) RemoveMember(ctx context.Context, groupID, userID int64) (*Group, error) {
	var g Group
	if err := c.do(ctx, http.MethodDelete, idPath("groups", groupID, "members", userID), nil, nil, &g); err != nil {
		return nil, err
	}
	return &g, nil
}

// ListMessages fetches one page. Zero page or limit leaves the choice to
// the server.
func (c *APIClient) ListMessages(ctx context.Context, groupID int64, page, limit int) (*MessagePage, error) {
	q := url.Values{}
	if page > 0 {
		q.Set("page", strconv.Itoa(page))
	}
	if limit > 0 {
		q.Set("limit", strconv.Itoa(limit))
	}
	var p MessagePage
	if err := c.do(ctx, http.MethodGet, idPath("groups", groupID, "messages"), q, nil, &p); err != nil {
		return nil, err
	}
	return &p, nil
}

func (c *APIClient) SendMessage(ctx context.Context, groupID int64, encryptedText string) (*Message, error) {
	var m Message
	body := map[string]string{"encryptedText": encryptedText}
	if err := c.do(ctx, http.MethodPost, idPath("groups", groupID, "messages"), nil, body, &m); err != nil {
		return nil, err
	}
	return &m, nil
}

func (c *APIClient) Stats(ctx context.Context) (*Stats, error) {
	var s Stats
	if err := c.do(ctx, http.MethodGet, "/api/admin/stats", nil, nil, &s); err != nil {
		return nil, err
	}
	return &s, nil
}

func (c *APIClient) RecentMessages(ctx context.Context, limit int) ([]RecentMessage, error) {
	q := url.Values{}
	if limit > 0 {
		q.Set("limit", strconv.Itoa(limit))
	}
	var out []RecentMessage
	if err := c.do(ctx, http.MethodGet, "/api/admin/recent-messages", q, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *APIClient) Health(ctx context.Context) error {
	return c.do(ctx, http.MethodGet, "/", nil, nil, nil)
}
