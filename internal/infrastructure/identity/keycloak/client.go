// Package keycloak implements the Identity Directory on top of the Keycloak
// admin REST API. Calls authenticate as a confidential client using the
// OAuth2 client-credentials grant.
package keycloak

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/clientcredentials"

	"github.com/99minutos/ticketing-system/internal/core/domain"
	"github.com/99minutos/ticketing-system/internal/core/ports"
	"github.com/99minutos/ticketing-system/internal/pkg/metrics"
)

const defaultTimeout = 10 * time.Second

// Config holds the Keycloak connection settings.
type Config struct {
	BaseURL      string
	Realm        string
	ClientID     string
	ClientSecret string
	Timeout      time.Duration
}

// Client implements ports.IdentityDirectory.
type Client struct {
	adminURL string
	http     *http.Client
}

// New builds a Client. ctx is only used by the token source to fetch and
// refresh access tokens.
func New(ctx context.Context, cfg Config) *Client {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	base := strings.TrimRight(cfg.BaseURL, "/")
	realm := url.PathEscape(cfg.Realm)

	cc := clientcredentials.Config{
		ClientID:     cfg.ClientID,
		ClientSecret: cfg.ClientSecret,
		TokenURL:     base + "/realms/" + realm + "/protocol/openid-connect/token",
	}
	ctx = context.WithValue(ctx, oauth2.HTTPClient, &http.Client{Timeout: timeout})

	hc := cc.Client(ctx)
	hc.Timeout = timeout

	return &Client{
		adminURL: base + "/admin/realms/" + realm,
		http:     hc,
	}
}

type credentialRepresentation struct {
	Type      string `json:"type"`
	Value     string `json:"value"`
	Temporary bool   `json:"temporary"`
}

type userRepresentation struct {
	ID          string                     `json:"id,omitempty"`
	Username    string                     `json:"username"`
	FirstName   string                     `json:"firstName,omitempty"`
	LastName    string                     `json:"lastName,omitempty"`
	Enabled     bool                       `json:"enabled"`
	Credentials []credentialRepresentation `json:"credentials,omitempty"`
	Attributes  map[string][]string        `json:"attributes,omitempty"`
}

// CreateAccount creates the user with a non-temporary password credential.
// An existing account with the same username yields domain.ErrUserExists.
func (c *Client) CreateAccount(ctx context.Context, account ports.IdentityAccount) (err error) {
	defer observe("create", time.Now(), &err)

	body := userRepresentation{
		Username:  account.Username,
		FirstName: account.FirstName,
		LastName:  account.LastName,
		Enabled:   account.Enabled,
		Credentials: []credentialRepresentation{
			{Type: "password", Value: account.Password, Temporary: false},
		},
	}
	if account.Role != "" {
		body.Attributes = map[string][]string{"role": {account.Role}}
	}

	resp, err := c.do(ctx, http.MethodPost, "/users", body)
	if err != nil {
		return fmt.Errorf("keycloak create %q: %w", account.Username, err)
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusCreated, http.StatusNoContent:
		return nil
	case http.StatusConflict:
		return fmt.Errorf("keycloak create %q: %w", account.Username, domain.ErrUserExists)
	default:
		return fmt.Errorf("keycloak create %q: %w", account.Username, statusError(resp))
	}
}

// RemoveAccount deletes the account with exactly this username.
func (c *Client) RemoveAccount(ctx context.Context, username string) (err error) {
	defer observe("remove", time.Now(), &err)

	id, err := c.lookupID(ctx, username)
	if err != nil {
		return fmt.Errorf("keycloak remove %q: %w", username, err)
	}

	resp, err := c.do(ctx, http.MethodDelete, "/users/"+url.PathEscape(id), nil)
	if err != nil {
		return fmt.Errorf("keycloak remove %q: %w", username, err)
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusNoContent, http.StatusOK:
		return nil
	case http.StatusNotFound:
		return fmt.Errorf("keycloak remove %q: %w", username, domain.ErrUserNotFound)
	default:
		return fmt.Errorf("keycloak remove %q: %w", username, statusError(resp))
	}
}

func (c *Client) lookupID(ctx context.Context, username string) (string, error) {
	q := url.Values{}
	q.Set("username", username)
	q.Set("exact", "true")

	resp, err := c.do(ctx, http.MethodGet, "/users?"+q.Encode(), nil)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", statusError(resp)
	}

	var users []userRepresentation
	if err := json.NewDecoder(resp.Body).Decode(&users); err != nil {
		return "", fmt.Errorf("decode users: %w", err)
	}
	for _, u := range users {
		if strings.EqualFold(u.Username, username) {
			return u.ID, nil
		}
	}
	return "", domain.ErrUserNotFound
}

func (c *Client) do(ctx context.Context, method, path string, body any) (*http.Response, error) {
	var rdr io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("encode body: %w", err)
		}
		rdr = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.adminURL+path, rdr)
	if err != nil {
		return nil, err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")

	return c.http.Do(req)
}

func statusError(resp *http.Response) error {
	msg, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
	return fmt.Errorf("unexpected status %d: %s", resp.StatusCode, strings.TrimSpace(string(msg)))
}

func observe(op string, start time.Time, err *error) {
	outcome := "ok"
	if *err != nil {
		outcome = "error"
	}
	metrics.IdentityRequestDuration.WithLabelValues(op, outcome).Observe(time.Since(start).Seconds())
}
