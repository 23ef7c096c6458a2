// Package port is the HTTP client for the Port catalog API. It implements
// the registry and publisher contracts consumed by the sync pipeline.
package port

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sync"
	"time"

	"go.uber.org/zap"

	"mcpsync/internal/domain"
)

// Client talks to the Port REST API. The access token is fetched lazily on
// first need and cached for the lifetime of the run; there is no
// refresh-on-expiry handling.
type Client struct {
	baseURL      string
	clientID     string
	clientSecret string
	httpClient   *http.Client
	logger       *zap.Logger

	mu          sync.Mutex
	accessToken string
}

type Options struct {
	BaseURL      string
	ClientID     string
	ClientSecret string
	Timeout      time.Duration
	Logger       *zap.Logger
}

func NewClient(opts Options) *Client {
	baseURL := opts.BaseURL
	if baseURL == "" {
		baseURL = domain.DefaultAPIBaseURL
	}
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = time.Duration(domain.DefaultHTTPTimeoutSeconds) * time.Second
	}
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Client{
		baseURL:      baseURL,
		clientID:     opts.ClientID,
		clientSecret: opts.ClientSecret,
		httpClient:   &http.Client{Timeout: timeout},
		logger:       logger.Named("port"),
	}
}

type accessTokenRequest struct {
	ClientID     string `json:"clientId"`
	ClientSecret string `json:"clientSecret"`
}

type accessTokenResponse struct {
	AccessToken string `json:"accessToken"`
}

type serverEntity struct {
	Identifier string `json:"identifier"`
	Title      string `json:"title"`
	Properties struct {
		Command string `json:"command"`
	} `json:"properties"`
}

type entitiesResponse struct {
	Entities []serverEntity `json:"entities"`
}

type toolEntity struct {
	Identifier string                `json:"identifier"`
	Title      string                `json:"title"`
	Properties domain.ToolProperties `json:"properties"`
	Relations  toolRelations         `json:"relations"`
}

type toolRelations struct {
	MCPServer string `json:"mcpServer"`
}

type serverPatch struct {
	Properties serverPatchProperties `json:"properties"`
}

type serverPatchProperties struct {
	Tools []string `json:"tools"`
}

// token returns the cached access token, authenticating on first use.
func (c *Client) token(ctx context.Context) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.accessToken != "" {
		return c.accessToken, nil
	}

	c.logger.Info("authenticating with catalog API", zap.String("baseURL", c.baseURL))
	var resp accessTokenResponse
	err := c.doJSON(ctx, http.MethodPost, c.baseURL+"/auth/access_token", "", accessTokenRequest{
		ClientID:     c.clientID,
		ClientSecret: c.clientSecret,
	}, &resp)
	if err != nil {
		return "", domain.Wrap(domain.CodeUnauthenticated, "port.token", err)
	}
	if resp.AccessToken == "" {
		return "", domain.E(domain.CodeUnauthenticated, "port.token", "empty access token", nil)
	}
	c.accessToken = resp.AccessToken
	return c.accessToken, nil
}

// FetchServers returns all MCP server records in registry order.
func (c *Client) FetchServers(ctx context.Context) ([]domain.ServerRecord, error) {
	token, err := c.token(ctx)
	if err != nil {
		return nil, err
	}

	endpoint := fmt.Sprintf("%s/blueprints/%s/entities", c.baseURL, domain.ServerBlueprint)
	var resp entitiesResponse
	if err := c.doJSON(ctx, http.MethodGet, endpoint, token, nil, &resp); err != nil {
		return nil, domain.Wrap(domain.CodeUnavailable, "port.FetchServers", err)
	}

	records := make([]domain.ServerRecord, 0, len(resp.Entities))
	for _, entity := range resp.Entities {
		records = append(records, domain.ServerRecord{
			Identifier:    entity.Identifier,
			Title:         entity.Title,
			LaunchCommand: entity.Properties.Command,
		})
	}
	c.logger.Info("fetched server records", zap.Int("count", len(records)))
	return records, nil
}

// UpsertTool creates or updates one tool entity, merging fields and linking
// it to its originating server.
func (c *Client) UpsertTool(ctx context.Context, record domain.ToolRecord) error {
	token, err := c.token(ctx)
	if err != nil {
		return err
	}

	endpoint := fmt.Sprintf("%s/blueprints/%s/entities?upsert=true&merge=true", c.baseURL, domain.ToolBlueprint)
	body := toolEntity{
		Identifier: record.Identifier,
		Title:      record.Title,
		Properties: record.Properties,
		Relations:  toolRelations{MCPServer: record.ServerID},
	}
	if err := c.doJSON(ctx, http.MethodPost, endpoint, token, body, nil); err != nil {
		return domain.Wrap(domain.CodePublish, "port.UpsertTool", err)
	}
	c.logger.Debug("upserted tool",
		zap.String("tool", record.Identifier),
		zap.String("server", record.ServerID),
	)
	return nil
}

// SetServerToolNames patches the server entity with the names of its tools.
func (c *Client) SetServerToolNames(ctx context.Context, serverID string, names []string) error {
	token, err := c.token(ctx)
	if err != nil {
		return err
	}

	endpoint := fmt.Sprintf("%s/blueprints/%s/entities/%s",
		c.baseURL, domain.ServerBlueprint, url.PathEscape(serverID))
	body := serverPatch{Properties: serverPatchProperties{Tools: names}}
	if err := c.doJSON(ctx, http.MethodPatch, endpoint, token, body, nil); err != nil {
		return domain.Wrap(domain.CodePublish, "port.SetServerToolNames", err)
	}
	return nil
}

func (c *Client) doJSON(ctx context.Context, method, endpoint, token string, body, out any) error {
	var reader io.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode request body: %w", err)
		}
		reader = bytes.NewReader(encoded)
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, reader)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, endpoint, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		payload, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return fmt.Errorf("%s %s: unexpected status %d: %s", method, endpoint, resp.StatusCode, string(payload))
	}

	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

var (
	_ domain.Registry      = (*Client)(nil)
	_ domain.ToolPublisher = (*Client)(nil)
)
