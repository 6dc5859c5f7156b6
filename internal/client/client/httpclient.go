package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/healthdot/registry/internal/common"
	"github.com/healthdot/registry/internal/client/models"
)

// HTTPClient talks to the registry server's JSON API. Once CreateSession
// succeeds, the session token is attached to every request.
type HTTPClient struct {
	baseURL     string
	accessToken string
	httpClient  *http.Client
}

func NewHTTPClient(baseURL string, timeout time.Duration) *HTTPClient {
	return &HTTPClient{
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: timeout},
	}
}

type errorBody struct {
	Error string `json:"error"`
}

// mapStatus turns a non-2xx response into a sentinel error where the status
// is unambiguous, keeping the server's message for context.
func mapStatus(status int, msg string) error {
	switch status {
	case http.StatusNotFound:
		return fmt.Errorf("%w: %s", common.ErrNotFound, msg)
	case http.StatusConflict:
		return fmt.Errorf("%w: %s", common.ErrTokenExists, msg)
	case http.StatusForbidden:
		return fmt.Errorf("%w: %s", common.ErrUnauthorized, msg)
	case http.StatusUnauthorized:
		return fmt.Errorf("%w: %s", common.ErrInvalidToken, msg)
	default:
		return fmt.Errorf("server returned %d: %s", status, msg)
	}
}

// do performs one JSON round-trip. A nil out skips response decoding.
func (c *HTTPClient) do(ctx context.Context, method, path string, in, out any) error {
	var body io.Reader
	if in != nil {
		data, err := json.Marshal(in)
		if err != nil {
			return err
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return err
	}
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.accessToken != "" {
		req.Header.Set(common.AuthHeaderName, common.AuthHeaderPrefix+c.accessToken)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", common.ErrUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		var eb errorBody
		_ = json.NewDecoder(resp.Body).Decode(&eb)
		return mapStatus(resp.StatusCode, eb.Error)
	}

	if out == nil {
		return nil
	}
	return json.NewDecoder(resp.Body).Decode(out)
}

func (c *HTTPClient) CreateSession(ctx context.Context, account, registrarSecret string) error {
	var resp struct {
		AccessToken string `json:"access_token"`
	}
	err := c.do(ctx, http.MethodPost, "/api/v1/session", map[string]string{
		"account":          account,
		"registrar_secret": registrarSecret,
	}, &resp)
	if err != nil {
		return err
	}
	c.accessToken = resp.AccessToken
	return nil
}

func (c *HTTPClient) Mint(ctx context.Context, tokenID, dataRef string) (*models.Token, error) {
	t := &models.Token{}
	err := c.do(ctx, http.MethodPost, "/api/v1/tokens", map[string]string{
		"token_id": tokenID,
		"data_ref": dataRef,
	}, t)
	if err != nil {
		return nil, err
	}
	return t, nil
}

func (c *HTTPClient) Transfer(ctx context.Context, tokenID, from, to string) error {
	return c.do(ctx, http.MethodPost, "/api/v1/tokens/"+tokenID+"/transfer", map[string]string{
		"from": from,
		"to":   to,
	}, nil)
}

func (c *HTTPClient) Approve(ctx context.Context, tokenID, delegate string) error {
	return c.do(ctx, http.MethodPut, "/api/v1/tokens/"+tokenID+"/approval", map[string]string{
		"delegate": delegate,
	}, nil)
}

func (c *HTTPClient) SetOperator(ctx context.Context, operator string, approved bool) error {
	return c.do(ctx, http.MethodPut, "/api/v1/operators/"+operator, map[string]bool{
		"approved": approved,
	}, nil)
}

func (c *HTTPClient) Token(ctx context.Context, tokenID string) (*models.Token, error) {
	t := &models.Token{}
	if err := c.do(ctx, http.MethodGet, "/api/v1/tokens/"+tokenID, nil, t); err != nil {
		return nil, err
	}
	return t, nil
}

func (c *HTTPClient) ListTokens(ctx context.Context, owner string) ([]*models.Token, error) {
	path := "/api/v1/tokens"
	if owner != "" {
		path += "?owner=" + owner
	}
	var result []*models.Token
	if err := c.do(ctx, http.MethodGet, path, nil, &result); err != nil {
		return nil, err
	}
	return result, nil
}

func (c *HTTPClient) Balance(ctx context.Context, account string) (uint64, error) {
	var resp struct {
		Balance uint64 `json:"balance"`
	}
	if err := c.do(ctx, http.MethodGet, "/api/v1/accounts/"+account+"/balance", nil, &resp); err != nil {
		return 0, err
	}
	return resp.Balance, nil
}

func (c *HTTPClient) GetApproved(ctx context.Context, tokenID string) (string, error) {
	var resp struct {
		Delegate string `json:"delegate"`
	}
	if err := c.do(ctx, http.MethodGet, "/api/v1/tokens/"+tokenID+"/approval", nil, &resp); err != nil {
		return "", err
	}
	return resp.Delegate, nil
}

func (c *HTTPClient) IsOperator(ctx context.Context, owner, operator string) (bool, error) {
	var resp struct {
		Approved bool `json:"approved"`
	}
	if err := c.do(ctx, http.MethodGet, "/api/v1/accounts/"+owner+"/operators/"+operator, nil, &resp); err != nil {
		return false, err
	}
	return resp.Approved, nil
}

func (c *HTTPClient) Events(ctx context.Context, after int64, limit int) ([]*models.Event, error) {
	path := "/api/v1/events?after=" + strconv.FormatInt(after, 10) + "&limit=" + strconv.Itoa(limit)
	var result []*models.Event
	if err := c.do(ctx, http.MethodGet, path, nil, &result); err != nil {
		return nil, err
	}
	return result, nil
}

func (c *HTTPClient) CreateRecord(ctx context.Context, patient, kind, name string) (*models.Record, string, error) {
	var resp struct {
		Record models.Record `json:"record"`
		PutURL string        `json:"put_url"`
	}
	err := c.do(ctx, http.MethodPost, "/api/v1/records", map[string]string{
		"patient": patient,
		"kind":    kind,
		"name":    name,
	}, &resp)
	if err != nil {
		return nil, "", err
	}
	return &resp.Record, resp.PutURL, nil
}

func (c *HTTPClient) FinalizeRecord(ctx context.Context, recordID, digestHex string) error {
	return c.do(ctx, http.MethodPost, "/api/v1/records/"+recordID+"/finalize", map[string]string{
		"digest_hex": digestHex,
	}, nil)
}

func (c *HTTPClient) Record(ctx context.Context, recordID string) (*models.Record, error) {
	r := &models.Record{}
	if err := c.do(ctx, http.MethodGet, "/api/v1/records/"+recordID, nil, r); err != nil {
		return nil, err
	}
	return r, nil
}

func (c *HTTPClient) RecordDownloadURL(ctx context.Context, recordID string) (string, error) {
	var resp struct {
		GetURL string `json:"get_url"`
	}
	if err := c.do(ctx, http.MethodGet, "/api/v1/records/"+recordID+"/download", nil, &resp); err != nil {
		return "", err
	}
	return resp.GetURL, nil
}

func (c *HTTPClient) Ping(ctx context.Context) error {
	return c.do(ctx, http.MethodGet, "/healthz", nil, nil)
}
