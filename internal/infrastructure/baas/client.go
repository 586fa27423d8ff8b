// Package baas talks to a hosted backend-as-a-service that exposes tables
// through a PostgREST-style REST API (/rest/v1) and sign-in through a
// GoTrue-style auth API (/auth/v1).
package baas

import (
	"context"
	"fmt"
	"strings"
	"time"

	imrocreq "github.com/imroc/req/v3"

	"github.com/appcanvas/builder/pkg/config"
)

// Client is a thin REST client for one BaaS project
type Client struct {
	req    *imrocreq.Client
	apiKey string
}

// apiError is the error body returned by both the table and auth APIs
type apiError struct {
	Message          string `json:"message"`
	Msg              string `json:"msg"`
	Error            string `json:"error"`
	ErrorDescription string `json:"error_description"`
	Code             any    `json:"code"`
}

func (e *apiError) text() string {
	for _, s := range []string{e.Message, e.Msg, e.ErrorDescription, e.Error} {
		if s != "" {
			return s
		}
	}
	return ""
}

// NewClient builds a client from the baas config section
func NewClient(cfg *config.Config) *Client {
	timeout := time.Duration(cfg.BaaS.TimeoutSeconds) * time.Second
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return newClient(cfg.BaaS.URL, cfg.BaaS.APIKey, timeout)
}

func newClient(baseURL, apiKey string, timeout time.Duration) *Client {
	c := imrocreq.C().
		SetBaseURL(strings.TrimRight(baseURL, "/")).
		SetTimeout(timeout).
		SetCommonHeader("apikey", apiKey).
		SetCommonHeader("Accept", "application/json")
	return &Client{req: c, apiKey: apiKey}
}

// request starts a call authorized with token, or with the API key when token is empty
func (c *Client) request(ctx context.Context, token string) *imrocreq.Request {
	if token == "" {
		token = c.apiKey
	}
	return c.req.R().SetContext(ctx).SetBearerAuthToken(token)
}

func checkResponse(op string, resp *imrocreq.Response, err error, apiErr *apiError) error {
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if resp.IsErrorState() {
		msg := apiErr.text()
		if msg == "" {
			msg = resp.String()
		}
		return fmt.Errorf("%s: status %d: %s", op, resp.StatusCode, msg)
	}
	return nil
}

// selectRows runs GET /rest/v1/<table> with PostgREST filters such as {"project_id": "eq.p1"}
func (c *Client) selectRows(ctx context.Context, table string, filters map[string]string, order string, out any) error {
	var apiErr apiError
	r := c.request(ctx, "").
		SetQueryParam("select", "*").
		SetQueryParams(filters).
		SetSuccessResult(out).
		SetErrorResult(&apiErr)
	if order != "" {
		r.SetQueryParam("order", order)
	}
	resp, err := r.Get("/rest/v1/" + table)
	return checkResponse("select "+table, resp, err, &apiErr)
}

// upsertRows merges rows by primary key
func (c *Client) upsertRows(ctx context.Context, table string, rows any) error {
	var apiErr apiError
	resp, err := c.request(ctx, "").
		SetHeader("Prefer", "resolution=merge-duplicates,return=minimal").
		SetBodyJsonMarshal(rows).
		SetErrorResult(&apiErr).
		Post("/rest/v1/" + table)
	return checkResponse("upsert "+table, resp, err, &apiErr)
}

// insertRows inserts rows
func (c *Client) insertRows(ctx context.Context, table string, rows any) error {
	var apiErr apiError
	resp, err := c.request(ctx, "").
		SetHeader("Prefer", "return=minimal").
		SetBodyJsonMarshal(rows).
		SetErrorResult(&apiErr).
		Post("/rest/v1/" + table)
	return checkResponse("insert "+table, resp, err, &apiErr)
}

// deleteRows deletes every row matching filters
func (c *Client) deleteRows(ctx context.Context, table string, filters map[string]string) error {
	var apiErr apiError
	resp, err := c.request(ctx, "").
		SetQueryParams(filters).
		SetErrorResult(&apiErr).
		Delete("/rest/v1/" + table)
	return checkResponse("delete "+table, resp, err, &apiErr)
}

func eq(v string) string {
	return "eq." + v
}
