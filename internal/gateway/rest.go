package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/tidwall/gjson"
)

// RESTConfig points the REST backend at a PostgREST (Supabase) project.
type RESTConfig struct {
	URL        string
	APIKey     string
	Timeout    time.Duration
	HTTPClient *http.Client
}

// REST speaks PostgREST: /rest/v1/<table> with filters in the query string.
// The HTTP client timeout is the only timeout; nothing is retried.
type REST struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
}

func NewREST(cfg RESTConfig) (*REST, error) {
	if cfg.URL == "" {
		return nil, errors.New("gateway: rest URL is required")
	}
	if cfg.APIKey == "" {
		return nil, errors.New("gateway: rest API key is required")
	}
	client := cfg.HTTPClient
	if client == nil {
		timeout := cfg.Timeout
		if timeout <= 0 {
			timeout = 10 * time.Second
		}
		client = &http.Client{Timeout: timeout}
	}
	return &REST{
		baseURL:    strings.TrimSuffix(cfg.URL, "/"),
		apiKey:     cfg.APIKey,
		httpClient: client,
	}, nil
}

func (r *REST) Select(ctx context.Context, table string, q Query) ([]Row, error) {
	params := url.Values{}
	params.Set("select", "*")
	if err := encodeFilters(params, q.Filters); err != nil {
		return nil, transportErr("select", table, err)
	}
	if q.Order != nil {
		dir := "asc"
		if q.Order.Desc {
			dir = "desc"
		}
		params.Set("order", q.Order.Column+"."+dir)
	}
	if q.Limit > 0 {
		params.Set("limit", strconv.Itoa(q.Limit))
	}

	body, err := r.do(ctx, http.MethodGet, table, params, nil)
	if err != nil {
		return nil, wrapREST("select", table, err)
	}
	rows, err := parseRows(body)
	if err != nil {
		return nil, transportErr("select", table, err)
	}
	return rows, nil
}

func (r *REST) Insert(ctx context.Context, table string, row Row) (Row, error) {
	payload, err := json.Marshal(row)
	if err != nil {
		return nil, transportErr("insert", table, err)
	}
	body, err := r.do(ctx, http.MethodPost, table, nil, payload)
	if err != nil {
		return nil, wrapREST("insert", table, err)
	}
	rows, err := parseRows(body)
	if err != nil {
		return nil, transportErr("insert", table, err)
	}
	if len(rows) == 0 {
		return nil, transportErr("insert", table, errors.New("store returned no representation"))
	}
	return rows[0], nil
}

func (r *REST) Update(ctx context.Context, table string, filters []Filter, patch Row) (int, error) {
	if len(filters) == 0 {
		return 0, transportErr("update", table, errors.New("refusing unfiltered update"))
	}
	params := url.Values{}
	if err := encodeFilters(params, filters); err != nil {
		return 0, transportErr("update", table, err)
	}
	payload, err := json.Marshal(patch)
	if err != nil {
		return 0, transportErr("update", table, err)
	}
	body, err := r.do(ctx, http.MethodPatch, table, params, payload)
	if err != nil {
		return 0, wrapREST("update", table, err)
	}
	rows, err := parseRows(body)
	if err != nil {
		return 0, transportErr("update", table, err)
	}
	return len(rows), nil
}

func (r *REST) Delete(ctx context.Context, table string, filters []Filter) (int, error) {
	if len(filters) == 0 {
		return 0, transportErr("delete", table, errors.New("refusing unfiltered delete"))
	}
	params := url.Values{}
	if err := encodeFilters(params, filters); err != nil {
		return 0, transportErr("delete", table, err)
	}
	body, err := r.do(ctx, http.MethodDelete, table, params, nil)
	if err != nil {
		return 0, wrapREST("delete", table, err)
	}
	rows, err := parseRows(body)
	if err != nil {
		return 0, transportErr("delete", table, err)
	}
	return len(rows), nil
}

// statusError is a non-2xx answer from PostgREST.
type statusError struct {
	Status  int
	Code    string
	Message string
}

func (e *statusError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("status %d: %s", e.Status, e.Message)
	}
	return fmt.Sprintf("status %d", e.Status)
}

func wrapREST(op, table string, err error) error {
	var se *statusError
	if errors.As(err, &se) && (se.Status == http.StatusConflict || se.Code == uniqueViolation) {
		return conflictErr(op, table, err)
	}
	return transportErr(op, table, err)
}

func (r *REST) do(ctx context.Context, method, table string, params url.Values, payload []byte) ([]byte, error) {
	reqURL := r.baseURL + "/rest/v1/" + url.PathEscape(table)
	if len(params) > 0 {
		reqURL += "?" + params.Encode()
	}

	var rdr io.Reader
	if payload != nil {
		rdr = bytes.NewReader(payload)
	}
	req, err := http.NewRequestWithContext(ctx, method, reqURL, rdr)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("apikey", r.apiKey)
	req.Header.Set("Authorization", "Bearer "+r.apiKey)
	req.Header.Set("Accept", "application/json")
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if method != http.MethodGet {
		req.Header.Set("Prefer", "return=representation")
	}

	resp, err := r.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("http request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}
	if resp.StatusCode >= 400 {
		res := gjson.ParseBytes(body)
		msg := res.Get("message").String()
		if msg == "" {
			msg = res.Get("error").String()
		}
		return nil, &statusError{Status: resp.StatusCode, Code: res.Get("code").String(), Message: msg}
	}
	return body, nil
}

func encodeFilters(params url.Values, filters []Filter) error {
	for _, f := range filters {
		if !identPattern.MatchString(f.Column) {
			return fmt.Errorf("invalid column %q", f.Column)
		}
		switch f.Op {
		case OpEq:
			params.Add(f.Column, "eq."+textOf(f.Value))
		case OpNeq:
			params.Add(f.Column, "neq."+textOf(f.Value))
		case OpIn:
			vals := inValues(f.Value)
			quoted := make([]string, len(vals))
			for i, v := range vals {
				quoted[i] = strconv.Quote(v)
			}
			params.Add(f.Column, "in.("+strings.Join(quoted, ",")+")")
		default:
			return fmt.Errorf("unsupported filter op %q", f.Op)
		}
	}
	return nil
}
