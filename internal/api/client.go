package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/google/uuid"
	"github.com/inovacc/patientdesk/internal/core"
	"github.com/inovacc/patientdesk/internal/model"
)

const (
	patientPath   = "/patient"
	patientIDPath = "/patient/{id}"

	requestIDHeader = "X-Request-ID"

	// maxPages bounds ListAll against a backend that never reports an end.
	maxPages = 10000
)

// Client talks to the patient REST service.
type Client struct {
	http   *resty.Client
	logger *slog.Logger
}

// Options configures the Client.
type Options struct {
	BaseURL string
	Timeout time.Duration
	Logger  *slog.Logger

	// HTTPClient replaces the underlying transport, mainly for tests
	HTTPClient *http.Client
}

// errorBody is the error payload of the service.
type errorBody struct {
	Message string `json:"message"`
}

var _ core.Backend = (*Client)(nil)

// NewClient creates a client for the service at opts.BaseURL.
func NewClient(opts Options) (*Client, error) {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	base := strings.TrimRight(strings.TrimSpace(opts.BaseURL), "/")
	if base == "" {
		return nil, fmt.Errorf("base URL is required")
	}

	if !strings.HasPrefix(base, "http://") && !strings.HasPrefix(base, "https://") {
		return nil, fmt.Errorf("base URL %q must start with http:// or https://", opts.BaseURL)
	}

	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = model.DefaultConfig().Timeout
	}

	var rc *resty.Client
	if opts.HTTPClient != nil {
		rc = resty.NewWithClient(opts.HTTPClient)
	} else {
		rc = resty.New()
	}

	rc.SetBaseURL(base).
		SetTimeout(timeout).
		SetRetryCount(0).
		SetHeader("Content-Type", "application/json").
		SetHeader("Accept", "application/json").
		SetLogger(restyLogger{logger})

	logger.Debug("creating patient client", slog.String("base_url", base))

	return &Client{http: rc, logger: logger}, nil
}

// request starts a request tagged with a fresh correlation id.
func (c *Client) request(ctx context.Context) (*resty.Request, string) {
	id := uuid.NewString()

	return c.http.R().
		SetContext(ctx).
		SetHeader(requestIDHeader, id).
		SetError(&errorBody{}), id
}

// do sends req and maps transport and HTTP failures to *core.RequestError.
func (c *Client) do(op core.Op, req *resty.Request, reqID, method, path string) (*resty.Response, error) {
	start := time.Now()

	resp, err := req.Execute(method, path)
	if err != nil {
		c.logger.Warn("patient request failed",
			slog.String("op", string(op)),
			slog.String("method", method),
			slog.String("path", path),
			slog.String("request_id", reqID),
			slog.Any("error", err),
		)

		return nil, &core.RequestError{Op: op, Err: err}
	}

	c.logger.Debug("patient request",
		slog.String("op", string(op)),
		slog.String("method", method),
		slog.String("path", path),
		slog.String("request_id", reqID),
		slog.Int("status", resp.StatusCode()),
		slog.Duration("elapsed", time.Since(start)),
	)

	if resp.IsError() {
		reqErr := &core.RequestError{Op: op, Status: resp.StatusCode()}
		if body, ok := resp.Error().(*errorBody); ok && body != nil {
			reqErr.Message = body.Message
		}

		return nil, reqErr
	}

	return resp, nil
}

// ListAll fetches every patient. The service may answer with a bare array or
// with a page object, in which case the remaining pages are fetched too.
func (c *Client) ListAll(ctx context.Context) ([]model.Patient, error) {
	req, reqID := c.request(ctx)

	resp, err := c.do(core.OpList, req, reqID, http.MethodGet, patientPath)
	if err != nil {
		return nil, err
	}

	body := bytes.TrimSpace(resp.Body())
	if len(body) > 0 && body[0] == '[' {
		var out []model.Patient
		if err := json.Unmarshal(body, &out); err != nil {
			return nil, &core.RequestError{Op: core.OpList, Err: fmt.Errorf("decode patients: %w", err)}
		}

		return out, nil
	}

	var first core.Page
	if err := json.Unmarshal(body, &first); err != nil {
		return nil, &core.RequestError{Op: core.OpList, Err: fmt.Errorf("decode patient page: %w", err)}
	}

	out := first.Content

	for n := first.Number + 1; n < min(first.TotalPages, maxPages); n++ {
		page, err := c.fetchPage(ctx, map[string]string{"page": strconv.Itoa(n)})
		if err != nil {
			return nil, err
		}

		if len(page.Content) == 0 {
			break
		}

		out = append(out, page.Content...)
	}

	return out, nil
}

// ListPage fetches one page with the backend doing search, sort and paging.
func (c *Client) ListPage(ctx context.Context, pr core.PageRequest) (core.Page, error) {
	params := map[string]string{
		"page": strconv.Itoa(pr.Page),
		"size": strconv.Itoa(pr.Size),
	}

	if pr.Sort.Field != "" {
		params["sort"] = pr.Sort.String()
	}

	if pr.Search != "" {
		params["search"] = pr.Search
	}

	return c.fetchPage(ctx, params)
}

func (c *Client) fetchPage(ctx context.Context, params map[string]string) (core.Page, error) {
	var page core.Page

	req, reqID := c.request(ctx)
	req.SetQueryParams(params).SetResult(&page)

	if _, err := c.do(core.OpList, req, reqID, http.MethodGet, patientPath); err != nil {
		return core.Page{}, err
	}

	return page, nil
}

// Get fetches one patient by id.
func (c *Client) Get(ctx context.Context, id int64) (model.Patient, error) {
	var p model.Patient

	req, reqID := c.request(ctx)
	req.SetPathParam("id", strconv.FormatInt(id, 10)).SetResult(&p)

	if _, err := c.do(core.OpGet, req, reqID, http.MethodGet, patientIDPath); err != nil {
		return model.Patient{}, err
	}

	return p, nil
}

// Create stores a new patient and returns it with the assigned id.
func (c *Client) Create(ctx context.Context, p model.Patient) (model.Patient, error) {
	p.ID = 0

	var created model.Patient

	req, reqID := c.request(ctx)
	req.SetBody(p).SetResult(&created)

	if _, err := c.do(core.OpCreate, req, reqID, http.MethodPost, patientPath); err != nil {
		return model.Patient{}, err
	}

	if created.ID == 0 {
		return model.Patient{}, &core.RequestError{Op: core.OpCreate, Err: errors.New("response carries no id")}
	}

	return created, nil
}

// Update replaces the stored patient with p.
func (c *Client) Update(ctx context.Context, p model.Patient) (model.Patient, error) {
	if p.IsNew() {
		return model.Patient{}, &core.RequestError{Op: core.OpUpdate, Err: errors.New("patient has no id")}
	}

	var updated model.Patient

	req, reqID := c.request(ctx)
	req.SetPathParam("id", strconv.FormatInt(p.ID, 10)).SetBody(p).SetResult(&updated)

	resp, err := c.do(core.OpUpdate, req, reqID, http.MethodPut, patientIDPath)
	if err != nil {
		return model.Patient{}, err
	}

	// some services answer 204 with no body
	if len(resp.Body()) == 0 || updated.ID == 0 {
		return p, nil
	}

	return updated, nil
}

// Delete removes the patient with the given id.
func (c *Client) Delete(ctx context.Context, id int64) error {
	req, reqID := c.request(ctx)
	req.SetPathParam("id", strconv.FormatInt(id, 10))

	_, err := c.do(core.OpDelete, req, reqID, http.MethodDelete, patientIDPath)

	return err
}

// restyLogger routes resty's own diagnostics into slog.
type restyLogger struct {
	logger *slog.Logger
}

func (l restyLogger) Errorf(format string, v ...any) {
	l.logger.Error(fmt.Sprintf(format, v...), slog.String("component", "resty"))
}

func (l restyLogger) Warnf(format string, v ...any) {
	l.logger.Warn(fmt.Sprintf(format, v...), slog.String("component", "resty"))
}

func (l restyLogger) Debugf(format string, v ...any) {
	l.logger.Debug(fmt.Sprintf(format, v...), slog.String("component", "resty"))
}
