// Package reviewboard implements approval.Interface using the Review Board
// web API.
package reviewboard

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/blang/semver/v4"

	"github.com/jeffrom/rbgate/approval"
	"github.com/jeffrom/rbgate/config"
)

// Client checks review request approval against a Review Board server.
type Client struct {
	cfg        config.Config
	serverURL  string
	httpCli    *http.Client
	maxRetries int
	backoff    time.Duration
}

func New(cfg config.Config) (*Client, error) {
	if cfg.ServerURL == "" {
		return nil, errors.New("reviewboard: server_url is required")
	}
	return &Client{
		cfg:        cfg,
		serverURL:  strings.TrimRight(cfg.ServerURL, "/"),
		httpCli:    &http.Client{Timeout: cfg.GetTimeout()},
		maxRetries: cfg.GetMaxRetries(),
		backoff:    time.Second,
	}, nil
}

// ReviewRequest is the subset of the review request resource rbgate uses.
type ReviewRequest struct {
	ID              int    `json:"id"`
	Summary         string `json:"summary"`
	Status          string `json:"status"`
	Approved        bool   `json:"approved"`
	ApprovalFailure string `json:"approval_failure"`
}

type reviewRequestResponse struct {
	Stat          string         `json:"stat"`
	ReviewRequest *ReviewRequest `json:"review_request"`
}

type infoResponse struct {
	Stat string `json:"stat"`
	Info struct {
		Product struct {
			Name    string `json:"name"`
			Version string `json:"version"`
		} `json:"product"`
	} `json:"info"`
}

type errorResponse struct {
	Stat string `json:"stat"`
	Err  struct {
		Code int    `json:"code"`
		Msg  string `json:"msg"`
	} `json:"err"`
}

// CheckApproval implements approval.Interface.
func (c *Client) CheckApproval(ctx context.Context, id string) approval.Result {
	rr, err := c.GetReviewRequest(ctx, id)
	if err != nil {
		return approval.Fail(err)
	}
	if rr.Approved {
		return approval.Approve()
	}
	reason := rr.ApprovalFailure
	if reason == "" {
		reason = "not approved"
	}
	return approval.Reject(reason)
}

// GetReviewRequest fetches review request id.
func (c *Client) GetReviewRequest(ctx context.Context, id string) (*ReviewRequest, error) {
	res := &reviewRequestResponse{}
	if err := c.get(ctx, fmt.Sprintf("/api/review-requests/%s/", id), res); err != nil {
		if nf := (NotFoundError{}); errors.As(err, &nf) {
			nf.ReviewRequest = id
			return nil, nf
		}
		return nil, err
	}
	if res.ReviewRequest == nil {
		return nil, fmt.Errorf("reviewboard: review request %s: response has no review_request", id)
	}
	return res.ReviewRequest, nil
}

// ServerVersion returns the Review Board version the server reports.
func (c *Client) ServerVersion(ctx context.Context) (semver.Version, error) {
	res := &infoResponse{}
	if err := c.get(ctx, "/api/info/", res); err != nil {
		return semver.Version{}, err
	}
	raw := res.Info.Product.Version
	v, err := semver.ParseTolerant(raw)
	if err != nil {
		return semver.Version{}, fmt.Errorf("reviewboard: invalid server version %q: %w", raw, err)
	}
	return v, nil
}

// CheckServerVersion fails if the server is older than min. Review requests
// only expose approval state from Review Board 2.0 on.
func (c *Client) CheckServerVersion(ctx context.Context, min string) error {
	if min == "" {
		min = config.DefaultMinServerVersion
	}
	minVer, err := semver.ParseTolerant(min)
	if err != nil {
		return fmt.Errorf("reviewboard: invalid minimum version %q: %w", min, err)
	}
	v, err := c.ServerVersion(ctx)
	if err != nil {
		return err
	}
	c.cfg.Debugf("Review Board server version %s", v)
	if v.LT(minVer) {
		return fmt.Errorf("reviewboard: server version %s is older than %s, which is required for approval checks", v, minVer)
	}
	return nil
}

func (c *Client) get(ctx context.Context, p string, v interface{}) error {
	url := c.serverURL + p
	return retryWithBackoff(ctx, c.maxRetries, c.backoff, func() error {
		return c.doGet(ctx, url, v)
	})
}

func (c *Client) doGet(ctx context.Context, url string, v interface{}) error {
	req, err := http.NewRequestWithContext(ctx, "GET", url, nil)
	if err != nil {
		return fmt.Errorf("reviewboard: creating request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	c.authorize(req)

	c.cfg.Debugf("GET %s", url)
	resp, err := c.httpCli.Do(req)
	if err != nil {
		return &transportError{err: err}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("reviewboard: reading response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return newStatusError(resp.StatusCode, body)
	}
	if err := json.Unmarshal(body, v); err != nil {
		return fmt.Errorf("reviewboard: parsing response: %w", err)
	}
	return nil
}

func (c *Client) authorize(req *http.Request) {
	if c.cfg.APIToken != "" {
		req.Header.Set("Authorization", "token "+c.cfg.APIToken)
		return
	}
	if c.cfg.Username != "" {
		req.SetBasicAuth(c.cfg.Username, c.cfg.Password)
	}
}

func newStatusError(status int, body []byte) error {
	apiErr := &APIError{StatusCode: status}
	er := errorResponse{}
	if err := json.Unmarshal(body, &er); err == nil && er.Stat == "fail" {
		apiErr.Code = er.Err.Code
		apiErr.Message = er.Err.Msg
	} else {
		apiErr.Message = strings.TrimSpace(string(body))
	}

	switch status {
	case http.StatusNotFound:
		return NotFoundError{}
	case http.StatusUnauthorized, http.StatusForbidden:
		return &AuthError{APIError: apiErr}
	}
	return apiErr
}
