package relaysvc

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/google/uuid"
	"github.com/pkg/errors"

	"github.com/trezcool/darasa/core"
	"github.com/trezcool/darasa/core/submission"
)

var errEmptyBody = errors.New("empty response body")

type payload struct {
	AssignmentID int    `json:"assignment_id"`
	SubmittedAt  string `json:"submitted_at"`
	StudentID    int    `json:"student_id"`
}

// Client posts every submission to the external collector.
type Client struct {
	client *resty.Client
	path   string
	logger core.Logger
}

var _ submission.Relayer = (*Client)(nil) // interface compliance check

func NewClient(conf *core.Config, logger core.Logger) *Client {
	client := resty.New().
		SetBaseURL(conf.Relay.BaseURL).
		SetTimeout(conf.Relay.Timeout).
		SetHeader("Accept", "application/json").
		SetHeader("Content-Type", "application/json").
		SetHeader("User-Agent", fmt.Sprintf("%s/%s", conf.AppName, conf.Build))

	client.OnBeforeRequest(func(_ *resty.Client, req *resty.Request) error {
		logger.Debug("relay request", map[string]interface{}{"method": req.Method, "url": req.URL})
		return nil
	})
	client.OnAfterResponse(func(_ *resty.Client, resp *resty.Response) error {
		logger.Debug("relay response", map[string]interface{}{"status": resp.StatusCode(), "took": resp.Time().String()})
		return nil
	})

	return &Client{client: client, path: conf.Relay.Path, logger: logger}
}

// IdempotencyKey is stable per stored submission, so the collector can drop transport retries.
func IdempotencyKey(submissionID int) string {
	return uuid.NewSHA1(uuid.NameSpaceURL, []byte(fmt.Sprintf("darasa:submission:%d", submissionID))).String()
}

// Relay sends one entry and returns the decoded collector response.
// Any HTTP status counts as delivered as long as the body is JSON.
func (c *Client) Relay(ctx context.Context, entry submission.RelayEntry) (interface{}, error) {
	data, err := c.post(ctx, entry)
	c.logOutcome(entry, data, err)
	if err != nil {
		return nil, err
	}
	return data, nil
}

// logOutcome reports a settled call. A panicking logger does not change the outcome.
func (c *Client) logOutcome(entry submission.RelayEntry, data interface{}, err error) {
	defer func() { _ = recover() }()

	extra := map[string]interface{}{"submission_id": entry.SubmissionID}
	if err != nil {
		c.logger.Error("Failed to log submission to external service", err, extra)
		return
	}
	extra["data"] = data
	c.logger.Info("Submission logged to external service", extra)
}

func (c *Client) post(ctx context.Context, entry submission.RelayEntry) (interface{}, error) {
	resp, err := c.client.R().
		SetContext(ctx).
		SetHeader("Idempotency-Key", IdempotencyKey(entry.SubmissionID)).
		SetBody(payload{
			AssignmentID: entry.AssignmentID,
			SubmittedAt:  entry.SubmittedAt.UTC().Format(time.RFC3339),
			StudentID:    entry.StudentID,
		}).
		Post(c.path)
	if err != nil {
		return nil, errors.Wrap(err, "posting submission")
	}

	body := resp.Body()
	if len(body) == 0 {
		return nil, errors.Wrapf(errEmptyBody, "%d %s", resp.StatusCode(), http.StatusText(resp.StatusCode()))
	}
	var data interface{}
	if err = c.client.JSONUnmarshal(body, &data); err != nil {
		return nil, errors.Wrap(err, "decoding collector response")
	}
	return data, nil
}
