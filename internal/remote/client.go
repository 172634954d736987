// Package remote is the HTTP client of the remote translation store.
package remote

import (
	"context"
	"net/http"
	"time"

	"github.com/avast/retry-go"
	"github.com/tidwall/gjson"
	"resty.dev/v3"

	"github.com/at-ishikawa/wordsync/internal/translation"
)

// LookupResult is a hit of GET /lookup/{word}.
type LookupResult struct {
	// Source is "local" for the server dictionary or "database" for a stored translation.
	Source string     `json:"source"`
	Data   LookupData `json:"data"`
}

// LookupData holds the fields of a hit. Any of them may be empty.
type LookupData struct {
	Word               string `json:"word"`
	Translation        string `json:"translation"`
	Phonetic           string `json:"phonetic,omitempty"`
	Example            string `json:"example,omitempty"`
	ExampleTranslation string `json:"exampleTranslation,omitempty"`
}

type upsertRequest struct {
	Word        string `json:"word"`
	Translation string `json:"translation"`
}

type batchRequest struct {
	Translations []translation.Record `json:"translations"`
}

type Client struct {
	httpClient       *resty.Client
	maxRetryAttempts uint
	retryDelay       time.Duration
}

func NewClient(baseURL string, timeout time.Duration, retryAttempts uint) *Client {
	client := resty.New()
	client.SetBaseURL(baseURL)
	client.SetTimeout(timeout)
	client.SetHeader("Content-Type", "application/json")

	return &Client{
		httpClient:       client,
		maxRetryAttempts: retryAttempts,
		retryDelay:       200 * time.Millisecond,
	}
}

func (c *Client) Close() error {
	return c.httpClient.Close()
}

// Upsert saves a single translation. The remote store increments the count of an existing word.
// It is not retried since a repeated call counts twice.
func (c *Client) Upsert(ctx context.Context, word, text string) error {
	_, err := c.send(ctx, "upsert", false, func() (*resty.Response, error) {
		return c.httpClient.R().
			SetContext(ctx).
			SetBody(upsertRequest{Word: word, Translation: text}).
			Post("/translations")
	})
	return err
}

// List returns every remote record, most recently modified first.
func (c *Client) List(ctx context.Context) ([]translation.Record, error) {
	var records []translation.Record
	_, err := c.send(ctx, "list", true, func() (*resty.Response, error) {
		records = nil
		return c.httpClient.R().
			SetContext(ctx).
			SetResult(&records).
			Get("/translations")
	})
	if err != nil {
		return nil, err
	}
	return records, nil
}

// Delete removes a remote record. The remote store falls back to word when id is not one of its own,
// which is the case for records created locally. Deleting a missing record succeeds.
func (c *Client) Delete(ctx context.Context, id, word string) error {
	_, err := c.send(ctx, "delete", true, func() (*resty.Response, error) {
		req := c.httpClient.R().
			SetContext(ctx).
			SetPathParam("id", id)
		if word != "" {
			req.SetQueryParam("word", word)
		}
		return req.Delete("/translations/{id}")
	})
	return err
}

// BatchUpsert pushes records in one request. The remote store keeps the newer of two versions of a word.
func (c *Client) BatchUpsert(ctx context.Context, records []translation.Record) error {
	_, err := c.send(ctx, "batch upsert", true, func() (*resty.Response, error) {
		return c.httpClient.R().
			SetContext(ctx).
			SetBody(batchRequest{Translations: records}).
			Post("/translations/batch")
	})
	return err
}

// Lookup queries the remote dictionary and database. A miss returns nil without an error.
func (c *Client) Lookup(ctx context.Context, word string) (*LookupResult, error) {
	var result LookupResult
	response, err := c.send(ctx, "lookup", true, func() (*resty.Response, error) {
		result = LookupResult{}
		return c.httpClient.R().
			SetContext(ctx).
			SetPathParam("word", word).
			SetResult(&result).
			Get("/lookup/{word}")
	})
	if response != nil && response.StatusCode() == http.StatusNotFound {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &result, nil
}

// send runs call, retrying transport errors and server errors when retryable is set.
// A 404 response is returned together with its error so that callers can treat it as a miss.
func (c *Client) send(ctx context.Context, op string, retryable bool, call func() (*resty.Response, error)) (*resty.Response, error) {
	attempts := uint(1)
	if retryable {
		attempts = c.maxRetryAttempts + 1
	}

	var response *resty.Response
	var lastErr error
	err := retry.Do(
		func() error {
			res, err := call()
			response = res
			if err != nil {
				lastErr = &Error{Op: op, Err: err}
				if ctx.Err() != nil {
					return retry.Unrecoverable(lastErr)
				}
				return lastErr
			}
			if res.IsError() {
				lastErr = &Error{
					Op:         op,
					StatusCode: res.StatusCode(),
					Message:    errorMessage(res),
				}
				if res.StatusCode() < http.StatusInternalServerError {
					return retry.Unrecoverable(lastErr)
				}
				return lastErr
			}
			lastErr = nil
			return nil
		},
		retry.Context(ctx),
		retry.Attempts(attempts),
		retry.Delay(c.retryDelay),
		retry.DelayType(retry.BackOffDelay),
	)
	if err != nil {
		if lastErr == nil {
			lastErr = &Error{Op: op, Err: err}
		}
		return response, lastErr
	}
	return response, nil
}

// errorMessage extracts the "error" field of an error body, or the raw body.
func errorMessage(res *resty.Response) string {
	body := res.String()
	if message := gjson.Get(body, "error"); message.Exists() {
		return message.String()
	}
	return body
}
