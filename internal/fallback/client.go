// Package fallback talks to the third-party translation API used when no owned source knows a word.
package fallback

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/avast/retry-go"
	"github.com/go-resty/resty/v2"
	"github.com/tidwall/gjson"
)

// ErrUnavailable is wrapped by every failure of the translation API.
var ErrUnavailable = errors.New("fallback translator unavailable")

//go:generate mockgen -source=client.go -destination=../mocks/fallback/mock_client.go -package=mock_fallback

// Translator translates a text into the configured target language.
type Translator interface {
	Translate(ctx context.Context, text string) (string, error)
}

// Client calls an API answering GET ?q=<text>&langpair=<pair> with
// {"responseStatus": 200, "responseData": {"translatedText": "..."}}.
type Client struct {
	httpClient       *resty.Client
	endpoint         string
	langPair         string
	maxRetryAttempts uint
	retryDelay       time.Duration
}

func NewClient(endpoint, langPair string, timeout time.Duration, retryAttempts uint) *Client {
	return &Client{
		httpClient:       resty.New().SetTimeout(timeout),
		endpoint:         endpoint,
		langPair:         langPair,
		maxRetryAttempts: retryAttempts,
		retryDelay:       200 * time.Millisecond,
	}
}

// Translate returns the translated text. An empty string means the API had no translation.
func (c *Client) Translate(ctx context.Context, text string) (string, error) {
	var result string
	var lastErr error
	err := retry.Do(
		func() error {
			translated, retryable, err := c.translate(ctx, text)
			if err != nil {
				lastErr = err
				if !retryable {
					return retry.Unrecoverable(err)
				}
				slog.Default().Debug("fallback translation failed, will retry", "text", text, "error", err)
				return err
			}
			result = translated
			return nil
		},
		retry.Context(ctx),
		retry.Attempts(c.maxRetryAttempts+1),
		retry.Delay(c.retryDelay),
		retry.DelayType(retry.BackOffDelay),
	)
	if err != nil {
		if lastErr == nil {
			lastErr = err
		}
		return "", fmt.Errorf("%w: %w", ErrUnavailable, lastErr)
	}
	return result, nil
}

func (c *Client) translate(ctx context.Context, text string) (string, bool, error) {
	response, err := c.httpClient.R().
		SetContext(ctx).
		SetQueryParams(map[string]string{
			"q":        text,
			"langpair": c.langPair,
		}).
		Get(c.endpoint)
	if err != nil {
		return "", ctx.Err() == nil, fmt.Errorf("request translation: %w", err)
	}
	if response.StatusCode() != http.StatusOK {
		retryable := response.StatusCode() >= http.StatusInternalServerError || response.StatusCode() == http.StatusTooManyRequests
		return "", retryable, fmt.Errorf("status code: %d, body: %s", response.StatusCode(), response.String())
	}

	body := response.Body()
	if !gjson.ValidBytes(body) {
		return "", false, fmt.Errorf("malformed response body: %s", response.String())
	}
	if status := gjson.GetBytes(body, "responseStatus"); status.Int() != http.StatusOK {
		return "", false, fmt.Errorf("response status %s: %s", status.String(), gjson.GetBytes(body, "responseDetails").String())
	}
	translated := gjson.GetBytes(body, "responseData.translatedText")
	if translated.Type != gjson.String && translated.Exists() {
		return "", false, fmt.Errorf("malformed translated text: %s", translated.Raw)
	}
	return strings.TrimSpace(translated.String()), false, nil
}

var _ Translator = (*Client)(nil)
