package telegram

import (
	"context"
	"errors"
	"time"

	"github.com/cenkalti/backoff/v4"
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"golang.org/x/time/rate"
)

// Sender is the part of *tgbotapi.BotAPI the client needs
type Sender interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
}

// Client wraps a Sender with rate limiting and retries
type Client struct {
	Sender  Sender
	Limiter *rate.Limiter

	maxRetryTimeout time.Duration
}

// ClientOptions holds options for creating a new Client
type ClientOptions struct {
	MessagesPerSec  float64
	Burst           int
	MaxRetryTimeout time.Duration
}

// NewClient creates a new rate limited client around sender
func NewClient(sender Sender, opts ClientOptions) *Client {
	if opts.MessagesPerSec <= 0 {
		opts.MessagesPerSec = 25
	}
	if opts.Burst <= 0 {
		opts.Burst = 1
	}
	if opts.MaxRetryTimeout == 0 {
		opts.MaxRetryTimeout = 30 * time.Second
	}

	return &Client{
		Sender:          sender,
		Limiter:         rate.NewLimiter(rate.Limit(opts.MessagesPerSec), opts.Burst),
		maxRetryTimeout: opts.MaxRetryTimeout,
	}
}

// Send delivers c, waiting for the limiter and retrying transient failures.
// Requests Telegram rejects outright (bad request, bot blocked) are not retried.
func (c *Client) Send(ctx context.Context, msg tgbotapi.Chattable) (tgbotapi.Message, error) {
	var sent tgbotapi.Message
	operation := func() error {
		if err := c.Limiter.Wait(ctx); err != nil {
			return backoff.Permanent(err)
		}
		var err error
		sent, err = c.Sender.Send(msg)
		if err != nil && !Retryable(err) {
			return backoff.Permanent(err)
		}
		return err
	}

	backoffStrategy := backoff.NewExponentialBackOff()
	backoffStrategy.MaxElapsedTime = c.maxRetryTimeout

	if err := backoff.Retry(operation, backoff.WithContext(backoffStrategy, ctx)); err != nil {
		return tgbotapi.Message{}, err
	}
	return sent, nil
}

// Retryable reports whether err is worth another attempt. API errors are
// retried only for flood control and server side failures.
func Retryable(err error) bool {
	var apiErr *tgbotapi.Error
	if errors.As(err, &apiErr) {
		return apiErr.Code == 429 || apiErr.Code >= 500
	}
	return true
}
