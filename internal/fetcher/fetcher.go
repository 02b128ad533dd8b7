package fetcher

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"github.com/backyonatan-alt/coronastats/internal/config"
	"github.com/backyonatan-alt/coronastats/internal/model"
	"github.com/backyonatan-alt/coronastats/internal/telemetry"
)

var tracer = otel.Tracer("coronastats/internal/fetcher")

// ErrFetch matches every fetch failure via errors.Is.
var ErrFetch = errors.New("fetch failed")

// StatusError is returned when the upstream answers with anything but 200.
type StatusError struct {
	URL    string
	Code   int
	Status string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("%s: %s: received status %d (%s)", ErrFetch, e.URL, e.Code, e.Status)
}

func (e *StatusError) Is(target error) bool {
	return target == ErrFetch
}

// TransportError wraps a failure to complete the request at all.
type TransportError struct {
	URL string
	Err error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("%s: %s: %v", ErrFetch, e.URL, e.Err)
}

func (e *TransportError) Is(target error) bool {
	return target == ErrFetch
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

// Fetcher retrieves the statistics page.
type Fetcher struct {
	client *resty.Client
	url    string
}

func New(cfg *config.Config) *Fetcher {
	client := resty.New()
	client.SetTimeout(cfg.RequestTimeout)
	client.SetHeader("User-Agent", cfg.UserAgent)
	client.SetHeader("Accept", "text/html")
	telemetry.InstrumentResty(client, "fetcher")

	return &Fetcher{client: client, url: cfg.SourceURL}
}

// Fetch issues one GET to the source URL. Any non-200 status is a
// *StatusError; failures below HTTP are a *TransportError.
func (f *Fetcher) Fetch(ctx context.Context) (model.RawDocument, error) {
	ctx, span := tracer.Start(ctx, "Fetcher.Fetch")
	defer span.End()
	span.SetAttributes(attribute.String("url", f.url))

	res, err := f.client.R().
		SetContext(ctx).
		Get(f.url)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "request failed")
		return model.RawDocument{}, &TransportError{URL: f.url, Err: err}
	}

	span.SetAttributes(attribute.Int("status", res.StatusCode()))
	if res.StatusCode() != http.StatusOK {
		statusErr := &StatusError{
			URL:    f.url,
			Code:   res.StatusCode(),
			Status: statusText(res),
		}
		span.SetStatus(codes.Error, statusErr.Error())
		return model.RawDocument{}, statusErr
	}

	return model.RawDocument{
		URL:       f.url,
		Body:      res.Body(),
		FetchedAt: time.Now(),
	}, nil
}

// statusText strips the code from a status line like "404 Not Found".
func statusText(res *resty.Response) string {
	text := strings.TrimSpace(strings.TrimPrefix(res.Status(), strconv.Itoa(res.StatusCode())))
	if text == "" {
		text = http.StatusText(res.StatusCode())
	}
	return text
}
