package acl

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/url"

	"github.com/go-playground/validator/v10"

	"github.com/jsamuelsen/bbquotes/internal/adapters/clients"
	"github.com/jsamuelsen/bbquotes/internal/domain"
	"github.com/jsamuelsen/bbquotes/internal/platform/logging"
)

var errNoResponse = errors.New("no response received")

// payloadValidator checks decoded DTOs. Safe for concurrent use.
var payloadValidator = validator.New(validator.WithRequiredStructEnabled())

// BaseAdapter holds the request and decode plumbing shared by adapters.
type BaseAdapter struct {
	client      *clients.Client
	serviceName string
}

// NewBaseAdapter creates a base adapter reporting errors under serviceName.
func NewBaseAdapter(client *clients.Client, serviceName string) BaseAdapter {
	return BaseAdapter{
		client:      client,
		serviceName: serviceName,
	}
}

// Client returns the underlying HTTP client.
func (a *BaseAdapter) Client() *clients.Client {
	return a.client
}

// ServiceName returns the name of the external service.
func (a *BaseAdapter) ServiceName() string {
	return a.serviceName
}

// Get issues a GET and returns the body of a 2xx response; the caller closes it.
// Any other outcome is returned as a domain error and the body is closed.
func (a *BaseAdapter) Get(ctx context.Context, path string, query url.Values, operation string) (io.ReadCloser, error) {
	logger := logging.FromContext(ctx)

	resp, err := a.client.Get(ctx, path, query)
	if err != nil {
		return nil, MapHTTPError(nil, err, a.serviceName, operation)
	}

	if mapped := MapHTTPError(resp, nil, a.serviceName, operation); mapped != nil {
		defer func() { _ = resp.Body.Close() }()

		attrs := []any{slog.String("operation", operation), slog.Int("status", resp.StatusCode)}
		if errResp := ParseErrorResponse(resp.Body); errResp != nil {
			attrs = append(attrs, slog.String("upstream_message", errResp.GetMessage()))
		}
		logger.WarnContext(ctx, "upstream returned non-success status", attrs...)

		return nil, mapped
	}

	logger.Log(ctx, logging.LevelTrace, "upstream response ok",
		slog.String("operation", operation),
		slog.Int("status", resp.StatusCode),
	)

	return resp.Body, nil
}

// DecodeResponse decodes a JSON object into T, validates it against its
// `validate` tags and closes the body. Any failure is a *domain.DecodeError
// naming target.
func DecodeResponse[T any](body io.ReadCloser, target string) (*T, error) {
	var result T
	if err := decodeJSON(body, &result); err != nil {
		return nil, domain.NewDecodeError(target, err)
	}

	if err := payloadValidator.Struct(&result); err != nil {
		return nil, domain.NewDecodeError(target, err)
	}

	return &result, nil
}

// DecodeListResponse decodes a JSON array of T, validating every element.
func DecodeListResponse[T any](body io.ReadCloser, target string) ([]T, error) {
	var result []T
	if err := decodeJSON(body, &result); err != nil {
		return nil, domain.NewDecodeError(target, err)
	}

	if result == nil {
		return nil, domain.NewDecodeError(target, errors.New("expected a JSON array"))
	}

	for i := range result {
		if err := payloadValidator.Struct(&result[i]); err != nil {
			return nil, domain.NewDecodeError(target, fmt.Errorf("item %d: %w", i, err))
		}
	}

	return result, nil
}

func decodeJSON(body io.ReadCloser, v any) error {
	if body == nil {
		return errors.New("response body is nil")
	}
	defer func() { _ = body.Close() }()

	return json.NewDecoder(body).Decode(v)
}

// Translator converts an external DTO to a domain value.
type Translator[External any, Domain any] func(ext *External) (*Domain, error)

// TranslateSlice applies translate to each item, stopping at the first error.
func TranslateSlice[E any, D any](items []E, translate Translator[E, D]) ([]*D, error) {
	result := make([]*D, 0, len(items))

	for i := range items {
		translated, err := translate(&items[i])
		if err != nil {
			return nil, fmt.Errorf("translating item %d: %w", i, err)
		}

		result = append(result, translated)
	}

	return result, nil
}

// parseURL is a Translator for already-validated absolute URLs.
func parseURL(raw *string) (*url.URL, error) {
	return url.Parse(*raw)
}
