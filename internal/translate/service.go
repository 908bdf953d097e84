package translate

import (
	"context"
	"log/slog"

	"github.com/lucasmr/atelier/internal/platform/apperr"
	"github.com/lucasmr/atelier/internal/platform/sanitize"
	"github.com/lucasmr/atelier/internal/platform/validate"
)

// Service proxies translation requests to the external collaborator.
//
// It never persists anything. A translation is accepted only when the
// translator preserved the source's HTML structure and URL set, and even then
// the result passes through the sanitizer before leaving the server.
type Service struct {
	client    *Client
	sanitizer *sanitize.Sanitizer
	locales   []string
	logger    *slog.Logger
}

// NewService constructs a new [Service]. A nil client means no translator is
// configured; every call then fails with SERVICE_UNAVAILABLE.
func NewService(client *Client, sanitizer *sanitize.Sanitizer, locales []string, logger *slog.Logger) *Service {
	return &Service{client: client, sanitizer: sanitizer, locales: locales, logger: logger}
}

// Translate forwards the text and filters the response.
func (service *Service) Translate(ctx context.Context, input Request) (*Response, error) {
	if service.client == nil {
		return nil, apperr.ServiceUnavailable("No translator is configured")
	}

	v := &validate.Validator{}
	v.Required("text", input.Text)
	v.Required("sourceLocale", input.SourceLocale).
		OneOf("sourceLocale", input.SourceLocale, service.locales...)
	v.NotEmptyList("targetLocales", len(input.TargetLocales))
	for _, locale := range input.TargetLocales {
		v.OneOf("targetLocales", locale, service.locales...)
	}
	if err := v.Err(); err != nil {
		return nil, err
	}

	response, err := service.client.Translate(ctx, input)
	if err != nil {
		service.logger.Warn("translator_call_failed", slog.Any("error", err))
		return nil, apperr.ServiceUnavailable("The translator did not answer")
	}

	accepted := make(map[string]string, len(response.Translations))
	for locale, translated := range response.Translations {
		if err := StructurePreserved(input.Text, translated); err != nil {
			service.logger.Warn("translation_rejected",
				slog.String("locale", locale), slog.Any("error", err))
			return nil, apperr.Unprocessable("The translation altered the HTML structure of the source")
		}
		accepted[locale] = service.sanitizer.Clean(translated)
	}

	return &Response{Translations: accepted}, nil
}
