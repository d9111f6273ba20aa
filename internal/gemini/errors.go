package gemini

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/oukeidos/typoduck/internal/apperrors"
	"google.golang.org/api/googleapi"
)

func classifyGeminiError(err error) error {
	if err == nil {
		return nil
	}
	wrapped := fmt.Errorf("gemini request failed: %w", err)

	if errors.Is(err, context.Canceled) {
		return apperrors.New(apperrors.KindTransient, "Gemini request was cancelled.", wrapped)
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return apperrors.New(apperrors.KindTransient, "Gemini did not answer in time. Please try again.", wrapped)
	}

	var gerr *googleapi.Error
	if !errors.As(err, &gerr) {
		// DNS, socket and other transport failures.
		return apperrors.New(apperrors.KindTransient, "Gemini request failed due to a temporary network error.", wrapped)
	}

	switch {
	case gerr.Code == 400 && invalidKey(gerr):
		// Gemini reports a bad key as 400 rather than 401.
		return apperrors.New(apperrors.KindAuth, "Gemini rejected the API key. Check it in Settings.", wrapped)
	case gerr.Code == 400:
		return apperrors.New(apperrors.KindBadRequest, "Gemini request rejected (400).", wrapped)
	case gerr.Code == 404:
		return apperrors.New(apperrors.KindBadRequest, "Gemini model not found or no access (404). Pick another model.", wrapped)
	case gerr.Code == 401 || gerr.Code == 403:
		return apperrors.New(apperrors.KindAuth, fmt.Sprintf("Gemini authentication failed (%d).", gerr.Code), wrapped)
	case gerr.Code == 429:
		return apperrors.New(apperrors.KindRateLimit, "Gemini rate limit exceeded (429). Please try again later.", wrapped)
	case gerr.Code >= 500:
		return apperrors.New(apperrors.KindTransient, fmt.Sprintf("Gemini service temporary error (%d). Please retry.", gerr.Code), wrapped)
	default:
		return apperrors.New(apperrors.KindBadRequest, fmt.Sprintf("Gemini API error (%d).", gerr.Code), wrapped)
	}
}

func invalidKey(gerr *googleapi.Error) bool {
	msg := strings.ToUpper(gerr.Message + " " + gerr.Body)
	for _, d := range gerr.Details {
		msg += " " + strings.ToUpper(fmt.Sprint(d))
	}
	return strings.Contains(msg, "API_KEY_INVALID") || strings.Contains(msg, "API KEY NOT VALID")
}
