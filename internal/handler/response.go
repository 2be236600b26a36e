package handler

import (
	"errors"
	"fmt"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"docsift/internal/domain"
	"docsift/internal/llm"
)

// APIResponse is the standard envelope for all API responses.
type APIResponse struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Error   *APIError   `json:"error,omitempty"`
}

// APIError holds error details in the response.
type APIError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// RespondOK sends a 200 success response.
func RespondOK(c *gin.Context, data interface{}) {
	c.JSON(http.StatusOK, APIResponse{Success: true, Data: data})
}

// RespondError sends an error response with the given status code.
func RespondError(c *gin.Context, status int, code, msg string) {
	c.JSON(status, APIResponse{
		Success: false,
		Error:   &APIError{Code: code, Message: msg},
	})
}

// MapDomainError translates pipeline errors to HTTP status codes and error
// codes. Validation failures (scheme, size, type) name the violated
// constraint so callers can fix their input; provider failures map to a
// distinct 5xx so callers know to retry later instead.
func MapDomainError(err error) (status int, code, msg string) {
	var unsupported *domain.UnsupportedTypeError
	var renderErr *domain.PageRenderError
	var providerErr *llm.ProviderError
	var rateErr *llm.RateLimitError

	switch {
	case errors.Is(err, domain.ErrInvalidScheme):
		return http.StatusBadRequest, "INVALID_SCHEME", "document URL must use the https scheme"
	case errors.Is(err, domain.ErrPayloadTooLarge):
		return http.StatusRequestEntityTooLarge, "PAYLOAD_TOO_LARGE", "document exceeds the maximum allowed size"
	case errors.As(err, &unsupported):
		return http.StatusUnsupportedMediaType, "UNSUPPORTED_TYPE",
			fmt.Sprintf("unsupported document type %q; accepted: application/pdf, image/png, image/jpeg", unsupported.Detected)
	case errors.Is(err, domain.ErrUnsupportedFileType):
		return http.StatusUnsupportedMediaType, "UNSUPPORTED_TYPE", "unsupported file type; allowed: pdf, jpg, png"
	case errors.Is(err, domain.ErrDownloadTimeout):
		return http.StatusGatewayTimeout, "DOWNLOAD_TIMEOUT", "document download timed out"
	case errors.Is(err, domain.ErrEmptyPayload):
		return http.StatusBadRequest, "EMPTY_PAYLOAD", "document payload is empty"
	case errors.Is(err, domain.ErrLocalPathsDisabled):
		return http.StatusForbidden, "LOCAL_PATHS_DISABLED", "local path ingestion is disabled on this deployment"
	case errors.Is(err, domain.ErrMissingReference):
		return http.StatusBadRequest, "MISSING_REFERENCE", "supply exactly one of file, url, or path"
	case errors.Is(err, domain.ErrAmbiguousReference):
		return http.StatusBadRequest, "AMBIGUOUS_REFERENCE", "supply exactly one of file, url, or path"
	case errors.As(err, &renderErr):
		return http.StatusUnprocessableEntity, "PAGE_RENDER_FAILED",
			fmt.Sprintf("failed to render page %d of the document", renderErr.PageIndex)
	case errors.Is(err, domain.ErrInsufficientExtraction):
		return http.StatusUnprocessableEntity, "INSUFFICIENT_EXTRACTION", "extraction produced insufficient data"
	case errors.As(err, &rateErr):
		return http.StatusBadGateway, "PROVIDER_RATE_LIMITED", "extraction providers are rate limited; retry later"
	case errors.As(err, &providerErr):
		return http.StatusBadGateway, "PROVIDER_ERROR", "extraction provider call failed; retry later"
	default:
		return http.StatusInternalServerError, "INTERNAL_ERROR", "an internal error occurred"
	}
}

// HandleError maps a pipeline error and sends the appropriate error response.
func HandleError(c *gin.Context, err error) {
	status, code, msg := MapDomainError(err)
	if status >= 500 {
		requestID, _ := c.Get("request_id")
		log.Printf("[%s] %s: %v", requestID, code, err)
	}
	RespondError(c, status, code, msg)
}
