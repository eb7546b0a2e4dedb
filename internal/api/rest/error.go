package rest

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/scholarly-labs/resource-indexer/internal/domain"
	"github.com/scholarly-labs/resource-indexer/internal/logger"
)

// ErrorCode represents a standardized error code
type ErrorCode string

const (
	// Client errors (4xx)
	errCodeBadRequest       ErrorCode = "bad_request"
	errCodeNotFound         ErrorCode = "not_found"
	errCodeValidationFailed ErrorCode = "validation_failed"
	errCodeUnauthorized     ErrorCode = "unauthorized"
	errCodeConflict         ErrorCode = "conflict"
	errCodePaymentRequired  ErrorCode = "payment_required"

	// Server errors (5xx)
	errCodeInternalError ErrorCode = "internal_error"
	errCodeChainError    ErrorCode = "chain_error"
)

// errorResponse represents a standardized error response
type errorResponse struct {
	Error errorDetail `json:"error"`
}

// errorDetail contains error information
type errorDetail struct {
	Code    ErrorCode `json:"code"`
	Message string    `json:"message"`
	Details string    `json:"details,omitempty"`
}

// respondWithError sends a standardized error response
func respondWithError(c *gin.Context, statusCode int, code ErrorCode, message string, details ...string) {
	response := errorResponse{
		Error: errorDetail{
			Code:    code,
			Message: message,
		},
	}

	if len(details) > 0 {
		response.Error.Details = details[0]
	}

	c.JSON(statusCode, response)
}

// respondBadRequest sends a 400 Bad Request response
func respondBadRequest(c *gin.Context, message string, details ...string) {
	respondWithError(c, http.StatusBadRequest, errCodeBadRequest, message, details...)
}

// respondNotFound sends a 404 Not Found response
func respondNotFound(c *gin.Context, message string, details ...string) {
	respondWithError(c, http.StatusNotFound, errCodeNotFound, message, details...)
}

// respondValidationError sends a 400 Bad Request with validation error
func respondValidationError(c *gin.Context, details string) {
	respondWithError(c, http.StatusBadRequest, errCodeValidationFailed, "Validation failed", details)
}

// respondInternalError sends a 500 Internal Server Error response and logs the error
func respondInternalError(c *gin.Context, err error, message string, fields ...zap.Field) {
	logger.Error(err, fields...)
	respondWithError(c, http.StatusInternalServerError, errCodeInternalError, message)
}

// domainStatus maps a known domain error to its HTTP status and code
var domainStatus = []struct {
	err    error
	status int
	code   ErrorCode
}{
	{domain.ErrResourceNotFound, http.StatusNotFound, errCodeNotFound},
	{domain.ErrAccessTokenNotFound, http.StatusNotFound, errCodeNotFound},
	{domain.ErrSyncInProgress, http.StatusConflict, errCodeConflict},
	{domain.ErrAlreadyListed, http.StatusConflict, errCodeConflict},
	{domain.ErrListingInactive, http.StatusConflict, errCodeConflict},
	{domain.ErrNotOwner, http.StatusForbidden, errCodeUnauthorized},
	{domain.ErrNotApproved, http.StatusForbidden, errCodeUnauthorized},
	{domain.ErrSignatureMismatch, http.StatusUnauthorized, errCodeUnauthorized},
	{domain.ErrPriceMismatch, http.StatusBadRequest, errCodeBadRequest},
	{domain.ErrInvalidRoyalty, http.StatusBadRequest, errCodeBadRequest},
	{domain.ErrInsufficientBalance, http.StatusPaymentRequired, errCodePaymentRequired},
	{domain.ErrAccessUnavailable, http.StatusConflict, errCodeConflict},
	{domain.ErrAccessInactive, http.StatusConflict, errCodeConflict},
	{domain.ErrAccessExpired, http.StatusConflict, errCodeConflict},
	{domain.ErrAccessExhausted, http.StatusConflict, errCodeConflict},
}

// respondDomainError translates failures from the contract service and the
// sync engine. Unrecognized errors fall through to a 500.
func respondDomainError(c *gin.Context, err error, message string) {
	for _, m := range domainStatus {
		if errors.Is(err, m.err) {
			respondWithError(c, m.status, m.code, message, err.Error())
			return
		}
	}

	var txErr *domain.TxError
	if errors.As(err, &txErr) {
		respondWithError(c, http.StatusBadGateway, errCodeChainError, message, txErr.Error())
		return
	}

	respondInternalError(c, err, message)
}
