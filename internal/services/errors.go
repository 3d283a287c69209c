package services

import (
	"context"
	"errors"
	"net"

	"interiors-admin-be/internal/repository"

	"github.com/aws/smithy-go"
	"go.mongodb.org/mongo-driver/mongo"
)

// ErrorCategory tells the dashboard which kind of backend failure happened, so
// it can show "permission denied" apart from "service not provisioned" or a timeout.
type ErrorCategory string

const (
	CategoryNone             ErrorCategory = ""
	CategoryNotFound         ErrorCategory = "not_found"
	CategoryPermissionDenied ErrorCategory = "permission_denied"
	CategoryNotConfigured    ErrorCategory = "storage_not_configured"
	CategoryTimeout          ErrorCategory = "timeout"
	CategoryUnavailable      ErrorCategory = "unavailable"
	CategoryInvalidInput     ErrorCategory = "invalid_input"
	CategoryUnknown          ErrorCategory = "unknown"
)

var (
	permissionCodes = map[string]bool{
		"AccessDenied":              true,
		"AccessDeniedException":     true,
		"Forbidden":                 true,
		"InvalidAccessKeyId":        true,
		"SignatureDoesNotMatch":     true,
		"MessageRejected":           true,
		"MailFromDomainNotVerified": true,
		"NotAuthorizedException":    true,
	}
	notConfiguredCodes = map[string]bool{
		"NoSuchBucket":                 true,
		"AccountSuspendedException":    true,
		"SendingPausedException":       true,
		"ConfigurationSetDoesNotExist": true,
	}
	notFoundCodes = map[string]bool{
		"NoSuchKey": true,
		"NotFound":  true,
	}
	throttleCodes = map[string]bool{
		"SlowDown":                      true,
		"TooManyRequestsException":      true,
		"LimitExceededException":        true,
		"ServiceUnavailable":            true,
		"InternalError":                 true,
		"ThrottlingException":           true,
		"RequestTimeout":                true,
		"RequestTimeoutException":       true,
		"ProvisionedThroughputExceeded": true,
	}
)

// ClassifyStorageError maps database, S3 and SES failures onto an ErrorCategory.
func ClassifyStorageError(err error) ErrorCategory {
	if err == nil {
		return CategoryNone
	}
	switch {
	case errors.Is(err, repository.ErrNotFound), errors.Is(err, mongo.ErrNoDocuments):
		return CategoryNotFound
	case errors.Is(err, ErrMailNotConfigured), errors.Is(err, ErrStorageNotConfigured):
		return CategoryNotConfigured
	case errors.Is(err, ErrUnsupportedImage):
		return CategoryInvalidInput
	case errors.Is(err, context.DeadlineExceeded), mongo.IsTimeout(err):
		return CategoryTimeout
	case mongo.IsNetworkError(err):
		return CategoryUnavailable
	}

	var apiErr smithy.APIError
	if errors.As(err, &apiErr) {
		code := apiErr.ErrorCode()
		switch {
		case permissionCodes[code]:
			return CategoryPermissionDenied
		case notConfiguredCodes[code]:
			return CategoryNotConfigured
		case notFoundCodes[code]:
			return CategoryNotFound
		case throttleCodes[code]:
			return CategoryUnavailable
		}
		return CategoryUnknown
	}

	var cmdErr mongo.CommandError
	if errors.As(err, &cmdErr) && (cmdErr.Code == 13 || cmdErr.Code == 18) {
		// Unauthorized, AuthenticationFailed
		return CategoryPermissionDenied
	}

	var netErr net.Error
	if errors.As(err, &netErr) {
		if netErr.Timeout() {
			return CategoryTimeout
		}
		return CategoryUnavailable
	}
	return CategoryUnknown
}
