// Package autherr defines the error taxonomy for token verification and
// refresh rotation. Every failure mode maps to a stable code and an HTTP
// status so handlers never need to inspect error causes.
package autherr

import (
	"net/http"

	apperrors "github.com/Vlad-Innowise/auth-service/pkg/errors"
)

const (
	CodeTokenInvalid         = "TOKEN_INVALID"
	CodeClaimsMalformed      = "CLAIMS_MALFORMED"
	CodeWrongTokenType       = "WRONG_TOKEN_TYPE"
	CodePrincipalUnavailable = "PRINCIPAL_UNAVAILABLE"
	CodeClaimsInconsistent   = "CLAIMS_INCONSISTENT"
	CodeAuthFailed           = "AUTHENTICATION_FAILED"
)

// TokenInvalid covers signature and expiry failures. The message never echoes
// token contents.
func TokenInvalid(err error) *apperrors.AppError {
	return &apperrors.AppError{
		Code:    CodeTokenInvalid,
		Message: "token is invalid or expired",
		Status:  http.StatusUnauthorized,
		Err:     err,
	}
}

// ClaimsMalformed covers tokens with a valid signature whose claims cannot be
// extracted: missing fields, a non-numeric subject, or a role set that is not
// exactly one prefixed entry.
func ClaimsMalformed(err error) *apperrors.AppError {
	return &apperrors.AppError{
		Code:    CodeClaimsMalformed,
		Message: "token claims are malformed",
		Status:  http.StatusUnauthorized,
		Err:     err,
	}
}

// WrongTokenType signals a well-formed token presented where the other token
// class is required, e.g. an access token at the refresh endpoint.
func WrongTokenType(expected, got string) *apperrors.AppError {
	return &apperrors.AppError{
		Code:    CodeWrongTokenType,
		Message: "expected " + expected + " token, got " + got,
		Status:  http.StatusConflict,
		Err:     apperrors.ErrConflict,
	}
}

// PrincipalUnavailable signals that the token subject has no active account.
func PrincipalUnavailable(err error) *apperrors.AppError {
	return &apperrors.AppError{
		Code:    CodePrincipalUnavailable,
		Message: "user is not available",
		Status:  http.StatusUnauthorized,
		Err:     err,
	}
}

// ClaimsInconsistent signals that token claims disagree with the current
// principal record, meaning the token is stale.
func ClaimsInconsistent() *apperrors.AppError {
	return &apperrors.AppError{
		Code:    CodeClaimsInconsistent,
		Message: "token claims do not match the current user",
		Status:  http.StatusUnauthorized,
		Err:     apperrors.ErrUnauthorized,
	}
}

// AuthenticationFailed covers login failures. Unknown email and wrong password
// produce the same message so the response does not leak which one it was.
func AuthenticationFailed() *apperrors.AppError {
	return &apperrors.AppError{
		Code:    CodeAuthFailed,
		Message: "invalid email or password",
		Status:  http.StatusUnauthorized,
		Err:     apperrors.ErrUnauthorized,
	}
}
