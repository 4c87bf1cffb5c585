package response

// ErrCode is a typed error code enum for consistent API error identification.
type ErrCode string

const (
	// ─── Authentication ────────────────────────────────────────────────
	ErrInvalidCredentials ErrCode = "INVALID_CREDENTIALS"
	ErrTokenRequired      ErrCode = "TOKEN_REQUIRED"
	ErrTokenInvalid       ErrCode = "TOKEN_INVALID"

	// ─── Authorization ─────────────────────────────────────────────────
	ErrPermissionDenied  ErrCode = "PERMISSION_DENIED"
	ErrLearnerAccessOnly ErrCode = "LEARNER_ACCESS_ONLY"
	ErrAdminAccessOnly   ErrCode = "ADMIN_ACCESS_ONLY"

	// ─── Validation ────────────────────────────────────────────────────
	ErrValidation ErrCode = "VALIDATION_ERROR"
	ErrInvalidID  ErrCode = "INVALID_ID"

	// ─── Resources ─────────────────────────────────────────────────────
	ErrNotFound        ErrCode = "NOT_FOUND"
	ErrLearnerNotFound ErrCode = "LEARNER_NOT_FOUND"

	// ─── Dashboard ─────────────────────────────────────────────────────
	ErrDashboardUnavailable ErrCode = "DASHBOARD_UNAVAILABLE"

	// ─── Rate Limiting ─────────────────────────────────────────────────
	ErrRateLimitExceeded ErrCode = "RATE_LIMIT_EXCEEDED"

	// ─── Server ────────────────────────────────────────────────────────
	ErrInternal ErrCode = "INTERNAL_ERROR"
)

// GetMessage returns a human-readable message for a given error code.
func GetMessage(code ErrCode) string {
	switch code {
	// ─── Authentication ────────────────────────────────────────────────
	case ErrInvalidCredentials:
		return "Incorrect email or password."
	case ErrTokenRequired:
		return "An authentication token is required."
	case ErrTokenInvalid:
		return "The authentication token is invalid or expired."

	// ─── Authorization ─────────────────────────────────────────────────
	case ErrPermissionDenied:
		return "Permission denied."
	case ErrLearnerAccessOnly:
		return "This resource is restricted to learners."
	case ErrAdminAccessOnly:
		return "This resource is restricted to administrators."

	// ─── Validation ────────────────────────────────────────────────────
	case ErrValidation:
		return "Validation failed. Please check your input."
	case ErrInvalidID:
		return "Invalid ID format."

	// ─── Resources ─────────────────────────────────────────────────────
	case ErrNotFound:
		return "Resource not found."
	case ErrLearnerNotFound:
		return "No learner is registered with this email."

	// ─── Dashboard ─────────────────────────────────────────────────────
	case ErrDashboardUnavailable:
		return "Failed to build dashboard data."

	// ─── Rate Limiting ─────────────────────────────────────────────────
	case ErrRateLimitExceeded:
		return "Too many requests. Please try again later."

	// ─── Server ────────────────────────────────────────────────────────
	case ErrInternal:
		return "Internal server error."
	default:
		return "An unexpected error occurred."
	}
}
