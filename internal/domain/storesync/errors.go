package storesync

import "github.com/storesync/backend/internal/domain/shared"

// Error codes. HTTP status mapping lives in the interfaces layer.
const (
	CodeSignatureMissing  = "SIGNATURE_MISSING"
	CodeSignatureMismatch = "SIGNATURE_MISMATCH"
	CodeUnknownEventType  = "UNKNOWN_EVENT_TYPE"
	CodeValidation        = "VALIDATION_ERROR"
	CodeRemoteCall        = "REMOTE_CALL_FAILED"
)

var (
	// ErrSignatureSecretMissing means no shared secret is configured for a
	// webhook category. It is a deployment fault, never a client fault.
	ErrSignatureSecretMissing = shared.NewDomainError(shared.ErrConfiguration.Code, "storesync: webhook secret is not configured")
	ErrSignatureMissing       = shared.NewDomainError(CodeSignatureMissing, "storesync: missing webhook signature header")
	ErrSignatureMismatch      = shared.NewDomainError(CodeSignatureMismatch, "storesync: webhook signature mismatch")

	ErrOrganizationMissing = shared.NewDomainError(shared.ErrInvalidInput.Code, "storesync: missing organization id header")
	ErrUnknownCategory     = shared.NewDomainError(shared.ErrInvalidInput.Code, "storesync: unknown webhook category")
	ErrMalformedPayload    = shared.NewDomainError(shared.ErrInvalidInput.Code, "storesync: malformed webhook payload")

	ErrStoreNotFound = shared.NewDomainError(shared.ErrNotFound.Code, "storesync: store not found")
	ErrItemNotFound  = shared.NewDomainError(shared.ErrNotFound.Code, "storesync: item not found")
	ErrOrderNotFound = shared.NewDomainError(shared.ErrNotFound.Code, "storesync: order not found")
	ErrTokenNotFound = shared.NewDomainError(shared.ErrNotFound.Code, "storesync: oauth token not found")

	ErrUnsupportedAdjustmentType = shared.NewDomainError(CodeValidation, "storesync: unsupported adjustment_type")
	ErrSalesOrderFiltered        = shared.NewDomainError(CodeValidation, "storesync: sales order customer is not synchronized")
	ErrFractionalQuantity        = shared.NewDomainError(CodeValidation, "storesync: line item quantity must be a whole number")
	ErrQuantityOutOfRange        = shared.NewDomainError(CodeValidation, "storesync: line item quantity is out of range")

	ErrUnknownEventType = shared.NewDomainError(CodeUnknownEventType, "storesync: unknown event type")

	ErrInvalidOAuthState   = shared.NewDomainError(shared.ErrInvalidInput.Code, "storesync: invalid or expired oauth state")
	ErrAuthorizationDenied = shared.NewDomainError(shared.ErrInvalidInput.Code, "storesync: authorization was denied")
	ErrAuthorizationCode   = shared.NewDomainError(shared.ErrInvalidInput.Code, "storesync: missing authorization code")

	// ErrRemoteCall wraps every failure talking to either platform.
	ErrRemoteCall = shared.NewDomainError(CodeRemoteCall, "storesync: remote platform call failed")
)
