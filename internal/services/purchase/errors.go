package purchase

import "errors"

// Service errors
var (
	ErrInvalidRequest      = errors.New("invalid purchase request")
	ErrInsufficientBalance = errors.New("insufficient wallet balance")
	ErrPersistenceFailed   = errors.New("failed to record transaction")
	ErrVendorUnavailable   = errors.New("vendor unavailable")
)

// VendorRejectedError carries the user-facing message for a vendor-reported
// failure. The wallet has already been refunded when this is returned.
type VendorRejectedError struct {
	UserMessage string
}

func (e *VendorRejectedError) Error() string {
	return e.UserMessage
}
