package gateway

import "errors"

// Gateway errors
var (
	ErrMissingSecretKey   = errors.New("payment gateway secret key not configured")
	ErrGatewayUnavailable = errors.New("payment gateway unavailable")
	ErrGatewayRejected    = errors.New("payment gateway rejected the request")
	ErrReferenceNotFound  = errors.New("payment reference not found")
	ErrCardChargeFailed   = errors.New("card charge failed")
)
