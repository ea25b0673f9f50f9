package funding

import "errors"

// Service errors
var (
	ErrInvalidAmount        = errors.New("invalid funding amount")
	ErrFundingNotFound      = errors.New("funding record not found")
	ErrUnknownGatewayStatus = errors.New("unrecognized gateway status")
	ErrCardChannelDisabled  = errors.New("card funding channel not configured")
)
