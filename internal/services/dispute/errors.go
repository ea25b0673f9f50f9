package dispute

import "errors"

// Service errors
var (
	ErrTransactionNotFound = errors.New("transaction not found")
	ErrNotOwner            = errors.New("transaction does not belong to this user")
	ErrNotDisputable       = errors.New("only completed transactions can be disputed")
	ErrAlreadyDisputed     = errors.New("transaction is already disputed")
	ErrAlreadyResolved     = errors.New("dispute has already been resolved")
	ErrInvalidDisputeType  = errors.New("invalid dispute type")
	ErrRefundExceedsAmount = errors.New("refund amount exceeds the transaction amount")
	ErrPartialNotAllowed   = errors.New("data purchase refunds are all-or-nothing")
	ErrNothingToResolve    = errors.New("transaction is not under dispute")
)
