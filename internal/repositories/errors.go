package repositories

import (
	"errors"

	"gorm.io/gorm"
)

var (
	ErrUserNotFound        = errors.New("user not found")
	ErrEmailTaken          = errors.New("email already taken")
	ErrPhoneTaken          = errors.New("phone number already taken")
	ErrTransactionNotFound = errors.New("transaction not found")
	ErrFundingNotFound     = errors.New("funding record not found")
	ErrDuplicateKey        = errors.New("duplicate record")
	ErrDatabaseOperation   = errors.New("database operation failed")
)

// translateError maps GORM errors to repository sentinels. Duplicate-key
// errors are a first-class signal here: the settlement path relies on them
// to detect an already-processed reference.
func translateError(err error, notFound error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		return notFound
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return ErrDuplicateKey
	default:
		return err
	}
}
