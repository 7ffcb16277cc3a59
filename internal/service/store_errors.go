package service

import (
	"database/sql"
	"database/sql/driver"
	"errors"
	"fmt"
	"net"

	"gorm.io/gorm"

	apperrors "roomrental/internal/errors"
)

// storeErr translates a persistence failure into a domain error.
// notFound may be nil when a missing record is not expected.
func storeErr(err error, notFound error, op string) error {
	switch {
	case notFound != nil && errors.Is(err, gorm.ErrRecordNotFound):
		return notFound
	case isUnavailable(err):
		return fmt.Errorf("%s: %w: %v", op, apperrors.ErrServiceUnavailable, err)
	default:
		return fmt.Errorf("%s: %w", op, err)
	}
}

func isUnavailable(err error) bool {
	if errors.Is(err, driver.ErrBadConn) || errors.Is(err, sql.ErrConnDone) {
		return true
	}
	var netErr net.Error
	return errors.As(err, &netErr)
}
