package core

import "errors"

var ErrNotFound = errors.New("library: not found")

var ErrInvalidHandler = errors.New("invalid handler: missing route or func")

func IsNotFoundError(err error) bool {
	if err == nil {
		return false
	}
	return errors.Is(err, ErrNotFound) || err.Error() == ErrNotFound.Error()
}
