package handler

import (
	"errors"
	"net/http"

	"walletstore/pkg/apperror"
)

// bindError maps a ShouldBindJSON failure to a client error.
func bindError(err error) error {
	var tooLarge *http.MaxBytesError
	if errors.As(err, &tooLarge) {
		return apperror.ErrPayloadTooLarge()
	}
	return apperror.Validation(err.Error())
}
