// Package phone normalizes subscriber phone numbers to E.164.
package phone

import (
	"errors"
	"strings"

	"walletstore/pkg/apperror"

	"github.com/nyaruka/phonenumbers"
)

var errInvalidNumber = errors.New("not a valid number for its region")

// Options controls how a number without a leading + is interpreted.
type Options struct {
	// CountryCode is an ISO 3166-1 alpha-2 region such as "KE" or "US".
	CountryCode string
}

// ToE164 parses number in the region given by opts and returns it in
// E.164 form (+<country code><national number>). Numbers already starting
// with + are parsed as international regardless of region.
//
// Parse failures and numbers that are not valid for their region return
// apperror.ErrInvalidPhoneNumber.
func ToE164(number string, opts Options) (string, error) {
	number = strings.TrimSpace(number)
	if number == "" {
		return "", apperror.ErrInvalidPhoneNumber(phonenumbers.ErrNotANumber)
	}

	num, err := phonenumbers.Parse(number, strings.ToUpper(opts.CountryCode))
	if err != nil {
		return "", apperror.ErrInvalidPhoneNumber(err)
	}
	if !phonenumbers.IsValidNumber(num) {
		return "", apperror.ErrInvalidPhoneNumber(errInvalidNumber)
	}

	return phonenumbers.Format(num, phonenumbers.E164), nil
}

// Digits strips the leading + from an E.164 number.
func Digits(e164 string) string {
	return strings.TrimPrefix(e164, "+")
}
