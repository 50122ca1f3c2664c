package phone

import (
	"errors"
	"strings"
	"testing"

	"walletstore/pkg/apperror"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestToE164_ValidNumbers(t *testing.T) {
	tests := []struct {
		name    string
		number  string
		country string
		want    string
	}{
		{"kenya national", "0712345678", "KE", "+254712345678"},
		{"kenya spaced", "0712 345 678", "KE", "+254712345678"},
		{"kenya without trunk prefix", "712345678", "KE", "+254712345678"},
		{"kenya international", "+254712345678", "KE", "+254712345678"},
		{"international ignores region", "+254712345678", "US", "+254712345678"},
		{"lowercase region", "0712345678", "ke", "+254712345678"},
		{"us formatted", "(202) 456-1111", "US", "+12024561111"},
		{"uk mobile", "07400 123456", "GB", "+447400123456"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ToE164(tt.number, Options{CountryCode: tt.country})
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
			assert.True(t, strings.HasPrefix(got, "+"))
		})
	}
}

func TestToE164_Idempotent(t *testing.T) {
	inputs := []struct {
		number  string
		country string
	}{
		{"0712345678", "KE"},
		{"(202) 456-1111", "US"},
		{"07400 123456", "GB"},
	}

	for _, in := range inputs {
		once, err := ToE164(in.number, Options{CountryCode: in.country})
		require.NoError(t, err)

		twice, err := ToE164(once, Options{CountryCode: in.country})
		require.NoError(t, err)

		assert.Equal(t, once, twice, "input %q", in.number)
	}
}

func TestToE164_InvalidNumbers(t *testing.T) {
	tests := []struct {
		name    string
		number  string
		country string
	}{
		{"empty", "", "KE"},
		{"whitespace", "   ", "KE"},
		{"letters", "not-a-number", "KE"},
		{"too short", "0712", "KE"},
		{"unknown region", "0712345678", "ZZ"},
		{"no region no plus", "0712345678", ""},
		{"garbage plus", "+", "KE"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var got string
			var err error
			assert.NotPanics(t, func() {
				got, err = ToE164(tt.number, Options{CountryCode: tt.country})
			})
			require.Error(t, err)
			assert.Empty(t, got)

			var appErr *apperror.AppError
			require.True(t, errors.As(err, &appErr))
			assert.Equal(t, "VAL_001", appErr.Code)
			assert.Equal(t, 400, appErr.HTTPStatus)
		})
	}
}

func TestDigits(t *testing.T) {
	assert.Equal(t, "254712345678", Digits("+254712345678"))
	assert.Equal(t, "254712345678", Digits("254712345678"))
}
