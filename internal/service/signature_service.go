package service

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"strconv"
	"time"
)

var (
	ErrSignatureMissing   = errors.New("webhook signature or timestamp header missing")
	ErrSignatureTimestamp = errors.New("webhook timestamp outside tolerance")
	ErrSignatureMismatch  = errors.New("webhook signature mismatch")
)

// HMACSignatureService signs receipt webhook deliveries with HMAC-SHA256 and
// lets receivers check them.
type HMACSignatureService struct{}

func NewHMACSignatureService() *HMACSignatureService {
	return &HMACSignatureService{}
}

// Sign returns the lowercase hex HMAC-SHA256 of payload under secretKey.
func (s *HMACSignatureService) Sign(secretKey string, payload string) string {
	mac := hmac.New(sha256.New, []byte(secretKey))
	mac.Write([]byte(payload))
	return hex.EncodeToString(mac.Sum(nil))
}

// Verify compares in constant time.
func (s *HMACSignatureService) Verify(secretKey string, payload string, signature string) bool {
	return hmac.Equal([]byte(s.Sign(secretKey, payload)), []byte(signature))
}

// BuildCanonicalString joins the delivery timestamp and body as "<ts>.<body>".
func (s *HMACSignatureService) BuildCanonicalString(timestamp int64, body []byte) string {
	return strconv.FormatInt(timestamp, 10) + "." + string(body)
}

// SignDelivery returns the timestamp and signature header values for body.
func (s *HMACSignatureService) SignDelivery(secretKey string, at time.Time, body []byte) (timestamp, signature string) {
	ts := at.Unix()
	return strconv.FormatInt(ts, 10), s.Sign(secretKey, s.BuildCanonicalString(ts, body))
}

// VerifyDelivery checks the header values of a received delivery. A zero
// tolerance skips the timestamp window check.
func (s *HMACSignatureService) VerifyDelivery(secretKey, timestamp, signature string, body []byte, now time.Time, tolerance time.Duration) error {
	if timestamp == "" || signature == "" {
		return ErrSignatureMissing
	}
	ts, err := strconv.ParseInt(timestamp, 10, 64)
	if err != nil {
		return ErrSignatureMissing
	}
	if tolerance > 0 {
		skew := now.Sub(time.Unix(ts, 0))
		if skew < 0 {
			skew = -skew
		}
		if skew > tolerance {
			return ErrSignatureTimestamp
		}
	}
	if !s.Verify(secretKey, s.BuildCanonicalString(ts, body), signature) {
		return ErrSignatureMismatch
	}
	return nil
}
