package validator

import (
	"errors"
	"regexp"
	"strings"

	"github.com/nyaruka/phonenumbers"
	"github.com/sirupsen/logrus"
)

var (
	// ErrEmptyPhone indicates phone number is empty
	ErrEmptyPhone = errors.New("phone number cannot be empty")

	// ErrUnrecognizedFormat indicates the digits match none of the accepted local formats
	ErrUnrecognizedFormat = errors.New("phone number could not be normalized to +2519XXXXXXXX format")
)

const (
	// CountryCode is the Ethiopian calling code without the plus sign
	CountryCode = "251"

	// CanonicalPrefix is what every normalized number starts with
	CanonicalPrefix = "+" + CountryCode

	// Region is the ISO region used for libphonenumber plausibility checks
	Region = "ET"
)

// nonDigitRegex matches everything that is not an ASCII digit
var nonDigitRegex = regexp.MustCompile(`\D`)

// PhoneNormalizer converts local Ethiopian mobile numbers into +2519XXXXXXXX form
type PhoneNormalizer struct {
	logger *logrus.Logger
}

// NewPhoneNormalizer creates a new phone normalizer. A nil logger disables warnings.
func NewPhoneNormalizer(logger *logrus.Logger) *PhoneNormalizer {
	return &PhoneNormalizer{logger: logger}
}

// Sanitize removes all non-digit characters from phone number
func (n *PhoneNormalizer) Sanitize(phone string) string {
	return nonDigitRegex.ReplaceAllString(phone, "")
}

// TryNormalize normalizes phone and reports why it could not when none of the rules match.
// Accepted formats: 0946xxxxxx, 946xxxxxx, 251946xxxxxx (separators ignored).
func (n *PhoneNormalizer) TryNormalize(phone string) (string, error) {
	if phone == "" {
		return "", ErrEmptyPhone
	}

	digits := n.Sanitize(phone)

	switch {
	case strings.HasPrefix(digits, CountryCode+"9") && len(digits) == 12:
		return "+" + digits, nil
	case strings.HasPrefix(digits, "09") && len(digits) == 10:
		return CanonicalPrefix + digits[1:], nil
	case strings.HasPrefix(digits, "9") && len(digits) == 9:
		return CanonicalPrefix + digits, nil
	case strings.HasPrefix(digits, CountryCode) && len(digits) > 9:
		// Loose fallback for prefixed numbers that carried stray characters
		return "+" + digits, nil
	}

	return phone, ErrUnrecognizedFormat
}

// Normalize never fails: when the input cannot be normalized the original
// string is returned verbatim and a warning is logged.
func (n *PhoneNormalizer) Normalize(phone string) string {
	normalized, err := n.TryNormalize(phone)
	if err == nil {
		return normalized
	}

	if errors.Is(err, ErrUnrecognizedFormat) && n.logger != nil {
		n.logger.WithField("phone", phone).
			Warn("Phone number could not be reliably normalized, keeping original input")
	}
	return phone
}

// IsNormalized reports whether phone carries the canonical country prefix.
// Callers use it to detect a failed Normalize.
func (n *PhoneNormalizer) IsNormalized(phone string) bool {
	return strings.HasPrefix(phone, CanonicalPrefix)
}

// IsValidMobile checks a normalized number against libphonenumber metadata.
// The loose 251 fallback can produce numbers of the wrong length; this catches them.
func (n *PhoneNormalizer) IsValidMobile(phone string) bool {
	if !n.IsNormalized(phone) {
		return false
	}

	parsed, err := phonenumbers.Parse(phone, Region)
	if err != nil {
		return false
	}
	if !phonenumbers.IsValidNumberForRegion(parsed, Region) {
		return false
	}

	numberType := phonenumbers.GetNumberType(parsed)
	return numberType == phonenumbers.MOBILE || numberType == phonenumbers.FIXED_LINE_OR_MOBILE
}
