// Package barcode generates, validates and renders product barcodes.
//
// Two payload families are accepted: EAN-13 (13 digits with a valid check
// digit) and generic Code 128 payloads of 1 to 80 printable ASCII characters.
// A 13 digit numeric payload is always treated as EAN-13, so it must carry a
// correct check digit.
package barcode

import (
	"errors"
	"fmt"
	"math/rand/v2"
	"time"
)

const (
	// MaxGenerateAttempts bounds the uniqueness retry loop.
	MaxGenerateAttempts = 10

	maxGenericLength = 80
	ean13Length      = 13
)

var (
	ErrExhausted    = errors.New("could not generate a unique barcode")
	ErrInvalidEAN13 = errors.New("invalid EAN-13 body")
)

// Generate builds a 13 digit EAN-13 code: a yyMMdd prefix from now, six random
// digits and the check digit.
func Generate(now time.Time, intN func(int) int) string {
	if intN == nil {
		intN = rand.IntN
	}
	body := now.Format("060102") + fmt.Sprintf("%06d", intN(1_000_000))
	check, _ := EAN13CheckDigit(body)
	return body + string(rune('0'+check))
}

// EAN13CheckDigit computes the check digit for a 12 digit body. Digits in odd
// positions weigh 1, even positions weigh 3.
func EAN13CheckDigit(body string) (int, error) {
	if len(body) != ean13Length-1 || !isDigits(body) {
		return 0, ErrInvalidEAN13
	}
	sum := 0
	for i, r := range body {
		d := int(r - '0')
		if i%2 == 1 {
			d *= 3
		}
		sum += d
	}
	return (10 - sum%10) % 10, nil
}

// IsValidEAN13 reports whether code is 13 digits with a matching check digit.
func IsValidEAN13(code string) bool {
	if len(code) != ean13Length || !isDigits(code) {
		return false
	}
	check, err := EAN13CheckDigit(code[:ean13Length-1])
	if err != nil {
		return false
	}
	return int(code[ean13Length-1]-'0') == check
}

// ValidateFormat accepts a valid EAN-13 code or a generic printable ASCII payload.
func ValidateFormat(code string) bool {
	if len(code) == ean13Length && isDigits(code) {
		return IsValidEAN13(code)
	}
	if len(code) == 0 || len(code) > maxGenericLength {
		return false
	}
	for i := 0; i < len(code); i++ {
		if code[i] < 0x20 || code[i] > 0x7e {
			return false
		}
	}
	return true
}

// GenerateUnique retries Generate until exists reports the code unused.
func GenerateUnique(now func() time.Time, intN func(int) int, exists func(code string) (bool, error)) (string, error) {
	if now == nil {
		now = time.Now
	}
	for attempt := 0; attempt < MaxGenerateAttempts; attempt++ {
		code := Generate(now(), intN)
		taken, err := exists(code)
		if err != nil {
			return "", err
		}
		if !taken {
			return code, nil
		}
	}
	return "", ErrExhausted
}

func isDigits(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return len(s) > 0
}
