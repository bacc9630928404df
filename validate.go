package accounts

import (
	"regexp"
	"strings"
	"unicode"

	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/go-ozzo/ozzo-validation/is"
	"github.com/nyaruka/phonenumbers"
)

const (
	// MinUsernameLength and MaxUsernameLength bound the username rule.
	MinUsernameLength = 8
	MaxUsernameLength = 32

	// MinPasswordLength is the portal's password policy floor.
	MinPasswordLength = 12

	// DefaultPhoneRegion is assumed for phone numbers submitted without
	// a country prefix.
	DefaultPhoneRegion = "US"
)

var (
	usernameRegex         = regexp.MustCompile(`^[A-Za-z0-9]+$`)
	nameRegex             = regexp.MustCompile(`^[A-Za-z]+( [A-Za-z]+)*$`)
	nameWithSpecialsRegex = regexp.MustCompile(`^[A-Za-z]+([ '-][A-Za-z]+)*$`)
)

// IsValidUsername reports whether s satisfies the username rule: 8 to 32
// characters, letters and digits only, with at least one of each.
func IsValidUsername(s string) bool {
	if len(s) < MinUsernameLength || len(s) > MaxUsernameLength {
		return false
	}
	if !usernameRegex.MatchString(s) {
		return false
	}
	hasLetter := strings.ContainsFunc(s, unicode.IsLetter)
	hasDigit := strings.ContainsFunc(s, unicode.IsDigit)
	return hasLetter && hasDigit
}

// IsValidPassword reports whether s satisfies the password policy:
// minimum length plus at least one lowercase letter, one uppercase
// letter, one digit, and one symbol.
func IsValidPassword(s string) bool {
	if len(s) < MinPasswordLength {
		return false
	}
	if strings.TrimSpace(s) == "" {
		return false
	}

	var lower, upper, digit, symbol bool
	for _, r := range s {
		switch {
		case unicode.IsLower(r):
			lower = true
		case unicode.IsUpper(r):
			upper = true
		case unicode.IsDigit(r):
			digit = true
		case unicode.IsSpace(r):
			// spaces count toward length but not toward any class
		default:
			symbol = true
		}
	}

	return lower && upper && digit && symbol
}

// IsValidName accepts plain alphabetic names, single spaces between
// tokens, nothing else.
func IsValidName(s string) bool {
	return nameRegex.MatchString(s)
}

// IsValidNameWithSpecialCharacters additionally allows hyphens and
// apostrophes between alphabetic runs, covering names like
// "O'Dean Smith" and "Jamie Smith-Roe".
func IsValidNameWithSpecialCharacters(s string) bool {
	return nameWithSpecialsRegex.MatchString(s)
}

// IsValidEmail checks address syntax and deliverability shape.
func IsValidEmail(s string) bool {
	if strings.TrimSpace(s) == "" {
		return false
	}
	return validation.Validate(s, validation.Required, is.Email) == nil
}

// IsValidPhone parses s as a phone number in the portal's default
// region and checks it is a dialable number.
func IsValidPhone(s string) bool {
	if strings.TrimSpace(s) == "" {
		return false
	}
	num, err := phonenumbers.Parse(s, DefaultPhoneRegion)
	if err != nil {
		return false
	}
	return phonenumbers.IsValidNumber(num)
}
