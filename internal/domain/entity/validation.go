package entity

import (
	"regexp"
	"strings"
)

// tickerPattern accepts the ticker shapes seen across the providers:
// plain symbols plus class suffixes such as BRK.B or RDS-A.
var tickerPattern = regexp.MustCompile(`^[A-Za-z][A-Za-z0-9]{0,5}([.\-][A-Za-z0-9]{1,2})?$`)

// ValidateTicker checks that a ticker is present and well-formed.
func ValidateTicker(ticker string) error {
	t := strings.TrimSpace(ticker)
	if t == "" {
		return &ValidationError{Field: "symbol", Message: "symbol is required"}
	}
	if !tickerPattern.MatchString(t) {
		return &ValidationError{Field: "symbol", Message: "symbol must be a valid ticker"}
	}
	return nil
}

// ValidateDate checks that a report date is present and a valid calendar date.
func ValidateDate(date string) error {
	if strings.TrimSpace(date) == "" {
		return &ValidationError{Field: "date", Message: "date is required"}
	}
	if _, err := ParseDate(date); err != nil {
		return &ValidationError{Field: "date", Message: "date must be in YYYY-MM-DD format"}
	}
	return nil
}
