package utils

import (
	"fmt"
	"regexp"
	"strings"
)

var (
	emailRegex   = regexp.MustCompile(`^[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}$`)
	controlChars = regexp.MustCompile(`[\x00-\x1f\x7f]`)
)

// ValidateEmail validates an email address
func ValidateEmail(email string) error {
	if !emailRegex.MatchString(email) {
		return fmt.Errorf("invalid email format: %s", email)
	}
	return nil
}

// ValidateStaffID validates a staff identifier: non-empty, no whitespace
func ValidateStaffID(staffID string) error {
	if staffID == "" {
		return fmt.Errorf("staff id is required")
	}
	if strings.ContainsAny(staffID, " \t\n") {
		return fmt.Errorf("staff id must not contain whitespace: %s", staffID)
	}
	return nil
}

// ValidateAmount validates a claimed or estimated amount
func ValidateAmount(amount float64) error {
	if amount < 0 {
		return fmt.Errorf("amount must not be negative: %.2f", amount)
	}
	return nil
}

// SanitizeString removes control characters from free-text input
func SanitizeString(s string) string {
	return controlChars.ReplaceAllString(s, "")
}
