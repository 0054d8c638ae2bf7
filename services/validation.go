package services

import (
	"regexp"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/ChiraniSiriwardhana/ASMS-Backend/utils"
)

// Age eligibility bounds for roster members.
const (
	MinMemberAge = 18
	MaxMemberAge = 80
)

var (
	nicPattern       = regexp.MustCompile(`^[0-9]{12}$`)
	contactNoPattern = regexp.MustCompile(`^[0-9]{10,15}$`)
)

// ValidateNIC checks that the national identity code is exactly 12 digits
func ValidateNIC(nic string) error {
	if !nicPattern.MatchString(nic) {
		return &ValidationError{Field: "nic", Message: "NIC must be exactly 12 digits"}
	}
	return nil
}

// ValidateContactNo checks that the contact number is 10-15 digits
func ValidateContactNo(contactNo string) error {
	if !contactNoPattern.MatchString(contactNo) {
		return &ValidationError{Field: "contact_no", Message: "Contact number must be 10-15 digits"}
	}
	return nil
}

// ValidateFullName checks the name is non-blank and between 2 and 100
// characters. Bounds count runes, not bytes, so multi-byte names are measured
// by their visible length.
func ValidateFullName(fullName string) error {
	trimmed := strings.TrimSpace(fullName)
	if n := utf8.RuneCountInString(trimmed); n < 2 || n > 100 {
		return &ValidationError{Field: "full_name", Message: "Full name must be between 2 and 100 characters"}
	}
	return nil
}

// ValidateAddress checks the address is non-blank and between 5 and 200
// characters, counted in runes.
func ValidateAddress(address string) error {
	trimmed := strings.TrimSpace(address)
	if n := utf8.RuneCountInString(trimmed); n < 5 || n > 200 {
		return &ValidationError{Field: "address", Message: "Address must be between 5 and 200 characters"}
	}
	return nil
}

// ValidateBirthDate checks the birth date is strictly in the past and that the
// derived age lies within the eligibility bounds at evaluation time
func ValidateBirthDate(birthDate, now time.Time) error {
	if !birthDate.Before(utils.BeginningOfDay(now)) {
		return &ValidationError{Field: "birth_date", Message: "Birth date must be in the past"}
	}
	age := utils.Age(birthDate, now)
	if age < MinMemberAge || age > MaxMemberAge {
		return &ValidationError{Field: "birth_date", Message: "Employee must be between 18 and 80 years old"}
	}
	return nil
}

// ValidateJoinedDate checks the joined date is not in the future
func ValidateJoinedDate(joinedDate, now time.Time) error {
	if utils.BeginningOfDay(joinedDate).After(utils.BeginningOfDay(now)) {
		return &ValidationError{Field: "joined_date", Message: "Joined date cannot be in the future"}
	}
	return nil
}
