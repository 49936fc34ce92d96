package address

import (
	"strings"
	"unicode"

	"bestea-be/internal/apperr"
	"bestea-be/internal/utils"
)

const CodeInvalidAddress = "INVALID_ADDRESS"

var ErrInvalidAddress = apperr.Validation(CodeInvalidAddress, "shipping address is incomplete or malformed")

// Normalize trims every field, strips phone punctuation and drops empty
// optional lines.
func (a Address) Normalize() Address {
	a.Name = strings.TrimSpace(a.Name)
	a.Phone = normalizePhone(a.Phone)
	a.AddressLine1 = strings.TrimSpace(a.AddressLine1)
	a.AddressLine2 = utils.TrimPtr(a.AddressLine2)
	a.City = strings.TrimSpace(a.City)
	a.State = strings.TrimSpace(a.State)
	a.Pincode = strings.TrimSpace(a.Pincode)
	a.Landmark = utils.TrimPtr(a.Landmark)
	return a
}

// Validate reports every missing or malformed field at once under the
// "fields" detail.
func (a Address) Validate() error {
	invalid := map[string]string{}

	if a.Name == "" {
		invalid["name"] = "required"
	}
	if a.AddressLine1 == "" {
		invalid["addressLine1"] = "required"
	}
	if a.City == "" {
		invalid["city"] = "required"
	}
	if a.State == "" {
		invalid["state"] = "required"
	}

	switch {
	case a.Phone == "":
		invalid["phone"] = "required"
	case !validPhone(a.Phone):
		invalid["phone"] = "must be a 10 digit mobile number"
	}

	switch {
	case a.Pincode == "":
		invalid["pincode"] = "required"
	case !validPincode(a.Pincode):
		invalid["pincode"] = "must be 6 digits"
	}

	if len(invalid) == 0 {
		return nil
	}
	return ErrInvalidAddress.WithDetail("fields", invalid)
}

func normalizePhone(raw string) string {
	var b strings.Builder
	for _, r := range strings.TrimSpace(raw) {
		switch {
		case unicode.IsDigit(r):
			b.WriteRune(r)
		case r == '+' && b.Len() == 0:
			b.WriteRune(r)
		}
	}
	phone := b.String()

	// Country code for domestic numbers.
	if strings.HasPrefix(phone, "+91") && len(phone) == 13 {
		return phone[3:]
	}
	if strings.HasPrefix(phone, "0") && len(phone) == 11 {
		return phone[1:]
	}
	return phone
}

func validPhone(phone string) bool {
	if len(phone) != 10 || !allDigits(phone) {
		return false
	}
	return phone[0] >= '6'
}

func validPincode(pin string) bool {
	return len(pin) == 6 && allDigits(pin) && pin[0] != '0'
}

func allDigits(s string) bool {
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
