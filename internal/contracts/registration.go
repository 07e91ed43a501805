package contracts

import (
	"strings"
	"unicode"

	"roomfinder/internal/core/domain"
)

const RegistrationSchema = "Registration/1.0.0"

var registrationMessages = map[string]string{
	"email":    "invalid email address",
	"password": "password must be at least 8 characters",
	"phone":    "phone must be 10-11 digits",
	"role":     "role must be student or landlord",
}

type registrationForm struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Phone    string `json:"phone"`
	Role     string `json:"role"`
}

// ValidateRegistration - проверки формы регистрации до запроса на backend.
func ValidateRegistration(reg domain.Registration) error {
	form := registrationForm{
		Email:    strings.TrimSpace(reg.Email),
		Password: reg.Password,
		Phone:    strings.TrimSpace(reg.Phone),
		Role:     string(reg.Role),
	}

	fields := validateForm(RegistrationSchema, form, registrationMessages)
	if fields == nil {
		fields = make(map[string]string)
	}

	if _, bad := fields["password"]; !bad && !passwordIsStrong(reg.Password) {
		fields["password"] = "password must contain upper and lower case letters and a digit"
	}
	if reg.Password != reg.ConfirmPassword {
		fields["confirm_password"] = "passwords do not match"
	}

	return fieldErrors(fields)
}

func passwordIsStrong(p string) bool {
	var upper, lower, digit bool
	for _, r := range p {
		switch {
		case unicode.IsUpper(r):
			upper = true
		case unicode.IsLower(r):
			lower = true
		case unicode.IsDigit(r):
			digit = true
		}
	}
	return upper && lower && digit
}
