package model

import (
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
)

// KYCUpdate is the body of POST /save_kyc.
type KYCUpdate struct {
	TxnID   string `json:"txn_id" validate:"required"`
	Name    string `json:"name" validate:"max=120"`
	Aadhar  string `json:"aadhar" validate:"omitempty,numeric,len=12"`
	Mobile  string `json:"mobile" validate:"omitempty,numeric,len=10"`
	Address string `json:"address" validate:"max=200"`
}

// KYCResult is the response of POST /save_kyc.
type KYCResult struct {
	Status  string `json:"status"`
	Message string `json:"message,omitempty"`
}

// KYCStatusSuccess is the status reported for a stored record.
const KYCStatusSuccess = "success"

var (
	validateOnce sync.Once
	validate     *validator.Validate
)

func kycValidator() *validator.Validate {
	validateOnce.Do(func() {
		validate = validator.New()
	})
	return validate
}

// numberSeparators are the characters people type inside Aadhaar and mobile
// numbers.
var numberSeparators = strings.NewReplacer(" ", "", "-", "", ".", "", "(", "", ")", "")

// Normalize trims all fields in place and reduces Aadhaar and mobile numbers
// to bare digits: separators go, and a mobile loses its +91, 91 or 0 prefix.
func (k *KYCUpdate) Normalize() {
	k.TxnID = strings.TrimSpace(k.TxnID)
	k.Name = strings.TrimSpace(k.Name)
	k.Aadhar = numberSeparators.Replace(strings.TrimSpace(k.Aadhar))
	k.Mobile = normalizeMobile(k.Mobile)
	k.Address = strings.TrimSpace(k.Address)
}

func normalizeMobile(s string) string {
	s = numberSeparators.Replace(strings.TrimSpace(s))
	switch {
	case strings.HasPrefix(s, "+91"):
		return s[3:]
	case len(s) == 12 && strings.HasPrefix(s, "91"):
		return s[2:]
	case len(s) == 11 && strings.HasPrefix(s, "0"):
		return s[1:]
	}
	return s
}

// Validate checks the update and returns a readable error naming the first
// offending field.
func (k KYCUpdate) Validate() error {
	err := kycValidator().Struct(k)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) && len(verrs) > 0 {
		fe := verrs[0]
		switch fe.Tag() {
		case "required":
			return fmt.Errorf("%s is required", fieldLabel(fe.Field()))
		case "numeric":
			return fmt.Errorf("%s must contain only digits", fieldLabel(fe.Field()))
		case "len":
			return fmt.Errorf("%s must be %s digits", fieldLabel(fe.Field()), fe.Param())
		default:
			return fmt.Errorf("%s is invalid", fieldLabel(fe.Field()))
		}
	}
	return err
}

func fieldLabel(field string) string {
	switch field {
	case "TxnID":
		return "transaction id"
	case "Aadhar":
		return "Aadhaar"
	default:
		return strings.ToLower(field)
	}
}
