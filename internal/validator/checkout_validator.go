package validator

import (
	"regexp"
	"strings"
)

var (
	//郵便番号は5桁の数字
	postalCodeRe = regexp.MustCompile(`^\d{5}$`)

	//携帯番号は07始まりの10桁
	mobileRe = regexp.MustCompile(`^07\d{8}$`)
)

// 新規入力された配送先
type CheckoutAddressInput struct {
	FirstName  string
	LastName   string
	CityID     int64
	LineOne    string
	LineTwo    string
	PostalCode string
	Mobile     string
}

// ValidateCheckoutAddress は配送先入力を検証する。
// 問題が無ければ ("", true)。あれば利用者向けメッセージと false。
// チェックの順番は利用者に見せるエラーの優先順。
func ValidateCheckoutAddress(in CheckoutAddressInput) (string, bool) {
	if strings.TrimSpace(in.FirstName) == "" {
		return "First Name is required.", false
	}
	if strings.TrimSpace(in.LastName) == "" {
		return "Last Name is required.", false
	}
	if in.CityID <= 0 {
		return "Invalid city", false
	}
	if strings.TrimSpace(in.LineOne) == "" {
		return "Address line one is required", false
	}
	if strings.TrimSpace(in.LineTwo) == "" {
		return "Address line two is required", false
	}
	if strings.TrimSpace(in.PostalCode) == "" {
		return "Your postal code is required", false
	}
	if !IsPostalCodeValid(in.PostalCode) {
		return "Invalid postal code number", false
	}
	if strings.TrimSpace(in.Mobile) == "" {
		return "Mobile number is required", false
	}
	if !IsMobileValid(in.Mobile) {
		return "Invalid mobile number", false
	}
	return "", true
}

func IsPostalCodeValid(code string) bool {
	return postalCodeRe.MatchString(code)
}

func IsMobileValid(mobile string) bool {
	return mobileRe.MatchString(mobile)
}
