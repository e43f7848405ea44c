package ownership

import (
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/GremaudMatthieu/Baillr-sub000/internal/domain/shared"
)

const (
	maxBankAccountLabelLength = 100
	maxBankNameLength         = 255

	// DefaultLatePaymentDelayDays applies to entities that never configured a delay
	DefaultLatePaymentDelayDays = 5
	maxLatePaymentDelayDays     = 90
)

var (
	ibanPattern = regexp.MustCompile(`^[A-Z]{2}\d{2}[A-Z0-9]{11,30}$`)

	bicValidator = validator.New()
)

// BankAccountType tokens
const (
	BankAccountTypeBankAccount  = "bank_account"
	BankAccountTypeCashRegister = "cash_register"
)

// BankAccountType distinguishes real bank accounts from the entity's cash register
type BankAccountType struct {
	value string
}

// NewBankAccountType creates a BankAccountType from its token
func NewBankAccountType(value string) (BankAccountType, error) {
	switch value {
	case BankAccountTypeBankAccount, BankAccountTypeCashRegister:
		return BankAccountType{value: value}, nil
	default:
		return BankAccountType{}, shared.NewValidationError("Bank account type must be bank_account or cash_register")
	}
}

// String returns the token
func (t BankAccountType) String() string {
	return t.value
}

// IsCashRegister returns true for the cash register type
func (t BankAccountType) IsCashRegister() bool {
	return t.value == BankAccountTypeCashRegister
}

// RequiresIBAN returns true when accounts of this type must carry an IBAN
func (t BankAccountType) RequiresIBAN() bool {
	return t.value == BankAccountTypeBankAccount
}

// Equals returns true if both types are equal
func (t BankAccountType) Equals(other BankAccountType) bool {
	return t.value == other.value
}

// BankAccountLabel is the user-facing name of a bank account
type BankAccountLabel struct {
	value string
}

// NewBankAccountLabel creates a non-empty label
func NewBankAccountLabel(value string) (BankAccountLabel, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return BankAccountLabel{}, shared.NewValidationError("Bank account label is required")
	}
	if len(value) > maxBankAccountLabelLength {
		return BankAccountLabel{}, shared.NewValidationError("Bank account label cannot exceed 100 characters")
	}
	return BankAccountLabel{value: value}, nil
}

// String returns the label
func (l BankAccountLabel) String() string {
	return l.value
}

// Equals returns true if both labels are equal
func (l BankAccountLabel) Equals(other BankAccountLabel) bool {
	return l.value == other.value
}

// IBAN is an international bank account number, stored without spaces and uppercased.
// The zero value is the "no IBAN" null object.
type IBAN struct {
	value string
}

// EmptyIBAN returns the null object
func EmptyIBAN() IBAN {
	return IBAN{}
}

// NewIBAN creates a validated, non-empty IBAN
func NewIBAN(value string) (IBAN, error) {
	normalized := normalizeIBAN(value)
	if normalized == "" {
		return IBAN{}, shared.NewValidationError("IBAN is required")
	}
	if !ibanPattern.MatchString(normalized) || !ibanChecksumValid(normalized) {
		return IBAN{}, shared.NewValidationError("Invalid IBAN format")
	}
	return IBAN{value: normalized}, nil
}

// NewOptionalIBAN returns EmptyIBAN for blank input and NewIBAN otherwise
func NewOptionalIBAN(value string) (IBAN, error) {
	if normalizeIBAN(value) == "" {
		return EmptyIBAN(), nil
	}
	return NewIBAN(value)
}

// String returns the compact IBAN
func (i IBAN) String() string {
	return i.value
}

// IsEmpty returns true for the null object
func (i IBAN) IsEmpty() bool {
	return i.value == ""
}

// Equals returns true if both IBANs are equal
func (i IBAN) Equals(other IBAN) bool {
	return i.value == other.value
}

func normalizeIBAN(value string) string {
	return strings.ToUpper(strings.ReplaceAll(strings.TrimSpace(value), " ", ""))
}

// ibanChecksumValid runs the ISO 13616 mod-97 check on a normalized IBAN
func ibanChecksumValid(iban string) bool {
	rearranged := iban[4:] + iban[:4]
	remainder := 0
	for _, r := range rearranged {
		switch {
		case r >= '0' && r <= '9':
			remainder = (remainder*10 + int(r-'0')) % 97
		case r >= 'A' && r <= 'Z':
			remainder = (remainder*100 + int(r-'A'+10)) % 97
		default:
			return false
		}
	}
	return remainder == 1
}

// BIC is a bank identifier code (SWIFT), 8 or 11 characters.
// The zero value is the "no BIC" null object.
type BIC struct {
	value string
}

// EmptyBIC returns the null object
func EmptyBIC() BIC {
	return BIC{}
}

// NewBIC creates a validated, non-empty BIC
func NewBIC(value string) (BIC, error) {
	value = strings.ToUpper(strings.TrimSpace(value))
	if value == "" {
		return BIC{}, shared.NewValidationError("BIC is required")
	}
	if err := bicValidator.Var(value, "bic"); err != nil {
		return BIC{}, shared.NewValidationError("Invalid BIC format")
	}
	return BIC{value: value}, nil
}

// NewOptionalBIC returns EmptyBIC for blank input and NewBIC otherwise
func NewOptionalBIC(value string) (BIC, error) {
	if strings.TrimSpace(value) == "" {
		return EmptyBIC(), nil
	}
	return NewBIC(value)
}

// String returns the code
func (b BIC) String() string {
	return b.value
}

// IsEmpty returns true for the null object
func (b BIC) IsEmpty() bool {
	return b.value == ""
}

// Equals returns true if both codes are equal
func (b BIC) Equals(other BIC) bool {
	return b.value == other.value
}

// BankName is the display name of the institution holding an account.
// The zero value is the "no bank name" null object.
type BankName struct {
	value string
}

// EmptyBankName returns the null object
func EmptyBankName() BankName {
	return BankName{}
}

// NewBankName creates a non-empty bank name
func NewBankName(value string) (BankName, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return BankName{}, shared.NewValidationError("Bank name is required")
	}
	if len(value) > maxBankNameLength {
		return BankName{}, shared.NewValidationError("Bank name cannot exceed 255 characters")
	}
	return BankName{value: value}, nil
}

// NewOptionalBankName returns EmptyBankName for blank input and NewBankName otherwise
func NewOptionalBankName(value string) (BankName, error) {
	if strings.TrimSpace(value) == "" {
		return EmptyBankName(), nil
	}
	return NewBankName(value)
}

// String returns the name
func (n BankName) String() string {
	return n.value
}

// IsEmpty returns true for the null object
func (n BankName) IsEmpty() bool {
	return n.value == ""
}

// Equals returns true if both names are equal
func (n BankName) Equals(other BankName) bool {
	return n.value == other.value
}

// LatePaymentDelay is the number of days after the due date before a rent is considered late
type LatePaymentDelay struct {
	days int
}

// NewLatePaymentDelay creates a delay within [0, 90] days
func NewLatePaymentDelay(days int) (LatePaymentDelay, error) {
	if days < 0 {
		return LatePaymentDelay{}, shared.NewValidationError("Late payment delay days must be at least 0")
	}
	if days > maxLatePaymentDelayDays {
		return LatePaymentDelay{}, shared.NewValidationError("Late payment delay days must be at most 90")
	}
	return LatePaymentDelay{days: days}, nil
}

// DefaultLatePaymentDelay returns the delay used until one is configured
func DefaultLatePaymentDelay() LatePaymentDelay {
	return LatePaymentDelay{days: DefaultLatePaymentDelayDays}
}

// Days returns the number of days
func (d LatePaymentDelay) Days() int {
	return d.days
}

// Equals returns true if both delays are equal
func (d LatePaymentDelay) Equals(other LatePaymentDelay) bool {
	return d.days == other.days
}
