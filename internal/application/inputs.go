package application

import (
	"errors"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/oksasatya/solargrowth/internal/domain/entity"
	"github.com/oksasatya/solargrowth/pkg/validation"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	validation.Register(v)
	return v
}

// ValidationError carries field-level failures from typed input checks.
type ValidationError struct {
	Err error
}

func (e *ValidationError) Error() string { return "invalid input: " + e.Err.Error() }
func (e *ValidationError) Unwrap() error { return e.Err }

// IsValidation reports whether err came from input validation.
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

func check(in any) error {
	if err := validate.Struct(in); err != nil {
		return &ValidationError{Err: err}
	}
	return nil
}

type RegisterInput struct {
	Phone        string `json:"phone" validate:"required,msisdn"`
	Password     string `json:"password" validate:"required,min=6,max=72"`
	ReferralCode string `json:"referralCode" validate:"omitempty,refcode"`
}

func (in *RegisterInput) normalize() {
	in.Phone = normalizePhone(in.Phone)
	in.ReferralCode = strings.TrimSpace(in.ReferralCode)
}

type LoginInput struct {
	Phone    string `json:"phone" validate:"required"`
	Password string `json:"password" validate:"required"`
}

// UpdateProfileInput changes the login password and/or the withdrawal PIN.
// Empty fields are left untouched.
type UpdateProfileInput struct {
	Password       string `json:"password" validate:"omitempty,min=6,max=72"`
	TransactionPin string `json:"transactionPin" validate:"omitempty,pin"`
}

type BuyInput struct {
	ProductID int64 `json:"productId" validate:"required,gt=0"`
}

type RechargeInput struct {
	Amount float64 `json:"amount" validate:"required,gt=0"`
	TrxID  string  `json:"trxId" validate:"required,trxid"`
}

type WithdrawalInput struct {
	Amount        float64 `json:"amount" validate:"required,gt=0"`
	BankName      string  `json:"bankName" validate:"required,max=64"`
	AccountNumber string  `json:"accountNumber" validate:"required,min=6,max=32"`
	HolderName    string  `json:"holderName" validate:"required,max=128"`
	Pin           string  `json:"pin" validate:"omitempty,pin"`
}

func (in WithdrawalInput) account() entity.BankAccount {
	return entity.BankAccount{
		BankName:      strings.TrimSpace(in.BankName),
		AccountNumber: strings.TrimSpace(in.AccountNumber),
		HolderName:    strings.TrimSpace(in.HolderName),
	}
}

type DecisionInput struct {
	Status entity.RequestStatus `json:"status" validate:"required,oneof=Success Failed"`
}

type ProductInput struct {
	Name        string          `json:"name" validate:"required,max=128"`
	Price       float64         `json:"price" validate:"required,gt=0"`
	DailyIncome float64         `json:"dailyIncome" validate:"gte=0"`
	TotalIncome float64         `json:"totalIncome" validate:"gte=0"`
	Validity    int             `json:"validity" validate:"gte=0"`
	Category    entity.Category `json:"category" validate:"required,oneof=Solar Wind"`
	Image       string          `json:"image" validate:"omitempty,url"`
}

func (in ProductInput) apply(p *entity.Product) {
	p.Name = strings.TrimSpace(in.Name)
	p.Price = in.Price
	p.DailyIncome = in.DailyIncome
	p.TotalIncome = in.TotalIncome
	p.Validity = in.Validity
	p.Category = in.Category
	p.Image = in.Image
}

// AdjustUserInput is an admin correction. Nil fields are left untouched.
type AdjustUserInput struct {
	Balance  *float64 `json:"balance" validate:"omitempty,gte=0"`
	IsAdmin  *bool    `json:"isAdmin"`
	ClearPin bool     `json:"clearPin"`
	Note     string   `json:"note" validate:"max=256"`
}

func normalizePhone(p string) string {
	var b strings.Builder
	for _, r := range p {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}
