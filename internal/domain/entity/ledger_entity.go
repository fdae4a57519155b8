package entity

import "time"

type Category string

const (
	CategorySolar Category = "Solar"
	CategoryWind  Category = "Wind"
)

// Product is a catalog entry. TotalIncome is advisory only.
type Product struct {
	ID          int64     `json:"id"`
	Name        string    `json:"name"`
	Price       float64   `json:"price"`
	DailyIncome float64   `json:"dailyIncome"`
	TotalIncome float64   `json:"totalIncome"`
	Validity    int       `json:"validity"`
	Category    Category  `json:"category"`
	Image       string    `json:"image,omitempty"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

type OrderStatus string

const (
	OrderActive    OrderStatus = "Active"
	OrderCompleted OrderStatus = "Completed"
)

// Order references a product by id. Price and DailyIncome are copied from
// the product at purchase time.
type Order struct {
	ID                 string      `json:"id"`
	ProductID          int64       `json:"productId"`
	Price              float64     `json:"price"`
	DailyIncome        float64     `json:"dailyIncome"`
	PurchaseDate       time.Time   `json:"purchaseDate"`
	LastCollectionDate *time.Time  `json:"lastCollectionDate,omitempty"`
	Status             OrderStatus `json:"status"`
}

type RequestStatus string

const (
	StatusPending RequestStatus = "Pending"
	StatusSuccess RequestStatus = "Success"
	StatusFailed  RequestStatus = "Failed"
)

// Valid reports whether s is one of the known statuses.
func (s RequestStatus) Valid() bool {
	switch s {
	case StatusPending, StatusSuccess, StatusFailed:
		return true
	}
	return false
}

// IsDecision reports whether s is a terminal admin decision.
func (s RequestStatus) IsDecision() bool {
	return s == StatusSuccess || s == StatusFailed
}

type RechargeRecord struct {
	ID         string        `json:"id"`
	UserPhone  string        `json:"userPhone"`
	Amount     float64       `json:"amount"`
	Date       time.Time     `json:"date"`
	Status     RequestStatus `json:"status"`
	TrxID      string        `json:"trxId"`
	ResolvedAt *time.Time    `json:"resolvedAt,omitempty"`
}

// BankAccount is the payout destination of a withdrawal.
type BankAccount struct {
	BankName      string `json:"bankName"`
	AccountNumber string `json:"accountNumber"`
	HolderName    string `json:"holderName"`
}

type WithdrawalRecord struct {
	ID        string        `json:"id"`
	UserPhone string        `json:"userPhone"`
	Amount    float64       `json:"amount"`
	Date      time.Time     `json:"date"`
	Status    RequestStatus `json:"status"`
	BankAccount
	ResolvedAt *time.Time `json:"resolvedAt,omitempty"`
}

type TransactionType string

const (
	TxIncome     TransactionType = "Income"
	TxPurchase   TransactionType = "Purchase"
	TxBonus      TransactionType = "Bonus"
	TxRecharge   TransactionType = "Recharge"
	TxWithdrawal TransactionType = "Withdrawal"
)

// Transaction is an immutable audit entry.
type Transaction struct {
	ID          string          `json:"id"`
	Type        TransactionType `json:"type"`
	Amount      float64         `json:"amount"`
	Date        time.Time       `json:"date"`
	Status      RequestStatus   `json:"status"`
	Description string          `json:"description"`
}

type NotificationType string

const (
	NotifyRecharge   NotificationType = "recharge"
	NotifyWithdrawal NotificationType = "withdrawal"
	NotifySystem     NotificationType = "system"
)

type Notification struct {
	ID      string           `json:"id"`
	Title   string           `json:"title"`
	Message string           `json:"message"`
	Date    time.Time        `json:"date"`
	Read    bool             `json:"read"`
	Type    NotificationType `json:"type"`
}
