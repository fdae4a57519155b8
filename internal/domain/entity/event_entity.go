package entity

import "time"

type EventType string

const (
	EventUserRegistered      EventType = "user.registered"
	EventOrderPurchased      EventType = "order.purchased"
	EventIncomeCollected     EventType = "income.collected"
	EventCheckIn             EventType = "checkin.credited"
	EventRechargeSubmitted   EventType = "recharge.submitted"
	EventRechargeResolved    EventType = "recharge.resolved"
	EventWithdrawalSubmitted EventType = "withdrawal.submitted"
	EventWithdrawalResolved  EventType = "withdrawal.resolved"
)

// NeedsOperator reports whether the event waits on an admin decision.
func (t EventType) NeedsOperator() bool {
	return t == EventRechargeSubmitted || t == EventWithdrawalSubmitted
}

// LedgerEvent is the message published for every ledger state change.
type LedgerEvent struct {
	Type     EventType `json:"type"`
	Phone    string    `json:"phone"`
	Amount   float64   `json:"amount"`
	RecordID string    `json:"recordId,omitempty"`
	Status   string    `json:"status,omitempty"`
	At       time.Time `json:"at"`
}
