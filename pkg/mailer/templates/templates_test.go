package templates

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oksasatya/solargrowth/internal/domain/entity"
)

func TestRenderOperatorAlert(t *testing.T) {
	dhaka, err := time.LoadLocation("Asia/Dhaka")
	require.NoError(t, err)

	ev := entity.LedgerEvent{
		Type:     entity.EventWithdrawalSubmitted,
		Phone:    "01711111111",
		Amount:   450,
		RecordID: "w-1",
		Status:   "Pending",
		At:       time.Date(2026, 3, 1, 6, 30, 0, 0, time.UTC),
	}
	data := NewAlertData("SolarGrowth", ev, WithLocation(dhaka), WithAdminURL("https://admin.test"))
	assert.Equal(t, "Withdrawal", data.Kind)
	assert.Contains(t, data.Time, "12:30")

	subject, text, html, err := Render(OperatorAlert, data)
	require.NoError(t, err)
	assert.Equal(t, "[SolarGrowth] Withdrawal request ৳450.00 from 01711111111", subject)
	assert.Contains(t, text, "Record:  w-1")
	assert.Contains(t, text, "https://admin.test")
	assert.Contains(t, html, "Withdrawal request pending")
}

func TestRenderMissingTemplate(t *testing.T) {
	_, _, _, err := Render("nope", AlertData{})
	assert.Error(t, err)
}
