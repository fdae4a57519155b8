package templates

import (
	"strings"
	"time"

	"github.com/oksasatya/solargrowth/internal/domain/entity"
)

// Option pattern
type Option func(*AlertData)

// WithLocation renders the event time in the operator's zone.
func WithLocation(loc *time.Location) Option {
	return func(d *AlertData) {
		if loc == nil {
			return
		}
		d.Time = d.At.In(loc).Format("02 January 2006, 15:04 MST")
	}
}

func WithAdminURL(url string) Option { return func(d *AlertData) { d.AdminURL = url } }

// NewAlertData maps a ledger event onto the alert template fields.
func NewAlertData(appName string, ev entity.LedgerEvent, opts ...Option) AlertData {
	kind, _, _ := strings.Cut(string(ev.Type), ".")
	if kind != "" {
		kind = strings.ToUpper(kind[:1]) + kind[1:]
	}
	d := AlertData{
		AppName:   appName,
		Kind:      kind,
		EventType: string(ev.Type),
		Phone:     ev.Phone,
		Amount:    ev.Amount,
		RecordID:  ev.RecordID,
		Status:    ev.Status,
		At:        ev.At.UTC(),
		Time:      ev.At.UTC().Format("02 January 2006, 15:04 MST"),
	}
	for _, opt := range opts {
		opt(&d)
	}
	return d
}
