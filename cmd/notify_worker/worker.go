package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/oksasatya/solargrowth/internal/domain/entity"
	"github.com/oksasatya/solargrowth/pkg/mailer"
	mailtpl "github.com/oksasatya/solargrowth/pkg/mailer/templates"
)

var (
	errSkipped    = errors.New("event needs no operator action")
	errBadMessage = errors.New("malformed event")
)

// alerter turns ledger events into operator emails.
type alerter struct {
	sender   mailer.Sender
	to       string
	appName  string
	adminURL string
	loc      *time.Location
	logger   *logrus.Logger
}

// handle returns errSkipped for events nobody has to act on and
// errBadMessage for payloads that will never succeed. Any other error is
// worth a retry.
func (a *alerter) handle(ctx context.Context, body []byte) error {
	var ev entity.LedgerEvent
	if err := json.Unmarshal(body, &ev); err != nil {
		return fmt.Errorf("%w: %v", errBadMessage, err)
	}
	if !ev.Type.NeedsOperator() {
		return errSkipped
	}

	data := mailtpl.NewAlertData(a.appName, ev, mailtpl.WithLocation(a.loc), mailtpl.WithAdminURL(a.adminURL))
	subject, text, html, err := mailtpl.Render(mailtpl.OperatorAlert, data)
	if err != nil {
		return fmt.Errorf("%w: render: %v", errBadMessage, err)
	}

	c, cancel := context.WithTimeout(ctx, 15*time.Second)
	defer cancel()
	if err := a.sender.Send(c, a.to, subject, text, html); err != nil {
		return fmt.Errorf("send: %w", err)
	}
	a.logger.WithField("event", ev.Type).WithField("record_id", ev.RecordID).Info("operator alerted")
	return nil
}
