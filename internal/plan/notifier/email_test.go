package notifier

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fekuna/omnipos-availability-service/internal/model"
	"github.com/fekuna/omnipos-availability-service/internal/plan"
	"github.com/fekuna/omnipos-availability-service/pkg/i18n"
	"github.com/fekuna/omnipos-availability-service/pkg/logger"
)

type sentMail struct{ to, subject, body string }

type fakeMailer struct {
	sent []sentMail
	err  error
}

func (m *fakeMailer) Send(ctx context.Context, to, subject, body string) error {
	if m.err != nil {
		return m.err
	}
	m.sent = append(m.sent, sentMail{to, subject, body})
	return nil
}

func notice(typ model.NotificationType, locale string) *plan.Notice {
	return &plan.Notice{
		Shop:   &model.Shop{BaseModel: model.BaseModel{ID: "shop-1"}, Domain: "one.myshopify.com", Email: "owner@example.com"},
		Plan:   &model.Plan{Name: "Basic", OrderLimit: 50},
		Type:   typ,
		Count:  40,
		Locale: locale,
	}
}

func newNotifier(t *testing.T, m *fakeMailer) *EmailNotifier {
	t.Helper()
	bundle, err := i18n.New()
	require.NoError(t, err)
	return NewEmailNotifier(m, bundle, logger.NewNop())
}

func TestNotifyPlanLimit_English(t *testing.T) {
	m := &fakeMailer{}
	n := newNotifier(t, m)

	require.NoError(t, n.NotifyPlanLimit(context.Background(), notice(model.NotificationPlanLimitApproaching, "en_US")))
	require.Len(t, m.sent, 1)
	assert.Equal(t, "owner@example.com", m.sent[0].to)
	assert.Equal(t, "You have used 80% of your monthly orders", m.sent[0].subject)
	assert.Contains(t, m.sent[0].body, "one.myshopify.com has received 40 of the 50 orders")
}

func TestNotifyPlanLimit_French(t *testing.T) {
	m := &fakeMailer{}
	n := newNotifier(t, m)

	require.NoError(t, n.NotifyPlanLimit(context.Background(), notice(model.NotificationPlanLimitReached, "fr_FR")))
	require.Len(t, m.sent, 1)
	assert.Equal(t, "Vous avez atteint votre limite mensuelle de commandes", m.sent[0].subject)
}

func TestNotifyPlanLimit_UnknownLocaleFallsBackToEnglish(t *testing.T) {
	m := &fakeMailer{}
	n := newNotifier(t, m)

	require.NoError(t, n.NotifyPlanLimit(context.Background(), notice(model.NotificationPlanLimitReached, "ja_JP")))
	require.Len(t, m.sent, 1)
	assert.Equal(t, "You have reached your monthly order limit", m.sent[0].subject)
}

func TestNotifyPlanLimit_NoEmailIsSkipped(t *testing.T) {
	m := &fakeMailer{}
	n := newNotifier(t, m)
	nt := notice(model.NotificationPlanLimitReached, "en_US")
	nt.Shop.Email = ""

	require.NoError(t, n.NotifyPlanLimit(context.Background(), nt))
	assert.Empty(t, m.sent)
}

func TestNotifyPlanLimit_MailerError(t *testing.T) {
	m := &fakeMailer{err: errors.New("status=500")}
	n := newNotifier(t, m)

	err := n.NotifyPlanLimit(context.Background(), notice(model.NotificationPlanLimitReached, "en_US"))
	assert.EqualError(t, err, "status=500")
}
