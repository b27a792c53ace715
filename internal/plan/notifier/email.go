package notifier

import (
	"context"
	"fmt"

	"github.com/fekuna/omnipos-availability-service/internal/model"
	"github.com/fekuna/omnipos-availability-service/internal/plan"
	"github.com/fekuna/omnipos-availability-service/pkg/logger"
	"go.uber.org/zap"
)

// Mailer is satisfied by *mail.SendGridClient.
type Mailer interface {
	Send(ctx context.Context, to, subject, body string) error
}

// Localizer is satisfied by *i18n.Bundle.
type Localizer interface {
	Localize(locale, messageID string, data map[string]interface{}) (string, error)
}

var messageIDs = map[model.NotificationType][2]string{
	model.NotificationPlanLimitApproaching: {"PlanLimitApproachingSubject", "PlanLimitApproachingBody"},
	model.NotificationPlanLimitReached:     {"PlanLimitReachedSubject", "PlanLimitReachedBody"},
}

// EmailNotifier mails plan limit notices to the shop owner in the shop locale.
type EmailNotifier struct {
	mailer Mailer
	text   Localizer
	logger logger.ZapLogger
}

func NewEmailNotifier(mailer Mailer, text Localizer, log logger.ZapLogger) *EmailNotifier {
	return &EmailNotifier{mailer: mailer, text: text, logger: log}
}

func (n *EmailNotifier) NotifyPlanLimit(ctx context.Context, notice *plan.Notice) error {
	ids, ok := messageIDs[notice.Type]
	if !ok {
		return fmt.Errorf("unknown notification type %q", notice.Type)
	}
	if notice.Shop.Email == "" {
		n.logger.Warn("Shop has no email, skipping plan notice",
			zap.String("shop_id", notice.Shop.ID),
			zap.String("type", string(notice.Type)),
		)
		return nil
	}

	data := map[string]interface{}{
		"Shop":  notice.Shop.Domain,
		"Count": notice.Count,
		"Limit": notice.Plan.OrderLimit,
		"Plan":  notice.Plan.Name,
	}
	if notice.Plan.OrderLimit > 0 {
		data["Percent"] = notice.Count * 100 / notice.Plan.OrderLimit
	}

	subject, err := n.text.Localize(notice.Locale, ids[0], data)
	if err != nil {
		return fmt.Errorf("localize %s: %w", ids[0], err)
	}
	body, err := n.text.Localize(notice.Locale, ids[1], data)
	if err != nil {
		return fmt.Errorf("localize %s: %w", ids[1], err)
	}

	if err := n.mailer.Send(ctx, notice.Shop.Email, subject, body); err != nil {
		return err
	}
	n.logger.Info("Plan notice sent",
		zap.String("shop_id", notice.Shop.ID),
		zap.String("type", string(notice.Type)),
		zap.String("locale", notice.Locale),
	)
	return nil
}
