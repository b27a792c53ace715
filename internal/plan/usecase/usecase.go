package usecase

import (
	"context"
	"time"

	"github.com/fekuna/omnipos-availability-service/internal/apperr"
	"github.com/fekuna/omnipos-availability-service/internal/day"
	"github.com/fekuna/omnipos-availability-service/internal/model"
	"github.com/fekuna/omnipos-availability-service/internal/plan"
	"github.com/fekuna/omnipos-availability-service/internal/plan/dto"
	"github.com/fekuna/omnipos-availability-service/pkg/logger"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// ApproachingPercent is the share of the order limit that triggers the first notice.
const ApproachingPercent = 80

type planUseCase struct {
	repo     plan.Repository
	settings plan.SettingsSource
	notifier plan.Notifier
	now      func() time.Time
	logger   logger.ZapLogger
}

// NewPlanUseCase builds the plan limit guard. settings and notifier may be nil;
// without a notifier thresholds are still recorded but nothing is sent.
func NewPlanUseCase(repo plan.Repository, settings plan.SettingsSource, notifier plan.Notifier, now func() time.Time, log logger.ZapLogger) plan.UseCase {
	if now == nil {
		now = time.Now
	}
	return &planUseCase{
		repo:     repo,
		settings: settings,
		notifier: notifier,
		now:      now,
		logger:   log,
	}
}

// monthStart is the first day of the current UTC calendar month.
func (uc *planUseCase) monthStart() day.Date {
	n := uc.now().UTC()
	return day.New(n.Year(), n.Month(), 1)
}

func (uc *planUseCase) CountCurrentMonthOrders(ctx context.Context, shopID string) (int, error) {
	return uc.repo.SumOrderQuantitiesSince(ctx, shopID, uc.monthStart().Time())
}

func (uc *planUseCase) HasActivePlan(ctx context.Context, shopID string) (bool, error) {
	p, err := uc.repo.FindByShopID(ctx, shopID)
	if err != nil || p == nil {
		return false, err
	}
	if p.IsUnlimited() {
		return true, nil
	}
	count, err := uc.CountCurrentMonthOrders(ctx, shopID)
	if err != nil {
		return false, err
	}
	return count < p.OrderLimit, nil
}

func (uc *planUseCase) Usage(ctx context.Context, shopID string) (*dto.Usage, error) {
	p, err := uc.repo.FindByShopID(ctx, shopID)
	if err != nil {
		return nil, err
	}
	count, err := uc.CountCurrentMonthOrders(ctx, shopID)
	if err != nil {
		return nil, err
	}
	active, err := uc.HasActivePlan(ctx, shopID)
	if err != nil {
		return nil, err
	}

	u := &dto.Usage{OrderCount: count, OrderLimit: model.UnlimitedOrders, Active: active}
	if p != nil {
		u.PlanName = p.Name
		u.OrderLimit = p.OrderLimit
	}
	return u, nil
}

// threshold returns the notice due for count, or "" below ApproachingPercent.
// A count that jumps straight past the limit only yields the reached notice.
func threshold(count, limit int) model.NotificationType {
	switch {
	case count >= limit:
		return model.NotificationPlanLimitReached
	case count*100 >= limit*ApproachingPercent:
		return model.NotificationPlanLimitApproaching
	default:
		return ""
	}
}

func (uc *planUseCase) CheckAndNotify(ctx context.Context, shop *model.Shop) error {
	p, err := uc.repo.FindByShopID(ctx, shop.ID)
	if err != nil {
		return err
	}
	if p == nil || p.IsUnlimited() {
		return nil
	}

	count, err := uc.CountCurrentMonthOrders(ctx, shop.ID)
	if err != nil {
		return err
	}
	typ := threshold(count, p.OrderLimit)
	if typ == "" {
		return nil
	}

	n := &model.Notification{
		ID:          uuid.New().String(),
		ShopID:      shop.ID,
		Type:        typ,
		PeriodStart: uc.monthStart(),
		SentAt:      uc.now(),
	}
	claimed, err := uc.repo.ClaimNotification(ctx, n)
	if err != nil {
		return err
	}
	if !claimed {
		return nil
	}

	uc.logger.Info("Plan limit threshold crossed",
		zap.String("shop_id", shop.ID),
		zap.String("type", string(typ)),
		zap.Int("count", count),
		zap.Int("limit", p.OrderLimit),
	)
	if uc.notifier == nil {
		return nil
	}

	notice := &plan.Notice{Shop: shop, Plan: p, Type: typ, Count: count, Locale: uc.locale(ctx, shop.ID)}
	if err := uc.notifier.NotifyPlanLimit(ctx, notice); err != nil {
		// Give the next order a chance to send it again.
		if rerr := uc.repo.ReleaseNotification(ctx, n); rerr != nil {
			uc.logger.Error("Failed to release notification claim", zap.String("shop_id", shop.ID), zap.Error(rerr))
		}
		return &apperr.CollaboratorCallError{Collaborator: "notifier", Err: err}
	}
	return nil
}

func (uc *planUseCase) locale(ctx context.Context, shopID string) string {
	if uc.settings == nil {
		return model.DefaultLocale
	}
	s, err := uc.settings.Settings(ctx, shopID)
	if err != nil {
		uc.logger.Warn("Falling back to default locale", zap.String("shop_id", shopID), zap.Error(err))
		return model.DefaultLocale
	}
	return s.WithDefaults().Locale
}
