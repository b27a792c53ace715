package usecase

import (
	"context"
	"errors"
	"sort"
	"strconv"
	"time"

	"github.com/fekuna/omnipos-availability-service/internal/apperr"
	"github.com/fekuna/omnipos-availability-service/internal/day"
	"github.com/fekuna/omnipos-availability-service/internal/model"
	"github.com/fekuna/omnipos-availability-service/internal/order"
	"github.com/fekuna/omnipos-availability-service/internal/order/dto"
	"github.com/fekuna/omnipos-availability-service/internal/shop"
	"github.com/fekuna/omnipos-availability-service/pkg/logger"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

type orderUseCase struct {
	repo      order.Repository
	shops     shop.UseCase
	tagger    order.Tagger
	refresher order.Refresher
	guard     order.LimitGuard
	logger    logger.ZapLogger
}

// NewOrderUseCase builds the ingestion use case. tagger and guard may be nil.
func NewOrderUseCase(
	repo order.Repository,
	shops shop.UseCase,
	tagger order.Tagger,
	refresher order.Refresher,
	guard order.LimitGuard,
	log logger.ZapLogger,
) order.UseCase {
	return &orderUseCase{
		repo:      repo,
		shops:     shops,
		tagger:    tagger,
		refresher: refresher,
		guard:     guard,
		logger:    log,
	}
}

func isTermination(input *dto.IngestInput) bool {
	switch input.Topic {
	case dto.TopicOrdersCancelled, dto.TopicOrdersDelete:
		return true
	}
	return input.Order.IsCancelled()
}

type lineKey struct {
	resourceID string
	date       day.Date
}

func (uc *orderUseCase) Ingest(ctx context.Context, input *dto.IngestInput) (*dto.IngestResult, error) {
	if input.Order.ID == 0 {
		return nil, apperr.NewValidation("id", "order id is required")
	}
	orderID := strconv.FormatInt(input.Order.ID, 10)
	result := &dto.IngestResult{OrderID: orderID, Touched: []string{}}

	s, err := uc.shops.ShopByDomain(ctx, input.ShopDomain)
	if err != nil {
		var nf *apperr.NotFoundError
		if errors.As(err, &nf) {
			uc.logger.Warn("Ignoring order for unknown shop",
				zap.String("shop_domain", input.ShopDomain),
				zap.String("order_id", orderID),
			)
			result.Ignored = true
			return result, nil
		}
		return nil, err
	}

	var lines []model.ProductOrder
	var tags []string
	if isTermination(input) {
		result.Deleted = true
	} else {
		lines, tags, result.Skipped, err = uc.buildLines(ctx, s, &input.Order)
		if err != nil {
			return nil, err
		}
		for i := range lines {
			lines[i].OrderID = orderID
		}
	}

	touched, err := uc.repo.ReplaceOrderLines(ctx, orderID, lines)
	if err != nil {
		return nil, &apperr.TransactionError{Op: "ingest order " + orderID, Err: err}
	}
	result.Rows = len(lines)
	result.Touched = touched
	result.Tags = tags

	uc.logger.Info("Ingested order",
		zap.String("shop_domain", s.Domain),
		zap.String("order_id", orderID),
		zap.String("topic", input.Topic),
		zap.Int("rows", result.Rows),
		zap.Int("skipped", result.Skipped),
		zap.Bool("deleted", result.Deleted),
	)

	uc.writeBackTags(ctx, s, orderID, tags)
	uc.afterCommit(ctx, s, touched, result.Deleted)
	return result, nil
}

// buildLines turns line items into one product order per (resource, date).
func (uc *orderUseCase) buildLines(ctx context.Context, s *model.Shop, o *dto.OrderWebhook) ([]model.ProductOrder, []string, int, error) {
	settings, err := uc.shops.Settings(ctx, s.ID)
	if err != nil {
		return nil, nil, 0, err
	}
	tagCfg, locCfg := ConfigFromSettings(settings)

	type pending struct {
		productID string
		choice    choice
		quantity  int
	}
	var items []pending
	skipped := 0
	productIDs := []string{}
	seenProduct := map[string]bool{}
	for i := range o.LineItems {
		item := &o.LineItems[i]
		if item.ProductID == nil || item.Quantity <= 0 {
			skipped++
			continue
		}
		c, ok := tagCfg.extract(o, item, locCfg)
		if !ok {
			skipped++
			continue
		}
		pid := strconv.FormatInt(*item.ProductID, 10)
		items = append(items, pending{productID: pid, choice: c, quantity: item.Quantity})
		if !seenProduct[pid] {
			seenProduct[pid] = true
			productIDs = append(productIDs, pid)
		}
	}
	if len(items) == 0 {
		return nil, nil, skipped, nil
	}

	resources, err := uc.shops.ResolveProducts(ctx, s.ID, productIDs, settings.AutoTrackOrderedProducts)
	if err != nil {
		return nil, nil, 0, err
	}

	now := time.Now()
	index := map[lineKey]int{}
	mixedSlots := map[lineKey]bool{}
	lines := []model.ProductOrder{}
	dateTags := map[day.Date]bool{}
	slotTags := map[string]bool{}
	var dates []day.Date
	var slots []string
	for _, it := range items {
		res, ok := resources[it.productID]
		if !ok {
			skipped++
			continue
		}

		k := lineKey{resourceID: res.ID, date: it.choice.date}
		if i, ok := index[k]; ok {
			lines[i].Quantity += it.quantity
			// One row per (resource, date): it only keeps a slot all its items agree on.
			if !mixedSlots[k] && !sameSlot(lines[i].TimeSlot, it.choice.slot) {
				mixedSlots[k] = true
				lines[i].TimeSlot = nil
			}
		} else {
			po := model.ProductOrder{
				ID:             uuid.New().String(),
				ShopResourceID: res.ID,
				ChosenDate:     it.choice.date,
				Quantity:       it.quantity,
				CreatedAt:      now,
			}
			if it.choice.slot != "" {
				slot := it.choice.slot
				po.TimeSlot = &slot
			}
			index[k] = len(lines)
			lines = append(lines, po)
		}

		if !dateTags[it.choice.date] {
			dateTags[it.choice.date] = true
			dates = append(dates, it.choice.date)
		}
		if it.choice.slot != "" && !slotTags[it.choice.slot] {
			slotTags[it.choice.slot] = true
			slots = append(slots, it.choice.slot)
		}
	}

	sort.Slice(dates, func(i, j int) bool { return dates[i].Before(dates[j]) })
	tags := make([]string, 0, len(dates)+len(slots))
	for _, d := range dates {
		tags = append(tags, locCfg.displayTag(d))
	}
	tags = append(tags, slots...)
	return lines, tags, skipped, nil
}

func sameSlot(stored *string, slot string) bool {
	if stored == nil {
		return slot == ""
	}
	return *stored == slot
}

// writeBackTags is best effort: the order rows are already committed.
func (uc *orderUseCase) writeBackTags(ctx context.Context, s *model.Shop, orderID string, tags []string) {
	if uc.tagger == nil || len(tags) == 0 {
		return
	}
	if err := uc.tagger.SetOrderTags(ctx, s, orderID, tags); err != nil {
		err = &apperr.CollaboratorCallError{Collaborator: "shopify orders", Err: err}
		uc.logger.Warn("failed to write back order tags",
			zap.String("shop_domain", s.Domain),
			zap.String("order_id", orderID),
			zap.Error(err),
		)
	}
}

func (uc *orderUseCase) afterCommit(ctx context.Context, s *model.Shop, touched []string, deleted bool) {
	for _, id := range touched {
		if _, err := uc.refresher.Refresh(ctx, id); err != nil {
			uc.logger.Error("failed to refresh current availability",
				zap.String("shop_resource_id", id),
				zap.Error(err),
			)
		}
	}

	if deleted || uc.guard == nil {
		return
	}
	if err := uc.guard.CheckAndNotify(ctx, s); err != nil {
		uc.logger.Error("plan limit check failed", zap.String("shop_id", s.ID), zap.Error(err))
	}
}
