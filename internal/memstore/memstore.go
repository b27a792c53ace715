// Package memstore is an in-memory implementation of the repository
// interfaces, used by use case tests.
package memstore

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/fekuna/omnipos-availability-service/internal/day"
	"github.com/fekuna/omnipos-availability-service/internal/model"
	"github.com/fekuna/omnipos-availability-service/internal/shop/dto"
	"github.com/google/uuid"
)

type notificationKey struct {
	shopID string
	typ    model.NotificationType
	period day.Date
}

type Store struct {
	mu sync.Mutex

	shops         map[string]*model.Shop
	settings      map[string]model.ShopSettings
	resources     map[string]*model.ShopResource
	periods       map[string]*model.AvailabilityPeriod
	orders        []model.ProductOrder
	current       map[string]*model.CurrentAvailability
	plans         map[string]*model.Plan
	notifications map[notificationKey]model.Notification

	// ReplaceErr, when set, makes ReplaceOrderLines fail without changing state.
	ReplaceErr error
	// Now stamps created_at on inserted order rows. Defaults to time.Now.
	Now func() time.Time
}

func New() *Store {
	return &Store{
		shops:         map[string]*model.Shop{},
		settings:      map[string]model.ShopSettings{},
		resources:     map[string]*model.ShopResource{},
		periods:       map[string]*model.AvailabilityPeriod{},
		current:       map[string]*model.CurrentAvailability{},
		plans:         map[string]*model.Plan{},
		notifications: map[notificationKey]model.Notification{},
		Now:           time.Now,
	}
}

// Seeding helpers

func (s *Store) AddShop(shop *model.Shop) {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := *shop
	s.shops[shop.ID] = &cp
}

func (s *Store) SetSettings(settings model.ShopSettings) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.settings[settings.ShopID] = settings
}

func (s *Store) AddResource(r *model.ShopResource) {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := *r
	s.resources[r.ID] = &cp
}

func (s *Store) SetPlan(p *model.Plan) {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := *p
	s.plans[p.ShopID] = &cp
}

// AddOrder inserts a product order row directly.
func (s *Store) AddOrder(o model.ProductOrder) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if o.ID == "" {
		o.ID = uuid.New().String()
	}
	s.orders = append(s.orders, o)
}

func (s *Store) Orders() []model.ProductOrder {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]model.ProductOrder, len(s.orders))
	copy(out, s.orders)
	return out
}

func (s *Store) Resources() []model.ShopResource {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]model.ShopResource, 0, len(s.resources))
	for _, r := range s.resources {
		out = append(out, *r)
	}
	return out
}

func (s *Store) Notifications() []model.Notification {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]model.Notification, 0, len(s.notifications))
	for _, n := range s.notifications {
		out = append(out, n)
	}
	return out
}

// Shops

func (s *Store) FindByDomain(ctx context.Context, domain string) (*model.Shop, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, shop := range s.shops {
		if strings.EqualFold(shop.Domain, domain) {
			cp := *shop
			return &cp, nil
		}
	}
	return nil, nil
}

func (s *Store) GetSettings(ctx context.Context, shopID string) (model.ShopSettings, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if settings, ok := s.settings[shopID]; ok {
		return settings.WithDefaults(), nil
	}
	return model.DefaultShopSettings(shopID), nil
}

// Shop resources

func (s *Store) FindResourceByID(ctx context.Context, id string) (*model.ShopResource, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if r, ok := s.resources[id]; ok {
		cp := *r
		return &cp, nil
	}
	return nil, nil
}

func (s *Store) FindResourceByResourceID(ctx context.Context, shopID, resourceID string) (*model.ShopResource, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.resourceByResourceID(shopID, resourceID), nil
}

func (s *Store) resourceByResourceID(shopID, resourceID string) *model.ShopResource {
	for _, r := range s.resources {
		if r.ShopID == shopID && r.ResourceID == resourceID {
			cp := *r
			return &cp
		}
	}
	return nil
}

func (s *Store) FindResourcesByResourceIDs(ctx context.Context, shopID string, resourceIDs []string) ([]model.ShopResource, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := []model.ShopResource{}
	for _, id := range resourceIDs {
		if r := s.resourceByResourceID(shopID, id); r != nil {
			out = append(out, *r)
		}
	}
	return out, nil
}

func (s *Store) CreateResource(ctx context.Context, r *model.ShopResource) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if existing := s.resourceByResourceID(r.ShopID, r.ResourceID); existing != nil {
		*r = *existing
		return false, nil
	}
	cp := *r
	s.resources[r.ID] = &cp
	return true, nil
}

func (s *Store) ListActiveResourceIDs(ctx context.Context, shopID string) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var items []model.ShopResource
	for _, r := range s.resources {
		shop, ok := s.shops[r.ShopID]
		if !ok || shop.UninstalledAt != nil {
			continue
		}
		if shopID != "" && r.ShopID != shopID {
			continue
		}
		items = append(items, *r)
	}
	sort.Slice(items, func(i, j int) bool { return items[i].CreatedAt.Before(items[j].CreatedAt) })

	ids := make([]string, 0, len(items))
	for _, r := range items {
		ids = append(ids, r.ID)
	}
	return ids, nil
}

func (s *Store) ListResources(ctx context.Context, f *dto.ResourceFilters) ([]model.ResourceAvailability, int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	items := []model.ResourceAvailability{}
	for _, r := range s.resources {
		if r.ShopID != f.ShopID {
			continue
		}
		if f.SearchQuery != "" &&
			!strings.Contains(strings.ToLower(r.Title), strings.ToLower(f.SearchQuery)) &&
			r.ResourceID != f.SearchQuery {
			continue
		}
		item := model.ResourceAvailability{ShopResource: *r}
		if ca, ok := s.current[r.ID]; ok {
			item.NextAvailabilityDate = ca.NextAvailabilityDate
			item.LastAvailabilityDate = ca.LastAvailabilityDate
			item.AvailableDates = ca.AvailableDates
			item.SoldOutDates = ca.SoldOutDates
		}
		items = append(items, item)
	}
	sort.Slice(items, func(i, j int) bool { return items[i].CreatedAt.After(items[j].CreatedAt) })
	return items, len(items), nil
}

// Availability periods

func (s *Store) FindPeriods(ctx context.Context, shopResourceID string, from, to day.Date) ([]model.AvailabilityPeriod, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := []model.AvailabilityPeriod{}
	for _, p := range s.periods {
		if p.ShopResourceID != shopResourceID {
			continue
		}
		if p.StartDate.After(to) || p.EndDate.Before(from) {
			continue
		}
		out = append(out, *p)
	}
	sort.SliceStable(out, func(i, j int) bool {
		if c := out[i].StartDate.Compare(out[j].StartDate); c != 0 {
			return c < 0
		}
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	return out, nil
}

func (s *Store) FindByID(ctx context.Context, id string) (*model.AvailabilityPeriod, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if p, ok := s.periods[id]; ok {
		cp := *p
		return &cp, nil
	}
	return nil, nil
}

func (s *Store) Create(ctx context.Context, p *model.AvailabilityPeriod) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := *p
	s.periods[p.ID] = &cp
	return nil
}

func (s *Store) Update(ctx context.Context, p *model.AvailabilityPeriod) error {
	return s.Create(ctx, p)
}

func (s *Store) Delete(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.periods, id)
	return nil
}

// Product orders

func (s *Store) OrdersPerDate(ctx context.Context, shopResourceID string, from, to day.Date) (model.OrdersPerDate, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := model.OrdersPerDate{}
	for _, o := range s.orders {
		if o.ShopResourceID != shopResourceID || o.ChosenDate.Before(from) || o.ChosenDate.After(to) {
			continue
		}
		out[o.ChosenDate] += o.Quantity
	}
	return out, nil
}

func (s *Store) FindByOrderID(ctx context.Context, orderID string) ([]model.ProductOrder, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := []model.ProductOrder{}
	for _, o := range s.orders {
		if o.OrderID == orderID {
			out = append(out, o)
		}
	}
	return out, nil
}

func (s *Store) ReplaceOrderLines(ctx context.Context, orderID string, lines []model.ProductOrder) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.ReplaceErr != nil {
		return nil, s.ReplaceErr
	}

	touched := []string{}
	seen := map[string]bool{}
	touch := func(id string) {
		if !seen[id] {
			seen[id] = true
			touched = append(touched, id)
		}
	}

	kept := s.orders[:0]
	for _, o := range s.orders {
		if o.OrderID == orderID {
			touch(o.ShopResourceID)
			continue
		}
		kept = append(kept, o)
	}
	s.orders = kept

	type key struct {
		resourceID string
		date       day.Date
	}
	inserted := map[key]bool{}
	for _, l := range lines {
		k := key{l.ShopResourceID, l.ChosenDate}
		if inserted[k] {
			continue
		}
		inserted[k] = true
		if l.ID == "" {
			l.ID = uuid.New().String()
		}
		l.OrderID = orderID
		l.CreatedAt = s.Now()
		s.orders = append(s.orders, l)
		touch(l.ShopResourceID)
	}
	return touched, nil
}

// Current availabilities

func (s *Store) Upsert(ctx context.Context, ca *model.CurrentAvailability) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if existing, ok := s.current[ca.ShopResourceID]; ok {
		ca.ID = existing.ID
	}
	cp := *ca
	s.current[ca.ShopResourceID] = &cp
	return nil
}

func (s *Store) CreateInitial(ctx context.Context, ca *model.CurrentAvailability) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.current[ca.ShopResourceID]; ok {
		return nil
	}
	cp := *ca
	s.current[ca.ShopResourceID] = &cp
	return nil
}

func (s *Store) FindByShopResourceID(ctx context.Context, shopResourceID string) (*model.CurrentAvailability, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if ca, ok := s.current[shopResourceID]; ok {
		cp := *ca
		return &cp, nil
	}
	return nil, nil
}

// Plans

func (s *Store) FindByShopID(ctx context.Context, shopID string) (*model.Plan, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if p, ok := s.plans[shopID]; ok {
		cp := *p
		return &cp, nil
	}
	return nil, nil
}

func (s *Store) SumOrderQuantitiesSince(ctx context.Context, shopID string, since time.Time) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	total := 0
	for _, o := range s.orders {
		r, ok := s.resources[o.ShopResourceID]
		if !ok || r.ShopID != shopID || o.CreatedAt.Before(since) {
			continue
		}
		total += o.Quantity
	}
	return total, nil
}

func (s *Store) ClaimNotification(ctx context.Context, n *model.Notification) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	k := notificationKey{n.ShopID, n.Type, n.PeriodStart}
	if _, ok := s.notifications[k]; ok {
		return false, nil
	}
	s.notifications[k] = *n
	return true, nil
}

func (s *Store) ReleaseNotification(ctx context.Context, n *model.Notification) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.notifications, notificationKey{n.ShopID, n.Type, n.PeriodStart})
	return nil
}
