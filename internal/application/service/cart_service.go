package service

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/garyjia/voucher-flow/internal/domain/catalog"
	"github.com/garyjia/voucher-flow/internal/domain/entity"
	"github.com/garyjia/voucher-flow/pkg/utils"
)

// CartService keeps the drafted vouchers of every signed in user until they
// are bulk submitted. Carts live in memory and are keyed by PIN.
type CartService interface {
	Add(ctx context.Context, item entity.CartItem) (*entity.CartItem, error)
	Remove(ctx context.Context, id string) error
	// Update shallow-merges partial into the item's data. A nil value
	// removes the key.
	Update(ctx context.Context, id string, partial map[string]any) (*entity.CartItem, error)
	Clear(ctx context.Context) error
	Count(ctx context.Context) (int, error)
	List(ctx context.Context) ([]*entity.CartItem, error)
}

type cartServiceImpl struct {
	mu      sync.Mutex
	carts   map[string][]*entity.CartItem
	catalog *catalog.Catalog
	logger  Logger
	now     func() time.Time
}

// NewCartService creates a new CartService
func NewCartService(cat *catalog.Catalog, logger Logger) CartService {
	return &cartServiceImpl{
		carts:   make(map[string][]*entity.CartItem),
		catalog: cat,
		logger:  logger,
		now:     time.Now,
	}
}

func (s *cartServiceImpl) Add(ctx context.Context, item entity.CartItem) (*entity.CartItem, error) {
	user, err := CurrentUser(ctx)
	if err != nil {
		return nil, err
	}

	def, ok := s.catalog.FindByID(item.VoucherTypeID)
	if !ok || def.IsMulti() {
		return nil, fmt.Errorf("%w: %s", ErrUnknownVoucherType, item.VoucherTypeID)
	}

	id, err := uuid.NewV7()
	if err != nil {
		return nil, fmt.Errorf("failed to generate cart item id: %w", err)
	}

	added := item
	added.ID = id.String()
	added.CreatedAt = s.now()
	if added.VoucherHeading == "" {
		added.VoucherHeading = def.Heading
	}
	if added.VoucherNumber == "" {
		if added.VoucherNumber, err = voucherNumber(&added, added.CreatedAt); err != nil {
			return nil, err
		}
	}
	added.Data = cloneData(item.Data)

	s.mu.Lock()
	s.carts[user.PIN] = append(s.carts[user.PIN], &added)
	count := len(s.carts[user.PIN])
	s.mu.Unlock()

	s.logger.Info("Cart item added", "pin", user.PIN, "item_id", added.ID, "voucher_type", added.VoucherTypeID, "cart_size", count)
	return copyItem(&added), nil
}

func (s *cartServiceImpl) Remove(ctx context.Context, id string) error {
	user, err := CurrentUser(ctx)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	items := s.carts[user.PIN]
	for i, item := range items {
		if item.ID == id {
			s.carts[user.PIN] = append(items[:i:i], items[i+1:]...)
			return nil
		}
	}
	return fmt.Errorf("%w: %s", ErrCartItemNotFound, id)
}

func (s *cartServiceImpl) Update(ctx context.Context, id string, partial map[string]any) (*entity.CartItem, error) {
	user, err := CurrentUser(ctx)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	for _, item := range s.carts[user.PIN] {
		if item.ID != id {
			continue
		}
		merged := cloneData(item.Data)
		for k, v := range partial {
			if v == nil {
				delete(merged, k)
				continue
			}
			merged[k] = v
		}
		item.Data = merged
		return copyItem(item), nil
	}
	return nil, fmt.Errorf("%w: %s", ErrCartItemNotFound, id)
}

func (s *cartServiceImpl) Clear(ctx context.Context) error {
	user, err := CurrentUser(ctx)
	if err != nil {
		return err
	}

	s.mu.Lock()
	delete(s.carts, user.PIN)
	s.mu.Unlock()
	return nil
}

func (s *cartServiceImpl) Count(ctx context.Context) (int, error) {
	user, err := CurrentUser(ctx)
	if err != nil {
		return 0, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.carts[user.PIN]), nil
}

func (s *cartServiceImpl) List(ctx context.Context) ([]*entity.CartItem, error) {
	user, err := CurrentUser(ctx)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]*entity.CartItem, 0, len(s.carts[user.PIN]))
	for _, item := range s.carts[user.PIN] {
		out = append(out, copyItem(item))
	}
	return out, nil
}

// voucherNumber derives a display number: four random digits for petty
// cash demands, otherwise the last six digits of the creation time.
func voucherNumber(item *entity.CartItem, at time.Time) (string, error) {
	if item.IsPettyCashDemand() {
		return utils.RandomDigits(4)
	}
	return fmt.Sprintf("%06d", at.UnixMilli()%1_000_000), nil
}

func cloneData(data map[string]any) map[string]any {
	out := make(map[string]any, len(data))
	for k, v := range data {
		out[k] = v
	}
	return out
}

func copyItem(item *entity.CartItem) *entity.CartItem {
	c := *item
	c.Data = cloneData(item.Data)
	return &c
}
