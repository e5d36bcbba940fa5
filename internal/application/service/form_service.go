package service

import (
	"context"
	"fmt"

	"github.com/garyjia/voucher-flow/internal/domain/catalog"
	"github.com/garyjia/voucher-flow/internal/domain/entity"
	"github.com/garyjia/voucher-flow/internal/domain/form"
)

// FormView is everything a client needs to draw one voucher form for the
// current values
type FormView struct {
	VoucherType catalog.Definition     `json:"voucher_type"`
	Values      form.Values            `json:"values"`
	Active      []form.Field           `json:"active_fields"`
	Rules       []form.Rule            `json:"rules"`
	Widgets     map[string]form.Widget `json:"widgets"`
}

// FormService exposes the catalog and runs the form engine for it
type FormService interface {
	VoucherTypes() []catalog.Definition
	VoucherType(id string) (catalog.Definition, error)
	Describe(id string, values form.Values) (*FormView, error)
	Validate(id string, values form.Values) (form.ValidationErrors, error)
	// SubmitToCart validates values and adds them to the cart as a new item.
	// It returns the item and the reset form values.
	SubmitToCart(ctx context.Context, id string, values form.Values) (*entity.CartItem, form.Values, error)
	// EditCartItem validates values against the item's type and replaces
	// the item's data
	EditCartItem(ctx context.Context, itemID string, values form.Values) (*entity.CartItem, error)
}

type formServiceImpl struct {
	catalog *catalog.Catalog
	cart    CartService
	logger  Logger
}

// NewFormService creates a new FormService
func NewFormService(cat *catalog.Catalog, cart CartService, logger Logger) FormService {
	return &formServiceImpl{
		catalog: cat,
		cart:    cart,
		logger:  logger,
	}
}

func (s *formServiceImpl) VoucherTypes() []catalog.Definition {
	return s.catalog.All()
}

func (s *formServiceImpl) VoucherType(id string) (catalog.Definition, error) {
	def, ok := s.catalog.FindByID(id)
	if !ok {
		return catalog.Definition{}, fmt.Errorf("%w: %s", ErrUnknownVoucherType, id)
	}
	return def, nil
}

func (s *formServiceImpl) engine(id string) (catalog.Definition, *form.Engine, error) {
	def, err := s.VoucherType(id)
	if err != nil {
		return def, nil, err
	}
	if def.IsMulti() {
		return def, nil, fmt.Errorf("%w: %s groups sub-types and has no form", ErrUnknownVoucherType, id)
	}
	return def, form.NewEngine(def.FormFields), nil
}

func (s *formServiceImpl) Describe(id string, values form.Values) (*FormView, error) {
	def, engine, err := s.engine(id)
	if err != nil {
		return nil, err
	}

	merged := engine.Defaults(values)
	active := engine.Active(merged)

	widgets := make(map[string]form.Widget, len(active))
	for _, f := range active {
		widgets[f.Name] = form.RenderField(f, merged)
	}

	return &FormView{
		VoucherType: def,
		Values:      merged,
		Active:      active,
		Rules:       form.BuildSchema(active, merged).Rules,
		Widgets:     widgets,
	}, nil
}

func (s *formServiceImpl) Validate(id string, values form.Values) (form.ValidationErrors, error) {
	_, engine, err := s.engine(id)
	if err != nil {
		return nil, err
	}
	return engine.Validate(engine.Defaults(values)), nil
}

func (s *formServiceImpl) SubmitToCart(ctx context.Context, id string, values form.Values) (*entity.CartItem, form.Values, error) {
	def, engine, err := s.engine(id)
	if err != nil {
		return nil, nil, err
	}

	var added *entity.CartItem
	reset, err := engine.Submit(engine.Defaults(values), func(v form.Values) error {
		added, err = s.cart.Add(ctx, entity.CartItem{
			VoucherTypeID:  def.ID,
			VoucherHeading: def.Heading,
			Data:           v,
		})
		return err
	})
	if err != nil {
		return nil, nil, err
	}
	return added, reset, nil
}

func (s *formServiceImpl) EditCartItem(ctx context.Context, itemID string, values form.Values) (*entity.CartItem, error) {
	items, err := s.cart.List(ctx)
	if err != nil {
		return nil, err
	}

	var current *entity.CartItem
	for _, item := range items {
		if item.ID == itemID {
			current = item
			break
		}
	}
	if current == nil {
		return nil, fmt.Errorf("%w: %s", ErrCartItemNotFound, itemID)
	}

	_, engine, err := s.engine(current.VoucherTypeID)
	if err != nil {
		return nil, err
	}

	var updated *entity.CartItem
	_, err = engine.Submit(engine.Defaults(form.Values(current.Data).Merge(values)), func(v form.Values) error {
		// keys of fields that dropped out of the active set are removed
		partial := make(map[string]any, len(current.Data)+len(v))
		for k := range current.Data {
			partial[k] = nil
		}
		for k, val := range v {
			partial[k] = val
		}
		updated, err = s.cart.Update(ctx, itemID, partial)
		return err
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}
