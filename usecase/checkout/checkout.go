package checkout

import (
	"context"

	"go.uber.org/zap"

	"github.com/fastygo/storefront/domain"
	"github.com/fastygo/storefront/pkg/validate"
	"github.com/fastygo/storefront/usecase"
)

const placeKey = "checkout.place"

// CartSource is the part of the session store checkout reads and clears.
type CartSource interface {
	Cart() domain.Snapshot
	PartitionKey() string
	Clear(ctx context.Context)
}

type OrderAPI interface {
	Create(ctx context.Context, req domain.OrderRequest) (*domain.Order, error)
}

type UseCase struct {
	cart     CartSource
	orders   OrderAPI
	sequence *usecase.Sequencer
	logger   *zap.Logger
}

func New(cart CartSource, orders OrderAPI, sequence *usecase.Sequencer, logger *zap.Logger) *UseCase {
	if logger == nil {
		logger = zap.NewNop()
	}
	if sequence == nil {
		sequence = usecase.NewSequencer()
	}
	return &UseCase{
		cart:     cart,
		orders:   orders,
		sequence: sequence,
		logger:   logger,
	}
}

// PlaceOrder validates form, submits the active cart and clears it once the server
// confirms the order with a reference.
func (uc *UseCase) PlaceOrder(ctx context.Context, form domain.CheckoutForm) (*domain.Order, error) {
	form = form.Normalize()
	if err := validate.Struct(form); err != nil {
		return nil, err
	}
	snapshot := uc.cart.Cart()
	if len(snapshot.Items) == 0 {
		return nil, domain.ErrEmptyCart
	}

	ticket := uc.sequence.Begin(placeKey)
	order, err := uc.orders.Create(ctx, domain.NewOrderRequest(form, snapshot))
	if err != nil {
		return nil, err
	}
	if err := ticket.Check(); err != nil {
		uc.logger.Info("dropping superseded checkout response", zap.String("reference", order.Reference()))
		return nil, err
	}
	if order.Reference() == "" {
		uc.logger.Warn("order response carried no reference, keeping cart")
		return order, nil
	}
	if uc.cart.PartitionKey() == snapshot.Partition {
		uc.cart.Clear(ctx)
	}
	uc.logger.Info("order placed",
		zap.String("reference", order.Reference()),
		zap.Int("lines", len(snapshot.Items)),
		zap.String("total", snapshot.TotalAmount.StringFixed(2)),
	)
	return order, nil
}
