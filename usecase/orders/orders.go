package orders

import (
	"context"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/fastygo/storefront/api/service"
	"github.com/fastygo/storefront/domain"
	"github.com/fastygo/storefront/usecase"
)

const trackKey = "order.track"

type OrderAPI interface {
	Track(ctx context.Context, trackingID string) (*domain.Order, error)
	Mine(ctx context.Context) ([]domain.Order, error)
	AdminList(ctx context.Context, page service.PageQuery, status domain.OrderStatus) (*domain.Page[domain.Order], error)
	AdminGet(ctx context.Context, orderID int64) (*domain.Order, error)
	UpdateStatus(ctx context.Context, orderID int64, status domain.OrderStatus) (*domain.Order, error)
}

type UseCase struct {
	orders   OrderAPI
	sequence *usecase.Sequencer
	logger   *zap.Logger
}

func New(orders OrderAPI, sequence *usecase.Sequencer, logger *zap.Logger) *UseCase {
	if logger == nil {
		logger = zap.NewNop()
	}
	if sequence == nil {
		sequence = usecase.NewSequencer()
	}
	return &UseCase{
		orders:   orders,
		sequence: sequence,
		logger:   logger,
	}
}

// Track looks up an order by tracking id. A lookup superseded by a newer one
// returns domain.ErrStaleResponse.
func (uc *UseCase) Track(ctx context.Context, trackingID string) (*domain.Order, error) {
	trackingID = strings.TrimSpace(trackingID)
	if trackingID == "" {
		return nil, &domain.ValidationError{Fields: map[string]string{"trackingId": "Tracking ID is required"}}
	}
	ticket := uc.sequence.Begin(trackKey)
	order, err := uc.orders.Track(ctx, trackingID)
	if staleErr := ticket.Check(); staleErr != nil {
		return nil, staleErr
	}
	if err != nil {
		return nil, err
	}
	return order, nil
}

func (uc *UseCase) Mine(ctx context.Context) ([]domain.Order, error) {
	return uc.orders.Mine(ctx)
}

// AdminList pages through the order ledger. rawStatus may be empty for all orders.
func (uc *UseCase) AdminList(ctx context.Context, page service.PageQuery, rawStatus string) (*domain.Page[domain.Order], error) {
	var status domain.OrderStatus
	if strings.TrimSpace(rawStatus) != "" {
		parsed, err := domain.ParseOrderStatus(rawStatus)
		if err != nil {
			return nil, err
		}
		status = parsed
	}
	return uc.orders.AdminList(ctx, page, status)
}

func (uc *UseCase) AdminGet(ctx context.Context, orderID int64) (*domain.Order, error) {
	return uc.orders.AdminGet(ctx, orderID)
}

// UpdateStatus sends any of the four known statuses for orderID. The remote
// ledger decides whether the change is allowed.
func (uc *UseCase) UpdateStatus(ctx context.Context, orderID int64, rawStatus string) (*domain.Order, error) {
	next, err := domain.ParseOrderStatus(rawStatus)
	if err != nil {
		return nil, err
	}
	ticket := uc.sequence.Begin("order.status:" + strconv.FormatInt(orderID, 10))

	updated, err := uc.orders.UpdateStatus(ctx, orderID, next)
	if staleErr := ticket.Check(); staleErr != nil {
		return nil, staleErr
	}
	if err != nil {
		return nil, err
	}
	uc.logger.Info("order status updated",
		zap.Int64("order_id", orderID),
		zap.String("status", string(next)),
	)
	return updated, nil
}
