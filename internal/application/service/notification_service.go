package service

import (
	"context"
	"time"

	"github.com/garyjia/voucher-flow/internal/application/port"
	"github.com/garyjia/voucher-flow/internal/domain/entity"
)

// NotificationService is the per-user inbox of generated petty cash codes
type NotificationService interface {
	AddCode(ctx context.Context, pin, voucherID, code string, amount float64) (*entity.CodeNotification, error)
	List(ctx context.Context, pin string) ([]*entity.CodeNotification, error)
	// MarkUsed consumes the code pin received for voucherID. It reports
	// false when pin holds no unused notification of that voucher with code.
	MarkUsed(ctx context.Context, pin, voucherID, code string) (bool, error)
}

type notificationServiceImpl struct {
	repo   port.NotificationRepository
	logger Logger
	now    func() time.Time
}

// NewNotificationService creates a new NotificationService
func NewNotificationService(repo port.NotificationRepository, logger Logger) NotificationService {
	return &notificationServiceImpl{
		repo:   repo,
		logger: logger,
		now:    time.Now,
	}
}

func (s *notificationServiceImpl) AddCode(ctx context.Context, pin, voucherID, code string, amount float64) (*entity.CodeNotification, error) {
	n := &entity.CodeNotification{
		UserPIN:   pin,
		VoucherID: voucherID,
		Code:      code,
		Amount:    amount,
		CreatedAt: s.now(),
	}
	if err := s.repo.Create(ctx, n); err != nil {
		s.logger.Error("Failed to deliver code", "pin", pin, "voucher_id", voucherID, "error", err)
		return nil, err
	}

	s.logger.Info("Code delivered", "pin", pin, "voucher_id", voucherID)
	return n, nil
}

func (s *notificationServiceImpl) List(ctx context.Context, pin string) ([]*entity.CodeNotification, error) {
	return s.repo.ListByPIN(ctx, pin)
}

func (s *notificationServiceImpl) MarkUsed(ctx context.Context, pin, voucherID, code string) (bool, error) {
	ok, err := s.repo.MarkUsed(ctx, pin, voucherID, code, s.now())
	if err != nil {
		return false, err
	}
	if !ok {
		s.logger.Info("Code verification failed", "pin", pin, "voucher_id", voucherID)
	}
	return ok, nil
}
