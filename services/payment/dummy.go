package paymentsvc

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/studybuddy/backend/core"
)

type (
	// ChargeRequest carries the card details for one charge. Demo-only: the
	// card is never validated against a real processor.
	ChargeRequest struct {
		CourseID   int     `json:"courseId"`
		Amount     float64 `json:"amount"`
		CardNumber string  `json:"card_number" validate:"required,min=12,max=19,numeric"`
		CardName   string  `json:"card_name" validate:"required"`
		CardExpiry string  `json:"card_expiry" validate:"required"`
		CardCVC    string  `json:"card_cvc" validate:"required,len=3,numeric"`
	}

	Receipt struct {
		ID        string    `json:"id"`
		CourseID  int       `json:"courseId"`
		Amount    float64   `json:"amount"`
		ChargedAt time.Time `json:"chargedAt"` // UTC
	}

	// Service is any service that can charge for a course enrollment.
	Service interface {
		Charge(ctx context.Context, req ChargeRequest) (Receipt, error)
	}
)

func (cr *ChargeRequest) Validate() error {
	cr.CardNumber = core.CleanString(cr.CardNumber)
	cr.CardName = core.CleanString(cr.CardName)
	cr.CardExpiry = core.CleanString(cr.CardExpiry)
	cr.CardCVC = core.CleanString(cr.CardCVC)
	return core.Validate.Struct(cr)
}

// dummyService simulates a payment processor: every charge succeeds after a
// fixed delay, exactly once. No retries.
type dummyService struct {
	delay time.Duration
}

var _ Service = (*dummyService)(nil)

func NewDummyService() Service {
	return &dummyService{delay: core.Conf.Payment.ProcessingDelay}
}

func (svc *dummyService) Charge(ctx context.Context, req ChargeRequest) (Receipt, error) {
	timer := time.NewTimer(svc.delay)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return Receipt{}, ctx.Err()
	case <-timer.C:
	}

	return Receipt{
		ID:        uuid.New().String(),
		CourseID:  req.CourseID,
		Amount:    req.Amount,
		ChargedAt: time.Now().UTC(),
	}, nil
}
