package credits

import (
	"context"
	"math"
	"strings"
	"sync"
	"time"

	"samudra-backend/internal/application/notary"
	"samudra-backend/internal/domain"
	"samudra-backend/internal/pkg/apperrors"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"
)

// Service owns CarbonCredit, Holding and Retirement entities. Purchase and
// retire are serialized per credit id so concurrent calls can never drive a
// balance negative.
type Service struct {
	DB     *gorm.DB
	Notary notary.Notary

	locks sync.Map // credit id -> *sync.Mutex
}

func (s *Service) lock(creditID uuid.UUID) func() {
	v, _ := s.locks.LoadOrStore(creditID, &sync.Mutex{})
	mu := v.(*sync.Mutex)
	mu.Lock()
	return mu.Unlock
}

// ListAvailable returns marketplace credits: not retired, owner unset.
func (s *Service) ListAvailable(ctx context.Context) ([]domain.CarbonCredit, error) {
	var credits []domain.CarbonCredit
	err := s.DB.WithContext(ctx).
		Where("is_retired = ? AND owner_id IS NULL", false).
		Find(&credits).Error
	if err != nil {
		return nil, err
	}
	return credits, nil
}

// Purchase moves amount from the credit's marketplace balance into the
// buyer's holding. Settlement is simulated; no payment rail exists. When the
// purchase exhausts the marketplace balance the buyer becomes the credit's
// owner.
func (s *Service) Purchase(ctx context.Context, creditID, buyerID uuid.UUID, amount float64) (*domain.Holding, error) {
	if amount <= 0 {
		return nil, apperrors.Validation("Amount must be a positive number")
	}

	unlock := s.lock(creditID)
	defer unlock()

	var holding domain.Holding
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var credit domain.CarbonCredit
		if err := tx.Where("credit_id = ?", creditID).First(&credit).Error; err != nil {
			if err == gorm.ErrRecordNotFound {
				return apperrors.NotFound("Credit not found")
			}
			return err
		}
		if credit.IsRetired {
			return apperrors.InvalidState("Credit has been retired")
		}
		if amount > credit.RemainingBalance {
			return apperrors.Validation("Amount exceeds available credit balance")
		}

		credit.RemainingBalance = round2(credit.RemainingBalance - amount)
		if credit.RemainingBalance == 0 {
			credit.OwnerID = &buyerID
		}
		if err := tx.Save(&credit).Error; err != nil {
			return err
		}

		err := tx.Where("buyer_id = ? AND credit_id = ?", buyerID, creditID).First(&holding).Error
		if err == gorm.ErrRecordNotFound {
			holding = domain.Holding{BuyerID: buyerID, CreditID: creditID, Balance: amount}
			return tx.Create(&holding).Error
		}
		if err != nil {
			return err
		}
		holding.Balance = round2(holding.Balance + amount)
		return tx.Save(&holding).Error
	})
	if err != nil {
		return nil, err
	}
	return &holding, nil
}

// Retire permanently removes amount from circulation and records an
// append-only Retirement. It draws from the buyer's holding when one covers
// the amount, otherwise directly from the marketplace balance (the original
// buy-and-retire flow). Irreversible by design.
func (s *Service) Retire(ctx context.Context, creditID, buyerID uuid.UUID, amount float64, reason string) (*domain.Retirement, error) {
	if amount <= 0 {
		return nil, apperrors.Validation("Amount must be a positive number")
	}
	if strings.TrimSpace(reason) == "" {
		return nil, apperrors.Validation("Retirement reason is required")
	}

	unlock := s.lock(creditID)
	defer unlock()

	var retirement domain.Retirement
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var credit domain.CarbonCredit
		if err := tx.Where("credit_id = ?", creditID).First(&credit).Error; err != nil {
			if err == gorm.ErrRecordNotFound {
				return apperrors.NotFound("Credit not found")
			}
			return err
		}
		if credit.IsRetired {
			return apperrors.InvalidState("Credit has already been retired")
		}

		var holding domain.Holding
		heldErr := tx.Where("buyer_id = ? AND credit_id = ?", buyerID, creditID).First(&holding).Error
		fromHolding := heldErr == nil && holding.Balance > 0
		if heldErr != nil && heldErr != gorm.ErrRecordNotFound {
			return heldErr
		}

		if fromHolding {
			if amount > holding.Balance {
				return apperrors.Validation("Amount exceeds your held balance for this credit")
			}
			holding.Balance = round2(holding.Balance - amount)
			if err := tx.Save(&holding).Error; err != nil {
				return err
			}
		} else {
			if amount > credit.RemainingBalance {
				return apperrors.Validation("Amount exceeds available credit balance")
			}
			credit.RemainingBalance = round2(credit.RemainingBalance - amount)
		}

		remaining, err := outstanding(tx, &credit)
		if err != nil {
			return err
		}
		if remaining == 0 {
			credit.IsRetired = true
		}
		if err := tx.Save(&credit).Error; err != nil {
			return err
		}

		retirement = domain.Retirement{
			CreditID:  creditID,
			BuyerID:   buyerID,
			Amount:    amount,
			Reason:    strings.TrimSpace(reason),
			RetiredAt: time.Now().UTC(),
		}
		return tx.Create(&retirement).Error
	})
	if err != nil {
		return nil, err
	}

	if s.Notary != nil {
		record, err := s.Notary.RecordTransaction(ctx, map[string]interface{}{
			"action":       "retire_credit",
			"retirementId": retirement.RetirementID.String(),
			"creditId":     creditID.String(),
			"buyerId":      buyerID.String(),
			"amount":       amount,
		})
		if err != nil {
			log.Warn().Err(err).Str("retirement_id", retirement.RetirementID.String()).
				Msg("retirement notarization failed; continuing without tx hash")
		} else {
			if err := s.DB.WithContext(ctx).Model(&domain.Retirement{}).
				Where("retirement_id = ?", retirement.RetirementID).
				Update("on_chain_tx_hash", record.TxHash).Error; err == nil {
				retirement.OnChainTxHash = &record.TxHash
			}
		}
	}

	log.Info().
		Str("retirement_id", retirement.RetirementID.String()).
		Str("credit_id", creditID.String()).
		Float64("amount", amount).
		Msg("credits retired")
	return &retirement, nil
}

// ListRetirements returns the buyer's retirement history, newest first.
func (s *Service) ListRetirements(ctx context.Context, buyerID uuid.UUID) ([]domain.Retirement, error) {
	var retirements []domain.Retirement
	err := s.DB.WithContext(ctx).
		Where("buyer_id = ?", buyerID).
		Order("retired_at DESC").
		Find(&retirements).Error
	if err != nil {
		return nil, err
	}
	return retirements, nil
}

// outstanding reports the credit's total unretired balance after the
// current deduction: marketplace remainder plus all held balances. Holding
// updates earlier in the same transaction are visible here.
func outstanding(tx *gorm.DB, credit *domain.CarbonCredit) (float64, error) {
	var held float64
	err := tx.Model(&domain.Holding{}).
		Where("credit_id = ?", credit.CreditID).
		Select("COALESCE(SUM(balance), 0)").
		Scan(&held).Error
	if err != nil {
		return 0, err
	}
	return round2(credit.RemainingBalance + held), nil
}

func round2(f float64) float64 {
	return math.Round(f*100) / 100
}
