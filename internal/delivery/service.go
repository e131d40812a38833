package delivery

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/noormart/noormart-backend/internal/shipping"
	"github.com/noormart/noormart-backend/pkg/db/models"
	"github.com/noormart/noormart-backend/pkg/enums"
	pkgerrors "github.com/noormart/noormart-backend/pkg/errors"
	"github.com/noormart/noormart-backend/pkg/types"
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

// Service manages the platform delivery pricing profile.
type Service interface {
	// GetActive returns the live settings record, or nil when none is
	// configured yet.
	GetActive(ctx context.Context) (*models.DeliverySetting, error)
	// Activate validates and installs a new settings record as the
	// single active one, retiring any predecessor in the same tx.
	Activate(ctx context.Context, input ActivateInput) (*models.DeliverySetting, error)
	List(ctx context.Context) ([]models.DeliverySetting, error)
}

// ActivateInput carries a full replacement pricing profile.
type ActivateInput struct {
	InsideCityName  string
	InsideCityFee   int
	OutsideCityFee  int
	FreeAbove       int
	BulkyInsideFee  int
	BulkyOutsideFee int
	CODFeeType      enums.CODFeeType
	CODExtraFee     int
	WeightSlabs     types.WeightSlabs
	CODSlabs        types.CODSlabs
}

type service struct {
	repo Repository
	tx   txRunner
}

// NewService builds a delivery settings service with the required dependencies.
func NewService(repo Repository, tx txRunner) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("delivery repository required")
	}
	if tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	return &service{repo: repo, tx: tx}, nil
}

func (s *service) GetActive(ctx context.Context) (*models.DeliverySetting, error) {
	setting, err := s.repo.FindActive(ctx)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load delivery settings")
	}
	return setting, nil
}

func (s *service) Activate(ctx context.Context, input ActivateInput) (*models.DeliverySetting, error) {
	if strings.TrimSpace(input.InsideCityName) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "inside city name required")
	}
	if input.InsideCityFee < 0 || input.OutsideCityFee < 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "base fees must not be negative")
	}
	if input.FreeAbove < 0 || input.BulkyInsideFee < 0 || input.BulkyOutsideFee < 0 || input.CODExtraFee < 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "fees must not be negative")
	}
	if !input.CODFeeType.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid cod fee type")
	}
	if err := shipping.ValidateWeightSlabs(input.WeightSlabs); err != nil {
		return nil, err
	}
	if err := shipping.ValidateCODSlabs(input.CODSlabs); err != nil {
		return nil, err
	}

	setting := &models.DeliverySetting{
		ID:              uuid.New(),
		InsideCityName:  strings.TrimSpace(input.InsideCityName),
		InsideCityFee:   input.InsideCityFee,
		OutsideCityFee:  input.OutsideCityFee,
		FreeAbove:       input.FreeAbove,
		BulkyInsideFee:  input.BulkyInsideFee,
		BulkyOutsideFee: input.BulkyOutsideFee,
		CODFeeType:      input.CODFeeType,
		CODExtraFee:     input.CODExtraFee,
		WeightSlabs:     input.WeightSlabs,
		CODSlabs:        input.CODSlabs,
		IsActive:        true,
	}

	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		if err := repo.DeactivateAll(ctx); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "retire delivery settings")
		}
		if err := repo.Create(ctx, setting); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create delivery settings")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return setting, nil
}

func (s *service) List(ctx context.Context) ([]models.DeliverySetting, error) {
	settings, err := s.repo.List(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list delivery settings")
	}
	return settings, nil
}
