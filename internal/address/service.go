package address

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/noormart/noormart-backend/pkg/db/models"
	"github.com/noormart/noormart-backend/pkg/enums"
	pkgerrors "github.com/noormart/noormart-backend/pkg/errors"
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

// Service manages a user's address book. At most one address per user
// is the default; saving a new default clears the prior one.
type Service interface {
	Create(ctx context.Context, userID uuid.UUID, input Input) (*models.Address, error)
	Update(ctx context.Context, id, userID uuid.UUID, input Input) (*models.Address, error)
	Delete(ctx context.Context, id, userID uuid.UUID) error
	// GetByID loads an address and enforces ownership.
	GetByID(ctx context.Context, id, userID uuid.UUID) (*models.Address, error)
	// GetDefault returns the user's default address, or nil when none.
	GetDefault(ctx context.Context, userID uuid.UUID) (*models.Address, error)
	List(ctx context.Context, userID uuid.UUID) ([]models.Address, error)
}

// Input carries the writable address fields.
type Input struct {
	Label     enums.AddressType
	Name      string
	Phone     string
	Line1     string
	Line2     *string
	District  string
	Postcode  *string
	IsDefault bool
}

type service struct {
	repo Repository
	tx   txRunner
}

// NewService builds an address service with the required dependencies.
func NewService(repo Repository, tx txRunner) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("address repository required")
	}
	if tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	return &service{repo: repo, tx: tx}, nil
}

func (s *service) Create(ctx context.Context, userID uuid.UUID, input Input) (*models.Address, error) {
	if userID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "user identity missing")
	}
	if err := validateInput(&input); err != nil {
		return nil, err
	}

	addr := &models.Address{
		ID:        uuid.New(),
		UserID:    userID,
		Label:     input.Label,
		Name:      strings.TrimSpace(input.Name),
		Phone:     strings.TrimSpace(input.Phone),
		Line1:     strings.TrimSpace(input.Line1),
		Line2:     input.Line2,
		District:  strings.TrimSpace(input.District),
		Postcode:  input.Postcode,
		IsDefault: input.IsDefault,
	}

	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		if addr.IsDefault {
			if err := repo.ClearDefault(ctx, userID); err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "clear default address")
			}
		}
		if err := repo.Create(ctx, addr); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create address")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return addr, nil
}

func (s *service) Update(ctx context.Context, id, userID uuid.UUID, input Input) (*models.Address, error) {
	if err := validateInput(&input); err != nil {
		return nil, err
	}

	var updated *models.Address
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		addr, err := repo.FindByID(ctx, id)
		if err != nil {
			if err == gorm.ErrRecordNotFound {
				return pkgerrors.New(pkgerrors.CodeNotFound, "address not found")
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load address")
		}
		if addr.UserID != userID {
			return pkgerrors.New(pkgerrors.CodeNotFound, "address not found")
		}

		if input.IsDefault && !addr.IsDefault {
			if err := repo.ClearDefault(ctx, userID); err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "clear default address")
			}
		}

		addr.Label = input.Label
		addr.Name = strings.TrimSpace(input.Name)
		addr.Phone = strings.TrimSpace(input.Phone)
		addr.Line1 = strings.TrimSpace(input.Line1)
		addr.Line2 = input.Line2
		addr.District = strings.TrimSpace(input.District)
		addr.Postcode = input.Postcode
		addr.IsDefault = input.IsDefault

		if err := repo.Update(ctx, addr); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update address")
		}
		updated = addr
		return nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

func (s *service) Delete(ctx context.Context, id, userID uuid.UUID) error {
	rows, err := s.repo.Delete(ctx, id, userID)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "delete address")
	}
	if rows == 0 {
		return pkgerrors.New(pkgerrors.CodeNotFound, "address not found")
	}
	return nil
}

func (s *service) GetByID(ctx context.Context, id, userID uuid.UUID) (*models.Address, error) {
	addr, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "address not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load address")
	}
	if addr.UserID != userID {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "address not found")
	}
	return addr, nil
}

func (s *service) GetDefault(ctx context.Context, userID uuid.UUID) (*models.Address, error) {
	addr, err := s.repo.FindDefault(ctx, userID)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load default address")
	}
	return addr, nil
}

func (s *service) List(ctx context.Context, userID uuid.UUID) ([]models.Address, error) {
	addrs, err := s.repo.ListByUser(ctx, userID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list addresses")
	}
	return addrs, nil
}

func validateInput(input *Input) error {
	if input.Label == "" {
		input.Label = enums.AddressTypeHome
	}
	if !input.Label.IsValid() {
		return pkgerrors.New(pkgerrors.CodeValidation, "invalid address label")
	}
	if strings.TrimSpace(input.Name) == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "recipient name required")
	}
	if strings.TrimSpace(input.Phone) == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "phone required")
	}
	if strings.TrimSpace(input.Line1) == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "address line required")
	}
	if strings.TrimSpace(input.District) == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "district required")
	}
	return nil
}
