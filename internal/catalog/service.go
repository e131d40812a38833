package catalog

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/noormart/noormart-backend/internal/inventory"
	"github.com/noormart/noormart-backend/pkg/db/models"
	"github.com/noormart/noormart-backend/pkg/enums"
	pkgerrors "github.com/noormart/noormart-backend/pkg/errors"
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

// Service exposes the catalog: products, variants, categories, and the
// admin stock adjustment entry point into the ledger.
type Service interface {
	CreateProduct(ctx context.Context, input ProductInput) (*models.Product, error)
	GetProduct(ctx context.Context, id uuid.UUID) (*models.Product, error)
	GetProductBySlug(ctx context.Context, slug string) (*models.Product, error)
	GetVariant(ctx context.Context, variantID uuid.UUID) (*models.ProductVariant, error)
	// AdjustStock routes an admin adjustment to the matching ledger
	// operation inside one transaction.
	AdjustStock(ctx context.Context, variantID uuid.UUID, mode enums.StockMode, qty int) (*models.ProductVariant, error)
	CreateCategory(ctx context.Context, input CategoryInput) (*models.Category, error)
	// CategoryTree returns active categories as a nested tree.
	CategoryTree(ctx context.Context) ([]CategoryNode, error)
}

// ProductInput carries a new product with its variants.
type ProductInput struct {
	Title      string
	Slug       string
	BodyHTML   *string
	Brand      *string
	CategoryID *uuid.UUID
	IsFeatured bool
	Variants   []VariantInput
}

// VariantInput carries one purchasable variant. SKU is generated when
// blank.
type VariantInput struct {
	SKU           string
	Name          string
	Size          *string
	Color         *string
	Price         int
	DiscountPrice *int
	StockQty      int
	WeightGram    int
	ExtraShipFee  int
	IsBulky       bool
	IsDefault     bool
}

// CategoryInput carries a new category node.
type CategoryInput struct {
	Name      string
	Slug      string
	ParentID  *uuid.UUID
	SortOrder int
}

// CategoryNode is one node of the rendered category tree.
type CategoryNode struct {
	ID       uuid.UUID      `json:"id"`
	Name     string         `json:"name"`
	Slug     string         `json:"slug"`
	Children []CategoryNode `json:"children,omitempty"`
}

type service struct {
	repo   Repository
	tx     txRunner
	ledger inventory.Ledger
}

// NewService builds a catalog service with the required dependencies.
func NewService(repo Repository, tx txRunner, ledger inventory.Ledger) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("catalog repository required")
	}
	if tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	if ledger == nil {
		return nil, fmt.Errorf("stock ledger required")
	}
	return &service{repo: repo, tx: tx, ledger: ledger}, nil
}

func (s *service) CreateProduct(ctx context.Context, input ProductInput) (*models.Product, error) {
	if strings.TrimSpace(input.Title) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "product title required")
	}
	if strings.TrimSpace(input.Slug) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "product slug required")
	}
	if len(input.Variants) == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "at least one variant required")
	}
	defaults := 0
	for _, v := range input.Variants {
		if v.Price <= 0 {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "variant price must be positive")
		}
		if v.DiscountPrice != nil && *v.DiscountPrice >= v.Price {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "discount price must be less than price")
		}
		if v.StockQty < 0 {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "stock must not be negative")
		}
		if v.IsDefault {
			defaults++
		}
	}
	if defaults > 1 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "only one default variant allowed")
	}

	product := &models.Product{
		ID:         uuid.New(),
		CategoryID: input.CategoryID,
		Title:      strings.TrimSpace(input.Title),
		Slug:       strings.TrimSpace(input.Slug),
		BodyHTML:   input.BodyHTML,
		Brand:      input.Brand,
		IsActive:   true,
		IsFeatured: input.IsFeatured,
	}

	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		if err := repo.CreateProduct(ctx, product); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create product")
		}
		for i, v := range input.Variants {
			sku := strings.TrimSpace(v.SKU)
			if sku == "" {
				generated, err := generateSKU(ctx, repo, product.Title, deref(v.Color), deref(v.Size))
				if err != nil {
					return err
				}
				sku = generated
			}
			variant := &models.ProductVariant{
				ID:            uuid.New(),
				ProductID:     product.ID,
				SKU:           sku,
				Name:          v.Name,
				Size:          v.Size,
				Color:         v.Color,
				Price:         v.Price,
				DiscountPrice: v.DiscountPrice,
				StockQty:      v.StockQty,
				WeightGram:    v.WeightGram,
				ExtraShipFee:  v.ExtraShipFee,
				IsBulky:       v.IsBulky,
				IsDefault:     v.IsDefault || (defaults == 0 && i == 0),
				IsActive:      true,
			}
			if variant.Name == "" {
				variant.Name = product.Title
			}
			if err := repo.CreateVariant(ctx, variant); err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create variant")
			}
			product.Variants = append(product.Variants, *variant)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return product, nil
}

func (s *service) GetProduct(ctx context.Context, id uuid.UUID) (*models.Product, error) {
	product, err := s.repo.FindProductByID(ctx, id)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load product")
	}
	return product, nil
}

func (s *service) GetProductBySlug(ctx context.Context, slug string) (*models.Product, error) {
	product, err := s.repo.FindProductBySlug(ctx, slug)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load product")
	}
	return product, nil
}

func (s *service) GetVariant(ctx context.Context, variantID uuid.UUID) (*models.ProductVariant, error) {
	if variantID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "variant id required")
	}
	variant, err := s.repo.FindVariantByID(ctx, variantID)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "variant not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load variant")
	}
	return variant, nil
}

func (s *service) AdjustStock(ctx context.Context, variantID uuid.UUID, mode enums.StockMode, qty int) (*models.ProductVariant, error) {
	if !mode.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid stock mode")
	}

	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		ledger := s.ledger.WithTx(tx)
		switch mode {
		case enums.StockModeReserve:
			return ledger.Reserve(ctx, variantID, qty)
		case enums.StockModeCommit:
			return ledger.Commit(ctx, variantID, qty)
		case enums.StockModeRelease:
			return ledger.Release(ctx, variantID, qty)
		case enums.StockModeSet:
			return ledger.SetStock(ctx, variantID, qty)
		default:
			return pkgerrors.New(pkgerrors.CodeValidation, "invalid stock mode")
		}
	})
	if err != nil {
		return nil, err
	}
	return s.GetVariant(ctx, variantID)
}

func (s *service) CreateCategory(ctx context.Context, input CategoryInput) (*models.Category, error) {
	if strings.TrimSpace(input.Name) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "category name required")
	}
	if strings.TrimSpace(input.Slug) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "category slug required")
	}

	category := &models.Category{
		ID:        uuid.New(),
		Name:      strings.TrimSpace(input.Name),
		Slug:      strings.TrimSpace(input.Slug),
		ParentID:  input.ParentID,
		IsActive:  true,
		SortOrder: input.SortOrder,
	}
	if err := s.repo.CreateCategory(ctx, category); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create category")
	}
	return category, nil
}

func (s *service) CategoryTree(ctx context.Context) ([]CategoryNode, error) {
	categories, err := s.repo.ListCategories(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list categories")
	}
	return buildTree(categories), nil
}

// buildTree nests the flat category list by parent id. Orphans (parent
// missing or inactive) surface as roots rather than disappearing.
func buildTree(categories []models.Category) []CategoryNode {
	byID := make(map[uuid.UUID]bool, len(categories))
	for _, c := range categories {
		byID[c.ID] = true
	}

	children := make(map[uuid.UUID][]models.Category)
	var roots []models.Category
	for _, c := range categories {
		if c.ParentID != nil && byID[*c.ParentID] {
			children[*c.ParentID] = append(children[*c.ParentID], c)
			continue
		}
		roots = append(roots, c)
	}

	var build func(c models.Category) CategoryNode
	build = func(c models.Category) CategoryNode {
		node := CategoryNode{ID: c.ID, Name: c.Name, Slug: c.Slug}
		for _, child := range children[c.ID] {
			node.Children = append(node.Children, build(child))
		}
		return node
	}

	nodes := make([]CategoryNode, 0, len(roots))
	for _, root := range roots {
		nodes = append(nodes, build(root))
	}
	return nodes
}

// DiscountPercent renders the variant's discount as a percentage string
// with two decimal places, or empty when no discount applies.
func DiscountPercent(variant *models.ProductVariant) string {
	if variant == nil || variant.DiscountPrice == nil || variant.Price <= 0 {
		return ""
	}
	discount := *variant.DiscountPrice
	if discount <= 0 || discount >= variant.Price {
		return ""
	}
	price := decimal.NewFromInt(int64(variant.Price))
	saved := price.Sub(decimal.NewFromInt(int64(discount)))
	return saved.Div(price).Mul(decimal.NewFromInt(100)).Round(2).String()
}

func deref(value *string) string {
	if value == nil {
		return ""
	}
	return *value
}
