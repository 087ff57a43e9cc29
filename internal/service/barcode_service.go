package service

import (
	"context"
	"errors"
	"time"

	"go-pos-ws/internal/repository"
	"go-pos-ws/pkg/barcode"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

type BarcodeService interface {
	GenerateUniqueBarcode(ctx context.Context) (string, error)
	ValidateFormat(code string) bool
	RenderLabel(ctx context.Context, productID uuid.UUID) ([]byte, error)
}

type barcodeService struct {
	productRepo repository.ProductRepository
	log         *zap.Logger
	now         func() time.Time
	intN        func(int) int
}

func NewBarcodeService(repos *repository.Repositories, log *zap.Logger) BarcodeService {
	return &barcodeService{
		productRepo: repos.Products,
		log:         log,
		now:         time.Now,
	}
}

func (s *barcodeService) GenerateUniqueBarcode(ctx context.Context) (string, error) {
	code, err := barcode.GenerateUnique(s.now, s.intN, func(code string) (bool, error) {
		return s.productRepo.BarcodeExists(ctx, code)
	})
	if errors.Is(err, barcode.ErrExhausted) {
		s.log.Warn("barcode generation exhausted", zap.Int("attempts", barcode.MaxGenerateAttempts))
		return "", &AppError{Kind: KindConflict, Message: err.Error(), Err: err}
	}
	if err != nil {
		return "", Unexpected("failed to check barcode uniqueness", err)
	}
	return code, nil
}

func (s *barcodeService) ValidateFormat(code string) bool {
	return barcode.ValidateFormat(code)
}

// RenderLabel draws the product's barcode with its name above and price below.
func (s *barcodeService) RenderLabel(ctx context.Context, productID uuid.UUID) ([]byte, error) {
	product, err := s.productRepo.FindByID(ctx, productID)
	if err != nil {
		return nil, storageError(err, "product", productID)
	}
	png, err := barcode.Render(product.Barcode, barcode.Label{
		Title: product.Name,
		Price: product.UnitPrice.StringFixed(2),
	})
	if err != nil {
		return nil, Unexpected("failed to render barcode", err)
	}
	return png, nil
}
