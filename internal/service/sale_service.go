package service

import (
	"context"
	"fmt"

	"go-pos-ws/internal/model"
	"go-pos-ws/internal/repository"
	"go-pos-ws/internal/ws"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type CartItem struct {
	ProductID uuid.UUID       `json:"product_id"`
	Quantity  decimal.Decimal `json:"quantity"`
}

type CreateSaleRequest struct {
	Items []CartItem `json:"items"`
}

type SaleService interface {
	CreateSale(ctx context.Context, req *CreateSaleRequest, actingUserID uuid.UUID) (*model.SaleResponse, error)
	GetSale(ctx context.Context, id uuid.UUID) (*model.SaleResponse, error)
	ListSales(ctx context.Context, f repository.SaleFilter) ([]model.SaleResponse, int64, error)
}

type saleService struct {
	db           *gorm.DB
	productRepo  repository.ProductRepository
	saleRepo     repository.SaleRepository
	movementRepo repository.StockMovementRepository
	userRepo     repository.UserRepository
	auditRepo    repository.AuditRepository
	notifier     ws.Notifier
	log          *zap.Logger
}

func NewSaleService(db *gorm.DB, repos *repository.Repositories, notifier ws.Notifier, log *zap.Logger) SaleService {
	return &saleService{
		db:           db,
		productRepo:  repos.Products,
		saleRepo:     repos.Sales,
		movementRepo: repos.Movements,
		userRepo:     repos.Users,
		auditRepo:    repos.Audit,
		notifier:     notifier,
		log:          log,
	}
}

// normalizeCart rejects malformed carts before any row is locked and merges
// repeated products, keeping first-seen order.
func normalizeCart(req *CreateSaleRequest) ([]CartItem, error) {
	if req == nil || len(req.Items) == 0 {
		return nil, Validation("cart is empty")
	}
	lines := make([]CartItem, 0, len(req.Items))
	index := make(map[uuid.UUID]int, len(req.Items))
	for i, item := range req.Items {
		if item.ProductID == uuid.Nil {
			return nil, Validation("item %d: product_id is required", i+1)
		}
		if !item.Quantity.IsPositive() {
			return nil, Validation("quantity for product '%s' must be greater than zero", item.ProductID)
		}
		if pos, ok := index[item.ProductID]; ok {
			lines[pos].Quantity = lines[pos].Quantity.Add(item.Quantity)
			continue
		}
		index[item.ProductID] = len(lines)
		lines = append(lines, item)
	}
	return lines, nil
}

func (s *saleService) CreateSale(ctx context.Context, req *CreateSaleRequest, actingUserID uuid.UUID) (*model.SaleResponse, error) {
	lines, err := normalizeCart(req)
	if err != nil {
		return nil, err
	}
	ids := make([]uuid.UUID, len(lines))
	for i, line := range lines {
		ids[i] = line.ProductID
	}

	var sale *model.Sale
	actor := actingUserID.String()

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		user, err := s.userRepo.FindActive(tx, actingUserID)
		if err != nil {
			return storageError(err, "user", actingUserID)
		}

		locked, err := s.productRepo.LockByIDs(tx, ids)
		if err != nil {
			return err
		}
		products := make(map[uuid.UUID]*model.Product, len(locked))
		for i := range locked {
			products[locked[i].ID] = &locked[i]
		}

		total := decimal.Zero
		for _, line := range lines {
			p, ok := products[line.ProductID]
			if !ok || !p.IsActive {
				return NotFound("product '%s' not found", line.ProductID)
			}
			if err := checkQuantity(line.Quantity, p.UnitType, p.Name); err != nil {
				return err
			}
			if p.StockQuantity.LessThan(line.Quantity) {
				return &InsufficientStockError{
					ProductID:   p.ID,
					ProductName: p.Name,
					Available:   p.StockQuantity,
					Requested:   line.Quantity,
				}
			}
			subtotal := line.Quantity.Mul(p.UnitPrice).Round(2)
			if !subtotal.IsPositive() {
				return Validation("quantity for '%s' is below the minimum sellable amount of %s",
					p.Name, minSellable(p.UnitPrice).String())
			}
			total = total.Add(subtotal)
		}
		if !total.IsPositive() {
			return Validation("sale total must be greater than zero")
		}

		sale = &model.Sale{UserID: user.ID, TotalAmount: total}
		if err := s.saleRepo.Create(tx, sale); err != nil {
			return err
		}

		sale.Items = make([]model.SaleItem, 0, len(lines))
		for _, line := range lines {
			p := products[line.ProductID]
			item := model.SaleItem{
				SaleID:    sale.ID,
				ProductID: p.ID,
				Quantity:  line.Quantity,
				UnitPrice: p.UnitPrice,
			}
			if err := s.saleRepo.CreateItem(tx, &item); err != nil {
				return err
			}

			ok, err := s.productRepo.DecrementStock(tx, p.ID, line.Quantity, actor)
			if err != nil {
				return err
			}
			if !ok {
				return &InsufficientStockError{
					ProductID:   p.ID,
					ProductName: p.Name,
					Available:   p.StockQuantity,
					Requested:   line.Quantity,
				}
			}

			movement := &model.StockMovement{
				ProductID: p.ID,
				UserID:    user.ID,
				Type:      model.StockOut,
				Quantity:  line.Quantity,
				SaleID:    &sale.ID,
			}
			if err := s.movementRepo.Create(tx, movement); err != nil {
				return err
			}

			p.StockQuantity = p.StockQuantity.Sub(line.Quantity)
			item.Product = p
			sale.Items = append(sale.Items, item)
		}

		sale.User = user
		return writeAudit(tx, s.auditRepo, user.ID, model.AuditSale, "sale", sale.ID.String(), map[string]interface{}{
			"total_amount": sale.TotalAmount,
			"items":        len(sale.Items),
		})
	})
	if err != nil {
		if KindOf(err) == KindUnexpected {
			s.log.Error("create sale failed", zap.Error(err), zap.String("user_id", actor))
		}
		return nil, storageError(err, "sale", nil)
	}

	s.log.Info("sale created",
		zap.String("sale_id", sale.ID.String()),
		zap.String("user_id", actor),
		zap.String("total", sale.TotalAmount.String()),
		zap.Int("items", len(sale.Items)))

	resp := sale.ToResponse()
	s.publish(sale, &resp)
	return &resp, nil
}

func (s *saleService) publish(sale *model.Sale, resp *model.SaleResponse) {
	if s.notifier == nil {
		return
	}
	userName := ""
	if sale.User != nil {
		userName = sale.User.FullName
	}
	s.notifier.Publish(ws.Event{
		Type:    ws.EventSaleCreated,
		Action:  "sale_created",
		Payload: resp,
		Message: fmt.Sprintf("%s completed a sale of %s", userName, sale.TotalAmount.StringFixed(2)),
	})
	for _, item := range sale.Items {
		if item.Product == nil {
			continue
		}
		s.notifier.Publish(ws.Event{
			Type:   ws.EventStockUpdate,
			Action: "sold",
			Payload: map[string]interface{}{
				"product_id":     item.ProductID,
				"name":           item.Product.Name,
				"stock_quantity": item.Product.StockQuantity,
				"sold":           item.Quantity,
			},
		})
	}
}

func (s *saleService) GetSale(ctx context.Context, id uuid.UUID) (*model.SaleResponse, error) {
	sale, err := s.saleRepo.FindByID(ctx, id)
	if err != nil {
		return nil, storageError(err, "sale", id)
	}
	resp := sale.ToResponse()
	return &resp, nil
}

func (s *saleService) ListSales(ctx context.Context, f repository.SaleFilter) ([]model.SaleResponse, int64, error) {
	if f.From != nil && f.To != nil && !f.From.Before(*f.To) {
		return nil, 0, Validation("'from' must be before 'to'")
	}
	sales, total, err := s.saleRepo.List(ctx, f)
	if err != nil {
		return nil, 0, Unexpected("failed to list sales", err)
	}
	out := make([]model.SaleResponse, len(sales))
	for i := range sales {
		out[i] = sales[i].ToResponse()
	}
	return out, total, nil
}
