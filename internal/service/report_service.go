package service

import (
	"context"
	"time"

	"go-pos-ws/internal/export"
	"go-pos-ws/internal/repository"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

const (
	maxReportDays      = 366
	defaultChartDays   = 7
	defaultTopProducts = 10
	maxTopProducts     = 100
)

// StockMovementPoint is one day of the inbound/outbound chart.
type StockMovementPoint struct {
	Date     string          `json:"date"`
	Inbound  decimal.Decimal `json:"inbound"`
	Outbound decimal.Decimal `json:"outbound"`
}

type ReportService interface {
	GetDashboardStats(ctx context.Context) (*repository.DashboardStats, error)
	GetStockMovement(ctx context.Context, days int) ([]StockMovementPoint, error)
	GetSalesSummary(ctx context.Context, from, to time.Time) (*repository.SalesSummary, error)
	GetTopProducts(ctx context.Context, from, to time.Time, limit int) ([]repository.TopProduct, error)
	ExportSalesXLSX(ctx context.Context, from, to time.Time) ([]byte, error)
	ExportSalesPDF(ctx context.Context, from, to time.Time) ([]byte, error)
}

type reportService struct {
	reportRepo        repository.ReportRepository
	saleRepo          repository.SaleRepository
	movementRepo      repository.StockMovementRepository
	lowStockThreshold int
	log               *zap.Logger
	now               func() time.Time
}

func NewReportService(repos *repository.Repositories, lowStockThreshold int, log *zap.Logger) ReportService {
	return &reportService{
		reportRepo:        repos.Reports,
		saleRepo:          repos.Sales,
		movementRepo:      repos.Movements,
		lowStockThreshold: lowStockThreshold,
		log:               log,
		now:               time.Now,
	}
}

// dayStart truncates t to midnight UTC.
func dayStart(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

func checkRange(from, to time.Time) error {
	if !from.Before(to) {
		return Validation("'from' must be before 'to'")
	}
	if to.Sub(from) > maxReportDays*24*time.Hour {
		return Validation("report range cannot exceed %d days", maxReportDays)
	}
	return nil
}

func (s *reportService) GetDashboardStats(ctx context.Context) (*repository.DashboardStats, error) {
	start := dayStart(s.now())
	stats, err := s.reportRepo.DashboardStats(ctx, s.lowStockThreshold, start, start.AddDate(0, 0, 1))
	if err != nil {
		return nil, Unexpected("failed to load dashboard stats", err)
	}
	return stats, nil
}

// GetStockMovement buckets movements per UTC day for the last days days, today included.
func (s *reportService) GetStockMovement(ctx context.Context, days int) ([]StockMovementPoint, error) {
	if days <= 0 {
		days = defaultChartDays
	}
	if days > maxReportDays {
		days = maxReportDays
	}
	end := dayStart(s.now()).AddDate(0, 0, 1)
	start := end.AddDate(0, 0, -days)

	movements, err := s.movementRepo.FindInRange(ctx, start, end)
	if err != nil {
		return nil, Unexpected("failed to load stock movements", err)
	}

	points := make([]StockMovementPoint, days)
	for i := range points {
		points[i] = StockMovementPoint{
			Date:     start.AddDate(0, 0, i).Format("2006-01-02"),
			Inbound:  decimal.Zero,
			Outbound: decimal.Zero,
		}
	}
	for i := range movements {
		m := &movements[i]
		idx := int(dayStart(m.CreatedAt).Sub(start) / (24 * time.Hour))
		if idx < 0 || idx >= days {
			continue
		}
		if m.Signed().IsNegative() {
			points[idx].Outbound = points[idx].Outbound.Add(m.Quantity)
		} else {
			points[idx].Inbound = points[idx].Inbound.Add(m.Quantity)
		}
	}
	return points, nil
}

func (s *reportService) GetSalesSummary(ctx context.Context, from, to time.Time) (*repository.SalesSummary, error) {
	if err := checkRange(from, to); err != nil {
		return nil, err
	}
	summary, err := s.reportRepo.SalesSummary(ctx, from.UTC(), to.UTC())
	if err != nil {
		return nil, Unexpected("failed to load sales summary", err)
	}
	return summary, nil
}

func (s *reportService) GetTopProducts(ctx context.Context, from, to time.Time, limit int) ([]repository.TopProduct, error) {
	if err := checkRange(from, to); err != nil {
		return nil, err
	}
	if limit <= 0 {
		limit = defaultTopProducts
	}
	if limit > maxTopProducts {
		limit = maxTopProducts
	}
	rows, err := s.reportRepo.TopProducts(ctx, from.UTC(), to.UTC(), limit)
	if err != nil {
		return nil, Unexpected("failed to load top products", err)
	}
	return rows, nil
}

func (s *reportService) salesReport(ctx context.Context, from, to time.Time) (*export.Report, error) {
	if err := checkRange(from, to); err != nil {
		return nil, err
	}
	sales, err := s.saleRepo.FindInRange(ctx, from.UTC(), to.UTC())
	if err != nil {
		return nil, Unexpected("failed to load sales", err)
	}
	revenue := decimal.Zero
	for i := range sales {
		revenue = revenue.Add(sales[i].TotalAmount)
	}
	return &export.Report{
		Title:     "Sales Report",
		From:      from,
		To:        to,
		SaleCount: int64(len(sales)),
		Revenue:   revenue,
		Rows:      export.RowsFromSales(sales),
	}, nil
}

func (s *reportService) ExportSalesXLSX(ctx context.Context, from, to time.Time) ([]byte, error) {
	report, err := s.salesReport(ctx, from, to)
	if err != nil {
		return nil, err
	}
	data, err := export.XLSX(report)
	if err != nil {
		s.log.Error("xlsx export failed", zap.Error(err))
		return nil, Unexpected("failed to build spreadsheet", err)
	}
	return data, nil
}

func (s *reportService) ExportSalesPDF(ctx context.Context, from, to time.Time) ([]byte, error) {
	report, err := s.salesReport(ctx, from, to)
	if err != nil {
		return nil, err
	}
	data, err := export.PDF(report)
	if err != nil {
		s.log.Error("pdf export failed", zap.Error(err))
		return nil, Unexpected("failed to build pdf", err)
	}
	return data, nil
}
