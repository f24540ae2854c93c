package repositories

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"it-inventory/internal/entities"
	"it-inventory/pkg/config"
)

const dateRefLayout = "2006-01-02"

// RiskCandidate - актив, попавший в выборку рисков до классификации.
type RiskCandidate struct {
	ID              int64
	Name            string
	InventoryNumber string
	WearPercentage  *int
	WarrantyEndDate *time.Time
	PurchaseDate    *time.Time
}

type AnalyticsRepositoryInterface interface {
	ComputeDashboard(ctx context.Context, today time.Time) (*entities.AnalyticsDashboard, error)
}

type AnalyticsRepository struct {
	storage *pgxpool.Pool
	cfg     config.AnalyticsConfig
	logger  *zap.Logger
}

func NewAnalyticsRepository(storage *pgxpool.Pool, cfg config.AnalyticsConfig, logger *zap.Logger) AnalyticsRepositoryInterface {
	return &AnalyticsRepository{storage: storage, cfg: cfg, logger: logger}
}

// DateOnly отбрасывает время суток, оставляя календарную дату в UTC.
func DateOnly(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// ClassifyRisk определяет проблему актива. Приоритет: износ, гарантия, возраст.
// Второе значение false, если ни одно условие не выполнено.
func ClassifyRisk(c RiskCandidate, today time.Time, cfg config.AnalyticsConfig) (entities.RiskAsset, bool) {
	today = DateOnly(today)
	risk := entities.RiskAsset{ID: c.ID, Name: c.Name, InventoryNumber: c.InventoryNumber}

	switch {
	case c.WearPercentage != nil && *c.WearPercentage >= cfg.WearThreshold:
		risk.Issue = entities.RiskCriticalWear
		risk.Criticality = entities.CriticalityHigh
	case c.WarrantyEndDate != nil && DateOnly(*c.WarrantyEndDate).Before(today):
		risk.Issue = entities.RiskWarrantyExpired
		risk.Criticality = entities.CriticalityMedium
		ref := c.WarrantyEndDate.Format(dateRefLayout)
		risk.DateRef = &ref
	case c.PurchaseDate != nil && DateOnly(*c.PurchaseDate).Before(today.AddDate(-cfg.OldAssetYears, 0, 0)):
		risk.Issue = entities.RiskOldAsset
		risk.Criticality = entities.CriticalityMedium
		ref := c.PurchaseDate.Format(dateRefLayout)
		risk.DateRef = &ref
	default:
		return risk, false
	}
	return risk, true
}

func (r *AnalyticsRepository) ComputeDashboard(ctx context.Context, today time.Time) (*entities.AnalyticsDashboard, error) {
	today = DateOnly(today)
	db := dbFrom(ctx, r.storage)
	dash := &entities.AnalyticsDashboard{}

	var avgWear decimal.Decimal
	err := db.QueryRow(ctx, `
		SELECT COALESCE(SUM(d.price), 0),
		       COALESCE(SUM(d.price) FILTER (WHERE ds.name = ANY($1)), 0),
		       COALESCE(SUM(d.price) FILTER (WHERE ds.name = ANY($2)), 0),
		       COALESCE(AVG(d.current_wear_percentage), 0)
		FROM devices d
			JOIN device_statuses ds ON ds.id = d.status_id`,
		r.cfg.StatusInUse, r.cfg.StatusInStock,
	).Scan(&dash.Financials.TotalCost, &dash.Financials.CostInUse, &dash.Financials.CostInStock, &avgWear)
	if err != nil {
		return nil, mapStorageError("ошибка расчета финансовых показателей", err)
	}
	dash.Financials.AvgWearPercent = avgWear.Round(2)

	dash.ByStatus, err = r.distribution(ctx, `
		SELECT ds.name, COUNT(d.id), COALESCE(SUM(d.price), 0)
		FROM devices d
			JOIN device_statuses ds ON ds.id = d.status_id
		GROUP BY ds.name
		ORDER BY COUNT(d.id) DESC, ds.name`)
	if err != nil {
		return nil, err
	}
	dash.ByType, err = r.distribution(ctx, `
		SELECT ast.name, COUNT(d.id), COALESCE(SUM(d.price), 0)
		FROM devices d
			JOIN asset_types ast ON ast.id = d.asset_type_id
		GROUP BY ast.name
		ORDER BY COUNT(d.id) DESC, ast.name`)
	if err != nil {
		return nil, err
	}

	dash.Risks, err = r.risks(ctx, today)
	if err != nil {
		return nil, err
	}
	return dash, nil
}

func (r *AnalyticsRepository) distribution(ctx context.Context, query string) ([]entities.Distribution, error) {
	rows, err := dbFrom(ctx, r.storage).Query(ctx, query)
	if err != nil {
		return nil, mapStorageError("ошибка расчета распределения активов", err)
	}
	defer rows.Close()

	out := make([]entities.Distribution, 0)
	for rows.Next() {
		var item entities.Distribution
		if err := rows.Scan(&item.Label, &item.Count, &item.TotalPrice); err != nil {
			return nil, fmt.Errorf("ошибка сканирования распределения: %w", err)
		}
		out = append(out, item)
	}
	return out, rows.Err()
}

func (r *AnalyticsRepository) risks(ctx context.Context, today time.Time) ([]entities.RiskAsset, error) {
	oldCutoff := today.AddDate(-r.cfg.OldAssetYears, 0, 0)
	rows, err := dbFrom(ctx, r.storage).Query(ctx, `
		SELECT d.id, d.name, d.inventory_number, d.current_wear_percentage, d.warranty_end_date, d.purchase_date
		FROM devices d
		WHERE d.current_wear_percentage >= $1
		   OR d.warranty_end_date < $2
		   OR d.purchase_date < $3
		ORDER BY CASE
		           WHEN d.current_wear_percentage >= $1 THEN 0
		           WHEN d.warranty_end_date < $2 THEN 1
		           ELSE 2
		         END,
		         d.id
		LIMIT $4`,
		r.cfg.WearThreshold, today, oldCutoff, r.cfg.RiskLimit,
	)
	if err != nil {
		return nil, mapStorageError("ошибка выборки рисковых активов", err)
	}
	defer rows.Close()

	out := make([]entities.RiskAsset, 0)
	for rows.Next() {
		var c RiskCandidate
		if err := rows.Scan(&c.ID, &c.Name, &c.InventoryNumber, &c.WearPercentage, &c.WarrantyEndDate, &c.PurchaseDate); err != nil {
			return nil, fmt.Errorf("ошибка сканирования рискового актива: %w", err)
		}
		if risk, ok := ClassifyRisk(c, today, r.cfg); ok {
			out = append(out, risk)
		}
	}
	return out, rows.Err()
}
