package entities

import "github.com/shopspring/decimal"

// LabelCount - строка распределения активов по справочнику.
type LabelCount struct {
	ID    int64  `json:"id"`
	Label string `json:"label"`
	Count int64  `json:"count"`
}

// AssetDashboard - счетчики для главной страницы активов.
type AssetDashboard struct {
	Total    int64        `json:"total"`
	ByType   []LabelCount `json:"by_type"`
	ByStatus []LabelCount `json:"by_status"`
}

type Financials struct {
	TotalCost      decimal.Decimal `json:"total_cost"`
	CostInUse      decimal.Decimal `json:"cost_in_use"`
	CostInStock    decimal.Decimal `json:"cost_in_stock"`
	AvgWearPercent decimal.Decimal `json:"avg_wear_percent"`
}

type Distribution struct {
	Label      string          `json:"label"`
	Count      int64           `json:"count"`
	TotalPrice decimal.Decimal `json:"total_price"`
}

type RiskIssue string

const (
	RiskCriticalWear    RiskIssue = "CRITICAL_WEAR"
	RiskWarrantyExpired RiskIssue = "WARRANTY_EXPIRED"
	RiskOldAsset        RiskIssue = "OLD_ASSET"
)

type Criticality string

const (
	CriticalityHigh   Criticality = "HIGH"
	CriticalityMedium Criticality = "MEDIUM"
)

// RiskAsset - актив, требующий внимания.
type RiskAsset struct {
	ID              int64       `json:"id"`
	Name            string      `json:"name"`
	InventoryNumber string      `json:"inventory_number"`
	Issue           RiskIssue   `json:"issue"`
	Criticality     Criticality `json:"criticality"`
	DateRef         *string     `json:"date_ref"`
}

type AnalyticsDashboard struct {
	Financials Financials     `json:"financials"`
	ByStatus   []Distribution `json:"by_status"`
	ByType     []Distribution `json:"by_type"`
	Risks      []RiskAsset    `json:"risks"`
}
