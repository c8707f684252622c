package dto

import "github.com/shopspring/decimal"

// ReportQuery is bound from the query string of the reporting endpoints.
// Period selects the aggregation window: "none" = the single day, "7"/"30"/
// "90" = trailing window of that many days ending at Date.
type ReportQuery struct {
	Date     string `form:"date"     validate:"required"`
	Period   string `form:"period,default=none" validate:"omitempty,oneof=none 7 30 90"`
	Download string `form:"download" validate:"omitempty,oneof=excel"`
}

// ProductSnapshot is one per-product row of a period snapshot.
type ProductSnapshot struct {
	ProductID string          `json:"productId"`
	Name      string          `json:"name"`
	Produced  int             `json:"produced"`
	Sold      int             `json:"sold"`
	Stock     int             `json:"stock"`
	MoneyIn   decimal.Decimal `json:"moneyIn"`
}

// SoldPoint and MoneyPoint are chart samples, one per calendar day.
type SoldPoint struct {
	Date         string `json:"date"`
	QuantitySold int    `json:"quantitySold"`
}

type MoneyPoint struct {
	Date    string          `json:"date"`
	MoneyIn decimal.Decimal `json:"moneyIn"`
}

// ProductSeries is the chart-data payload for one product.
type ProductSeries struct {
	ProductID string       `json:"productId"`
	Name      string       `json:"name"`
	Sold      []SoldPoint  `json:"sold"`
	MoneyIn   []MoneyPoint `json:"moneyIn"`
}

// StockAlert is one low-stock warning produced by the stock-check worker.
type StockAlert struct {
	ProductID string `json:"productId"`
	Name      string `json:"name"`
	Stock     int    `json:"stock"`
	At        string `json:"at"`
}
