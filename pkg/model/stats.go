package model

// Revenue totals are filled only when every revenue-bearing booking shares
// one currency; ByCurrency always carries the per-currency split.
type Revenue struct {
	CompletedCents int64             `json:"completed_cents"`
	ProjectedCents int64             `json:"projected_cents"`
	Currency       string            `json:"currency,omitempty"`
	MixedCurrency  bool              `json:"mixed_currency,omitempty"`
	ByCurrency     []CurrencyRevenue `json:"by_currency,omitempty"`
}

type CurrencyRevenue struct {
	Currency       string `json:"currency"`
	CompletedCents int64  `json:"completed_cents"`
	ProjectedCents int64  `json:"projected_cents"`
}

type Rates struct {
	Confirmation float64 `json:"confirmation"`
	Completion   float64 `json:"completion"`
	Cancellation float64 `json:"cancellation"`
	NoShow       float64 `json:"no_show"`
}

type BookingStats struct {
	ProviderID string  `json:"provider_id"`
	StartDate  string  `json:"start_date"`
	EndDate    string  `json:"end_date"`
	Total      int64   `json:"total"`
	Pending    int64   `json:"pending"`
	Confirmed  int64   `json:"confirmed"`
	Completed  int64   `json:"completed"`
	Cancelled  int64   `json:"cancelled"`
	Rejected   int64   `json:"rejected"`
	NoShow     int64   `json:"no_show"`
	Revenue    Revenue `json:"revenue"`
	Rates      Rates   `json:"rates"`
}

// StatusBucket is one row of the per-status, per-currency ledger
// aggregation.
type StatusBucket struct {
	Status     BookingStatus `bson:"status"`
	Currency   string        `bson:"currency"`
	Count      int64         `bson:"count"`
	PriceCents int64         `bson:"price_cents"`
}
