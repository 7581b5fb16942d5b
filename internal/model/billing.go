package model

type BillingCycle string

const (
	BillingCycleMonthly BillingCycle = "monthly"
	BillingCycleYearly  BillingCycle = "yearly"
)

func (c BillingCycle) Valid() bool {
	return c == BillingCycleMonthly || c == BillingCycleYearly
}

// Plan is a subscription tier offered on the pricing page. Amounts are
// in cents.
type Plan struct {
	ID           string   `json:"id"`
	Name         string   `json:"name"`
	MonthlyPrice int64    `json:"monthly_price"`
	YearlyPrice  int64    `json:"yearly_price"`
	Features     []string `json:"features"`
}

type CheckoutRequest struct {
	PlanID string       `json:"plan_id" binding:"required"`
	Cycle  BillingCycle `json:"billing_cycle" binding:"required,oneof=monthly yearly"`
}

type CheckoutSession struct {
	SessionID string `json:"session_id"`
	URL       string `json:"url"`
}
