package dto

// UnitCostQuery parámetros de GET /api/costs/unit.
// SimulatedMonthlySales es decimal en texto; vacío = sin prorrateo de gastos fijos.
type UnitCostQuery struct {
	Variant               string `query:"variant" validate:"required,oneof=citrus-A citrus-B"`
	Size                  int    `query:"size_ml" validate:"required,oneof=375 750"`
	SimulatedMonthlySales string `query:"simulated_monthly_sales" validate:"omitempty,numeric"`
}
