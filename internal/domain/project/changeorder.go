package project

import "github.com/rpggio/capsim/internal/config"

// ChangeOrderModel approximates contract change orders as a count and a single
// aggregate value per project.
type ChangeOrderModel struct {
	cfg config.ChangeOrderConfig
}

func NewChangeOrderModel(cfg config.ChangeOrderConfig) *ChangeOrderModel {
	return &ChangeOrderModel{cfg: cfg}
}

// Rate is the Poisson mean of the change-order count.
func (m *ChangeOrderModel) Rate(designChangeRate float64) float64 {
	return m.cfg.LambdaSlope*designChangeRate + m.cfg.LambdaIntercept
}

// Value is the aggregate monetary value of count orders, scaled by one uniform
// draw u per project. It is not bounded by the final cost.
func (m *ChangeOrderModel) Value(finalCost, designChangeRate, u float64, count int) float64 {
	return Round(finalCost*(designChangeRate*m.cfg.ValueFactor*u*float64(count)), 2)
}
