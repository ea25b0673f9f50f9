package models

import "time"

// PlanOverride stores the locally controlled pricing and availability for a
// vendor catalog plan. The vendor remains the source of truth for cost price
// and plan metadata; overrides only add markup and an enabled flag.
type PlanOverride struct {
	ID           uint      `gorm:"primarykey" json:"id"`
	VendorPlanID int       `gorm:"uniqueIndex;not null" json:"vendor_plan_id"`
	Markup       float64   `gorm:"not null;default:0" json:"markup"`
	Enabled      bool      `gorm:"not null;default:true" json:"enabled"`
	UpdatedBy    uint      `json:"updated_by"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// DataPlan is the merged catalog entry served to clients: a vendor plan with
// the local override applied. Not persisted.
type DataPlan struct {
	VendorPlanID int     `json:"plan_id"`
	NetworkCode  int     `json:"network_code"`
	NetworkName  string  `json:"network_name"`
	Name         string  `json:"name"`
	DataSize     string  `json:"data_size"`
	Duration     string  `json:"duration"`
	CostPrice    float64 `json:"cost_price,omitempty"`
	SellingPrice float64 `json:"selling_price"`
	Enabled      bool    `json:"enabled"`
}
