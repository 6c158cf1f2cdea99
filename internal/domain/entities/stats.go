package entities

// AdminStats are the display-only platform aggregates shown on the admin
// dashboard
type AdminStats struct {
	TotalDatasets int     `json:"total_datasets"`
	TotalRecords  int     `json:"total_records"`
	ActiveModels  int     `json:"active_models"`
	AccuracyRate  float64 `json:"accuracy_rate"`
}

// UserStats are the display-only per-user aggregates shown on the user
// dashboard
type UserStats struct {
	TotalAssessments int     `json:"total_assessments"`
	HealthScore      float64 `json:"health_score"`
	RiskFactors      int     `json:"risk_factors"`
}
