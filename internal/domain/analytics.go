package domain

import "github.com/shopspring/decimal"

// DashboardMetrics is the answer of GET /analytics/dashboard.
type DashboardMetrics struct {
	TotalCandidats     int             `json:"total_candidats"`
	CAPrevisionnel     decimal.Decimal `json:"ca_previsionnel"`
	CARealise          decimal.Decimal `json:"ca_realise"`
	TauxTransformation float64         `json:"taux_transformation"`
}

// BPFPreview is the answer of GET /analytics/bpf-preview (annual training report).
type BPFPreview struct {
	RepartitionSexe      map[string]int `json:"repartition_sexe"`
	TotalHeuresRealisees float64        `json:"total_heures_realisees"`
	RepartitionRNCP      map[string]int `json:"repartition_rncp"`
}
