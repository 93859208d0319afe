package views

import (
	"context"

	"cfadesk.org/internal/domain"
	"cfadesk.org/internal/i18n"
)

// AnalyticsAPI is what the dashboard needs from the analytics service.
type AnalyticsAPI interface {
	Dashboard(ctx context.Context) (domain.DashboardMetrics, error)
	BPFPreview(ctx context.Context) (domain.BPFPreview, error)
}

// DashboardView is the rendered dashboard. Error is the inline message shown
// instead of the cards when loading failed.
type DashboardView struct {
	Metrics  domain.DashboardMetrics
	Forecast string
	Realised string
	Rate     string
	Error    string
}

type Dashboard struct {
	api  AnalyticsAPI
	lang string
}

func NewDashboard(api AnalyticsAPI, lang string) *Dashboard {
	return &Dashboard{api: api, lang: lang}
}

// Load never fails: an unavailable backend yields the inline error message.
func (d *Dashboard) Load(ctx context.Context) DashboardView {
	m, err := d.api.Dashboard(ctx)
	if err != nil {
		logFailure("dashboard load failed", err, nil)
		return DashboardView{Error: i18n.T(d.lang, "dashboard_load_failed")}
	}
	return DashboardView{
		Metrics:  m,
		Forecast: FormatEUR(d.lang, m.CAPrevisionnel),
		Realised: FormatEUR(d.lang, m.CARealise),
		Rate:     FormatPercent(d.lang, m.TauxTransformation),
	}
}

// BPF fetches the training-provider report preview.
func (d *Dashboard) BPF(ctx context.Context) (domain.BPFPreview, error) {
	out, err := d.api.BPFPreview(ctx)
	if err != nil {
		logFailure("bpf preview failed", err, nil)
		return domain.BPFPreview{}, err
	}
	return out, nil
}
