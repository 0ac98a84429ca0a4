package theme

import "github.com/prometheus/client_golang/prometheus"

var (
	themeSavesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "theboolean_theme_saves_total",
			Help: "Theme save attempts by result.",
		},
		[]string{"result"},
	)
	themeColorFallbacksTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "theboolean_theme_color_fallbacks_total",
			Help: "Color inputs that were malformed and replaced by the fallback purple.",
		},
	)
)

func init() {
	prometheus.MustRegister(themeSavesTotal)
	prometheus.MustRegister(themeColorFallbacksTotal)
}
