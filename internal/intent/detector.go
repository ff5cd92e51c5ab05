// Package intent classifies inbound chat messages into analytics intents.
// Detection is a pure function over the message text: an ordered table of
// per-intent regular expression patterns, first match wins.
package intent

import (
	"regexp"
	"strings"
)

// Intent identifies a classified analytics request category.
type Intent string

const (
	SalesForecast        Intent = "sales_forecast"
	ChurnPrediction      Intent = "churn_prediction"
	InstagramAnalysis    Intent = "instagram_analysis"
	TikTokAnalysis       Intent = "tiktok_analysis"
	MarketingROI         Intent = "marketing_roi"
	AnomalyDetection     Intent = "anomaly_detection"
	CustomerSegmentation Intent = "customer_segmentation"
	DashboardSummary     Intent = "dashboard_summary"
)

// matchedConfidence is reported for every pattern hit. Detection is a fixed
// pattern table, not a probabilistic model.
const matchedConfidence = 0.9

// Match is the classifier output.
type Match struct {
	Intent     Intent  `json:"intent,omitempty"`
	Confidence float64 `json:"confidence"`
	Matched    bool    `json:"matched"`
}

type intentEntry struct {
	intent   Intent
	patterns []*regexp.Regexp
}

// intentTable is evaluated in declaration order; within an intent, patterns
// are evaluated in order and the first hit anywhere in the table wins.
var intentTable = []intentEntry{
	{SalesForecast, compileAll(
		`quanto.*vou.*vender`,
		`previs[ãa]o.*venda`,
		`vendas.*pr[óo]ximo`,
		`faturamento.*futuro`,
		`meta.*venda`,
		`proje[çc][ãa]o.*vendas`,
		`estimar.*vendas`,
	)},
	{ChurnPrediction, compileAll(
		`risco.*churn`,
		`clientes.*risco`,
		`quem.*vai.*cancelar`,
		`clientes.*perdendo`,
		`risco.*perda`,
		`prever.*cancelamento`,
		`taxa.*churn`,
	)},
	{InstagramAnalysis, compileAll(
		`como.*est[áa].*instagram`,
		`performance.*insta`,
		`an[áa]lise.*instagram`,
		`instagram.*indo`,
		`m[ée]tricas.*instagram`,
		`dados.*instagram`,
		`insta.*crescendo`,
	)},
	{TikTokAnalysis, compileAll(
		`como.*est[áa].*tiktok`,
		`performance.*tiktok`,
		`an[áa]lise.*tiktok`,
		`tiktok.*indo`,
		`m[ée]tricas.*tiktok`,
		`videos.*tiktok`,
	)},
	{MarketingROI, compileAll(
		`roi.*marketing`,
		`retorno.*marketing`,
		`performance.*ads`,
		`investimento.*marketing`,
		`custo.*aquisi[çc][ãa]o`,
		`cac`,
		`ltv`,
		`retorno.*investimento`,
	)},
	{AnomalyDetection, compileAll(
		`por.*que.*caiu`,
		`o.*que.*aconteceu`,
		`problema.*em`,
		`queda.*em`,
		`anomalia`,
		`algo.*errado`,
		`vendas.*cairam`,
		`performance.*ruim`,
	)},
	{CustomerSegmentation, compileAll(
		`segmenta[çc][ãa]o`,
		`tipos.*cliente`,
		`perfis.*cliente`,
		`clusters`,
		`segmentar`,
		`grupos.*cliente`,
	)},
	{DashboardSummary, compileAll(
		`resumo`,
		`relat[óo]rio`,
		`dashboard`,
		`vis[ãa]o.*geral`,
		`panorama`,
		`como.*estou`,
		`situa[çc][ãa]o.*atual`,
		`me.*atualiza`,
	)},
}

func compileAll(patterns ...string) []*regexp.Regexp {
	compiled := make([]*regexp.Regexp, 0, len(patterns))
	for _, p := range patterns {
		compiled = append(compiled, regexp.MustCompile(`(?i)`+p))
	}
	return compiled
}

// Detect classifies a message. It is pure and safe on arbitrary UTF-8 input;
// an empty or unmatched message yields a zero Match.
func Detect(message string) Match {
	if strings.TrimSpace(message) == "" {
		return Match{}
	}

	lower := strings.ToLower(message)
	for _, entry := range intentTable {
		for _, pattern := range entry.patterns {
			if pattern.MatchString(lower) {
				return Match{
					Intent:     entry.intent,
					Confidence: matchedConfidence,
					Matched:    true,
				}
			}
		}
	}

	return Match{}
}

// IsAnalyticsIntent reports whether the message matches any known intent.
func IsAnalyticsIntent(message string) bool {
	return Detect(message).Matched
}

var descriptions = map[Intent]string{
	SalesForecast:        "Previsão de Vendas",
	ChurnPrediction:      "Predição de Churn",
	InstagramAnalysis:    "Análise de Instagram",
	TikTokAnalysis:       "Análise de TikTok",
	MarketingROI:         "ROI de Marketing",
	AnomalyDetection:     "Detecção de Anomalias",
	CustomerSegmentation: "Segmentação de Clientes",
	DashboardSummary:     "Resumo do Dashboard",
}

// Description returns the display name for an intent, falling back to the
// raw identifier.
func Description(i Intent) string {
	if d, ok := descriptions[i]; ok {
		return d
	}
	return string(i)
}
