package intent

import "testing"

func TestDetect_MatchesKnownIntents(t *testing.T) {
	cases := []struct {
		name    string
		message string
		want    Intent
	}{
		{"forecast question", "Quanto vou vender no próximo mês?", SalesForecast},
		{"forecast accented", "Qual a previsão de vendas para dezembro?", SalesForecast},
		{"churn question", "Quais clientes estão em risco de churn?", ChurnPrediction},
		{"churn cancellation", "Quem vai cancelar esse mês?", ChurnPrediction},
		{"instagram", "Como está o Instagram essa semana?", InstagramAnalysis},
		{"tiktok", "Me mostra a performance do TikTok", TikTokAnalysis},
		{"roi", "Qual o ROI de marketing desse trimestre?", MarketingROI},
		{"roi cac", "Quanto está o CAC?", MarketingROI},
		{"anomaly", "Por que caiu o faturamento ontem?", AnomalyDetection},
		{"segmentation", "Faz uma segmentação dos meus clientes", CustomerSegmentation},
		{"dashboard", "Me dá um resumo da semana", DashboardSummary},
		{"dashboard report", "Quero o relatório geral", DashboardSummary},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			match := Detect(tc.message)
			if !match.Matched {
				t.Fatalf("expected %q to match %s, got no match", tc.message, tc.want)
			}
			if match.Intent != tc.want {
				t.Fatalf("expected intent %s, got %s", tc.want, match.Intent)
			}
			if match.Confidence != 0.9 {
				t.Fatalf("expected confidence 0.9, got %v", match.Confidence)
			}
		})
	}
}

func TestDetect_NoMatch(t *testing.T) {
	cases := []struct {
		name    string
		message string
	}{
		{"greeting", "Oi, tudo bem?"},
		{"pricing question", "Quanto custa o plano premium?"},
		{"empty", ""},
		{"whitespace", "   \n\t  "},
		{"arbitrary utf8", "olá 👋 çãõ"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			match := Detect(tc.message)
			if match.Matched {
				t.Fatalf("expected no match for %q, got %s", tc.message, match.Intent)
			}
			if match.Intent != "" || match.Confidence != 0 {
				t.Fatalf("expected zero match, got %+v", match)
			}
		})
	}
}

func TestDetect_FirstTableEntryWins(t *testing.T) {
	// Mentions both a forecast and a dashboard phrase; the table order puts
	// sales forecast first.
	match := Detect("me dá um resumo de quanto vou vender")
	if match.Intent != SalesForecast {
		t.Fatalf("expected %s, got %s", SalesForecast, match.Intent)
	}
}

func TestDescription(t *testing.T) {
	if got := Description(SalesForecast); got != "Previsão de Vendas" {
		t.Fatalf("unexpected description: %q", got)
	}
	if got := Description(Intent("unknown_thing")); got != "unknown_thing" {
		t.Fatalf("expected raw identifier fallback, got %q", got)
	}
}
