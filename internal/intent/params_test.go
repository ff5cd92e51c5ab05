package intent

import "testing"

func TestExtractParameters(t *testing.T) {
	cases := []struct {
		name    string
		message string
		intent  Intent
		want    Parameters
	}{
		{
			name:    "next month horizon",
			message: "Quanto vou vender no próximo mês?",
			intent:  SalesForecast,
			want:    Parameters{Days: 30},
		},
		{
			name:    "explicit day count",
			message: "Previsão de vendas para os próximos 15 dias",
			intent:  SalesForecast,
			want:    Parameters{Days: 15},
		},
		{
			name:    "next week",
			message: "Quanto vou vender na próxima semana?",
			intent:  SalesForecast,
			want:    Parameters{Days: 7},
		},
		{
			name:    "next quarter",
			message: "Projeção de vendas do próximo trimestre",
			intent:  SalesForecast,
			want:    Parameters{Days: 90},
		},
		{
			name:    "lookback in days",
			message: "Como está o Instagram nos últimos 14 dias?",
			intent:  InstagramAnalysis,
			want:    Parameters{HistoryDays: 14, Period: 7},
		},
		{
			name:    "last month lookback",
			message: "Análise do Instagram do último mês",
			intent:  InstagramAnalysis,
			want:    Parameters{HistoryDays: 30, Period: 7},
		},
		{
			name:    "forecast default",
			message: "Qual a previsão de vendas?",
			intent:  SalesForecast,
			want:    Parameters{Days: 30},
		},
		{
			name:    "anomaly default",
			message: "Por que caiu o faturamento?",
			intent:  AnomalyDetection,
			want:    Parameters{Days: 30},
		},
		{
			name:    "dashboard default period",
			message: "Me dá um resumo",
			intent:  DashboardSummary,
			want:    Parameters{Period: 7},
		},
		{
			name:    "no defaults for churn",
			message: "Quais clientes estão em risco de churn?",
			intent:  ChurnPrediction,
			want:    Parameters{},
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := ExtractParameters(tc.message, tc.intent)
			if got != tc.want {
				t.Fatalf("expected %+v, got %+v", tc.want, got)
			}
		})
	}
}
