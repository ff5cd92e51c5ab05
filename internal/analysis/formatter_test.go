package analysis

import (
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"elite_crm_backend/internal/intent"
)

func TestBrCurrency(t *testing.T) {
	cases := []struct {
		value float64
		want  string
	}{
		{0, "0,00"},
		{1234.5, "1.234,50"},
		{1000000, "1.000.000,00"},
		{987.654, "987,65"},
		{-1234.5, "-1.234,50"},
	}

	for _, tc := range cases {
		if got := brCurrency(tc.value); got != tc.want {
			t.Fatalf("brCurrency(%v) = %q, want %q", tc.value, got, tc.want)
		}
	}
}

func TestBrNumber(t *testing.T) {
	cases := []struct {
		value float64
		want  string
	}{
		{0, "0"},
		{999, "999"},
		{1000, "1.000"},
		{1234567, "1.234.567"},
	}

	for _, tc := range cases {
		if got := brNumber(tc.value); got != tc.want {
			t.Fatalf("brNumber(%v) = %q, want %q", tc.value, got, tc.want)
		}
	}
}

func TestSignedNumber(t *testing.T) {
	if got := signedNumber(1500); got != "+1.500" {
		t.Fatalf("expected +1.500, got %q", got)
	}
	if got := signedNumber(-200); got != "-200" {
		t.Fatalf("expected -200, got %q", got)
	}
	if got := signedNumber(0); got != "0" {
		t.Fatalf("expected 0, got %q", got)
	}
}

func TestFormatResponse_SalesForecast(t *testing.T) {
	raw := json.RawMessage(`{
		"predictions": [1000, 2000, 3000],
		"insights": ["tendência de alta", "fim de semana forte", "estoque ok", "quarto insight"],
		"confidence": 0.87,
		"historical_days": 180
	}`)

	got := FormatResponse(intent.SalesForecast, raw, "Loja da Maria")

	for _, want := range []string{
		"📊 *Previsão de Vendas - Loja da Maria*",
		"*Próximos 3 dias:*",
		"💰 Total Previsto: R$ 6.000,00",
		"📈 Média Diária: R$ 2.000,00",
		"🎯 Confiança: 87%",
		"✅ tendência de alta",
		"180 dias de histórico",
	} {
		if !strings.Contains(got, want) {
			t.Fatalf("missing %q in:\n%s", want, got)
		}
	}
	if strings.Contains(got, "quarto insight") {
		t.Fatalf("expected insights capped at 3:\n%s", got)
	}
}

func TestFormatResponse_ROIStringMetrics(t *testing.T) {
	// The analytics service sometimes quotes pre-rounded numbers.
	raw := json.RawMessage(`{
		"period": "30 dias",
		"metrics": {
			"total_spend": 5000,
			"total_revenue": 15000,
			"roi": "200.00",
			"roas": 3,
			"cac": "25.50"
		}
	}`)

	got := FormatResponse(intent.MarketingROI, raw, "Loja da Maria")

	for _, want := range []string{
		"• Gasto Total: R$ 5.000,00",
		"📊 ROI: 200.00%",
		"💰 ROAS: 3.00x",
		"👤 CAC: R$ 25,50",
		"✅ *Excelente!*",
	} {
		if !strings.Contains(got, want) {
			t.Fatalf("missing %q in:\n%s", want, got)
		}
	}
}

func TestFormatResponse_ROINegative(t *testing.T) {
	raw := json.RawMessage(`{"metrics": {"roi": -12.5}}`)
	got := FormatResponse(intent.MarketingROI, raw, "Cliente")
	if !strings.Contains(got, "⚠️ *Atenção!*") {
		t.Fatalf("expected negative ROI warning:\n%s", got)
	}
}

func TestFormatResponse_AnomalyNoFindings(t *testing.T) {
	raw := json.RawMessage(`{"anomalies": [], "insights": []}`)
	got := FormatResponse(intent.AnomalyDetection, raw, "Cliente")
	if !strings.Contains(got, "✅ Nenhuma anomalia detectada!") {
		t.Fatalf("expected clean bill:\n%s", got)
	}
}

func TestFormatResponse_AnomalyCapsAtFive(t *testing.T) {
	raw := json.RawMessage(`{"anomalies": [
		{"metric": "vendas", "severity": "alta"},
		{"metric": "visitas"},
		{"metric": "conversão"},
		{"metric": "ticket"},
		{"metric": "alcance"},
		{"metric": "sexta métrica"}
	]}`)

	got := FormatResponse(intent.AnomalyDetection, raw, "Cliente")
	if !strings.Contains(got, "5. *alcance*") {
		t.Fatalf("expected fifth anomaly:\n%s", got)
	}
	if strings.Contains(got, "sexta métrica") {
		t.Fatalf("expected anomalies capped at 5:\n%s", got)
	}
}

func TestFormatResponse_BadPayloadDegrades(t *testing.T) {
	got := FormatResponse(intent.SalesForecast, json.RawMessage(`{"predictions": []}`), "Cliente")
	if !strings.Contains(got, "❌ *Ops! Algo deu errado*") {
		t.Fatalf("expected degraded error reply:\n%s", got)
	}
}

func TestFormatResponse_UnknownIntent(t *testing.T) {
	got := FormatResponse(intent.Intent("weather_forecast"), json.RawMessage(`{}`), "Cliente")
	if !strings.Contains(got, "*Análises disponíveis:*") {
		t.Fatalf("expected unsupported reply:\n%s", got)
	}
}

func TestFormatAnomalyAlert(t *testing.T) {
	t.Run("findings produce a prefixed alert", func(t *testing.T) {
		raw := json.RawMessage(`{"anomalies": [{"metric": "vendas", "deviation": -35.2, "severity": "alta"}]}`)
		msg, found := FormatAnomalyAlert(raw, "Loja da Maria")
		if !found {
			t.Fatal("expected a finding")
		}
		if !strings.HasPrefix(msg, "🚨 *Alerta Automático*\n\n") {
			t.Fatalf("missing alert prefix:\n%s", msg)
		}
		if !strings.Contains(msg, "Variação: -35.2%") {
			t.Fatalf("missing deviation:\n%s", msg)
		}
	})

	t.Run("no findings suppress the alert", func(t *testing.T) {
		if _, found := FormatAnomalyAlert(json.RawMessage(`{"anomalies": []}`), "Cliente"); found {
			t.Fatal("expected no alert for a quiet client")
		}
	})

	t.Run("undecodable payload suppresses the alert", func(t *testing.T) {
		if _, found := FormatAnomalyAlert(json.RawMessage(`not json`), "Cliente"); found {
			t.Fatal("expected no alert for bad payload")
		}
	})
}

func TestFormatWeeklySummary(t *testing.T) {
	raw := json.RawMessage(`{"summary": {"total_revenue": 12500.5, "total_orders": 42}}`)
	got := FormatWeeklySummary(raw, "Loja da Maria")

	if !strings.HasPrefix(got, "📅 *Resumo Semanal - Loja da Maria*\n\n") {
		t.Fatalf("missing weekly prefix:\n%s", got)
	}
	if !strings.Contains(got, "*Período: 7 dias*") {
		t.Fatalf("expected default period:\n%s", got)
	}
	if !strings.Contains(got, "• Total: R$ 12.500,50") {
		t.Fatalf("missing revenue:\n%s", got)
	}
}

func TestFormatError(t *testing.T) {
	cases := []struct {
		name string
		err  error
		want string
	}{
		{"insufficient data", errors.New("dados insuficientes para análise"), "dados suficientes"},
		{"not found", errors.New("cliente não encontrado"), "Você já está cadastrado"},
		{"service down", errors.New("ml service unavailable"), "temporariamente indisponível"},
		{"generic", errors.New("timeout"), "_Erro: timeout_"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := FormatError(tc.err)
			if !strings.Contains(got, tc.want) {
				t.Fatalf("missing %q in:\n%s", tc.want, got)
			}
		})
	}
}
