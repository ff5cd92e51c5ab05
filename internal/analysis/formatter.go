package analysis

import (
	"encoding/json"
	"fmt"
	"strings"

	"elite_crm_backend/internal/intent"
)

// Per-intent result shapes as the analytics service returns them.

type forecastResult struct {
	Predictions    []float64 `json:"predictions"`
	Insights       []string  `json:"insights"`
	Confidence     float64   `json:"confidence"`
	HistoricalDays int       `json:"historical_days"`
}

type socialSummary struct {
	FollowersGain     float64 `json:"followers_gain"`
	TotalReach        float64 `json:"total_reach"`
	TotalViews        float64 `json:"total_views"`
	TotalLikes        float64 `json:"total_likes"`
	TotalComments     float64 `json:"total_comments"`
	TotalShares       float64 `json:"total_shares"`
	TotalSaves        float64 `json:"total_saves"`
	ReelsViews        float64 `json:"reels_views"`
	StoriesReach      float64 `json:"stories_reach"`
	AvgEngagementRate float64 `json:"avg_engagement_rate"`
}

type socialResult struct {
	Period  int           `json:"period"`
	Summary socialSummary `json:"summary"`
	Growth  struct {
		Followers string `json:"followers"`
		Reach     string `json:"reach"`
	} `json:"growth"`
}

type anomaly struct {
	Metric    string  `json:"metric"`
	Date      string  `json:"date"`
	Deviation float64 `json:"deviation"`
	Severity  string  `json:"severity"`
}

type anomalyResult struct {
	Anomalies []anomaly `json:"anomalies"`
	Insights  []string  `json:"insights"`
}

type dashboardResult struct {
	Period  string `json:"period"`
	Summary struct {
		TotalRevenue           float64 `json:"total_revenue"`
		TotalOrders            float64 `json:"total_orders"`
		TotalVisits            float64 `json:"total_visits"`
		AvgConversion          float64 `json:"avg_conversion"`
		InstagramFollowersGain float64 `json:"instagram_followers_gain"`
		TikTokViews            float64 `json:"tiktok_views"`
	} `json:"summary"`
}

type roiResult struct {
	Period  string `json:"period"`
	Metrics struct {
		TotalSpend   float64 `json:"total_spend"`
		TotalRevenue float64 `json:"total_revenue"`
		// The service emits these pre-rounded, sometimes as quoted strings.
		ROI  flexFloat `json:"roi"`
		ROAS flexFloat `json:"roas"`
		CAC  flexFloat `json:"cac"`
	} `json:"metrics"`
}

// flexFloat accepts both JSON numbers and quoted numeric strings.
type flexFloat float64

func (f *flexFloat) UnmarshalJSON(data []byte) error {
	trimmed := strings.Trim(string(data), `"`)
	if trimmed == "" || trimmed == "null" {
		*f = 0
		return nil
	}
	var v float64
	if err := json.Unmarshal([]byte(trimmed), &v); err != nil {
		return err
	}
	*f = flexFloat(v)
	return nil
}

type segmentationResult struct {
	Segments []struct {
		Name        string  `json:"name"`
		Count       int     `json:"count"`
		Revenue     float64 `json:"revenue"`
		Description string  `json:"description"`
	} `json:"segments"`
	Insights []string `json:"insights"`
}

type churnResult struct {
	Predictions []struct {
		CustomerName     string  `json:"customer_name"`
		ChurnProbability float64 `json:"churn_probability"`
		Reason           string  `json:"reason"`
	} `json:"predictions"`
	Insights []string `json:"insights"`
}

// FormatResponse renders an analytics result as a WhatsApp message in pt-BR.
// Decode failures degrade to the error message; this function never errors.
func FormatResponse(detected intent.Intent, raw json.RawMessage, clientName string) string {
	switch detected {
	case intent.SalesForecast:
		var r forecastResult
		if err := json.Unmarshal(raw, &r); err != nil || len(r.Predictions) == 0 {
			return FormatError(fmt.Errorf("sem previsões disponíveis"))
		}
		return formatSalesForecast(r, clientName)
	case intent.InstagramAnalysis:
		var r socialResult
		if err := json.Unmarshal(raw, &r); err != nil {
			return FormatError(fmt.Errorf("sem dados de Instagram"))
		}
		return formatInstagram(r, clientName)
	case intent.TikTokAnalysis:
		var r socialResult
		if err := json.Unmarshal(raw, &r); err != nil {
			return FormatError(fmt.Errorf("sem dados de TikTok"))
		}
		return formatTikTok(r, clientName)
	case intent.AnomalyDetection:
		var r anomalyResult
		if err := json.Unmarshal(raw, &r); err != nil {
			return FormatError(err)
		}
		return formatAnomalies(r, clientName)
	case intent.DashboardSummary:
		var r dashboardResult
		if err := json.Unmarshal(raw, &r); err != nil {
			return FormatError(fmt.Errorf("sem dados disponíveis"))
		}
		return formatDashboard(r, clientName)
	case intent.MarketingROI:
		var r roiResult
		if err := json.Unmarshal(raw, &r); err != nil {
			return FormatError(fmt.Errorf("sem dados de marketing"))
		}
		return formatROI(r, clientName)
	case intent.CustomerSegmentation:
		var r segmentationResult
		if err := json.Unmarshal(raw, &r); err != nil {
			return FormatError(err)
		}
		return formatSegmentation(r, clientName)
	case intent.ChurnPrediction:
		var r churnResult
		if err := json.Unmarshal(raw, &r); err != nil {
			return FormatError(err)
		}
		return formatChurn(r, clientName)
	}
	return FormatUnsupported(detected)
}

func formatSalesForecast(r forecastResult, clientName string) string {
	var total float64
	for _, p := range r.Predictions {
		total += p
	}
	avg := total / float64(len(r.Predictions))

	var b strings.Builder
	fmt.Fprintf(&b, "📊 *Previsão de Vendas - %s*\n\n", clientName)
	fmt.Fprintf(&b, "*Próximos %d dias:*\n", len(r.Predictions))
	fmt.Fprintf(&b, "💰 Total Previsto: R$ %s\n", brCurrency(total))
	fmt.Fprintf(&b, "📈 Média Diária: R$ %s\n", brCurrency(avg))
	fmt.Fprintf(&b, "🎯 Confiança: %.0f%%\n\n", r.Confidence*100)

	if len(r.Insights) > 0 {
		b.WriteString("*Insights Principais:*\n")
		for _, insight := range firstN(r.Insights, 3) {
			fmt.Fprintf(&b, "✅ %s\n", insight)
		}
	}

	days := r.HistoricalDays
	if days == 0 {
		days = 365
	}
	fmt.Fprintf(&b, "\n_Análise gerada por IA com base em %d dias de histórico._", days)
	return b.String()
}

func formatInstagram(r socialResult, clientName string) string {
	s := r.Summary

	var b strings.Builder
	fmt.Fprintf(&b, "📱 *Análise Instagram - %s*\n\n", clientName)
	fmt.Fprintf(&b, "*Últimos %d dias:*\n\n", r.Period)

	b.WriteString("*Audiência:*\n")
	fmt.Fprintf(&b, "👥 %s seguidores (%s%%)\n", signedNumber(s.FollowersGain), r.Growth.Followers)
	fmt.Fprintf(&b, "👀 %s alcance\n\n", brNumber(s.TotalReach))

	b.WriteString("*Engajamento:*\n")
	fmt.Fprintf(&b, "❤️ Taxa: %.1f%%\n", s.AvgEngagementRate*100)
	fmt.Fprintf(&b, "💬 %s comentários\n", brNumber(s.TotalComments))
	fmt.Fprintf(&b, "📤 %s compartilhamentos\n", brNumber(s.TotalShares))
	fmt.Fprintf(&b, "💾 %s salvamentos\n\n", brNumber(s.TotalSaves))

	b.WriteString("*Conteúdo:*\n")
	fmt.Fprintf(&b, "🎬 Reels: %s views\n", brNumber(s.ReelsViews))
	fmt.Fprintf(&b, "📖 Stories: %s alcance\n\n", brNumber(s.StoriesReach))

	b.WriteString("💡 *Recomendação:* Continue focando em Reels para maximizar alcance!")
	return b.String()
}

func formatTikTok(r socialResult, clientName string) string {
	s := r.Summary

	var b strings.Builder
	fmt.Fprintf(&b, "🎵 *Análise TikTok - %s*\n\n", clientName)
	fmt.Fprintf(&b, "*Últimos %d dias:*\n\n", r.Period)

	b.WriteString("*Performance:*\n")
	fmt.Fprintf(&b, "👀 %s visualizações\n", brNumber(s.TotalViews))
	fmt.Fprintf(&b, "❤️ %s curtidas\n", brNumber(s.TotalLikes))
	fmt.Fprintf(&b, "💬 %s comentários\n", brNumber(s.TotalComments))
	fmt.Fprintf(&b, "📤 %s compartilhamentos\n\n", brNumber(s.TotalShares))

	b.WriteString("*Crescimento:*\n")
	fmt.Fprintf(&b, "👥 %s seguidores\n", signedNumber(s.FollowersGain))
	fmt.Fprintf(&b, "📊 Taxa de Engajamento: %.1f%%\n\n", s.AvgEngagementRate*100)

	b.WriteString("💡 *Dica:* Poste nos horários de pico (12h e 19h) para mais alcance!")
	return b.String()
}

func formatAnomalies(r anomalyResult, clientName string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "🚨 *Detecção de Anomalias - %s*\n\n", clientName)

	if len(r.Anomalies) == 0 {
		b.WriteString("✅ Nenhuma anomalia detectada!\n")
		b.WriteString("Suas métricas estão dentro do esperado.\n\n")
		b.WriteString("Continue monitorando para manter a estabilidade.")
		return b.String()
	}

	b.WriteString("*Anomalias Identificadas:*\n\n")
	for i, a := range r.Anomalies {
		if i == 5 {
			break
		}
		metric := a.Metric
		if metric == "" {
			metric = "Métrica"
		}
		fmt.Fprintf(&b, "%d. *%s*\n", i+1, metric)
		if a.Date != "" {
			fmt.Fprintf(&b, "   📅 Data: %s\n", a.Date)
		}
		if a.Deviation != 0 {
			fmt.Fprintf(&b, "   📊 Variação: %.1f%%\n", a.Deviation)
		}
		if a.Severity != "" {
			fmt.Fprintf(&b, "   ⚠️ Severidade: %s\n", a.Severity)
		}
		b.WriteString("\n")
	}

	if len(r.Insights) > 0 {
		b.WriteString("*Possíveis Causas:*\n")
		for _, insight := range r.Insights {
			fmt.Fprintf(&b, "⚠️ %s\n", insight)
		}
	}
	return b.String()
}

func formatDashboard(r dashboardResult, clientName string) string {
	s := r.Summary

	var b strings.Builder
	fmt.Fprintf(&b, "📊 *Resumo Executivo - %s*\n\n", clientName)
	fmt.Fprintf(&b, "*Período: %s*\n\n", r.Period)

	b.WriteString("💰 *Vendas:*\n")
	fmt.Fprintf(&b, "• Total: R$ %s\n", brCurrency(s.TotalRevenue))
	fmt.Fprintf(&b, "• Pedidos: %s\n\n", brNumber(s.TotalOrders))

	b.WriteString("📈 *Tráfego:*\n")
	fmt.Fprintf(&b, "• Visitas: %s\n", brNumber(s.TotalVisits))
	fmt.Fprintf(&b, "• Conversão: %.2f%%\n\n", s.AvgConversion*100)

	b.WriteString("📱 *Social:*\n")
	fmt.Fprintf(&b, "• Instagram: %s seguidores\n", signedNumber(s.InstagramFollowersGain))
	fmt.Fprintf(&b, "• TikTok: %s views\n", brNumber(s.TikTokViews))
	return b.String()
}

func formatROI(r roiResult, clientName string) string {
	m := r.Metrics

	var b strings.Builder
	fmt.Fprintf(&b, "💵 *ROI de Marketing - %s*\n\n", clientName)
	fmt.Fprintf(&b, "*Período: %s*\n\n", r.Period)

	b.WriteString("*Investimento:*\n")
	fmt.Fprintf(&b, "• Gasto Total: R$ %s\n", brCurrency(m.TotalSpend))
	fmt.Fprintf(&b, "• Receita Gerada: R$ %s\n\n", brCurrency(m.TotalRevenue))

	b.WriteString("*Indicadores:*\n")
	fmt.Fprintf(&b, "📊 ROI: %.2f%%\n", m.ROI)
	fmt.Fprintf(&b, "💰 ROAS: %.2fx\n", m.ROAS)
	fmt.Fprintf(&b, "👤 CAC: R$ %s\n\n", brCurrency(float64(m.CAC)))

	switch {
	case m.ROI > 100:
		b.WriteString("✅ *Excelente!* Seu ROI está acima de 100%!")
	case m.ROI > 0:
		b.WriteString("👍 *Bom!* Você está lucrando, mas há espaço para otimização.")
	default:
		b.WriteString("⚠️ *Atenção!* Seu ROI está negativo. Revise suas campanhas.")
	}
	return b.String()
}

func formatSegmentation(r segmentationResult, clientName string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "👥 *Segmentação de Clientes - %s*\n\n", clientName)

	if len(r.Segments) == 0 {
		b.WriteString("Ainda não há dados suficientes para segmentação.\n")
		b.WriteString("Continue alimentando os dados de clientes!")
		return b.String()
	}

	b.WriteString("*Segmentos Identificados:*\n\n")
	for i, seg := range r.Segments {
		name := seg.Name
		if name == "" {
			name = fmt.Sprintf("Cluster %d", i+1)
		}
		fmt.Fprintf(&b, "%d. *%s*\n", i+1, name)
		if seg.Count > 0 {
			fmt.Fprintf(&b, "   👤 %d clientes\n", seg.Count)
		}
		if seg.Revenue > 0 {
			fmt.Fprintf(&b, "   💰 Ticket Médio: R$ %s\n", brCurrency(seg.Revenue))
		}
		if seg.Description != "" {
			fmt.Fprintf(&b, "   📝 %s\n", seg.Description)
		}
		b.WriteString("\n")
	}

	if len(r.Insights) > 0 {
		b.WriteString("*Recomendações:*\n")
		for _, insight := range r.Insights {
			fmt.Fprintf(&b, "💡 %s\n", insight)
		}
	}
	return b.String()
}

func formatChurn(r churnResult, clientName string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "⚠️ *Risco de Churn - %s*\n\n", clientName)

	if len(r.Predictions) == 0 {
		b.WriteString("✅ Nenhum cliente em risco alto identificado!\n")
		return b.String()
	}

	b.WriteString("*Clientes em Risco:*\n\n")
	for i, pred := range r.Predictions {
		if i == 5 {
			break
		}
		name := pred.CustomerName
		if name == "" {
			name = "Cliente"
		}
		fmt.Fprintf(&b, "%d. *%s*\n", i+1, name)
		fmt.Fprintf(&b, "   📊 Risco: %.0f%%\n", pred.ChurnProbability*100)
		if pred.Reason != "" {
			fmt.Fprintf(&b, "   📝 Motivo: %s\n", pred.Reason)
		}
		b.WriteString("\n")
	}

	if len(r.Insights) > 0 {
		b.WriteString("*Ações Recomendadas:*\n")
		for _, insight := range r.Insights {
			fmt.Fprintf(&b, "✅ %s\n", insight)
		}
	}
	return b.String()
}

// FormatAnomalyAlert renders a proactive anomaly alert. The second return
// reports whether any anomaly was found; callers skip quiet clients.
func FormatAnomalyAlert(raw json.RawMessage, clientName string) (string, bool) {
	var r anomalyResult
	if err := json.Unmarshal(raw, &r); err != nil || len(r.Anomalies) == 0 {
		return "", false
	}
	return "🚨 *Alerta Automático*\n\n" + formatAnomalies(r, clientName), true
}

// FormatWeeklySummary renders the Monday dashboard digest.
func FormatWeeklySummary(raw json.RawMessage, clientName string) string {
	var r dashboardResult
	if err := json.Unmarshal(raw, &r); err != nil {
		return FormatError(fmt.Errorf("sem dados disponíveis"))
	}
	if r.Period == "" {
		r.Period = "7 dias"
	}
	return fmt.Sprintf("📅 *Resumo Semanal - %s*\n\n%s", clientName, formatDashboard(r, clientName))
}

// FormatError renders an upstream failure as a friendly reply.
func FormatError(err error) string {
	var b strings.Builder
	b.WriteString("❌ *Ops! Algo deu errado*\n\n")

	msg := ""
	if err != nil {
		msg = err.Error()
	}

	switch {
	case strings.Contains(msg, "insuficiente"):
		b.WriteString("Você ainda não tem dados suficientes para esta análise.\n\n")
		b.WriteString("💡 Continue alimentando suas métricas e tente novamente em breve!")
	case strings.Contains(msg, "não encontrad"):
		b.WriteString("Não consegui localizar seus dados.\n\n")
		b.WriteString("Você já está cadastrado no sistema?")
	case strings.Contains(msg, "ml service") || strings.Contains(msg, "conexão"):
		b.WriteString("O serviço de análise está temporariamente indisponível.\n\n")
		b.WriteString("Por favor, tente novamente em alguns instantes.")
	default:
		b.WriteString("Tive um problema ao processar sua solicitação.\n\n")
		fmt.Fprintf(&b, "_Erro: %s_\n\n", msg)
		b.WriteString("Por favor, tente novamente em alguns instantes.")
	}
	return b.String()
}

// FormatUnsupported lists the available analyses for an unknown intent.
func FormatUnsupported(detected intent.Intent) string {
	return fmt.Sprintf("🤔 Desculpe, ainda não consigo fazer análise de \"%s\".\n\n", detected) +
		"*Análises disponíveis:*\n" +
		"• Previsão de vendas\n" +
		"• Análise de Instagram/TikTok\n" +
		"• Detecção de anomalias\n" +
		"• Resumo do dashboard\n" +
		"• ROI de marketing\n" +
		"• Segmentação de clientes\n" +
		"• Risco de churn\n\n" +
		"Experimente perguntar de outra forma!"
}

func firstN(items []string, n int) []string {
	if len(items) <= n {
		return items
	}
	return items[:n]
}

// brCurrency formats a value with pt-BR separators and two decimals.
func brCurrency(value float64) string {
	s := fmt.Sprintf("%.2f", value)
	parts := strings.SplitN(s, ".", 2)
	return groupThousands(parts[0]) + "," + parts[1]
}

// brNumber formats an integer quantity with pt-BR thousand separators.
func brNumber(value float64) string {
	return groupThousands(fmt.Sprintf("%.0f", value))
}

func signedNumber(value float64) string {
	if value > 0 {
		return "+" + brNumber(value)
	}
	return brNumber(value)
}

func groupThousands(digits string) string {
	neg := strings.HasPrefix(digits, "-")
	if neg {
		digits = digits[1:]
	}

	var b strings.Builder
	pre := len(digits) % 3
	if pre > 0 {
		b.WriteString(digits[:pre])
	}
	for i := pre; i < len(digits); i += 3 {
		if b.Len() > 0 {
			b.WriteByte('.')
		}
		b.WriteString(digits[i : i+3])
	}

	if neg {
		return "-" + b.String()
	}
	return b.String()
}
