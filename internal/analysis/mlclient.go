package analysis

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"elite_crm_backend/internal/intent"
	"elite_crm_backend/platform/apperr"
	"elite_crm_backend/platform/config"
	"elite_crm_backend/platform/logger"
)

const analysisTimeout = 30 * time.Second

// endpointByIntent maps each classifiable intent to its analysis route.
var endpointByIntent = map[intent.Intent]string{
	intent.SalesForecast:        "/analysis/sales-forecast",
	intent.ChurnPrediction:      "/analysis/churn-prediction",
	intent.InstagramAnalysis:    "/analysis/instagram",
	intent.TikTokAnalysis:       "/analysis/tiktok",
	intent.MarketingROI:         "/analysis/marketing-roi",
	intent.AnomalyDetection:     "/analysis/anomaly-detection",
	intent.CustomerSegmentation: "/analysis/customer-segmentation",
	intent.DashboardSummary:     "/analysis/dashboard-summary",
}

// AnalyzeRequest carries one intent-matched analytics request upstream.
type AnalyzeRequest struct {
	Intent   intent.Intent
	ClientID string
	Params   intent.Parameters
}

type analyzePayload struct {
	ClientID     string `json:"client_id"`
	AnalysisType string `json:"analysis_type"`
	TimeHorizon  int    `json:"time_horizon,omitempty"`
	HistoryDays  int    `json:"history_days,omitempty"`
	Period       int    `json:"period,omitempty"`
}

type mlError struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

// MLClient talks to the analytics service. Responses are returned raw; the
// formatter decodes them per intent.
type MLClient struct {
	baseURL string
	apiKey  string
	http    *http.Client
	log     *logger.Logger
}

func NewMLClient(cfg config.MLConfig, log *logger.Logger) *MLClient {
	if cfg.GetMLServiceURL() == "" {
		return nil
	}
	return &MLClient{
		baseURL: strings.TrimRight(cfg.GetMLServiceURL(), "/"),
		apiKey:  cfg.GetMLAPIKey(),
		http:    &http.Client{Timeout: analysisTimeout},
		log:     log,
	}
}

// Analyze runs one analytics request and returns the raw JSON result.
func (c *MLClient) Analyze(ctx context.Context, req AnalyzeRequest) (json.RawMessage, error) {
	endpoint, ok := endpointByIntent[req.Intent]
	if !ok {
		return nil, apperr.InvalidPayload(fmt.Sprintf("no analysis endpoint for intent %q", req.Intent))
	}

	body, err := json.Marshal(analyzePayload{
		ClientID:     req.ClientID,
		AnalysisType: string(req.Intent),
		TimeHorizon:  req.Params.Days,
		HistoryDays:  req.Params.HistoryDays,
		Period:       req.Params.Period,
	})
	if err != nil {
		return nil, err
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	httpReq.Header.Set("Content-Type", "application/json")
	if c.apiKey != "" {
		httpReq.Header.Set("X-API-Key", c.apiKey)
	}

	resp, err := c.http.Do(httpReq)
	if err != nil {
		c.log.UpstreamError("ml-service", endpoint, err)
		return nil, apperr.Unavailable("ml service unreachable", err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, apperr.Unavailable("ml service response truncated", err)
	}

	if resp.StatusCode >= http.StatusBadRequest {
		var e mlError
		detail := strings.TrimSpace(string(data))
		if json.Unmarshal(data, &e) == nil {
			if e.Message != "" {
				detail = e.Message
			} else if e.Error != "" {
				detail = e.Error
			}
		}
		return nil, apperr.Unavailable(
			fmt.Sprintf("ml service returned %d: %s", resp.StatusCode, detail), nil)
	}

	return json.RawMessage(data), nil
}
