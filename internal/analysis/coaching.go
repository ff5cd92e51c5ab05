package analysis

import (
	"encoding/json"
	"strings"

	"elite_crm_backend/platform/apperr"
)

// CoachingResult is the structured output of one coaching analysis.
type CoachingResult struct {
	Sentiment         string   `json:"sentiment"`
	BuyingStage       string   `json:"buying_stage"`
	SuggestedStrategy string   `json:"suggested_strategy"`
	NextBestAction    string   `json:"next_best_action"`
	Objections        []string `json:"objections,omitempty"`
	TalkingPoints     []string `json:"talking_points,omitempty"`
}

// ParseCoachingResult decodes a model completion. Models occasionally wrap
// JSON in a markdown fence even in JSON mode, so fences are stripped first.
func ParseCoachingResult(raw string) (CoachingResult, error) {
	cleaned := stripFences(raw)

	var result CoachingResult
	if err := json.Unmarshal([]byte(cleaned), &result); err != nil {
		return CoachingResult{}, apperr.ParseFailure("coaching completion is not valid JSON", err)
	}

	if result.Sentiment == "" || result.BuyingStage == "" {
		return CoachingResult{}, apperr.ParseFailure("coaching completion missing required fields", nil)
	}
	return result, nil
}

func stripFences(raw string) string {
	s := strings.TrimSpace(raw)
	if !strings.HasPrefix(s, "```") {
		return s
	}

	s = strings.TrimPrefix(s, "```json")
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	return strings.TrimSpace(s)
}
