package analysis

import "testing"

func TestParseCoachingResult(t *testing.T) {
	raw := `{
		"sentiment": "positivo",
		"buying_stage": "Decisão",
		"suggested_strategy": "Reforçar prova social",
		"next_best_action": "Enviar proposta formal",
		"objections": ["preço alto"],
		"talking_points": ["desconto anual", "case de sucesso"]
	}`

	result, err := ParseCoachingResult(raw)
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}
	if result.Sentiment != "positivo" {
		t.Fatalf("unexpected sentiment: %q", result.Sentiment)
	}
	if result.BuyingStage != "Decisão" {
		t.Fatalf("unexpected buying stage: %q", result.BuyingStage)
	}
	if len(result.Objections) != 1 || result.Objections[0] != "preço alto" {
		t.Fatalf("unexpected objections: %v", result.Objections)
	}
	if len(result.TalkingPoints) != 2 {
		t.Fatalf("unexpected talking points: %v", result.TalkingPoints)
	}
}

func TestParseCoachingResult_MarkdownFence(t *testing.T) {
	raw := "```json\n{\"sentiment\": \"neutro\", \"buying_stage\": \"Curiosidade\"}\n```"

	result, err := ParseCoachingResult(raw)
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}
	if result.Sentiment != "neutro" || result.BuyingStage != "Curiosidade" {
		t.Fatalf("unexpected result: %+v", result)
	}
}

func TestParseCoachingResult_BareFence(t *testing.T) {
	raw := "```\n{\"sentiment\": \"negativo\", \"buying_stage\": \"Consideração\"}\n```"

	result, err := ParseCoachingResult(raw)
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}
	if result.BuyingStage != "Consideração" {
		t.Fatalf("unexpected buying stage: %q", result.BuyingStage)
	}
}

func TestParseCoachingResult_Errors(t *testing.T) {
	cases := []struct {
		name string
		raw  string
	}{
		{"not json", "o cliente parece interessado"},
		{"empty", ""},
		{"missing sentiment", `{"buying_stage": "Decisão"}`},
		{"missing buying stage", `{"sentiment": "positivo"}`},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := ParseCoachingResult(tc.raw); err == nil {
				t.Fatalf("expected error for %q", tc.raw)
			}
		})
	}
}
