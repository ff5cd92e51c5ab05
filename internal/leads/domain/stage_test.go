package domain

import "testing"

func TestEvaluateStage(t *testing.T) {
	cases := []struct {
		name        string
		current     Status
		buyingStage string
		monotonic   bool
		want        Decision
	}{
		{
			name:        "new lead moves to contacted on curiosity",
			current:     StatusNew,
			buyingStage: "Curiosidade",
			want:        Decision{Target: StatusContacted, Transition: true},
		},
		{
			name:        "consideration qualifies",
			current:     StatusContacted,
			buyingStage: "Consideração",
			want:        Decision{Target: StatusQualified, Transition: true},
		},
		{
			name:        "decision moves to negotiation",
			current:     StatusQualified,
			buyingStage: "Decisão",
			want:        Decision{Target: StatusNegotiation, Transition: true},
		},
		{
			name:        "purchase closes",
			current:     StatusNegotiation,
			buyingStage: "Compra",
			want:        Decision{Target: StatusClosed, Transition: true},
		},
		{
			name:        "unknown label is a no-op",
			current:     StatusNew,
			buyingStage: "Indeciso",
			want:        Decision{},
		},
		{
			name:        "empty label is a no-op",
			current:     StatusQualified,
			buyingStage: "",
			want:        Decision{},
		},
		{
			name:        "same target is a no-op",
			current:     StatusQualified,
			buyingStage: "Consideração",
			want:        Decision{},
		},
		{
			name:        "closed lead never moves",
			current:     StatusClosed,
			buyingStage: "Curiosidade",
			want:        Decision{},
		},
		{
			name:        "won lead never moves",
			current:     StatusWon,
			buyingStage: "Compra",
			want:        Decision{},
		},
		{
			name:        "latest wins allows regression by default",
			current:     StatusNegotiation,
			buyingStage: "Curiosidade",
			want:        Decision{Target: StatusContacted, Transition: true},
		},
		{
			name:        "monotonic blocks regression",
			current:     StatusNegotiation,
			buyingStage: "Curiosidade",
			monotonic:   true,
			want:        Decision{},
		},
		{
			name:        "monotonic allows forward move",
			current:     StatusContacted,
			buyingStage: "Decisão",
			monotonic:   true,
			want:        Decision{Target: StatusNegotiation, Transition: true},
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := EvaluateStage(tc.current, tc.buyingStage, tc.monotonic)
			if got != tc.want {
				t.Fatalf("expected %+v, got %+v", tc.want, got)
			}
		})
	}
}

func TestIsTerminal(t *testing.T) {
	for _, s := range []Status{StatusNew, StatusContacted, StatusQualified, StatusNegotiation} {
		if s.IsTerminal() {
			t.Fatalf("%s should not be terminal", s)
		}
	}
	for _, s := range []Status{StatusClosed, StatusWon} {
		if !s.IsTerminal() {
			t.Fatalf("%s should be terminal", s)
		}
	}
}
