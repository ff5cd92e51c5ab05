package scoring

import (
	"testing"

	"elite_crm_backend/internal/leads/domain"
	"elite_crm_backend/internal/leads/repository"
)

func strPtr(s string) *string { return &s }

func TestScore(t *testing.T) {
	cases := []struct {
		name         string
		lead         repository.Lead
		userMessages int
		want         int
	}{
		{
			name: "bare lead with phone only",
			lead: repository.Lead{Phone: "+5511999998888", Status: domain.StatusNew},
			want: 10,
		},
		{
			name: "complete profile",
			lead: repository.Lead{
				Phone:   "+5511999998888",
				Email:   strPtr("maria@loja.com.br"),
				Company: strPtr("Loja da Maria"),
				Status:  domain.StatusNew,
			},
			want: 20,
		},
		{
			name: "high value adds bonus",
			lead: repository.Lead{
				Phone:  "+5511999998888",
				Value:  10000,
				Status: domain.StatusNew,
			},
			want: 20,
		},
		{
			name: "value at threshold does not count",
			lead: repository.Lead{
				Phone:  "+5511999998888",
				Value:  5000,
				Status: domain.StatusNew,
			},
			want: 10,
		},
		{
			name:         "every user message is worth two points",
			lead:         repository.Lead{Phone: "+5511999998888", Status: domain.StatusNew},
			userMessages: 7,
			want:         24,
		},
		{
			name: "qualified bonus",
			lead: repository.Lead{Phone: "+5511999998888", Status: domain.StatusQualified},
			want: 30,
		},
		{
			name: "negotiation bonus",
			lead: repository.Lead{Phone: "+5511999998888", Status: domain.StatusNegotiation},
			want: 50,
		},
		{
			name: "empty optional strings score nothing",
			lead: repository.Lead{
				Phone:   "+5511999998888",
				Email:   strPtr(""),
				Company: strPtr(""),
				Status:  domain.StatusNew,
			},
			want: 10,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := Score(tc.lead, tc.userMessages); got != tc.want {
				t.Fatalf("Score() = %d, want %d", got, tc.want)
			}
		})
	}
}
