package phone

import "testing"

func TestNormalizeE164(t *testing.T) {
	cases := []struct {
		name  string
		input string
		want  string
	}{
		{"bare digits with country code", "5511999998888", "+5511999998888"},
		{"already e164", "+5511999998888", "+5511999998888"},
		{"national format", "11 99999-8888", "+5511999998888"},
		{"with punctuation", "(11) 99999-8888", "+5511999998888"},
		{"foreign e164 kept", "+14155552671", "+14155552671"},
		{"empty", "", ""},
		{"whitespace only", "   ", ""},
		{"unparseable kept as is", "not-a-number", "not-a-number"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := NormalizeE164(tc.input); got != tc.want {
				t.Fatalf("NormalizeE164(%q) = %q, want %q", tc.input, got, tc.want)
			}
		})
	}
}

func TestDigits(t *testing.T) {
	if got := Digits("+55 (11) 99999-8888"); got != "5511999998888" {
		t.Fatalf("unexpected digits: %q", got)
	}
	if got := Digits("abc"); got != "" {
		t.Fatalf("expected empty, got %q", got)
	}
}

func TestGatewayNumber(t *testing.T) {
	cases := []struct {
		name  string
		input string
		want  string
	}{
		{"e164 loses the plus", "+5511999998888", "5511999998888"},
		{"bare digits pass through", "5511999998888", "5511999998888"},
		{"local number gains country code", "11999998888", "5511999998888"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := GatewayNumber(tc.input); got != tc.want {
				t.Fatalf("GatewayNumber(%q) = %q, want %q", tc.input, got, tc.want)
			}
		})
	}
}
