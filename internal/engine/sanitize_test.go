package engine

import "testing"

func TestSanitize(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{name: "whitespace", in: " 2 +\t2\n", want: "2+2"},
		{name: "power", in: "2^3", want: "2**3"},
		{name: "percent", in: "50%", want: "(50/100)"},
		{name: "decimal percent", in: "12.5%+.5%", want: "(12.5/100)+(.5/100)"},
		{name: "percent after paren kept", in: "(3+2)%", want: "(3+2)%"},
		{name: "stray characters dropped", in: "2+2;alert`x`", want: "2+2alertx"},
		{name: "non ascii letters dropped", in: "π×2", want: "2"},
		{name: "functions kept", in: "sin(30) + Ans", want: "sin(30)+Ans"},
		{name: "empty", in: "   ", want: ""},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := Sanitize(tc.in); got != tc.want {
				t.Fatalf("Sanitize(%q): expected %q, got %q", tc.in, tc.want, got)
			}
		})
	}
}

func TestSanitizeIsIdempotent(t *testing.T) {
	inputs := []string{
		"2+2",
		"3 ^ 2 ^ 2",
		"50% + 12.5%",
		"5%%",
		"(3+2)%",
		"sqrt(16)*PI - Ans",
		"1e+21 / 7",
		"$$ 9 !! 8",
	}

	for _, in := range inputs {
		once := Sanitize(in)
		twice := Sanitize(once)
		if once != twice {
			t.Fatalf("Sanitize not idempotent for %q: %q then %q", in, once, twice)
		}
	}
}
