package pipeline

import "testing"

func TestIsBlockPage(t *testing.T) {
	cases := []struct {
		name string
		html string
		want bool
	}{
		{"cloudflare interstitial", "<html><title>Just a moment...</title></html>", true},
		{"human check", "<body><h1>Verify you are human</h1></body>", true},
		{"normal posting", "<html><h1>Backend Engineer</h1><div class=\"company\">Acme</div></html>", false},
		{"empty", "", false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := IsBlockPage(tc.html); got != tc.want {
				t.Fatalf("IsBlockPage = %v, want %v", got, tc.want)
			}
		})
	}
}
