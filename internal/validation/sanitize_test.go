package validation

import "testing"

func TestNormalizeQuery(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"", ""},
		{"  genome  ", "genome"},
		{"rna\t\tseq", "rna seq"},
		{"cancer\u200Bcohort", "cancercohort"},
		{"\uFEFFdiabetes", "diabetes"},
		{"肿瘤\u3000数据", "肿瘤 数据"},
		{"a\nb", "a b"},
	}
	for _, tt := range tests {
		if got := NormalizeQuery(tt.in); got != tt.want {
			t.Errorf("NormalizeQuery(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
