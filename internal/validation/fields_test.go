package validation

import (
	"errors"
	"strings"
	"testing"
)

func TestSearchQuery(t *testing.T) {
	tests := []struct {
		name    string
		value   string
		wantErr bool
	}{
		{"empty allowed", "", false},
		{"normal", "genome study", false},
		{"unicode", "基因组", false},
		{"exactly max", strings.Repeat("a", 100), false},
		{"too long", strings.Repeat("a", 101), true},
		{"null byte", "abc\x00", true},
		{"newline", "a\nb", true},
	}
	v := SearchQuery()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := v.Validate(tt.value)
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate(%q) error = %v, wantErr %v", tt.value, err, tt.wantErr)
			}
		})
	}
}

func TestRequiredAndChain(t *testing.T) {
	v := Chain(Required(), MaxLength(3))
	if err := v.Validate("  "); !errors.Is(err, ErrRequired) {
		t.Errorf("blank = %v, want ErrRequired", err)
	}
	if err := v.Validate("abcd"); err == nil {
		t.Error("expected length error")
	}
	if err := v.Validate("abc"); err != nil {
		t.Errorf("valid value rejected: %v", err)
	}
}

func TestPhone(t *testing.T) {
	for _, ok := range []string{"13800138000", " 19912345678 "} {
		if err := Phone().Validate(ok); err != nil {
			t.Errorf("Phone(%q) = %v", ok, err)
		}
	}
	for _, bad := range []string{"", "12800138000", "1380013800", "phone"} {
		if err := Phone().Validate(bad); err == nil {
			t.Errorf("Phone(%q) accepted", bad)
		}
	}
}
