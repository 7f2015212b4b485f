package tools

import (
	"errors"
	"math"
	"testing"
)

func TestArgs_Int(t *testing.T) {
	args := Args{"whole": float64(20), "frac": 2.5, "str": "7", "bad": "x", "null": nil, "bool": true,
		"huge": 1e20, "tiny": -1e20, "inf": math.Inf(1)}

	tests := []struct {
		key     string
		want    int
		wantErr bool
	}{
		{"whole", 20, false},
		{"str", 7, false},
		{"missing", 99, false},
		{"null", 99, false},
		{"frac", 0, true},
		{"bad", 0, true},
		{"bool", 0, true},
		{"huge", 0, true},
		{"tiny", 0, true},
		{"inf", 0, true},
	}
	for _, tt := range tests {
		got, err := args.Int(tt.key, 99)
		if (err != nil) != tt.wantErr {
			t.Errorf("Int(%q) error = %v, wantErr %v", tt.key, err, tt.wantErr)
			continue
		}
		var ia *InvalidArgumentError
		if err != nil && !errors.As(err, &ia) {
			t.Errorf("Int(%q) error type = %T", tt.key, err)
		}
		if got != tt.want {
			t.Errorf("Int(%q) = %d, want %d", tt.key, got, tt.want)
		}
	}
}

func TestArgs_StringAndOptionalInt(t *testing.T) {
	args := Args{"s": "v", "n": float64(3), "wrong": 1.0}

	if got, _ := args.String("s", "d"); got != "v" {
		t.Errorf("String(s) = %q", got)
	}
	if got, _ := args.String("absent", "d"); got != "d" {
		t.Errorf("String(absent) = %q", got)
	}
	if _, err := args.String("wrong", ""); err == nil {
		t.Error("expected type error for non-string")
	}

	if n, ok, err := args.OptionalInt("n"); err != nil || !ok || n != 3 {
		t.Errorf("OptionalInt(n) = %d, %v, %v", n, ok, err)
	}
	if _, ok, err := args.OptionalInt("absent"); err != nil || ok {
		t.Errorf("OptionalInt(absent) = %v, %v", ok, err)
	}
}

func TestClamp(t *testing.T) {
	if clamp(0, 1, 100) != 1 || clamp(500, 1, 100) != 100 || clamp(42, 1, 100) != 42 {
		t.Error("clamp out of bounds")
	}
}
