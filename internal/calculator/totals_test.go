package calculator

import (
	"errors"
	"testing"

	"github.com/shopspring/decimal"
)

func TestCalculateTotals(t *testing.T) {
	tests := []struct {
		name         string
		lines        []Line
		wantErr      bool
		validateFunc func(t *testing.T, totals Totals)
	}{
		{
			name: "cash and deferred for one customer",
			lines: []Line{
				{Price: "100", PaymentType: "cash"},
				{Price: "50", PaymentType: "deferred"},
			},
			validateFunc: func(t *testing.T, totals Totals) {
				if got := totals.CashLabel(); got != "Total Cash Amount: PKR 100.00" {
					t.Errorf("CashLabel() = %q, want %q", got, "Total Cash Amount: PKR 100.00")
				}
				if got := totals.GrandLabel(); got != "Total Amount: PKR 150.00" {
					t.Errorf("GrandLabel() = %q, want %q", got, "Total Amount: PKR 150.00")
				}
			},
		},
		{
			name: "other payment types count in neither total",
			lines: []Line{
				{Price: "10.50", PaymentType: "cash"},
				{Price: "99", PaymentType: ""},
				{Price: "1", PaymentType: "card"},
			},
			validateFunc: func(t *testing.T, totals Totals) {
				if !totals.Cash.Equal(decimal.RequireFromString("10.5")) {
					t.Errorf("Cash = %s, want 10.5", totals.Cash)
				}
				if !totals.Grand.Equal(decimal.RequireFromString("10.5")) {
					t.Errorf("Grand = %s, want 10.5", totals.Grand)
				}
				if !totals.Excluded.Equal(decimal.NewFromInt(100)) {
					t.Errorf("Excluded = %s, want 100", totals.Excluded)
				}
				if totals.OtherCount != 2 {
					t.Errorf("OtherCount = %d, want 2", totals.OtherCount)
				}
			},
		},
		{
			name:  "no lines gives zero totals",
			lines: nil,
			validateFunc: func(t *testing.T, totals Totals) {
				if got := totals.CashLabel(); got != "Total Cash Amount: PKR 0.00" {
					t.Errorf("CashLabel() = %q", got)
				}
				if got := totals.GrandLabel(); got != "Total Amount: PKR 0.00" {
					t.Errorf("GrandLabel() = %q", got)
				}
			},
		},
		{
			name: "decimal amounts do not drift",
			lines: []Line{
				{Price: "0.1", PaymentType: "cash"},
				{Price: "0.2", PaymentType: "cash"},
			},
			validateFunc: func(t *testing.T, totals Totals) {
				if !totals.Cash.Equal(decimal.RequireFromString("0.3")) {
					t.Errorf("Cash = %s, want 0.3", totals.Cash)
				}
			},
		},
		{
			name:    "malformed price is a parse error",
			lines:   []Line{{Price: "ten", PaymentType: "cash"}},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			totals, err := CalculateTotals(tt.lines)
			if (err != nil) != tt.wantErr {
				t.Errorf("CalculateTotals() error = %v, wantErr %v", err, tt.wantErr)
				return
			}
			if !tt.wantErr && tt.validateFunc != nil {
				tt.validateFunc(t, totals)
			}
		})
	}
}

func TestParsePrice(t *testing.T) {
	tests := []struct {
		input   string
		want    string
		wantErr bool
	}{
		{"10", "10", false},
		{" 12.345 ", "12.345", false},
		{"0", "0", false},
		{"", "", true},
		{"   ", "", true},
		{"abc", "", true},
		{"-5", "", true},
		{"7.", "7", false},
		{".5", "0.5", false},
		{"1e3", "", true},
		{"1e2147483647", "", true},
		{"1e-2147483648", "", true},
		{"+5", "", true},
		{"1.2.3", "", true},
		{"123456789012345678901234", "123456789012345678901234", false},
		{"1234567890123456789012345", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParsePrice(tt.input)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParsePrice(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
			if tt.wantErr {
				var parseErr *ParseError
				if !errors.As(err, &parseErr) {
					t.Errorf("expected *ParseError, got %T", err)
				}
				return
			}
			if !got.Equal(decimal.RequireFromString(tt.want)) {
				t.Errorf("ParsePrice(%q) = %s, want %s", tt.input, got, tt.want)
			}
		})
	}
}

func TestFormatAmount(t *testing.T) {
	tests := []struct {
		amount decimal.Decimal
		want   string
	}{
		{decimal.NewFromInt(150), "PKR 150.00"},
		{decimal.RequireFromString("1234567.5"), "PKR 1234567.50"},
		{decimal.RequireFromString("0.005"), "PKR 0.01"},
	}

	for _, tt := range tests {
		if got := FormatAmount(tt.amount); got != tt.want {
			t.Errorf("FormatAmount(%s) = %q, want %q", tt.amount, got, tt.want)
		}
	}
}
