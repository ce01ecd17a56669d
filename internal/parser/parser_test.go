package parser

import (
	"testing"

	"github.com/settings-generator/backend/internal/models"
)

func TestInferType(t *testing.T) {
	tests := []struct {
		input    string
		expected models.ColumnType
	}{
		{"true", models.ColumnTypeBool},
		{"false", models.ColumnTypeBool},
		{"True", models.ColumnTypeBool},
		{"False", models.ColumnTypeBool},
		{"0", models.ColumnTypeBool},
		{"1", models.ColumnTypeBool},
		{"TRUE", models.ColumnTypeString},
		{" true", models.ColumnTypeString},
		{"yes", models.ColumnTypeString},
		{" 1", models.ColumnTypeInt},
		{"42", models.ColumnTypeInt},
		{"-7", models.ColumnTypeInt},
		{"+7", models.ColumnTypeInt},
		{"3.14", models.ColumnTypeInt},
		{".5", models.ColumnTypeInt},
		{"5.", models.ColumnTypeInt},
		{"1e5", models.ColumnTypeInt},
		{"2.5E-3", models.ColumnTypeInt},
		{"  12  ", models.ColumnTypeInt},
		{"0x1F", models.ColumnTypeInt},
		{"0b101", models.ColumnTypeInt},
		{"0o17", models.ColumnTypeInt},
		{"00", models.ColumnTypeInt},
		{"", models.ColumnTypeString},
		{"   ", models.ColumnTypeString},
		{"hello", models.ColumnTypeString},
		{"Infinity", models.ColumnTypeString},
		{"NaN", models.ColumnTypeString},
		{"1e400", models.ColumnTypeString},
		{"1_000", models.ColumnTypeString},
		{"1,000", models.ColumnTypeString},
		{"-0x10", models.ColumnTypeString},
		{"0x", models.ColumnTypeString},
		{"0xG1", models.ColumnTypeString},
		{".", models.ColumnTypeString},
		{"1e", models.ColumnTypeString},
		{"--1", models.ColumnTypeString},
		{"12abc", models.ColumnTypeString},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got := InferType(tt.input)
			if got != tt.expected {
				t.Errorf("InferType(%q) = %v, want %v", tt.input, got, tt.expected)
			}
		})
	}
}

func TestBooleanTakesPrecedence(t *testing.T) {
	for _, v := range []string{"0", "1"} {
		if !IsNumeric(v) {
			t.Fatalf("IsNumeric(%q) should be true", v)
		}
		if got := InferType(v); got != models.ColumnTypeBool {
			t.Errorf("InferType(%q) = %v, want bool", v, got)
		}
	}
}

func TestIsBoolean(t *testing.T) {
	for _, v := range []string{"true", "false", "True", "False", "0", "1"} {
		if !IsBoolean(v) {
			t.Errorf("IsBoolean(%q) = false, want true", v)
		}
	}
	for _, v := range []string{"TRUE", "FALSE", "on", "yes", "01", "1.0", ""} {
		if IsBoolean(v) {
			t.Errorf("IsBoolean(%q) = true, want false", v)
		}
	}
}
