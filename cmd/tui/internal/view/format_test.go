package view

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestParseAmount(t *testing.T) {
	type testCase struct {
		name    string
		input   string
		want    string
		wantErr bool
	}

	tests := []testCase{
		{name: "Plain", input: "1250", want: "1250"},
		{name: "CommaDecimal", input: " 12,50 ", want: "12.5"},
		{name: "Empty", input: "", wantErr: true},
		{name: "Negative", input: "-3", wantErr: true},
		{name: "Garbage", input: "ten", wantErr: true},
		{name: "SubCent", input: "0,004", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := parseAmount(tt.input)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}

			assert.NoError(t, err)
			assert.True(t, decimal.RequireFromString(tt.want).Equal(got), got.String())
		})
	}
}

func TestFormatAmount(t *testing.T) {
	assert.Equal(t, "6500.00", FormatAmount(decimal.NewFromInt(6500)))
	assert.Equal(t, "-0.50", FormatAmount(decimal.RequireFromString("-0.5")))
}
