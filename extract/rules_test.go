package extract

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDefaultPatterns_Price(t *testing.T) {
	table := DefaultPatterns()
	tests := []struct {
		name string
		text string
		want string
	}{
		{name: "mk prefix", text: "Price: MK 45,000,000 negotiable", want: "45000000"},
		{name: "mwk prefix", text: "MWK250,000 per month", want: "250000"},
		{name: "mk suffix", text: "Asking 12,500,000 MK", want: "12500000"},
		{name: "usd", text: "USD 1,200", want: "1200"},
		{name: "dollar", text: "$500 per month", want: "500"},
		{name: "prefix wins over later forms", text: "MK 5,000 or USD 40", want: "5000"},
		{name: "currency prefix beats bare number", text: "MK 12,345.00 total 99", want: "12345.00"},
		{name: "no currency", text: "Spacious plot near the lake", want: ""},
		{name: "empty", text: "", want: ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, NormalizePrice(table.First(FieldPrice, tt.text)))
		})
	}
}

func TestDefaultPatterns_AreaRoomsDate(t *testing.T) {
	table := DefaultPatterns()

	assert.Equal(t, "120", table.First(FieldArea, "Plot of 120 sqm"))
	assert.Equal(t, "450", table.First(FieldArea, "450 m² fenced"))
	assert.Equal(t, "2", table.First(FieldArea, "2 hectares of farmland"))
	assert.Equal(t, "3", table.First(FieldBedrooms, "3 bedrooms, 2 bathrooms"))
	assert.Equal(t, "2", table.First(FieldBathrooms, "3 bedrooms, 2 bathrooms"))
	assert.Equal(t, "1", table.First(FieldBathrooms, "4 beds 1 shower"))
	assert.Equal(t, "2024-05-01 10:20:30", table.First(FieldDate, "Posted 2024-05-01 10:20:30 by agent"))
	assert.Empty(t, table.First(FieldDate, "Posted yesterday"))
}

func TestPatternTable_MatchBedBath(t *testing.T) {
	table := DefaultPatterns()

	assert.Equal(t, []string{"3", "2"}, table.Match(FieldBedBath, "LILONGWE\n3 2 Bathroom"))
	assert.Nil(t, table.Match(FieldBedBath, "3 bedrooms 2 bathroom"))
}

func TestPatternTable_RulesIsCopy(t *testing.T) {
	table := NewPatternTable(NewRule(FieldPrice, "a", `A(\d+)`), NewRule(FieldPrice, "b", `B(\d+)`))

	rules := table.Rules(FieldPrice)
	assert.Len(t, rules, 2)
	assert.Equal(t, "a", rules[0].Name)

	rules[0] = NewRule(FieldPrice, "z", `Z(\d+)`)
	assert.Equal(t, "7", table.First(FieldPrice, "A7 B8"))
}
