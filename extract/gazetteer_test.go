package extract

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGazetteer_Locate(t *testing.T) {
	upper, err := LookupGazetteer("districts_upper", false)
	require.NoError(t, err)
	places, err := LookupGazetteer("places", true)
	require.NoError(t, err)

	tests := []struct {
		name string
		g    *Gazetteer
		text string
		want string
	}{
		{name: "full line kept", g: upper, text: "Plot\nFor Sale\nAREA 49, LILONGWE\nMK 20,000,000", want: "AREA 49, LILONGWE"},
		{name: "case sensitive miss", g: upper, text: "nice plot in lilongwe", want: ""},
		{name: "single line span stops at comma", g: places, text: "Nice house in limbe, near market", want: "limbe"},
		{name: "multi line case insensitive", g: places, text: "House\nlocated in Area 10, Lilongwe", want: "located in Area 10, Lilongwe"},
		{name: "no place", g: places, text: "Great investment", want: ""},
		{name: "nil gazetteer", g: nil, text: "Blantyre", want: ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.g.Locate(tt.text))
		})
	}
}

func TestLookupGazetteer_Unknown(t *testing.T) {
	_, err := LookupGazetteer("atlantis", true)
	assert.Error(t, err)
}
