package identity

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"mw_harvester/models"
)

func TestNormalizeText(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{in: "  Area 47, Sector 3  ", want: "area 47 sector 3"},
		{in: "Off Chilambula Road", want: "off chilambula rd"},
		{in: "Roadside plot", want: "roadside plt"},
		{in: "", want: ""},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, NormalizeText(tt.in))
		})
	}
}

func TestFingerprint(t *testing.T) {
	a := models.NewPropertyRecord("atsogo", "https://atsogo.mw/listings/properties")
	a.Title = "Plot for sale, Area 49"
	a.Location = "AREA 49, LILONGWE"
	a.Price = "25000000"

	b := a
	b.URL = "https://atsogo.mw/listings/properties?page=4"
	b.Title = "plot for sale area 49"

	c := a
	c.Price = "24000000"

	assert.Len(t, Fingerprint(a), 32)
	assert.Equal(t, Fingerprint(a), Fingerprint(b))
	assert.NotEqual(t, Fingerprint(a), Fingerprint(c))
}
