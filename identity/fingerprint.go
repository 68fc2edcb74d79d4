package identity

import (
	"crypto/sha256"
	"encoding/hex"
	"regexp"
	"strings"

	"mw_harvester/models"
)

var (
	wordReplacements = map[string]string{
		"street":    "st",
		"avenue":    "ave",
		"drive":     "dr",
		"road":      "rd",
		"close":     "cl",
		"crescent":  "cres",
		"highway":   "hwy",
		"township":  "twp",
		"location":  "loc",
		"plot":      "plt",
		"number":    "no",
		"north":     "n",
		"south":     "s",
		"east":      "e",
		"west":      "w",
		"apartment": "apt",
		"building":  "bldg",
	}
	multiSpaceRegex = regexp.MustCompile(`\s+`)
	nonAlnumRegex   = regexp.MustCompile(`[^a-z0-9\s]`)
)

// Fingerprint identifies a listing across runs. Records share no stable id,
// so the hash covers the fields a source prints for every listing; the page
// URL is left out because a listing moves between pages.
func Fingerprint(r models.PropertyRecord) string {
	input := strings.Join([]string{
		r.Source,
		NormalizeText(r.Title),
		NormalizeText(r.Location),
		r.Price,
		r.Bedrooms,
		r.Bathrooms,
		r.AreaSqm,
		strings.ToLower(string(r.PropertyType)),
		strings.ToLower(string(r.TransactionType)),
	}, "|")
	hash := sha256.Sum256([]byte(input))
	return hex.EncodeToString(hash[:16])
}

// NormalizeText lowercases, strips punctuation and abbreviates common
// address words so cosmetic edits keep the same fingerprint.
func NormalizeText(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	s = nonAlnumRegex.ReplaceAllString(s, " ")
	words := strings.Fields(multiSpaceRegex.ReplaceAllString(s, " "))
	for i, w := range words {
		if abbrev, ok := wordReplacements[w]; ok {
			words[i] = abbrev
		}
	}
	return strings.Join(words, " ")
}
