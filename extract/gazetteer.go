package extract

import (
	"fmt"
	"regexp"
	"strings"
)

// DistrictsUpper is the uppercase district vocabulary some sources print verbatim.
var DistrictsUpper = []string{
	"LILONGWE", "BLANTYRE", "SALIMA", "NKHOTAKOTA", "MZIMBA", "MZUZU", "ZOMBA",
	"THYOLO", "RUMPHI", "NENO", "NKHATABAY", "NTCHISI", "NTCHEU", "NSANJE",
	"MCHINJI", "MULANJE", "MANGOCHI", "MACHINGA", "LIWONDE", "KARONGA", "KASUNGU",
	"DOWA", "DEDZA", "CHIRADZULU", "CHIKWAWA", "CHITIPA", "BALAKA",
}

// Places is the mixed-case town list, matched case-insensitively.
var Places = []string{
	"Blantyre", "Lilongwe", "Mzuzu", "Zomba", "Limbe", "Mangochi", "Salima",
	"Nkhotakota", "Mchinji", "Dowa", "Dedza", "Ntcheu", "Ntchisi", "Nkhatabay",
	"Rumphi", "Chitipa", "Karonga", "Kasungu", "Machinga", "Mulanje", "Thyolo",
	"Chikwawa", "Nsanje", "Chirazulu", "Balaka", "Neno",
}

var gazetteers = map[string][]string{
	"districts_upper": DistrictsUpper,
	"places":          Places,
}

// Gazetteer matches known place names and expands a hit to its line.
type Gazetteer struct {
	Names           []string
	CaseInsensitive bool
	re              *regexp.Regexp
}

func NewGazetteer(names []string, caseInsensitive bool) *Gazetteer {
	quoted := make([]string, len(names))
	for i, n := range names {
		quoted[i] = regexp.QuoteMeta(n)
	}
	expr := `(` + strings.Join(quoted, "|") + `)[^,\n]*`
	if caseInsensitive {
		expr = `(?i)` + expr
	}
	return &Gazetteer{Names: names, CaseInsensitive: caseInsensitive, re: regexp.MustCompile(expr)}
}

// LookupGazetteer builds a registered gazetteer by name.
func LookupGazetteer(name string, caseInsensitive bool) (*Gazetteer, error) {
	names, ok := gazetteers[name]
	if !ok {
		return nil, fmt.Errorf("unknown gazetteer: %s", name)
	}
	return NewGazetteer(names, caseInsensitive), nil
}

// Locate finds a known place in text and returns the whole line that holds it,
// keeping street and area qualifiers. Single-line text yields the matched span.
func (g *Gazetteer) Locate(text string) string {
	if g == nil || len(g.Names) == 0 || text == "" {
		return ""
	}
	m := g.re.FindStringSubmatchIndex(text)
	if m == nil {
		return ""
	}
	name := text[m[2]:m[3]]

	if lines := Lines(text); len(lines) > 1 {
		for _, line := range lines {
			if strings.Contains(line, name) {
				return line
			}
		}
	}
	return strings.TrimSpace(text[m[0]:m[1]])
}
