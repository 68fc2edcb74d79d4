package extract

import (
	"regexp"
	"strings"
)

// Field names a semantic slot filled from a Rule's capture groups.
type Field string

const (
	FieldPrice     Field = "price"
	FieldArea      Field = "area"
	FieldBedrooms  Field = "bedrooms"
	FieldBathrooms Field = "bathrooms"
	FieldBedBath   Field = "bedbath" // two groups: bedrooms, bathrooms
	FieldDate      Field = "date"
)

// number is a decimal amount with optional thousands separators.
const number = `([\d,]+\.?\d*)`

// Rule is one named pattern for a field.
type Rule struct {
	Field   Field
	Name    string
	Pattern *regexp.Regexp
}

// NewRule compiles expr and panics on an invalid pattern.
func NewRule(field Field, name, expr string) Rule {
	return Rule{Field: field, Name: name, Pattern: regexp.MustCompile(expr)}
}

// PatternTable keeps ordered rules per field. Order is priority: the first
// rule that matches wins and later rules are never consulted.
type PatternTable struct {
	rules map[Field][]Rule
}

func NewPatternTable(rules ...Rule) *PatternTable {
	t := &PatternTable{rules: make(map[Field][]Rule)}
	for _, r := range rules {
		t.rules[r.Field] = append(t.rules[r.Field], r)
	}
	return t
}

// Rules returns a copy of the ordered rules for field.
func (t *PatternTable) Rules(field Field) []Rule {
	out := make([]Rule, len(t.rules[field]))
	copy(out, t.rules[field])
	return out
}

// Match returns the capture groups of the first matching rule for field, or nil.
func (t *PatternTable) Match(field Field, text string) []string {
	if text == "" {
		return nil
	}
	for _, r := range t.rules[field] {
		if m := r.Pattern.FindStringSubmatch(text); m != nil {
			return m[1:]
		}
	}
	return nil
}

// First returns the first capture group of the winning rule, or "".
func (t *PatternTable) First(field Field, text string) string {
	groups := t.Match(field, text)
	if len(groups) == 0 {
		return ""
	}
	return groups[0]
}

// DefaultPatterns is the rule table shared by every source.
func DefaultPatterns() *PatternTable {
	return NewPatternTable(
		// Currency-tagged prices; prefix forms before suffix forms so a bare
		// trailing number is never picked over a tagged one.
		NewRule(FieldPrice, "mk-prefix", `(?i)MK\s*`+number),
		NewRule(FieldPrice, "mwk-prefix", `(?i)MWK\s*`+number),
		NewRule(FieldPrice, "k-prefix", `(?i)K\s*`+number),
		NewRule(FieldPrice, "mk-suffix", `(?i)`+number+`\s*MK`),
		NewRule(FieldPrice, "mwk-suffix", `(?i)`+number+`\s*MWK`),
		NewRule(FieldPrice, "k-suffix", `(?i)`+number+`\s*K`),
		NewRule(FieldPrice, "dollar-prefix", `(?i)\$`+number),
		NewRule(FieldPrice, "usd-prefix", `(?i)USD\s*`+number),

		NewRule(FieldArea, "sqm", `(?i)(\d+)\s*sqm`),
		NewRule(FieldArea, "m2", `(?i)(\d+)\s*m²`),
		NewRule(FieldArea, "square-meters", `(?i)(\d+)\s*square\s*meters`),
		NewRule(FieldArea, "hectares", `(?i)(\d+)\s*hectares`),
		NewRule(FieldArea, "ha", `(?i)(\d+)\s*ha`),

		NewRule(FieldBedrooms, "beds", `(?i)(\d+)\s*beds?`),
		NewRule(FieldBedrooms, "bedrooms", `(?i)(\d+)\s*bedrooms?`),

		NewRule(FieldBathrooms, "baths", `(?i)(\d+)\s*baths?`),
		NewRule(FieldBathrooms, "bathrooms", `(?i)(\d+)\s*bathrooms?`),
		NewRule(FieldBathrooms, "showers", `(?i)(\d+)\s*showers?`),

		NewRule(FieldBedBath, "adjacent-counts", `(\d+)\s+(\d+)\s+Bathroom`),

		NewRule(FieldDate, "timestamp", `(\d{4}-\d{2}-\d{2}\s+\d{2}:\d{2}:\d{2})`),
	)
}

// NormalizePrice drops grouping separators from a captured amount.
func NormalizePrice(raw string) string {
	return strings.ReplaceAll(raw, ",", "")
}
