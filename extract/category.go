package extract

import (
	"strings"

	"mw_harvester/models"
)

// PropertyTokens maps exact line tokens to property types.
var PropertyTokens = map[string]models.PropertyType{
	"Plot":                models.PropertyTypePlot,
	"Complete House":      models.PropertyTypeCompleteHouse,
	"Land":                models.PropertyTypeLand,
	"Commercial Property": models.PropertyTypeCommercialProperty,
	"Incompleted House":   models.PropertyTypeIncompleteHouse,
}

// TransactionTokens maps exact line tokens to transaction types.
var TransactionTokens = map[string]models.TransactionType{
	"For Sale": models.TransactionForSale,
	"For rent": models.TransactionForRent,
}

// KeywordSet assigns Value when any keyword occurs in the lowercased text.
type KeywordSet struct {
	Value    string   `yaml:"value"`
	Keywords []string `yaml:"keywords"`
}

var DefaultTransactionKeywords = []KeywordSet{
	{Value: string(models.TransactionForRent), Keywords: []string{"rent", "let"}},
	{Value: string(models.TransactionForSale), Keywords: []string{"sale"}},
}

var DefaultPropertyKeywords = []KeywordSet{
	{Value: string(models.PropertyTypeResidential), Keywords: []string{"house", "home", "residential"}},
	{Value: string(models.PropertyTypeCommercial), Keywords: []string{"commercial", "office", "shop", "warehouse"}},
	{Value: string(models.PropertyTypeLand), Keywords: []string{"plot", "land"}},
}

// classifyTokens finds the first line that is a property type token and reads
// the transaction from the line right after it, if that line is a transaction token.
func classifyTokens(lines []string, types map[string]models.PropertyType, txns map[string]models.TransactionType) (models.PropertyType, models.TransactionType) {
	for i, line := range lines {
		pt, ok := types[line]
		if !ok {
			continue
		}
		if i+1 < len(lines) {
			if tt, ok := txns[lines[i+1]]; ok {
				return pt, tt
			}
		}
		return pt, models.TransactionUnknown
	}
	return models.PropertyTypeUnknown, models.TransactionUnknown
}

// classifyKeywords returns the value of the first set with a keyword present.
// Substring containment only: a passing mention counts, so callers use this as
// a fallback when a source prints no category tokens.
func classifyKeywords(text string, sets []KeywordSet) string {
	lower := strings.ToLower(text)
	for _, set := range sets {
		for _, kw := range set.Keywords {
			if strings.Contains(lower, strings.ToLower(kw)) {
				return set.Value
			}
		}
	}
	return ""
}
