package extract

import "mw_harvester/models"

type BedBathStrategy string

const (
	// BedBathSeparate searches bedroom and bathroom rules independently.
	BedBathSeparate BedBathStrategy = "separate"
	// BedBathCombined reads both counts from one "<N> <M> Bathroom" match.
	BedBathCombined BedBathStrategy = "combined"
)

type CategoryStrategy string

const (
	CategoryNone     CategoryStrategy = "none"
	CategoryTokens   CategoryStrategy = "tokens"
	CategoryKeywords CategoryStrategy = "keywords"
)

// Dialect is the per-source extraction behaviour. Nil token maps fall back to
// PropertyTokens and TransactionTokens; nil keyword lists classify nothing.
type Dialect struct {
	BedBath             BedBathStrategy
	Category            CategoryStrategy
	Gazetteer           *Gazetteer
	PropertyTokens      map[string]models.PropertyType
	TransactionTokens   map[string]models.TransactionType
	PropertyKeywords    []KeywordSet
	TransactionKeywords []KeywordSet
}

// Fields is the partial record produced from one element's text.
type Fields struct {
	Price           string
	AreaSqm         string
	Bedrooms        string
	Bathrooms       string
	Location        string
	PropertyType    models.PropertyType
	TransactionType models.TransactionType
	DatePosted      string
}

// Apply copies the extracted fields onto r.
func (f Fields) Apply(r *models.PropertyRecord) {
	r.Price = f.Price
	r.AreaSqm = f.AreaSqm
	r.Bedrooms = f.Bedrooms
	r.Bathrooms = f.Bathrooms
	r.Location = f.Location
	r.PropertyType = f.PropertyType
	r.TransactionType = f.TransactionType
	r.DatePosted = f.DatePosted
}

type Extractor struct {
	dialect Dialect
	table   *PatternTable
}

// New returns an extractor for dialect. A nil table uses DefaultPatterns.
func New(dialect Dialect, table *PatternTable) *Extractor {
	if table == nil {
		table = DefaultPatterns()
	}
	if dialect.PropertyTokens == nil {
		dialect.PropertyTokens = PropertyTokens
	}
	if dialect.TransactionTokens == nil {
		dialect.TransactionTokens = TransactionTokens
	}
	return &Extractor{dialect: dialect, table: table}
}

// Extract pulls every field out of text. A field whose rules find nothing stays
// empty; fields never depend on each other.
func (e *Extractor) Extract(text string) Fields {
	var f Fields
	if text == "" {
		return f
	}

	f.Price = NormalizePrice(e.table.First(FieldPrice, text))
	f.AreaSqm = e.table.First(FieldArea, text)
	f.DatePosted = e.table.First(FieldDate, text)
	f.Bedrooms, f.Bathrooms = e.bedBath(text)
	f.Location = e.dialect.Gazetteer.Locate(text)
	f.PropertyType, f.TransactionType = e.category(text)

	return f
}

func (e *Extractor) bedBath(text string) (string, string) {
	if e.dialect.BedBath == BedBathCombined {
		if m := e.table.Match(FieldBedBath, text); len(m) >= 2 {
			return m[0], m[1]
		}
		return "", ""
	}
	return e.table.First(FieldBedrooms, text), e.table.First(FieldBathrooms, text)
}

func (e *Extractor) category(text string) (models.PropertyType, models.TransactionType) {
	switch e.dialect.Category {
	case CategoryTokens:
		return classifyTokens(Lines(text), e.dialect.PropertyTokens, e.dialect.TransactionTokens)
	case CategoryKeywords:
		tt := models.TransactionType(classifyKeywords(text, e.dialect.TransactionKeywords))
		pt := models.PropertyType(classifyKeywords(text, e.dialect.PropertyKeywords))
		return pt, tt
	default:
		return models.PropertyTypeUnknown, models.TransactionUnknown
	}
}
