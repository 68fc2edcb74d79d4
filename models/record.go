package models

// PropertyType is the normalized listing category. The empty value means Unknown.
type PropertyType string

const (
	PropertyTypeUnknown            PropertyType = ""
	PropertyTypePlot               PropertyType = "Plot"
	PropertyTypeCompleteHouse      PropertyType = "Complete House"
	PropertyTypeLand               PropertyType = "Land"
	PropertyTypeCommercialProperty PropertyType = "Commercial Property"
	PropertyTypeIncompleteHouse    PropertyType = "Incomplete House"
	PropertyTypeResidential        PropertyType = "Residential"
	PropertyTypeCommercial         PropertyType = "Commercial"
)

// TransactionType is sale vs rent. The empty value means Unknown.
type TransactionType string

const (
	TransactionUnknown TransactionType = ""
	TransactionForSale TransactionType = "For Sale"
	TransactionForRent TransactionType = "For Rent"
)

// Columns is the stable CSV column order.
var Columns = []string{
	"source",
	"title",
	"property_type",
	"transaction_type",
	"location",
	"price",
	"area_sqm",
	"bedrooms",
	"bathrooms",
	"date_posted",
	"description",
	"url",
}

// PropertyRecord is one normalized listing. Every field defaults to empty/Unknown;
// numeric fields hold normalized digit strings without currency or separators.
type PropertyRecord struct {
	Source          string          `json:"source" db:"source"`
	Title           string          `json:"title" db:"title"`
	PropertyType    PropertyType    `json:"property_type" db:"property_type"`
	TransactionType TransactionType `json:"transaction_type" db:"transaction_type"`
	Location        string          `json:"location" db:"location"`
	Price           string          `json:"price" db:"price"`
	AreaSqm         string          `json:"area_sqm" db:"area_sqm"`
	Bedrooms        string          `json:"bedrooms" db:"bedrooms"`
	Bathrooms       string          `json:"bathrooms" db:"bathrooms"`
	DatePosted      string          `json:"date_posted" db:"date_posted"`
	Description     string          `json:"description" db:"description"`
	URL             string          `json:"url" db:"url"`
}

func NewPropertyRecord(source, url string) PropertyRecord {
	return PropertyRecord{Source: source, URL: url}
}

// Row renders the record in Columns order.
func (r PropertyRecord) Row() []string {
	return []string{
		r.Source,
		r.Title,
		string(r.PropertyType),
		string(r.TransactionType),
		r.Location,
		r.Price,
		r.AreaSqm,
		r.Bedrooms,
		r.Bathrooms,
		r.DatePosted,
		r.Description,
		r.URL,
	}
}

func (r PropertyRecord) HasTitleOrPrice() bool {
	return r.Title != "" || r.Price != ""
}
