// ABOUTME: Shipment value objects sent to the courier when requesting an AWB
// ABOUTME: Built transiently per generation call and never persisted here

package domain

// ShipmentDimensions is the physical package size in centimetres
type ShipmentDimensions struct {
	Length float64 `json:"length"`
	Height float64 `json:"height"`
	Width  float64 `json:"width"`
}

// Address is a structured delivery address
type Address struct {
	County   string `json:"county"`
	Locality string `json:"locality"`
	Street   string `json:"street"`
	StreetNo string `json:"streetNo"`
	ZipCode  string `json:"zipCode"`
}

// Recipient is the person receiving the shipment
type Recipient struct {
	Name    string  `json:"name"`
	Phone   string  `json:"phone"`
	Email   string  `json:"email,omitempty"`
	Address Address `json:"address"`
}

// Packages counts the parcels and envelopes in one shipment
type Packages struct {
	Parcel   int `json:"parcel"`
	Envelope int `json:"envelope"`
}

// ShipmentInfo describes a single shipment request
type ShipmentInfo struct {
	Service       string             `json:"service"`
	Packages      Packages           `json:"packages"`
	Weight        float64            `json:"weight"`
	COD           float64            `json:"cod"`
	DeclaredValue float64            `json:"declaredValue"`
	Payment       string             `json:"payment"`
	Observation   string             `json:"observation,omitempty"`
	Content       string             `json:"content"`
	Dimensions    ShipmentDimensions `json:"dimensions"`
	Recipient     Recipient          `json:"recipient"`
}

// Label is a printable AWB label returned by the courier
type Label struct {
	AWBNumber   string
	Format      LabelFormat
	ContentType string
	Data        []byte
}

// LabelFormat selects the label rendering
type LabelFormat string

const (
	LabelFormatPDF  LabelFormat = "pdf"
	LabelFormatHTML LabelFormat = "html"
)

// IsValid reports whether f is a supported label format
func (f LabelFormat) IsValid() bool {
	return f == LabelFormatPDF || f == LabelFormatHTML
}
