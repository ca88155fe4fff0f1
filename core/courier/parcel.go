// ABOUTME: Parcel heuristics: dimensions, weight and address splitting
// ABOUTME: Pure functions shared by the courier service and the estimate endpoints

package courier

import (
	"math"
	"regexp"
	"strconv"
	"strings"

	"bluehand-admin-api/core/domain"
)

// Package size defaults in centimetres
const (
	DefaultLength = 50.0
	DefaultHeight = 10.0
	DefaultWidth  = 50.0
	PackingMargin = 10.0
)

// Weight heuristics in kilograms
const (
	WeightPerCanvas = 0.5
	MinWeight       = 0.5
)

// NotAvailable is the street number used when none can be parsed
const NotAvailable = "N/A"

// DefaultZipCode is used when no postal code is known
const DefaultZipCode = "000000"

var (
	sizePattern         = regexp.MustCompile(`(\d+)\s*[xX×]\s*(\d+)`)
	streetNumberPattern = regexp.MustCompile(`\d+[A-Za-z]?`)
)

// CalculateDimensions estimates the package size for a set of canvases.
// It starts from the default footprint and grows length and width to fit the
// largest canvas plus a packing margin, never shrinking below the default.
func CalculateDimensions(items []domain.OrderItem) domain.ShipmentDimensions {
	dims := domain.ShipmentDimensions{
		Length: DefaultLength,
		Height: DefaultHeight,
		Width:  DefaultWidth,
	}

	for _, item := range items {
		m := sizePattern.FindStringSubmatch(item.Size)
		if m == nil {
			continue
		}
		a, errA := strconv.ParseFloat(m[1], 64)
		b, errB := strconv.ParseFloat(m[2], 64)
		if errA != nil || errB != nil {
			continue
		}

		long, short := math.Max(a, b), math.Min(a, b)
		dims.Length = math.Max(dims.Length, long+PackingMargin)
		dims.Width = math.Max(dims.Width, short+PackingMargin)
	}

	return dims
}

// CalculateWeight estimates shipment weight at a fixed weight per canvas,
// with a minimum of MinWeight, rounded up to the next half kilogram.
func CalculateWeight(items []domain.OrderItem) float64 {
	units := 0
	for _, item := range items {
		units += item.Units()
	}

	weight := math.Max(float64(units)*WeightPerCanvas, MinWeight)
	return roundUpToHalf(weight)
}

func roundUpToHalf(weight float64) float64 {
	return math.Ceil(weight*2) / 2
}

// ParseAddress splits a free-text, comma separated address laid out as
// "street, number, locality, county". The first number in the second segment
// is the street number. city, county and zip are used only where the text has
// no matching segment. Input with fewer than two segments is returned whole as
// the street. The result is never validated as deliverable.
func ParseAddress(fullAddress, city, county, zip string) domain.Address {
	addr := domain.Address{ZipCode: strings.TrimSpace(zip)}
	if addr.ZipCode == "" {
		addr.ZipCode = DefaultZipCode
	}

	parts := strings.Split(fullAddress, ",")
	for i := range parts {
		parts[i] = strings.TrimSpace(parts[i])
	}
	segment := func(i int, fallback string) string {
		if i < len(parts) && parts[i] != "" {
			return parts[i]
		}
		return strings.TrimSpace(fallback)
	}

	addr.Locality = segment(2, city)
	addr.County = segment(3, county)

	if len(parts) < 2 {
		addr.Street = fullAddress
		addr.StreetNo = NotAvailable
		return addr
	}

	addr.Street = parts[0]
	addr.StreetNo = streetNumberPattern.FindString(parts[1])
	if addr.StreetNo == "" {
		addr.StreetNo = NotAvailable
	}
	return addr
}
