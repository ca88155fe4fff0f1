// ABOUTME: Order domain model carries what the courier client needs from an order
// ABOUTME: Line items drive the weight and dimension heuristics

package domain

import "strings"

// OrderItem is one line of an order
type OrderItem struct {
	PaintingTitle string  `json:"paintingTitle"`
	Size          string  `json:"size"`
	Quantity      int     `json:"quantity"`
	Price         float64 `json:"price"`
}

// Units returns the item quantity, counting missing quantities as one canvas
func (i OrderItem) Units() int {
	if i.Quantity <= 0 {
		return 1
	}
	return i.Quantity
}

// Order is the subset of the order aggregate used for shipping
type Order struct {
	ID              string      `json:"id"`
	OrderNumber     string      `json:"orderNumber"`
	CustomerName    string      `json:"customerName"`
	CustomerPhone   string      `json:"customerPhone"`
	CustomerEmail   string      `json:"customerEmail"`
	ShippingAddress string      `json:"shippingAddress"`
	City            string      `json:"city"`
	County          string      `json:"county"`
	PostalCode      string      `json:"postalCode"`
	Total           float64     `json:"total"`
	PaymentMethod   string      `json:"paymentMethod"`
	Items           []OrderItem `json:"items"`
}

// TotalUnits sums the quantities of all items
func (o Order) TotalUnits() int {
	total := 0
	for _, item := range o.Items {
		total += item.Units()
	}
	return total
}

// IsCashOnDelivery reports whether the courier must collect payment
func (o Order) IsCashOnDelivery() bool {
	switch strings.ToLower(strings.TrimSpace(o.PaymentMethod)) {
	case "ramburs", "cod", "cash", "cash_on_delivery":
		return true
	}
	return false
}
