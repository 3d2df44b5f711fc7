// Package warehouse declares fulfilment types whose names overlap the store
// package, so scans over both must keep the shared names qualified.
package warehouse

import (
	"errors"
	"time"
)

// ErrShortStock is returned when a bin cannot cover a pick.
var ErrShortStock = errors.New("short stock")

// Carrier names a shipping provider.
type Carrier string

const (
	CarrierPost    Carrier = "post"
	CarrierCourier Carrier = "courier"
	CarrierPickup  Carrier = "pickup"
)

// Product is the fulfilment view of a sellable item.
type Product struct {
	SKU      string
	WeightG  int
	Fragile  bool
	Location *Bin
}

// Bin is a storage slot holding units of one product.
type Bin struct {
	Aisle string
	Shelf int
	Units int
}

// Pick removes n units from the bin.
func (b *Bin) Pick(n int) error {
	if n > b.Units {
		return ErrShortStock
	}

	b.Units -= n

	return nil
}

// Order is a pick list for one customer order.
type Order struct {
	Number   string
	Items    []OrderItem
	Carrier  Carrier
	PackedAt *time.Time
}

// Pack marks the order packed and returns the shipment to hand over.
func (o *Order) Pack(now time.Time) (*Shipment, error) {
	o.PackedAt = &now

	return &Shipment{Order: o.Number, Carrier: o.Carrier}, nil
}

// Weight returns the total item weight in grams.
func (o Order) Weight() int {
	total := 0
	for _, it := range o.Items {
		total += it.Product.WeightG * it.Quantity
	}

	return total
}

// OrderItem is one pick line.
type OrderItem struct {
	Product  Product
	Quantity int
}

// Shipment is a packed order handed to a carrier.
type Shipment struct {
	Order    string
	Carrier  Carrier
	Tracking []string
	Events   map[time.Time]string
}
