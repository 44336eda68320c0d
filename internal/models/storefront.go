package models

import "time"

// GeoPoint is a latitude/longitude pair.
type GeoPoint struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// Storefront is the vendor's business listing, created together with the vendor.
type Storefront struct {
	ID        string    `json:"id"`
	VendorID  string    `json:"vendorId"`
	Name      string    `json:"name"`
	Address   string    `json:"address"`
	Location  GeoPoint  `json:"location"`
	CreatedAt time.Time `json:"createdAt"`
}
