package cushypost

import (
	"encoding/json"
)

// Role labels the two location slots of a session.
type Role string

const (
	RoleFrom Role = "from"
	RoleTo   Role = "to"
)

// Fixed wire values.
const (
	locationTypeApproximate     = "APPROXIMATE"
	locationSourceGeoDB         = "geodb"
	validityComponentPostalCode = "postalcode"
	defaultPackageType          = "Parcel"
	defaultContent              = "content"
	defaultProduct              = "All"
	currencyEUR                 = "EUR"
	insuranceAlgorithmAny       = "any"
	insuranceAlgorithmNone      = "none"
	orderStateWaitingForPayment = "WaitingForPayment"

	testSpecialInstructions    = "Questo è solo un test. Si prega di cancellare!"
	defaultSpecialInstructions = "Nessuna"
)

// collectionHours is the arrival bracket sent with every collection.
var collectionHours = [2]int{10, 14}

// Location is a resolved address endpoint as sent to the API.
type Location struct {
	Name                     string      `json:"name"`
	Country                  string      `json:"country"`
	PostalCode               string      `json:"postalcode"`
	City                     string      `json:"city"`
	Province                 string      `json:"province"`
	Phone                    string      `json:"phone"`
	Email                    string      `json:"email"`
	Contact                  string      `json:"contact"`
	Locality                 string      `json:"locality"`
	AdministrativeAreaLevel1 string      `json:"administrative_area_level_1"`
	AdministrativeAreaLevel2 string      `json:"administrative_area_level_2"`
	AdministrativeAreaLevel3 string      `json:"administrative_area_level_3,omitempty"`
	Address                  string      `json:"address,omitempty"`
	Coordinates              Coordinates `json:"location"`
	Validity                 Validity    `json:"validity"`
	Type                     string      `json:"type"`
	Hash                     string      `json:"hash"`
}

// Coordinates is a point in conventional lat/lng order.
type Coordinates struct {
	Lat          float64 `json:"lat"`
	Lng          float64 `json:"lng"`
	LocationType string  `json:"location_type"`
}

// Validity marks how a location was validated.
type Validity struct {
	Valid     bool   `json:"valid"`
	Component string `json:"component"`
}

// LookupRecord is a geocoding match returned by the place autocomplete endpoint.
type LookupRecord struct {
	ID       string   `json:"id"`
	Country  string   `json:"country"`
	Province string   `json:"province"`
	Region   string   `json:"region"`
	Postcode string   `json:"postcode"`
	City     string   `json:"city"`
	Location GeoPoint `json:"location"`
}

// GeoPoint is a GeoJSON point; Coordinates are [longitude, latitude].
type GeoPoint struct {
	Type        string    `json:"type,omitempty"`
	Coordinates []float64 `json:"coordinates"`
}

// Holiday is one entry of the holiday calendar.
type Holiday struct {
	Date string `json:"date"` // YYYY-MM-DD
	Name string `json:"name,omitempty"`
}

// Package is a parcel or pallet. Content and Hash are filled by SetShipping
// when left empty.
type Package struct {
	Type    string  `json:"type"`
	Height  float64 `json:"height"`
	Width   float64 `json:"width"`
	Length  float64 `json:"length"`
	Weight  float64 `json:"weight"`
	Content string  `json:"content"`
	Hash    string  `json:"hash"`
}

// Shipment is the shipping node of a rate or approval request.
type Shipment struct {
	TotalWeight         int       `json:"total_weight"`
	GoodsDesc           string    `json:"goods_desc"`
	Product             string    `json:"product"`
	SpecialInstructions string    `json:"special_instructions"`
	Packages            []Package `json:"packages"`
}

// Services is the services node: collection window, insurance and COD.
type Services struct {
	Collection     Collection     `json:"collection"`
	Insurance      Insurance      `json:"insurance"`
	CashOnDelivery CashOnDelivery `json:"cash_on_delivery"`
}

// Collection is the pickup date and arrival bracket.
type Collection struct {
	Date  string `json:"date"`
	Hours [2]int `json:"hours"`
}

// Insurance is the declared insured value.
type Insurance struct {
	Value     float64 `json:"value"`
	Currency  string  `json:"currency"`
	Algorithm string  `json:"algorithm"`
}

// CashOnDelivery is the amount collected on delivery.
type CashOnDelivery struct {
	Value    float64 `json:"value"`
	Currency string  `json:"currency"`
}

// ServicesRequest holds the optional inputs of SetServices.
// Zero Month/Day mean "next business day".
type ServicesRequest struct {
	Year           int
	Month          int
	Day            int
	InsuranceValue float64
	CashOnDelivery float64
}

// ContactDetails completes a location at approval time.
type ContactDetails struct {
	Name    string
	Phone   string
	Email   string
	Address string
	City    string // origin only; overrides the resolved city when set
}

// ShippingExtra carries approval-time corrections to the shipment.
type ShippingExtra struct {
	GoodsDesc           string
	SpecialInstructions string
	// Packages maps a package hash to its content override.
	Packages map[string]PackageExtra
}

// PackageExtra is a per-package correction.
type PackageExtra struct {
	ContentDesc string
}

// RateResult is the carrier-option payload of a rate request, unmodified.
type RateResult struct {
	BestPrice json.RawMessage   `json:"best_price"`
	BestTime  json.RawMessage   `json:"best_time"`
	List      []json.RawMessage `json:"list"`
}

// ShipmentRecord is one item of a shipment search.
type ShipmentRecord struct {
	ID          string `json:"id"`
	QuotationID string `json:"quotation_id"`
	State       string `json:"state,omitempty"`
}

// Label is a retrieved shipment label, as returned by the API.
type Label struct {
	ShipmentID string
	Data       json.RawMessage
}
