package cushypost

import (
	"bytes"
	"encoding/json"
	"fmt"
	"maps"
)

// Snapshot is the plain serializable image of a session.
type Snapshot struct {
	Config          SnapshotConfig          `json:"classConfig"`
	From            *Location               `json:"from_location"`
	To              *Location               `json:"to_location"`
	Services        *Services               `json:"services"`
	Shipping        *Shipment               `json:"shipping"`
	GeoDBData       map[string]LookupRecord `json:"geo_db_data"`
	CheckoutSession string                  `json:"checkout_session,omitempty"`
}

// SnapshotConfig is the session configuration part of a Snapshot.
type SnapshotConfig struct {
	Environment  Environment `json:"environment"`
	App          string      `json:"app"`
	Domain       string      `json:"domain"`
	Token        string      `json:"token"`
	RefreshToken string      `json:"refresh_token"`
}

// Snapshot exports the session state. The result shares nothing with the client.
func (c *Client) Snapshot() *Snapshot {
	return &Snapshot{
		Config: SnapshotConfig{
			Environment:  c.environment,
			App:          c.app,
			Domain:       c.baseURL,
			Token:        c.token,
			RefreshToken: c.refreshToken,
		},
		From:            c.From(),
		To:              c.To(),
		Services:        c.Services(),
		Shipping:        c.Shipping(),
		GeoDBData:       maps.Clone(c.geoDBData),
		CheckoutSession: c.checkoutSession,
	}
}

// Load replaces the session state with snap. The transport, logger, tracer
// and metrics of the client are kept. The domain is re-derived from the
// environment rather than trusted from the snapshot.
func (c *Client) Load(snap *Snapshot) error {
	baseURL, err := snap.Config.Environment.BaseURL()
	if err != nil {
		return err
	}

	c.environment = snap.Config.Environment
	c.app = snap.Config.App
	c.baseURL = baseURL
	c.token = snap.Config.Token
	c.refreshToken = snap.Config.RefreshToken
	c.from = cloneLocation(snap.From)
	c.to = cloneLocation(snap.To)
	c.services = nil
	if snap.Services != nil {
		s := *snap.Services
		c.services = &s
	}
	c.shipping = nil
	if snap.Shipping != nil {
		s := *snap.Shipping
		s.Packages = append([]Package(nil), snap.Shipping.Packages...)
		c.shipping = &s
	}
	c.geoDBData = maps.Clone(snap.GeoDBData)
	if c.geoDBData == nil {
		c.geoDBData = make(map[string]LookupRecord)
	}
	c.checkoutSession = snap.CheckoutSession
	return nil
}

// ParseSnapshot decodes a JSON snapshot.
func ParseSnapshot(data []byte) (*Snapshot, error) {
	var snap Snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return nil, fmt.Errorf("parsing snapshot: %w", err)
	}
	return &snap, nil
}

// LoadJSON replaces the session state with a JSON snapshot.
func (c *Client) LoadJSON(data []byte) error {
	snap, err := ParseSnapshot(data)
	if err != nil {
		return err
	}
	return c.Load(snap)
}

// MarshalJSON encodes the client as its snapshot.
func (c *Client) MarshalJSON() ([]byte, error) {
	return json.Marshal(c.Snapshot())
}

// String returns the JSON snapshot of the session.
func (c *Client) String() string {
	data, err := c.MarshalJSON()
	if err != nil {
		return fmt.Sprintf("cushypost.Client(%s)", err)
	}
	return string(data)
}

// Equal reports whether two sessions have the same snapshot.
func (c *Client) Equal(other *Client) bool {
	if c == nil || other == nil {
		return c == other
	}
	a, errA := c.MarshalJSON()
	b, errB := other.MarshalJSON()
	return errA == nil && errB == nil && bytes.Equal(a, b)
}
