package cushypost

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/url"

	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
)

// GetShipmentLabel fetches the label of each shipment. Shipments whose label
// cannot be retrieved are skipped, so the result may be shorter than ids.
func (c *Client) GetShipmentLabel(ctx context.Context, ids []string) []Label {
	ctx, done := c.observe(ctx, "GetShipmentLabel", attribute.Int("ids", len(ids)))
	defer done(nil)

	labels := make([]Label, 0, len(ids))
	for _, id := range ids {
		query := url.Values{}
		query.Set("app", c.app)
		query.Set("id", id)

		resp, err := c.Dispatch(ctx, http.MethodGet, pathLabel, query, nil)
		if err != nil {
			c.logger.Warn("Label not available, skipping", zap.String("shipment_id", id), zap.Error(err))
			continue
		}
		if !resp.OK() {
			c.logger.Warn("Label not available, skipping", zap.String("shipment_id", id), zap.Int("status", resp.StatusCode))
			continue
		}

		data, err := decodeData[json.RawMessage](resp)
		if err != nil || len(data) == 0 || bytes.Equal(data, []byte("null")) {
			c.logger.Warn("Label response carries no data, skipping", zap.String("shipment_id", id))
			continue
		}

		labels = append(labels, Label{ShipmentID: id, Data: data})
	}

	c.logger.Info("Labels retrieved", zap.Int("requested", len(ids)), zap.Int("retrieved", len(labels)))
	return labels
}
