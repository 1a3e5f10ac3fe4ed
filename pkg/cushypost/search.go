package cushypost

import (
	"context"
	"fmt"
	"net/http"

	"github.com/samber/lo"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
)

const searchPageSize = 10

// searchCriteria is the fixed filter and sort of one shipment listing.
type searchCriteria struct {
	sort    map[string]int
	filter  map[string]any
	match   map[string]any
	inspect bool
}

var (
	paidShipmentsCriteria = searchCriteria{
		sort:    map[string]int{"updated": -1},
		filter:  map[string]any{"paid": true},
		inspect: true,
	}

	quotationsToPayCriteria = searchCriteria{
		sort:   map[string]int{"created": -1},
		filter: map[string]any{"paid": false},
		match:  map[string]any{"state": orderStateWaitingForPayment},
	}
)

// SearchPaidShipping lists one page of shipments that are already paid.
func (c *Client) SearchPaidShipping(ctx context.Context, page int) (_ []ShipmentRecord, err error) {
	ctx, done := c.observe(ctx, "SearchPaidShipping", attribute.Int("page", page))
	defer done(&err)

	return c.search(ctx, page, paidShipmentsCriteria, ErrSearchPaidShipmentsFailed)
}

// SearchQuotationToPay lists one page of approved shipments awaiting payment.
func (c *Client) SearchQuotationToPay(ctx context.Context, page int) (_ []ShipmentRecord, err error) {
	ctx, done := c.observe(ctx, "SearchQuotationToPay", attribute.Int("page", page))
	defer done(&err)

	return c.search(ctx, page, quotationsToPayCriteria, ErrSearchQuotationFailed)
}

// SearchByQuotationID pages through shipments awaiting payment, starting at
// page, and returns the shipment ids of the requested quotations. It stops
// once every quotation is found; an empty page or the page limit fails with
// ErrNoQuotationFound.
func (c *Client) SearchByQuotationID(ctx context.Context, quotationIDs []string, page int) (_ []string, err error) {
	ctx, done := c.observe(ctx, "SearchByQuotationID", attribute.Int("quotations", len(quotationIDs)))
	defer done(&err)

	wanted := lo.Uniq(quotationIDs)
	if len(wanted) == 0 {
		return nil, fail(ErrMissingData)
	}

	var (
		shipmentIDs []string
		found       []string
	)
	last := page + c.maxSearchPages
	for ; page < last; page++ {
		items, err := c.search(ctx, page, quotationsToPayCriteria, ErrSearchQuotationFailed)
		if err != nil {
			return nil, err
		}
		if len(items) == 0 {
			c.logger.Info("Quotations not found before end of listing",
				zap.Strings("missing", lo.Without(wanted, found...)),
				zap.Int("page", page),
			)
			return nil, fail(ErrNoQuotationFound)
		}

		for _, item := range items {
			if lo.Contains(wanted, item.QuotationID) {
				shipmentIDs = append(shipmentIDs, item.ID)
				found = lo.Uniq(append(found, item.QuotationID))
			}
		}
		if lo.Every(found, wanted) {
			return shipmentIDs, nil
		}
	}

	return nil, fail(ErrNoQuotationFound).WithCause(fmt.Errorf("gave up after %d pages", c.maxSearchPages))
}

func (c *Client) search(ctx context.Context, page int, criteria searchCriteria, sentinel *Error) ([]ShipmentRecord, error) {
	resp, err := c.Dispatch(ctx, http.MethodPost, pathSearch, nil, searchRequest{
		App:     c.app,
		Limit:   searchPageSize,
		Skip:    page * searchPageSize,
		Sort:    criteria.sort,
		Filter:  criteria.filter,
		Match:   criteria.match,
		Inspect: criteria.inspect,
	})
	if err := expectOK(resp, err, sentinel); err != nil {
		return nil, err
	}

	items, err := decodeData[[]ShipmentRecord](resp)
	if err != nil {
		return nil, fail(sentinel).WithCause(err)
	}
	return items, nil
}
