package cushypost

import (
	"context"
	"encoding/json"
	"net/http"

	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
)

// GetRates requests carrier options for the assembled shipment.
func (c *Client) GetRates(ctx context.Context) (_ *RateResult, err error) {
	ctx, done := c.observe(ctx, "GetRates")
	defer done(&err)

	if err := c.requireQuotationState(); err != nil {
		return nil, err
	}

	c.logger.Info("Getting CushyPost rates",
		zap.String("origin_postcode", c.from.PostalCode),
		zap.String("destination_postcode", c.to.PostalCode),
		zap.Int("package_count", len(c.shipping.Packages)),
	)

	resp, err := c.Dispatch(ctx, http.MethodPost, pathRate, nil, rateRequest{
		App:      c.app,
		From:     c.from,
		To:       c.to,
		Shipping: c.shipping,
		Services: c.services,
	})
	if err := expectOK(resp, err, ErrShippingRateFailed); err != nil {
		c.logger.Error("CushyPost rate request failed", zap.Error(err))
		return nil, err
	}

	rates, err := decodeData[RateResult](resp)
	if err != nil {
		return nil, fail(ErrShippingRateFailed).WithCause(err)
	}
	return &rates, nil
}

// ApproveQuotation completes both locations with contact details, applies
// per-package content corrections, and approves the quotation for payment.
//
// When extra is given the shipping node is rebuilt, which assigns new hashes
// to every package; hashes captured before this call are stale afterwards.
func (c *Client) ApproveQuotation(ctx context.Context, quotationID string, from, to ContactDetails, extra *ShippingExtra) (_ json.RawMessage, err error) {
	ctx, done := c.observe(ctx, "ApproveQuotation", attribute.String("quotation_id", quotationID))
	defer done(&err)

	if err := c.requireQuotationState(); err != nil {
		return nil, err
	}

	c.from.Name = from.Name
	c.from.Phone = from.Phone
	c.from.Email = from.Email
	c.from.Address = from.Address
	if from.City != "" {
		c.from.City = from.City
	}
	c.from.AdministrativeAreaLevel3 = c.from.City

	// The destination inherits the sender's phone and email when it has none.
	c.to.Name = to.Name
	c.to.Phone = to.Phone
	if c.to.Phone == "" {
		c.to.Phone = c.from.Phone
	}
	c.to.Email = to.Email
	if c.to.Email == "" {
		c.to.Email = c.from.Email
	}
	c.to.Address = to.Address
	c.to.AdministrativeAreaLevel3 = c.to.City

	if extra != nil {
		packages := c.shipping.Packages
		for i := range packages {
			if override, ok := extra.Packages[packages[i].Hash]; ok && override.ContentDesc != "" {
				packages[i].Content = override.ContentDesc
			}
		}
		if err := c.SetShipping(packages, extra.GoodsDesc, extra.SpecialInstructions); err != nil {
			return nil, err
		}
	}

	c.logger.Info("Approving CushyPost quotation",
		zap.String("quotation_id", quotationID),
		zap.String("recipient", c.to.Name),
	)

	resp, err := c.Dispatch(ctx, http.MethodPost, pathApprove, nil, approveRequest{
		App:         c.app,
		As:          orderStateWaitingForPayment,
		QuotationID: quotationID,
		Order: order{
			Quotation: quotationID,
			From:      c.from,
			To:        c.to,
			Shipping:  c.shipping,
			Services:  c.services,
		},
	})
	if err := expectOK(resp, err, ErrApproveRateFailed); err != nil {
		c.logger.Error("CushyPost approval failed", zap.Error(err))
		return nil, err
	}

	data, err := decodeData[json.RawMessage](resp)
	if err != nil {
		return nil, fail(ErrApproveRateFailed).WithCause(err)
	}
	return data, nil
}

func (c *Client) requireQuotationState() error {
	if c.token == "" {
		return fail(ErrMissingToken)
	}
	if c.from == nil || c.to == nil || c.shipping == nil || c.services == nil {
		return fail(ErrMissingData)
	}
	return nil
}
