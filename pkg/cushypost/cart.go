package cushypost

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"

	"github.com/samber/lo"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
)

// CompensationOutcome is the result of one rollback step.
type CompensationOutcome string

const (
	// CompensationRemoved means the item was taken back out of the cart.
	CompensationRemoved CompensationOutcome = "removed"
	// CompensationIgnored means the removal failed and the failure was
	// deliberately not propagated.
	CompensationIgnored CompensationOutcome = "ignored"
)

// CompensationStep records the rollback of one shipment id.
type CompensationStep struct {
	ShipmentID string
	Outcome    CompensationOutcome
	Err        error
}

// Compensation is the best-effort rollback performed after a partial failure.
type Compensation struct {
	Steps []CompensationStep
}

// Ignored returns the ids whose removal failed and may still be in the cart.
func (c *Compensation) Ignored() []string {
	return lo.FilterMap(c.Steps, func(s CompensationStep, _ int) (string, bool) {
		return s.ShipmentID, s.Outcome == CompensationIgnored
	})
}

// AddShippingIDsToCart adds shipments to the cart in order. On the first
// failure the ids already added are removed again and ErrAddToCartFailed is
// returned carrying the Compensation report.
func (c *Client) AddShippingIDsToCart(ctx context.Context, ids []string) (err error) {
	ctx, done := c.observe(ctx, "AddShippingIDsToCart", attribute.Int("ids", len(ids)))
	defer done(&err)

	added := make([]string, 0, len(ids))
	for _, id := range ids {
		resp, err := c.Dispatch(ctx, http.MethodPost, pathCartItem, nil, cartItemRequest{App: c.app, ID: id})
		if err := expectOK(resp, err, ErrAddToCartFailed); err != nil {
			c.logger.Error("Add to cart failed, rolling back",
				zap.String("shipment_id", id),
				zap.Strings("added", added),
				zap.Error(err),
			)
			compensation := c.rollbackCart(ctx, added)
			return wrapAs(err, ErrAddToCartFailed).WithCompensation(compensation)
		}
		added = append(added, id)
	}

	c.logger.Info("Shipments added to cart", zap.Strings("ids", added))
	return nil
}

// RemoveShippingIDsFromCart removes shipments from the cart in order. With
// raiseError the first failure stops the removal and is returned; without it
// failures are skipped and every id is attempted.
func (c *Client) RemoveShippingIDsFromCart(ctx context.Context, ids []string, raiseError bool) (err error) {
	ctx, done := c.observe(ctx, "RemoveShippingIDsFromCart", attribute.Int("ids", len(ids)))
	defer done(&err)

	for _, id := range ids {
		if err := c.removeFromCart(ctx, id); err != nil {
			if raiseError {
				return err
			}
			c.logger.Warn("Remove from cart failed, skipping", zap.String("shipment_id", id), zap.Error(err))
		}
	}
	return nil
}

// rollbackCart removes ids without propagating failures.
func (c *Client) rollbackCart(ctx context.Context, ids []string) *Compensation {
	compensation := &Compensation{Steps: make([]CompensationStep, 0, len(ids))}
	for _, id := range ids {
		step := CompensationStep{ShipmentID: id, Outcome: CompensationRemoved}
		if err := c.removeFromCart(ctx, id); err != nil {
			step.Outcome = CompensationIgnored
			step.Err = err
		}
		compensation.Steps = append(compensation.Steps, step)
	}
	if ignored := compensation.Ignored(); len(ignored) > 0 {
		c.logger.Warn("Cart rollback incomplete", zap.Strings("ignored", ignored))
	}
	return compensation
}

func (c *Client) removeFromCart(ctx context.Context, id string) error {
	query := url.Values{}
	query.Set("app", c.app)
	query.Set("id", id)

	resp, err := c.Dispatch(ctx, http.MethodDelete, pathCartItem, query, nil)
	if err := expectOK(resp, err, ErrRemoveFromCartFailed); err != nil {
		return wrapAs(err, ErrRemoveFromCartFailed)
	}
	return nil
}

// BuyCart starts the checkout of the cart and returns the hosted checkout
// URL. The checkout session is kept for ConfirmCart.
func (c *Client) BuyCart(ctx context.Context, successURL, cancelURL, description string) (_ string, err error) {
	ctx, done := c.observe(ctx, "BuyCart")
	defer done(&err)

	resp, err := c.Dispatch(ctx, http.MethodPost, pathCartBuy, nil, cartBuyRequest{
		App:         c.app,
		SuccessURL:  successURL,
		CancelURL:   cancelURL,
		Description: description,
	})
	if err := expectOK(resp, err, ErrBuyCartFailed); err != nil {
		return "", err
	}

	checkout, err := decodeData[cartBuyResponse](resp)
	if err != nil {
		return "", fail(ErrBuyCartFailed).WithCause(err)
	}
	if checkout.SessionID == "" {
		return "", fail(ErrBuyCartFailed).WithCause(fmt.Errorf("response carries no checkout session"))
	}

	c.checkoutSession = checkout.SessionID
	c.logger.Info("Cart checkout started", zap.String("checkout_session", checkout.SessionID))
	return checkout.URL, nil
}

// ConfirmCart confirms the checkout started by BuyCart.
func (c *Client) ConfirmCart(ctx context.Context) (err error) {
	ctx, done := c.observe(ctx, "ConfirmCart")
	defer done(&err)

	if c.checkoutSession == "" {
		return fail(ErrConfirmCartMissingParameters)
	}

	resp, err := c.Dispatch(ctx, http.MethodPost, pathCartConfirm, nil, cartConfirmRequest{
		App:       c.app,
		SessionID: c.checkoutSession,
	})
	if err := expectOK(resp, err, ErrConfirmCartFailed); err != nil {
		return err
	}

	c.logger.Info("Cart confirmed", zap.String("checkout_session", c.checkoutSession))
	c.checkoutSession = ""
	return nil
}

// wrapAs returns err when it already carries sentinel's code, and otherwise
// a copy of sentinel caused by err.
func wrapAs(err error, sentinel *Error) *Error {
	var cpErr *Error
	if errors.As(err, &cpErr) && cpErr.Code == sentinel.Code {
		return cpErr
	}
	return fail(sentinel).WithCause(err)
}
