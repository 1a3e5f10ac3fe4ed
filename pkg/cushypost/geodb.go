package cushypost

import (
	"context"
	"fmt"
	"net/http"

	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
)

// geoDBLimit is the number of matches requested from place autocomplete.
const geoDBLimit = 10

// geoDBKey is the address cache key of a country/postcode/city triple.
func geoDBKey(countryCode, postcode, city string) string {
	return fmt.Sprintf("%s_%s_%s", countryCode, postcode, city)
}

// Resolve returns the best lookup record for a postcode and locality.
//
// The postcode alone determines the shipping cost, so when the locality does
// not match the lookup's naming the search is widened to the postcode and
// the first of its matches is used.
func (c *Client) Resolve(ctx context.Context, countryCode, postcode, city string) (_ *LookupRecord, err error) {
	ctx, done := c.observe(ctx, "Resolve",
		attribute.String("country", countryCode),
		attribute.String("postcode", postcode),
	)
	defer done(&err)

	records, err := c.autocomplete(ctx, countryCode, postcode, city)
	if err != nil {
		return nil, err
	}
	if len(records) == 0 {
		c.logger.Info("No exact GeoDB match, widening to postcode",
			zap.String("country", countryCode),
			zap.String("postcode", postcode),
			zap.String("city", city),
		)
		records, err = c.resolveAll(ctx, countryCode, postcode)
		if err != nil {
			return nil, err
		}
		if len(records) == 0 {
			return nil, fail(ErrGeoDBAutoComplete)
		}
	}

	record := records[0]
	return &record, nil
}

// ResolveAll returns every lookup record of a postcode and caches each of
// them under its own country/postcode/city key.
func (c *Client) ResolveAll(ctx context.Context, countryCode, postcode string) (_ []LookupRecord, err error) {
	ctx, done := c.observe(ctx, "ResolveAll",
		attribute.String("country", countryCode),
		attribute.String("postcode", postcode),
	)
	defer done(&err)

	return c.resolveAll(ctx, countryCode, postcode)
}

// SearchGeoDB searches the lookup for every location matching a postcode.
func (c *Client) SearchGeoDB(ctx context.Context, countryCode, postcode string) ([]LookupRecord, error) {
	return c.ResolveAll(ctx, countryCode, postcode)
}

func (c *Client) resolveAll(ctx context.Context, countryCode, postcode string) ([]LookupRecord, error) {
	records, err := c.autocomplete(ctx, countryCode, postcode, "")
	if err != nil {
		return nil, err
	}
	for _, r := range records {
		c.geoDBData[geoDBKey(countryCode, r.Postcode, r.City)] = r
	}
	return records, nil
}

func (c *Client) autocomplete(ctx context.Context, countryCode, postcode, city string) ([]LookupRecord, error) {
	if c.token == "" {
		return nil, fail(ErrMissingToken)
	}

	sequence := postcode
	if city != "" {
		sequence = postcode + " " + city
	}

	resp, err := c.Dispatch(ctx, http.MethodPost, pathPlaceAutocomplete, nil, placeAutocompleteRequest{
		App:         c.app,
		CountryCode: countryCode,
		Sequence:    sequence,
		Limit:       geoDBLimit,
	})
	if err := expectOK(resp, err, ErrGeoDBAutoComplete); err != nil {
		return nil, err
	}

	records, err := decodeData[[]LookupRecord](resp)
	if err != nil {
		return nil, fail(ErrGeoDBAutoComplete).WithCause(err)
	}
	return records, nil
}

// SetFrom resolves and stores the origin location.
func (c *Client) SetFrom(ctx context.Context, countryCode, postcode, city string) error {
	loc, err := c.locate(ctx, RoleFrom, countryCode, postcode, city)
	if err != nil {
		return err
	}
	c.from = loc
	return nil
}

// SetTo resolves and stores the destination location.
func (c *Client) SetTo(ctx context.Context, countryCode, postcode, city string) error {
	loc, err := c.locate(ctx, RoleTo, countryCode, postcode, city)
	if err != nil {
		return err
	}
	c.to = loc
	return nil
}

// locate builds a location for role, serving the record from the address
// cache when this exact triple was seen in a multi-result search.
func (c *Client) locate(ctx context.Context, role Role, countryCode, postcode, city string) (_ *Location, err error) {
	ctx, done := c.observe(ctx, "Set"+titleRole(role),
		attribute.String("country", countryCode),
		attribute.String("postcode", postcode),
	)
	defer done(&err)

	record, ok := c.geoDBData[geoDBKey(countryCode, postcode, city)]
	if ok {
		c.logger.Debug("GeoDB cache hit", zap.String("role", string(role)), zap.String("postcode", postcode))
	} else {
		resolved, err := c.Resolve(ctx, countryCode, postcode, city)
		if err != nil {
			return nil, err
		}
		record = *resolved
	}

	return newLocation(role, countryCode, postcode, record)
}

func newLocation(role Role, countryCode, postcode string, record LookupRecord) (*Location, error) {
	coords := record.Location.Coordinates
	if len(coords) < 2 {
		return nil, fail(ErrGeoDBAutoComplete).WithCause(fmt.Errorf("record %q has no coordinates", record.ID))
	}

	return &Location{
		Name:                     string(role),
		Country:                  countryCode,
		PostalCode:               postcode,
		City:                     record.City,
		Province:                 record.Province,
		Locality:                 record.City,
		AdministrativeAreaLevel1: record.Region,
		AdministrativeAreaLevel2: record.Province,
		Coordinates: Coordinates{
			Lat:          coords[1],
			Lng:          coords[0],
			LocationType: locationTypeApproximate,
		},
		Validity: Validity{
			Valid:     true,
			Component: validityComponentPostalCode,
		},
		Type: locationSourceGeoDB,
		Hash: record.ID,
	}, nil
}

func titleRole(role Role) string {
	if role == RoleFrom {
		return "From"
	}
	return "To"
}
