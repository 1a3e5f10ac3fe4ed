package cushypost

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/samber/lo"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
)

const (
	dateLayout      = "2006-01-02"
	timestampLayout = "2006-01-02T15:04:05"

	// maxHolidayShift bounds the holiday correction to one year of days.
	maxHolidayShift = 366
)

// SetServices computes the collection date from the origin's holiday
// calendar and stores the services node. The origin must be set first.
func (c *Client) SetServices(ctx context.Context, req ServicesRequest) (err error) {
	ctx, done := c.observe(ctx, "SetServices", attribute.Int("year", req.Year))
	defer done(&err)

	if c.from == nil {
		return fail(ErrMissingFrom)
	}
	if c.token == "" {
		return fail(ErrMissingToken)
	}

	date, err := collectionDate(c.now().UTC().Truncate(time.Second), req.Year, req.Month, req.Day)
	if err != nil {
		return err
	}

	holidays := c.holidays(ctx, c.from.Country, req.Year)
	date = skipHolidays(date, holidays)

	c.logger.Info("Collection date computed",
		zap.String("country", c.from.Country),
		zap.String("date", date.Format(dateLayout)),
		zap.Int("holidays", len(holidays)),
	)

	c.services = &Services{
		Collection: Collection{
			Date:  date.Format(timestampLayout) + "Z",
			Hours: collectionHours,
		},
		Insurance:      insuranceFor(req.InsuranceValue),
		CashOnDelivery: CashOnDelivery{Value: req.CashOnDelivery, Currency: currencyEUR},
	}
	return nil
}

// holidays fetches the holiday calendar. A failed lookup leaves the date
// unchecked rather than failing the services step.
func (c *Client) holidays(ctx context.Context, country string, year int) []Holiday {
	resp, err := c.Dispatch(ctx, http.MethodPost, pathHolidays, nil, holidaysRequest{
		App:     c.app,
		Country: country,
		Year:    year,
	})
	if err != nil {
		c.logger.Warn("Holiday calendar unavailable", zap.Error(err))
		return nil
	}
	if !resp.OK() {
		c.logger.Warn("Holiday calendar unavailable", zap.Int("status", resp.StatusCode))
		return nil
	}

	holidays, err := decodeData[[]Holiday](resp)
	if err != nil {
		c.logger.Warn("Holiday calendar unreadable", zap.Error(err))
		return nil
	}
	return holidays
}

// collectionDate applies the requested year, month and day to now.
// Without month and day the next business day after now is used; with
// either of them a weekend date is pushed to the following Monday.
func collectionDate(now time.Time, year, month, day int) (time.Time, error) {
	if month < 0 || month > 12 || day < 0 || day > 31 {
		return time.Time{}, fail(ErrInvalidCollectionDate).WithCause(fmt.Errorf("month %d day %d", month, day))
	}

	m := now.Month()
	if month != 0 {
		m = time.Month(month)
	}
	d := now.Day()
	if day != 0 {
		d = day
	}

	t := time.Date(year, m, d, now.Hour(), now.Minute(), now.Second(), 0, time.UTC)
	if t.Month() != m || t.Day() != d {
		return time.Time{}, fail(ErrInvalidCollectionDate).WithCause(fmt.Errorf("%04d-%02d-%02d does not exist", year, m, d))
	}

	if month != 0 || day != 0 {
		return pushWeekend(t), nil
	}

	if wd := mondayWeekday(t); wd > 3 {
		return t.AddDate(0, 0, 7-wd), nil
	}
	return t.AddDate(0, 0, 1), nil
}

// skipHolidays moves t forward until it is neither a holiday nor a weekend.
func skipHolidays(t time.Time, holidays []Holiday) time.Time {
	dates := lo.Map(holidays, func(h Holiday, _ int) string { return h.Date })
	for i := 0; i < maxHolidayShift && lo.Contains(dates, t.Format(dateLayout)); i++ {
		t = pushWeekend(t.AddDate(0, 0, 1))
	}
	return t
}

// pushWeekend moves a Saturday or Sunday to the following Monday.
func pushWeekend(t time.Time) time.Time {
	switch t.Weekday() {
	case time.Saturday:
		return t.AddDate(0, 0, 2)
	case time.Sunday:
		return t.AddDate(0, 0, 1)
	default:
		return t
	}
}

// mondayWeekday numbers days Monday=0 .. Sunday=6.
func mondayWeekday(t time.Time) int {
	return (int(t.Weekday()) + 6) % 7
}

func insuranceFor(value float64) Insurance {
	if value == 0 {
		return Insurance{Value: 0, Currency: currencyEUR, Algorithm: insuranceAlgorithmNone}
	}
	return Insurance{Value: value, Currency: currencyEUR, Algorithm: insuranceAlgorithmAny}
}
