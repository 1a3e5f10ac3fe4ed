package main

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/tournevent/cushypost/pkg/cushypost"
)

// endpoint is a COUNTRY:POSTCODE:CITY argument.
type endpoint struct {
	Country  string
	Postcode string
	City     string
}

func parseEndpoint(s string) (endpoint, error) {
	parts := strings.SplitN(s, ":", 3)
	if len(parts) < 2 || parts[0] == "" || parts[1] == "" {
		return endpoint{}, fmt.Errorf("invalid address %q, expected COUNTRY:POSTCODE[:CITY]", s)
	}
	ep := endpoint{Country: strings.ToUpper(parts[0]), Postcode: parts[1]}
	if len(parts) == 3 {
		ep.City = parts[2]
	}
	return ep, nil
}

// parsePackage reads HEIGHTxWIDTHxLENGTHxWEIGHT, e.g. "10x20x30x2.5".
func parsePackage(s string) (cushypost.Package, error) {
	parts := strings.Split(strings.ToLower(s), "x")
	if len(parts) != 4 {
		return cushypost.Package{}, fmt.Errorf("invalid package %q, expected HxWxLxKG", s)
	}

	values := make([]float64, len(parts))
	for i, p := range parts {
		v, err := strconv.ParseFloat(strings.TrimSpace(p), 64)
		if err != nil || v <= 0 {
			return cushypost.Package{}, fmt.Errorf("invalid package %q: %q is not a positive number", s, p)
		}
		values[i] = v
	}

	return cushypost.Package{
		Height: values[0],
		Width:  values[1],
		Length: values[2],
		Weight: values[3],
	}, nil
}

// parseDate turns an optional YYYY-MM-DD into a services request date.
// An empty value asks for the next business day of the current year.
func parseDate(s string, now time.Time) (year, month, day int, err error) {
	if s == "" {
		return now.Year(), 0, 0, nil
	}
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		return 0, 0, 0, fmt.Errorf("invalid date %q, expected YYYY-MM-DD", s)
	}
	return t.Year(), int(t.Month()), t.Day(), nil
}
