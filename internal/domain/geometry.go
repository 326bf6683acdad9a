package domain

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/paulmach/orb"
)

// ErrMalformedDate indicates an ActivityStartDate without a usable month.
var ErrMalformedDate = errors.New("malformed activity start date")

// DateFormatError identifies the record whose date could not be parsed.
type DateFormatError struct {
	Index  int
	SiteID string
	Date   string
	Reason string
}

func (e *DateFormatError) Error() string {
	return fmt.Sprintf("record %d (site %s): date %q: %s", e.Index, e.SiteID, e.Date, e.Reason)
}

func (e *DateFormatError) Unwrap() error { return ErrMalformedDate }

// Geolocate builds a point (x=longitude, y=latitude) and month index for every
// record. The first malformed date aborts with a *DateFormatError.
func Geolocate(records []JoinedRecord) ([]GeolocatedRecord, error) {
	out := make([]GeolocatedRecord, 0, len(records))
	for i := range records {
		month, reason := parseMonth(records[i].ActivityStartDate)
		if reason != "" {
			return nil, &DateFormatError{
				Index:  i,
				SiteID: records[i].SiteID,
				Date:   records[i].ActivityStartDate,
				Reason: reason,
			}
		}
		out = append(out, GeolocatedRecord{
			JoinedRecord: records[i],
			Point:        orb.Point{records[i].Site.Longitude, records[i].Site.Latitude},
			Month:        month,
		})
	}
	return out, nil
}

// parseMonth extracts the month from a "YYYY-MM-DD" string. A non-empty reason
// describes why the date was rejected.
func parseMonth(date string) (int, string) {
	parts := strings.Split(date, "-")
	if len(parts) < 2 {
		return 0, "expected at least two '-' separated components"
	}
	month, err := strconv.Atoi(parts[1])
	if err != nil {
		return 0, fmt.Sprintf("month component %q is not an integer", parts[1])
	}
	if month < 1 || month > 12 {
		return 0, fmt.Sprintf("month %d out of range 1-12", month)
	}
	return month, ""
}

// RecordsForMonth returns the records collected in the given month.
func RecordsForMonth(records []GeolocatedRecord, month int) []GeolocatedRecord {
	out := make([]GeolocatedRecord, 0)
	for i := range records {
		if records[i].Month == month {
			out = append(out, records[i])
		}
	}
	return out
}
