package domain

import (
	"errors"
	"fmt"
)

// BoundingBox is an inclusive longitude/latitude rectangle.
type BoundingBox struct {
	MinLon float64
	MaxLon float64
	MinLat float64
	MaxLat float64
}

// ContiguousUS approximates the contiguous United States. It excludes Alaska,
// Hawaii, and the outlying territories.
var ContiguousUS = BoundingBox{MinLon: -130, MaxLon: -60, MinLat: 20, MaxLat: 50}

// ErrInvalidBoundingBox is returned by Validate for inverted boxes.
var ErrInvalidBoundingBox = errors.New("invalid bounding box")

// Validate returns an error when the box is inverted.
func (b BoundingBox) Validate() error {
	if b.MinLon > b.MaxLon {
		return fmt.Errorf("%w: min longitude %g exceeds max %g", ErrInvalidBoundingBox, b.MinLon, b.MaxLon)
	}
	if b.MinLat > b.MaxLat {
		return fmt.Errorf("%w: min latitude %g exceeds max %g", ErrInvalidBoundingBox, b.MinLat, b.MaxLat)
	}
	return nil
}

// Contains reports whether (lon, lat) lies inside the box. NaN coordinates are
// never contained.
func (b BoundingBox) Contains(lon, lat float64) bool {
	return lon >= b.MinLon && lon <= b.MaxLon && lat >= b.MinLat && lat <= b.MaxLat
}

// FilterStats records how many records survived each measurement predicate.
type FilterStats struct {
	Input          int
	WithValue      int
	Parsed         int
	Rejected       int
	Positive       int
	RecognizedUnit int
}

// FilterMeasurements applies, in order: drop missing values, drop values that
// fail coercion, drop values <= 0, drop unrecognized units. Survivors carry the
// coerced value, the parsed unit and the value normalized to ug/l.
func FilterMeasurements(records []MeasurementRecord) ([]CleanRecord, FilterStats) {
	stats := FilterStats{Input: len(records)}

	withValue := make([]MeasurementRecord, 0, len(records))
	for i := range records {
		if records[i].HasValue && !IsMissingValue(records[i].ResultMeasureValue) {
			withValue = append(withValue, records[i])
		}
	}
	stats.WithValue = len(withValue)

	parsed := make([]CleanRecord, 0, len(withValue))
	for i := range withValue {
		cv := CoerceValue(withValue[i].ResultMeasureValue)
		if cv.Rejected {
			stats.Rejected++
			continue
		}
		parsed = append(parsed, CleanRecord{MeasurementRecord: withValue[i], LeadValue: cv.Value})
	}
	stats.Parsed = len(parsed)

	positive := make([]CleanRecord, 0, len(parsed))
	for i := range parsed {
		if parsed[i].LeadValue > 0 {
			positive = append(positive, parsed[i])
		}
	}
	stats.Positive = len(positive)

	out := make([]CleanRecord, 0, len(positive))
	for i := range positive {
		u, ok := ParseUnit(positive[i].UnitCode)
		if !ok {
			continue
		}
		rec := positive[i]
		rec.Unit = u
		rec.LeadValueUGL = NormalizeToUGL(rec.LeadValue, u)
		out = append(out, rec)
	}
	stats.RecognizedUnit = len(out)

	return out, stats
}

// FilterBoundingBox keeps records whose site coordinates fall inside box.
func FilterBoundingBox(records []JoinedRecord, box BoundingBox) []JoinedRecord {
	out := make([]JoinedRecord, 0, len(records))
	for i := range records {
		if box.Contains(records[i].Site.Longitude, records[i].Site.Latitude) {
			out = append(out, records[i])
		}
	}
	return out
}
