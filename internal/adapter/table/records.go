package table

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/couchcryptid/lead-sites-etl/internal/domain"
)

// WQP column names.
const (
	colSiteID        = "MonitoringLocationIdentifier"
	colSiteName      = "MonitoringLocationName"
	colSiteType      = "MonitoringLocationTypeName"
	colLatitude      = "LatitudeMeasure"
	colLongitude     = "LongitudeMeasure"
	colStateCode     = "StateCode"
	colCountyCode    = "CountyCode"
	colResultValue   = "ResultMeasureValue"
	colResultUnit    = "ResultMeasure/MeasureUnitCode"
	colActivityStart = "ActivityStartDate"
)

// SiteColumns are the site table columns the pipeline requires.
var SiteColumns = []string{colSiteID, colSiteName, colSiteType, colLatitude, colLongitude, colStateCode, colCountyCode}

// SampleColumns are the sample table columns the pipeline requires.
var SampleColumns = []string{colSiteID, colActivityStart, colResultValue, colResultUnit}

// Sites maps the site table to monitoring sites. Blank or unparsable
// coordinates become NaN.
func Sites(t *Table) ([]domain.MonitoringSite, error) {
	if err := t.Require(SiteColumns...); err != nil {
		return nil, err
	}

	sites := make([]domain.MonitoringSite, 0, len(t.Rows))
	for _, row := range t.Rows {
		sites = append(sites, domain.MonitoringSite{
			ID:         t.Value(row, colSiteID),
			Name:       t.Value(row, colSiteName),
			TypeName:   t.Value(row, colSiteType),
			Latitude:   parseCoordinate(t.Value(row, colLatitude)),
			Longitude:  parseCoordinate(t.Value(row, colLongitude)),
			StateCode:  t.Value(row, colStateCode),
			CountyCode: t.Value(row, colCountyCode),
		})
	}
	return sites, nil
}

// Samples maps the sample table to measurement records. Optional metadata
// columns missing from the header are left empty.
func Samples(t *Table) ([]domain.MeasurementRecord, error) {
	if err := t.Require(SampleColumns...); err != nil {
		return nil, err
	}

	records := make([]domain.MeasurementRecord, 0, len(t.Rows))
	for _, row := range t.Rows {
		value, ok := t.Get(row, colResultValue)
		records = append(records, domain.MeasurementRecord{
			OrganizationIdentifier:    t.Value(row, "OrganizationIdentifier"),
			OrganizationFormalName:    t.Value(row, "OrganizationFormalName"),
			ActivityIdentifier:        t.Value(row, "ActivityIdentifier"),
			ActivityTypeCode:          t.Value(row, "ActivityTypeCode"),
			ActivityMediaName:         t.Value(row, "ActivityMediaName"),
			ActivityStartDate:         t.Value(row, colActivityStart),
			SiteID:                    t.Value(row, colSiteID),
			ProjectIdentifier:         t.Value(row, "ProjectIdentifier"),
			CollectionMethodID:        t.Value(row, "SampleCollectionMethod/MethodIdentifier"),
			CollectionMethodName:      t.Value(row, "SampleCollectionMethod/MethodName"),
			CharacteristicName:        t.Value(row, "CharacteristicName"),
			ResultMeasureValue:        value,
			HasValue:                  ok,
			UnitCode:                  t.Value(row, colResultUnit),
			ResultStatusIdentifier:    t.Value(row, "ResultStatusIdentifier"),
			ResultValueTypeName:       t.Value(row, "ResultValueTypeName"),
			PrecisionValue:            t.Value(row, "PrecisionValue"),
			AnalyticalMethodID:        t.Value(row, "ResultAnalyticalMethod/MethodIdentifier"),
			AnalyticalMethodIDContext: t.Value(row, "ResultAnalyticalMethod/MethodIdentifierContext"),
			AnalyticalMethodName:      t.Value(row, "ResultAnalyticalMethod/MethodName"),
			DetectionLimitTypeName:    t.Value(row, "DetectionQuantitationLimitTypeName"),
			DetectionLimitValue:       t.Value(row, "DetectionQuantitationLimitMeasure/MeasureValue"),
			DetectionLimitUnitCode:    t.Value(row, "DetectionQuantitationLimitMeasure/MeasureUnitCode"),
			ProviderName:              t.Value(row, "ProviderName"),
		})
	}
	return records, nil
}

// Populations maps the population table using the given name and value
// columns. An unparsable population is an error naming the row.
func Populations(t *Table, nameCol, valueCol string) ([]domain.RegionPopulationRow, error) {
	if err := t.Require(nameCol, valueCol); err != nil {
		return nil, err
	}

	out := make([]domain.RegionPopulationRow, 0, len(t.Rows))
	for i, row := range t.Rows {
		raw := t.Value(row, valueCol)
		pop, err := parsePopulation(raw)
		if err != nil {
			return nil, fmt.Errorf("%s: row %d: column %q: %w", t.Name, i+2, valueCol, err)
		}
		out = append(out, domain.RegionPopulationRow{Name: t.Value(row, nameCol), Population: pop})
	}
	return out, nil
}

func parseCoordinate(s string) float64 {
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return math.NaN()
	}
	return v
}

// parsePopulation accepts integers with optional thousands separators and
// integral floats such as "39557045.0".
func parsePopulation(s string) (int64, error) {
	s = strings.ReplaceAll(s, ",", "")
	if n, err := strconv.ParseInt(s, 10, 64); err == nil {
		return n, nil
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || f != math.Trunc(f) || math.IsInf(f, 0) {
		return 0, fmt.Errorf("invalid population %q", s)
	}
	return int64(f), nil
}
