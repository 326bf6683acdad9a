package domain

import (
	"strconv"

	"github.com/paulmach/orb/encoding/wkt"
)

// Dataset is the cleaned output handed to the visualization consumer.
type Dataset struct {
	RunID   string
	Records []GeolocatedRecord
	Regions []RegionPopulation
}

// RecordColumns lists the flat column layout of a GeolocatedRecord, in order.
var RecordColumns = []string{
	"OrganizationIdentifier",
	"OrganizationFormalName",
	"ActivityIdentifier",
	"ActivityTypeCode",
	"ActivityMediaName",
	"ActivityStartDate",
	"MonitoringLocationIdentifier",
	"ProjectIdentifier",
	"SampleCollectionMethod/MethodIdentifier",
	"SampleCollectionMethod/MethodName",
	"CharacteristicName",
	"ResultMeasureValue",
	"ResultMeasure/MeasureUnitCode",
	"ResultStatusIdentifier",
	"ResultValueTypeName",
	"PrecisionValue",
	"ResultAnalyticalMethod/MethodIdentifier",
	"ResultAnalyticalMethod/MethodIdentifierContext",
	"ResultAnalyticalMethod/MethodName",
	"DetectionQuantitationLimitTypeName",
	"DetectionQuantitationLimitMeasure/MeasureValue",
	"DetectionQuantitationLimitMeasure/MeasureUnitCode",
	"ProviderName",
	"LeadValue",
	"LeadValue_ug_l",
	"MonitoringLocationName",
	"MonitoringLocationTypeName",
	"LatitudeMeasure",
	"LongitudeMeasure",
	"StateCode",
	"CountyCode",
	"Month",
	"x",
	"y",
	"geometry",
}

// Row renders the record as strings in RecordColumns order.
func (r GeolocatedRecord) Row() []string {
	m := r.MeasurementRecord
	return []string{
		m.OrganizationIdentifier,
		m.OrganizationFormalName,
		m.ActivityIdentifier,
		m.ActivityTypeCode,
		m.ActivityMediaName,
		m.ActivityStartDate,
		m.SiteID,
		m.ProjectIdentifier,
		m.CollectionMethodID,
		m.CollectionMethodName,
		m.CharacteristicName,
		m.ResultMeasureValue,
		m.UnitCode,
		m.ResultStatusIdentifier,
		m.ResultValueTypeName,
		m.PrecisionValue,
		m.AnalyticalMethodID,
		m.AnalyticalMethodIDContext,
		m.AnalyticalMethodName,
		m.DetectionLimitTypeName,
		m.DetectionLimitValue,
		m.DetectionLimitUnitCode,
		m.ProviderName,
		formatFloat(r.LeadValue),
		formatFloat(r.LeadValueUGL),
		r.Site.Name,
		r.Site.TypeName,
		formatFloat(r.Site.Latitude),
		formatFloat(r.Site.Longitude),
		r.Site.StateCode,
		r.Site.CountyCode,
		strconv.Itoa(r.Month),
		formatFloat(r.X()),
		formatFloat(r.Y()),
		wkt.MarshalString(r.Point),
	}
}

// RowMap renders the record keyed by column name.
func (r GeolocatedRecord) RowMap() map[string]string {
	row := r.Row()
	out := make(map[string]string, len(RecordColumns))
	for i, col := range RecordColumns {
		out[col] = row[i]
	}
	return out
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
