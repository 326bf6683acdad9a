package domain

import "github.com/paulmach/orb"

// MonitoringSite is one row of the WQP site table.
type MonitoringSite struct {
	ID         string  `json:"MonitoringLocationIdentifier"`
	Name       string  `json:"MonitoringLocationName"`
	TypeName   string  `json:"MonitoringLocationTypeName"`
	Latitude   float64 `json:"LatitudeMeasure"`
	Longitude  float64 `json:"LongitudeMeasure"`
	StateCode  string  `json:"StateCode"`
	CountyCode string  `json:"CountyCode"`
}

// MeasurementRecord holds the WQP sample columns retained for analysis.
// HasValue is false when the ResultMeasureValue cell was absent or an NA token.
type MeasurementRecord struct {
	OrganizationIdentifier    string `json:"OrganizationIdentifier"`
	OrganizationFormalName    string `json:"OrganizationFormalName"`
	ActivityIdentifier        string `json:"ActivityIdentifier"`
	ActivityTypeCode          string `json:"ActivityTypeCode"`
	ActivityMediaName         string `json:"ActivityMediaName"`
	ActivityStartDate         string `json:"ActivityStartDate"`
	SiteID                    string `json:"MonitoringLocationIdentifier"`
	ProjectIdentifier         string `json:"ProjectIdentifier"`
	CollectionMethodID        string `json:"SampleCollectionMethod/MethodIdentifier"`
	CollectionMethodName      string `json:"SampleCollectionMethod/MethodName"`
	CharacteristicName        string `json:"CharacteristicName"`
	ResultMeasureValue        string `json:"ResultMeasureValue"`
	HasValue                  bool   `json:"-"`
	UnitCode                  string `json:"ResultMeasure/MeasureUnitCode"`
	ResultStatusIdentifier    string `json:"ResultStatusIdentifier"`
	ResultValueTypeName       string `json:"ResultValueTypeName"`
	PrecisionValue            string `json:"PrecisionValue"`
	AnalyticalMethodID        string `json:"ResultAnalyticalMethod/MethodIdentifier"`
	AnalyticalMethodIDContext string `json:"ResultAnalyticalMethod/MethodIdentifierContext"`
	AnalyticalMethodName      string `json:"ResultAnalyticalMethod/MethodName"`
	DetectionLimitTypeName    string `json:"DetectionQuantitationLimitTypeName"`
	DetectionLimitValue       string `json:"DetectionQuantitationLimitMeasure/MeasureValue"`
	DetectionLimitUnitCode    string `json:"DetectionQuantitationLimitMeasure/MeasureUnitCode"`
	ProviderName              string `json:"ProviderName"`
}

// CleanRecord is a measurement that passed the value and unit predicates.
type CleanRecord struct {
	MeasurementRecord
	LeadValue    float64 `json:"LeadValue"`
	Unit         Unit    `json:"-"`
	LeadValueUGL float64 `json:"LeadValue_ug_l"`
}

// JoinedRecord is a CleanRecord merged with its monitoring site.
type JoinedRecord struct {
	CleanRecord
	Site MonitoringSite `json:"site"`
}

// GeolocatedRecord is the final row handed to the visualization consumer.
type GeolocatedRecord struct {
	JoinedRecord
	Point orb.Point `json:"-"`
	Month int       `json:"Month"`
}

// X returns the longitude of the record's point.
func (r GeolocatedRecord) X() float64 { return r.Point.X() }

// Y returns the latitude of the record's point.
func (r GeolocatedRecord) Y() float64 { return r.Point.Y() }
