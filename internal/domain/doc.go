// Package domain models Water Quality Portal (WQP) lead sample data and the
// pure cleaning stages applied to it.
//
// # Data Source
//
// Sample and site tables are WQP downloads (https://www.waterqualitydata.us/)
// filtered to CharacteristicName "Lead". State boundaries come from the Census
// cartographic boundary file (cb_2018_us_state_20m) converted to GeoJSON, and
// population estimates from the Census state population table.
//
// # WQP Data Conventions
//
// Result values:
//
//	ResultMeasureValue is free text. Most rows are decimal numbers ("5", "0.002"),
//	but some carry qualifiers or notes ("<0.5", "Not Detected") and many are
//	blank. Blank cells and common NA tokens ("NA", "NaN", "null", ...) are
//	treated as absent. Non-numeric text is rejected, never defaulted to zero.
//
// Units:
//
//	ResultMeasure/MeasureUnitCode is matched exactly. Only "ug/l" (canonical)
//	and "mg/l" (x1000) are kept; "ppb", "ug/kg", "mg/kg" and friends describe
//	sediment or tissue samples and are dropped.
//
// Dates:
//
//	ActivityStartDate is "YYYY-MM-DD". Sorting compares the raw strings, which
//	is chronological for this format. The month index is the second "-"
//	delimited component.
//
// Coordinates:
//
//	LatitudeMeasure/LongitudeMeasure are WGS-84 decimal degrees. Blank or
//	unparsable coordinates are held as NaN so they fail every bounding box.
//
// # Pipeline Order
//
//	DedupSites → FilterMeasurements → JoinSites → DedupMeasurements →
//	FilterBoundingBox → Geolocate
//
// Each stage returns a new slice and never mutates its input.
package domain
