package domain

import "github.com/paulmach/orb"

// RegionBoundary is one feature of the region boundary source.
type RegionBoundary struct {
	Name       string
	Geometry   orb.Geometry
	Properties map[string]any
}

// RegionPopulationRow is one row of the population table.
type RegionPopulationRow struct {
	Name       string
	Population int64
}

// RegionPopulation is a region boundary joined with its population estimate.
type RegionPopulation struct {
	Name       string
	Population int64
	Geometry   orb.Geometry
	Properties map[string]any
}
