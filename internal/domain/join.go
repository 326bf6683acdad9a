package domain

// JoinSites inner-joins measurements to sites on site ID. Measurements whose
// site is unknown are dropped. Output preserves measurement order. Sites must
// already be deduplicated; if not, the last site with a given ID wins.
func JoinSites(records []CleanRecord, sites []MonitoringSite) []JoinedRecord {
	byID := make(map[string]MonitoringSite, len(sites))
	for i := range sites {
		byID[sites[i].ID] = sites[i]
	}

	out := make([]JoinedRecord, 0, len(records))
	for i := range records {
		site, ok := byID[records[i].SiteID]
		if !ok {
			continue
		}
		out = append(out, JoinedRecord{CleanRecord: records[i], Site: site})
	}
	return out
}

// JoinPopulation inner-joins region boundaries to population rows on exact,
// case-sensitive name equality. Output follows boundary order; a name that
// appears in several population rows yields one region per row.
func JoinPopulation(boundaries []RegionBoundary, populations []RegionPopulationRow) []RegionPopulation {
	byName := make(map[string][]RegionPopulationRow, len(populations))
	for i := range populations {
		byName[populations[i].Name] = append(byName[populations[i].Name], populations[i])
	}

	out := make([]RegionPopulation, 0, len(boundaries))
	for i := range boundaries {
		for _, pop := range byName[boundaries[i].Name] {
			out = append(out, RegionPopulation{
				Name:       boundaries[i].Name,
				Population: pop.Population,
				Geometry:   boundaries[i].Geometry,
				Properties: boundaries[i].Properties,
			})
		}
	}
	return out
}

// ExcludeRegions drops regions whose name is in names.
func ExcludeRegions(regions []RegionPopulation, names []string) []RegionPopulation {
	excluded := make(map[string]struct{}, len(names))
	for _, n := range names {
		excluded[n] = struct{}{}
	}

	out := make([]RegionPopulation, 0, len(regions))
	for i := range regions {
		if _, ok := excluded[regions[i].Name]; ok {
			continue
		}
		out = append(out, regions[i])
	}
	return out
}
