package domain

import "sort"

// DedupSites keeps the first occurrence of each site ID in source order.
func DedupSites(sites []MonitoringSite) []MonitoringSite {
	seen := make(map[string]struct{}, len(sites))
	out := make([]MonitoringSite, 0, len(sites))
	for i := range sites {
		if _, ok := seen[sites[i].ID]; ok {
			continue
		}
		seen[sites[i].ID] = struct{}{}
		out = append(out, sites[i])
	}
	return out
}

type measurementKey struct {
	siteID string
	date   string
}

// DedupMeasurements stable-sorts records by ActivityStartDate ascending and
// keeps the last record for each (site ID, date) pair. Among records sharing a
// key the one latest in source order wins. Survivors stay in sorted order.
func DedupMeasurements(records []JoinedRecord) []JoinedRecord {
	sorted := make([]JoinedRecord, len(records))
	copy(sorted, records)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].ActivityStartDate < sorted[j].ActivityStartDate
	})

	last := make(map[measurementKey]int, len(sorted))
	for i := range sorted {
		last[measurementKey{siteID: sorted[i].SiteID, date: sorted[i].ActivityStartDate}] = i
	}

	out := make([]JoinedRecord, 0, len(last))
	for i := range sorted {
		if last[measurementKey{siteID: sorted[i].SiteID, date: sorted[i].ActivityStartDate}] == i {
			out = append(out, sorted[i])
		}
	}
	return out
}
