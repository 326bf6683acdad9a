package pipeline

import "time"

// Stage names, in execution order.
const (
	StageSitesLoaded      = "sites_loaded"
	StageSitesDeduped     = "sites_deduped"
	StageSamplesLoaded    = "samples_loaded"
	StageWithValue        = "with_value"
	StageParsed           = "parsed"
	StagePositive         = "positive"
	StageRecognizedUnit   = "recognized_unit"
	StageJoined           = "joined"
	StageDeduped          = "deduped"
	StageInBounds         = "in_bounds"
	StageGeolocated       = "geolocated"
	StageBoundariesLoaded = "boundaries_loaded"
	StageRegionsJoined    = "regions_joined"
	StageRegionsKept      = "regions_kept"
)

// StageCount is the number of rows surviving a stage and how many it dropped.
type StageCount struct {
	Stage   string `json:"stage" yaml:"stage"`
	Rows    int    `json:"rows" yaml:"rows"`
	Dropped int    `json:"dropped" yaml:"dropped"`
}

// Report summarizes one run.
type Report struct {
	RunID      string         `json:"run_id"`
	StartedAt  time.Time      `json:"started_at"`
	FinishedAt time.Time      `json:"finished_at"`
	Rejected   int            `json:"rejected_values"`
	Stages     []StageCount   `json:"stages"`
	Exported   map[string]int `json:"exported,omitempty"`
}

// Duration is the wall time between start and finish.
func (r *Report) Duration() time.Duration {
	return r.FinishedAt.Sub(r.StartedAt)
}

// Count returns the row count recorded for stage.
func (r *Report) Count(stage string) (int, bool) {
	for _, s := range r.Stages {
		if s.Stage == stage {
			return s.Rows, true
		}
	}
	return 0, false
}

// Counts returns all stage row counts keyed by stage name.
func (r *Report) Counts() map[string]int {
	out := make(map[string]int, len(r.Stages))
	for _, s := range r.Stages {
		out[s.Stage] = s.Rows
	}
	return out
}

func (r *Report) record(stage string, rows, before int) StageCount {
	sc := StageCount{Stage: stage, Rows: rows, Dropped: before - rows}
	r.Stages = append(r.Stages, sc)
	return sc
}
