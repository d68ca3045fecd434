package schema

// Day is a UTC calendar date in ISO form (2006-01-02). Stats keys use it so
// map keys stay comparable and stable across runs.
type Day string

// ProjectKey identifies a (day, project) stats bucket.
type ProjectKey struct {
	Day         Day
	ProjectName string
}

// TeamProjectKey identifies a (day, project, team) stats bucket.
type TeamProjectKey struct {
	Day         Day
	ProjectName string
	TeamName    string
}

// ProjectDelta holds the per-day/project counters derived from one run.
// Counters are deltas to be accumulated onto persisted state, never absolutes.
type ProjectDelta struct {
	ProjectGroup      string
	PRCount           int
	TotalLinesChanged int
	FilesModified     int
	FilesAdded        int
}

// TeamProjectDelta holds the per-day/project/team counters derived from one run.
type TeamProjectDelta struct {
	ProjectGroup string
	PRCount      int
}

// StatsDeltas is the full output of the aggregation step for one run.
type StatsDeltas struct {
	Projects     map[ProjectKey]*ProjectDelta
	TeamProjects map[TeamProjectKey]*TeamProjectDelta
}

// NewStatsDeltas returns an empty delta set with initialized maps.
func NewStatsDeltas() *StatsDeltas {
	return &StatsDeltas{
		Projects:     make(map[ProjectKey]*ProjectDelta),
		TeamProjects: make(map[TeamProjectKey]*TeamProjectDelta),
	}
}

// Project returns the delta bucket for the key, creating a zeroed one on first use.
func (d *StatsDeltas) Project(key ProjectKey, group string) *ProjectDelta {
	if delta, ok := d.Projects[key]; ok {
		return delta
	}
	delta := &ProjectDelta{ProjectGroup: group}
	d.Projects[key] = delta
	return delta
}

// TeamProject returns the delta bucket for the key, creating a zeroed one on first use.
func (d *StatsDeltas) TeamProject(key TeamProjectKey, group string) *TeamProjectDelta {
	if delta, ok := d.TeamProjects[key]; ok {
		return delta
	}
	delta := &TeamProjectDelta{ProjectGroup: group}
	d.TeamProjects[key] = delta
	return delta
}
