package schema

import (
	"encoding/json"
	"fmt"
	"os"
	"sort"
	"strings"
)

// LoadProjectGroups reads the project-group prefix list from a JSON file and
// returns it sorted by descending length, which longest-prefix-first matching
// depends on.
func LoadProjectGroups(path string) ([]string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read project groups file %q: %w", path, err)
	}

	var groups []string
	if err := json.Unmarshal(data, &groups); err != nil {
		return nil, fmt.Errorf("failed to parse project groups file %q: %w", path, err)
	}
	if len(groups) == 0 {
		return nil, fmt.Errorf("project groups file %q is empty", path)
	}

	sort.SliceStable(groups, func(i, j int) bool {
		return len(groups[i]) > len(groups[j])
	})
	return groups, nil
}

// LoadTeams reads the team roster from a JSON file. An author login may appear
// in at most one team; duplicates across teams (case-insensitive) are rejected.
func LoadTeams(path string) ([]Team, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read teams file %q: %w", path, err)
	}

	var teams []Team
	if err := json.Unmarshal(data, &teams); err != nil {
		return nil, fmt.Errorf("failed to parse teams file %q: %w", path, err)
	}
	if len(teams) == 0 {
		return nil, fmt.Errorf("teams file %q is empty", path)
	}

	seen := make(map[string]string) // lowercase login -> team name
	var duplicates []string
	for _, team := range teams {
		for _, author := range team.Authors {
			key := strings.ToLower(author)
			if _, ok := seen[key]; ok {
				duplicates = append(duplicates, author)
				continue
			}
			seen[key] = team.Name
		}
	}
	if len(duplicates) > 0 {
		return nil, fmt.Errorf("duplicate authors found across teams: %s", strings.Join(duplicates, ", "))
	}

	return teams, nil
}

// TeamForAuthor resolves the team name for an author login with an exact
// case-insensitive match. Unknown authors map to UnassignedTeam.
func TeamForAuthor(teams []Team, author string) string {
	for _, team := range teams {
		for _, a := range team.Authors {
			if strings.EqualFold(a, author) {
				return team.Name
			}
		}
	}
	return UnassignedTeam
}

// AllTeamNames returns the roster team names plus the synthetic UnassignedTeam,
// sorted for stable output.
func AllTeamNames(teams []Team) []string {
	names := make([]string, 0, len(teams)+1)
	for _, team := range teams {
		names = append(names, team.Name)
	}
	names = append(names, UnassignedTeam)
	sort.Strings(names)
	return names
}
