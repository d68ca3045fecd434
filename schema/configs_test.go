package schema

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// writeTempJSON writes content to a temp file and returns its path.
func writeTempJSON(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadProjectGroupsSortsByDescendingLength(t *testing.T) {
	path := writeTempJSON(t, "groups.json", `["Core", "CoreServices", "Web"]`)

	groups, err := LoadProjectGroups(path)

	require.NoError(t, err)
	assert.Equal(t, []string{"CoreServices", "Core", "Web"}, groups)
}

func TestLoadProjectGroupsErrors(t *testing.T) {
	tests := []struct {
		name    string
		content string
		missing bool
	}{
		{name: "missing file", missing: true},
		{name: "invalid json", content: `{"not": "a list"}`},
		{name: "empty list", content: `[]`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "groups.json")
			if !tt.missing {
				require.NoError(t, os.WriteFile(path, []byte(tt.content), 0o644))
			}
			_, err := LoadProjectGroups(path)
			assert.Error(t, err)
		})
	}
}

func TestLoadTeams(t *testing.T) {
	path := writeTempJSON(t, "teams.json",
		`[{"teamName": "Alpha", "authors": ["bob"]}, {"teamName": "Beta", "authors": ["carol"]}]`)

	teams, err := LoadTeams(path)

	require.NoError(t, err)
	require.Len(t, teams, 2)
	assert.Equal(t, "Alpha", teams[0].Name)
	assert.Equal(t, []string{"carol"}, teams[1].Authors)
}

func TestLoadTeamsRejectsDuplicateAuthors(t *testing.T) {
	// Same login in two teams differs only by case and must still be rejected.
	path := writeTempJSON(t, "teams.json",
		`[{"teamName": "Alpha", "authors": ["bob"]}, {"teamName": "Beta", "authors": ["Bob"]}]`)

	_, err := LoadTeams(path)

	require.Error(t, err)
	assert.Contains(t, err.Error(), "duplicate authors")
}

func TestTeamForAuthor(t *testing.T) {
	teams := []Team{
		{Name: "Alpha", Authors: []string{"bob"}},
		{Name: "Beta", Authors: []string{"carol"}},
	}

	tests := []struct {
		author string
		want   string
	}{
		{author: "Bob", want: "Alpha"}, // case-insensitive match
		{author: "carol", want: "Beta"},
		{author: "dave", want: UnassignedTeam},
	}

	for _, tt := range tests {
		t.Run(tt.author, func(t *testing.T) {
			assert.Equal(t, tt.want, TeamForAuthor(teams, tt.author))
		})
	}
}

func TestAllTeamNames(t *testing.T) {
	teams := []Team{{Name: "Zeta"}, {Name: "Alpha"}}

	names := AllTeamNames(teams)

	assert.Equal(t, []string{"Alpha", UnassignedTeam, "Zeta"}, names)
}
