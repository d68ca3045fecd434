package classify

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/huangsam/prlens/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// buildTestTree creates a repo layout with nested project manifests:
//
//	src/CoreServices/CoreServices.csproj
//	src/CoreServices/Auth/CoreServicesAuth.csproj
//	src/WebPortal/WebPortal.csproj
func buildTestTree(t *testing.T) string {
	t.Helper()
	root := t.TempDir()
	manifests := []string{
		"src/CoreServices/CoreServices.csproj",
		"src/CoreServices/Auth/CoreServicesAuth.csproj",
		"src/WebPortal/WebPortal.csproj",
	}
	for _, m := range manifests {
		path := filepath.Join(root, m)
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
		require.NoError(t, os.WriteFile(path, []byte("<Project/>"), 0o644))
	}
	return root
}

func TestClassifyProjectName(t *testing.T) {
	// Groups are sorted by descending length, longest prefix must win.
	c := New(t.TempDir(), []string{"CoreServices", "Core", "Web"})

	tests := []struct {
		name string
		want string
	}{
		{name: "CoreServicesAuth", want: "CoreServices"},
		{name: "coreservicesauth", want: "CoreServices"}, // case-insensitive
		{name: "CoreBilling", want: "Core"},
		{name: "WebPortal", want: "Web"},
		{name: "Standalone", want: "Standalone"}, // own group
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, c.ClassifyProjectName(tt.name))
		})
	}
}

func TestClassifyFilePath(t *testing.T) {
	root := buildTestTree(t)
	c := New(root, []string{"CoreServices", "Web"})
	require.NoError(t, c.Discover("*.csproj"))

	tests := []struct {
		name string
		path string
		want string
	}{
		{name: "direct project file", path: "src/WebPortal/Pages/Index.cshtml", want: "Web"},
		{name: "nested project wins over parent", path: "src/CoreServices/Auth/Token.cs", want: "CoreServices"},
		{name: "parent project", path: "src/CoreServices/Program.cs", want: "CoreServices"},
		{name: "case-insensitive dir match", path: "src/webportal/app.js", want: "Web"},
		{name: "segment fallback", path: "docs/WebPortal/readme.md", want: "Web"},
		{name: "unmatched", path: "tools/build.sh", want: schema.UnmatchedGroup},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, c.ClassifyFilePath(tt.path))
		})
	}
}

func TestClassifyFilePathPrefersLongerDirectory(t *testing.T) {
	// Two discovered directories where one path is a prefix of the other:
	// the more specific project must win regardless of discovery order.
	root := buildTestTree(t)
	c := New(root, nil)
	require.NoError(t, c.Discover("*.csproj"))

	assert.Equal(t, "CoreServicesAuth", c.ProjectNameForPath("src/CoreServices/Auth/Handlers/Login.cs"))
	assert.Equal(t, "CoreServices", c.ProjectNameForPath("src/CoreServices/Util.cs"))
}

func TestAllGroups(t *testing.T) {
	root := buildTestTree(t)
	c := New(root, []string{"CoreServices", "Web"})
	require.NoError(t, c.Discover("*.csproj"))

	assert.Equal(t, []string{"CoreServices", "Web"}, c.AllGroups())
}

func TestProjectNameForPathUnmatched(t *testing.T) {
	c := New(t.TempDir(), nil)
	require.NoError(t, c.Discover("*.csproj"))

	assert.Equal(t, schema.UnmatchedGroup, c.ProjectNameForPath("any/file.txt"))
}
