package gitdiff

import (
	"context"
	"testing"

	"github.com/huangsam/prlens/internal/contract"
	"github.com/huangsam/prlens/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	repoPath = "/tmp/clone"
	fromSHA  = "aaa111"
	toSHA    = "bbb222"
)

const nameStatusFixture = "M\tsrc/Core/Service.cs\n" +
	"A\tsrc/Core/NewThing.cs\n" +
	"D\tsrc/Web/Old.cs\n" +
	"R095\tsrc/Web/Before.cs\tsrc/Web/After.cs\n" +
	"T\tsrc/Link\n"

const numstatFixture = "10\t2\tsrc/Core/Service.cs\n" +
	"40\t0\tsrc/Core/NewThing.cs\n" +
	"0\t15\tsrc/Web/Old.cs\n" +
	"3\t1\tsrc/Web/{Before.cs => After.cs}\n" +
	"-\t-\tassets/logo.png\n"

func TestDiffFiles(t *testing.T) {
	client := &contract.MockGitClient{}
	client.On("CommitExists", context.Background(), repoPath, fromSHA).Return(true)
	client.On("CommitExists", context.Background(), repoPath, toSHA).Return(true)
	client.On("DiffNameStatus", context.Background(), repoPath, fromSHA, toSHA).Return([]byte(nameStatusFixture), nil)
	client.On("DiffNumstat", context.Background(), repoPath, fromSHA, toSHA).Return([]byte(numstatFixture), nil)

	files, err := DiffFiles(context.Background(), client, repoPath, fromSHA, toSHA)

	require.NoError(t, err)
	require.Len(t, files, 5)
	assert.Equal(t, schema.ChangedFile{
		FileName: "src/Core/Service.cs", Status: schema.ModifiedStatus,
		Additions: 10, Deletions: 2, Changes: 12,
	}, files[0])
	assert.Equal(t, schema.AddedStatus, files[1].Status)
	assert.Equal(t, 40, files[1].Changes)
	assert.Equal(t, schema.RemovedStatus, files[2].Status)

	// Renamed entry carries the post-change path and its counts.
	assert.Equal(t, "src/Web/After.cs", files[3].FileName)
	assert.Equal(t, schema.RenamedStatus, files[3].Status)
	assert.Equal(t, 4, files[3].Changes)

	// Unknown status letter falls back to modified.
	assert.Equal(t, schema.ModifiedStatus, files[4].Status)
	client.AssertExpectations(t)
}

func TestDiffFilesMissingCommit(t *testing.T) {
	client := &contract.MockGitClient{}
	client.On("CommitExists", context.Background(), repoPath, fromSHA).Return(false)

	_, err := DiffFiles(context.Background(), client, repoPath, fromSHA, toSHA)

	assert.ErrorIs(t, err, contract.ErrCommitNotFound)
}

func TestMergeCommitFiles(t *testing.T) {
	client := &contract.MockGitClient{}
	client.On("CommitExists", context.Background(), repoPath, toSHA).Return(true)
	client.On("CommitExists", context.Background(), repoPath, fromSHA).Return(true)
	client.On("FirstParent", context.Background(), repoPath, toSHA).Return(fromSHA, nil)
	client.On("DiffNameStatus", context.Background(), repoPath, fromSHA, toSHA).Return([]byte("M\tREADME.md\n"), nil)
	client.On("DiffNumstat", context.Background(), repoPath, fromSHA, toSHA).Return([]byte("1\t1\tREADME.md\n"), nil)

	files, err := MergeCommitFiles(context.Background(), client, repoPath, toSHA)

	require.NoError(t, err)
	require.Len(t, files, 1)
	assert.Equal(t, "README.md", files[0].FileName)
	assert.Equal(t, 2, files[0].Changes)
}

func TestMergeCommitFilesRootCommit(t *testing.T) {
	client := &contract.MockGitClient{}
	client.On("CommitExists", context.Background(), repoPath, toSHA).Return(true)
	client.On("FirstParent", context.Background(), repoPath, toSHA).Return("", nil)

	files, err := MergeCommitFiles(context.Background(), client, repoPath, toSHA)

	require.NoError(t, err)
	assert.Empty(t, files)
}

func TestParseChurnValue(t *testing.T) {
	assert.Equal(t, 42, parseChurnValue("42"))
	assert.Equal(t, 0, parseChurnValue("-"))
	assert.Equal(t, 0, parseChurnValue("junk"))
	assert.Equal(t, 0, parseChurnValue("-5"))
}

func TestResolveRenamedPath(t *testing.T) {
	tests := []struct {
		name string
		path string
		want string
	}{
		{name: "plain path", path: "a/b/c.go", want: "a/b/c.go"},
		{name: "full rename", path: "old.cs => new.cs", want: "new.cs"},
		{name: "braced middle", path: "src/{Old => New}/File.cs", want: "src/New/File.cs"},
		{name: "braced empty old", path: "src/{ => Sub}/File.cs", want: "src/Sub/File.cs"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, resolveRenamedPath(tt.path))
		})
	}
}
