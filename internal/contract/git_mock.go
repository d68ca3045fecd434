package contract

import (
	"context"

	"github.com/stretchr/testify/mock"
)

// MockGitClient is a testify mock for the GitClient type.
type MockGitClient struct {
	mock.Mock
}

var _ GitClient = &MockGitClient{} // Compile-time check

// Run implements the GitClient interface.
func (m *MockGitClient) Run(ctx context.Context, repoPath string, args ...string) ([]byte, error) {
	mockArgs := []interface{}{ctx, repoPath}
	for _, arg := range args {
		mockArgs = append(mockArgs, arg)
	}
	ret := m.Called(mockArgs...)
	output, _ := ret.Get(0).([]byte)
	return output, ret.Error(1)
}

// CommitExists implements the GitClient interface.
func (m *MockGitClient) CommitExists(ctx context.Context, repoPath string, ref string) bool {
	ret := m.Called(ctx, repoPath, ref)
	return ret.Bool(0)
}

// FirstParent implements the GitClient interface.
func (m *MockGitClient) FirstParent(ctx context.Context, repoPath string, sha string) (string, error) {
	ret := m.Called(ctx, repoPath, sha)
	parent, _ := ret.Get(0).(string)
	return parent, ret.Error(1)
}

// DiffNameStatus implements the GitClient interface.
func (m *MockGitClient) DiffNameStatus(ctx context.Context, repoPath string, fromRef, toRef string) ([]byte, error) {
	ret := m.Called(ctx, repoPath, fromRef, toRef)
	output, _ := ret.Get(0).([]byte)
	return output, ret.Error(1)
}

// DiffNumstat implements the GitClient interface.
func (m *MockGitClient) DiffNumstat(ctx context.Context, repoPath string, fromRef, toRef string) ([]byte, error) {
	ret := m.Called(ctx, repoPath, fromRef, toRef)
	output, _ := ret.Get(0).([]byte)
	return output, ret.Error(1)
}
