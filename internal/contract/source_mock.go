package contract

import (
	"context"
	"time"

	"github.com/huangsam/prlens/schema"
	"github.com/stretchr/testify/mock"
)

// MockQuotaChecker is a testify mock for the QuotaChecker type.
type MockQuotaChecker struct {
	mock.Mock
}

var _ QuotaChecker = &MockQuotaChecker{} // Compile-time check

// CheckQuota implements the QuotaChecker interface.
func (m *MockQuotaChecker) CheckQuota(ctx context.Context) (QuotaState, error) {
	ret := m.Called(ctx)
	state, _ := ret.Get(0).(QuotaState)
	return state, ret.Error(1)
}

// MockPullRequestSource is a testify mock for the PullRequestSource type.
type MockPullRequestSource struct {
	mock.Mock
}

var _ PullRequestSource = &MockPullRequestSource{} // Compile-time check

// CheckQuota implements the PullRequestSource interface.
func (m *MockPullRequestSource) CheckQuota(ctx context.Context) (QuotaState, error) {
	ret := m.Called(ctx)
	state, _ := ret.Get(0).(QuotaState)
	return state, ret.Error(1)
}

// FetchMergedPulls implements the PullRequestSource interface.
func (m *MockPullRequestSource) FetchMergedPulls(ctx context.Context, start, end time.Time, baseBranch string) ([]schema.RawPullRequest, error) {
	ret := m.Called(ctx, start, end, baseBranch)
	pulls, _ := ret.Get(0).([]schema.RawPullRequest)
	return pulls, ret.Error(1)
}
