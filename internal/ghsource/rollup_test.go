package ghsource

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIsRollupPullRequest(t *testing.T) {
	tests := []struct {
		name  string
		title string
		body  string
		want  bool
	}{
		{name: "release title", title: "Release 2025.11", body: "", want: true},
		{name: "release title lowercase", title: "cut release branch", body: "", want: true},
		{name: "two distinct pull links", title: "Weekly merge", body: "Includes https://github.com/acme/widgets/pull/10 and https://github.com/acme/widgets/pull/11", want: true},
		{name: "same link twice", title: "Weekly merge", body: "https://github.com/acme/widgets/pull/10 https://github.com/acme/widgets/pull/10", want: false},
		{name: "one pull link", title: "Fix login", body: "Follows https://github.com/acme/widgets/pull/10", want: false},
		{name: "links to other repo", title: "Fix login", body: "https://github.com/other/repo/pull/1 https://github.com/other/repo/pull/2", want: false},
		{name: "plain PR", title: "Fix login timeout", body: "Refactors the session cache.", want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, IsRollupPullRequest(tt.title, tt.body, "acme", "widgets"))
		})
	}
}
