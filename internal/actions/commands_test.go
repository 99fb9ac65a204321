package actions

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseCommands(t *testing.T) {
	testCases := []struct {
		name string
		body string
		want []Command
	}{
		{
			name: "single command",
			body: "/retest tox",
			want: []Command{{Name: "retest", Args: []string{"tox"}}},
		},
		{
			name: "command embedded in prose lines",
			body: "Looks good overall.\n/assign-reviewers\nThanks!",
			want: []Command{{Name: "assign-reviewers", Args: []string{}}},
		},
		{
			name: "multiple commands",
			body: "/retest tox\n/cherry-pick release-4.16",
			want: []Command{
				{Name: "retest", Args: []string{"tox"}},
				{Name: "cherry-pick", Args: []string{"release-4.16"}},
			},
		},
		{
			name: "leading whitespace tolerated",
			body: "   /retest build-container",
			want: []Command{{Name: "retest", Args: []string{"build-container"}}},
		},
		{
			name: "uppercase command normalized",
			body: "/RETEST tox",
			want: []Command{{Name: "retest", Args: []string{"tox"}}},
		},
		{
			name: "slash mid-line is not a command",
			body: "see docs/readme for details",
			want: nil,
		},
		{
			name: "bare slash ignored",
			body: "/",
			want: nil,
		},
		{
			name: "empty body",
			body: "",
			want: nil,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, ParseCommands(tc.body))
		})
	}
}

func TestHasCommand(t *testing.T) {
	body := "some context\n/retest tox\n/cherry-pick release-4.16"

	assert.True(t, HasCommand(body, "retest", "tox"))
	assert.True(t, HasCommand(body, "retest"))
	assert.True(t, HasCommand(body, "cherry-pick", "release-4.16"))
	assert.False(t, HasCommand(body, "retest", "build-container"))
	assert.False(t, HasCommand(body, "assign-reviewers"))
	assert.True(t, HasCommand("/retest TOX", "retest", "tox"), "argument match is case-insensitive")
}
