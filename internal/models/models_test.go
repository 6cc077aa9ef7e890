package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestVideoRequest_Complete(t *testing.T) {
	tests := []struct {
		name     string
		req      VideoRequest
		expected bool
	}{
		{
			name:     "All fields",
			req:      VideoRequest{ProductName: "Bottle", Description: "Insulated", Scenes: "Scene 1"},
			expected: true,
		},
		{
			name:     "Missing scenes",
			req:      VideoRequest{ProductName: "Bottle", Description: "Insulated"},
			expected: false,
		},
		{
			name:     "Whitespace only",
			req:      VideoRequest{ProductName: "  ", Description: "Insulated", Scenes: "Scene 1"},
			expected: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, tt.req.Complete())
		})
	}
}

func TestRanked(t *testing.T) {
	ranked := Ranked(map[string]int{"b": 2, "a": 2, "c": 5, "d": 1})

	assert.Equal(t, []RankedCount{
		{Key: "c", Count: 5},
		{Key: "a", Count: 2},
		{Key: "b", Count: 2},
		{Key: "d", Count: 1},
	}, ranked)
}

func TestTopKeys(t *testing.T) {
	counts := map[string]int{"shorts": 7, "technology": 6, "science": 4, "tech": 3}

	assert.Equal(t, []string{"shorts", "technology"}, TopKeys(counts, 2))
	assert.Len(t, TopKeys(counts, 10), 4)
	assert.Nil(t, TopKeys(nil, 3))
}

func TestPlatformData_Merge(t *testing.T) {
	data := &PlatformData{}
	data.Merge(&PlatformData{Reddit: &RedditData{}})
	data.Merge(&PlatformData{Bluesky: &BlueskyData{}})
	data.Merge(nil)

	assert.NotNil(t, data.Reddit)
	assert.NotNil(t, data.Bluesky)
	assert.Nil(t, data.YouTube)
}
