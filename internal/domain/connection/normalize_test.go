package connection

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizePostsShapes(t *testing.T) {
	tests := []struct {
		name    string
		payload string
		total   int
	}{
		{
			name: "paginated results under data",
			payload: `{"data":{"results":[
				{"id":1,"title":"first"},{"id":2,"title":"second"}
			],"count":7}}`,
			total: 7,
		},
		{
			name: "posts field under data",
			payload: `{"data":{"posts":[
				{"id":1,"title":"first"},{"id":2,"title":"second"}
			]}}`,
			total: 2,
		},
		{
			name:    "bare array",
			payload: `[{"id":1,"title":"first"},{"id":2,"title":"second"}]`,
			total:   2,
		},
		{
			name:    "array under data",
			payload: `{"data":[{"id":1,"title":"first"},{"id":2,"title":"second"}]}`,
			total:   2,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			page, err := normalizePosts([]byte(tt.payload))
			require.NoError(t, err)
			require.Len(t, page.Items, 2, "every shape carries the same two posts")
			assert.Equal(t, int64(1), page.Items[0].ID)
			assert.Equal(t, "first", page.Items[0].Title)
			assert.Equal(t, int64(2), page.Items[1].ID)
			assert.Equal(t, tt.total, page.Total)
		})
	}
}

func TestNormalizePostsEmptyResults(t *testing.T) {
	page, err := normalizePosts([]byte(`{"data":{"results":[],"count":0}}`))
	require.NoError(t, err)
	assert.Empty(t, page.Items)
	assert.Zero(t, page.Total)
}

func TestNormalizePostsUnrecognizedShape(t *testing.T) {
	_, err := normalizePosts([]byte(`{"data":{"entries":[]}}`))
	assert.Error(t, err)
}

func TestServerMessagePriority(t *testing.T) {
	tests := []struct {
		payload  string
		expected string
	}{
		{`{"message":"from message"}`, "from message"},
		{`{"error":"from error"}`, "from error"},
		{`{"detail":"from detail"}`, "from detail"},
		{`{"message":"wins","error":"loses"}`, "wins"},
		{`not json`, ""},
		{`{}`, ""},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.expected, serverMessage([]byte(tt.payload)), "payload %s", tt.payload)
	}
}
