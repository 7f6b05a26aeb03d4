package posts

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/terraconstructs/postboard/pkg/sdk"
)

func TestParseID(t *testing.T) {
	tests := []struct {
		arg     string
		want    int64
		wantErr bool
	}{
		{arg: "12", want: 12},
		{arg: "#7", want: 7},
		{arg: "0", wantErr: true},
		{arg: "-3", wantErr: true},
		{arg: "abc", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.arg, func(t *testing.T) {
			got, err := parseID(tt.arg)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestEnsureOwner(t *testing.T) {
	post := &sdk.Post{ID: 4, UserID: 1}

	assert.NoError(t, ensureOwner(post, &sdk.UserSummary{ID: 1}, "delete"))

	err := ensureOwner(post, &sdk.UserSummary{ID: 2}, "delete")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "cannot delete post #4")

	assert.Error(t, ensureOwner(post, nil, "update"))
}

func TestRenderPostTable(t *testing.T) {
	list := &sdk.PostList{
		Data: []sdk.Post{
			{ID: 1, Title: "Mine", UserID: 1, ImageURL: "/a.png"},
			{ID: 2, Title: "Theirs\nwith newline", UserID: 2},
		},
		Pagy: sdk.Page{Page: 1, Items: 10, Pages: 3, Count: 21},
	}

	var buf bytes.Buffer
	renderPostTable(&buf, list, &sdk.UserSummary{ID: 1})
	out := buf.String()

	assert.Contains(t, out, "ID")
	assert.Contains(t, out, "Theirs with newline")
	assert.Contains(t, out, "Page 1 of 3 (21 posts)")

	lines := bytes.Split(buf.Bytes(), []byte("\n"))
	assert.Contains(t, string(lines[1]), "*")
	assert.NotContains(t, string(lines[2]), "*")
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "short", truncate("short", 10))
	assert.Equal(t, "abcde...", truncate("abcdefgh", 5))
	assert.Equal(t, "héllo...", truncate("héllo wörld", 5))
}
