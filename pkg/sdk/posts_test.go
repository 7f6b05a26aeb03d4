package sdk_test

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"mime"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/terraconstructs/postboard/pkg/sdk"
)

var pngHeader = []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR")

func newPostClient(t *testing.T, h http.HandlerFunc) *sdk.Client {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	return sdk.NewClient(srv.URL, sdk.WithTokenSource(sdk.TokenFunc(func() string { return "T" })))
}

func readMultipart(t *testing.T, r *http.Request) (map[string]string, map[string][]byte) {
	t.Helper()
	mediaType, params, err := mime.ParseMediaType(r.Header.Get("Content-Type"))
	require.NoError(t, err)
	require.Equal(t, "multipart/form-data", mediaType)

	fields := map[string]string{}
	files := map[string][]byte{}
	mr := multipart.NewReader(r.Body, params["boundary"])
	for {
		part, err := mr.NextPart()
		if err == io.EOF {
			break
		}
		require.NoError(t, err)
		data, err := io.ReadAll(part)
		require.NoError(t, err)
		if part.FileName() != "" {
			files[part.FormName()] = data
		} else {
			fields[part.FormName()] = string(data)
		}
	}
	return fields, files
}

func TestListPosts(t *testing.T) {
	c := newPostClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/posts", r.URL.Path)
		assert.Equal(t, "2", r.URL.Query().Get("page"))
		assert.Equal(t, "Bearer T", r.Header.Get("Authorization"))
		_, _ = w.Write([]byte(`{"data":[{"id":1,"title":"Hi","body":"b","user_id":3}],"pagy":{"page":2,"items":10,"pages":4,"count":31}}`))
	})

	list, err := c.ListPosts(context.Background(), 2)
	require.NoError(t, err)
	require.Len(t, list.Data, 1)
	assert.Equal(t, "Hi", list.Data[0].Title)
	assert.Equal(t, sdk.Page{Page: 2, Items: 10, Pages: 4, Count: 31}, list.Pagy)
}

func TestListPosts_ClampsPageAndEmptyData(t *testing.T) {
	c := newPostClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "1", r.URL.Query().Get("page"))
		_, _ = w.Write([]byte(`{"pagy":{"page":1,"items":10,"pages":0,"count":0}}`))
	})

	list, err := c.ListPosts(context.Background(), 0)
	require.NoError(t, err)
	assert.NotNil(t, list.Data)
	assert.Empty(t, list.Data)
}

func TestGetPost_NotFound(t *testing.T) {
	c := newPostClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/posts/42", r.URL.Path)
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(`{"error":"Post not found"}`))
	})

	_, err := c.GetPost(context.Background(), 42)
	require.Error(t, err)
	assert.Equal(t, http.StatusNotFound, sdk.StatusCode(err))
	assert.Contains(t, err.Error(), "failed to fetch post")
}

func TestCreatePost_RequiresTitleAndBody(t *testing.T) {
	c := newPostClient(t, func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("no request expected")
	})

	for _, in := range []sdk.PostInput{{Title: "t"}, {Body: "b"}, {Title: "  ", Body: "b"}} {
		_, err := c.CreatePost(context.Background(), in)
		var v *sdk.ValidationError
		require.True(t, errors.As(err, &v))
		assert.Equal(t, "Please fill in all required fields", v.Error())
	}
}

func TestCreatePost_Multipart(t *testing.T) {
	img, err := sdk.NewImageUpload("cat.png", pngHeader)
	require.NoError(t, err)

	c := newPostClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		fields, files := readMultipart(t, r)
		assert.Equal(t, "Title", fields["post[title]"])
		assert.Equal(t, "Body", fields["post[body]"])
		assert.Equal(t, pngHeader, files["post[image]"])

		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte(`{"id":9,"title":"Title","body":"Body","user_id":1,"image_url":"/x.png"}`))
	})

	post, err := c.CreatePost(context.Background(), sdk.PostInput{Title: "Title", Body: "Body", Image: img})
	require.NoError(t, err)
	assert.Equal(t, int64(9), post.ID)
	assert.Equal(t, "/x.png", post.ImageURL)
}

func TestCreatePost_FieldErrors(t *testing.T) {
	c := newPostClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnprocessableEntity)
		_, _ = w.Write([]byte(`{"title":["can't be blank"],"body":["is too short"]}`))
	})

	_, err := c.CreatePost(context.Background(), sdk.PostInput{Title: "t", Body: "b"})
	var v *sdk.ValidationError
	require.True(t, errors.As(err, &v))
	assert.Equal(t, []string{"body is too short", "title can't be blank"}, v.Messages())
}

func TestUpdatePost_Encodings(t *testing.T) {
	t.Run("json", func(t *testing.T) {
		c := newPostClient(t, func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, http.MethodPut, r.Method)
			assert.Equal(t, "/posts/5", r.URL.Path)
			assert.Equal(t, "application/json", r.Header.Get("Content-Type"))

			var body map[string]map[string]string
			require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
			assert.Equal(t, map[string]string{"title": "New"}, body["post"])
			_, _ = w.Write([]byte(`{"id":5,"title":"New"}`))
		})

		post, err := c.UpdatePost(context.Background(), 5, sdk.PostInput{Title: "New"}, sdk.EncodingJSON)
		require.NoError(t, err)
		assert.Equal(t, "New", post.Title)
	})

	t.Run("multipart remove image", func(t *testing.T) {
		c := newPostClient(t, func(w http.ResponseWriter, r *http.Request) {
			fields, files := readMultipart(t, r)
			assert.Equal(t, "true", fields["post[remove_image]"])
			_, hasTitle := fields["post[title]"]
			assert.False(t, hasTitle)
			assert.Empty(t, files)
			_, _ = w.Write([]byte(`{"id":5}`))
		})

		_, err := c.UpdatePost(context.Background(), 5, sdk.PostInput{RemoveImage: true}, sdk.EncodingMultipart)
		require.NoError(t, err)
	})

	t.Run("json cannot carry image changes", func(t *testing.T) {
		c := newPostClient(t, func(w http.ResponseWriter, r *http.Request) {
			t.Fatal("no request expected")
		})
		_, err := c.UpdatePost(context.Background(), 5, sdk.PostInput{RemoveImage: true}, sdk.EncodingJSON)
		assert.Error(t, err)
	})
}

func TestDeletePost(t *testing.T) {
	called := false
	c := newPostClient(t, func(w http.ResponseWriter, r *http.Request) {
		called = true
		assert.Equal(t, http.MethodDelete, r.Method)
		assert.Equal(t, "/posts/3", r.URL.Path)
		w.WriteHeader(http.StatusNoContent)
	})

	require.NoError(t, c.DeletePost(context.Background(), 3))
	assert.True(t, called)
}

func TestPostOwnedBy(t *testing.T) {
	p := sdk.Post{ID: 1, UserID: 3}
	assert.True(t, p.OwnedBy(&sdk.UserSummary{ID: 3}))
	assert.False(t, p.OwnedBy(&sdk.UserSummary{ID: 4}))
	assert.False(t, p.OwnedBy(nil))
}
