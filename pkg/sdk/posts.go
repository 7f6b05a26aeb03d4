package sdk

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
)

// Post is a blog post as returned by the API.
type Post struct {
	ID        int64     `json:"id"`
	Title     string    `json:"title"`
	Body      string    `json:"body"`
	ImageURL  string    `json:"image_url,omitempty"`
	UserID    int64     `json:"user_id"`
	CreatedAt time.Time `json:"created_at,omitzero"`
	UpdatedAt time.Time `json:"updated_at,omitzero"`
}

// OwnedBy reports whether user authored the post.
func (p Post) OwnedBy(user *UserSummary) bool {
	return user != nil && p.UserID == user.ID
}

// Page is the pagination block returned with post listings.
type Page struct {
	Page  int `json:"page"`
	Items int `json:"items"`
	Pages int `json:"pages"`
	Count int `json:"count"`
}

// PostList is one page of posts.
type PostList struct {
	Data []Post `json:"data"`
	Pagy Page   `json:"pagy"`
}

// PostInput carries the editable fields of a post.
type PostInput struct {
	Title       string
	Body        string
	Image       *ImageUpload
	RemoveImage bool
}

// Encoding selects how a post payload is sent.
type Encoding int

const (
	// EncodingMultipart sends multipart/form-data; required for images.
	EncodingMultipart Encoding = iota
	// EncodingJSON sends {"post": {...}}.
	EncodingJSON
)

// ListPosts fetches one page of posts. Pages start at 1.
func (c *Client) ListPosts(ctx context.Context, page int) (*PostList, error) {
	if page < 1 {
		page = 1
	}

	var list PostList
	q := url.Values{"page": []string{strconv.Itoa(page)}}
	if err := c.Do(ctx, http.MethodGet, "/posts", nil, &list, WithQuery(q)); err != nil {
		return nil, postError(err, "failed to fetch posts")
	}
	if list.Data == nil {
		list.Data = []Post{}
	}
	return &list, nil
}

// GetPost fetches a single post.
func (c *Client) GetPost(ctx context.Context, id int64) (*Post, error) {
	var post Post
	if err := c.Do(ctx, http.MethodGet, postPath(id), nil, &post); err != nil {
		return nil, postError(err, "failed to fetch post")
	}
	return &post, nil
}

// CreatePost creates a post. Title and body are required; the payload is
// always multipart so an image can ride along.
func (c *Client) CreatePost(ctx context.Context, in PostInput) (*Post, error) {
	if strings.TrimSpace(in.Title) == "" || strings.TrimSpace(in.Body) == "" {
		return nil, &ValidationError{Message: "Please fill in all required fields"}
	}

	var post Post
	if err := c.Do(ctx, http.MethodPost, "/posts", postMultipart(in), &post); err != nil {
		return nil, postError(err, "failed to create post")
	}
	return &post, nil
}

// UpdatePost updates a post using the requested encoding. Empty title or body
// leave the stored value untouched. Images and image removal need multipart.
func (c *Client) UpdatePost(ctx context.Context, id int64, in PostInput, enc Encoding) (*Post, error) {
	var body Body
	switch enc {
	case EncodingMultipart:
		body = postMultipart(in)
	case EncodingJSON:
		if in.Image != nil || in.RemoveImage {
			return nil, errors.New("image changes require multipart encoding")
		}
		body = JSONBody(postJSON{Post: postFields{Title: in.Title, Body: in.Body}})
	default:
		return nil, fmt.Errorf("unknown encoding %d", enc)
	}

	var post Post
	if err := c.Do(ctx, http.MethodPut, postPath(id), body, &post); err != nil {
		return nil, postError(err, "failed to update post")
	}
	return &post, nil
}

// DeletePost deletes a post.
func (c *Client) DeletePost(ctx context.Context, id int64) error {
	if err := c.Do(ctx, http.MethodDelete, postPath(id), nil, nil); err != nil {
		return postError(err, "failed to delete post")
	}
	return nil
}

type postJSON struct {
	Post postFields `json:"post"`
}

type postFields struct {
	Title string `json:"title,omitempty"`
	Body  string `json:"body,omitempty"`
}

func postMultipart(in PostInput) MultipartBody {
	var mb MultipartBody
	if in.Title != "" {
		mb.Fields = append(mb.Fields, FormField{Name: "post[title]", Value: in.Title})
	}
	if in.Body != "" {
		mb.Fields = append(mb.Fields, FormField{Name: "post[body]", Value: in.Body})
	}
	if in.RemoveImage {
		mb.Fields = append(mb.Fields, FormField{Name: "post[remove_image]", Value: "true"})
	}
	if in.Image != nil {
		mb.Files = append(mb.Files, FormFile{
			Field:       "post[image]",
			Filename:    in.Image.Filename,
			ContentType: in.Image.ContentType,
			Content:     in.Image.Data,
		})
	}
	return mb
}

func postPath(id int64) string {
	return "/posts/" + strconv.FormatInt(id, 10)
}

// postError keeps field-error maps as ValidationError and wraps everything
// else with the operation name.
func postError(err error, op string) error {
	if StatusCode(err) == http.StatusUnprocessableEntity {
		if v := asValidation(err); v != err {
			return v
		}
	}
	return fmt.Errorf("%s: %w", op, err)
}
