package web

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"mime"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/terraconstructs/postboard/internal/authstate"
	"github.com/terraconstructs/postboard/internal/guard"
	"github.com/terraconstructs/postboard/pkg/sdk"
)

// maxFormMemory is how much of a multipart form is held in memory; the rest
// spills to temporary files. The image itself is capped by NewImageUpload.
const maxFormMemory = sdk.MaxImageSize + 1<<20

type handlers struct {
	sessions SessionManager
	posts    PostAPI
	logger   *slog.Logger
}

// SessionResponse describes the gateway's current session.
type SessionResponse struct {
	State     string           `json:"state"`
	User      *sdk.UserSummary `json:"user,omitempty"`
	ExpiresAt *time.Time       `json:"expires_at,omitempty"`
	LastError string           `json:"last_error,omitempty"`
}

func (h *handlers) describeSession() SessionResponse {
	state := h.sessions.State()
	resp := SessionResponse{State: state.String(), LastError: h.sessions.LastError()}
	if a, ok := state.(authstate.Authenticated); ok {
		sess := a.Session()
		resp.User = sess.User
		if exp, ok := sess.ExpiresAt(); ok {
			resp.ExpiresAt = &exp
		}
	}
	return resp
}

func (h *handlers) health(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"status": "ok",
		"auth":   h.sessions.State().String(),
	})
}

func (h *handlers) loginPage(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusUnauthorized, map[string]string{
		"error": "login required",
		"login": "POST /api/login",
	})
}

func (h *handlers) session(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, h.describeSession())
}

type credentialsRequest struct {
	Email                string `json:"email"`
	Password             string `json:"password"`
	PasswordConfirmation string `json:"password_confirmation"`
}

func decodeCredentials(r *http.Request) (credentialsRequest, error) {
	var req credentialsRequest
	if err := json.NewDecoder(io.LimitReader(r.Body, 1<<20)).Decode(&req); err != nil {
		return req, fmt.Errorf("invalid request body: %w", err)
	}
	if strings.TrimSpace(req.Email) == "" || req.Password == "" {
		return req, errors.New("email and password are required")
	}
	return req, nil
}

func (h *handlers) login(w http.ResponseWriter, r *http.Request) {
	req, err := decodeCredentials(r)
	if err != nil {
		writeErrorMessage(w, http.StatusBadRequest, err.Error())
		return
	}

	out := h.sessions.Login(r.Context(), req.Email, req.Password)
	if !out.Success() {
		writeOutcomeError(w, out.Error, out.Cause)
		return
	}
	writeJSON(w, http.StatusOK, h.describeSession())
}

func (h *handlers) signup(w http.ResponseWriter, r *http.Request) {
	req, err := decodeCredentials(r)
	if err != nil {
		writeErrorMessage(w, http.StatusBadRequest, err.Error())
		return
	}

	out := h.sessions.Signup(r.Context(), req.Email, req.Password, req.PasswordConfirmation)
	if !out.Success() {
		writeOutcomeError(w, out.Error, out.Cause)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]string{"status": "created"})
}

func (h *handlers) logout(w http.ResponseWriter, r *http.Request) {
	if err := h.sessions.Logout(r.Context()); err != nil {
		h.logger.Error("failed to clear session", "error", err)
		writeErrorMessage(w, http.StatusInternalServerError, "failed to clear session")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// writeOutcomeError reports a failed auth outcome: rejected input is 422,
// an unreachable or malformed API is 502.
func writeOutcomeError(w http.ResponseWriter, msg string, cause error) {
	var (
		validationErr *sdk.ValidationError
		networkErr    *sdk.NetworkError
		protocolErr   *sdk.ProtocolError
	)
	switch {
	case errors.As(cause, &validationErr):
		writeJSON(w, http.StatusUnprocessableEntity, ErrorResponse{Error: msg, Messages: validationErr.Messages()})
	case errors.As(cause, &networkErr), errors.As(cause, &protocolErr):
		writeErrorMessage(w, http.StatusBadGateway, msg)
	case sdk.StatusCode(cause) != 0:
		writeErrorMessage(w, sdk.StatusCode(cause), msg)
	default:
		writeErrorMessage(w, http.StatusInternalServerError, msg)
	}
}

func (h *handlers) listPosts(w http.ResponseWriter, r *http.Request) {
	page := 1
	if raw := r.URL.Query().Get("page"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			writeErrorMessage(w, http.StatusBadRequest, "page must be a positive integer")
			return
		}
		page = n
	}

	list, err := h.posts.ListPosts(r.Context(), page)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, list)
}

func (h *handlers) getPost(w http.ResponseWriter, r *http.Request) {
	id, ok := postID(w, r)
	if !ok {
		return
	}
	post, err := h.posts.GetPost(r.Context(), id)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, post)
}

func (h *handlers) createPost(w http.ResponseWriter, r *http.Request) {
	in, _, err := decodePostInput(r)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	post, err := h.posts.CreatePost(r.Context(), in)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusCreated, post)
}

func (h *handlers) updatePost(w http.ResponseWriter, r *http.Request) {
	id, ok := postID(w, r)
	if !ok {
		return
	}
	if !h.ownedByCaller(w, r, id) {
		return
	}

	in, enc, err := decodePostInput(r)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	post, err := h.posts.UpdatePost(r.Context(), id, in, enc)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, post)
}

func (h *handlers) deletePost(w http.ResponseWriter, r *http.Request) {
	id, ok := postID(w, r)
	if !ok {
		return
	}
	if !h.ownedByCaller(w, r, id) {
		return
	}

	if err := h.posts.DeletePost(r.Context(), id); err != nil {
		writeError(w, h.logger, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ownedByCaller writes 403 and returns false unless the session user wrote post id.
func (h *handlers) ownedByCaller(w http.ResponseWriter, r *http.Request, id int64) bool {
	sess, ok := guard.SessionFromContext(r.Context())
	if !ok {
		writeErrorMessage(w, http.StatusUnauthorized, "login required")
		return false
	}
	post, err := h.posts.GetPost(r.Context(), id)
	if err != nil {
		writeError(w, h.logger, err)
		return false
	}
	if !post.OwnedBy(sess.User) {
		writeErrorMessage(w, http.StatusForbidden, "you can only change your own posts")
		return false
	}
	return true
}

func postID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id <= 0 {
		writeErrorMessage(w, http.StatusBadRequest, "invalid post id")
		return 0, false
	}
	return id, true
}

// decodePostInput accepts the same two encodings the API does: a JSON
// {"post": {...}} document or a multipart form with post[...] fields.
func decodePostInput(r *http.Request) (sdk.PostInput, sdk.Encoding, error) {
	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))

	if mediaType == "multipart/form-data" {
		in, err := decodeMultipartPost(r)
		return in, sdk.EncodingMultipart, err
	}

	var doc struct {
		Post struct {
			Title string `json:"title"`
			Body  string `json:"body"`
		} `json:"post"`
	}
	if err := json.NewDecoder(io.LimitReader(r.Body, 1<<20)).Decode(&doc); err != nil {
		return sdk.PostInput{}, sdk.EncodingJSON, &sdk.ValidationError{Message: "invalid JSON body"}
	}
	return sdk.PostInput{Title: doc.Post.Title, Body: doc.Post.Body}, sdk.EncodingJSON, nil
}

func decodeMultipartPost(r *http.Request) (sdk.PostInput, error) {
	if err := r.ParseMultipartForm(maxFormMemory); err != nil {
		return sdk.PostInput{}, &sdk.ValidationError{Message: "invalid form data"}
	}

	in := sdk.PostInput{
		Title: r.FormValue("post[title]"),
		Body:  r.FormValue("post[body]"),
	}
	if remove, err := strconv.ParseBool(r.FormValue("post[remove_image]")); err == nil {
		in.RemoveImage = remove
	}

	file, header, err := r.FormFile("post[image]")
	switch {
	case errors.Is(err, http.ErrMissingFile):
		return in, nil
	case err != nil:
		return in, fmt.Errorf("failed to read image: %w", err)
	}
	defer file.Close()

	data, err := io.ReadAll(io.LimitReader(file, sdk.MaxImageSize+1))
	if err != nil {
		return in, fmt.Errorf("failed to read image: %w", err)
	}
	img, err := sdk.NewImageUpload(header.Filename, data)
	if err != nil {
		return in, err
	}
	in.Image = img
	return in, nil
}
