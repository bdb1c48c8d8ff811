package handler

import (
	"net/http"

	"github.com/starfederation/datastar-go/datastar"

	"github.com/msomdec/postboard/internal/service"
	"github.com/msomdec/postboard/internal/view"
)

// PostHandler handles post and comment requests.
type PostHandler struct {
	posts *service.PostService
}

// NewPostHandler creates a new PostHandler.
func NewPostHandler(posts *service.PostService) *PostHandler {
	return &PostHandler{posts: posts}
}

// HandleProfile lists the principal's posts.
// GET /profile
func (h *PostHandler) HandleProfile(w http.ResponseWriter, r *http.Request) {
	posts, err := h.posts.ListMine(r.Context(), UserFromContext(r.Context()))
	if err != nil {
		handleServiceError(w, r, "list own posts", false, err)
		return
	}
	renderPage(w, r, http.StatusOK, view.ProfilePage(viewer(r), posts))
}

// HandleFeed lists every post.
// GET /feed
func (h *PostHandler) HandleFeed(w http.ResponseWriter, r *http.Request) {
	posts, err := h.posts.ListAll(r.Context())
	if err != nil {
		handleServiceError(w, r, "list posts", false, err)
		return
	}
	renderPage(w, r, http.StatusOK, view.FeedPage(viewer(r), posts))
}

// HandleSubmit creates a post.
// POST /submit-post (postTitle, postContent)
func (h *PostHandler) HandleSubmit(w http.ResponseWriter, r *http.Request) {
	_, err := h.posts.Create(r.Context(), UserFromContext(r.Context()),
		r.FormValue("postTitle"),
		r.FormValue("postContent"),
	)
	if err != nil {
		handleServiceError(w, r, "create post", true, err)
		return
	}
	http.Redirect(w, r, "/success", http.StatusSeeOther)
}

// HandleRead shows a post with its comments.
// GET /read/{id}
func (h *PostHandler) HandleRead(w http.ResponseWriter, r *http.Request) {
	post, err := h.posts.Get(r.Context(), r.PathValue("id"))
	if err != nil {
		handleServiceError(w, r, "get post", false, err)
		return
	}
	renderPage(w, r, http.StatusOK, view.PostPage(viewer(r), post))
}

// HandleDelete removes a post owned by the principal.
// POST /delete/{id}, DELETE /delete/{id}
func (h *PostHandler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	if err := h.posts.Delete(r.Context(), UserFromContext(r.Context()), r.PathValue("id")); err != nil {
		handleServiceError(w, r, "delete post", true, err)
		return
	}
	http.Redirect(w, r, "/profile", http.StatusSeeOther)
}

// HandleComment appends a comment. Datastar requests receive an SSE patch
// appending the comment to #comments and resetting the form; plain form
// posts are redirected back to the post.
// POST /comment/{id} (comment)
func (h *PostHandler) HandleComment(w http.ResponseWriter, r *http.Request) {
	postID := r.PathValue("id")
	comment, err := h.posts.AddComment(r.Context(), UserFromContext(r.Context()), postID, r.FormValue("comment"))
	if err != nil {
		handleServiceError(w, r, "add comment", true, err)
		return
	}

	if !isDatastarRequest(r) {
		http.Redirect(w, r, "/read/"+postID, http.StatusSeeOther)
		return
	}

	sse := datastar.NewSSE(w, r)
	sse.PatchElementTempl(
		view.CommentFragment(*comment),
		datastar.WithSelectorID("comments"),
		datastar.WithModeAppend(),
	)
	sse.PatchElementTempl(view.CommentForm(postID))
}

func isDatastarRequest(r *http.Request) bool {
	return r.Header.Get("Datastar-Request") == "true"
}
