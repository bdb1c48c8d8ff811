// Package view renders the HTML pages. Pages are html/template files
// embedded in the binary and exposed as templ components so handlers and
// SSE patches render them the same way.
package view

import (
	"embed"
	"html/template"
	"io/fs"
	"net/http"

	"github.com/a-h/templ"

	"github.com/msomdec/postboard/internal/domain"
)

//go:embed templates/*.html
var templateFS embed.FS

//go:embed static
var staticFS embed.FS

var funcs = template.FuncMap{
	"date":       domain.FormatDate,
	"titleMin":   func() int { return domain.MinTitleLength + 1 },
	"contentMin": func() int { return domain.MinContentLength + 1 },
	"commentMax": func() int { return domain.MaxCommentLength },
}

// pages maps a page name to its template set (layout plus page body).
var pages = map[string]*template.Template{}

var fragments = template.Must(template.New("fragments").Funcs(funcs).ParseFS(templateFS, "templates/fragments.html"))

func init() {
	for _, name := range []string{
		"home", "register", "contact", "success", "error",
		"profile", "feed", "post", "change_password",
	} {
		pages[name] = template.Must(template.New("layout.html").Funcs(funcs).ParseFS(templateFS,
			"templates/layout.html", "templates/fragments.html", "templates/"+name+".html"))
	}
}

// Viewer is the signed-in user as the page chrome shows it.
type Viewer struct {
	ID          string
	Name        string
	HasPassword bool
}

// ViewerOf returns the chrome data for user; nil yields a signed-out viewer.
// The provider display name is preferred for the header when there is one.
func ViewerOf(user *domain.User) Viewer {
	if user == nil {
		return Viewer{}
	}
	name := user.DisplayName
	if name == "" {
		name = domain.ResolveAuthorName(user)
	}
	return Viewer{ID: user.ID, Name: name, HasPassword: user.HasLocalCredentials()}
}

// SignedIn reports whether the viewer has a session.
func (v Viewer) SignedIn() bool { return v.ID != "" }

type pageData struct {
	Title   string
	Viewer  Viewer
	Flash   string
	Status  int
	Heading string
	Message string
	Posts   []domain.Post
	Post    *domain.Post
	Owner   bool
}

func page(name string, data pageData) templ.Component {
	return templ.FromGoHTML(pages[name], data)
}

func HomePage(v Viewer) templ.Component {
	return page("home", pageData{Title: "Postboard", Viewer: v})
}

// RegisterPage shows the sign-up and sign-in forms with an optional flash message.
func RegisterPage(v Viewer, flash string) templ.Component {
	return page("register", pageData{Title: "Sign up or sign in", Viewer: v, Flash: flash})
}

func ContactPage(v Viewer) templ.Component {
	return page("contact", pageData{Title: "Contact", Viewer: v})
}

func SuccessPage(v Viewer) templ.Component {
	return page("success", pageData{Title: "Success", Viewer: v})
}

// ErrorPage renders a status-specific error. The caller writes the status code.
func ErrorPage(v Viewer, status int, heading, message string) templ.Component {
	return page("error", pageData{
		Title:   heading,
		Viewer:  v,
		Status:  status,
		Heading: heading,
		Message: message,
	})
}

// ServerErrorPage is the target of the redirect issued after a failed write.
func ServerErrorPage(v Viewer) templ.Component {
	return ErrorPage(v, http.StatusInternalServerError, "Something went wrong",
		"We could not save your changes. Please try again in a moment.")
}

func ProfilePage(v Viewer, posts []domain.Post) templ.Component {
	return page("profile", pageData{Title: "Your posts", Viewer: v, Posts: posts})
}

func FeedPage(v Viewer, posts []domain.Post) templ.Component {
	return page("feed", pageData{Title: "Feed", Viewer: v, Posts: posts})
}

// PostPage shows one post with its comments. The comment form is shown to
// signed-in viewers and the delete control to the owner.
func PostPage(v Viewer, post *domain.Post) templ.Component {
	return page("post", pageData{
		Title:  post.Title,
		Viewer: v,
		Post:   post,
		Owner:  v.SignedIn() && v.ID == post.AuthorID,
	})
}

func ChangePasswordPage(v Viewer) templ.Component {
	return page("change_password", pageData{Title: "Change password", Viewer: v})
}

// CommentFragment is one rendered comment, appended to #comments over SSE.
func CommentFragment(c domain.Comment) templ.Component {
	return templ.FromGoHTML(fragments.Lookup("comment"), c)
}

// CommentForm is the empty comment form for postID, patched back after a submit.
func CommentForm(postID string) templ.Component {
	return templ.FromGoHTML(fragments.Lookup("comment-form"), postID)
}

// StaticFS serves the embedded stylesheet.
func StaticFS() fs.FS {
	sub, err := fs.Sub(staticFS, "static")
	if err != nil {
		panic(err)
	}
	return sub
}
