package handler

import (
	"embed"
	"fmt"
	"html/template"
	"io"
	"io/fs"
	"net/http"
	"path"
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/Astemirdum/cars-service/cars/internal/errs"
)

const (
	popularTemplate  = "index.html"
	carFormTemplate  = "car_form.html"
	rateFormTemplate = "rate_form.html"
	notFoundTemplate = "404.html"
	serverTemplate   = "500.html"
	errorTemplate    = "error.html"

	layoutTemplate = "base.html"
)

//go:embed templates/*.html
var templateFS embed.FS

var templateFuncs = template.FuncMap{
	"avg": func(v *float64) string {
		if v == nil {
			return "-"
		}
		return strconv.FormatFloat(*v, 'f', 2, 64)
	},
	"inc": func(i int) int { return i + 1 },
}

// Renderer executes a page inside the shared layout.
type Renderer struct {
	templates map[string]*template.Template
}

func NewRenderer() *Renderer {
	pages, err := fs.Glob(templateFS, "templates/*.html")
	if err != nil {
		panic(err)
	}
	r := &Renderer{templates: make(map[string]*template.Template, len(pages))}
	for _, page := range pages {
		name := path.Base(page)
		if name == layoutTemplate {
			continue
		}
		r.templates[name] = template.Must(
			template.New(layoutTemplate).Funcs(templateFuncs).
				ParseFS(templateFS, "templates/"+layoutTemplate, page))
	}
	return r
}

func (r *Renderer) Render(w io.Writer, name string, data interface{}, _ echo.Context) error {
	t, ok := r.templates[name]
	if !ok {
		return fmt.Errorf("template %q not found", name)
	}
	return t.ExecuteTemplate(w, layoutTemplate, data)
}

// Page carries what the layout needs on every page.
type Page struct {
	Title string
	Flash string
	CSRF  string
}

type errorPage struct {
	Page
	Code    int
	Message string
}

// HTTPErrorHandler renders api errors as json and everything else as an html page.
func (h *Handler) HTTPErrorHandler(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}
	code := http.StatusInternalServerError
	msg := http.StatusText(code)
	var he *echo.HTTPError
	if errors.As(err, &he) {
		code = he.Code
		msg = fmt.Sprint(he.Message)
	}
	if code >= http.StatusInternalServerError {
		h.log.Error("request failed", zap.String("uri", c.Request().RequestURI), zap.Error(err))
	}

	if c.Request().Method == http.MethodHead {
		err = c.NoContent(code)
	} else if strings.HasPrefix(c.Request().URL.Path, apiPrefix) {
		err = c.JSON(code, errs.ErrorResponse{Message: msg})
	} else {
		err = c.Render(code, errorPageTemplate(code), errorPage{
			Page:    h.page(c, http.StatusText(code)),
			Code:    code,
			Message: http.StatusText(code),
		})
	}
	if err != nil {
		h.log.Error("error handler", zap.Error(err))
	}
}

func errorPageTemplate(code int) string {
	switch {
	case code == http.StatusNotFound:
		return notFoundTemplate
	case code >= http.StatusInternalServerError:
		return serverTemplate
	default:
		return errorTemplate
	}
}
