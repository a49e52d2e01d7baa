package blade

import (
	"net/http"

	"github.com/gin-gonic/gin/render"
)

// SourceContentType is sent with compiled view source.
const SourceContentType = "text/x-php; charset=utf-8"

var (
	_ render.HTMLRender = (*SourceRender)(nil)
	_ render.Render     = (*Source)(nil)
)

// SourceRender gin HTMLRender compatible, serving the compiled PHP of a
// view: c.HTML(http.StatusOK, "pages.home", nil).
type SourceRender struct {
	e *Engine
}

// NewSourceRender create a new SourceRender
func NewSourceRender(e *Engine) *SourceRender {
	return &SourceRender{e: e}
}

// Instance returns a new render.Render
func (h *SourceRender) Instance(name string, _ any) render.Render {
	return &viewSource{e: h.e, name: name}
}

type viewSource struct {
	e    *Engine
	name string
}

func (r *viewSource) Render(w http.ResponseWriter) error {
	source, err := r.e.Source(r.name)
	if err != nil {
		return err
	}
	return Source{Code: source}.Render(w)
}

func (r *viewSource) WriteContentType(w http.ResponseWriter) {
	writeSourceContentType(w)
}

// Source renders already compiled code.
type Source struct {
	Code string
}

// Render writes the code to w
func (s Source) Render(w http.ResponseWriter) error {
	s.WriteContentType(w)
	_, err := w.Write([]byte(s.Code))
	return err
}

// WriteContentType write the PHP source content type to the response header if not set
func (s Source) WriteContentType(w http.ResponseWriter) {
	writeSourceContentType(w)
}

func writeSourceContentType(w http.ResponseWriter) {
	header := w.Header()
	if val := header["Content-Type"]; len(val) == 0 {
		header["Content-Type"] = []string{SourceContentType}
	}
}
