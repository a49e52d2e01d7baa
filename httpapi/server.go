// Package httpapi exposes the compiler over HTTP for editors and sidecars
// that need compiled views without shelling out.
package httpapi

import (
	"errors"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	blade "github.com/dangdungcntt/go-blade-compiler"
)

// maxTemplateSize bounds request bodies of /compile and /lint.
const maxTemplateSize = 4 << 20

type server struct {
	engine   *blade.Engine
	compiler *blade.Compiler
	logger   *slog.Logger
}

// NewRouter builds the gin router. engine may be nil, which disables the
// /views routes.
func NewRouter(engine *blade.Engine, compiler *blade.Compiler, logger *slog.Logger) *gin.Engine {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	s := &server{engine: engine, compiler: compiler, logger: logger}

	r := gin.New()
	r.Use(gin.Recovery(), s.logRequests)
	r.POST("/compile", s.compile)
	r.POST("/lint", s.lint)
	r.GET("/directives", s.directives)
	if engine != nil {
		r.HTMLRender = blade.NewSourceRender(engine)
		r.GET("/views", s.views)
		r.GET("/views/:name", s.view)
	}
	return r
}

func (s *server) logRequests(c *gin.Context) {
	start := time.Now()
	c.Next()
	s.logger.Info("request",
		"method", c.Request.Method,
		"path", c.Request.URL.Path,
		"status", c.Writer.Status(),
		"duration", time.Since(start),
	)
}

func readTemplate(c *gin.Context) (string, bool) {
	body, err := io.ReadAll(http.MaxBytesReader(c.Writer, c.Request.Body, maxTemplateSize))
	if err != nil {
		c.JSON(http.StatusRequestEntityTooLarge, gin.H{"error": err.Error()})
		return "", false
	}
	return string(body), true
}

func (s *server) compile(c *gin.Context) {
	source, ok := readTemplate(c)
	if !ok {
		return
	}
	c.Render(http.StatusOK, blade.Source{Code: s.compiler.CompileString(source)})
}

func (s *server) lint(c *gin.Context) {
	source, ok := readTemplate(c)
	if !ok {
		return
	}
	diagnostics := s.compiler.Lint(source)
	if diagnostics == nil {
		diagnostics = []blade.Diagnostic{}
	}
	c.JSON(http.StatusOK, gin.H{"diagnostics": diagnostics})
}

func (s *server) directives(c *gin.Context) {
	registry := s.compiler.Registry()
	c.JSON(http.StatusOK, gin.H{
		"builtin":    blade.BuiltinDirectives(),
		"custom":     registry.Directives(),
		"conditions": registry.Conditions(),
	})
}

func (s *server) views(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"views": s.engine.Views()})
}

func (s *server) view(c *gin.Context) {
	name := c.Param("name")
	if _, err := s.engine.View(name); err != nil {
		if errors.Is(err, blade.ErrViewNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.HTML(http.StatusOK, name, nil)
}
