package blade

import (
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSourceRender(t *testing.T) {
	gin.SetMode(gin.TestMode)
	f := newEngineFixture(t, map[string]string{"pages/home.blade.php": "@csrf"})
	_, err := f.engine.Load()
	require.NoError(t, err)

	r := gin.New()
	r.HTMLRender = NewSourceRender(f.engine)
	r.GET("/:name", func(c *gin.Context) {
		c.HTML(http.StatusOK, c.Param("name"), nil)
	})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/pages.home", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, SourceContentType, w.Header().Get("Content-Type"))
	path := filepath.Join(f.views, "pages", "home.blade.php")
	assert.Equal(t, "<?php echo csrf_field(); ?><?php /**PATH "+path+" ENDPATH**/ ?>", w.Body.String())
}

func TestSource_Render(t *testing.T) {
	w := httptest.NewRecorder()
	require.NoError(t, Source{Code: "<?php echo 1; ?>"}.Render(w))
	assert.Equal(t, SourceContentType, w.Header().Get("Content-Type"))
	assert.Equal(t, "<?php echo 1; ?>", w.Body.String())

	w = httptest.NewRecorder()
	w.Header().Set("Content-Type", "text/plain")
	require.NoError(t, Source{Code: "x"}.Render(w))
	assert.Equal(t, "text/plain", w.Header().Get("Content-Type"))
}
