package blade

import (
	"crypto/sha1"
	"encoding/hex"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"
)

// Compiler turns Blade templates into PHP. It is safe for concurrent
// CompileString calls once tags and echo format are configured; the registry
// guards itself.
type Compiler struct {
	files             Filesystem
	cachePath         string
	basePath          string
	compiledExtension string
	shortOpenTags     bool
	registry          *Registry
	logger            *slog.Logger

	rawTags     tags
	contentTags tags
	escapedTags tags
	echoFormat  string
	patterns    echoPatterns
}

// Option configures a Compiler.
type Option func(*Compiler)

// WithRegistry uses r instead of a private registry, letting several
// compilers share directives.
func WithRegistry(r *Registry) Option {
	return func(c *Compiler) {
		c.registry = r
	}
}

// WithCompiledExtension sets the extension of cached artifacts, "php" by default.
func WithCompiledExtension(ext string) Option {
	return func(c *Compiler) {
		c.compiledExtension = strings.TrimPrefix(ext, ".")
	}
}

// WithBasePath strips basePath from view paths before hashing them, so the
// cache key survives moving the project.
func WithBasePath(basePath string) Option {
	return func(c *Compiler) {
		c.basePath = basePath
	}
}

// WithShortOpenTags treats "<?" as a PHP open tag when splitting templates.
func WithShortOpenTags(enabled bool) Option {
	return func(c *Compiler) {
		c.shortOpenTags = enabled
	}
}

// WithLogger sets the logger used by Compile.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Compiler) {
		c.logger = logger
	}
}

// New creates a compiler writing artifacts under cachePath.
func New(files Filesystem, cachePath string, opts ...Option) (*Compiler, error) {
	if cachePath == "" {
		return nil, fmt.Errorf("%w: please provide a valid cache path", ErrInvalidConfiguration)
	}
	if files == nil {
		return nil, fmt.Errorf("%w: missing filesystem", ErrInvalidConfiguration)
	}
	c := &Compiler{
		files:             files,
		cachePath:         cachePath,
		compiledExtension: "php",
		rawTags:           defaultRawTags,
		contentTags:       defaultContentTags,
		escapedTags:       defaultEscapedTags,
		echoFormat:        defaultEchoFormat,
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.registry == nil {
		c.registry = NewRegistry()
	}
	if c.logger == nil {
		c.logger = slog.New(slog.DiscardHandler)
	}
	c.patterns = buildEchoPatterns(c.rawTags, c.contentTags, c.escapedTags)
	return c, nil
}

// Registry returns the directive registry of the compiler.
func (c *Compiler) Registry() *Registry {
	return c.registry
}

// CachePath returns the directory compiled views are written to.
func (c *Compiler) CachePath() string {
	return c.cachePath
}

// Compile compiles the view at path and writes it to CompiledPath(path).
func (c *Compiler) Compile(path string) error {
	source, err := c.files.Get(path)
	if err != nil {
		return fmt.Errorf("[%s] read view: %w", path, err)
	}
	contents := c.CompileString(source)
	if path != "" {
		if hasOpenCode(contents, c.shortOpenTags) {
			contents += " ?>"
		}
		contents += "<?php /**PATH " + path + " ENDPATH**/ ?>"
	}
	compiled := c.CompiledPath(path)
	if err := c.files.Put(compiled, contents); err != nil {
		return fmt.Errorf("[%s] write compiled view: %w", path, err)
	}
	c.logger.Debug("compiled view", "path", path, "compiled", compiled, "bytes", len(contents))
	return nil
}

// CompiledPath maps a view path to its artifact in the cache directory.
func (c *Compiler) CompiledPath(path string) string {
	key := path
	if c.basePath != "" {
		if i := strings.Index(path, c.basePath); i >= 0 {
			key = path[i+len(c.basePath):]
		}
	}
	sum := sha1.Sum([]byte("v2" + key))
	return filepath.Join(c.cachePath, hex.EncodeToString(sum[:])+"."+c.compiledExtension)
}

// IsExpired reports whether the view at path must be compiled again. A
// source modified in the same instant as its artifact counts as expired.
func (c *Compiler) IsExpired(path string) (bool, error) {
	compiled := c.CompiledPath(path)
	if !c.files.Exists(compiled) {
		return true, nil
	}
	sourceTime, err := c.files.LastModified(path)
	if err != nil {
		return false, fmt.Errorf("[%s] stat view: %w", path, err)
	}
	compiledTime, err := c.files.LastModified(compiled)
	if err != nil {
		return false, fmt.Errorf("[%s] stat compiled view: %w", path, err)
	}
	return !sourceTime.Before(compiledTime), nil
}

// CompileString compiles template source. The result depends only on the
// source, the registry and the tag configuration.
func (c *Compiler) CompileString(value string) string {
	st := newCompileState()

	if strings.Contains(value, rawPlaceholderPrefix) {
		value = storeLiteralPlaceholders(st, value)
	}
	if strings.Contains(value, "@verbatim") {
		value = storeVerbatimBlocks(st, value)
	}
	if strings.Contains(value, "@php") {
		value = storePhpBlocks(st, value)
	}

	var result strings.Builder
	result.Grow(len(value))
	for _, tok := range tokenize(value, c.shortOpenTags) {
		if tok.kind == codeToken {
			result.WriteString(tok.text)
			continue
		}
		result.WriteString(c.compileMarkup(st, tok.text))
	}
	out := result.String()

	if len(st.rawBlocks) > 0 {
		out = restoreRawContent(st, out)
	}
	if len(st.footer) > 0 {
		out = addFooters(st, out)
	}
	return out
}

// compileMarkup runs the passes over one inline token.
func (c *Compiler) compileMarkup(st *compileState, value string) string {
	value = c.compileComments(value)
	value = c.compileExtensions(value)
	value = c.compileStatements(st, value)
	return c.compileEchos(value)
}

func (c *Compiler) compileExtensions(value string) string {
	for _, extension := range c.registry.Extensions() {
		value = extension(value, c)
	}
	return value
}

// addFooters appends the footer in reverse order of registration.
func addFooters(st *compileState, result string) string {
	var b strings.Builder
	b.WriteString(strings.TrimPrefix(result, "\n"))
	for i := len(st.footer) - 1; i >= 0; i-- {
		b.WriteString("\n")
		b.WriteString(st.footer[i])
	}
	return b.String()
}

// Directive registers a custom directive on the compiler registry.
func (c *Compiler) Directive(name string, handler DirectiveHandler) error {
	return c.registry.Directive(name, handler)
}

// If registers a custom condition on the compiler registry.
func (c *Compiler) If(name string, condition Condition) error {
	return c.registry.If(name, condition)
}

// Extend registers an extension on the compiler registry.
func (c *Compiler) Extend(extension Extension) {
	c.registry.Extend(extension)
}

// Component registers a component alias on the compiler registry.
func (c *Compiler) Component(path, alias string) error {
	return c.registry.Component(path, alias)
}

// Include registers an include alias on the compiler registry.
func (c *Compiler) Include(path, alias string) error {
	return c.registry.Include(path, alias)
}

// SetEchoFormat sets the format wrapping regular echoes, "e(%s)" by default.
func (c *Compiler) SetEchoFormat(format string) {
	c.echoFormat = format
}

// WithDoubleEncoding makes regular echoes encode existing HTML entities.
func (c *Compiler) WithDoubleEncoding() {
	c.SetEchoFormat("e(%s, true)")
}

// WithoutDoubleEncoding keeps existing HTML entities in regular echoes.
func (c *Compiler) WithoutDoubleEncoding() {
	c.SetEchoFormat("e(%s, false)")
}

// SetRawTags changes the unescaped echo delimiters.
func (c *Compiler) SetRawTags(openTag, closeTag string) {
	c.rawTags = tags{openTag, closeTag}
	c.patterns = buildEchoPatterns(c.rawTags, c.contentTags, c.escapedTags)
}

// SetContentTags changes the regular echo delimiters, which comments use too.
func (c *Compiler) SetContentTags(openTag, closeTag string) {
	c.contentTags = tags{openTag, closeTag}
	c.patterns = buildEchoPatterns(c.rawTags, c.contentTags, c.escapedTags)
}

// SetEscapedContentTags changes the escaped echo delimiters.
func (c *Compiler) SetEscapedContentTags(openTag, closeTag string) {
	c.escapedTags = tags{openTag, closeTag}
	c.patterns = buildEchoPatterns(c.rawTags, c.contentTags, c.escapedTags)
}

// RawTags, ContentTags and EscapedContentTags return the open and close delimiters.
func (c *Compiler) RawTags() (string, string)            { return c.rawTags[0], c.rawTags[1] }
func (c *Compiler) ContentTags() (string, string)        { return c.contentTags[0], c.contentTags[1] }
func (c *Compiler) EscapedContentTags() (string, string) { return c.escapedTags[0], c.escapedTags[1] }
