package pyparse

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"unicode/utf8"

	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/python"

	"apistub/internal/typedef"
)

// DefaultMaxFileSize bounds the size of a single source file.
const DefaultMaxFileSize = 10 << 20

var (
	// ErrInvalidContent is returned for sources that are not valid UTF-8.
	ErrInvalidContent = errors.New("invalid python source")
	// ErrTooLarge is returned for sources above the size limit.
	ErrTooLarge = errors.New("python source too large")
)

// Module is the result of parsing one Python source file.
type Module struct {
	// Name is the dotted module name.
	Name string
	// Path is the source file, empty for in-memory sources.
	Path string
	// Definitions lists module-level classes in source order.
	Definitions []*typedef.Static
	// Imports maps local names to the qualified names they import.
	Imports map[string]string
	// HasErrors is set when tree-sitter recovered from syntax errors.
	HasErrors bool
}

// QualifiedNames returns the qualified name of every definition.
func (m *Module) QualifiedNames() []string {
	names := make([]string, 0, len(m.Definitions))
	for _, d := range m.Definitions {
		names = append(names, typedef.QualifiedName(d))
	}

	return names
}

// Parser parses Python sources. A Parser is safe for concurrent use; every
// call creates its own tree-sitter parser.
type Parser struct {
	maxSize int64
	logger  *slog.Logger
}

// Option configures a Parser.
type Option func(*Parser)

// WithMaxFileSize sets the source size limit in bytes.
func WithMaxFileSize(n int64) Option {
	return func(p *Parser) {
		if n > 0 {
			p.maxSize = n
		}
	}
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(p *Parser) {
		p.logger = l
	}
}

// NewParser creates a Parser.
func NewParser(opts ...Option) *Parser {
	p := &Parser{
		maxSize: DefaultMaxFileSize,
		logger:  slog.Default(),
	}

	for _, opt := range opts {
		opt(p)
	}

	return p
}

// ParseFile reads and parses path. The module name is derived from the path
// relative to root.
func (p *Parser) ParseFile(ctx context.Context, root, path string) (*Module, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("stat %s: %w", path, err)
	}

	if info.Size() > p.maxSize {
		return nil, fmt.Errorf("%s: %d bytes: %w", path, info.Size(), ErrTooLarge)
	}

	content, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}

	mod, err := p.Parse(ctx, ModuleName(root, path), content)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}

	mod.Path = path

	return mod, nil
}

// Parse parses an in-memory source as the named module.
func (p *Parser) Parse(ctx context.Context, module string, content []byte) (*Module, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	if int64(len(content)) > p.maxSize {
		return nil, fmt.Errorf("%d bytes: %w", len(content), ErrTooLarge)
	}

	if !utf8.Valid(content) {
		return nil, fmt.Errorf("%w: content is not valid UTF-8", ErrInvalidContent)
	}

	parser := sitter.NewParser()
	parser.SetLanguage(python.GetLanguage())

	tree, err := parser.ParseCtx(ctx, nil, content)
	if err != nil {
		return nil, fmt.Errorf("tree-sitter parse failed: %w", err)
	}
	defer tree.Close()

	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("parse canceled after tree-sitter: %w", err)
	}

	root := tree.RootNode()
	mod := &Module{
		Name:      module,
		Imports:   make(map[string]string),
		HasErrors: root.HasError(),
	}

	if mod.HasErrors {
		p.logger.Warn("python source contains syntax errors", slog.String("module", module))
	}

	w := newWalker(mod, content)
	w.scan(root)
	w.build(root)

	p.logger.Debug("parsed python module",
		slog.String("module", module),
		slog.Int("definitions", len(mod.Definitions)))

	return mod, nil
}

// ModuleName derives a dotted module name from path relative to root.
// Package initializers name their package.
func ModuleName(root, path string) string {
	rel, err := filepath.Rel(root, path)
	if err != nil || strings.HasPrefix(rel, "..") {
		rel = filepath.Base(path)
	}

	rel = strings.TrimSuffix(strings.TrimSuffix(rel, ".pyi"), ".py")

	parts := strings.Split(filepath.ToSlash(rel), "/")
	if len(parts) > 1 && parts[len(parts)-1] == "__init__" {
		parts = parts[:len(parts)-1]
	}

	return strings.Join(parts, ".")
}
