package loader

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/dop251/goja"
	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/javascript"
	"github.com/specialistvlad/binverify/internal/ctxlog"
	"go.uber.org/zap"
)

// JS loads JavaScript loader scripts, such as the glue code emitted next to a
// .wasm payload. The script is first parsed with tree-sitter's JavaScript
// grammar, which locates plain syntax errors. tree-sitter recovers from
// errors an engine rejects, so CommonJS scripts are then compiled with goja
// inside the module wrapper Node uses, which reports ECMAScript early errors
// (invalid regular expressions, strict mode violations, bad bindings).
// Nothing is executed: an exception thrown at run time is not detected.
// ES modules (.mjs) only get the tree-sitter pass.
type JS struct{}

// moduleWrapper mirrors the function Node wraps CommonJS modules in. The
// prefix stays on the first line so reported line numbers match the file.
const (
	moduleWrapperPrefix = "(function (exports, require, module, __filename, __dirname) { "
	moduleWrapperSuffix = "\n})"
)

// NewJS creates a JavaScript loader.
func NewJS() *JS {
	return &JS{}
}

// Load implements Loader.
func (j *JS) Load(ctx context.Context, path string) error {
	logger := ctxlog.FromContext(ctx)

	src, err := os.ReadFile(path)
	if err != nil {
		return err
	}

	parser := sitter.NewParser()
	defer parser.Close()
	parser.SetLanguage(javascript.GetLanguage())

	tree, err := parser.ParseCtx(ctx, nil, src)
	if err != nil {
		return fmt.Errorf("failed to parse %s: %w", path, err)
	}
	defer tree.Close()

	root := tree.RootNode()
	logger.Debug("JavaScript parsed.", zap.String("path", path), zap.Int("bytes", len(src)), zap.Bool("has_error", root.HasError()))
	if root.HasError() {
		return syntaxError(root, src)
	}

	if isModule(path) {
		return nil
	}
	if _, err := goja.Compile(path, wrapModule(src), false); err != nil {
		logger.Debug("JavaScript compilation failed.", zap.String("path", path), zap.Error(err))
		return normaliseSyntaxError(err)
	}
	logger.Debug("JavaScript compiled.", zap.String("path", path))
	return nil
}

// isModule reports whether path is an ES module rather than a CommonJS script.
func isModule(path string) bool {
	return strings.EqualFold(filepath.Ext(path), ".mjs")
}

// wrapModule prepares src the way Node does before compiling a CommonJS
// module: a leading hashbang line is ignored and the body becomes a function.
func wrapModule(src []byte) string {
	body := string(src)
	if strings.HasPrefix(body, "#!") {
		body = "//" + body[2:]
	}
	return moduleWrapperPrefix + body + moduleWrapperSuffix
}

// normaliseSyntaxError makes sure compile failures read as SyntaxErrors.
func normaliseSyntaxError(err error) error {
	msg := err.Error()
	if strings.HasPrefix(msg, "SyntaxError") {
		return err
	}
	return fmt.Errorf("SyntaxError: %s", msg)
}

// syntaxError describes the first ERROR or MISSING node in document order.
func syntaxError(root *sitter.Node, src []byte) error {
	n := firstBroken(root)
	if n == nil {
		return fmt.Errorf("SyntaxError: unexpected token")
	}
	p := n.StartPoint()
	line, col := p.Row+1, p.Column+1
	if n.IsMissing() {
		return fmt.Errorf("SyntaxError: unexpected token at line %d, column %d (expected %q)", line, col, n.Type())
	}
	return fmt.Errorf("SyntaxError: unexpected token %q at line %d, column %d", snippet(n.Content(src)), line, col)
}

func firstBroken(n *sitter.Node) *sitter.Node {
	if n == nil || n.IsNull() {
		return nil
	}
	if n.Type() == "ERROR" || n.IsMissing() {
		return n
	}
	if !n.HasError() {
		return nil
	}
	for i := 0; i < int(n.ChildCount()); i++ {
		if found := firstBroken(n.Child(i)); found != nil {
			return found
		}
	}
	return nil
}

// snippet trims an offending node's text to its first token-sized piece.
func snippet(s string) string {
	s = strings.TrimSpace(s)
	if i := strings.IndexAny(s, "\r\n"); i >= 0 {
		s = s[:i]
	}
	if len(s) > 24 {
		s = s[:24] + "..."
	}
	return s
}
