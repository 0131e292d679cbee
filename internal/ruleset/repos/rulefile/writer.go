// Package rulefile persists rule documents as pretty-printed JSON files.
package rulefile

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"

	"github.com/haukened/rr-ruleset/internal/ruleset/domain"
)

const (
	dirMode  os.FileMode = 0o755
	fileMode os.FileMode = 0o644
	indent               = "    "
)

// Encode renders doc as indented JSON. Non-ASCII and HTML-significant
// characters are written as-is rather than \u-escaped.
func Encode(doc domain.RuleDocument) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", indent)
	if err := enc.Encode(doc); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Write serializes doc to path, creating missing parent directories.
// The content is written to a temporary file in the target directory and
// renamed over path, so an existing file is replaced in one step.
// All failures are returned as *domain.WriteError.
func Write(doc domain.RuleDocument, path string) error {
	data, err := Encode(doc)
	if err != nil {
		return &domain.WriteError{Path: path, Op: "encode", Err: err}
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, dirMode); err != nil {
		return &domain.WriteError{Path: path, Op: "mkdir", Err: err}
	}

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return &domain.WriteError{Path: path, Op: "create", Err: err}
	}
	tmpName := tmp.Name()
	// no-op once the rename succeeded
	defer func() {
		_ = os.Remove(tmpName)
	}()

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		return &domain.WriteError{Path: path, Op: "write", Err: err}
	}
	if err := tmp.Chmod(fileMode); err != nil {
		_ = tmp.Close()
		return &domain.WriteError{Path: path, Op: "chmod", Err: err}
	}
	if err := tmp.Close(); err != nil {
		return &domain.WriteError{Path: path, Op: "close", Err: err}
	}
	if err := os.Rename(tmpName, path); err != nil {
		return &domain.WriteError{Path: path, Op: "rename", Err: err}
	}
	return nil
}

// FileWriter adapts Write to an interface value.
type FileWriter struct{}

func (FileWriter) Write(doc domain.RuleDocument, path string) error {
	return Write(doc, path)
}
