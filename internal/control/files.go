package control

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// fileOps implements the file-operation actions shared by every platform
// variant. When root is non-empty, paths are confined to that directory;
// otherwise paths are taken as given.
type fileOps struct {
	root string
}

func (f fileOps) resolve(path string) (string, error) {
	if f.root == "" {
		return path, nil
	}
	abs := path
	if !filepath.IsAbs(abs) {
		abs = filepath.Join(f.root, abs)
	}
	abs = filepath.Clean(abs)
	rel, err := filepath.Rel(f.root, abs)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", fmt.Errorf("path %q escapes the workspace root", path)
	}
	return abs, nil
}

func (f fileOps) create(path, content string) Result {
	resolved, err := f.resolve(path)
	if err != nil {
		return fail("file creation refused", err.Error())
	}
	if _, err := os.Stat(resolved); err == nil {
		return fail(fmt.Sprintf("file %s already exists", path), "file exists")
	}
	if err := os.MkdirAll(filepath.Dir(resolved), 0o755); err != nil {
		return fail(fmt.Sprintf("failed to create %s", path), err.Error())
	}
	if err := os.WriteFile(resolved, []byte(content), 0o644); err != nil {
		return fail(fmt.Sprintf("failed to create %s", path), err.Error())
	}
	return ok(fmt.Sprintf("created %s", path))
}

func (f fileOps) read(path string) Result {
	resolved, err := f.resolve(path)
	if err != nil {
		return fail("file read refused", err.Error())
	}
	data, err := os.ReadFile(resolved)
	if err != nil {
		return fail(fmt.Sprintf("failed to read %s", path), err.Error())
	}
	return okOutput(fmt.Sprintf("read %d bytes from %s", len(data), path), string(data))
}

func (f fileOps) write(path, content string) Result {
	resolved, err := f.resolve(path)
	if err != nil {
		return fail("file write refused", err.Error())
	}
	if err := os.MkdirAll(filepath.Dir(resolved), 0o755); err != nil {
		return fail(fmt.Sprintf("failed to write %s", path), err.Error())
	}
	if err := os.WriteFile(resolved, []byte(content), 0o644); err != nil {
		return fail(fmt.Sprintf("failed to write %s", path), err.Error())
	}
	return ok(fmt.Sprintf("wrote %d bytes to %s", len(content), path))
}

func (f fileOps) delete(path string) Result {
	resolved, err := f.resolve(path)
	if err != nil {
		return fail("file deletion refused", err.Error())
	}
	if err := os.Remove(resolved); err != nil {
		return fail(fmt.Sprintf("failed to delete %s", path), err.Error())
	}
	return ok(fmt.Sprintf("deleted %s", path))
}

func (f fileOps) list(dir string) Result {
	resolved, err := f.resolve(dir)
	if err != nil {
		return fail("directory listing refused", err.Error())
	}
	entries, err := os.ReadDir(resolved)
	if err != nil {
		return fail(fmt.Sprintf("failed to list %s", dir), err.Error())
	}
	names := make([]string, 0, len(entries))
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() {
			name += string(filepath.Separator)
		}
		names = append(names, name)
	}
	sort.Strings(names)
	return okOutput(fmt.Sprintf("%d entries in %s", len(names), dir), strings.Join(names, "\n"))
}
