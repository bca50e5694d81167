package commands

import (
	"embed"
	"io/fs"
	"os"
	"path/filepath"
)

//go:embed all:templates
var templateFS embed.FS

// scaffoldFile records one file visited while applying a template.
type scaffoldFile struct {
	// Path relative to the target directory, after special renames.
	Path string
	// Skipped is set when the file already existed and force was off.
	Skipped bool
}

// applyTemplate copies an embedded template directory into targetDir and
// reports every file it visited. Existing files are left alone unless
// force is set. Files named "gitignore" land as ".gitignore" so the
// template itself survives go:embed, which ignores dotfiles.
func applyTemplate(templateName, targetDir string, force bool) ([]scaffoldFile, error) {
	root := filepath.Join("templates", templateName)
	var visited []scaffoldFile

	err := fs.WalkDir(templateFS, root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}

		relPath, err := filepath.Rel(root, path)
		if err != nil {
			return err
		}
		if relPath == "." {
			return nil
		}

		relPath = renameSpecialFiles(relPath)
		targetPath := filepath.Join(targetDir, relPath)

		if d.IsDir() {
			return os.MkdirAll(targetPath, 0750)
		}

		if !force {
			if _, err := os.Stat(targetPath); err == nil {
				visited = append(visited, scaffoldFile{Path: relPath, Skipped: true})
				return nil
			}
		}

		content, err := templateFS.ReadFile(path)
		if err != nil {
			return err
		}
		if err := os.WriteFile(targetPath, content, 0600); err != nil {
			return err
		}

		visited = append(visited, scaffoldFile{Path: relPath})
		return nil
	})

	return visited, err
}

// renameSpecialFiles maps template names to their on-disk dotfile names.
func renameSpecialFiles(path string) string {
	dir := filepath.Dir(path)

	switch filepath.Base(path) {
	case "gitignore":
		return filepath.Join(dir, ".gitignore")
	default:
		return path
	}
}
