// Package contextdetect infers project type from marker files in the
// working directory.
package contextdetect

import (
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/llmsh/llmsh/internal/domain"
	"github.com/llmsh/llmsh/internal/ports"
)

// markers maps filenames (or directories) to the tag they imply. Checked
// against the top level of the working directory only.
var markers = []struct {
	file string
	tag  string
}{
	{"go.mod", "go"},
	{"go.sum", "go"},
	{"package.json", "nodejs"},
	{"Cargo.toml", "rust"},
	{"pyproject.toml", "python"},
	{"requirements.txt", "python"},
	{"setup.py", "python"},
	{"pom.xml", "java"},
	{"build.gradle", "java"},
	{"Dockerfile", "docker"},
	{"docker-compose.yml", "docker"},
	{"compose.yaml", "docker"},
	{".git", "git"},
	{"index.html", "web"},
}

// MarkerDetector implements ports.ContextDetector with read-only filesystem
// inspection. It never executes project tooling.
type MarkerDetector struct {
	maxFiles int
}

func NewMarkerDetector() *MarkerDetector {
	return &MarkerDetector{maxFiles: 20}
}

// Detect returns deduplicated tags for cwd, sorted for stable output.
// An unreadable or empty directory yields nil.
func (d *MarkerDetector) Detect(cwd string) []string {
	seen := map[string]struct{}{}
	for _, marker := range markers {
		if _, err := os.Stat(filepath.Join(cwd, marker.file)); err == nil {
			seen[marker.tag] = struct{}{}
		}
	}
	if len(seen) == 0 {
		return nil
	}
	tags := make([]string, 0, len(seen))
	for tag := range seen {
		tags = append(tags, tag)
	}
	sort.Strings(tags)
	return tags
}

// Snapshot assembles the full environment description for the translator.
func (d *MarkerDetector) Snapshot(cwd string) domain.ContextSnapshot {
	return domain.ContextSnapshot{
		WorkingDir: cwd,
		Shell:      detectShell(),
		User:       os.Getenv("USER"),
		Tags:       d.Detect(cwd),
		Files:      d.listFiles(cwd),
	}
}

func (d *MarkerDetector) listFiles(dir string) []string {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil
	}
	var files []string
	for _, entry := range entries {
		if strings.HasPrefix(entry.Name(), ".") {
			continue
		}
		files = append(files, entry.Name())
		if len(files) >= d.maxFiles {
			break
		}
	}
	return files
}

func detectShell() string {
	if shell := os.Getenv("SHELL"); shell != "" {
		return filepath.Base(shell)
	}
	return "unknown"
}

var _ ports.ContextDetector = (*MarkerDetector)(nil)
