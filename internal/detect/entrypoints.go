package detect

import (
	"path/filepath"
	"regexp"
	"strings"

	"github.com/srwlli/dashboard-sub004/pkg/model"
)

// EntryPointStats aggregates a detection pass.
type EntryPointStats struct {
	Total    int                       `json:"total"`
	ByType   map[model.ElementType]int `json:"byType"`
	ByMethod map[string]int            `json:"byMethod"`
}

var entryNameRe = regexp.MustCompile(`^(?:handle|register)[A-Z]`)

var entryExactNames = map[string]bool{
	"main":      true,
	"init":      true,
	"run":       true,
	"bootstrap": true,
}

var entryBasenames = map[string]bool{
	"cli":    true,
	"main":   true,
	"index":  true,
	"app":    true,
	"server": true,
}

// DetectEntryPoints flags elements that look like program entry points,
// either by callable name (handle*/register* prefixes, main/init/run/
// bootstrap, Command/Handler suffixes) or by living in a conventional entry
// file (cli.*, main.*, index.*, app.*, server.*). Purely heuristic; false
// positives are expected and acceptable.
func DetectEntryPoints(elements []model.ElementData) ([]model.ElementData, EntryPointStats) {
	stats := EntryPointStats{
		ByType:   make(map[model.ElementType]int),
		ByMethod: make(map[string]int),
	}
	var entries []model.ElementData
	for _, el := range elements {
		method := entryPointMethod(el)
		if method == "" {
			continue
		}
		entries = append(entries, el)
		stats.Total++
		stats.ByType[el.Type]++
		stats.ByMethod[method]++
	}
	return entries, stats
}

// entryPointMethod returns "name" or "file" for a matching element, ""
// otherwise. Name matching wins when both apply.
func entryPointMethod(el model.ElementData) string {
	switch el.Type {
	case model.ElementTypeFunction, model.ElementTypeMethod, model.ElementTypeHook, model.ElementTypeComponent:
	default:
		return ""
	}
	if matchesEntryName(el.Name) {
		return "name"
	}
	if matchesEntryFile(el.File) {
		return "file"
	}
	return ""
}

func matchesEntryName(name string) bool {
	// Methods are recorded as Class.method; the heuristic applies to the
	// method part.
	if idx := strings.LastIndex(name, "."); idx >= 0 {
		name = name[idx+1:]
	}
	if entryExactNames[name] {
		return true
	}
	if entryNameRe.MatchString(name) {
		return true
	}
	return strings.HasSuffix(name, "Command") || strings.HasSuffix(name, "Handler")
}

func matchesEntryFile(file string) bool {
	base := filepath.Base(file)
	base = strings.TrimSuffix(base, filepath.Ext(base))
	return entryBasenames[strings.ToLower(base)]
}
