package prompt

import (
	"os"
	"path/filepath"
	"sort"
	"strings"
)

const (
	promptSuffix     = ".prompt.yaml"
	validateMarker   = ".validate"
	analysisMarker   = ".analysis"
	validateFileName = "validate" + validateMarker + promptSuffix
	analysisFileName = "analysis" + promptSuffix
)

// DefaultValidatePrompt is the repository-level fallback for validation.
const DefaultValidatePrompt = ".github/prompts/validate-output.validate.prompt.yaml"

// DefaultAnalysisPrompt is the repository-level fallback for analysis.
const DefaultAnalysisPrompt = ".github/prompts/doc-analysis.analysis.prompt.yaml"

// ResolveValidation locates the validation prompt for a raw document.
// Resolution order: a document-level prompt named <stem>.validate.prompt.yaml,
// then a directory-level validate.prompt.yaml, then the fallback.
func ResolveValidation(rawPath, fallback string) string {
	dir := filepath.Dir(rawPath)
	stem := strings.TrimSuffix(filepath.Base(rawPath), filepath.Ext(rawPath))

	docPrompt := filepath.Join(dir, stem+validateMarker+promptSuffix)
	if fileExists(docPrompt) {
		return docPrompt
	}
	dirPrompt := filepath.Join(dir, validateFileName)
	if fileExists(dirPrompt) {
		return dirPrompt
	}
	return fallback
}

// ResolveAnalysis locates the untopic'd analysis prompt for a document
// directory. Resolution order: <dirname>.analysis.prompt.yaml, then
// analysis.prompt.yaml, then the fallback.
func ResolveAnalysis(dir, fallback string) string {
	typePrompt := filepath.Join(dir, filepath.Base(dir)+analysisMarker+promptSuffix)
	if fileExists(typePrompt) {
		return typePrompt
	}
	dirPrompt := filepath.Join(dir, analysisFileName)
	if fileExists(dirPrompt) {
		return dirPrompt
	}
	return fallback
}

// Topic is one analysis pass over a document: an optional topic name and the
// prompt template that drives it.
type Topic struct {
	Name     string // empty for the untopic'd default pass
	Template string // prompt file path
}

// DiscoverTopics enumerates the analysis passes for a document directory from
// prompt-file naming: every *.analysis.<topic>.prompt.yaml in the directory
// contributes an independent topic pass. When no topic prompts exist, a single
// untopic'd pass using the resolved analysis prompt is returned.
func DiscoverTopics(dir, fallback string) []Topic {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return []Topic{{Template: ResolveAnalysis(dir, fallback)}}
	}

	var topics []Topic
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		name := entry.Name()
		if !strings.HasSuffix(name, promptSuffix) {
			continue
		}
		base := strings.TrimSuffix(name, promptSuffix)
		idx := strings.LastIndex(base, analysisMarker+".")
		if idx < 0 {
			continue
		}
		topic := base[idx+len(analysisMarker)+1:]
		if topic == "" {
			continue
		}
		topics = append(topics, Topic{Name: topic, Template: filepath.Join(dir, name)})
	}

	if len(topics) == 0 {
		return []Topic{{Template: ResolveAnalysis(dir, fallback)}}
	}
	sort.Slice(topics, func(i, j int) bool { return topics[i].Name < topics[j].Name })
	return topics
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}
