package core

import "fmt"

// OutputFormat is a textual rendering format produced by the conversion
// service.
type OutputFormat string

const (
	FormatMarkdown OutputFormat = "markdown"
	FormatHTML     OutputFormat = "html"
	FormatJSON     OutputFormat = "json"
	FormatText     OutputFormat = "text"
	FormatDoctags  OutputFormat = "doctags"
)

// outputFormats maps format names to their file suffixes.
var outputFormats = map[OutputFormat]string{
	FormatMarkdown: ".md",
	FormatHTML:     ".html",
	FormatJSON:     ".json",
	FormatText:     ".txt",
	FormatDoctags:  ".doctags",
}

// ParseOutputFormat parses a format name from configuration or CLI input.
// Unknown names are a structural error rejected before any processing begins.
func ParseOutputFormat(s string) (OutputFormat, error) {
	fmtName := OutputFormat(s)
	if _, ok := outputFormats[fmtName]; !ok {
		return "", fmt.Errorf("%w: %q", ErrUnknownFormat, s)
	}
	return fmtName, nil
}

// ParseOutputFormats parses a list of format names, failing on the first
// unknown name.
func ParseOutputFormats(names []string) ([]OutputFormat, error) {
	formats := make([]OutputFormat, 0, len(names))
	for _, name := range names {
		f, err := ParseOutputFormat(name)
		if err != nil {
			return nil, err
		}
		formats = append(formats, f)
	}
	return formats, nil
}

// Suffix returns the plain file suffix for the format, e.g. ".md".
func (f OutputFormat) Suffix() string {
	return outputFormats[f]
}

// ConvertedSuffix returns the suffix appended to a source document name for
// its converted artifact, e.g. ".converted.md".
func (f OutputFormat) ConvertedSuffix() string {
	return ".converted" + outputFormats[f]
}
