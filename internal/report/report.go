// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package report compiles the pipeline's result tables into a single
// study report in Markdown or LaTeX.
package report

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/pdiddy/pacifastin-atlas/pkg/types"
)

// Inputs names the result files a report is compiled from. Missing files
// are reported in the document rather than failing the run.
type Inputs struct {
	ClassificationCSV string
	MethodSummaryCSV  string
	MetricsCSV        string
	CoefficientsCSV   string
	DispersionCSV     string
}

// Section is one report section backed by a result table.
type Section struct {
	Title string

	// Table holds the CSV rows, header first. Nil when the source file
	// was absent.
	Table [][]string

	// Note explains an absent table.
	Note string
}

// Compile loads every available result table into a report section, in a
// fixed document order.
func Compile(in Inputs) ([]Section, error) {
	parts := []struct {
		title string
		path  string
	}{
		{"Lineage Classification", in.ClassificationCSV},
		{"Detection Methods by Phylum", in.MethodSummaryCSV},
		{"Phyletic Spread and Depth", in.MetricsCSV},
		{"Linker Cleavage Regression", in.CoefficientsCSV},
		{"Structural Dispersion", in.DispersionCSV},
	}

	var sections []Section
	for _, p := range parts {
		if p.path == "" {
			continue
		}
		table, err := readTable(p.path)
		if err != nil {
			if os.IsNotExist(err) {
				sections = append(sections, Section{
					Title: p.title,
					Note:  fmt.Sprintf("stage output %s not found; run the stage first", filepath.Base(p.path)),
				})
				continue
			}
			return nil, fmt.Errorf("loading %s: %w", p.path, err)
		}
		sections = append(sections, Section{Title: p.title, Table: table})
	}
	return sections, nil
}

func readTable(path string) ([][]string, error) {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, err
		}
		return nil, fmt.Errorf("opening %s: %w", path, err)
	}
	defer f.Close()

	cr := csv.NewReader(f)
	rows, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("%s: empty table", path)
	}
	return rows, nil
}

// RenderMarkdown produces the Markdown report document.
func RenderMarkdown(title string, sections []Section) string {
	var b strings.Builder
	fmt.Fprintf(&b, "# %s\n\n", title)
	fmt.Fprintf(&b, "Generated: %s\n\n", time.Now().UTC().Format("2006-01-02"))

	for _, s := range sections {
		fmt.Fprintf(&b, "## %s\n\n", s.Title)
		if s.Table == nil {
			fmt.Fprintf(&b, "_%s_\n\n", s.Note)
			continue
		}
		header := s.Table[0]
		b.WriteString("| " + strings.Join(header, " | ") + " |\n")
		b.WriteString("|" + strings.Repeat(" --- |", len(header)) + "\n")
		for _, row := range s.Table[1:] {
			b.WriteString("| " + strings.Join(row, " | ") + " |\n")
		}
		b.WriteString("\n")
	}
	return b.String()
}

// latexEscaper rewrites the characters LaTeX treats specially in table
// cells.
var latexEscaper = strings.NewReplacer(
	"&", `\&`,
	"%", `\%`,
	"#", `\#`,
	"_", `\_`,
	"$", `\$`,
)

// RenderLaTeX produces the LaTeX report document.
func RenderLaTeX(title string, sections []Section) string {
	var b strings.Builder
	b.WriteString("\\documentclass{article}\n\\usepackage{booktabs}\n\\begin{document}\n")
	fmt.Fprintf(&b, "\\title{%s}\n\\date{%s}\n\\maketitle\n\n",
		latexEscaper.Replace(title), time.Now().UTC().Format("2006-01-02"))

	for _, s := range sections {
		fmt.Fprintf(&b, "\\section{%s}\n", latexEscaper.Replace(s.Title))
		if s.Table == nil {
			fmt.Fprintf(&b, "\\emph{%s}\n\n", latexEscaper.Replace(s.Note))
			continue
		}
		cols := strings.Repeat("l", len(s.Table[0]))
		fmt.Fprintf(&b, "\\begin{tabular}{%s}\n\\toprule\n", cols)
		for i, row := range s.Table {
			escaped := make([]string, len(row))
			for j, cell := range row {
				escaped[j] = latexEscaper.Replace(cell)
			}
			b.WriteString(strings.Join(escaped, " & ") + " \\\\\n")
			if i == 0 {
				b.WriteString("\\midrule\n")
			}
		}
		b.WriteString("\\bottomrule\n\\end{tabular}\n\n")
	}

	b.WriteString("\\end{document}\n")
	return b.String()
}

// Write renders the report in the configured format and writes it under
// cfg.OutputDir, returning the output path.
func Write(cfg types.ReportConfig, title string, sections []Section) (string, error) {
	if err := os.MkdirAll(cfg.OutputDir, 0o755); err != nil {
		return "", fmt.Errorf("creating output directory %s: %w", cfg.OutputDir, err)
	}

	var path, content string
	switch cfg.Format {
	case types.OutputLaTeX:
		path = filepath.Join(cfg.OutputDir, "report.tex")
		content = RenderLaTeX(title, sections)
	case types.OutputMarkdown, "":
		path = filepath.Join(cfg.OutputDir, "report.md")
		content = RenderMarkdown(title, sections)
	default:
		return "", fmt.Errorf("unknown report format %q", cfg.Format)
	}

	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		return "", fmt.Errorf("writing report: %w", err)
	}
	return path, nil
}
