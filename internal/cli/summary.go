package cli

import (
	"fmt"
	"io"
	"strings"

	"github.com/morozRed/cortexact/internal/edit"
	"github.com/morozRed/cortexact/internal/fileutil"
	"github.com/morozRed/cortexact/internal/jobs"
	"github.com/morozRed/cortexact/internal/parser"
)

type SymbolSummary struct {
	Path         string          `json:"path"`
	Language     string          `json:"language"`
	ParserBacked bool            `json:"parser_backed"`
	Symbols      []parser.Symbol `json:"symbols"`
}

type ValidationSummary struct {
	Path    string                   `json:"path"`
	Checked bool                     `json:"checked"`
	Valid   bool                     `json:"valid"`
	Errors  []parser.ValidationError `json:"errors,omitempty"`
}

func PrintEditResult(w io.Writer, result *edit.Result, asJSON bool) error {
	if asJSON {
		return fileutil.PrintJSON(w, result)
	}
	healed := ""
	if result.Healed {
		healed = " (repaired by auto-heal)"
	}
	fmt.Fprintf(w, "edit: applied=%d file=%s%s\n", result.Applied, result.Path, healed)
	return nil
}

func PrintSymbols(w io.Writer, file *parser.FileSymbols, asJSON bool) error {
	if asJSON {
		return fileutil.PrintJSON(w, SymbolSummary{
			Path:         file.Path,
			Language:     file.Language,
			ParserBacked: file.ParserBacked,
			Symbols:      file.Symbols,
		})
	}
	fmt.Fprintf(w, "%s (%s, %d symbols)\n", file.Path, file.Language, len(file.Symbols))
	for _, sym := range file.Symbols {
		fmt.Fprintf(w, "  %-32s %d-%d\n", sym.Key(), sym.StartByte, sym.EndByte)
	}
	return nil
}

func PrintOverview(w io.Writer, overview *parser.Overview, asJSON bool) error {
	if asJSON {
		return fileutil.PrintJSON(w, overview)
	}
	total := 0
	for _, file := range overview.Files {
		total += len(file.Symbols)
		if len(file.Symbols) == 0 {
			continue
		}
		keys := make([]string, 0, len(file.Symbols))
		for _, sym := range file.Symbols {
			keys = append(keys, sym.Key())
		}
		fmt.Fprintf(w, "%s: %s\n", file.Path, SummarizeList(keys, 12))
	}
	fmt.Fprintf(w, "scan: files=%d symbols=%d issues=%d", len(overview.Files), total, len(overview.Issues))
	if overview.Truncated {
		fmt.Fprint(w, " (truncated)")
	}
	fmt.Fprintln(w)
	return nil
}

func PrintValidation(w io.Writer, path string, errs []parser.ValidationError, checked, asJSON bool) error {
	if asJSON {
		return fileutil.PrintJSON(w, ValidationSummary{
			Path:    path,
			Checked: checked,
			Valid:   len(errs) == 0,
			Errors:  errs,
		})
	}
	switch {
	case !checked:
		fmt.Fprintf(w, "%s: no grammar for this file type, not checked\n", path)
	case len(errs) == 0:
		fmt.Fprintf(w, "%s: ok\n", path)
	default:
		fmt.Fprintf(w, "%s: %d syntax error(s)\n", path, len(errs))
		for _, e := range errs {
			fmt.Fprintf(w, "  %s\n", e.String())
		}
	}
	return nil
}

func PrintJobResult(w io.Writer, result *jobs.CheckResult, asJSON bool) error {
	if asJSON {
		return fileutil.PrintJSON(w, result)
	}
	parts := []string{
		fmt.Sprintf("%s:", result.JobID),
		colorStatus(result.Status),
	}
	if result.ExitCode != nil {
		parts = append(parts, fmt.Sprintf("exit=%d", *result.ExitCode))
	}
	if result.Reason != "" {
		parts = append(parts, fmt.Sprintf("reason=%q", result.Reason))
	}
	parts = append(parts, fmt.Sprintf("duration=%ds", result.DurationSecs))
	fmt.Fprintln(w, strings.Join(parts, " "))
	fmt.Fprintf(w, "log: %s\n", result.LogPath)
	return nil
}

func SummarizeList(values []string, max int) string {
	if len(values) <= max {
		return strings.Join(values, ", ")
	}
	return fmt.Sprintf("%s ... (+%d more)", strings.Join(values[:max], ", "), len(values)-max)
}
