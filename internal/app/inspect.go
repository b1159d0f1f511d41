package app

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"go.trai.ch/smelt/internal/core/domain"
	"go.trai.ch/zerr"
)

func newTable(headers ...string) *table.Table {
	return table.New().
		Border(lipgloss.HiddenBorder()).
		Headers(headers...)
}

// Targets prints every resolved target in build order with its archive.
func (a *App) Targets(ctx context.Context, cwd string) error {
	s, err := a.load(ctx, cwd, 0)
	if err != nil {
		return err
	}

	tasks, archives, err := s.builder.Plan()
	if err != nil {
		return err
	}

	archiveOf := make(map[*domain.CompileTask]string, len(tasks))
	for _, archive := range archives {
		for _, task := range archive.Sources {
			archiveOf[task] = relTo(s.project.Root, archive.Output)
		}
	}

	t := newTable("TARGET", "SOURCES", "DEPENDENCIES", "ARCHIVE")
	for _, task := range tasks {
		deps := make([]string, len(task.Dependencies))
		for i, dep := range task.Dependencies {
			deps[i] = dep.Target.String()
		}
		t.Row(task.Target.String(), strconv.Itoa(len(task.Sources)), strings.Join(deps, ", "), archiveOf[task])
	}

	_, err = fmt.Fprintln(a.stdout, t.String())
	return err
}

// Report prints the report of the last build, as JSON when asJSON is set.
func (a *App) Report(_ context.Context, cwd string, asJSON bool) error {
	project, err := a.configLoader.Load(cwd)
	if err != nil {
		return zerr.Wrap(err, "failed to load configuration")
	}

	report, err := a.store.Get(project.Layout().ReportPath())
	if err != nil {
		return err
	}

	if asJSON {
		enc := json.NewEncoder(a.stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(report)
	}

	_, err = fmt.Fprint(a.stdout, formatReport(project.Root, report))
	return err
}

func formatReport(root string, r *domain.Report) string {
	var b strings.Builder

	result := "succeeded"
	if !r.Succeeded {
		result = "failed"
	}
	fmt.Fprintf(&b, "%s %s in %s (%s, %s/%s)\n",
		r.Project, result, r.Duration.Round(time.Millisecond),
		r.Toolchain.CompilerID, r.Toolchain.OS, r.Toolchain.Arch)
	fmt.Fprintf(&b, "started %s\n\n", r.StartedAt.Format(time.RFC3339))

	targets := newTable("TARGET", "SUCCEEDED", "FAILED", "SKIPPED", "GENERATED")
	for _, t := range r.Targets {
		var succeeded, failed, skipped int
		for _, s := range t.Sources {
			switch s.Status {
			case domain.StatusSucceeded:
				succeeded++
			case domain.StatusFailed:
				failed++
			case domain.StatusSkipped:
				skipped++
			}
		}
		targets.Row(t.Name, strconv.Itoa(succeeded), strconv.Itoa(failed), strconv.Itoa(skipped), strconv.Itoa(len(t.Generated)))
	}
	b.WriteString(targets.String())
	b.WriteString("\n")

	if len(r.FeatureTests) > 0 {
		available := 0
		for _, ft := range r.FeatureTests {
			if ft.Available {
				available++
			}
		}
		fmt.Fprintf(&b, "\nfeature tests: %d of %d available\n", available, len(r.FeatureTests))
	}

	if len(r.Archives) > 0 {
		archives := newTable("ARCHIVE", "STATUS", "DETAIL")
		for _, ar := range r.Archives {
			archives.Row(relTo(root, ar.Output), string(ar.Status), ar.SkipReason)
		}
		b.WriteString("\n")
		b.WriteString(archives.String())
		b.WriteString("\n")
	}

	if len(r.Errors) > 0 {
		fmt.Fprintf(&b, "\n%d error(s):\n", len(r.Errors))
		for _, e := range r.Errors {
			fmt.Fprintf(&b, "  %s\n", e)
		}
	}
	return b.String()
}
