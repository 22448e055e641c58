// Package report renders study results for the terminal.
package report

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"gonum.org/v1/gonum/floats"

	"github.com/san-kum/adaptsim/internal/experiment"
	"github.com/san-kum/adaptsim/internal/storage"
)

func row(label, value string) string {
	return Label.Render(fmt.Sprintf("%-12s", label)) + " " + Value.Render(value)
}

func formatPoint(p []float64) string {
	parts := make([]string, len(p))
	for i, v := range p {
		parts[i] = fmt.Sprintf("%.4g", v)
	}
	return "(" + strings.Join(parts, ", ") + ")"
}

// Summary renders a boxed overview of a finished study.
func Summary(rep *experiment.Report, tol float64) string {
	_, samples := rep.Points.Dims()

	status := StatusOpen.Render("not converged")
	if rep.Converged {
		status = StatusConverged.Render("converged")
	}

	lines := []string{
		Title.Render("adaptive study: " + rep.Model),
		"",
		row("mode", rep.Mode.String()),
		row("parameters", strings.Join(rep.Params, ", ")),
		row("samples", fmt.Sprintf("%d initial + %d added", rep.Initial, samples-rep.Initial)),
		row("tolerance", fmt.Sprintf("%.3g", tol)),
	}
	if len(rep.Errors) > 0 {
		worst := floats.MaxIdx(rep.Errors)
		lines = append(lines,
			row("max error", fmt.Sprintf("%.4g", rep.Errors[worst])),
			row("worst at", pointAt(rep, worst)),
		)
	}
	lines = append(lines, "", status)
	return Panel.Render(strings.Join(lines, "\n"))
}

// StudySummary renders the saved metadata of a study.
func StudySummary(meta *storage.StudyMetadata) string {
	status := StatusOpen.Render("not converged")
	if meta.Converged {
		status = StatusConverged.Render("converged")
	}

	names := make([]string, len(meta.Params))
	for i, p := range meta.Params {
		names[i] = fmt.Sprintf("%s [%g, %g]", p.Name, p.Min, p.Max)
	}

	output := meta.Output
	if meta.Metric != "" {
		output += " (" + meta.Metric + ")"
	}

	lines := []string{
		Title.Render(meta.ID),
		Subtle.Render(meta.Timestamp.Format("2006-01-02 15:04:05")),
		"",
		row("model", meta.Model+" / "+meta.Integrator),
		row("output", output),
		row("mode", meta.Mode),
		row("parameters", strings.Join(names, ", ")),
		row("samples", fmt.Sprintf("%d initial + %d added", meta.Initial, meta.Samples-meta.Initial)),
		row("tolerance", fmt.Sprintf("%.3g", meta.Sampling.Tolerance)),
		row("max error", fmt.Sprintf("%.4g", meta.MaxError)),
		"",
		status,
	}
	return Panel.Render(strings.Join(lines, "\n"))
}

func pointAt(rep *experiment.Report, j int) string {
	r, _ := rep.Points.Dims()
	p := make([]float64, r)
	for i := range p {
		p[i] = rep.Points.At(i, j)
	}
	return formatPoint(p)
}

// RoundLine renders one progress line for a completed round.
func RoundLine(r experiment.Round) string {
	line := fmt.Sprintf("round %3d  max error %-10.4g  new point %s", r.Index, r.MaxError, formatPoint(r.Point))
	if r.Uniform {
		return line + " " + Uniform.Render("[uniform]")
	}
	return line
}

// WriteRounds writes a table of rounds.
func WriteRounds(w io.Writer, params []string, rounds []experiment.Round) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintf(tw, "ROUND\tMAX ERROR\tUNIFORM\t%s\n", strings.Join(upper(params), "\t"))
	for _, r := range rounds {
		vals := make([]string, len(r.Point))
		for i, v := range r.Point {
			vals[i] = fmt.Sprintf("%.6g", v)
		}
		fmt.Fprintf(tw, "%d\t%.6g\t%t\t%s\n", r.Index, r.MaxError, r.Uniform, strings.Join(vals, "\t"))
	}
	return tw.Flush()
}

// WriteStudies writes a table of saved studies.
func WriteStudies(w io.Writer, studies []storage.StudyMetadata) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tMODEL\tMODE\tSAMPLES\tROUNDS\tMAX ERROR\tCONVERGED\tTIMESTAMP")
	for _, s := range studies {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%d\t%d\t%.4g\t%t\t%s\n",
			s.ID, s.Model, s.Mode, s.Samples, s.Rounds, s.MaxError, s.Converged,
			s.Timestamp.Format("2006-01-02 15:04:05"))
	}
	return tw.Flush()
}

func upper(names []string) []string {
	out := make([]string, len(names))
	for i, n := range names {
		out[i] = strings.ToUpper(n)
	}
	return out
}
