// Package report renders solve results as text tables and spreadsheets.
package report

import (
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/pnordq/pnfem/internal/domain"
)

// Magnification applied to displacements in the report tables.
const Magnification = 1000

// Table is a titled numeric table. Decimals < 0 prints integers.
type Table struct {
	Title    string
	Sheet    string
	Headers  []string
	Rows     [][]float64
	Decimals int
}

// Tables returns the result tables in report order.
func Tables(out *domain.OutputData) []Table {
	return []Table{
		{Title: "Coordinates", Sheet: "Coordinates", Headers: []string{"x", "y"}, Rows: out.Coords, Decimals: 3},
		{Title: "Coordinate dofs", Sheet: "Coordinate dofs", Headers: []string{"x", "y"}, Rows: ints(out.Dofs), Decimals: -1},
		{Title: "Topology", Sheet: "Topology", Headers: numbered(out.Edof), Rows: ints(out.Edof), Decimals: -1},
		{Title: "Element coordinates x", Sheet: "Element x", Headers: numbered(out.Ex), Rows: out.Ex, Decimals: 3},
		{Title: "Element coordinates y", Sheet: "Element y", Headers: numbered(out.Ey), Rows: out.Ey, Decimals: 3},
		{Title: "Displacements (magnified by 1000)", Sheet: "Element displacements", Headers: numbered(out.Ed), Rows: scaled(out.Ed, Magnification), Decimals: 3},
		{Title: "Reactions", Sheet: "Reactions", Headers: []string{"r"}, Rows: column(out.R, 1), Decimals: 3},
		{Title: "Nodal displacements (magnified by 1000)", Sheet: "Nodal displacements", Headers: []string{"a"}, Rows: column(out.A, Magnification), Decimals: 3},
	}
}

// StudyTable summarizes the steps of a parameter study.
func StudyTable(res *domain.StudyResult) Table {
	headers := []string{"step", string(res.Spec.Param), "max von Mises", "max |u|"}
	names := metricNames(res)
	headers = append(headers, names...)

	rows := make([][]float64, 0, len(res.Steps))
	for _, s := range res.Steps {
		row := []float64{float64(s.Index + 1), s.Value, s.MaxVonMises, s.MaxDisplacement}
		for _, n := range names {
			row = append(row, s.Metrics[n])
		}
		rows = append(rows, row)
	}
	return Table{Title: "Parameter study " + res.Spec.BaseName(), Sheet: "Study", Headers: headers, Rows: rows, Decimals: 6}
}

// Render draws the table with a psql-like border.
func (t Table) Render() string {
	cells := make([][]string, len(t.Rows))
	for i, r := range t.Rows {
		cells[i] = make([]string, len(r))
		for j, v := range r {
			cells[i][j] = formatCell(v, t.Decimals)
		}
	}

	cell := lipgloss.NewStyle().Padding(0, 1)
	tb := table.New().
		Border(lipgloss.NormalBorder()).
		StyleFunc(func(row, _ int) lipgloss.Style {
			if row == table.HeaderRow {
				return cell.Bold(true).Align(lipgloss.Center)
			}
			return cell.Align(lipgloss.Right)
		}).
		Headers(t.Headers...).
		Rows(cells...)
	return tb.Render()
}

func formatCell(v float64, decimals int) string {
	if decimals < 0 {
		return strconv.Itoa(int(v))
	}
	return strconv.FormatFloat(v, 'f', decimals, 64)
}

// Write renders the full text report: model input, result tables, summary.
func Write(w io.Writer, out *domain.OutputData) error {
	if out.Empty() {
		return domain.ErrNoResult
	}
	in := out.Input

	var b strings.Builder
	b.WriteString("-------------- Model input --------------------------\n")
	fmt.Fprintf(&b, "t = %v m\n", in.T)
	fmt.Fprintf(&b, "E = %v Pa\n", in.E)
	fmt.Fprintf(&b, "v = %v\n", in.V)
	b.WriteString("-------------- Results ------------------------------\n")
	for _, t := range Tables(out) {
		b.WriteString(t.Title + ":\n")
		b.WriteString(t.Render())
		b.WriteString("\n")
	}
	b.WriteString("-------------- Summary ------------------------------\n")
	writeSummary(&b, out.Summary)

	_, err := io.WriteString(w, b.String())
	return err
}

// WriteSummary prints only the summary block.
func WriteSummary(w io.Writer, s domain.Summary) error {
	var b strings.Builder
	writeSummary(&b, s)
	_, err := io.WriteString(w, b.String())
	return err
}

func writeSummary(b *strings.Builder, s domain.Summary) {
	fmt.Fprintf(b, "Nodes:             %d\n", s.Nodes)
	fmt.Fprintf(b, "Elements:          %d\n", s.Elements)
	fmt.Fprintf(b, "Dofs:              %d (%d fixed)\n", s.Dofs, s.FixedDofs)
	fmt.Fprintf(b, "Max von Mises:     %.4g Pa (element %d)\n", s.MaxVonMises, s.MaxVonMisesElement+1)
	fmt.Fprintf(b, "Min von Mises:     %.4g Pa\n", s.MinVonMises)
	fmt.Fprintf(b, "Max displacement:  %.4g m (node %d)\n", s.MaxDisplacement, s.MaxDisplacementNode+1)
	fmt.Fprintf(b, "Applied load:      %.4g N\n", s.AppliedLoad)
	fmt.Fprintf(b, "Reaction x / y:    %.4g N / %.4g N\n", s.ReactionX, s.ReactionY)
	solver := s.LinearSolver
	if s.Iterations > 0 {
		solver = fmt.Sprintf("%s, %d iterations", solver, s.Iterations)
	}
	fmt.Fprintf(b, "Linear solver:     %s\n", solver)
	fmt.Fprintf(b, "Solve time:        %s\n", s.Duration)
}

func ints(rows [][]int) [][]float64 {
	out := make([][]float64, len(rows))
	for i, r := range rows {
		out[i] = make([]float64, len(r))
		for j, v := range r {
			out[i][j] = float64(v)
		}
	}
	return out
}

func scaled(rows [][]float64, f float64) [][]float64 {
	out := make([][]float64, len(rows))
	for i, r := range rows {
		out[i] = make([]float64, len(r))
		for j, v := range r {
			out[i][j] = v * f
		}
	}
	return out
}

func column(xs []float64, f float64) [][]float64 {
	out := make([][]float64, len(xs))
	for i, v := range xs {
		out[i] = []float64{v * f}
	}
	return out
}

func numbered[T any](rows [][]T) []string {
	if len(rows) == 0 {
		return nil
	}
	h := make([]string, len(rows[0]))
	for i := range h {
		h[i] = strconv.Itoa(i + 1)
	}
	return h
}

func metricNames(res *domain.StudyResult) []string {
	seen := map[string]bool{}
	var names []string
	for _, s := range res.Steps {
		for k := range s.Metrics {
			if !seen[k] {
				seen[k] = true
				names = append(names, k)
			}
		}
	}
	sort.Strings(names)
	return names
}
