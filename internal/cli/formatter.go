package cli

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"text/tabwriter"

	"github.com/dustin/go-humanize"
	"github.com/moby/sys/atomicwriter"

	"github.com/idelchi/treesize/internal/treesize"
)

const (
	// TabSpacing is the number of spaces between tabwriter columns.
	TabSpacing = 2
	// ReportPerm is the file mode of the CSV report.
	ReportPerm = 0o644
)

// CSVHeader is the header row of the CSV report.
//
//nolint:gochecknoglobals // Format constant
var CSVHeader = []string{"Path", "Size", "SizeGB"}

// Summary returns the one-line summary of a run.
func Summary(report *treesize.Report) string {
	return fmt.Sprintf("Scanned %.2f GB in %.3f seconds", report.TotalGB(), report.Elapsed.Seconds())
}

// head returns the first top rows, or all rows when top is 0.
func head(rows []treesize.Row, top int) []treesize.Row {
	if top > 0 && len(rows) > top {
		return rows[:top]
	}

	return rows
}

// WriteCSV writes every row of the report to path, replacing any existing file atomically.
func WriteCSV(report *treesize.Report, path string) (err error) {
	file, err := atomicwriter.New(path, ReportPerm)
	if err != nil {
		return fmt.Errorf("creating report %q: %w", path, err)
	}

	defer func() {
		if closeErr := file.Close(); closeErr != nil && err == nil {
			err = fmt.Errorf("writing report %q: %w", path, closeErr)
		}
	}()

	writer := csv.NewWriter(file)

	if err := writer.Write(CSVHeader); err != nil {
		return fmt.Errorf("writing report %q: %w", path, err)
	}

	for _, row := range report.Rows {
		record := []string{
			row.Path,
			strconv.FormatInt(row.Size, 10),
			strconv.FormatFloat(row.SizeGB, 'f', -1, 64),
		}

		if err := writer.Write(record); err != nil {
			return fmt.Errorf("writing report %q: %w", path, err)
		}
	}

	writer.Flush()

	if err := writer.Error(); err != nil {
		return fmt.Errorf("writing report %q: %w", path, err)
	}

	return nil
}

// PrintJSON outputs the report in JSON format.
func PrintJSON(report *treesize.Report, writer io.Writer) error {
	data, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding JSON output: %w", err)
	}

	if _, err := fmt.Fprintln(writer, string(data)); err != nil {
		return err
	}

	return nil
}

// PrintPlain outputs one path per line, largest first.
func PrintPlain(report *treesize.Report, writer io.Writer, top int) error {
	for _, row := range head(report.Rows, top) {
		if _, err := fmt.Fprintln(writer, row.Path); err != nil {
			return err
		}
	}

	return nil
}

// PrintTable outputs the largest paths and run statistics in human-readable table format.
func PrintTable(report *treesize.Report, writer io.Writer, top int) error {
	w := tabwriter.NewWriter(writer, 0, 4, TabSpacing, ' ', 0)

	rows := head(report.Rows, top)

	fmt.Fprintln(w, "\nTop paths:\t\t")

	// Displayed smallest first so the largest ends up closest to the prompt.
	for i := len(rows) - 1; i >= 0; i-- {
		row := rows[i]
		pct := 0.0
		if report.Total > 0 {
			pct = 100.0 * float64(row.Size) / float64(report.Total)
		}
		fmt.Fprintf(w, "  %d) '%s'\t%s (%.1f%%)\n",
			i+1, row.Path, humanize.IBytes(uint64(row.Size)), pct) //nolint:gosec // Size is never negative
	}

	fmt.Fprintln(w, "\nStats:\t\t")
	fmt.Fprintf(w, "Root:\t%s\n", report.Root)
	fmt.Fprintf(w, "Total files:\t%d\n", report.FileCount)
	fmt.Fprintf(w, "Total paths:\t%d\n", len(report.Rows))
	fmt.Fprintf(w, "Total size:\t%s (%d bytes)\n",
		humanize.IBytes(uint64(report.Total)), report.Total) //nolint:gosec // Total is never negative
	fmt.Fprintf(w, "Units:\t%d\n", report.UnitCount)

	if report.ErrorCount > 0 {
		fmt.Fprintf(w, "Unreadable entries:\t%d\n", report.ErrorCount)
	}

	for _, unit := range report.Skipped {
		fmt.Fprintf(w, "Skipped unit:\t%s\n", unit)
	}

	fmt.Fprintf(w, "\nElapsed:\t%v\n", report.Elapsed)

	return w.Flush()
}
