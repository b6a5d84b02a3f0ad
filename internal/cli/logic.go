package cli

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/dustin/go-humanize"

	"github.com/idelchi/treesize/internal/config"
	"github.com/idelchi/treesize/internal/logging"
	"github.com/idelchi/treesize/internal/treesize"
)

func logic(ctx context.Context, cfg *config.Config, stdout, stderr io.Writer) error {
	log := logging.New(stderr, cfg.Debug)
	ctx = log.WithContext(ctx)

	output := strings.ToLower(cfg.Output)
	enableProgress := output == "table" && !cfg.Debug && logging.IsTerminal(stderr)

	var (
		progressHook func(files, bytes int64)
		status       *logging.StatusLine
	)

	if enableProgress {
		status = logging.NewStatusLine(stderr)
		defer status.Close()

		progressHook = func(files, bytes int64) {
			status.Update(fmt.Sprintf("Scanning… %d files, %s",
				files, humanize.IBytes(uint64(bytes)))) //nolint:gosec // Bytes is always positive
		}
	}

	// Run stops the reporter before returning, so the line stays clear.
	report, err := treesize.Run(ctx, cfg.Options(), progressHook)
	if status != nil {
		status.Clear()
	}

	if err != nil {
		return err
	}

	if cfg.Report != "" {
		if err := WriteCSV(report, cfg.Report); err != nil {
			return err
		}

		log.Info().Str("path", cfg.Report).Int("rows", len(report.Rows)).Msg("wrote report")
	}

	switch output {
	case "json":
		err = PrintJSON(report, stdout)
	case "plain":
		err = PrintPlain(report, stdout, cfg.Top)
	default:
		err = PrintTable(report, stdout, cfg.Top)
	}

	if err != nil {
		return err
	}

	log.Info().Msg(Summary(report))

	return nil
}
