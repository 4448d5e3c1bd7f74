package commands

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/urfave/cli/v3"

	"github.com/colonyops/taskgraph/internal/core/codec"
	"github.com/colonyops/taskgraph/internal/taskgraph"
	"github.com/colonyops/taskgraph/pkg/iojson"
)

// TransferCmd implements the export and import commands.
type TransferCmd struct {
	flags *Flags
	app   *taskgraph.App

	// export flags
	exportFormat string
	exportList   string
	exportOut    string

	// import flags
	importFormat string
	input        *iojson.Input
}

// NewTransferCmd creates the export and import commands.
func NewTransferCmd(flags *Flags, app *taskgraph.App) *TransferCmd {
	return &TransferCmd{flags: flags, app: app, input: &iojson.Input{}}
}

// Register adds the export and import commands to the application.
func (cmd *TransferCmd) Register(app *cli.Command) *cli.Command {
	app.Commands = append(app.Commands,
		&cli.Command{
			Name:      "export",
			Usage:     "Write the tasks of a list as JSON, Markdown or YAML",
			UsageText: "taskgraph export [--format json|markdown|yaml] [--list <id>] [--out <file>]",
			Flags: []cli.Flag{
				&cli.StringFlag{
					Name:        "format",
					Usage:       "output format (json, markdown, yaml)",
					Value:       string(codec.FormatJSON),
					Destination: &cmd.exportFormat,
				},
				&cli.StringFlag{
					Name:        "list",
					Aliases:     []string{"l"},
					Usage:       "list id (defaults to the current list)",
					Destination: &cmd.exportList,
				},
				&cli.StringFlag{
					Name:        "out",
					Aliases:     []string{"o"},
					Usage:       "write to a file instead of stdout",
					Destination: &cmd.exportOut,
				},
			},
			Action: cmd.runExport,
		},
		&cli.Command{
			Name:      "import",
			Usage:     "Create tasks from a JSON, Markdown or YAML document",
			UsageText: "taskgraph import [--format json|markdown|yaml] [-f <file>]",
			Description: `Reads a document from the file given with -f, or from stdin, and creates
one task per record in the current list. Imported tasks get new ids and
lose their parent and dependency links.

Markdown input takes checklist lines: "- [ ] todo" and "- [x] done".

Examples:
  taskgraph import --format markdown -f notes.md
  taskgraph export --list work | taskgraph import`,
			Flags: []cli.Flag{
				&cli.StringFlag{
					Name:        "format",
					Usage:       "input format (json, markdown, yaml)",
					Value:       string(codec.FormatJSON),
					Destination: &cmd.importFormat,
				},
				cmd.input.Flag(),
			},
			Action: cmd.runImport,
		},
	)

	return app
}

func (cmd *TransferCmd) runExport(ctx context.Context, c *cli.Command) error {
	format, err := codec.ParseFormat(cmd.exportFormat)
	if err != nil {
		return err
	}

	data, err := cmd.app.Graph.Export(ctx, format, cmd.exportList)
	if err != nil {
		return fmt.Errorf("export: %w", err)
	}

	if cmd.exportOut == "" {
		_, err = c.Root().Writer.Write(data)
		return err
	}

	if err := os.MkdirAll(filepath.Dir(cmd.exportOut), 0o755); err != nil {
		return fmt.Errorf("create output dir: %w", err)
	}
	if err := os.WriteFile(cmd.exportOut, data, 0o644); err != nil {
		return fmt.Errorf("write export: %w", err)
	}

	return iojson.WriteWith(c.Root().Writer, c.Root().ErrWriter, map[string]any{
		"path":   cmd.exportOut,
		"format": format,
		"bytes":  len(data),
	})
}

func (cmd *TransferCmd) runImport(ctx context.Context, c *cli.Command) error {
	format, err := codec.ParseFormat(cmd.importFormat)
	if err != nil {
		return err
	}

	data, err := cmd.input.ReadAll()
	if err != nil {
		return err
	}

	imported, err := cmd.app.Graph.Import(ctx, data, format)
	if err != nil {
		return fmt.Errorf("import: %w", err)
	}

	for _, t := range imported {
		if err := iojson.WriteLine(c.Root().Writer, t); err != nil {
			return err
		}
	}
	return nil
}
