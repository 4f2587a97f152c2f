// Command stampgen generates batch PDF documents from a stored template
// project: one output page per data row, each field's value fitted into its
// box at the configured font size.
//
// Usage:
//
//	stampgen generate -data DIR -project ID -out FILE [-v]
//	stampgen validate -data DIR -project ID
//	stampgen import   -data DIR -project ID -in rows.csv|rows.xlsx [-append]
//	stampgen export   -data DIR -project ID -out rows.csv
package main

import (
	"flag"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/lmoreno/stampgen"
	"github.com/lmoreno/stampgen/dataio"
	"github.com/lmoreno/stampgen/generate"
	"github.com/lmoreno/stampgen/store"
)

func main() {
	if len(os.Args) < 2 {
		usage()
		os.Exit(2)
	}

	var err error
	switch os.Args[1] {
	case "generate":
		err = runGenerate(os.Args[2:])
	case "validate":
		err = runValidate(os.Args[2:])
	case "import":
		err = runImport(os.Args[2:])
	case "export":
		err = runExport(os.Args[2:])
	default:
		usage()
		os.Exit(2)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "stampgen: %v\n", err)
		os.Exit(1)
	}
}

func usage() {
	fmt.Fprintln(os.Stderr, `usage: stampgen <command> [flags]

commands:
  generate   generate one PDF page per data row from a project template
  validate   check a project's template and rows for problems
  import     import data rows from a CSV or XLSX file
  export     export a project's data rows to CSV`)
}

func runGenerate(args []string) error {
	fs := flag.NewFlagSet("generate", flag.ExitOnError)
	dataDir := fs.String("data", "data", "store directory")
	project := fs.String("project", "", "project id")
	out := fs.String("out", "", "output PDF path")
	verbose := fs.Bool("v", false, "verbose logging")
	fs.Parse(args)

	if *project == "" || *out == "" {
		return fmt.Errorf("generate: -project and -out are required")
	}

	s, err := store.Open(*dataDir)
	if err != nil {
		return err
	}
	pd, err := s.LoadProject(*project)
	if err != nil {
		return err
	}

	level := slog.LevelWarn
	if *verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))

	for _, w := range pd.Template.CheckBounds() {
		logger.Warn("field extends outside the page and may be invisible in the output",
			"field", w.FieldID, "node", w.DataNode)
	}

	gen := generate.New(generate.WithLogger(logger))
	events, err := gen.GenerateFile(pd.Template, pd.Rows, pd.PDF, *out)
	if err != nil {
		return err
	}

	for ev := range events {
		switch ev.Kind {
		case generate.EventProgress:
			fmt.Fprintf(os.Stderr, "\r%s", ev.Message)
		case generate.EventCompleted:
			fmt.Fprintf(os.Stderr, "\rwrote %d pages to %s\n", ev.Total, ev.Output)
			for _, f := range ev.Failures {
				fmt.Fprintf(os.Stderr, "warning: row %d field %s (%s): %s\n",
					f.Row+1, f.FieldID, f.DataNode, f.Reason)
			}
		case generate.EventCancelled:
			return fmt.Errorf("generate: cancelled after %d of %d pages", ev.Current, ev.Total)
		case generate.EventFailed:
			return ev.Err
		}
	}
	return nil
}

func runValidate(args []string) error {
	fs := flag.NewFlagSet("validate", flag.ExitOnError)
	dataDir := fs.String("data", "data", "store directory")
	project := fs.String("project", "", "project id")
	fs.Parse(args)

	if *project == "" {
		return fmt.Errorf("validate: -project is required")
	}

	s, err := store.Open(*dataDir)
	if err != nil {
		return err
	}
	pd, err := s.LoadProject(*project)
	if err != nil {
		return err
	}
	tpl, rows := pd.Template, pd.Rows

	fields := tpl.Fields()
	fmt.Printf("data nodes: %d\nfields:     %d\nrows:       %d\n",
		len(tpl.DataNodes()), len(fields), len(rows))

	problems := 0
	for _, w := range tpl.CheckBounds() {
		fmt.Printf("out of bounds: field %s (%s) at (%.0f, %.0f) %gx%g\n",
			w.FieldID, w.DataNode, w.Box.X, w.Box.Y, w.Box.Width, w.Box.Height)
		problems++
	}
	for _, node := range tpl.DataNodes() {
		empty := 0
		for _, row := range rows {
			if row[node] == "" {
				empty++
			}
		}
		if empty > 0 {
			fmt.Printf("node %q has no value in %d of %d rows (fields will be skipped there)\n",
				node, empty, len(rows))
		}
	}
	if len(fields) == 0 {
		fmt.Println("template has no fields; generation would be refused")
		problems++
	}
	if len(rows) == 0 {
		fmt.Println("project has no data rows; generation would be refused")
		problems++
	}
	if problems > 0 {
		return fmt.Errorf("validate: %d problem(s) found", problems)
	}
	return nil
}

func runImport(args []string) error {
	fs := flag.NewFlagSet("import", flag.ExitOnError)
	dataDir := fs.String("data", "data", "store directory")
	project := fs.String("project", "", "project id")
	in := fs.String("in", "", "input CSV or XLSX file")
	appendRows := fs.Bool("append", false, "append to existing rows instead of replacing them")
	fs.Parse(args)

	if *project == "" || *in == "" {
		return fmt.Errorf("import: -project and -in are required")
	}

	s, err := store.Open(*dataDir)
	if err != nil {
		return err
	}
	tpl, err := s.LoadTemplateConfig(*project)
	if err != nil {
		return err
	}

	f, err := os.Open(*in)
	if err != nil {
		return err
	}
	defer f.Close()

	nodes := tpl.DataNodes()
	rows, err := importRows(f, *in, nodes)
	if err != nil {
		return err
	}

	if *appendRows {
		existing, err := s.LoadRows(*project)
		if err != nil {
			return err
		}
		rows = append(existing, rows...)
	}
	if err := s.SaveRows(*project, rows); err != nil {
		return err
	}
	fmt.Printf("imported %d rows\n", len(rows))
	return nil
}

func importRows(f *os.File, name string, nodes []string) ([]stampgen.DataRow, error) {
	if strings.EqualFold(filepath.Ext(name), ".xlsx") {
		return dataio.ImportXLSX(f, nodes)
	}
	return dataio.ImportCSV(f, nodes)
}

func runExport(args []string) error {
	fs := flag.NewFlagSet("export", flag.ExitOnError)
	dataDir := fs.String("data", "data", "store directory")
	project := fs.String("project", "", "project id")
	out := fs.String("out", "", "output CSV path")
	fs.Parse(args)

	if *project == "" || *out == "" {
		return fmt.Errorf("export: -project and -out are required")
	}

	s, err := store.Open(*dataDir)
	if err != nil {
		return err
	}
	tpl, err := s.LoadTemplateConfig(*project)
	if err != nil {
		return err
	}
	rows, err := s.LoadRows(*project)
	if err != nil {
		return err
	}

	f, err := os.Create(*out)
	if err != nil {
		return err
	}
	defer f.Close()

	if err := dataio.ExportCSV(f, tpl.DataNodes(), rows); err != nil {
		return err
	}
	fmt.Printf("exported %d rows to %s\n", len(rows), *out)
	return nil
}
