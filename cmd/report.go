package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"github.com/tosih/mrdf-tool/pkg/compare"
	"github.com/tosih/mrdf-tool/pkg/editor"
	"github.com/tosih/mrdf-tool/pkg/export"
	"github.com/tosih/mrdf-tool/pkg/patchlog"
	"github.com/tosih/mrdf-tool/pkg/web"
)

var diffCmd = &cobra.Command{
	Use:   "diff FILE",
	Short: "Show what the last save of a file changed",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		f, err := current.open(args[0], false)
		if err != nil {
			return err
		}
		previous, err := beforeLastSave(f)
		if err != nil {
			return err
		}
		now := f.session.Snapshot()
		compare.Display(compare.BuildBuffers(previous, now, f.session.Profile()), previous, now)
		return nil
	},
}

var historyCmd = &cobra.Command{
	Use:   "history FILE",
	Short: "List the logged saves of a file",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		entries, err := current.history(args[0])
		if err != nil {
			return err
		}
		if len(entries) == 0 {
			pterm.Info.Printf("No saves of %s recorded\n", args[0])
			return nil
		}
		data := [][]string{{"Save", "Time", "Offset", "Len", "Fields", "Before", "After"}}
		for _, e := range entries {
			data = append(data, []string{
				e.Save,
				e.Ts.Local().Format("2006-01-02 15:04:05"),
				fmt.Sprintf("0x%04X", e.Offset),
				fmt.Sprintf("%d", e.Length),
				strings.Join(e.Fields, ", "),
				e.BeforeHex,
				e.AfterHex,
			})
		}
		return pterm.DefaultTable.WithHasHeader().WithData(data).Render()
	},
}

var undoOpts saveOptions

var undoCmd = &cobra.Command{
	Use:   "undo FILE",
	Short: "Roll back the last logged save",
	Long: `Roll back the most recent save of FILE recorded in the patch log. The
file must still hold the bytes that save wrote; if anything changed them
since, nothing is touched.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		f, err := current.open(args[0], false)
		if err != nil {
			return err
		}
		entries, err := current.history(f.path)
		if err != nil {
			return err
		}
		last := patchlog.LastSave(entries, absPath(f.path))
		if len(last) == 0 {
			return fmt.Errorf("no saves of %s recorded", f.path)
		}
		if err := patchlog.Revert(f.session, last); err != nil {
			return err
		}
		pterm.Info.Printf("Rolling back save %s from %s\n", last[0].Save, last[0].Ts.Local().Format("2006-01-02 15:04:05"))
		_, err = current.commit(f, undoOpts)
		return err
	},
}

var (
	exportFormat string
	exportOut    string
)

var exportCmd = &cobra.Command{
	Use:   "export FILE",
	Short: "Export the fields of a file as CSV or PDF",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		f, err := current.open(args[0], true)
		if err != nil {
			return err
		}
		format := strings.ToLower(exportFormat)
		out := exportOut
		if out == "" {
			out = strings.TrimSuffix(args[0], filepath.Ext(args[0])) + "." + format
		}
		source := filepath.Base(args[0])

		switch format {
		case "csv":
			err = export.ExportCSV(out, f.session, source)
		case "pdf":
			err = export.SavePDF(f.session, source, out)
		default:
			return fmt.Errorf("unknown format %q, use csv or pdf", exportFormat)
		}
		if err != nil {
			return err
		}
		current.log.Info("fields exported", "file", args[0], "format", format, "out", out)
		pterm.Success.Printf("Exported %s to %s\n", source, out)
		return nil
	},
}

var importOpts saveOptions

var importCmd = &cobra.Command{
	Use:   "import FILE CSV",
	Short: "Apply a CSV field sheet to a file",
	Long: `Apply a field sheet written by export. The raw_hex column wins when
present, otherwise the value column is parsed. Any bad row rejects the
whole sheet.`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		f, err := current.open(args[0], true)
		if err != nil {
			return err
		}
		written, err := export.ImportCSV(args[1], f.session)
		if err != nil {
			return err
		}
		pterm.Info.Printf("%d field row(s) read from %s\n", len(written), args[1])
		_, err = current.commit(f, importOpts)
		return err
	},
}

var (
	servePort int
	serveOpen bool
)

var serveCmd = &cobra.Command{
	Use:   "serve FILE",
	Short: "Serve a JSON editing API for one file",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		f, err := current.open(args[0], false)
		if err != nil {
			return err
		}
		port := current.cfg.Serve.Port
		if cmd.Flags().Changed("port") {
			port = servePort
		}
		srv, err := web.NewServer(web.Options{
			Filename: f.path,
			Session:  f.session,
			Detector: current.detector,
			Registry: current.registry,
			Save: func(s *editor.Session, target string) (string, error) {
				return current.persist(f.path, target, s, true)
			},
			Port:        port,
			OpenBrowser: serveOpen,
			Log:         current.log,
		})
		if err != nil {
			return err
		}

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
		defer stop()
		return srv.Start(ctx)
	},
}

func init() {
	addSaveFlags(undoCmd, &undoOpts)
	addSaveFlags(importCmd, &importOpts)
	exportCmd.Flags().StringVar(&exportFormat, "format", "csv", "csv or pdf")
	exportCmd.Flags().StringVarP(&exportOut, "out", "o", "", "output file (default: FILE with the format extension)")
	serveCmd.Flags().IntVar(&servePort, "port", 8080, "port to listen on (default from config)")
	serveCmd.Flags().BoolVar(&serveOpen, "open", false, "open the state endpoint in a browser")

	rootCmd.AddCommand(diffCmd, historyCmd, undoCmd, exportCmd, importCmd, serveCmd)
}
