// Command reportcanvas serves report template editing sessions over MCP and
// inspects the datasets they bind to.
//
// # Configuration for an MCP client
//
//	{
//	  "mcpServers": {
//	    "reportcanvas": {
//	      "command": "reportcanvas",
//	      "args": ["serve", "--paper", "A4"]
//	    }
//	  }
//	}
//
// # Commands
//
//   - serve: run an editing session on stdio
//   - columns: print the columns and record count of a workbook
//   - version: print the version
package main

import (
	"context"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"time"

	"github.com/spf13/cobra"

	"github.com/lvillar/reportcanvas"
	"github.com/lvillar/reportcanvas/ingest"
	"github.com/lvillar/reportcanvas/mcp"
	"github.com/lvillar/reportcanvas/model"
)

var (
	paper          string
	dataPath       string
	fileName       string
	letterhead     string
	letterheadPage int
	watermark      string
	title          string
	scale          float64
	settleTimeout  time.Duration
	captureTimeout time.Duration
	verbose        bool
)

func main() {
	rootCmd := &cobra.Command{
		Use:           "reportcanvas",
		Short:         "Data-driven report templates rendered to one PDF page per record",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	serveCmd := &cobra.Command{
		Use:   "serve",
		Short: "Run an editing session as an MCP server on stdio",
		Args:  cobra.NoArgs,
		RunE:  serve,
	}
	serveCmd.Flags().StringVar(&paper, "paper", string(model.PaperA4), "Paper type: A4 or A3")
	serveCmd.Flags().StringVar(&dataPath, "data", "", "Workbook to load at start")
	serveCmd.Flags().StringVarP(&fileName, "output", "o", "report.pdf", "Default export file")
	serveCmd.Flags().StringVar(&letterhead, "letterhead", "", "PDF drawn beneath every page")
	serveCmd.Flags().IntVar(&letterheadPage, "letterhead-page", 1, "Page of the letterhead PDF to use")
	serveCmd.Flags().StringVar(&watermark, "watermark", "", "Text stamped across every page")
	serveCmd.Flags().StringVar(&title, "title", "", "Document title metadata")
	serveCmd.Flags().Float64Var(&scale, "scale", 2, "Capture oversampling factor")
	serveCmd.Flags().DurationVar(&settleTimeout, "settle-timeout", 5*time.Second, "Wait for a record to be painted")
	serveCmd.Flags().DurationVar(&captureTimeout, "capture-timeout", 30*time.Second, "Bound on one page capture")
	serveCmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "Log to stderr")

	columnsCmd := &cobra.Command{
		Use:   "columns [input.xlsx]",
		Short: "Print the columns and record count of a workbook",
		Args:  cobra.ExactArgs(1),
		RunE:  columns,
	}

	versionCmd := &cobra.Command{
		Use:   "version",
		Short: "Print the version",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "%s %s\n", mcp.ServerName, mcp.ServerVersion)
		},
	}

	rootCmd.AddCommand(serveCmd, columnsCmd, versionCmd)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "reportcanvas: %v\n", err)
		os.Exit(1)
	}
}

func serve(cmd *cobra.Command, _ []string) error {
	p, err := model.ParsePaper(paper)
	if err != nil {
		return err
	}

	out := io.Discard
	if verbose {
		out = os.Stderr
	}
	logger := log.New(out, "reportcanvas: ", log.LstdFlags)

	opts := []reportcanvas.Option{
		reportcanvas.WithPaper(p),
		reportcanvas.WithLogger(logger),
		reportcanvas.WithFileName(fileName),
		reportcanvas.WithCaptureScale(scale),
		reportcanvas.WithTimeouts(settleTimeout, captureTimeout),
		reportcanvas.WithProgress(func(cur, total int) {
			logger.Printf("rendering %d/%d", cur, total)
		}),
	}
	if letterhead != "" {
		opts = append(opts, reportcanvas.WithLetterhead(letterhead, letterheadPage))
	}
	if watermark != "" {
		opts = append(opts, reportcanvas.WithWatermark(watermark))
	}
	if title != "" {
		opts = append(opts, reportcanvas.WithTitle(title))
	}
	session := reportcanvas.New(opts...)

	if dataPath != "" {
		if err := session.LoadSpreadsheet(dataPath); err != nil {
			return err
		}
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
	defer stop()
	go session.Start(ctx)

	server := mcp.NewServerWithIO(cmd.InOrStdin(), cmd.OutOrStdout(), logger)
	mcp.RegisterSessionTools(server, session)
	mcp.RegisterSessionResources(server, session)
	if err := server.Run(ctx); err != nil && err != context.Canceled {
		return err
	}
	return nil
}

func columns(cmd *cobra.Command, args []string) error {
	ds, err := ingest.ReadFile(args[0])
	if err != nil {
		return err
	}
	w := cmd.OutOrStdout()
	for i, c := range ds.Columns {
		fmt.Fprintf(w, "%d\t%s\n", i+1, c)
	}
	fmt.Fprintf(w, "%d records\n", ds.Len())
	return nil
}
