package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/urfave/cli/v2"

	"github.com/waste-to-wealth/server/internal/agent/model"
	"github.com/waste-to-wealth/server/internal/api"
	"github.com/waste-to-wealth/server/internal/mcp"
	"github.com/waste-to-wealth/server/internal/report"
)

// newCLIApp creates the CLI application with all commands.
func newCLIApp(build depsFactory) *cli.App {
	app := &cli.App{
		Name:    "waste-to-wealth",
		Usage:   "Waste disposal answers and waste-to-wealth ideas",
		Version: Version,
		Commands: []*cli.Command{
			serveCmd(build),
			askCmd(build),
			mcpCmd(build),
		},
	}
	// Disable default exit error handler to allow proper error return in tests
	app.ExitErrHandler = func(_ *cli.Context, _ error) {}
	return app
}

func serveCmd(build depsFactory) *cli.Command {
	return &cli.Command{
		Name:  "serve",
		Usage: "Start the HTTP API",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "addr", Usage: "Listen address (overrides HTTP_ADDR)"},
		},
		Action: func(c *cli.Context) error {
			ctx, stop := signal.NotifyContext(c.Context, os.Interrupt, syscall.SIGTERM)
			defer stop()

			d, err := build(ctx)
			if err != nil {
				return err
			}
			defer d.close()

			srv, err := api.NewServer(d.runner, d.ledger)
			if err != nil {
				return err
			}
			addr := d.cfg.Server.Addr
			if a := c.String("addr"); a != "" {
				addr = a
			}
			return srv.ListenAndServe(ctx, addr, d.cfg.Server.ShutdownTimeout)
		},
	}
}

// Output formats accepted by ask --format.
const (
	formatJSON     = "json"
	formatText     = "text"
	formatMarkdown = "markdown"
	formatHTML     = "html"
)

func askCmd(build depsFactory) *cli.Command {
	return &cli.Command{
		Name:      "ask",
		Usage:     "Run one query through the pipeline and print the result",
		ArgsUsage: "<query...>",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "format", Aliases: []string{"f"}, Value: formatJSON, Usage: "Output format: json|text|markdown|html"},
		},
		Action: func(c *cli.Context) error {
			query := strings.TrimSpace(strings.Join(c.Args().Slice(), " "))
			if query == "" {
				return fmt.Errorf("query is required")
			}
			format := c.String("format")
			switch format {
			case formatJSON, formatText, formatMarkdown, formatHTML:
			default:
				return fmt.Errorf("unknown format %q", format)
			}

			d, err := build(c.Context)
			if err != nil {
				return err
			}
			defer d.close()

			out, err := d.runner.Run(c.Context, model.QueryInput{Query: query})
			if err != nil {
				return err
			}
			return writeResult(c.App.Writer, format, out)
		},
	}
}

func writeResult(w io.Writer, format string, out model.WasteQueryState) error {
	switch format {
	case formatText:
		return report.WriteText(w, out)
	case formatMarkdown:
		md, err := report.Markdown(out)
		if err != nil {
			return err
		}
		_, err = io.WriteString(w, md)
		return err
	case formatHTML:
		page, err := report.HTML(out)
		if err != nil {
			return err
		}
		_, err = io.WriteString(w, page)
		return err
	default:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(out)
	}
}

func mcpCmd(build depsFactory) *cli.Command {
	return &cli.Command{
		Name:  "mcp",
		Usage: "Serve the analyze_waste tool over MCP stdio",
		Action: func(c *cli.Context) error {
			d, err := build(c.Context)
			if err != nil {
				return err
			}
			defer d.close()
			return mcp.Run(d.runner, Version)
		},
	}
}

