// Copyright (c) 2025 suprsokr
// SPDX-License-Identifier: MIT

// Command fwpak unpacks and repacks .pak archives and converts binary
// locale files to editable text and back.
package main

import (
	"fmt"
	"log"
	"os"
	"text/tabwriter"

	"github.com/urfave/cli/v2"
	"go.uber.org/zap"

	fwpak "github.com/suprsokr/go-fwpak"
	"github.com/suprsokr/go-fwpak/internal/logging"
)

func main() {
	if err := newApp().Run(os.Args); err != nil {
		log.Fatal(err)
	}
}

func newApp() *cli.App {
	app := &cli.App{
		Name:    "fwpak",
		Usage:   "Unpack and pack game archives and localization files",
		Version: fwpak.Version,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "log-level",
				Value:   "info",
				Usage:   "debug, info, warn or error",
				EnvVars: []string{"FWPAK_LOG_LEVEL"},
			},
			&cli.StringFlag{
				Name:    "log-format",
				Value:   "console",
				Usage:   "console or json",
				EnvVars: []string{"FWPAK_LOG_FORMAT"},
			},
			&cli.PathFlag{
				Name:    "log-file",
				Usage:   "write logs to this file instead of stderr",
				EnvVars: []string{"FWPAK_LOG_FILE"},
			},
			&cli.BoolFlag{
				Name:    "no-backup",
				Usage:   "overwrite existing outputs without keeping a timestamped copy",
				EnvVars: []string{"FWPAK_NO_BACKUP"},
			},
			&cli.BoolFlag{
				Name:    "dump",
				Usage:   "write uncompressed metadata payloads for inspection",
				EnvVars: []string{"FWPAK_DUMP"},
			},
		},
		Before: setupLogger,
		After: func(c *cli.Context) error {
			if logger, ok := c.App.Metadata["logger"].(*zap.Logger); ok {
				_ = logger.Sync()
			}
			return nil
		},
	}

	app.Commands = []*cli.Command{
		&cmdPak,
		&cmdLocale,
	}
	return app
}

func setupLogger(c *cli.Context) error {
	logger, err := logging.New(logging.Config{
		Level:      c.String("log-level"),
		Format:     c.String("log-format"),
		OutputPath: c.Path("log-file"),
	})
	if err != nil {
		return err
	}
	if c.App.Metadata == nil {
		c.App.Metadata = make(map[string]interface{})
	}
	c.App.Metadata["logger"] = logger
	return nil
}

// options builds library options from the global flags.
func options(c *cli.Context) *fwpak.Options {
	opts := fwpak.DefaultOptions()
	if logger, ok := c.App.Metadata["logger"].(*zap.Logger); ok {
		opts.Logger = logger
	}
	opts.Backup = !c.Bool("no-backup")
	opts.DumpPayloads = c.Bool("dump")
	return opts
}

func inOutFlags(inUsage, outUsage string) []cli.Flag {
	return []cli.Flag{
		&cli.PathFlag{Name: "in", Usage: inUsage, Required: true},
		&cli.PathFlag{Name: "out", Usage: outUsage, Required: true},
	}
}

var cmdPak = cli.Command{
	Name:  "pak",
	Usage: "Work with .pak archives",
	Subcommands: []*cli.Command{
		{
			Name:   "unpack",
			Usage:  "Extract an archive into <out>/<archive name>",
			Flags:  inOutFlags("archive file", "folder to extract into"),
			Action: unpackArchive,
		},
		{
			Name:   "pack",
			Usage:  "Build <out>/<folder name>.pak from a folder",
			Flags:  inOutFlags("folder to pack", "folder to write the archive into"),
			Action: packArchive,
		},
		{
			Name:  "list",
			Usage: "List the files stored in an archive",
			Flags: []cli.Flag{
				&cli.PathFlag{Name: "in", Usage: "archive file", Required: true},
			},
			Action: listArchive,
		},
	},
}

var cmdLocale = cli.Command{
	Name:  "locale",
	Usage: "Work with binary localization files",
	Subcommands: []*cli.Command{
		{
			Name:   "unpack",
			Usage:  "Convert a .ptxt4 file to editable .ini text",
			Flags:  inOutFlags("localization file", "folder to write the text file into"),
			Action: unpackLocale,
		},
		{
			Name:   "pack",
			Usage:  "Convert an .ini text file back to .ptxt4@loc",
			Flags:  inOutFlags("text file", "folder to write the localization file into"),
			Action: packLocale,
		},
	},
}

func unpackArchive(c *cli.Context) error {
	out, err := fwpak.Unpack(c.Path("in"), c.Path("out"), options(c))
	if err != nil {
		return err
	}
	fmt.Fprintf(c.App.Writer, "Saved to %s\n", out)
	return nil
}

func packArchive(c *cli.Context) error {
	out, err := fwpak.Pack(c.Path("in"), c.Path("out"), options(c))
	if err != nil {
		return err
	}
	fmt.Fprintf(c.App.Writer, "Saved to %s\n", out)
	return nil
}

func listArchive(c *cli.Context) error {
	archive, err := fwpak.OpenArchive(c.Path("in"), options(c))
	if err != nil {
		return err
	}
	defer archive.Close()

	tw := tabwriter.NewWriter(c.App.Writer, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "PATH\tOFFSET\tSIZE\tMODIFIED")
	for _, e := range archive.Entries() {
		fmt.Fprintf(tw, "%s\t0x%08X\t%d\t%s\n",
			archive.EntryPath(e), e.Offset, e.Size, e.ModTime().UTC().Format("2006-01-02 15:04:05"))
	}
	return tw.Flush()
}

func unpackLocale(c *cli.Context) error {
	out, err := fwpak.UnpackLocale(c.Path("in"), c.Path("out"), options(c))
	if err != nil {
		return err
	}
	fmt.Fprintf(c.App.Writer, "Saved to %s\n", out)
	return nil
}

func packLocale(c *cli.Context) error {
	out, err := fwpak.PackLocale(c.Path("in"), c.Path("out"), options(c))
	if err != nil {
		return err
	}
	fmt.Fprintf(c.App.Writer, "Saved to %s\n", out)
	return nil
}
