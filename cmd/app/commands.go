package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strconv"
	"strings"

	"github.com/fatih/color"
	"github.com/urfave/cli/v3"

	"github.com/starford/blognotes/internal"
	"github.com/starford/blognotes/internal/attach"
	"github.com/starford/blognotes/internal/markdown"
	"github.com/starford/blognotes/internal/models"
	"github.com/starford/blognotes/internal/render"
	"github.com/starford/blognotes/internal/theme"
)

// withCore runs fn against the configured store. One-shot commands only log
// warnings, and only to stderr.
func withCore(cmd *cli.Command, fn func(*internal.Core) error) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	appCfg := cfg.App
	if appCfg.LogLevel < slog.LevelWarn {
		appCfg.LogLevel = slog.LevelWarn
	}
	logger, logCloser := internal.NewLogger(appCfg, os.Stderr)
	defer logCloser.Close()

	core, err := internal.OpenCore(cfg, logger)
	if err != nil {
		return err
	}
	defer core.Close()
	return fn(core)
}

func out(cmd *cli.Command) io.Writer {
	if w := cmd.Root().Writer; w != nil {
		return w
	}
	return os.Stdout
}

func listCommand() *cli.Command {
	return &cli.Command{
		Name:  "list",
		Usage: "Print stored notes, newest first",
		Action: func(ctx context.Context, cmd *cli.Command) error {
			return withCore(cmd, func(core *internal.Core) error {
				c, err := core.Notes.List(ctx)
				if err != nil {
					return err
				}
				printNotes(out(cmd), c)
				return nil
			})
		},
	}
}

func printNotes(w io.Writer, c models.Collection) {
	if len(c) == 0 {
		fmt.Fprintln(w, "No notes yet.")
		return
	}
	id := color.New(color.FgCyan)
	title := color.New(color.Bold)
	faint := color.New(color.Faint)
	for _, n := range c {
		id.Fprintf(w, "%d", n.ID)
		fmt.Fprint(w, "  ")
		title.Fprint(w, n.Title)
		fmt.Fprint(w, "  ")
		faint.Fprintln(w, n.Timestamp)
		for _, f := range n.Files {
			fmt.Fprintf(w, "    %s (%s)\n", f.Name, render.KiB(f.Size))
		}
	}
}

func addCommand() *cli.Command {
	return &cli.Command{
		Name:  "add",
		Usage: "Save a new note",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "title", Aliases: []string{"t"}, Usage: "Note title", Required: true},
			&cli.StringFlag{Name: "content", Usage: "HTML content"},
			&cli.StringFlag{Name: "markdown-file", Usage: "Markdown file converted to HTML content"},
			&cli.StringSliceFlag{Name: "attach", Usage: "Attachment descriptor name:size:type (repeatable)"},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			content, err := noteContent(cmd.String("content"), cmd.String("markdown-file"))
			if err != nil {
				return err
			}
			tracker := attach.NewTracker()
			for _, desc := range cmd.StringSlice("attach") {
				ref, err := parseAttachment(desc)
				if err != nil {
					return err
				}
				tracker.Add(ref)
			}
			return withCore(cmd, func(core *internal.Core) error {
				n, err := core.Notes.Save(ctx, cmd.String("title"), content, tracker)
				if err != nil {
					return err
				}
				color.New(color.FgGreen).Fprintf(out(cmd), "saved %d\n", n.ID)
				return nil
			})
		},
	}
}

func noteContent(content, markdownFile string) (string, error) {
	if markdownFile == "" {
		return content, nil
	}
	if content != "" {
		return "", fmt.Errorf("--content and --markdown-file are mutually exclusive")
	}
	src, err := os.ReadFile(markdownFile)
	if err != nil {
		return "", fmt.Errorf("read markdown file: %w", err)
	}
	return markdown.ToHTML(string(src))
}

// parseAttachment parses a name:size:type descriptor. The type may itself
// contain colons; the name may not.
func parseAttachment(desc string) (models.FileRef, error) {
	parts := strings.SplitN(desc, ":", 3)
	if len(parts) != 3 || parts[0] == "" {
		return models.FileRef{}, fmt.Errorf("attachment %q: want name:size:type", desc)
	}
	size, err := strconv.ParseInt(parts[1], 10, 64)
	if err != nil || size < 0 {
		return models.FileRef{}, fmt.Errorf("attachment %q: invalid size", desc)
	}
	return models.FileRef{Name: parts[0], Size: size, Type: parts[2]}, nil
}

func deleteCommand() *cli.Command {
	return &cli.Command{
		Name:      "delete",
		Usage:     "Delete a note by id",
		ArgsUsage: "ID",
		Action: func(ctx context.Context, cmd *cli.Command) error {
			id, err := strconv.ParseInt(cmd.Args().First(), 10, 64)
			if err != nil {
				return fmt.Errorf("invalid note id %q", cmd.Args().First())
			}
			return withCore(cmd, func(core *internal.Core) error {
				if err := core.Notes.Delete(ctx, id); err != nil {
					return fmt.Errorf("delete %d: %w", id, err)
				}
				color.New(color.FgGreen).Fprintf(out(cmd), "deleted %d\n", id)
				return nil
			})
		},
	}
}

func exportCommand() *cli.Command {
	return &cli.Command{
		Name:  "export",
		Usage: "Write the stored notes as JSON",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "out", Aliases: []string{"o"}, Usage: "Output file (default stdout)"},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			return withCore(cmd, func(core *internal.Core) error {
				raw, err := core.Notes.Export(ctx)
				if err != nil {
					return err
				}
				return writeExport(out(cmd), cmd.String("out"), raw)
			})
		},
	}
}

// writeExport writes raw unchanged to path, or to w when path is empty.
func writeExport(w io.Writer, path, raw string) error {
	if path != "" {
		return os.WriteFile(path, []byte(raw), 0o644)
	}
	_, err := io.WriteString(w, raw)
	return err
}

func importCommand() *cli.Command {
	return &cli.Command{
		Name:      "import",
		Usage:     "Replace the stored notes with an exported file (- for stdin)",
		ArgsUsage: "FILE",
		Action: func(ctx context.Context, cmd *cli.Command) error {
			path := cmd.Args().First()
			if path == "" {
				return fmt.Errorf("import: FILE is required")
			}
			var data []byte
			var err error
			if path == "-" {
				data, err = io.ReadAll(os.Stdin)
			} else {
				data, err = os.ReadFile(path)
			}
			if err != nil {
				return fmt.Errorf("import: %w", err)
			}
			return withCore(cmd, func(core *internal.Core) error {
				if err := core.Notes.Import(ctx, string(data)); err != nil {
					return err
				}
				color.New(color.FgGreen).Fprintln(out(cmd), "imported")
				return nil
			})
		},
	}
}

func themeCommand() *cli.Command {
	return &cli.Command{
		Name:      "theme",
		Usage:     "Show or change the page theme",
		ArgsUsage: "[dark|light|toggle]",
		Action: func(_ context.Context, cmd *cli.Command) error {
			arg := cmd.Args().First()
			return withCore(cmd, func(core *internal.Core) error {
				var (
					current string
					err     error
				)
				switch arg {
				case "":
					current, err = core.Theme.Get()
				case "toggle":
					current, err = core.Theme.Toggle()
				case theme.Dark, theme.Light:
					current, err = arg, core.Theme.Set(arg)
				default:
					return fmt.Errorf("unknown theme %q", arg)
				}
				if err != nil {
					return err
				}
				fmt.Fprintln(out(cmd), current)
				return nil
			})
		},
	}
}
