// Command stride-docs generates markdown API documentation from a
// reflection JSON dump produced by a type-documentation tool.
package main

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/webstride/stride/docgen"
)

var log = zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.Kitchen}).
	With().Timestamp().Logger()

func main() {
	root := &cobra.Command{
		Use:          "stride-docs",
		Short:        "generate markdown docs from a reflection JSON dump",
		SilenceUsage: true,
	}
	root.AddCommand(generateCmd())
	if err := root.Execute(); err != nil {
		os.Exit(1)
	}
}

func generateCmd() *cobra.Command {
	var (
		input string
		out   string
		index bool
		watch bool
	)
	cmd := &cobra.Command{
		Use:   "generate",
		Short: "walk the reflection tree and write one markdown file per declaration",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := generate(input, out, index); err != nil {
				return err
			}
			if !watch {
				return nil
			}
			return watchInput(cmd, input, out, index)
		},
	}
	cmd.Flags().StringVarP(&input, "input", "i", "reflection.json", "reflection JSON dump to read")
	cmd.Flags().StringVarP(&out, "out", "o", "docs", "output directory")
	cmd.Flags().BoolVar(&index, "index", true, "write an index page linking all generated pages")
	cmd.Flags().BoolVarP(&watch, "watch", "w", false, "regenerate whenever the input file changes")
	return cmd
}

func generate(input, out string, index bool) error {
	data, err := os.ReadFile(input)
	if err != nil {
		return fmt.Errorf("reading reflection dump: %w", err)
	}

	var root docgen.Node
	if err := json.Unmarshal(data, &root); err != nil {
		return fmt.Errorf("decoding reflection dump: %w", err)
	}
	p := docgen.NewParser()
	doc, err := p.ParseTree(&root)
	if err != nil {
		return err
	}
	for kind, count := range p.Unknown() {
		log.Warn().Str("kind", kind).Int("count", count).Msg("skipped nodes of unhandled kind")
	}

	if err := os.MkdirAll(out, 0o755); err != nil {
		return err
	}
	for _, pg := range doc.Pages {
		path := filepath.Join(out, docgen.FileName(pg.Title)+".md")
		if err := os.WriteFile(path, []byte(pg.Markdown()), 0o644); err != nil {
			return fmt.Errorf("writing %s: %w", path, err)
		}
		log.Info().Str("page", pg.Title).Str("path", path).Msg("page written")
	}
	if index {
		path := filepath.Join(out, "index.md")
		if err := os.WriteFile(path, []byte(doc.Index()), 0o644); err != nil {
			return fmt.Errorf("writing index: %w", err)
		}
	}
	log.Info().Int("pages", len(doc.Pages)).Str("out", out).Msg("docs generated")
	return nil
}

// watchInput blocks regenerating the docs every time the input file
// changes, until the command context is done.
func watchInput(cmd *cobra.Command, input, out string, index bool) error {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer w.Close()

	// watch the directory, not the file: editors replace files on save and
	// a watch on the old inode goes quiet.
	dir := filepath.Dir(input)
	if err := w.Add(dir); err != nil {
		return err
	}
	log.Info().Str("input", input).Msg("watching for changes")

	target := filepath.Clean(input)
	for {
		select {
		case <-cmd.Context().Done():
			return nil
		case ev, ok := <-w.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(ev.Name) != target {
				continue
			}
			if !ev.Has(fsnotify.Write) && !ev.Has(fsnotify.Create) {
				continue
			}
			log.Info().Str("event", ev.Op.String()).Msg("input changed, regenerating")
			if err := generate(input, out, index); err != nil {
				log.Error().Err(err).Msg("regeneration failed")
			}
		case err, ok := <-w.Errors:
			if !ok {
				return nil
			}
			log.Error().Err(err).Msg("watch error")
		}
	}
}
