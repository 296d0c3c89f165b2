package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/pingcard/pingcard/internal/card"
	"github.com/pingcard/pingcard/internal/config"
	"github.com/pingcard/pingcard/internal/telemetry"
	"github.com/spf13/cobra"
)

var (
	renderFile string
	renderJSON bool
)

var renderCmd = &cobra.Command{
	Use:   "render",
	Short: "Render the status card for a telemetry snapshot without publishing it.",
	Long:  "Reads one telemetry snapshot (a JSON object, optionally wrapped as {\"raw\": {...}}) from --file or stdin and prints the card.",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.LoadWithOptions(config.LoadOptions{})
		if err != nil {
			return err
		}

		in := cmd.InOrStdin()
		if renderFile != "" && renderFile != "-" {
			f, err := os.Open(renderFile)
			if err != nil {
				return withExitCode(exitCodeUsage, err)
			}
			defer f.Close()
			in = f
		}
		return renderSnapshot(in, cmd.OutOrStdout(), card.NewRenderer(cfg.Location), renderJSON)
	},
}

func init() {
	renderCmd.Flags().StringVarP(&renderFile, "file", "f", "", "read the snapshot from this file instead of stdin")
	renderCmd.Flags().BoolVar(&renderJSON, "json", false, "print the card as JSON")
}

type renderedCard struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Color       string `json:"color"`
}

func renderSnapshot(in io.Reader, out io.Writer, renderer *card.Renderer, asJSON bool) error {
	snap, err := telemetry.Decode(in)
	if err != nil {
		return withExitCode(exitCodeUsage, err)
	}
	c, ok := renderer.Render(snap)
	if !ok {
		return errors.New("no card rendered")
	}

	if asJSON {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(renderedCard{
			Title:       c.Title,
			Description: c.Description(),
			Color:       c.Color.Hex(),
		})
	}
	_, err = fmt.Fprintf(out, "%s\n\n%s\n\nColor: %s\n", c.Title, c.Description(), c.Color.Hex())
	return err
}
