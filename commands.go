package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strconv"

	"github.com/aouyang1/beforeafter/api/client"
	"github.com/aouyang1/beforeafter/api/models"
	"github.com/aouyang1/beforeafter/api/web/templates"
	"github.com/aouyang1/beforeafter/assets"
	"github.com/aouyang1/beforeafter/content"
	"github.com/spf13/cobra"
)

func newRenderCmd(load loader) *cobra.Command {
	var (
		fragment bool
		title    string
	)
	cmd := &cobra.Command{
		Use:   "render",
		Short: "Render the gallery as static HTML to stdout",
		Long: `Render decodes the content file and writes the gallery as HTML.
A carousel is rendered on its first slide without live controls.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := load(cmd)
			if err != nil {
				return err
			}
			doc, err := content.DecodeFile(c.Content.Path, content.Strict(c.Content.Strict))
			if err != nil {
				return err
			}
			if c.Assets.Probe {
				assets.NewProber(c.Assets.Dir).Fill(doc)
			}
			return render(cmd.Context(), cmd.OutOrStdout(), doc, title, fragment)
		},
	}
	cmd.Flags().BoolVar(&fragment, "fragment", false, "write only the gallery section, not a full page")
	cmd.Flags().StringVar(&title, "title", "Gallery", "page title")
	cmd.Flags().String("assets", "public", "asset directory used for dimension probing")
	cmd.Flags().Bool("probe", false, "read image dimensions from the asset directory")
	return cmd
}

func render(ctx context.Context, w io.Writer, doc *content.Content, title string, fragment bool) error {
	gallery := templates.Gallery(templates.NewGalleryView(doc.Gallery(), 0, ""))
	if fragment {
		return gallery.Render(ctx, w)
	}
	return templates.Page(title, gallery).Render(ctx, w)
}

func newValidateCmd(load loader) *cobra.Command {
	return &cobra.Command{
		Use:   "validate",
		Short: "Report every content value that falls back to a default",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := load(cmd)
			if err != nil {
				return err
			}
			doc, err := content.DecodeFile(c.Content.Path)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if g := doc.Gallery(); g != nil {
				fmt.Fprintf(out, "gallery: visible, %d items, %s\n", len(g.Items), g.DisplayStyle)
			} else {
				fmt.Fprintln(out, "gallery: not visible")
			}
			for _, f := range doc.Fallbacks {
				fmt.Fprintf(out, "fallback %s\n", f)
			}
			if c.Content.Strict && len(doc.Fallbacks) > 0 {
				return fmt.Errorf("%w: %d fallbacks", content.ErrStrict, len(doc.Fallbacks))
			}
			return nil
		},
	}
}

func newSlideCmd() *cobra.Command {
	var (
		server  string
		session string
	)
	cmd := &cobra.Command{
		Use:   "slide",
		Short: "Drive a carousel session on a running server",
	}
	cmd.PersistentFlags().StringVar(&server, "server", "http://localhost:8080", "gallery server base URL")
	cmd.PersistentFlags().StringVar(&session, "session", "", "carousel session id")

	stateCmd := func(use, short string, nargs int, call func(*client.SlideClient, []string) (models.SlideStateResponse, error)) *cobra.Command {
		return &cobra.Command{
			Use:   use,
			Short: short,
			Args:  cobra.ExactArgs(nargs),
			RunE: func(cmd *cobra.Command, args []string) error {
				state, err := call(client.NewSlideClient(server), args)
				if err != nil {
					return err
				}
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(state)
			},
		}
	}
	requireSession := func() error {
		if session == "" {
			return fmt.Errorf("--session is required")
		}
		return nil
	}

	cmd.AddCommand(stateCmd("mount", "Mount a new carousel session", 0,
		func(sc *client.SlideClient, _ []string) (models.SlideStateResponse, error) {
			return sc.Mount()
		}))
	cmd.AddCommand(stateCmd("state", "Show the current slide", 0,
		func(sc *client.SlideClient, _ []string) (models.SlideStateResponse, error) {
			if err := requireSession(); err != nil {
				return models.SlideStateResponse{}, err
			}
			return sc.State(session)
		}))
	cmd.AddCommand(stateCmd("next", "Advance to the next slide", 0,
		func(sc *client.SlideClient, _ []string) (models.SlideStateResponse, error) {
			if err := requireSession(); err != nil {
				return models.SlideStateResponse{}, err
			}
			return sc.Next(session)
		}))
	cmd.AddCommand(stateCmd("prev", "Go back to the previous slide", 0,
		func(sc *client.SlideClient, _ []string) (models.SlideStateResponse, error) {
			if err := requireSession(); err != nil {
				return models.SlideStateResponse{}, err
			}
			return sc.Prev(session)
		}))
	cmd.AddCommand(stateCmd("goto <index>", "Jump to a slide", 1,
		func(sc *client.SlideClient, args []string) (models.SlideStateResponse, error) {
			if err := requireSession(); err != nil {
				return models.SlideStateResponse{}, err
			}
			index, err := strconv.Atoi(args[0])
			if err != nil {
				return models.SlideStateResponse{}, fmt.Errorf("invalid slide index %q", args[0])
			}
			return sc.GoTo(session, index)
		}))
	cmd.AddCommand(&cobra.Command{
		Use:   "unmount",
		Short: "Stop a carousel session",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := requireSession(); err != nil {
				return err
			}
			return client.NewSlideClient(server).Unmount(session)
		},
	})
	return cmd
}
