package main

import (
	"context"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/desertthunder/foodgram/internal/formatter"
	"github.com/desertthunder/foodgram/internal/shared"
	"github.com/desertthunder/foodgram/internal/ui"
	"github.com/urfave/cli/v3"
)

// CartList prints or saves the aggregated shopping list for a user's cart.
func (r *Runner) CartList(ctx context.Context, cmd *cli.Command) error {
	format, err := formatter.ParseFormat(cmd.String("format"))
	if err != nil {
		return err
	}

	svc, err := r.open(ctx)
	if err != nil {
		return err
	}
	actor, err := r.actor(ctx, svc, cmd.String("as"))
	if err != nil {
		return err
	}

	list, err := svc.ShoppingList.Build(ctx, actor)
	if err != nil {
		return fmt.Errorf("failed to build shopping list: %w", err)
	}

	if path := cmd.String("output"); path != "" {
		written, err := formatter.WriteShoppingList(list, format, path)
		if err != nil {
			return err
		}
		return r.writePlain("✓ Saved %d items to %s\n", len(list.Items), written)
	}

	body, err := formatter.RenderShoppingList(list, format)
	if err != nil {
		return err
	}
	if _, err := r.output.Write(body); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}

// CartTUI launches the interactive shopping list for a user.
func (r *Runner) CartTUI(ctx context.Context, cmd *cli.Command) error {
	// Redirect logs to file to avoid interfering with TUI rendering
	fileLogger, closer, err := shared.NewFileLogger(cmd.String("log-file"))
	if err != nil {
		return fmt.Errorf("failed to create file logger: %w", err)
	}
	defer closer.Close()
	if err := shared.ApplyLogLevel(fileLogger, r.config.Log.Level); err != nil {
		return err
	}
	r.logger = fileLogger

	svc, err := r.open(ctx)
	if err != nil {
		return err
	}
	actor, err := r.actor(ctx, svc, cmd.String("as"))
	if err != nil {
		return err
	}

	model := ui.NewModel(ctx, ui.NewServiceSource(svc, actor), cmd.String("export-dir"))
	p := tea.NewProgram(model, tea.WithAltScreen(), tea.WithContext(ctx))

	if _, err := p.Run(); err != nil {
		return fmt.Errorf("error running TUI: %w", err)
	}

	return nil
}
