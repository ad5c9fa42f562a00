package cmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/hoangphuccoder123/tutorbond/internal/dropzone"
	"github.com/hoangphuccoder123/tutorbond/internal/workflow"
)

var watchCmd = &cobra.Command{
	Use:   "watch <dir>",
	Short: "Analyze every DOCX CV dropped into a folder",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		watch(cmd, args[0])
	},
}

func init() {
	rootCmd.AddCommand(watchCmd)
}

func watch(cmd *cobra.Command, dir string) {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	a := bootstrap(ctx)
	defer a.Close()

	a.serveMetrics(ctx)

	watcher, err := dropzone.New(dropzone.Options{
		Settle: a.config.Watch.Settle,
		Logger: a.logger,
	})
	if err != nil {
		a.logger.Fatal("creating the drop folder watcher", zap.Error(err))
	}
	defer watcher.Close()

	drops, err := watcher.Watch(ctx, dir)
	if err != nil {
		a.logger.Fatal("watching the drop folder", zap.Error(err))
	}

	a.logger.Info("waiting for cv files", zap.String("dir", dir))
	for drop := range drops {
		if err := a.processDrop(ctx, drop, cmd.OutOrStdout()); err != nil {
			a.logger.Warn("processing dropped cv",
				zap.String("file", drop.Name),
				zap.String("message", userMessage(err)),
				zap.Error(err),
			)
		}
	}
	a.logger.Info("exiting", zap.String("reason", "watch stopped"))
}

// processDrop analyzes one dropped file from a clean state, prints the report
// and exports the document when enabled.
func (a *application) processDrop(ctx context.Context, drop dropzone.Drop, out io.Writer) error {
	a.controller.Reset()

	err := a.controller.SelectSource(ctx, workflow.SourceFile{
		Name:      drop.Name,
		MediaType: mediaTypeFor(drop.Name),
		Data:      drop.Data,
	})

	views := a.renderer.Render(a.controller.Snapshot())
	fmt.Fprintf(out, "== %s ==\n%s", drop.Name, views.Analysis)
	if err != nil {
		return err
	}

	if !a.config.Watch.Export {
		return nil
	}
	path, err := a.exportTo(ctx, a.config.OutputDir)
	if err != nil {
		return err
	}
	a.logger.Info("exported cv", zap.String("file", drop.Name), zap.String("path", path))
	return nil
}
