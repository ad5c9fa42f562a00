package cmd

import (
	"context"
	"errors"
	"fmt"
	"log"
	"mime"
	"os"
	"os/signal"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/hoangphuccoder123/tutorbond/internal/extract"
	"github.com/hoangphuccoder123/tutorbond/internal/logger"
	"github.com/hoangphuccoder123/tutorbond/internal/workflow"
)

var analyzeCmd = &cobra.Command{
	Use:   "analyze <file.docx>",
	Short: "Extract and analyze a DOCX CV, then edit it interactively",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		interactive(cmd, args[0], func(ctx context.Context, c *workflow.Controller, file workflow.SourceFile) error {
			return c.SelectSource(ctx, file)
		})
	},
}

func init() {
	rootCmd.AddCommand(analyzeCmd)

	analyzeCmd.Flags().StringP("output-dir", "o", "", "directory for exported DOCX files")
	viper.BindPFlag("output-dir", analyzeCmd.Flags().Lookup("output-dir"))
}

type loadFunc func(ctx context.Context, c *workflow.Controller, file workflow.SourceFile) error

// interactive loads the file given on the command line and starts the editing session.
func interactive(cmd *cobra.Command, path string, load loadFunc) {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	a := bootstrap(ctx)
	defer a.Close()

	a.serveMetrics(ctx)

	file, err := readSource(path)
	if err != nil {
		a.logger.Fatal("reading the cv", zap.Error(err))
	}

	a.logger.Info("analyzing cv", zap.String("file", file.Name))
	if err := load(ctx, a.controller, file); err != nil {
		fmt.Fprintf(cmd.OutOrStdout(), "! %s\n", userMessage(err))
		if a.controller.Snapshot().Document == nil {
			a.logger.Error("exiting", zap.String("reason", "no cv could be extracted"), zap.Error(err))
			return
		}
	}

	if err := newSession(a, cmd.OutOrStdout()).run(ctx); err != nil {
		a.logger.Error("session ended", zap.Error(err))
	}
}

// bootstrap builds the logger, config and application or exits.
func bootstrap(ctx context.Context) *application {
	logger, err := logger.New(viper.GetBool("json"), viper.GetBool("debug"))
	if err != nil {
		log.Fatalf("creating a logger: %s", err)
	}

	config, err := getConfig()
	if err != nil {
		logger.Fatal("getting a config", zap.Error(err))
	}

	logger.Info("starting agentcv", zap.String("version", version), zap.String("locale", config.Locale))
	return newApplication(ctx, config, logger)
}

func readSource(path string) (workflow.SourceFile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return workflow.SourceFile{}, fmt.Errorf("read %s: %w", path, err)
	}
	name := filepath.Base(path)
	return workflow.SourceFile{Name: name, MediaType: mediaTypeFor(name), Data: data}, nil
}

// mediaTypeFor guesses the media type from the extension. Go's builtin table
// lacks DOCX and HEIC.
func mediaTypeFor(name string) string {
	switch ext := strings.ToLower(filepath.Ext(name)); ext {
	case ".docx":
		return extract.DocxMediaType
	case ".heic":
		return "image/heic"
	case ".heif":
		return "image/heif"
	default:
		mediaType, _, _ := mime.ParseMediaType(mime.TypeByExtension(ext))
		return mediaType
	}
}

func userMessage(err error) string {
	var wfErr *workflow.Error
	if errors.As(err, &wfErr) {
		return wfErr.Message
	}
	return err.Error()
}
