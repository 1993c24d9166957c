package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/dcmcodec/pixeldecode/pkg/logging"
	"github.com/dcmcodec/pixeldecode/pkg/pixdecode"
	"github.com/spf13/cobra"
)

func NewRoot(ctx context.Context, gitsha string) *cobra.Command {
	root := &cobra.Command{
		Use:   "pixdecodectl",
		Short: "decode DICOM native and JPEG-family pixel data from the command line",
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			logLevel, _ := cmd.Flags().GetString("log-level")
			var level slog.Level
			if err := level.UnmarshalText([]byte(strings.ToUpper(logLevel))); err != nil {
				level = slog.LevelInfo
			}
			logger := logging.Logger(os.Stdout, logging.Options{Level: level, AppName: "pixdecodectl"})
			slog.SetDefault(logger)
			pixdecode.SetDefaultLogger(logger)
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}
	root.AddCommand(
		NewVersionCmd(gitsha),
		NewDecodeCmd(ctx),
	)
	pf := root.PersistentFlags()
	pf.String("log-level", "INFO", "log level (DEBUG, INFO, WARN, ERROR)")
	return root
}

func NewVersionCmd(gitsha string) *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "print the build's git sha",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Println(gitsha)
		},
	}
}
