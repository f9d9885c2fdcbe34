package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"ytprep/internal/config"
	"ytprep/internal/pipeline"
	"ytprep/pkg/log"
)

var (
	flagForce    bool
	flagPrompt   string
	flagNoLLM    bool
	flagCacheDir string
)

func newRootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:   "ytprep <url>",
		Short: "Prepare a YouTube video's subtitles and metadata as LLM input",
		Long: "ytprep fetches a YouTube video's metadata and English subtitles, " +
			"flattens the captions into a deduplicated transcript, and assembles " +
			"a consolidated final.txt for title rewriting. Artifacts are cached " +
			"per video id.",
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE:          run,
	}

	root.Flags().BoolVar(&flagForce, "force", false, "force re-download and overwrite cached data")
	root.Flags().StringVar(&flagPrompt, "prompt", "", "override the default prompt text")
	root.Flags().BoolVar(&flagNoLLM, "no-llm", false, "skip the LLM title-rewrite call")
	root.Flags().StringVar(&flagCacheDir, "cache-dir", "", "cache root directory (default: $YTPREP_CACHE_DIR or ./cache)")

	return root
}

func run(cmd *cobra.Command, args []string) error {
	cfg, err := config.NewFromEnv(config.WithCacheDir(flagCacheDir))
	if err != nil {
		return err
	}

	log.InitLogger(log.ParseLevel(cfg.System.LogLevel))

	p, err := pipeline.New(cfg)
	if err != nil {
		return err
	}

	result, err := p.Process(cmd.Context(), args[0], pipeline.Options{
		Prompt:         flagPrompt,
		Force:          flagForce,
		SkipCompletion: flagNoLLM,
	})
	if err != nil {
		return err
	}

	fmt.Println(result.FinalText)
	return nil
}

func main() {
	// .env is optional; real environment variables win
	_ = godotenv.Load()

	if err := newRootCommand().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(pipeline.ExitCode(err))
	}
}
