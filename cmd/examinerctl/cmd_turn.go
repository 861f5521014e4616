package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/nikhilbhutani/examiner/internal/config"
	"github.com/nikhilbhutani/examiner/internal/examiner"
	"github.com/nikhilbhutani/examiner/internal/llm"
	"github.com/nikhilbhutani/examiner/internal/multimodal/stt"
)

type turnOptions struct {
	file        string
	history     string
	historyFile string
}

func newTurnCommand() *cobra.Command {
	opts := &turnOptions{}

	cmd := &cobra.Command{
		Use:   "turn",
		Short: "Run one examiner turn on a recording",
		Long: `Run one examiner turn on an audio file using the live providers.

The response body the API would return is printed to stdout. The outcome and
fallback flags are printed to stderr.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTurn(cmd, opts)
		},
	}

	cmd.Flags().StringVarP(&opts.file, "file", "f", "", "Audio recording to submit (- for stdin)")
	cmd.Flags().StringVar(&opts.history, "history", "", "Conversation so far")
	cmd.Flags().StringVar(&opts.historyFile, "history-file", "", "Read the conversation so far from a file")
	_ = cmd.MarkFlagRequired("file")
	cmd.MarkFlagsMutuallyExclusive("history", "history-file")

	return cmd
}

func runTurn(cmd *cobra.Command, opts *turnOptions) error {
	audio, err := readInput(opts.file)
	if err != nil {
		return fmt.Errorf("reading audio: %w", err)
	}

	history := opts.history
	if opts.historyFile != "" {
		data, err := readInput(opts.historyFile)
		if err != nil {
			return fmt.Errorf("reading history: %w", err)
		}
		history = string(data)
	}

	proc, err := newProcessorFromEnv(cmd)
	if err != nil {
		return err
	}

	res := proc.ProcessTurn(cmd.Context(), audio, history)

	fmt.Fprintf(cmd.ErrOrStderr(), "outcome=%s repair_fallback=%t examiner_fallback=%t pronunciation_flags=%d\n",
		res.Outcome, res.RepairFallback, res.ExaminerFallback, len(res.PronunciationFlags))
	return writeJSON(cmd.OutOrStdout(), res.Wire())
}

func newProcessorFromEnv(cmd *cobra.Command) (*examiner.Processor, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	for _, name := range cfg.MissingCredentials() {
		fmt.Fprintf(cmd.ErrOrStderr(), "warning: missing credential %s\n", name)
	}

	transcriber, err := stt.NewProvider(cfg.STT)
	if err != nil {
		fmt.Fprintf(cmd.ErrOrStderr(), "warning: %v\n", err)
		transcriber = nil
	}

	prompts := examiner.DefaultPrompts()
	if cfg.Examiner.PromptsFile != "" {
		if prompts, err = examiner.LoadPrompts(cfg.Examiner.PromptsFile); err != nil {
			return nil, err
		}
	}

	return examiner.NewProcessor(transcriber, llm.NewGateway(cmd.Context(), cfg.LLM),
		examiner.WithPrompts(prompts),
		examiner.WithMinAudioBytes(cfg.Examiner.MinAudioBytes),
		examiner.WithLanguage(cfg.Examiner.Language),
	), nil
}
