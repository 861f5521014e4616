package main

import (
	"strings"

	"github.com/spf13/cobra"

	"github.com/nikhilbhutani/examiner/internal/examiner"
)

type parsedReply struct {
	Feedback           string                       `json:"feedback"`
	Question           string                       `json:"question"`
	HasSeparator       bool                         `json:"has_separator"`
	PronunciationFlags []examiner.PronunciationFlag `json:"pronunciation_flags,omitempty"`
}

func newParseReplyCommand() *cobra.Command {
	var fromFile string

	cmd := &cobra.Command{
		Use:   "parse-reply [text]",
		Short: "Split an examiner reply into feedback and question",
		Long: `Split an examiner reply the way the server does and print both halves.

Pronunciation tags found anywhere in the text are listed as well.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var text string
			switch {
			case fromFile != "":
				data, err := readInput(fromFile)
				if err != nil {
					return err
				}
				text = strings.TrimRight(string(data), "\n")
			case len(args) == 1:
				text = args[0]
			default:
				return cmd.Usage()
			}

			reply := examiner.ParseReply(text)
			return writeJSON(cmd.OutOrStdout(), parsedReply{
				Feedback:           reply.Feedback,
				Question:           reply.Question,
				HasSeparator:       reply.HasSeparator,
				PronunciationFlags: examiner.ParsePronunciationFlags(text),
			})
		},
	}

	cmd.Flags().StringVar(&fromFile, "file", "", "Read the reply from a file (- for stdin)")

	return cmd
}
