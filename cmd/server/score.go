package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/SAP-F-2025/interview-service/internal/interview"
	"github.com/spf13/cobra"
)

// scoreInput is a finished session read from a file. Questions default to
// the built-in bank for the type and mode; mcq answers are original option
// indexes.
type scoreInput struct {
	Type      interview.Type       `json:"type"`
	Mode      interview.Mode       `json:"mode"`
	Questions []interview.Question `json:"questions"`
	Answers   interview.Answers    `json:"answers"`
}

type scoreOutput struct {
	ScorePercent *int                   `json:"scorePercent"`
	Report       interview.Report       `json:"report"`
	Plan         interview.PracticePlan `json:"plan"`
}

var scoreCmd = &cobra.Command{
	Use:   "score [file]",
	Short: "Score a finished session offline and print the report",
	Long:  "Reads {type, mode, questions, answers} as JSON from a file or stdin and prints the score, report and practice plan.",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		var r io.Reader = cmd.InOrStdin()
		if len(args) == 1 && args[0] != "-" {
			f, err := os.Open(args[0])
			if err != nil {
				return fmt.Errorf("open input: %w", err)
			}
			defer f.Close()
			r = f
		}

		var in scoreInput
		if err := json.NewDecoder(r).Decode(&in); err != nil {
			return fmt.Errorf("decode input: %w", err)
		}

		out, err := scoreSession(in, time.Now())
		if err != nil {
			return err
		}

		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		return enc.Encode(out)
	},
}

func scoreSession(in scoreInput, now time.Time) (*scoreOutput, error) {
	t := interview.ParseType(string(in.Type))
	if !in.Mode.Valid() {
		return nil, fmt.Errorf("%w: %q", interview.ErrInvalidMode, in.Mode)
	}

	questions := in.Questions
	if len(questions) == 0 {
		questions = interview.Normalize(interview.DefaultBank.Questions(t, in.Mode), interview.SessionLength)
	}
	if in.Answers == nil {
		in.Answers = interview.Answers{}
	}

	var percent *int
	if in.Mode == interview.ModeMCQ {
		p := interview.MCQPercent(questions, in.Answers, nil)
		percent = &p
	}

	report := interview.BuildReport(interview.ReportInput{
		Type:       t,
		Mode:       in.Mode,
		Questions:  questions,
		Answers:    in.Answers,
		MCQPercent: percent,
	})
	report.Timestamp = now.UnixMilli()

	return &scoreOutput{
		ScorePercent: percent,
		Report:       report,
		Plan:         interview.BuildPracticePlan(report, now),
	}, nil
}
