package cli

import (
	"strings"

	"github.com/spf13/cobra"

	"github.com/MikeSquared-Agency/compass/internal/dedup"
	"github.com/MikeSquared-Agency/compass/internal/extractor"
	"github.com/MikeSquared-Agency/compass/internal/model"
	"github.com/MikeSquared-Agency/compass/internal/scoring"
)

func init() {
	extract := &cobra.Command{
		Use:   "extract [text...]",
		Short: "Extract insight candidates from text",
		Long:  "Extract insight candidates. Text comes from the arguments, or from a {\"module\",\"text\"} JSON request when none are given.",
		RunE:  runExtract,
	}
	extract.Flags().StringP("module", "m", "general", "Module whose pattern applies")

	merge := &cobra.Command{
		Use:   "merge",
		Short: "Merge candidates into an existing insight set",
		Long:  "Reads {\"existing\": [...], \"candidates\": [...]} and prints the merged set.",
		Args:  cobra.NoArgs,
		RunE:  runMerge,
	}

	align := &cobra.Command{
		Use:   "align",
		Short: "Score passion/skill alignment",
		Long:  "Reads {\"passions\": [...], \"skills\": [...]} and prints the 0-100 alignment score. Skills may be names or {name, level} objects.",
		Args:  cobra.NoArgs,
		RunE:  runAlign,
	}

	similarity := &cobra.Command{
		Use:   "similarity",
		Short: "Score profile similarity",
		Long:  "Reads {\"a\": {\"interests\", \"skills\"}, \"b\": {...}} and prints the similarity score.",
		Args:  cobra.NoArgs,
		RunE:  runSimilarity,
	}

	RootCmd.AddCommand(extract, merge, align, similarity)
}

func runExtract(cmd *cobra.Command, args []string) error {
	req := struct {
		Module string `json:"module"`
		Text   string `json:"text"`
	}{}
	req.Module, _ = cmd.Flags().GetString("module")

	if len(args) > 0 {
		req.Text = strings.Join(args, " ")
	} else if err := readRequest(cmd, &req); err != nil {
		return err
	}

	ext, err := extractor.New(logger())
	if err != nil {
		return err
	}
	cands := ext.Extract(model.ParseModule(req.Module), req.Text)
	if cands == nil {
		cands = []model.Candidate{}
	}
	return printJSON(cmd, cands)
}

func runMerge(cmd *cobra.Command, _ []string) error {
	var req struct {
		Existing   []string `json:"existing"`
		Candidates []string `json:"candidates"`
	}
	if err := readRequest(cmd, &req); err != nil {
		return err
	}
	return printJSON(cmd, dedup.Merge(req.Existing, req.Candidates))
}

func runAlign(cmd *cobra.Command, _ []string) error {
	var req struct {
		Passions model.StringList `json:"passions"`
		Skills   model.SkillList  `json:"skills"`
	}
	if err := readRequest(cmd, &req); err != nil {
		return err
	}
	return printJSON(cmd, scoring.ComputeAlignment(req.Passions, req.Skills))
}

func runSimilarity(cmd *cobra.Command, _ []string) error {
	type side struct {
		Interests model.StringList `json:"interests"`
		Skills    model.StringList `json:"skills"`
	}
	var req struct {
		A side `json:"a"`
		B side `json:"b"`
	}
	if err := readRequest(cmd, &req); err != nil {
		return err
	}
	return printJSON(cmd, scoring.Similarity(req.A.Interests, req.A.Skills, req.B.Interests, req.B.Skills))
}
