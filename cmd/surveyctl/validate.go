package main

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"vitasurvey/internal/model"
	"vitasurvey/internal/survey"
)

func ValidateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "validate <tree.yaml>",
		Short: "Check a category tree file and the filter rules against it",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			tree, err := readTree(args[0])
			if err != nil {
				return err
			}
			report(cmd.OutOrStdout(), tree, cfg.Rules)
			return nil
		},
	}
}

func readTree(path string) (model.Tree, error) {
	f, err := os.Open(path)
	if err != nil {
		return model.Tree{}, err
	}
	defer f.Close()
	tree, err := model.DecodeTreeYAML(f)
	if err != nil {
		return model.Tree{}, fmt.Errorf("%s: %w", path, err)
	}
	return tree, nil
}

// report prints a summary of tree and any rule the tree disables
func report(w io.Writer, tree model.Tree, rules survey.Rules) {
	questions := 0
	for _, c := range tree.Categories {
		for _, sub := range c.SubCategories {
			questions += len(sub.Questions)
		}
	}
	fmt.Fprintf(w, "%d categories, %d subcategories, %d questions\n",
		len(tree.Categories), tree.SubCategoryCount(), questions)

	for _, problem := range (survey.Filter{Rules: rules}).Diagnose(tree) {
		fmt.Fprintln(w, "warning:", problem)
	}
}
