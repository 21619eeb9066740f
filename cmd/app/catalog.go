package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"evamed-backend/internal/questionbank"
)

var catalogCmd = &cobra.Command{
	Use:   "catalog",
	Short: "Inspect question catalogs",
}

var catalogValidateCmd = &cobra.Command{
	Use:   "validate [file...]",
	Short: "Validate catalog files, or the embedded catalogs when none are given",
	RunE: func(cmd *cobra.Command, args []string) error {
		out := cmd.OutOrStdout()
		if len(args) == 0 {
			banks, err := questionbank.LoadEmbedded()
			if err != nil {
				return err
			}
			for _, b := range banks {
				fmt.Fprintf(out, "ok  %-12s %3d questions (embedded)\n", b.Profile(), b.Total())
			}
			return nil
		}

		failed := 0
		for _, p := range args {
			b, err := questionbank.LoadFile(p)
			if err != nil {
				fmt.Fprintf(out, "FAIL %s\n%s\n", p, indent(err.Error()))
				failed++
				continue
			}
			fmt.Fprintf(out, "ok  %-12s %3d questions (%s)\n", b.Profile(), b.Total(), p)
		}
		if failed > 0 {
			return fmt.Errorf("%d of %d catalogs invalid", failed, len(args))
		}
		return nil
	},
}

var catalogShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print areas, dimensions and question counts of a catalog",
	RunE: func(cmd *cobra.Command, args []string) error {
		b, err := loadBank(cmd)
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		counts := b.CountByDimension()

		fmt.Fprintf(out, "%s (%s): %d questions\n\n", b.Title(), b.Profile(), b.Total())
		fmt.Fprintf(out, "%-28s  %6s  %s\n", "Area / Dimension", "Weight", "Questions")
		fmt.Fprintln(out, strings.Repeat("─", 50))
		for _, a := range b.Areas() {
			total := 0
			for _, n := range counts[a.Key] {
				total += n
			}
			fmt.Fprintf(out, "%-28s  %6.2f  %d\n", a.Name, a.Weight, total)
			for _, d := range a.Dimensions {
				fmt.Fprintf(out, "  %-26s  %6s  %d\n", d.Name, "", counts[a.Key][d.Key])
			}
		}
		return nil
	},
}

// loadBank resolves --profile and --file into one catalog.
func loadBank(cmd *cobra.Command) (*questionbank.Bank, error) {
	if file, _ := cmd.Flags().GetString("file"); file != "" {
		return questionbank.LoadFile(file)
	}
	profile, _ := cmd.Flags().GetString("profile")
	b, err := questionbank.Load(profile)
	if err != nil {
		return nil, fmt.Errorf("%w (known: %s)", err, strings.Join(questionbank.EmbeddedProfiles(), ", "))
	}
	return b, nil
}

func indent(s string) string {
	return "    " + strings.ReplaceAll(s, "\n", "\n    ")
}

func init() {
	for _, c := range []*cobra.Command{catalogShowCmd, scoreCmd} {
		c.Flags().String("profile", questionbank.ProfileSecurity, "Embedded catalog profile")
		c.Flags().String("file", "", "Catalog file (overrides --profile)")
	}

	catalogCmd.AddCommand(catalogValidateCmd)
	catalogCmd.AddCommand(catalogShowCmd)
}
