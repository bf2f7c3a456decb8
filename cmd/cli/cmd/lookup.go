package cmd

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"tariff-duty/core/catalog"
	"tariff-duty/core/tariff"
	"tariff-duty/internal/errors"
)

var (
	searchLimit   int
	categoryLimit int
)

var searchCmd = &cobra.Command{
	Use:   "search <query...>",
	Short: "Search the catalog by code or description",
	Long: `Searches the catalog. A query of exactly ten digits (spaces allowed) is tried
as an exact code first; anything else is ranked by relevance against names,
keywords, categories and full entry text.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runSearch,
}

var codeCmd = &cobra.Command{
	Use:   "code <code>",
	Short: "Show one tariff code and its duty rule",
	Args:  cobra.ExactArgs(1),
	RunE:  runCode,
}

var categoryCmd = &cobra.Command{
	Use:   "category <name>",
	Short: "List codes whose category contains name",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runCategory,
}

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show catalog statistics",
	Args:  cobra.NoArgs,
	RunE:  runStats,
}

var extractCmd = &cobra.Command{
	Use:   "extract <file|->",
	Short: "Find tariff codes in a text document",
	Long: `Scans text for tariff codes written as "XXXX XX XX XX" or ten bare digits.
With a catalog configured, each code is resolved against it.`,
	Args: cobra.ExactArgs(1),
	RunE: runExtract,
}

func init() {
	searchCmd.Flags().IntVarP(&searchLimit, "limit", "n", 0, "maximum number of results (default search.limit)")
	categoryCmd.Flags().IntVarP(&categoryLimit, "limit", "n", 0, "maximum number of results (default search.category_limit)")

	rootCmd.AddCommand(searchCmd)
	rootCmd.AddCommand(codeCmd)
	rootCmd.AddCommand(categoryCmd)
	rootCmd.AddCommand(statsCmd)
	rootCmd.AddCommand(extractCmd)
}

func runSearch(cmd *cobra.Command, args []string) error {
	if err := checkFormat(); err != nil {
		return err
	}
	a, err := loadApp(true)
	if err != nil {
		return err
	}

	limit := searchLimit
	if limit <= 0 {
		limit = a.Config.Search.Limit
	}
	query := strings.Join(args, " ")
	res := catalog.Lookup(a.Store, query, limit)

	if jsonOutput() {
		return printJSON(cmd, res)
	}

	out := cmd.OutOrStdout()
	if len(res.Entries) == 0 {
		fmt.Fprintln(out, "No results found.")
		return nil
	}
	fmt.Fprintf(out, "Results (%s):\n\n", res.Mode)
	for i, e := range res.Entries {
		if res.Mode == catalog.ModeDescription {
			fmt.Fprintf(out, "  [%d] %s  %s (score %d)\n", i+1, e.Display(), e.Name, catalog.Score(e, query))
		} else {
			fmt.Fprintf(out, "  [%d] %s  %s\n", i+1, e.Display(), e.Name)
		}
		fmt.Fprintf(out, "      Category: %s\n", e.Category)
	}
	return nil
}

func runCode(cmd *cobra.Command, args []string) error {
	if err := checkFormat(); err != nil {
		return err
	}
	if !tariff.IsFullCode(args[0]) {
		return errors.Validation("code", "code must have exactly 10 digits")
	}
	a, err := loadApp(true)
	if err != nil {
		return err
	}

	e, ok := a.Store.FindByCode(args[0])
	if !ok {
		return errors.NotFound("tariff code", tariff.Format(args[0]))
	}
	rule, hasRule := a.Schedule.ResolveRate(e.Code)

	if jsonOutput() {
		v := map[string]interface{}{
			"entry":     e,
			"hierarchy": e.Hierarchy(),
		}
		if hasRule {
			v["rule"] = rule
		}
		return printJSON(cmd, v)
	}

	out := cmd.OutOrStdout()
	h := e.Hierarchy()
	fmt.Fprintf(out, "%s  %s\n", e.Display(), e.Name)
	fmt.Fprintf(out, "  Section:   %s\n", e.Section)
	fmt.Fprintf(out, "  Group:     %s\n", h.Group)
	fmt.Fprintf(out, "  Position:  %s\n", h.Position)
	fmt.Fprintf(out, "  Category:  %s\n", e.Category)
	if len(e.Keywords) > 0 {
		fmt.Fprintf(out, "  Keywords:  %s\n", strings.Join(e.Keywords, ", "))
	}
	if hasRule {
		fmt.Fprintf(out, "  Duty rule: %s\n", describeRule(rule))
	} else {
		fmt.Fprintf(out, "  Duty rule: none (duty 0%%, VAT %s%%)\n", a.Schedule.Options().DefaultVATRate)
	}
	return nil
}

func runCategory(cmd *cobra.Command, args []string) error {
	if err := checkFormat(); err != nil {
		return err
	}
	a, err := loadApp(true)
	if err != nil {
		return err
	}

	limit := categoryLimit
	if limit <= 0 {
		limit = a.Config.Search.CategoryLimit
	}
	entries := a.Store.FindByCategory(strings.Join(args, " "), limit)

	if jsonOutput() {
		return printJSON(cmd, entries)
	}
	out := cmd.OutOrStdout()
	if len(entries) == 0 {
		fmt.Fprintln(out, "No results found.")
		return nil
	}
	for _, e := range entries {
		fmt.Fprintf(out, "  %s  %-40s %s\n", e.Display(), truncate(e.Name, 40), e.Category)
	}
	return nil
}

func runStats(cmd *cobra.Command, args []string) error {
	if err := checkFormat(); err != nil {
		return err
	}
	a, err := loadApp(true)
	if err != nil {
		return err
	}

	stats := a.Store.Stats()
	if jsonOutput() {
		return printJSON(cmd, stats)
	}
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Codes:      %d\n", stats.TotalCodes)
	fmt.Fprintf(out, "Categories: %d\n", stats.Categories)
	fmt.Fprintf(out, "Sections:   %d\n", stats.Sections)
	return nil
}

func runExtract(cmd *cobra.Command, args []string) error {
	if err := checkFormat(); err != nil {
		return err
	}

	var r io.Reader = cmd.InOrStdin()
	if args[0] != "-" {
		f, err := os.Open(args[0])
		if err != nil {
			return fmt.Errorf("failed to open %s: %w", args[0], err)
		}
		defer f.Close()
		r = f
	}
	text, err := io.ReadAll(r)
	if err != nil {
		return fmt.Errorf("failed to read input: %w", err)
	}
	codes := tariff.Extract(string(text), tariff.DefaultExtractLimit)

	a, err := loadApp(false)
	if err != nil {
		return err
	}

	type found struct {
		Code  string         `json:"code"`
		Entry *catalog.Entry `json:"entry,omitempty"`
	}
	results := make([]found, 0, len(codes))
	for _, c := range codes {
		f := found{Code: c}
		if e, ok := a.Store.FindByCode(c); ok {
			f.Entry = &e
		}
		results = append(results, f)
	}

	if jsonOutput() {
		return printJSON(cmd, results)
	}
	out := cmd.OutOrStdout()
	if len(results) == 0 {
		fmt.Fprintln(out, "No tariff codes found.")
		return nil
	}
	for _, f := range results {
		if f.Entry != nil {
			fmt.Fprintf(out, "  %s  %s\n", f.Code, f.Entry.Name)
		} else {
			fmt.Fprintf(out, "  %s\n", f.Code)
		}
	}
	return nil
}

func truncate(s string, maxLen int) string {
	r := []rune(s)
	if len(r) <= maxLen {
		return s
	}
	return string(r[:maxLen-3]) + "..."
}
