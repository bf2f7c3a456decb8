package cmd

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"tariff-duty/core/duty"
	"tariff-duty/core/tariff"
	"tariff-duty/internal/app"
	"tariff-duty/internal/errors"
)

var calcQuantity int

var calcCmd = &cobra.Command{
	Use:   "calc <code> <customs-value>",
	Short: "Compute duty, VAT and customs fee for one line",
	Long: `Computes customs payments for a ten-digit tariff code and a customs value.

Duty is ad valorem unless the rule sets a per-unit amount, which is multiplied
by --quantity. VAT is charged on customs value plus duty.

Examples:
  tariff-duty calc 6302100000 100000
  tariff-duty calc "8517 12 00 00" 250000.50 --format json
  tariff-duty calc --schedule rates.hcl 2203000000 5000 --quantity 12`,
	Args: cobra.ExactArgs(2),
	RunE: runCalc,
}

var ratesCmd = &cobra.Command{
	Use:   "rates",
	Short: "Show the duty schedule",
	Args:  cobra.NoArgs,
	RunE:  runRates,
}

func init() {
	calcCmd.Flags().IntVarP(&calcQuantity, "quantity", "q", 1, "number of units, used by per-unit duties")

	rootCmd.AddCommand(calcCmd)
	rootCmd.AddCommand(ratesCmd)
}

func runCalc(cmd *cobra.Command, args []string) error {
	if err := checkFormat(); err != nil {
		return err
	}
	if !tariff.IsFullCode(args[0]) {
		return errors.Validation("code", "code must have exactly 10 digits")
	}
	value, err := decimal.NewFromString(strings.TrimSpace(args[1]))
	if err != nil {
		return errors.Validation("customs-value", "customs value must be a number")
	}
	if !value.IsPositive() {
		return errors.Validation("customs-value", "customs value must be greater than zero")
	}
	if calcQuantity < 1 {
		return errors.Validation("quantity", "quantity must be a positive integer")
	}

	sched, err := loadSchedule()
	if err != nil {
		return err
	}
	code := tariff.Normalize(args[0])
	b := sched.Compute(code, value, calcQuantity)

	if jsonOutput() {
		return printJSON(cmd, map[string]interface{}{
			"tariffCode":   tariff.Format(code),
			"customsValue": value.StringFixed(duty.MoneyPlaces),
			"quantity":     calcQuantity,
			"duty":         b.Duty.StringFixed(duty.MoneyPlaces),
			"vat":          b.VAT.StringFixed(duty.MoneyPlaces),
			"customsFee":   b.CustomsFee.StringFixed(duty.MoneyPlaces),
			"total":        b.Total.StringFixed(duty.MoneyPlaces),
			"vatBase":      b.VATBase.StringFixed(duty.MoneyPlaces),
			"rule":         b.Rule,
			"electronics":  b.Electronics,
			"year":         sched.Options().Year,
		})
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Tariff code:   %s\n", tariff.Format(code))
	fmt.Fprintf(out, "Customs value: %s\n", value.StringFixed(duty.MoneyPlaces))
	if b.Rule != nil {
		fmt.Fprintf(out, "Rule:          %s\n", describeRule(*b.Rule))
	} else {
		fmt.Fprintf(out, "Rule:          none (VAT %s%%)\n", sched.Options().DefaultVATRate)
	}
	fmt.Fprintln(out)
	fmt.Fprintf(out, "  %-14s %16s\n", "Duty", b.Duty.StringFixed(duty.MoneyPlaces))
	fmt.Fprintf(out, "  %-14s %16s\n", "VAT", b.VAT.StringFixed(duty.MoneyPlaces))
	feeLabel := "Customs fee"
	if b.Electronics {
		feeLabel = "Customs fee *"
	}
	fmt.Fprintf(out, "  %-14s %16s\n", feeLabel, b.CustomsFee.StringFixed(duty.MoneyPlaces))
	fmt.Fprintf(out, "  %-14s %16s\n", "Total", b.Total.StringFixed(duty.MoneyPlaces))
	if b.Electronics {
		fmt.Fprintln(out, "\n  * fixed electronics fee")
	}
	return nil
}

func runRates(cmd *cobra.Command, args []string) error {
	if err := checkFormat(); err != nil {
		return err
	}
	sched, err := loadSchedule()
	if err != nil {
		return err
	}
	opts := sched.Options()

	if jsonOutput() {
		return printJSON(cmd, map[string]interface{}{
			"year":                opts.Year,
			"defaultVatRate":      opts.DefaultVATRate,
			"minFee":              opts.MinFee,
			"maxFee":              opts.MaxFee,
			"electronicsFee":      opts.ElectronicsFee,
			"electronicsPrefixes": opts.ElectronicsPrefixes,
			"vatRates":            opts.VAT,
			"nonIndexedFees":      opts.NonIndexed,
			"feeTiers":            sched.Tiers(),
			"categories":          sched.Categories(),
		})
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Duty schedule %d\n", opts.Year)
	fmt.Fprintf(out, "Default VAT: %s%%\n\n", opts.DefaultVATRate)

	cats := sched.Categories()
	for _, name := range sched.CategoryNames() {
		fmt.Fprintf(out, "%s:\n", name)
		for _, r := range cats[name] {
			fmt.Fprintf(out, "  %s\n", describeRule(r))
		}
	}

	fmt.Fprintln(out, "\nCustoms fees:")
	for _, t := range sched.Tiers() {
		op := "<="
		if t.Bound == duty.LowerBound {
			op = ">="
		}
		fmt.Fprintf(out, "  value %s %-12s %s\n", op, t.Threshold, t.Fee)
	}
	fmt.Fprintf(out, "  electronics (%s): %s\n", strings.Join(opts.ElectronicsPrefixes, ", "), opts.ElectronicsFee)
	return nil
}

func loadSchedule() (*duty.Schedule, error) {
	return app.LoadSchedule(settings().Duty.SchedulePath)
}

func describeRule(r duty.Rule) string {
	var b strings.Builder
	b.WriteString(r.Prefix)
	if r.HasFixedDuty() {
		fmt.Fprintf(&b, " duty %s per unit", r.FixedDuty)
	} else {
		fmt.Fprintf(&b, " duty %s%%", r.DutyRate)
	}
	fmt.Fprintf(&b, ", VAT %s%%", r.VATRate)
	if r.Excise != nil {
		fmt.Fprintf(&b, ", excise %s", r.Excise)
	}
	if r.Notes != "" {
		fmt.Fprintf(&b, " (%s)", r.Notes)
	}
	return b.String()
}
