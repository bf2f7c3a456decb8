package duty

import (
	"github.com/shopspring/decimal"
)

// MoneyPlaces is the number of fractional digits in monetary results
const MoneyPlaces = 2

var hundred = decimal.NewFromInt(100)

// Breakdown is the computed payment for one declaration line
type Breakdown struct {
	Duty       decimal.Decimal `json:"duty"`
	VAT        decimal.Decimal `json:"vat"`
	CustomsFee decimal.Decimal `json:"customsFee"`
	Total      decimal.Decimal `json:"total"`

	// VATBase is customs value plus unrounded duty
	VATBase decimal.Decimal `json:"vatBase"`

	// Rule is the resolved rule, nil when defaults applied
	Rule *Rule `json:"rule,omitempty"`

	// Electronics is set when the fixed electronics fee replaced the tiered fee
	Electronics bool `json:"electronics"`
}

// Compute resolves the rate for code and computes duty, VAT and customs fee.
// Inputs are assumed validated: customsValue > 0 and quantity >= 1.
// Each part is rounded half away from zero; Total is the sum of rounded parts.
func (s *Schedule) Compute(code string, customsValue decimal.Decimal, quantity int) Breakdown {
	var b Breakdown

	dutyRate := decimal.Zero
	vatRate := s.opts.DefaultVATRate
	var fixed *decimal.Decimal

	if rule, ok := s.ResolveRate(code); ok {
		b.Rule = &rule
		dutyRate = rule.DutyRate
		vatRate = rule.VATRate
		if rule.HasFixedDuty() {
			fixed = rule.FixedDuty
		}
	}

	var duty decimal.Decimal
	if fixed != nil {
		duty = fixed.Mul(decimal.NewFromInt(int64(quantity)))
	} else {
		duty = customsValue.Mul(dutyRate).Div(hundred)
	}

	b.VATBase = customsValue.Add(duty)
	vat := b.VATBase.Mul(vatRate).Div(hundred)

	fee := s.TieredFee(customsValue)
	if s.IsElectronics(code) {
		fee = s.opts.ElectronicsFee
		b.Electronics = true
	}

	b.Duty = duty.Round(MoneyPlaces)
	b.VAT = vat.Round(MoneyPlaces)
	b.CustomsFee = fee.Round(MoneyPlaces)
	b.Total = b.Duty.Add(b.VAT).Add(b.CustomsFee)
	return b
}
