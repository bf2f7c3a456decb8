package duty

import "github.com/shopspring/decimal"

func d(v int64) decimal.Decimal { return decimal.NewFromInt(v) }

// Default2026 returns the built-in 2026 schedule.
// VAT standard rate is 22% from 2026-01-01.
func Default2026() *Schedule {
	opts := Options{
		Year:                2026,
		DefaultVATRate:      d(22),
		MinFee:              d(1231),
		MaxFee:              d(73860),
		ElectronicsFee:      d(73860),
		ElectronicsPrefixes: []string{"8517", "8471", "8528"},
		NonIndexed: &NonIndexedFees{
			UpTo50Items:  d(9054),
			From51To100:  d(18108),
			Over100Items: d(30180),
		},
		VAT: &VATClasses{
			Standard: d(22),
			Reduced:  d(10),
			Zero:     d(0),
		},
	}

	rules := []Rule{
		{Prefix: "8517", Category: "electronics", DutyRate: d(0), VATRate: d(22), Notes: "Телефоны, смартфоны"},
		{Prefix: "8471", Category: "electronics", DutyRate: d(0), VATRate: d(22), Notes: "Компьютеры, ноутбуки"},
		{Prefix: "8528", Category: "electronics", DutyRate: d(0), VATRate: d(22), Notes: "Мониторы, телевизоры"},

		{Prefix: "6302", Category: "textiles", DutyRate: d(10), VATRate: d(22), Notes: "Постельное белье"},
		{Prefix: "6201", Category: "textiles", DutyRate: d(10), VATRate: d(22), Notes: "Мужская верхняя одежда"},
		{Prefix: "6202", Category: "textiles", DutyRate: d(10), VATRate: d(22), Notes: "Женская верхняя одежда"},

		{Prefix: "0901", Category: "food", DutyRate: d(5), VATRate: d(10), Notes: "Кофе"},
		{Prefix: "0902", Category: "food", DutyRate: d(5), VATRate: d(10), Notes: "Чай"},
		{Prefix: "2203", Category: "food", DutyRate: d(0), VATRate: d(22), Notes: "Пиво"},

		{Prefix: "8703", Category: "vehicles", DutyRate: d(15), VATRate: d(22), Notes: "Легковые автомобили"},
		{Prefix: "8704", Category: "vehicles", DutyRate: d(10), VATRate: d(22), Notes: "Грузовые автомобили"},

		{Prefix: "9403", Category: "furniture", DutyRate: d(15), VATRate: d(22), Notes: "Мебель для офисов"},
		{Prefix: "9401", Category: "furniture", DutyRate: d(15), VATRate: d(22), Notes: "Мебель для сидения"},
	}

	tiers := []FeeTier{
		{Bound: UpperBound, Threshold: d(200000), Fee: d(1231)},
		{Bound: UpperBound, Threshold: d(450000), Fee: d(3500)},
		{Bound: UpperBound, Threshold: d(1200000), Fee: d(7500)},
		{Bound: UpperBound, Threshold: d(2500000), Fee: d(12000)},
		{Bound: UpperBound, Threshold: d(5000000), Fee: d(15500)},
		{Bound: UpperBound, Threshold: d(10000000), Fee: d(20000)},
		{Bound: LowerBound, Threshold: d(10000000), Fee: d(73860)},
	}

	return MustNewSchedule(opts, rules, tiers)
}
