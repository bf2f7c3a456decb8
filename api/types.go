package api

import (
	"github.com/shopspring/decimal"

	"tariff-duty/adapters/ingest"
	"tariff-duty/core/catalog"
	"tariff-duty/core/duty"
	"tariff-duty/core/tariff"
)

// Money renders as a JSON number with two fractional digits
type Money decimal.Decimal

// MarshalJSON implements json.Marshaler
func (m Money) MarshalJSON() ([]byte, error) {
	return []byte(decimal.Decimal(m).StringFixed(duty.MoneyPlaces)), nil
}

// Rate renders as a plain JSON number
type Rate decimal.Decimal

// MarshalJSON implements json.Marshaler
func (r Rate) MarshalJSON() ([]byte, error) {
	return []byte(decimal.Decimal(r).String()), nil
}

func ratePtr(d *decimal.Decimal) *Rate {
	if d == nil {
		return nil
	}
	r := Rate(*d)
	return &r
}

// ErrorBody is the error envelope payload
type ErrorBody struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Field   string `json:"field,omitempty"`
}

// ErrorResponse is the error envelope
type ErrorResponse struct {
	Error ErrorBody `json:"error"`
}

// CodeView is a catalog entry as returned by the API
type CodeView struct {
	Code     string   `json:"code"`
	Name     string   `json:"name"`
	Section  string   `json:"section,omitempty"`
	Keywords []string `json:"keywords"`
	Category string   `json:"category"`
	DutyRate *Rate    `json:"dutyRate,omitempty"`
	VATRate  *Rate    `json:"vatRate,omitempty"`
	Notes    string   `json:"notes,omitempty"`

	tariff.Hierarchy
}

func newCodeView(e catalog.Entry) CodeView {
	kw := e.Keywords
	if kw == nil {
		kw = []string{}
	}
	return CodeView{
		Code:      e.Display(),
		Name:      e.Name,
		Section:   e.Section,
		Keywords:  kw,
		Category:  e.Category,
		DutyRate:  ratePtr(e.DutyRate),
		VATRate:   ratePtr(e.VATRate),
		Notes:     e.Notes,
		Hierarchy: e.Hierarchy(),
	}
}

func newCodeViews(entries []catalog.Entry) []CodeView {
	out := make([]CodeView, len(entries))
	for i, e := range entries {
		out[i] = newCodeView(e)
	}
	return out
}

// SearchResponse answers GET /api/tnved/search
type SearchResponse struct {
	Query   string       `json:"query"`
	Mode    catalog.Mode `json:"mode"`
	Count   int          `json:"count"`
	Results []CodeView   `json:"results"`
}

// LoadResponse answers POST /api/tnved/load
type LoadResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	ingest.Report
	Stats catalog.Stats `json:"stats"`
}

// ExtractRequest is the body of POST /api/tnved/extract
type ExtractRequest struct {
	Text string `json:"text"`
}

// ExtractResponse answers POST /api/tnved/extract
type ExtractResponse struct {
	Codes   []string   `json:"codes"`
	Matches []CodeView `json:"matches"`
	Missing []string   `json:"missing"`
}

// Source is a public catalog data source
type Source struct {
	Name        string `json:"name"`
	URL         string `json:"url"`
	Type        string `json:"type"`
	Free        bool   `json:"free"`
	Cost        string `json:"cost,omitempty"`
	Description string `json:"description"`
}

// SourcesResponse answers GET /api/tnved/sources
type SourcesResponse struct {
	Sources      []Source `json:"sources"`
	Instructions []string `json:"instructions"`
}

// CalculateRequest is the body of POST /api/duties/calculate.
// Fields are pointers so that absence can be told apart from zero.
// TnvedCode is accepted as an alias of TariffCode.
type CalculateRequest struct {
	TariffCode   *string          `json:"tariffCode"`
	TnvedCode    *string          `json:"tnvedCode"`
	CustomsValue *decimal.Decimal `json:"customsValue"`
	Quantity     *decimal.Decimal `json:"quantity"`
}

// RuleView is a duty rule as returned by the API
type RuleView struct {
	Code      string `json:"code"`
	Category  string `json:"category,omitempty"`
	DutyRate  Rate   `json:"dutyRate"`
	FixedDuty *Rate  `json:"fixedDuty,omitempty"`
	VATRate   Rate   `json:"vatRate"`
	Excise    *Rate  `json:"excise,omitempty"`
	Notes     string `json:"notes,omitempty"`
}

func newRuleView(r duty.Rule) RuleView {
	return RuleView{
		Code:      r.Prefix,
		Category:  r.Category,
		DutyRate:  Rate(r.DutyRate),
		FixedDuty: ratePtr(r.FixedDuty),
		VATRate:   Rate(r.VATRate),
		Excise:    ratePtr(r.Excise),
		Notes:     r.Notes,
	}
}

// CalculateResponse answers POST /api/duties/calculate
type CalculateResponse struct {
	Success      bool      `json:"success"`
	TariffCode   string    `json:"tariffCode"`
	CustomsValue Money     `json:"customsValue"`
	Quantity     int       `json:"quantity"`
	Duty         Money     `json:"duty"`
	VAT          Money     `json:"vat"`
	CustomsFee   Money     `json:"customsFee"`
	Total        Money     `json:"total"`
	VATBase      Money     `json:"vatBase"`
	DutyRate     Rate      `json:"dutyRate"`
	VATRate      Rate      `json:"vatRate"`
	FixedDuty    *Rate     `json:"fixedDuty,omitempty"`
	Rule         *RuleView `json:"rule,omitempty"`
	Electronics  bool      `json:"electronics"`
	Year         int       `json:"year"`
}

// TierView is a fee tier as returned by the API
type TierView struct {
	MaxValue *Rate `json:"maxValue,omitempty"`
	MinValue *Rate `json:"minValue,omitempty"`
	Fee      Rate  `json:"fee"`
}

func newTierView(t duty.FeeTier) TierView {
	v := TierView{Fee: Rate(t.Fee)}
	threshold := Rate(t.Threshold)
	if t.Bound == duty.LowerBound {
		v.MinValue = &threshold
	} else {
		v.MaxValue = &threshold
	}
	return v
}

// RatesResponse answers GET /api/duties/rates
type RatesResponse struct {
	Year                int                   `json:"year"`
	DefaultVATRate      Rate                  `json:"defaultVatRate"`
	MinFee              Rate                  `json:"minFee"`
	MaxFee              Rate                  `json:"maxFee"`
	ElectronicsFee      Rate                  `json:"electronicsFee"`
	ElectronicsPrefixes []string              `json:"electronicsPrefixes"`
	VATRates            *VATRatesView         `json:"vatRates,omitempty"`
	NonIndexedFees      *NonIndexedView       `json:"nonIndexedFees,omitempty"`
	FeeTiers            []TierView            `json:"feeTiers"`
	Categories          map[string][]RuleView `json:"categories"`
}

// VATRatesView lists the named VAT classes
type VATRatesView struct {
	Standard Rate `json:"standard"`
	Reduced  Rate `json:"reduced"`
	Zero     Rate `json:"zero"`
}

// NonIndexedView lists the item-count fees
type NonIndexedView struct {
	UpTo50Items  Rate `json:"upTo50Items"`
	From51To100  Rate `json:"from51To100Items"`
	Over100Items Rate `json:"over101Items"`
}

func newRatesResponse(s *duty.Schedule) RatesResponse {
	opts := s.Options()
	resp := RatesResponse{
		Year:                opts.Year,
		DefaultVATRate:      Rate(opts.DefaultVATRate),
		MinFee:              Rate(opts.MinFee),
		MaxFee:              Rate(opts.MaxFee),
		ElectronicsFee:      Rate(opts.ElectronicsFee),
		ElectronicsPrefixes: append([]string{}, opts.ElectronicsPrefixes...),
		Categories:          make(map[string][]RuleView),
	}
	if opts.VAT != nil {
		resp.VATRates = &VATRatesView{
			Standard: Rate(opts.VAT.Standard),
			Reduced:  Rate(opts.VAT.Reduced),
			Zero:     Rate(opts.VAT.Zero),
		}
	}
	if opts.NonIndexed != nil {
		resp.NonIndexedFees = &NonIndexedView{
			UpTo50Items:  Rate(opts.NonIndexed.UpTo50Items),
			From51To100:  Rate(opts.NonIndexed.From51To100),
			Over100Items: Rate(opts.NonIndexed.Over100Items),
		}
	}
	for _, t := range s.Tiers() {
		resp.FeeTiers = append(resp.FeeTiers, newTierView(t))
	}
	for name, rules := range s.Categories() {
		views := make([]RuleView, len(rules))
		for i, r := range rules {
			views[i] = newRuleView(r)
		}
		resp.Categories[name] = views
	}
	return resp
}
