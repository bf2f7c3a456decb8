package api

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"tariff-duty/core/duty"
	"tariff-duty/core/history"
	"tariff-duty/core/tariff"
	"tariff-duty/internal/errors"
)

// calculation is a validated CalculateRequest
type calculation struct {
	code     string
	value    decimal.Decimal
	quantity int
}

const maxQuantity = 1_000_000_000

// validateCalculateRequest checks the duty boundary and names the offending field
func validateCalculateRequest(req *CalculateRequest) (calculation, error) {
	var calc calculation

	raw := req.TariffCode
	if raw == nil {
		raw = req.TnvedCode
	}
	if raw == nil || strings.TrimSpace(*raw) == "" {
		return calc, errors.Validation("tariffCode", "tariffCode is required")
	}
	if !tariff.IsFullCode(*raw) {
		return calc, errors.Validation("tariffCode", "tariffCode must have exactly 10 digits")
	}
	calc.code = tariff.Normalize(*raw)

	if req.CustomsValue == nil {
		return calc, errors.Validation("customsValue", "customsValue is required")
	}
	if !req.CustomsValue.IsPositive() {
		return calc, errors.Validation("customsValue", "customsValue must be greater than zero")
	}
	calc.value = *req.CustomsValue

	calc.quantity = 1
	if req.Quantity != nil {
		q := *req.Quantity
		if !q.IsInteger() || q.LessThan(decimal.NewFromInt(1)) || q.GreaterThan(decimal.NewFromInt(maxQuantity)) {
			return calc, errors.Validation("quantity", "quantity must be a positive integer")
		}
		calc.quantity = int(q.IntPart())
	}
	return calc, nil
}

// handleCalculate handles POST /api/duties/calculate
func (s *Server) handleCalculate(c *gin.Context) {
	var req CalculateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		s.writeError(c, errors.Parsing("invalid JSON body", err))
		return
	}

	calc, err := validateCalculateRequest(&req)
	if err != nil {
		s.writeError(c, err)
		return
	}

	sched := s.opts.Schedule
	b := sched.Compute(calc.code, calc.value, calc.quantity)
	resp := newCalculateResponse(sched, calc, b)

	s.opts.History.Add(history.Item{
		Mode:    history.ModeCompute,
		Preview: tariff.Format(calc.code),
		Result:  fmt.Sprintf("total %s", b.Total.StringFixed(duty.MoneyPlaces)),
		Codes:   []string{tariff.Format(calc.code)},
	})

	s.writeJSON(c, resp, http.StatusOK)
}

func newCalculateResponse(sched *duty.Schedule, calc calculation, b duty.Breakdown) CalculateResponse {
	resp := CalculateResponse{
		Success:      true,
		TariffCode:   tariff.Format(calc.code),
		CustomsValue: Money(calc.value),
		Quantity:     calc.quantity,
		Duty:         Money(b.Duty),
		VAT:          Money(b.VAT),
		CustomsFee:   Money(b.CustomsFee),
		Total:        Money(b.Total),
		VATBase:      Money(b.VATBase),
		DutyRate:     Rate(decimal.Zero),
		VATRate:      Rate(sched.Options().DefaultVATRate),
		Electronics:  b.Electronics,
		Year:         sched.Options().Year,
	}
	if b.Rule != nil {
		rv := newRuleView(*b.Rule)
		resp.Rule = &rv
		resp.DutyRate = rv.DutyRate
		resp.VATRate = rv.VATRate
		resp.FixedDuty = rv.FixedDuty
	}
	return resp
}

// handleRates handles GET /api/duties/rates
func (s *Server) handleRates(c *gin.Context) {
	s.writeJSON(c, newRatesResponse(s.opts.Schedule), http.StatusOK)
}
