// Package valuation computes the valuation rate of a ledger entry from the
// entries that precede it in the same item/warehouse.
package valuation

import (
	"fmt"
	"strings"

	"stockledger/internal/core/apperror"
)

// Method is a costing convention.
type Method string

const (
	// MethodFIFO blends historical value and incoming value by quantity.
	MethodFIFO Method = "FIFO"
	// MethodMovingAverage weighs the running quantity by the mean of historical rates.
	MethodMovingAverage Method = "Moving Average"
)

// Methods lists the supported costing methods.
var Methods = []Method{MethodFIFO, MethodMovingAverage}

// Valid reports whether m is a supported method.
func (m Method) Valid() bool {
	return m == MethodFIFO || m == MethodMovingAverage
}

func (m Method) String() string {
	return string(m)
}

// ParseMethod accepts a method name case-insensitively.
// "moving_average" and "moving-average" are accepted as aliases.
func ParseMethod(s string) (Method, error) {
	norm := strings.ToLower(strings.TrimSpace(s))
	norm = strings.NewReplacer("_", " ", "-", " ").Replace(norm)
	switch norm {
	case "fifo":
		return MethodFIFO, nil
	case "moving average":
		return MethodMovingAverage, nil
	}
	return "", apperror.NewValidation(fmt.Sprintf("unknown valuation method %q", s)).
		WithDetail("allowed", Methods)
}

// Direction tells whether the pending quantity leaves or enters the warehouse.
type Direction int

const (
	Receiving Direction = iota
	Consuming
)

func (d Direction) String() string {
	if d == Consuming {
		return "consuming"
	}
	return "receiving"
}
