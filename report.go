/*
Copyright © 2019 the GasLift authors.
This file is part of GasLift.

GasLift is free software: you can redistribute it and/or modify
it under the terms of the GNU General Public License as published by
the Free Software Foundation, either version 3 of the License, or
(at your option) any later version.

GasLift is distributed in the hope that it will be useful,
but WITHOUT ANY WARRANTY; without even the implied warranty of
MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
GNU General Public License for more details.

You should have received a copy of the GNU General Public License
along with GasLift.  If not, see <http://www.gnu.org/licenses/>.
*/

package gaslift

import (
	"fmt"
	"math"
	"sort"

	"github.com/Knetic/govaluate"
)

// ReportVariables are the per-well variables available to report
// expressions.
var ReportVariables = []string{
	"GasRate", "OilRate", "NaturalFlowRate", "IncrementalOil",
	"MarginalResponse", "GasEfficiency", "Enabled",
}

// Reporter evaluates user-defined columns over the wells of an
// allocation result. Each column is an expression in terms of
// ReportVariables and the functions 'exp', 'log', 'min' and 'max',
// for example "OilRate * 6.29" for barrels per day.
type Reporter struct {
	names       []string
	expressions map[string]*govaluate.EvaluableExpression
}

// NewReporter parses the column expressions. Additional functions may
// be supplied.
func NewReporter(columns map[string]string, functions map[string]govaluate.ExpressionFunction) (*Reporter, error) {
	funcs := map[string]govaluate.ExpressionFunction{
		"exp": oneArg("exp", math.Exp),
		"log": oneArg("log", math.Log),
		"min": twoArg("min", math.Min),
		"max": twoArg("max", math.Max),
	}
	for k, f := range functions {
		funcs[k] = f
	}
	known := make(map[string]bool)
	for _, v := range ReportVariables {
		known[v] = true
	}
	r := &Reporter{expressions: make(map[string]*govaluate.EvaluableExpression)}
	for name, expr := range columns {
		e, err := govaluate.NewEvaluableExpressionWithFunctions(expr, funcs)
		if err != nil {
			return nil, fmt.Errorf("gaslift: report column %q: %v", name, err)
		}
		for _, v := range e.Vars() {
			if !known[v] {
				return nil, fmt.Errorf("gaslift: report column %q: undefined variable %q", name, v)
			}
		}
		r.expressions[name] = e
		r.names = append(r.names, name)
	}
	sort.Strings(r.names)
	return r, nil
}

// Columns returns the column names in sorted order.
func (r *Reporter) Columns() []string { return append([]string(nil), r.names...) }

// Evaluate returns one row per well with the value of each column.
func (r *Reporter) Evaluate(res *AllocationResult) ([][]float64, error) {
	rows := make([][]float64, len(res.Wells))
	for i, w := range res.Wells {
		enabled := 0.
		if w.Enabled {
			enabled = 1
		}
		params := map[string]interface{}{
			"GasRate":          w.GasRate,
			"OilRate":          w.OilRate,
			"NaturalFlowRate":  w.NaturalFlowRate,
			"IncrementalOil":   w.IncrementalOil,
			"MarginalResponse": w.MarginalResponse,
			"GasEfficiency":    w.GasEfficiency,
			"Enabled":          enabled,
		}
		rows[i] = make([]float64, len(r.names))
		for j, name := range r.names {
			v, err := r.expressions[name].Evaluate(params)
			if err != nil {
				return nil, fmt.Errorf("gaslift: evaluating report column %q for well %q: %v", name, w.Name, err)
			}
			f, ok := v.(float64)
			if !ok {
				return nil, fmt.Errorf("gaslift: report column %q for well %q is %T, not a number", name, w.Name, v)
			}
			rows[i][j] = f
		}
	}
	return rows, nil
}

func oneArg(name string, f func(float64) float64) govaluate.ExpressionFunction {
	return func(args ...interface{}) (interface{}, error) {
		if len(args) != 1 {
			return nil, fmt.Errorf("gaslift: got %d arguments for function '%s', but needs 1", len(args), name)
		}
		x, ok := args[0].(float64)
		if !ok {
			return nil, fmt.Errorf("gaslift: argument to '%s' is %T, not a number", name, args[0])
		}
		return f(x), nil
	}
}

func twoArg(name string, f func(float64, float64) float64) govaluate.ExpressionFunction {
	return func(args ...interface{}) (interface{}, error) {
		if len(args) != 2 {
			return nil, fmt.Errorf("gaslift: got %d arguments for function '%s', but needs 2", len(args), name)
		}
		x, ok1 := args[0].(float64)
		y, ok2 := args[1].(float64)
		if !ok1 || !ok2 {
			return nil, fmt.Errorf("gaslift: arguments to '%s' must be numbers", name)
		}
		return f(x, y), nil
	}
}
