package calculator

import (
	"context"
	"errors"
	"fmt"

	"github.com/leofalp/promptkit/providers/tool"
)

// Name is the tool name the model calls.
const Name = "calculate"

// Operation is an arithmetic operator.
type Operation string

const (
	Add      Operation = "add"
	Subtract Operation = "sub"
	Multiply Operation = "mul"
	Divide   Operation = "div"
)

// EnumValues lists the supported operations.
func (Operation) EnumValues() []any {
	return []any{string(Add), string(Subtract), string(Multiply), string(Divide)}
}

// ErrDivisionByZero is returned when dividing by zero.
var ErrDivisionByZero = errors.New("division by zero")

// Input holds the operands and operator of a calculate call.
type Input struct {
	A  float64   `json:"a"`
	B  float64   `json:"b"`
	Op Operation `json:"op"`
}

// Output carries the result of Calc.
type Output struct {
	Result float64 `json:"result"`
}

// NewTool returns the calculate tool spec.
func NewTool() *tool.ToolSpec {
	return tool.MustFunction(Name, `
		Perform a basic arithmetic operation on two numbers.

		Args:
		    a: First operand.
		    b: Second operand.
		    op: Operation to apply: add, sub, mul or div.
	`, Calc)
}

// Calc applies req.Op to req.A and req.B.
func Calc(_ context.Context, req Input) (Output, error) {
	switch req.Op {
	case Add:
		return Output{Result: req.A + req.B}, nil
	case Subtract:
		return Output{Result: req.A - req.B}, nil
	case Multiply:
		return Output{Result: req.A * req.B}, nil
	case Divide:
		if req.B == 0 {
			return Output{}, ErrDivisionByZero
		}
		return Output{Result: req.A / req.B}, nil
	}
	return Output{}, fmt.Errorf("unknown operation %q", req.Op)
}
