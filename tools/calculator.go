package tools

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
)

// ErrDivisionByZero is returned by tool_calculator for a zero divisor.
var ErrDivisionByZero = errors.New("division by zero")

type CalculatorInput struct {
	FirstNumber  float64 `json:"first_number" jsonschema_description:"First operand for the calculation"`
	SecondNumber float64 `json:"second_number" jsonschema_description:"Second operand for the calculation"`
	Operation    string  `json:"operation" jsonschema:"enum=add,enum=subtract,enum=multiply,enum=divide" jsonschema_description:"Mathematical operation to perform"`
}

var CalculatorDefinition = ToolDefinition{
	Name:        "tool_calculator",
	Description: "Perform mathematical operations with error handling and precision tracking",
	InputSchema: CalculatorInputSchema,
	Function:    Calculate,
}

var CalculatorInputSchema = GenerateSchema[CalculatorInput]()

// Calculate applies operation to the two operands and returns the number in its
// shortest decimal form.
func Calculate(_ context.Context, input json.RawMessage) (string, error) {
	in, err := decodeInput[CalculatorInput](input, CalculatorInputSchema.Required)
	if err != nil {
		return "", err
	}

	x, y := in.FirstNumber, in.SecondNumber
	var result float64
	switch in.Operation {
	case "add":
		result = x + y
	case "subtract":
		result = x - y
	case "multiply":
		result = x * y
	case "divide":
		if y == 0 {
			return "", fmt.Errorf("%w: %g / %g", ErrDivisionByZero, x, y)
		}
		result = x / y
	default:
		return "", fmt.Errorf("%w: unsupported operation %q", ErrInvalidArguments, in.Operation)
	}
	return strconv.FormatFloat(result, 'g', -1, 64), nil
}
