// Package tools defines tool contracts, the registry, and the built-in tools.
//
// Includes:
//   - ToolDefinition: name, description, JSON input schema, handler, side-effect flag.
//   - GenerateSchema[T](): derive JSON Schema from Go argument structs.
//   - Registry: unique names, lookup, catalog in registration order, normalised errors.
//   - Tools: tool_weather, tool_calculator, tool_places_nearby, save_memory, delete_memory.
//   - Invariants: handler arguments are decoded into typed structs at the boundary; any
//     failure surfaces as *ToolError so the caller can render it for the model.
package tools
