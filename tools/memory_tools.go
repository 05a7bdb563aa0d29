package tools

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/petasbytes/go-chatbot/memory"
)

type SaveMemoryInput struct {
	Text string `json:"text" jsonschema_description:"A short, compressed summary of the fact to remember about the user"`
}

type DeleteMemoryInput struct {
	Index int `json:"index" jsonschema:"minimum=0" jsonschema_description:"Index of the memory to delete, as listed in the system prompt"`
}

var (
	SaveMemoryInputSchema   = GenerateSchema[SaveMemoryInput]()
	DeleteMemoryInputSchema = GenerateSchema[DeleteMemoryInput]()
)

// MemoryDefinitions returns save_memory and delete_memory bound to store. Both mutate
// the store and are marked accordingly.
func MemoryDefinitions(store *memory.Store) []ToolDefinition {
	return []ToolDefinition{
		{
			Name:        "save_memory",
			Description: "Save a fact about the user to long-term memory so it is available in later turns. Keep the text short.",
			InputSchema: SaveMemoryInputSchema,
			Function:    saveMemory(store),
			Mutates:     true,
		},
		{
			Name:        "delete_memory",
			Description: "Delete a fact from long-term memory by its index. Indices of later memories shift down by one.",
			InputSchema: DeleteMemoryInputSchema,
			Function:    deleteMemory(store),
			Mutates:     true,
		},
	}
}

func saveMemory(store *memory.Store) HandlerFunc {
	return func(_ context.Context, input json.RawMessage) (string, error) {
		in, err := decodeInput[SaveMemoryInput](input, SaveMemoryInputSchema.Required)
		if err != nil {
			return "", err
		}
		// One line per slot: the rendered index must be the only numbering the model sees.
		text := strings.Join(strings.Fields(in.Text), " ")
		if text == "" {
			return "", fmt.Errorf("%w: text must not be empty", ErrInvalidArguments)
		}
		if !store.Save(text) {
			return fmt.Sprintf("memory is full (%d slots); the new entry was not kept", store.Capacity()), nil
		}
		return fmt.Sprintf("saved; memory now holds %d of %d slots", store.Len(), store.Capacity()), nil
	}
}

func deleteMemory(store *memory.Store) HandlerFunc {
	return func(_ context.Context, input json.RawMessage) (string, error) {
		in, err := decodeInput[DeleteMemoryInput](input, DeleteMemoryInputSchema.Required)
		if err != nil {
			return "", err
		}
		removed, err := store.Delete(in.Index)
		if err != nil {
			return "", err
		}
		return fmt.Sprintf("deleted %d: %s", in.Index, removed), nil
	}
}
