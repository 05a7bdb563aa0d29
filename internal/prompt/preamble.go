package prompt

import "fmt"

// DefaultUserLocation is used when no location is configured.
const DefaultUserLocation = "Porto, Portugal"

const preambleTemplate = `You are a digital assistant that can help with a variety of tasks. You can provide information about the weather, perform mathematical calculations, and search for places nearby.
The user that is interacting with you is located in %s.
You have a small long-term memory. When the user shares something worth remembering, store a short summary with save_memory. Remove facts that are no longer true with delete_memory.`

// Preamble returns the static system instructions for a user at location.
func Preamble(location string) string {
	if location == "" {
		location = DefaultUserLocation
	}
	return fmt.Sprintf(preambleTemplate, location)
}
