package metrics

import "github.com/petasbytes/go-chatbot/internal/conversation"

// Transcript summarises the shape of a conversation without its content.
type Transcript struct {
	Turns         int
	Invocations   int
	Outcomes      int
	ErrorOutcomes int
}

// CountTranscript tallies turns and tool blocks.
func CountTranscript(turns []conversation.Turn) Transcript {
	tr := Transcript{Turns: len(turns)}
	for _, t := range turns {
		for _, b := range t.Content {
			switch b.Kind {
			case conversation.BlockToolInvocation:
				tr.Invocations++
			case conversation.BlockToolOutcome:
				tr.Outcomes++
				if b.IsError {
					tr.ErrorOutcomes++
				}
			}
		}
	}
	return tr
}
