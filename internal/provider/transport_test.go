package provider_test

import (
	"bytes"
	"io"
	"net/http"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/petasbytes/go-chatbot/internal/conversation"
	"github.com/petasbytes/go-chatbot/internal/prompt"
	"github.com/petasbytes/go-chatbot/tools"
)

type capture struct {
	method string
	url    string
	body   []byte
}

type fakeTransport struct {
	respStatus int
	respBody   []byte
	captured   *capture
}

func (f *fakeTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	b, _ := io.ReadAll(req.Body)
	_ = req.Body.Close()
	if f.captured != nil {
		f.captured.method = req.Method
		f.captured.url = req.URL.String()
		f.captured.body = b
	}
	resp := &http.Response{
		StatusCode: f.respStatus,
		Body:       io.NopCloser(bytes.NewReader(f.respBody)),
		Header:     make(http.Header),
		Request:    req,
	}
	resp.Header.Set("Content-Type", "application/json")
	return resp, nil
}

// toolRoundTrip is a context after one calculator call that failed.
func toolRoundTrip(t *testing.T, boundary prompt.Segment) prompt.Context {
	t.Helper()
	state := conversation.NewState()
	require.NoError(t, state.AppendUser("What's 7 divided by 0?"))
	require.NoError(t, state.AppendAssistant([]conversation.Block{
		conversation.Text("Let me calculate."),
		conversation.Invocation("call_1", "tool_calculator", []byte(`{"first_number":7,"second_number":0,"operation":"divide"}`)),
	}))
	require.NoError(t, state.AppendToolResults([]conversation.Block{
		conversation.Outcome("call_1", "division by zero", true),
	}))
	return prompt.Context{
		SystemText:    "You are helpful.",
		Tools:         []tools.ToolDefinition{tools.WeatherDefinition, tools.CalculatorDefinition},
		History:       state.Turns(),
		CacheBoundary: boundary,
	}
}

// emptyReply is a context whose transcript holds an assistant turn with no content, as
// stored when the model returned nothing.
func emptyReply(t *testing.T, assistant []conversation.Block) prompt.Context {
	t.Helper()
	state := conversation.NewState()
	require.NoError(t, state.AppendUser("hi"))
	require.NoError(t, state.AppendAssistant(assistant))
	require.NoError(t, state.AppendUser("hello?"))
	return prompt.Context{SystemText: "You are helpful.", History: state.Turns(), CacheBoundary: prompt.SegmentSystem}
}
