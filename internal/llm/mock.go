package llm

import "context"

// Mock is a canned-response Provider for tests.
type Mock struct {
	Response string
	Err      error

	// Calls records every request made through the mock.
	Calls []MockCall
}

type MockCall struct {
	System   string
	Messages []Message
}

func (m *Mock) Complete(_ context.Context, system string, messages []Message, _ float64) (string, error) {
	m.Calls = append(m.Calls, MockCall{System: system, Messages: messages})
	if m.Err != nil {
		return "", m.Err
	}
	return m.Response, nil
}

func (m *Mock) ModelID() string {
	return "mock"
}
