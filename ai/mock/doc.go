// Package mock provides test double implementations of AI service interfaces.
//
// # Usage in Tests
//
//	// Custom behavior injection
//	completer := mock.NewMockCompleter()
//	completer.CompleteFunc = func(ctx context.Context, prompt string) (string, error) {
//	    return `{"found": false, "excerpt": "", "confidence": 0}`, nil
//	}
//
//	// Check call counts
//	count := completer.CallCount()
//
// # Default Behavior
//
//   - MockCompleter: returns an empty completion, which callers treat as malformed
//   - MockProvider: wraps a MockCompleter
package mock
