package testsupport

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
)

// GraphQLCall records one request received by a GraphQLServer.
type GraphQLCall struct {
	Operation     string
	Variables     map[string]any
	Authorization string
}

// GraphQLHandler returns the JSON "data" document for a call, or an error
// which is reported in the "errors" array.
type GraphQLHandler func(call GraphQLCall) (string, error)

// GraphQLServer is an httptest server answering GraphQL operations by
// operation name.
type GraphQLServer struct {
	*httptest.Server

	mu       sync.Mutex
	handlers map[string]GraphQLHandler
	calls    []GraphQLCall
}

// NewGraphQLServer starts a server closed with t.Cleanup. Unknown
// operations get HTTP 400.
func NewGraphQLServer(t testing.TB, handlers map[string]GraphQLHandler) *GraphQLServer {
	t.Helper()
	s := &GraphQLServer{handlers: make(map[string]GraphQLHandler, len(handlers))}
	for name, h := range handlers {
		s.handlers[name] = h
	}
	s.Server = httptest.NewServer(http.HandlerFunc(s.serve))
	t.Cleanup(s.Close)
	return s
}

// Handle replaces the handler for operation.
func (s *GraphQLServer) Handle(operation string, h GraphQLHandler) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.handlers[operation] = h
}

// Calls returns a copy of the recorded calls in arrival order.
func (s *GraphQLServer) Calls() []GraphQLCall {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]GraphQLCall(nil), s.calls...)
}

// CallsFor returns recorded calls for operation.
func (s *GraphQLServer) CallsFor(operation string) []GraphQLCall {
	var out []GraphQLCall
	for _, c := range s.Calls() {
		if c.Operation == operation {
			out = append(out, c)
		}
	}
	return out
}

func (s *GraphQLServer) serve(w http.ResponseWriter, r *http.Request) {
	var body struct {
		OperationName string         `json:"operationName"`
		Variables     map[string]any `json:"variables"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	call := GraphQLCall{
		Operation:     body.OperationName,
		Variables:     body.Variables,
		Authorization: r.Header.Get("Authorization"),
	}

	s.mu.Lock()
	s.calls = append(s.calls, call)
	h, ok := s.handlers[call.Operation]
	s.mu.Unlock()
	if !ok {
		http.Error(w, "unknown operation "+call.Operation, http.StatusBadRequest)
		return
	}

	data, err := h(call)
	w.Header().Set("Content-Type", "application/json")
	if err != nil {
		payload, _ := json.Marshal(map[string]any{
			"data":   nil,
			"errors": []map[string]any{{"message": err.Error()}},
		})
		_, _ = w.Write(payload)
		return
	}
	_, _ = w.Write([]byte(`{"data":` + data + `}`))
}

// Static answers every call with data.
func Static(data string) GraphQLHandler {
	return func(GraphQLCall) (string, error) { return data, nil }
}
