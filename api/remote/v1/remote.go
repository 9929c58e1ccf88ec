package remotev1

const (
	// NamingServiceName is the fully qualified naming service name.
	NamingServiceName = "remotebean.v1.NamingService"

	// InvocationServiceName is the fully qualified invocation service name.
	InvocationServiceName = "remotebean.v1.InvocationService"
)

// Procedure paths.
const (
	NamingServiceLookupProcedure = "/" + NamingServiceName + "/Lookup"

	InvocationServiceCreateSessionProcedure = "/" + InvocationServiceName + "/CreateSession"
	InvocationServiceInvokeProcedure        = "/" + InvocationServiceName + "/Invoke"
	InvocationServiceRemoveSessionProcedure = "/" + InvocationServiceName + "/RemoveSession"
)

// ErrorCodeHeader is the connect.Error metadata key holding the domain
// error code.
const ErrorCodeHeader = "Remotebean-Error-Code"

// LookupRequest resolves a lookup key.
type LookupRequest struct {
	Key string `json:"key"`
}

// Binding describes a resolved component.
type Binding struct {
	// Key is the canonical key, with the deployment's real distinct name.
	Key         string   `json:"key"`
	Application string   `json:"application"`
	Module      string   `json:"module"`
	Distinct    string   `json:"distinct"`
	Component   string   `json:"component"`
	Contract    string   `json:"contract"`
	Stateful    bool     `json:"stateful"`
	Methods     []string `json:"methods"`
}

// LookupResponse is the result of a lookup.
type LookupResponse struct {
	Binding Binding `json:"binding"`
}

// CreateSessionRequest opens a session on a stateful key.
type CreateSessionRequest struct {
	Key string `json:"key"`
}

// CreateSessionResponse carries the new session's ID.
type CreateSessionResponse struct {
	SessionID string  `json:"session_id"`
	Binding   Binding `json:"binding"`
}

// InvokeRequest is one remote call. SessionID and Sequence are set only for
// stateful calls; Sequence starts at 1 and grows by one per call.
type InvokeRequest struct {
	Key       string  `json:"key"`
	SessionID string  `json:"session_id,omitempty"`
	Sequence  uint64  `json:"sequence,omitempty"`
	Method    string  `json:"method"`
	Args      []int64 `json:"args,omitempty"`
}

// InvokeResponse is the result of a call.
type InvokeResponse struct {
	Value int64 `json:"value"`
	Void  bool  `json:"void,omitempty"`
}

// RemoveSessionRequest ends a session.
type RemoveSessionRequest struct {
	SessionID string `json:"session_id"`
}

// RemoveSessionResponse is empty.
type RemoveSessionResponse struct{}

// RequestIDHeader carries the caller's request ID.
const RequestIDHeader = "X-Request-Id"
