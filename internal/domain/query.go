package domain

// APIOutput is the agent gateway's answer to one query. It is both the
// response body of POST /query and the input the processor pipeline works on.
type APIOutput struct {
	Response  string `json:"response"`
	SessionID string `json:"sessionId"`
}

// QueryFragment is one streamed piece of an agent reply.
type QueryFragment struct {
	Text      string `json:"text"`
	SessionID string `json:"sessionId"`
}

// SessionInfo is a diagnostic view of one tracked session.
type SessionInfo struct {
	UserID    string `json:"userId"`
	SessionID string `json:"sessionId"`
}
