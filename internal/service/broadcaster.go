package service

// Broadcaster interface for WebSocket broadcasting (avoids import cycle)
type Broadcaster interface {
	BroadcastToMember(memberID string, msgType string, payload interface{})
}

// Member message types
const (
	MsgSurveyProgress  = "survey_progress"
	MsgSurveyCompleted = "survey_completed"
)
