package dto

import (
	"github.com/google/uuid"

	"portfolio-assistant-be/pkg/rag/search"
)

// StreamChatRequest is the JSON payload carried in the stream endpoint's
// query string, and the body of the non-streaming endpoint.
type StreamChatRequest struct {
	Prompt         string `json:"prompt" validate:"required"`
	SessionKey     string `json:"sessionKey"`
	IncludeHistory bool   `json:"includeHistory"`
}

// StreamFrame is one typed SSE frame.
type StreamFrame interface {
	FrameType() string
}

const (
	FrameTypeMetadata = "metadata"
	FrameTypeContent  = "content"
	FrameTypeDone     = "done"
	FrameTypeError    = "error"
)

// MetadataFrame precedes all content so the client can render the
// illustration before the answer arrives. Absent values marshal as null.
type MetadataFrame struct {
	Type            string  `json:"type"`
	ProjectImage    *string `json:"projectImage"`
	SessionId       *string `json:"sessionId"`
	RelevantProject *string `json:"relevantProject"`
}

func (f MetadataFrame) FrameType() string { return f.Type }

func NewMetadataFrame(projectImage, sessionId, relevantProject string) MetadataFrame {
	return MetadataFrame{
		Type:            FrameTypeMetadata,
		ProjectImage:    optionalString(projectImage),
		SessionId:       optionalString(sessionId),
		RelevantProject: optionalString(relevantProject),
	}
}

type ContentFrame struct {
	Type    string `json:"type"`
	Content string `json:"content"`
}

func (f ContentFrame) FrameType() string { return f.Type }

func NewContentFrame(content string) ContentFrame {
	return ContentFrame{Type: FrameTypeContent, Content: content}
}

type DoneFrame struct {
	Type string `json:"type"`
}

func (f DoneFrame) FrameType() string { return f.Type }

func NewDoneFrame() DoneFrame {
	return DoneFrame{Type: FrameTypeDone}
}

type ErrorFrame struct {
	Type    string `json:"type"`
	Error   string `json:"error"`
	Message string `json:"message"`
}

func (f ErrorFrame) FrameType() string { return f.Type }

func NewErrorFrame(code, message string) ErrorFrame {
	return ErrorFrame{Type: FrameTypeError, Error: code, Message: message}
}

// ChatResponse is the non-streaming endpoint's payload. Context carries the
// retrieved documents themselves; the rendered text block stays inside the
// system message.
type ChatResponse struct {
	Response        string             `json:"response"`
	Context         []*search.Document `json:"context"`
	Prompt          string             `json:"prompt"`
	RelevantProject string             `json:"relevant_project"`
}

// PublishChatExchangeMessage is the fire-and-forget payload the coordinator
// hands to the exchange consumer once a stream completes.
type PublishChatExchangeMessage struct {
	SessionId uuid.UUID `json:"session_id"` // uuid.Nil for anonymous chats
	Query     string    `json:"query"`
	Response  string    `json:"response"`
}

func optionalString(value string) *string {
	if value == "" {
		return nil
	}
	return &value
}
