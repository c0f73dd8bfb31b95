package server

import (
	"encoding/json"

	"github.com/alimasry/marginalia/anchor"
)

// Message types exchanged over WebSocket.
const (
	MsgJoin      = "join"
	MsgLeave     = "leave"
	MsgEdit      = "edit"
	MsgComment   = "comment"
	MsgReanchor  = "reanchor"
	MsgUncomment = "uncomment"
	MsgAck       = "ack"
	MsgNote      = "note"
	MsgComments  = "comments"
	MsgError     = "error"
)

// ClientMessage is a message from client to server. Rev is the note
// revision the client prepared the message against.
type ClientMessage struct {
	Type      string `json:"type"`
	NoteID    string `json:"noteId,omitempty"`
	Rev       int    `json:"rev"`
	Content   string `json:"content,omitempty"`
	Body      string `json:"body,omitempty"`
	From      int    `json:"from"`
	To        int    `json:"to"`
	CommentID string `json:"commentId,omitempty"`
	Text      string `json:"text,omitempty"`
}

// ServerMessage is a message from server to client.
type ServerMessage struct {
	Type       string           `json:"type"`
	NoteID     string           `json:"noteId,omitempty"`
	Content    string           `json:"content"`
	Rev        int              `json:"rev"`
	Comments   []anchor.Comment `json:"comments,omitempty"`
	Highlights []anchor.Range   `json:"highlights,omitempty"`
	ClientID   string           `json:"clientId,omitempty"`
	Name       string           `json:"name,omitempty"`
	Message    string           `json:"message,omitempty"`
	Clients    []ClientInfo     `json:"clients,omitempty"`
}

// ClientInfo describes a connected user.
type ClientInfo struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// Encode serializes a ServerMessage to JSON bytes.
func (m ServerMessage) Encode() []byte {
	b, _ := json.Marshal(m)
	return b
}
