package server

import (
	"context"
	"errors"
	"log"

	"github.com/alimasry/marginalia/anchor"
	"github.com/alimasry/marginalia/note"
	"github.com/alimasry/marginalia/store"
)

type clientRequest struct {
	client *Client
	msg    ClientMessage
}

// externalEdit is a content change observed outside any client, e.g. a
// save from another editor picked up by the directory watcher.
type externalEdit struct {
	content string
}

// Session manages one note. All edits and comment mutations are serialized
// through a single goroutine, so the engine always diffs exactly one
// old/new content pair at a time.
type Session struct {
	noteID string
	note   *note.Note
	store  store.NoteStore

	clients map[*Client]bool

	incoming chan clientRequest
	external chan externalEdit
	join     chan *Client
	leave    chan *Client
	stop     chan struct{}
}

func newSession(n *note.Note, st store.NoteStore) *Session {
	return &Session{
		noteID:   n.ID,
		note:     n,
		store:    st,
		clients:  make(map[*Client]bool),
		incoming: make(chan clientRequest, 64),
		external: make(chan externalEdit, 16),
		join:     make(chan *Client, 16),
		leave:    make(chan *Client, 16),
		stop:     make(chan struct{}),
	}
}

// Run is the session's main loop.
func (s *Session) Run() {
	for {
		select {
		case c := <-s.join:
			s.handleJoin(c)
		case c := <-s.leave:
			s.handleLeave(c)
		case req := <-s.incoming:
			s.dispatch(req)
		case ext := <-s.external:
			s.handleExternalEdit(ext.content)
		case <-s.stop:
			return
		}
	}
}

func (s *Session) dispatch(req clientRequest) {
	switch req.msg.Type {
	case MsgEdit:
		s.handleEdit(req)
	case MsgComment:
		s.handleComment(req)
	case MsgReanchor:
		s.handleReanchor(req)
	case MsgUncomment:
		s.handleUncomment(req)
	}
}

func (s *Session) handleJoin(c *Client) {
	s.clients[c] = true
	c.mu.Lock()
	c.session = s
	c.mu.Unlock()

	// Send current note state to the joining client.
	c.sendMsg(ServerMessage{
		Type:       MsgNote,
		NoteID:     s.noteID,
		Content:    s.note.Content,
		Rev:        s.note.Rev,
		Comments:   s.note.Comments,
		Highlights: s.note.Highlights(),
		Clients:    s.clientInfos(),
	})

	for other := range s.clients {
		if other != c {
			other.sendMsg(ServerMessage{
				Type:     MsgJoin,
				ClientID: c.ID,
				Name:     c.Name,
			})
		}
	}
}

func (s *Session) handleLeave(c *Client) {
	if _, ok := s.clients[c]; !ok {
		return
	}
	delete(s.clients, c)
	c.mu.Lock()
	c.session = nil
	c.mu.Unlock()
	close(c.send)

	for other := range s.clients {
		other.sendMsg(ServerMessage{
			Type:     MsgLeave,
			ClientID: c.ID,
		})
	}
}

// handleEdit applies a full-content snapshot from a client. The client
// names the revision it edited; an edit against an older revision is
// rejected so snapshots always form a linear sequence.
func (s *Session) handleEdit(req clientRequest) {
	if req.msg.Rev != s.note.Rev {
		req.client.sendError("edit conflict: note has moved on")
		return
	}
	if req.msg.Content == s.note.Content {
		req.client.sendMsg(ServerMessage{Type: MsgAck, Rev: s.note.Rev})
		return
	}

	s.note.SetContent(req.msg.Content)
	if err := s.persistNote(); err != nil {
		log.Printf("session %s: persist edit: %v", s.noteID, err)
		req.client.sendError("failed to save note")
		return
	}

	req.client.sendMsg(ServerMessage{Type: MsgAck, Rev: s.note.Rev})
	s.broadcastNote(req.client)
}

// handleExternalEdit runs the same remap path for content that changed on
// disk behind our back. There is no client to ack.
func (s *Session) handleExternalEdit(content string) {
	if content == s.note.Content {
		return
	}
	s.note.SetContent(content)
	// Content is already on disk; only the remapped comments and the
	// advanced revision need persisting.
	if err := s.store.SaveComments(context.Background(), s.noteID, s.note.Comments, s.note.Rev); err != nil {
		log.Printf("session %s: persist external edit: %v", s.noteID, err)
	}
	s.broadcastNote(nil)
}

func (s *Session) handleComment(req clientRequest) {
	_, err := s.note.AddComment(req.client.Name, req.msg.Body, req.msg.From, req.msg.To, req.msg.Rev)
	if err != nil {
		s.replyCommentError(req.client, err)
		return
	}
	s.persistAndBroadcastComments(req.client)
}

func (s *Session) handleReanchor(req clientRequest) {
	_, err := s.note.Reanchor(req.msg.CommentID, req.msg.Text)
	if err != nil {
		s.replyCommentError(req.client, err)
		return
	}
	s.persistAndBroadcastComments(req.client)
}

func (s *Session) handleUncomment(req clientRequest) {
	if err := s.note.RemoveComment(req.msg.CommentID); err != nil {
		s.replyCommentError(req.client, err)
		return
	}
	s.persistAndBroadcastComments(req.client)
}

func (s *Session) replyCommentError(c *Client, err error) {
	switch {
	case errors.Is(err, note.ErrRevisionMismatch):
		c.sendError("comment conflict: note has moved on")
	case errors.Is(err, anchor.ErrInvalidRange):
		c.sendError("invalid comment range")
	case errors.Is(err, note.ErrNoUniqueMatch):
		c.sendError("text not found exactly once")
	case errors.Is(err, note.ErrCommentNotFound):
		c.sendError("unknown comment")
	default:
		c.sendError(err.Error())
	}
}

func (s *Session) persistAndBroadcastComments(from *Client) {
	if err := s.store.SaveComments(context.Background(), s.noteID, s.note.Comments, s.note.Rev); err != nil {
		log.Printf("session %s: persist comments: %v", s.noteID, err)
		from.sendError("failed to save comments")
		return
	}
	msg := ServerMessage{
		Type:       MsgComments,
		NoteID:     s.noteID,
		Content:    s.note.Content,
		Rev:        s.note.Rev,
		Comments:   s.note.Comments,
		Highlights: s.note.Highlights(),
	}
	for c := range s.clients {
		c.sendMsg(msg)
	}
}

func (s *Session) persistNote() error {
	return s.store.UpdateNote(context.Background(), s.noteID,
		s.note.Content, s.note.Comments, s.note.Rev)
}

// broadcastNote sends the full note state to every client except skip.
func (s *Session) broadcastNote(skip *Client) {
	msg := ServerMessage{
		Type:       MsgEdit,
		NoteID:     s.noteID,
		Content:    s.note.Content,
		Rev:        s.note.Rev,
		Comments:   s.note.Comments,
		Highlights: s.note.Highlights(),
	}
	for c := range s.clients {
		if c != skip {
			c.sendMsg(msg)
		}
	}
}

func (s *Session) clientInfos() []ClientInfo {
	infos := make([]ClientInfo, 0, len(s.clients))
	for c := range s.clients {
		infos = append(infos, c.Info())
	}
	return infos
}
