package server

import (
	"net/http"
	"time"

	"github.com/gorilla/websocket"

	"runboard/internal/registry"
	"runboard/pkg/api"
)

const (
	// Time allowed to write a message to the peer
	writeWait = 10 * time.Second

	// Time allowed to read the next pong message from the peer
	pongWait = 60 * time.Second

	// Send pings to peer with this period (must be less than pongWait)
	pingPeriod = 54 * time.Second

	// Maximum message size allowed from peer
	maxMessageSize = 1024

	// How often the writer checks the registry for new log lines
	streamPoll = 500 * time.Millisecond
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		// The dashboard UI is served from this host; token auth guards
		// the mutating routes.
		return true
	},
}

// handleStream serves GET /api/stream/{id}: a WebSocket that pushes new log
// lines for one job until it reaches a terminal status.
func (s *Server) handleStream(w http.ResponseWriter, r *http.Request) {
	jobID := r.PathValue("id")

	v, ok := s.registry.Get(jobID)
	if !ok {
		http.Error(w, "Job not found", http.StatusNotFound)
		return
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Warn("websocket upgrade failed", "job_id", jobID, "error", err)
		return
	}

	s.logger.Debug("stream opened", "job_id", jobID, "remote", r.RemoteAddr)

	go s.streamWriter(conn, jobID, v)
	s.streamReader(conn)
}

// streamReader discards client messages and keeps the read deadline fresh
// from pongs. Returning closes the connection, which also stops the writer.
func (s *Server) streamReader(conn *websocket.Conn) {
	defer conn.Close()

	conn.SetReadLimit(maxMessageSize)
	conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error {
		conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			return
		}
	}
}

// streamWriter pushes the current log as a first frame, then polls the
// registry and sends only lines the client has not seen. The final frame has
// Done set once the job is terminal.
func (s *Server) streamWriter(conn *websocket.Conn, jobID string, initial registry.JobView) {
	pollTicker := time.NewTicker(streamPoll)
	pingTicker := time.NewTicker(pingPeriod)
	defer func() {
		pollTicker.Stop()
		pingTicker.Stop()
		conn.Close()
	}()

	frame := api.StreamFrame{
		Lines:  initial.Log,
		Status: string(initial.Status),
		Done:   initial.Status.IsTerminal(),
	}
	sentTotal := initial.TotalLines

	conn.SetWriteDeadline(time.Now().Add(writeWait))
	if err := conn.WriteJSON(frame); err != nil {
		return
	}
	if frame.Done {
		s.closeStream(conn, "")
		return
	}

	for {
		select {
		case <-pollTicker.C:
			v, ok := s.registry.Get(jobID)
			if !ok {
				// Evicted mid-stream.
				s.closeStream(conn, "job evicted")
				return
			}

			frame := api.StreamFrame{
				Lines:  []string{},
				Status: string(v.Status),
				Done:   v.Status.IsTerminal(),
			}
			if missed := v.TotalLines - sentTotal; missed > 0 {
				if missed >= len(v.Log) {
					frame.Lines = v.Log
				} else {
					frame.Lines = v.Log[len(v.Log)-missed:]
				}
				sentTotal = v.TotalLines
			}

			if len(frame.Lines) == 0 && !frame.Done {
				continue
			}

			conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteJSON(frame); err != nil {
				return
			}
			if frame.Done {
				s.closeStream(conn, "")
				return
			}

		case <-pingTicker.C:
			conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

func (s *Server) closeStream(conn *websocket.Conn, reason string) {
	conn.SetWriteDeadline(time.Now().Add(writeWait))
	conn.WriteMessage(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, reason))
}
