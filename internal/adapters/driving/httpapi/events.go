package httpapi

import (
	"net/http"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/custodia-labs/mbsearch/internal/core/domain"
)

const (
	// eventBuffer is how many progress events may queue per client.
	eventBuffer = 32

	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = pongWait * 9 / 10
)

// handleEvents streams export progress over a websocket. The current
// export state is sent first, then every progress event. A client too
// slow to drain its queue misses events rather than stalling the export.
func (s *Server) handleEvents(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Debug("websocket upgrade failed", zap.Error(err))
		return
	}
	defer func() { _ = conn.Close() }()

	events := make(chan domain.ExportProgress, eventBuffer)
	cancel := s.ports.Export.Subscribe(func(p domain.ExportProgress) {
		select {
		case events <- p:
		default:
		}
	})
	defer cancel()

	// Reads only detect the close; clients send nothing.
	closed := make(chan struct{})
	conn.SetReadLimit(512)
	_ = conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(pongWait))
	})
	go func() {
		defer close(closed)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	current := s.ports.Export.Current()
	if err := s.writeEvent(conn, progressOf(current)); err != nil {
		return
	}

	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()

	for {
		select {
		case <-r.Context().Done():
			return
		case <-closed:
			return
		case p := <-events:
			if err := s.writeEvent(conn, p); err != nil {
				return
			}
		case <-ticker.C:
			_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

func (s *Server) writeEvent(conn *websocket.Conn, p domain.ExportProgress) error {
	_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
	if err := conn.WriteJSON(p); err != nil {
		s.logger.Debug("websocket write failed", zap.Error(err))
		return err
	}
	return nil
}

// progressOf converts a job snapshot to a progress event.
func progressOf(job domain.ExportJob) domain.ExportProgress {
	return domain.ExportProgress{
		JobID:    job.ID,
		State:    job.State,
		Progress: job.Progress,
		Message:  job.Message,
		Running:  job.Running,
	}
}
