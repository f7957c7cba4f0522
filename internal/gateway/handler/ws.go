package handler

import (
	"errors"
	"log"
	"net/http"

	"github.com/gorilla/websocket"

	"podscript/internal/dialogue"
	"podscript/internal/gateway/service/scripts"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 4096,
	// The CORS middleware already vouches for browser origins.
	CheckOrigin: func(*http.Request) bool { return true },
}

// wsEvent is one streamed progress frame. Type is "turn" while the
// conversation runs, then a final "record" or "error".
type wsEvent struct {
	Type      string `json:"type"`
	Turn      int    `json:"turn,omitempty"`
	Persona   string `json:"persona,omitempty"`
	Line      string `json:"line,omitempty"`
	Script    any    `json:"script,omitempty"`
	Truncated bool   `json:"truncated,omitempty"`
	Error     string `json:"error,omitempty"`
}

// HandleGenerateWS runs the same pipeline as HandleGenerate but streams each
// completed dialogue turn over a websocket. The first client message is the
// generate request; the connection closes after the final frame.
func (h *ScriptHandler) HandleGenerateWS(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		return
	}
	defer conn.Close()

	var req scripts.GenerateRequest
	if err := conn.ReadJSON(&req); err != nil {
		_ = conn.WriteJSON(wsEvent{Type: "error", Error: "invalid request message"})
		return
	}

	// Progress frames and the final frame come from the same goroutine, so
	// writes never interleave.
	out, err := h.svc.Generate(r.Context(), req, func(turn int, line dialogue.Line) {
		if werr := conn.WriteJSON(wsEvent{
			Type:    "turn",
			Turn:    turn,
			Persona: line.Persona,
			Line:    line.Text,
		}); werr != nil {
			log.Printf("WARN script ws: progress write failed: %v", werr)
		}
	})
	if err != nil {
		_ = conn.WriteJSON(wsEvent{Type: "error", Error: wsErrorMessage(err)})
		return
	}
	_ = conn.WriteJSON(wsEvent{Type: "record", Script: out.Record, Truncated: out.Truncated})
}

func wsErrorMessage(err error) string {
	if errors.Is(err, scripts.ErrInvalidRequest) || errors.Is(err, scripts.ErrSourceUnusable) {
		return err.Error()
	}
	return "script could not be stored"
}
