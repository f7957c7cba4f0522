package server

import (
	"net/http"

	"podscript/internal/gateway/handler"
	"podscript/internal/gateway/middleware"
)

func NewMux(scriptHandler *handler.ScriptHandler) http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("POST /v1/scripts", scriptHandler.HandleGenerate)
	mux.HandleFunc("GET /v1/scripts", scriptHandler.HandleList)
	mux.HandleFunc("GET /v1/scripts/{id}", scriptHandler.HandleGet)
	mux.HandleFunc("GET /v1/scripts/{id}/content", scriptHandler.HandleContent)
	mux.HandleFunc("GET /v1/scripts/generate/ws", scriptHandler.HandleGenerateWS)

	mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	return middleware.CORS(mux)
}
