package bot

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
)

// WebServer is the health and metrics sidecar.
type WebServer struct {
	port   string
	logger zerolog.Logger
}

func NewWebServer(port string, logger zerolog.Logger) *WebServer {
	return &WebServer{
		port:   port,
		logger: logger,
	}
}

func (ws *WebServer) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/health/", ws.handleHealthCheck)
	mux.Handle("/metrics", promhttp.Handler())
	return mux
}

func (ws *WebServer) Start() error {
	ws.logger.Info().Str("port", ws.port).Msg("starting web server")
	return http.ListenAndServe(":"+ws.port, ws.Handler())
}

func (ws *WebServer) handleHealthCheck(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("OK"))
}
