// Package dashboard serves the training plots and streams live episode
// statistics of a run to the browser.
package dashboard

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/robolab/arm-rl-train/monitor"
	"go.uber.org/zap"
)

const writeWait = 10 * time.Second

var upgrader = websocket.Upgrader{}

// Status is the live state of a training run
type Status struct {
	RunID          string  `json:"run_id"`
	Algo           string  `json:"algo"`
	EnvID          string  `json:"env_id"`
	SRLModel       string  `json:"srl_model"`
	Step           int     `json:"step"`
	Episodes       int     `json:"episodes"`
	BestMeanReward float64 `json:"best_mean_reward"`
	LastMeanReward float64 `json:"last_mean_reward"`
}

type Server struct {
	logger   *zap.SugaredLogger
	engine   *gin.Engine
	srv      *http.Server
	plotsDir string

	lock   sync.Mutex
	status Status
	conns  map[*websocket.Conn]bool
}

func NewServer(port int, plotsDir string, status Status, logger *zap.SugaredLogger) *Server {
	gin.SetMode(gin.ReleaseMode)
	engine := gin.New()
	engine.Use(gin.Recovery())

	s := &Server{
		logger:   logger,
		engine:   engine,
		plotsDir: plotsDir,
		status:   status,
		conns:    make(map[*websocket.Conn]bool),
	}

	engine.GET("/", s.handleIndex)
	engine.Static("/plots", plotsDir)
	engine.GET("/api/status", s.handleStatus)
	engine.GET("/ws", s.handleWS)

	s.srv = &http.Server{
		Addr:    fmt.Sprintf(":%d", port),
		Handler: engine,
	}
	return s
}

// Engine exposes the routes for tests
func (s *Server) Engine() *gin.Engine {
	return s.engine
}

func (s *Server) Start() {
	go func() {
		if err := s.srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			s.logger.Errorw("dashboard server stopped", "error", err)
		}
	}()
	s.logger.Infow("dashboard listening", "addr", s.srv.Addr)
}

func (s *Server) Shutdown(ctx context.Context) error {
	s.lock.Lock()
	for conn := range s.conns {
		conn.Close()
	}
	s.conns = make(map[*websocket.Conn]bool)
	s.lock.Unlock()
	return s.srv.Shutdown(ctx)
}

func (s *Server) handleIndex(c *gin.Context) {
	c.Data(http.StatusOK, "text/html; charset=utf-8", []byte(indexPage))
}

func (s *Server) handleStatus(c *gin.Context) {
	s.lock.Lock()
	status := s.status
	s.lock.Unlock()
	c.JSON(http.StatusOK, status)
}

func (s *Server) handleWS(c *gin.Context) {
	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		s.logger.Warnw("websocket upgrade failed", "error", err)
		return
	}
	s.lock.Lock()
	s.conns[conn] = true
	s.lock.Unlock()

	// drain incoming frames, unregister on close
	go func() {
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				s.lock.Lock()
				delete(s.conns, conn)
				s.lock.Unlock()
				conn.Close()
				return
			}
		}
	}()
}

// UpdateStatus applies fn to the run status and pushes it to the clients
func (s *Server) UpdateStatus(fn func(*Status)) {
	s.lock.Lock()
	fn(&s.status)
	status := s.status
	s.lock.Unlock()
	s.broadcast(wsMessage{Type: "status", Data: status})
}

// PublishEpisode streams a finished episode to the clients
func (s *Server) PublishEpisode(stat monitor.EpisodeStat) {
	s.broadcast(wsMessage{Type: "episode", Data: stat})
}

type wsMessage struct {
	Type string      `json:"type"`
	Data interface{} `json:"data"`
}

func (s *Server) broadcast(msg wsMessage) {
	bs, err := json.Marshal(msg)
	if err != nil {
		return
	}
	s.lock.Lock()
	defer s.lock.Unlock()
	for conn := range s.conns {
		conn.SetWriteDeadline(time.Now().Add(writeWait))
		if err := conn.WriteMessage(websocket.TextMessage, bs); err != nil {
			delete(s.conns, conn)
			conn.Close()
		}
	}
}

const indexPage = `<!DOCTYPE html>
<html>
<head><title>arm-rl-train</title></head>
<body>
<h2 id="run"></h2>
<p id="stats"></p>
<img id="reward" src="/plots/reward.png" width="480"/>
<img id="smoothed" src="/plots/reward_smoothed.png" width="480"/>
<img id="episodes" src="/plots/episodes.png" width="480"/>
<script>
function refreshPlots() {
  var ts = Date.now();
  ["reward", "smoothed", "episodes"].forEach(function (id) {
    var img = document.getElementById(id);
    img.src = img.src.split("?")[0] + "?t=" + ts;
  });
}
function showStatus(s) {
  document.getElementById("run").textContent = s.algo + " on " + s.env_id;
  document.getElementById("stats").textContent =
    "step " + s.step + ", episodes " + s.episodes +
    ", best mean reward " + s.best_mean_reward.toFixed(2);
}
fetch("/api/status").then(function (r) { return r.json(); }).then(showStatus);
var ws = new WebSocket("ws://" + location.host + "/ws");
ws.onmessage = function (ev) {
  var msg = JSON.parse(ev.data);
  if (msg.type === "status") { showStatus(msg.data); refreshPlots(); }
};
</script>
</body>
</html>`
