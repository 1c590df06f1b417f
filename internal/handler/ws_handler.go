package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/stemsi/survey-seeder/internal/config"
	"github.com/stemsi/survey-seeder/internal/model"
	"github.com/stemsi/survey-seeder/internal/response"
	"github.com/stemsi/survey-seeder/internal/service"
	ws "github.com/stemsi/survey-seeder/internal/websocket"
)

const keepAliveInterval = 30 * time.Second

// buildUpgrader creates a WebSocket upgrader with origin validation.
// allowedOrigins comes from config.Config.AllowedOrigins.
// An empty slice permits all origins (development mode).
func buildUpgrader(allowedOrigins []string) websocket.Upgrader {
	return websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin: func(r *http.Request) bool {
			if len(allowedOrigins) == 0 {
				return true
			}
			origin := r.Header.Get("Origin")
			for _, allowed := range allowedOrigins {
				if strings.EqualFold(allowed, origin) {
					return true
				}
			}
			return false
		},
	}
}

// RunLookup loads seed runs by id.
type RunLookup interface {
	Get(ctx context.Context, runID string) (*model.SeedRun, error)
}

// WSHandler streams seed run progress from Redis Pub/Sub to clients.
type WSHandler struct {
	rdb      *redis.Client
	runs     RunLookup
	log      zerolog.Logger
	upgrader websocket.Upgrader
}

// NewWSHandler creates a new WSHandler.
func NewWSHandler(rdb *redis.Client, runs RunLookup, log zerolog.Logger, allowedOrigins []string) *WSHandler {
	return &WSHandler{
		rdb:      rdb,
		runs:     runs,
		log:      log.With().Str("component", "ws_handler").Logger(),
		upgrader: buildUpgrader(allowedOrigins),
	}
}

// SeedProgressStream godoc
// WS /ws/v1/admin/seed/runs/:id/progress?token=...
// Sends a snapshot of the run, then every progress event until the run
// finishes or the client disconnects.
func (h *WSHandler) SeedProgressStream(c *gin.Context) {
	runID := c.Param("id")
	ctx, cancel := context.WithCancel(c.Request.Context())
	defer cancel()

	// Subscribe before loading the run so no event slips between the two.
	pubsub := h.rdb.Subscribe(ctx, config.CacheKey.SeedProgressChannel(runID))
	defer pubsub.Close()

	run, ok := h.loadRun(c, runID)
	if !ok {
		return
	}

	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.log.Error().Err(err).Msg("WebSocket upgrade failed")
		return
	}
	defer conn.Close()

	wsLog := h.log.With().Str("run_id", runID).Logger()
	wsLog.Info().Msg("Progress listener connected")

	if err := ws.WriteTyped(conn, ws.SnapshotResponse{Event: ws.EventSnapshot, Run: run}); err != nil {
		return
	}
	if finished(run) {
		return
	}

	pongs := make(chan struct{}, 1)
	go h.readLoop(conn, cancel, pongs, wsLog)

	ch := pubsub.Channel()
	pingTicker := time.NewTicker(ws.PingPeriod)
	defer pingTicker.Stop()

	for {
		select {
		case <-ctx.Done():
			wsLog.Debug().Msg("Progress listener disconnected")
			return

		case <-pongs:
			if err := ws.WriteTyped(conn, ws.PongResponse{Event: ws.EventPong}); err != nil {
				return
			}

		case msg, ok := <-ch:
			if !ok {
				return
			}
			var evt model.ProgressEvent
			if err := json.Unmarshal([]byte(msg.Payload), &evt); err != nil {
				wsLog.Warn().Err(err).Msg("Dropping malformed progress payload")
				continue
			}
			if err := ws.WriteTyped(conn, ws.ProgressResponse{Event: ws.ProgressEventFor(evt), Progress: evt}); err != nil {
				return
			}
			if evt.Kind == model.ProgressRunFinished {
				conn.WriteControl(websocket.CloseMessage,
					websocket.FormatCloseMessage(websocket.CloseNormalClosure, "run finished"),
					time.Now().Add(ws.WriteWait))
				return
			}

		case <-pingTicker.C:
			if err := ws.WritePing(conn); err != nil {
				return
			}
		}
	}
}

// readLoop handles client pings and notices disconnects. gorilla allows one
// concurrent reader, so all reads happen here.
func (h *WSHandler) readLoop(conn *websocket.Conn, cancel context.CancelFunc, pongs chan<- struct{}, log zerolog.Logger) {
	defer cancel()
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(ws.PongWait))
	})
	for {
		var msg ws.RequestEnvelope
		if err := ws.ReadJSON(conn, &msg); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				log.Warn().Err(err).Msg("Unexpected close")
			}
			return
		}
		if msg.Action == ws.ActionPing {
			select {
			case pongs <- struct{}{}:
			default:
			}
		}
	}
}

// SeedProgressSSE godoc
// GET /api/v1/admin/seed/runs/:id/events
// Server-Sent Events variant of the progress stream for clients without WebSocket.
func (h *WSHandler) SeedProgressSSE(c *gin.Context) {
	runID := c.Param("id")
	reqCtx := c.Request.Context()

	pubsub := h.rdb.Subscribe(reqCtx, config.CacheKey.SeedProgressChannel(runID))
	defer pubsub.Close()

	run, ok := h.loadRun(c, runID)
	if !ok {
		return
	}

	c.Writer.Header().Set("Content-Type", "text/event-stream")
	c.Writer.Header().Set("Cache-Control", "no-cache")
	c.Writer.Header().Set("Connection", "keep-alive")

	snapshot, _ := json.Marshal(ws.SnapshotResponse{Event: ws.EventSnapshot, Run: run})
	writeSSE(c, snapshot)
	if finished(run) {
		return
	}

	ch := pubsub.Channel()
	keepAlive := time.NewTicker(keepAliveInterval)
	defer keepAlive.Stop()
	pingPayload, _ := json.Marshal(ws.PongResponse{Event: ws.EventPong})

	for {
		select {
		case <-reqCtx.Done():
			return

		case msg, ok := <-ch:
			if !ok {
				return
			}
			// Payloads are already JSON; forward them untouched.
			writeSSE(c, []byte(msg.Payload))
			var evt model.ProgressEvent
			if json.Unmarshal([]byte(msg.Payload), &evt) == nil && evt.Kind == model.ProgressRunFinished {
				return
			}

		case <-keepAlive.C:
			writeSSE(c, pingPayload)
		}
	}
}

func (h *WSHandler) loadRun(c *gin.Context, runID string) (*model.SeedRun, bool) {
	run, err := h.runs.Get(c.Request.Context(), runID)
	if err == nil {
		return run, true
	}
	if errors.Is(err, service.ErrRunNotFound) {
		response.Fail(c, http.StatusNotFound, response.ErrRunNotFound)
	} else {
		h.log.Error().Err(err).Str("run_id", runID).Msg("Failed to load seed run")
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
	}
	return nil, false
}

func writeSSE(c *gin.Context, payload []byte) {
	c.Writer.Write([]byte("data: "))
	c.Writer.Write(payload)
	c.Writer.Write([]byte("\n\n"))
	c.Writer.Flush()
}

func finished(run *model.SeedRun) bool {
	return run.Status == model.SeedRunCompleted || run.Status == model.SeedRunFailed
}
