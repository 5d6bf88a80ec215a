// SPDX-License-Identifier: EPL-2.0

package diag

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/ik5/beatbox/audio"
	"github.com/ik5/beatbox/control"
	"github.com/ik5/beatbox/formats/wav"
	"github.com/ik5/beatbox/mixer"
	"github.com/ik5/beatbox/sequencer"
	"github.com/ik5/beatbox/timing"
)

// Controller is the sequencer surface exposed over HTTP.
type Controller interface {
	control.Target
	ModeName(m sequencer.Mode) string
	HalfBeatMs() int
	Stats() sequencer.Stats
}

// MixerStats reports the mixing engine counters.
type MixerStats interface {
	Stats() mixer.Stats
}

// API serves the HTTP endpoints. Mixer and Kit may be nil.
type API struct {
	Controller Controller
	Mixer      MixerStats
	Kit        *audio.Registry
	Recorder   *timing.Recorder
	Logger     *slog.Logger
}

type valueRequest struct {
	Value *int `json:"value" binding:"required"`
}

// Router builds the gin engine:
//
//	GET  /api/status
//	GET  /api/stats/:kind    (audio, beat or accel; read-and-clear)
//	POST /api/mode           {"value": n}
//	POST /api/tempo          {"value": n}
//	POST /api/volume         {"value": n}
//	POST /api/play/:sound    (number or name)
//	GET  /api/kit/:sound     (the loaded sample as a WAV file)
//
// The gin mode is process-wide; callers set it with gin.SetMode beforehand.
func (a *API) Router() *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())

	api := r.Group("/api")
	api.GET("/status", a.status)
	api.GET("/stats/:kind", a.stats)
	api.POST("/mode", a.setMode)
	api.POST("/tempo", a.setTempo)
	api.POST("/volume", a.setVolume)
	api.POST("/play/:sound", a.play)
	api.GET("/kit/:sound", a.kitAsset)

	return r
}

func (a *API) status(c *gin.Context) {
	ctl := a.Controller
	mode := ctl.Mode()

	resp := gin.H{
		"mode":         int(mode),
		"mode_name":    ctl.ModeName(mode),
		"bpm":          ctl.BPM(),
		"half_beat_ms": ctl.HalfBeatMs(),
		"volume":       ctl.Volume(),
		"sequencer":    ctl.Stats(),
	}
	if a.Mixer != nil {
		resp["mixer"] = a.Mixer.Stats()
	}

	c.JSON(http.StatusOK, resp)
}

func (a *API) stats(c *gin.Context) {
	kind, err := timing.ParseKind(c.Param("kind"))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		return
	}

	st := a.Recorder.GetAndReset(kind)

	c.JSON(http.StatusOK, gin.H{
		"kind":   kind.String(),
		"count":  st.Count,
		"min_ms": st.MinMs(),
		"max_ms": st.MaxMs(),
		"avg_ms": st.AvgMs(),
	})
}

func bindValue(c *gin.Context) (int, bool) {
	var req valueRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": ErrMissingValue.Error()})
		return 0, false
	}

	return *req.Value, true
}

func (a *API) setMode(c *gin.Context) {
	v, ok := bindValue(c)
	if !ok {
		return
	}

	if err := a.Controller.SetMode(sequencer.Mode(v)); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	mode := a.Controller.Mode()
	c.JSON(http.StatusOK, gin.H{"value": int(mode), "mode_name": a.Controller.ModeName(mode)})
}

func (a *API) setTempo(c *gin.Context) {
	v, ok := bindValue(c)
	if !ok {
		return
	}

	a.Controller.SetBPM(v)
	c.JSON(http.StatusOK, gin.H{"value": a.Controller.BPM()})
}

func (a *API) setVolume(c *gin.Context) {
	v, ok := bindValue(c)
	if !ok {
		return
	}

	a.Controller.SetVolume(v)
	c.JSON(http.StatusOK, gin.H{"value": a.Controller.Volume()})
}

func (a *API) play(c *gin.Context) {
	sound, err := audio.ParseSound(c.Param("sound"))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		return
	}

	if err := a.Controller.Play(sound); err != nil {
		a.logger().Debug("http play dropped", "sound", sound, "error", err)
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"value": int(sound), "sound": sound.String()})
}

func (a *API) kitAsset(c *gin.Context) {
	sound, err := audio.ParseSound(c.Param("sound"))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		return
	}

	var asset *audio.Asset
	if a.Kit != nil {
		asset, _ = a.Kit.Get(sound)
	}
	if asset == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": fmt.Sprintf("%s is not loaded", sound)})
		return
	}

	c.Header("Content-Type", "audio/wav")
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", sound.String()+".wav"))
	c.Status(http.StatusOK)

	if err := wav.WriteAsset(c.Writer, asset); err != nil {
		a.logger().Warn("kit download failed", "sound", sound, "error", err)
	}
}

func (a *API) logger() *slog.Logger {
	if a.Logger == nil {
		return slog.Default()
	}
	return a.Logger
}

// Server runs an http.Server on its own goroutine.
type Server struct {
	srv  *http.Server
	ln   net.Listener
	log  *slog.Logger
	done chan struct{}

	started   atomic.Bool
	closeOnce sync.Once
}

func Listen(addr string, h http.Handler, log *slog.Logger) (*Server, error) {
	if log == nil {
		log = slog.Default()
	}

	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, fmt.Errorf("http listen %s: %w", addr, err)
	}

	return &Server{
		srv:  &http.Server{Handler: h, ReadHeaderTimeout: 5 * time.Second},
		ln:   ln,
		log:  log.With("component", "http"),
		done: make(chan struct{}),
	}, nil
}

func (s *Server) Addr() net.Addr {
	return s.ln.Addr()
}

func (s *Server) Start() {
	if !s.started.CompareAndSwap(false, true) {
		return
	}
	s.log.Info("serving diagnostics", "addr", s.Addr().String())

	go func() {
		defer close(s.done)

		if err := s.srv.Serve(s.ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.log.Error("http server stopped", "error", err)
		}
	}()
}

// Close shuts the server down, waiting up to two seconds for requests in
// flight.
func (s *Server) Close() error {
	var err error
	s.closeOnce.Do(func() {
		if !s.started.Load() {
			err = s.ln.Close()
			return
		}

		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()

		err = s.srv.Shutdown(ctx)
		<-s.done
	})

	return err
}
