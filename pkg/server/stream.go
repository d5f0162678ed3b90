package server

import (
	"context"
	"encoding/binary"
	"image/color"
	"net/http"
	"time"

	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"
)

// RowHeaderSize is the length of the big-endian row index that prefixes
// every binary row message.
const RowHeaderSize = 4

// StreamDone is the final text message of a row stream.
type StreamDone struct {
	Done       bool    `json:"done"`
	Width      int     `json:"width"`
	Height     int     `json:"height"`
	Iterations int     `json:"iterations"`
	DurationMS float64 `json:"duration_ms"`
}

// handleRenderStream paints a frame and sends each row as soon as it is
// ready. Rows arrive in completion order; the index in each message places
// them. Invalid parameters are rejected before the upgrade.
func (s *Server) handleRenderStream(w http.ResponseWriter, r *http.Request) {
	opts, err := frameOptions(r.URL.Query(), s.Defaults)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	c, err := websocket.Accept(w, r, nil)
	if err != nil {
		s.Logger.Warn("websocket accept failed", "err", err)
		return
	}
	defer c.CloseNow()

	// The client never sends; CloseRead cancels ctx once it goes away.
	ctx, cancel := context.WithCancel(c.CloseRead(r.Context()))
	defer cancel()

	buf := make([]byte, RowHeaderSize+3*opts.PixelWidth)
	opts.Rows = func(y int, row []color.RGBA) {
		binary.BigEndian.PutUint32(buf, uint32(y))
		for i, px := range row {
			o := RowHeaderSize + 3*i
			buf[o], buf[o+1], buf[o+2] = px.R, px.G, px.B
		}
		if err := c.Write(ctx, websocket.MessageBinary, buf); err != nil {
			cancel()
		}
	}

	start := time.Now()
	if _, err := s.Runner.Paint(ctx, opts); err != nil {
		s.Logger.Debug("stream aborted", "id", RequestID(r.Context()), "err", err)
		c.Close(websocket.StatusInternalError, "render failed")
		return
	}

	done := StreamDone{
		Done:       true,
		Width:      opts.PixelWidth,
		Height:     opts.PixelHeight,
		Iterations: opts.MaxIterations,
		DurationMS: float64(time.Since(start).Microseconds()) / 1000,
	}
	if err := wsjson.Write(ctx, c, done); err != nil {
		return
	}
	c.Close(websocket.StatusNormalClosure, "")
}
