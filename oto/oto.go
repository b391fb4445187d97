// Package oto plays rendered stereo buffers through the system audio device.
package oto

import (
	"bytes"
	"fmt"
	"time"

	"github.com/ebitengine/oto/v3"
	"github.com/idtap/swara/internal/logger"
)

// Context owns the audio device. Only one can exist per process.
type Context struct {
	context    *oto.Context
	sampleRate int
}

// Playback is a buffer being played. Wait blocks until it has finished.
type Playback struct {
	player *oto.Player
}

const pollInterval = 10 * time.Millisecond

// NewContext opens the audio device for interleaved stereo at sampleRate and
// waits until it is ready.
func NewContext(sampleRate int) (*Context, error) {
	context, ready, err := oto.NewContext(&oto.NewContextOptions{
		SampleRate:   sampleRate,
		ChannelCount: 2,
		Format:       oto.FormatSignedInt16LE,
	})
	if err != nil {
		return nil, fmt.Errorf("cannot create oto context: %w", err)
	}
	<-ready
	logger.Debug("audio device ready", logger.Fields{"sampleRate": sampleRate})
	return &Context{context: context, sampleRate: sampleRate}, nil
}

func (c *Context) SampleRate() int {
	return c.sampleRate
}

// Play starts playing the buffer and returns immediately.
func (c *Context) Play(buffer []float32) *Playback {
	data := FloatBufferTo16BitLE(buffer, make([]byte, 0, 2*len(buffer)))
	player := c.context.NewPlayer(bytes.NewReader(data))
	player.Play()
	return &Playback{player: player}
}

// Wait blocks until the buffer has been played, then releases the player.
func (p *Playback) Wait() error {
	for p.player.IsPlaying() {
		time.Sleep(pollInterval)
	}
	return p.Close()
}

func (p *Playback) Close() error {
	if err := p.player.Close(); err != nil {
		return fmt.Errorf("cannot close oto player: %w", err)
	}
	return nil
}
