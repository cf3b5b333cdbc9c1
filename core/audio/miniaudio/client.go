package miniaudio

import (
	"context"
	"fmt"

	"github.com/gen2brain/malgo"
	"github.com/koscakluka/ema-jarvis/core/audio"
	"go.opentelemetry.io/otel/attribute"
)

// Player plays synthesized answers on the default output device.
type Player struct {
	// audioContext is only saved to be able to uninitialize it, it is an
	// ownership thing
	audioContext *malgo.AllocatedContext
	playbackClient
}

func NewPlayer() (*Player, error) {
	audioCtx, err := malgo.InitContext(
		nil,
		malgo.ContextConfig{},
		func(message string) { logger.Debug("malgo: " + message) },
	)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize audio context: %w", err)
	}

	return &Player{audioContext: audioCtx}, nil
}

// PlayFile plays a WAV file and blocks until it has been played or ctx is
// done.
func (p *Player) PlayFile(ctx context.Context, path string) error {
	ctx, span := tracer.Start(ctx, "play file")
	defer span.End()

	data, info, err := audio.ReadWAVFile(path)
	if err != nil {
		span.RecordError(err)
		return err
	}
	length := audio.Duration(len(data), info)
	span.SetAttributes(attribute.Float64("audio.duration", length.Seconds()))
	logger.Debug("playing file", "path", path, "duration", length)

	if err := p.Play(ctx, data, info); err != nil {
		span.RecordError(err)
		return err
	}
	return nil
}

// Play plays raw audio and blocks until it has been played or ctx is done.
func (p *Player) Play(ctx context.Context, data []byte, info audio.EncodingInfo) error {
	if len(data) == 0 {
		return nil
	}

	if p.playbackClient.info != info {
		_ = p.playbackClient.Uninit()
		if err := p.playbackClient.Init(p.audioContext, info); err != nil {
			return fmt.Errorf("failed to initialize playback client: %w", err)
		}
	}

	if err := p.playbackClient.Start(); err != nil {
		return fmt.Errorf("failed to start playback device: %w", err)
	}
	defer func() {
		if err := p.playbackClient.Stop(); err != nil {
			logger.Debug("failed to stop playback device", "error", err)
		}
	}()

	if err := p.playbackClient.SendAudio(data); err != nil {
		return err
	}

	played := make(chan struct{})
	p.playbackClient.Mark("end", func(string) { close(played) })

	select {
	case <-played:
		return nil
	case <-ctx.Done():
		p.playbackClient.ClearBuffer()
		return ctx.Err()
	}
}

func (p *Player) Close() {
	_ = p.playbackClient.Uninit()
	_ = p.audioContext.Uninit()
	p.audioContext.Free()
}
