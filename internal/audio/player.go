package audio

import (
	"errors"
	"fmt"
	"sync"

	"github.com/gordonklaus/portaudio"
	"go.uber.org/zap"
)

// ErrPlayerClosed возвращается при Play после Close.
var ErrPlayerClosed = errors.New("player is closed")

// Player - единственный постоянный выход воспроизведения.
// Новый клип заменяет текущий.
type Player struct {
	mu     sync.Mutex
	logger *zap.Logger
	stop   chan struct{}
	done   chan struct{}
	closed bool
}

// NewPlayer инициализирует PortAudio для воспроизведения.
func NewPlayer(logger *zap.Logger) (*Player, error) {
	if err := portaudio.Initialize(); err != nil {
		return nil, err
	}
	return &Player{logger: logger}, nil
}

// Play декодирует клип, останавливает текущее воспроизведение и сразу начинает новое.
func (p *Player) Play(c Clip) error {
	pcm, err := DecodeClip(c)
	if err != nil {
		return err
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	if p.closed {
		return ErrPlayerClosed
	}
	p.stopLocked()

	buf := make([]int16, FramesPerBuffer*pcm.Channels)
	stream, err := portaudio.OpenDefaultStream(
		0,                       // входные каналы
		pcm.Channels,            // выходные каналы
		float64(pcm.SampleRate), // частота дискретизации
		FramesPerBuffer,         // кадров на буфер
		buf,
	)
	if err != nil {
		return fmt.Errorf("open output stream: %w", err)
	}
	if err := stream.Start(); err != nil {
		stream.Close()
		return fmt.Errorf("start output stream: %w", err)
	}

	p.stop = make(chan struct{})
	p.done = make(chan struct{})
	go p.playLoop(stream, buf, pcm.Samples, p.stop, p.done)

	p.logger.Debug("playback started",
		zap.String("content_type", c.ContentType),
		zap.Float64("seconds", pcm.Duration()))
	return nil
}

func (p *Player) playLoop(stream *portaudio.Stream, buf, samples []int16, stop, done chan struct{}) {
	defer close(done)
	defer stream.Close()
	defer stream.Stop()

	for off := 0; off < len(samples); off += len(buf) {
		select {
		case <-stop:
			return
		default:
		}

		n := copy(buf, samples[off:])
		for i := n; i < len(buf); i++ {
			buf[i] = 0
		}
		if err := stream.Write(); err != nil {
			p.logger.Debug("audio write failed", zap.Error(err))
			return
		}
	}
}

// IsPlaying возвращает true пока клип воспроизводится.
func (p *Player) IsPlaying() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.done == nil {
		return false
	}
	select {
	case <-p.done:
		return false
	default:
		return true
	}
}

// Stop прерывает текущее воспроизведение.
func (p *Player) Stop() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.stopLocked()
}

func (p *Player) stopLocked() {
	if p.stop == nil {
		return
	}
	close(p.stop)
	<-p.done
	p.stop = nil
	p.done = nil
}

// Close останавливает воспроизведение и освобождает выход.
func (p *Player) Close() {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.closed {
		return
	}
	p.stopLocked()
	p.closed = true
	portaudio.Terminate()
}
