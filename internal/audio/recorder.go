// Package audio предоставляет запись с микрофона, кодирование и воспроизведение.
package audio

import (
	"sync"
	"time"

	"github.com/gordonklaus/portaudio"
	"go.uber.org/zap"
)

const (
	// SampleRate - частота дискретизации записи (единственный поддерживаемый кодек).
	SampleRate = 16000
	// Channels - количество каналов записи (mono).
	Channels = 1
	// FramesPerBuffer - размер одного фрагмента.
	FramesPerBuffer = 1024
)

// Recorder записывает аудио с микрофона фрагментами.
type Recorder struct {
	mu          sync.Mutex
	logger      *zap.Logger
	stream      *portaudio.Stream
	buffer      []int16
	session     *Session
	onFinalized func(Recording)
	level       float32
	started     time.Time
	running     bool
	done        chan struct{}
}

// New инициализирует PortAudio и создаёт Recorder.
func New(logger *zap.Logger) (*Recorder, error) {
	if err := portaudio.Initialize(); err != nil {
		return nil, err
	}

	return &Recorder{
		logger: logger,
		buffer: make([]int16, FramesPerBuffer),
	}, nil
}

// Start открывает устройство ввода и начинает новую сессию записи.
// onFinalized вызывается ровно один раз после Stop с фрагментами этой сессии.
func (r *Recorder) Start(onFinalized func(Recording)) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.running {
		return nil
	}

	stream, err := portaudio.OpenDefaultStream(
		Channels,        // входные каналы
		0,               // выходные каналы
		SampleRate,      // частота дискретизации
		FramesPerBuffer, // кадров на буфер
		r.buffer,        // буфер
	)
	if err != nil {
		return err
	}

	if err := stream.Start(); err != nil {
		stream.Close()
		return err
	}

	r.stream = stream
	r.session = NewSession(SampleRate)
	r.onFinalized = onFinalized
	r.level = 0
	r.started = time.Now()
	r.done = make(chan struct{})
	r.running = true

	go r.recordLoop(stream, r.session, r.done)

	return nil
}

func (r *Recorder) recordLoop(stream *portaudio.Stream, session *Session, done chan struct{}) {
	defer close(done)

	for {
		if !r.IsRecording() {
			return
		}

		// Проверяем доступность данных, чтобы Read не блокировал Stop
		available, err := stream.AvailableToRead()
		if err != nil || available < FramesPerBuffer {
			time.Sleep(10 * time.Millisecond)
			continue
		}

		if err := stream.Read(); err != nil {
			if r.IsRecording() {
				r.logger.Debug("audio read failed", zap.Error(err))
			}
			time.Sleep(10 * time.Millisecond)
			continue
		}

		r.mu.Lock()
		if r.running && r.session == session {
			session.Add(r.buffer)
			r.level = Level(r.buffer)
		}
		r.mu.Unlock()
	}
}

// Stop завершает сессию. Без активной сессии ничего не делает.
func (r *Recorder) Stop() {
	r.mu.Lock()
	if !r.running {
		r.mu.Unlock()
		return
	}

	r.running = false
	stream := r.stream
	r.stream = nil
	session := r.session
	r.session = nil
	callback := r.onFinalized
	r.onFinalized = nil
	done := r.done
	r.level = 0
	r.mu.Unlock()

	// recordLoop проверяет running каждые 10ms
	if done != nil {
		select {
		case <-done:
		case <-time.After(100 * time.Millisecond):
		}
	}

	if stream != nil {
		stream.Stop()
		stream.Close()
	}

	rec, ok := session.Finalize()
	if !ok {
		return
	}
	r.logger.Debug("recording finalized",
		zap.Int("fragments", len(rec.Fragments)),
		zap.Duration("duration", rec.Duration()))
	if callback != nil {
		callback(rec)
	}
}

// Close останавливает запись и освобождает PortAudio.
func (r *Recorder) Close() {
	r.Stop()
	portaudio.Terminate()
}

// IsRecording возвращает true если идёт запись.
func (r *Recorder) IsRecording() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.running
}

// Level возвращает уровень громкости последнего фрагмента (0..1).
func (r *Recorder) Level() float32 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.level
}

// Elapsed возвращает длительность текущей записи.
func (r *Recorder) Elapsed() time.Duration {
	r.mu.Lock()
	defer r.mu.Unlock()
	if !r.running {
		return 0
	}
	return time.Since(r.started)
}
