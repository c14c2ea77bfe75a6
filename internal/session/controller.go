// Package session владеет состоянием диалога и ведёт конвейер
// распознавание, чат, синтез.
package session

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"taiwa/internal/audio"
	"taiwa/internal/conversation"
	"taiwa/internal/metrics"
	"taiwa/internal/remote"
)

var (
	// ErrBusy возвращается, пока идёт прогон.
	ErrBusy = errors.New("a request is already in progress")
	// ErrEmptyTranscript прерывает прогон с пустой расшифровкой.
	ErrEmptyTranscript = errors.New("transcription is empty")
	// ErrNothingToSend возвращает Send без записи и без расшифровки.
	ErrNothingToSend = errors.New("nothing to send")
	// ErrClosed возвращается после Close.
	ErrClosed = errors.New("session is closed")
)

// Capturer записывает сессии с микрофона.
type Capturer interface {
	Start(onFinalized func(audio.Recording)) error
	Stop()
	IsRecording() bool
}

// Backend это удалённый сервис диалога.
type Backend interface {
	Transcribe(ctx context.Context, wav []byte) (string, error)
	Chat(ctx context.Context, messages []conversation.Message) (string, error)
	Synthesize(ctx context.Context, text string) (audio.Clip, error)
}

// Player воспроизводит синтезированную речь через один постоянный выход.
type Player interface {
	Play(clip audio.Clip) error
	Close()
}

// Observer получает метрики конвейера.
type Observer interface {
	ObserveStep(step string, d time.Duration)
	RunFinished(failedStep string)
	Recorded(d time.Duration)
	SetHistory(n int)
}

// StepError сообщает, какой шаг конвейера упал.
type StepError struct {
	Step string
	Err  error
}

func (e *StepError) Error() string { return e.Step + ": " + e.Err.Error() }

func (e *StepError) Unwrap() error { return e.Err }

// Controller единственный владелец состояния диалога.
type Controller struct {
	mu       sync.Mutex
	logger   *zap.Logger
	capture  Capturer
	backend  Backend
	player   Player
	observer Observer
	history  *conversation.History

	recording  bool
	started    time.Time
	loading    bool
	transcript string
	reply      string
	// epoch меняется при Clear; прогоны старой эпохи перестают писать состояние.
	epoch  uint64
	closed bool

	listeners []func()
	onError   func(error)

	// ctx отменяется в Close и прерывает запросы текущего прогона.
	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// New создаёт контроллер с пустой историей.
func New(logger *zap.Logger, capture Capturer, backend Backend, player Player) *Controller {
	if logger == nil {
		logger = zap.NewNop()
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &Controller{
		logger:   logger,
		capture:  capture,
		backend:  backend,
		player:   player,
		observer: nopObserver{},
		history:  conversation.NewHistory(),
		ctx:      ctx,
		cancel:   cancel,
	}
}

// SetObserver подключает метрики.
func (c *Controller) SetObserver(o Observer) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if o == nil {
		o = nopObserver{}
	}
	c.observer = o
}

// OnChange регистрирует обработчик, вызываемый после каждого изменения состояния.
func (c *Controller) OnChange(fn func()) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.listeners = append(c.listeners, fn)
}

// OnError задаёт обработчик ошибок прогонов и записи.
func (c *Controller) OnError(fn func(error)) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.onError = fn
}

// Snapshot возвращает копию текущего состояния.
func (c *Controller) Snapshot() State {
	c.mu.Lock()
	defer c.mu.Unlock()

	s := State{
		Recording:  c.recording,
		Loading:    c.loading,
		Transcript: c.transcript,
		Reply:      c.reply,
		History:    c.history.Messages(),
	}
	if c.recording {
		s.RecordingSince = c.started
	}
	return s
}

// StartRecording открывает новую сессию записи.
func (c *Controller) StartRecording() error {
	c.mu.Lock()
	switch {
	case c.closed:
		c.mu.Unlock()
		return ErrClosed
	case c.loading:
		c.mu.Unlock()
		return ErrBusy
	case c.recording:
		c.mu.Unlock()
		return nil
	}

	if err := c.capture.Start(c.finalized); err != nil {
		c.mu.Unlock()
		err = fmt.Errorf("start capture: %w", err)
		c.logger.Error("recording failed to start", zap.Error(err))
		c.reportError(err)
		return err
	}
	c.recording = true
	c.started = time.Now()
	c.mu.Unlock()

	c.logger.Info("recording started")
	c.changed()
	return nil
}

// StopRecording завершает сессию записи, что запускает прогон.
// Без записи ничего не делает.
func (c *Controller) StopRecording() {
	c.mu.Lock()
	recording := c.recording
	c.mu.Unlock()

	if !recording {
		return
	}
	// Stop синхронно передаёт запись в finalized.
	c.capture.Stop()
}

// ToggleRecording запускает или останавливает запись.
func (c *Controller) ToggleRecording() error {
	c.mu.Lock()
	recording := c.recording
	c.mu.Unlock()

	if recording {
		c.StopRecording()
		return nil
	}
	return c.StartRecording()
}

// Send отправляет текущий ввод. Во время записи останавливает её, и запись
// распознаётся; иначе текст расшифровки отправляется как есть.
func (c *Controller) Send() error {
	c.mu.Lock()
	switch {
	case c.closed:
		c.mu.Unlock()
		return ErrClosed
	case c.loading:
		c.mu.Unlock()
		return ErrBusy
	case c.recording:
		c.mu.Unlock()
		c.StopRecording()
		return nil
	}

	text := strings.TrimSpace(c.transcript)
	if text == "" {
		c.mu.Unlock()
		return ErrNothingToSend
	}
	c.loading = true
	epoch := c.epoch
	c.wg.Add(1)
	c.mu.Unlock()

	c.changed()
	go c.runText(epoch, text)
	return nil
}

// SetTranscript заменяет расшифровку отредактированным текстом.
func (c *Controller) SetTranscript(text string) error {
	c.mu.Lock()
	if c.loading {
		c.mu.Unlock()
		return ErrBusy
	}
	if c.transcript == text {
		c.mu.Unlock()
		return nil
	}
	c.transcript = text
	c.mu.Unlock()

	c.changed()
	return nil
}

// Clear очищает историю, ответ и расшифровку. Идущий прогон
// продолжается, но больше не меняет состояние.
func (c *Controller) Clear() {
	c.mu.Lock()
	c.history.Clear()
	c.reply = ""
	c.transcript = ""
	c.epoch++
	observer := c.observer
	c.mu.Unlock()

	observer.SetHistory(0)
	c.logger.Info("conversation cleared")
	c.changed()
}

// Wait блокирует до завершения всех начатых прогонов.
func (c *Controller) Wait() {
	c.wg.Wait()
}

// Close прерывает текущий прогон, останавливает запись и всегда освобождает плеер.
func (c *Controller) Close() {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	c.closed = true
	c.mu.Unlock()

	defer c.player.Close()
	c.cancel()
	c.capture.Stop()
	c.wg.Wait()
}

// finalized вызывается записью один раз на сессию.
func (c *Controller) finalized(rec audio.Recording) {
	c.mu.Lock()
	c.recording = false
	if c.closed || c.loading {
		c.mu.Unlock()
		c.changed()
		return
	}
	c.loading = true
	epoch := c.epoch
	observer := c.observer
	c.wg.Add(1)
	c.mu.Unlock()

	observer.Recorded(rec.Duration())
	c.logger.Info("recording stopped",
		zap.Int("fragments", len(rec.Fragments)),
		zap.Duration("duration", rec.Duration()))
	c.changed()
	go c.runVoice(epoch, rec)
}

type run struct {
	c      *Controller
	ctx    context.Context
	epoch  uint64
	logger *zap.Logger
	obs    Observer
}

func (c *Controller) newRun(epoch uint64) *run {
	id := uuid.NewString()
	c.mu.Lock()
	obs := c.observer
	c.mu.Unlock()
	return &run{
		c:      c,
		ctx:    remote.WithRequestID(c.ctx, id),
		epoch:  epoch,
		logger: c.logger.With(zap.String("request_id", id)),
		obs:    obs,
	}
}

func (c *Controller) runVoice(epoch uint64, rec audio.Recording) {
	defer c.wg.Done()
	r := c.newRun(epoch)

	var wav []byte
	err := r.step(metrics.StepEncode, func() (err error) {
		wav, err = rec.Encode()
		return err
	})
	if err != nil {
		r.fail(metrics.StepEncode, err)
		return
	}

	var text string
	err = r.step(metrics.StepTranscribe, func() (err error) {
		text, err = c.backend.Transcribe(r.ctx, wav)
		if err == nil && strings.TrimSpace(text) == "" {
			err = ErrEmptyTranscript
		}
		return err
	})
	if err != nil {
		r.fail(metrics.StepTranscribe, err)
		return
	}
	text = strings.TrimSpace(text)
	r.logger.Info("transcribed", zap.Int("chars", len(text)))

	if !r.update(func() {
		c.transcript = text
		r.appendLocked(conversation.User(text))
	}) {
		r.detached()
		return
	}
	r.converse()
}

func (c *Controller) runText(epoch uint64, text string) {
	defer c.wg.Done()
	r := c.newRun(epoch)

	if !r.update(func() {
		r.appendLocked(conversation.User(text))
	}) {
		r.detached()
		return
	}
	r.converse()
}

// converse выполняет чат и синтез по текущей истории.
func (r *run) converse() {
	c := r.c

	messages, ok := r.messages()
	if !ok {
		r.detached()
		return
	}

	var reply string
	err := r.step(metrics.StepChat, func() (err error) {
		reply, err = c.backend.Chat(r.ctx, messages)
		return err
	})
	if err != nil {
		r.fail(metrics.StepChat, err)
		return
	}
	if !r.update(func() {
		r.appendLocked(conversation.Assistant(reply))
		c.reply = reply
	}) {
		r.detached()
		return
	}

	var clip audio.Clip
	err = r.step(metrics.StepSynthesize, func() (err error) {
		clip, err = c.backend.Synthesize(r.ctx, reply)
		return err
	})
	if err != nil {
		r.fail(metrics.StepSynthesize, err)
		return
	}

	if !r.finish() {
		return
	}
	if err := c.player.Play(clip); err != nil {
		err = &StepError{Step: metrics.StepPlay, Err: err}
		r.logger.Error("playback failed", zap.Error(err))
		r.obs.RunFinished(metrics.StepPlay)
		c.reportError(err)
		return
	}
	r.obs.RunFinished("")
	r.logger.Info("run completed", zap.Int("reply_chars", len(reply)))
}

func (r *run) step(name string, fn func() error) error {
	start := time.Now()
	err := fn()
	r.obs.ObserveStep(name, time.Since(start))
	return err
}

// update применяет fn под блокировкой, если прогон не отсоединён.
func (r *run) update(fn func()) bool {
	c := r.c
	c.mu.Lock()
	if !r.currentLocked() {
		c.mu.Unlock()
		return false
	}
	fn()
	n := c.history.Len()
	c.mu.Unlock()

	r.obs.SetHistory(n)
	c.changed()
	return true
}

// appendLocked добавляет сообщение в историю; вызывается под c.mu.
func (r *run) appendLocked(m conversation.Message) {
	if err := r.c.history.Append(m); err != nil {
		r.logger.Error("history append rejected", zap.String("role", string(m.Role)), zap.Error(err))
	}
}

// messages возвращает историю для чата, если прогон не отсоединён.
func (r *run) messages() ([]conversation.Message, bool) {
	c := r.c
	c.mu.Lock()
	defer c.mu.Unlock()
	if !r.currentLocked() {
		return nil, false
	}
	return c.history.Messages(), true
}

// currentLocked сообщает, что прогон не отсоединён Clear или Close.
func (r *run) currentLocked() bool {
	return r.c.epoch == r.epoch && !r.c.closed
}

// finish снимает флаг загрузки. Для отсоединённого прогона возвращает false.
func (r *run) finish() bool {
	c := r.c
	c.mu.Lock()
	c.loading = false
	current := r.currentLocked()
	c.mu.Unlock()

	c.changed()
	if !current {
		r.detached()
	}
	return current
}

func (r *run) fail(step string, err error) {
	err = &StepError{Step: step, Err: err}
	r.logger.Error("dialogue run failed", zap.String("step", step), zap.Error(err))
	r.obs.RunFinished(step)

	c := r.c
	c.mu.Lock()
	c.loading = false
	current := r.currentLocked()
	c.mu.Unlock()

	c.changed()
	if !current {
		r.logger.Info("error of a discarded run not reported", zap.String("step", step))
		return
	}
	c.reportError(err)
}

func (r *run) detached() {
	c := r.c
	c.mu.Lock()
	c.loading = false
	c.mu.Unlock()

	r.logger.Info("run discarded")
	c.changed()
}

func (c *Controller) changed() {
	c.mu.Lock()
	listeners := make([]func(), len(c.listeners))
	copy(listeners, c.listeners)
	c.mu.Unlock()

	for _, fn := range listeners {
		fn()
	}
}

func (c *Controller) reportError(err error) {
	c.mu.Lock()
	fn := c.onError
	c.mu.Unlock()

	if fn != nil {
		fn(err)
	}
}

type nopObserver struct{}

func (nopObserver) ObserveStep(string, time.Duration) {}
func (nopObserver) RunFinished(string) {}
func (nopObserver) Recorded(time.Duration) {}
func (nopObserver) SetHistory(int) {}
