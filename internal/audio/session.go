package audio

import (
	"sync"
	"time"
)

// Fragment - один буфер PCM16, прочитанный из входного потока.
type Fragment []int16

// Session накапливает фрагменты одной записи (от старта до стопа).
// После Finalize сессия пуста и новые фрагменты не принимает.
type Session struct {
	mu         sync.Mutex
	sampleRate int
	fragments  []Fragment
	finalized  bool
}

// NewSession создаёт пустую сессию записи.
func NewSession(sampleRate int) *Session {
	return &Session{sampleRate: sampleRate}
}

// Add копирует фрагмент в сессию. Возвращает false, если сессия уже закрыта.
func (s *Session) Add(samples []int16) bool {
	if len(samples) == 0 {
		return true
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.finalized {
		return false
	}
	frag := make(Fragment, len(samples))
	copy(frag, samples)
	s.fragments = append(s.fragments, frag)
	return true
}

// Len возвращает количество накопленных фрагментов.
func (s *Session) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.fragments)
}

// Finalize отдаёт накопленные фрагменты ровно один раз и очищает буфер.
// Повторный вызов возвращает ok=false.
func (s *Session) Finalize() (Recording, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.finalized {
		return Recording{}, false
	}
	s.finalized = true
	rec := Recording{
		Fragments:  s.fragments,
		SampleRate: s.sampleRate,
	}
	s.fragments = nil
	return rec, true
}

// Recording - завершённая запись: фрагменты одной сессии в исходном порядке.
type Recording struct {
	Fragments  []Fragment
	SampleRate int
}

// Samples склеивает фрагменты в один буфер.
func (r Recording) Samples() []int16 {
	n := 0
	for _, f := range r.Fragments {
		n += len(f)
	}
	out := make([]int16, 0, n)
	for _, f := range r.Fragments {
		out = append(out, f...)
	}
	return out
}

// Duration возвращает длительность записи.
func (r Recording) Duration() time.Duration {
	if r.SampleRate <= 0 {
		return 0
	}
	n := 0
	for _, f := range r.Fragments {
		n += len(f)
	}
	return time.Duration(n) * time.Second / time.Duration(r.SampleRate)
}

// Empty возвращает true, если в записи нет ни одного сэмпла.
func (r Recording) Empty() bool {
	for _, f := range r.Fragments {
		if len(f) > 0 {
			return false
		}
	}
	return true
}

// Encode собирает запись в один WAV-payload для загрузки.
func (r Recording) Encode() ([]byte, error) {
	return EncodeWAV(r.Samples(), r.SampleRate)
}
