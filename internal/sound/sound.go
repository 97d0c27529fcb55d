// Package sound runs audio feedback on a dedicated worker goroutine.
// The control loop enqueues commands without ever blocking; the worker
// issues fire-and-forget playback requests in FIFO order.
package sound

import (
	"fmt"
	"log"
	"path/filepath"
	"sync"
	"sync/atomic"
)

// Command is a sound request placed on the worker queue.
type Command int

const (
	CmdDoorbell Command = iota + 1
	CmdAlarm
	CmdCorrect
	CmdIncorrect
	CmdStop
)

func (c Command) String() string {
	switch c {
	case CmdDoorbell:
		return "DOORBELL"
	case CmdAlarm:
		return "ALARM"
	case CmdCorrect:
		return "CORRECT"
	case CmdIncorrect:
		return "INCORRECT"
	case CmdStop:
		return "STOP"
	}
	return fmt.Sprintf("Command(%d)", int(c))
}

// QueueSize is the ring size of the command queue. One slot is reserved,
// so at most QueueSize-1 commands wait at once.
const QueueSize = 16

// Player starts playback of audio assets.
type Player interface {
	// Play starts playing asset and returns without waiting for it to finish.
	Play(asset string) error

	// StopAll terminates anything currently playing.
	StopAll() error
}

// Assets maps each playable command to a file.
type Assets struct {
	Doorbell  string
	Alarm     string
	Correct   string
	Incorrect string
}

// DefaultAssets returns the standard WAV files under dir.
func DefaultAssets(dir string) Assets {
	return Assets{
		Doorbell:  filepath.Join(dir, "dingdong.wav"),
		Alarm:     filepath.Join(dir, "alarm.wav"),
		Correct:   filepath.Join(dir, "correct.wav"),
		Incorrect: filepath.Join(dir, "incorrect.wav"),
	}
}

func (a Assets) lookup(c Command) (string, bool) {
	switch c {
	case CmdDoorbell:
		return a.Doorbell, true
	case CmdAlarm:
		return a.Alarm, true
	case CmdCorrect:
		return a.Correct, true
	case CmdIncorrect:
		return a.Incorrect, true
	}
	return "", false
}

// Worker drains a bounded command queue on its own goroutine.
type Worker struct {
	player Player
	assets Assets

	queue chan Command
	quit  chan struct{}
	done  chan struct{}

	mu      sync.Mutex
	started bool
	stopped bool

	dropped atomic.Uint64
}

// NewWorker creates a worker. Commands may be enqueued before Start.
func NewWorker(player Player, assets Assets) *Worker {
	return &Worker{
		player: player,
		assets: assets,
		queue:  make(chan Command, QueueSize-1),
		quit:   make(chan struct{}),
		done:   make(chan struct{}),
	}
}

// Start launches the worker goroutine. Calling Start more than once, or
// after Stop, has no effect.
func (w *Worker) Start() {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.started || w.stopped {
		return
	}
	w.started = true
	go w.run()
}

// Enqueue adds c to the queue without blocking. It returns false and drops
// the command if the queue is full or the worker has been stopped.
func (w *Worker) Enqueue(c Command) bool {
	select {
	case <-w.quit:
		return false
	default:
	}

	select {
	case w.queue <- c:
		return true
	default:
		w.dropped.Add(1)
		return false
	}
}

// Stop signals the worker to exit and waits for it. Commands still queued
// are discarded.
func (w *Worker) Stop() {
	w.mu.Lock()
	if w.stopped {
		w.mu.Unlock()
		return
	}
	w.stopped = true
	started := w.started
	close(w.quit)
	w.mu.Unlock()

	if started {
		<-w.done
	}
}

// Pending returns the number of queued commands.
func (w *Worker) Pending() int {
	return len(w.queue)
}

// Dropped returns the number of commands discarded because the queue was full.
func (w *Worker) Dropped() uint64 {
	return w.dropped.Load()
}

func (w *Worker) run() {
	defer close(w.done)
	for {
		select {
		case <-w.quit:
			return
		case cmd := <-w.queue:
			// Shutdown wins over work that arrived at the same time.
			select {
			case <-w.quit:
				return
			default:
			}
			w.dispatch(cmd)
		}
	}
}

func (w *Worker) dispatch(cmd Command) {
	if cmd == CmdStop {
		if err := w.player.StopAll(); err != nil {
			log.Printf("sound: stop: %v", err)
		}
		return
	}

	asset, ok := w.assets.lookup(cmd)
	if !ok {
		log.Printf("sound: unknown command %v", cmd)
		return
	}
	if err := w.player.Play(asset); err != nil {
		log.Printf("sound: play %s: %v", asset, err)
	}
}
