package scanner

import (
	"fmt"
	"sync"
	"time"

	"github.com/openhauscore/kc868/internal/board"
	"github.com/openhauscore/kc868/internal/bus"
	"go.uber.org/zap"
)

// Scanner is the key-scan task: it polls both input expanders on a
// fixed tick, diffs each read against the previous one, and toggles
// the relay mapped to every input that just went active. A held
// button fires exactly once; only a fresh falling edge toggles.
type Scanner struct {
	board    *board.Board
	interval time.Duration
	logger   *zap.Logger
	onToggle func()

	stopChan chan struct{}
	wg       sync.WaitGroup
	running  bool
	mu       sync.Mutex

	prev map[uint16]byte
}

// New creates a scanner. onToggle may be nil; when set it runs after
// every fired relay toggle (the lifecycle uses it to push state to
// websocket clients).
func New(b *board.Board, interval time.Duration, logger *zap.Logger, onToggle func()) *Scanner {
	return &Scanner{
		board:    b,
		interval: interval,
		logger:   logger,
		onToggle: onToggle,
		stopChan: make(chan struct{}),
		prev:     make(map[uint16]byte, 2),
	}
}

// Start seeds the previous-scan snapshots with one blocking read per
// valid input expander, then starts the scan loop.
func (s *Scanner) Start() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.running {
		return nil
	}

	for _, dev := range s.board.InputDevices() {
		if !dev.Valid() {
			continue
		}
		value, err := dev.ReadAll()
		if err != nil {
			s.logger.Warn("Initial input read failed",
				zap.String("address", fmt.Sprintf("0x%02x", dev.Addr())),
				zap.Error(err))
			continue
		}
		s.prev[dev.Addr()] = value
	}

	s.running = true
	s.wg.Add(1)

	go s.scanLoop()

	s.logger.Info("Key scanner started", zap.Duration("interval", s.interval))

	return nil
}

// Stop stops the scan loop. The scanner normally runs for the process
// lifetime; Stop exists for shutdown ordering and tests.
func (s *Scanner) Stop() {
	s.mu.Lock()
	if !s.running {
		s.mu.Unlock()
		return
	}
	s.mu.Unlock()

	close(s.stopChan)
	s.wg.Wait()

	s.mu.Lock()
	s.running = false
	s.mu.Unlock()

	s.logger.Info("Key scanner stopped")
}

func (s *Scanner) scanLoop() {
	defer s.wg.Done()

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-s.stopChan:
			return
		case <-ticker.C:
			s.scanOnce()
		}
	}
}

// scanOnce runs one pass over both input expanders. Any failure is
// contained here: a failed read skips that expander and keeps its
// snapshot, and a panic is recovered, so no single bad transaction
// can kill the scan task.
func (s *Scanner) scanOnce() {
	defer func() {
		if r := recover(); r != nil {
			s.logger.Error("Scan iteration panicked", zap.Any("panic", r))
		}
	}()

	for _, dev := range s.board.InputDevices() {
		if !dev.Valid() {
			continue
		}

		prev, seeded := s.prev[dev.Addr()]
		current, err := dev.ReadAll()
		if err != nil {
			s.logger.Debug("Input read failed, keeping snapshot",
				zap.String("address", fmt.Sprintf("0x%02x", dev.Addr())),
				zap.Error(err))
			continue
		}
		if !seeded {
			// A device that missed its seed read starts diffing from
			// its first good value, without treating it as edges.
			s.prev[dev.Addr()] = current
			continue
		}

		diff := prev ^ current
		for i := uint8(0); i < 8; i++ {
			if diff&(1<<i) == 0 || !bus.LevelAsserted(current, i) {
				continue
			}
			s.fire(dev.Addr(), i)
		}

		s.prev[dev.Addr()] = current
	}
}

// fire toggles the relay mapped to one freshly asserted input.
func (s *Scanner) fire(addr uint16, bit uint8) {
	relayID, ok := s.board.Registry().ResolveInput(addr, bit)
	if !ok {
		return
	}

	next, err := s.board.ToggleRelay(relayID)
	if err != nil {
		s.logger.Warn("Edge toggle failed",
			zap.String("relay", relayID),
			zap.Error(err))
		return
	}

	s.logger.Info("Input edge toggled relay",
		zap.String("address", fmt.Sprintf("0x%02x", addr)),
		zap.Uint8("input", bit),
		zap.String("relay", relayID),
		zap.Bool("on", next))

	if s.onToggle != nil {
		s.onToggle()
	}
}

// IsRunning gibt an ob der Scanner läuft
func (s *Scanner) IsRunning() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.running
}
