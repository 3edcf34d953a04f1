package system

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/openhauscore/kc868/internal/api/rest"
	"github.com/openhauscore/kc868/internal/api/websocket"
	"github.com/openhauscore/kc868/internal/board"
	"github.com/openhauscore/kc868/internal/bus"
	"github.com/openhauscore/kc868/internal/config"
	"github.com/openhauscore/kc868/internal/scanner"
	"github.com/openhauscore/kc868/internal/types"
	"go.uber.org/zap"
	"periph.io/x/conn/v3/i2c"
)

// LifecycleManager owns the hardware handles and every long-lived
// component: the board aggregate, the key scanner, the websocket hub
// and the REST server. It brings them up in dependency order and
// tears them down on shutdown.
type LifecycleManager struct {
	config *config.Config
	logger *zap.Logger

	busCloser i2c.BusCloser
	board     *board.Board
	profile   *board.Profile
	scanner   *scanner.Scanner
	wsHub     *websocket.Hub

	restServer *rest.Server

	stateMu      sync.RWMutex
	currentState types.SystemState
	lastError    string

	shutdownChan chan struct{}
	shutdownOnce sync.Once
}

func NewLifecycleManager(cfg *config.Config, logger *zap.Logger) *LifecycleManager {
	return &LifecycleManager{
		config:       cfg,
		logger:       logger,
		currentState: types.StateInitializing,
		shutdownChan: make(chan struct{}),
	}
}

// Start brings the system up: I2C bus, expander mirrors, discrete
// sensors, board profile, websocket hub, key scanner, REST server.
func (lm *LifecycleManager) Start() error {
	lm.logger.Info("Starting KC868 controller")

	lm.setState(types.StateInitializing)

	if err := lm.initBoard(); err != nil {
		lm.setError(err)
		return err
	}

	lm.wsHub = websocket.NewHub(lm.logger)
	lm.wsHub.SetStateProvider(lm)
	go lm.wsHub.Run()

	lm.scanner = scanner.New(lm.board, lm.config.Bus.ScanInterval, lm.logger, lm.broadcastState)
	if err := lm.scanner.Start(); err != nil {
		lm.setError(fmt.Errorf("failed to start scanner: %w", err))
		return err
	}

	lm.restServer = rest.NewServer(lm.config, lm.board, lm.profile, lm.logger, lm.wsHub, lm)
	if err := lm.restServer.Start(); err != nil {
		lm.setError(fmt.Errorf("failed to start REST API: %w", err))
		return err
	}

	lm.setState(types.StateRunning)

	lm.logger.Info("System started successfully",
		zap.Int("http_port", lm.config.Server.HTTPPort),
		zap.Duration("scan_interval", lm.config.Bus.ScanInterval))

	return nil
}

func (lm *LifecycleManager) initBoard() error {
	b, err := bus.Open(lm.config.Bus.Name)
	if err != nil {
		return fmt.Errorf("failed to open i2c bus: %w", err)
	}
	lm.busCloser = b

	outLow := bus.NewPCF8574(b, board.AddrOutputsLow, lm.logger)
	outHigh := bus.NewPCF8574(b, board.AddrOutputsHigh, lm.logger)
	inLow := bus.NewPCF8574(b, board.AddrInputsLow, lm.logger)
	inHigh := bus.NewPCF8574(b, board.AddrInputsHigh, lm.logger)

	sensors := make([]board.DiscreteSensor, 0, 3)
	pins := []struct {
		name string
		pin  string
	}{
		{"HT1", lm.config.Sensors.HT1Pin},
		{"HT2", lm.config.Sensors.HT2Pin},
		{"HT3", lm.config.Sensors.HT3Pin},
	}
	for _, p := range pins {
		pin, err := bus.OpenPin(p.pin)
		if err != nil {
			// A missing sensor line still keeps its slot in the state
			// report, it just reads inactive.
			lm.logger.Warn("Discrete sensor unavailable",
				zap.String("sensor", p.name),
				zap.String("pin", p.pin),
				zap.Error(err))
			sensors = append(sensors, board.DiscreteSensor{Name: p.name})
			continue
		}
		sensors = append(sensors, board.DiscreteSensor{Name: p.name, Pin: pin})
	}

	lm.board = board.New(outLow, outHigh, inLow, inHigh, sensors, lm.logger)
	lm.board.InitOutputs()

	loader, err := board.NewProfileLoader(lm.config.Profiles.SearchPaths)
	if err != nil {
		return fmt.Errorf("failed to create profile loader: %w", err)
	}
	profile, err := loader.Load(lm.config.Profiles.Board)
	if err != nil {
		return fmt.Errorf("failed to load board profile: %w", err)
	}
	lm.profile = profile

	lm.logger.Info("Board initialised",
		zap.String("board", profile.Board),
		zap.Int("sensors", len(sensors)))

	return nil
}

// GetState implements websocket.StateProvider.
func (lm *LifecycleManager) GetState() any {
	return lm.board.RenderState()
}

func (lm *LifecycleManager) broadcastState() {
	lm.wsHub.Broadcast(websocket.NewStateMessage(lm.board.RenderState()))
}

// Done is closed once a shutdown, however triggered, has completed.
func (lm *LifecycleManager) Done() <-chan struct{} {
	return lm.shutdownChan
}

// Shutdown gracefully shuts down the system
func (lm *LifecycleManager) Shutdown(ctx context.Context) error {
	var shutdownErr error

	lm.shutdownOnce.Do(func() {
		lm.logger.Info("Shutting down system")

		lm.setState(types.StateStopping)

		shutdownErr = lm.gracefulShutdown(ctx)

		lm.setState(types.StateStopped)

		close(lm.shutdownChan)
	})

	return shutdownErr
}

func (lm *LifecycleManager) gracefulShutdown(ctx context.Context) error {
	var wg sync.WaitGroup
	errChan := make(chan error, 2)

	// 1. Stop the key scanner
	wg.Add(1)
	go func() {
		defer wg.Done()
		lm.scanner.Stop()
	}()

	// 2. REST API Server graceful shutdown
	if lm.restServer != nil {
		wg.Add(1)
		go func() {
			defer wg.Done()
			shutdownCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
			defer cancel()

			if err := lm.restServer.Shutdown(shutdownCtx); err != nil {
				errChan <- fmt.Errorf("rest api shutdown failed: %w", err)
			}
		}()
	}

	// Wait for all shutdowns
	done := make(chan struct{})
	go func() {
		wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		if lm.busCloser != nil {
			if err := lm.busCloser.Close(); err != nil {
				lm.logger.Warn("I2C bus close failed", zap.Error(err))
			}
		}
		lm.logger.Info("Graceful shutdown completed")
		return nil
	case <-ctx.Done():
		lm.logger.Warn("Shutdown timeout, forcing stop")
		return fmt.Errorf("shutdown timeout exceeded")
	case err := <-errChan:
		return err
	}
}

func (lm *LifecycleManager) setState(state types.SystemState) {
	lm.stateMu.Lock()
	lm.currentState = state
	lm.stateMu.Unlock()

	if lm.wsHub != nil {
		lm.wsHub.Broadcast(websocket.NewSystemStatusMessage(lm.GetCurrentStatus()))
	}
}

func (lm *LifecycleManager) setError(err error) {
	lm.stateMu.Lock()
	lm.currentState = types.StateError
	lm.lastError = err.Error()
	lm.stateMu.Unlock()

	lm.logger.Error("System error", zap.Error(err))

	if lm.wsHub != nil {
		lm.wsHub.Broadcast(websocket.NewSystemStatusMessage(lm.GetCurrentStatus()))
	}
}

// GetCurrentStatus implements rest.SystemController.
func (lm *LifecycleManager) GetCurrentStatus() types.SystemStatus {
	lm.stateMu.RLock()
	defer lm.stateMu.RUnlock()
	return types.SystemStatus{
		State:     lm.currentState,
		Timestamp: time.Now().Unix(),
		Error:     lm.lastError,
	}
}
