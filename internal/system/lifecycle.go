package system

import (
	"context"
	"errors"
	"fmt"
	"net"
	"sync"
	"time"

	"github.com/KevinKickass/OpenLaundryCore/internal/api/grpcapi"
	"github.com/KevinKickass/OpenLaundryCore/internal/api/rest"
	"github.com/KevinKickass/OpenLaundryCore/internal/api/websocket"
	"github.com/KevinKickass/OpenLaundryCore/internal/auth"
	"github.com/KevinKickass/OpenLaundryCore/internal/config"
	"github.com/KevinKickass/OpenLaundryCore/internal/cycle"
	"github.com/KevinKickass/OpenLaundryCore/internal/devices"
	"github.com/KevinKickass/OpenLaundryCore/internal/interfaces"
	"github.com/KevinKickass/OpenLaundryCore/internal/metrics"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"
	"google.golang.org/grpc"
)

type LifecycleManager struct {
	config        *config.Config
	deviceManager *devices.Manager
	runner        *cycle.Runner
	authService   *auth.AuthService
	wsHub         *websocket.Hub
	eventStreamer *grpcapi.EventStreamer
	logger        *zap.Logger

	restServer *rest.Server
	grpcServer *grpc.Server
	grpcAddr   net.Addr
	hubCancel  context.CancelFunc

	stateMu      sync.RWMutex
	currentState SystemState
	lastError    string

	listenersMu     sync.RWMutex
	statusListeners []chan SystemStatus

	shutdownChan chan struct{}
	shutdownOnce sync.Once
}

func NewLifecycleManager(cfg *config.Config, logger *zap.Logger) (*LifecycleManager, error) {
	deviceManager, err := devices.NewManager(cfg.Devices.SearchPaths, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to create device manager: %w", err)
	}

	rig, err := deviceManager.Load(cfg.Devices.Profile)
	if err != nil {
		return nil, err
	}

	metrics.Register(prometheus.DefaultRegisterer)

	authService := auth.NewAuthService(cfg.Auth, logger)
	runner := cycle.NewRunner(rig.Actuators(), logger)

	wsHub := websocket.NewHub(logger, authService)
	wsHub.SetMachineStatusProvider(runner)
	eventStreamer := grpcapi.NewEventStreamer()

	runner.Subscribe(wsHub)
	runner.Subscribe(eventStreamer)

	return &LifecycleManager{
		config:        cfg,
		deviceManager: deviceManager,
		runner:        runner,
		authService:   authService,
		wsHub:         wsHub,
		eventStreamer: eventStreamer,
		logger:        logger,
		currentState:  StateInitializing,
		shutdownChan:  make(chan struct{}),
	}, nil
}

// Start starts the entire system
func (lm *LifecycleManager) Start() error {
	lm.logger.Info("Starting OpenLaundryCore",
		zap.String("profile", lm.deviceManager.Current().Profile.Profile.ID))

	if !lm.config.Auth.IsProductionReady() {
		lm.logger.Warn("JWT secret is the development default; set the variable named by auth.jwt_secret_env")
	}

	hubCtx, cancel := context.WithCancel(context.Background())
	lm.hubCancel = cancel
	go lm.wsHub.Run(hubCtx)
	go lm.forwardStatus(hubCtx)

	if err := lm.startGRPCServer(); err != nil {
		lm.setError(fmt.Errorf("failed to start gRPC: %w", err))
		return err
	}

	if err := lm.startRESTServer(); err != nil {
		lm.setError(fmt.Errorf("failed to start REST API: %w", err))
		return err
	}

	if err := lm.setState(StateRunning); err != nil {
		return err
	}

	lm.logger.Info("System started successfully",
		zap.Int("grpc_port", lm.config.Server.GRPCPort),
		zap.Int("http_port", lm.config.Server.HTTPPort))

	return nil
}

// Shutdown gracefully shuts down the system
func (lm *LifecycleManager) Shutdown(ctx context.Context) error {
	var shutdownErr error

	lm.shutdownOnce.Do(func() {
		lm.logger.Info("Shutting down system")

		if err := lm.setState(StateStopping); err != nil {
			lm.logger.Warn("Unexpected state on shutdown", zap.Error(err))
		}

		shutdownErr = lm.gracefulShutdown(ctx)

		if err := lm.setState(StateStopped); err != nil {
			lm.logger.Warn("Unexpected state on shutdown", zap.Error(err))
		}

		if lm.hubCancel != nil {
			lm.hubCancel()
		}
		close(lm.shutdownChan)
	})

	return shutdownErr
}

// Done is closed once Shutdown has finished.
func (lm *LifecycleManager) Done() <-chan struct{} {
	return lm.shutdownChan
}

func (lm *LifecycleManager) gracefulShutdown(ctx context.Context) error {
	var wg sync.WaitGroup
	errChan := make(chan error, 2)

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

	if lm.grpcServer != nil {
		wg.Add(1)
		go func() {
			defer wg.Done()
			lm.logger.Info("Stopping gRPC server")
			// Watch streams only return once their channel is closed.
			lm.eventStreamer.Close()
			lm.grpcServer.GracefulStop()
		}()
	}

	done := make(chan struct{})
	go func() {
		wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		lm.logger.Info("Graceful shutdown completed")
		select {
		case err := <-errChan:
			return err
		default:
			return nil
		}
	case <-ctx.Done():
		lm.logger.Warn("Shutdown timeout, forcing stop")
		if lm.grpcServer != nil {
			lm.grpcServer.Stop()
		}
		return errors.New("shutdown timeout exceeded")
	}
}

func (lm *LifecycleManager) startGRPCServer() error {
	lis, err := net.Listen("tcp", fmt.Sprintf(":%d", lm.config.Server.GRPCPort))
	if err != nil {
		return fmt.Errorf("failed to listen: %w", err)
	}
	lm.grpcAddr = lis.Addr()

	lm.grpcServer = grpc.NewServer(
		grpc.ChainUnaryInterceptor(grpcapi.UnaryAuthInterceptor(lm.authService)),
		grpc.ChainStreamInterceptor(grpcapi.StreamAuthInterceptor(lm.authService)),
	)
	grpcapi.Register(lm.grpcServer, grpcapi.NewWashService(lm.runner, lm.eventStreamer, lm.logger))

	go func() {
		lm.logger.Info("gRPC server listening",
			zap.String("address", lis.Addr().String()),
			zap.String("services", grpcapi.ServiceName))
		if err := lm.grpcServer.Serve(lis); err != nil {
			lm.logger.Error("gRPC server failed", zap.Error(err))
		}
	}()

	return nil
}

func (lm *LifecycleManager) startRESTServer() error {
	lm.restServer = rest.NewServer(lm.config, lm, lm.logger, lm.wsHub, lm.authService)
	return lm.restServer.Start()
}

// GRPCAddr is the address the gRPC server listens on, nil before Start.
func (lm *LifecycleManager) GRPCAddr() net.Addr {
	return lm.grpcAddr
}

// SwitchProfile activates a device profile. It fails with cycle.ErrMachineBusy
// while a cycle runs.
func (lm *LifecycleManager) SwitchProfile(name string) (*devices.Rig, error) {
	rig, err := lm.deviceManager.Switch(name, func(rig *devices.Rig) error {
		return lm.runner.SetActuators(rig.Actuators())
	})
	if err != nil {
		return nil, err
	}

	lm.broadcastStatus()
	return rig, nil
}

func (lm *LifecycleManager) setState(state SystemState) error {
	lm.stateMu.Lock()
	if err := ValidateTransition(lm.currentState, state); err != nil {
		lm.stateMu.Unlock()
		return err
	}
	lm.currentState = state
	lm.stateMu.Unlock()

	lm.broadcastStatus()
	return nil
}

func (lm *LifecycleManager) setError(err error) {
	lm.logger.Error("System error", zap.Error(err))

	lm.stateMu.Lock()
	lm.currentState = StateError
	lm.lastError = err.Error()
	lm.stateMu.Unlock()

	lm.broadcastStatus()
}

// GetCurrentStatus returns current system status (Interface implementation)
func (lm *LifecycleManager) GetCurrentStatus() interfaces.SystemStatus {
	status := lm.getStatusInternal()

	return interfaces.SystemStatus{
		State:        status.State.String(),
		Profile:      status.Profile,
		CycleRunning: lm.runner.Status().Running,
		LiveClients:  lm.wsHub.GetClientCount(),
	}
}

func (lm *LifecycleManager) getStatusInternal() SystemStatus {
	lm.stateMu.RLock()
	defer lm.stateMu.RUnlock()

	status := SystemStatus{
		State:     lm.currentState,
		Timestamp: time.Now().Unix(),
		Error:     lm.lastError,
	}
	if rig := lm.deviceManager.Current(); rig != nil {
		status.Profile = rig.Profile.Profile.ID
	}
	return status
}

func (lm *LifecycleManager) broadcastStatus() {
	status := lm.getStatusInternal()

	lm.listenersMu.RLock()
	defer lm.listenersMu.RUnlock()

	for _, listener := range lm.statusListeners {
		select {
		case listener <- status:
		default:
			// Channel full, skip
		}
	}
}

// forwardStatus relays system status changes to live clients.
func (lm *LifecycleManager) forwardStatus(ctx context.Context) {
	ch := lm.SubscribeStatus()
	defer lm.UnsubscribeStatus(ch)

	for {
		select {
		case status := <-ch:
			lm.wsHub.Broadcast(websocket.NewMessage(websocket.MessageTypeSystemStatus, status))
		case <-ctx.Done():
			return
		}
	}
}

// SubscribeStatus subscribes to status updates
func (lm *LifecycleManager) SubscribeStatus() chan SystemStatus {
	ch := make(chan SystemStatus, 10)

	lm.listenersMu.Lock()
	lm.statusListeners = append(lm.statusListeners, ch)
	lm.listenersMu.Unlock()

	return ch
}

// UnsubscribeStatus unsubscribes from status updates
func (lm *LifecycleManager) UnsubscribeStatus(ch chan SystemStatus) {
	lm.listenersMu.Lock()
	defer lm.listenersMu.Unlock()

	for i, listener := range lm.statusListeners {
		if listener == ch {
			lm.statusListeners = append(lm.statusListeners[:i], lm.statusListeners[i+1:]...)
			close(ch)
			break
		}
	}
}

func (lm *LifecycleManager) DeviceManager() *devices.Manager {
	return lm.deviceManager
}

func (lm *LifecycleManager) Runner() *cycle.Runner {
	return lm.runner
}

func (lm *LifecycleManager) Config() *config.Config {
	return lm.config
}

var _ interfaces.LifecycleManager = (*LifecycleManager)(nil)
