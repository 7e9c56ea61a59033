//go:build linux

package ime

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"strings"
	"sync"

	"github.com/godbus/dbus/v5"

	"goanthy/internal/config"
	"goanthy/internal/convert"
	"goanthy/internal/eventloop"
	"goanthy/internal/keys"
	"goanthy/internal/logging"
	"goanthy/internal/metrics"
)

// IBus D-Bus constants
const (
	IBusFactoryPath      = "/org/freedesktop/IBus/Factory"
	IBusFactoryInterface = "org.freedesktop.IBus.Factory"
	IBusEngineInterface  = "org.freedesktop.IBus.Engine"
	IBusServiceInterface = "org.freedesktop.IBus.Service"
	IBusConfigInterface  = "org.freedesktop.IBus.Config"
)

// preeditClear drops the preedit when focus moves away.
const preeditClear uint32 = 0

// ServiceConfig holds the collaborators shared by every engine.
type ServiceConfig struct {
	// Address of the IBus bus. Empty uses BusAddress.
	Address string
	Shared  *Shared
	// NewBackend returns a fresh conversion backend for each engine.
	NewBackend func() convert.Backend
	Logger     *logging.Logger
	Metrics    *metrics.EngineMetrics
	Crash      *logging.CrashHandler
	Launcher   Launcher
}

// Service owns the IBus connection, the engine factory and the engines it
// created.
type Service struct {
	cfg  ServiceConfig
	log  *logging.Logger
	conn *dbus.Conn

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup

	mu      sync.Mutex
	engines map[dbus.ObjectPath]*Engine
	nextID  uint32
}

// NewService validates cfg.
func NewService(cfg ServiceConfig) (*Service, error) {
	if cfg.Shared == nil || cfg.NewBackend == nil {
		return nil, errors.New("ime: service needs shared state and a backend factory")
	}
	log := cfg.Logger
	if log == nil {
		log = logging.Default()
	}
	return &Service{
		cfg:     cfg,
		log:     log.WithComponent("ibus"),
		engines: map[dbus.ObjectPath]*Engine{},
	}, nil
}

// BusAddress returns the IBus bus address from IBUS_ADDRESS or the ibus
// command.
func BusAddress() (string, error) {
	if addr := os.Getenv("IBUS_ADDRESS"); addr != "" {
		return addr, nil
	}
	out, err := exec.Command("ibus", "address").Output()
	if err != nil {
		return "", fmt.Errorf("query ibus address: %w", err)
	}
	addr := strings.TrimSpace(string(out))
	if addr == "" || addr == "(null)" {
		return "", errors.New("ibus-daemon is not running")
	}
	return addr, nil
}

// Start connects to IBus, exports the factory and claims the engine's bus
// name.
func (s *Service) Start(ctx context.Context) error {
	addr := s.cfg.Address
	if addr == "" {
		var err error
		if addr, err = BusAddress(); err != nil {
			return err
		}
	}
	conn, err := dbus.Connect(addr)
	if err != nil {
		return fmt.Errorf("connect to ibus: %w", err)
	}
	s.conn = conn
	s.ctx, s.cancel = context.WithCancel(ctx)

	if err := conn.Export(&factory{svc: s}, IBusFactoryPath, IBusFactoryInterface); err != nil {
		conn.Close()
		return fmt.Errorf("export factory: %w", err)
	}

	reply, err := conn.RequestName(BusName, dbus.NameFlagDoNotQueue)
	if err != nil {
		conn.Close()
		return fmt.Errorf("request bus name: %w", err)
	}
	if reply != dbus.RequestNameReplyPrimaryOwner {
		conn.Close()
		return fmt.Errorf("bus name %s already taken", BusName)
	}

	if err := conn.AddMatchSignal(
		dbus.WithMatchInterface(IBusConfigInterface),
		dbus.WithMatchMember("ValueChanged"),
	); err != nil {
		s.log.Warn("config signals unavailable", "error", err)
	}
	signals := make(chan *dbus.Signal, 16)
	conn.Signal(signals)
	s.wg.Add(1)
	go s.watchConfig(signals)

	s.log.Info("ibus engine started", "bus_name", BusName)
	return nil
}

// Done is closed when the bus connection is lost or the service stops.
func (s *Service) Done() <-chan struct{} {
	return s.conn.Context().Done()
}

func (s *Service) watchConfig(signals <-chan *dbus.Signal) {
	defer s.wg.Done()
	for {
		select {
		case <-s.ctx.Done():
			return
		case sig, ok := <-signals:
			if !ok {
				return
			}
			if sig.Name != IBusConfigInterface+".ValueChanged" || len(sig.Body) != 3 {
				continue
			}
			section, _ := sig.Body[0].(string)
			name, _ := sig.Body[1].(string)
			value, _ := sig.Body[2].(dbus.Variant)
			ch, ok := configChange(EngineName, section, name, value)
			if !ok {
				continue
			}
			if err := s.cfg.Shared.Apply([]config.Change{ch}); err != nil {
				s.log.Warn("apply ibus config change", "change", ch.String(), "error", err)
			}
		}
	}
}

// Stop destroys all engines and closes the connection.
func (s *Service) Stop() error {
	s.mu.Lock()
	engines := make([]*Engine, 0, len(s.engines))
	for _, e := range s.engines {
		engines = append(engines, e)
	}
	s.mu.Unlock()
	for _, e := range engines {
		s.destroy(e.path)
	}
	if s.cancel != nil {
		s.cancel()
	}
	var err error
	if s.conn != nil {
		err = s.conn.Close()
	}
	s.wg.Wait()
	return err
}

func (s *Service) createEngine() (dbus.ObjectPath, error) {
	s.mu.Lock()
	s.nextID++
	path := dbus.ObjectPath(fmt.Sprintf("/org/freedesktop/IBus/Engine/%d", s.nextID))
	s.mu.Unlock()

	log := s.log.With("engine", string(path))
	loop := eventloop.New(s.ctx)
	host := &dbusHost{conn: s.conn, path: path, log: log}
	sess, err := NewSession(s.cfg.Shared, host, Options{
		Backend:   s.cfg.NewBackend(),
		Scheduler: loop,
		Logger:    log,
		Metrics:   s.cfg.Metrics,
		Crash:     s.cfg.Crash,
		Launcher:  s.cfg.Launcher,
		Post:      func(f func()) { _ = loop.Post(f) },
	})
	if err != nil {
		loop.Close()
		return "", err
	}

	e := &Engine{svc: s, path: path, loop: loop, session: sess, log: log}
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		loop.Run()
	}()
	if err := s.conn.Export(e, path, IBusEngineInterface); err != nil {
		e.close()
		return "", fmt.Errorf("export engine: %w", err)
	}
	if err := s.conn.Export(engineService{e}, path, IBusServiceInterface); err != nil {
		log.Warn("export service interface", "error", err)
	}

	s.mu.Lock()
	s.engines[path] = e
	s.mu.Unlock()
	log.Info("engine created")
	return path, nil
}

func (s *Service) destroy(path dbus.ObjectPath) {
	s.mu.Lock()
	e, ok := s.engines[path]
	delete(s.engines, path)
	s.mu.Unlock()
	if !ok {
		return
	}
	_ = s.conn.Export(nil, path, IBusEngineInterface)
	_ = s.conn.Export(nil, path, IBusServiceInterface)
	e.close()
	e.log.Info("engine destroyed")
}

// factory implements org.freedesktop.IBus.Factory.
type factory struct {
	svc *Service
}

// CreateEngine creates a new engine instance for IBus.
func (f *factory) CreateEngine(engineName string) (dbus.ObjectPath, *dbus.Error) {
	if engineName != EngineName {
		return "", dbus.NewError("org.freedesktop.IBus.NoEngine",
			[]any{"unknown engine: " + engineName})
	}
	path, err := f.svc.createEngine()
	if err != nil {
		f.svc.log.Error("create engine", "error", err)
		return "", dbus.MakeFailedError(err)
	}
	return path, nil
}

// Engine is one IBus input context. D-Bus calls arrive on godbus
// goroutines and are forwarded to the engine's event loop.
type Engine struct {
	svc     *Service
	path    dbus.ObjectPath
	loop    *eventloop.Loop
	session *Session
	log     *logging.Logger
}

func (e *Engine) post(f func()) *dbus.Error {
	if err := e.loop.Post(f); err != nil {
		return dbus.MakeFailedError(err)
	}
	return nil
}

func (e *Engine) close() {
	_, _ = e.loop.Call(func() bool {
		e.session.Close()
		return true
	})
	e.loop.Close()
}

// ProcessKeyEvent reports whether the key was consumed.
func (e *Engine) ProcessKeyEvent(keyval, keycode, state uint32) (bool, *dbus.Error) {
	handled, err := e.loop.Call(func() bool {
		return e.session.HandleKeyEvent(keyval, keycode, keys.Modifier(state))
	})
	if err != nil {
		return false, dbus.MakeFailedError(err)
	}
	return handled, nil
}

func (e *Engine) FocusIn() *dbus.Error { return e.post(e.session.FocusIn) }

func (e *Engine) FocusOut() *dbus.Error { return e.post(e.session.FocusOut) }

func (e *Engine) Reset() *dbus.Error { return e.post(e.session.Reset) }

func (e *Engine) Enable() *dbus.Error { return nil }

func (e *Engine) Disable() *dbus.Error { return e.post(e.session.Disable) }

func (e *Engine) PageUp() *dbus.Error { return e.post(e.session.PageUp) }

func (e *Engine) PageDown() *dbus.Error { return e.post(e.session.PageDown) }

func (e *Engine) CursorUp() *dbus.Error { return e.post(e.session.CursorUp) }

func (e *Engine) CursorDown() *dbus.Error { return e.post(e.session.CursorDown) }

func (e *Engine) CandidateClicked(index, button, state uint32) *dbus.Error {
	return e.post(func() { e.session.CandidateClicked(index, button, state) })
}

func (e *Engine) PropertyActivate(name string, state uint32) *dbus.Error {
	return e.post(func() { e.session.PropertyActivate(name, PropState(state)) })
}

func (e *Engine) SetSurroundingText(text dbus.Variant, cursorPos, anchorPos uint32) *dbus.Error {
	s := decodeText(text)
	return e.post(func() { e.session.SetSurroundingText(s, cursorPos, anchorPos) })
}

func (e *Engine) SetCapabilities(caps uint32) *dbus.Error { return nil }

func (e *Engine) SetCursorLocation(x, y, w, h int32) *dbus.Error { return nil }

func (e *Engine) SetContentType(purpose, hints uint32) *dbus.Error { return nil }

// engineService implements org.freedesktop.IBus.Service on the engine
// path.
type engineService struct{ e *Engine }

func (s engineService) Destroy() *dbus.Error {
	go s.e.svc.destroy(s.e.path)
	return nil
}

// dbusHost turns session output into engine signals.
type dbusHost struct {
	conn *dbus.Conn
	path dbus.ObjectPath
	log  *logging.Logger
}

func (h *dbusHost) emit(name string, args ...any) {
	if err := h.conn.Emit(h.path, IBusEngineInterface+"."+name, args...); err != nil {
		h.log.Warn("emit signal", "signal", name, "error", err)
	}
}

func (h *dbusHost) CommitText(text string) {
	h.emit("CommitText", textVariant(text, nil))
}

func (h *dbusHost) UpdatePreedit(text string, attrs []Attribute, cursor uint32, visible bool) {
	h.emit("UpdatePreeditText", textVariant(text, attrs), cursor, visible, preeditClear)
}

func (h *dbusHost) UpdateAuxiliaryText(text string, visible bool) {
	h.emit("UpdateAuxiliaryText", textVariant(text, nil), visible)
}

func (h *dbusHost) UpdateLookupTable(table LookupTable, visible bool) {
	h.emit("UpdateLookupTable", lookupTableVariant(table), visible)
}

func (h *dbusHost) RegisterProperties(props []Property) {
	h.emit("RegisterProperties", propListVariant(props))
}

func (h *dbusHost) UpdateProperty(prop Property) {
	h.emit("UpdateProperty", propertyVariant(prop))
}
