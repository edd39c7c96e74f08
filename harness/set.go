package harness

import (
	"fmt"
	"time"
)

const readyTimeout = 30 * time.Second

// Set holds every service a single test scenario depends on.
type Set struct {
	services []*Service
}

// StartAll launches the named services from the definitions file and blocks
// until each one prints READY. On any failure, services started so far are
// stopped.
func StartAll(definitionsPath string, names ...string) (*Set, error) {
	defs, err := ReadDefinitions(definitionsPath)
	if err != nil {
		return nil, err
	}
	set := &Set{}
	for _, name := range names {
		def, ok := defs[name]
		if !ok {
			set.Stop()
			return nil, fmt.Errorf("no service definition found for '%s'", name)
		}
		svc, err := StartService(def)
		if err != nil {
			set.Stop()
			return nil, err
		}
		set.services = append(set.services, svc)
		if err := svc.Ready(readyTimeout); err != nil {
			set.Stop()
			return nil, err
		}
	}
	return set, nil
}

// Port returns the host port a nominal port is exposed on. It is an error
// for more than one service of the set to expose the same nominal port.
func (s *Set) Port(nominal int) (int, error) {
	var actual int
	var exposedBy string
	for _, svc := range s.services {
		ports, err := svc.Ports()
		if err != nil {
			return 0, err
		}
		port, ok := ports[nominal]
		if !ok {
			continue
		}
		if exposedBy != "" {
			return 0, fmt.Errorf("both '%s' and '%s' expose port %d", exposedBy, svc.Name(), nominal)
		}
		actual = port
		exposedBy = svc.Name()
	}
	if exposedBy == "" {
		return 0, fmt.Errorf("no service exposes port %d", nominal)
	}
	return actual, nil
}

// Healthy errors if any service of the set has exited.
func (s *Set) Healthy() error {
	for _, svc := range s.services {
		select {
		case <-svc.exited:
			return fmt.Errorf("service '%s' exited early", svc.Name())
		default:
		}
	}
	return nil
}

func (s *Set) Stop() error {
	var firstErr error
	for _, svc := range s.services {
		if err := svc.Stop(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}
