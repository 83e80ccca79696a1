package session

import (
	"log"
	"time"
)

// Sweeper runs the periodic idle sweep. One sweeper is started at process
// init and stopped at shutdown; it is the only source of asynchronous session
// termination.
type Sweeper struct {
	logger   *log.Logger
	registry *Registry
	interval time.Duration

	stop chan struct{}
	done chan struct{}
}

func NewSweeper(logger *log.Logger, registry *Registry, interval time.Duration) *Sweeper {
	if interval <= 0 {
		interval = time.Minute
	}
	return &Sweeper{
		logger:   logger,
		registry: registry,
		interval: interval,
		stop:     make(chan struct{}),
		done:     make(chan struct{}),
	}
}

func (s *Sweeper) Start() {
	go s.loop()
}

// Stop blocks until the sweep loop has exited. Safe to call once.
func (s *Sweeper) Stop() {
	close(s.stop)
	<-s.done
}

func (s *Sweeper) loop() {
	defer close(s.done)

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-s.stop:
			return
		case <-ticker.C:
			expired := s.registry.ExpireIdle()
			purged := s.registry.PurgeExpired()
			if expired > 0 || purged > 0 {
				s.logger.Printf("idle sweep expired=%d purged=%d", expired, purged)
			}
		}
	}
}
