package services

import (
	"log"
	"time"
)

// TimeoutService periodically cancels orders that never got paid. It is a
// boundary-level scheduled trigger feeding the normal cancellation
// transition; the state machine itself stays synchronous.
type TimeoutService interface {
	Start(interval time.Duration)
	Stop()
	SweepOnce() (int, error)
}

type timeoutService struct {
	orderService   OrderService
	paymentTimeout time.Duration
	done           chan struct{}
}

func NewTimeoutService(orderService OrderService, paymentTimeout time.Duration) TimeoutService {
	return &timeoutService{
		orderService:   orderService,
		paymentTimeout: paymentTimeout,
		done:           make(chan struct{}),
	}
}

func (s *timeoutService) Start(interval time.Duration) {
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				cancelled, err := s.SweepOnce()
				if err != nil {
					log.Printf("Warning: payment timeout sweep failed: %v", err)
					continue
				}
				if cancelled > 0 {
					log.Printf("Cancelled %d orders past the payment timeout", cancelled)
				}
			case <-s.done:
				return
			}
		}
	}()
}

func (s *timeoutService) Stop() {
	close(s.done)
}

func (s *timeoutService) SweepOnce() (int, error) {
	return s.orderService.CancelStalePayments(s.paymentTimeout)
}
