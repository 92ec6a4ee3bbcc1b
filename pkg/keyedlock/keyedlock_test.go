package keyedlock_test

import (
	"sync"
	"testing"

	"handcraft_market/pkg/keyedlock"
)

func TestSameKeySerializes(t *testing.T) {
	km := keyedlock.New()
	counter := 0
	var wg sync.WaitGroup
	for i := 0; i < 100; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			km.Lock("order:1")
			counter++
			km.Unlock("order:1")
		}()
	}
	wg.Wait()
	if counter != 100 {
		t.Error("Expected 100, got", counter)
	}
}

func TestDifferentKeysDoNotBlock(t *testing.T) {
	km := keyedlock.New()
	km.Lock("order:1")
	done := make(chan struct{})
	go func() {
		km.Lock("order:2")
		km.Unlock("order:2")
		close(done)
	}()
	<-done
	km.Unlock("order:1")
}

func TestKeyReusableAfterUnlock(t *testing.T) {
	km := keyedlock.New()
	km.Lock("wallet:9")
	km.Unlock("wallet:9")
	km.Lock("wallet:9")
	km.Unlock("wallet:9")
}
