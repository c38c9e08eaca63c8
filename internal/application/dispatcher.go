package app

import (
	"context"
	"sync"

	"github.com/pkg/errors"
	"go.uber.org/atomic"
)

// ErrDispatcherStopped цикл уже остановлен.
var ErrDispatcherStopped = errors.New("dispatcher stopped")

// Dispatcher владеющий цикл: выполняет функции строго по одной.
// Всё состояние сессий и кэшей меняется только внутри него.
type Dispatcher struct {
	queue chan func()
	done  chan struct{}
	once  sync.Once
}

// NewDispatcher создаёт цикл с очередью размера size.
func NewDispatcher(size int) *Dispatcher {
	if size < 1 {
		size = 1
	}
	return &Dispatcher{
		queue: make(chan func(), size),
		done:  make(chan struct{}),
	}
}

// Run обрабатывает очередь до отмены ctx.
func (d *Dispatcher) Run(ctx context.Context) error {
	defer d.once.Do(func() { close(d.done) })
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case fn := <-d.queue:
			fn()
		}
	}
}

// Post ставит fn в очередь без ожидания выполнения.
// Возвращает false, если цикл остановлен.
func (d *Dispatcher) Post(fn func()) bool {
	select {
	case <-d.done:
		return false
	default:
	}
	select {
	case d.queue <- fn:
		return true
	case <-d.done:
		return false
	}
}

const (
	taskQueued int32 = iota
	taskRunning
	taskAbandoned
)

// Do выполняет fn в цикле и ждёт завершения. Нельзя вызывать изнутри цикла.
//
// Если ctx отменён до начала выполнения, fn не будет вызвана вовсе.
// Если fn уже выполняется, Do дожидается её, чтобы вызывающий мог
// читать записанные ею значения.
func (d *Dispatcher) Do(ctx context.Context, fn func()) error {
	var state atomic.Int32
	finished := make(chan struct{})
	task := func() {
		defer close(finished)
		if state.CompareAndSwap(taskQueued, taskRunning) {
			fn()
		}
	}

	select {
	case d.queue <- task:
	case <-d.done:
		return ErrDispatcherStopped
	case <-ctx.Done():
		return ctx.Err()
	}

	select {
	case <-finished:
		return nil
	case <-d.done:
		// задача либо выполнена до остановки, либо не будет выполнена
		select {
		case <-finished:
			return nil
		default:
			return ErrDispatcherStopped
		}
	case <-ctx.Done():
		if state.CompareAndSwap(taskQueued, taskAbandoned) {
			return ctx.Err()
		}
		<-finished
		return nil
	}
}
