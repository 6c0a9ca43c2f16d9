// Package scheduler реализует очередь отложенных задач с ключом по сущности.
// Для каждого ключа существует не больше одной ожидающей задачи: повторное
// планирование заменяет предыдущую, отмена - первоклассная операция.
package scheduler

import (
	"context"
	"sync"
	"time"
)

// Task - функция, исполняемая по истечении задержки
type Task func(ctx context.Context)

type entry struct {
	timer *time.Timer
	gen   uint64
}

// Scheduler - in-memory очередь отложенных задач
type Scheduler struct {
	mu      sync.Mutex
	tasks   map[string]*entry
	gen     uint64
	closed  bool
	running sync.WaitGroup

	ctx    context.Context
	cancel context.CancelFunc
}

// New создает планировщик. Контекст задач отменяется при Stop.
func New() *Scheduler {
	ctx, cancel := context.WithCancel(context.Background())
	return &Scheduler{
		tasks:  make(map[string]*entry),
		ctx:    ctx,
		cancel: cancel,
	}
}

// Schedule планирует fn через delay, заменяя ожидающую задачу с тем же ключом.
// Возвращает false, если планировщик остановлен.
func (s *Scheduler) Schedule(key string, delay time.Duration, fn Task) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return false
	}
	if prev, ok := s.tasks[key]; ok {
		prev.timer.Stop()
	}
	if delay < 0 {
		delay = 0
	}

	s.gen++
	e := &entry{gen: s.gen}
	e.timer = time.AfterFunc(delay, func() { s.fire(key, e.gen, fn) })
	s.tasks[key] = e
	return true
}

// fire исполняет задачу, если её не заменили и не отменили после срабатывания таймера
func (s *Scheduler) fire(key string, gen uint64, fn Task) {
	s.mu.Lock()
	current, ok := s.tasks[key]
	if !ok || current.gen != gen || s.closed {
		s.mu.Unlock()
		return
	}
	delete(s.tasks, key)
	s.running.Add(1)
	s.mu.Unlock()

	defer s.running.Done()
	fn(s.ctx)
}

// Cancel отменяет ожидающую задачу. Возвращает true, если задача была.
func (s *Scheduler) Cancel(key string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.tasks[key]
	if !ok {
		return false
	}
	e.timer.Stop()
	delete(s.tasks, key)
	return true
}

// Pending сообщает, ожидает ли задача с данным ключом
func (s *Scheduler) Pending(key string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.tasks[key]
	return ok
}

// Len возвращает число ожидающих задач
func (s *Scheduler) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.tasks)
}

// Stop отменяет все ожидающие задачи и ждет завершения уже запущенных
func (s *Scheduler) Stop() {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.closed = true
	for key, e := range s.tasks {
		e.timer.Stop()
		delete(s.tasks, key)
	}
	s.mu.Unlock()

	s.cancel()
	s.running.Wait()
}
