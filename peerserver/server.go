// Copyright 2024 The randsync Authors
// This file is part of randsync.
//
// randsync is free software: you can redistribute it and/or modify
// it under the terms of the GNU Lesser General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// randsync is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU Lesser General Public License for more details.
//
// You should have received a copy of the GNU Lesser General Public License
// along with randsync.  If not, see <http://www.gnu.org/licenses/>.

package peerserver

import (
	"sync"

	"github.com/randchain/randsync/core"
	randlog "github.com/randchain/randsync/log"
)

// Server is the Peer Request Server (PRS): it accepts tasks from any
// goroutine via Execute, and drains them fairly, one peer's task at a time
// round-robin, on a single dedicated worker goroutine so that serving a
// slow peer's large getblocks response can never starve the others beyond
// their own fair turn.
type Server struct {
	mu          sync.Mutex
	notEmpty    *sync.Cond // worker waits here for a task, or for stopping
	notFull     *sync.Cond // Execute waits here when a peer's queue is at maxQueueLen
	queue       *serverQueue
	stopping    bool
	executor    *serverTaskExecutor
	maxQueueLen int
	workerDone  chan struct{}
	log         randlog.Logger
}

// NewServer starts a Server backed by executor with an unbounded per-peer
// task queue, and immediately spawns its worker goroutine; call Stop to
// join it.
func NewServer(peers Peers, storage core.BlockProvider, executor TaskExecutor) *Server {
	return NewServerWithQueueBuffer(peers, storage, executor, 0)
}

// NewServerWithQueueBuffer is NewServer with an explicit bound on how many
// tasks any single peer may have queued at once (the value
// config.Config.PeerTaskQueueBuffer holds). A non-positive maxQueueLen
// means unbounded.
func NewServerWithQueueBuffer(peers Peers, storage core.BlockProvider, executor TaskExecutor, maxQueueLen int) *Server {
	s := &Server{
		queue:       newServerQueue(),
		executor:    newServerTaskExecutor(peers, storage, executor),
		maxQueueLen: maxQueueLen,
		workerDone:  make(chan struct{}),
		log:         randlog.New("component", "peerserver"),
	}
	s.notEmpty = sync.NewCond(&s.mu)
	s.notFull = sync.NewCond(&s.mu)
	go s.worker()
	return s
}

// Execute enqueues task for its peer, blocking while that peer's queue is
// already at maxQueueLen (if bounded). Safe to call from any goroutine.
func (s *Server) Execute(task ServerTask) {
	peer := task.PeerIndexOf()
	s.mu.Lock()
	for s.maxQueueLen > 0 && s.queue.queueLen(peer) >= s.maxQueueLen && !s.stopping {
		s.notFull.Wait()
	}
	if s.stopping {
		s.mu.Unlock()
		return
	}
	s.queue.addTask(task)
	s.mu.Unlock()
	s.notEmpty.Signal()
}

// OnDisconnect drops every queued task belonging to peer.
func (s *Server) OnDisconnect(peer PeerIndex) {
	s.mu.Lock()
	s.queue.removePeerTasks(peer)
	s.mu.Unlock()
	s.notFull.Broadcast()
}

// Stop signals the worker goroutine to exit once it has drained its current
// task, wakes any Execute callers blocked on a full queue, and blocks until
// the worker has exited.
func (s *Server) Stop() {
	s.mu.Lock()
	s.stopping = true
	s.mu.Unlock()
	s.notEmpty.Broadcast()
	s.notFull.Broadcast()
	<-s.workerDone
}

func (s *Server) worker() {
	defer close(s.workerDone)
	for {
		task, ok := s.waitForTask()
		if !ok {
			return
		}

		if follow, hasFollow := s.executor.execute(task); hasFollow {
			s.mu.Lock()
			s.queue.addTaskFront(follow)
			s.mu.Unlock()
			s.notEmpty.Signal()
		}
	}
}

// waitForTask blocks until a task is available or the server is stopping.
// Popping a task always frees one slot in that peer's queue, so it wakes
// any Execute callers blocked waiting for room.
func (s *Server) waitForTask() (ServerTask, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for {
		if s.stopping {
			return ServerTask{}, false
		}
		if task, ok := s.queue.nextTask(); ok {
			s.notFull.Broadcast()
			return task, true
		}
		s.notEmpty.Wait()
	}
}
