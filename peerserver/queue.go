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

// serverQueue is a fair, per-peer FIFO task queue: peersQueue round-robins
// which peer's turn it is, and tasksQueue holds each peer's own FIFO of
// pending tasks. A peer appears in peersQueue iff it currently has at least
// one task queued, an invariant maintained by every method below. Caller
// holds the owning server's mutex; this type does no locking of its own.
type serverQueue struct {
	peersQueue []PeerIndex
	tasksQueue map[PeerIndex][]ServerTask
}

func newServerQueue() *serverQueue {
	return &serverQueue{
		tasksQueue: make(map[PeerIndex][]ServerTask),
	}
}

// nextTask pops the next task belonging to whichever peer is at the front
// of the round-robin, rotating that peer to the back if it still has work
// queued, or dropping it from the rotation if this was its last task.
func (q *serverQueue) nextTask() (ServerTask, bool) {
	if len(q.peersQueue) == 0 {
		return ServerTask{}, false
	}
	peer := q.peersQueue[0]
	q.peersQueue = q.peersQueue[1:]

	tasks := q.tasksQueue[peer]
	task := tasks[0]
	tasks = tasks[1:]

	if len(tasks) == 0 {
		delete(q.tasksQueue, peer)
	} else {
		q.tasksQueue[peer] = tasks
		q.peersQueue = append(q.peersQueue, peer)
	}
	return task, true
}

// addTask appends task to the back of its peer's queue, joining the
// round-robin rotation if the peer had no pending work.
func (q *serverQueue) addTask(task ServerTask) {
	peer := task.PeerIndexOf()
	tasks, exists := q.tasksQueue[peer]
	q.tasksQueue[peer] = append(tasks, task)
	if !exists {
		q.peersQueue = append(q.peersQueue, peer)
	}
}

// addTaskFront reinserts task at the head of its peer's queue. Used to
// resume a ReversedGetData continuation ahead of whatever else that peer
// has queued, so a getdata request is served to completion before the
// peer's other requests are interleaved.
func (q *serverQueue) addTaskFront(task ServerTask) {
	peer := task.PeerIndexOf()
	tasks, exists := q.tasksQueue[peer]
	q.tasksQueue[peer] = append([]ServerTask{task}, tasks...)
	if !exists {
		q.peersQueue = append(q.peersQueue, peer)
	}
}

// queueLen reports how many tasks peer currently has pending.
func (q *serverQueue) queueLen(peer PeerIndex) int {
	return len(q.tasksQueue[peer])
}

// removePeerTasks drops every queued task for peer, e.g. on disconnect.
func (q *serverQueue) removePeerTasks(peer PeerIndex) {
	if _, exists := q.tasksQueue[peer]; !exists {
		return
	}
	delete(q.tasksQueue, peer)
	for i, p := range q.peersQueue {
		if p == peer {
			q.peersQueue = append(q.peersQueue[:i], q.peersQueue[i+1:]...)
			break
		}
	}
}
