// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

package sse_test

import (
	"strings"
	"sync"
	"testing"
	"time"

	"codeberg.org/oliverandrich/taskboard/internal/sse"
	"github.com/stretchr/testify/assert"
)

func receive(t *testing.T, ch chan string) string {
	t.Helper()
	select {
	case msg := <-ch:
		return msg
	case <-time.After(100 * time.Millisecond):
		t.Fatal("expected a message")
		return ""
	}
}

func assertSilent(t *testing.T, ch chan string) {
	t.Helper()
	select {
	case msg := <-ch:
		t.Fatalf("unexpected message %q", msg)
	case <-time.After(30 * time.Millisecond):
	}
}

func TestHub_RegisterAndUnregister(t *testing.T) {
	hub := sse.NewHub()

	ch := hub.Register("session1", 1)
	ch2 := hub.Register("session1", 1)
	assert.Equal(t, 2, hub.ClientCount())
	assert.Equal(t, 1, hub.SessionCount())
	assert.Equal(t, 1, hub.UserCount())

	hub.Unregister("session1", 1, ch)
	assert.Equal(t, 1, hub.ClientCount())
	assert.Equal(t, 1, hub.SessionCount())

	hub.Unregister("session1", 1, ch2)
	assert.Equal(t, 0, hub.ClientCount())
	assert.Equal(t, 0, hub.SessionCount())
	assert.Equal(t, 0, hub.UserCount())

	_, open := <-ch
	assert.False(t, open)
}

func TestHub_MultipleSessionsPerUser(t *testing.T) {
	hub := sse.NewHub()

	ch1 := hub.Register("session1", 1)
	ch2 := hub.Register("session2", 1)

	assert.Equal(t, 2, hub.SessionCount())
	assert.Equal(t, 1, hub.UserCount())

	hub.Unregister("session1", 1, ch1)
	assert.Equal(t, 1, hub.UserCount())
	hub.Unregister("session2", 1, ch2)
	assert.Equal(t, 0, hub.UserCount())
}

func TestHub_SendToSession(t *testing.T) {
	hub := sse.NewHub()
	ch1 := hub.Register("session1", 1)
	ch2 := hub.Register("session1", 1)
	ch3 := hub.Register("session2", 2)

	hub.SendToSession("session1", "hello")

	assert.Equal(t, "hello", receive(t, ch1))
	assert.Equal(t, "hello", receive(t, ch2))
	assertSilent(t, ch3)
}

func TestHub_BoardChangedReachesOwnerOnly(t *testing.T) {
	hub := sse.NewHub()
	owner1 := hub.Register("laptop", 1)
	owner2 := hub.Register("phone", 1)
	other := hub.Register("other", 2)

	hub.BoardChanged(1, "updated", 42)

	msg := receive(t, owner1)
	assert.True(t, strings.HasPrefix(msg, "event: board-updated\n"))
	assert.Contains(t, msg, `"task_id":42`)
	assert.Equal(t, msg, receive(t, owner2))
	assertSilent(t, other)
}

func TestHub_TagsChangedBroadcasts(t *testing.T) {
	hub := sse.NewHub()
	ch1 := hub.Register("a", 1)
	ch2 := hub.Register("b", 2)

	hub.TagsChanged()

	assert.Equal(t, "event: tags-updated\ndata: {}\n\n", receive(t, ch1))
	assert.Equal(t, "event: tags-updated\ndata: {}\n\n", receive(t, ch2))
}

func TestHub_NonBlockingSend(t *testing.T) {
	hub := sse.NewHub()
	ch := hub.Register("session1", 1)
	defer hub.Unregister("session1", 1, ch)

	done := make(chan struct{})
	go func() {
		for range 100 {
			hub.SendToSession("session1", "msg")
		}
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("send blocked on a full buffer")
	}
}

func TestHub_ConcurrentAccess(t *testing.T) {
	hub := sse.NewHub()
	const n = 100

	var wg sync.WaitGroup
	channels := make([]chan string, n)
	for i := range n {
		wg.Add(1)
		go func(idx int) {
			defer wg.Done()
			channels[idx] = hub.Register("session", 1)
		}(i)
	}
	wg.Wait()
	assert.Equal(t, n, hub.ClientCount())

	for range 10 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			hub.BoardChanged(1, "updated", 1)
		}()
	}
	wg.Wait()

	for i := range n {
		wg.Add(1)
		go func(idx int) {
			defer wg.Done()
			hub.Unregister("session", 1, channels[idx])
		}(i)
	}
	wg.Wait()
	assert.Equal(t, 0, hub.ClientCount())
}
