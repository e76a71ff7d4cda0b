package main

import (
	"context"
	"fmt"
	"sync"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/avelez/sleuth/pkg/engine"
)

// startBridge launches the event watcher goroutine. It only calls p.Send()
// and never touches model state directly. Returns a cancel function that
// cancels the bridge context and waits for the goroutine to exit, ensuring
// no stale messages are sent after return.
func startBridge(ctx context.Context, p *tea.Program, events *engine.EventBus) context.CancelFunc {
	bridgeCtx, cancel := context.WithCancel(ctx)

	var wg sync.WaitGroup
	sub := events.Subscribe(64)

	wg.Add(1)
	go func() {
		defer wg.Done()
		defer events.Unsubscribe(sub)
		for {
			select {
			case <-bridgeCtx.Done():
				return
			case ev, ok := <-sub.C:
				if !ok {
					return
				}
				switch ev.Kind {
				case engine.EventToolCallStart:
					args, _ := ev.Data.(string)
					p.Send(toolCallMsg{agent: ev.Agent, tool: ev.Tool, args: args})

				case engine.EventToolCallEnd:
					p.Send(toolDoneMsg{tool: ev.Tool})

				case engine.EventError:
					p.Send(agentErrorMsg{agent: ev.Agent, detail: fmt.Sprint(ev.Data)})
				}
			}
		}
	}()

	return func() {
		cancel()
		wg.Wait()
	}
}
