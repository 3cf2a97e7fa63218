// Package ui contains the Bubble Tea program that renders the node browser.
// The Model type focuses on message orchestration while dedicated helpers own
// navigation, input, rendering and background work.
//
// Message flow:
//   - Bubble Tea invokes Model.Update with incoming messages. Each tea.Msg is
//     routed through a typed handler registry so it is handled by a focused
//     function (key presses, mouse events, frames, backend updates).
//   - A frameMsg drives one render step: the browser session ticks every view
//     and drains its delivery queue, so detail texts computed by background
//     workers are only ever applied on the Bubble Tea goroutine. The next
//     frame is scheduled with whatever remains of the frame interval.
//   - Navigation helpers (navigation.go, click.go) move the cursor, expand
//     and collapse nodes and translate clicks into selections. Filter editing
//     lives in input.go and the open prompt in prompt.go.
//
// State ownership:
//   - Outline state per view lives in internal/ui/state.Level, which tracks
//     the flattened rows, expansion, filtering and viewport calculations.
//   - Selection and detail state belong to the browser.Session; the UI only
//     asks it to select, clear or refresh and renders its Display.
//   - Opening and reloading sources block on I/O, so they run through the
//     internal/ui/command bus and come back as messages.
//
// Backend interactions:
//   - A backend.Watcher reports changed sources; the model reloads every view
//     showing that source and keeps each view's expansion and selection where
//     the same label path still exists.
package ui
