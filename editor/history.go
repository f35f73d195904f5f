// Package editor keeps the undo history of interactive canvas edits.
package editor

import (
	"fmt"

	"orthoroute/connections"
	"orthoroute/core"
)

// Placement records a component or port moved by a user action.
// Exactly one of Component and Port is set.
type Placement struct {
	Component string
	Port      string
	Old       core.Point // Component origin or port position before the move
	New       core.Point
}

// Command is one undoable user action: what was moved and how the routes
// changed in response.
type Command struct {
	Label      string
	Placements []Placement
	Records    []connections.MoveRecord
}

// Empty reports whether the command changes nothing.
func (c Command) Empty() bool {
	return len(c.Placements) == 0 && len(c.Records) == 0
}

// History manages undo/redo of commands. Undo replays the recorded old
// state onto the canvas rather than rerouting, so an undone edit looks
// exactly as it did.
type History struct {
	commands []Command
	current  int // Number of commands currently applied
	max      int // Maximum number of commands to keep
}

// NewHistory creates a history keeping at most max commands.
func NewHistory(max int) *History {
	if max <= 0 {
		max = 50
	}
	return &History{
		commands: make([]Command, 0, max),
		max:      max,
	}
}

// Push records an applied command. Redo history after the current position
// is dropped. Empty commands are ignored.
func (h *History) Push(cmd Command) {
	if cmd.Empty() {
		return
	}

	// If we're not at the end, truncate everything after current
	h.commands = h.commands[:h.current]
	h.commands = append(h.commands, cmd)

	// If we exceed max, remove oldest
	if len(h.commands) > h.max {
		h.commands = h.commands[1:]
	}
	h.current = len(h.commands)
}

// CanUndo returns true if we can undo
func (h *History) CanUndo() bool {
	return h.current > 0
}

// CanRedo returns true if we can redo
func (h *History) CanRedo() bool {
	return h.current < len(h.commands)
}

// Undo reverts the last applied command on canvas.
func (h *History) Undo(canvas *connections.Canvas) (Command, bool, error) {
	if !h.CanUndo() {
		return Command{}, false, nil
	}

	cmd := h.commands[h.current-1]
	for i := len(cmd.Placements) - 1; i >= 0; i-- {
		if err := place(canvas, cmd.Placements[i], true); err != nil {
			return cmd, false, fmt.Errorf("undo %s: %w", cmd.Label, err)
		}
	}
	for i := len(cmd.Records) - 1; i >= 0; i-- {
		if err := canvas.Apply(cmd.Records[i], true); err != nil {
			return cmd, false, fmt.Errorf("undo %s: %w", cmd.Label, err)
		}
	}

	h.current--
	return cmd, true, nil
}

// Redo re-applies the next command on canvas.
func (h *History) Redo(canvas *connections.Canvas) (Command, bool, error) {
	if !h.CanRedo() {
		return Command{}, false, nil
	}

	cmd := h.commands[h.current]
	for _, p := range cmd.Placements {
		if err := place(canvas, p, false); err != nil {
			return cmd, false, fmt.Errorf("redo %s: %w", cmd.Label, err)
		}
	}
	for _, rec := range cmd.Records {
		if err := canvas.Apply(rec, false); err != nil {
			return cmd, false, fmt.Errorf("redo %s: %w", cmd.Label, err)
		}
	}

	h.current++
	return cmd, true, nil
}

func place(canvas *connections.Canvas, p Placement, undo bool) error {
	pos := p.New
	if undo {
		pos = p.Old
	}
	if p.Component != "" {
		return canvas.PlaceComponent(p.Component, pos)
	}
	return canvas.PlacePort(p.Port, pos)
}

// Clear clears all history
func (h *History) Clear() {
	h.commands = h.commands[:0]
	h.current = 0
}

// Stats returns current position and total commands
func (h *History) Stats() (current, total int) {
	return h.current, len(h.commands)
}
