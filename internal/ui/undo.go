package ui

import (
	"context"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"

	"pipeline/internal/model"
	"pipeline/internal/views"
)

type undoAction struct {
	label string
	undo  func() error
	redo  func() error
}

type undoAppliedMsg struct {
	err       error
	action    undoAction
	direction string // undo, redo
}

func (m *Model) pushUndoAction(action undoAction) {
	m.undoStack = append(m.undoStack, action)
	m.redoStack = nil
}

func (m *Model) undoCmd() tea.Cmd {
	if len(m.undoStack) == 0 {
		return nil
	}
	action := m.undoStack[len(m.undoStack)-1]
	m.undoStack = m.undoStack[:len(m.undoStack)-1]
	return func() tea.Msg {
		err := action.undo()
		return undoAppliedMsg{err: err, action: action, direction: "undo"}
	}
}

func (m *Model) redoCmd() tea.Cmd {
	if len(m.redoStack) == 0 {
		return nil
	}
	action := m.redoStack[len(m.redoStack)-1]
	m.redoStack = m.redoStack[:len(m.redoStack)-1]
	return func() tea.Msg {
		err := action.redo()
		return undoAppliedMsg{err: err, action: action, direction: "redo"}
	}
}

func (m *Model) buildViewSaveAction(msg model.ViewSavedMsg) undoAction {
	store := m.store
	saved := msg.View
	if msg.Previous != nil {
		prev := *msg.Previous
		return undoAction{
			label: fmt.Sprintf("view %q overwritten", saved.Name),
			undo: func() error {
				return store.Restore(context.Background(), prev)
			},
			redo: func() error {
				return store.Restore(context.Background(), saved)
			},
		}
	}
	return undoAction{
		label: fmt.Sprintf("view %q saved", saved.Name),
		undo: func() error {
			_, err := store.DeleteView(context.Background(), saved.PageType, saved.ID)
			return err
		},
		redo: func() error {
			return store.Restore(context.Background(), saved)
		},
	}
}

func (m *Model) buildViewDeleteAction(deleted views.View) undoAction {
	store := m.store
	return undoAction{
		label: fmt.Sprintf("view %q deleted", deleted.Name),
		undo: func() error {
			return store.Restore(context.Background(), deleted)
		},
		redo: func() error {
			_, err := store.DeleteView(context.Background(), deleted.PageType, deleted.ID)
			return err
		},
	}
}

func (m *Model) applyUndoResult(msg undoAppliedMsg) tea.Cmd {
	if msg.err != nil {
		m.error = fmt.Sprintf("%s failed: %v", msg.direction, msg.err)
		return nil
	}

	if msg.direction == "undo" {
		m.redoStack = append(m.redoStack, msg.action)
		m.info = "Undid: " + msg.action.label
	} else {
		m.undoStack = append(m.undoStack, msg.action)
		m.info = "Redid: " + msg.action.label
	}
	m.error = ""
	return m.viewsPanel.Refresh()
}
