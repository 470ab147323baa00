// Package ui provides the main entry point for the UI.
package ui

import (
	"github.com/palemoky/point-calculator/internal/ui/input"
	"github.com/palemoky/point-calculator/internal/ui/model"
	"github.com/palemoky/point-calculator/internal/ui/view"
)

// Options 客户端依赖
type Options = model.Options

// New creates the scorekeeper model with its view and key handlers wired in.
func New(opts Options) *model.App {
	m := model.New(opts)
	m.SetViewRenderer(view.CreateViewRenderer())
	m.SetKeyHandler(input.HandleKeyPress)
	return m
}
