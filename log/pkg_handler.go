// Copyright (c) 2026 The MANA developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package log

import (
	"context"
	"log/slog"
)

// PkgLevelHandler filters records by level, allowing a dedicated level for
// loggers created with a matching "pkg" context. The wrapped handler should
// accept every level.
type PkgLevelHandler struct {
	inner     slog.Handler
	def       slog.Leveler
	overrides map[string]slog.Leveler
	effective slog.Leveler
}

// NewPkgLevelHandler creates the handler. overrides maps a package name to its level.
func NewPkgLevelHandler(inner slog.Handler, def slog.Leveler, overrides map[string]slog.Leveler) *PkgLevelHandler {
	return &PkgLevelHandler{
		inner:     inner,
		def:       def,
		overrides: overrides,
		effective: def,
	}
}

func (h *PkgLevelHandler) Enabled(_ context.Context, level slog.Level) bool {
	return level >= h.effective.Level()
}

func (h *PkgLevelHandler) Handle(ctx context.Context, r slog.Record) error {
	return h.inner.Handle(ctx, r)
}

func (h *PkgLevelHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	effective := h.effective
	for _, attr := range attrs {
		if attr.Key != "pkg" {
			continue
		}
		if lvl, ok := h.overrides[attr.Value.String()]; ok {
			effective = lvl
		}
	}
	return &PkgLevelHandler{
		inner:     h.inner.WithAttrs(attrs),
		def:       h.def,
		overrides: h.overrides,
		effective: effective,
	}
}

func (h *PkgLevelHandler) WithGroup(name string) slog.Handler {
	return &PkgLevelHandler{
		inner:     h.inner.WithGroup(name),
		def:       h.def,
		overrides: h.overrides,
		effective: h.effective,
	}
}
