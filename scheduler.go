package diorite

import (
	"go.uber.org/zap"
)

// scheduler fires lifecycle hooks in declaration order.
type scheduler struct {
	logger *zap.Logger
}

// global fires the class's global hooks of one phase.
func (sc *scheduler) global(class *Class, phase Phase, s *Session) error {
	for _, h := range class.Hooks {
		if h.Phase != phase || !h.Global() {
			continue
		}
		if err := sc.fire(class, h, s); err != nil {
			return err
		}
	}
	return nil
}

// point fires the hooks of one phase targeting p.
func (sc *scheduler) point(class *Class, p *InjectionPoint, phase Phase, s *Session) error {
	for _, h := range class.Hooks {
		if h.Phase != phase || !h.Matches(p) {
			continue
		}
		if err := sc.fire(class, h, s); err != nil {
			return err
		}
	}
	return nil
}

func (sc *scheduler) fire(class *Class, h *Hook, s *Session) error {
	if ce := sc.logger.Check(zap.DebugLevel, "hook fired"); ce != nil {
		ce.Write(
			zap.Stringer("type", class.Type),
			zap.String("method", h.Method),
			zap.Stringer("phase", h.Phase),
			zap.String("target", h.Target),
			zap.String("session", s.ID()),
		)
	}
	if err := h.invoke(s); err != nil {
		return &HookError{Type: class.Type, Method: h.Method, Phase: h.Phase, Cause: err}
	}
	return nil
}
