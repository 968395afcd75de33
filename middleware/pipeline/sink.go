package pipeline

import "go.uber.org/zap"

// Sink é o colaborador de observabilidade injetado nos gates.
// *zap.Logger satisfaz esta interface.
type Sink interface {
	Info(msg string, fields ...zap.Field)
	Warn(msg string, fields ...zap.Field)
	Error(msg string, fields ...zap.Field)
}

func sinkOrNop(s Sink) Sink {
	if s == nil {
		return zap.NewNop()
	}
	return s
}
