package debug

import "go.uber.org/zap"

type zapDebugger struct {
	logger         *zap.Logger
	context        string
	dynamicContext func() string
}

// NewZapDebugger logs at debug level through logger.
// The context goes into the "context" field, the values into "values".
func NewZapDebugger(logger *zap.Logger) Debugger {
	return &zapDebugger{logger: logger}
}

func (d *zapDebugger) Log(main string, v ...any) {
	fields := make([]zap.Field, 0, 3)
	if d.context != "" {
		fields = append(fields, zap.String("context", d.context))
	}
	if d.dynamicContext != nil {
		if dc := d.dynamicContext(); dc != "" {
			fields = append(fields, zap.String("state", dc))
		}
	}
	if len(v) > 0 {
		fields = append(fields, zap.Any("values", v))
	}
	d.logger.Debug(main, fields...)
}

func (d zapDebugger) WithContext(context string) Debugger {
	d.context = joinContext(d.context, context)
	d.dynamicContext = nil
	return &d
}

func (d zapDebugger) WithDynamicContext(context string, dynamicContext func() string) Debugger {
	d.context = joinContext(d.context, context)
	d.dynamicContext = dynamicContext
	return &d
}
