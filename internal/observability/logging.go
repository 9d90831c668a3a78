package observability

import (
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/hirelane/recruitment-service/internal/config"
)

// NewLogger builds the service logger. Unknown levels fall back to info; LOG_FORMAT=console
// switches to the human readable encoder for local work. Every entry carries service, env and version.
func NewLogger(cfg config.LoggerConfig) (*zap.Logger, error) {
	level := zapcore.InfoLevel
	if err := level.Set(strings.ToLower(cfg.Level)); err != nil {
		level = zapcore.InfoLevel
	}

	encoding := "json"
	encodeLevel := zapcore.LowercaseLevelEncoder
	if strings.EqualFold(cfg.Format, "console") {
		encoding = "console"
		encodeLevel = zapcore.CapitalColorLevelEncoder
	}

	zapCfg := zap.Config{
		Level:       zap.NewAtomicLevelAt(level),
		Development: !strings.EqualFold(cfg.Env, "production"),
		Encoding:    encoding,
		EncoderConfig: zapcore.EncoderConfig{
			MessageKey:     "message",
			LevelKey:       "level",
			TimeKey:        "ts",
			CallerKey:      "caller",
			StacktraceKey:  "stacktrace",
			EncodeLevel:    encodeLevel,
			EncodeTime:     zapcore.ISO8601TimeEncoder,
			EncodeDuration: zapcore.MillisDurationEncoder,
			EncodeCaller:   zapcore.ShortCallerEncoder,
		},
		OutputPaths:      []string{"stdout"},
		ErrorOutputPaths: []string{"stderr"},
		InitialFields:    baseFields(cfg),
	}

	return zapCfg.Build()
}

func baseFields(cfg config.LoggerConfig) map[string]interface{} {
	fields := map[string]interface{}{}
	if cfg.Service != "" {
		fields["service"] = cfg.Service
	}
	if cfg.Env != "" {
		fields["env"] = cfg.Env
	}
	if cfg.Version != "" {
		fields["version"] = cfg.Version
	}
	return fields
}
