package logger

import (
	"os"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

const (
	envDevelopment = "development"
	envProduction  = "production"
)

// New builds the process logger. Production writes JSON with ISO8601
// timestamps to stdout; every other environment gets zap's development
// console output at debug level.
func New(env string) *zap.Logger {
	if env != envProduction {
		l, err := zap.NewDevelopment()
		if err == nil {
			return l
		}
	}

	encoderConfig := zap.NewProductionEncoderConfig()
	encoderConfig.TimeKey = "timestamp"
	encoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	encoderConfig.EncodeLevel = zapcore.CapitalLevelEncoder

	encoder := zapcore.NewJSONEncoder(encoderConfig)
	writer := zapcore.AddSync(os.Stdout)
	core := zapcore.NewCore(encoder, writer, zapcore.InfoLevel)

	return zap.New(core, zap.AddCaller())
}
