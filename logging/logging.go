// Package logging writes a debug log next to the vault files. The
// interactive screen is never written to; everything diagnostic goes
// here so a session transcript survives for bug reports.
package logging

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/gofrs/uuid"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

const logFile = "debug.log"

// Open appends to the debug log in the config directory. Every line
// carries a per-run session id so interleaved runs can be told apart.
// The returned close function flushes buffered entries.
func Open(dir string) (*zap.Logger, func(), error) {
	if err := os.MkdirAll(dir, 0700); err != nil {
		return nil, nil, fmt.Errorf("failed to create config directory: %w", err)
	}

	file, err := os.OpenFile(filepath.Join(dir, logFile), os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0600)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open debug log: %w", err)
	}

	encoderConfig := zap.NewProductionEncoderConfig()
	encoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder

	core := zapcore.NewCore(
		zapcore.NewConsoleEncoder(encoderConfig),
		zapcore.Lock(file),
		zap.DebugLevel,
	)

	session := uuid.Must(uuid.NewV4()).String()
	log := zap.New(core).With(zap.String("session", session))

	closeFn := func() {
		_ = log.Sync()
		_ = file.Close()
	}
	return log, closeFn, nil
}
