package logger

import (
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"

	"github.com/example/langportal/internal/config"
	"gopkg.in/natefinch/lumberjack.v2"
)

var output io.Writer = os.Stdout

// Setup routes the standard logger to stdout and a rotating file in cfg.Dir.
// The returned closer flushes and closes the file.
func Setup(cfg config.LogConfig) (io.Closer, error) {
	if err := os.MkdirAll(cfg.Dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create log directory: %w", err)
	}

	file := &lumberjack.Logger{
		Filename:   filepath.Join(cfg.Dir, "langportal.log"),
		MaxSize:    cfg.MaxSizeMB,
		MaxBackups: cfg.MaxBackups,
		MaxAge:     cfg.MaxAgeDays,
		Compress:   true,
	}

	output = io.MultiWriter(os.Stdout, file)
	log.SetOutput(output)
	log.SetFlags(log.Ldate | log.Ltime | log.LUTC)
	return file, nil
}

// Writer returns the writer the standard logger currently uses
func Writer() io.Writer {
	return output
}

func Infof(format string, v ...interface{}) {
	log.Printf("INFO: "+format, v...)
}

func Warnf(format string, v ...interface{}) {
	log.Printf("WARNING: "+format, v...)
}

func Errorf(format string, v ...interface{}) {
	log.Printf("ERROR: "+format, v...)
}
