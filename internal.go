package ctxlog

import (
	"os"
	"path/filepath"

	"github.com/Station-Manager/errors"
	"github.com/Station-Manager/utils"
	"github.com/rs/zerolog"
	"gopkg.in/natefinch/lumberjack.v2"
)

func (s *Service) initializeRollingFileLogger() (*lumberjack.Logger, error) {
	const op errors.Op = "ctxlog.Service.initializeRollingFileLogger"

	dir := filepath.Join(s.WorkingDir, s.Config.RelLogFileDir)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, errors.New(op).Err(err).Msg(errMsgLogDir)
	}

	name := s.Config.LogFileName
	if name == emptyString {
		if exeName, err := utils.ExecName(true); err == nil && exeName != emptyString {
			name = exeName
		} else {
			name = defaultLogFileName
		}
	}

	return &lumberjack.Logger{
		Filename:   filepath.Join(dir, name+".log"),
		MaxBackups: s.Config.LogFileMaxBackups,
		MaxAge:     s.Config.LogFileMaxAgeDays,
		MaxSize:    s.Config.LogFileMaxSizeMB,
		Compress:   s.Config.LogFileCompress,
	}, nil
}

// fileSink mirrors emitted records as zerolog JSON lines.
type fileSink struct {
	logger zerolog.Logger
}

func newFileSink(w *lumberjack.Logger) *fileSink {
	return &fileSink{logger: zerolog.New(w).Level(zerolog.TraceLevel)}
}

func (f *fileSink) Write(rec *Record) {
	e := f.logger.WithLevel(zerologLevel(rec.Severity)).
		Time(zerolog.TimestampFieldName, rec.Time)
	if ctx := rec.Context(); len(ctx) > 0 {
		e = e.Strs("context", ctx)
	}
	if rec.HasParams {
		e = e.RawJSON("params", []byte(paramsJSON(rec)))
	}
	e.Msg(rec.Text)
}

// paramsJSON keeps the file line valid JSON even when params did not serialise.
func paramsJSON(rec *Record) string {
	if rec.ParamsText == FallbackMarker {
		s, _ := marshalJSON(FallbackMarker)
		return s
	}
	if _, ok := rec.Params.(string); ok {
		s, _ := marshalJSON(rec.Params)
		return s
	}
	return rec.ParamsText
}
