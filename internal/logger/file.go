package logger

import (
	"context"
	"io"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// fileLevelNames are the level labels written to the log file.
//
//nolint:gochecknoglobals // Read-only lookup table.
var fileLevelNames = map[zapcore.Level]string{
	zapcore.DebugLevel: "DEBUG",
	zapcore.InfoLevel:  "INFO",
	zapcore.WarnLevel:  "WARNING",
	zapcore.ErrorLevel: "ERROR",
}

const successLevelName = "SUCCESS"

// WithFile mirrors every message logged through the returned context into w
// as plain text lines. The file receives debug messages regardless of the
// console level, carries the fields bound with WithKV and labels Success
// messages as SUCCESS. Write failures are dropped so a broken log file never
// hides the error that is being reported.
func WithFile(ctx context.Context, w io.Writer) context.Context {
	sink := zapcore.AddSync(w)

	var file zapcore.Core = &fileCore{
		plain:   zapcore.NewCore(newFileEncoder(encodeFileLevel), sink, zapcore.DebugLevel),
		success: zapcore.NewCore(newFileEncoder(encodeSuccessLevel), sink, zapcore.DebugLevel),
	}

	if kvs := boundKVs(ctx); len(kvs) > 0 {
		file = zap.New(file).Sugar().With(kvs...).Desugar().Core()
	}

	base := FromContext(ctx).Desugar().WithOptions(
		zap.WrapCore(func(core zapcore.Core) zapcore.Core {
			return zapcore.NewTee(core, file)
		}),
		zap.ErrorOutput(zapcore.AddSync(io.Discard)),
	)

	return ToContext(ctx, base.Sugar())
}

// fileCore writes entries tagged with result=success through the success encoder.
type fileCore struct {
	plain     zapcore.Core
	success   zapcore.Core
	succeeded bool
}

func (c *fileCore) Enabled(level zapcore.Level) bool {
	return c.plain.Enabled(level)
}

//nolint:ireturn,nolintlint // Returning zapcore.Core is intended for zap integration.
func (c *fileCore) With(fields []zapcore.Field) zapcore.Core {
	return &fileCore{
		plain:     c.plain.With(fields),
		success:   c.success.With(fields),
		succeeded: c.succeeded || hasSuccess(fields),
	}
}

//nolint:gocritic // AddCore requires entry to be passed by value.
func (c *fileCore) Check(entry zapcore.Entry, checked *zapcore.CheckedEntry) *zapcore.CheckedEntry {
	if c.Enabled(entry.Level) {
		return checked.AddCore(entry, c)
	}

	return checked
}

//nolint:gocritic // Core.Write takes the entry by value.
func (c *fileCore) Write(entry zapcore.Entry, fields []zapcore.Field) error {
	if c.succeeded || hasSuccess(fields) {
		return c.success.Write(entry, fields)
	}

	return c.plain.Write(entry, fields)
}

func (c *fileCore) Sync() error {
	return c.plain.Sync()
}

func hasSuccess(fields []zapcore.Field) bool {
	for _, field := range fields {
		if field.Key == successKey && field.Type == zapcore.StringType && field.String == successValue {
			return true
		}
	}

	return false
}

func newFileEncoder(encodeLevel zapcore.LevelEncoder) zapcore.Encoder {
	//nolint:exhaustruct // Defaults are fine for the remaining fields.
	return zapcore.NewConsoleEncoder(zapcore.EncoderConfig{
		TimeKey:          "time",
		MessageKey:       "message",
		LevelKey:         "level",
		NameKey:          "logger",
		LineEnding:       zapcore.DefaultLineEnding,
		EncodeLevel:      encodeLevel,
		EncodeTime:       zapcore.TimeEncoderOfLayout("2006-01-02 15:04:05"),
		EncodeDuration:   zapcore.StringDurationEncoder,
		EncodeName:       zapcore.FullNameEncoder,
		ConsoleSeparator: " ",
	})
}

func encodeFileLevel(level zapcore.Level, enc zapcore.PrimitiveArrayEncoder) {
	name, ok := fileLevelNames[level]
	if !ok {
		name = level.CapitalString()
	}

	enc.AppendString("[" + name + "]")
}

func encodeSuccessLevel(_ zapcore.Level, enc zapcore.PrimitiveArrayEncoder) {
	enc.AppendString("[" + successLevelName + "]")
}
