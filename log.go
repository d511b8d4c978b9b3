package bstmap

import (
	"io"
	"log/slog"
	"os"

	"github.com/MatusOllah/slogcolor"
	"github.com/fatih/color"
)

var (
	logger = NewLogger(os.Stderr, slog.LevelInfo)
)

// NewLogger returns the colored logger used by default by every Map.
func NewLogger(w io.Writer, level slog.Leveler) *slog.Logger {
	return slog.New(slogcolor.NewHandler(w, &slogcolor.Options{
		Level:         level,
		TimeFormat:    "15:04:05.000",
		SrcFileMode:   slogcolor.ShortFile,
		SrcFileLength: 16,
		MsgPrefix:     color.HiWhiteString("|"),
		MsgColor:      color.New(color.FgHiWhite),
		MsgLength:     24,
	}))
}
