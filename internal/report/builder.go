package report

import (
	"fmt"
	"strings"

	"go.uber.org/zap"
)

// Echo receives every line written to a Builder, as it is written.
type Echo func(line string)

// LogEcho mirrors report lines into logger, one entry per line.
func LogEcho(logger *zap.Logger) Echo {
	return func(line string) {
		logger.Info(line)
	}
}

// Builder accumulates the text of a single report.
type Builder struct {
	buf  strings.Builder
	echo Echo
}

func NewBuilder(echo Echo) *Builder {
	return &Builder{echo: echo}
}

// Println writes s followed by a newline. s may span several lines.
func (b *Builder) Println(s string) {
	if b.echo != nil {
		for _, line := range strings.Split(s, "\n") {
			b.echo(line)
		}
	}
	b.buf.WriteString(s)
	b.buf.WriteByte('\n')
}

func (b *Builder) Printf(format string, args ...any) {
	b.Println(fmt.Sprintf(format, args...))
}

func (b *Builder) Lines(lines []string) {
	for _, l := range lines {
		b.Println(l)
	}
}

func (b *Builder) String() string {
	return b.buf.String()
}
