package output

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/chxlky/trello-report/internal/report"
)

// FileSink writes every report as a UTF-8 text file under Dir.
type FileSink struct {
	Dir    string
	Naming Naming
}

func (f *FileSink) Name() string {
	return "files"
}

func (f *FileSink) Publish(ctx context.Context, set *report.Set) error {
	if err := os.MkdirAll(f.Dir, 0o755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}
	for _, r := range set.All() {
		if err := ctx.Err(); err != nil {
			return err
		}
		path := filepath.Join(f.Dir, f.Naming.FileName(r))
		if err := os.WriteFile(path, []byte(r.Body), 0o644); err != nil {
			return fmt.Errorf("failed to write %s: %w", path, err)
		}
	}
	return nil
}
