package render

import (
	"errors"
	"io"
	"os"
	"path/filepath"

	"go.uber.org/zap"
)

// File is one renderable artifact. Renderers stay pure WriterTo
// implementations; only WriteFiles touches the filesystem.
type File interface {
	Path() string
	io.WriterTo
}

// WriteFiles materializes every artifact under dir, creating parent
// directories as needed. A failing file does not stop the others.
func WriteFiles(dir string, files ...File) error {
	log := zap.S().Named("render")

	var errs error
	for _, f := range files {
		path := filepath.Join(dir, f.Path())
		if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
			errs = errors.Join(errs, err)
			continue
		}
		out, err := os.Create(path)
		if err != nil {
			errs = errors.Join(errs, err)
			continue
		}
		n, werr := f.WriteTo(out)
		errs = errors.Join(errs, werr, out.Close())
		if werr == nil {
			log.Debugf("wrote %s (%d bytes)", path, n)
		}
	}
	return errs
}
