package dot

import (
	"bytes"
	"fmt"
	"io"
	"os/exec"

	"go.uber.org/zap"
)

// Execute pipes DOT source through the graphviz binary. format is any
// graphviz -T value ("png", "svg", ...). Requires dot on PATH.
func Execute(input io.Reader, output io.Writer, format string) error {
	errBuff := new(bytes.Buffer)
	cmd := exec.Command("dot", "-T"+format)
	cmd.Stdin = input
	cmd.Stdout = output
	cmd.Stderr = errBuff
	err := cmd.Run()
	if err != nil {
		return fmt.Errorf("could not run 'dot': %w: %s", err, errBuff.String())
	}
	return nil
}

// Raster renders DOT source to a raster image in memory.
func Raster(input io.Reader, format string) ([]byte, error) {
	out := new(bytes.Buffer)
	if err := Execute(input, out, format); err != nil {
		return nil, err
	}
	zap.S().Named("dot").Debugf("dot output %d bytes", out.Len())
	return out.Bytes(), nil
}
