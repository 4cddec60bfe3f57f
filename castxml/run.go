package castxml

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"strings"
	"time"

	"github.com/tliron/commonlog"
)

var log = commonlog.GetLogger("cdump.castxml")

const DefaultBinary = "castxml"

var ErrInvocation = errors.New("front-end invocation failed")

// InvocationError reports that castxml produced no tree for Path.
type InvocationError struct {
	Path   string
	Binary string
	Stderr string
	Err    error
}

func (e *InvocationError) Error() string {
	msg := fmt.Sprintf("%s %s: %v", e.Binary, e.Path, e.Err)
	if stderr := strings.TrimSpace(e.Stderr); stderr != "" {
		msg += ": " + stderr
	}
	return msg
}

func (e *InvocationError) Unwrap() []error {
	return []error{ErrInvocation, e.Err}
}

type Options struct {
	Binary  string
	Flags   []string
	Timeout time.Duration
}

func (o Options) binary() string {
	if o.Binary == "" {
		return DefaultBinary
	}
	return o.Binary
}

// Args returns the castxml command line for path, without the binary.
func (o Options) Args(path string) []string {
	args := []string{"-fno-builtin", "--castxml-output=1", "-o", "-"}
	args = append(args, o.Flags...)
	return append(args, path)
}

// Run invokes castxml on a C source file and parses its output. The call
// blocks until castxml exits; there are no partial results.
func Run(ctx context.Context, opts Options, path string) (*Document, error) {
	if _, err := os.Stat(path); err != nil {
		return nil, &InvocationError{Path: path, Binary: opts.binary(), Err: err}
	}

	if opts.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, opts.Timeout)
		defer cancel()
	}

	var stdout, stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, opts.binary(), opts.Args(path)...)
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	start := time.Now()
	log.Debug("running front-end", "binary", opts.binary(), "path", path)
	if err := cmd.Run(); err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			err = fmt.Errorf("%w: %w", ctxErr, err)
		}
		return nil, &InvocationError{Path: path, Binary: opts.binary(), Stderr: stderr.String(), Err: err}
	}
	log.Debug("front-end finished", "path", path, "bytes", stdout.Len(), "elapsed", time.Since(start))

	doc, err := Parse(&stdout)
	if err != nil {
		return nil, &InvocationError{Path: path, Binary: opts.binary(), Stderr: stderr.String(), Err: err}
	}
	return doc, nil
}
