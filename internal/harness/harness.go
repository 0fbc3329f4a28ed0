package harness

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/spf13/cast"
	"go.uber.org/multierr"
	"go.uber.org/zap"

	"github.com/benz9527/xcursor/lib/infra"
	"github.com/benz9527/xcursor/lib/list"
	"github.com/benz9527/xcursor/xlog"
)

var (
	ErrHarnessUnknownCommand = errors.New("[harness] unknown command")
	ErrHarnessBadArgument    = errors.New("[harness] bad argument")
)

// Log context keys, see xlog.WithContextField.
const (
	ContextKeyScript = "script"
	ContextKeyLine   = "line"
)

const resultOK = "ok"

type command struct {
	withArg bool
	exec    func(l list.CursorList, arg int) (string, error)
}

func noArg(fn func(l list.CursorList) (string, error)) command {
	return command{exec: func(l list.CursorList, _ int) (string, error) { return fn(l) }}
}

func withArg(fn func(l list.CursorList, v int) (string, error)) command {
	return command{withArg: true, exec: fn}
}

func valueResult(v int, err error) (string, error) {
	if err != nil {
		return "", err
	}
	return strconv.Itoa(v), nil
}

func okResult(err error) (string, error) {
	if err != nil {
		return "", err
	}
	return resultOK, nil
}

var commands = map[string]command{
	"reset": noArg(func(l list.CursorList) (string, error) {
		l.Reset()
		return resultOK, nil
	}),
	"add": withArg(func(l list.CursorList, v int) (string, error) {
		l.InsertBefore(v)
		return resultOK, nil
	}),
	"hasnext": noArg(func(l list.CursorList) (string, error) {
		return strconv.FormatBool(l.HasNext()), nil
	}),
	"hasprev": noArg(func(l list.CursorList) (string, error) {
		return strconv.FormatBool(l.HasPrevious()), nil
	}),
	"next": noArg(func(l list.CursorList) (string, error) {
		return valueResult(l.Next())
	}),
	"prev": noArg(func(l list.CursorList) (string, error) {
		return valueResult(l.Previous())
	}),
	"findnext": withArg(func(l list.CursorList, v int) (string, error) {
		return valueResult(l.FindNext(v))
	}),
	"findprev": withArg(func(l list.CursorList, v int) (string, error) {
		return valueResult(l.FindPrevious(v))
	}),
	"delete": noArg(func(l list.CursorList) (string, error) {
		return okResult(l.Delete())
	}),
	"set": withArg(func(l list.CursorList, v int) (string, error) {
		return okResult(l.Set(v))
	}),
	"show": noArg(func(l list.CursorList) (string, error) {
		return l.Snapshot().String(), nil
	}),
	"len": noArg(func(l list.CursorList) (string, error) {
		return strconv.Itoa(l.Len()), nil
	}),
	"validate": noArg(func(l list.CursorList) (string, error) {
		return okResult(l.Validate())
	}),
	"help": noArg(func(list.CursorList) (string, error) {
		return Usage, nil
	}),
}

// Usage lists the commands, one per line.
const Usage = `reset          cursor before the first element
add <v>        insert v before the cursor (alias insert)
hasnext        true if an element follows the cursor
hasprev        true if an element precedes the cursor
next           step forward and print the element
prev           step backward and print the element
findnext <v>   step forward past the next v
findprev <v>   step backward before the previous v
delete         remove the element returned by the last move
set <v>        overwrite the element returned by the last move
show           print the values with ^ at the cursor
len            print the element count
validate       check the links
<v> is a decimal integer, leading zeros are ignored`

var commandAliases = map[string]string{
	"insert":       "add",
	"hasprevious":  "hasprev",
	"previous":     "prev",
	"findprevious": "findprev",
}

// Harness drives a cursor list from a line oriented command script.
type Harness struct {
	list        list.CursorList
	logger      xlog.XLogger
	stopOnError bool
}

type HarnessOption func(h *Harness)

func WithHarnessLogger(logger xlog.XLogger) HarnessOption {
	return func(h *Harness) {
		h.logger = logger
	}
}

// WithHarnessStopOnError makes Run return at the first failed line.
func WithHarnessStopOnError() HarnessOption {
	return func(h *Harness) {
		h.stopOnError = true
	}
}

func New(cursors list.CursorList, opts ...HarnessOption) *Harness {
	if cursors == nil {
		panic("[harness] nil cursor list")
	}
	h := &Harness{
		list: cursors,
	}
	for _, o := range opts {
		if o != nil {
			o(h)
		}
	}
	if h.logger == nil {
		h.logger = xlog.NewNopXLogger()
	}
	return h
}

func isIgnored(line string) bool {
	line = strings.TrimSpace(line)
	return len(line) == 0 || strings.HasPrefix(line, "#")
}

// parseValue reads a decimal integer. Leading zeros are dropped so "08"
// is 8 instead of an invalid octal literal.
func parseValue(s string) (int, error) {
	sign := ""
	if strings.HasPrefix(s, "-") || strings.HasPrefix(s, "+") {
		sign, s = s[:1], s[1:]
	}
	if digits := strings.TrimLeft(s, "0"); len(digits) < len(s) {
		s = digits
		if len(s) == 0 {
			s = "0"
		}
	}
	return cast.ToIntE(sign + s)
}

// Exec runs a single command line. Ignored lines return an empty result.
// Values are decimal integers; "help" lists the commands.
func (h *Harness) Exec(line string) (string, error) {
	if isIgnored(line) {
		return "", nil
	}
	fields := strings.Fields(line)
	name := strings.ToLower(fields[0])
	if alias, ok := commandAliases[name]; ok {
		name = alias
	}
	cmd, ok := commands[name]
	if !ok {
		return "", infra.WrapErrorStackWithMessage(ErrHarnessUnknownCommand, fmt.Sprintf("%q", fields[0]))
	}

	args := fields[1:]
	var arg int
	switch {
	case cmd.withArg && len(args) != 1:
		return "", infra.WrapErrorStackWithMessage(ErrHarnessBadArgument, name+" expects one integer")
	case !cmd.withArg && len(args) != 0:
		return "", infra.WrapErrorStackWithMessage(ErrHarnessBadArgument, name+" takes no argument")
	case cmd.withArg:
		v, err := parseValue(args[0])
		if err != nil {
			return "", infra.WrapErrorStackWithMessage(ErrHarnessBadArgument, fmt.Sprintf("%s %q", name, args[0]))
		}
		arg = v
	default:
	}

	res, err := cmd.exec(h.list, arg)
	if err != nil {
		return "", infra.WrapErrorStackWithMessage(err, name)
	}
	return res, nil
}

// Run executes r line by line and writes one result per executed line to w.
// Failed lines are written as "error: <msg>" and returned combined, unless
// stop on error is set. Run returns as soon as ctx is done, even while a
// read from r is still blocked.
func (h *Harness) Run(ctx context.Context, r io.Reader, w io.Writer) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	lines := make(chan string)
	scanErr := make(chan error, 1)
	go func() {
		defer close(lines)
		scanner := bufio.NewScanner(r)
		for scanner.Scan() {
			select {
			case lines <- scanner.Text():
			case <-ctx.Done():
				return
			}
		}
		scanErr <- scanner.Err()
	}()

	var (
		merr   error
		lineNo = 0
	)
	for {
		if err := ctx.Err(); err != nil {
			return multierr.Append(merr, err)
		}
		var (
			line string
			ok   bool
		)
		select {
		case <-ctx.Done():
			return multierr.Append(merr, ctx.Err())
		case line, ok = <-lines:
		}
		if !ok {
			break
		}

		lineNo++
		if isIgnored(line) {
			continue
		}
		lineCtx := xlog.WithContextField(ctx, ContextKeyLine, lineNo)
		res, err := h.Exec(line)
		if err != nil {
			h.logger.WarnContext(lineCtx, "harness command failed",
				zap.String("cmd", strings.TrimSpace(line)),
				zap.String("error", err.Error()),
			)
			if _, werr := fmt.Fprintf(w, "error: %s\n", err.Error()); werr != nil {
				return multierr.Append(merr, werr)
			}
			err = infra.WrapErrorStackWithMessage(err, "line "+strconv.Itoa(lineNo))
			if h.stopOnError {
				return err
			}
			merr = multierr.Append(merr, err)
			continue
		}
		h.logger.DebugContext(lineCtx, "harness command executed",
			zap.String("cmd", strings.TrimSpace(line)),
			zap.String("result", res),
		)
		if _, werr := fmt.Fprintln(w, res); werr != nil {
			return multierr.Append(merr, werr)
		}
	}

	select {
	case err := <-scanErr:
		merr = multierr.Append(merr, err)
	default:
	}
	return merr
}
