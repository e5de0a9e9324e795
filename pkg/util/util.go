package util

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"math"
	"strings"
)

// Error carries a code sentinel next to the wrapped cause so the pipeline
// boundary can classify failures with ErrorCode.
type Error struct {
	orig error
	msg  string
	code error
}

func (e *Error) Error() string {
	if e.orig != nil {
		return fmt.Sprintf("%s: %v", e.msg, e.orig)
	}

	return e.msg
}

func (e *Error) Unwrap() error {
	return e.orig
}

func WrapErrorf(orig error, code error, format string, a ...interface{}) error {
	return &Error{
		code: code,
		orig: orig,
		msg:  fmt.Sprintf(format, a...),
	}
}

func (e *Error) Code() error {
	return e.code
}

// ErrorCode returns the code of the first util.Error in err's chain, or nil.
func ErrorCode(err error) error {
	var uerr *Error
	if errors.As(err, &uerr) {
		return uerr.Code()
	}
	return nil
}

var (
	ErrBadParamInput      = errors.New("given param is not valid")
	ErrInputNotFound      = errors.New("input file not found")
	ErrOutputDirNotFound  = errors.New("output path not found")
	ErrNoLocations        = errors.New("no locations found in input")
	ErrProfileUnsupported = errors.New("profile not supported")
	ErrOptimizationFailed = errors.New("calculating route failed")
)

func DegreeToRadians(angle float64) float64 {
	return angle * (math.Pi / 180.0)
}

func RadiansToDegree(rad float64) float64 {
	return 180.0 * rad / math.Pi
}

func ReverseG[T any](arr []T) []T {
	copyArr := make([]T, len(arr)) // should do on the copy )
	copy(copyArr, arr)
	for i, j := 0, len(copyArr)-1; i < j; i, j = i+1, j-1 {
		copyArr[i], copyArr[j] = copyArr[j], copyArr[i]
	}
	return copyArr
}

// ReadLine reads one line without its trailing newline. A final line without
// newline is returned together with a nil error.
func ReadLine(br *bufio.Reader) (string, error) {
	line, err := br.ReadString('\n')
	if err != nil {
		if !(errors.Is(err, io.EOF) && len(line) > 0) {
			return "", err
		}
	}
	return strings.TrimRight(line, "\r\n"), nil
}
