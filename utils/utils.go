// Package utils holds small helpers shared by the gateway, the server and the CLI.
package utils

import (
	"io"
	"regexp"
	"strings"

	"github.com/mitchellh/go-homedir"
)

// CopyMinBufferSize min buffer size used in CopyBuffered in bytes
const CopyMinBufferSize = 262144

// regex to test whether the last character is a '/'
var hasTrailingSlash = regexp.MustCompile("/$")

// EnsureTrailingSlash adds a trailing / when missing. Used for endpoint base URLs, never OS paths.
func EnsureTrailingSlash(dir string) string {
	if hasTrailingSlash.MatchString(dir) {
		return dir
	}
	return dir + "/"
}

// IsBlank reports whether s is empty or only whitespace.
func IsBlank(s string) bool {
	return strings.TrimSpace(s) == ""
}

// ExpandPath expands a leading ~ to the current user's home directory.
func ExpandPath(p string) (string, error) {
	if p == "" {
		return "", nil
	}
	return homedir.Expand(p)
}

// CopyBuffered is a wrapper around io.CopyBuffer which ensures that even an empty source (reader) results in a
// Write() call on the target, so empty remote files still produce an empty local file.
// bufferSize is in bytes and if is less than or equal to 0 will result in a buffer of size CopyMinBufferSize bytes.
// Read and write failures are wrapped with WrapReadError and WrapWriteError.
func CopyBuffered(writer io.Writer, reader io.Reader, bufferSize int) (int64, error) {
	if bufferSize <= 0 {
		bufferSize = CopyMinBufferSize
	}
	buffer := make([]byte, bufferSize)

	var size int64
	for {
		n, rerr := reader.Read(buffer)
		if n > 0 {
			written, werr := writer.Write(buffer[:n])
			size += int64(written)
			if werr != nil {
				return size, WrapWriteError(werr)
			}
			if written != n {
				return size, WrapWriteError(io.ErrShortWrite)
			}
		}
		if rerr == io.EOF {
			break
		}
		if rerr != nil {
			return size, WrapReadError(rerr)
		}
	}

	if size == 0 {
		if _, err := writer.Write([]byte{}); err != nil {
			return 0, WrapWriteError(err)
		}
	}
	return size, nil
}
