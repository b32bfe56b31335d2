package handler

// respond.go centralizes the response envelope used by every endpoint:
// successes carry {status, data, message}, failures carry {status, error},
// with the numeric status mirrored in the transport status line.

import (
	"context"
	"io"
	"mime/multipart"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
)

func ok(c echo.Context, status int, data any, message string) error {
	return c.JSON(status, echo.Map{"status": status, "data": data, "message": message})
}

func fail(c echo.Context, status int, msg string) error {
	return c.JSON(status, echo.Map{"status": status, "error": msg})
}

// reqCtx bounds the duration of database work for one request.
func reqCtx(c echo.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(c.Request().Context(), 5*time.Second)
}

// pathID parses a numeric path parameter.
func pathID(c echo.Context, name string) (uint64, bool) {
	id, err := strconv.ParseUint(c.Param(name), 10, 64)
	return id, err == nil && id > 0
}

// saveTempFile spools an uploaded multipart file to the OS temp directory
// and returns its path.  The media layer removes the file after uploading,
// success or failure.
func saveTempFile(fh *multipart.FileHeader) (string, error) {
	src, err := fh.Open()
	if err != nil {
		return "", err
	}
	defer src.Close()

	dst, err := os.CreateTemp("", "upload-*"+filepath.Ext(fh.Filename))
	if err != nil {
		return "", err
	}
	defer dst.Close()

	if _, err := io.Copy(dst, src); err != nil {
		os.Remove(dst.Name())
		return "", err
	}
	return dst.Name(), nil
}
