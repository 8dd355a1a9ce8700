// Package gzippedhttp transparently decompresses gzip request bodies and
// compresses JSON responses for clients that accept gzip.
package gzippedhttp

import (
	"compress/gzip"
	"io"
	"net/http"
	"strings"
	"sync"

	"go.uber.org/zap"

	"github.com/patric-chuzhbe/filesmanager/internal/logger"
)

var gzipWriterPool = sync.Pool{
	New: func() interface{} {
		w, _ := gzip.NewWriterLevel(nil, gzip.BestSpeed)
		return w
	},
}

type gzipRequestBody struct {
	body io.ReadCloser
	zr   *gzip.Reader
}

func newGzipRequestBody(body io.ReadCloser) (*gzipRequestBody, error) {
	zr, err := gzip.NewReader(body)
	if err != nil {
		return nil, err
	}

	return &gzipRequestBody{body: body, zr: zr}, nil
}

func (g *gzipRequestBody) Read(p []byte) (int, error) {
	return g.zr.Read(p)
}

func (g *gzipRequestBody) Close() error {
	if err := g.zr.Close(); err != nil {
		return err
	}
	return g.body.Close()
}

// responseWriter decides on the first WriteHeader or Write whether the body
// gets compressed: only successful JSON answers are.
type responseWriter struct {
	http.ResponseWriter
	zw          *gzip.Writer
	wroteHeader bool
}

func (r *responseWriter) WriteHeader(statusCode int) {
	if r.wroteHeader {
		return
	}
	r.wroteHeader = true

	contentType := r.Header().Get("Content-Type")
	if statusCode < http.StatusMultipleChoices &&
		statusCode != http.StatusNoContent &&
		strings.HasPrefix(contentType, "application/json") {
		r.Header().Set("Content-Encoding", "gzip")
		r.Header().Del("Content-Length")
		zw := gzipWriterPool.Get().(*gzip.Writer)
		zw.Reset(r.ResponseWriter)
		r.zw = zw
	}

	r.ResponseWriter.WriteHeader(statusCode)
}

func (r *responseWriter) Write(p []byte) (int, error) {
	if !r.wroteHeader {
		r.WriteHeader(http.StatusOK)
	}
	if r.zw != nil {
		return r.zw.Write(p)
	}

	return r.ResponseWriter.Write(p)
}

func (r *responseWriter) close() error {
	if r.zw == nil {
		return nil
	}
	err := r.zw.Close()
	gzipWriterPool.Put(r.zw)
	r.zw = nil

	return err
}

// Middleware handles Content-Encoding: gzip on requests and
// Accept-Encoding: gzip on responses.
func Middleware(h http.Handler) http.Handler {
	middleware := func(response http.ResponseWriter, request *http.Request) {
		if strings.Contains(request.Header.Get("Content-Encoding"), "gzip") {
			body, err := newGzipRequestBody(request.Body)
			if err != nil {
				logger.Log.Debugln("error while `newGzipRequestBody()` calling: ", zap.Error(err))
				response.WriteHeader(http.StatusBadRequest)
				return
			}
			request.Body = body
			request.Header.Del("Content-Encoding")
			defer body.Close()
		}

		if !strings.Contains(request.Header.Get("Accept-Encoding"), "gzip") {
			h.ServeHTTP(response, request)
			return
		}

		writer := &responseWriter{ResponseWriter: response}
		defer func() {
			if err := writer.close(); err != nil {
				logger.Log.Debugln("error while closing the gzip writer: ", zap.Error(err))
			}
		}()

		h.ServeHTTP(writer, request)
	}

	return http.HandlerFunc(middleware)
}
