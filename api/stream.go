package api

import (
	"net/http"
	"time"

	"github.com/bytedance/sonic"
	"github.com/labstack/echo/v4"
)

// stream pushes the task list as server-sent events: once on connect and
// again after every committed mutation.
func (s *server) stream(c echo.Context) error {
	h := c.Response().Header()
	h.Set(echo.HeaderContentType, "text/event-stream")
	h.Set(echo.HeaderCacheControl, "no-cache")
	h.Set(echo.HeaderConnection, "keep-alive")
	h.Set("X-Accel-Buffering", "no")
	flusher, ok := c.Response().Writer.(http.Flusher)
	if !ok {
		return c.String(http.StatusInternalServerError, "stream unsupported")
	}

	changes, stop := s.store.Subscribe()
	defer stop()

	ctx := c.Request().Context()
	ticker := time.NewTicker(s.ping)
	defer ticker.Stop()

	c.Response().WriteHeader(http.StatusOK)
	if err := s.writeSnapshot(c); err != nil {
		return nil
	}
	flusher.Flush()
	for {
		select {
		case <-ctx.Done():
			return nil
		case _, open := <-changes:
			if !open {
				return nil
			}
			if err := s.writeSnapshot(c); err != nil {
				return nil
			}
		case <-ticker.C:
			if _, err := c.Response().Write([]byte(": ping\n\n")); err != nil {
				return nil
			}
		}
		flusher.Flush()
	}
}

func (s *server) writeSnapshot(c echo.Context) error {
	data, err := sonic.Marshal(s.store.Tasks())
	if err != nil {
		s.log.WithError(err).Error("encode stream snapshot")
		return nil
	}
	w := c.Response()
	if _, err := w.Write([]byte("data: ")); err != nil {
		return err
	}
	if _, err := w.Write(data); err != nil {
		return err
	}
	_, err = w.Write([]byte("\n\n"))
	return err
}
