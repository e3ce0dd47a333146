package api

import (
	"io"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	log "github.com/sirupsen/logrus"

	"weekly-planner/domain"
	"weekly-planner/transfer"
)

const importFormField = "file"

type stagedImport struct {
	tasks   []domain.Task
	expires time.Time
}

// importStage holds parsed imports until the user confirms the replacement.
type importStage struct {
	mu     sync.Mutex
	ttl    time.Duration
	now    func() time.Time
	staged map[string]stagedImport
}

func newImportStage(ttl time.Duration, now func() time.Time) *importStage {
	return &importStage{
		ttl:    ttl,
		now:    now,
		staged: make(map[string]stagedImport),
	}
}

func (st *importStage) put(tasks []domain.Task) string {
	st.mu.Lock()
	defer st.mu.Unlock()
	st.sweepLocked()
	token := uuid.NewString()
	st.staged[token] = stagedImport{tasks: tasks, expires: st.now().Add(st.ttl)}
	return token
}

// take removes and returns the staged tasks of token.
func (st *importStage) take(token string) ([]domain.Task, bool) {
	st.mu.Lock()
	defer st.mu.Unlock()
	st.sweepLocked()
	imp, ok := st.staged[token]
	if !ok {
		return nil, false
	}
	delete(st.staged, token)
	return imp.tasks, true
}

func (st *importStage) drop(token string) bool {
	st.mu.Lock()
	defer st.mu.Unlock()
	_, ok := st.staged[token]
	delete(st.staged, token)
	return ok
}

func (st *importStage) sweepLocked() {
	now := st.now()
	for token, imp := range st.staged {
		if !now.Before(imp.expires) {
			delete(st.staged, token)
		}
	}
}

// importSource returns the uploaded file of a multipart request, or the raw body.
func importSource(c echo.Context) (io.ReadCloser, error) {
	ct := c.Request().Header.Get(echo.HeaderContentType)
	if !strings.HasPrefix(ct, echo.MIMEMultipartForm) {
		return c.Request().Body, nil
	}
	fh, err := c.FormFile(importFormField)
	if err != nil {
		return nil, err
	}
	return fh.Open()
}

func (s *server) stageImport(c echo.Context) error {
	src, err := importSource(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, importResponse{Error: transfer.UserMessage(transfer.ErrUnreadable)})
	}
	defer src.Close()

	tasks, err := transfer.ReadImport(src, transfer.DefaultImportLimit)
	if err != nil {
		metricsFrom(c).SetErrorStage("import_parse")
		s.log.WithError(err).Info("import rejected")
		return c.JSON(http.StatusBadRequest, importResponse{Error: transfer.UserMessage(err)})
	}
	token := s.imports.put(tasks)
	metricsFrom(c).SetTasks(len(tasks))
	s.log.WithFields(log.Fields{"tasks": len(tasks)}).Debug("import staged")
	return c.JSON(http.StatusOK, importResponse{Token: token, Count: len(tasks)})
}

func (s *server) confirmImport(c echo.Context) error {
	tasks, ok := s.imports.take(c.Param("token"))
	if !ok {
		metricsFrom(c).SetErrorStage("import_token")
		return c.JSON(http.StatusNotFound, errorResponse{Error: "import not found or expired"})
	}
	if err := s.store.ImportTasks(c.Request().Context(), tasks); err != nil {
		return s.storeFailure(c, err)
	}
	metricsFrom(c).SetTasks(len(tasks))
	return c.JSON(http.StatusOK, importResponse{Count: len(tasks)})
}

func (s *server) cancelImport(c echo.Context) error {
	if !s.imports.drop(c.Param("token")) {
		metricsFrom(c).SetErrorStage("import_token")
		return c.JSON(http.StatusNotFound, errorResponse{Error: "import not found or expired"})
	}
	return c.NoContent(http.StatusNoContent)
}
