package api

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	log "github.com/sirupsen/logrus"

	"weekly-planner/domain"
	"weekly-planner/planner"
	"weekly-planner/transfer"
)

// Options configures the routes installed by Register.
type Options struct {
	// Auth, when set, guards every /api route.
	Auth Authenticator
	// Deduper, when set, honors Idempotency-Key on task creation.
	Deduper Deduper
	Logger  *log.Logger
	// Now drives the "today" marker of the week view.
	Now func() time.Time
	// ImportTTL bounds how long a staged import waits for confirmation.
	ImportTTL time.Duration
	// PingInterval is the keep-alive period of the event stream.
	PingInterval time.Duration
}

const (
	defaultImportTTL    = 10 * time.Minute
	defaultPingInterval = 25 * time.Second
	idempotencyHeader   = "Idempotency-Key"
)

type server struct {
	store   Store
	auth    Authenticator
	deduper Deduper
	log     *log.Logger
	now     func() time.Time
	imports *importStage
	ping    time.Duration
}

// Register wires up all API routes on the provided Echo instance.
func Register(e *echo.Echo, store Store, opts Options) {
	if opts.Logger == nil {
		opts.Logger = log.StandardLogger()
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.ImportTTL <= 0 {
		opts.ImportTTL = defaultImportTTL
	}
	if opts.PingInterval <= 0 {
		opts.PingInterval = defaultPingInterval
	}
	s := &server{
		store:   store,
		auth:    opts.Auth,
		deduper: opts.Deduper,
		log:     opts.Logger,
		now:     opts.Now,
		imports: newImportStage(opts.ImportTTL, opts.Now),
		ping:    opts.PingInterval,
	}

	g := e.Group("/api", requestMetricsMiddleware(opts.Logger), GzipRequestMiddleware(), requireAuth(opts.Auth))
	g.GET("/tasks", s.getTasks)
	g.POST("/tasks", s.postTask)
	g.DELETE("/tasks", s.deleteAllTasks)
	g.PUT("/tasks/:id", s.putTask)
	g.DELETE("/tasks/:id", s.deleteTask)
	g.POST("/tasks/:id/toggle", s.toggleTask)
	g.GET("/week", s.getWeek)
	g.GET("/palette", s.getPalette)
	g.PUT("/slots/:slot", s.putSlot)
	g.POST("/slots/move", s.moveTask)
	g.GET("/export", s.exportTasks)
	g.POST("/import", s.stageImport)
	g.POST("/import/:token/confirm", s.confirmImport)
	g.DELETE("/import/:token", s.cancelImport)
	g.GET("/stream", s.stream)
	e.GET("/healthz", healthz)
}

func healthz(c echo.Context) error {
	return c.NoContent(http.StatusOK)
}

// badRequest answers 400 and records the failing stage.
func badRequest(c echo.Context, stage, msg string) error {
	metricsFrom(c).SetErrorStage(stage)
	return c.JSON(http.StatusBadRequest, errorResponse{Error: msg})
}

// storeFailure answers 500 for a failed store write.
func (s *server) storeFailure(c echo.Context, err error) error {
	m := metricsFrom(c)
	m.SetErrorStage("storage")
	m.SetError(err)
	s.log.WithError(err).Error("store write failed")
	msg := "failed to save tasks"
	if !errors.Is(err, planner.ErrPersist) {
		msg = "internal error"
	}
	return c.JSON(http.StatusInternalServerError, errorResponse{Error: msg})
}

func (s *server) getTasks(c echo.Context) error {
	tasks := s.store.Tasks()
	metricsFrom(c).SetTasks(len(tasks))
	return c.JSON(http.StatusOK, tasks)
}

func (s *server) getWeek(c echo.Context) error {
	tasks := s.store.GroupedBySlot()
	resp := weekResponse{
		Days:     domain.AllDays,
		Periods:  domain.AllPeriods,
		Today:    domain.DayOf(s.now()),
		HasTasks: s.store.HasTasks(),
		Slots:    tasks,
	}
	return c.JSON(http.StatusOK, resp)
}

func (s *server) getPalette(c echo.Context) error {
	return c.JSON(http.StatusOK, domain.Palette)
}

func (s *server) postTask(c echo.Context) error {
	ctx := c.Request().Context()
	var data domain.TaskData
	if err := decodeBody(c, postTaskMaxSize, &data); err != nil {
		return badRequest(c, "decode", "invalid body")
	}
	data, err := NormalizeTaskData(data)
	if err != nil {
		return badRequest(c, "validate", err.Error())
	}

	key := strings.TrimSpace(c.Request().Header.Get(idempotencyHeader))
	if key != "" && s.deduper != nil {
		added, err := s.deduper.Add(ctx, key)
		if err != nil {
			metricsFrom(c).SetErrorStage("idempotency")
			metricsFrom(c).SetError(err)
			s.log.WithError(err).Error("idempotency check failed")
			return c.JSON(http.StatusInternalServerError, errorResponse{Error: "idempotency check failed"})
		}
		if !added {
			metricsFrom(c).SetErrorStage("duplicate")
			return c.JSON(http.StatusConflict, errorResponse{Error: "duplicate request"})
		}
	}

	task, err := s.store.Add(ctx, data)
	if err != nil {
		if key != "" && s.deduper != nil {
			if rerr := s.deduper.Remove(ctx, key); rerr != nil {
				s.log.WithError(rerr).Warn("failed to release idempotency key")
			}
		}
		return s.storeFailure(c, err)
	}
	metricsFrom(c).SetTasks(1)
	return c.JSON(http.StatusCreated, task)
}

func (s *server) putTask(c echo.Context) error {
	id := c.Param("id")
	var req updateTaskRequest
	if err := decodeBody(c, postTaskMaxSize, &req); err != nil {
		return badRequest(c, "decode", "invalid body")
	}
	if req.ID != "" && req.ID != id {
		return badRequest(c, "validate", "id does not match path")
	}
	existing, ok := s.store.Task(id)
	if !ok {
		metricsFrom(c).SetErrorStage("lookup")
		return c.JSON(http.StatusNotFound, errorResponse{Error: "task not found"})
	}
	data, err := NormalizeTaskData(req.TaskData)
	if err != nil {
		return badRequest(c, "validate", err.Error())
	}
	task := domain.NewTask(id, data)
	task.Completed = existing.Completed
	if req.Completed != nil {
		task.Completed = *req.Completed
	}
	if err := s.store.Update(c.Request().Context(), task); err != nil {
		return s.storeFailure(c, err)
	}
	return c.JSON(http.StatusOK, task)
}

func (s *server) deleteTask(c echo.Context) error {
	if err := s.store.Delete(c.Request().Context(), c.Param("id")); err != nil {
		return s.storeFailure(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

func (s *server) toggleTask(c echo.Context) error {
	if err := s.store.ToggleCompletion(c.Request().Context(), c.Param("id")); err != nil {
		return s.storeFailure(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

func (s *server) deleteAllTasks(c echo.Context) error {
	if c.QueryParam("confirm") != deleteAllConfirm {
		return badRequest(c, "confirm", "confirm=delete-all is required")
	}
	if err := s.store.DeleteAll(c.Request().Context()); err != nil {
		return s.storeFailure(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

func (s *server) putSlot(c echo.Context) error {
	slot, ok := domain.ParseSlot(c.Param("slot"))
	if !ok {
		return badRequest(c, "slot", "unknown slot")
	}
	tasks := make([]domain.Task, 0, 8)
	if err := decodeBody(c, slotBodyMaxSize, &tasks); err != nil {
		return badRequest(c, "decode", "invalid body")
	}
	if err := checkSlotMembers(slot, tasks); err != nil {
		return badRequest(c, "validate", err.Error())
	}
	if err := s.store.UpdateSlotTasks(c.Request().Context(), slot, tasks); err != nil {
		return s.storeFailure(c, err)
	}
	metricsFrom(c).SetTasks(len(tasks))
	return c.NoContent(http.StatusNoContent)
}

func (s *server) moveTask(c echo.Context) error {
	var req moveRequest
	if err := decodeBody(c, slotBodyMaxSize, &req); err != nil {
		return badRequest(c, "decode", "invalid body")
	}
	from, ok := domain.ParseSlot(req.From)
	if !ok {
		return badRequest(c, "slot", "unknown source slot")
	}
	to, ok := domain.ParseSlot(req.To)
	if !ok {
		return badRequest(c, "slot", "unknown destination slot")
	}

	ctx := c.Request().Context()
	switch {
	case req.FromTasks != nil && req.ToTasks != nil:
		if err := checkSlotMembers(from, *req.FromTasks); err != nil {
			return badRequest(c, "validate", err.Error())
		}
		if err := checkSlotMembers(to, *req.ToTasks); err != nil {
			return badRequest(c, "validate", err.Error())
		}
		if from == to {
			return badRequest(c, "validate", "source and destination are the same slot")
		}
		if err := s.store.UpdateTwoSlotsTasks(ctx, from, *req.FromTasks, to, *req.ToTasks); err != nil {
			return s.storeFailure(c, err)
		}
	case req.FromIndex != nil && req.ToIndex != nil:
		week := s.store.GroupedBySlot()
		src := week.Slot(from.Day, from.Period)
		if *req.FromIndex < 0 || *req.FromIndex >= len(src) {
			return badRequest(c, "validate", "fromIndex out of range")
		}
		if from == to {
			if err := s.store.UpdateSlotTasks(ctx, from, planner.Reorder(src, *req.FromIndex, *req.ToIndex)); err != nil {
				return s.storeFailure(c, err)
			}
			break
		}
		newSrc, newDst, _ := planner.Transfer(src, *req.FromIndex, week.Slot(to.Day, to.Period), *req.ToIndex, to)
		if err := s.store.UpdateTwoSlotsTasks(ctx, from, newSrc, to, newDst); err != nil {
			return s.storeFailure(c, err)
		}
	default:
		return badRequest(c, "validate", "either task lists or indices are required")
	}
	return c.JSON(http.StatusOK, s.store.GroupedBySlot())
}

func (s *server) exportTasks(c echo.Context) error {
	tasks := s.store.Tasks()
	data, err := transfer.Export(tasks)
	if err != nil {
		metricsFrom(c).SetErrorStage("encode")
		metricsFrom(c).SetError(err)
		return c.JSON(http.StatusInternalServerError, errorResponse{Error: "export failed"})
	}
	metricsFrom(c).SetTasks(len(tasks))
	c.Response().Header().Set(echo.HeaderContentDisposition, `attachment; filename="`+transfer.ExportFileName+`"`)
	return c.Blob(http.StatusOK, echo.MIMEApplicationJSON, data)
}
