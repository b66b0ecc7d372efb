package rest

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"

	devlink "github.com/devlink-app/devlink"
	"github.com/devlink-app/devlink/internal/domain"
	"github.com/devlink-app/devlink/internal/present/rest/presenter"
	"github.com/devlink-app/devlink/internal/service"
	"github.com/devlink-app/devlink/internal/usecase"
)

type Handler struct {
	config      domain.Config
	auth        *service.AuthService
	preferences *service.PreferencesService
	signal      *service.SignalService
	user        *usecase.UserUsecase
	project     *usecase.ProjectUsecase
	comment     *usecase.CommentUsecase
	follow      *usecase.FollowUsecase
	feed        *usecase.FeedUsecase
	activity    *usecase.ActivityUsecase
}

func NewHandler(
	config domain.Config,
	auth *service.AuthService,
	preferences *service.PreferencesService,
	signal *service.SignalService,
	user *usecase.UserUsecase,
	project *usecase.ProjectUsecase,
	comment *usecase.CommentUsecase,
	follow *usecase.FollowUsecase,
	feed *usecase.FeedUsecase,
	activity *usecase.ActivityUsecase,
) *Handler {
	return &Handler{
		config:      config,
		auth:        auth,
		preferences: preferences,
		signal:      signal,
		user:        user,
		project:     project,
		comment:     comment,
		follow:      follow,
		feed:        feed,
		activity:    activity,
	}
}

func (h *Handler) RegisterRoutes(e *echo.Echo, requireAuth echo.MiddlewareFunc) {
	e.POST("/api/v1/register", h.handleRegister)
	e.POST("/api/v1/login", h.handleLogin)

	e.GET("/api/v1/catalog", h.handleCatalog)
	e.GET("/api/v1/feed", h.handleFeed, requireAuth)
	e.GET("/api/v1/activity", h.handleActivity, requireAuth)

	e.POST("/api/v1/projects", h.handleProjectCreate, requireAuth)
	e.GET("/api/v1/projects/:id", h.handleProjectGet)
	e.PUT("/api/v1/projects/:id", h.handleProjectUpdate, requireAuth)
	e.DELETE("/api/v1/projects/:id", h.handleProjectDelete, requireAuth)
	e.POST("/api/v1/projects/:id/image", h.handleProjectImage, requireAuth)
	e.PUT("/api/v1/projects/:id/like", h.handleProjectLike, requireAuth)
	e.DELETE("/api/v1/projects/:id/like", h.handleProjectUnlike, requireAuth)

	e.GET("/api/v1/projects/:id/comments", h.handleCommentList)
	e.POST("/api/v1/projects/:id/comments", h.handleCommentAdd, requireAuth)
	e.DELETE("/api/v1/comments/:id", h.handleCommentDelete, requireAuth)

	e.PUT("/api/v1/users/:id/follow", h.handleFollow, requireAuth)
	e.DELETE("/api/v1/users/:id/follow", h.handleUnfollow, requireAuth)
	e.GET("/api/v1/users/:id/following", h.handleFollowing)
	e.GET("/api/v1/users/:id/followers", h.handleFollowers)

	e.GET("/api/v1/users/:id", h.handleUserGet)
	e.GET("/api/v1/users/:id/projects", h.handleUserProjects)
	e.PUT("/api/v1/me", h.handleProfileUpdate, requireAuth)

	e.GET("/api/v1/preferences", h.handlePreferencesGet, requireAuth)
	e.PUT("/api/v1/preferences", h.handlePreferencesSet, requireAuth)

	e.GET("/realtime", h.handleRealtime)
}

func requesterID(c echo.Context) string {
	id, _ := c.Request().Context().Value(domain.RequesterIdCtxKey).(string)
	return id
}

// fail maps domain errors onto status codes. Anything unclassified is a
// 500 with the wrapped cause.
func fail(c echo.Context, err error) error {
	switch {
	case errors.Is(err, domain.ErrNotFound):
		return presenter.NotFound(c, err.Error())
	case errors.Is(err, domain.ErrForbidden):
		return presenter.Forbidden(c, err.Error())
	case errors.Is(err, domain.ErrInvalid):
		return presenter.BadRequestMessage(c, err.Error())
	default:
		return presenter.InternalError(c, err)
	}
}

func (h *Handler) handleRegister(c echo.Context) error {
	ctx := c.Request().Context()

	var input service.RegisterInput
	if err := c.Bind(&input); err != nil {
		return presenter.BadRequest(c, err)
	}

	user, err := h.auth.Register(ctx, input)
	if err != nil {
		return fail(c, err)
	}
	return presenter.Created(c, user)
}

func (h *Handler) handleLogin(c echo.Context) error {
	ctx := c.Request().Context()

	var req struct {
		Username string `json:"username"`
		Password string `json:"password"`
	}
	if err := c.Bind(&req); err != nil {
		return presenter.BadRequest(c, err)
	}

	token, err := h.auth.Login(ctx, req.Username, req.Password)
	if err != nil {
		if errors.Is(err, domain.ErrForbidden) {
			return presenter.Unauthorized(c, "invalid credentials")
		}
		return fail(c, err)
	}
	return presenter.OK(c, echo.Map{"token": token})
}

func (h *Handler) handleCatalog(c echo.Context) error {
	ctx := c.Request().Context()

	catalog, err := h.feed.Catalog(ctx)
	if err != nil {
		return presenter.InternalError(c, err)
	}
	return presenter.OK(c, catalog)
}

func (h *Handler) handleFeed(c echo.Context) error {
	ctx := c.Request().Context()

	feed, err := h.feed.BuildFeed(ctx, requesterID(c))
	if err != nil {
		return presenter.InternalError(c, err)
	}
	return presenter.OK(c, feed)
}

func (h *Handler) handleActivity(c echo.Context) error {
	ctx := c.Request().Context()

	events := h.activity.BuildActivity(ctx, requesterID(c))
	return presenter.OK(c, events)
}

func (h *Handler) handleProjectCreate(c echo.Context) error {
	ctx := c.Request().Context()

	var input usecase.ProjectInput
	if err := c.Bind(&input); err != nil {
		return presenter.BadRequest(c, err)
	}

	project, err := h.project.Create(ctx, requesterID(c), input)
	if err != nil {
		return fail(c, err)
	}
	return presenter.Created(c, project)
}

func (h *Handler) handleProjectGet(c echo.Context) error {
	ctx := c.Request().Context()

	project, err := h.project.Get(ctx, requesterID(c), c.Param("id"))
	if err != nil {
		return fail(c, err)
	}
	return presenter.OK(c, project)
}

func (h *Handler) handleProjectUpdate(c echo.Context) error {
	ctx := c.Request().Context()

	var input usecase.ProjectInput
	if err := c.Bind(&input); err != nil {
		return presenter.BadRequest(c, err)
	}

	project, err := h.project.Update(ctx, requesterID(c), c.Param("id"), input)
	if err != nil {
		return fail(c, err)
	}
	return presenter.OK(c, project)
}

func (h *Handler) handleProjectDelete(c echo.Context) error {
	ctx := c.Request().Context()

	if err := h.project.Delete(ctx, requesterID(c), c.Param("id")); err != nil {
		return fail(c, err)
	}
	return presenter.OK(c, echo.Map{"status": "ok"})
}

func (h *Handler) handleProjectImage(c echo.Context) error {
	ctx := c.Request().Context()

	file, err := c.FormFile("image")
	if err != nil {
		return presenter.BadRequestMessage(c, "image file is required")
	}
	src, err := file.Open()
	if err != nil {
		return presenter.BadRequest(c, err)
	}
	defer src.Close()

	project, err := h.project.AttachImage(ctx, requesterID(c), c.Param("id"), src)
	if err != nil {
		return fail(c, err)
	}
	return presenter.OK(c, project)
}

func (h *Handler) handleProjectLike(c echo.Context) error {
	ctx := c.Request().Context()

	project, err := h.project.Like(ctx, requesterID(c), c.Param("id"))
	if err != nil {
		return fail(c, err)
	}
	return presenter.OK(c, project)
}

func (h *Handler) handleProjectUnlike(c echo.Context) error {
	ctx := c.Request().Context()

	project, err := h.project.Unlike(ctx, requesterID(c), c.Param("id"))
	if err != nil {
		return fail(c, err)
	}
	return presenter.OK(c, project)
}

func (h *Handler) handleCommentList(c echo.Context) error {
	ctx := c.Request().Context()

	comments, err := h.comment.ListByProject(ctx, c.Param("id"))
	if err != nil {
		return presenter.InternalError(c, err)
	}
	return presenter.OK(c, comments)
}

func (h *Handler) handleCommentAdd(c echo.Context) error {
	ctx := c.Request().Context()

	var req struct {
		Content string `json:"content"`
	}
	if err := c.Bind(&req); err != nil {
		return presenter.BadRequest(c, err)
	}

	comment, err := h.comment.Add(ctx, requesterID(c), c.Param("id"), req.Content)
	if err != nil {
		return fail(c, err)
	}
	return presenter.Created(c, comment)
}

func (h *Handler) handleCommentDelete(c echo.Context) error {
	ctx := c.Request().Context()

	if err := h.comment.Delete(ctx, requesterID(c), c.Param("id")); err != nil {
		return fail(c, err)
	}
	return presenter.OK(c, echo.Map{"status": "ok"})
}

func (h *Handler) handleFollow(c echo.Context) error {
	ctx := c.Request().Context()

	if err := h.follow.Follow(ctx, requesterID(c), c.Param("id")); err != nil {
		return fail(c, err)
	}
	return presenter.OK(c, echo.Map{"status": "ok"})
}

func (h *Handler) handleUnfollow(c echo.Context) error {
	ctx := c.Request().Context()

	if err := h.follow.Unfollow(ctx, requesterID(c), c.Param("id")); err != nil {
		return fail(c, err)
	}
	return presenter.OK(c, echo.Map{"status": "ok"})
}

func (h *Handler) handleFollowing(c echo.Context) error {
	ctx := c.Request().Context()

	ids, err := h.follow.Following(ctx, c.Param("id"))
	if err != nil {
		return presenter.InternalError(c, err)
	}
	if ids == nil {
		ids = []string{}
	}
	return presenter.OK(c, ids)
}

func (h *Handler) handleFollowers(c echo.Context) error {
	ctx := c.Request().Context()

	ids, err := h.follow.Followers(ctx, c.Param("id"))
	if err != nil {
		return presenter.InternalError(c, err)
	}
	if ids == nil {
		ids = []string{}
	}
	return presenter.OK(c, ids)
}

func (h *Handler) handleUserGet(c echo.Context) error {
	ctx := c.Request().Context()

	user, err := h.user.Get(ctx, c.Param("id"))
	if err != nil {
		return fail(c, err)
	}
	return presenter.OK(c, user)
}

func (h *Handler) handleUserProjects(c echo.Context) error {
	ctx := c.Request().Context()

	projects, err := h.project.ListByUser(ctx, requesterID(c), c.Param("id"))
	if err != nil {
		return presenter.InternalError(c, err)
	}
	if projects == nil {
		projects = []domain.Project{}
	}
	return presenter.OK(c, projects)
}

func (h *Handler) handleProfileUpdate(c echo.Context) error {
	ctx := c.Request().Context()

	var input usecase.ProfileInput
	if err := c.Bind(&input); err != nil {
		return presenter.BadRequest(c, err)
	}

	user, err := h.user.Update(ctx, requesterID(c), input)
	if err != nil {
		return fail(c, err)
	}
	return presenter.OK(c, user)
}

func (h *Handler) handlePreferencesGet(c echo.Context) error {
	ctx := c.Request().Context()

	prefs, err := h.preferences.Get(ctx, requesterID(c))
	if err != nil {
		return presenter.InternalError(c, err)
	}
	return presenter.OK(c, prefs)
}

func (h *Handler) handlePreferencesSet(c echo.Context) error {
	ctx := c.Request().Context()

	var prefs domain.DisplayPreferences
	if err := c.Bind(&prefs); err != nil {
		return presenter.BadRequest(c, err)
	}

	if err := h.preferences.Set(ctx, requesterID(c), prefs); err != nil {
		return fail(c, err)
	}
	return presenter.OK(c, prefs)
}

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

type realtimeRequest struct {
	Type     string   `json:"type"`
	Channels []string `json:"channels"`
}

func (h *Handler) handleRealtime(c echo.Context) error {
	ws, err := upgrader.Upgrade(c.Response(), c.Request(), nil)
	if err != nil {
		slog.Error(
			"Failed to upgrade WebSocket",
			slog.String("error", err.Error()),
			slog.String("module", "socket"),
		)
		return err
	}
	defer func() {
		ws.Close()
	}()

	ctx := c.Request().Context()

	input := make(chan []string)
	defer close(input)
	output := make(chan devlink.Event)
	defer close(output)

	go h.signal.Realtime(ctx, input, output)

	quit := make(chan struct{})

	go func() {
		for {
			var req realtimeRequest
			err := ws.ReadJSON(&req)
			if err != nil {

				wsErr, ok := err.(*websocket.CloseError)
				if ok {
					if !(wsErr.Code == websocket.CloseNormalClosure || wsErr.Code == websocket.CloseGoingAway) {
						slog.DebugContext(
							ctx, "WebSocket closed",
							slog.String("error", wsErr.Error()),
							slog.String("module", "socket"),
						)
					}
				} else {
					slog.ErrorContext(
						ctx, "Error reading message",
						slog.String("error", err.Error()),
						slog.String("module", "socket"),
					)
				}

				quit <- struct{}{}
				break
			}

			switch req.Type {
			case "listen":
				input <- req.Channels
			case "h": // heartbeat
				// do nothing
			default:
				slog.InfoContext(
					ctx, "Unknown request type",
					slog.String("type", req.Type),
					slog.String("module", "socket"),
				)
			}
		}
	}()

	for {
		select {
		case <-quit:
			return nil
		case event := <-output:
			err := ws.WriteJSON(event)
			if err != nil {
				slog.ErrorContext(
					ctx, "Error writing message",
					slog.String("error", err.Error()),
					slog.String("module", "socket"),
				)
				return nil
			}
		}
	}
}
